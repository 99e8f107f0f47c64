package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/minibooks/bookshelf_sdk_go/internal/bookapi"
	"github.com/minibooks/bookshelf_sdk_go/pkg/books"
	"github.com/minibooks/bookshelf_sdk_go/pkg/books/mock"
)

type failConfig struct {
	rate float64
	code int
}

type server struct {
	catalogue *mock.Mock
	log       logrus.FieldLogger
}

func newRouter(catalogue *mock.Mock, logger logrus.FieldLogger, delay time.Duration, fail failConfig) *mux.Router {
	s := &server{catalogue: catalogue, log: logger}

	r := mux.NewRouter()
	r.Use(injectMiddleware(delay, fail))
	r.HandleFunc("/books", s.listBooks).Methods(http.MethodGet)
	r.HandleFunc("/books", s.createBook).Methods(http.MethodPost)
	r.HandleFunc("/books/{id}", s.getBook).Methods(http.MethodGet)
	r.HandleFunc("/books/{id}", s.updateBook).Methods(http.MethodPut)
	r.HandleFunc("/books/{id}", s.deleteBook).Methods(http.MethodDelete)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})
	return r
}

func injectMiddleware(delay time.Duration, fail failConfig) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if delay > 0 {
				time.Sleep(delay)
			}
			if fail.rate > 0 && rand.Float64() < fail.rate {
				status := fail.code
				if status == 0 {
					status = http.StatusInternalServerError
				}
				writeError(w, status, "injected_failure", "failure injected")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *server) listBooks(w http.ResponseWriter, r *http.Request) {
	list, err := s.catalogue.List(r.Context())
	if err != nil {
		s.log.WithError(err).Error("failed to fetch books")
		writeError(w, http.StatusInternalServerError, "internal_server_error", "unable to fetch books")
		return
	}
	s.log.WithField("count", len(list)).Info("fetched books successfully")
	writeJSON(w, http.StatusOK, list)
}

func (s *server) getBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	book, err := s.catalogue.Get(r.Context(), id)
	if err != nil {
		s.writeFailure(w, err, "something went wrong while fetching book")
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func (s *server) createBook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid book data")
		return
	}
	req, err := books.DecodeCreateForm(r.PostForm)
	if err != nil {
		s.writeFailure(w, err, "invalid book data")
		return
	}
	book, err := s.catalogue.CreateBook(r.Context(), req)
	if err != nil {
		s.writeFailure(w, err, "unable to add book")
		return
	}
	s.log.WithFields(logrus.Fields{"id": book.ID, "title": book.Title}).Info("added new book successfully")
	writeJSON(w, http.StatusCreated, books.MessageResponse{Message: mock.MessageCreated})
}

func (s *server) updateBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid book data")
		return
	}
	req, err := books.DecodeUpdateForm(r.PostForm)
	if err != nil {
		s.writeFailure(w, err, "invalid book data")
		return
	}
	if req.IsEmpty() {
		writeError(w, http.StatusBadRequest, "bad_request", "no fields to update")
		return
	}
	resp, err := s.catalogue.Update(r.Context(), id, req)
	if err != nil {
		s.writeFailure(w, err, "unable to update book")
		return
	}
	s.log.WithField("id", id).Info("updated book successfully")
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) deleteBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.catalogue.Delete(r.Context(), id); err != nil {
		s.writeFailure(w, err, "unable to delete book")
		return
	}
	s.log.WithField("id", id).Info("deleted book successfully")
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) writeFailure(w http.ResponseWriter, err error, fallback string) {
	var verr *books.ValidationError
	switch {
	case errors.Is(err, books.ErrNotFound):
		s.log.WithError(err).Warn("book not found")
		writeError(w, http.StatusNotFound, "not_found", "book not found")
	case errors.As(err, &verr):
		s.log.WithError(err).Warn("validation failed")
		issues := make([]bookapi.FieldIssue, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			issues = append(issues, bookapi.FieldIssue{Field: f.Field, Rule: f.Rule})
		}
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "bad_request",
			"message": issues,
		})
	default:
		s.log.WithError(err).Error(fallback)
		writeError(w, http.StatusInternalServerError, "internal_server_error", fallback)
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("invalid book id %q", raw))
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": code, "message": message})
}

func parseFailConfig(raw string) (failConfig, error) {
	if strings.TrimSpace(raw) == "" {
		return failConfig{}, nil
	}
	cfg := failConfig{code: http.StatusInternalServerError}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, ok := strings.Cut(part, "=")
		if !ok {
			return failConfig{}, fmt.Errorf("invalid fail segment %q", part)
		}
		val = strings.TrimSpace(val)
		switch strings.TrimSpace(key) {
		case "rate":
			rate, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return failConfig{}, err
			}
			if rate < 0 || rate > 1 {
				return failConfig{}, fmt.Errorf("fail rate %v outside [0,1]", rate)
			}
			cfg.rate = rate
		case "code":
			code, err := strconv.Atoi(val)
			if err != nil {
				return failConfig{}, err
			}
			if code < 400 || code > 599 {
				return failConfig{}, fmt.Errorf("fail code %d is not an error status", code)
			}
			cfg.code = code
		default:
			return failConfig{}, fmt.Errorf("unknown fail key %q", key)
		}
	}
	return cfg, nil
}

package httpx

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

func TestNewClientRejectsBadBaseURL(t *testing.T) {
	for _, raw := range []string{"", "   ", "://nope", "localhost"} {
		if _, err := NewClient(raw); err == nil {
			t.Fatalf("expected error for base URL %q", raw)
		}
	}
}

func TestDoSendsRequestIDAndLogs(t *testing.T) {
	var gotID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get(RequestIDHeader)
		if r.URL.Path != "/books" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	c, err := NewClient(srv.URL, WithLogger(logger))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	c.newID = func() string { return "req-1" }

	resp, err := c.Do(context.Background(), &Request{Method: http.MethodGet, Path: "books"})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	resp.Body.Close()

	if gotID != "req-1" {
		t.Fatalf("expected request id header, got %q", gotID)
	}
	entry := hook.LastEntry()
	if entry == nil {
		t.Fatalf("expected a log entry")
	}
	if entry.Data["method"] != http.MethodGet || entry.Data["path"] != "books" || entry.Data["request_id"] != "req-1" {
		t.Fatalf("unexpected log fields: %#v", entry.Data)
	}
}

func TestDoReturnsHTTPErrorWithoutRetryByDefault(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json; charset=UTF-8")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":"internal_server_error","message":"unable to fetch books"}`)
	}))
	defer srv.Close()

	logger, hook := logtest.NewNullLogger()
	c, err := NewClient(srv.URL, WithLogger(logger))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = c.Do(context.Background(), &Request{Method: http.MethodGet, Path: "/books"})
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.StatusCode != http.StatusInternalServerError || !httpErr.Retryable() {
		t.Fatalf("unexpected error: %#v", httpErr)
	}
	if !strings.Contains(string(httpErr.Body), "unable to fetch books") {
		t.Fatalf("expected error body to be kept, got %q", httpErr.Body)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected a single attempt, got %d", n)
	}

	var sawError bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.ErrorLevel && e.Data["status"] == http.StatusInternalServerError {
			sawError = true
		}
	}
	if !sawError {
		t.Fatalf("expected failing response to be logged")
	}
}

func TestDoRetriesWhenPolicyAllows(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if string(body) != "title=Dune" {
			t.Errorf("body not replayed: %q", body)
		}
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	logger, _ := logtest.NewNullLogger()
	c, err := NewClient(srv.URL,
		WithLogger(logger),
		WithRetryPolicy(RetryPolicy{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	body, contentType := WithFormBody(url.Values{"title": {"Dune"}})
	resp, err := c.Do(context.Background(), &Request{
		Method: http.MethodPost,
		Path:   "/books",
		Header: http.Header{"Content-Type": {contentType}},
		Body:   body,
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Fatalf("expected 3 attempts, got %d", n)
	}
}

func TestDoDoesNotRetryRejectedPayload(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	logger, _ := logtest.NewNullLogger()
	c, err := NewClient(srv.URL,
		WithLogger(logger),
		WithRetryPolicy(RetryPolicy{MaxRetries: 3, BaseDelay: time.Millisecond}),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = c.Do(context.Background(), &Request{Method: http.MethodPut, Path: "/books/1"})
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || !httpErr.Rejected() {
		t.Fatalf("expected rejected HTTPError, got %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected a single attempt, got %d", n)
	}
}

func TestDoHonoursCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	logger, _ := logtest.NewNullLogger()
	c, err := NewClient(srv.URL, WithLogger(logger), WithRateLimit(1, 1))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Do(ctx, &Request{Method: http.MethodGet, Path: "/books"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBuildURLResolvesAbsolutePath(t *testing.T) {
	c, err := NewClient("http://localhost:9000/api/")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	got, err := c.buildURL("books/7")
	if err != nil {
		t.Fatalf("buildURL: %v", err)
	}
	if got != "http://localhost:9000/books/7" {
		t.Fatalf("unexpected URL %q", got)
	}
}

func TestDoSendsDefaultHeaders(t *testing.T) {
	var gotUA, gotID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotID = r.Header.Get(RequestIDHeader)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	logger, _ := logtest.NewNullLogger()
	c, err := NewClient(srv.URL,
		WithLogger(logger),
		WithHeaders(http.Header{"User-Agent": {"bookshelf-test/1"}, RequestIDHeader: {"ignored"}}),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	resp, err := c.Do(context.Background(), &Request{Method: http.MethodDelete, Path: "/books/1"})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	resp.Body.Close()

	if gotUA != "bookshelf-test/1" {
		t.Fatalf("unexpected User-Agent %q", gotUA)
	}
	if gotID == "" || gotID == "ignored" {
		t.Fatalf("request id should be generated per request, got %q", gotID)
	}
}

package books

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrNotFound matches any *NotFoundError via errors.Is.
	ErrNotFound = errors.New("books: not found")
	// ErrInvalidID is returned for non-positive ids before any request is made.
	ErrInvalidID = errors.New("books: id must be positive")
	// ErrEmptyUpdate is returned when an update carries no fields.
	ErrEmptyUpdate = errors.New("books: update has no fields")
)

// NetworkError means the request never produced a response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("books: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError is a non-2xx response that is neither a 404 nor a rejected payload.
type ServerError struct {
	Status  int
	Message string
	Body    []byte
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("books: server error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("books: server error %d (%s)", e.Status, http.StatusText(e.Status))
}

// ServerMessage returns the message reported by the service, if any.
func (e *ServerError) ServerMessage() string { return e.Message }

// NotFoundError reports a book id unknown to the service.
type NotFoundError struct {
	ID      int64
	Message string
}

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("books: book %d not found: %s", e.ID, e.Message)
	}
	return fmt.Sprintf("books: book %d not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func (e *NotFoundError) ServerMessage() string { return e.Message }

// FieldError names one rejected field and the rule it broke.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// ValidationError is a payload rejected by the service or by Validate.
type ValidationError struct {
	Fields  []FieldError
	Message string
}

func (e *ValidationError) Error() string {
	msg := e.ServerMessage()
	if msg == "" {
		return "books: validation failed"
	}
	return "books: validation failed: " + msg
}

// ServerMessage returns the rejection message, falling back to the field list.
func (e *ValidationError) ServerMessage() string {
	if e.Message != "" {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Rule)
	}
	return strings.Join(parts, ", ")
}

// Field reports whether field was rejected.
func (e *ValidationError) Field(name string) bool {
	for _, f := range e.Fields {
		if f.Field == name {
			return true
		}
	}
	return false
}

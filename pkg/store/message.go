package store

import (
	"errors"
	"strings"

	"github.com/minibooks/bookshelf_sdk_go/pkg/books"
)

// Fallback messages used when a failure carries no usable text.
const (
	MessageFetchFailed  = "Failed to fetch books"
	MessageCreateFailed = "Failed to create book"
	MessageUpdateFailed = "Failed to update book"
	MessageDeleteFailed = "Failed to delete book"
)

type serverMessager interface {
	ServerMessage() string
}

// ErrorMessage derives the text stored in State.Error. A message supplied by
// the service wins; otherwise the transport error's own message is used; if
// neither exists fallback is returned.
func ErrorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}

	var sm serverMessager
	if errors.As(err, &sm) {
		if msg := strings.TrimSpace(sm.ServerMessage()); msg != "" {
			return msg
		}
		return fallback
	}

	cause := err
	var nerr *books.NetworkError
	if errors.As(err, &nerr) {
		cause = nerr.Err
	}
	if cause != nil {
		if msg := strings.TrimSpace(cause.Error()); msg != "" {
			return msg
		}
	}
	return fallback
}

package store

import (
	"fmt"

	"github.com/minibooks/bookshelf_sdk_go/pkg/books"
)

// State is a snapshot of the catalogue as seen by the client. An empty Error
// means no error.
type State struct {
	Books   []books.Book
	Loading bool
	Error   string
}

// HasError reports whether an error message is set.
func (s State) HasError() bool { return s.Error != "" }

// Book looks up a book by id in the snapshot.
func (s State) Book(id int64) (books.Book, bool) {
	for _, b := range s.Books {
		if b.ID == id {
			return b, true
		}
	}
	return books.Book{}, false
}

func (s State) clone() State {
	s.Books = cloneBooks(s.Books)
	return s
}

// ActionType enumerates the state transitions.
type ActionType int

const (
	ActionSetLoading ActionType = iota + 1
	ActionSetBooks
	ActionDeleteBook
	ActionSetError
)

func (t ActionType) String() string {
	switch t {
	case ActionSetLoading:
		return "set-loading"
	case ActionSetBooks:
		return "set-books"
	case ActionDeleteBook:
		return "delete-book"
	case ActionSetError:
		return "set-error"
	default:
		return fmt.Sprintf("action(%d)", int(t))
	}
}

// Action is one state transition. Only the field matching Type is read.
type Action struct {
	Type    ActionType
	Loading bool
	Books   []books.Book
	ID      int64
	Message string
}

// SetLoading sets the loading flag.
func SetLoading(loading bool) Action {
	return Action{Type: ActionSetLoading, Loading: loading}
}

// SetBooks replaces the book list and clears loading and error.
func SetBooks(list []books.Book) Action {
	return Action{Type: ActionSetBooks, Books: list}
}

// DeleteBook removes the book with the given id and clears loading and error.
func DeleteBook(id int64) Action {
	return Action{Type: ActionDeleteBook, ID: id}
}

// SetError sets the error message and clears loading. An empty message clears
// the error.
func SetError(message string) Action {
	return Action{Type: ActionSetError, Message: message}
}

// Reduce applies a to s and returns the new state. s is never modified and the
// result never shares its book slice with a.Books.
func Reduce(s State, a Action) State {
	switch a.Type {
	case ActionSetLoading:
		s.Loading = a.Loading
	case ActionSetBooks:
		s.Books = cloneBooks(a.Books)
		s.Loading = false
		s.Error = ""
	case ActionDeleteBook:
		kept := make([]books.Book, 0, len(s.Books))
		for _, b := range s.Books {
			if b.ID != a.ID {
				kept = append(kept, b)
			}
		}
		s.Books = kept
		s.Loading = false
		s.Error = ""
	case ActionSetError:
		s.Error = a.Message
		s.Loading = false
	}
	return s
}

func cloneBooks(list []books.Book) []books.Book {
	out := make([]books.Book, len(list))
	copy(out, list)
	return out
}

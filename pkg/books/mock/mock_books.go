// Package mock provides an in-memory catalogue that behaves like the remote
// book service: ids are server-assigned, writes are validated and unknown ids
// yield *books.NotFoundError.
package mock

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/minibooks/bookshelf_sdk_go/pkg/books"
)

// Messages returned on successful writes, matching the remote service.
const (
	MessageCreated = "book created successfully"
	MessageUpdated = "book updated successfully"
)

// Mock implements books.Backend in memory.
type Mock struct {
	mu     sync.RWMutex
	items  map[int64]books.Book
	nextID int64
}

// New creates an empty catalogue.
func New() *Mock {
	return &Mock{
		items:  make(map[int64]books.Book),
		nextID: 1,
	}
}

// Seed loads records, keeping their ids. Records without an id are assigned
// the next free one.
func (m *Mock) Seed(records []books.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, b := range records {
		if b.ID < 0 {
			return fmt.Errorf("mock books: seed record %q has negative id", b.Title)
		}
		if b.ID == 0 {
			b.ID = m.nextID
		}
		if _, exists := m.items[b.ID]; exists {
			return fmt.Errorf("mock books: duplicate seed id %d", b.ID)
		}
		m.items[b.ID] = b
		if b.ID >= m.nextID {
			m.nextID = b.ID + 1
		}
	}
	return nil
}

// List returns every book ordered by id.
func (m *Mock) List(ctx context.Context) ([]books.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]books.Book, 0, len(m.items))
	for _, b := range m.items {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Get returns a copy of the book with the given id.
func (m *Mock) Get(ctx context.Context, id int64) (*books.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.items[id]
	if !ok {
		return nil, &books.NotFoundError{ID: id, Message: "book not found"}
	}
	return &b, nil
}

// Create validates and stores a new book under the next id.
func (m *Mock) Create(ctx context.Context, req books.CreateRequest) (*books.MessageResponse, error) {
	if _, err := m.CreateBook(ctx, req); err != nil {
		return nil, err
	}
	return &books.MessageResponse{Message: MessageCreated}, nil
}

// CreateBook is Create returning the stored record, for callers that own the
// mock directly.
func (m *Mock) CreateBook(ctx context.Context, req books.CreateRequest) (books.Book, error) {
	if err := ctx.Err(); err != nil {
		return books.Book{}, err
	}
	if err := req.Validate(); err != nil {
		return books.Book{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	b := req.Book()
	b.ID = m.nextID
	m.nextID++
	m.items[b.ID] = b
	return b, nil
}

// Update applies the present fields of req to an existing book.
func (m *Mock) Update(ctx context.Context, id int64, req books.UpdateRequest) (*books.MessageResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.items[id]
	if !ok {
		return nil, &books.NotFoundError{ID: id, Message: "book not found"}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	m.items[id] = req.Apply(current)
	return &books.MessageResponse{Message: MessageUpdated}, nil
}

// Delete removes a book.
func (m *Mock) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return &books.NotFoundError{ID: id, Message: "book not found"}
	}
	delete(m.items, id)
	return nil
}

// Len reports the number of stored books.
func (m *Mock) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

var _ books.Backend = (*Mock)(nil)

package books

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/minibooks/bookshelf_sdk_go/internal/bookapi"
	"github.com/minibooks/bookshelf_sdk_go/internal/httpx"
)

// Backend performs the five catalogue operations. The HTTP backend talks to
// the remote service; pkg/books/mock provides an in-memory one.
type Backend interface {
	List(ctx context.Context) ([]Book, error)
	Get(ctx context.Context, id int64) (*Book, error)
	Create(ctx context.Context, req CreateRequest) (*MessageResponse, error)
	Update(ctx context.Context, id int64, req UpdateRequest) (*MessageResponse, error)
	Delete(ctx context.Context, id int64) error
}

// Client provides typed access to the catalogue service.
type Client struct {
	backend Backend
}

// New constructs a Client bound to the provided base URL.
func New(baseURL string, opts ...httpx.Option) (*Client, error) {
	cl, err := httpx.NewClient(baseURL, opts...)
	if err != nil {
		return nil, err
	}
	return NewWithHTTPClient(cl), nil
}

// NewWithHTTPClient wraps an existing httpx.Client.
func NewWithHTTPClient(httpClient *httpx.Client) *Client {
	return &Client{backend: &httpBackend{client: httpClient}}
}

// NewWithBackend allows callers to supply a custom backend (e.g., mocks).
func NewWithBackend(b Backend) *Client {
	return &Client{backend: b}
}

// ListBooks returns the whole catalogue in server order.
func (c *Client) ListBooks(ctx context.Context) ([]Book, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	return c.backend.List(ctx)
}

// GetBook returns one book or a *NotFoundError.
func (c *Client) GetBook(ctx context.Context, id int64) (*Book, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, ErrInvalidID
	}
	return c.backend.Get(ctx, id)
}

// CreateBook submits a new book. The service acknowledges with a message and
// does not echo the stored record.
func (c *Client) CreateBook(ctx context.Context, req CreateRequest) (*MessageResponse, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	return c.backend.Create(ctx, req)
}

// UpdateBook sends only the fields present in req.
func (c *Client) UpdateBook(ctx context.Context, id int64, req UpdateRequest) (*MessageResponse, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, ErrInvalidID
	}
	if req.IsEmpty() {
		return nil, ErrEmptyUpdate
	}
	return c.backend.Update(ctx, id, req)
}

// DeleteBook removes a book; unknown ids surface as *NotFoundError.
func (c *Client) DeleteBook(ctx context.Context, id int64) error {
	if err := c.ready(); err != nil {
		return err
	}
	if id <= 0 {
		return ErrInvalidID
	}
	return c.backend.Delete(ctx, id)
}

func (c *Client) ready() error {
	if c == nil || c.backend == nil {
		return errors.New("books: client is nil")
	}
	return nil
}

type httpBackend struct {
	client *httpx.Client
}

func (b *httpBackend) List(ctx context.Context) ([]Book, error) {
	data, err := b.do(ctx, "list books", 0, &httpx.Request{
		Method: http.MethodGet,
		Path:   "/books",
	})
	if err != nil {
		return nil, err
	}
	var out []Book
	if err := bookapi.Decode(data, &out); err != nil {
		return nil, fmt.Errorf("books: decode list response: %w", err)
	}
	return out, nil
}

func (b *httpBackend) Get(ctx context.Context, id int64) (*Book, error) {
	data, err := b.do(ctx, "get book", id, &httpx.Request{
		Method: http.MethodGet,
		Path:   bookPath(id),
	})
	if err != nil {
		return nil, err
	}
	var out *Book
	if err := bookapi.Decode(data, &out); err != nil {
		return nil, fmt.Errorf("books: decode book %d: %w", id, err)
	}
	if out == nil {
		return nil, &NotFoundError{ID: id}
	}
	return out, nil
}

func (b *httpBackend) Create(ctx context.Context, req CreateRequest) (*MessageResponse, error) {
	body, contentType := httpx.WithFormBody(req.EncodeForm())
	data, err := b.do(ctx, "create book", 0, &httpx.Request{
		Method: http.MethodPost,
		Path:   "/books",
		Header: http.Header{"Content-Type": {contentType}},
		Body:   body,
	})
	if err != nil {
		return nil, err
	}
	return decodeMessage(data)
}

func (b *httpBackend) Update(ctx context.Context, id int64, req UpdateRequest) (*MessageResponse, error) {
	body, contentType := httpx.WithFormBody(req.EncodeForm())
	data, err := b.do(ctx, "update book", id, &httpx.Request{
		Method: http.MethodPut,
		Path:   bookPath(id),
		Header: http.Header{"Content-Type": {contentType}},
		Body:   body,
	})
	if err != nil {
		return nil, err
	}
	return decodeMessage(data)
}

func (b *httpBackend) Delete(ctx context.Context, id int64) error {
	_, err := b.do(ctx, "delete book", id, &httpx.Request{
		Method: http.MethodDelete,
		Path:   bookPath(id),
	})
	return err
}

func (b *httpBackend) do(ctx context.Context, op string, id int64, req *httpx.Request) ([]byte, error) {
	if b == nil || b.client == nil {
		return nil, fmt.Errorf("books: http backend not configured")
	}
	resp, err := b.client.Do(ctx, req)
	if err != nil {
		return nil, mapError(op, id, err)
	}
	data, err := httpx.ReadAllAndClose(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	return data, nil
}

func mapError(op string, id int64, err error) error {
	var httpErr *httpx.HTTPError
	if !errors.As(err, &httpErr) {
		return &NetworkError{Op: op, Err: err}
	}

	env, _ := bookapi.DecodeError(httpErr.Body)
	switch {
	case httpErr.NotFound():
		return &NotFoundError{ID: id, Message: env.Message}
	case httpErr.Rejected():
		verr := &ValidationError{Message: env.Message}
		for _, f := range env.Fields {
			verr.Fields = append(verr.Fields, FieldError{Field: f.Field, Rule: f.Rule})
		}
		return verr
	default:
		return &ServerError{Status: httpErr.StatusCode, Message: env.Message, Body: httpErr.Body}
	}
}

func decodeMessage(data []byte) (*MessageResponse, error) {
	out := &MessageResponse{}
	if err := bookapi.Decode(data, out); err != nil {
		return nil, fmt.Errorf("books: decode message response: %w", err)
	}
	return out, nil
}

func bookPath(id int64) string {
	return fmt.Sprintf("/books/%d", id)
}

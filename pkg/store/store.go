package store

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/minibooks/bookshelf_sdk_go/pkg/books"
)

//go:generate mockgen -source=store.go -destination=mock_api_test.go -package=store

// API is the part of *books.Client the store calls.
type API interface {
	ListBooks(ctx context.Context) ([]books.Book, error)
	CreateBook(ctx context.Context, req books.CreateRequest) (*books.MessageResponse, error)
	UpdateBook(ctx context.Context, id int64, req books.UpdateRequest) (*books.MessageResponse, error)
	DeleteBook(ctx context.Context, id int64) error
}

var _ API = (*books.Client)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger routes the store's diagnostics to l.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// Store owns the catalogue state and is the only thing that mutates it.
type Store struct {
	api API
	log logrus.FieldLogger

	// opMu serialises operations; dispatchMu orders reduce+notify pairs.
	opMu       sync.Mutex
	dispatchMu sync.Mutex

	mu    sync.RWMutex
	state State

	subMu   sync.Mutex
	subs    map[int]func(State)
	nextSub int

	initOnce sync.Once
}

// New returns a Store with an empty state. No request is made until Init or
// an operation is called.
func New(api API, opts ...Option) *Store {
	s := &Store{
		api:   api,
		log:   logrus.StandardLogger(),
		state: State{Books: []books.Book{}},
		subs:  make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Subscribe registers fn to receive every state produced by Dispatch, in
// order. Listeners run synchronously and must not call Dispatch or any
// operation. The returned func removes the listener.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

// Dispatch applies a to the state, notifies listeners and returns the new
// state.
func (s *Store) Dispatch(a Action) State {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	s.state = Reduce(s.state, a)
	snap := s.state.clone()
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"action":  a.Type.String(),
		"books":   len(snap.Books),
		"loading": snap.Loading,
	}).Debug("store action applied")

	s.subMu.Lock()
	listeners := make([]func(State), 0, len(s.subs))
	for id := 0; id < s.nextSub; id++ {
		if fn, ok := s.subs[id]; ok {
			listeners = append(listeners, fn)
		}
	}
	s.subMu.Unlock()

	for _, fn := range listeners {
		fn(snap.clone())
	}
	return snap
}

// Init performs the initial fetch. Only the first call issues a request;
// later calls return the current state.
func (s *Store) Init(ctx context.Context) State {
	ran := false
	var st State
	s.initOnce.Do(func() {
		ran = true
		st = s.FetchBooks(ctx)
	})
	if !ran {
		return s.State()
	}
	return st
}

// FetchBooks replaces the book list with the service's current catalogue.
// On failure the previous books are kept and Error is set.
func (s *Store) FetchBooks(ctx context.Context) State {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.fetch(ctx)
}

// CreateBook submits req and, on success, refetches the whole list. The
// service does not return the created record, so no local entry is
// synthesised.
func (s *Store) CreateBook(ctx context.Context, req books.CreateRequest) State {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.Dispatch(SetLoading(true))
	if _, err := s.api.CreateBook(ctx, req); err != nil {
		return s.fail("create book", err, MessageCreateFailed)
	}
	return s.fetch(ctx)
}

// UpdateBook sends a partial update and, on success, refetches the list.
func (s *Store) UpdateBook(ctx context.Context, id int64, req books.UpdateRequest) State {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.Dispatch(SetLoading(true))
	if _, err := s.api.UpdateBook(ctx, id, req); err != nil {
		return s.fail("update book", err, MessageUpdateFailed)
	}
	return s.fetch(ctx)
}

// DeleteBook deletes a book and removes it locally without refetching.
func (s *Store) DeleteBook(ctx context.Context, id int64) State {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.Dispatch(SetLoading(true))
	if err := s.api.DeleteBook(ctx, id); err != nil {
		return s.fail("delete book", err, MessageDeleteFailed)
	}
	return s.Dispatch(DeleteBook(id))
}

// ClearError drops the current error message. It does not wait for an
// in-flight operation.
func (s *Store) ClearError() State {
	return s.Dispatch(SetError(""))
}

func (s *Store) fetch(ctx context.Context) State {
	s.Dispatch(SetLoading(true))
	list, err := s.api.ListBooks(ctx)
	if err != nil {
		return s.fail("fetch books", err, MessageFetchFailed)
	}
	return s.Dispatch(SetBooks(list))
}

func (s *Store) fail(op string, err error, fallback string) State {
	msg := ErrorMessage(err, fallback)
	s.log.WithError(err).WithField("op", op).Warn("store operation failed")
	return s.Dispatch(SetError(msg))
}

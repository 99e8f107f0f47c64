package bookshelf

import (
	"fmt"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/minibooks/bookshelf_sdk_go/internal/devseed"
	"github.com/minibooks/bookshelf_sdk_go/internal/httpx"
	"github.com/minibooks/bookshelf_sdk_go/pkg/books"
	"github.com/minibooks/bookshelf_sdk_go/pkg/books/mock"
	"github.com/minibooks/bookshelf_sdk_go/pkg/store"
)

// UserAgent identifies this SDK on every request to the catalogue service.
const UserAgent = "bookshelf-sdk-go/1"

// Runtime bundles a catalogue client with the store built on top of it.
type Runtime struct {
	Mode   string
	Client *books.Client
	Store  *store.Store
	Logger *logrus.Logger

	// Mock is the in-process catalogue in mock mode, nil otherwise.
	Mock *mock.Mock
}

// NewFromEnv builds a Runtime from .env.local and the BOOKSHELF_* variables.
func NewFromEnv() (*Runtime, error) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return New(cfg)
}

// New builds a Runtime for cfg, filling empty fields from DefaultConfig. The
// store is returned un-initialised; callers run Store.Init when they are ready
// to show data.
func New(cfg Config) (*Runtime, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := NewLogger(cfg.LogLevel)

	rt := &Runtime{Mode: cfg.Mode, Logger: logger}
	switch cfg.Mode {
	case ModeHTTP:
		client, err := books.New(cfg.APIURL,
			httpx.WithLogger(logger),
			httpx.WithHeaders(http.Header{"User-Agent": {UserAgent}}),
			httpx.WithTimeout(cfg.Timeout),
			httpx.WithRateLimit(cfg.RateLimit, 1),
		)
		if err != nil {
			return nil, fmt.Errorf("bookshelf: init HTTP client: %w", err)
		}
		rt.Client = client
	case ModeMock:
		m := mock.New()
		if cfg.MockSeed != "" {
			records, err := devseed.LoadBookSeed(cfg.MockSeed)
			if err != nil {
				return nil, fmt.Errorf("bookshelf: load mock seed: %w", err)
			}
			if err := m.Seed(records); err != nil {
				return nil, fmt.Errorf("bookshelf: apply mock seed: %w", err)
			}
		}
		rt.Mock = m
		rt.Client = books.NewWithBackend(m)
	}

	rt.Store = store.New(rt.Client, store.WithLogger(logger))
	logger.WithField("mode", rt.Mode).Debug("bookshelf runtime ready")
	return rt, nil
}

// NewLogger returns a text logger writing to stderr at the given level.
// Unknown levels fall back to info.
func NewLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

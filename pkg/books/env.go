package books

import (
	"fmt"
	"os"
	"strings"

	"github.com/minibooks/bookshelf_sdk_go/internal/httpx"
)

const (
	// EnvAPIURL selects the catalogue service base URL.
	EnvAPIURL = "BOOKSHELF_API_URL"
	// DefaultBaseURL is used when EnvAPIURL is unset.
	DefaultBaseURL = "http://localhost:9000"
)

// BaseURLFromEnv returns the configured base URL or DefaultBaseURL.
func BaseURLFromEnv() string {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		return v
	}
	return DefaultBaseURL
}

// NewFromEnv builds an HTTP client for the base URL named by EnvAPIURL.
func NewFromEnv(opts ...httpx.Option) (*Client, error) {
	client, err := New(BaseURLFromEnv(), opts...)
	if err != nil {
		return nil, fmt.Errorf("books: init HTTP client: %w", err)
	}
	return client, nil
}

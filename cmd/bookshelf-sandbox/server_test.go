package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minibooks/bookshelf_sdk_go/internal/httpx"
	"github.com/minibooks/bookshelf_sdk_go/pkg/books"
	"github.com/minibooks/bookshelf_sdk_go/pkg/books/mock"
)

func newTestServer(t *testing.T, fail failConfig) (*httptest.Server, *mock.Mock) {
	t.Helper()
	logger, _ := logtest.NewNullLogger()
	catalogue := mock.New()
	srv := httptest.NewServer(newRouter(catalogue, logger, 0, fail))
	t.Cleanup(srv.Close)
	return srv, catalogue
}

func newTestClient(t *testing.T, baseURL string) *books.Client {
	t.Helper()
	logger, _ := logtest.NewNullLogger()
	client, err := books.New(baseURL, httpx.WithLogger(logger))
	require.NoError(t, err)
	return client
}

func TestSandboxRoundTrip(t *testing.T) {
	srv, catalogue := newTestServer(t, failConfig{})
	client := newTestClient(t, srv.URL)
	ctx := context.Background()

	resp, err := client.CreateBook(ctx, books.CreateRequest{
		Title:           "Dune",
		Author:          "Frank Herbert",
		PublicationDate: "1965-08-01",
		NumberOfPages:   412,
		ISBN:            "9780441013593",
	})
	require.NoError(t, err)
	assert.Equal(t, mock.MessageCreated, resp.Message)
	assert.Equal(t, 1, catalogue.Len())

	list, err := client.ListBooks(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	id := list[0].ID

	resp, err = client.UpdateBook(ctx, id, books.UpdateRequest{Title: books.String("Dune Messiah")})
	require.NoError(t, err)
	assert.Equal(t, mock.MessageUpdated, resp.Message)

	got, err := client.GetBook(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", got.Title)
	assert.Equal(t, "Frank Herbert", got.Author)

	require.NoError(t, client.DeleteBook(ctx, id))
	assert.Equal(t, 0, catalogue.Len())

	_, err = client.GetBook(ctx, id)
	assert.True(t, errors.Is(err, books.ErrNotFound))
}

func TestSandboxCreateValidation(t *testing.T) {
	srv, catalogue := newTestServer(t, failConfig{})

	form := url.Values{"title": {"Only a title"}, "number_of_pages": {"0"}}
	res, err := http.Post(srv.URL+"/books", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, 0, catalogue.Len())

	client := newTestClient(t, srv.URL)
	_, err = client.CreateBook(context.Background(), books.CreateRequest{Title: "No author"})
	var verr *books.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Field("author"))
}

func TestSandboxNonNumericPages(t *testing.T) {
	srv, _ := newTestServer(t, failConfig{})

	form := url.Values{"title": {"T"}, "author": {"A"}, "number_of_pages": {"many"}}
	res, err := http.Post(srv.URL+"/books", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestSandboxInvalidID(t *testing.T) {
	srv, _ := newTestServer(t, failConfig{})

	res, err := http.Get(srv.URL + "/books/abc")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestSandboxEmptyUpdateRejected(t *testing.T) {
	srv, catalogue := newTestServer(t, failConfig{})
	_, err := catalogue.CreateBook(context.Background(), books.CreateRequest{Title: "T", Author: "A"})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPut, srv.URL+"/books/1", strings.NewReader(""))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestSandboxFailureInjection(t *testing.T) {
	srv, _ := newTestServer(t, failConfig{rate: 1, code: http.StatusServiceUnavailable})
	client := newTestClient(t, srv.URL)

	_, err := client.ListBooks(context.Background())
	var serr *books.ServerError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, http.StatusServiceUnavailable, serr.Status)
	assert.Equal(t, "failure injected", serr.ServerMessage())
}

func TestSandboxUnknownRoute(t *testing.T) {
	srv, _ := newTestServer(t, failConfig{})

	res, err := http.Get(srv.URL + "/authors")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestParseFailConfig(t *testing.T) {
	cfg, err := parseFailConfig("rate=0.25,code=503")
	require.NoError(t, err)
	assert.Equal(t, 0.25, cfg.rate)
	assert.Equal(t, 503, cfg.code)

	cfg, err = parseFailConfig("rate=0.5")
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, cfg.code)

	cfg, err = parseFailConfig("")
	require.NoError(t, err)
	assert.Zero(t, cfg.rate)

	for _, raw := range []string{"rate", "rate=x", "rate=2", "code=200", "speed=1"} {
		_, err := parseFailConfig(raw)
		assert.Error(t, err, raw)
	}
}

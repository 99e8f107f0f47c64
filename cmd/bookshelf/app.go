package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/minibooks/bookshelf_sdk_go/pkg/books"
	"github.com/minibooks/bookshelf_sdk_go/pkg/bookshelf"
	"github.com/minibooks/bookshelf_sdk_go/pkg/store"
)

const requestTimeout = 30 * time.Second

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "bookshelf",
		Usage:     "browse and edit a book catalogue",
		Writer:    out,
		ErrWriter: out,
		// main owns the process exit so commands stay testable.
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: globalFlags(),
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "list every book",
				Action: listAction,
			},
			{
				Name:      "show",
				Usage:     "show one book",
				ArgsUsage: "<id>",
				Action:    showAction,
			},
			{
				Name:   "add",
				Usage:  "add a book",
				Flags:  bookFlags(true),
				Action: addAction,
			},
			{
				Name:      "edit",
				Usage:     "change fields of a book",
				ArgsUsage: "[flags] <id>",
				Flags:     bookFlags(false),
				Action:    editAction,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "delete a book",
				ArgsUsage: "<id>",
				Action:    deleteAction,
			},
		},
	}
}

// defaultLogLevel keeps per-request logs off the terminal unless the config,
// environment or flag asks for them.
const defaultLogLevel = "warn"

// globalFlags override the layered config; the BOOKSHELF_* environment is
// read by bookshelf.LoadConfigFrom.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config file"},
		&cli.StringFlag{Name: "api-url", Usage: "catalogue service base URL"},
		&cli.StringFlag{Name: "mode", Usage: "runtime mode (http or mock)"},
		&cli.StringFlag{Name: "seed", Usage: "seed file for mock mode"},
		&cli.StringFlag{Name: "log-level", Usage: "log level (default " + defaultLogLevel + ")"},
	}
}

func bookFlags(create bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Required: create},
		&cli.StringFlag{Name: "author", Required: create},
		&cli.StringFlag{Name: "cover", Usage: "cover image URL"},
		&cli.StringFlag{Name: "description"},
		&cli.StringFlag{Name: "date", Usage: "publication date (YYYY-MM-DD)", Required: create},
		&cli.IntFlag{Name: "pages", Required: create},
		&cli.StringFlag{Name: "isbn", Usage: "13 digit ISBN", Required: create},
	}
}

func loadConfig(c *cli.Context) (bookshelf.Config, error) {
	base := bookshelf.DefaultConfig()
	base.LogLevel = defaultLogLevel
	cfg, err := bookshelf.LoadConfigFrom(base, c.String("config"))
	if err != nil {
		return bookshelf.Config{}, err
	}
	overrides := map[string]*string{
		"api-url":   &cfg.APIURL,
		"mode":      &cfg.Mode,
		"seed":      &cfg.MockSeed,
		"log-level": &cfg.LogLevel,
	}
	for name, dst := range overrides {
		if c.IsSet(name) {
			*dst = strings.TrimSpace(c.String(name))
		}
	}
	return cfg, nil
}

func runtimeFor(c *cli.Context) (*bookshelf.Runtime, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	return bookshelf.New(cfg)
}

func listAction(c *cli.Context) error {
	rt, err := runtimeFor(c)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Context, requestTimeout)
	defer cancel()

	st := rt.Store.Init(ctx)
	if st.HasError() {
		return cli.Exit(st.Error, 1)
	}
	return renderBooks(c.App.Writer, st.Books)
}

func showAction(c *cli.Context) error {
	id, err := idArg(c)
	if err != nil {
		return err
	}
	rt, err := runtimeFor(c)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Context, requestTimeout)
	defer cancel()

	book, err := rt.Client.GetBook(ctx, id)
	if err != nil {
		return cli.Exit(store.ErrorMessage(err, "Failed to fetch book"), 1)
	}
	return renderBook(c.App.Writer, *book)
}

func addAction(c *cli.Context) error {
	req := books.CreateRequest{
		Title:           c.String("title"),
		Author:          c.String("author"),
		PublicationDate: c.String("date"),
		NumberOfPages:   c.Int("pages"),
		ISBN:            c.String("isbn"),
	}
	if c.IsSet("cover") {
		req.CoverImageURL = books.String(c.String("cover"))
	}
	if c.IsSet("description") {
		req.Description = books.String(c.String("description"))
	}
	if err := req.Validate(); err != nil {
		return cli.Exit(err.Error(), 2)
	}

	rt, err := runtimeFor(c)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Context, requestTimeout)
	defer cancel()

	st := rt.Store.CreateBook(ctx, req)
	if st.HasError() {
		return cli.Exit(st.Error, 1)
	}
	fmt.Fprintln(c.App.Writer, "book added")
	return renderBooks(c.App.Writer, st.Books)
}

func editAction(c *cli.Context) error {
	id, err := idArg(c)
	if err != nil {
		return err
	}
	var req books.UpdateRequest
	for name, dst := range map[string]**string{
		"title":       &req.Title,
		"author":      &req.Author,
		"cover":       &req.CoverImageURL,
		"description": &req.Description,
		"date":        &req.PublicationDate,
		"isbn":        &req.ISBN,
	} {
		if c.IsSet(name) {
			*dst = books.String(c.String(name))
		}
	}
	if c.IsSet("pages") {
		req.NumberOfPages = books.Int(c.Int("pages"))
	}
	if err := req.Validate(); err != nil {
		return cli.Exit(err.Error(), 2)
	}

	rt, err := runtimeFor(c)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Context, requestTimeout)
	defer cancel()

	st := rt.Store.UpdateBook(ctx, id, req)
	if st.HasError() {
		return cli.Exit(st.Error, 1)
	}
	book, ok := st.Book(id)
	if !ok {
		return cli.Exit(fmt.Sprintf("book %d missing after update", id), 1)
	}
	return renderBook(c.App.Writer, book)
}

func deleteAction(c *cli.Context) error {
	id, err := idArg(c)
	if err != nil {
		return err
	}
	rt, err := runtimeFor(c)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Context, requestTimeout)
	defer cancel()

	if st := rt.Store.Init(ctx); st.HasError() {
		return cli.Exit(st.Error, 1)
	}
	st := rt.Store.DeleteBook(ctx, id)
	if st.HasError() {
		return cli.Exit(st.Error, 1)
	}
	fmt.Fprintf(c.App.Writer, "book %d deleted, %d remaining\n", id, len(st.Books))
	return nil
}

func idArg(c *cli.Context) (int64, error) {
	if c.NArg() != 1 {
		return 0, cli.Exit("expected exactly one book id", 2)
	}
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil || id <= 0 {
		return 0, cli.Exit(fmt.Sprintf("invalid book id %q", c.Args().First()), 2)
	}
	return id, nil
}

// exitCode extracts the status carried by a cli.ExitCoder.
func exitCode(err error) int {
	var coder cli.ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	if err != nil {
		return 1
	}
	return 0
}

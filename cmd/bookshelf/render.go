package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/minibooks/bookshelf_sdk_go/pkg/books"
)

func renderBooks(w io.Writer, list []books.Book) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "no books")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tPUBLISHED\tPAGES\tISBN")
	for _, b := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n",
			b.ID, b.Title, b.Author, b.PublicationDate, b.NumberOfPages, b.ISBN)
	}
	return tw.Flush()
}

func renderBook(w io.Writer, b books.Book) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	rows := []struct{ k, v string }{
		{"id", fmt.Sprint(b.ID)},
		{"title", b.Title},
		{"author", b.Author},
		{"published", b.PublicationDate},
		{"pages", fmt.Sprint(b.NumberOfPages)},
		{"isbn", b.ISBN},
		{"cover", b.CoverImageURL},
		{"description", b.Description},
	}
	for _, r := range rows {
		if r.v == "" {
			continue
		}
		fmt.Fprintf(tw, "%s:\t%s\n", r.k, r.v)
	}
	return tw.Flush()
}

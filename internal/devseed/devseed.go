// Package devseed loads seed catalogues for the mock backend and the sandbox.
package devseed

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/minibooks/bookshelf_sdk_go/pkg/books"
)

// BookSeedEntry is one seeded record. ID may be zero to let the mock assign one.
type BookSeedEntry struct {
	ID              int64  `json:"id" yaml:"id"`
	Title           string `json:"title" yaml:"title"`
	Author          string `json:"author" yaml:"author"`
	CoverImageURL   string `json:"cover_image_url" yaml:"cover_image_url"`
	Description     string `json:"description" yaml:"description"`
	PublicationDate string `json:"publication_date" yaml:"publication_date"`
	NumberOfPages   int    `json:"number_of_pages" yaml:"number_of_pages"`
	ISBN            string `json:"isbn" yaml:"isbn"`
}

// Book converts the entry to a catalogue record.
func (e BookSeedEntry) Book() books.Book {
	return books.Book{
		ID:              e.ID,
		Title:           e.Title,
		Author:          e.Author,
		CoverImageURL:   e.CoverImageURL,
		Description:     e.Description,
		PublicationDate: e.PublicationDate,
		NumberOfPages:   e.NumberOfPages,
		ISBN:            e.ISBN,
	}
}

// LoadBookSeed reads a JSON or YAML (by extension) list of books.
func LoadBookSeed(path string) ([]books.Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("devseed: read %s: %w", path, err)
	}

	var entries []BookSeedEntry
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &entries)
	default:
		err = json.Unmarshal(data, &entries)
	}
	if err != nil {
		return nil, fmt.Errorf("devseed: decode %s: %w", path, err)
	}

	out := make([]books.Book, 0, len(entries))
	for i, e := range entries {
		if strings.TrimSpace(e.Title) == "" {
			return nil, fmt.Errorf("devseed: entry %d in %s has no title", i, path)
		}
		out = append(out, e.Book())
	}
	return out, nil
}

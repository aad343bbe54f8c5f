// Package fixture reads seed documents from YAML files.
package fixture

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/domain"
)

// File is the on-disk layout: one list of documents per collection.
type File struct {
	Movies     []domain.Document `yaml:"movies"`
	Promotions []domain.Document `yaml:"promotions"`
	Articles   []domain.Document `yaml:"articles"`
}

// Collections keys the documents by collection name.
func (f File) Collections() map[string][]domain.Document {
	return map[string][]domain.Document{
		domain.CollectionMovies:     f.Movies,
		domain.CollectionPromotions: f.Promotions,
		domain.CollectionArticles:   f.Articles,
	}
}

// Load reads and validates a fixture file.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read fixture: %w", err)
	}
	return Parse(data)
}

// Parse decodes fixture YAML. Document ids must be unique per collection;
// empty ids are allowed and assigned by the store.
func Parse(data []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("parse fixture: %w", err)
	}
	for name, docs := range f.Collections() {
		seen := make(map[string]struct{}, len(docs))
		for i, doc := range docs {
			if doc.Data == nil {
				return File{}, fmt.Errorf("fixture: %s[%d] has no data", name, i)
			}
			if doc.ID == "" {
				continue
			}
			if _, dup := seen[doc.ID]; dup {
				return File{}, fmt.Errorf("fixture: duplicate %s id %q", name, doc.ID)
			}
			seen[doc.ID] = struct{}{}
		}
	}
	return f, nil
}

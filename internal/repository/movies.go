package repository

import (
	"context"
	"fmt"

	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/catalog"
	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/domain"
)

var _ catalog.Source = (*Repository)(nil)

// ListMovies returns every movie in insertion order.
func (r *Repository) ListMovies(ctx context.Context) ([]domain.MovieRecord, error) {
	docs, err := r.Movies.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	return moviesFromDocuments(docs), nil
}

// QueryMovies runs a pushed range query over the movies collection.
func (r *Repository) QueryMovies(ctx context.Context, spec catalog.RangeSpec) ([]domain.MovieRecord, error) {
	docs, err := r.Movies.Query(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("query movies: %w", err)
	}
	return moviesFromDocuments(docs), nil
}

// GetMovie fetches one movie by id.
func (r *Repository) GetMovie(ctx context.Context, id string) (domain.MovieRecord, error) {
	doc, err := r.Movies.GetByID(ctx, id)
	if err != nil {
		return domain.MovieRecord{}, err
	}
	return domain.MovieFromDocument(doc), nil
}

func moviesFromDocuments(docs []domain.Document) []domain.MovieRecord {
	movies := make([]domain.MovieRecord, len(docs))
	for i, doc := range docs {
		movies[i] = domain.MovieFromDocument(doc)
	}
	return movies
}

package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/domain"
	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/store"
)

// ErrNotFound indicates the requested document does not exist.
var ErrNotFound = errors.New("repository: not found")

// Repository aggregates the document collections the catalog reads.
type Repository struct {
	pool  *pgxpool.Pool
	store *store.Store

	Movies     *DocumentsRepository
	Promotions *DocumentsRepository
	Articles   *DocumentsRepository
}

// New constructs a Repository backed by the provided store.
func New(st *store.Store) *Repository {
	r := NewWithPool(st.Pool())
	r.store = st
	return r
}

// NewWithPool builds repositories directly from a pgx pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{
		pool:       pool,
		Movies:     &DocumentsRepository{pool: pool, collection: domain.CollectionMovies},
		Promotions: &DocumentsRepository{pool: pool, collection: domain.CollectionPromotions},
		Articles:   &DocumentsRepository{pool: pool, collection: domain.CollectionArticles},
	}
}

// Collection returns the repository for a collection name, or nil.
func (r *Repository) Collection(name string) *DocumentsRepository {
	switch name {
	case domain.CollectionMovies:
		return r.Movies
	case domain.CollectionPromotions:
		return r.Promotions
	case domain.CollectionArticles:
		return r.Articles
	default:
		return nil
	}
}

// HealthCheck pings the database, within the store's connect timeout when
// the repository was built from a Store.
func (r *Repository) HealthCheck(ctx context.Context) error {
	if r.store != nil {
		return r.store.HealthCheck(ctx)
	}
	return r.pool.Ping(ctx)
}

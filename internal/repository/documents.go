package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/catalog"
	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/dates"
	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/domain"
	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/store"
)

// DocumentsRepository reads and writes one collection of the documents table.
type DocumentsRepository struct {
	pool       *pgxpool.Pool
	collection string
}

const documentColumns = `id, data`

// rangeColumns maps document date fields to their typed projections.
var rangeColumns = map[string]string{
	domain.FieldReleaseDate: "release_at",
	domain.FieldEndDate:     "end_at",
}

// Create stores doc, assigning a random id when it has none. Writing an id
// that already exists replaces the stored document.
func (r *DocumentsRepository) Create(ctx context.Context, doc domain.Document) (domain.Document, error) {
	return r.create(ctx, r.pool, doc)
}

// CreateMany stores docs in one transaction.
func (r *DocumentsRepository) CreateMany(ctx context.Context, docs []domain.Document) ([]domain.Document, error) {
	out := make([]domain.Document, 0, len(docs))
	err := store.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, doc := range docs {
			stored, err := r.create(ctx, tx, doc)
			if err != nil {
				return err
			}
			out = append(out, stored)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *DocumentsRepository) create(ctx context.Context, q querier, doc domain.Document) (domain.Document, error) {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.Data == nil {
		doc.Data = map[string]any{}
	}
	payload, err := json.Marshal(doc.Data)
	if err != nil {
		return domain.Document{}, fmt.Errorf("encode %s/%s: %w", r.collection, doc.ID, err)
	}

	query := fmt.Sprintf(`
        INSERT INTO documents (collection, id, data, release_at, end_at, created_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (collection, id)
        DO UPDATE SET data = EXCLUDED.data,
                      release_at = EXCLUDED.release_at,
                      end_at = EXCLUDED.end_at,
                      created_at = EXCLUDED.created_at
        RETURNING %s
    `, documentColumns)

	row := q.QueryRow(ctx, query,
		r.collection,
		doc.ID,
		payload,
		projection(doc.Data, domain.FieldReleaseDate),
		projection(doc.Data, domain.FieldEndDate),
		projection(doc.Data, domain.FieldCreatedAt),
	)
	return scanDocument(row)
}

// timestamptz bounds: 4713 BC through 294276 AD.
var (
	minColumnTime = time.Date(-4712, time.January, 1, 0, 0, 0, 0, time.UTC)
	maxColumnTime = time.Date(294276, time.December, 31, 23, 59, 59, 999999000, time.UTC)
)

// projection normalizes a date field for its typed column. Values that do not
// normalize, or fall outside what timestamptz can hold, are stored as NULL so
// the document still lands in the unclassifiable queries.
func projection(data map[string]any, field string) *time.Time {
	t := domain.NormalizedTime(dates.FromAny(data[field]))
	if t == nil || t.Before(minColumnTime) || t.After(maxColumnTime) {
		return nil
	}
	return t
}

// GetByID fetches a single document.
func (r *DocumentsRepository) GetByID(ctx context.Context, id string) (domain.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM documents WHERE collection = $1 AND id = $2`, documentColumns)
	doc, err := scanDocument(r.pool.QueryRow(ctx, query, r.collection, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Document{}, ErrNotFound
		}
		return domain.Document{}, err
	}
	return doc, nil
}

// List returns every document in insertion order.
func (r *DocumentsRepository) List(ctx context.Context) ([]domain.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM documents WHERE collection = $1 ORDER BY seq`, documentColumns)
	return r.collect(ctx, query, r.collection)
}

// ListByCreated returns documents newest first by createdAt; documents with
// an unusable createdAt follow in insertion order.
func (r *DocumentsRepository) ListByCreated(ctx context.Context) ([]domain.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM documents WHERE collection = $1 ORDER BY created_at DESC NULLS LAST, seq`, documentColumns)
	return r.collect(ctx, query, r.collection)
}

// Query evaluates a range spec against the typed date projections. Bounds
// compare at the column's microsecond precision.
func (r *DocumentsRepository) Query(ctx context.Context, spec catalog.RangeSpec) ([]domain.Document, error) {
	query, args, err := r.buildRangeQuery(spec)
	if err != nil {
		return nil, err
	}
	return r.collect(ctx, query, args...)
}

func (r *DocumentsRepository) buildRangeQuery(spec catalog.RangeSpec) (string, []any, error) {
	if err := spec.Validate(); err != nil {
		return "", nil, err
	}

	args := []any{r.collection}
	arg := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	where := []string{"collection = $1"}
	for _, cond := range spec.Where {
		column := rangeColumns[cond.Field]
		switch cond.Op {
		case catalog.OpUnset:
			where = append(where, column+" IS NULL")
		case catalog.OpLT:
			where = append(where, fmt.Sprintf("%s < %s", column, arg(cond.Value)))
		case catalog.OpLTE:
			where = append(where, fmt.Sprintf("%s <= %s", column, arg(cond.Value)))
		case catalog.OpGT:
			where = append(where, fmt.Sprintf("%s > %s", column, arg(cond.Value)))
		case catalog.OpGTE:
			where = append(where, fmt.Sprintf("%s >= %s", column, arg(cond.Value)))
		}
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(documentColumns)
	b.WriteString(" FROM documents WHERE ")
	b.WriteString(strings.Join(where, " AND "))
	b.WriteString(" ORDER BY ")
	if spec.OrderBy.Field != "" {
		dir := "ASC"
		if spec.OrderBy.Direction == catalog.Descending {
			dir = "DESC"
		}
		b.WriteString(fmt.Sprintf("%s %s NULLS LAST, ", rangeColumns[spec.OrderBy.Field], dir))
	}
	b.WriteString("seq")
	return b.String(), args, nil
}

func (r *DocumentsRepository) collect(ctx context.Context, query string, args ...any) ([]domain.Document, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]domain.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

func scanDocument(row pgx.Row) (domain.Document, error) {
	var (
		doc     domain.Document
		payload []byte
	)
	if err := row.Scan(&doc.ID, &payload); err != nil {
		return domain.Document{}, err
	}
	doc.Data = map[string]any{}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &doc.Data); err != nil {
			return domain.Document{}, fmt.Errorf("decode document %s: %w", doc.ID, err)
		}
	}
	return doc, nil
}

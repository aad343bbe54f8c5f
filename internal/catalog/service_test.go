package catalog

import (
	"bytes"
	"context"
	"errors"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/dates"
	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/domain"
)

type fakeSource struct {
	mu         sync.Mutex
	movies     []domain.MovieRecord
	promotions []domain.PromotionRecord
	strict     bool
	moviesErr  error
	promoErr   error
	queries    []RangeSpec
	lists      int
}

func (f *fakeSource) ListMovies(ctx context.Context) ([]domain.MovieRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.moviesErr != nil {
		return nil, f.moviesErr
	}
	return append([]domain.MovieRecord(nil), f.movies...), nil
}

func (f *fakeSource) QueryMovies(ctx context.Context, spec RangeSpec) ([]domain.MovieRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, spec)
	if f.moviesErr != nil {
		return nil, f.moviesErr
	}
	if f.strict {
		spec = spec.Strict()
	}
	return spec.Apply(f.movies), nil
}

func (f *fakeSource) ListPromotions(ctx context.Context) ([]domain.PromotionRecord, error) {
	if f.promoErr != nil {
		return nil, f.promoErr
	}
	return f.promotions, nil
}

func quietLogger() *log.Logger {
	return log.New(&bytes.Buffer{}, "", 0)
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("query")
	require.NoError(t, err)
	assert.Equal(t, StrategyQuery, s)

	_, err = ParseStrategy("magic")
	assert.Error(t, err)
}

func TestService_StrategiesAgree(t *testing.T) {
	src := &fakeSource{movies: fixtureMovies(), strict: true}

	scan := NewService(src, ServiceOptions{Strategy: StrategyScan, Logger: quietLogger()})
	query := NewService(src, ServiceOptions{
		Strategy: StrategyQuery,
		Planner:  Planner{Slack: time.Second},
		Logger:   quietLogger(),
	})

	for _, ref := range []time.Time{jan15, jan15.AddDate(0, 0, 20), jan15.AddDate(0, -2, 0)} {
		a, err := scan.Load(context.Background(), ref)
		require.NoError(t, err)
		b, err := query.Load(context.Background(), ref)
		require.NoError(t, err)

		assert.Equal(t, ids(a.Current), ids(b.Current), "current at %s", ref)
		assert.Equal(t, ids(a.Upcoming), ids(b.Upcoming), "upcoming at %s", ref)
		assert.Equal(t, ids(a.Unclassifiable), ids(b.Unclassifiable), "unclassifiable at %s", ref)
		assert.Equal(t, a.Failures, b.Failures)
	}
	assert.Equal(t, 3, src.lists)
	assert.Len(t, src.queries, 12)
}

func TestService_LoadOrdersResults(t *testing.T) {
	src := &fakeSource{
		movies: []domain.MovieRecord{
			movie("older", dates.FromString("2024-01-01"), dates.FromString("2024-02-01")),
			movie("newer", dates.FromString("2024-01-10"), dates.FromString("2024-02-01")),
			movie("far", dates.FromString("2024-09-01"), dates.Absent()),
			movie("near", dates.FromString("2024-02-01"), dates.Absent()),
		},
		promotions: []domain.PromotionRecord{
			{ID: "p-old", CreatedAt: dates.FromString("2023-01-01")},
			{ID: "p-new", CreatedAt: dates.FromString("2024-01-01")},
		},
	}
	svc := NewService(src, ServiceOptions{Logger: quietLogger()})

	snap, err := svc.Load(context.Background(), jan15)
	require.NoError(t, err)
	assert.Equal(t, StrategyScan, snap.Strategy)
	assert.Equal(t, jan15, snap.Reference)
	assert.Equal(t, []string{"newer", "older"}, ids(snap.Current))
	assert.Equal(t, []string{"near", "far"}, ids(snap.Upcoming))
	require.Len(t, snap.Promotions, 2)
	assert.Equal(t, "p-new", snap.Promotions[0].ID)
	assert.NotNil(t, snap.Unclassifiable)
	assert.NotNil(t, snap.Failures)
}

func TestService_FetchFailureIsNotEmptyCatalog(t *testing.T) {
	boom := errors.New("connection reset")
	tests := []struct {
		name string
		src  *fakeSource
		op   string
	}{
		{"movies", &fakeSource{moviesErr: boom}, "list movies"},
		{"promotions", &fakeSource{promoErr: boom}, "list promotions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			svc := NewService(tt.src, ServiceOptions{Logger: log.New(&logs, "", 0)})

			snap, err := svc.Load(context.Background(), jan15)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrFetch)
			assert.ErrorIs(t, err, boom)

			var fetchErr *FetchError
			require.ErrorAs(t, err, &fetchErr)
			assert.Equal(t, tt.op, fetchErr.Op)

			assert.NotNil(t, snap.Current)
			assert.Empty(t, snap.Current)
			assert.Empty(t, snap.Upcoming)
			assert.Contains(t, logs.String(), "load failed")
		})
	}
}

func TestService_QueryFailure(t *testing.T) {
	src := &fakeSource{moviesErr: errors.New("index missing")}
	svc := NewService(src, ServiceOptions{Strategy: StrategyQuery, Logger: quietLogger()})

	_, err := svc.Load(context.Background(), jan15)
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "query movies", fetchErr.Op)
}

type slowSource struct{ fakeSource }

func (s *slowSource) ListMovies(ctx context.Context) ([]domain.MovieRecord, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestService_FetchTimeout(t *testing.T) {
	svc := NewService(&slowSource{}, ServiceOptions{FetchTimeout: 20 * time.Millisecond, Logger: quietLogger()})

	_, err := svc.Load(context.Background(), jan15)
	assert.ErrorIs(t, err, ErrFetch)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

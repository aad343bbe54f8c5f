package docstore

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/catalog"
	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/dates"
	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/domain"
)

var jan15 = time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)

func fixture() map[string][]domain.Document {
	return map[string][]domain.Document{
		domain.CollectionMovies: {
			{ID: "now", Data: map[string]any{"title": "Now", "releaseDate": "2024-01-01", "endDate": "2024-01-31"}},
			{ID: "edge", Data: map[string]any{"title": "Edge", "releaseDate": map[string]any{"seconds": jan15.Unix(), "nanoseconds": 0}, "endDate": jan15.UnixMilli()}},
			{ID: "soon", Data: map[string]any{"title": "Soon", "releaseDate": "2024-06-01"}},
			{ID: "broken", Data: map[string]any{"title": "Broken", "releaseDate": "not-a-date"}},
			{ID: "gone", Data: map[string]any{"title": "Gone", "releaseDate": "2023-01-01", "endDate": "2023-02-01"}},
		},
		domain.CollectionPromotions: {
			{ID: "p1", Data: map[string]any{"title": "Promo", "articleId": "a1", "createdAt": "2024-01-10"}},
		},
		domain.CollectionArticles: {
			{ID: "a1", Data: map[string]any{"title": "Article", "content": "Body"}},
		},
	}
}

func newTestClient(t *testing.T, mem *Memory, apiKey string) *Client {
	t.Helper()
	srv := httptest.NewServer(mem.Handler("secret", log.New(io.Discard, "", 0)))
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL, apiKey, 2*time.Second, log.New(io.Discard, "", 0))
	require.NoError(t, err)
	return client
}

func TestNewClient_RejectsRelativeURL(t *testing.T) {
	_, err := NewClient("localhost:9000", "", time.Second, nil)
	assert.Error(t, err)
}

func TestClient_ListAndGet(t *testing.T) {
	client := newTestClient(t, NewMemory(fixture()), "secret")
	ctx := context.Background()

	require.NoError(t, client.HealthCheck(ctx))

	movies, err := client.ListMovies(ctx)
	require.NoError(t, err)
	require.Len(t, movies, 5)
	assert.Equal(t, "now", movies[0].ID)

	edge := movies[1]
	assert.Equal(t, dates.KindTimestamp, edge.ReleaseDate.Kind())
	assert.Equal(t, dates.KindNumeric, edge.EndDate.Kind())
	end, err := dates.Normalize(edge.EndDate)
	require.NoError(t, err)
	assert.Equal(t, jan15, end)

	movie, err := client.GetMovie(ctx, "soon")
	require.NoError(t, err)
	assert.Equal(t, "Soon", movie.Title)

	_, err = client.GetMovie(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	article, err := client.GetArticle(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "Body", article.Content)

	promos, err := client.ListPromotions(ctx)
	require.NoError(t, err)
	require.Len(t, promos, 1)
	assert.Equal(t, "a1", promos[0].ArticleID)
}

func TestClient_EmptyCollection(t *testing.T) {
	client := newTestClient(t, NewMemory(nil), "secret")
	promos, err := client.ListPromotions(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, promos)
	assert.Empty(t, promos)
}

func TestClient_WrongKeyIsAFetchError(t *testing.T) {
	client := newTestClient(t, NewMemory(fixture()), "wrong")
	svc := catalog.NewService(client, catalog.ServiceOptions{Logger: log.New(io.Discard, "", 0)})

	_, err := svc.Load(context.Background(), jan15)
	assert.ErrorIs(t, err, catalog.ErrFetch)
}

func TestClient_QueryStrategyMatchesScan(t *testing.T) {
	for _, strict := range []bool{false, true} {
		mem := NewMemory(fixture())
		mem.Strict = strict
		client := newTestClient(t, mem, "secret")
		logger := log.New(io.Discard, "", 0)

		scan := catalog.NewService(client, catalog.ServiceOptions{Strategy: catalog.StrategyScan, Logger: logger})
		query := catalog.NewService(client, catalog.ServiceOptions{
			Strategy: catalog.StrategyQuery,
			Planner:  catalog.Planner{Slack: time.Second},
			Logger:   logger,
		})

		want, err := scan.Load(context.Background(), jan15)
		require.NoError(t, err)
		got, err := query.Load(context.Background(), jan15)
		require.NoError(t, err)

		assert.Equal(t, movieIDs(want.Current), movieIDs(got.Current), "strict=%t", strict)
		assert.Equal(t, movieIDs(want.Upcoming), movieIDs(got.Upcoming), "strict=%t", strict)
		assert.Equal(t, movieIDs(want.Unclassifiable), movieIDs(got.Unclassifiable), "strict=%t", strict)
		assert.Equal(t, []string{"edge", "now"}, movieIDs(got.Current))
	}
}

func TestClient_QueryRejectsUnsupportedField(t *testing.T) {
	client := newTestClient(t, NewMemory(fixture()), "secret")
	_, err := client.QueryMovies(context.Background(), catalog.RangeSpec{
		Where: []catalog.Condition{{Field: "title", Op: catalog.OpLT}},
	})
	assert.ErrorIs(t, err, catalog.ErrUnsupportedField)
}

func TestMemory_QueryOnlyOnMovies(t *testing.T) {
	mem := NewMemory(fixture())
	_, err := mem.query(domain.CollectionPromotions, catalog.RangeSpec{})
	assert.True(t, errors.Is(err, errQueryCollection))

	mem.Put(domain.CollectionMovies, domain.Document{ID: "now", Data: map[string]any{"releaseDate": "2030-01-01"}})
	assert.Equal(t, 5, mem.Len(domain.CollectionMovies))
}

func TestMemory_AssignsMissingIDs(t *testing.T) {
	mem := NewMemory(map[string][]domain.Document{
		domain.CollectionPromotions: {{Data: map[string]any{"title": "Anonymous"}}},
	})
	mem.Put(domain.CollectionPromotions, domain.Document{Data: map[string]any{"title": "Later"}})

	docs := mem.list(domain.CollectionPromotions)
	require.Len(t, docs, 2)
	assert.NotEmpty(t, docs[0].ID)
	assert.NotEmpty(t, docs[1].ID)
	assert.NotEqual(t, docs[0].ID, docs[1].ID)
}

func TestClient_UnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, "", time.Second, log.New(io.Discard, "", 0))
	require.NoError(t, err)
	_, err = client.ListMovies(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func movieIDs(movies []domain.MovieRecord) []string {
	out := make([]string, len(movies))
	for i, m := range movies {
		out[i] = m.ID
	}
	return out
}

package docstore

import (
	"context"
	"io"
	"log"
	"os"
	"testing"
	"time"
)

// TestClientSmoke checks a live document store when DOCSTORE_URL is set,
// e.g. one started with cmd/docstore-mock.
func TestClientSmoke(t *testing.T) {
	baseURL := os.Getenv("DOCSTORE_URL")
	if baseURL == "" {
		t.Skip("DOCSTORE_URL not provided")
	}
	apiKey := os.Getenv("DOCSTORE_API_KEY")
	client, err := NewClient(baseURL, apiKey, 3*time.Second, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("create client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.HealthCheck(ctx); err != nil {
		t.Fatalf("health check: %v", err)
	}
	movies, err := client.ListMovies(ctx)
	if err != nil {
		t.Fatalf("list movies: %v", err)
	}
	if len(movies) == 0 {
		t.Fatalf("expected at least one movie")
	}
}

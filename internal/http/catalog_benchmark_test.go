package httpserver

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/dates"
	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/domain"
)

func BenchmarkHandleGetCatalogAt(b *testing.B) {
	content := newFakeContent()
	for i := 0; i < 500; i++ {
		content.movies = append(content.movies, domain.MovieRecord{
			ID:          fmt.Sprintf("bench-%d", i),
			Title:       "Bench",
			ReleaseDate: dates.FromMillis(float64(jan15.AddDate(0, 0, i-250).UnixMilli())),
			EndDate:     dates.FromString(jan15.AddDate(0, 1, i-250).Format("2006-01-02")),
		})
	}
	srv := buildTestServer(b, content)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := doRequest(srv, http.MethodGet, "/catalog?at=2024-01-15", nil)
		if rec.Code != http.StatusOK {
			b.Fatalf("unexpected status %d", rec.Code)
		}
	}
}

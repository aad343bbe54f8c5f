package docstore

import (
	"strings"
	"testing"

	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/dates"
	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/domain"
)

func FuzzDecodeMovieDocument(f *testing.F) {
	f.Add(`{"id":"m1","data":{"title":"Dune","releaseDate":{"seconds":1709251200,"nanoseconds":0},"endDate":1712000000000}}`)
	f.Add(`{"id":"m2","data":{"releaseDate":"2024-03-01","endDate":null,"rating":"8.5"}}`)
	f.Add(`{"id":"m3","data":{"releaseDate":[1,2,3],"endDate":{"seconds":"x"}}}`)
	f.Add(`{"id":"m4","data":{"releaseDate":1e400}}`)

	f.Fuzz(func(t *testing.T, body string) {
		var doc domain.Document
		if err := decodeBody(strings.NewReader(body), &doc); err != nil {
			return
		}
		movie := domain.MovieFromDocument(doc)
		for _, v := range []dates.Value{movie.ReleaseDate, movie.EndDate} {
			got, err := dates.Normalize(v)
			if err == nil && got.Location().String() != "UTC" {
				t.Fatalf("normalized time not UTC: %v", got)
			}
			if err == nil && v.IsAbsent() {
				t.Fatalf("absent value normalized to %v", got)
			}
		}
	})
}

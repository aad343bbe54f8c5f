package domain

import (
	"time"

	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/dates"
)

// Collection names used by the document store.
const (
	CollectionMovies     = "movies"
	CollectionPromotions = "promotions"
	CollectionArticles   = "articles"
)

// Document field names shared by the store adapters.
const (
	FieldReleaseDate = "releaseDate"
	FieldEndDate     = "endDate"
	FieldCreatedAt   = "createdAt"
)

// MovieRecord is a read-only view of a movie document. Display attributes are
// best effort; ReleaseDate and EndDate keep whatever representation the store
// returned.
type MovieRecord struct {
	ID              string
	Title           string
	Genre           string
	PosterURL       string
	TrailerURL      string
	Synopsis        string
	Cast            string
	Director        string
	DurationMinutes int
	Rating          float64
	ReleaseDate     dates.Value
	EndDate         dates.Value
}

// requiredDisplayFields are the attributes a presenter cannot render a
// catalog card without.
var requiredDisplayFields = []string{"title", "genre", "posterUrl"}

// MissingFields lists required display attributes that are empty. It says
// nothing about whether the record can be classified.
func (m MovieRecord) MissingFields() []string {
	var missing []string
	for _, field := range requiredDisplayFields {
		var value string
		switch field {
		case "title":
			value = m.Title
		case "genre":
			value = m.Genre
		case "posterUrl":
			value = m.PosterURL
		}
		if value == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

// PromotionRecord is a carousel entry linking to an article.
type PromotionRecord struct {
	ID        string
	Title     string
	ImageURL  string
	ArticleID string
	CreatedAt dates.Value
}

// ArticleRecord is the long-form content a promotion points to.
type ArticleRecord struct {
	ID        string
	Title     string
	ImageURL  string
	Content   string
	CreatedAt dates.Value
}

// NormalizedTime returns the instant for v, or nil when it does not parse.
func NormalizedTime(v dates.Value) *time.Time {
	t, err := dates.Normalize(v)
	if err != nil {
		return nil
	}
	return &t
}

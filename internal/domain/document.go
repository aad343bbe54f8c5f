package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/dates"
)

// Document is a raw record as held by the document store: an id assigned by
// the store plus an arbitrary field map. Field presence is not guaranteed.
type Document struct {
	ID   string         `json:"id" yaml:"id"`
	Data map[string]any `json:"data" yaml:"data"`
}

// MovieFromDocument decodes a movie document. Display fields of the wrong
// type are left empty rather than failing the record.
func MovieFromDocument(doc Document) MovieRecord {
	d := doc.Data
	duration, ok := intField(d, "durationMinutes")
	if !ok {
		duration, _ = intField(d, "duration")
	}
	rating, _ := floatField(d, "rating")
	return MovieRecord{
		ID:              doc.ID,
		Title:           stringField(d, "title"),
		Genre:           stringField(d, "genre"),
		PosterURL:       stringField(d, "posterUrl"),
		TrailerURL:      stringField(d, "trailerUrl"),
		Synopsis:        stringField(d, "synopsis"),
		Cast:            listField(d, "cast"),
		Director:        stringField(d, "director"),
		DurationMinutes: duration,
		Rating:          rating,
		ReleaseDate:     dates.FromAny(d[FieldReleaseDate]),
		EndDate:         dates.FromAny(d[FieldEndDate]),
	}
}

// PromotionFromDocument decodes a promotion document.
func PromotionFromDocument(doc Document) PromotionRecord {
	d := doc.Data
	return PromotionRecord{
		ID:        doc.ID,
		Title:     stringField(d, "title"),
		ImageURL:  stringField(d, "imageUrl"),
		ArticleID: stringField(d, "articleId"),
		CreatedAt: dates.FromAny(d[FieldCreatedAt]),
	}
}

// ArticleFromDocument decodes an article document.
func ArticleFromDocument(doc Document) ArticleRecord {
	d := doc.Data
	return ArticleRecord{
		ID:        doc.ID,
		Title:     stringField(d, "title"),
		ImageURL:  stringField(d, "imageUrl"),
		Content:   stringField(d, "content"),
		CreatedAt: dates.FromAny(d[FieldCreatedAt]),
	}
}

func stringField(d map[string]any, key string) string {
	s, _ := d[key].(string)
	return strings.TrimSpace(s)
}

// listField accepts either a plain string or a list of names.
func listField(d map[string]any, key string) string {
	switch v := d[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case []any:
		names := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				names = append(names, strings.TrimSpace(s))
			}
		}
		return strings.Join(names, ", ")
	default:
		return ""
	}
}

func floatField(d map[string]any, key string) (float64, bool) {
	switch v := d[key].(type) {
	case float64:
		return v, !math.IsNaN(v) && !math.IsInf(v, 0)
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
	default:
		return 0, false
	}
}

func intField(d map[string]any, key string) (int, bool) {
	f, ok := floatField(d, key)
	if !ok || f < 0 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// Package catalog partitions movie records into what is showing now and what
// is coming soon, either by scanning a bulk fetch or by pushing range queries
// to the store and reconciling the results.
package catalog

import (
	"errors"
	"time"

	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/dates"
	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/domain"
)

// Failure explains why a record landed in Unclassifiable.
type Failure struct {
	MovieID string
	Field   string
	Err     *dates.ParseError
}

// Classification is the result of one classification pass. All three sets
// are non-nil and no record appears in more than one of them. Records whose
// run has ended appear in none. Failures[i] explains Unclassifiable[i].
type Classification struct {
	Current        []domain.MovieRecord
	Upcoming       []domain.MovieRecord
	Unclassifiable []domain.MovieRecord
	Failures       []Failure
}

func newClassification(capacity int) Classification {
	return Classification{
		Current:        make([]domain.MovieRecord, 0, capacity),
		Upcoming:       make([]domain.MovieRecord, 0, capacity),
		Unclassifiable: make([]domain.MovieRecord, 0),
		Failures:       make([]Failure, 0),
	}
}

// Classify partitions records against ref. Current requires
// releaseDate <= ref <= endDate, upcoming requires releaseDate > ref, and a
// record whose required dates do not parse is unclassifiable. Relative input
// order is preserved within each set. Classify does no I/O and does not
// modify records.
func Classify(records []domain.MovieRecord, ref time.Time) Classification {
	out := newClassification(len(records))

	for _, rec := range records {
		release, err := dates.Normalize(rec.ReleaseDate)
		if err != nil {
			out.reject(rec, domain.FieldReleaseDate, err)
			continue
		}
		if release.After(ref) {
			out.Upcoming = append(out.Upcoming, rec)
			continue
		}

		end, err := dates.Normalize(rec.EndDate)
		if err != nil {
			out.reject(rec, domain.FieldEndDate, err)
			continue
		}
		if !end.Before(ref) {
			out.Current = append(out.Current, rec)
		}
	}

	return out
}

func (c *Classification) reject(rec domain.MovieRecord, field string, err error) {
	c.Unclassifiable = append(c.Unclassifiable, rec)

	var perr *dates.ParseError
	if !errors.As(err, &perr) {
		perr = &dates.ParseError{Raw: err.Error(), Reason: "unexpected error"}
	}
	c.Failures = append(c.Failures, Failure{MovieID: rec.ID, Field: field, Err: perr})
}

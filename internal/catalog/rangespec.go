package catalog

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/dates"
	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/domain"
)

// ErrUnsupportedField is returned when a spec names a field a store cannot
// compare on.
var ErrUnsupportedField = errors.New("catalog: unsupported range field")

// Op is a comparison a store evaluates against a date field.
type Op string

const (
	OpLT  Op = "lt"
	OpLTE Op = "lte"
	OpGT  Op = "gt"
	OpGTE Op = "gte"
	// OpUnset matches records whose field is missing or does not normalize.
	OpUnset Op = "unset"
)

// Direction orders query results.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Condition compares one date field against Value. Value is ignored for
// OpUnset.
type Condition struct {
	Field string    `json:"field"`
	Op    Op        `json:"op"`
	Value time.Time `json:"value"`
}

// Sort is a query's declared order. An empty Field means store order.
type Sort struct {
	Field     string    `json:"field,omitempty"`
	Direction Direction `json:"direction,omitempty"`
}

// RangeSpec is a store-agnostic range query: every condition must hold.
type RangeSpec struct {
	Where   []Condition `json:"where"`
	OrderBy Sort        `json:"orderBy"`
}

// Validate checks that every field and operator is one a store can translate.
func (s RangeSpec) Validate() error {
	for i, cond := range s.Where {
		if !rangeField(cond.Field) {
			return fmt.Errorf("%w: condition %d field %q", ErrUnsupportedField, i, cond.Field)
		}
		switch cond.Op {
		case OpLT, OpLTE, OpGT, OpGTE, OpUnset:
		default:
			return fmt.Errorf("catalog: condition %d has unknown op %q", i, cond.Op)
		}
	}
	if s.OrderBy.Field != "" {
		if !rangeField(s.OrderBy.Field) {
			return fmt.Errorf("%w: order by %q", ErrUnsupportedField, s.OrderBy.Field)
		}
		if s.OrderBy.Direction != Ascending && s.OrderBy.Direction != Descending {
			return fmt.Errorf("catalog: unknown sort direction %q", s.OrderBy.Direction)
		}
	}
	return nil
}

func rangeField(field string) bool {
	return field == domain.FieldReleaseDate || field == domain.FieldEndDate
}

func fieldValue(rec domain.MovieRecord, field string) dates.Value {
	switch field {
	case domain.FieldReleaseDate:
		return rec.ReleaseDate
	case domain.FieldEndDate:
		return rec.EndDate
	default:
		return dates.Absent()
	}
}

// Match evaluates the range query against one record the way a store holding
// normalized date columns would: a field that does not normalize only
// satisfies OpUnset.
func (s RangeSpec) Match(rec domain.MovieRecord) bool {
	for _, cond := range s.Where {
		t, err := dates.Normalize(fieldValue(rec, cond.Field))
		if cond.Op == OpUnset {
			if err == nil {
				return false
			}
			continue
		}
		if err != nil {
			return false
		}
		var ok bool
		switch cond.Op {
		case OpLT:
			ok = t.Before(cond.Value)
		case OpLTE:
			ok = !t.After(cond.Value)
		case OpGT:
			ok = t.After(cond.Value)
		case OpGTE:
			ok = !t.Before(cond.Value)
		}
		if !ok {
			return false
		}
	}
	return true
}

// Apply filters records with Match and orders them by OrderBy. Ties and
// records whose sort field does not normalize keep their input order, the
// latter after all others.
func (s RangeSpec) Apply(records []domain.MovieRecord) []domain.MovieRecord {
	matched := make([]domain.MovieRecord, 0, len(records))
	for _, rec := range records {
		if s.Match(rec) {
			matched = append(matched, rec)
		}
	}
	if s.OrderBy.Field == "" {
		return matched
	}

	keys := make([]*time.Time, len(matched))
	indexed := make([]int, len(matched))
	for i, rec := range matched {
		indexed[i] = i
		keys[i] = domain.NormalizedTime(fieldValue(rec, s.OrderBy.Field))
	}
	slices.SortStableFunc(indexed, func(a, b int) int {
		return compareTimes(keys[a], keys[b], s.OrderBy.Direction == Descending)
	})

	out := make([]domain.MovieRecord, len(matched))
	for i, idx := range indexed {
		out[i] = matched[idx]
	}
	return out
}

// Strict rewrites inclusive bounds as exclusive ones. It models stores that
// only offer strict inequality.
func (s RangeSpec) Strict() RangeSpec {
	out := RangeSpec{Where: make([]Condition, len(s.Where)), OrderBy: s.OrderBy}
	for i, cond := range s.Where {
		switch cond.Op {
		case OpLTE:
			cond.Op = OpLT
		case OpGTE:
			cond.Op = OpGT
		}
		out.Where[i] = cond
	}
	return out
}

// compareTimes orders nil keys last regardless of direction.
func compareTimes(a, b *time.Time, desc bool) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	c := a.Compare(*b)
	if desc {
		return -c
	}
	return c
}

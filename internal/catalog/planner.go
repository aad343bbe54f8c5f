package catalog

import (
	"time"

	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/domain"
)

// Planner turns the classification predicate into range queries for stores
// that filter server side.
//
// Slack widens every bound by the given duration. Stores may compare
// strictly or at coarser precision than Classify; results must be passed
// through Reconcile before use.
type Planner struct {
	Slack time.Duration
}

// PlanCurrentQuery selects releaseDate <= ref AND endDate >= ref, newest
// release first.
func (p Planner) PlanCurrentQuery(ref time.Time) RangeSpec {
	return RangeSpec{
		Where: []Condition{
			{Field: domain.FieldReleaseDate, Op: OpLTE, Value: ref.Add(p.Slack)},
			{Field: domain.FieldEndDate, Op: OpGTE, Value: ref.Add(-p.Slack)},
		},
		OrderBy: Sort{Field: domain.FieldReleaseDate, Direction: Descending},
	}
}

// PlanUpcomingQuery selects releaseDate > ref, soonest release first.
func (p Planner) PlanUpcomingQuery(ref time.Time) RangeSpec {
	return RangeSpec{
		Where: []Condition{
			{Field: domain.FieldReleaseDate, Op: OpGT, Value: ref.Add(-p.Slack)},
		},
		OrderBy: Sort{Field: domain.FieldReleaseDate, Direction: Ascending},
	}
}

// PlanUnclassifiableQueries selects the records a bulk scan would reject:
// those without a usable release date, and those already released without a
// usable end date.
func (p Planner) PlanUnclassifiableQueries(ref time.Time) []RangeSpec {
	return []RangeSpec{
		{Where: []Condition{{Field: domain.FieldReleaseDate, Op: OpUnset}}},
		{Where: []Condition{
			{Field: domain.FieldReleaseDate, Op: OpLTE, Value: ref.Add(p.Slack)},
			{Field: domain.FieldEndDate, Op: OpUnset},
		}},
	}
}

// Plan returns every query needed to rebuild a full classification.
func (p Planner) Plan(ref time.Time) []RangeSpec {
	specs := []RangeSpec{p.PlanCurrentQuery(ref), p.PlanUpcomingQuery(ref)}
	return append(specs, p.PlanUnclassifiableQueries(ref)...)
}

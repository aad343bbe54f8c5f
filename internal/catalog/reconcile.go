package catalog

import (
	"slices"
	"strings"
	"time"

	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/domain"
)

// Reconcile merges the result sets of pushed range queries and runs them back
// through Classify, so the store's own boundary rules and timestamp handling
// never decide membership. Duplicate ids keep their first occurrence; records
// without an id are never merged.
func Reconcile(ref time.Time, resultSets ...[]domain.MovieRecord) Classification {
	total := 0
	for _, set := range resultSets {
		total += len(set)
	}

	seen := make(map[string]struct{}, total)
	merged := make([]domain.MovieRecord, 0, total)
	for _, set := range resultSets {
		for _, rec := range set {
			if rec.ID != "" {
				if _, dup := seen[rec.ID]; dup {
					continue
				}
				seen[rec.ID] = struct{}{}
			}
			merged = append(merged, rec)
		}
	}

	return Classify(merged, ref)
}

// Ordered returns a copy of c in presentation order: current by release date
// newest first, upcoming by release date soonest first, unclassifiable by id.
// Ties fall back to id so both fetch strategies present identical sequences.
func (c Classification) Ordered() Classification {
	out := Classification{
		Current:        slices.Clone(c.Current),
		Upcoming:       slices.Clone(c.Upcoming),
		Unclassifiable: slices.Clone(c.Unclassifiable),
		Failures:       slices.Clone(c.Failures),
	}

	sortByRelease(out.Current, true)
	sortByRelease(out.Upcoming, false)
	if len(out.Failures) != len(out.Unclassifiable) {
		slices.SortStableFunc(out.Unclassifiable, func(a, b domain.MovieRecord) int {
			return strings.Compare(a.ID, b.ID)
		})
		return out
	}

	// Sort records and their failures together so the pairing survives.
	order := make([]int, len(out.Unclassifiable))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return strings.Compare(c.Unclassifiable[a].ID, c.Unclassifiable[b].ID)
	})
	for i, idx := range order {
		out.Unclassifiable[i] = c.Unclassifiable[idx]
		out.Failures[i] = c.Failures[idx]
	}
	return out
}

func sortByRelease(records []domain.MovieRecord, desc bool) {
	type keyed struct {
		rec     domain.MovieRecord
		release *time.Time
	}
	items := make([]keyed, len(records))
	for i, rec := range records {
		items[i] = keyed{rec: rec, release: domain.NormalizedTime(rec.ReleaseDate)}
	}
	slices.SortStableFunc(items, func(a, b keyed) int {
		if c := compareTimes(a.release, b.release, desc); c != 0 {
			return c
		}
		return strings.Compare(a.rec.ID, b.rec.ID)
	})
	for i, item := range items {
		records[i] = item.rec
	}
}

// OrderPromotions returns promotions newest first by createdAt. Promotions
// whose createdAt does not parse follow the rest; ties keep store order.
func OrderPromotions(promotions []domain.PromotionRecord) []domain.PromotionRecord {
	out := make([]domain.PromotionRecord, len(promotions))
	keys := make([]*time.Time, len(promotions))
	indexed := make([]int, len(promotions))
	for i, p := range promotions {
		indexed[i] = i
		keys[i] = domain.NormalizedTime(p.CreatedAt)
	}
	slices.SortStableFunc(indexed, func(a, b int) int {
		return compareTimes(keys[a], keys[b], true)
	})
	for i, idx := range indexed {
		out[i] = promotions[idx]
	}
	return out
}

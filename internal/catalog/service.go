package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/domain"
)

// ErrFetch is matched by every FetchError.
var ErrFetch = errors.New("catalog: fetch failed")

// FetchError reports that the document store could not supply a snapshot. It
// is recoverable: callers keep serving the last good snapshot.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("catalog: %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrFetch) hold for any FetchError.
func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// Strategy selects where the classification predicate is evaluated.
type Strategy string

const (
	// StrategyScan fetches every movie and classifies locally.
	StrategyScan Strategy = "scan"
	// StrategyQuery pushes range queries to the store and reconciles.
	StrategyQuery Strategy = "query"
)

// ParseStrategy validates a configured strategy name.
func ParseStrategy(raw string) (Strategy, error) {
	switch Strategy(raw) {
	case StrategyScan, StrategyQuery:
		return Strategy(raw), nil
	default:
		return "", fmt.Errorf("catalog: unknown strategy %q", raw)
	}
}

// Source is the document store as seen by the catalog. Implementations return
// complete, finite snapshots or an error; retries and timeouts are theirs.
type Source interface {
	ListMovies(ctx context.Context) ([]domain.MovieRecord, error)
	QueryMovies(ctx context.Context, spec RangeSpec) ([]domain.MovieRecord, error)
	ListPromotions(ctx context.Context) ([]domain.PromotionRecord, error)
}

// Snapshot is everything a presenter needs for one catalog screen.
// Failures[i] explains Unclassifiable[i].
type Snapshot struct {
	Reference      time.Time
	Strategy       Strategy
	Current        []domain.MovieRecord
	Upcoming       []domain.MovieRecord
	Unclassifiable []domain.MovieRecord
	Failures       []Failure
	Promotions     []domain.PromotionRecord
}

func emptySnapshot(ref time.Time, strategy Strategy) Snapshot {
	return Snapshot{
		Reference:      ref,
		Strategy:       strategy,
		Current:        []domain.MovieRecord{},
		Upcoming:       []domain.MovieRecord{},
		Unclassifiable: []domain.MovieRecord{},
		Failures:       []Failure{},
		Promotions:     []domain.PromotionRecord{},
	}
}

// ServiceOptions configures a Service.
type ServiceOptions struct {
	Strategy     Strategy
	Planner      Planner
	FetchTimeout time.Duration
	Logger       *log.Logger
}

// Service runs fetch-then-classify passes against a Source.
type Service struct {
	source       Source
	strategy     Strategy
	planner      Planner
	fetchTimeout time.Duration
	logger       *log.Logger
}

// NewService constructs a Service. An empty strategy means StrategyScan.
func NewService(source Source, opts ServiceOptions) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	strategy := opts.Strategy
	if strategy == "" {
		strategy = StrategyScan
	}
	return &Service{
		source:       source,
		strategy:     strategy,
		planner:      opts.Planner,
		fetchTimeout: opts.FetchTimeout,
		logger:       logger,
	}
}

// Strategy reports the configured strategy.
func (s *Service) Strategy() Strategy { return s.strategy }

// Load fetches movies and promotions concurrently and classifies the movies
// against ref. Whatever the strategy, the result is ordered the same way. On
// failure the returned snapshot is empty (never nil slices) and the error is
// a *FetchError.
func (s *Service) Load(ctx context.Context, ref time.Time) (Snapshot, error) {
	if s.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
	}

	var (
		classification Classification
		promotions     []domain.PromotionRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.classifyMovies(gctx, ref)
		if err != nil {
			return err
		}
		classification = c
		return nil
	})
	g.Go(func() error {
		p, err := s.source.ListPromotions(gctx)
		if err != nil {
			return &FetchError{Op: "list promotions", Err: err}
		}
		promotions = p
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Printf("catalog: load failed (strategy=%s): %v", s.strategy, err)
		return emptySnapshot(ref, s.strategy), err
	}

	ordered := classification.Ordered()
	snap := emptySnapshot(ref, s.strategy)
	snap.Current = append(snap.Current, ordered.Current...)
	snap.Upcoming = append(snap.Upcoming, ordered.Upcoming...)
	snap.Unclassifiable = append(snap.Unclassifiable, ordered.Unclassifiable...)
	snap.Failures = append(snap.Failures, ordered.Failures...)
	snap.Promotions = append(snap.Promotions, OrderPromotions(promotions)...)

	if len(snap.Unclassifiable) > 0 {
		s.logger.Printf("catalog: %d movies have unusable dates", len(snap.Unclassifiable))
	}
	return snap, nil
}

func (s *Service) classifyMovies(ctx context.Context, ref time.Time) (Classification, error) {
	switch s.strategy {
	case StrategyQuery:
		specs := s.planner.Plan(ref)
		results := make([][]domain.MovieRecord, 0, len(specs))
		for _, spec := range specs {
			movies, err := s.source.QueryMovies(ctx, spec)
			if err != nil {
				return Classification{}, &FetchError{Op: "query movies", Err: err}
			}
			results = append(results, movies)
		}
		return Reconcile(ref, results...), nil
	default:
		movies, err := s.source.ListMovies(ctx)
		if err != nil {
			return Classification{}, &FetchError{Op: "list movies", Err: err}
		}
		return Classify(movies, ref), nil
	}
}

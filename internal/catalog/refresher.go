package catalog

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// ErrSuperseded is returned by Refresh when a newer refresh started before
// this one finished. Its result is discarded.
var ErrSuperseded = errors.New("catalog: refresh superseded")

// Status is the lifecycle of the catalog screen's data.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// State is what a presenter renders. When Status is StatusFailed, Err is set
// and Snapshot, if non-nil, is the last good one.
type State struct {
	Status     Status
	Snapshot   *Snapshot
	Err        error
	Generation uint64
	UpdatedAt  time.Time
}

// Stale reports whether Snapshot predates a failed refresh.
func (s State) Stale() bool {
	return s.Status == StatusFailed && s.Snapshot != nil
}

// Loader produces a snapshot for a reference instant.
type Loader interface {
	Load(ctx context.Context, ref time.Time) (Snapshot, error)
}

// Refresher serializes catalog refreshes. Every Refresh starts a new
// generation and cancels the one in flight; only the latest generation may
// commit its result.
type Refresher struct {
	loader Loader
	now    func() time.Time
	logger *log.Logger

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	state      State
}

// NewRefresher wires a Refresher. now defaults to time.Now.
func NewRefresher(loader Loader, now func() time.Time, logger *log.Logger) *Refresher {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Refresher{
		loader: loader,
		now:    now,
		logger: logger,
		state:  State{Status: StatusIdle},
	}
}

// State returns the current state.
func (r *Refresher) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Refresh loads a snapshot against the current time and commits it unless a
// newer refresh has started meanwhile.
func (r *Refresher) Refresh(ctx context.Context) (State, error) {
	return r.RefreshAt(ctx, r.now())
}

// RefreshAt is Refresh with an explicit reference instant. When the caller's
// own ctx ends first, nothing is committed: the state returns to the last
// committed outcome and ctx's error is returned.
func (r *Refresher) RefreshAt(parent context.Context, ref time.Time) (State, error) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.generation++
	gen := r.generation
	r.cancel = cancel
	r.state.Status = StatusLoading
	r.state.Generation = gen
	r.mu.Unlock()

	snap, err := r.loader.Load(ctx, ref)

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.generation {
		r.logger.Printf("catalog: refresh %d superseded by %d", gen, r.generation)
		return r.state, ErrSuperseded
	}
	r.cancel = nil
	if err != nil && parent.Err() != nil {
		r.state.Status = r.committedStatus()
		r.logger.Printf("catalog: refresh %d abandoned by caller: %v", gen, parent.Err())
		return r.state, parent.Err()
	}
	r.state.Generation = gen
	r.state.UpdatedAt = r.now()
	if err != nil {
		r.state.Status = StatusFailed
		r.state.Err = err
		r.logger.Printf("catalog: refresh %d failed: %v", gen, err)
		return r.state, err
	}
	r.state.Status = StatusReady
	r.state.Snapshot = &snap
	r.state.Err = nil
	return r.state, nil
}

// committedStatus derives the status of the last committed refresh. Callers
// hold r.mu.
func (r *Refresher) committedStatus() Status {
	switch {
	case r.state.Err != nil:
		return StatusFailed
	case r.state.Snapshot != nil:
		return StatusReady
	default:
		return StatusIdle
	}
}

// Run refreshes once immediately and then every interval until ctx is done.
// A non-positive interval refreshes only once.
func (r *Refresher) Run(ctx context.Context, interval time.Duration) {
	r.refreshLogged(ctx)
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.refreshLogged(ctx)
		}
	}
}

func (r *Refresher) refreshLogged(ctx context.Context) {
	state, err := r.Refresh(ctx)
	if err != nil {
		return
	}
	snap := state.Snapshot
	r.logger.Printf("catalog: refreshed generation %d: %d current, %d upcoming, %d unclassifiable",
		state.Generation, len(snap.Current), len(snap.Upcoming), len(snap.Unclassifiable))
}

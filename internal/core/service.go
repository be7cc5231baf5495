package core

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/prayerboard/internal/logging"
	"github.com/JonMunkholm/prayerboard/internal/schedule"
	"github.com/JonMunkholm/prayerboard/internal/source"
)

// Fetcher downloads the schedule grid. Satisfied by *source.Fetcher.
type Fetcher interface {
	Fetch(ctx context.Context) (*source.Document, error)
}

// Publisher receives every successfully parsed snapshot.
type Publisher interface {
	Publish(ctx context.Context, snap *Snapshot) error
}

// Snapshot is the parsed result of one successful refresh.
type Snapshot struct {
	ID        string                `json:"id"`
	FetchedAt time.Time             `json:"fetched_at"`
	Source    string                `json:"source"`
	Result    *schedule.ParseResult `json:"result"`
}

// Status describes the outcome of recent refreshes.
type Status struct {
	LastAttempt   time.Time    `json:"last_attempt,omitzero"`
	LastSuccess   time.Time    `json:"last_success,omitzero"`
	LastError     *UserMessage `json:"last_error,omitempty"`
	Source        string       `json:"source,omitempty"`
	SnapshotID    string       `json:"snapshot_id,omitempty"`
	Mosques       int          `json:"mosques"`
	InFlight      int          `json:"in_flight"`
	Attempts      int64        `json:"attempts"`
	Failures      int64        `json:"failures"`
	Ready         bool         `json:"ready"`
	lastErr       *UserError
}

// LastErr returns the latest failed refresh as a *UserError, or nil when the
// latest refresh succeeded.
func (st Status) LastErr() error {
	if st.lastErr == nil {
		return nil
	}
	return st.lastErr
}

// Service holds the current schedule snapshot and refreshes it on demand.
type Service struct {
	fetcher    Fetcher
	publishers []Publisher
	now        func() time.Time

	mu       sync.RWMutex
	current  *Snapshot
	status   Status
	inFlight atomic.Int32
}

// NewService creates a Service that reads through fetcher and pushes
// successful snapshots to publishers.
func NewService(fetcher Fetcher, publishers ...Publisher) *Service {
	return &Service{
		fetcher:    fetcher,
		publishers: publishers,
		now:        time.Now,
	}
}

// Refresh fetches and parses the schedule.
//
// On success the new snapshot becomes current and is returned. On failure
// the current snapshot is left untouched and the error is recorded in the
// status.
func (s *Service) Refresh(ctx context.Context) (*Snapshot, error) {
	id := uuid.NewString()
	ctx = logging.ContextWithFetchID(ctx, id)
	logger := logging.FromContext(ctx)

	s.inFlight.Add(1)
	defer s.inFlight.Add(-1)

	start := time.Now()
	s.recordAttempt(start)

	snap, err := s.load(ctx, id)
	if err != nil {
		userErr := s.recordFailure(err)
		logger.Error("schedule refresh failed",
			"code", userErr.User.Code,
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	s.mu.Lock()
	s.current = snap
	s.status.LastSuccess = s.now()
	s.status.LastError = nil
	s.status.lastErr = nil
	s.status.Source = snap.Source
	s.status.SnapshotID = snap.ID
	s.status.Mosques = len(snap.Result.Mosques)
	s.mu.Unlock()

	logger.Info("schedule refreshed",
		"source", snap.Source,
		"mosques", len(snap.Result.Mosques),
		"footer_notes", len(snap.Result.FooterNotes),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	s.publish(ctx, snap)
	return snap, nil
}

// load runs one fetch and parse without touching service state.
func (s *Service) load(ctx context.Context, id string) (*Snapshot, error) {
	doc, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	result, err := schedule.Parse(doc.Grid)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", doc.Source, err)
	}

	fetchedAt := doc.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = s.now()
	}

	return &Snapshot{
		ID:        id,
		FetchedAt: fetchedAt,
		Source:    doc.Source,
		Result:    result,
	}, nil
}

// publish hands snap to each publisher. Failures are logged only; the
// snapshot is already current.
func (s *Service) publish(ctx context.Context, snap *Snapshot) {
	for _, p := range s.publishers {
		if err := p.Publish(ctx, snap); err != nil {
			logging.FromContext(ctx).Warn("snapshot publish failed", "snapshot_id", snap.ID, "error", err)
		}
	}
}

func (s *Service) recordAttempt(at time.Time) {
	s.mu.Lock()
	s.status.LastAttempt = at
	s.status.Attempts++
	s.mu.Unlock()
}

func (s *Service) recordFailure(err error) *UserError {
	userErr := NewUserError(err)
	msg := userErr.User
	s.mu.Lock()
	s.status.LastError = &msg
	s.status.lastErr = userErr
	s.status.Failures++
	s.mu.Unlock()
	return userErr
}

// Current returns the latest successful snapshot, if any.
func (s *Service) Current() (*Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.current != nil
}

// EnsureLoaded returns the current snapshot, refreshing first when no
// refresh has succeeded yet.
func (s *Service) EnsureLoaded(ctx context.Context) (*Snapshot, error) {
	if snap, ok := s.Current(); ok {
		return snap, nil
	}
	return s.Refresh(ctx)
}

// Status returns a copy of the refresh status.
func (s *Service) Status() Status {
	s.mu.RLock()
	st := s.status
	st.Ready = s.current != nil
	s.mu.RUnlock()

	st.InFlight = int(s.inFlight.Load())
	return st
}

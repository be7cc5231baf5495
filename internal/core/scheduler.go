package core

// scheduler.go keeps the snapshot fresh in the background.
//
// The scheduler refreshes once on start so the first page load is served
// from memory, then once per interval. A failed refresh is logged and the
// previous snapshot keeps being served until a later one succeeds.

import (
	"context"
	"log/slog"
	"time"
)

// StartRefreshScheduler refreshes immediately, then every interval, until ctx
// is cancelled. A non-positive interval performs the initial refresh only.
func (s *Service) StartRefreshScheduler(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		slog.Info("refresh scheduler disabled, loading once")
		s.runRefreshJob(ctx)
		return
	}

	slog.Info("refresh scheduler started", "interval", interval.String())

	// Run immediately on startup
	s.runRefreshJob(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("refresh scheduler stopped")
			return
		case <-ticker.C:
			s.runRefreshJob(ctx)
		}
	}
}

// runRefreshJob performs one scheduled refresh. Errors are already logged by
// Refresh.
func (s *Service) runRefreshJob(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	slog.Debug("scheduled refresh started")
	_, _ = s.Refresh(ctx)
}

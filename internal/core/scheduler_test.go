package core

import (
	"context"
	"testing"
	"time"
)

func TestStartRefreshScheduler_RunsImmediatelyAndStops(t *testing.T) {
	f := &fakeFetcher{results: []fetchResult{{doc: goodDoc("Masjid A")}}}
	svc := NewService(f)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.StartRefreshScheduler(ctx, time.Hour)
		close(done)
	}()

	waitFor(t, func() bool { return f.Calls() == 1 })
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
	if _, ok := svc.Current(); !ok {
		t.Error("initial refresh should have stored a snapshot")
	}
}

func TestStartRefreshScheduler_Ticks(t *testing.T) {
	f := &fakeFetcher{results: []fetchResult{{doc: goodDoc("Masjid A")}}}
	svc := NewService(f)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.StartRefreshScheduler(ctx, 10*time.Millisecond)

	waitFor(t, func() bool { return f.Calls() >= 3 })
}

func TestStartRefreshScheduler_DisabledLoadsOnce(t *testing.T) {
	f := &fakeFetcher{results: []fetchResult{{doc: goodDoc("Masjid A")}}}
	svc := NewService(f)

	svc.StartRefreshScheduler(context.Background(), 0)

	if f.Calls() != 1 {
		t.Errorf("fetch calls = %d, want 1", f.Calls())
	}
}

func TestStartRefreshScheduler_CancelledBeforeStart(t *testing.T) {
	f := &fakeFetcher{results: []fetchResult{{doc: goodDoc("Masjid A")}}}
	svc := NewService(f)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc.StartRefreshScheduler(ctx, time.Hour)

	if f.Calls() != 0 {
		t.Errorf("fetch calls = %d, want 0", f.Calls())
	}
}

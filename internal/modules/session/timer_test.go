// README: Session timer tests (derived clock, adjusted start, tick loop).
package session

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestElapsedUsesAdjustedStart(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	clock := base

	client := newFakeClient()
	client.clock = func() time.Time { return clock }
	store := NewStore(client, nil)

	// User claims to have parked 15 minutes before starting the session.
	adjusted := base.Add(-900 * time.Second)
	if _, err := store.Start(ctx, StartCommand{Latitude: 41, Longitude: 28, AdjustedStartedAt: &adjusted}); err != nil {
		t.Fatalf("start: %v", err)
	}

	timer := NewTimer(store)
	timer.now = func() time.Time { return clock }

	clock = base.Add(60 * time.Second)
	got := timer.Snapshot().Elapsed
	if got < 960*time.Second {
		t.Fatalf("elapsed = %s, want >= 960s (adjusted start must drive the clock)", got)
	}
}

func TestSnapshotZeroWhenIdle(t *testing.T) {
	store := NewStore(newFakeClient(), nil)
	snap := NewTimer(store).Snapshot()
	if snap.Running || snap.Elapsed != 0 {
		t.Fatalf("idle snapshot = %+v", snap)
	}
	if snap.HHMMSS() != "00:00:00" {
		t.Fatalf("idle HHMMSS = %s", snap.HHMMSS())
	}
}

func TestHHMMSSPadding(t *testing.T) {
	cases := []struct {
		elapsed time.Duration
		want    string
	}{
		{0, "00:00:00"},
		{59 * time.Second, "00:00:59"},
		{61 * time.Second, "00:01:01"},
		{3661 * time.Second, "01:01:01"},
		{25*time.Hour + 5*time.Second, "25:00:05"},
	}
	for _, tc := range cases {
		got := Snapshot{Elapsed: tc.elapsed}.HHMMSS()
		if got != tc.want {
			t.Errorf("HHMMSS(%s) = %s, want %s", tc.elapsed, got, tc.want)
		}
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := NewStore(newFakeClient(), nil)
	if _, err := store.Start(ctx, StartCommand{Latitude: 41, Longitude: 28}); err != nil {
		t.Fatalf("start: %v", err)
	}

	timer := NewTimer(store)
	timer.interval = 5 * time.Millisecond

	var ticks atomic.Int64
	done := make(chan struct{})
	go func() {
		defer close(done)
		timer.Run(ctx, func(Snapshot) { ticks.Add(1) })
	}()

	time.Sleep(40 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timer did not stop on cancel")
	}
	if ticks.Load() < 2 {
		t.Fatalf("ticks = %d, want >= 2", ticks.Load())
	}
}

// README: Derived elapsed-time clock for the active session.
package session

import (
	"context"
	"fmt"
	"time"
)

// Snapshot is one tick of the session clock, recomputed from the effective
// start time so suspending and resuming never accumulates drift.
type Snapshot struct {
	Running   bool
	SessionID string
	Elapsed   time.Duration
}

// HHMMSS renders the elapsed time with zero padding, e.g. "01:01:01".
func (s Snapshot) HHMMSS() string {
	secs := int(s.Elapsed / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
}

// Timer recomputes the elapsed time of the store's active session once per
// tick. It holds no state of its own beyond the tick loop: every value is
// derived from the store, so there is nothing to persist or to correct.
type Timer struct {
	store    *Store
	interval time.Duration
	now      func() time.Time
}

func NewTimer(store *Store) *Timer {
	return &Timer{store: store, interval: time.Second, now: time.Now}
}

// Snapshot computes the current elapsed time on demand. Zero when Idle.
func (t *Timer) Snapshot() Snapshot {
	sess, ok := t.store.Active()
	if !ok {
		return Snapshot{}
	}
	elapsed := t.now().Sub(sess.EffectiveStart())
	if elapsed < 0 {
		elapsed = 0
	}
	return Snapshot{Running: true, SessionID: string(sess.ID), Elapsed: elapsed}
}

// Run ticks until ctx is cancelled, invoking onTick once per interval. The
// caller owns the lifecycle: cancel the context when the active session
// reference changes or goes away so no tickers leak across sessions.
func (t *Timer) Run(ctx context.Context, onTick func(Snapshot)) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	onTick(t.Snapshot())
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			onTick(t.Snapshot())
		}
	}
}

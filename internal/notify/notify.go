// README: Local notification facility contract plus a log-backed implementation.
package notify

import (
	"context"
	"log"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// Handle identifies one scheduled notification. The zero value means "none".
type Handle string

// Notifier abstracts the host notification facility. Delivery guarantees are
// whatever the host provides; callers treat scheduling as best effort.
type Notifier interface {
	RequestPermission(ctx context.Context) (bool, error)
	ScheduleAt(ctx context.Context, at time.Time, payload map[string]string) (Handle, error)
	Cancel(ctx context.Context, h Handle) error
}

// LogNotifier schedules notifications as in-process timers that write to the
// log. Useful for the CLI and anywhere without a host notification service.
type LogNotifier struct {
	seq    atomic.Int64
	mu     sync.Mutex
	timers map[Handle]*time.Timer
}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{timers: make(map[Handle]*time.Timer)}
}

func (n *LogNotifier) RequestPermission(ctx context.Context) (bool, error) {
	return true, nil
}

func (n *LogNotifier) ScheduleAt(ctx context.Context, at time.Time, payload map[string]string) (Handle, error) {
	h := Handle("local-" + strconv.FormatInt(n.seq.Add(1), 10))
	d := time.Until(at)
	if d < 0 {
		d = 0
	}
	n.mu.Lock()
	n.timers[h] = time.AfterFunc(d, func() {
		log.Printf("notification %s fired: %v", h, payload)
		n.mu.Lock()
		delete(n.timers, h)
		n.mu.Unlock()
	})
	n.mu.Unlock()
	return h, nil
}

func (n *LogNotifier) Cancel(ctx context.Context, h Handle) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if t, ok := n.timers[h]; ok {
		t.Stop()
		delete(n.timers, h)
	}
	return nil
}

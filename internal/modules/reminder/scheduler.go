// README: Reminder scheduler; computes trigger times and keeps a single outstanding notification.
package reminder

import (
	"context"
	"errors"
	"sync"
	"time"

	"parkwatch/internal/notify"
)

type Mode string

const (
	// ModeAtTime fires at the next wall-clock occurrence of Hour:Minute.
	ModeAtTime Mode = "at_time"
	// ModeAfterDuration fires a fixed duration after the session's effective
	// start time.
	ModeAfterDuration Mode = "after_duration"
)

// Config is the user-facing reminder configuration. It is ephemeral: the
// session store resets it to the zero value whenever a session ends.
type Config struct {
	Enabled bool
	Mode    Mode

	// ModeAtTime fields.
	Hour   int
	Minute int

	// ModeAfterDuration field.
	After time.Duration
}

var ErrUnknownMode = errors.New("unknown reminder mode")

// Scheduler keeps at most one outstanding notification. Scheduling while one
// is outstanding cancels the previous handle first.
type Scheduler struct {
	notifier notify.Notifier
	now      func() time.Time

	mu      sync.Mutex
	current notify.Handle
}

func NewScheduler(notifier notify.Notifier) *Scheduler {
	return &Scheduler{notifier: notifier, now: time.Now}
}

// TriggerTime computes when the reminder should fire. sessionStart must be
// the session's effective start (adjusted start when the user backdated).
func (s *Scheduler) TriggerTime(cfg Config, sessionStart time.Time) (time.Time, error) {
	switch cfg.Mode {
	case ModeAtTime:
		now := s.now()
		at := time.Date(now.Year(), now.Month(), now.Day(), cfg.Hour, cfg.Minute, 0, 0, now.Location())
		if !at.After(now) {
			at = at.AddDate(0, 0, 1)
		}
		return at, nil
	case ModeAfterDuration:
		return sessionStart.Add(cfg.After), nil
	default:
		return time.Time{}, ErrUnknownMode
	}
}

// Schedule cancels any outstanding notification and schedules a new one.
// A denied permission is not an error: it returns scheduled == false and the
// caller proceeds without a reminder.
func (s *Scheduler) Schedule(ctx context.Context, cfg Config, sessionStart time.Time, payload map[string]string) (notify.Handle, bool, error) {
	if !cfg.Enabled {
		return "", false, nil
	}
	at, err := s.TriggerTime(cfg, sessionStart)
	if err != nil {
		return "", false, err
	}
	granted, err := s.notifier.RequestPermission(ctx)
	if err != nil {
		return "", false, err
	}
	if !granted {
		return "", false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != "" {
		if err := s.notifier.Cancel(ctx, s.current); err != nil {
			return "", false, err
		}
		s.current = ""
	}
	h, err := s.notifier.ScheduleAt(ctx, at, payload)
	if err != nil {
		return "", false, err
	}
	s.current = h
	return h, true, nil
}

// Cancel drops the outstanding notification, if any. Safe to call repeatedly.
func (s *Scheduler) Cancel(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == "" {
		return nil
	}
	err := s.notifier.Cancel(ctx, s.current)
	s.current = ""
	return err
}

// Outstanding reports the currently scheduled handle, if any.
func (s *Scheduler) Outstanding() (notify.Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.current != ""
}

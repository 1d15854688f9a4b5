// README: Session store; owns the active session state machine and backend reconciliation.
package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"parkwatch/internal/backend"
	"parkwatch/internal/modules/reminder"
	"parkwatch/internal/photo"
)

var (
	ErrSessionActive     = errors.New("a parking session is already active")
	ErrNoActiveSession   = errors.New("no active parking session")
	ErrTransitionPending = errors.New("a session transition is already in flight")
)

// Store is the explicitly owned session state object. It is the only writer
// of the active session and the reminder config; everything else reads.
//
// Transitions are fail-clean: a failed start leaves the store Idle, a failed
// end leaves the session Active. Reconcile re-derives state from the
// backend's history and never trusts locally cached state across a cold
// start.
type Store struct {
	client   backend.Client
	reminder *reminder.Scheduler
	photos   photo.Store
	now      func() time.Time

	mu          sync.Mutex
	active      *ParkingSession
	reminderCfg reminder.Config
	inFlight    bool

	events chan Event
}

func NewStore(client backend.Client, sched *reminder.Scheduler) *Store {
	return &Store{
		client:   client,
		reminder: sched,
		now:      time.Now,
		events:   make(chan Event, 16),
	}
}

// SetPhotoStore attaches the device-local photo store. Without one, photo
// bytes are dropped and only the has-photo flag travels to the backend.
func (s *Store) SetPhotoStore(p photo.Store) {
	s.photos = p
}

// Events is the store's change-notification channel. Sends are non-blocking;
// a slow observer misses events rather than stalling transitions.
func (s *Store) Events() <-chan Event {
	return s.events
}

func (s *Store) publish(kind EventKind, sess ParkingSession) {
	select {
	case s.events <- Event{Kind: kind, Session: sess}:
	default:
	}
}

type StartCommand struct {
	Latitude          float64
	Longitude         float64
	Note              string
	AdjustedStartedAt *time.Time
	HasPhoto          bool
	// PendingPhoto is stored in the photo store, keyed by the new session id,
	// once the backend has assigned one.
	PendingPhoto []byte
	// Reminder, when non-nil and enabled, is scheduled after the session is
	// created. Scheduling failures never fail the start.
	Reminder *reminder.Config
}

// Start performs Idle → Active. The backend call happens outside the lock;
// until it succeeds no partial state is retained.
func (s *Store) Start(ctx context.Context, cmd StartCommand) (ParkingSession, error) {
	if err := s.begin(true); err != nil {
		return ParkingSession{}, err
	}
	defer s.finish()

	record, err := s.client.CreateSession(ctx, backend.CreateSessionInput{
		Latitude:          cmd.Latitude,
		Longitude:         cmd.Longitude,
		Note:              cmd.Note,
		AdjustedStartedAt: cmd.AdjustedStartedAt,
		HasPhoto:          cmd.HasPhoto || len(cmd.PendingPhoto) > 0,
	})
	if err != nil {
		return ParkingSession{}, err
	}

	sess := fromRecord(record)
	if len(cmd.PendingPhoto) > 0 && s.photos != nil {
		uri, err := s.photos.Put(string(sess.ID), cmd.PendingPhoto)
		if err != nil {
			log.Printf("session %s: photo store failed: %v", sess.ID, err)
		} else {
			sess.LocalPhotoURI = uri
		}
	}

	s.mu.Lock()
	s.active = &sess
	if cmd.Reminder != nil {
		s.reminderCfg = *cmd.Reminder
	}
	s.mu.Unlock()

	if cmd.Reminder != nil && cmd.Reminder.Enabled && s.reminder != nil {
		if _, scheduled, err := s.reminder.Schedule(ctx, *cmd.Reminder, sess.EffectiveStart(), reminderPayload(sess)); err != nil {
			log.Printf("session %s: reminder scheduling failed: %v", sess.ID, err)
		} else if !scheduled {
			log.Printf("session %s: notification permission denied, continuing without reminder", sess.ID)
		}
	}

	s.publish(EventStarted, sess)
	return sess, nil
}

// End performs Active → Idle. If the backend call fails the session stays
// Active with its id and start time untouched; ending is never assumed.
func (s *Store) End(ctx context.Context) (ParkingSession, error) {
	if err := s.begin(false); err != nil {
		return ParkingSession{}, err
	}
	defer s.finish()

	s.mu.Lock()
	id := s.active.ID
	note := s.active.Note
	photoURI := s.active.LocalPhotoURI
	s.mu.Unlock()

	record, err := s.client.EndSession(ctx, id, s.now())
	if err != nil {
		return ParkingSession{}, err
	}

	closed := fromRecord(record)
	// Note edits are local-only while active; the closed record carries the
	// final local note so history keeps it.
	closed.Note = note
	closed.LocalPhotoURI = photoURI

	s.mu.Lock()
	s.active = nil
	s.reminderCfg = reminder.Config{}
	s.mu.Unlock()

	if s.reminder != nil {
		if err := s.reminder.Cancel(ctx); err != nil {
			log.Printf("session %s: reminder cancel failed: %v", id, err)
		}
	}

	s.publish(EventEnded, closed)
	return closed, nil
}

// Reconcile queries the backend history and adopts the head record when it is
// still un-ended. All errors are swallowed so the app stays usable offline;
// failure means "assume Idle".
func (s *Store) Reconcile(ctx context.Context) {
	records, err := s.client.ListHistory(ctx, 1, 0)
	if err != nil {
		log.Printf("session reconcile failed, assuming idle: %v", err)
		s.mu.Lock()
		s.active = nil
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	if len(records) > 0 && records[0].Active() {
		sess := fromRecord(records[0])
		if sess.HasPhoto && s.photos != nil {
			if uri, ok := s.photos.Get(string(sess.ID)); ok {
				sess.LocalPhotoURI = uri
			}
		}
		s.active = &sess
		s.mu.Unlock()
		s.publish(EventReconciled, sess)
		return
	}
	s.active = nil
	s.mu.Unlock()
}

// SetNote updates the note of the active session in memory. There is no
// backend call; the final note travels with the closed record at End.
func (s *Store) SetNote(note string) error {
	s.mu.Lock()
	if s.active == nil {
		s.mu.Unlock()
		return ErrNoActiveSession
	}
	s.active.Note = note
	sess := *s.active
	s.mu.Unlock()
	s.publish(EventNoteEdited, sess)
	return nil
}

// Active returns a copy of the active session.
func (s *Store) Active() (ParkingSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return ParkingSession{}, false
	}
	return *s.active, true
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return StateIdle
	}
	return StateActive
}

func (s *Store) ReminderConfig() reminder.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reminderCfg
}

// EnableReminder (re)schedules a reminder for the active session. The
// scheduler cancels any previous handle first, so calling this repeatedly
// leaves exactly one outstanding notification.
func (s *Store) EnableReminder(ctx context.Context, cfg reminder.Config) (bool, error) {
	s.mu.Lock()
	if s.active == nil {
		s.mu.Unlock()
		return false, ErrNoActiveSession
	}
	sess := *s.active
	cfg.Enabled = true
	s.reminderCfg = cfg
	s.mu.Unlock()

	if s.reminder == nil {
		return false, nil
	}
	_, scheduled, err := s.reminder.Schedule(ctx, cfg, sess.EffectiveStart(), reminderPayload(sess))
	return scheduled, err
}

// DisableReminder cancels the outstanding notification and disables the
// config.
func (s *Store) DisableReminder(ctx context.Context) error {
	s.mu.Lock()
	s.reminderCfg.Enabled = false
	s.mu.Unlock()
	if s.reminder == nil {
		return nil
	}
	return s.reminder.Cancel(ctx)
}

// begin takes the in-flight guard. Only one transition may be pending at a
// time; callers get ErrTransitionPending instead of queueing.
func (s *Store) begin(wantIdle bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return ErrTransitionPending
	}
	if wantIdle && s.active != nil {
		return ErrSessionActive
	}
	if !wantIdle && s.active == nil {
		return ErrNoActiveSession
	}
	s.inFlight = true
	return nil
}

func (s *Store) finish() {
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()
}

func reminderPayload(sess ParkingSession) map[string]string {
	return map[string]string{
		"kind":       "parking_reminder",
		"session_id": string(sess.ID),
	}
}

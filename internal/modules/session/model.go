// README: Parking session model and state definitions.
package session

import (
	"time"

	"parkwatch/internal/backend"
	"parkwatch/internal/types"
)

type State string

const (
	StateIdle   State = "idle"
	StateActive State = "active"
)

// ParkingSession is the single active session owned by the store. Once ended
// it is an immutable historical record.
type ParkingSession struct {
	ID                types.ID
	StartedAt         time.Time
	AdjustedStartedAt *time.Time
	Latitude          float64
	Longitude         float64
	Note              string
	HasPhoto          bool
	// LocalPhotoURI points into the device-local photo store; the bytes
	// themselves live outside this package.
	LocalPhotoURI string
	EndedAt       *time.Time
}

// EffectiveStart is the start timestamp every time-based computation uses:
// the user-claimed adjusted start when present, else the real one.
func (p ParkingSession) EffectiveStart() time.Time {
	if p.AdjustedStartedAt != nil {
		return *p.AdjustedStartedAt
	}
	return p.StartedAt
}

func (p ParkingSession) Active() bool {
	return p.EndedAt == nil
}

func fromRecord(r backend.SessionRecord) ParkingSession {
	return ParkingSession{
		ID:                r.ID,
		StartedAt:         r.StartedAt,
		AdjustedStartedAt: r.AdjustedStartedAt,
		Latitude:          r.Latitude,
		Longitude:         r.Longitude,
		Note:              r.Note,
		HasPhoto:          r.HasPhoto,
		EndedAt:           r.EndedAt,
	}
}

type EventKind string

const (
	EventStarted    EventKind = "started"
	EventEnded      EventKind = "ended"
	EventReconciled EventKind = "reconciled"
	EventNoteEdited EventKind = "note_edited"
)

// Event is published on the store's change channel so observers (UI layers)
// can re-render without polling.
type Event struct {
	Kind    EventKind
	Session ParkingSession
}

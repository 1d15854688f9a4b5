// README: Remote parking API contract consumed by the client core.
package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parkwatch/internal/types"
)

// SessionRecord is a parking session as the backend reports it. A record with
// no EndedAt is active; at most one active record exists per identity, and the
// backend is the arbiter of that invariant.
type SessionRecord struct {
	ID                types.ID
	StartedAt         time.Time
	AdjustedStartedAt *time.Time
	Latitude          float64
	Longitude         float64
	Note              string
	HasPhoto          bool
	EndedAt           *time.Time
}

// Active reports whether the record represents a session still running.
func (r SessionRecord) Active() bool {
	return r.EndedAt == nil
}

type PricedSpot struct {
	ID        types.ID
	Name      string
	Position  types.Point
	Tariff    types.Money
	DistanceM float64
}

type Location struct {
	ID       types.ID
	Name     string
	Address  string
	Position types.Point
}

type CreateSessionInput struct {
	Latitude          float64
	Longitude         float64
	Note              string
	AdjustedStartedAt *time.Time
	HasPhoto          bool
}

// Client is the remote API surface. Implementations must treat a well-formed
// error response as a *Rejection and anything transport-level as a plain
// wrapped error so callers can tell the two apart.
type Client interface {
	CreateSession(ctx context.Context, in CreateSessionInput) (SessionRecord, error)
	EndSession(ctx context.Context, id types.ID, endedAt time.Time) (SessionRecord, error)
	ListHistory(ctx context.Context, limit, offset int) ([]SessionRecord, error)
	QueryPricedSpots(ctx context.Context, p types.Point, radiusM int) ([]PricedSpot, error)
	QueryParkingLocations(ctx context.Context, p types.Point, radiusM int) ([]Location, error)
}

// Rejection is a well-formed error response from the backend, as opposed to a
// transport failure.
type Rejection struct {
	Status  int
	Message string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("backend rejected request (%d): %s", r.Status, r.Message)
}

// IsRejection reports whether err is a backend rejection rather than a
// network failure.
func IsRejection(err error) bool {
	var r *Rejection
	return errors.As(err, &r)
}

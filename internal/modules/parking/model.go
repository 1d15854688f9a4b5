// README: Server-side parking session record.
package parking

import (
	"time"

	"parkwatch/internal/types"
)

// Record is one parking session row. A record with ended_at NULL is active;
// the store enforces at most one active record per user.
type Record struct {
	ID                types.ID
	UserID            types.ID
	StartedAt         time.Time
	AdjustedStartedAt *time.Time
	Position          types.Point
	Note              string
	HasPhoto          bool
	EndedAt           *time.Time
}

func (r *Record) Active() bool {
	return r.EndedAt == nil
}

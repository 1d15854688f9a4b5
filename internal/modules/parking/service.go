// README: Parking session service; the backend arbiter of the single-active-session invariant.
package parking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"parkwatch/internal/types"
)

var (
	ErrNotFound     = errors.New("parking session not found")
	ErrActiveExists = errors.New("an active parking session already exists")
	ErrNotActive    = errors.New("parking session is not active")
	ErrBadRequest   = errors.New("bad request")
)

type Service struct {
	store *Store
	now   func() time.Time
}

func NewService(store *Store) *Service {
	return &Service{store: store, now: time.Now}
}

type CreateCommand struct {
	UserID            types.ID
	Position          types.Point
	Note              string
	AdjustedStartedAt *time.Time
	HasPhoto          bool
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Record, error) {
	if cmd.UserID == "" {
		return nil, ErrBadRequest
	}
	if cmd.Position.Lat < -90 || cmd.Position.Lat > 90 || cmd.Position.Lng < -180 || cmd.Position.Lng > 180 {
		return nil, ErrBadRequest
	}
	now := s.now().UTC()
	if cmd.AdjustedStartedAt != nil && cmd.AdjustedStartedAt.After(now) {
		// Backdating only; a future claimed start makes no elapsed-time sense.
		return nil, ErrBadRequest
	}

	active, err := s.store.HasActive(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, ErrActiveExists
	}

	r := &Record{
		ID:                types.ID(uuid.NewString()),
		UserID:            cmd.UserID,
		StartedAt:         now,
		AdjustedStartedAt: cmd.AdjustedStartedAt,
		Position:          cmd.Position,
		Note:              cmd.Note,
		HasPhoto:          cmd.HasPhoto,
	}
	if err := s.store.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) End(ctx context.Context, id types.ID, endedAt time.Time) (*Record, error) {
	if endedAt.IsZero() {
		endedAt = s.now().UTC()
	}
	ok, err := s.store.End(ctx, id, endedAt)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Either unknown or already ended; look it up to tell which.
		if _, err := s.store.Get(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrNotActive
	}
	return s.store.Get(ctx, id)
}

func (s *Service) History(ctx context.Context, userID types.ID, limit, offset int) ([]*Record, error) {
	if userID == "" {
		return nil, ErrBadRequest
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.History(ctx, userID, limit, offset)
}

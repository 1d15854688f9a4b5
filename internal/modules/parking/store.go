// README: Parking session store backed by PostgreSQL.
package parking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"parkwatch/internal/infra"
	"parkwatch/internal/types"
)

type Store struct {
	db infra.Querier
}

func NewStore(db infra.Querier) *Store {
	return &Store{db: db}
}

const recordColumns = `id, user_id, started_at, adjusted_started_at, lat, lng, note, has_photo, ended_at`

func (s *Store) Create(ctx context.Context, r *Record) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO parking_sessions (
            id, user_id, started_at, adjusted_started_at,
            lat, lng, note, has_photo
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		string(r.ID),
		string(r.UserID),
		r.StartedAt,
		r.AdjustedStartedAt,
		r.Position.Lat, r.Position.Lng,
		r.Note,
		r.HasPhoto,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Record, error) {
	row := s.db.QueryRow(ctx, `
        SELECT `+recordColumns+`
        FROM parking_sessions
        WHERE id = $1`, string(id),
	)
	return scanRecord(row)
}

// End closes an active session. Returns false when the id does not refer to
// an active session (already ended or unknown).
func (s *Store) End(ctx context.Context, id types.ID, endedAt time.Time) (bool, error) {
	tag, err := s.db.Exec(ctx, `
        UPDATE parking_sessions
        SET ended_at = $1
        WHERE id = $2 AND ended_at IS NULL`,
		endedAt, string(id),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// History returns the user's sessions most-recent-first. An un-ended record
// at the head indicates an active session.
func (s *Store) History(ctx context.Context, userID types.ID, limit, offset int) ([]*Record, error) {
	rows, err := s.db.Query(ctx, `
        SELECT `+recordColumns+`
        FROM parking_sessions
        WHERE user_id = $1
        ORDER BY started_at DESC
        LIMIT $2 OFFSET $3`,
		string(userID), limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Store) HasActive(ctx context.Context, userID types.ID) (bool, error) {
	row := s.db.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM parking_sessions
            WHERE user_id = $1 AND ended_at IS NULL
        )`, string(userID),
	)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func scanRecord(row pgx.Row) (*Record, error) {
	var r Record
	var adjustedAt, endedAt sql.NullTime
	err := row.Scan(
		&r.ID, &r.UserID, &r.StartedAt, &adjustedAt,
		&r.Position.Lat, &r.Position.Lng,
		&r.Note, &r.HasPhoto, &endedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	r.AdjustedStartedAt = toTimePtr(adjustedAt)
	r.EndedAt = toTimePtr(endedAt)
	return &r, nil
}

func toTimePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

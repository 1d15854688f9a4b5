// README: Parking service tests against a mocked pgx pool.
package parking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"

	"parkwatch/internal/types"
)

var recordRowColumns = []string{
	"id", "user_id", "started_at", "adjusted_started_at",
	"lat", "lng", "note", "has_photo", "ended_at",
}

func newMockService(t *testing.T) (pgxmock.PgxPoolIface, *Service) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock, NewService(NewStore(mock))
}

func TestCreateStartsSession(t *testing.T) {
	mock, svc := newMockService(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`INSERT INTO parking_sessions`).
		WithArgs(pgxmock.AnyArg(), "user-1", pgxmock.AnyArg(), pgxmock.AnyArg(),
			41.0082, 28.9784, "level B2, near the elevator", false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	r, err := svc.Create(context.Background(), CreateCommand{
		UserID:   "user-1",
		Position: types.Point{Lat: 41.0082, Lng: 28.9784},
		Note:     "level B2, near the elevator",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if r.ID == "" {
		t.Error("expected a generated session id")
	}
	if r.StartedAt.Location() != time.UTC {
		t.Error("started_at should be stored in UTC")
	}
	if r.EndedAt != nil {
		t.Error("new session must be active")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateRejectsSecondActiveSession(t *testing.T) {
	mock, svc := newMockService(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := svc.Create(context.Background(), CreateCommand{
		UserID:   "user-1",
		Position: types.Point{Lat: 41.0, Lng: 29.0},
	})
	if !errors.Is(err, ErrActiveExists) {
		t.Fatalf("err = %v, want ErrActiveExists", err)
	}
}

func TestCreateValidation(t *testing.T) {
	_, svc := newMockService(t)
	future := time.Now().UTC().Add(time.Hour)

	tests := []struct {
		name string
		cmd  CreateCommand
	}{
		{"missing user", CreateCommand{Position: types.Point{Lat: 41, Lng: 29}}},
		{"latitude out of range", CreateCommand{UserID: "u", Position: types.Point{Lat: 91, Lng: 29}}},
		{"longitude out of range", CreateCommand{UserID: "u", Position: types.Point{Lat: 41, Lng: 181}}},
		{"future adjusted start", CreateCommand{UserID: "u", Position: types.Point{Lat: 41, Lng: 29}, AdjustedStartedAt: &future}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), tt.cmd); !errors.Is(err, ErrBadRequest) {
				t.Errorf("err = %v, want ErrBadRequest", err)
			}
		})
	}
}

func TestCreateAcceptsBackdatedStart(t *testing.T) {
	mock, svc := newMockService(t)
	adjusted := time.Now().UTC().Add(-15 * time.Minute)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`INSERT INTO parking_sessions`).
		WithArgs(pgxmock.AnyArg(), "user-1", pgxmock.AnyArg(), &adjusted,
			41.0, 29.0, "", false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	r, err := svc.Create(context.Background(), CreateCommand{
		UserID:            "user-1",
		Position:          types.Point{Lat: 41.0, Lng: 29.0},
		AdjustedStartedAt: &adjusted,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if r.AdjustedStartedAt == nil || !r.AdjustedStartedAt.Equal(adjusted) {
		t.Errorf("adjusted start not carried: %v", r.AdjustedStartedAt)
	}
}

func TestEndActiveSession(t *testing.T) {
	mock, svc := newMockService(t)
	started := time.Now().UTC().Add(-time.Hour)
	endedAt := time.Now().UTC()

	mock.ExpectExec(`UPDATE parking_sessions`).
		WithArgs(endedAt, "sess-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(`FROM parking_sessions\s+WHERE id`).
		WithArgs("sess-1").
		WillReturnRows(pgxmock.NewRows(recordRowColumns).
			AddRow(types.ID("sess-1"), types.ID("user-1"), started, nil,
				41.0082, 28.9784, "", false, endedAt))

	r, err := svc.End(context.Background(), "sess-1", endedAt)
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if r.EndedAt == nil || !r.EndedAt.Equal(endedAt) {
		t.Errorf("ended_at = %v, want %v", r.EndedAt, endedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEndAlreadyEndedSession(t *testing.T) {
	mock, svc := newMockService(t)
	started := time.Now().UTC().Add(-2 * time.Hour)
	ended := time.Now().UTC().Add(-time.Hour)

	mock.ExpectExec(`UPDATE parking_sessions`).
		WithArgs(pgxmock.AnyArg(), "sess-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(`FROM parking_sessions\s+WHERE id`).
		WithArgs("sess-1").
		WillReturnRows(pgxmock.NewRows(recordRowColumns).
			AddRow(types.ID("sess-1"), types.ID("user-1"), started, nil,
				41.0, 29.0, "", false, ended))

	_, err := svc.End(context.Background(), "sess-1", time.Time{})
	if !errors.Is(err, ErrNotActive) {
		t.Fatalf("err = %v, want ErrNotActive", err)
	}
}

func TestEndUnknownSession(t *testing.T) {
	mock, svc := newMockService(t)

	mock.ExpectExec(`UPDATE parking_sessions`).
		WithArgs(pgxmock.AnyArg(), "ghost").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(`FROM parking_sessions\s+WHERE id`).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.End(context.Background(), "ghost", time.Time{})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestHistoryClampsPaging(t *testing.T) {
	mock, svc := newMockService(t)
	started := time.Now().UTC().Add(-time.Hour)

	mock.ExpectQuery(`ORDER BY started_at DESC`).
		WithArgs("user-1", 20, 0).
		WillReturnRows(pgxmock.NewRows(recordRowColumns).
			AddRow(types.ID("sess-2"), types.ID("user-1"), started, nil,
				41.0, 29.0, "", false, nil).
			AddRow(types.ID("sess-1"), types.ID("user-1"), started.Add(-time.Hour), nil,
				41.0, 29.0, "", true, started))

	records, err := svc.History(context.Background(), "user-1", 0, -3)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if !records[0].Active() || records[1].Active() {
		t.Error("head record should be the active one")
	}

	mock.ExpectQuery(`ORDER BY started_at DESC`).
		WithArgs("user-1", 100, 0).
		WillReturnRows(pgxmock.NewRows(recordRowColumns))

	if _, err := svc.History(context.Background(), "user-1", 500, 0); err != nil {
		t.Fatalf("history with oversized limit: %v", err)
	}
	if _, err := svc.History(context.Background(), "", 10, 0); !errors.Is(err, ErrBadRequest) {
		t.Errorf("err = %v, want ErrBadRequest for empty user", err)
	}
}

package session

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"musicapp/internal/models"
)

var sessionColumns = []string{
	"id", "user_id", "username", "email", "first_name", "last_name", "profile_image_url",
	"roles", "persistent", "issued_at", "expires_at", "renewed_at", "refresh_id",
}

func sampleRecord() Record {
	issued := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return Record{
		ID:         "sess-1",
		User:       models.AuthUserSummary{ID: 7, Username: "alice", Email: "alice@example.com", Roles: []string{"User"}},
		Persistent: true,
		IssuedAt:   issued,
		ExpiresAt:  issued.Add(7 * 24 * time.Hour),
		RenewedAt:  issued,
		RefreshID:  "refresh-1",
	}
}

func TestSQLStoreCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := NewSQLStore(db)
	rec := sampleRecord()

	mock.ExpectExec(`INSERT INTO auth_sessions`).
		WithArgs(rec.ID, rec.User.ID, rec.User.Username, rec.User.Email, "", "", "",
			sqlmock.AnyArg(), true, rec.IssuedAt, rec.ExpiresAt, rec.RenewedAt, rec.RefreshID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.Create(context.Background(), rec); err != nil {
		t.Fatalf("Create: %v", err)
	}

	mock.ExpectExec(`INSERT INTO auth_sessions`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	if err := s.Create(context.Background(), rec); !errors.Is(err, ErrSessionExists) {
		t.Fatalf("expected ErrSessionExists, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSQLStoreGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := NewSQLStore(db)
	want := sampleRecord()

	mock.ExpectQuery(`SELECT (.+) FROM auth_sessions\s+WHERE id = \$1`).
		WithArgs("sess-1").
		WillReturnRows(sqlmock.NewRows(sessionColumns).AddRow(
			want.ID, want.User.ID, want.User.Username, want.User.Email, "", "", "",
			"{User}", true, want.IssuedAt, want.ExpiresAt, want.RenewedAt, want.RefreshID,
		))

	got, err := s.Get(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.User.ID != 7 || got.User.Username != "alice" {
		t.Fatalf("unexpected user %+v", got.User)
	}
	if len(got.User.Roles) != 1 || got.User.Roles[0] != "User" {
		t.Fatalf("unexpected roles %v", got.User.Roles)
	}
	if !got.ExpiresAt.Equal(want.ExpiresAt) || got.RefreshID != "refresh-1" {
		t.Fatalf("unexpected record %+v", got)
	}

	mock.ExpectQuery(`SELECT (.+) FROM auth_sessions`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSQLStoreMutations(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := NewSQLStore(db)
	ctx := context.Background()
	at := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE auth_sessions\s+SET expires_at = GREATEST\(expires_at, \$2\)\s+WHERE id = \$1`).
		WithArgs("sess-1", at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE auth_sessions\s+SET renewed_at = \$2\s+WHERE id = \$1`).
		WithArgs("sess-1", at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE auth_sessions\s+SET refresh_id = \$3, expires_at = GREATEST\(expires_at, \$4\)\s+WHERE id = \$1 AND refresh_id = \$2`).
		WithArgs("sess-1", "refresh-1", "refresh-2", at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE auth_sessions\s+SET refresh_id`).
		WithArgs("sess-1", "refresh-1", "refresh-3", at).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`UPDATE auth_sessions\s+SET expires_at`).
		WithArgs("missing", at).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.Touch(ctx, "sess-1", at); err != nil {
		t.Fatalf("Touch: %v", err)
	}
	if err := s.MarkRenewed(ctx, "sess-1", at); err != nil {
		t.Fatalf("MarkRenewed: %v", err)
	}
	if err := s.RotateRefresh(ctx, "sess-1", "refresh-1", "refresh-2", at); err != nil {
		t.Fatalf("RotateRefresh: %v", err)
	}
	if err := s.RotateRefresh(ctx, "sess-1", "refresh-1", "refresh-3", at); !errors.Is(err, ErrRefreshReused) {
		t.Fatalf("expected ErrRefreshReused for a stale refresh id, got %v", err)
	}
	if err := s.Touch(ctx, "missing", at); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSQLStoreDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := NewSQLStore(db)

	mock.ExpectExec(`DELETE FROM auth_sessions\s+WHERE id = \$1`).
		WithArgs("sess-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM auth_sessions\s+WHERE user_id = \$1`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	if err := s.Delete(context.Background(), "sess-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	n, err := s.DeleteByUser(context.Background(), 7)
	if err != nil {
		t.Fatalf("DeleteByUser: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 deleted sessions, got %d", n)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestManagerWithSQLStore(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	m, err := NewManager(NewSQLStore(db), Options{SigningKey: []byte(testKey)})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	mock.ExpectExec(`INSERT INTO auth_sessions`).
		WillReturnError(errors.New("connection refused"))

	if _, err := m.Issue(context.Background(), alice, false); err == nil {
		t.Fatalf("expected issue to fail when the store is down")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// Schema creates the table used by SQLStore.
const Schema = `
CREATE TABLE IF NOT EXISTS auth_sessions (
	id                TEXT PRIMARY KEY,
	user_id           BIGINT NOT NULL,
	username          TEXT NOT NULL,
	email             TEXT NOT NULL,
	first_name        TEXT NOT NULL DEFAULT '',
	last_name         TEXT NOT NULL DEFAULT '',
	profile_image_url TEXT NOT NULL DEFAULT '',
	roles             TEXT[] NOT NULL DEFAULT '{}',
	persistent        BOOLEAN NOT NULL,
	issued_at         TIMESTAMPTZ NOT NULL,
	expires_at        TIMESTAMPTZ NOT NULL,
	renewed_at        TIMESTAMPTZ NOT NULL,
	refresh_id        TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS auth_sessions_user_id_idx ON auth_sessions (user_id);
`

// SQLStore persists sessions in Postgres.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore wraps an open database handle.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Migrate creates the sessions table when missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create sessions table: %w", err)
	}
	return nil
}

func (s *SQLStore) Create(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO auth_sessions (
			id, user_id, username, email, first_name, last_name, profile_image_url,
			roles, persistent, issued_at, expires_at, renewed_at, refresh_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		rec.ID, rec.User.ID, rec.User.Username, rec.User.Email, rec.User.FirstName,
		rec.User.LastName, rec.User.ProfileImageURL, pq.Array(rec.User.Roles),
		rec.Persistent, rec.IssuedAt, rec.ExpiresAt, rec.RenewedAt, rec.RefreshID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSessionExists
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (Record, error) {
	var (
		rec   Record
		roles []string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, username, email, first_name, last_name, profile_image_url,
		       roles, persistent, issued_at, expires_at, renewed_at, refresh_id
		FROM auth_sessions
		WHERE id = $1
	`, id).Scan(
		&rec.ID, &rec.User.ID, &rec.User.Username, &rec.User.Email, &rec.User.FirstName,
		&rec.User.LastName, &rec.User.ProfileImageURL, pq.Array(&roles),
		&rec.Persistent, &rec.IssuedAt, &rec.ExpiresAt, &rec.RenewedAt, &rec.RefreshID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrSessionNotFound
		}
		return Record{}, fmt.Errorf("lookup session: %w", err)
	}
	rec.User.Roles = roles
	return rec, nil
}

func (s *SQLStore) Touch(ctx context.Context, id string, expiresAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE auth_sessions
		SET expires_at = GREATEST(expires_at, $2)
		WHERE id = $1
	`, id, expiresAt)
	if err != nil {
		return fmt.Errorf("slide session: %w", err)
	}
	return expectRow(res, ErrSessionNotFound)
}

func (s *SQLStore) MarkRenewed(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE auth_sessions
		SET renewed_at = $2
		WHERE id = $1
	`, id, at)
	if err != nil {
		return fmt.Errorf("renew session: %w", err)
	}
	return expectRow(res, ErrSessionNotFound)
}

func (s *SQLStore) RotateRefresh(ctx context.Context, id, oldID, newID string, expiresAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE auth_sessions
		SET refresh_id = $3, expires_at = GREATEST(expires_at, $4)
		WHERE id = $1 AND refresh_id = $2
	`, id, oldID, newID, expiresAt)
	if err != nil {
		return fmt.Errorf("rotate refresh token: %w", err)
	}
	return expectRow(res, ErrRefreshReused)
}

func expectRow(res sql.Result, none error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return none
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM auth_sessions
		WHERE id = $1
	`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SQLStore) DeleteByUser(ctx context.Context, userID int64) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM auth_sessions
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete user sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete user sessions: %w", err)
	}
	return int(n), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"musicapp/internal/models"
	"musicapp/internal/store"
)

var (
	// ErrNoCredential means the request carried neither cookie nor bearer token.
	ErrNoCredential = fmt.Errorf("no credential: %w", store.ErrUnauthorized)
	// ErrInvalidToken covers malformed, forged or wrongly typed tokens.
	ErrInvalidToken = fmt.Errorf("invalid token: %w", store.ErrUnauthorized)
	// ErrSessionNotFound means the session was revoked or never existed.
	ErrSessionNotFound = fmt.Errorf("session not found: %w", store.ErrUnauthorized)
	// ErrExpired means the sliding window or the maximum age has passed.
	ErrExpired = fmt.Errorf("session expired: %w", store.ErrUnauthorized)
	// ErrRefreshReused means a rotated refresh token was presented again.
	ErrRefreshReused = fmt.Errorf("refresh token reused: %w", store.ErrUnauthorized)

	// ErrSessionExists is returned by stores for duplicate session ids.
	ErrSessionExists = errors.New("session already exists")
)

// Record is the server-side half of a session.
type Record struct {
	ID         string
	User       models.AuthUserSummary
	Persistent bool
	IssuedAt   time.Time
	ExpiresAt  time.Time
	// RenewedAt is when the cookie was last written.
	RenewedAt time.Time
	RefreshID string
}

// Deadline is the hard limit no sliding can pass.
func (r Record) Deadline(maxAge time.Duration) time.Time {
	return r.IssuedAt.Add(maxAge)
}

// Store persists session records. Each mutation touches only the columns
// it owns so concurrent slides and refresh rotations never overwrite each
// other.
type Store interface {
	Create(ctx context.Context, rec Record) error
	Get(ctx context.Context, id string) (Record, error)
	// Touch moves the expiry forward. An earlier expiresAt is ignored.
	Touch(ctx context.Context, id string, expiresAt time.Time) error
	// MarkRenewed records when the cookie was last written.
	MarkRenewed(ctx context.Context, id string, at time.Time) error
	// RotateRefresh swaps the refresh id only when it still equals oldID,
	// returning ErrRefreshReused otherwise.
	RotateRefresh(ctx context.Context, id, oldID, newID string, expiresAt time.Time) error
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID int64) (int, error)
}

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Record
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Record)}
}

func (s *MemoryStore) Create(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[rec.ID]; ok {
		return ErrSessionExists
	}
	s.sessions[rec.ID] = cloneRecord(rec)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.sessions[id]
	if !ok {
		return Record{}, ErrSessionNotFound
	}
	return cloneRecord(rec), nil
}

func (s *MemoryStore) Touch(_ context.Context, id string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	if expiresAt.After(rec.ExpiresAt) {
		rec.ExpiresAt = expiresAt
		s.sessions[id] = rec
	}
	return nil
}

func (s *MemoryStore) MarkRenewed(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	rec.RenewedAt = at
	s.sessions[id] = rec
	return nil
}

func (s *MemoryStore) RotateRefresh(_ context.Context, id, oldID, newID string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	if rec.RefreshID != oldID {
		return ErrRefreshReused
	}
	rec.RefreshID = newID
	if expiresAt.After(rec.ExpiresAt) {
		rec.ExpiresAt = expiresAt
	}
	s.sessions[id] = rec
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) DeleteByUser(_ context.Context, userID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, rec := range s.sessions {
		if rec.User.ID == userID {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}

func cloneRecord(rec Record) Record {
	rec.User.Roles = append([]string(nil), rec.User.Roles...)
	return rec
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*SQLStore)(nil)
)

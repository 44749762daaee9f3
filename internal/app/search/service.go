package search

import (
	"context"
	"strings"
	"unicode/utf8"

	"musicapp/internal/models"
	"musicapp/internal/store"
)

const (
	// MinQueryLength is the shortest query that reaches the catalog.
	MinQueryLength = 2
	// DefaultLimit caps each result group when the caller gives no limit.
	DefaultLimit = 10
	// MaxLimit bounds caller supplied limits.
	MaxLimit = 50
)

// Store captures the persistence needs for catalog search.
type Store interface {
	Search(ctx context.Context, query string, limit int) (models.SearchResults, error)
}

// Service searches songs, artists, albums and public playlists at once.
type Service interface {
	Search(ctx context.Context, query string, limit int) (models.SearchResults, error)
}

type service struct {
	store Store
}

// New constructs a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Search(ctx context.Context, query string, limit int) (models.SearchResults, error) {
	if err := ctx.Err(); err != nil {
		return models.SearchResults{}, err
	}
	trimmed := strings.TrimSpace(query)
	if utf8.RuneCountInString(trimmed) < MinQueryLength {
		return models.SearchResults{}, store.NewValidationError("query", "must be at least 2 characters")
	}
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	return s.store.Search(ctx, trimmed, limit)
}

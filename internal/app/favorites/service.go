package favorites

import (
	"context"
	"errors"

	"musicapp/internal/models"
	"musicapp/internal/store"
)

// Store captures the persistence needs for favorite workflows.
type Store interface {
	AddFavorite(ctx context.Context, userID int64, target models.FavoriteTarget) (models.UserFavorite, bool, error)
	RemoveFavorite(ctx context.Context, userID int64, target models.FavoriteTarget) error
	IsFavorite(ctx context.Context, userID int64, target models.FavoriteTarget) (bool, error)
	ListFavorites(ctx context.Context, userID int64, kind models.ContentType) ([]models.UserFavorite, error)
	ResolveFavorite(ctx context.Context, fav models.UserFavorite) (models.FavoriteView, error)
	GetPlaylist(ctx context.Context, id int64) (models.Playlist, error)
}

// Service manages a user's favorites.
type Service interface {
	Add(ctx context.Context, userID int64, req models.FavoriteRequest) (models.UserFavorite, bool, error)
	Remove(ctx context.Context, userID int64, req models.FavoriteRequest) error
	IsFavorite(ctx context.Context, userID int64, req models.FavoriteRequest) (bool, error)
	List(ctx context.Context, userID int64, kind string) ([]models.FavoriteView, error)
}

type service struct {
	store Store
}

// New constructs a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Add(ctx context.Context, userID int64, req models.FavoriteRequest) (models.UserFavorite, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.UserFavorite{}, false, err
	}
	target, err := s.target(ctx, userID, req)
	if err != nil {
		return models.UserFavorite{}, false, err
	}
	return s.store.AddFavorite(ctx, userID, target)
}

func (s *service) Remove(ctx context.Context, userID int64, req models.FavoriteRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := parse(req)
	if err != nil {
		return err
	}
	return s.store.RemoveFavorite(ctx, userID, target)
}

func (s *service) IsFavorite(ctx context.Context, userID int64, req models.FavoriteRequest) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	target, err := parse(req)
	if err != nil {
		return false, err
	}
	return s.store.IsFavorite(ctx, userID, target)
}

// List resolves the user's favorites, newest first. An empty kind lists
// every content type.
func (s *service) List(ctx context.Context, userID int64, kind string) ([]models.FavoriteView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var ct models.ContentType
	if kind != "" {
		var err error
		if ct, err = models.ParseContentType(kind); err != nil {
			return nil, store.NewValidationError("contentType", "must be one of Song, Album, Artist, Playlist")
		}
	}

	favs, err := s.store.ListFavorites(ctx, userID, ct)
	if err != nil {
		return nil, err
	}
	out := make([]models.FavoriteView, 0, len(favs))
	for _, f := range favs {
		view, err := s.store.ResolveFavorite(ctx, f)
		if err != nil {
			// the target was deleted between the two reads
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, err
		}
		// a playlist favorited while public stays hidden once made private
		if pl := view.Playlist; pl != nil && !pl.IsPublic && pl.OwnerID != userID {
			continue
		}
		out = append(out, view)
	}
	return out, nil
}

// target parses the request and rejects private playlists of other users.
func (s *service) target(ctx context.Context, userID int64, req models.FavoriteRequest) (models.FavoriteTarget, error) {
	target, err := parse(req)
	if err != nil {
		return nil, err
	}
	if pt, ok := target.(models.PlaylistTarget); ok {
		p, err := s.store.GetPlaylist(ctx, pt.PlaylistID)
		if err != nil {
			return nil, err
		}
		if !p.IsPublic && p.OwnerID != userID {
			return nil, store.ErrPlaylistNotFound
		}
	}
	return target, nil
}

func parse(req models.FavoriteRequest) (models.FavoriteTarget, error) {
	if req.ContentID <= 0 {
		return nil, store.NewValidationError("contentId", "must be greater than 0")
	}
	target, err := models.ParseTarget(req.ContentType, req.ContentID)
	if err != nil {
		return nil, store.NewValidationError("contentType", "must be one of Song, Album, Artist, Playlist")
	}
	return target, nil
}

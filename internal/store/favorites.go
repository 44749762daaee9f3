package store

import (
	"context"
	"fmt"
	"sort"

	"musicapp/internal/models"
)

// AddFavorite records a favorite. Favoriting the same target twice returns
// the existing row, unchanged, with created=false.
func (s *Store) AddFavorite(ctx context.Context, userID int64, target models.FavoriteTarget) (models.UserFavorite, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.UserFavorite{}, false, err
	}
	if target == nil {
		return models.UserFavorite{}, false, NewValidationError("contentType", "is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return models.UserFavorite{}, false, ErrUserNotFound
	}
	if err := s.targetExistsLocked(target); err != nil {
		return models.UserFavorite{}, false, err
	}

	k := favoriteKey{userID, target.ContentType(), target.TargetID()}
	if id, ok := s.favoriteKeys[k]; ok {
		return *s.favorites[id], false, nil
	}

	s.nextFavoriteID++
	fav := models.UserFavorite{
		ID:        s.nextFavoriteID,
		UserID:    userID,
		Target:    target,
		CreatedAt: s.now(),
	}
	stored := fav
	s.favorites[fav.ID] = &stored
	s.favoriteKeys[k] = fav.ID
	return fav, true, nil
}

// RemoveFavorite deletes the user's favorite for target.
func (s *Store) RemoveFavorite(ctx context.Context, userID int64, target models.FavoriteTarget) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if target == nil {
		return NewValidationError("contentType", "is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.favoriteKeys[favoriteKey{userID, target.ContentType(), target.TargetID()}]
	if !ok {
		return ErrFavoriteNotFound
	}
	s.removeFavoriteLocked(id)
	return nil
}

// IsFavorite reports whether the user has favorited target.
func (s *Store) IsFavorite(ctx context.Context, userID int64, target models.FavoriteTarget) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if target == nil {
		return false, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.favoriteKeys[favoriteKey{userID, target.ContentType(), target.TargetID()}]
	return ok, nil
}

// ListFavorites returns the user's favorites, newest first. A non-empty
// kind restricts the listing to one content type.
func (s *Store) ListFavorites(ctx context.Context, userID int64, kind models.ContentType) ([]models.UserFavorite, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.users[userID]; !ok {
		return nil, ErrUserNotFound
	}

	out := make([]models.UserFavorite, 0)
	for _, f := range s.favorites {
		if f.UserID != userID {
			continue
		}
		if kind != "" && f.Target.ContentType() != kind {
			continue
		}
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// ResolveFavorite loads the entity a favorite points at.
func (s *Store) ResolveFavorite(ctx context.Context, fav models.UserFavorite) (models.FavoriteView, error) {
	if err := ctx.Err(); err != nil {
		return models.FavoriteView{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	view := models.FavoriteView{Favorite: fav}
	switch t := fav.Target.(type) {
	case models.SongTarget:
		so, ok := s.songs[t.SongID]
		if !ok {
			return models.FavoriteView{}, ErrSongNotFound
		}
		sv := s.viewLocked(so)
		view.Song = &sv
	case models.AlbumTarget:
		al, ok := s.albums[t.AlbumID]
		if !ok {
			return models.FavoriteView{}, ErrAlbumNotFound
		}
		view.Album = cloneAlbum(al)
	case models.ArtistTarget:
		a, ok := s.artists[t.ArtistID]
		if !ok {
			return models.FavoriteView{}, ErrArtistNotFound
		}
		view.Artist = cloneArtist(a)
	case models.PlaylistTarget:
		p, ok := s.playlists[t.PlaylistID]
		if !ok {
			return models.FavoriteView{}, ErrPlaylistNotFound
		}
		view.Playlist = clonePlaylist(p)
	default:
		return models.FavoriteView{}, fmt.Errorf("resolve favorite %d: %w", fav.ID, models.ErrUnknownContentType)
	}
	return view, nil
}

func (s *Store) targetExistsLocked(target models.FavoriteTarget) error {
	switch t := target.(type) {
	case models.SongTarget:
		if _, ok := s.songs[t.SongID]; !ok {
			return ErrSongNotFound
		}
	case models.AlbumTarget:
		if _, ok := s.albums[t.AlbumID]; !ok {
			return ErrAlbumNotFound
		}
	case models.ArtistTarget:
		if _, ok := s.artists[t.ArtistID]; !ok {
			return ErrArtistNotFound
		}
	case models.PlaylistTarget:
		if _, ok := s.playlists[t.PlaylistID]; !ok {
			return ErrPlaylistNotFound
		}
	default:
		return NewValidationError("contentType", "is invalid")
	}
	return nil
}

func (s *Store) removeFavoriteLocked(id int64) {
	f, ok := s.favorites[id]
	if !ok {
		return
	}
	delete(s.favoriteKeys, favoriteKey{f.UserID, f.Target.ContentType(), f.Target.TargetID()})
	delete(s.favorites, id)
}

func (s *Store) removeTargetFavoritesLocked(kind models.ContentType, targetID int64) {
	for id, f := range s.favorites {
		if f.Target.ContentType() == kind && f.Target.TargetID() == targetID {
			s.removeFavoriteLocked(id)
		}
	}
}

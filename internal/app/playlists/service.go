package playlists

import (
	"context"
	"errors"

	"musicapp/internal/models"
	"musicapp/internal/store"
)

// Store captures the persistence needs for playlist workflows.
type Store interface {
	CreatePlaylist(ctx context.Context, p models.Playlist) (models.Playlist, error)
	GetPlaylist(ctx context.Context, id int64) (models.Playlist, error)
	ListPlaylists(ctx context.Context, ownerID int64) ([]models.Playlist, error)
	UpdatePlaylist(ctx context.Context, id int64, patch models.PlaylistPatch) (models.Playlist, error)
	DeletePlaylist(ctx context.Context, id int64) error
	PlaylistSongs(ctx context.Context, id int64) ([]models.SongView, error)
	AddSongToPlaylist(ctx context.Context, playlistID, songID int64) (models.Playlist, bool, error)
	RemoveSongFromPlaylist(ctx context.Context, playlistID, songID int64) (models.Playlist, error)
	AddAlbumToPlaylist(ctx context.Context, playlistID, albumID int64) (models.Playlist, int, error)
	CopyPlaylist(ctx context.Context, sourceID, ownerID int64) (models.Playlist, error)
	PlaylistsContaining(ctx context.Context, songID int64) ([]int64, error)
	GetUser(ctx context.Context, id int64) (models.User, error)
}

// Detail is a playlist with its owner and resolved songs in order.
type Detail struct {
	Playlist models.Playlist   `json:"playlist"`
	Owner    string            `json:"owner"`
	Songs    []models.SongView `json:"songs"`
}

// Service coordinates playlist-related operations. The actor is the id of
// the authenticated user; zero means anonymous. Only owners mutate a
// playlist and private playlists are invisible to everyone else.
type Service interface {
	Public(ctx context.Context) ([]models.Playlist, error)
	Mine(ctx context.Context, actor int64) ([]models.Playlist, error)
	Get(ctx context.Context, actor, id int64) (Detail, error)
	Create(ctx context.Context, actor int64, p models.Playlist) (models.Playlist, error)
	Update(ctx context.Context, actor, id int64, patch models.PlaylistPatch) (models.Playlist, error)
	Delete(ctx context.Context, actor, id int64) error
	AddSong(ctx context.Context, actor, playlistID, songID int64) (models.Playlist, bool, error)
	RemoveSong(ctx context.Context, actor, playlistID, songID int64) (models.Playlist, error)
	AddAlbum(ctx context.Context, actor, playlistID, albumID int64) (models.Playlist, int, error)
	Copy(ctx context.Context, actor, id int64) (models.Playlist, error)
	Featuring(ctx context.Context, actor, songID int64) ([]models.Playlist, error)
}

type service struct {
	store Store
}

// New constructs a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Public(ctx context.Context) ([]models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListPlaylists(ctx, 0)
}

func (s *service) Mine(ctx context.Context, actor int64) ([]models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if actor == 0 {
		return nil, store.ErrUnauthorized
	}
	return s.store.ListPlaylists(ctx, actor)
}

func (s *service) Get(ctx context.Context, actor, id int64) (Detail, error) {
	if err := ctx.Err(); err != nil {
		return Detail{}, err
	}
	p, err := s.visible(ctx, actor, id)
	if err != nil {
		return Detail{}, err
	}
	songs, err := s.store.PlaylistSongs(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	d := Detail{Playlist: p, Songs: songs}
	if owner, err := s.store.GetUser(ctx, p.OwnerID); err == nil {
		d.Owner = owner.DisplayName()
	}
	return d, nil
}

func (s *service) Create(ctx context.Context, actor int64, p models.Playlist) (models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return models.Playlist{}, err
	}
	if actor == 0 {
		return models.Playlist{}, store.ErrUnauthorized
	}
	p.OwnerID = actor
	return s.store.CreatePlaylist(ctx, p)
}

func (s *service) Update(ctx context.Context, actor, id int64, patch models.PlaylistPatch) (models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return models.Playlist{}, err
	}
	if _, err := s.owned(ctx, actor, id); err != nil {
		return models.Playlist{}, err
	}
	return s.store.UpdatePlaylist(ctx, id, patch)
}

func (s *service) Delete(ctx context.Context, actor, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	return s.store.DeletePlaylist(ctx, id)
}

func (s *service) AddSong(ctx context.Context, actor, playlistID, songID int64) (models.Playlist, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.Playlist{}, false, err
	}
	if _, err := s.owned(ctx, actor, playlistID); err != nil {
		return models.Playlist{}, false, err
	}
	return s.store.AddSongToPlaylist(ctx, playlistID, songID)
}

func (s *service) RemoveSong(ctx context.Context, actor, playlistID, songID int64) (models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return models.Playlist{}, err
	}
	if _, err := s.owned(ctx, actor, playlistID); err != nil {
		return models.Playlist{}, err
	}
	return s.store.RemoveSongFromPlaylist(ctx, playlistID, songID)
}

// AddAlbum appends an album's tracks and reports how many were new.
func (s *service) AddAlbum(ctx context.Context, actor, playlistID, albumID int64) (models.Playlist, int, error) {
	if err := ctx.Err(); err != nil {
		return models.Playlist{}, 0, err
	}
	if _, err := s.owned(ctx, actor, playlistID); err != nil {
		return models.Playlist{}, 0, err
	}
	return s.store.AddAlbumToPlaylist(ctx, playlistID, albumID)
}

// Copy saves a private duplicate of a visible playlist into the actor's library.
func (s *service) Copy(ctx context.Context, actor, id int64) (models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return models.Playlist{}, err
	}
	if actor == 0 {
		return models.Playlist{}, store.ErrUnauthorized
	}
	if _, err := s.visible(ctx, actor, id); err != nil {
		return models.Playlist{}, err
	}
	return s.store.CopyPlaylist(ctx, id, actor)
}

// Featuring lists the playlists holding a song that the actor may see.
func (s *service) Featuring(ctx context.Context, actor, songID int64) ([]models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ids, err := s.store.PlaylistsContaining(ctx, songID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Playlist, 0, len(ids))
	for _, id := range ids {
		p, err := s.visible(ctx, actor, id)
		if errors.Is(err, store.ErrPlaylistNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *service) visible(ctx context.Context, actor, id int64) (models.Playlist, error) {
	p, err := s.store.GetPlaylist(ctx, id)
	if err != nil {
		return models.Playlist{}, err
	}
	if !p.IsPublic && p.OwnerID != actor {
		return models.Playlist{}, store.ErrPlaylistNotFound
	}
	return p, nil
}

// owned loads a playlist the actor may mutate. Playlists the actor cannot
// see report NotFound; visible playlists owned by someone else report Forbidden.
func (s *service) owned(ctx context.Context, actor, id int64) (models.Playlist, error) {
	if actor == 0 {
		return models.Playlist{}, store.ErrUnauthorized
	}
	p, err := s.visible(ctx, actor, id)
	if err != nil {
		return models.Playlist{}, err
	}
	if p.OwnerID != actor {
		return models.Playlist{}, store.ErrForbidden
	}
	return p, nil
}

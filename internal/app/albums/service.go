package albums

import (
	"context"

	"musicapp/internal/models"
	"musicapp/internal/store"
)

// Store captures the persistence needs for album workflows.
type Store interface {
	CreateAlbum(ctx context.Context, al models.Album) (models.Album, error)
	GetAlbum(ctx context.Context, id int64) (models.Album, error)
	ListAlbums(ctx context.Context, artistID int64) ([]models.Album, error)
	UpdateAlbum(ctx context.Context, id int64, patch models.AlbumPatch) (models.Album, error)
	DeleteAlbum(ctx context.Context, id int64) error
	GetArtist(ctx context.Context, id int64) (models.Artist, error)
	ListSongs(ctx context.Context, filter store.SongFilter) ([]models.SongView, error)
}

// Detail is an album with its artist and track listing.
type Detail struct {
	Album  models.Album      `json:"album"`
	Artist models.Artist     `json:"artist"`
	Tracks []models.SongView `json:"tracks"`
}

// Service coordinates album-related operations.
type Service interface {
	List(ctx context.Context, artistID int64) ([]models.Album, error)
	Get(ctx context.Context, id int64) (Detail, error)
	Create(ctx context.Context, al models.Album) (models.Album, error)
	Update(ctx context.Context, id int64, patch models.AlbumPatch) (models.Album, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	store Store
}

// New constructs a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) List(ctx context.Context, artistID int64) ([]models.Album, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListAlbums(ctx, artistID)
}

func (s *service) Get(ctx context.Context, id int64) (Detail, error) {
	if err := ctx.Err(); err != nil {
		return Detail{}, err
	}
	al, err := s.store.GetAlbum(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	artist, err := s.store.GetArtist(ctx, al.ArtistID)
	if err != nil {
		return Detail{}, err
	}
	tracks, err := s.store.ListSongs(ctx, store.SongFilter{AlbumID: id})
	if err != nil {
		return Detail{}, err
	}
	return Detail{Album: al, Artist: artist, Tracks: tracks}, nil
}

func (s *service) Create(ctx context.Context, al models.Album) (models.Album, error) {
	if err := ctx.Err(); err != nil {
		return models.Album{}, err
	}
	return s.store.CreateAlbum(ctx, al)
}

func (s *service) Update(ctx context.Context, id int64, patch models.AlbumPatch) (models.Album, error) {
	if err := ctx.Err(); err != nil {
		return models.Album{}, err
	}
	return s.store.UpdateAlbum(ctx, id, patch)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeleteAlbum(ctx, id)
}

package artists

import (
	"context"

	"musicapp/internal/models"
)

// Store captures the persistence needs for artist workflows.
type Store interface {
	CreateArtist(ctx context.Context, a models.Artist) (models.Artist, error)
	GetArtist(ctx context.Context, id int64) (models.Artist, error)
	ListArtists(ctx context.Context) ([]models.Artist, error)
	UpdateArtist(ctx context.Context, id int64, patch models.ArtistPatch) (models.Artist, error)
	DeleteArtist(ctx context.Context, id int64) error
	ListAlbums(ctx context.Context, artistID int64) ([]models.Album, error)
}

// Detail is an artist with its discography.
type Detail struct {
	Artist models.Artist  `json:"artist"`
	Albums []models.Album `json:"albums"`
}

// Service coordinates artist-related operations.
type Service interface {
	List(ctx context.Context) ([]models.Artist, error)
	Get(ctx context.Context, id int64) (Detail, error)
	Create(ctx context.Context, a models.Artist) (models.Artist, error)
	Update(ctx context.Context, id int64, patch models.ArtistPatch) (models.Artist, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	store Store
}

// New constructs a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) List(ctx context.Context) ([]models.Artist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListArtists(ctx)
}

func (s *service) Get(ctx context.Context, id int64) (Detail, error) {
	if err := ctx.Err(); err != nil {
		return Detail{}, err
	}
	a, err := s.store.GetArtist(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	albums, err := s.store.ListAlbums(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	return Detail{Artist: a, Albums: albums}, nil
}

func (s *service) Create(ctx context.Context, a models.Artist) (models.Artist, error) {
	if err := ctx.Err(); err != nil {
		return models.Artist{}, err
	}
	return s.store.CreateArtist(ctx, a)
}

func (s *service) Update(ctx context.Context, id int64, patch models.ArtistPatch) (models.Artist, error) {
	if err := ctx.Err(); err != nil {
		return models.Artist{}, err
	}
	return s.store.UpdateArtist(ctx, id, patch)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeleteArtist(ctx, id)
}

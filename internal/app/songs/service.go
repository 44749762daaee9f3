package songs

import (
	"context"

	"musicapp/internal/models"
	"musicapp/internal/store"
)

// Store captures the persistence needs for song workflows.
type Store interface {
	CreateSong(ctx context.Context, so models.Song) (models.Song, error)
	ResolveSong(ctx context.Context, id int64) (models.SongView, error)
	ListSongs(ctx context.Context, filter store.SongFilter) ([]models.SongView, error)
	UpdateSong(ctx context.Context, id int64, patch models.SongPatch) (models.Song, error)
	DeleteSong(ctx context.Context, id int64) error
	IncrementPlayCount(ctx context.Context, id int64) (models.Song, error)
}

// Service coordinates song-related operations.
type Service interface {
	List(ctx context.Context, filter store.SongFilter) ([]models.SongView, error)
	Get(ctx context.Context, id int64) (models.SongView, error)
	Create(ctx context.Context, so models.Song) (models.SongView, error)
	Update(ctx context.Context, id int64, patch models.SongPatch) (models.SongView, error)
	Delete(ctx context.Context, id int64) error
	Play(ctx context.Context, id int64) (models.Song, error)
}

type service struct {
	store Store
}

// New constructs a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) List(ctx context.Context, filter store.SongFilter) ([]models.SongView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListSongs(ctx, filter)
}

func (s *service) Get(ctx context.Context, id int64) (models.SongView, error) {
	if err := ctx.Err(); err != nil {
		return models.SongView{}, err
	}
	return s.store.ResolveSong(ctx, id)
}

func (s *service) Create(ctx context.Context, so models.Song) (models.SongView, error) {
	if err := ctx.Err(); err != nil {
		return models.SongView{}, err
	}
	created, err := s.store.CreateSong(ctx, so)
	if err != nil {
		return models.SongView{}, err
	}
	return s.store.ResolveSong(ctx, created.ID)
}

func (s *service) Update(ctx context.Context, id int64, patch models.SongPatch) (models.SongView, error) {
	if err := ctx.Err(); err != nil {
		return models.SongView{}, err
	}
	if _, err := s.store.UpdateSong(ctx, id, patch); err != nil {
		return models.SongView{}, err
	}
	return s.store.ResolveSong(ctx, id)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeleteSong(ctx, id)
}

// Play records one play of the song.
func (s *service) Play(ctx context.Context, id int64) (models.Song, error) {
	if err := ctx.Err(); err != nil {
		return models.Song{}, err
	}
	return s.store.IncrementPlayCount(ctx, id)
}

package store

import (
	"context"
	"sort"
	"strings"

	"musicapp/internal/models"
)

// CreateArtist adds an artist to the catalog.
func (s *Store) CreateArtist(ctx context.Context, a models.Artist) (models.Artist, error) {
	if err := ctx.Err(); err != nil {
		return models.Artist{}, err
	}

	normalizeArtist(&a)
	if err := s.check(a); err != nil {
		return models.Artist{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextArtistID++
	a.ID = s.nextArtistID
	a.CreatedAt = s.now()
	a.UpdatedAt = a.CreatedAt
	s.artists[a.ID] = cloneArtist(&a)
	return a, nil
}

// GetArtist returns an artist by id.
func (s *Store) GetArtist(ctx context.Context, id int64) (models.Artist, error) {
	if err := ctx.Err(); err != nil {
		return models.Artist{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.artists[id]
	if !ok {
		return models.Artist{}, ErrArtistNotFound
	}
	return *cloneArtist(a), nil
}

// ListArtists returns artists ordered by name, then id.
func (s *Store) ListArtists(ctx context.Context) ([]models.Artist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Artist, 0, len(s.artists))
	for _, a := range s.artists {
		out = append(out, *cloneArtist(a))
	}
	sort.Slice(out, func(i, j int) bool {
		ni, nj := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if ni != nj {
			return ni < nj
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// UpdateArtist applies a partial update.
func (s *Store) UpdateArtist(ctx context.Context, id int64, patch models.ArtistPatch) (models.Artist, error) {
	if err := ctx.Err(); err != nil {
		return models.Artist{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.artists[id]
	if !ok {
		return models.Artist{}, ErrArtistNotFound
	}

	next := *cloneArtist(existing)
	if patch.Name != nil {
		next.Name = *patch.Name
	}
	if patch.Bio != nil {
		next.Bio = patch.Bio
	}
	if patch.ImageURL != nil {
		next.ImageURL = patch.ImageURL
	}
	if patch.Country != nil {
		next.Country = patch.Country
	}
	if patch.Genre != nil {
		next.Genre = patch.Genre
	}
	if patch.FormedDate != nil {
		next.FormedDate = cloneTime(patch.FormedDate)
	}
	if patch.MonthlyListeners != nil {
		next.MonthlyListeners = cloneInt(patch.MonthlyListeners)
	}
	if patch.IsActive != nil {
		next.IsActive = *patch.IsActive
	}
	normalizeArtist(&next)
	if err := s.check(next); err != nil {
		return models.Artist{}, err
	}

	next.UpdatedAt = s.stamp(existing.CreatedAt)
	s.artists[id] = cloneArtist(&next)
	return next, nil
}

// DeleteArtist removes an artist. It is rejected while albums or songs
// reference the artist; favorites targeting it are removed.
func (s *Store) DeleteArtist(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.artists[id]; !ok {
		return ErrArtistNotFound
	}
	for _, al := range s.albums {
		if al.ArtistID == id {
			return ErrArtistInUse
		}
	}
	for _, so := range s.songs {
		if so.ArtistID != nil && *so.ArtistID == id {
			return ErrArtistInUse
		}
	}

	s.removeTargetFavoritesLocked(models.ContentArtist, id)
	delete(s.artists, id)
	return nil
}

// CreateAlbum adds an album. The artist must exist.
func (s *Store) CreateAlbum(ctx context.Context, al models.Album) (models.Album, error) {
	if err := ctx.Err(); err != nil {
		return models.Album{}, err
	}

	normalizeAlbum(&al)
	if err := s.check(al); err != nil {
		return models.Album{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.artists[al.ArtistID]; !ok {
		return models.Album{}, ErrArtistNotFound
	}

	s.nextAlbumID++
	al.ID = s.nextAlbumID
	al.CreatedAt = s.now()
	al.UpdatedAt = al.CreatedAt
	s.albums[al.ID] = cloneAlbum(&al)
	return al, nil
}

// GetAlbum returns an album by id.
func (s *Store) GetAlbum(ctx context.Context, id int64) (models.Album, error) {
	if err := ctx.Err(); err != nil {
		return models.Album{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	al, ok := s.albums[id]
	if !ok {
		return models.Album{}, ErrAlbumNotFound
	}
	return *cloneAlbum(al), nil
}

// ListAlbums returns albums ordered by id. A non-zero artistID filters by artist.
func (s *Store) ListAlbums(ctx context.Context, artistID int64) ([]models.Album, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Album, 0, len(s.albums))
	for _, al := range s.albums {
		if artistID != 0 && al.ArtistID != artistID {
			continue
		}
		out = append(out, *cloneAlbum(al))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// UpdateAlbum applies a partial update.
func (s *Store) UpdateAlbum(ctx context.Context, id int64, patch models.AlbumPatch) (models.Album, error) {
	if err := ctx.Err(); err != nil {
		return models.Album{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.albums[id]
	if !ok {
		return models.Album{}, ErrAlbumNotFound
	}

	next := *cloneAlbum(existing)
	if patch.Title != nil {
		next.Title = *patch.Title
	}
	if patch.ArtistID != nil {
		next.ArtistID = *patch.ArtistID
	}
	if patch.Year != nil {
		next.Year = cloneInt(patch.Year)
	}
	if patch.Description != nil {
		next.Description = patch.Description
	}
	if patch.CoverImageURL != nil {
		next.CoverImageURL = patch.CoverImageURL
	}
	if patch.ReleaseDate != nil {
		next.ReleaseDate = cloneTime(patch.ReleaseDate)
	}
	if patch.Genre != nil {
		next.Genre = patch.Genre
	}
	if patch.TotalTracks != nil {
		next.TotalTracks = cloneInt(patch.TotalTracks)
	}
	if patch.DurationSeconds != nil {
		next.DurationSeconds = cloneInt(patch.DurationSeconds)
	}
	normalizeAlbum(&next)
	if err := s.check(next); err != nil {
		return models.Album{}, err
	}
	if _, ok := s.artists[next.ArtistID]; !ok {
		return models.Album{}, ErrArtistNotFound
	}

	next.UpdatedAt = s.stamp(existing.CreatedAt)
	s.albums[id] = cloneAlbum(&next)
	return next, nil
}

// DeleteAlbum removes an album. It is rejected while songs reference it.
func (s *Store) DeleteAlbum(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.albums[id]; !ok {
		return ErrAlbumNotFound
	}
	for _, so := range s.songs {
		if so.AlbumID != nil && *so.AlbumID == id {
			return ErrAlbumInUse
		}
	}

	s.removeTargetFavoritesLocked(models.ContentAlbum, id)
	delete(s.albums, id)
	return nil
}

// CreateSong adds a song. Present artist and album references must resolve.
func (s *Store) CreateSong(ctx context.Context, so models.Song) (models.Song, error) {
	if err := ctx.Err(); err != nil {
		return models.Song{}, err
	}

	normalizeSong(&so)
	if err := s.check(so); err != nil {
		return models.Song{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkSongRefsLocked(so); err != nil {
		return models.Song{}, err
	}

	s.nextSongID++
	so.ID = s.nextSongID
	so.CreatedAt = s.now()
	so.UpdatedAt = so.CreatedAt
	s.songs[so.ID] = cloneSong(&so)
	return so, nil
}

// GetSong returns a song by id.
func (s *Store) GetSong(ctx context.Context, id int64) (models.Song, error) {
	if err := ctx.Err(); err != nil {
		return models.Song{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	so, ok := s.songs[id]
	if !ok {
		return models.Song{}, ErrSongNotFound
	}
	return *cloneSong(so), nil
}

// SongFilter narrows ListSongs. Zero values match everything.
type SongFilter struct {
	ArtistID int64
	AlbumID  int64
	Query    string
}

func (f SongFilter) match(so *models.Song) bool {
	if f.ArtistID != 0 && (so.ArtistID == nil || *so.ArtistID != f.ArtistID) {
		return false
	}
	if f.AlbumID != 0 && (so.AlbumID == nil || *so.AlbumID != f.AlbumID) {
		return false
	}
	if q := key(f.Query); q != "" && !strings.Contains(strings.ToLower(so.Title), q) {
		return false
	}
	return true
}

// ListSongs returns matching songs joined with their artist and album.
// Album listings are ordered by track number, everything else by id.
func (s *Store) ListSongs(ctx context.Context, filter SongFilter) ([]models.SongView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.SongView, 0)
	for _, so := range s.songs {
		if filter.match(so) {
			out = append(out, s.viewLocked(so))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Song, out[j].Song
		if filter.AlbumID != 0 && a.TrackNumber != nil && b.TrackNumber != nil && *a.TrackNumber != *b.TrackNumber {
			return *a.TrackNumber < *b.TrackNumber
		}
		return a.ID < b.ID
	})
	return out, nil
}

// ResolveSong joins a song with its optional artist and album.
func (s *Store) ResolveSong(ctx context.Context, id int64) (models.SongView, error) {
	if err := ctx.Err(); err != nil {
		return models.SongView{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	so, ok := s.songs[id]
	if !ok {
		return models.SongView{}, ErrSongNotFound
	}
	return s.viewLocked(so), nil
}

// UpdateSong applies a partial update.
func (s *Store) UpdateSong(ctx context.Context, id int64, patch models.SongPatch) (models.Song, error) {
	if err := ctx.Err(); err != nil {
		return models.Song{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.songs[id]
	if !ok {
		return models.Song{}, ErrSongNotFound
	}

	next := *cloneSong(existing)
	if patch.Title != nil {
		next.Title = *patch.Title
	}
	if patch.ArtistID != nil {
		next.ArtistID = zeroAsNil(patch.ArtistID)
	}
	if patch.AlbumID != nil {
		next.AlbumID = zeroAsNil(patch.AlbumID)
	}
	if patch.DurationSeconds != nil {
		next.DurationSeconds = *patch.DurationSeconds
	}
	if patch.AudioURL != nil {
		next.AudioURL = patch.AudioURL
	}
	if patch.CoverImageURL != nil {
		next.CoverImageURL = patch.CoverImageURL
	}
	if patch.TrackNumber != nil {
		next.TrackNumber = cloneInt(patch.TrackNumber)
	}
	if patch.Genre != nil {
		next.Genre = patch.Genre
	}
	if patch.ReleaseDate != nil {
		next.ReleaseDate = cloneTime(patch.ReleaseDate)
	}
	normalizeSong(&next)
	if err := s.check(next); err != nil {
		return models.Song{}, err
	}
	if err := s.checkSongRefsLocked(next); err != nil {
		return models.Song{}, err
	}

	next.UpdatedAt = s.stamp(existing.CreatedAt)
	s.songs[id] = cloneSong(&next)
	return next, nil
}

// IncrementPlayCount adds one play to a song.
func (s *Store) IncrementPlayCount(ctx context.Context, id int64) (models.Song, error) {
	if err := ctx.Err(); err != nil {
		return models.Song{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	so, ok := s.songs[id]
	if !ok {
		return models.Song{}, ErrSongNotFound
	}
	so.PlayCount++
	so.UpdatedAt = s.stamp(so.CreatedAt)
	return *cloneSong(so), nil
}

// DeleteSong removes a song from the catalog, from every playlist holding
// it and from favorites.
func (s *Store) DeleteSong(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.songs[id]; !ok {
		return ErrSongNotFound
	}

	for pid := range s.songPlaylists[id] {
		p := s.playlists[pid]
		p.SongIDs = without(p.SongIDs, id)
		p.UpdatedAt = s.stamp(p.CreatedAt)
	}
	delete(s.songPlaylists, id)
	s.removeTargetFavoritesLocked(models.ContentSong, id)
	delete(s.songs, id)
	return nil
}

func (s *Store) checkSongRefsLocked(so models.Song) error {
	if so.ArtistID != nil {
		if _, ok := s.artists[*so.ArtistID]; !ok {
			return ErrArtistNotFound
		}
	}
	if so.AlbumID != nil {
		if _, ok := s.albums[*so.AlbumID]; !ok {
			return ErrAlbumNotFound
		}
	}
	return nil
}

func (s *Store) viewLocked(so *models.Song) models.SongView {
	view := models.SongView{Song: *cloneSong(so)}
	if so.ArtistID != nil {
		if a, ok := s.artists[*so.ArtistID]; ok {
			view.Artist = cloneArtist(a)
		}
	}
	if so.AlbumID != nil {
		if al, ok := s.albums[*so.AlbumID]; ok {
			view.Album = cloneAlbum(al)
		}
	}
	return view
}

func normalizeArtist(a *models.Artist) {
	a.Name = strings.TrimSpace(a.Name)
	a.Bio = blank(a.Bio)
	a.ImageURL = blank(a.ImageURL)
	a.Country = blank(a.Country)
	a.Genre = blank(a.Genre)
}

func normalizeAlbum(al *models.Album) {
	al.Title = strings.TrimSpace(al.Title)
	al.Description = blank(al.Description)
	al.CoverImageURL = blank(al.CoverImageURL)
	al.Genre = blank(al.Genre)
}

func normalizeSong(so *models.Song) {
	so.Title = strings.TrimSpace(so.Title)
	so.ArtistID = zeroAsNil(so.ArtistID)
	so.AlbumID = zeroAsNil(so.AlbumID)
	so.AudioURL = blank(so.AudioURL)
	so.CoverImageURL = blank(so.CoverImageURL)
	so.Genre = blank(so.Genre)
}

func zeroAsNil(p *int64) *int64 {
	if p == nil || *p == 0 {
		return nil
	}
	return cloneInt64(p)
}

func cloneArtist(a *models.Artist) *models.Artist {
	c := *a
	c.Bio = cloneString(a.Bio)
	c.ImageURL = cloneString(a.ImageURL)
	c.Country = cloneString(a.Country)
	c.Genre = cloneString(a.Genre)
	c.FormedDate = cloneTime(a.FormedDate)
	c.MonthlyListeners = cloneInt(a.MonthlyListeners)
	return &c
}

func cloneAlbum(al *models.Album) *models.Album {
	c := *al
	c.Year = cloneInt(al.Year)
	c.Description = cloneString(al.Description)
	c.CoverImageURL = cloneString(al.CoverImageURL)
	c.ReleaseDate = cloneTime(al.ReleaseDate)
	c.Genre = cloneString(al.Genre)
	c.TotalTracks = cloneInt(al.TotalTracks)
	c.DurationSeconds = cloneInt(al.DurationSeconds)
	return &c
}

func cloneSong(so *models.Song) *models.Song {
	c := *so
	c.ArtistID = cloneInt64(so.ArtistID)
	c.AlbumID = cloneInt64(so.AlbumID)
	c.AudioURL = cloneString(so.AudioURL)
	c.CoverImageURL = cloneString(so.CoverImageURL)
	c.TrackNumber = cloneInt(so.TrackNumber)
	c.Genre = cloneString(so.Genre)
	c.ReleaseDate = cloneTime(so.ReleaseDate)
	return &c
}

package store

import (
	"context"
	"sort"
	"strings"

	"musicapp/internal/models"
)

// CreatePlaylist adds a playlist for an existing owner. Initial song ids are
// deduplicated in order and must all resolve.
func (s *Store) CreatePlaylist(ctx context.Context, p models.Playlist) (models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return models.Playlist{}, err
	}

	normalizePlaylist(&p)
	if err := s.check(p); err != nil {
		return models.Playlist{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[p.OwnerID]; !ok {
		return models.Playlist{}, ErrUserNotFound
	}
	ids := make([]int64, 0, len(p.SongIDs))
	for _, id := range p.SongIDs {
		if _, ok := s.songs[id]; !ok {
			return models.Playlist{}, ErrSongNotFound
		}
		if !contains(ids, id) {
			ids = append(ids, id)
		}
	}

	s.nextPlaylistID++
	p.ID = s.nextPlaylistID
	p.SongIDs = ids
	p.CreatedAt = s.now()
	p.UpdatedAt = p.CreatedAt
	s.playlists[p.ID] = clonePlaylist(&p)
	for _, id := range ids {
		s.indexSongLocked(id, p.ID)
	}
	return p, nil
}

// GetPlaylist returns a playlist by id.
func (s *Store) GetPlaylist(ctx context.Context, id int64) (models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return models.Playlist{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.playlists[id]
	if !ok {
		return models.Playlist{}, ErrPlaylistNotFound
	}
	return *clonePlaylist(p), nil
}

// ListPlaylists returns the owner's playlists when ownerID is non-zero,
// otherwise every public playlist. Results are ordered by id.
func (s *Store) ListPlaylists(ctx context.Context, ownerID int64) ([]models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Playlist, 0)
	for _, p := range s.playlists {
		if ownerID != 0 && p.OwnerID != ownerID {
			continue
		}
		if ownerID == 0 && !p.IsPublic {
			continue
		}
		out = append(out, *clonePlaylist(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// PlaylistsContaining returns the ids of playlists that hold the song.
func (s *Store) PlaylistsContaining(ctx context.Context, songID int64) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.songPlaylists[songID]))
	for id := range s.songPlaylists[songID] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// UpdatePlaylist applies a partial update to the playlist's own fields.
func (s *Store) UpdatePlaylist(ctx context.Context, id int64, patch models.PlaylistPatch) (models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return models.Playlist{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.playlists[id]
	if !ok {
		return models.Playlist{}, ErrPlaylistNotFound
	}

	next := *clonePlaylist(existing)
	if patch.Name != nil {
		next.Name = *patch.Name
	}
	if patch.Description != nil {
		next.Description = patch.Description
	}
	if patch.CoverImageURL != nil {
		next.CoverImageURL = patch.CoverImageURL
	}
	if patch.IsPublic != nil {
		next.IsPublic = *patch.IsPublic
	}
	normalizePlaylist(&next)
	if err := s.check(next); err != nil {
		return models.Playlist{}, err
	}

	next.UpdatedAt = s.stamp(existing.CreatedAt)
	s.playlists[id] = clonePlaylist(&next)
	return next, nil
}

// PlaylistSongs returns the playlist's songs in insertion order.
func (s *Store) PlaylistSongs(ctx context.Context, id int64) ([]models.SongView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.playlists[id]
	if !ok {
		return nil, ErrPlaylistNotFound
	}

	out := make([]models.SongView, 0, len(p.SongIDs))
	for _, songID := range p.SongIDs {
		if so, ok := s.songs[songID]; ok {
			out = append(out, s.viewLocked(so))
		}
	}
	return out, nil
}

// AddSongToPlaylist appends a song. Adding a song already present leaves
// the playlist untouched and reports added=false.
func (s *Store) AddSongToPlaylist(ctx context.Context, playlistID, songID int64) (models.Playlist, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.Playlist{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.playlists[playlistID]
	if !ok {
		return models.Playlist{}, false, ErrPlaylistNotFound
	}
	if _, ok := s.songs[songID]; !ok {
		return models.Playlist{}, false, ErrSongNotFound
	}
	if contains(p.SongIDs, songID) {
		return *clonePlaylist(p), false, nil
	}

	p.SongIDs = append(p.SongIDs, songID)
	p.UpdatedAt = s.stamp(p.CreatedAt)
	s.indexSongLocked(songID, playlistID)
	return *clonePlaylist(p), true, nil
}

// AddAlbumToPlaylist appends every song of an album in track order, skipping
// songs the playlist already holds. It reports how many were added.
func (s *Store) AddAlbumToPlaylist(ctx context.Context, playlistID, albumID int64) (models.Playlist, int, error) {
	if err := ctx.Err(); err != nil {
		return models.Playlist{}, 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.playlists[playlistID]
	if !ok {
		return models.Playlist{}, 0, ErrPlaylistNotFound
	}
	if _, ok := s.albums[albumID]; !ok {
		return models.Playlist{}, 0, ErrAlbumNotFound
	}

	tracks := make([]*models.Song, 0)
	for _, so := range s.songs {
		if so.AlbumID != nil && *so.AlbumID == albumID {
			tracks = append(tracks, so)
		}
	}
	if len(tracks) == 0 {
		return models.Playlist{}, 0, NewValidationError("albumId", "album has no songs")
	}
	sort.Slice(tracks, func(i, j int) bool {
		a, b := tracks[i], tracks[j]
		if a.TrackNumber != nil && b.TrackNumber != nil && *a.TrackNumber != *b.TrackNumber {
			return *a.TrackNumber < *b.TrackNumber
		}
		return a.ID < b.ID
	})

	added := 0
	for _, so := range tracks {
		if contains(p.SongIDs, so.ID) {
			continue
		}
		p.SongIDs = append(p.SongIDs, so.ID)
		s.indexSongLocked(so.ID, playlistID)
		added++
	}
	if added > 0 {
		p.UpdatedAt = s.stamp(p.CreatedAt)
	}
	return *clonePlaylist(p), added, nil
}

// CopyPlaylist duplicates a playlist into ownerID's library. The copy is
// private, named "<name> (Copy)" and keeps the song order.
func (s *Store) CopyPlaylist(ctx context.Context, sourceID, ownerID int64) (models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return models.Playlist{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	src, ok := s.playlists[sourceID]
	if !ok {
		return models.Playlist{}, ErrPlaylistNotFound
	}
	if _, ok := s.users[ownerID]; !ok {
		return models.Playlist{}, ErrUserNotFound
	}

	p := *clonePlaylist(src)
	s.nextPlaylistID++
	p.ID = s.nextPlaylistID
	p.OwnerID = ownerID
	p.Name = copyName(src.Name)
	p.IsPublic = false
	p.CreatedAt = s.now()
	p.UpdatedAt = p.CreatedAt
	s.playlists[p.ID] = clonePlaylist(&p)
	for _, id := range p.SongIDs {
		s.indexSongLocked(id, p.ID)
	}
	return p, nil
}

const copySuffix = " (Copy)"

// copyName keeps the result within the 100 character name limit.
func copyName(name string) string {
	runes := []rune(name)
	if room := 100 - len([]rune(copySuffix)); len(runes) > room {
		runes = runes[:room]
	}
	return strings.TrimSpace(string(runes)) + copySuffix
}

// RemoveSongFromPlaylist drops a song while keeping the order of the rest.
func (s *Store) RemoveSongFromPlaylist(ctx context.Context, playlistID, songID int64) (models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return models.Playlist{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.playlists[playlistID]
	if !ok {
		return models.Playlist{}, ErrPlaylistNotFound
	}
	if !contains(p.SongIDs, songID) {
		return models.Playlist{}, ErrSongNotFound
	}

	p.SongIDs = without(p.SongIDs, songID)
	p.UpdatedAt = s.stamp(p.CreatedAt)
	if set := s.songPlaylists[songID]; set != nil {
		delete(set, playlistID)
		if len(set) == 0 {
			delete(s.songPlaylists, songID)
		}
	}
	return *clonePlaylist(p), nil
}

// DeletePlaylist removes a playlist, its membership and favorites targeting it.
func (s *Store) DeletePlaylist(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.playlists[id]; !ok {
		return ErrPlaylistNotFound
	}
	s.removePlaylistLocked(id)
	return nil
}

func (s *Store) removePlaylistLocked(id int64) {
	p := s.playlists[id]
	for _, songID := range p.SongIDs {
		if set := s.songPlaylists[songID]; set != nil {
			delete(set, id)
			if len(set) == 0 {
				delete(s.songPlaylists, songID)
			}
		}
	}
	s.removeTargetFavoritesLocked(models.ContentPlaylist, id)
	delete(s.playlists, id)
}

func (s *Store) indexSongLocked(songID, playlistID int64) {
	set := s.songPlaylists[songID]
	if set == nil {
		set = make(map[int64]struct{})
		s.songPlaylists[songID] = set
	}
	set[playlistID] = struct{}{}
}

func normalizePlaylist(p *models.Playlist) {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = blank(p.Description)
	p.CoverImageURL = blank(p.CoverImageURL)
}

func clonePlaylist(p *models.Playlist) *models.Playlist {
	c := *p
	c.Description = cloneString(p.Description)
	c.CoverImageURL = cloneString(p.CoverImageURL)
	c.SongIDs = append(make([]int64, 0, len(p.SongIDs)), p.SongIDs...)
	return &c
}

func contains(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func without(ids []int64, id int64) []int64 {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

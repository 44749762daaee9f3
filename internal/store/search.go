package store

import (
	"context"
	"sort"
	"strings"

	"musicapp/internal/models"
)

// Search matches query case-insensitively against song titles, artist
// names, album titles and public playlist names. Each group is ordered by
// id and holds at most limit entries.
func (s *Store) Search(ctx context.Context, query string, limit int) (models.SearchResults, error) {
	if err := ctx.Err(); err != nil {
		return models.SearchResults{}, err
	}

	q := key(query)
	res := models.SearchResults{
		Query:     strings.TrimSpace(query),
		Songs:     []models.SongView{},
		Artists:   []models.Artist{},
		Albums:    []models.Album{},
		Playlists: []models.Playlist{},
	}
	if q == "" || limit < 1 {
		return res, nil
	}
	hit := func(name string) bool { return strings.Contains(strings.ToLower(name), q) }

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range sortedKeys(s.songs) {
		if so := s.songs[id]; hit(so.Title) {
			res.Songs = append(res.Songs, s.viewLocked(so))
			if len(res.Songs) == limit {
				break
			}
		}
	}
	for _, id := range sortedKeys(s.artists) {
		if a := s.artists[id]; hit(a.Name) {
			res.Artists = append(res.Artists, *cloneArtist(a))
			if len(res.Artists) == limit {
				break
			}
		}
	}
	for _, id := range sortedKeys(s.albums) {
		if al := s.albums[id]; hit(al.Title) {
			res.Albums = append(res.Albums, *cloneAlbum(al))
			if len(res.Albums) == limit {
				break
			}
		}
	}
	for _, id := range sortedKeys(s.playlists) {
		if p := s.playlists[id]; p.IsPublic && hit(p.Name) {
			res.Playlists = append(res.Playlists, *clonePlaylist(p))
			if len(res.Playlists) == limit {
				break
			}
		}
	}
	return res, nil
}

func sortedKeys[V any](m map[int64]V) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

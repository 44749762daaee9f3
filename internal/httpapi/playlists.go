package httpapi

import (
	"net/http"

	"musicapp/internal/http/respond"
	"musicapp/internal/models"
)

type playlistSongRequest struct {
	SongID int64 `json:"songId"`
}

func (s *Server) handleListPlaylists(w http.ResponseWriter, r *http.Request) {
	page, size, ok := pageParams(w, r)
	if !ok {
		return
	}
	list, err := s.playlists.Public(r.Context())
	if err != nil {
		MapError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, models.Paginate(list, page, size))
}

func (s *Server) handleMyPlaylists(w http.ResponseWriter, r *http.Request) {
	list, err := s.playlists.Mine(r.Context(), actor(r))
	if err != nil {
		MapError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}

func (s *Server) handleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	detail, err := s.playlists.Get(r.Context(), actor(r), id)
	if err != nil {
		MapError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, detail)
}

func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	var in models.Playlist
	if !decode(w, r, &in) {
		return
	}
	created, err := s.playlists.Create(r.Context(), actor(r), in)
	if err != nil {
		MapError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdatePlaylist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var patch models.PlaylistPatch
	if !decode(w, r, &patch) {
		return
	}
	updated, err := s.playlists.Update(r.Context(), actor(r), id, patch)
	if err != nil {
		MapError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.playlists.Delete(r.Context(), actor(r), id); err != nil {
		MapError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddPlaylistSong(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req playlistSongRequest
	if !decode(w, r, &req) {
		return
	}
	if req.SongID <= 0 {
		badRequest(w, "songId is required")
		return
	}

	p, added, err := s.playlists.AddSong(r.Context(), actor(r), id, req.SongID)
	if err != nil {
		MapError(w, r, err)
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	respond.JSON(w, status, p)
}

func (s *Server) handleRemovePlaylistSong(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	songID, ok := pathID(w, r, "songID")
	if !ok {
		return
	}
	p, err := s.playlists.RemoveSong(r.Context(), actor(r), id, songID)
	if err != nil {
		MapError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, p)
}

type playlistAlbumRequest struct {
	AlbumID int64 `json:"albumId"`
}

type playlistAlbumResponse struct {
	Playlist models.Playlist `json:"playlist"`
	Added    int             `json:"added"`
}

func (s *Server) handleAddPlaylistAlbum(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req playlistAlbumRequest
	if !decode(w, r, &req) {
		return
	}
	if req.AlbumID <= 0 {
		badRequest(w, "albumId is required")
		return
	}

	p, added, err := s.playlists.AddAlbum(r.Context(), actor(r), id, req.AlbumID)
	if err != nil {
		MapError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, playlistAlbumResponse{Playlist: p, Added: added})
}

func (s *Server) handleCopyPlaylist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	cp, err := s.playlists.Copy(r.Context(), actor(r), id)
	if err != nil {
		MapError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, cp)
}

func (s *Server) handleSongPlaylists(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if _, err := s.songs.Get(r.Context(), id); err != nil {
		MapError(w, r, err)
		return
	}
	list, err := s.playlists.Featuring(r.Context(), actor(r), id)
	if err != nil {
		MapError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}

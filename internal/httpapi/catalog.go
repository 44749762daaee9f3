package httpapi

import (
	"net/http"

	"musicapp/internal/http/respond"
	"musicapp/internal/models"
	"musicapp/internal/store"
)

func (s *Server) handleListArtists(w http.ResponseWriter, r *http.Request) {
	page, size, ok := pageParams(w, r)
	if !ok {
		return
	}
	list, err := s.artists.List(r.Context())
	if err != nil {
		MapError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, models.Paginate(list, page, size))
}

func (s *Server) handleGetArtist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	detail, err := s.artists.Get(r.Context(), id)
	if err != nil {
		MapError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, detail)
}

func (s *Server) handleCreateArtist(w http.ResponseWriter, r *http.Request) {
	var in models.Artist
	if !decode(w, r, &in) {
		return
	}
	created, err := s.artists.Create(r.Context(), in)
	if err != nil {
		MapError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateArtist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var patch models.ArtistPatch
	if !decode(w, r, &patch) {
		return
	}
	updated, err := s.artists.Update(r.Context(), id, patch)
	if err != nil {
		MapError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteArtist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.artists.Delete(r.Context(), id); err != nil {
		MapError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListAlbums(w http.ResponseWriter, r *http.Request) {
	artistID, ok := queryID(w, r, "artistId")
	if !ok {
		return
	}
	page, size, ok := pageParams(w, r)
	if !ok {
		return
	}
	list, err := s.albums.List(r.Context(), artistID)
	if err != nil {
		MapError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, models.Paginate(list, page, size))
}

func (s *Server) handleGetAlbum(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	detail, err := s.albums.Get(r.Context(), id)
	if err != nil {
		MapError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, detail)
}

func (s *Server) handleCreateAlbum(w http.ResponseWriter, r *http.Request) {
	var in models.Album
	if !decode(w, r, &in) {
		return
	}
	created, err := s.albums.Create(r.Context(), in)
	if err != nil {
		MapError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateAlbum(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var patch models.AlbumPatch
	if !decode(w, r, &patch) {
		return
	}
	updated, err := s.albums.Update(r.Context(), id, patch)
	if err != nil {
		MapError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteAlbum(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.albums.Delete(r.Context(), id); err != nil {
		MapError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListSongs(w http.ResponseWriter, r *http.Request) {
	artistID, ok := queryID(w, r, "artistId")
	if !ok {
		return
	}
	albumID, ok := queryID(w, r, "albumId")
	if !ok {
		return
	}
	page, size, ok := pageParams(w, r)
	if !ok {
		return
	}
	list, err := s.songs.List(r.Context(), store.SongFilter{
		ArtistID: artistID,
		AlbumID:  albumID,
		Query:    r.URL.Query().Get("q"),
	})
	if err != nil {
		MapError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, models.Paginate(list, page, size))
}

func (s *Server) handleGetSong(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	view, err := s.songs.Get(r.Context(), id)
	if err != nil {
		MapError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, view)
}

func (s *Server) handlePlaySong(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	so, err := s.songs.Play(r.Context(), id)
	if err != nil {
		MapError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, so)
}

func (s *Server) handleCreateSong(w http.ResponseWriter, r *http.Request) {
	var in models.Song
	if !decode(w, r, &in) {
		return
	}
	created, err := s.songs.Create(r.Context(), in)
	if err != nil {
		MapError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateSong(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var patch models.SongPatch
	if !decode(w, r, &patch) {
		return
	}
	updated, err := s.songs.Update(r.Context(), id, patch)
	if err != nil {
		MapError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteSong(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.songs.Delete(r.Context(), id); err != nil {
		MapError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

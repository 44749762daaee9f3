package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"musicapp/internal/http/respond"
	"musicapp/internal/models"
)

// publicProfile is what other users see of an account.
type publicProfile struct {
	ID              int64               `json:"id"`
	Username        string              `json:"username"`
	DisplayName     string              `json:"displayName"`
	ProfileImageURL *string             `json:"profileImageUrl,omitempty"`
	Stats           models.ProfileStats `json:"stats"`
	IsFollowing     bool                `json:"isFollowing"`
}

type userCard struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

func cards(list []models.User) []userCard {
	out := make([]userCard, 0, len(list))
	for _, u := range list {
		out = append(out, userCard{ID: u.ID, Username: u.Username, DisplayName: u.DisplayName()})
	}
	return out
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	page, size, ok := pageParams(w, r)
	if !ok {
		return
	}
	list, err := s.users.List(r.Context())
	if err != nil {
		MapError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, models.Paginate(list, page, size))
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	profile, err := s.users.Profile(r.Context(), id)
	if err != nil {
		MapError(w, r, err)
		return
	}

	out := publicProfile{
		ID:              profile.User.ID,
		Username:        profile.User.Username,
		DisplayName:     profile.User.DisplayName(),
		ProfileImageURL: profile.User.ProfileImageURL,
		Stats:           profile.Stats,
	}
	if viewer := actor(r); viewer != 0 && viewer != id {
		if out.IsFollowing, err = s.users.IsFollowing(r.Context(), viewer, id); err != nil {
			MapError(w, r, err)
			return
		}
	}
	respond.JSON(w, http.StatusOK, out)
}

func (s *Server) handleFollowers(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	list, err := s.users.Followers(r.Context(), id)
	if err != nil {
		MapError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, cards(list))
}

func (s *Server) handleFollowing(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	list, err := s.users.Following(r.Context(), id)
	if err != nil {
		MapError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, cards(list))
}

func (s *Server) handleFollow(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	f, created, err := s.users.Follow(r.Context(), actor(r), id)
	if err != nil {
		MapError(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respond.JSON(w, status, f)
}

func (s *Server) handleUnfollow(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.users.Unfollow(r.Context(), actor(r), id); err != nil {
		MapError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteUser removes the account and every session it holds.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.users.Delete(r.Context(), id); err != nil {
		MapError(w, r, err)
		return
	}
	if _, err := s.sessions.RevokeUser(r.Context(), id); err != nil {
		MapError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAssignRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.users.AssignRole(r.Context(), id, chi.URLParam(r, "role")); err != nil {
		MapError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRevokeRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.users.RevokeRole(r.Context(), id, chi.URLParam(r, "role")); err != nil {
		MapError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := s.users.Roles(r.Context())
	if err != nil {
		MapError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, roles)
}

func (s *Server) handleCreateRole(w http.ResponseWriter, r *http.Request) {
	var in models.Role
	if !decode(w, r, &in) {
		return
	}
	role, err := s.users.CreateRole(r.Context(), in)
	if err != nil {
		MapError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, role)
}

func favoriteQuery(w http.ResponseWriter, r *http.Request) (models.FavoriteRequest, bool) {
	q := r.URL.Query()
	id, err := strconv.ParseInt(q.Get("contentId"), 10, 64)
	if err != nil {
		badRequest(w, "invalid contentId")
		return models.FavoriteRequest{}, false
	}
	return models.FavoriteRequest{ContentType: q.Get("contentType"), ContentID: id}, true
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	views, err := s.favorites.List(r.Context(), actor(r), r.URL.Query().Get("contentType"))
	if err != nil {
		MapError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, views)
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	var req models.FavoriteRequest
	if !decode(w, r, &req) {
		return
	}
	fav, created, err := s.favorites.Add(r.Context(), actor(r), req)
	if err != nil {
		MapError(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respond.JSON(w, status, fav)
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	req, ok := favoriteQuery(w, r)
	if !ok {
		return
	}
	if err := s.favorites.Remove(r.Context(), actor(r), req); err != nil {
		MapError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCheckFavorite(w http.ResponseWriter, r *http.Request) {
	req, ok := favoriteQuery(w, r)
	if !ok {
		return
	}
	fav, err := s.favorites.IsFavorite(r.Context(), actor(r), req)
	if err != nil {
		MapError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]bool{"isFavorite": fav})
}

package httpapi

import (
	"net/http"

	"github.com/rs/zerolog"

	"musicapp/internal/app/users"
	"musicapp/internal/http/respond"
	"musicapp/internal/models"
	"musicapp/internal/session"
)

type loginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail"`
	Password        string `json:"password"`
	RememberMe      bool   `json:"rememberMe"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func loginResponse(issued session.Issued, message string) models.LoginResponse {
	user := issued.Principal.User
	return models.LoginResponse{
		Token:        issued.Token,
		RefreshToken: issued.RefreshToken,
		User:         &user,
		Success:      true,
		Message:      message,
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}

	summary, err := s.users.Authenticate(r.Context(), req.UsernameOrEmail, req.Password)
	if err != nil {
		MapError(w, r, err)
		return
	}
	issued, err := s.sessions.Issue(r.Context(), summary, req.RememberMe)
	if err != nil {
		MapError(w, r, err)
		return
	}

	zerolog.Ctx(r.Context()).Info().Int64("user_id", summary.ID).Msg("api login")
	respond.JSON(w, http.StatusOK, loginResponse(issued, "Login successful"))
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req users.RegisterInput
	if !decode(w, r, &req) {
		return
	}

	summary, err := s.users.Register(r.Context(), req)
	if err != nil {
		MapError(w, r, err)
		return
	}
	issued, err := s.sessions.Issue(r.Context(), summary, false)
	if err != nil {
		MapError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, loginResponse(issued, "Registration successful"))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decode(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		badRequest(w, "refreshToken is required")
		return
	}

	issued, err := s.sessions.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		MapError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, loginResponse(issued, "Token refreshed"))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.SignOut(r.Context(), w, r); err != nil {
		MapError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	profile, err := s.users.Profile(r.Context(), actor(r))
	if err != nil {
		MapError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, profile)
}

func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var patch models.UserPatch
	if !decode(w, r, &patch) {
		return
	}
	u, err := s.users.Update(r.Context(), actor(r), patch)
	if err != nil {
		MapError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, u)
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.users.ChangePassword(r.Context(), actor(r), req.CurrentPassword, req.NewPassword); err != nil {
		MapError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package models

import "time"

// LoginResponse is returned by the authentication endpoint of the backend API.
type LoginResponse struct {
	Token        string           `json:"token"`
	RefreshToken string           `json:"refreshToken"`
	User         *AuthUserSummary `json:"user"`
	Success      bool             `json:"success"`
	Message      string           `json:"message"`
}

// AuthUserSummary is the user projection carried in login responses and sessions.
type AuthUserSummary struct {
	ID              int64    `json:"id"`
	Username        string   `json:"username"`
	Email           string   `json:"email"`
	FirstName       string   `json:"firstName"`
	LastName        string   `json:"lastName"`
	ProfileImageURL string   `json:"profileImageUrl"`
	Roles           []string `json:"roles"`
}

// NewAuthUserSummary projects a user and its role names.
func NewAuthUserSummary(u User, roles []string) AuthUserSummary {
	s := AuthUserSummary{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Roles:     append([]string{}, roles...),
	}
	if u.ProfileImageURL != nil {
		s.ProfileImageURL = *u.ProfileImageURL
	}
	return s
}

// User converts the summary back into a user. The password hash and timestamps are not carried.
func (s AuthUserSummary) User() User {
	u := User{
		ID:        s.ID,
		Username:  s.Username,
		Email:     s.Email,
		FirstName: s.FirstName,
		LastName:  s.LastName,
	}
	if s.ProfileImageURL != "" {
		img := s.ProfileImageURL
		u.ProfileImageURL = &img
	}
	return u
}

// HasRole reports whether the summary carries the named role.
func (s AuthUserSummary) HasRole(role string) bool {
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// ErrorEnvelope is the error body exchanged with API clients.
type ErrorEnvelope struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Details   string    `json:"details"`
	Timestamp time.Time `json:"timestamp"`
}

// Page is one slice of a paginated listing.
type Page[T any] struct {
	Data        []T `json:"data"`
	TotalCount  int `json:"totalCount"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
	PageSize    int `json:"pageSize"`
}

// Paginate cuts items into the requested page. Pages are 1-based; a page
// size below one returns everything.
func Paginate[T any](items []T, page, size int) Page[T] {
	total := len(items)
	if size < 1 {
		size = total
		if size == 0 {
			size = 1
		}
	}
	if page < 1 {
		page = 1
	}
	pages := total / size
	if total%size != 0 {
		pages++
	}
	start, end := total, total
	if page <= pages {
		start = (page - 1) * size
		if size < total-start {
			end = start + size
		}
	}
	return Page[T]{
		Data:        append([]T{}, items[start:end]...),
		TotalCount:  total,
		TotalPages:  pages,
		CurrentPage: page,
		PageSize:    size,
	}
}

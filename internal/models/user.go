package models

import "time"

// Role names assigned by the application.
const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// User is a registered account. PasswordHash always holds a bcrypt hash.
type User struct {
	ID              int64      `json:"id"`
	FirstName       string     `json:"firstName" validate:"max=50"`
	LastName        string     `json:"lastName" validate:"max=50"`
	Username        string     `json:"username" validate:"required,max=50"`
	Email           string     `json:"email" validate:"required,email,max=100"`
	PasswordHash    string     `json:"-" validate:"required,max=100"`
	ProfileImageURL *string    `json:"profileImageUrl,omitempty" validate:"omitempty,max=2048"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	LastLoginAt     *time.Time `json:"lastLoginAt,omitempty"`
}

// DisplayName prefers the full name and falls back to the username.
func (u User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Username
	}
}

// UserPatch carries the fields of a partial user update.
type UserPatch struct {
	FirstName       *string `json:"firstName"`
	LastName        *string `json:"lastName"`
	Username        *string `json:"username"`
	Email           *string `json:"email"`
	PasswordHash    *string `json:"-"`
	ProfileImageURL *string `json:"profileImageUrl"`
}

// Role is a named permission group.
type Role struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name" validate:"required,max=50"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=200"`
}

// UserFollower links a follower to the user being followed.
type UserFollower struct {
	ID          int64     `json:"id"`
	FollowerID  int64     `json:"followerId"`
	FollowingID int64     `json:"followingId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ProfileStats summarises a user's social footprint.
type ProfileStats struct {
	Playlists int `json:"playlists"`
	Followers int `json:"followers"`
	Following int `json:"following"`
	Favorites int `json:"favorites"`
}

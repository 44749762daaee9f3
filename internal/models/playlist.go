package models

import "time"

// Playlist is a user-curated, ordered list of songs.
type Playlist struct {
	ID            int64     `json:"id"`
	OwnerID       int64     `json:"ownerId" validate:"required,gt=0"`
	Name          string    `json:"name" validate:"required,max=100"`
	Description   *string   `json:"description,omitempty" validate:"omitempty,max=500"`
	CoverImageURL *string   `json:"coverImageUrl,omitempty" validate:"omitempty,max=2048"`
	IsPublic      bool      `json:"isPublic"`
	SongIDs       []int64   `json:"songIds"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// SongCount reports the number of songs in the playlist.
func (p Playlist) SongCount() int {
	return len(p.SongIDs)
}

// Contains reports whether songID is a member of the playlist.
func (p Playlist) Contains(songID int64) bool {
	for _, id := range p.SongIDs {
		if id == songID {
			return true
		}
	}
	return false
}

// PlaylistPatch carries the fields of a partial playlist update.
type PlaylistPatch struct {
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	CoverImageURL *string `json:"coverImageUrl"`
	IsPublic      *bool   `json:"isPublic"`
}

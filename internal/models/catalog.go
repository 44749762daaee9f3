package models

import (
	"fmt"
	"time"
)

// Artist is a performer in the catalog.
type Artist struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name" validate:"required,max=100"`
	Bio              *string    `json:"bio,omitempty" validate:"omitempty,max=1000"`
	ImageURL         *string    `json:"imageUrl,omitempty" validate:"omitempty,max=2048"`
	Country          *string    `json:"country,omitempty" validate:"omitempty,max=100"`
	Genre            *string    `json:"genre,omitempty" validate:"omitempty,max=50"`
	FormedDate       *time.Time `json:"formedDate,omitempty"`
	MonthlyListeners *int       `json:"monthlyListeners,omitempty" validate:"omitempty,gte=0"`
	IsActive         bool       `json:"isActive"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// ArtistPatch carries the fields of a partial artist update. Nil fields are left untouched.
type ArtistPatch struct {
	Name             *string    `json:"name"`
	Bio              *string    `json:"bio"`
	ImageURL         *string    `json:"imageUrl"`
	Country          *string    `json:"country"`
	Genre            *string    `json:"genre"`
	FormedDate       *time.Time `json:"formedDate"`
	MonthlyListeners *int       `json:"monthlyListeners"`
	IsActive         *bool      `json:"isActive"`
}

// Album is a release that belongs to exactly one artist.
type Album struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title" validate:"required,max=100"`
	ArtistID        int64      `json:"artistId" validate:"required,gt=0"`
	Year            *int       `json:"year,omitempty" validate:"omitempty,gte=0,lte=9999"`
	Description     *string    `json:"description,omitempty" validate:"omitempty,max=1000"`
	CoverImageURL   *string    `json:"coverImageUrl,omitempty" validate:"omitempty,max=2048"`
	ReleaseDate     *time.Time `json:"releaseDate,omitempty"`
	Genre           *string    `json:"genre,omitempty" validate:"omitempty,max=50"`
	TotalTracks     *int       `json:"totalTracks,omitempty" validate:"omitempty,gte=0"`
	DurationSeconds *int       `json:"durationSeconds,omitempty" validate:"omitempty,gte=0"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// AlbumPatch carries the fields of a partial album update.
type AlbumPatch struct {
	Title           *string    `json:"title"`
	ArtistID        *int64     `json:"artistId"`
	Year            *int       `json:"year"`
	Description     *string    `json:"description"`
	CoverImageURL   *string    `json:"coverImageUrl"`
	ReleaseDate     *time.Time `json:"releaseDate"`
	Genre           *string    `json:"genre"`
	TotalTracks     *int       `json:"totalTracks"`
	DurationSeconds *int       `json:"durationSeconds"`
}

// Song is a single track. Artist and album references are optional.
type Song struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title" validate:"required,max=100"`
	ArtistID        *int64     `json:"artistId,omitempty" validate:"omitempty,gt=0"`
	AlbumID         *int64     `json:"albumId,omitempty" validate:"omitempty,gt=0"`
	DurationSeconds int        `json:"durationSeconds" validate:"gte=0"`
	AudioURL        *string    `json:"audioUrl,omitempty" validate:"omitempty,max=2048"`
	CoverImageURL   *string    `json:"coverImageUrl,omitempty" validate:"omitempty,max=2048"`
	TrackNumber     *int       `json:"trackNumber,omitempty" validate:"omitempty,gt=0"`
	Genre           *string    `json:"genre,omitempty" validate:"omitempty,max=50"`
	ReleaseDate     *time.Time `json:"releaseDate,omitempty"`
	PlayCount       int64      `json:"playCount" validate:"gte=0"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// SongPatch carries the fields of a partial song update.
type SongPatch struct {
	Title           *string    `json:"title"`
	ArtistID        *int64     `json:"artistId"`
	AlbumID         *int64     `json:"albumId"`
	DurationSeconds *int       `json:"durationSeconds"`
	AudioURL        *string    `json:"audioUrl"`
	CoverImageURL   *string    `json:"coverImageUrl"`
	TrackNumber     *int       `json:"trackNumber"`
	Genre           *string    `json:"genre"`
	ReleaseDate     *time.Time `json:"releaseDate"`
}

const (
	// UnknownArtist is shown for songs without a resolvable artist.
	UnknownArtist = "Unknown artist"
	// NoAlbum is shown for songs that are not part of an album.
	NoAlbum = "No album"
)

// SongView is a song joined with its optional artist and album.
type SongView struct {
	Song   Song    `json:"song"`
	Artist *Artist `json:"artist,omitempty"`
	Album  *Album  `json:"album,omitempty"`
}

// ArtistName returns the display name of the song's artist.
func (v SongView) ArtistName() string {
	if v.Artist == nil {
		return UnknownArtist
	}
	return v.Artist.Name
}

// AlbumTitle returns the display title of the song's album.
func (v SongView) AlbumTitle() string {
	if v.Album == nil {
		return NoAlbum
	}
	return v.Album.Title
}

// Duration formats the song length as m:ss.
func (v SongView) Duration() string {
	return FormatDuration(v.Song.DurationSeconds)
}

// FormatDuration renders a length in seconds as m:ss, or h:mm:ss past an hour.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, sec := seconds/3600, (seconds/60)%60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}

// SearchResults groups catalog matches for one query. Playlists are limited
// to public ones.
type SearchResults struct {
	Query     string     `json:"query"`
	Songs     []SongView `json:"songs"`
	Artists   []Artist   `json:"artists"`
	Albums    []Album    `json:"albums"`
	Playlists []Playlist `json:"playlists"`
}

// Empty reports whether nothing matched.
func (r SearchResults) Empty() bool {
	return len(r.Songs) == 0 && len(r.Artists) == 0 && len(r.Albums) == 0 && len(r.Playlists) == 0
}

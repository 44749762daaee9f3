package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ContentType names the kind of entity a favorite points at.
type ContentType string

const (
	ContentSong     ContentType = "Song"
	ContentAlbum    ContentType = "Album"
	ContentArtist   ContentType = "Artist"
	ContentPlaylist ContentType = "Playlist"
)

// ErrUnknownContentType is returned when a favorite target kind is not recognised.
var ErrUnknownContentType = errors.New("unknown content type")

// FavoriteTarget is the closed set of entities a user can favorite.
// Only the four target types in this package implement it.
type FavoriteTarget interface {
	ContentType() ContentType
	TargetID() int64
	isFavoriteTarget()
}

type SongTarget struct{ SongID int64 }
type AlbumTarget struct{ AlbumID int64 }
type ArtistTarget struct{ ArtistID int64 }
type PlaylistTarget struct{ PlaylistID int64 }

func (t SongTarget) ContentType() ContentType { return ContentSong }
func (t SongTarget) TargetID() int64 { return t.SongID }
func (SongTarget) isFavoriteTarget() {}
func (t AlbumTarget) ContentType() ContentType { return ContentAlbum }
func (t AlbumTarget) TargetID() int64 { return t.AlbumID }
func (AlbumTarget) isFavoriteTarget() {}
func (t ArtistTarget) ContentType() ContentType { return ContentArtist }
func (t ArtistTarget) TargetID() int64 { return t.ArtistID }
func (ArtistTarget) isFavoriteTarget() {}
func (t PlaylistTarget) ContentType() ContentType { return ContentPlaylist }
func (t PlaylistTarget) TargetID() int64 { return t.PlaylistID }
func (PlaylistTarget) isFavoriteTarget() {}

// ParseContentType accepts the canonical names case-insensitively.
func ParseContentType(s string) (ContentType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "song":
		return ContentSong, nil
	case "album":
		return ContentAlbum, nil
	case "artist":
		return ContentArtist, nil
	case "playlist":
		return ContentPlaylist, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownContentType, s)
}

// NewTarget builds the target variant for a content type and id.
func NewTarget(kind ContentType, id int64) (FavoriteTarget, error) {
	switch kind {
	case ContentSong:
		return SongTarget{SongID: id}, nil
	case ContentAlbum:
		return AlbumTarget{AlbumID: id}, nil
	case ContentArtist:
		return ArtistTarget{ArtistID: id}, nil
	case ContentPlaylist:
		return PlaylistTarget{PlaylistID: id}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownContentType, kind)
}

// ParseTarget combines ParseContentType and NewTarget.
func ParseTarget(kind string, id int64) (FavoriteTarget, error) {
	ct, err := ParseContentType(kind)
	if err != nil {
		return nil, err
	}
	return NewTarget(ct, id)
}

// UserFavorite records that a user favorited a target. Rows are never updated.
type UserFavorite struct {
	ID        int64
	UserID    int64
	Target    FavoriteTarget
	CreatedAt time.Time
}

type userFavoriteJSON struct {
	ID          int64       `json:"id"`
	UserID      int64       `json:"userId"`
	ContentType ContentType `json:"contentType"`
	ContentID   int64       `json:"contentId"`
	CreatedAt   time.Time   `json:"createdAt"`
}

func (f UserFavorite) MarshalJSON() ([]byte, error) {
	out := userFavoriteJSON{ID: f.ID, UserID: f.UserID, CreatedAt: f.CreatedAt}
	if f.Target != nil {
		out.ContentType = f.Target.ContentType()
		out.ContentID = f.Target.TargetID()
	}
	return json.Marshal(out)
}

func (f *UserFavorite) UnmarshalJSON(data []byte) error {
	var in userFavoriteJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	target, err := ParseTarget(string(in.ContentType), in.ContentID)
	if err != nil {
		return err
	}
	*f = UserFavorite{ID: in.ID, UserID: in.UserID, Target: target, CreatedAt: in.CreatedAt}
	return nil
}

// FavoriteRequest is the body accepted when favoriting content.
type FavoriteRequest struct {
	ContentType string `json:"contentType" validate:"required"`
	ContentID   int64  `json:"contentId" validate:"required,gt=0"`
}

// FavoriteView pairs a favorite with its resolved target. Exactly one of
// the target fields is set.
type FavoriteView struct {
	Favorite UserFavorite `json:"favorite"`
	Song     *SongView    `json:"song,omitempty"`
	Album    *Album       `json:"album,omitempty"`
	Artist   *Artist      `json:"artist,omitempty"`
	Playlist *Playlist    `json:"playlist,omitempty"`
}

// Title names the favorited entity for display.
func (v FavoriteView) Title() string {
	switch {
	case v.Song != nil:
		return v.Song.Song.Title
	case v.Album != nil:
		return v.Album.Title
	case v.Artist != nil:
		return v.Artist.Name
	case v.Playlist != nil:
		return v.Playlist.Name
	}
	return ""
}

package models

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"
)

func TestAuthUserSummaryRoundTrip(t *testing.T) {
	img := "/uploads/alice.png"
	user := User{
		ID:              7,
		FirstName:       "Alice",
		LastName:        "Liddell",
		Username:        "alice",
		Email:           "alice@example.com",
		PasswordHash:    "$2a$10$hash",
		ProfileImageURL: &img,
	}

	summary := NewAuthUserSummary(user, []string{RoleUser})
	back := summary.User()

	if back.ID != user.ID || back.Username != user.Username || back.Email != user.Email {
		t.Fatalf("identity not preserved: got %+v", back)
	}
	if back.FirstName != user.FirstName || back.LastName != user.LastName {
		t.Fatalf("names not preserved: got %q %q", back.FirstName, back.LastName)
	}
	if back.ProfileImageURL == nil || *back.ProfileImageURL != img {
		t.Fatalf("profile image not preserved: got %v", back.ProfileImageURL)
	}
	if back.PasswordHash != "" {
		t.Fatalf("password hash must not travel through the summary")
	}
	if !summary.HasRole(RoleUser) || summary.HasRole(RoleAdmin) {
		t.Fatalf("unexpected roles %v", summary.Roles)
	}
}

func TestLoginResponseWireNames(t *testing.T) {
	resp := LoginResponse{
		Token:        "t",
		RefreshToken: "r",
		User:         &AuthUserSummary{ID: 1, Username: "alice", Roles: []string{"User"}},
		Success:      true,
		Message:      "ok",
	}
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"token", "refreshToken", "user", "success", "message"} {
		if _, ok := raw[key]; !ok {
			t.Fatalf("missing key %q in %s", key, data)
		}
	}
	user := raw["user"].(map[string]any)
	for _, key := range []string{"id", "username", "email", "firstName", "lastName", "profileImageUrl", "roles"} {
		if _, ok := user[key]; !ok {
			t.Fatalf("missing user key %q in %s", key, data)
		}
	}
}

func TestErrorEnvelopeDecode(t *testing.T) {
	body := `{"error":"NotFound","message":"song not found","details":"id 4","timestamp":"2024-05-01T10:00:00Z"}`
	var env ErrorEnvelope
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	if env.Error != "NotFound" || env.Message != "song not found" || env.Details != "id 4" || !env.Timestamp.Equal(want) {
		t.Fatalf("unexpected envelope %+v", env)
	}
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		kind    string
		id      int64
		want    FavoriteTarget
		wantErr bool
	}{
		{kind: "Song", id: 1, want: SongTarget{SongID: 1}},
		{kind: "album", id: 2, want: AlbumTarget{AlbumID: 2}},
		{kind: " ARTIST ", id: 3, want: ArtistTarget{ArtistID: 3}},
		{kind: "Playlist", id: 4, want: PlaylistTarget{PlaylistID: 4}},
		{kind: "podcast", id: 5, wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.kind, func(t *testing.T) {
			got, err := ParseTarget(tc.kind, tc.id)
			if tc.wantErr {
				if !errors.Is(err, ErrUnknownContentType) {
					t.Fatalf("expected ErrUnknownContentType, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %#v, want %#v", got, tc.want)
			}
		})
	}
}

func TestUserFavoriteJSON(t *testing.T) {
	fav := UserFavorite{ID: 9, UserID: 2, Target: AlbumTarget{AlbumID: 5}, CreatedAt: time.Unix(100, 0).UTC()}
	data, err := json.Marshal(fav)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded UserFavorite
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Target != (AlbumTarget{AlbumID: 5}) || decoded.ID != 9 || decoded.UserID != 2 {
		t.Fatalf("unexpected favorite %+v", decoded)
	}

	if err := json.Unmarshal([]byte(`{"id":1,"contentType":"Venue","contentId":1}`), &decoded); err == nil {
		t.Fatalf("expected error for unknown content type")
	}
}

func TestSongViewFallbacks(t *testing.T) {
	view := SongView{Song: Song{Title: "Untitled", DurationSeconds: 185}}
	if view.ArtistName() != UnknownArtist {
		t.Fatalf("ArtistName = %q", view.ArtistName())
	}
	if view.AlbumTitle() != NoAlbum {
		t.Fatalf("AlbumTitle = %q", view.AlbumTitle())
	}
	if view.Duration() != "3:05" {
		t.Fatalf("Duration = %q", view.Duration())
	}
	if got := FormatDuration(3725); got != "1:02:05" {
		t.Fatalf("FormatDuration(3725) = %q", got)
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	p := Paginate(items, 2, 2)
	if len(p.Data) != 2 || p.Data[0] != 3 || p.TotalPages != 3 || p.TotalCount != 5 {
		t.Fatalf("unexpected page %+v", p)
	}

	p = Paginate(items, 4, 2)
	if len(p.Data) != 0 || p.CurrentPage != 4 {
		t.Fatalf("expected empty trailing page, got %+v", p)
	}

	p = Paginate(items, 0, 0)
	if len(p.Data) != 5 || p.TotalPages != 1 {
		t.Fatalf("expected single page, got %+v", p)
	}

	p = Paginate(items, math.MaxInt, 20)
	if len(p.Data) != 0 || p.TotalPages != 1 || p.CurrentPage != math.MaxInt {
		t.Fatalf("expected empty page for an out of range page number, got %+v", p)
	}

	p = Paginate(items, 1, math.MaxInt)
	if len(p.Data) != 5 || p.TotalPages != 1 {
		t.Fatalf("expected everything for a huge page size, got %+v", p)
	}

	p = Paginate([]int{}, 3, 10)
	if len(p.Data) != 0 || p.TotalPages != 0 {
		t.Fatalf("expected empty listing, got %+v", p)
	}
}

package playlists

import (
	"context"
	"errors"
	"testing"

	"musicapp/internal/models"
	"musicapp/internal/store"
)

type fixture struct {
	svc   Service
	st    *store.Store
	alice models.User
	bob   models.User
	songs []models.Song
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	st := store.New()

	f := fixture{svc: New(st), st: st}
	for _, name := range []string{"alice", "bob"} {
		u, err := st.CreateUser(ctx, models.User{Username: name, Email: name + "@example.com", PasswordHash: "$2a$10$placeholder"})
		if err != nil {
			t.Fatalf("CreateUser: %v", err)
		}
		if name == "alice" {
			f.alice = u
		} else {
			f.bob = u
		}
	}
	for _, title := range []string{"One", "Two", "Three"} {
		so, err := st.CreateSong(ctx, models.Song{Title: title})
		if err != nil {
			t.Fatalf("CreateSong: %v", err)
		}
		f.songs = append(f.songs, so)
	}
	return f
}

func TestCreateSetsOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, f.alice.ID, models.Playlist{Name: "Road trip", OwnerID: f.bob.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.OwnerID != f.alice.ID {
		t.Fatalf("expected owner %d, got %d", f.alice.ID, p.OwnerID)
	}

	if _, err := f.svc.Create(ctx, 0, models.Playlist{Name: "Anon"}); !errors.Is(err, store.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestOnlyOwnerMutates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	public, err := f.svc.Create(ctx, f.alice.ID, models.Playlist{Name: "Shared", IsPublic: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	private, err := f.svc.Create(ctx, f.alice.ID, models.Playlist{Name: "Secret"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	name := "Hijacked"
	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{"update public", func() error {
			_, err := f.svc.Update(ctx, f.bob.ID, public.ID, models.PlaylistPatch{Name: &name})
			return err
		}, store.ErrForbidden},
		{"add song to public", func() error {
			_, _, err := f.svc.AddSong(ctx, f.bob.ID, public.ID, f.songs[0].ID)
			return err
		}, store.ErrForbidden},
		{"delete public", func() error { return f.svc.Delete(ctx, f.bob.ID, public.ID) }, store.ErrForbidden},
		{"delete private", func() error { return f.svc.Delete(ctx, f.bob.ID, private.ID) }, store.ErrNotFound},
		{"anonymous", func() error { return f.svc.Delete(ctx, 0, public.ID) }, store.ErrUnauthorized},
	}
	for _, tc := range tests {
		if err := tc.run(); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}

	if _, err := f.svc.Get(ctx, f.bob.ID, private.ID); !errors.Is(err, store.ErrPlaylistNotFound) {
		t.Fatalf("expected private playlist to be hidden, got %v", err)
	}
	if _, err := f.svc.Get(ctx, f.alice.ID, private.ID); err != nil {
		t.Fatalf("owner Get: %v", err)
	}
}

func TestSongsKeepInsertionOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, f.alice.ID, models.Playlist{Name: "Mix", IsPublic: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for _, idx := range []int{2, 0, 1, 0} {
		if _, _, err := f.svc.AddSong(ctx, f.alice.ID, p.ID, f.songs[idx].ID); err != nil {
			t.Fatalf("AddSong: %v", err)
		}
	}
	if _, err := f.svc.RemoveSong(ctx, f.alice.ID, p.ID, f.songs[0].ID); err != nil {
		t.Fatalf("RemoveSong: %v", err)
	}

	d, err := f.svc.Get(ctx, f.bob.ID, p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(d.Songs) != 2 || d.Songs[0].Song.Title != "Three" || d.Songs[1].Song.Title != "Two" {
		t.Fatalf("unexpected order %+v", d.Songs)
	}
	if d.Owner != "alice" {
		t.Fatalf("expected owner name alice, got %q", d.Owner)
	}
}

func TestPublicAndMine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, p := range []models.Playlist{{Name: "A", IsPublic: true}, {Name: "B"}} {
		if _, err := f.svc.Create(ctx, f.alice.ID, p); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	public, err := f.svc.Public(ctx)
	if err != nil {
		t.Fatalf("Public: %v", err)
	}
	if len(public) != 1 || public[0].Name != "A" {
		t.Fatalf("unexpected public playlists %+v", public)
	}

	mine, err := f.svc.Mine(ctx, f.alice.ID)
	if err != nil {
		t.Fatalf("Mine: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 playlists, got %d", len(mine))
	}
}

func TestCopyRespectsVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	public, err := f.svc.Create(ctx, f.alice.ID, models.Playlist{Name: "Shared", IsPublic: true, SongIDs: []int64{f.songs[1].ID, f.songs[0].ID}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	private, err := f.svc.Create(ctx, f.alice.ID, models.Playlist{Name: "Secret"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	cp, err := f.svc.Copy(ctx, f.bob.ID, public.ID)
	if err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if cp.OwnerID != f.bob.ID || cp.IsPublic || cp.Name != "Shared (Copy)" {
		t.Fatalf("unexpected copy %+v", cp)
	}
	d, err := f.svc.Get(ctx, f.bob.ID, cp.ID)
	if err != nil {
		t.Fatalf("Get copy: %v", err)
	}
	if len(d.Songs) != 2 || d.Songs[0].Song.Title != "Two" {
		t.Fatalf("copy songs %+v", d.Songs)
	}

	if _, err := f.svc.Copy(ctx, f.bob.ID, private.ID); !errors.Is(err, store.ErrPlaylistNotFound) {
		t.Fatalf("copying a hidden playlist: expected ErrPlaylistNotFound, got %v", err)
	}
	if _, err := f.svc.Copy(ctx, 0, public.ID); !errors.Is(err, store.ErrUnauthorized) {
		t.Fatalf("anonymous copy: expected ErrUnauthorized, got %v", err)
	}
	if _, err := f.svc.Copy(ctx, f.alice.ID, private.ID); err != nil {
		t.Fatalf("owner copying own private playlist: %v", err)
	}
}

func TestAddAlbumRequiresOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	artist, err := f.st.CreateArtist(ctx, models.Artist{Name: "Low", IsActive: true})
	if err != nil {
		t.Fatalf("CreateArtist: %v", err)
	}
	album, err := f.st.CreateAlbum(ctx, models.Album{Title: "Things We Lost", ArtistID: artist.ID})
	if err != nil {
		t.Fatalf("CreateAlbum: %v", err)
	}
	for _, title := range []string{"Sunflower", "Whitetail"} {
		if _, err := f.st.CreateSong(ctx, models.Song{Title: title, AlbumID: &album.ID}); err != nil {
			t.Fatalf("CreateSong: %v", err)
		}
	}
	p, err := f.svc.Create(ctx, f.alice.ID, models.Playlist{Name: "Slowcore", IsPublic: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, _, err := f.svc.AddAlbum(ctx, f.bob.ID, p.ID, album.ID); !errors.Is(err, store.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	updated, added, err := f.svc.AddAlbum(ctx, f.alice.ID, p.ID, album.ID)
	if err != nil || added != 2 || updated.SongCount() != 2 {
		t.Fatalf("AddAlbum: added=%d count=%d err=%v", added, updated.SongCount(), err)
	}
}

func TestFeaturingHidesPrivatePlaylists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	song := f.songs[0].ID

	shared, err := f.svc.Create(ctx, f.alice.ID, models.Playlist{Name: "Shared", IsPublic: true, SongIDs: []int64{song}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	secret, err := f.svc.Create(ctx, f.alice.ID, models.Playlist{Name: "Secret", SongIDs: []int64{song}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := f.svc.Featuring(ctx, f.bob.ID, song)
	if err != nil {
		t.Fatalf("Featuring: %v", err)
	}
	if len(got) != 1 || got[0].ID != shared.ID {
		t.Fatalf("bob sees %+v", got)
	}

	got, _ = f.svc.Featuring(ctx, f.alice.ID, song)
	if len(got) != 2 || got[1].ID != secret.ID {
		t.Fatalf("alice sees %+v", got)
	}

	got, _ = f.svc.Featuring(ctx, 0, f.songs[2].ID)
	if len(got) != 0 {
		t.Fatalf("unused song featured in %+v", got)
	}
}

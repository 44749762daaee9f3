package main

import (
	"context"
	"fmt"

	"musicapp/internal/app/users"
	"musicapp/internal/httpapi"
	"musicapp/internal/models"
	"musicapp/internal/store"
)

type seedTrack struct {
	Title    string
	Duration int
}

type seedAlbum struct {
	Artist  string
	Country string
	Title   string
	Year    int
	Genre   string
	Tracks  []seedTrack
}

var demoAlbums = []seedAlbum{
	{
		Artist: "Boards of Canada", Country: "United Kingdom",
		Title: "Music Has the Right to Children", Year: 1998, Genre: "Electronic",
		Tracks: []seedTrack{{"Turquoise Hexagon Sun", 307}, {"Roygbiv", 151}, {"Aquarius", 353}},
	},
	{
		Artist: "Massive Attack", Country: "United Kingdom",
		Title: "Mezzanine", Year: 1998, Genre: "Trip Hop",
		Tracks: []seedTrack{{"Angel", 379}, {"Teardrop", 330}, {"Inertia Creeps", 356}},
	},
	{
		Artist: "Portishead", Country: "United Kingdom",
		Title: "Dummy", Year: 1994, Genre: "Trip Hop",
		Tracks: []seedTrack{{"Mysterons", 302}, {"Sour Times", 254}, {"Glory Box", 301}},
	},
	{
		Artist: "Radiohead", Country: "United Kingdom",
		Title: "OK Computer", Year: 1997, Genre: "Alternative Rock",
		Tracks: []seedTrack{{"Airbag", 284}, {"Paranoid Android", 383}, {"No Surprises", 229}},
	},
	{
		Artist: "Bonobo", Country: "United Kingdom",
		Title: "Migration", Year: 2017, Genre: "Downtempo",
		Tracks: []seedTrack{{"Migration", 321}, {"Break Apart", 297}, {"Kerala", 254}},
	},
	{
		Artist: "Nils Frahm", Country: "Germany",
		Title: "Spaces", Year: 2013, Genre: "Modern Classical",
		Tracks: []seedTrack{{"An Aborted Beginning", 165}, {"Says", 494}, {"Hammers", 406}},
	},
	{
		Artist: "Thundercat", Country: "United States",
		Title: "Drunk", Year: 2017, Genre: "Funk",
		Tracks: []seedTrack{{"Uh Uh", 159}, {"Them Changes", 188}, {"Show You the Way", 261}},
	},
}

// bootstrapDemoData fills an empty store with accounts and a small catalog.
func bootstrapDemoData(ctx context.Context, dataStore *store.Store, svc httpapi.Services) error {
	admin, err := ensureUser(ctx, svc.Users, "admin", "Site", "Admin")
	if err != nil {
		return err
	}
	if err := svc.Users.AssignRole(ctx, admin.ID, models.RoleAdmin); err != nil {
		return fmt.Errorf("bootstrap admin role: %w", err)
	}
	alice, err := ensureUser(ctx, svc.Users, "alice", "Alice", "Liddell")
	if err != nil {
		return err
	}

	var tripHop []int64
	for _, album := range demoAlbums {
		ids, err := seedCatalogAlbum(ctx, dataStore, album)
		if err != nil {
			return err
		}
		if album.Genre == "Trip Hop" {
			tripHop = append(tripHop, ids...)
		}
	}

	desc := "Bristol sounds from the nineties"
	playlist, err := svc.Playlists.Create(ctx, alice.ID, models.Playlist{
		Name:        "Trip hop essentials",
		Description: &desc,
		IsPublic:    true,
	})
	if err != nil {
		return fmt.Errorf("bootstrap playlist: %w", err)
	}
	for _, id := range tripHop {
		if _, _, err := svc.Playlists.AddSong(ctx, alice.ID, playlist.ID, id); err != nil {
			return fmt.Errorf("bootstrap playlist song: %w", err)
		}
	}

	if len(tripHop) > 0 {
		req := models.FavoriteRequest{ContentType: string(models.ContentSong), ContentID: tripHop[0]}
		if _, _, err := svc.Favorites.Add(ctx, alice.ID, req); err != nil {
			return fmt.Errorf("bootstrap favorite: %w", err)
		}
	}
	if _, _, err := svc.Users.Follow(ctx, alice.ID, admin.ID); err != nil {
		return fmt.Errorf("bootstrap follow: %w", err)
	}
	return nil
}

func ensureUser(ctx context.Context, svc users.Service, username, first, last string) (models.AuthUserSummary, error) {
	summary, err := svc.Register(ctx, users.RegisterInput{
		FirstName:       first,
		LastName:        last,
		Username:        username,
		Email:           username + "@musicapp.local",
		Password:        username + "123",
		ConfirmPassword: username + "123",
	})
	if err != nil {
		return models.AuthUserSummary{}, fmt.Errorf("bootstrap user %s: %w", username, err)
	}
	return summary, nil
}

func seedCatalogAlbum(ctx context.Context, dataStore *store.Store, album seedAlbum) ([]int64, error) {
	artistID, err := findOrCreateArtist(ctx, dataStore, album.Artist, album.Country, album.Genre)
	if err != nil {
		return nil, err
	}

	year := album.Year
	total := len(album.Tracks)
	length := 0
	for _, t := range album.Tracks {
		length += t.Duration
	}
	genre := album.Genre

	created, err := dataStore.CreateAlbum(ctx, models.Album{
		Title:           album.Title,
		ArtistID:        artistID,
		Year:            &year,
		Genre:           &genre,
		TotalTracks:     &total,
		DurationSeconds: &length,
	})
	if err != nil {
		return nil, fmt.Errorf("insert demo album %q: %w", album.Title, err)
	}

	ids := make([]int64, 0, len(album.Tracks))
	for i, t := range album.Tracks {
		track := i + 1
		song, err := dataStore.CreateSong(ctx, models.Song{
			Title:           t.Title,
			ArtistID:        &artistID,
			AlbumID:         &created.ID,
			DurationSeconds: t.Duration,
			TrackNumber:     &track,
			Genre:           &genre,
		})
		if err != nil {
			return nil, fmt.Errorf("insert demo song %q: %w", t.Title, err)
		}
		ids = append(ids, song.ID)
	}
	return ids, nil
}

func findOrCreateArtist(ctx context.Context, dataStore *store.Store, name, country, genre string) (int64, error) {
	existing, err := dataStore.ListArtists(ctx)
	if err != nil {
		return 0, err
	}
	for _, a := range existing {
		if a.Name == name {
			return a.ID, nil
		}
	}
	created, err := dataStore.CreateArtist(ctx, models.Artist{
		Name:     name,
		Country:  &country,
		Genre:    &genre,
		IsActive: true,
	})
	if err != nil {
		return 0, fmt.Errorf("insert demo artist %q: %w", name, err)
	}
	return created.ID, nil
}

package store

import (
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"musicapp/internal/models"
)

type followKey struct {
	follower, following int64
}

type favoriteKey struct {
	userID int64
	kind   models.ContentType
	id     int64
}

// Store is the in-memory entity store. A single RWMutex guards every map;
// each exported method is one critical section and returns copies.
type Store struct {
	mu       sync.RWMutex
	now      func() time.Time
	validate *validator.Validate

	users     map[int64]*models.User
	usernames map[string]int64
	emails    map[string]int64
	roles     map[int64]*models.Role
	roleNames map[string]int64
	userRoles map[int64]map[int64]struct{}

	artists   map[int64]*models.Artist
	albums    map[int64]*models.Album
	songs     map[int64]*models.Song
	playlists map[int64]*models.Playlist
	// songPlaylists is the reverse index of playlist membership.
	songPlaylists map[int64]map[int64]struct{}

	follows     map[int64]*models.UserFollower
	followPairs map[followKey]int64

	favorites    map[int64]*models.UserFavorite
	favoriteKeys map[favoriteKey]int64

	nextUserID, nextRoleID, nextArtistID, nextAlbumID int64
	nextSongID, nextPlaylistID, nextFollowID          int64
	nextFavoriteID                                    int64
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New returns an empty store with the Admin and User roles present.
func New(opts ...Option) *Store {
	s := &Store{
		now:           func() time.Time { return time.Now().UTC() },
		validate:      newValidator(),
		users:         make(map[int64]*models.User),
		usernames:     make(map[string]int64),
		emails:        make(map[string]int64),
		roles:         make(map[int64]*models.Role),
		roleNames:     make(map[string]int64),
		userRoles:     make(map[int64]map[int64]struct{}),
		artists:       make(map[int64]*models.Artist),
		albums:        make(map[int64]*models.Album),
		songs:         make(map[int64]*models.Song),
		playlists:     make(map[int64]*models.Playlist),
		songPlaylists: make(map[int64]map[int64]struct{}),
		follows:       make(map[int64]*models.UserFollower),
		followPairs:   make(map[followKey]int64),
		favorites:     make(map[int64]*models.UserFavorite),
		favoriteKeys:  make(map[favoriteKey]int64),
	}
	for _, opt := range opts {
		opt(s)
	}

	adminDesc := "Full access to the catalog"
	userDesc := "Standard listener account"
	s.insertRole(models.Role{Name: models.RoleAdmin, Description: &adminDesc})
	s.insertRole(models.Role{Name: models.RoleUser, Description: &userDesc})

	return s
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

func (s *Store) check(v any) error {
	if err := s.validate.Struct(v); err != nil {
		return translateValidation(err)
	}
	return nil
}

// stamp returns the current time, never earlier than floor.
func (s *Store) stamp(floor time.Time) time.Time {
	now := s.now()
	if now.Before(floor) {
		return floor
	}
	return now
}

func key(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneInt64(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTime(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// blank maps pointers to empty strings onto nil so optional fields stay absent.
func blank(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}

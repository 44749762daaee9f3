package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"musicapp/internal/models"
	"musicapp/internal/store"
)

// dummyPasswordHash is compared against when the login is unknown so that
// both failure paths cost one bcrypt comparison.
var dummyPasswordHash = []byte("$2a$10$CwTycUXWue0Thq9StjUM0uJ8n4VWeNseyX2fA9DE.D7su7J6iYGTC")

const (
	// MinPasswordLength is the shortest password Register accepts.
	MinPasswordLength = 6
	// MaxPasswordLength is the bcrypt input limit in bytes.
	MaxPasswordLength = 72
)

// Store describes the persistence operations required by the user service.
type Store interface {
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	GetUser(ctx context.Context, id int64) (models.User, error)
	FindUserByLogin(ctx context.Context, usernameOrEmail string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (models.User, error)
	RecordLogin(ctx context.Context, id int64) (models.User, error)
	DeleteUser(ctx context.Context, id int64) error
	AssignRole(ctx context.Context, userID int64, role string) error
	RevokeRole(ctx context.Context, userID int64, role string) error
	UserRoles(ctx context.Context, userID int64) ([]string, error)
	CreateRole(ctx context.Context, role models.Role) (models.Role, error)
	ListRoles(ctx context.Context) ([]models.Role, error)
	ProfileStats(ctx context.Context, userID int64) (models.ProfileStats, error)

	Follow(ctx context.Context, followerID, followingID int64) (models.UserFollower, bool, error)
	Unfollow(ctx context.Context, followerID, followingID int64) error
	IsFollowing(ctx context.Context, followerID, followingID int64) (bool, error)
	Followers(ctx context.Context, userID int64) ([]models.User, error)
	Following(ctx context.Context, userID int64) ([]models.User, error)
}

// RemoteAuthenticator verifies credentials against the backend API.
type RemoteAuthenticator interface {
	Login(ctx context.Context, usernameOrEmail, password string) (models.LoginResponse, error)
}

// RegisterInput is the data collected by the registration form.
type RegisterInput struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Profile is a user together with roles and social counters.
type Profile struct {
	User  models.User         `json:"user"`
	Roles []string            `json:"roles"`
	Stats models.ProfileStats `json:"stats"`
}

// Service exposes account, profile and follow workflows.
type Service interface {
	Register(ctx context.Context, in RegisterInput) (models.AuthUserSummary, error)
	Authenticate(ctx context.Context, usernameOrEmail, password string) (models.AuthUserSummary, error)
	Summary(ctx context.Context, id int64) (models.AuthUserSummary, error)
	Get(ctx context.Context, id int64) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Profile(ctx context.Context, id int64) (Profile, error)
	Update(ctx context.Context, id int64, patch models.UserPatch) (models.User, error)
	ChangePassword(ctx context.Context, id int64, current, next string) error
	Delete(ctx context.Context, id int64) error
	AssignRole(ctx context.Context, id int64, role string) error
	RevokeRole(ctx context.Context, id int64, role string) error
	Roles(ctx context.Context) ([]models.Role, error)
	CreateRole(ctx context.Context, role models.Role) (models.Role, error)

	Follow(ctx context.Context, followerID, followingID int64) (models.UserFollower, bool, error)
	Unfollow(ctx context.Context, followerID, followingID int64) error
	IsFollowing(ctx context.Context, followerID, followingID int64) (bool, error)
	Followers(ctx context.Context, id int64) ([]models.User, error)
	Following(ctx context.Context, id int64) ([]models.User, error)
}

// Option customises the service.
type Option func(*service)

// WithRemote delegates credential checks to the backend API.
func WithRemote(r RemoteAuthenticator) Option {
	return func(s *service) { s.remote = r }
}

// WithHashCost overrides the bcrypt cost.
func WithHashCost(cost int) Option {
	return func(s *service) { s.cost = cost }
}

type service struct {
	store  Store
	remote RemoteAuthenticator
	cost   int
}

// New wires a Service backed by the provided Store.
func New(store Store, opts ...Option) Service {
	s := &service{store: store, cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// checkPassword describes why password is unacceptable, or returns "".
func checkPassword(password string) string {
	switch {
	case len(password) < MinPasswordLength:
		return fmt.Sprintf("must be at least %d characters", MinPasswordLength)
	case len(password) > MaxPasswordLength:
		return fmt.Sprintf("must be at most %d bytes", MaxPasswordLength)
	}
	return ""
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string, cost int) (string, error) {
	if len(password) > MaxPasswordLength {
		return "", store.NewValidationError("password", fmt.Sprintf("must be at most %d bytes", MaxPasswordLength))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (s *service) Register(ctx context.Context, in RegisterInput) (models.AuthUserSummary, error) {
	if err := ctx.Err(); err != nil {
		return models.AuthUserSummary{}, err
	}

	fields := map[string]string{}
	if msg := checkPassword(in.Password); msg != "" {
		fields["password"] = msg
	}
	if in.Password != in.ConfirmPassword {
		fields["confirmPassword"] = "does not match password"
	}
	if len(fields) > 0 {
		return models.AuthUserSummary{}, &store.ValidationError{Fields: fields}
	}

	hash, err := HashPassword(in.Password, s.cost)
	if err != nil {
		return models.AuthUserSummary{}, err
	}

	u, err := s.store.CreateUser(ctx, models.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: hash,
	})
	if err != nil {
		return models.AuthUserSummary{}, err
	}
	if err := s.store.AssignRole(ctx, u.ID, models.RoleUser); err != nil {
		return models.AuthUserSummary{}, fmt.Errorf("assign default role: %w", err)
	}
	return s.summary(ctx, u)
}

func (s *service) Authenticate(ctx context.Context, usernameOrEmail, password string) (models.AuthUserSummary, error) {
	if err := ctx.Err(); err != nil {
		return models.AuthUserSummary{}, err
	}
	if strings.TrimSpace(usernameOrEmail) == "" || password == "" {
		return models.AuthUserSummary{}, store.ErrInvalidCredentials
	}
	if s.remote != nil {
		return s.authenticateRemote(ctx, usernameOrEmail, password)
	}

	u, err := s.store.FindUserByLogin(ctx, usernameOrEmail)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyPasswordHash, []byte(password))
			return models.AuthUserSummary{}, store.ErrInvalidCredentials
		}
		return models.AuthUserSummary{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return models.AuthUserSummary{}, store.ErrInvalidCredentials
	}

	u, err = s.store.RecordLogin(ctx, u.ID)
	if err != nil {
		return models.AuthUserSummary{}, err
	}
	return s.summary(ctx, u)
}

// authenticateRemote checks the credentials with the backend and mirrors the
// returned account locally so that playlists and favorites have an owner.
func (s *service) authenticateRemote(ctx context.Context, usernameOrEmail, password string) (models.AuthUserSummary, error) {
	resp, err := s.remote.Login(ctx, usernameOrEmail, password)
	if err != nil {
		return models.AuthUserSummary{}, err
	}
	if !resp.Success || resp.User == nil {
		return models.AuthUserSummary{}, store.ErrInvalidCredentials
	}

	u, err := s.store.FindUserByLogin(ctx, resp.User.Username)
	switch {
	case errors.Is(err, store.ErrNotFound):
		mirror := resp.User.User()
		mirror.ID = 0
		// Remote accounts never authenticate locally.
		mirror.PasswordHash, err = HashPassword(uuid.NewString(), s.cost)
		if err != nil {
			return models.AuthUserSummary{}, err
		}
		if u, err = s.store.CreateUser(ctx, mirror); err != nil {
			return models.AuthUserSummary{}, fmt.Errorf("mirror remote user: %w", err)
		}
	case err != nil:
		return models.AuthUserSummary{}, err
	}

	roles := resp.User.Roles
	if len(roles) == 0 {
		roles = []string{models.RoleUser}
	}
	for _, role := range roles {
		if err := s.store.AssignRole(ctx, u.ID, role); err != nil && !errors.Is(err, store.ErrRoleNotFound) {
			return models.AuthUserSummary{}, err
		}
	}

	if u, err = s.store.RecordLogin(ctx, u.ID); err != nil {
		return models.AuthUserSummary{}, err
	}
	return s.summary(ctx, u)
}

func (s *service) Summary(ctx context.Context, id int64) (models.AuthUserSummary, error) {
	if err := ctx.Err(); err != nil {
		return models.AuthUserSummary{}, err
	}
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return models.AuthUserSummary{}, err
	}
	return s.summary(ctx, u)
}

func (s *service) summary(ctx context.Context, u models.User) (models.AuthUserSummary, error) {
	roles, err := s.store.UserRoles(ctx, u.ID)
	if err != nil {
		return models.AuthUserSummary{}, err
	}
	return models.NewAuthUserSummary(u, roles), nil
}

func (s *service) Get(ctx context.Context, id int64) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	return s.store.GetUser(ctx, id)
}

func (s *service) List(ctx context.Context) ([]models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListUsers(ctx)
}

func (s *service) Profile(ctx context.Context, id int64) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	roles, err := s.store.UserRoles(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	stats, err := s.store.ProfileStats(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	return Profile{User: u, Roles: roles, Stats: stats}, nil
}

func (s *service) Update(ctx context.Context, id int64, patch models.UserPatch) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	patch.PasswordHash = nil
	return s.store.UpdateUser(ctx, id, patch)
}

func (s *service) ChangePassword(ctx context.Context, id int64, current, next string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)); err != nil {
		return store.ErrInvalidCredentials
	}
	if msg := checkPassword(next); msg != "" {
		return store.NewValidationError("newPassword", msg)
	}
	hash, err := HashPassword(next, s.cost)
	if err != nil {
		return err
	}
	_, err = s.store.UpdateUser(ctx, id, models.UserPatch{PasswordHash: &hash})
	return err
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeleteUser(ctx, id)
}

func (s *service) AssignRole(ctx context.Context, id int64, role string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.AssignRole(ctx, id, role)
}

func (s *service) RevokeRole(ctx context.Context, id int64, role string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.RevokeRole(ctx, id, role)
}

func (s *service) Roles(ctx context.Context) ([]models.Role, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListRoles(ctx)
}

func (s *service) CreateRole(ctx context.Context, role models.Role) (models.Role, error) {
	if err := ctx.Err(); err != nil {
		return models.Role{}, err
	}
	return s.store.CreateRole(ctx, role)
}

func (s *service) Follow(ctx context.Context, followerID, followingID int64) (models.UserFollower, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.UserFollower{}, false, err
	}
	return s.store.Follow(ctx, followerID, followingID)
}

func (s *service) Unfollow(ctx context.Context, followerID, followingID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.Unfollow(ctx, followerID, followingID)
}

func (s *service) IsFollowing(ctx context.Context, followerID, followingID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.store.IsFollowing(ctx, followerID, followingID)
}

func (s *service) Followers(ctx context.Context, id int64) ([]models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.Followers(ctx, id)
}

func (s *service) Following(ctx context.Context, id int64) ([]models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.Following(ctx, id)
}

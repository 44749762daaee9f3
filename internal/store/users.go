package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"musicapp/internal/models"
)

// CreateUser registers a user. Username and email are unique ignoring case.
func (s *Store) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}

	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.TrimSpace(u.Email)
	u.FirstName = strings.TrimSpace(u.FirstName)
	u.LastName = strings.TrimSpace(u.LastName)
	u.ProfileImageURL = blank(u.ProfileImageURL)
	if err := s.check(u); err != nil {
		return models.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.usernames[key(u.Username)]; ok {
		return models.User{}, ErrUsernameTaken
	}
	if _, ok := s.emails[key(u.Email)]; ok {
		return models.User{}, ErrEmailTaken
	}

	s.nextUserID++
	u.ID = s.nextUserID
	u.CreatedAt = s.now()
	u.UpdatedAt = u.CreatedAt
	u.LastLoginAt = nil

	s.users[u.ID] = cloneUser(&u)
	s.usernames[key(u.Username)] = u.ID
	s.emails[key(u.Email)] = u.ID

	return u, nil
}

// GetUser returns a user by id.
func (s *Store) GetUser(ctx context.Context, id int64) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return *cloneUser(u), nil
}

// FindUserByLogin looks a user up by username or email, ignoring case.
func (s *Store) FindUserByLogin(ctx context.Context, usernameOrEmail string) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}

	k := key(usernameOrEmail)

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usernames[k]
	if !ok {
		id, ok = s.emails[k]
	}
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return *cloneUser(s.users[id]), nil
}

// ListUsers returns every user ordered by id.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// UpdateUser applies a partial update.
func (s *Store) UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[id]
	if !ok {
		return models.User{}, ErrUserNotFound
	}

	next := *cloneUser(existing)
	if patch.FirstName != nil {
		next.FirstName = strings.TrimSpace(*patch.FirstName)
	}
	if patch.LastName != nil {
		next.LastName = strings.TrimSpace(*patch.LastName)
	}
	if patch.Username != nil {
		next.Username = strings.TrimSpace(*patch.Username)
	}
	if patch.Email != nil {
		next.Email = strings.TrimSpace(*patch.Email)
	}
	if patch.PasswordHash != nil {
		next.PasswordHash = *patch.PasswordHash
	}
	if patch.ProfileImageURL != nil {
		next.ProfileImageURL = blank(patch.ProfileImageURL)
	}
	if err := s.check(next); err != nil {
		return models.User{}, err
	}

	if other, ok := s.usernames[key(next.Username)]; ok && other != id {
		return models.User{}, ErrUsernameTaken
	}
	if other, ok := s.emails[key(next.Email)]; ok && other != id {
		return models.User{}, ErrEmailTaken
	}

	delete(s.usernames, key(existing.Username))
	delete(s.emails, key(existing.Email))
	next.UpdatedAt = s.stamp(existing.CreatedAt)
	s.users[id] = cloneUser(&next)
	s.usernames[key(next.Username)] = id
	s.emails[key(next.Email)] = id

	return next, nil
}

// RecordLogin stamps lastLoginAt with the current time.
func (s *Store) RecordLogin(ctx context.Context, id int64) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	now := s.stamp(u.CreatedAt)
	u.LastLoginAt = &now
	u.UpdatedAt = now
	return *cloneUser(u), nil
}

// DeleteUser removes a user together with owned playlists, follow rows in
// both directions, the user's favorites and role assignments.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}

	for pid, p := range s.playlists {
		if p.OwnerID == id {
			s.removePlaylistLocked(pid)
		}
	}
	for fid, f := range s.follows {
		if f.FollowerID == id || f.FollowingID == id {
			delete(s.follows, fid)
			delete(s.followPairs, followKey{f.FollowerID, f.FollowingID})
		}
	}
	for fid, f := range s.favorites {
		if f.UserID == id {
			s.removeFavoriteLocked(fid)
		}
	}

	delete(s.userRoles, id)
	delete(s.usernames, key(u.Username))
	delete(s.emails, key(u.Email))
	delete(s.users, id)
	return nil
}

// CreateRole adds a named role.
func (s *Store) CreateRole(ctx context.Context, role models.Role) (models.Role, error) {
	if err := ctx.Err(); err != nil {
		return models.Role{}, err
	}

	role.Name = strings.TrimSpace(role.Name)
	role.Description = blank(role.Description)
	if err := s.check(role); err != nil {
		return models.Role{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.roleNames[key(role.Name)]; ok {
		return models.Role{}, ErrRoleExists
	}
	return s.insertRole(role), nil
}

func (s *Store) insertRole(role models.Role) models.Role {
	s.nextRoleID++
	role.ID = s.nextRoleID
	stored := role
	stored.Description = cloneString(role.Description)
	s.roles[role.ID] = &stored
	s.roleNames[key(role.Name)] = role.ID
	return role
}

// ListRoles returns all roles ordered by id.
func (s *Store) ListRoles(ctx context.Context) ([]models.Role, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Role, 0, len(s.roles))
	for _, r := range s.roles {
		c := *r
		c.Description = cloneString(r.Description)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// AssignRole grants a role by name. Granting a held role is a no-op.
func (s *Store) AssignRole(ctx context.Context, userID int64, roleName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return ErrUserNotFound
	}
	roleID, ok := s.roleNames[key(roleName)]
	if !ok {
		return fmt.Errorf("%q: %w", roleName, ErrRoleNotFound)
	}

	held := s.userRoles[userID]
	if held == nil {
		held = make(map[int64]struct{})
		s.userRoles[userID] = held
	}
	held[roleID] = struct{}{}
	return nil
}

// RevokeRole removes a role from a user. Revoking a role not held is a no-op.
func (s *Store) RevokeRole(ctx context.Context, userID int64, roleName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return ErrUserNotFound
	}
	roleID, ok := s.roleNames[key(roleName)]
	if !ok {
		return fmt.Errorf("%q: %w", roleName, ErrRoleNotFound)
	}
	delete(s.userRoles[userID], roleID)
	return nil
}

// UserRoles returns the role names held by a user, ordered by role id.
func (s *Store) UserRoles(ctx context.Context, userID int64) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.users[userID]; !ok {
		return nil, ErrUserNotFound
	}

	ids := make([]int64, 0, len(s.userRoles[userID]))
	for id := range s.userRoles[userID] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, s.roles[id].Name)
	}
	return names, nil
}

// ProfileStats counts a user's playlists, follow rows and favorites.
func (s *Store) ProfileStats(ctx context.Context, userID int64) (models.ProfileStats, error) {
	if err := ctx.Err(); err != nil {
		return models.ProfileStats{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.users[userID]; !ok {
		return models.ProfileStats{}, ErrUserNotFound
	}

	var stats models.ProfileStats
	for _, p := range s.playlists {
		if p.OwnerID == userID {
			stats.Playlists++
		}
	}
	for _, f := range s.follows {
		if f.FollowingID == userID {
			stats.Followers++
		}
		if f.FollowerID == userID {
			stats.Following++
		}
	}
	for _, f := range s.favorites {
		if f.UserID == userID {
			stats.Favorites++
		}
	}
	return stats, nil
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.ProfileImageURL = cloneString(u.ProfileImageURL)
	c.LastLoginAt = cloneTime(u.LastLoginAt)
	return &c
}

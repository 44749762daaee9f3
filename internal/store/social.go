package store

import (
	"context"
	"sort"

	"musicapp/internal/models"
)

// Follow records that follower follows following. Self-follow is always a
// validation error; following twice returns the existing row with created=false.
func (s *Store) Follow(ctx context.Context, followerID, followingID int64) (models.UserFollower, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.UserFollower{}, false, err
	}
	if followerID == followingID {
		return models.UserFollower{}, false, NewValidationError("followingId", "cannot follow yourself")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[followerID]; !ok {
		return models.UserFollower{}, false, ErrUserNotFound
	}
	if _, ok := s.users[followingID]; !ok {
		return models.UserFollower{}, false, ErrUserNotFound
	}

	k := followKey{followerID, followingID}
	if id, ok := s.followPairs[k]; ok {
		return *s.follows[id], false, nil
	}

	s.nextFollowID++
	f := models.UserFollower{
		ID:          s.nextFollowID,
		FollowerID:  followerID,
		FollowingID: followingID,
		CreatedAt:   s.now(),
	}
	stored := f
	s.follows[f.ID] = &stored
	s.followPairs[k] = f.ID
	return f, true, nil
}

// Unfollow removes a follow row.
func (s *Store) Unfollow(ctx context.Context, followerID, followingID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := followKey{followerID, followingID}
	id, ok := s.followPairs[k]
	if !ok {
		return ErrFollowNotFound
	}
	delete(s.followPairs, k)
	delete(s.follows, id)
	return nil
}

// IsFollowing reports whether the pair exists.
func (s *Store) IsFollowing(ctx context.Context, followerID, followingID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.followPairs[followKey{followerID, followingID}]
	return ok, nil
}

// Followers returns the users following userID, oldest follow first.
func (s *Store) Followers(ctx context.Context, userID int64) ([]models.User, error) {
	return s.followList(ctx, userID, func(f *models.UserFollower) (int64, bool) {
		return f.FollowerID, f.FollowingID == userID
	})
}

// Following returns the users userID follows, oldest follow first.
func (s *Store) Following(ctx context.Context, userID int64) ([]models.User, error) {
	return s.followList(ctx, userID, func(f *models.UserFollower) (int64, bool) {
		return f.FollowingID, f.FollowerID == userID
	})
}

func (s *Store) followList(ctx context.Context, userID int64, pick func(*models.UserFollower) (int64, bool)) ([]models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.users[userID]; !ok {
		return nil, ErrUserNotFound
	}

	rows := make([]*models.UserFollower, 0)
	for _, f := range s.follows {
		if _, ok := pick(f); ok {
			rows = append(rows, f)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })

	out := make([]models.User, 0, len(rows))
	for _, f := range rows {
		other, _ := pick(f)
		if u, ok := s.users[other]; ok {
			out = append(out, *cloneUser(u))
		}
	}
	return out, nil
}

package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"GameNightwebserver/internal/domain"
)

type UsersStore struct {
	db  *DB
	Now func() time.Time
}

func NewUsersStore(db *DB) *UsersStore {
	return &UsersStore{db: db, Now: time.Now}
}

func (s *UsersStore) CreateUser(_ context.Context, username, passwordHash string, isAdmin bool) (domain.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, taken := s.db.usernames[username]; taken {
		return domain.User{}, domain.ErrUsernameTaken
	}

	now := s.Now().UTC()
	u := domain.UserWithPassword{
		User: domain.User{
			ID:        s.db.newID(),
			Username:  username,
			IsAdmin:   isAdmin,
			CreatedAt: now,
			UpdatedAt: now,
		},
		PasswordHash: passwordHash,
	}
	s.db.users[u.ID] = u
	s.db.usernames[username] = u.ID
	return u.User, nil
}

func (s *UsersStore) GetUserByID(_ context.Context, id string) (domain.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	u, ok := s.db.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u.User, nil
}

func (s *UsersStore) GetUserByUsername(_ context.Context, username string) (domain.UserWithPassword, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	id, ok := s.db.usernames[username]
	if !ok {
		return domain.UserWithPassword{}, domain.ErrUserNotFound
	}
	return s.db.users[id], nil
}

func (s *UsersStore) GetUsersByIDs(_ context.Context, ids []string) (map[string]domain.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	out := make(map[string]domain.User, len(ids))
	for _, id := range ids {
		if u, ok := s.db.users[id]; ok {
			out[id] = u.User
		}
	}
	return out, nil
}

func (s *UsersStore) UpdateProfile(_ context.Context, userID string, patch domain.ProfilePatch, when time.Time) (domain.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	u, ok := s.db.users[userID]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&u.FirstName, patch.FirstName)
	set(&u.LastName, patch.LastName)
	set(&u.Bio, patch.Bio)
	set(&u.FavoriteGames, patch.FavoriteGames)
	set(&u.ProfilePicture, patch.ProfilePicture)
	u.UpdatedAt = when
	s.db.users[userID] = u
	return u.User, nil
}

func (s *UsersStore) SetLastLogin(_ context.Context, userID string, when time.Time) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	u, ok := s.db.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	t := when
	u.LastLoginAt = &t
	s.db.users[userID] = u
	return nil
}

func (s *UsersStore) DeleteUser(_ context.Context, userID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.users[userID]; !ok {
		return domain.ErrUserNotFound
	}
	s.db.deleteUserLocked(userID)
	return nil
}

type UserSearchStore struct {
	db *DB
}

func NewUserSearchStore(db *DB) *UserSearchStore {
	return &UserSearchStore{db: db}
}

// SearchUsers leaves out the caller and anyone in a blocked pair with them.
func (s *UserSearchStore) SearchUsers(_ context.Context, callerID, q string, limit int) ([]domain.UserMatch, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return []domain.UserMatch{}, nil
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	out := []domain.UserMatch{}
	for id, u := range s.db.users {
		if id == callerID || !matchesUser(u.User, q) {
			continue
		}
		rel := domain.RelationNone
		if edge, ok := s.db.pairEdgeLocked(callerID, id); ok {
			rel = edge.RelationTo(callerID)
		}
		if rel == domain.RelationBlocked {
			continue
		}
		out = append(out, domain.UserMatch{UserSummary: u.Summary(), Relationship: rel})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func matchesUser(u domain.User, q string) bool {
	for _, field := range []string{u.Username, u.FirstName, u.LastName} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

type AdminUsersStore struct {
	db *DB
}

func NewAdminUsersStore(db *DB) *AdminUsersStore {
	return &AdminUsersStore{db: db}
}

func (s *AdminUsersStore) ListUsers(_ context.Context, limit, offset int) ([]domain.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.pageLocked("", limit, offset), nil
}

func (s *AdminUsersStore) SearchUsers(_ context.Context, query string, limit, offset int) ([]domain.User, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []domain.User{}, nil
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.pageLocked(query, limit, offset), nil
}

func (s *AdminUsersStore) pageLocked(query string, limit, offset int) []domain.User {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	all := make([]domain.User, 0, len(s.db.users))
	for _, u := range s.db.users {
		if query != "" && !strings.Contains(strings.ToLower(u.ID), query) && !matchesUser(u.User, query) {
			continue
		}
		all = append(all, u.User)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})

	if offset >= len(all) {
		return []domain.User{}
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all
}

package memory

import (
	"context"
	"sort"
	"time"

	"GameNightwebserver/internal/domain"
)

type NotificationTokensStore struct {
	db *DB
}

func NewNotificationTokensStore(db *DB) *NotificationTokensStore {
	return &NotificationTokensStore{db: db}
}

// UpsertToken moves a device token to userID when another account held it.
func (s *NotificationTokensStore) UpsertToken(_ context.Context, userID, token, platform string, when time.Time) (domain.NotificationToken, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.users[userID]; !ok {
		return domain.NotificationToken{}, domain.ErrUserNotFound
	}
	if platform != "ios" && platform != "android" {
		return domain.NotificationToken{}, domain.NewValidationError(map[string]string{"platform": "must be ios or android"})
	}
	t, ok := s.db.tokens[token]
	if !ok {
		t = domain.NotificationToken{ID: s.db.newID(), Token: token, CreatedAt: when}
	}
	t.UserID = userID
	t.Platform = platform
	t.UpdatedAt = when
	s.db.tokens[token] = t
	return t, nil
}

func (s *NotificationTokensStore) DeleteToken(_ context.Context, userID, token string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if t, ok := s.db.tokens[token]; ok && t.UserID == userID {
		delete(s.db.tokens, token)
	}
	return nil
}

func (s *NotificationTokensStore) ListTokens(_ context.Context, userID string) ([]domain.NotificationToken, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	out := []domain.NotificationToken{}
	for _, t := range s.db.tokens {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

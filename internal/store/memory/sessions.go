package memory

import (
	"context"
	"time"

	"GameNightwebserver/internal/domain"
)

type SessionsStore struct {
	db  *DB
	Now func() time.Time
}

func NewSessionsStore(db *DB) *SessionsStore {
	return &SessionsStore{db: db, Now: time.Now}
}

func (s *SessionsStore) CreateSession(_ context.Context, userID string, expiresAt time.Time, ip, userAgent string) (string, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.users[userID]; !ok {
		return "", domain.ErrUserNotFound
	}
	row := sessionRow{
		Session: domain.Session{
			ID:        s.db.newID(),
			UserID:    userID,
			CreatedAt: s.Now().UTC(),
			ExpiresAt: expiresAt,
		},
		IP:        ip,
		UserAgent: userAgent,
	}
	s.db.sessions[row.ID] = row
	return row.ID, nil
}

func (s *SessionsStore) LookupSession(_ context.Context, jti string) (domain.Session, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	row, ok := s.db.sessions[jti]
	if !ok || row.RevokedAt != nil {
		return domain.Session{}, domain.ErrNotFound
	}
	u, ok := s.db.users[row.UserID]
	if !ok {
		return domain.Session{}, domain.ErrNotFound
	}
	sess := row.Session
	sess.Username = u.Username
	sess.IsAdmin = u.IsAdmin
	return sess, nil
}

func (s *SessionsStore) RevokeSession(_ context.Context, userID, jti string, when time.Time) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	row, ok := s.db.sessions[jti]
	if !ok || row.UserID != userID || row.RevokedAt != nil {
		return nil
	}
	t := when
	row.RevokedAt = &t
	s.db.sessions[jti] = row
	return nil
}

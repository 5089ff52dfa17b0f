package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"GameNightwebserver/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionsStore keeps one row per issued bearer token. The row id is the
// token's jti, so revoking the row kills the token before it expires.
type SessionsStore struct {
	pool *pgxpool.Pool
}

func NewSessionsStore(pool *pgxpool.Pool) *SessionsStore {
	return &SessionsStore{pool: pool}
}

// CreateSession returns the id to sign into the token as its jti.
func (s *SessionsStore) CreateSession(ctx context.Context, userID string, expiresAt time.Time, ip, userAgent string) (string, error) {
	if !validID(userID) {
		return "", domain.ErrUserNotFound
	}
	const q = `
		INSERT INTO sessions (user_id, expires_at, ip, user_agent)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	var jti pgtype.UUID
	if err := s.pool.QueryRow(ctx, q, userID, expiresAt, nullIfEmpty(ip), nullIfEmpty(userAgent)).Scan(&jti); err != nil {
		if code, _ := pgErrorCode(err); code == pgForeignKeyViolation {
			return "", domain.ErrUserNotFound
		}
		return "", fmt.Errorf("create session: %w", err)
	}
	return uuidOrEmpty(jti), nil
}

// LookupSession resolves a jti to its unrevoked session together with the
// owner's current username and admin flag. Expiry is left to the caller.
func (s *SessionsStore) LookupSession(ctx context.Context, jti string) (domain.Session, error) {
	if !validID(jti) {
		return domain.Session{}, domain.ErrNotFound
	}
	const q = `
		SELECT s.id, s.user_id, u.username, u.is_admin, s.created_at, s.expires_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.id = $1 AND s.revoked_at IS NULL
	`
	var (
		sess     domain.Session
		jtiUUID  pgtype.UUID
		userUUID pgtype.UUID
	)
	err := s.pool.QueryRow(ctx, q, jti).Scan(&jtiUUID, &userUUID, &sess.Username, &sess.IsAdmin, &sess.CreatedAt, &sess.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Session{}, domain.ErrNotFound
		}
		return domain.Session{}, fmt.Errorf("lookup session: %w", err)
	}
	sess.ID = uuidOrEmpty(jtiUUID)
	sess.UserID = uuidOrEmpty(userUUID)
	return sess, nil
}

// RevokeSession only touches a session owned by userID. Unknown or already
// revoked sessions are not an error.
func (s *SessionsStore) RevokeSession(ctx context.Context, userID, jti string, when time.Time) error {
	if !validID(jti) || !validID(userID) {
		return nil
	}
	const q = `
		UPDATE sessions
		SET revoked_at = $3
		WHERE id = $1 AND user_id = $2 AND revoked_at IS NULL
	`
	if _, err := s.pool.Exec(ctx, q, jti, userID, when); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

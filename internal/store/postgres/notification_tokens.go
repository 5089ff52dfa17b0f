package postgres

import (
	"context"
	"fmt"
	"time"

	"GameNightwebserver/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NotificationTokensStore maps device push tokens to users. A device token
// belongs to whichever account registered it last, so a shared phone only
// gets game night pushes for the account signed in on it.
type NotificationTokensStore struct {
	pool *pgxpool.Pool
}

func NewNotificationTokensStore(pool *pgxpool.Pool) *NotificationTokensStore {
	return &NotificationTokensStore{pool: pool}
}

const tokenColumns = `id, user_id, token, platform, created_at, updated_at`

func scanToken(row pgx.Row) (domain.NotificationToken, error) {
	var (
		t        domain.NotificationToken
		idUUID   pgtype.UUID
		userUUID pgtype.UUID
	)
	if err := row.Scan(&idUUID, &userUUID, &t.Token, &t.Platform, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return domain.NotificationToken{}, err
	}
	t.ID = uuidOrEmpty(idUUID)
	t.UserID = uuidOrEmpty(userUUID)
	return t, nil
}

func (s *NotificationTokensStore) UpsertToken(ctx context.Context, userID, token, platform string, when time.Time) (domain.NotificationToken, error) {
	if !validID(userID) {
		return domain.NotificationToken{}, domain.ErrUserNotFound
	}
	const q = `
		INSERT INTO notification_tokens (user_id, token, platform, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (token)
		DO UPDATE SET
			user_id = EXCLUDED.user_id,
			platform = EXCLUDED.platform,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + tokenColumns

	t, err := scanToken(s.pool.QueryRow(ctx, q, userID, token, platform, when))
	if err != nil {
		switch code, _ := pgErrorCode(err); code {
		case pgForeignKeyViolation:
			return domain.NotificationToken{}, domain.ErrUserNotFound
		case pgCheckViolation:
			return domain.NotificationToken{}, domain.NewValidationError(map[string]string{"platform": "must be ios or android"})
		}
		return domain.NotificationToken{}, fmt.Errorf("upsert notification token: %w", err)
	}
	return t, nil
}

// DeleteToken only removes the token while userID still holds it.
func (s *NotificationTokensStore) DeleteToken(ctx context.Context, userID, token string) error {
	if !validID(userID) {
		return nil
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM notification_tokens WHERE user_id = $1 AND token = $2`, userID, token); err != nil {
		return fmt.Errorf("delete notification token: %w", err)
	}
	return nil
}

// ListTokens returns the user's devices, most recently registered first.
func (s *NotificationTokensStore) ListTokens(ctx context.Context, userID string) ([]domain.NotificationToken, error) {
	if !validID(userID) {
		return []domain.NotificationToken{}, nil
	}
	const q = `
		SELECT ` + tokenColumns + `
		FROM notification_tokens
		WHERE user_id = $1
		ORDER BY updated_at DESC, id ASC
	`
	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list notification tokens: %w", err)
	}
	defer rows.Close()

	out := []domain.NotificationToken{}
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification token: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notification tokens: %w", err)
	}
	return out, nil
}

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

type UsersStore struct {
	pool *pgxpool.Pool
}

func NewUsersStore(pool *pgxpool.Pool) *UsersStore {
	return &UsersStore{pool: pool}
}

const userColumns = `id, username, first_name, last_name, bio, favorite_games, profile_picture, is_admin, created_at, updated_at, last_login_at`

// scanUser reads userColumns, optionally followed by extra destinations.
func scanUser(row pgx.Row, extra ...any) (domain.User, error) {
	var (
		u           domain.User
		idUUID      pgtype.UUID
		lastLoginTS pgtype.Timestamptz
	)
	dest := []any{
		&idUUID,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.Bio,
		&u.FavoriteGames,
		&u.ProfilePicture,
		&u.IsAdmin,
		&u.CreatedAt,
		&u.UpdatedAt,
		&lastLoginTS,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return domain.User{}, err
	}
	u.ID = uuidOrEmpty(idUUID)
	u.LastLoginAt = timestamptzPtr(lastLoginTS)
	return u, nil
}

func (s *UsersStore) CreateUser(ctx context.Context, username, passwordHash string, isAdmin bool) (domain.User, error) {
	const q = `
		INSERT INTO users (username, password_hash, is_admin)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns

	u, err := scanUser(s.pool.QueryRow(ctx, q, username, passwordHash, isAdmin))
	if err != nil {
		return domain.User{}, mapUserWriteError(err)
	}
	return u, nil
}

func (s *UsersStore) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	if !validID(id) {
		return domain.User{}, domain.ErrUserNotFound
	}
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(s.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

// GetUserByUsername matches the handle exactly; usernames are case-sensitive.
func (s *UsersStore) GetUserByUsername(ctx context.Context, username string) (domain.UserWithPassword, error) {
	const q = `SELECT ` + userColumns + `, password_hash FROM users WHERE username = $1`

	var hash string
	u, err := scanUser(s.pool.QueryRow(ctx, q, username), &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UserWithPassword{}, domain.ErrUserNotFound
		}
		return domain.UserWithPassword{}, fmt.Errorf("get user by username: %w", err)
	}
	return domain.UserWithPassword{User: u, PasswordHash: hash}, nil
}

// GetUsersByIDs returns the users that exist; missing ids are absent from the map.
func (s *UsersStore) GetUsersByIDs(ctx context.Context, ids []string) (map[string]domain.User, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if validID(id) {
			valid = append(valid, id)
		}
	}
	out := make(map[string]domain.User, len(valid))
	if len(valid) == 0 {
		return out, nil
	}

	const q = `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1::uuid[])`
	rows, err := s.pool.Query(ctx, q, valid)
	if err != nil {
		return nil, fmt.Errorf("get users by ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out[u.ID] = u
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get users by ids: %w", err)
	}
	return out, nil
}

func (s *UsersStore) UpdateProfile(ctx context.Context, userID string, patch domain.ProfilePatch, when time.Time) (domain.User, error) {
	if !validID(userID) {
		return domain.User{}, domain.ErrUserNotFound
	}
	const q = `
		UPDATE users
		SET first_name = COALESCE($2, first_name),
			last_name = COALESCE($3, last_name),
			bio = COALESCE($4, bio),
			favorite_games = COALESCE($5, favorite_games),
			profile_picture = COALESCE($6, profile_picture),
			updated_at = $7
		WHERE id = $1
		RETURNING ` + userColumns

	u, err := scanUser(s.pool.QueryRow(ctx, q,
		userID,
		patch.FirstName,
		patch.LastName,
		patch.Bio,
		patch.FavoriteGames,
		patch.ProfilePicture,
		when,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}

func (s *UsersStore) SetLastLogin(ctx context.Context, userID string, when time.Time) error {
	const q = `
		UPDATE users
		SET last_login_at = $2, updated_at = now()
		WHERE id = $1
	`
	_, err := s.pool.Exec(ctx, q, userID, when)
	if err != nil {
		return fmt.Errorf("set last login: %w", err)
	}
	return nil
}

// DeleteUser removes the account; foreign keys cascade to every edge,
// hosted event, catalog entry, session and device token.
func (s *UsersStore) DeleteUser(ctx context.Context, userID string) error {
	if !validID(userID) {
		return domain.ErrUserNotFound
	}
	ct, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func mapUserWriteError(err error) error {
	code, constraint := pgErrorCode(err)
	if code == pgUniqueViolation {
		switch constraint {
		case "users_username_uq":
			return domain.ErrUsernameTaken
		default:
			return fmt.Errorf("unique violation (%s): %w", constraint, err)
		}
	}
	return fmt.Errorf("create user: %w", err)
}

package postgres

import (
	"context"
	"fmt"
	"strings"

	"GameNightwebserver/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type AdminUsersStore struct {
	pool *pgxpool.Pool
}

func NewAdminUsersStore(pool *pgxpool.Pool) *AdminUsersStore {
	return &AdminUsersStore{pool: pool}
}

func adminPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (s *AdminUsersStore) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	limit, offset = adminPage(limit, offset)

	const q = `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY created_at DESC, id ASC
		LIMIT $1 OFFSET $2
	`
	return s.queryUsers(ctx, "list users", q, limit, offset)
}

func (s *AdminUsersStore) SearchUsers(ctx context.Context, query string, limit, offset int) ([]domain.User, error) {
	limit, offset = adminPage(limit, offset)

	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.User{}, nil
	}

	like := "%" + escapeLike(query) + "%"
	const q = `
		SELECT ` + userColumns + `
		FROM users
		WHERE id::text ILIKE $1
		   OR username ILIKE $1
		   OR first_name ILIKE $1
		   OR last_name ILIKE $1
		ORDER BY created_at DESC, id ASC
		LIMIT $2 OFFSET $3
	`
	return s.queryUsers(ctx, "search users", q, like, limit, offset)
}

func (s *AdminUsersStore) queryUsers(ctx context.Context, op, q string, args ...any) ([]domain.User, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

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

// GamesStore is the per-user game catalog. Every lookup is scoped to the
// owner, so another user's entry reads as ErrGameNotFound.
type GamesStore struct {
	pool *pgxpool.Pool
}

func NewGamesStore(pool *pgxpool.Pool) *GamesStore {
	return &GamesStore{pool: pool}
}

const gameColumns = `id, user_id, title, status, notes, created_at, updated_at`

func scanGame(row pgx.Row) (domain.UserGame, error) {
	var (
		g        domain.UserGame
		idUUID   pgtype.UUID
		userUUID pgtype.UUID
	)
	if err := row.Scan(&idUUID, &userUUID, &g.Title, &g.Status, &g.Notes, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return domain.UserGame{}, err
	}
	g.ID = uuidOrEmpty(idUUID)
	g.UserID = uuidOrEmpty(userUUID)
	return g, nil
}

func mapGameWriteError(op string, err error) error {
	code, constraint := pgErrorCode(err)
	switch {
	case code == pgUniqueViolation && constraint == "user_games_title_uq":
		return domain.ErrGameExists
	case code == pgForeignKeyViolation:
		return domain.ErrUserNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *GamesStore) CreateGame(ctx context.Context, userID, title string, status domain.GameStatus, notes string, when time.Time) (domain.UserGame, error) {
	const q = `
		INSERT INTO user_games (user_id, title, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING ` + gameColumns

	g, err := scanGame(s.pool.QueryRow(ctx, q, userID, title, string(status), notes, when))
	if err != nil {
		return domain.UserGame{}, mapGameWriteError("create game", err)
	}
	return g, nil
}

func (s *GamesStore) GetGame(ctx context.Context, userID, gameID string) (domain.UserGame, error) {
	if !validID(gameID) {
		return domain.UserGame{}, domain.ErrGameNotFound
	}
	const q = `SELECT ` + gameColumns + ` FROM user_games WHERE id = $1 AND user_id = $2`
	g, err := scanGame(s.pool.QueryRow(ctx, q, gameID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UserGame{}, domain.ErrGameNotFound
		}
		return domain.UserGame{}, fmt.Errorf("get game: %w", err)
	}
	return g, nil
}

func (s *GamesStore) UpdateGame(ctx context.Context, userID, gameID string, patch domain.GamePatch, when time.Time) (domain.UserGame, error) {
	if !validID(gameID) {
		return domain.UserGame{}, domain.ErrGameNotFound
	}
	var status *string
	if patch.Status != nil {
		v := string(*patch.Status)
		status = &v
	}

	const q = `
		UPDATE user_games
		SET title = COALESCE($3, title),
			status = COALESCE($4, status),
			notes = COALESCE($5, notes),
			updated_at = $6
		WHERE id = $1 AND user_id = $2
		RETURNING ` + gameColumns

	g, err := scanGame(s.pool.QueryRow(ctx, q, gameID, userID, patch.Title, status, patch.Notes, when))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UserGame{}, domain.ErrGameNotFound
		}
		return domain.UserGame{}, mapGameWriteError("update game", err)
	}
	return g, nil
}

// DeleteGame leaves events that referenced the game in place; the foreign
// key nulls game_id and the cached game_title stays.
func (s *GamesStore) DeleteGame(ctx context.Context, userID, gameID string) error {
	if !validID(gameID) {
		return domain.ErrGameNotFound
	}
	ct, err := s.pool.Exec(ctx, `DELETE FROM user_games WHERE id = $1 AND user_id = $2`, gameID, userID)
	if err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrGameNotFound
	}
	return nil
}

func (s *GamesStore) ListGames(ctx context.Context, userID string) ([]domain.UserGame, error) {
	const q = `SELECT ` + gameColumns + ` FROM user_games WHERE user_id = $1 ORDER BY title ASC`
	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	out := []domain.UserGame{}
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return out, nil
}

package service

import (
	"context"
	"time"

	"GameNightwebserver/internal/domain"
)

// GamesStore scopes every lookup by owner: a game owned by someone else is ErrGameNotFound.
type GamesStore interface {
	CreateGame(ctx context.Context, userID, title string, status domain.GameStatus, notes string, when time.Time) (domain.UserGame, error)
	GetGame(ctx context.Context, userID, gameID string) (domain.UserGame, error)
	UpdateGame(ctx context.Context, userID, gameID string, patch domain.GamePatch, when time.Time) (domain.UserGame, error)
	DeleteGame(ctx context.Context, userID, gameID string) error
	ListGames(ctx context.Context, userID string) ([]domain.UserGame, error)
}

const (
	gameTitleMaxLen = 120
	gameNotesMaxLen = 2000
)

type GamesService struct {
	Store GamesStore
	Now   func() time.Time
}

func (s *GamesService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func (s *GamesService) AddGame(ctx context.Context, userID, title string, status domain.GameStatus, notes string) (domain.UserGame, error) {
	fields := map[string]string{}
	textField(fields, "title", &title, gameTitleMaxLen)
	if title == "" {
		fields["title"] = "required"
	}
	if status == "" {
		status = domain.GameOwned
	}
	if !status.Valid() {
		fields["status"] = "must be owned, want_to_play or played"
	}
	textField(fields, "notes", &notes, gameNotesMaxLen)
	if err := validationOrNil(fields); err != nil {
		return domain.UserGame{}, err
	}

	return s.Store.CreateGame(ctx, userID, title, status, notes, s.now())
}

func (s *GamesService) UpdateGame(ctx context.Context, userID, gameID string, patch domain.GamePatch) (domain.UserGame, error) {
	fields := map[string]string{}
	if patch.Title != nil {
		textField(fields, "title", patch.Title, gameTitleMaxLen)
		if *patch.Title == "" {
			fields["title"] = "required"
		}
	}
	if patch.Status != nil && !patch.Status.Valid() {
		fields["status"] = "must be owned, want_to_play or played"
	}
	textField(fields, "notes", patch.Notes, gameNotesMaxLen)
	if err := validationOrNil(fields); err != nil {
		return domain.UserGame{}, err
	}
	if patch.Title == nil && patch.Status == nil && patch.Notes == nil {
		return s.Store.GetGame(ctx, userID, gameID)
	}

	return s.Store.UpdateGame(ctx, userID, gameID, patch, s.now())
}

func (s *GamesService) DeleteGame(ctx context.Context, userID, gameID string) error {
	return s.Store.DeleteGame(ctx, userID, gameID)
}

func (s *GamesService) GetGame(ctx context.Context, userID, gameID string) (domain.UserGame, error) {
	return s.Store.GetGame(ctx, userID, gameID)
}

func (s *GamesService) ListGames(ctx context.Context, userID string) ([]domain.UserGame, error) {
	return s.Store.ListGames(ctx, userID)
}

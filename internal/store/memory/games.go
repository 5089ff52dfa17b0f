package memory

import (
	"context"
	"sort"
	"time"

	"GameNightwebserver/internal/domain"
)

type GamesStore struct {
	db *DB
}

func NewGamesStore(db *DB) *GamesStore {
	return &GamesStore{db: db}
}

func (s *GamesStore) CreateGame(_ context.Context, userID, title string, status domain.GameStatus, notes string, when time.Time) (domain.UserGame, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.users[userID]; !ok {
		return domain.UserGame{}, domain.ErrUserNotFound
	}
	if _, dup := s.db.gameTitles[gameKey{userID, title}]; dup {
		return domain.UserGame{}, domain.ErrGameExists
	}

	g := domain.UserGame{
		ID:        s.db.newID(),
		UserID:    userID,
		Title:     title,
		Status:    status,
		Notes:     notes,
		CreatedAt: when,
		UpdatedAt: when,
	}
	s.db.games[g.ID] = g
	s.db.gameTitles[gameKey{userID, title}] = g.ID
	return g, nil
}

func (s *GamesStore) ownedLocked(userID, gameID string) (domain.UserGame, error) {
	g, ok := s.db.games[gameID]
	if !ok || g.UserID != userID {
		return domain.UserGame{}, domain.ErrGameNotFound
	}
	return g, nil
}

func (s *GamesStore) GetGame(_ context.Context, userID, gameID string) (domain.UserGame, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.ownedLocked(userID, gameID)
}

func (s *GamesStore) UpdateGame(_ context.Context, userID, gameID string, patch domain.GamePatch, when time.Time) (domain.UserGame, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	g, err := s.ownedLocked(userID, gameID)
	if err != nil {
		return domain.UserGame{}, err
	}
	if patch.Title != nil && *patch.Title != g.Title {
		if _, dup := s.db.gameTitles[gameKey{userID, *patch.Title}]; dup {
			return domain.UserGame{}, domain.ErrGameExists
		}
		delete(s.db.gameTitles, gameKey{userID, g.Title})
		g.Title = *patch.Title
		s.db.gameTitles[gameKey{userID, g.Title}] = g.ID
	}
	if patch.Status != nil {
		g.Status = *patch.Status
	}
	if patch.Notes != nil {
		g.Notes = *patch.Notes
	}
	g.UpdatedAt = when
	s.db.games[g.ID] = g
	return g, nil
}

func (s *GamesStore) DeleteGame(_ context.Context, userID, gameID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, err := s.ownedLocked(userID, gameID); err != nil {
		return err
	}
	s.db.deleteGameLocked(gameID)
	return nil
}

func (s *GamesStore) ListGames(_ context.Context, userID string) ([]domain.UserGame, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	out := []domain.UserGame{}
	for _, g := range s.db.games {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

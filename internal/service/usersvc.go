package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"GameNightwebserver/internal/domain"
)

const (
	searchMinRunes     = 2
	searchDefaultLimit = 20
	searchMaxLimit     = 50
)

// UsersSearchStore finds people to befriend or invite. Matches come back
// with the searcher's relationship to them; pairs with a block either way
// are left out.
type UsersSearchStore interface {
	SearchUsers(ctx context.Context, callerID, q string, limit int) ([]domain.UserMatch, error)
}

type UsersService struct {
	Store UsersSearchStore
}

func (s *UsersService) Search(ctx context.Context, callerID, q string, limit int) ([]domain.UserMatch, error) {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < searchMinRunes {
		return nil, domain.NewValidationError(map[string]string{"q": "must be at least 2 characters"})
	}
	if limit <= 0 || limit > searchMaxLimit {
		limit = searchDefaultLimit
	}
	return s.Store.SearchUsers(ctx, callerID, q, limit)
}

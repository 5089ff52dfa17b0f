package memory

import (
	"context"
	"time"

	"GameNightwebserver/internal/domain"
)

type FriendshipsStore struct {
	db *DB
}

func NewFriendshipsStore(db *DB) *FriendshipsStore {
	return &FriendshipsStore{db: db}
}

func (s *FriendshipsStore) CreateRequest(_ context.Context, requesterID, addresseeID string, when time.Time) (domain.Friendship, error) {
	if requesterID == addresseeID {
		return domain.Friendship{}, domain.ErrSelfFriendship
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.users[requesterID]; !ok {
		return domain.Friendship{}, domain.ErrUserNotFound
	}
	if _, ok := s.db.users[addresseeID]; !ok {
		return domain.Friendship{}, domain.ErrUserNotFound
	}
	if id, ok := s.db.pairs[pairOf(requesterID, addresseeID)]; ok {
		if s.db.friendship[id].Status == domain.FriendshipBlocked {
			return domain.Friendship{}, domain.ErrUserBlocked
		}
		return domain.Friendship{}, domain.ErrFriendshipExists
	}

	f := domain.Friendship{
		ID:          s.db.newID(),
		RequesterID: requesterID,
		AddresseeID: addresseeID,
		Status:      domain.FriendshipPending,
		CreatedAt:   when,
		UpdatedAt:   when,
	}
	s.insertLocked(f)
	return f, nil
}

func (s *FriendshipsStore) insertLocked(f domain.Friendship) {
	s.db.friendship[f.ID] = f
	s.db.pairs[pairOf(f.RequesterID, f.AddresseeID)] = f.ID
}

func (s *FriendshipsStore) GetFriendship(_ context.Context, id string) (domain.Friendship, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	f, ok := s.db.friendship[id]
	if !ok {
		return domain.Friendship{}, domain.ErrFriendshipNotFound
	}
	return f, nil
}

func (s *FriendshipsStore) GetBetween(_ context.Context, userA, userB string) (domain.Friendship, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	id, ok := s.db.pairs[pairOf(userA, userB)]
	if !ok {
		return domain.Friendship{}, domain.ErrFriendshipNotFound
	}
	return s.db.friendship[id], nil
}

func (s *FriendshipsStore) pendingForLocked(edgeID string, match func(domain.Friendship) bool) (domain.Friendship, error) {
	f, ok := s.db.friendship[edgeID]
	if !ok || f.Status != domain.FriendshipPending || !match(f) {
		return domain.Friendship{}, domain.ErrNoSuchRequest
	}
	return f, nil
}

func (s *FriendshipsStore) Accept(_ context.Context, edgeID, addresseeID string, when time.Time) (domain.Friendship, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	f, err := s.pendingForLocked(edgeID, func(f domain.Friendship) bool { return f.AddresseeID == addresseeID })
	if err != nil {
		return domain.Friendship{}, err
	}
	t := when
	f.Status = domain.FriendshipAccepted
	f.RespondedAt = &t
	f.UpdatedAt = when
	s.db.friendship[f.ID] = f
	return f, nil
}

func (s *FriendshipsStore) Reject(_ context.Context, edgeID, addresseeID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	f, err := s.pendingForLocked(edgeID, func(f domain.Friendship) bool { return f.AddresseeID == addresseeID })
	if err != nil {
		return err
	}
	s.db.deleteFriendshipLocked(f.ID)
	return nil
}

func (s *FriendshipsStore) Cancel(_ context.Context, edgeID, requesterID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	f, err := s.pendingForLocked(edgeID, func(f domain.Friendship) bool { return f.RequesterID == requesterID })
	if err != nil {
		return err
	}
	s.db.deleteFriendshipLocked(f.ID)
	return nil
}

func (s *FriendshipsStore) Unfriend(_ context.Context, edgeID, userID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	f, ok := s.db.friendship[edgeID]
	if !ok || f.Status != domain.FriendshipAccepted || !f.Involves(userID) {
		return domain.ErrFriendshipNotFound
	}
	s.db.deleteFriendshipLocked(f.ID)
	return nil
}

// Block replaces the pair's edge with one owned by blockerID. When the
// target already blocked the blocker, that edge is kept and returned.
func (s *FriendshipsStore) Block(_ context.Context, blockerID, targetID string, when time.Time) (domain.Friendship, error) {
	if blockerID == targetID {
		return domain.Friendship{}, domain.ErrSelfFriendship
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.users[targetID]; !ok {
		return domain.Friendship{}, domain.ErrUserNotFound
	}
	if id, ok := s.db.pairs[pairOf(blockerID, targetID)]; ok {
		existing := s.db.friendship[id]
		if existing.Status == domain.FriendshipBlocked {
			return existing, nil
		}
		s.db.deleteFriendshipLocked(id)
	}

	f := domain.Friendship{
		ID:          s.db.newID(),
		RequesterID: blockerID,
		AddresseeID: targetID,
		Status:      domain.FriendshipBlocked,
		CreatedAt:   when,
		UpdatedAt:   when,
	}
	s.insertLocked(f)
	return f, nil
}

func (s *FriendshipsStore) Unblock(_ context.Context, blockerID, targetID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	id, ok := s.db.pairs[pairOf(blockerID, targetID)]
	if !ok {
		return domain.ErrFriendshipNotFound
	}
	f := s.db.friendship[id]
	if f.Status != domain.FriendshipBlocked || f.RequesterID != blockerID {
		return domain.ErrFriendshipNotFound
	}
	s.db.deleteFriendshipLocked(id)
	return nil
}

func (s *FriendshipsStore) DeleteFriendship(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.friendship[id]; !ok {
		return domain.ErrFriendshipNotFound
	}
	s.db.deleteFriendshipLocked(id)
	return nil
}

func (s *FriendshipsStore) collectLocked(keep func(domain.Friendship) bool) []domain.Friendship {
	var rows []domain.Friendship
	for _, f := range s.db.friendship {
		if keep(f) {
			rows = append(rows, f)
		}
	}
	sortFriendships(rows)
	return rows
}

func (s *FriendshipsStore) ListFriends(_ context.Context, userID string) ([]domain.Friend, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	rows := s.collectLocked(func(f domain.Friendship) bool {
		return f.Status == domain.FriendshipAccepted && f.Involves(userID)
	})
	out := make([]domain.Friend, 0, len(rows))
	for _, f := range rows {
		since := f.UpdatedAt
		if f.RespondedAt != nil {
			since = *f.RespondedAt
		}
		out = append(out, domain.Friend{
			FriendshipID: f.ID,
			User:         s.db.summaryLocked(f.Other(userID)),
			Since:        since,
		})
	}
	return out, nil
}

func (s *FriendshipsStore) ListIncoming(_ context.Context, userID string) ([]domain.FriendRequest, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	rows := s.collectLocked(func(f domain.Friendship) bool {
		return f.Status == domain.FriendshipPending && f.AddresseeID == userID
	})
	return s.requestsLocked(rows, userID), nil
}

func (s *FriendshipsStore) ListOutgoing(_ context.Context, userID string) ([]domain.FriendRequest, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	rows := s.collectLocked(func(f domain.Friendship) bool {
		return f.Status == domain.FriendshipPending && f.RequesterID == userID
	})
	return s.requestsLocked(rows, userID), nil
}

func (s *FriendshipsStore) requestsLocked(rows []domain.Friendship, userID string) []domain.FriendRequest {
	out := make([]domain.FriendRequest, 0, len(rows))
	for _, f := range rows {
		out = append(out, domain.FriendRequest{
			ID:        f.ID,
			User:      s.db.summaryLocked(f.Other(userID)),
			CreatedAt: f.CreatedAt,
		})
	}
	return out
}

func (s *FriendshipsStore) ListBlocked(_ context.Context, userID string) ([]domain.UserSummary, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	rows := s.collectLocked(func(f domain.Friendship) bool {
		return f.Status == domain.FriendshipBlocked && f.RequesterID == userID
	})
	out := make([]domain.UserSummary, 0, len(rows))
	for _, f := range rows {
		out = append(out, s.db.summaryLocked(f.AddresseeID))
	}
	return out, nil
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"GameNightwebserver/internal/domain"
)

// FriendshipsStore holds at most one edge per unordered pair of users.
// Every mutation re-checks its precondition in the same transaction as the write.
type FriendshipsStore interface {
	// CreateRequest fails with ErrFriendshipExists for an active edge and
	// ErrUserBlocked for a blocked edge in either direction.
	CreateRequest(ctx context.Context, requesterID, addresseeID string, when time.Time) (domain.Friendship, error)
	GetFriendship(ctx context.Context, id string) (domain.Friendship, error)
	GetBetween(ctx context.Context, userA, userB string) (domain.Friendship, error)

	// Accept, Reject and Cancel only touch a pending edge, else ErrNoSuchRequest.
	Accept(ctx context.Context, edgeID, addresseeID string, when time.Time) (domain.Friendship, error)
	Reject(ctx context.Context, edgeID, addresseeID string) error
	Cancel(ctx context.Context, edgeID, requesterID string) error
	// Unfriend only deletes an accepted edge, else ErrFriendshipNotFound.
	Unfriend(ctx context.Context, edgeID, userID string) error

	Block(ctx context.Context, blockerID, targetID string, when time.Time) (domain.Friendship, error)
	Unblock(ctx context.Context, blockerID, targetID string) error
	DeleteFriendship(ctx context.Context, id string) error

	ListFriends(ctx context.Context, userID string) ([]domain.Friend, error)
	ListIncoming(ctx context.Context, userID string) ([]domain.FriendRequest, error)
	ListOutgoing(ctx context.Context, userID string) ([]domain.FriendRequest, error)
	ListBlocked(ctx context.Context, userID string) ([]domain.UserSummary, error)
}

type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (domain.UserWithPassword, error)
}

type FriendsService struct {
	Users       UserLookup
	Friendships FriendshipsStore
	Now         func() time.Time
}

func (s *FriendsService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// LookupUsername resolves a recipient handle. Handles are case-sensitive.
func (s *FriendsService) LookupUsername(ctx context.Context, username string) (domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.User{}, domain.NewValidationError(map[string]string{"username": "required"})
	}
	u, err := s.Users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, err
	}
	return u.User, nil
}

func (s *FriendsService) RequestFriendship(ctx context.Context, requesterID, recipientUsername string) (domain.FriendRequest, error) {
	target, err := s.LookupUsername(ctx, recipientUsername)
	if err != nil {
		return domain.FriendRequest{}, err
	}
	if target.ID == requesterID {
		return domain.FriendRequest{}, domain.ErrSelfFriendship
	}

	edge, err := s.Friendships.CreateRequest(ctx, requesterID, target.ID, s.now())
	if err != nil {
		return domain.FriendRequest{}, err
	}

	return domain.FriendRequest{
		ID:        edge.ID,
		User:      target.Summary(),
		CreatedAt: edge.CreatedAt,
	}, nil
}

// Respond applies the recipient's decision to the pending request sent by requesterID.
func (s *FriendsService) Respond(ctx context.Context, recipientID, requesterID string, decision domain.FriendDecision) (domain.Friendship, error) {
	if !decision.Valid() {
		return domain.Friendship{}, domain.NewValidationError(map[string]string{"decision": "must be accepted or rejected"})
	}
	edge, err := s.Friendships.GetBetween(ctx, recipientID, requesterID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Friendship{}, domain.ErrNoSuchRequest
		}
		return domain.Friendship{}, err
	}
	return s.respond(ctx, recipientID, edge, decision)
}

func (s *FriendsService) RespondByID(ctx context.Context, callerID, edgeID string, decision domain.FriendDecision) (domain.Friendship, error) {
	if !decision.Valid() {
		return domain.Friendship{}, domain.NewValidationError(map[string]string{"decision": "must be accepted or rejected"})
	}
	edge, err := s.Friendships.GetFriendship(ctx, edgeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Friendship{}, domain.ErrNoSuchRequest
		}
		return domain.Friendship{}, err
	}
	return s.respond(ctx, callerID, edge, decision)
}

func (s *FriendsService) respond(ctx context.Context, callerID string, edge domain.Friendship, decision domain.FriendDecision) (domain.Friendship, error) {
	if edge.Status != domain.FriendshipPending {
		return domain.Friendship{}, domain.ErrNoSuchRequest
	}
	if edge.AddresseeID != callerID {
		return domain.Friendship{}, domain.ErrNotRecipient
	}

	if decision == domain.DecisionAccepted {
		return s.Friendships.Accept(ctx, edge.ID, callerID, s.now())
	}
	if err := s.Friendships.Reject(ctx, edge.ID, callerID); err != nil {
		return domain.Friendship{}, err
	}
	return domain.Friendship{}, nil
}

// CancelRequest withdraws the caller's own pending outgoing request.
func (s *FriendsService) CancelRequest(ctx context.Context, requesterID, edgeID string) error {
	edge, err := s.Friendships.GetFriendship(ctx, edgeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNoSuchRequest
		}
		return err
	}
	if edge.Status != domain.FriendshipPending {
		return domain.ErrNoSuchRequest
	}
	if edge.RequesterID != requesterID {
		return domain.ErrNotParty
	}
	return s.Friendships.Cancel(ctx, edge.ID, requesterID)
}

// Unfriend deletes an accepted edge. Either party may call it.
func (s *FriendsService) Unfriend(ctx context.Context, callerID, edgeID string) error {
	edge, err := s.Friendships.GetFriendship(ctx, edgeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrFriendshipNotFound
		}
		return err
	}
	if edge.Status != domain.FriendshipAccepted {
		return domain.ErrFriendshipNotFound
	}
	if !edge.Involves(callerID) {
		return domain.ErrNotParty
	}
	return s.Friendships.Unfriend(ctx, edge.ID, callerID)
}

// Remove deletes an edge on behalf of one of its parties: the requester
// cancels a pending request, the recipient rejects it, and either side
// of an accepted edge unfriends.
func (s *FriendsService) Remove(ctx context.Context, callerID, edgeID string) error {
	edge, err := s.Friendships.GetFriendship(ctx, edgeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrFriendshipNotFound
		}
		return err
	}
	if !edge.Involves(callerID) {
		return domain.ErrNotParty
	}

	switch edge.Status {
	case domain.FriendshipPending:
		if edge.RequesterID == callerID {
			return s.Friendships.Cancel(ctx, edge.ID, callerID)
		}
		return s.Friendships.Reject(ctx, edge.ID, callerID)
	case domain.FriendshipAccepted:
		return s.Friendships.Unfriend(ctx, edge.ID, callerID)
	default:
		return domain.ErrFriendshipNotFound
	}
}

// Block replaces whatever edge the pair has with one owned by the caller.
func (s *FriendsService) Block(ctx context.Context, callerID, username string) (domain.Friendship, error) {
	target, err := s.LookupUsername(ctx, username)
	if err != nil {
		return domain.Friendship{}, err
	}
	if target.ID == callerID {
		return domain.Friendship{}, domain.NewValidationError(map[string]string{"username": "cannot block yourself"})
	}
	return s.Friendships.Block(ctx, callerID, target.ID, s.now())
}

// Unblock lifts a block the caller placed. A block placed by the other side is untouched.
func (s *FriendsService) Unblock(ctx context.Context, callerID, username string) error {
	target, err := s.LookupUsername(ctx, username)
	if err != nil {
		return err
	}
	return s.Friendships.Unblock(ctx, callerID, target.ID)
}

func (s *FriendsService) ListFriends(ctx context.Context, userID string) ([]domain.Friend, error) {
	return s.Friendships.ListFriends(ctx, userID)
}

func (s *FriendsService) ListIncoming(ctx context.Context, userID string) ([]domain.FriendRequest, error) {
	return s.Friendships.ListIncoming(ctx, userID)
}

func (s *FriendsService) ListOutgoing(ctx context.Context, userID string) ([]domain.FriendRequest, error) {
	return s.Friendships.ListOutgoing(ctx, userID)
}

func (s *FriendsService) ListOverview(ctx context.Context, userID string) (domain.FriendsOverview, error) {
	var (
		out domain.FriendsOverview
		err error
	)
	if out.Friends, err = s.Friendships.ListFriends(ctx, userID); err != nil {
		return domain.FriendsOverview{}, err
	}
	if out.Incoming, err = s.Friendships.ListIncoming(ctx, userID); err != nil {
		return domain.FriendsOverview{}, err
	}
	if out.Outgoing, err = s.Friendships.ListOutgoing(ctx, userID); err != nil {
		return domain.FriendsOverview{}, err
	}
	if out.Blocked, err = s.Friendships.ListBlocked(ctx, userID); err != nil {
		return domain.FriendsOverview{}, err
	}
	return out, nil
}

// Relationship returns the pair's edge, or ok=false when there is none.
func (s *FriendsService) Relationship(ctx context.Context, userA, userB string) (domain.Friendship, bool, error) {
	edge, err := s.Friendships.GetBetween(ctx, userA, userB)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Friendship{}, false, nil
		}
		return domain.Friendship{}, false, err
	}
	return edge, true, nil
}

func (s *FriendsService) AreFriends(ctx context.Context, userA, userB string) (bool, error) {
	edge, ok, err := s.Relationship(ctx, userA, userB)
	if err != nil || !ok {
		return false, err
	}
	return edge.Status == domain.FriendshipAccepted, nil
}

// IsBlocked reports a block in either direction.
func (s *FriendsService) IsBlocked(ctx context.Context, userA, userB string) (bool, error) {
	edge, ok, err := s.Relationship(ctx, userA, userB)
	if err != nil || !ok {
		return false, err
	}
	return edge.Status == domain.FriendshipBlocked, nil
}

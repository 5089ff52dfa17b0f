package domain

import "time"

type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipBlocked  FriendshipStatus = "blocked"
)

// Active edges occupy the pair: a second request cannot be created while one exists.
func (s FriendshipStatus) Active() bool {
	return s == FriendshipPending || s == FriendshipAccepted
}

type FriendDecision string

const (
	DecisionAccepted FriendDecision = "accepted"
	DecisionRejected FriendDecision = "rejected"
)

func (d FriendDecision) Valid() bool {
	return d == DecisionAccepted || d == DecisionRejected
}

// Friendship is a directed request edge. Once accepted it is read symmetrically.
// A blocked edge is owned by RequesterID, the blocker.
type Friendship struct {
	ID          string           `json:"id"`
	RequesterID string           `json:"requester_id"`
	AddresseeID string           `json:"addressee_id"`
	Status      FriendshipStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	RespondedAt *time.Time       `json:"responded_at,omitempty"`
}

func (f Friendship) Involves(userID string) bool {
	return f.RequesterID == userID || f.AddresseeID == userID
}

func (f Friendship) Other(userID string) string {
	if f.RequesterID == userID {
		return f.AddresseeID
	}
	return f.RequesterID
}

// Relationship is how a pair looks from one side of it.
type Relationship string

const (
	RelationNone            Relationship = "none"
	RelationFriend          Relationship = "friend"
	RelationRequestSent     Relationship = "request_sent"
	RelationRequestReceived Relationship = "request_received"
	RelationBlocked         Relationship = "blocked"
)

// RelationTo describes f from viewerID's side.
func (f Friendship) RelationTo(viewerID string) Relationship {
	switch f.Status {
	case FriendshipAccepted:
		return RelationFriend
	case FriendshipPending:
		if f.RequesterID == viewerID {
			return RelationRequestSent
		}
		return RelationRequestReceived
	case FriendshipBlocked:
		return RelationBlocked
	}
	return RelationNone
}

// PairKey orders the two ids so both directions map to the same key.
func PairKey(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}

type FriendRequest struct {
	ID        string      `json:"id"`
	User      UserSummary `json:"user"`
	CreatedAt time.Time   `json:"created_at"`
}

type Friend struct {
	FriendshipID string      `json:"friendship_id"`
	User         UserSummary `json:"user"`
	Since        time.Time   `json:"since"`
}

type FriendsOverview struct {
	Friends  []Friend        `json:"friends"`
	Incoming []FriendRequest `json:"incoming_requests"`
	Outgoing []FriendRequest `json:"outgoing_requests"`
	Blocked  []UserSummary   `json:"blocked"`
}

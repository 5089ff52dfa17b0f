package service

import (
	"context"
	"log/slog"

	"GameNightwebserver/internal/domain"
)

// Gateway is the single entry point for relationship and event mutations.
// It checks rules that need both ledgers, delegates the write to one of
// them, then fires notifications without letting their failures leak out.
type Gateway struct {
	Friends  *FriendsService
	Events   *EventsService
	Notifier Notifier
	// StrictInvites limits invitations to accepted friends of the host.
	StrictInvites bool
	Logger        *slog.Logger
}

func (g *Gateway) logger() *slog.Logger {
	if g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

func (g *Gateway) RequestFriendship(ctx context.Context, requesterID, recipientUsername string) (domain.FriendRequest, error) {
	target, err := g.Friends.LookupUsername(ctx, recipientUsername)
	if err != nil {
		return domain.FriendRequest{}, err
	}
	if target.ID != requesterID {
		blocked, err := g.Friends.IsBlocked(ctx, requesterID, target.ID)
		if err != nil {
			return domain.FriendRequest{}, err
		}
		if blocked {
			return domain.FriendRequest{}, domain.ErrUserBlocked
		}
	}

	req, err := g.Friends.RequestFriendship(ctx, requesterID, target.Username)
	if err != nil {
		return domain.FriendRequest{}, err
	}

	if g.Notifier != nil {
		if err := g.Notifier.NotifyFriendRequest(ctx, FriendRequestNotification{
			RequestID:   req.ID,
			RequesterID: requesterID,
			AddresseeID: target.ID,
		}); err != nil {
			g.logger().Warn("gateway: friend request notification failed", "err", err, "request_id", req.ID)
		}
	}
	return req, nil
}

func (g *Gateway) RespondToRequest(ctx context.Context, recipientID, requesterID string, decision domain.FriendDecision) (domain.Friendship, error) {
	return g.Friends.Respond(ctx, recipientID, requesterID, decision)
}

func (g *Gateway) RespondToRequestByID(ctx context.Context, callerID, edgeID string, decision domain.FriendDecision) (domain.Friendship, error) {
	return g.Friends.RespondByID(ctx, callerID, edgeID, decision)
}

func (g *Gateway) CancelRequest(ctx context.Context, requesterID, edgeID string) error {
	return g.Friends.CancelRequest(ctx, requesterID, edgeID)
}

func (g *Gateway) Unfriend(ctx context.Context, callerID, edgeID string) error {
	return g.Friends.Unfriend(ctx, callerID, edgeID)
}

func (g *Gateway) RemoveFriendship(ctx context.Context, callerID, edgeID string) error {
	return g.Friends.Remove(ctx, callerID, edgeID)
}

func (g *Gateway) Block(ctx context.Context, callerID, username string) (domain.Friendship, error) {
	return g.Friends.Block(ctx, callerID, username)
}

func (g *Gateway) Unblock(ctx context.Context, callerID, username string) error {
	return g.Friends.Unblock(ctx, callerID, username)
}

func (g *Gateway) CreateEvent(ctx context.Context, hostID string, in domain.EventInput) (domain.Event, error) {
	return g.Events.CreateEvent(ctx, hostID, in)
}

func (g *Gateway) UpdateEvent(ctx context.Context, hostID, eventID string, patch domain.EventPatch) (domain.Event, error) {
	return g.Events.UpdateEvent(ctx, hostID, eventID, patch)
}

// InviteAttendees returns how many new invitations were created. Every
// target must exist and must not be blocked by or blocking the host; in
// strict mode every target must also be an accepted friend. The store
// checks these in the same transaction as the write.
func (g *Gateway) InviteAttendees(ctx context.Context, hostID, eventID string, userIDs []string) (int, error) {
	e, err := g.Events.HostedEvent(ctx, hostID, eventID)
	if err != nil {
		return 0, err
	}

	invited, err := g.Events.InviteAttendees(ctx, hostID, eventID, userIDs, domain.InvitePolicy{FriendsOnly: g.StrictInvites})
	if err != nil {
		return 0, err
	}

	if g.Notifier != nil && len(invited) > 0 {
		if err := g.Notifier.NotifyEventInvite(ctx, EventInviteNotification{
			EventID:    e.ID,
			EventTitle: e.Title,
			Date:       e.Date,
			Time:       e.Time,
			HostID:     hostID,
			InviteeIDs: invited,
		}); err != nil {
			g.logger().Warn("gateway: invite notification failed", "err", err, "event_id", e.ID)
		}
	}
	return len(invited), nil
}

// RespondToInvitation refuses an acceptance once the invitee and host have
// blocked each other. Declining is always allowed. The events store checks
// the block in the same transaction as the answer.
func (g *Gateway) RespondToInvitation(ctx context.Context, userID, eventID string, decision domain.AttendeeStatus) (domain.Attendee, error) {
	return g.Events.RespondToInvitation(ctx, userID, eventID, decision)
}

func (g *Gateway) CancelEvent(ctx context.Context, hostID, eventID string) (domain.Event, error) {
	return g.Events.CancelEvent(ctx, hostID, eventID)
}

func (g *Gateway) CompleteEvent(ctx context.Context, hostID, eventID string) (domain.Event, error) {
	return g.Events.CompleteEvent(ctx, hostID, eventID)
}

func (g *Gateway) MarkAttended(ctx context.Context, hostID, eventID, userID string) (domain.Attendee, error) {
	return g.Events.MarkAttended(ctx, hostID, eventID, userID)
}

func (g *Gateway) DeleteEvent(ctx context.Context, hostID, eventID string) error {
	return g.Events.DeleteEvent(ctx, hostID, eventID)
}

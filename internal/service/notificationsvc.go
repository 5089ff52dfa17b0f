package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"GameNightwebserver/internal/domain"
	"GameNightwebserver/internal/notifications"
)

type NotificationTokensStore interface {
	UpsertToken(ctx context.Context, userID, token, platform string, when time.Time) (domain.NotificationToken, error)
	DeleteToken(ctx context.Context, userID, token string) error
	ListTokens(ctx context.Context, userID string) ([]domain.NotificationToken, error)
}

type NotificationUsersStore interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)
}

type PushSender interface {
	Send(ctx context.Context, token string, msg notifications.Message) error
}

type FriendRequestNotification struct {
	RequestID   string
	RequesterID string
	AddresseeID string
}

type EventInviteNotification struct {
	EventID    string
	EventTitle string
	Date       string
	Time       string
	HostID     string
	InviteeIDs []string
}

// Notifier is what the gateway calls after a successful mutation.
type Notifier interface {
	NotifyFriendRequest(ctx context.Context, notification FriendRequestNotification) error
	NotifyEventInvite(ctx context.Context, notification EventInviteNotification) error
}

type NotificationService struct {
	Tokens NotificationTokensStore
	Users  NotificationUsersStore
	Sender PushSender
	Logger *slog.Logger
	Now    func() time.Time
}

func (s *NotificationService) RegisterToken(ctx context.Context, userID, token, platform string) (domain.NotificationToken, error) {
	if s.Tokens == nil {
		return domain.NotificationToken{}, errors.New("notifications unavailable")
	}
	token = strings.TrimSpace(token)
	platform = strings.TrimSpace(strings.ToLower(platform))
	if token == "" || platform == "" {
		return domain.NotificationToken{}, domain.NewValidationError(map[string]string{"token": "required", "platform": "required"})
	}
	switch platform {
	case "android", "ios":
	default:
		return domain.NotificationToken{}, domain.NewValidationError(map[string]string{"platform": "must be ios or android"})
	}
	if s.Now == nil {
		s.Now = time.Now
	}
	when := s.Now().UTC().Truncate(time.Millisecond)
	return s.Tokens.UpsertToken(ctx, userID, token, platform, when)
}

func (s *NotificationService) DeleteToken(ctx context.Context, userID, token string) error {
	if s.Tokens == nil {
		return errors.New("notifications unavailable")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.NewValidationError(map[string]string{"token": "required"})
	}
	return s.Tokens.DeleteToken(ctx, userID, token)
}

func (s *NotificationService) enabled() bool {
	return s != nil && s.Tokens != nil && s.Sender != nil && s.Users != nil
}

func (s *NotificationService) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s *NotificationService) NotifyFriendRequest(ctx context.Context, n FriendRequestNotification) error {
	if !s.enabled() {
		return nil
	}

	requester, err := s.Users.GetUserByID(ctx, n.RequesterID)
	if err != nil {
		s.logger().Error("notifications: requester lookup failed", "err", err, "user_id", n.RequesterID)
		return err
	}

	display := requester.DisplayName()
	payload := map[string]string{
		"type":         "friend_request",
		"display_name": display,
		"username":     requester.Username,
		"request_id":   n.RequestID,
	}
	return s.push(ctx, n.AddresseeID, payload, &notifications.Notification{
		Title: "Friend request",
		Body:  display + " sent you a friend request.",
	})
}

func (s *NotificationService) NotifyEventInvite(ctx context.Context, n EventInviteNotification) error {
	if !s.enabled() || len(n.InviteeIDs) == 0 {
		return nil
	}

	host, err := s.Users.GetUserByID(ctx, n.HostID)
	if err != nil {
		s.logger().Error("notifications: host lookup failed", "err", err, "user_id", n.HostID)
		return err
	}

	display := host.DisplayName()
	payload := map[string]string{
		"type":         "event_invite",
		"event_id":     n.EventID,
		"event_title":  n.EventTitle,
		"date":         n.Date,
		"time":         n.Time,
		"display_name": display,
		"username":     host.Username,
	}
	alert := &notifications.Notification{
		Title: "Game night invite",
		Body:  display + " invited you to " + n.EventTitle + " on " + n.Date + ".",
	}

	var firstErr error
	for _, userID := range n.InviteeIDs {
		if err := s.push(ctx, userID, payload, alert); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// push sends to every device of userID. iOS devices get the visible alert,
// others a data-only message. Tokens FCM reports as unregistered are removed.
func (s *NotificationService) push(ctx context.Context, userID string, payload map[string]string, alert *notifications.Notification) error {
	logger := s.logger()

	tokens, err := s.Tokens.ListTokens(ctx, userID)
	if err != nil {
		logger.Error("notifications: list tokens failed", "err", err, "user_id", userID)
		return err
	}

	for _, token := range tokens {
		msg := notifications.Message{Data: payload}
		if strings.EqualFold(strings.TrimSpace(token.Platform), "ios") {
			msg.Notification = alert
		}
		if err := s.Sender.Send(ctx, token.Token, msg); err != nil {
			if errors.Is(err, notifications.ErrInvalidToken) {
				if delErr := s.Tokens.DeleteToken(ctx, userID, token.Token); delErr != nil {
					logger.Error("notifications: delete invalid token failed", "err", delErr, "user_id", userID)
				}
				continue
			}
			logger.Error("notifications: send failed", "err", err, "user_id", userID)
		}
	}
	return nil
}

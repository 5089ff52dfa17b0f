package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"GameNightwebserver/internal/domain"
)

// EventsStore owns events and their attendance edges.
type EventsStore interface {
	CreateEvent(ctx context.Context, hostID string, in domain.EventInput, gameTitle string, when time.Time) (domain.Event, error)
	GetEvent(ctx context.Context, eventID string) (domain.Event, error)
	// UpdateEvent fails with ErrEventClosed unless the event is still scheduled,
	// and with ErrEventFull when MaxPlayers drops below the seats already held.
	UpdateEvent(ctx context.Context, eventID string, patch domain.EventPatch, gameTitle *string, when time.Time) (domain.Event, error)
	// SetEventStatus moves from -> to and reports false when the event was not in from.
	SetEventStatus(ctx context.Context, eventID string, from, to domain.EventStatus, when time.Time) (bool, error)
	DeleteEvent(ctx context.Context, eventID string) error

	// InviteAttendees creates invited edges for users that have none and
	// returns their ids. Runs as one transaction against a scheduled event,
	// with policy checked against the host's edges inside it.
	InviteAttendees(ctx context.Context, eventID string, userIDs []string, policy domain.InvitePolicy, when time.Time) ([]string, error)
	GetAttendee(ctx context.Context, eventID, userID string) (domain.Attendee, error)
	// AnswerInvitation moves an invited edge to accepted or declined while the
	// event is scheduled. Accepting fails with ErrUserBlocked when the invitee
	// and host have a blocked edge.
	AnswerInvitation(ctx context.Context, eventID, userID string, to domain.AttendeeStatus, when time.Time) (domain.Attendee, error)
	// MarkAttended moves an accepted edge to attended unless the event is cancelled.
	MarkAttended(ctx context.Context, eventID, userID string) (domain.Attendee, error)
	ListAttendees(ctx context.Context, eventID string) ([]domain.Attendee, error)
	ListEventsForUser(ctx context.Context, userID string) ([]domain.EventSummary, error)
}

const (
	eventTitleMaxLen       = 120
	eventDescriptionMaxLen = 2000
	eventLocationMaxLen    = 200
	maxInviteBatch         = 100
)

type EventsService struct {
	Store EventsStore
	Games GamesStore
	Now   func() time.Time
}

func (s *EventsService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func validateDateTime(fields map[string]string, date, clock *string) {
	if date != nil {
		*date = strings.TrimSpace(*date)
		if *date == "" {
			fields["date"] = "required"
		} else if _, err := time.Parse(domain.EventDateLayout, *date); err != nil {
			fields["date"] = "must be YYYY-MM-DD"
		}
	}
	if clock != nil {
		*clock = strings.TrimSpace(*clock)
		if *clock == "" {
			fields["time"] = "required"
		} else if _, err := time.Parse(domain.EventTimeLayout, *clock); err != nil {
			fields["time"] = "must be HH:MM"
		}
	}
}

func requiredText(fields map[string]string, field string, v *string, max int) {
	if v == nil {
		return
	}
	textField(fields, field, v, max)
	if *v == "" {
		fields[field] = "required"
	}
}

func (s *EventsService) CreateEvent(ctx context.Context, hostID string, in domain.EventInput) (domain.Event, error) {
	fields := map[string]string{}
	requiredText(fields, "title", &in.Title, eventTitleMaxLen)
	requiredText(fields, "location", &in.Location, eventLocationMaxLen)
	textField(fields, "description", &in.Description, eventDescriptionMaxLen)
	validateDateTime(fields, &in.Date, &in.Time)
	if in.MaxPlayers != nil && *in.MaxPlayers <= 0 {
		fields["max_players"] = "must be a positive integer"
	}
	in.GameID = strings.TrimSpace(in.GameID)
	if err := validationOrNil(fields); err != nil {
		return domain.Event{}, err
	}

	gameTitle, err := s.catalogTitle(ctx, hostID, in.GameID)
	if err != nil {
		return domain.Event{}, err
	}

	return s.Store.CreateEvent(ctx, hostID, in, gameTitle, s.now())
}

// catalogTitle resolves a game reference against the host's own catalog.
func (s *EventsService) catalogTitle(ctx context.Context, hostID, gameID string) (string, error) {
	if gameID == "" {
		return "", nil
	}
	g, err := s.Games.GetGame(ctx, hostID, gameID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.NewValidationError(map[string]string{"game_id": "not in your game catalog"})
		}
		return "", err
	}
	return g.Title, nil
}

// HostedEvent loads eventID and checks that hostID owns it.
func (s *EventsService) HostedEvent(ctx context.Context, hostID, eventID string) (domain.Event, error) {
	e, err := s.Store.GetEvent(ctx, eventID)
	if err != nil {
		return domain.Event{}, err
	}
	if e.HostID != hostID {
		return domain.Event{}, domain.ErrNotHost
	}
	return e, nil
}

func (s *EventsService) UpdateEvent(ctx context.Context, hostID, eventID string, patch domain.EventPatch) (domain.Event, error) {
	e, err := s.HostedEvent(ctx, hostID, eventID)
	if err != nil {
		return domain.Event{}, err
	}
	if e.Status != domain.EventScheduled {
		return domain.Event{}, domain.ErrEventClosed
	}

	fields := map[string]string{}
	requiredText(fields, "title", patch.Title, eventTitleMaxLen)
	requiredText(fields, "location", patch.Location, eventLocationMaxLen)
	textField(fields, "description", patch.Description, eventDescriptionMaxLen)
	validateDateTime(fields, patch.Date, patch.Time)
	if patch.MaxPlayers != nil && *patch.MaxPlayers <= 0 {
		fields["max_players"] = "must be a positive integer"
	}
	if err := validationOrNil(fields); err != nil {
		return domain.Event{}, err
	}

	var gameTitle *string
	if patch.GameID != nil {
		id := strings.TrimSpace(*patch.GameID)
		patch.GameID = &id
		title, err := s.catalogTitle(ctx, hostID, id)
		if err != nil {
			return domain.Event{}, err
		}
		gameTitle = &title
	}

	return s.Store.UpdateEvent(ctx, eventID, patch, gameTitle, s.now())
}

// InviteAttendees returns the ids of users that got a new invitation.
// Users already on the roster and the host are skipped.
func (s *EventsService) InviteAttendees(ctx context.Context, hostID, eventID string, userIDs []string, policy domain.InvitePolicy) ([]string, error) {
	e, err := s.HostedEvent(ctx, hostID, eventID)
	if err != nil {
		return nil, err
	}
	if e.Status != domain.EventScheduled {
		return nil, domain.ErrEventClosed
	}

	ids := InviteTargets(hostID, userIDs)
	if len(userIDs) == 0 {
		return nil, domain.NewValidationError(map[string]string{"user_ids": "required"})
	}
	if len(ids) > maxInviteBatch {
		return nil, domain.NewValidationError(map[string]string{"user_ids": "too many users"})
	}
	if len(ids) == 0 {
		return []string{}, nil
	}

	return s.Store.InviteAttendees(ctx, eventID, ids, policy, s.now())
}

// InviteTargets trims, de-duplicates and drops the host, keeping input order.
func InviteTargets(hostID string, userIDs []string) []string {
	seen := make(map[string]struct{}, len(userIDs))
	out := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		id = strings.TrimSpace(id)
		if id == "" || id == hostID {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// RespondToInvitation moves the caller's invited edge to accepted or declined.
// Only an invited edge can be answered, so a second answer fails with ErrNotInvited.
func (s *EventsService) RespondToInvitation(ctx context.Context, userID, eventID string, decision domain.AttendeeStatus) (domain.Attendee, error) {
	if decision != domain.AttendeeAccepted && decision != domain.AttendeeDeclined {
		return domain.Attendee{}, domain.NewValidationError(map[string]string{"status": "must be accepted or declined"})
	}
	return s.Store.AnswerInvitation(ctx, eventID, userID, decision, s.now())
}

func (s *EventsService) CancelEvent(ctx context.Context, hostID, eventID string) (domain.Event, error) {
	return s.transition(ctx, hostID, eventID, domain.EventCancelled)
}

func (s *EventsService) CompleteEvent(ctx context.Context, hostID, eventID string) (domain.Event, error) {
	return s.transition(ctx, hostID, eventID, domain.EventCompleted)
}

func (s *EventsService) transition(ctx context.Context, hostID, eventID string, to domain.EventStatus) (domain.Event, error) {
	e, err := s.HostedEvent(ctx, hostID, eventID)
	if err != nil {
		return domain.Event{}, err
	}
	if !e.Status.CanTransition(to) {
		return domain.Event{}, domain.ErrInvalidTransition
	}

	now := s.now()
	ok, err := s.Store.SetEventStatus(ctx, eventID, domain.EventScheduled, to, now)
	if err != nil {
		return domain.Event{}, err
	}
	if !ok {
		return domain.Event{}, domain.ErrInvalidTransition
	}

	e.Status = to
	e.UpdatedAt = now
	return e, nil
}

// MarkAttended records that an accepted guest showed up.
func (s *EventsService) MarkAttended(ctx context.Context, hostID, eventID, userID string) (domain.Attendee, error) {
	if _, err := s.HostedEvent(ctx, hostID, eventID); err != nil {
		return domain.Attendee{}, err
	}
	return s.Store.MarkAttended(ctx, eventID, userID)
}

func (s *EventsService) DeleteEvent(ctx context.Context, hostID, eventID string) error {
	if _, err := s.HostedEvent(ctx, hostID, eventID); err != nil {
		return err
	}
	return s.Store.DeleteEvent(ctx, eventID)
}

// GetEvent is visible to the host and to anyone with an attendance edge.
// Other callers get ErrEventNotFound.
func (s *EventsService) GetEvent(ctx context.Context, viewerID, eventID string) (domain.Event, error) {
	e, err := s.Store.GetEvent(ctx, eventID)
	if err != nil {
		return domain.Event{}, err
	}
	if e.HostID == viewerID {
		return e, nil
	}
	if _, err := s.Store.GetAttendee(ctx, eventID, viewerID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Event{}, domain.ErrEventNotFound
		}
		return domain.Event{}, err
	}
	return e, nil
}

func (s *EventsService) ListAttendees(ctx context.Context, viewerID, eventID string) (domain.Event, []domain.Attendee, error) {
	e, err := s.GetEvent(ctx, viewerID, eventID)
	if err != nil {
		return domain.Event{}, nil, err
	}
	attendees, err := s.Store.ListAttendees(ctx, eventID)
	if err != nil {
		return domain.Event{}, nil, err
	}
	return e, attendees, nil
}

// ListEventsForUser returns hosted and attended events, role-tagged, with
// the caller's own attendance status on the latter.
func (s *EventsService) ListEventsForUser(ctx context.Context, userID string) ([]domain.EventSummary, error) {
	return s.Store.ListEventsForUser(ctx, userID)
}

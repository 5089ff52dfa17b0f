package memory

import (
	"context"
	"sort"
	"time"

	"GameNightwebserver/internal/domain"
)

type EventsStore struct {
	db *DB
}

func NewEventsStore(db *DB) *EventsStore {
	return &EventsStore{db: db}
}

func (s *EventsStore) CreateEvent(_ context.Context, hostID string, in domain.EventInput, gameTitle string, when time.Time) (domain.Event, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.users[hostID]; !ok {
		return domain.Event{}, domain.ErrUserNotFound
	}
	if in.GameID != "" {
		if g, ok := s.db.games[in.GameID]; !ok || g.UserID != hostID {
			return domain.Event{}, domain.ErrGameNotFound
		}
	}

	e := domain.Event{
		ID:          s.db.newID(),
		HostID:      hostID,
		Title:       in.Title,
		Description: in.Description,
		Date:        in.Date,
		Time:        in.Time,
		Location:    in.Location,
		MaxPlayers:  copyInt(in.MaxPlayers),
		GameID:      in.GameID,
		GameTitle:   gameTitle,
		Status:      domain.EventScheduled,
		CreatedAt:   when,
		UpdatedAt:   when,
	}
	s.db.events[e.ID] = e
	return e, nil
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func (s *EventsStore) GetEvent(_ context.Context, eventID string) (domain.Event, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	e, ok := s.db.events[eventID]
	if !ok {
		return domain.Event{}, domain.ErrEventNotFound
	}
	return e, nil
}

func (s *EventsStore) UpdateEvent(_ context.Context, eventID string, patch domain.EventPatch, gameTitle *string, when time.Time) (domain.Event, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	e, ok := s.db.events[eventID]
	if !ok {
		return domain.Event{}, domain.ErrEventNotFound
	}
	if e.Status != domain.EventScheduled {
		return domain.Event{}, domain.ErrEventClosed
	}
	if patch.MaxPlayers != nil && *patch.MaxPlayers < s.db.seatsHeldLocked(eventID) {
		return domain.Event{}, domain.ErrEventFull
	}

	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&e.Title, patch.Title)
	set(&e.Description, patch.Description)
	set(&e.Date, patch.Date)
	set(&e.Time, patch.Time)
	set(&e.Location, patch.Location)
	if patch.MaxPlayers != nil {
		e.MaxPlayers = copyInt(patch.MaxPlayers)
	}
	if patch.GameID != nil {
		e.GameID = *patch.GameID
		if gameTitle != nil {
			e.GameTitle = *gameTitle
		}
	}
	e.UpdatedAt = when
	s.db.events[eventID] = e
	return e, nil
}

func (s *EventsStore) SetEventStatus(_ context.Context, eventID string, from, to domain.EventStatus, when time.Time) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	e, ok := s.db.events[eventID]
	if !ok {
		return false, domain.ErrEventNotFound
	}
	if e.Status != from {
		return false, nil
	}
	e.Status = to
	e.UpdatedAt = when
	s.db.events[eventID] = e
	return true, nil
}

func (s *EventsStore) DeleteEvent(_ context.Context, eventID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.events[eventID]; !ok {
		return domain.ErrEventNotFound
	}
	s.db.deleteEventLocked(eventID)
	return nil
}

func (s *EventsStore) InviteAttendees(_ context.Context, eventID string, userIDs []string, policy domain.InvitePolicy, when time.Time) ([]string, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	e, ok := s.db.events[eventID]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	if e.Status != domain.EventScheduled {
		return nil, domain.ErrEventClosed
	}

	fresh := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if _, ok := s.db.users[id]; !ok {
			return nil, domain.ErrUserNotFound
		}
		if id == e.HostID {
			continue
		}
		status, ok := s.db.pairStatusLocked(e.HostID, id)
		if ok && status == domain.FriendshipBlocked {
			return nil, domain.ErrUserBlocked
		}
		if policy.FriendsOnly && (!ok || status != domain.FriendshipAccepted) {
			return nil, domain.ErrNotFriends
		}
		if _, exists := s.db.attendees[attendeeKey{eventID, id}]; exists {
			continue
		}
		fresh = append(fresh, id)
	}
	if e.MaxPlayers != nil && s.db.seatsHeldLocked(eventID)+len(fresh) > *e.MaxPlayers {
		return nil, domain.ErrEventFull
	}

	for _, id := range fresh {
		s.db.attendees[attendeeKey{eventID, id}] = domain.Attendee{
			ID:        s.db.newID(),
			EventID:   eventID,
			UserID:    id,
			Status:    domain.AttendeeInvited,
			CreatedAt: when,
		}
	}
	return fresh, nil
}

func (s *EventsStore) GetAttendee(_ context.Context, eventID, userID string) (domain.Attendee, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	a, ok := s.db.attendees[attendeeKey{eventID, userID}]
	if !ok {
		return domain.Attendee{}, domain.ErrNotInvited
	}
	return a, nil
}

func (s *EventsStore) AnswerInvitation(_ context.Context, eventID, userID string, to domain.AttendeeStatus, when time.Time) (domain.Attendee, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	k := attendeeKey{eventID, userID}
	a, ok := s.db.attendees[k]
	if !ok || a.Status != domain.AttendeeInvited {
		return domain.Attendee{}, domain.ErrNotInvited
	}
	e, ok := s.db.events[eventID]
	if !ok {
		return domain.Attendee{}, domain.ErrNotInvited
	}
	if e.Status != domain.EventScheduled {
		return domain.Attendee{}, domain.ErrEventClosed
	}
	if to == domain.AttendeeAccepted {
		if status, ok := s.db.pairStatusLocked(userID, e.HostID); ok && status == domain.FriendshipBlocked {
			return domain.Attendee{}, domain.ErrUserBlocked
		}
	}

	a.Status = to
	t := when
	a.RespondedAt = &t
	s.db.attendees[k] = a
	return a, nil
}

func (s *EventsStore) MarkAttended(_ context.Context, eventID, userID string) (domain.Attendee, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	e, ok := s.db.events[eventID]
	if !ok {
		return domain.Attendee{}, domain.ErrEventNotFound
	}
	if e.Status == domain.EventCancelled {
		return domain.Attendee{}, domain.ErrEventClosed
	}
	k := attendeeKey{eventID, userID}
	a, ok := s.db.attendees[k]
	if !ok {
		return domain.Attendee{}, domain.ErrNotInvited
	}
	if !a.Status.CanTransition(domain.AttendeeAttended) {
		return domain.Attendee{}, domain.ErrInvalidTransition
	}
	a.Status = domain.AttendeeAttended
	s.db.attendees[k] = a
	return a, nil
}

func (s *EventsStore) ListAttendees(_ context.Context, eventID string) ([]domain.Attendee, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	out := []domain.Attendee{}
	for k, a := range s.db.attendees {
		if k.eventID == eventID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *EventsStore) ListEventsForUser(_ context.Context, userID string) ([]domain.EventSummary, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	out := []domain.EventSummary{}
	for _, e := range s.db.events {
		if e.HostID == userID {
			out = append(out, domain.EventSummary{Event: e, Role: domain.RoleHost})
		}
	}
	for k, a := range s.db.attendees {
		if k.userID != userID {
			continue
		}
		if e, ok := s.db.events[k.eventID]; ok {
			out = append(out, domain.EventSummary{Event: e, Role: domain.RoleAttendee, MyStatus: a.Status})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Event, out[j].Event
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		return a.ID < b.ID
	})
	return out, nil
}

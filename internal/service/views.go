package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"GameNightwebserver/internal/domain"
)

type ViewUsersStore interface {
	// GetUsersByIDs returns the users that exist; missing ids are simply absent.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]domain.User, error)
}

// Views builds read-only projections from the ledgers on every call.
type Views struct {
	Users   ViewUsersStore
	Friends *FriendsService
	Events  *EventsService
	Games   GamesStore
}

const unknownUser = "unknown user"

// FriendList returns accepted friends ordered by display name.
func (v *Views) FriendList(ctx context.Context, userID string) ([]domain.Friend, error) {
	friends, err := v.Friends.ListFriends(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(friends, func(i, j int) bool {
		return strings.ToLower(friends[i].User.DisplayName) < strings.ToLower(friends[j].User.DisplayName)
	})
	return friends, nil
}

// Calendar groups the user's hosted and attended events by date within
// [from, to]. Either bound may be empty. Declined invitations are left out.
func (v *Views) Calendar(ctx context.Context, userID, from, to string) (map[string][]domain.EventSummary, error) {
	fields := map[string]string{}
	for name, val := range map[string]string{"from": from, "to": to} {
		if val == "" {
			continue
		}
		if _, err := time.Parse(domain.EventDateLayout, val); err != nil {
			fields[name] = "must be YYYY-MM-DD"
		}
	}
	if err := validationOrNil(fields); err != nil {
		return nil, err
	}
	if from != "" && to != "" && to < from {
		return nil, domain.NewValidationError(map[string]string{"to": "must not be before from"})
	}

	events, err := v.Events.ListEventsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := map[string][]domain.EventSummary{}
	for _, es := range events {
		if es.Role == domain.RoleAttendee && es.MyStatus == domain.AttendeeDeclined {
			continue
		}
		d := es.Event.Date
		if (from != "" && d < from) || (to != "" && d > to) {
			continue
		}
		out[d] = append(out[d], es)
	}
	for _, day := range out {
		sort.SliceStable(day, func(i, j int) bool {
			if day[i].Event.Time != day[j].Event.Time {
				return day[i].Event.Time < day[j].Event.Time
			}
			return day[i].Event.Title < day[j].Event.Title
		})
	}
	return out, nil
}

// Roster lists the host and every attendee with a display badge. Rows whose
// user or game has gone missing are rendered with placeholders.
func (v *Views) Roster(ctx context.Context, viewerID, eventID string) (domain.Roster, error) {
	e, attendees, err := v.Events.ListAttendees(ctx, viewerID, eventID)
	if err != nil {
		return domain.Roster{}, err
	}

	ids := make([]string, 0, len(attendees)+1)
	ids = append(ids, e.HostID)
	for _, a := range attendees {
		ids = append(ids, a.UserID)
	}
	users, err := v.Users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return domain.Roster{}, err
	}

	roster := domain.Roster{
		Event:     e,
		GameTitle: v.gameTitle(ctx, e),
		Host:      summaryOrUnknown(users, e.HostID),
		Entries:   make([]domain.RosterEntry, 0, len(attendees)+1),
	}
	roster.Entries = append(roster.Entries, domain.RosterEntry{
		User:  roster.Host,
		Badge: "host",
	})
	for _, a := range attendees {
		roster.Entries = append(roster.Entries, domain.RosterEntry{
			User:        summaryOrUnknown(users, a.UserID),
			Status:      a.Status,
			Badge:       attendeeBadge(a.Status),
			RespondedAt: a.RespondedAt,
		})
	}
	return roster, nil
}

// gameTitle prefers the live catalog entry and falls back to the title
// cached on the event when the entry is gone.
func (v *Views) gameTitle(ctx context.Context, e domain.Event) string {
	if e.GameID == "" || v.Games == nil {
		return e.GameTitle
	}
	g, err := v.Games.GetGame(ctx, e.HostID, e.GameID)
	if err != nil {
		return e.GameTitle
	}
	return g.Title
}

func summaryOrUnknown(users map[string]domain.User, id string) domain.UserSummary {
	if u, ok := users[id]; ok {
		return u.Summary()
	}
	return domain.UserSummary{ID: id, Username: unknownUser, DisplayName: unknownUser}
}

func attendeeBadge(s domain.AttendeeStatus) string {
	switch s {
	case domain.AttendeeInvited:
		return "invited"
	case domain.AttendeeAccepted:
		return "going"
	case domain.AttendeeDeclined:
		return "not_going"
	case domain.AttendeeAttended:
		return "attended"
	default:
		return string(s)
	}
}

package domain

import "time"

type EventStatus string

const (
	EventScheduled EventStatus = "scheduled"
	EventCancelled EventStatus = "cancelled"
	EventCompleted EventStatus = "completed"
)

// CanTransition allows only forward moves out of scheduled.
func (s EventStatus) CanTransition(to EventStatus) bool {
	return s == EventScheduled && (to == EventCancelled || to == EventCompleted)
}

type AttendeeStatus string

const (
	AttendeeInvited  AttendeeStatus = "invited"
	AttendeeAccepted AttendeeStatus = "accepted"
	AttendeeDeclined AttendeeStatus = "declined"
	AttendeeAttended AttendeeStatus = "attended"
)

// CanTransition encodes invited -> {accepted, declined} and accepted -> attended.
func (s AttendeeStatus) CanTransition(to AttendeeStatus) bool {
	switch s {
	case AttendeeInvited:
		return to == AttendeeAccepted || to == AttendeeDeclined
	case AttendeeAccepted:
		return to == AttendeeAttended
	default:
		return false
	}
}

// HoldsSeat reports whether the row counts against max_players.
func (s AttendeeStatus) HoldsSeat() bool {
	return s == AttendeeInvited || s == AttendeeAccepted || s == AttendeeAttended
}

const (
	EventDateLayout = "2006-01-02"
	EventTimeLayout = "15:04"
)

type Event struct {
	ID          string      `json:"id"`
	HostID      string      `json:"host_id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Date        string      `json:"date"`
	Time        string      `json:"time"`
	Location    string      `json:"location"`
	MaxPlayers  *int        `json:"max_players,omitempty"`
	GameID      string      `json:"game_id,omitempty"`
	GameTitle   string      `json:"game_title,omitempty"`
	Status      EventStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// StartsAt combines Date and Time in loc. Zero when either fails to parse.
func (e Event) StartsAt(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(EventDateLayout+" "+EventTimeLayout, e.Date+" "+e.Time, loc)
	if err != nil {
		return time.Time{}
	}
	return t
}

type EventInput struct {
	Title       string
	Description string
	Date        string
	Time        string
	Location    string
	MaxPlayers  *int
	GameID      string
}

type EventPatch struct {
	Title       *string
	Description *string
	Date        *string
	Time        *string
	Location    *string
	MaxPlayers  *int
	GameID      *string
}

type Attendee struct {
	ID          string         `json:"id"`
	EventID     string         `json:"event_id"`
	UserID      string         `json:"user_id"`
	Status      AttendeeStatus `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	RespondedAt *time.Time     `json:"responded_at,omitempty"`
}

type EventRole string

const (
	RoleHost     EventRole = "host"
	RoleAttendee EventRole = "attendee"
)

type EventSummary struct {
	Event    Event          `json:"event"`
	Role     EventRole      `json:"role"`
	MyStatus AttendeeStatus `json:"my_status,omitempty"`
}

type RosterEntry struct {
	User        UserSummary    `json:"user"`
	Status      AttendeeStatus `json:"status,omitempty"`
	Badge       string         `json:"badge"`
	RespondedAt *time.Time     `json:"responded_at,omitempty"`
}

type Roster struct {
	Event     Event         `json:"event"`
	GameTitle string        `json:"game_title,omitempty"`
	Host      UserSummary   `json:"host"`
	Entries   []RosterEntry `json:"entries"`
}

// InvitePolicy is enforced by the store in the same unit as the invite
// write. Invitees blocked by or blocking the host are always refused.
type InvitePolicy struct {
	// FriendsOnly limits invitees to accepted friends of the host.
	FriendsOnly bool
}

package domain

import (
	"errors"
	"testing"
	"time"
)

func TestCodedErrorsUnwrapToKind(t *testing.T) {
	cases := map[*CodedError]error{
		ErrUsernameTaken:      ErrConflict,
		ErrFriendshipExists:   ErrConflict,
		ErrSelfFriendship:     ErrValidation,
		ErrNoSuchRequest:      ErrNotFound,
		ErrNotRecipient:       ErrForbidden,
		ErrNotInvited:         ErrNotFound,
		ErrInvalidCredentials: ErrUnauthorized,
		ErrUserBlocked:        ErrPolicyViolation,
		ErrAdminOnly:          ErrForbidden,
	}
	for err, kind := range cases {
		if !errors.Is(err, kind) {
			t.Fatalf("%s: expected kind %v", err.Code, kind)
		}
		if got := Kind(err); got != kind {
			t.Fatalf("%s: Kind = %v, want %v", err.Code, got, kind)
		}
	}
	if Kind(errors.New("boom")) != nil {
		t.Fatalf("expected nil kind for plain error")
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError(map[string]string{"title": "required", "date": "invalid"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation kind")
	}
	if got := err.Error(); got != "validation failed: date: invalid, title: required" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestEventStatusTransitions(t *testing.T) {
	if !EventScheduled.CanTransition(EventCancelled) || !EventScheduled.CanTransition(EventCompleted) {
		t.Fatalf("scheduled must move forward")
	}
	for _, from := range []EventStatus{EventCancelled, EventCompleted} {
		for _, to := range []EventStatus{EventScheduled, EventCancelled, EventCompleted} {
			if from.CanTransition(to) {
				t.Fatalf("%s -> %s must be rejected", from, to)
			}
		}
	}
}

func TestAttendeeStatusTransitions(t *testing.T) {
	allowed := map[[2]AttendeeStatus]bool{
		{AttendeeInvited, AttendeeAccepted}:  true,
		{AttendeeInvited, AttendeeDeclined}:  true,
		{AttendeeAccepted, AttendeeAttended}: true,
	}
	all := []AttendeeStatus{AttendeeInvited, AttendeeAccepted, AttendeeDeclined, AttendeeAttended}
	for _, from := range all {
		for _, to := range all {
			if got := from.CanTransition(to); got != allowed[[2]AttendeeStatus{from, to}] {
				t.Fatalf("%s -> %s: got %v", from, to, got)
			}
		}
	}
	if AttendeeDeclined.HoldsSeat() {
		t.Fatalf("declined must not hold a seat")
	}
}

func TestPairKeyIsSymmetric(t *testing.T) {
	a1, b1 := PairKey("u2", "u1")
	a2, b2 := PairKey("u1", "u2")
	if a1 != a2 || b1 != b2 || a1 != "u1" {
		t.Fatalf("unexpected pair keys: %s,%s %s,%s", a1, b1, a2, b2)
	}
}

func TestEventStartsAt(t *testing.T) {
	e := Event{Date: "2030-05-01", Time: "19:30"}
	want := time.Date(2030, 5, 1, 19, 30, 0, 0, time.UTC)
	if got := e.StartsAt(nil); !got.Equal(want) {
		t.Fatalf("StartsAt = %s, want %s", got, want)
	}
	if !(Event{Date: "bad", Time: "19:30"}).StartsAt(nil).IsZero() {
		t.Fatalf("expected zero time for bad date")
	}
}

func TestUserDisplayName(t *testing.T) {
	if got := (User{Username: "alice"}).DisplayName(); got != "alice" {
		t.Fatalf("fallback display name: %q", got)
	}
	if got := (User{Username: "alice", FirstName: " Alice ", LastName: "Liddell"}).DisplayName(); got != "Alice Liddell" {
		t.Fatalf("display name: %q", got)
	}
}

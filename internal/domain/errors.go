package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kinds. Every error a service returns unwraps to exactly one of these.
var (
	ErrValidation      = errors.New("validation")
	ErrNotFound        = errors.New("not_found")
	ErrConflict        = errors.New("conflict")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrPolicyViolation = errors.New("policy_violation")
)

var (
	ErrUsernameTaken      = newCodedError("username_taken", "username already taken", ErrConflict)
	ErrInvalidCredentials = newCodedError("invalid_credentials", "invalid username or password", ErrUnauthorized)
	ErrTokenInvalid       = newCodedError("invalid_token", "invalid token", ErrUnauthorized)
	ErrTokenExpired       = newCodedError("token_expired", "token expired", ErrUnauthorized)
	ErrUserNotFound       = newCodedError("user_not_found", "user not found", ErrNotFound)

	ErrSelfFriendship     = newCodedError("self_friendship", "cannot friend yourself", ErrValidation)
	ErrFriendshipExists   = newCodedError("friendship_exists", "friend request already pending or accepted", ErrConflict)
	ErrFriendshipNotFound = newCodedError("friendship_not_found", "friendship not found", ErrNotFound)
	ErrNoSuchRequest      = newCodedError("no_such_request", "no pending friend request", ErrNotFound)
	ErrNotRecipient       = newCodedError("not_recipient", "only the recipient can respond to this request", ErrForbidden)
	ErrNotParty           = newCodedError("not_party", "not a party to this friendship", ErrForbidden)
	ErrUserBlocked        = newCodedError("user_blocked", "one of the users has blocked the other", ErrPolicyViolation)
	ErrNotFriends         = newCodedError("not_friends", "only accepted friends can be invited", ErrPolicyViolation)

	ErrEventNotFound     = newCodedError("event_not_found", "event not found", ErrNotFound)
	ErrNotHost           = newCodedError("not_host", "only the host can do that", ErrForbidden)
	ErrNotInvited        = newCodedError("not_invited", "no open invitation for this event", ErrNotFound)
	ErrEventClosed       = newCodedError("event_closed", "event is no longer scheduled", ErrConflict)
	ErrInvalidTransition = newCodedError("invalid_transition", "status change not allowed", ErrConflict)
	ErrEventFull         = newCodedError("event_full", "event has no free seats", ErrConflict)

	ErrGameExists   = newCodedError("game_exists", "game already in catalog", ErrConflict)
	ErrGameNotFound = newCodedError("game_not_found", "game not found", ErrNotFound)

	ErrAdminOnly = newCodedError("admin_only", "admin capability required", ErrForbidden)
)

// CodedError is a named failure with a stable machine code. It unwraps to its kind.
type CodedError struct {
	Code    string
	Message string
	kind    error
}

func newCodedError(code, message string, kind error) *CodedError {
	return &CodedError{Code: code, Message: message, kind: kind}
}

func (e *CodedError) Error() string { return e.Code }

func (e *CodedError) Unwrap() error { return e.kind }

// Kind reports which of the kind sentinels err belongs to, or nil.
func Kind(err error) error {
	for _, k := range []error{ErrValidation, ErrNotFound, ErrConflict, ErrForbidden, ErrUnauthorized, ErrPolicyViolation} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func NewValidationError(fields map[string]string) error {
	return &ValidationError{Fields: fields}
}

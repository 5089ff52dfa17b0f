package domain

import (
	"strings"
	"time"
)

type User struct {
	ID             string
	Username       string
	FirstName      string
	LastName       string
	Bio            string
	FavoriteGames  string
	ProfilePicture string
	IsAdmin        bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
	LastLoginAt    *time.Time
}

func (u User) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name == "" {
		return u.Username
	}
	return name
}

func (u User) Summary() UserSummary {
	return UserSummary{
		ID:             u.ID,
		Username:       u.Username,
		DisplayName:    u.DisplayName(),
		ProfilePicture: u.ProfilePicture,
	}
}

type UserWithPassword struct {
	User
	PasswordHash string
}

// ProfilePatch carries a partial profile update. Nil fields are left unchanged.
type ProfilePatch struct {
	FirstName      *string
	LastName       *string
	Bio            *string
	FavoriteGames  *string
	ProfilePicture *string
}

func (p ProfilePatch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Bio == nil && p.FavoriteGames == nil && p.ProfilePicture == nil
}

// Session backs one issued token; ID is the token's jti. Username and
// IsAdmin are read from the owning account when the session is looked up.
type Session struct {
	ID        string
	UserID    string
	Username  string
	IsAdmin   bool
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// AuthContext is the verified identity of the caller for one request.
type AuthContext struct {
	UserID    string
	Username  string
	IsAdmin   bool
	SessionID string
	ExpiresAt time.Time
}

func (a AuthContext) Expired(now time.Time) bool {
	return !a.ExpiresAt.IsZero() && !now.Before(a.ExpiresAt)
}

type IssuedToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type UserSummary struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	DisplayName    string `json:"display_name,omitempty"`
	ProfilePicture string `json:"profile_picture,omitempty"`
}

// UserMatch is a search hit seen from the searcher's side.
type UserMatch struct {
	UserSummary
	Relationship Relationship `json:"relationship"`
}

// NotificationToken is a push target registered by one of the user's devices.
type NotificationToken struct {
	ID        string    `json:"-"`
	UserID    string    `json:"-"`
	Token     string    `json:"token"`
	Platform  string    `json:"platform"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

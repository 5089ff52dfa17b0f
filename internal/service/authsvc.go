package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"

	"GameNightwebserver/internal/auth"
	"GameNightwebserver/internal/domain"
)

type UsersStore interface {
	CreateUser(ctx context.Context, username, passwordHash string, isAdmin bool) (domain.User, error)
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (domain.UserWithPassword, error)
	SetLastLogin(ctx context.Context, userID string, when time.Time) error
	DeleteUser(ctx context.Context, userID string) error
}

type SessionsStore interface {
	CreateSession(ctx context.Context, userID string, expiresAt time.Time, ip, userAgent string) (string, error)
	// LookupSession returns the unrevoked session for a token's jti.
	LookupSession(ctx context.Context, jti string) (domain.Session, error)
	RevokeSession(ctx context.Context, userID, jti string, when time.Time) error
}

const (
	usernameMinLen = 3
	usernameMaxLen = 32
	passwordMinLen = 8
	passwordMaxLen = 128
)

type AuthService struct {
	Users    UsersStore
	Sessions SessionsStore
	Tokens   *auth.TokenIssuer
	Hasher   auth.Hasher
	TokenTTL time.Duration
	Now      func() time.Time
}

// ClientInfo is recorded on the session row created for each issued token.
type ClientInfo struct {
	IP        string
	UserAgent string
}

func (s *AuthService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *AuthService) ttl() time.Duration {
	if s.TokenTTL <= 0 {
		return 24 * time.Hour
	}
	return s.TokenTTL
}

func validateCredentials(username, password string) error {
	fields := map[string]string{}
	switch n := utf8.RuneCountInString(username); {
	case n == 0:
		fields["username"] = "required"
	case n < usernameMinLen || n > usernameMaxLen:
		fields["username"] = "must be 3 to 32 characters"
	default:
		for _, r := range username {
			if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == '.') {
				fields["username"] = "may contain letters, digits, '.', '_' and '-' only"
				break
			}
		}
	}
	switch n := len(password); {
	case n == 0:
		fields["password"] = "required"
	case n < passwordMinLen:
		fields["password"] = "must be at least 8 characters"
	case n > passwordMaxLen:
		fields["password"] = "too long"
	}
	return validationOrNil(fields)
}

// CreateUser stores a new identity. The username is case-sensitive and its
// uniqueness is decided by the store at insert time.
func (s *AuthService) CreateUser(ctx context.Context, username, password string, isAdmin bool) (domain.User, error) {
	username = strings.TrimSpace(username)
	if err := validateCredentials(username, password); err != nil {
		return domain.User{}, err
	}

	passwordHash, err := s.Hasher.Hash(password)
	if err != nil {
		return domain.User{}, err
	}
	return s.Users.CreateUser(ctx, username, passwordHash, isAdmin)
}

func (s *AuthService) Register(ctx context.Context, username, password string, client ClientInfo) (domain.User, domain.IssuedToken, error) {
	u, err := s.CreateUser(ctx, username, password, false)
	if err != nil {
		return domain.User{}, domain.IssuedToken{}, err
	}

	tok, err := s.issue(ctx, u, client)
	if err != nil {
		return domain.User{}, domain.IssuedToken{}, err
	}
	return u, tok, nil
}

// VerifyCredentials returns the same error for an unknown username and a wrong password.
func (s *AuthService) VerifyCredentials(ctx context.Context, username, password string) (domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.User{}, domain.ErrInvalidCredentials
	}

	u, err := s.Users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, domain.ErrInvalidCredentials
		}
		return domain.User{}, err
	}

	ok, err := auth.VerifyPassword(u.PasswordHash, password)
	if err != nil {
		return domain.User{}, err
	}
	if !ok {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	return u.User, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string, client ClientInfo) (domain.User, domain.IssuedToken, error) {
	u, err := s.VerifyCredentials(ctx, username, password)
	if err != nil {
		return domain.User{}, domain.IssuedToken{}, err
	}

	tok, err := s.issue(ctx, u, client)
	if err != nil {
		return domain.User{}, domain.IssuedToken{}, err
	}

	_ = s.Users.SetLastLogin(ctx, u.ID, s.now())

	return u, tok, nil
}

func (s *AuthService) issue(ctx context.Context, u domain.User, client ClientInfo) (domain.IssuedToken, error) {
	expiresAt := s.now().Add(s.ttl()).UTC().Truncate(time.Second)

	sessID, err := s.Sessions.CreateSession(ctx, u.ID, expiresAt, client.IP, client.UserAgent)
	if err != nil {
		return domain.IssuedToken{}, err
	}

	signed, err := s.Tokens.Issue(u.ID, u.Username, u.IsAdmin, sessID, expiresAt)
	if err != nil {
		return domain.IssuedToken{}, err
	}
	return domain.IssuedToken{Token: signed, ExpiresAt: expiresAt}, nil
}

// Logout revokes the session behind the caller's own token.
func (s *AuthService) Logout(ctx context.Context, ac domain.AuthContext) error {
	return s.Sessions.RevokeSession(ctx, ac.UserID, ac.SessionID, s.now())
}

// Authenticate turns a bearer token into the caller's identity. The admin
// flag comes from the account behind the session, not from the token claims.
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.AuthContext, error) {
	if strings.TrimSpace(token) == "" {
		return domain.AuthContext{}, domain.ErrTokenInvalid
	}

	claims, err := s.Tokens.Parse(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.AuthContext{}, domain.ErrTokenExpired
		}
		return domain.AuthContext{}, domain.ErrTokenInvalid
	}

	sess, err := s.Sessions.LookupSession(ctx, claims.SessionID())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.AuthContext{}, domain.ErrTokenInvalid
		}
		return domain.AuthContext{}, err
	}
	if sess.UserID != claims.UserID() {
		return domain.AuthContext{}, domain.ErrTokenInvalid
	}
	if !s.now().Before(sess.ExpiresAt) {
		return domain.AuthContext{}, domain.ErrTokenExpired
	}

	return domain.AuthContext{
		UserID:    sess.UserID,
		Username:  sess.Username,
		IsAdmin:   sess.IsAdmin,
		SessionID: sess.ID,
		ExpiresAt: sess.ExpiresAt,
	}, nil
}

// DeleteAccount removes the user. Owned rows go with it.
func (s *AuthService) DeleteAccount(ctx context.Context, userID string) error {
	return s.Users.DeleteUser(ctx, userID)
}

// EnsureAdmin creates the bootstrap admin when the username is free.
// It reports whether a user was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	username = strings.TrimSpace(username)
	if _, err := s.Users.GetUserByUsername(ctx, username); err == nil {
		return false, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return false, err
	}

	if _, err := s.CreateUser(ctx, username, password, true); err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

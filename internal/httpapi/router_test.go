package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GameNightwebserver/internal/auth"
	"GameNightwebserver/internal/domain"
	"GameNightwebserver/internal/service"
	"GameNightwebserver/internal/store/memory"
)

var testHasher = auth.Hasher{Params: auth.Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLen: 16, KeyLen: 32}}

type testServer struct {
	h       http.Handler
	authSvc *service.AuthService
}

func newTestServer(t *testing.T, loginRate int) *testServer {
	t.Helper()

	db := memory.NewDB()
	users := memory.NewUsersStore(db)
	friendships := memory.NewFriendshipsStore(db)
	eventsStore := memory.NewEventsStore(db)
	gamesStore := memory.NewGamesStore(db)

	authSvc := &service.AuthService{
		Users:    users,
		Sessions: memory.NewSessionsStore(db),
		Tokens:   auth.NewTokenIssuer([]byte(strings.Repeat("k", 32)), "gamenight"),
		Hasher:   testHasher,
	}
	friends := &service.FriendsService{Users: users, Friendships: friendships}
	events := &service.EventsService{Store: eventsStore, Games: gamesStore}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := NewRouter(RouterOpts{
		Logger:  logger,
		Auth:    authSvc,
		Profile: &service.ProfileService{Store: users},
		Users:   &service.UsersService{Store: memory.NewUserSearchStore(db)},
		Friends: friends,
		Events:  events,
		Games:   &service.GamesService{Store: gamesStore},
		Gateway: &service.Gateway{Friends: friends, Events: events, StrictInvites: true, Logger: logger},
		Views:   &service.Views{Users: users, Friends: friends, Events: events, Games: gamesStore},
		Admin: &service.AdminService{
			Users:       memory.NewAdminUsersStore(db),
			Accounts:    users,
			Events:      eventsStore,
			Friendships: friendships,
		},
		Notifications: &service.NotificationService{Tokens: memory.NewNotificationTokensStore(db)},
		Metrics:       NewMetrics(),
		LoginRate:     loginRate,
	})
	return &testServer{h: h, authSvc: authSvc}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.h.ServeHTTP(rr, req)
	return rr
}

type registered struct {
	ID    string
	Token string
}

func (s *testServer) register(t *testing.T, username string) registered {
	t.Helper()
	rr := s.do(t, http.MethodPost, "/v1/register", "", map[string]string{"username": username, "password": "password-" + username})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var resp authResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.NotEmpty(t, resp.Token)
	return registered{ID: resp.User.ID, Token: resp.Token}
}

func (s *testServer) befriend(t *testing.T, from registered, to registered, toUsername string) {
	t.Helper()
	rr := s.do(t, http.MethodPost, "/v1/friends/request", from.Token, map[string]string{"username": toUsername})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	rr = s.do(t, http.MethodPut, "/v1/friends/respond", to.Token, map[string]string{"requester_id": from.ID, "decision": "accepted"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) apiError {
	t.Helper()
	var env errorEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	return env.Error
}

func TestRegisterLoginAndMe(t *testing.T) {
	s := newTestServer(t, 10)
	alice := s.register(t, "alice")

	rr := s.do(t, http.MethodPost, "/v1/register", "", map[string]string{"username": "alice", "password": "another-password"})
	require.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "username_taken", decodeError(t, rr).Code)

	rr = s.do(t, http.MethodPost, "/v1/login", "", map[string]string{"username": "alice", "password": "wrong-password"})
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "invalid_credentials", decodeError(t, rr).Code)

	rr = s.do(t, http.MethodPost, "/v1/login", "", map[string]string{"username": "alice", "password": "password-alice"})
	require.Equal(t, http.StatusOK, rr.Code)
	var login authResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&login))
	assert.Equal(t, alice.ID, login.User.ID)
	assert.False(t, login.ExpiresAt.IsZero())

	rr = s.do(t, http.MethodGet, "/v1/users/me", login.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var me userResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&me))
	assert.Equal(t, "alice", me.Username)
	assert.Equal(t, "alice", me.DisplayName)
}

func TestRequireAuthRejectsMissingAndBadTokens(t *testing.T) {
	s := newTestServer(t, 10)

	rr := s.do(t, http.MethodGet, "/v1/users/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "unauthorized", decodeError(t, rr).Code)

	rr = s.do(t, http.MethodGet, "/v1/users/me", "not-a-jwt", nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "invalid_token", decodeError(t, rr).Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newTestServer(t, 10)
	alice := s.register(t, "alice")

	rr := s.do(t, http.MethodPost, "/v1/logout", alice.Token, nil)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = s.do(t, http.MethodGet, "/v1/users/me", alice.Token, nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestDecodeRejectsUnknownFieldsAndReportsValidationFields(t *testing.T) {
	s := newTestServer(t, 10)

	rr := s.do(t, http.MethodPost, "/v1/register", "", `{"username":"alice","password":"password-alice","email":"a@example.com"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "bad_json", decodeError(t, rr).Code)

	rr = s.do(t, http.MethodPost, "/v1/register", "", `{"username":"alice"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	apiErr := decodeError(t, rr)
	assert.Equal(t, "validation_error", apiErr.Code)
	assert.Equal(t, "required", apiErr.Fields["password"])
}

func TestLoginRateLimited(t *testing.T) {
	s := newTestServer(t, 2)
	s.register(t, "alice")

	body := map[string]string{"username": "alice", "password": "wrong-password"}
	for i := 0; i < 2; i++ {
		rr := s.do(t, http.MethodPost, "/v1/login", "", body)
		require.Equal(t, http.StatusUnauthorized, rr.Code)
	}
	rr := s.do(t, http.MethodPost, "/v1/login", "", body)
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "rate_limited", decodeError(t, rr).Code)
}

func TestFriendsFlow(t *testing.T) {
	s := newTestServer(t, 10)
	alice, bob := s.register(t, "alice"), s.register(t, "bob")

	rr := s.do(t, http.MethodPost, "/v1/friends/request", alice.Token, map[string]string{"username": "alice"})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "self_friendship", decodeError(t, rr).Code)

	rr = s.do(t, http.MethodPost, "/v1/friends/request", alice.Token, map[string]string{"username": "nobody"})
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = s.do(t, http.MethodPost, "/v1/friends/request", alice.Token, map[string]string{"username": "bob"})
	require.Equal(t, http.StatusCreated, rr.Code)
	var fr domain.FriendRequest
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&fr))

	rr = s.do(t, http.MethodPost, "/v1/friends/request", bob.Token, map[string]string{"username": "alice"})
	require.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "friendship_exists", decodeError(t, rr).Code)

	rr = s.do(t, http.MethodPut, "/v1/friends/respond", alice.Token, map[string]string{"edge_id": fr.ID, "decision": "accepted"})
	require.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "not_recipient", decodeError(t, rr).Code)

	rr = s.do(t, http.MethodPut, "/v1/friends/respond", bob.Token, map[string]string{"decision": "accepted"})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(t, http.MethodPut, "/v1/friends/respond", bob.Token, map[string]string{"edge_id": fr.ID, "decision": "maybe"})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(t, http.MethodPut, "/v1/friends/respond", bob.Token, map[string]string{"edge_id": fr.ID, "decision": "accepted"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	for _, tok := range []string{alice.Token, bob.Token} {
		rr = s.do(t, http.MethodGet, "/v1/friends/list", tok, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		var list struct {
			Friends []domain.Friend `json:"friends"`
		}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&list))
		require.Len(t, list.Friends, 1)
	}

	rr = s.do(t, http.MethodDelete, "/v1/friends/"+fr.ID, bob.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = s.do(t, http.MethodGet, "/v1/friends", alice.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var overview domain.FriendsOverview
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&overview))
	assert.Empty(t, overview.Friends)
}

func TestBlockStopsRequests(t *testing.T) {
	s := newTestServer(t, 10)
	alice, bob := s.register(t, "alice"), s.register(t, "bob")

	rr := s.do(t, http.MethodPost, "/v1/friends/block", alice.Token, map[string]string{"username": "bob"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = s.do(t, http.MethodPost, "/v1/friends/request", bob.Token, map[string]string{"username": "alice"})
	require.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "user_blocked", decodeError(t, rr).Code)

	rr = s.do(t, http.MethodDelete, "/v1/friends/block/bob", alice.Token, nil)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = s.do(t, http.MethodPost, "/v1/friends/request", bob.Token, map[string]string{"username": "alice"})
	require.Equal(t, http.StatusCreated, rr.Code)
}

func TestEventLifecycle(t *testing.T) {
	s := newTestServer(t, 10)
	alice, bob, carol := s.register(t, "alice"), s.register(t, "bob"), s.register(t, "carol")
	s.befriend(t, alice, bob, "bob")

	rr := s.do(t, http.MethodPost, "/v1/events", alice.Token, map[string]any{
		"title":       "Catan night",
		"date":        "2030-03-14",
		"time":        "19:00",
		"location":    "alice's place",
		"max_players": 3,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var ev domain.Event
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&ev))
	require.NotEmpty(t, ev.ID)
	base := "/v1/events/" + ev.ID

	rr = s.do(t, http.MethodPost, base+"/invite", bob.Token, map[string]any{"user_ids": []string{carol.ID}})
	require.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "not_host", decodeError(t, rr).Code)

	rr = s.do(t, http.MethodPost, base+"/invite", alice.Token, map[string]any{"user_ids": []string{carol.ID}})
	require.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "not_friends", decodeError(t, rr).Code)

	rr = s.do(t, http.MethodPost, base+"/invite", alice.Token, map[string]any{"user_ids": []string{bob.ID, bob.ID}})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var invited map[string]int
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&invited))
	assert.Equal(t, 1, invited["invited"])

	rr = s.do(t, http.MethodPut, base+"/rsvp", carol.Token, map[string]string{"status": "accepted"})
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = s.do(t, http.MethodPut, base+"/rsvp", bob.Token, map[string]string{"status": "accepted"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = s.do(t, http.MethodGet, base+"/roster", bob.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var roster domain.Roster
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&roster))
	require.Len(t, roster.Entries, 2)
	assert.Equal(t, "host", roster.Entries[0].Badge)
	assert.Equal(t, "going", roster.Entries[1].Badge)

	rr = s.do(t, http.MethodGet, "/v1/events/calendar?from=2030-03-01&to=2030-03-31", bob.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var cal struct {
		Days map[string][]domain.EventSummary `json:"days"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&cal))
	require.Len(t, cal.Days["2030-03-14"], 1)
	assert.Equal(t, domain.RoleAttendee, cal.Days["2030-03-14"][0].Role)

	rr = s.do(t, http.MethodPost, base+"/complete", alice.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = s.do(t, http.MethodPost, base+"/attended", alice.Token, map[string]string{"user_id": bob.ID})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = s.do(t, http.MethodPost, base+"/cancel", alice.Token, nil)
	require.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "invalid_transition", decodeError(t, rr).Code)
}

func TestGamesCatalog(t *testing.T) {
	s := newTestServer(t, 10)
	alice := s.register(t, "alice")

	rr := s.do(t, http.MethodPost, "/v1/games", alice.Token, map[string]string{"title": "Wingspan", "status": "lost"})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(t, http.MethodPost, "/v1/games", alice.Token, map[string]string{"title": "Wingspan"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var g domain.UserGame
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&g))
	assert.Equal(t, domain.GameOwned, g.Status)

	rr = s.do(t, http.MethodPatch, "/v1/games/"+g.ID, alice.Token, map[string]string{"status": "played"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = s.do(t, http.MethodGet, "/v1/games", alice.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var games []domain.UserGame
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&games))
	require.Len(t, games, 1)
	assert.Equal(t, domain.GamePlayed, games[0].Status)

	rr = s.do(t, http.MethodDelete, "/v1/games/"+g.ID, alice.Token, nil)
	require.Equal(t, http.StatusNoContent, rr.Code)
}

func TestNotificationTokenPlatform(t *testing.T) {
	s := newTestServer(t, 10)
	alice := s.register(t, "alice")

	rr := s.do(t, http.MethodPut, "/v1/notifications/token", alice.Token, map[string]string{"token": "t", "platform": "web"})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "validation_error", decodeError(t, rr).Code)

	rr = s.do(t, http.MethodPut, "/v1/notifications/token", alice.Token, map[string]string{"token": "t", "platform": "ios"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = s.do(t, http.MethodDelete, "/v1/notifications/token?token=t", alice.Token, nil)
	require.Equal(t, http.StatusNoContent, rr.Code)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	s := newTestServer(t, 10)
	alice := s.register(t, "alice")

	rr := s.do(t, http.MethodGet, "/v1/admin/users", alice.Token, nil)
	require.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "admin_only", decodeError(t, rr).Code)

	created, err := s.authSvc.EnsureAdmin(context.Background(), "root", "root-password")
	require.NoError(t, err)
	require.True(t, created)
	rr = s.do(t, http.MethodPost, "/v1/login", "", map[string]string{"username": "root", "password": "root-password"})
	require.Equal(t, http.StatusOK, rr.Code)
	var login authResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&login))

	rr = s.do(t, http.MethodGet, "/v1/admin/users?limit=10", login.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var page struct {
		Users []userResponse `json:"users"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&page))
	assert.Len(t, page.Users, 2)

	rr = s.do(t, http.MethodGet, "/v1/admin/users/export", login.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Disposition"), ".xlsx")
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("PK")), "xlsx is a zip archive")

	rr = s.do(t, http.MethodDelete, "/v1/admin/users/"+alice.ID, login.Token, nil)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = s.do(t, http.MethodGet, "/v1/users/me", alice.Token, nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHealthzMetricsAndNotFound(t *testing.T) {
	s := newTestServer(t, 10)

	rr := s.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))

	rr = s.do(t, http.MethodGet, "/v1/nope", "", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "not_found", decodeError(t, rr).Code)

	s.register(t, "alice")

	rr = s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `gamenight_http_requests_total{route="POST /v1/register",status="201"} 1`)
	assert.Contains(t, body, `route="unmatched"`)
}

func TestUserSearchProfileAndAccountDeletion(t *testing.T) {
	s := newTestServer(t, 10)
	alice, alina := s.register(t, "alice"), s.register(t, "alina")
	bob := s.register(t, "bob")

	rr := s.do(t, http.MethodGet, "/v1/users/search?q=a", bob.Token, nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(t, http.MethodGet, "/v1/users/search?q=ALI", alice.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var found []domain.UserSummary
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&found))
	require.Len(t, found, 1)
	assert.Equal(t, alina.ID, found[0].ID)

	rr = s.do(t, http.MethodPatch, "/v1/users/me", alice.Token, map[string]string{"first_name": "<b>Alice</b>", "bio": "Catan fan"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = s.do(t, http.MethodGet, "/v1/users/"+alice.ID, bob.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var profile publicProfile
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&profile))
	assert.Equal(t, "Alice", profile.DisplayName)
	assert.Equal(t, "Catan fan", profile.Bio)
	assert.NotContains(t, rr.Body.String(), "is_admin")

	rr = s.do(t, http.MethodDelete, "/v1/users/me", alice.Token, nil)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = s.do(t, http.MethodGet, "/v1/users/"+alice.ID, bob.Token, nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteEventIsHostOnly(t *testing.T) {
	s := newTestServer(t, 10)
	alice, bob := s.register(t, "alice"), s.register(t, "bob")

	rr := s.do(t, http.MethodPost, "/v1/events", alice.Token, map[string]any{
		"title":    "Gloomhaven",
		"date":     "2030-05-01",
		"time":     "18:30",
		"location": "the shop",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var ev domain.Event
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&ev))

	rr = s.do(t, http.MethodDelete, "/v1/events/"+ev.ID, bob.Token, nil)
	require.Equal(t, http.StatusForbidden, rr.Code)

	rr = s.do(t, http.MethodDelete, "/v1/events/"+ev.ID, alice.Token, nil)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = s.do(t, http.MethodGet, "/v1/events/"+ev.ID, alice.Token, nil)
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = s.do(t, http.MethodGet, "/v1/events", alice.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String())
}

func TestUserSearchShowsRelationshipAndHidesBlocked(t *testing.T) {
	s := newTestServer(t, 10)
	alice := s.register(t, "alice")
	bob1, bob2, bob3 := s.register(t, "bob1"), s.register(t, "bob2"), s.register(t, "bob3")
	s.befriend(t, alice, bob1, "bob1")

	rr := s.do(t, http.MethodPost, "/v1/friends/request", alice.Token, map[string]string{"username": "bob2"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	rr = s.do(t, http.MethodPost, "/v1/friends/block", bob3.Token, map[string]string{"username": "alice"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = s.do(t, http.MethodGet, "/v1/users/search?q=bob", alice.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var found []domain.UserMatch
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&found))
	require.Len(t, found, 2)
	assert.Equal(t, bob1.ID, found[0].ID)
	assert.Equal(t, domain.RelationFriend, found[0].Relationship)
	assert.Equal(t, bob2.ID, found[1].ID)
	assert.Equal(t, domain.RelationRequestSent, found[1].Relationship)

	rr = s.do(t, http.MethodGet, "/v1/users/search?q=ali", bob2.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	found = nil
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&found))
	require.Len(t, found, 1)
	assert.Equal(t, domain.RelationRequestReceived, found[0].Relationship)

	rr = s.do(t, http.MethodGet, "/v1/users/search?q=ali", bob3.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	found = nil
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&found))
	assert.Empty(t, found, "the blocker does not see the blocked user either")
}

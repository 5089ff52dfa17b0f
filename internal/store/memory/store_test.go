package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GameNightwebserver/internal/domain"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func mustUser(t *testing.T, users *UsersStore, name string) domain.User {
	t.Helper()
	u, err := users.CreateUser(context.Background(), name, "hash", false)
	require.NoError(t, err)
	return u
}

func TestUsersStoreUsernameIsUniqueAndCaseSensitive(t *testing.T) {
	ctx := context.Background()
	users := NewUsersStore(NewDB())

	mustUser(t, users, "alice")
	_, err := users.CreateUser(ctx, "alice", "hash", false)
	require.ErrorIs(t, err, domain.ErrUsernameTaken)

	_, err = users.CreateUser(ctx, "Alice", "hash", false)
	require.NoError(t, err)
}

func TestFriendshipsStorePairIsUnordered(t *testing.T) {
	ctx := context.Background()
	db := NewDB()
	users := NewUsersStore(db)
	friends := NewFriendshipsStore(db)
	a, b := mustUser(t, users, "alice"), mustUser(t, users, "bob")

	_, err := friends.CreateRequest(ctx, a.ID, b.ID, t0)
	require.NoError(t, err)

	_, err = friends.CreateRequest(ctx, b.ID, a.ID, t0)
	require.ErrorIs(t, err, domain.ErrFriendshipExists)
	_, err = friends.CreateRequest(ctx, a.ID, a.ID, t0)
	require.ErrorIs(t, err, domain.ErrSelfFriendship)
}

func TestFriendshipsStoreAcceptOnlyOnce(t *testing.T) {
	ctx := context.Background()
	db := NewDB()
	users := NewUsersStore(db)
	friends := NewFriendshipsStore(db)
	a, b := mustUser(t, users, "alice"), mustUser(t, users, "bob")

	edge, err := friends.CreateRequest(ctx, a.ID, b.ID, t0)
	require.NoError(t, err)

	_, err = friends.Accept(ctx, edge.ID, a.ID, t0)
	require.ErrorIs(t, err, domain.ErrNoSuchRequest, "requester cannot accept")

	accepted, err := friends.Accept(ctx, edge.ID, b.ID, t0.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, domain.FriendshipAccepted, accepted.Status)
	require.NotNil(t, accepted.RespondedAt)

	_, err = friends.Accept(ctx, edge.ID, b.ID, t0)
	require.ErrorIs(t, err, domain.ErrNoSuchRequest)
	require.ErrorIs(t, friends.Cancel(ctx, edge.ID, a.ID), domain.ErrNoSuchRequest)
}

func TestFriendshipsStoreBlockReplacesEdge(t *testing.T) {
	ctx := context.Background()
	db := NewDB()
	users := NewUsersStore(db)
	friends := NewFriendshipsStore(db)
	a, b := mustUser(t, users, "alice"), mustUser(t, users, "bob")

	_, err := friends.CreateRequest(ctx, a.ID, b.ID, t0)
	require.NoError(t, err)

	blocked, err := friends.Block(ctx, b.ID, a.ID, t0)
	require.NoError(t, err)
	assert.Equal(t, b.ID, blocked.RequesterID)

	again, err := friends.Block(ctx, a.ID, b.ID, t0)
	require.NoError(t, err)
	assert.Equal(t, blocked.ID, again.ID, "existing block by the other side is kept")

	_, err = friends.CreateRequest(ctx, a.ID, b.ID, t0)
	require.ErrorIs(t, err, domain.ErrUserBlocked)

	require.ErrorIs(t, friends.Unblock(ctx, a.ID, b.ID), domain.ErrFriendshipNotFound)
	require.NoError(t, friends.Unblock(ctx, b.ID, a.ID))

	_, err = friends.CreateRequest(ctx, a.ID, b.ID, t0)
	require.NoError(t, err)
}

func TestEventsStoreInviteIsIdempotentAndCapped(t *testing.T) {
	ctx := context.Background()
	db := NewDB()
	users := NewUsersStore(db)
	events := NewEventsStore(db)
	host, b, c := mustUser(t, users, "host"), mustUser(t, users, "bob"), mustUser(t, users, "carol")

	seats := 2
	e, err := events.CreateEvent(ctx, host.ID, domain.EventInput{Title: "Game Night", Date: "2030-01-01", Time: "19:00", Location: "home", MaxPlayers: &seats}, "", t0)
	require.NoError(t, err)

	invited, err := events.InviteAttendees(ctx, e.ID, []string{b.ID}, domain.InvitePolicy{}, t0)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, invited)

	invited, err = events.InviteAttendees(ctx, e.ID, []string{b.ID}, domain.InvitePolicy{}, t0)
	require.NoError(t, err)
	assert.Empty(t, invited)

	_, err = events.InviteAttendees(ctx, e.ID, []string{c.ID}, domain.InvitePolicy{}, t0)
	require.ErrorIs(t, err, domain.ErrEventFull)

	declined, err := events.AnswerInvitation(ctx, e.ID, b.ID, domain.AttendeeDeclined, t0)
	require.NoError(t, err)
	assert.Equal(t, domain.AttendeeDeclined, declined.Status)

	invited, err = events.InviteAttendees(ctx, e.ID, []string{c.ID}, domain.InvitePolicy{}, t0)
	require.NoError(t, err, "declined seats are released")
	assert.Equal(t, []string{c.ID}, invited)

	_, err = events.InviteAttendees(ctx, e.ID, []string{"missing"}, domain.InvitePolicy{}, t0)
	require.ErrorIs(t, err, domain.ErrUserNotFound)

	attendees, err := events.ListAttendees(ctx, e.ID)
	require.NoError(t, err)
	assert.Len(t, attendees, 2)
}

func TestDeleteUserCascades(t *testing.T) {
	ctx := context.Background()
	db := NewDB()
	users := NewUsersStore(db)
	friends := NewFriendshipsStore(db)
	events := NewEventsStore(db)
	games := NewGamesStore(db)
	a, b := mustUser(t, users, "alice"), mustUser(t, users, "bob")

	_, err := friends.CreateRequest(ctx, a.ID, b.ID, t0)
	require.NoError(t, err)
	_, err = games.CreateGame(ctx, a.ID, "Catan", domain.GameOwned, "", t0)
	require.NoError(t, err)
	hosted, err := events.CreateEvent(ctx, a.ID, domain.EventInput{Title: "T", Date: "2030-01-01", Time: "19:00", Location: "L"}, "", t0)
	require.NoError(t, err)
	bobs, err := events.CreateEvent(ctx, b.ID, domain.EventInput{Title: "B", Date: "2030-01-02", Time: "19:00", Location: "L"}, "", t0)
	require.NoError(t, err)
	_, err = events.InviteAttendees(ctx, bobs.ID, []string{a.ID}, domain.InvitePolicy{}, t0)
	require.NoError(t, err)

	require.NoError(t, users.DeleteUser(ctx, a.ID))

	_, err = events.GetEvent(ctx, hosted.ID)
	require.ErrorIs(t, err, domain.ErrEventNotFound)
	attendees, err := events.ListAttendees(ctx, bobs.ID)
	require.NoError(t, err)
	assert.Empty(t, attendees)
	incoming, err := friends.ListIncoming(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, incoming)
	list, err := games.ListGames(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.ErrorIs(t, users.DeleteUser(ctx, a.ID), domain.ErrUserNotFound)
}

func TestDeleteGameKeepsCachedTitleOnEvents(t *testing.T) {
	ctx := context.Background()
	db := NewDB()
	users := NewUsersStore(db)
	events := NewEventsStore(db)
	games := NewGamesStore(db)
	a := mustUser(t, users, "alice")

	g, err := games.CreateGame(ctx, a.ID, "Catan", domain.GameOwned, "", t0)
	require.NoError(t, err)
	e, err := events.CreateEvent(ctx, a.ID, domain.EventInput{Title: "T", Date: "2030-01-01", Time: "19:00", Location: "L", GameID: g.ID}, g.Title, t0)
	require.NoError(t, err)

	require.NoError(t, games.DeleteGame(ctx, a.ID, g.ID))

	got, err := events.GetEvent(ctx, e.ID)
	require.NoError(t, err)
	assert.Empty(t, got.GameID)
	assert.Equal(t, "Catan", got.GameTitle)
}

func TestEventsStoreInviteEnforcesPolicy(t *testing.T) {
	ctx := context.Background()
	db := NewDB()
	users := NewUsersStore(db)
	friends := NewFriendshipsStore(db)
	events := NewEventsStore(db)
	host, b, c := mustUser(t, users, "host"), mustUser(t, users, "bob"), mustUser(t, users, "carol")

	e, err := events.CreateEvent(ctx, host.ID, domain.EventInput{Title: "Game Night", Date: "2030-01-01", Time: "19:00", Location: "home"}, "", t0)
	require.NoError(t, err)

	_, err = events.InviteAttendees(ctx, e.ID, []string{b.ID}, domain.InvitePolicy{FriendsOnly: true}, t0)
	require.ErrorIs(t, err, domain.ErrNotFriends)

	req, err := friends.CreateRequest(ctx, host.ID, b.ID, t0)
	require.NoError(t, err)
	_, err = events.InviteAttendees(ctx, e.ID, []string{b.ID}, domain.InvitePolicy{FriendsOnly: true}, t0)
	require.ErrorIs(t, err, domain.ErrNotFriends, "a pending request is not a friendship")

	_, err = friends.Accept(ctx, req.ID, b.ID, t0)
	require.NoError(t, err)
	invited, err := events.InviteAttendees(ctx, e.ID, []string{b.ID}, domain.InvitePolicy{FriendsOnly: true}, t0)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, invited)

	_, err = friends.Block(ctx, c.ID, host.ID, t0)
	require.NoError(t, err)
	_, err = events.InviteAttendees(ctx, e.ID, []string{c.ID}, domain.InvitePolicy{}, t0)
	require.ErrorIs(t, err, domain.ErrUserBlocked, "blocks apply in open mode too")
}

func TestEventsStoreAnswerChecksEventAndBlock(t *testing.T) {
	ctx := context.Background()
	db := NewDB()
	users := NewUsersStore(db)
	friends := NewFriendshipsStore(db)
	events := NewEventsStore(db)
	host, b, c := mustUser(t, users, "host"), mustUser(t, users, "bob"), mustUser(t, users, "carol")

	e, err := events.CreateEvent(ctx, host.ID, domain.EventInput{Title: "Game Night", Date: "2030-01-01", Time: "19:00", Location: "home"}, "", t0)
	require.NoError(t, err)
	_, err = events.InviteAttendees(ctx, e.ID, []string{b.ID, c.ID}, domain.InvitePolicy{}, t0)
	require.NoError(t, err)

	_, err = friends.Block(ctx, host.ID, c.ID, t0)
	require.NoError(t, err)
	_, err = events.AnswerInvitation(ctx, e.ID, c.ID, domain.AttendeeAccepted, t0)
	require.ErrorIs(t, err, domain.ErrUserBlocked)
	declined, err := events.AnswerInvitation(ctx, e.ID, c.ID, domain.AttendeeDeclined, t0)
	require.NoError(t, err, "declining is allowed while blocked")
	require.NotNil(t, declined.RespondedAt)

	ok, err := events.SetEventStatus(ctx, e.ID, domain.EventScheduled, domain.EventCancelled, t0)
	require.NoError(t, err)
	require.True(t, ok)
	_, err = events.AnswerInvitation(ctx, e.ID, b.ID, domain.AttendeeAccepted, t0)
	require.ErrorIs(t, err, domain.ErrEventClosed)

	a, err := events.GetAttendee(ctx, e.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AttendeeInvited, a.Status)

	_, err = events.AnswerInvitation(ctx, e.ID, host.ID, domain.AttendeeAccepted, t0)
	require.ErrorIs(t, err, domain.ErrNotInvited)
}

func TestEventsStoreMarkAttended(t *testing.T) {
	ctx := context.Background()
	db := NewDB()
	users := NewUsersStore(db)
	events := NewEventsStore(db)
	host, b := mustUser(t, users, "host"), mustUser(t, users, "bob")

	e, err := events.CreateEvent(ctx, host.ID, domain.EventInput{Title: "Game Night", Date: "2030-01-01", Time: "19:00", Location: "home"}, "", t0)
	require.NoError(t, err)
	_, err = events.InviteAttendees(ctx, e.ID, []string{b.ID}, domain.InvitePolicy{}, t0)
	require.NoError(t, err)

	_, err = events.MarkAttended(ctx, e.ID, b.ID)
	require.ErrorIs(t, err, domain.ErrInvalidTransition, "only accepted guests can attend")

	_, err = events.AnswerInvitation(ctx, e.ID, b.ID, domain.AttendeeAccepted, t0)
	require.NoError(t, err)
	ok, err := events.SetEventStatus(ctx, e.ID, domain.EventScheduled, domain.EventCancelled, t0)
	require.NoError(t, err)
	require.True(t, ok)
	_, err = events.MarkAttended(ctx, e.ID, b.ID)
	require.ErrorIs(t, err, domain.ErrEventClosed)
}

func TestSessionsStoreRevokeIsScopedToOwner(t *testing.T) {
	ctx := context.Background()
	db := NewDB()
	users := NewUsersStore(db)
	sessions := NewSessionsStore(db)
	a, b := mustUser(t, users, "alice"), mustUser(t, users, "bob")

	jti, err := sessions.CreateSession(ctx, a.ID, t0.Add(time.Hour), "10.0.0.1", "test")
	require.NoError(t, err)

	require.NoError(t, sessions.RevokeSession(ctx, b.ID, jti, t0))
	sess, err := sessions.LookupSession(ctx, jti)
	require.NoError(t, err, "another user cannot revoke the session")
	assert.Equal(t, a.ID, sess.UserID)
	assert.Equal(t, "alice", sess.Username)
	assert.False(t, sess.IsAdmin)

	require.NoError(t, sessions.RevokeSession(ctx, a.ID, jti, t0))
	_, err = sessions.LookupSession(ctx, jti)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNotificationTokensMoveBetweenAccounts(t *testing.T) {
	ctx := context.Background()
	db := NewDB()
	users := NewUsersStore(db)
	tokens := NewNotificationTokensStore(db)
	a, b := mustUser(t, users, "alice"), mustUser(t, users, "bob")

	_, err := tokens.UpsertToken(ctx, a.ID, "device-1", "windows", t0)
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = tokens.UpsertToken(ctx, a.ID, "device-1", "ios", t0)
	require.NoError(t, err)
	moved, err := tokens.UpsertToken(ctx, b.ID, "device-1", "android", t0.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, b.ID, moved.UserID)

	aliceTokens, err := tokens.ListTokens(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, aliceTokens)

	require.NoError(t, tokens.DeleteToken(ctx, a.ID, "device-1"))
	bobTokens, err := tokens.ListTokens(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, bobTokens, 1, "only the current holder can delete the token")
	assert.Equal(t, "android", bobTokens[0].Platform)
}

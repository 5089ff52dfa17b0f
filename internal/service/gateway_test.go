package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GameNightwebserver/internal/domain"
)

type recordingNotifier struct {
	requests []FriendRequestNotification
	invites  []EventInviteNotification
	err      error
}

func (n *recordingNotifier) NotifyFriendRequest(_ context.Context, in FriendRequestNotification) error {
	n.requests = append(n.requests, in)
	return n.err
}

func (n *recordingNotifier) NotifyEventInvite(_ context.Context, in EventInviteNotification) error {
	n.invites = append(n.invites, in)
	return n.err
}

func TestGatewayNotifiesOnRequestAndInvite(t *testing.T) {
	app := newTestApp(t, true)
	notifier := &recordingNotifier{}
	app.gateway.Notifier = notifier
	ctx := context.Background()
	alice, bob := app.register(t, "alice"), app.register(t, "bob")

	edgeID := app.befriend(t, alice, bob)
	require.Len(t, notifier.requests, 1)
	assert.Equal(t, FriendRequestNotification{RequestID: edgeID, RequesterID: alice.ID, AddresseeID: bob.ID}, notifier.requests[0])

	e := app.gameNight(t, alice)
	_, err := app.gateway.InviteAttendees(ctx, alice.ID, e.ID, []string{bob.ID})
	require.NoError(t, err)
	require.Len(t, notifier.invites, 1)
	assert.Equal(t, []string{bob.ID}, notifier.invites[0].InviteeIDs)
	assert.Equal(t, "Game Night", notifier.invites[0].EventTitle)

	_, err = app.gateway.InviteAttendees(ctx, alice.ID, e.ID, []string{bob.ID})
	require.NoError(t, err)
	assert.Len(t, notifier.invites, 1, "no notification when nobody new was invited")
}

func TestGatewayNotificationFailureDoesNotFailMutation(t *testing.T) {
	app := newTestApp(t, false)
	app.gateway.Notifier = &recordingNotifier{err: errors.New("push down")}
	ctx := context.Background()
	alice, bob := app.register(t, "alice"), app.register(t, "bob")

	_, err := app.gateway.RequestFriendship(ctx, alice.ID, "bob")
	require.NoError(t, err)

	e := app.gameNight(t, alice)
	n, err := app.gateway.InviteAttendees(ctx, alice.ID, e.ID, []string{bob.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestGatewayRejectedRequestsAreNotNotified(t *testing.T) {
	app := newTestApp(t, true)
	notifier := &recordingNotifier{}
	app.gateway.Notifier = notifier
	alice, bob := app.register(t, "alice"), app.register(t, "bob")

	_, err := app.gateway.Block(context.Background(), bob.ID, "alice")
	require.NoError(t, err)
	_, err = app.gateway.RequestFriendship(context.Background(), alice.ID, "bob")
	require.ErrorIs(t, err, domain.ErrUserBlocked)
	assert.Empty(t, notifier.requests)
}

func TestInviteTargets(t *testing.T) {
	got := InviteTargets("host", []string{" a ", "b", "a", "host", "", "c"})
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

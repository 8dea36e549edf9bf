package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"notely.app/notelyserver/internal/model"
	"notely.app/notelyserver/internal/repository"
	"notely.app/notelyserver/pkg/apperror"
)

type testEnv struct {
	users    *fakeUserRepo
	notifs   *fakeNotificationRepo
	chats    *fakeChatRepo
	gateway  *fakeGateway
	notifier NotificationService
	friends  FriendService
}

func newTestEnv() *testEnv {
	users := newFakeUserRepo()
	notifs := newFakeNotificationRepo()
	chats := newFakeChatRepo()
	gateway := &fakeGateway{}
	tx := &fakeTxManager{stores: repository.Stores{
		Users:         users,
		Notifications: notifs,
		Chats:         chats,
	}}
	notifier := NewNotificationService(users, notifs, gateway)

	return &testEnv{
		users:    users,
		notifs:   notifs,
		chats:    chats,
		gateway:  gateway,
		notifier: notifier,
		friends:  NewFriendService(users, chats, notifs, notifier, tx),
	}
}

func (e *testEnv) addUser(t *testing.T, nickname string) *model.User {
	t.Helper()
	return e.users.put(&model.User{
		ID:       uuid.New(),
		Nickname: nickname,
		Email:    nickname + "@example.com",
	})
}

func (e *testEnv) notificationsFor(t *testing.T, userID uuid.UUID) []model.Notification {
	t.Helper()
	out, err := e.notifs.ListByRecipient(context.Background(), userID, 100, 0)
	require.NoError(t, err)
	return out
}

func TestSendFriendRequest(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	alice := env.addUser(t, "alice")
	bob := env.addUser(t, "bob")

	require.NoError(t, env.friends.SendFriendRequest(ctx, alice.ID, bob.ID))

	assert.True(t, alice.PendingOutgoing.Contains(bob.ID))
	assert.False(t, alice.Friends.Contains(bob.ID), "request alone must not create a friendship")

	got := env.notificationsFor(t, bob.ID)
	require.Len(t, got, 1)
	assert.Equal(t, model.NotificationTypeFriendRequest, got[0].Type)
	assert.Equal(t, alice.ID, got[0].SenderID)
	assert.Equal(t, model.NotificationUnread, got[0].Status)

	pushed := env.gateway.recordsFor("user:" + bob.ID.String())
	require.Len(t, pushed, 1)
	assert.Equal(t, "notification-created", pushed[0].Event)
}

func TestSendFriendRequestTwiceConflicts(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	alice := env.addUser(t, "alice")
	bob := env.addUser(t, "bob")

	require.NoError(t, env.friends.SendFriendRequest(ctx, alice.ID, bob.ID))
	err := env.friends.SendFriendRequest(ctx, alice.ID, bob.ID)

	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.Len(t, env.notificationsFor(t, bob.ID), 1, "duplicate request must not duplicate the notification")
	assert.Len(t, []uuid.UUID(alice.PendingOutgoing), 1)
}

func TestSendFriendRequestToFriendConflicts(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	alice := env.addUser(t, "alice")
	bob := env.addUser(t, "bob")
	alice.Friends.Add(bob.ID)
	bob.Friends.Add(alice.ID)

	err := env.friends.SendFriendRequest(ctx, alice.ID, bob.ID)

	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.False(t, alice.PendingOutgoing.Contains(bob.ID))
}

func TestSendFriendRequestUnknownTarget(t *testing.T) {
	env := newTestEnv()
	alice := env.addUser(t, "alice")

	err := env.friends.SendFriendRequest(context.Background(), alice.ID, uuid.New())

	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Empty(t, []uuid.UUID(alice.PendingOutgoing))
}

func TestCancelFriendRequest(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	alice := env.addUser(t, "alice")
	bob := env.addUser(t, "bob")

	require.NoError(t, env.friends.SendFriendRequest(ctx, alice.ID, bob.ID))
	require.NoError(t, env.friends.CancelFriendRequest(ctx, alice.ID, bob.ID))

	assert.False(t, alice.PendingOutgoing.Contains(bob.ID))

	err := env.friends.CancelFriendRequest(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, apperror.ErrConflict, "nothing left to cancel")
}

func TestAcceptFriendRequest(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	alice := env.addUser(t, "alice")
	bob := env.addUser(t, "bob")

	require.NoError(t, env.friends.SendFriendRequest(ctx, alice.ID, bob.ID))
	request := env.notificationsFor(t, bob.ID)[0]

	require.NoError(t, env.friends.AcceptFriendRequest(ctx, bob.ID, request.ID))

	// Friendship is symmetric and the pending entry is consumed.
	assert.True(t, alice.Friends.Contains(bob.ID))
	assert.True(t, bob.Friends.Contains(alice.ID))
	assert.False(t, alice.PendingOutgoing.Contains(bob.ID))

	// The request notification is gone; the sender got a confirmation.
	assert.Empty(t, env.notificationsFor(t, bob.ID))
	confirmations := env.notificationsFor(t, alice.ID)
	require.Len(t, confirmations, 1)
	assert.Equal(t, model.NotificationTypeMessage, confirmations[0].Type)
	assert.Equal(t, bob.ID, confirmations[0].SenderID)

	// The pairwise chat is provisioned eagerly.
	assert.Equal(t, 1, env.chats.twoPartyChatCount(alice.ID, bob.ID))
}

func TestAcceptFriendRequestNotRecipient(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	alice := env.addUser(t, "alice")
	bob := env.addUser(t, "bob")
	mallory := env.addUser(t, "mallory")

	require.NoError(t, env.friends.SendFriendRequest(ctx, alice.ID, bob.ID))
	request := env.notificationsFor(t, bob.ID)[0]

	err := env.friends.AcceptFriendRequest(ctx, mallory.ID, request.ID)

	assert.ErrorIs(t, err, apperror.ErrForbidden)
	assert.False(t, alice.Friends.Contains(mallory.ID))
	assert.Len(t, env.notificationsFor(t, bob.ID), 1, "request must survive the rejected accept")
}

func TestAcceptFriendRequestUnknownNotification(t *testing.T) {
	env := newTestEnv()
	bob := env.addUser(t, "bob")

	err := env.friends.AcceptFriendRequest(context.Background(), bob.ID, uuid.New())

	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDismissFriendRequest(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	alice := env.addUser(t, "alice")
	bob := env.addUser(t, "bob")

	require.NoError(t, env.friends.SendFriendRequest(ctx, alice.ID, bob.ID))
	request := env.notificationsFor(t, bob.ID)[0]

	require.NoError(t, env.friends.DismissFriendRequest(ctx, bob.ID, request.ID))

	assert.False(t, alice.Friends.Contains(bob.ID))
	assert.False(t, bob.Friends.Contains(alice.ID))
	assert.False(t, alice.PendingOutgoing.Contains(bob.ID))
	assert.Empty(t, env.notificationsFor(t, bob.ID))
	assert.Equal(t, 0, env.chats.twoPartyChatCount(alice.ID, bob.ID), "dismiss must not provision a chat")

	dismissed := env.notificationsFor(t, alice.ID)
	require.Len(t, dismissed, 1)
	assert.Contains(t, dismissed[0].Body, "dismissed")
}

func TestListFriendsProvisionsChatOnce(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	alice := env.addUser(t, "alice")
	bob := env.addUser(t, "bob")
	alice.Friends.Add(bob.ID)
	bob.Friends.Add(alice.ID)

	first, err := env.friends.ListFriends(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, bob.ID, first[0].ID)
	assert.NotEqual(t, uuid.Nil, first[0].Chat.ID)

	// A second listing, from either side, reuses the same chat.
	second, err := env.friends.ListFriends(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].Chat.ID, second[0].Chat.ID)
	assert.Equal(t, 1, env.chats.twoPartyChatCount(alice.ID, bob.ID))
}

func TestListFriendsEmpty(t *testing.T) {
	env := newTestEnv()
	alice := env.addUser(t, "alice")

	got, err := env.friends.ListFriends(context.Background(), alice.ID)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBlockAndUnblock(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	alice := env.addUser(t, "alice")
	bob := env.addUser(t, "bob")
	alice.Friends.Add(bob.ID)
	bob.Friends.Add(alice.ID)

	require.NoError(t, env.friends.BlockUser(ctx, alice.ID, bob.ID))
	assert.True(t, alice.Blocked.Contains(bob.ID))
	assert.True(t, alice.Friends.Contains(bob.ID), "blocking leaves the friendship in place")

	err := env.friends.BlockUser(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.Len(t, []uuid.UUID(alice.Blocked), 1)

	require.NoError(t, env.friends.UnblockUser(ctx, alice.ID, bob.ID))
	assert.False(t, alice.Blocked.Contains(bob.ID))

	err = env.friends.UnblockUser(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestRemoveFriend(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	alice := env.addUser(t, "alice")
	bob := env.addUser(t, "bob")
	alice.Friends.Add(bob.ID)
	bob.Friends.Add(alice.ID)

	require.NoError(t, env.friends.RemoveFriend(ctx, alice.ID, bob.ID))

	assert.False(t, alice.Friends.Contains(bob.ID))
	assert.False(t, bob.Friends.Contains(alice.ID), "removal is symmetric")

	err := env.friends.RemoveFriend(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestRemoveFriendUnknownTarget(t *testing.T) {
	env := newTestEnv()
	alice := env.addUser(t, "alice")

	err := env.friends.RemoveFriend(context.Background(), alice.ID, uuid.New())

	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

// A full request lifecycle never leaves the pair in two relation states at
// once: pending and friends are mutually exclusive throughout.
func TestRequestLifecycleStaysExclusive(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	alice := env.addUser(t, "alice")
	bob := env.addUser(t, "bob")

	require.NoError(t, env.friends.SendFriendRequest(ctx, alice.ID, bob.ID))
	assert.True(t, alice.PendingOutgoing.Contains(bob.ID))
	assert.False(t, alice.Friends.Contains(bob.ID))

	request := env.notificationsFor(t, bob.ID)[0]
	require.NoError(t, env.friends.AcceptFriendRequest(ctx, bob.ID, request.ID))
	assert.False(t, alice.PendingOutgoing.Contains(bob.ID))
	assert.True(t, alice.Friends.Contains(bob.ID))
}

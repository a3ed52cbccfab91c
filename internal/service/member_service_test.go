package service

import (
	"context"
	"errors"
	"testing"

	"github.com/peertalk/chat-service/internal/chat"
	"github.com/peertalk/chat-service/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestJoin_RejectsThirdParty(t *testing.T) {
	e := newTestEnv()

	err := e.members.Join(context.Background(), e.convID, "carol")
	require.ErrorIs(t, err, domain.ErrNotParticipant)
	require.False(t, e.state.IsRoomMember(e.convID, "carol"), "refused join must not mutate membership")
}

func TestJoin_UnknownConversation(t *testing.T) {
	e := newTestEnv()

	err := e.members.Join(context.Background(), "nope", "alice")
	require.ErrorIs(t, err, domain.ErrConversationNotFound)
}

func TestJoin_ImpliesMarkRead(t *testing.T) {
	e := newTestEnv()
	aliceConn := e.connect("alice")
	bobConn := e.connect("bob")

	_, err := e.messages.Send(context.Background(), e.convID, "alice", "bob", "Hello")
	require.NoError(t, err)

	err = e.members.Join(context.Background(), e.convID, "bob")
	require.NoError(t, err)
	require.True(t, e.state.IsRoomMember(e.convID, "bob"))

	// joining is viewing: alice gets the receipt, bob's total drops
	read, ok := aliceConn.lastOfType(chat.TypeMessagesRead)
	require.True(t, ok)
	require.Equal(t, int64(1), read.Payload.(chat.MessagesReadPayload).ReadCount)

	unread, ok := bobConn.lastOfType(chat.TypeUnreadCountUpdated)
	require.True(t, ok)
	require.Equal(t, int64(0), unread.Payload.(chat.UnreadCountPayload).Count)
}

func TestJoin_StoreFailureLeavesMembershipUnmutated(t *testing.T) {
	e := newTestEnv()
	e.msgs.markReadErr = errors.New("store down")

	err := e.members.Join(context.Background(), e.convID, "bob")
	require.Error(t, err)
	require.False(t, e.state.IsRoomMember(e.convID, "bob"),
		"a failed join must not leave the identity receiving room traffic")
}

func TestJoin_Idempotent(t *testing.T) {
	e := newTestEnv()

	require.NoError(t, e.members.Join(context.Background(), e.convID, "alice"))
	require.NoError(t, e.members.Join(context.Background(), e.convID, "alice"))
	require.Equal(t, []string{"alice"}, e.state.RoomMembers(e.convID))
}

func TestLeave_ClearsTypingForRemainingMember(t *testing.T) {
	e := newTestEnv()
	e.connect("alice")
	bobConn := e.connect("bob")
	require.NoError(t, e.members.Join(context.Background(), e.convID, "alice"))
	require.NoError(t, e.members.Join(context.Background(), e.convID, "bob"))

	e.state.StartTyping(e.convID, "alice")

	require.NoError(t, e.members.Leave(context.Background(), e.convID, "alice"))

	require.False(t, e.state.IsRoomMember(e.convID, "alice"))
	require.False(t, e.state.IsTyping(e.convID, "alice"))
	require.Contains(t, bobConn.types(), chat.TypeUserStoppedTyping,
		"a departing typist's indicator must not linger")
}

func TestLeave_UnjoinedIsNoop(t *testing.T) {
	e := newTestEnv()

	require.NoError(t, e.members.Leave(context.Background(), e.convID, "alice"))
	require.NoError(t, e.members.Leave(context.Background(), "nope", "alice"))
}

func TestConversation_CreateIsUniquePerPair(t *testing.T) {
	e := newTestEnv()
	svc := NewConversationService(e.convs)
	ctx := context.Background()

	c1, err := svc.Create(ctx, "t1", "alice", "bob")
	require.NoError(t, err)
	require.Equal(t, e.convID, c1.ID, "pair already has its conversation")

	_, err = svc.Create(ctx, "t1", "alice", "alice")
	require.ErrorIs(t, err, domain.ErrSelfConversation)
}

func TestConversation_DeleteRequiresParticipant(t *testing.T) {
	e := newTestEnv()
	svc := NewConversationService(e.convs)
	ctx := context.Background()

	require.ErrorIs(t, svc.Delete(ctx, e.convID, "carol"), domain.ErrNotParticipant)
	require.NoError(t, svc.Delete(ctx, e.convID, "alice"))
	require.ErrorIs(t, svc.Delete(ctx, e.convID, "alice"), domain.ErrConversationNotFound)
}

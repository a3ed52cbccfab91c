package service

import (
	"context"
	"errors"
	"testing"

	"github.com/peertalk/chat-service/internal/chat"
	"github.com/peertalk/chat-service/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestSend_RejectsBlankText(t *testing.T) {
	e := newTestEnv()

	for _, text := range []string{"", "   ", "\n\t "} {
		_, err := e.messages.Send(context.Background(), e.convID, "alice", "bob", text)
		require.ErrorIs(t, err, domain.ErrEmptyMessage)
	}
	require.Empty(t, e.msgs.msgs, "nothing may be persisted")
}

func TestSend_RejectsOutsiders(t *testing.T) {
	e := newTestEnv()

	_, err := e.messages.Send(context.Background(), e.convID, "carol", "bob", "hi")
	require.ErrorIs(t, err, domain.ErrNotParticipant)

	_, err = e.messages.Send(context.Background(), e.convID, "alice", "carol", "hi")
	require.ErrorIs(t, err, domain.ErrBadReceiver)

	_, err = e.messages.Send(context.Background(), "nope", "alice", "bob", "hi")
	require.ErrorIs(t, err, domain.ErrConversationNotFound)
}

func TestSend_StoreFailureAbortsBeforeBroadcast(t *testing.T) {
	e := newTestEnv()
	aliceConn := e.connect("alice")
	bobConn := e.connect("bob")
	e.state.JoinRoom(e.convID, "alice")
	e.state.JoinRoom(e.convID, "bob")

	e.msgs.createErr = errors.New("store down")

	_, err := e.messages.Send(context.Background(), e.convID, "alice", "bob", "hello")
	require.Error(t, err)
	require.Empty(t, aliceConn.types())
	require.Empty(t, bobConn.types())
}

// The scenario from the drawing board: alice on two devices, both
// participants viewing, alice sends "Hello".
func TestSend_FanOut(t *testing.T) {
	e := newTestEnv()
	aTab1 := e.connect("alice")
	aTab2 := e.connect("alice")
	bobConn := e.connect("bob")
	e.state.JoinRoom(e.convID, "alice")
	e.state.JoinRoom(e.convID, "bob")

	msg, err := e.messages.Send(context.Background(), e.convID, "alice", "bob", "Hello")
	require.NoError(t, err)
	require.False(t, msg.IsRead)
	require.NotEmpty(t, msg.ID)

	// every viewing device sees the room fan-out
	require.Contains(t, aTab1.types(), chat.TypeNewMessage)
	require.Contains(t, aTab2.types(), chat.TypeNewMessage)
	require.Contains(t, bobConn.types(), chat.TypeNewMessage)

	// only the receiver gets the personal-channel notification
	notif, ok := bobConn.lastOfType(chat.TypeNewMessageNotification)
	require.True(t, ok)
	payload := notif.Payload.(chat.NewMessageNotificationPayload)
	require.Equal(t, "Hello", payload.Message.Text)
	require.Equal(t, "Alice", payload.Sender.DisplayName)
	require.NotContains(t, aTab1.types(), chat.TypeNewMessageNotification)

	// and the receiver's unread total is pushed, recomputed from the store
	unread, ok := bobConn.lastOfType(chat.TypeUnreadCountUpdated)
	require.True(t, ok)
	require.Equal(t, int64(1), unread.Payload.(chat.UnreadCountPayload).Count)
}

func TestSend_NotificationReachesReceiverOutsideRoom(t *testing.T) {
	e := newTestEnv()
	bobConn := e.connect("bob")
	// bob is connected but not viewing the conversation

	_, err := e.messages.Send(context.Background(), e.convID, "alice", "bob", "ping")
	require.NoError(t, err)

	require.NotContains(t, bobConn.types(), chat.TypeNewMessage)
	require.Contains(t, bobConn.types(), chat.TypeNewMessageNotification)
}

func TestSend_StopsSenderTyping(t *testing.T) {
	e := newTestEnv()
	e.connect("alice")
	bobConn := e.connect("bob")
	e.state.JoinRoom(e.convID, "alice")
	e.state.JoinRoom(e.convID, "bob")

	e.state.StartTyping(e.convID, "alice")
	require.True(t, e.state.IsTyping(e.convID, "alice"))

	_, err := e.messages.Send(context.Background(), e.convID, "alice", "bob", "done typing")
	require.NoError(t, err)

	require.False(t, e.state.IsTyping(e.convID, "alice"))
	types := bobConn.types()
	require.Contains(t, types, chat.TypeUserStoppedTyping)
	// the stop lands before the message broadcast
	require.Less(t, indexOf(types, chat.TypeUserStoppedTyping), indexOf(types, chat.TypeNewMessage))
}

func TestSend_BroadcastOrderMatchesPersistenceOrder(t *testing.T) {
	e := newTestEnv()
	bobConn := e.connect("bob")
	e.state.JoinRoom(e.convID, "bob")

	m1, err := e.messages.Send(context.Background(), e.convID, "alice", "bob", "first")
	require.NoError(t, err)
	m2, err := e.messages.Send(context.Background(), e.convID, "alice", "bob", "second")
	require.NoError(t, err)

	var seen []string
	for _, ev := range bobConn.recorded() {
		if ev.Type == chat.TypeNewMessage {
			seen = append(seen, ev.Payload.(chat.NewMessagePayload).Message.ID)
		}
	}
	require.Equal(t, []string{m1.ID, m2.ID}, seen)
}

func TestHistory_RequiresParticipant(t *testing.T) {
	e := newTestEnv()

	_, err := e.messages.Send(context.Background(), e.convID, "alice", "bob", "hi")
	require.NoError(t, err)

	items, _, err := e.messages.History(context.Background(), e.convID, "bob", "", 10)
	require.NoError(t, err)
	require.Len(t, items, 1)

	_, _, err = e.messages.History(context.Background(), e.convID, "carol", "", 10)
	require.ErrorIs(t, err, domain.ErrNotParticipant)
}

func indexOf(ss []string, want string) int {
	for i, s := range ss {
		if s == want {
			return i
		}
	}
	return -1
}

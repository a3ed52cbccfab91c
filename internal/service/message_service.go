package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/peertalk/chat-service/internal/chat"
	"github.com/peertalk/chat-service/internal/domain"
)

// MessageService is the dispatcher: it validates and persists a new
// message, then fans it out. Persistence is the unit of atomicity — a
// store failure aborts before any broadcast, while a failure in the
// downstream notifications never rolls the message back.
type MessageService struct {
	convs  ConversationStore
	msgs   MessageStore
	idents IdentityStore
	state  *chat.State
	unread *UnreadService
}

func NewMessageService(convs ConversationStore, msgs MessageStore, idents IdentityStore, state *chat.State, unread *UnreadService) *MessageService {
	return &MessageService{convs: convs, msgs: msgs, idents: idents, state: state, unread: unread}
}

func (s *MessageService) Send(ctx context.Context, conversationID, senderID, receiverID, text string) (*domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyMessage
	}

	conv, err := s.convs.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(senderID) {
		return nil, domain.ErrNotParticipant
	}
	if receiverID != conv.OtherParticipant(senderID) {
		return nil, domain.ErrBadReceiver
	}

	msg := &domain.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Text:           text,
	}
	if err := s.msgs.Create(ctx, msg); err != nil {
		return nil, err
	}

	// the send itself is a typing stop for the sender
	s.state.StopTyping(conversationID, senderID)

	// room fan-out: everyone currently viewing sees it immediately
	s.state.BroadcastRoom(conversationID, chat.Event{
		Type:    chat.TypeNewMessage,
		Payload: chat.NewMessagePayload{ConversationID: conversationID, Message: *msg},
	})

	// personal channel: reaches the receiver even outside the room
	s.state.SendTo(receiverID, chat.Event{
		Type: chat.TypeNewMessageNotification,
		Payload: chat.NewMessageNotificationPayload{
			ConversationID: conversationID,
			Message:        *msg,
			Sender:         s.senderInfo(ctx, senderID),
		},
	})

	s.unread.Push(ctx, receiverID)

	return msg, nil
}

// History pages through the conversation for a participant.
func (s *MessageService) History(ctx context.Context, conversationID, identityID, after string, limit int) ([]domain.Message, string, error) {
	conv, err := s.convs.Get(ctx, conversationID)
	if err != nil {
		return nil, "", err
	}
	if !conv.HasParticipant(identityID) {
		return nil, "", domain.ErrNotParticipant
	}
	return s.msgs.List(ctx, conversationID, after, limit)
}

// senderInfo tolerates a profile lookup failure: the committed message
// is not held hostage by notification metadata.
func (s *MessageService) senderInfo(ctx context.Context, senderID string) chat.SenderInfo {
	ident, err := s.idents.Get(ctx, senderID)
	if err != nil {
		slog.Warn("sender profile lookup failed", "sender", senderID, "err", err)
		return chat.SenderInfo{ID: senderID}
	}
	return chat.SenderInfo{
		ID:          ident.ID,
		DisplayName: ident.DisplayName,
		AvatarURL:   ident.AvatarURL,
	}
}

package service

import (
	"context"
	"time"

	"github.com/peertalk/chat-service/internal/chat"
	"github.com/peertalk/chat-service/internal/domain"
)

// ReceiptService marks conversation messages as read and tells both
// sides about it: the other participant gets a delivery confirmation,
// the reader gets a fresh unread total.
type ReceiptService struct {
	convs  ConversationStore
	msgs   MessageStore
	state  *chat.State
	unread *UnreadService
}

func NewReceiptService(convs ConversationStore, msgs MessageStore, state *chat.State, unread *UnreadService) *ReceiptService {
	return &ReceiptService{convs: convs, msgs: msgs, state: state, unread: unread}
}

// MarkRead flips every unread message addressed to readerID in the
// conversation and returns how many changed. Idempotent: a second call
// with nothing unread returns 0 and still pushes the unchanged total.
func (s *ReceiptService) MarkRead(ctx context.Context, conversationID, readerID string) (int64, error) {
	conv, err := s.convs.Get(ctx, conversationID)
	if err != nil {
		return 0, err
	}
	if !conv.HasParticipant(readerID) {
		return 0, domain.ErrNotParticipant
	}

	n, err := s.msgs.MarkRead(ctx, conversationID, readerID, time.Now())
	if err != nil {
		return 0, err
	}

	s.state.SendTo(conv.OtherParticipant(readerID), chat.Event{
		Type: chat.TypeMessagesRead,
		Payload: chat.MessagesReadPayload{
			ConversationID: conversationID,
			ReaderID:       readerID,
			ReadCount:      n,
		},
	})
	s.unread.Push(ctx, readerID)

	return n, nil
}

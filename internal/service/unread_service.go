package service

import (
	"context"
	"log/slog"

	"github.com/peertalk/chat-service/internal/chat"
)

// UnreadService reports per-identity unread totals. The number is
// always recomputed from the store; clients and server never keep a
// counter that could drift across devices.
type UnreadService struct {
	msgs  MessageStore
	state *chat.State
}

func NewUnreadService(msgs MessageStore, state *chat.State) *UnreadService {
	return &UnreadService{msgs: msgs, state: state}
}

func (s *UnreadService) Count(ctx context.Context, identityID string) (int64, error) {
	return s.msgs.CountUnread(ctx, identityID)
}

// Push recomputes and delivers the total to the identity's personal
// channel. Failures here never roll back the operation that triggered
// the push; they are logged and the client pulls later.
func (s *UnreadService) Push(ctx context.Context, identityID string) {
	n, err := s.msgs.CountUnread(ctx, identityID)
	if err != nil {
		slog.Warn("unread recompute failed", "identity", identityID, "err", err)
		return
	}
	s.state.SendTo(identityID, chat.Event{
		Type:    chat.TypeUnreadCountUpdated,
		Payload: chat.UnreadCountPayload{Count: n},
	})
}

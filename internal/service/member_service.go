package service

import (
	"context"

	"github.com/peertalk/chat-service/internal/chat"
	"github.com/peertalk/chat-service/internal/domain"
)

// MemberService gates which identities may view which conversation.
// Membership itself is ephemeral runtime state; the authorization
// check runs against the conversation record in the store.
type MemberService struct {
	convs    ConversationStore
	state    *chat.State
	receipts *ReceiptService
}

func NewMemberService(convs ConversationStore, state *chat.State, receipts *ReceiptService) *MemberService {
	return &MemberService{convs: convs, state: state, receipts: receipts}
}

// Join adds the identity to the conversation's room. Only the two
// participants may enter. Joining implies viewing, so pending messages
// addressed to the joiner are marked read as a side effect.
func (s *MemberService) Join(ctx context.Context, conversationID, identityID string) error {
	conv, err := s.convs.Get(ctx, conversationID)
	if err != nil {
		return err
	}
	if !conv.HasParticipant(identityID) {
		return domain.ErrNotParticipant
	}

	// receipts run before the membership mutation: a store failure must
	// leave no room state behind
	if _, err := s.receipts.MarkRead(ctx, conversationID, identityID); err != nil {
		return err
	}

	s.state.JoinRoom(conversationID, identityID)
	return nil
}

// Leave removes membership and clears the leaver's typing entry so its
// indicator cannot linger for the remaining member. Idempotent.
func (s *MemberService) Leave(ctx context.Context, conversationID, identityID string) error {
	s.state.LeaveRoom(conversationID, identityID)
	s.state.StopTyping(conversationID, identityID)
	return nil
}

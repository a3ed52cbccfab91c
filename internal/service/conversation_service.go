package service

import (
	"context"

	"github.com/peertalk/chat-service/internal/domain"
)

// ConversationService owns the lifecycle of conversation records. The
// store enforces that one conversation exists per participant pair.
type ConversationService struct {
	convs ConversationStore
}

func NewConversationService(convs ConversationStore) *ConversationService {
	return &ConversationService{convs: convs}
}

func (s *ConversationService) Create(ctx context.Context, tenantID, initiatorID, counterpartID string) (*domain.Conversation, error) {
	if initiatorID == counterpartID {
		return nil, domain.ErrSelfConversation
	}
	return s.convs.Create(ctx, tenantID, initiatorID, counterpartID)
}

func (s *ConversationService) Get(ctx context.Context, id, identityID string) (*domain.Conversation, error) {
	conv, err := s.convs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(identityID) {
		return nil, domain.ErrNotParticipant
	}
	return conv, nil
}

func (s *ConversationService) Delete(ctx context.Context, id, identityID string) error {
	conv, err := s.convs.Get(ctx, id)
	if err != nil {
		return err
	}
	if !conv.HasParticipant(identityID) {
		return domain.ErrNotParticipant
	}
	return s.convs.Delete(ctx, id)
}

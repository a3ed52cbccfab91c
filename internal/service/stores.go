package service

import (
	"context"
	"time"

	"github.com/peertalk/chat-service/internal/domain"
)

// Narrow views of the persistent store. internal/postgres implements
// them; tests substitute in-memory fakes.

type ConversationStore interface {
	Create(ctx context.Context, tenantID, initiatorID, counterpartID string) (*domain.Conversation, error)
	Get(ctx context.Context, id string) (*domain.Conversation, error)
	Delete(ctx context.Context, id string) error
}

type MessageStore interface {
	Create(ctx context.Context, m *domain.Message) error
	MarkRead(ctx context.Context, conversationID, readerID string, at time.Time) (int64, error)
	CountUnread(ctx context.Context, identityID string) (int64, error)
	List(ctx context.Context, conversationID, after string, limit int) ([]domain.Message, string, error)
}

type IdentityStore interface {
	Get(ctx context.Context, id string) (*domain.Identity, error)
}

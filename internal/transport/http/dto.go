package http

import (
	"time"

	"github.com/peertalk/chat-service/internal/domain"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type CreateConversationRequest struct {
	CounterpartID string `json:"counterpart_id"`
}

type ConversationItem struct {
	ID            string     `json:"id"`
	TenantID      string     `json:"tenant_id"`
	InitiatorID   string     `json:"initiator_id"`
	CounterpartID string     `json:"counterpart_id"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func toConversationItem(c *domain.Conversation) ConversationItem {
	return ConversationItem{
		ID:            c.ID,
		TenantID:      c.TenantID,
		InitiatorID:   c.InitiatorID,
		CounterpartID: c.CounterpartID,
		LastMessageAt: c.LastMessageAt,
		CreatedAt:     c.CreatedAt,
	}
}

type MessagesResponse struct {
	Items      []domain.Message `json:"items"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

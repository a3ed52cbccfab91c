package ws

import "encoding/json"

// inbound envelope; payload stays raw until the type is known
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type conversationRef struct {
	ConversationID string `json:"conversation_id"`
}

type sendMessageRequest struct {
	ConversationID string `json:"conversation_id"`
	ReceiverID     string `json:"receiver_id"`
	MessageText    string `json:"message_text"`
}

type onlineStatusRequest struct {
	UserID string `json:"user_id"`
}

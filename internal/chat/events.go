package chat

import "github.com/peertalk/chat-service/internal/domain"

// Wire event names. Client and server exchange a fixed
// {type, payload} envelope; these names are part of the contract.
const (
	// client -> server
	TypeJoinConversation  = "join_conversation"
	TypeLeaveConversation = "leave_conversation"
	TypeSendMessage       = "send_message"
	TypeMarkAsRead        = "mark_as_read"
	TypeTyping            = "typing"
	TypeStopTyping        = "stop_typing"
	TypeCheckOnlineStatus = "check_online_status"
	TypeGetUnreadCount    = "get_unread_count"

	// server -> client
	TypeJoinedConversation     = "joined_conversation"
	TypeLeftConversation       = "left_conversation"
	TypeNewMessage             = "new_message"
	TypeNewMessageNotification = "new_message_notification"
	TypeMessagesRead           = "messages_read"
	TypeUserTyping             = "user_typing"
	TypeUserStoppedTyping      = "user_stopped_typing"
	TypeUserOnlineStatus       = "user_online_status"
	TypeUserOffline            = "user_offline"
	TypeUnreadCountUpdated     = "unread_count_updated"
	TypeError                  = "error"
)

type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type AckPayload struct {
	ConversationID string `json:"conversation_id"`
}

type NewMessagePayload struct {
	ConversationID string         `json:"conversation_id"`
	Message        domain.Message `json:"message"`
}

// SenderInfo is the display metadata carried on personal-channel
// notifications so clients can render alerts without a profile fetch.
type SenderInfo struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
}

type NewMessageNotificationPayload struct {
	ConversationID string         `json:"conversation_id"`
	Message        domain.Message `json:"message"`
	Sender         SenderInfo     `json:"sender"`
}

type MessagesReadPayload struct {
	ConversationID string `json:"conversation_id"`
	ReaderID       string `json:"reader_id"`
	ReadCount      int64  `json:"read_count"`
}

type TypingPayload struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
}

type OnlineStatusPayload struct {
	UserID string `json:"user_id"`
	Online bool   `json:"online"`
}

type UnreadCountPayload struct {
	Count int64 `json:"count"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

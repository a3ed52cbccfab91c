package domain

import "errors"

var (
	// auth
	ErrMissingToken = errors.New("missing access token")
	ErrInvalidToken = errors.New("invalid or expired token")

	// authorization
	ErrNotParticipant = errors.New("identity is not a participant of the conversation")

	// validation
	ErrEmptyMessage     = errors.New("message text is empty")
	ErrBadReceiver      = errors.New("receiver is not the other participant")
	ErrSelfConversation = errors.New("conversation requires two distinct participants")

	// not found
	ErrConversationNotFound = errors.New("conversation not found")
	ErrIdentityNotFound     = errors.New("identity not found")
)

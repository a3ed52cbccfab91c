package postgres

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidCursor flags a page token this server did not mint.
var ErrInvalidCursor = errors.New("invalid cursor")

// messageCursor pins a keyset position in a conversation's history:
// the ordering columns of the last message on the page just served.
// It travels to clients as an opaque base64 token so the column choice
// stays an implementation detail.
type messageCursor struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
}

func (c messageCursor) token() string {
	raw, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(raw)
}

// parseMessageCursor accepts the empty token as "first page".
func parseMessageCursor(token string) (*messageCursor, error) {
	if token == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	var c messageCursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	return &c, nil
}

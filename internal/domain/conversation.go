package domain

import "time"

// Conversation is the unique thread between one initiator and one
// counterpart within a tenant. Uniqueness of the pair is enforced by
// the store.
type Conversation struct {
	ID            string     `db:"id"`
	TenantID      string     `db:"tenant_id"`
	InitiatorID   string     `db:"initiator_id"`
	CounterpartID string     `db:"counterpart_id"`
	LastMessageAt *time.Time `db:"last_message_at"`
	CreatedAt     time.Time  `db:"created_at"`
}

func (c *Conversation) HasParticipant(identityID string) bool {
	return identityID == c.InitiatorID || identityID == c.CounterpartID
}

// OtherParticipant returns the peer of identityID, or "" when
// identityID is not a participant at all.
func (c *Conversation) OtherParticipant(identityID string) string {
	switch identityID {
	case c.InitiatorID:
		return c.CounterpartID
	case c.CounterpartID:
		return c.InitiatorID
	}
	return ""
}

package postgres

import (
	"context"
	"time"

	"github.com/peertalk/chat-service/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageRepository struct {
	db *pgxpool.Pool
}

func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create persists the message and bumps the conversation's
// last_message_at in the same transaction. The message arrives with
// ID/CreatedAt unset and leaves populated.
func (r *MessageRepository) Create(ctx context.Context, m *domain.Message) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if m.ID == "" {
		m.ID = uuid.NewString()
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, receiver_id, text, is_read)
		VALUES ($1, $2, $3, $4, $5, false)
		RETURNING created_at
	`, m.ID, m.ConversationID, m.SenderID, m.ReceiverID, m.Text)
	if err := row.Scan(&m.CreatedAt); err != nil {
		return err
	}
	m.IsRead = false
	m.ReadAt = nil

	if _, err := tx.Exec(ctx, `
		UPDATE conversations SET last_message_at=$2 WHERE id=$1
	`, m.ConversationID, m.CreatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// MarkRead flips every unread message addressed to readerID in the
// conversation and reports how many rows changed. Zero is a normal
// outcome, not an error.
func (r *MessageRepository) MarkRead(ctx context.Context, conversationID, readerID string, at time.Time) (int64, error) {
	cmd, err := r.db.Exec(ctx, `
		UPDATE messages
		SET is_read=true, read_at=$3
		WHERE conversation_id=$1 AND receiver_id=$2 AND is_read=false
	`, conversationID, readerID, at)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

// CountUnread is always computed from the store; in-memory counters
// drift under concurrent multi-device updates.
func (r *MessageRepository) CountUnread(ctx context.Context, identityID string) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM messages WHERE receiver_id=$1 AND is_read=false`,
		identityID).Scan(&n)
	return n, err
}

// List returns conversation history with cursor pagination
// (created_at,id DESC), newest first.
func (r *MessageRepository) List(ctx context.Context, conversationID, after string, limit int) ([]domain.Message, string, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	cur, err := parseMessageCursor(after)
	if err != nil {
		return nil, "", err
	}

	const query = `
		SELECT id, conversation_id, sender_id, receiver_id, text, is_read, read_at, created_at
		FROM messages
		WHERE conversation_id = $1
		  AND (
		    $2::timestamptz IS NULL
		    OR created_at < $2
		    OR (created_at = $2 AND id < $3)
		  )
		ORDER BY created_at DESC, id DESC
		LIMIT $4
	`

	var createdAt any
	var id any
	if cur != nil {
		createdAt = cur.CreatedAt
		id = cur.ID
	}

	rows, err := r.db.Query(ctx, query, conversationID, createdAt, id, limit)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.ReceiverID,
			&m.Text, &m.IsRead, &m.ReadAt, &m.CreatedAt); err != nil {
			return nil, "", err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	var next string
	if len(out) == limit {
		last := out[len(out)-1]
		next = messageCursor{CreatedAt: last.CreatedAt, ID: last.ID}.token()
	}
	return out, next, nil
}

package postgres

import (
	"context"
	"errors"

	"github.com/peertalk/chat-service/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ConversationRepository struct {
	db *pgxpool.Pool
}

func NewConversationRepository(db *pgxpool.Pool) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Create inserts the conversation for the pair or returns the existing
// one; the (initiator_id, counterpart_id) pair is unique per tenant.
func (r *ConversationRepository) Create(ctx context.Context, tenantID, initiatorID, counterpartID string) (*domain.Conversation, error) {
	query := `
		INSERT INTO conversations (id, tenant_id, initiator_id, counterpart_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (initiator_id, counterpart_id) DO NOTHING
		RETURNING id, tenant_id, initiator_id, counterpart_id, last_message_at, created_at`

	var c domain.Conversation
	err := r.db.QueryRow(ctx, query, uuid.NewString(), tenantID, initiatorID, counterpartID).
		Scan(&c.ID, &c.TenantID, &c.InitiatorID, &c.CounterpartID, &c.LastMessageAt, &c.CreatedAt)
	if err == nil {
		return &c, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	// conflict: the pair already has its conversation
	return r.GetByPair(ctx, initiatorID, counterpartID)
}

func (r *ConversationRepository) Get(ctx context.Context, id string) (*domain.Conversation, error) {
	var c domain.Conversation
	query := `
		SELECT id, tenant_id, initiator_id, counterpart_id, last_message_at, created_at
		FROM conversations WHERE id=$1`
	err := r.db.QueryRow(ctx, query, id).
		Scan(&c.ID, &c.TenantID, &c.InitiatorID, &c.CounterpartID, &c.LastMessageAt, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *ConversationRepository) GetByPair(ctx context.Context, initiatorID, counterpartID string) (*domain.Conversation, error) {
	var c domain.Conversation
	query := `
		SELECT id, tenant_id, initiator_id, counterpart_id, last_message_at, created_at
		FROM conversations WHERE initiator_id=$1 AND counterpart_id=$2`
	err := r.db.QueryRow(ctx, query, initiatorID, counterpartID).
		Scan(&c.ID, &c.TenantID, &c.InitiatorID, &c.CounterpartID, &c.LastMessageAt, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Delete removes the conversation; messages go with it via ON DELETE CASCADE.
func (r *ConversationRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM conversations WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrConversationNotFound
	}
	return nil
}

package postgres

import (
	"context"
	"errors"

	"github.com/peertalk/chat-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IdentityRepository serves the minimal profile projection the gateway
// attaches to a connection. Account management itself lives elsewhere.
type IdentityRepository struct {
	db *pgxpool.Pool
}

func NewIdentityRepository(db *pgxpool.Pool) *IdentityRepository {
	return &IdentityRepository{db: db}
}

func (r *IdentityRepository) Get(ctx context.Context, id string) (*domain.Identity, error) {
	var ident domain.Identity
	query := `SELECT id, display_name, role, tenant_id, avatar_url FROM users WHERE id=$1`
	err := r.db.QueryRow(ctx, query, id).
		Scan(&ident.ID, &ident.DisplayName, &ident.Role, &ident.TenantID, &ident.AvatarURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, err
	}
	return &ident, nil
}

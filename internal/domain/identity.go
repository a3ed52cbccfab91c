package domain

type Role string

const (
	RoleInitiator   Role = "initiator"
	RoleCounterpart Role = "counterpart"
	RoleTenantAdmin Role = "tenant_admin"
)

// Identity is the minimal profile projection attached to a connection.
// It is resolved once from the access token and never changes for the
// lifetime of the connection.
type Identity struct {
	ID          string  `db:"id"`
	DisplayName string  `db:"display_name"`
	Role        Role    `db:"role"`
	TenantID    string  `db:"tenant_id"`
	AvatarURL   *string `db:"avatar_url"`
}

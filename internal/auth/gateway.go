package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/peertalk/chat-service/internal/domain"
)

type IdentityStore interface {
	Get(ctx context.Context, id string) (*domain.Identity, error)
}

// Gateway resolves an opaque bearer credential into the profile
// projection attached to a connection. Any failure refuses the
// connection before any presence state exists.
type Gateway struct {
	verifier *Verifier
	idents   IdentityStore
}

func NewGateway(verifier *Verifier, idents IdentityStore) *Gateway {
	return &Gateway{verifier: verifier, idents: idents}
}

func (g *Gateway) Authenticate(ctx context.Context, token string) (*domain.Identity, error) {
	id, err := g.verifier.Verify(token)
	if err != nil {
		return nil, err
	}
	return g.idents.Get(ctx, id)
}

// ExtractToken reads the credential from the Authorization header, or
// from a query parameter for websocket clients that cannot set headers.
func ExtractToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	return r.URL.Query().Get("access_token")
}

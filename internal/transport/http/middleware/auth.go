package httpmw

import (
	"context"
	"net/http"

	"github.com/peertalk/chat-service/internal/auth"
	"github.com/peertalk/chat-service/internal/domain"
)

type ctxKey string

const ctxKeyIdentity ctxKey = "identity"

// AuthMiddleware resolves the bearer credential through the gateway
// and stores the identity projection in the request context.
func AuthMiddleware(gateway *auth.Gateway) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, err := gateway.Authenticate(r.Context(), auth.ExtractToken(r))
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyIdentity, ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func IdentityFromCtx(ctx context.Context) *domain.Identity {
	if v := ctx.Value(ctxKeyIdentity); v != nil {
		if ident, ok := v.(*domain.Identity); ok {
			return ident
		}
	}
	return nil
}

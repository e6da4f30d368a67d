// pkg/middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	"storesight/pkg/problems"
	"storesight/pkg/token"
)

// TokenVerifier checks a raw bearer token and returns its claims.
// Implemented by *token.Issuer.
type TokenVerifier interface {
	Verify(raw string) (token.Claims, error)
}

type ctxClaimsKey struct{}

// BearerAuth is the access gate: it rejects requests without a valid,
// unexpired bearer token and injects the verified identity into the request
// context. Downstream handlers take the tenant id from ClaimsFrom only,
// never from request input.
//
// Verification failures all map to one generic 403 body so the response does
// not reveal which check failed.
func BearerAuth(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				problems.Write(w, http.StatusUnauthorized, problems.CodeMissingToken, "Access token required")
				return
			}
			raw := strings.TrimSpace(authz[len("Bearer "):])
			claims, err := v.Verify(raw)
			if err != nil {
				problems.Write(w, http.StatusForbidden, problems.CodeInvalidToken, "Invalid or expired token")
				return
			}
			ctx := context.WithValue(r.Context(), ctxClaimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFrom returns the verified identity attached by BearerAuth.
func ClaimsFrom(ctx context.Context) (token.Claims, bool) {
	if v := ctx.Value(ctxClaimsKey{}); v != nil {
		if c, ok := v.(token.Claims); ok {
			return c, true
		}
	}
	return token.Claims{}, false
}

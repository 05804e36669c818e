package middleware

import (
	"context"
	"net/http"
	"strings"

	jwtinfra "github.com/klikk/verify-api/internal/infrastructure/jwt"
)

type contextKey string

const ClaimsKey contextKey = "claims"

// CheckoutAuth validates the Bearer checkout token issued after a successful
// verification and injects its claims into the request context.
func CheckoutAuth(provider *jwtinfra.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeJSONError(w, http.StatusUnauthorized, "missing or invalid authorization header")
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := provider.Verify(tokenStr)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext extracts checkout claims from the request context.
func ClaimsFromContext(ctx context.Context) (*jwtinfra.CheckoutClaims, bool) {
	c, ok := ctx.Value(ClaimsKey).(*jwtinfra.CheckoutClaims)
	return c, ok
}

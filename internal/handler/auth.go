package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lumiere-skincare/storefront-api/pkg/httpmiddleware"
)

type userIDKey struct{}

// UserIDFromContext returns the authenticated user ID, or "" when the
// request did not pass through the auth middleware.
func UserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey{}).(string); ok {
		return id
	}
	return ""
}

// authClaims carries the user identity. Tokens issued with either a subject
// or an explicit id claim are accepted.
type authClaims struct {
	ID string `json:"id,omitempty"`
	jwt.RegisteredClaims
}

func (c *authClaims) userID() string {
	if c.ID != "" {
		return c.ID
	}
	return c.Subject
}

// JWTAuth returns a middleware that requires a valid HS256 Bearer token and
// stores the token's user ID in the request context.
func JWTAuth(secret []byte) httpmiddleware.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeError(w, http.StatusUnauthorized, "Not authorized, no token")
				return
			}

			claims := &authClaims{}
			_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
				return secret, nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || claims.userID() == "" {
				writeError(w, http.StatusUnauthorized, "Not authorized, token failed")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey{}, claims.userID())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

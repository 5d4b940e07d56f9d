// Package middleware provides HTTP middleware for the API.
package middleware

import (
	"net/http"
	"strings"

	"github.com/taskvault/taskvault-api/internal/api/shared"
	"github.com/taskvault/taskvault-api/internal/service/auth"
)

// Authenticator validates bearer tokens and injects the authenticated user's
// ID into the request context.
type Authenticator struct {
	jwtService auth.JWTService
}

// NewAuthenticator creates a new Authenticator.
func NewAuthenticator(jwtService auth.JWTService) *Authenticator {
	return &Authenticator{jwtService: jwtService}
}

// Authenticate rejects requests without a valid "Authorization: Bearer"
// token. Handlers downstream can rely on shared.UserIDFromRequest.
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			shared.RespondWithError(w, http.StatusUnauthorized, "unauthorized", "authorization header required")
			return
		}

		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			shared.RespondWithError(w, http.StatusUnauthorized, "unauthorized", "invalid authorization header format")
			return
		}

		claims, err := a.jwtService.ValidateToken(r.Context(), token)
		if err != nil {
			shared.RespondWithError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(shared.WithUserID(r.Context(), claims.UserID)))
	})
}

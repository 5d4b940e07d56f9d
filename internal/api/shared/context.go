// Package shared holds helpers used across API handlers and middleware.
package shared

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// ContextKey is the type for context values set by the API layer.
type ContextKey string

// UserIDContextKey is the context key under which the authenticated user's
// ID travels.
const UserIDContextKey ContextKey = "userID"

// WithUserID returns a context carrying the authenticated user's ID.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, UserIDContextKey, userID)
}

// UserIDFromRequest extracts the authenticated user's ID from the request
// context. Returns false if the request is unauthenticated.
func UserIDFromRequest(r *http.Request) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(UserIDContextKey).(uuid.UUID)
	return userID, ok
}

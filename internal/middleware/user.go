package middleware

import (
	"context"
	"net/http"
	"strings"
)

// UserIDHeader carries the caller's identity. Authentication happens in front
// of this service; the header is trusted as given.
const UserIDHeader = "X-User-ID"

type userIDKey struct{}

// RequireUser rejects requests without a non-blank X-User-ID header with 401
// and stores the id in the request context for UserID.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(UserIDHeader))
		if id == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"code":"unauthenticated","message":"X-User-ID header is required"}}`))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), id)))
	})
}

// WithUserID returns a copy of ctx carrying id.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

// UserID returns the id stored by RequireUser, or "" when there is none.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey{}).(string)
	return id
}

package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/tedrenliv/habit-tracker/internal/logger"
	"github.com/tedrenliv/habit-tracker/pkg/jwt"
)

type contextKey string

const (
	UserIDKey contextKey = "userID"
)

// AuthMiddleware validates bearer tokens issued for this service
type AuthMiddleware struct {
	tokens *jwt.TokenManager
}

// NewAuthMiddleware creates a new auth middleware. With a nil token manager requests
// pass through unauthenticated and handlers read the userId field instead.
func NewAuthMiddleware(tokens *jwt.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
	}
}

// Enabled reports whether bearer tokens are required
func (m *AuthMiddleware) Enabled() bool {
	return m.tokens != nil
}

// Auth validates JWT token from Authorization header
func (m *AuthMiddleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.tokens == nil {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			unauthorized(w, "Missing authorization header")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			unauthorized(w, "Invalid authorization header format")
			return
		}

		claims, err := m.tokens.ValidateAccessToken(parts[1])
		if err != nil {
			logger.Debug("Rejected token", "path", r.URL.Path, "err", err)
			unauthorized(w, "Invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), claims.UserID)))
	})
}

// WithUserID returns a context carrying an authenticated user ID
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// GetUserID extracts user ID from request context
func GetUserID(r *http.Request) string {
	userID, ok := r.Context().Value(UserIDKey).(string)
	if !ok {
		return ""
	}
	return userID
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

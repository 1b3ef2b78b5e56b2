package middleware

import (
	"context"
	"net/http"
	"strings"

	"videotube/internal/httputil"
	"videotube/internal/logger"
	"videotube/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// UserIDKey is the context key for the authenticated user's ID
	UserIDKey contextKey = "user_id"
)

// TokenVerifier validates an access token and returns its user id.
type TokenVerifier interface {
	VerifyAccess(token string) (int64, error)
}

// AuthMiddleware rejects requests without a valid access token.
// Checks the Authorization header first, then falls back to the cookie.
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := accessToken(r)
			if tokenString == "" {
				httputil.WriteUnauthorizedWithCode(w, model.CodeTokenMissing, "Unauthorized request")
				return
			}

			userID, err := verifier.VerifyAccess(tokenString)
			if err != nil {
				logger.FromRequest(r).Debug().Err(err).Msg("access token rejected")
				httputil.WriteUnauthorizedWithCode(w, model.CodeTokenInvalid, "Invalid access token")
				return
			}

			next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), userID)))
		})
	}
}

// OptionalAuthMiddleware attaches the user id when a valid token is present
// and lets the request through unauthenticated otherwise.
func OptionalAuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenString := accessToken(r); tokenString != "" {
				if userID, err := verifier.VerifyAccess(tokenString); err == nil {
					r = r.WithContext(withUserID(r.Context(), userID))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetUserIDFromContext extracts the user ID from the request context
// Returns the user ID and true if found, or 0 and false if not found
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}

func withUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func accessToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			if token := strings.TrimSpace(parts[1]); token != "" {
				return token
			}
		}
	}

	if cookie, err := r.Cookie(model.AccessTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

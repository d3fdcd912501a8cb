package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/user/movielab-go/apperror"
	"github.com/user/movielab-go/config"
)

// ContextKey is a type used for context keys to avoid collisions.
type ContextKey string

// UserIDKey is the key under which JWTMiddleware stores the caller's user id.
const UserIDKey ContextKey = "userID"

// JWTMiddleware verifies the Bearer access token and puts its user id into the
// request context. Anything else, including a refresh token, is rejected with 401.
func JWTMiddleware(cfg *config.AuthConfig) func(next http.Handler) http.Handler {
	verifier := &AuthService{authConfig: *cfg}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				WriteError(w, r, apperror.NewAuthError("Authorization header is missing", nil))
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				WriteError(w, r, apperror.NewAuthError("Authorization header format must be Bearer {token}", nil))
				return
			}

			claims, err := verifier.validateToken(parts[1], tokenTypeAccess)
			if err != nil {
				WriteError(w, r, apperror.NewAuthError("Invalid token", err))
				return
			}
			if claims.UserID <= 0 {
				WriteError(w, r, apperror.NewAuthError("Invalid token: user_id claim is missing or invalid", nil))
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), claims.UserID)))
		})
	}
}

// ContextWithUserID returns a copy of ctx carrying the authenticated user id.
func ContextWithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// GetUserIDFromContext retrieves the userID from the request context.
// Returns 0 and false if userID is not found or not an int.
func GetUserIDFromContext(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(UserIDKey).(int)
	return userID, ok
}

// RequireUserID is GetUserIDFromContext for handlers behind JWTMiddleware: a
// missing id is reported as an AuthError instead of a boolean.
func RequireUserID(ctx context.Context) (int, error) {
	userID, ok := GetUserIDFromContext(ctx)
	if !ok || userID <= 0 {
		return 0, apperror.NewAuthError("authentication required", nil)
	}
	return userID, nil
}

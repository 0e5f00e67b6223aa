package middleware

import (
	"context"
	"net/http"
	"strings"

	"geo2max-server/pkg/jwt"
	"geo2max-server/pkg/response"
)

type contextKey string

const (
	UserKeyKey    contextKey = "userKey"
	CredentialKey contextKey = "credential"
)

// AuthMiddleware validates the session token and resolves the opaque
// user key plus the remote bearer credential into the request context.
// Handlers never see raw session state.
func AuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "Missing authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				response.Unauthorized(w, "Invalid authorization header format")
				return
			}

			claims, err := jwt.ValidateToken(parts[1], jwtSecret)
			if err != nil {
				response.Unauthorized(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), UserKeyKey, claims.UserID)
			ctx = context.WithValue(ctx, CredentialKey, claims.RemoteToken)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserKey returns the per-user key resolved by AuthMiddleware.
func GetUserKey(r *http.Request) string {
	userKey, ok := r.Context().Value(UserKeyKey).(string)
	if !ok {
		return ""
	}
	return userKey
}

// GetCredential returns the remote bearer token carried by the session.
func GetCredential(r *http.Request) string {
	credential, ok := r.Context().Value(CredentialKey).(string)
	if !ok {
		return ""
	}
	return credential
}

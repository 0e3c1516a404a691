// Package middleware provides HTTP middleware for authentication and authorization.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

const (
	usernameKey  ContextKey = "username"
	sessionIDKey ContextKey = "sessionID"
)

// TokenValidator is an interface for validating JWT tokens.
// This allows the middleware to work with any JWT service implementation.
type TokenValidator interface {
	ValidateToken(tokenString string) (SessionClaims, error)
}

// SessionClaims exposes the identity carried by a validated token.
type SessionClaims interface {
	GetUsername() string
	GetSessionID() string
}

// RevocationChecker reports sessions that were logged out before their token expired.
type RevocationChecker interface {
	IsRevoked(sessionID string) bool
}

// AuthMiddleware creates middleware that validates bearer tokens and adds the username and session
// to the request context. revoked may be nil.
func AuthMiddleware(jwtService TokenValidator, revoked RevocationChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := jwtService.ValidateToken(tokenString)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			sessionID := claims.GetSessionID()
			if sessionID == "" || (revoked != nil && revoked.IsRevoked(sessionID)) {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), usernameKey, claims.GetUsername())
			ctx = context.WithValue(ctx, sessionIDKey, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from a case-insensitive "Bearer" Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	tokenString := strings.TrimSpace(parts[1])
	return tokenString, tokenString != ""
}

// GetUsername extracts the authenticated username from the request context.
func GetUsername(r *http.Request) (string, error) {
	username, ok := r.Context().Value(usernameKey).(string)
	if !ok {
		return "", fmt.Errorf("username not found in request context")
	}
	return username, nil
}

// GetSessionID extracts the authenticated session ID from the request context.
func GetSessionID(r *http.Request) (string, error) {
	sessionID, ok := r.Context().Value(sessionIDKey).(string)
	if !ok || sessionID == "" {
		return "", fmt.Errorf("session ID not found in request context")
	}
	return sessionID, nil
}

// WithSession returns ctx carrying the given identity, as AuthMiddleware would set it.
func WithSession(ctx context.Context, username, sessionID string) context.Context {
	ctx = context.WithValue(ctx, usernameKey, username)
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

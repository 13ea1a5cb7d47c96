// Package middleware provides HTTP middleware for the filebank API.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/marmos91/filebank/internal/logger"
	"github.com/marmos91/filebank/internal/telemetry"
	"github.com/marmos91/filebank/pkg/api/auth"
	"github.com/marmos91/filebank/pkg/api/handlers"
)

// Context key type for storing claims
type contextKey string

const claimsContextKey contextKey = "claims"

// GetClaimsFromContext retrieves JWT claims from the request context.
// Returns nil if no claims are present.
func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, ok := ctx.Value(claimsContextKey).(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}

// extractBearerToken extracts the token from a Bearer Authorization header.
// Returns the token string and true if successful, or empty string and false if not.
func extractBearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	return parts[1], true
}

// JWTAuth is a middleware that validates Bearer tokens in the Authorization header.
// If valid, the claims are stored in the request context.
// If invalid or missing, returns 401 Unauthorized.
func JWTAuth(jwtService *auth.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := extractBearerToken(r)
			if !ok {
				handlers.Unauthorized(w, "Authorization header required")
				return
			}

			claims, err := jwtService.Validate(tokenString)
			if err != nil {
				logger.DebugCtx(r.Context(), "Token rejected", logger.KeyError, err)
				handlers.Unauthorized(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			// The LogContext is request-scoped; setting the subject here also
			// tags the completion log written by RequestContext.
			if lc := logger.FromContext(ctx); lc != nil {
				lc.Subject = claims.Subject
			}
			telemetry.SetAttributes(ctx, telemetry.Subject(claims.Subject))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireScope is a middleware that lets a request through when the token
// grants at least one of scopes. Must be used after JWTAuth middleware.
func RequireScope(scopes []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaimsFromContext(r.Context())
			if claims == nil {
				handlers.Unauthorized(w, "Authentication required")
				return
			}

			if !claims.HasAnyScope(scopes) {
				logger.WarnCtx(r.Context(), "Insufficient scope",
					logger.KeyScope, strings.Join(scopes, ","))
				handlers.Unauthorized(w, "Insufficient scope")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/DanielPopoola/racing-academy-payments/internal/application"
	"github.com/DanielPopoola/racing-academy-payments/internal/auth"
	"github.com/DanielPopoola/racing-academy-payments/internal/interfaces/rest"
)

type claimsKey struct{}

// ClaimsFrom returns the verified claims stored by RequireRole.
func ClaimsFrom(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims, ok
}

// RequireRole admits requests bearing a valid token whose role matches.
func RequireRole(secret, role string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString, found := strings.CutPrefix(header, "Bearer ")
			if !found || tokenString == "" {
				rest.WriteError(w, application.NewUnauthorizedError("Missing bearer token"), logger)
				return
			}

			claims, err := auth.Parse(secret, tokenString)
			if err != nil {
				logger.Warn("rejected admin token", "path", r.URL.Path, "error", err)
				rest.WriteError(w, application.NewUnauthorizedError("Invalid or expired token"), logger)
				return
			}
			if claims.Role != role {
				logger.Warn("admin role required", "subject", claims.Subject, "role", claims.Role)
				rest.WriteError(w, application.NewUnauthorizedError("Insufficient role"), logger)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
		})
	}
}

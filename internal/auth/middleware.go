package auth

import (
	"log/slog"
	"net/http"

	"github.com/chillzone/chillzone-pos/internal/platform/httpx"
	"github.com/chillzone/chillzone-pos/internal/shared"
)

// RequireUser rejects requests whose session carries no backend token.
func RequireUser(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if shared.SessionFromContext(r.Context()).Token() == "" {
				if logger != nil {
					logger.Debug("unauthenticated request", slog.String("path", r.URL.Path))
				}
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

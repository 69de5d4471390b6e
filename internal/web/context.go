package web

import (
	"net/http"

	"github.com/arturomorarioja/csv-parser-api/internal/audit"
	"github.com/arturomorarioja/csv-parser-api/internal/web/middleware"
)

// clientMetadata stores the client IP and User-Agent for audit entries.
// It runs after TrustedRealIP so the IP is the forwarded one when trusted.
func clientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := audit.ContextWithClient(r.Context(), middleware.ClientIP(r.RemoteAddr), r.UserAgent())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

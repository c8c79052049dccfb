package daemon

import (
	"net/http"
	"strings"

	"curtail/internal/logship"
)

// requireBearer guards admin endpoints with a bearer token. An empty token
// disables the guard so local single-user setups work without configuration.
func requireBearer(token string, shipper logship.Shipper) Middleware {
	token = strings.TrimSpace(token)
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") || strings.TrimPrefix(header, "Bearer ") != token {
				shipper.Warn(r.Context(), logship.StackBackend, logship.PackageAuth, "admin request rejected")
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

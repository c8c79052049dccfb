package daemon

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"

	"curtail/internal/logship"
)

// routes builds the daemon's HTTP surface. Short codes live at the root of
// the URL space, which httprouter cannot mix with the static API paths, so
// redirects are resolved from the NotFound fallback instead of a route.
func (d *Daemon) routes() http.Handler {
	router := &httprouter.Router{
		RedirectTrailingSlash:  true,
		RedirectFixedPath:      true,
		HandleMethodNotAllowed: true,
		HandleOPTIONS:          true,
		NotFound:               http.HandlerFunc(d.handleFallback),
		MethodNotAllowed: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}),
	}

	admin := requireBearer(d.cfg.Server.AdminToken, d.shipper)

	router.Handler(http.MethodGet, "/healthz", http.HandlerFunc(d.handleHealth))
	router.Handler(http.MethodPost, "/shorturls", http.HandlerFunc(d.handleCreateLink))
	router.Handler(http.MethodGet, "/shorturls/:code", http.HandlerFunc(d.handleLinkStats))
	router.Handler(http.MethodGet, "/shorturls", admin(http.HandlerFunc(d.handleListLinks)))
	router.Handler(http.MethodDelete, "/shorturls/:code", admin(http.HandlerFunc(d.handleDeleteLink)))

	handler := Chain(router,
		recoverer(d.logger, d.shipper),
		correlationID(),
		requestLog(d.logger),
	)

	corsLayer := cors.New(cors.Options{
		AllowedOrigins: d.cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type", HeaderCorrelationID, HeaderRequestID},
	})
	return corsLayer.Handler(handler)
}

// handleFallback treats unmatched single-segment GET paths as short codes.
func (d *Daemon) handleFallback(w http.ResponseWriter, r *http.Request) {
	code := strings.Trim(r.URL.Path, "/")
	if r.Method == http.MethodGet && code != "" && !strings.Contains(code, "/") {
		d.handleRedirect(w, r, code)
		return
	}
	d.shipper.Debug(r.Context(), logship.StackBackend, logship.PackageRoute, "unknown route requested")
	writeError(w, http.StatusNotFound, "endpoint not found")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Default().Error("encode response failed", slog.String("error", err.Error()))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

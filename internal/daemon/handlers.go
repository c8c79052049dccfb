package daemon

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"

	"curtail/internal/api"
	"curtail/internal/logship"
	"curtail/internal/shortlink"
)

const defaultListLimit = 50

func (d *Daemon) handleHealth(w http.ResponseWriter, r *http.Request) {
	total, err := d.store.CountLinks(r.Context())
	if err != nil {
		d.shipper.Error(r.Context(), logship.StackBackend, logship.PackageHandler, "health check store failure")
		writeError(w, http.StatusInternalServerError, "store unavailable")
		return
	}

	collector := "disabled"
	if d.cfg.Collector.Enabled {
		collector = "enabled"
	}
	writeJSON(w, http.StatusOK, api.HealthResponse{
		Status:    "ok",
		Links:     total,
		Cached:    d.cache.Len(),
		Collector: collector,
	})
}

func (d *Daemon) handleCreateLink(w http.ResponseWriter, r *http.Request) {
	var req api.CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		d.shipper.Warn(r.Context(), logship.StackBackend, logship.PackageHandler, "create body undecodable")
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	validity := time.Duration(req.ValidityMinutes) * time.Minute
	link, err := d.service.Create(r.Context(), req.URL, validity, req.CustomCode)
	if err != nil {
		switch {
		case errors.Is(err, shortlink.ErrInvalidURL), errors.Is(err, shortlink.ErrInvalidCode):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, shortlink.ErrCodeTaken):
			writeError(w, http.StatusConflict, err.Error())
		default:
			d.shipper.Error(r.Context(), logship.StackBackend, logship.PackageHandler, "link create failed")
			writeError(w, http.StatusInternalServerError, "could not create short link")
		}
		return
	}

	writeJSON(w, http.StatusCreated, api.CreateLinkResponse{
		ShortLink: api.ShortURL(d.cfg.Server.PublicBaseURL, link.Code),
		Expiry:    api.FormatTime(link.ExpiresAt),
	})
}

func (d *Daemon) handleLinkStats(w http.ResponseWriter, r *http.Request) {
	code := httprouter.ParamsFromContext(r.Context()).ByName("code")
	stats, err := d.service.Stats(r.Context(), code)
	if err != nil {
		if errors.Is(err, shortlink.ErrNotFound) {
			writeError(w, http.StatusNotFound, "short link not found")
			return
		}
		d.shipper.Error(r.Context(), logship.StackBackend, logship.PackageHandler, "link stats failed")
		writeError(w, http.StatusInternalServerError, "could not load link stats")
		return
	}
	writeJSON(w, http.StatusOK, api.FromStats(stats, d.cfg.Server.PublicBaseURL, time.Now()))
}

func (d *Daemon) handleListLinks(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	links, err := d.service.List(r.Context(), limit)
	if err != nil {
		d.shipper.Error(r.Context(), logship.StackBackend, logship.PackageHandler, "link list failed")
		writeError(w, http.StatusInternalServerError, "could not list links")
		return
	}
	total, err := d.store.CountLinks(r.Context())
	if err != nil {
		d.shipper.Error(r.Context(), logship.StackBackend, logship.PackageHandler, "link count failed")
		writeError(w, http.StatusInternalServerError, "could not list links")
		return
	}

	writeJSON(w, http.StatusOK, api.LinkListResponse{
		Links: api.FromLinks(links, d.cfg.Server.PublicBaseURL, time.Now()),
		Total: total,
	})
}

func (d *Daemon) handleDeleteLink(w http.ResponseWriter, r *http.Request) {
	code := httprouter.ParamsFromContext(r.Context()).ByName("code")
	if err := d.service.Delete(r.Context(), code); err != nil {
		if errors.Is(err, shortlink.ErrNotFound) {
			writeError(w, http.StatusNotFound, "short link not found")
			return
		}
		d.shipper.Error(r.Context(), logship.StackBackend, logship.PackageHandler, "link delete failed")
		writeError(w, http.StatusInternalServerError, "could not delete link")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (d *Daemon) handleRedirect(w http.ResponseWriter, r *http.Request, code string) {
	link, err := d.service.Resolve(r.Context(), code, r.Referer(), r.URL.Query().Get("src"))
	if err != nil {
		switch {
		case errors.Is(err, shortlink.ErrNotFound):
			writeError(w, http.StatusNotFound, "short link not found")
		case errors.Is(err, shortlink.ErrLinkExpired):
			writeError(w, http.StatusGone, "short link expired")
		default:
			d.shipper.Error(r.Context(), logship.StackBackend, logship.PackageHandler, "redirect resolve failed")
			writeError(w, http.StatusInternalServerError, "could not resolve short link")
		}
		return
	}
	http.Redirect(w, r, link.LongURL, http.StatusFound)
}

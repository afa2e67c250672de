package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	qrcode "github.com/skip2/go-qrcode"
)

// handleHealth pings the store
func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.Store == nil || h.Store.Ping(ctx) != nil {
		respondJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unhealthy", Store: "disconnected"})
		return
	}
	respondJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Store: "connected"})
}

// shareURL is the configured base URL, or the one the caller reached us on
func (h *Handlers) shareURL(r *http.Request) string {
	if h.opts.BaseURL != "" {
		return strings.TrimRight(h.opts.BaseURL, "/") + "/"
	}
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/"
}

// handleShareQR renders a QR code that opens the app, for adding a phone
// to the household
func (h *Handlers) handleShareQR(w http.ResponseWriter, r *http.Request) {
	png, err := qrcode.Encode(h.shareURL(r), qrcode.Medium, 256)
	if err != nil {
		respondError(w, InternalError(err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(png)
}

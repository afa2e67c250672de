package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/dinnerroulette/internal/models"
	"github.com/abrezinsky/dinnerroulette/internal/services"
)

func (h *Handlers) handleRandomize(w http.ResponseWriter, r *http.Request) {
	filter, err := h.filterFromQuery(r)
	if err != nil {
		respondError(w, err)
		return
	}

	result, err := h.Selection.SelectRandom(r.Context(), h.user(r), filter)
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, SpinResponse{
		Success:    true,
		Restaurant: result.Restaurant,
		EntryID:    result.EntryID,
	})
}

func (h *Handlers) handlePoolStats(w http.ResponseWriter, r *http.Request) {
	filter, err := h.filterFromQuery(r)
	if err != nil {
		respondError(w, err)
		return
	}

	stats, err := h.Selection.Stats(r.Context(), filter)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, PoolStatsResponse{Success: true, PoolStats: stats})
}

// handleListHistory returns recent spins. limit defaults to 20 and is
// clamped to 1..50; a non-numeric limit is treated as absent.
func (h *Handlers) handleListHistory(w http.ResponseWriter, r *http.Request) {
	limit := services.DefaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	entries, err := h.History.List(r.Context(), services.ClampLimit(limit))
	if err != nil {
		respondError(w, err)
		return
	}
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	respondOK(w, HistoryResponse{Success: true, History: entries, Count: len(entries)})
}

func (h *Handlers) handleMarkWent(w http.ResponseWriter, r *http.Request) {
	if err := h.History.MarkWent(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Marked as went!")
}

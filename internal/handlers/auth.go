package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/dinnerroulette/internal/services"
)

// handleCheckUser reports whether the caller has registered
func (h *Handlers) handleCheckUser(w http.ResponseWriter, r *http.Request) {
	name, ok := h.Auth.UserFromRequest(r)
	respondOK(w, UserCheckResponse{Success: true, User: name, Exists: ok})
}

// handleRegisterUser validates a first name and stores it in the cookie
func (h *Handlers) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := validateRequest(&req); err != nil {
		respondError(w, err)
		return
	}

	name, err := services.ValidateUsername(*req.FirstName)
	if err != nil {
		respondError(w, err)
		return
	}

	h.Auth.SetUserCookie(w, name)
	respondOK(w, map[string]interface{}{
		"user":    name,
		"message": "Welcome, " + name + "!",
	})
}

// handleLogout forgets the caller's name
func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.Auth.ClearUserCookie(w)
	respondSuccess(w, "Signed out")
}

// handleUserStats returns a user's contribution counts
func (h *Handlers) handleUserStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Restaurants.UserStats(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, UserStatsResponse{Success: true, Stats: stats})
}

// handleSpinStatus reports whether the caller may spin right now
func (h *Handlers) handleSpinStatus(w http.ResponseWriter, r *http.Request) {
	ok, remaining, err := h.SpinLimit.CanSpin(r.Context(), h.user(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, SpinStatusResponse{
		Success:          true,
		CanSpin:          ok,
		SecondsRemaining: remaining,
		TimeoutSeconds:   int(h.SpinLimit.Timeout().Seconds()),
	})
}

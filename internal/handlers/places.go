package handlers

import (
	stderrors "errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/abrezinsky/dinnerroulette/pkg/places"
)

const (
	defaultPlaceResults = 5
	maxPlaceResults     = 20
)

// placesError maps lookup failures; upstream trouble is never the caller's fault
func placesError(err error) error {
	switch {
	case stderrors.Is(err, places.ErrPlaceNotFound):
		return NotFound("Place not found")
	case stderrors.Is(err, places.ErrDisabled):
		return ServiceUnavailable("Place lookup is not configured", nil)
	case stderrors.Is(err, gobreaker.ErrOpenState), stderrors.Is(err, gobreaker.ErrTooManyRequests):
		return ServiceUnavailable("Place lookup is temporarily unavailable", err)
	default:
		return ServiceUnavailable("Place lookup failed", err)
	}
}

func (h *Handlers) handleSearchPlaces(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondError(w, ValidationError("Search query is required"))
		return
	}
	max := defaultPlaceResults
	if raw := r.URL.Query().Get("max"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			max = min(n, maxPlaceResults)
		}
	}

	results, err := h.Places.Search(r.Context(), query, max)
	if err != nil {
		respondError(w, placesError(err))
		return
	}
	if results == nil {
		results = []places.Place{}
	}
	respondOK(w, PlaceSearchResponse{Success: true, Results: results, Count: len(results)})
}

func (h *Handlers) handlePlaceDetails(w http.ResponseWriter, r *http.Request) {
	details, err := h.Places.Details(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, placesError(err))
		return
	}
	respondOK(w, PlaceDetailsResponse{Success: true, Place: details})
}

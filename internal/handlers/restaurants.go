package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/dinnerroulette/internal/models"
	"github.com/abrezinsky/dinnerroulette/internal/services"
)

// filterFromQuery reads the category and distance query parameters
func (h *Handlers) filterFromQuery(r *http.Request) (models.Filter, error) {
	q := r.URL.Query()
	return h.Restaurants.ParseFilter(
		strings.TrimSpace(q.Get("category")),
		strings.TrimSpace(q.Get("distance")),
	)
}

func (h *Handlers) handleListRestaurants(w http.ResponseWriter, r *http.Request) {
	filter, err := h.filterFromQuery(r)
	if err != nil {
		respondError(w, err)
		return
	}

	restaurants, err := h.Restaurants.List(r.Context(), filter)
	if err != nil {
		respondError(w, err)
		return
	}
	if restaurants == nil {
		restaurants = []models.Restaurant{}
	}

	respondOK(w, RestaurantListResponse{
		Success:     true,
		Restaurants: restaurants,
		Count:       len(restaurants),
		Filters:     echoFilter(filter),
	})
}

func (h *Handlers) handleCreateRestaurant(w http.ResponseWriter, r *http.Request) {
	var req RestaurantCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := validateRequest(&req); err != nil {
		respondError(w, err)
		return
	}

	restaurant, err := h.Restaurants.Create(r.Context(), services.NewRestaurant{
		Name:       req.Name,
		Categories: req.Categories,
		Distance:   strings.TrimSpace(req.Distance),
		ClosedDays: req.ClosedDays,
	}, h.user(r))
	if err != nil {
		respondError(w, err)
		return
	}

	respondCreated(w, RestaurantResponse{
		Success:    true,
		Restaurant: restaurant,
		Message:    "Added " + restaurant.Name + "!",
	})
}

func (h *Handlers) handleUpdateRestaurant(w http.ResponseWriter, r *http.Request) {
	var req RestaurantUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := validateRequest(&req); err != nil {
		respondError(w, err)
		return
	}

	restaurant, err := h.Restaurants.Update(r.Context(), chi.URLParam(r, "id"), services.RestaurantUpdate{
		Name:       req.Name,
		Categories: req.Categories,
		Distance:   req.Distance,
		ClosedDays: req.ClosedDays,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, RestaurantResponse{
		Success:    true,
		Restaurant: restaurant,
		Message:    "Restaurant updated successfully",
	})
}

func (h *Handlers) handleDeleteRestaurant(w http.ResponseWriter, r *http.Request) {
	found, err := h.Restaurants.Delete(r.Context(), chi.URLParam(r, "id"), h.user(r))
	if err != nil {
		respondError(w, err)
		return
	}
	if !found {
		respondError(w, NotFound("Restaurant not found"))
		return
	}
	respondSuccess(w, "Restaurant removed successfully")
}

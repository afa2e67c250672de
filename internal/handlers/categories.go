package handlers

import (
	"fmt"
	"net/http"

	"github.com/abrezinsky/dinnerroulette/internal/models"
	"github.com/abrezinsky/dinnerroulette/internal/services"
)

func (h *Handlers) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Categories.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, map[string]interface{}{"categories": categories})
}

func (h *Handlers) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryCreateRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := validateRequest(&req); err != nil {
		respondError(w, err)
		return
	}

	name, added, err := h.Categories.Add(r.Context(), *req.Name)
	if err != nil {
		respondError(w, err)
		return
	}
	if !added {
		respondError(w, services.ErrCategoryExists)
		return
	}

	respondCreated(w, map[string]interface{}{
		"category": name,
		"message":  fmt.Sprintf("Category '%s' added successfully", name),
	})
}

func (h *Handlers) handleListDistances(w http.ResponseWriter, r *http.Request) {
	respondOK(w, DistancesResponse{
		Success:   true,
		Distances: models.Distances,
		Default:   h.Restaurants.DefaultDistance(),
	})
}

package handlers

import (
	"github.com/abrezinsky/dinnerroulette/internal/models"
	"github.com/abrezinsky/dinnerroulette/pkg/places"
)

// FilterEcho reports the filters applied, "all" when unset
type FilterEcho struct {
	Category string `json:"category"`
	Distance string `json:"distance"`
}

func echoFilter(f models.Filter) FilterEcho {
	echo := FilterEcho{Category: "all", Distance: "all"}
	if f.Category != "" {
		echo.Category = f.Category
	}
	if f.Distance != "" {
		echo.Distance = string(f.Distance)
	}
	return echo
}

// UserCheckResponse is returned by GET /api/user/check
type UserCheckResponse struct {
	Success bool   `json:"success"`
	User    string `json:"user,omitempty"`
	Exists  bool   `json:"exists"`
}

// RestaurantListResponse is returned by GET /api/restaurants
type RestaurantListResponse struct {
	Success     bool                `json:"success"`
	Restaurants []models.Restaurant `json:"restaurants"`
	Count       int                 `json:"count"`
	Filters     FilterEcho          `json:"filters"`
}

// RestaurantResponse wraps a single restaurant with a message
type RestaurantResponse struct {
	Success    bool               `json:"success"`
	Restaurant *models.Restaurant `json:"restaurant"`
	Message    string             `json:"message"`
}

// SpinResponse is returned by POST /api/randomize
type SpinResponse struct {
	Success    bool              `json:"success"`
	Restaurant models.Restaurant `json:"restaurant"`
	EntryID    string            `json:"entry_id"`
}

// PoolStatsResponse is returned by GET /api/randomize/stats
type PoolStatsResponse struct {
	Success bool `json:"success"`
	*models.PoolStats
}

// SpinStatusResponse is returned by GET /api/user/spin-status
type SpinStatusResponse struct {
	Success          bool `json:"success"`
	CanSpin          bool `json:"can_spin"`
	SecondsRemaining int  `json:"seconds_remaining"`
	TimeoutSeconds   int  `json:"timeout_seconds"`
}

// HistoryResponse is returned by GET /api/history
type HistoryResponse struct {
	Success bool                  `json:"success"`
	History []models.HistoryEntry `json:"history"`
	Count   int                   `json:"count"`
}

// UserStatsResponse is returned by GET /api/user/{username}/stats
type UserStatsResponse struct {
	Success bool              `json:"success"`
	Stats   *models.UserStats `json:"stats"`
}

// DistancesResponse is returned by GET /api/distances
type DistancesResponse struct {
	Success   bool              `json:"success"`
	Distances []models.Distance `json:"distances"`
	Default   models.Distance   `json:"default"`
}

// RestoreResponse is returned by POST /api/restore
type RestoreResponse struct {
	Success bool                  `json:"success"`
	Result  *models.RestoreResult `json:"result"`
	Message string                `json:"message"`
}

// PlaceSearchResponse is returned by GET /api/places/search
type PlaceSearchResponse struct {
	Success bool           `json:"success"`
	Results []places.Place `json:"results"`
	Count   int            `json:"count"`
}

// PlaceDetailsResponse is returned by GET /api/places/{id}
type PlaceDetailsResponse struct {
	Success bool                 `json:"success"`
	Place   *places.PlaceDetails `json:"place"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}

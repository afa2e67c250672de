package services

import (
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/abrezinsky/dinnerroulette/internal/errors"
	"github.com/abrezinsky/dinnerroulette/internal/models"
)

// Service errors
var (
	ErrNoRestaurants      = errors.New("no restaurants available")
	ErrRestaurantNotFound = apperrors.NotFound("Restaurant not found")
	ErrHistoryNotFound    = apperrors.NotFound("History entry not found")
	ErrBackupNotFound     = apperrors.NotFound("Backup file not found")
	ErrCategoriesRequired = apperrors.Validation("At least one category is required")
	ErrCategoriesEmpty    = apperrors.Validation("Categories must be a non-empty array")
	ErrCategoryExists     = apperrors.Validation("Category already exists")
)

// SpinTooSoonError is returned when a user spins again inside their limit window.
type SpinTooSoonError struct {
	SecondsRemaining int
}

func (e *SpinTooSoonError) Error() string {
	return fmt.Sprintf("Please wait %d seconds before spinning again", e.SecondsRemaining)
}

// noRestaurantsError describes an empty pool in terms of the filter used.
func noRestaurantsError(filter models.Filter) error {
	category, distance := "all", "all"
	if filter.Category != "" {
		category = filter.Category
	}
	if filter.Distance != "" {
		distance = string(filter.Distance)
	}
	return apperrors.Wrap(ErrNoRestaurants, apperrors.ErrNotFound,
		fmt.Sprintf("No restaurants available with category '%s' and distance '%s'", category, distance))
}

func invalidDistanceError(value string) error {
	valid := make([]string, len(models.Distances))
	for i, d := range models.Distances {
		valid[i] = string(d)
	}
	return apperrors.Validationf("Invalid distance '%s'. Must be one of: %s", value, strings.Join(valid, ", "))
}

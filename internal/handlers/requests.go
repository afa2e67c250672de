package handlers

import (
	stderrors "errors"

	"github.com/go-playground/validator/v10"
)

// validate is a reusable validator instance
var validate = validator.New()

// RegisterRequest represents a request to register a first name
type RegisterRequest struct {
	FirstName *string `json:"first_name" validate:"required"`
}

// RestaurantCreateRequest represents a request to add a restaurant
type RestaurantCreateRequest struct {
	Name       string   `json:"name" validate:"required"`
	Categories []string `json:"categories" validate:"required,min=1"`
	Distance   string   `json:"distance"`
	ClosedDays []int    `json:"closed_days" validate:"max=7"`
}

// RestaurantUpdateRequest represents a request to update a restaurant.
// Absent fields are left unchanged.
type RestaurantUpdateRequest struct {
	Name       *string  `json:"name"`
	Categories []string `json:"categories"`
	Distance   *string  `json:"distance"`
	ClosedDays []int    `json:"closed_days" validate:"max=7"`
}

// CategoryCreateRequest represents a request to add a custom category
type CategoryCreateRequest struct {
	Name *string `json:"name" validate:"required"`
}

// RestoreRequest names the backup file to restore. Empty means the latest.
type RestoreRequest struct {
	BackupFile string `json:"backup_file" validate:"max=255"`
}

// fieldMessages maps a failing struct field and tag to the message shown
// to the user. Unlisted failures get a generic message.
var fieldMessages = map[string]string{
	"RegisterRequest.FirstName:required":          "First name is required",
	"RestaurantCreateRequest.Name:required":       "Restaurant name is required",
	"RestaurantCreateRequest.Categories:required": "At least one category is required",
	"RestaurantCreateRequest.Categories:min":      "At least one category is required",
	"RestaurantCreateRequest.ClosedDays:max":      "A week only has seven days",
	"RestaurantUpdateRequest.ClosedDays:max":      "A week only has seven days",
	"CategoryCreateRequest.Name:required":         "Category name is required",
	"RestoreRequest.BackupFile:max":               "Backup file name is too long",
}

// validateRequest runs struct validation and converts the first failure
// into a 400 APIError.
func validateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) || len(verrs) == 0 {
		return ValidationError("Invalid request")
	}
	fe := verrs[0]
	if msg, ok := fieldMessages[fe.StructNamespace()+":"+fe.Tag()]; ok {
		return ValidationError(msg)
	}
	return ValidationError("Invalid " + fe.Field())
}

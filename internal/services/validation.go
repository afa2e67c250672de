package services

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	apperrors "github.com/abrezinsky/dinnerroulette/internal/errors"
)

const (
	minRestaurantName = 2
	maxRestaurantName = 100
	minUsername       = 2
	maxUsername       = 50
	minCategoryName   = 2
	maxCategoryName   = 30
)

// ValidateRestaurantName trims name and checks its length.
func ValidateRestaurantName(name string) (string, error) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	switch {
	case n == 0:
		return "", apperrors.Validation("Restaurant name is required")
	case n < minRestaurantName:
		return "", apperrors.Validation("Restaurant name must be at least 2 characters")
	case n > maxRestaurantName:
		return "", apperrors.Validation("Restaurant name must be less than 100 characters")
	}
	return name, nil
}

// ValidateUsername trims a first name and checks it holds only letters,
// spaces, hyphens and apostrophes.
func ValidateUsername(name string) (string, error) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	switch {
	case n == 0:
		return "", apperrors.Validation("First name is required")
	case n < minUsername:
		return "", apperrors.Validation("First name must be at least 2 characters")
	case n > maxUsername:
		return "", apperrors.Validation("First name must be less than 50 characters")
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && r != ' ' && r != '-' && r != '\'' {
			return "", apperrors.Validation("First name can only contain letters, spaces, hyphens, and apostrophes")
		}
	}
	return name, nil
}

// NormalizeCategory lowercases and trims a category name and checks its length.
func NormalizeCategory(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	n := utf8.RuneCountInString(name)
	switch {
	case n == 0:
		return "", apperrors.Validation("Category name is required")
	case n < minCategoryName:
		return "", apperrors.Validation("Category name must be at least 2 characters")
	case n > maxCategoryName:
		return "", apperrors.Validation("Category name must be less than 30 characters")
	}
	return name, nil
}

// normalizeClosedDays drops days outside 0..6 and duplicates, and sorts.
func normalizeClosedDays(days []int) []int {
	out := make([]int, 0, len(days))
	for _, d := range days {
		if d < 0 || d > 6 || slices.Contains(out, d) {
			continue
		}
		out = append(out, d)
	}
	slices.Sort(out)
	return out
}

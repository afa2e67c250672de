package services

import (
	"context"
	"slices"

	"github.com/abrezinsky/dinnerroulette/internal/logger"
	"github.com/abrezinsky/dinnerroulette/internal/repository"
)

// CategoryServiceRepository defines the repository methods needed by CategoryService
type CategoryServiceRepository interface {
	repository.CategoryRepository
}

// CategoryService handles the category registry: configured defaults plus
// custom categories added by users.
type CategoryService struct {
	log      logger.Logger
	repo     CategoryServiceRepository
	defaults []string
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(log logger.Logger, repo CategoryServiceRepository, defaults []string) *CategoryService {
	return &CategoryService{log: log, repo: repo, defaults: slices.Clone(defaults)}
}

// Defaults returns the configured default categories.
func (s *CategoryService) Defaults() []string {
	return slices.Clone(s.defaults)
}

// IsDefault reports whether name is a configured default.
func (s *CategoryService) IsDefault(name string) bool {
	return slices.Contains(s.defaults, name)
}

// List returns defaults and custom categories, sorted and deduplicated.
func (s *CategoryService) List(ctx context.Context) ([]string, error) {
	custom, err := s.repo.CustomCategories(ctx)
	if err != nil {
		return nil, err
	}
	all := append(slices.Clone(s.defaults), custom...)
	slices.Sort(all)
	return slices.Compact(all), nil
}

// Custom returns the stored categories that are not defaults.
func (s *CategoryService) Custom(ctx context.Context) ([]string, error) {
	custom, err := s.repo.CustomCategories(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(custom))
	for _, c := range custom {
		if !s.IsDefault(c) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Validate reports whether name is a registered category.
func (s *CategoryService) Validate(ctx context.Context, name string) (bool, error) {
	if s.IsDefault(name) {
		return true, nil
	}
	custom, err := s.repo.CustomCategories(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(custom, name), nil
}

// Add normalizes and registers a custom category. It returns the normalized
// name and false when the category already existed.
func (s *CategoryService) Add(ctx context.Context, name string) (string, bool, error) {
	name, err := NormalizeCategory(name)
	if err != nil {
		return "", false, err
	}
	if s.IsDefault(name) {
		return name, false, nil
	}
	added, err := s.repo.AddCustomCategory(context.WithoutCancel(ctx), name)
	if err != nil {
		return "", false, err
	}
	if added {
		s.log.Info("Category added", "category", name)
	}
	return name, added, nil
}

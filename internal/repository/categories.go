package repository

import (
	"context"
	"slices"
)

// CustomCategories returns the stored custom categories, sorted.
func (r *Repository) CustomCategories(ctx context.Context) ([]string, error) {
	cats, err := r.store.SMembers(ctx, keyCustomCategories)
	if err != nil {
		return nil, err
	}
	slices.Sort(cats)
	return cats, nil
}

// AddCustomCategory reports whether name was newly added.
func (r *Repository) AddCustomCategory(ctx context.Context, name string) (bool, error) {
	n, err := r.store.SAdd(ctx, keyCustomCategories, name)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

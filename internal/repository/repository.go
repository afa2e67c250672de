package repository

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/abrezinsky/dinnerroulette/internal/models"
	"github.com/abrezinsky/dinnerroulette/internal/store"
)

// Repository provides data access methods on top of a key-value store.
type Repository struct {
	store store.Store
}

// New creates a new Repository
func New(s store.Store) *Repository {
	return &Repository{store: s}
}

// Store returns the underlying key-value store
func (r *Repository) Store() store.Store {
	return r.store
}

// Close closes the underlying store
func (r *Repository) Close() error {
	if r.store != nil {
		return r.store.Close()
	}
	return nil
}

// Ping checks if the store connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}

const (
	flagActive   = "1"
	flagInactive = "0"
)

// encodeRestaurant flattens a restaurant into hash fields. List fields are
// stored as JSON arrays.
func encodeRestaurant(r *models.Restaurant) map[string]string {
	categories, _ := json.Marshal(nonNil(r.Categories))
	closed, _ := json.Marshal(nonNilInts(r.ClosedDays))

	active := flagInactive
	if r.IsActive {
		active = flagActive
	}

	fields := map[string]string{
		"id":          r.ID,
		"name":        r.Name,
		"categories":  string(categories),
		"distance":    string(r.Distance),
		"closed_days": string(closed),
		"added_by":    r.AddedBy,
		"added_at":    r.AddedAt.UTC().Format(time.RFC3339Nano),
		"is_active":   active,
	}
	if r.RemovedBy != "" {
		fields["removed_by"] = r.RemovedBy
	}
	if r.RemovedAt != nil {
		fields["removed_at"] = r.RemovedAt.UTC().Format(time.RFC3339Nano)
	}
	return fields
}

// decodeRestaurant rebuilds a restaurant from hash fields. Malformed list
// fields fall back the way older records were written.
func decodeRestaurant(h map[string]string) *models.Restaurant {
	r := &models.Restaurant{
		ID:        h["id"],
		Name:      h["name"],
		Distance:  models.Distance(h["distance"]),
		AddedBy:   h["added_by"],
		IsActive:  h["is_active"] != flagInactive,
		RemovedBy: h["removed_by"],
	}

	if err := json.Unmarshal([]byte(h["categories"]), &r.Categories); err != nil || r.Categories == nil {
		r.Categories = []string{}
		if single := h["category"]; single != "" {
			r.Categories = []string{single}
		}
	}
	if err := json.Unmarshal([]byte(h["closed_days"]), &r.ClosedDays); err != nil || r.ClosedDays == nil {
		r.ClosedDays = []int{}
	}
	if t, err := models.ParseTimestamp(h["added_at"]); err == nil {
		r.AddedAt = t
	}
	if t, err := models.ParseTimestamp(h["removed_at"]); err == nil {
		r.RemovedAt = &t
	}
	return r
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func nonNilInts(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}

// compareIDs orders numeric ids numerically and anything else after them lexically.
func compareIDs(a, b string) int {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		}
		return 0
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return strings.Compare(a, b)
}

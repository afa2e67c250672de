package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Distance is a travel distance level. Levels are ordered, nearest first.
type Distance string

const (
	Nearby      Distance = "nearby"
	ShortDrive  Distance = "short-drive"
	MediumDrive Distance = "medium-drive"
	Far         Distance = "far"
)

// Distances lists every level in ascending order.
var Distances = []Distance{Nearby, ShortDrive, MediumDrive, Far}

// ParseDistance returns the level named by s.
func ParseDistance(s string) (Distance, bool) {
	for _, d := range Distances {
		if string(d) == s {
			return d, true
		}
	}
	return "", false
}

// Rank is the position of d in the ordering, or -1 for an unknown level.
func (d Distance) Rank() int {
	for i, level := range Distances {
		if level == d {
			return i
		}
	}
	return -1
}

// AtMost returns d and every nearer level. A filter on d accepts exactly these.
func (d Distance) AtMost() []Distance {
	r := d.Rank()
	if r < 0 {
		return nil
	}
	return Distances[:r+1]
}

func (d Distance) Valid() bool {
	return d.Rank() >= 0
}

// Restaurant is a saved place the household may be sent to.
type Restaurant struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Categories []string   `json:"categories"`
	Distance   Distance   `json:"distance"`
	ClosedDays []int      `json:"closed_days"`
	AddedBy    string     `json:"added_by"`
	AddedAt    time.Time  `json:"added_at"`
	IsActive   bool       `json:"is_active"`
	RemovedBy  string     `json:"removed_by,omitempty"`
	RemovedAt  *time.Time `json:"removed_at,omitempty"`

	// IsEatAtHome marks the synthetic entry added to spin pools.
	IsEatAtHome bool `json:"is_eat_at_home,omitempty"`
}

// legacyTimestamp is the zone-less ISO layout found in older backups.
const legacyTimestamp = "2006-01-02T15:04:05.999999"

// ParseTimestamp reads RFC 3339 or a zone-less ISO timestamp taken as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation(legacyTimestamp, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
	}
	return t, nil
}

// UnmarshalJSON accepts is_active as a boolean or as the "1"/"0" strings
// written by older backups, and zone-less timestamps.
func (r *Restaurant) UnmarshalJSON(data []byte) error {
	type plain Restaurant
	aux := struct {
		*plain
		IsActive  json.RawMessage `json:"is_active"`
		AddedAt   string          `json:"added_at"`
		RemovedAt string          `json:"removed_at"`
	}{plain: (*plain)(r)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if aux.AddedAt != "" {
		t, err := ParseTimestamp(aux.AddedAt)
		if err != nil {
			return err
		}
		r.AddedAt = t
	}
	if aux.RemovedAt != "" {
		t, err := ParseTimestamp(aux.RemovedAt)
		if err != nil {
			return err
		}
		r.RemovedAt = &t
	}

	switch string(aux.IsActive) {
	case "", "null", "true", `"1"`, `"true"`:
		r.IsActive = true
	case "false", `"0"`, `"false"`:
		r.IsActive = false
	default:
		return fmt.Errorf("invalid is_active value %s", aux.IsActive)
	}
	return nil
}

// ClosedOn reports whether the restaurant is closed on weekday (0 = Sunday).
func (r *Restaurant) ClosedOn(weekday time.Weekday) bool {
	for _, d := range r.ClosedDays {
		if d == int(weekday) {
			return true
		}
	}
	return false
}

// PrimaryCategory is the first category, or "unknown".
func (r *Restaurant) PrimaryCategory() string {
	if len(r.Categories) == 0 {
		return "unknown"
	}
	return r.Categories[0]
}

// EatAtHomeID identifies the synthetic eat-at-home entry.
const EatAtHomeID = "eat-at-home"

// ValidRestaurantID reports whether id has the decimal form the id counter
// hands out. Anything else would collide with reserved keys or the
// eat-at-home entry.
func ValidRestaurantID(id string) bool {
	_, err := strconv.ParseUint(id, 10, 64)
	return err == nil
}

// NewEatAtHome builds the synthetic entry. It is never persisted.
func NewEatAtHome(name string) Restaurant {
	return Restaurant{
		ID:          EatAtHomeID,
		Name:        name,
		Categories:  []string{"home"},
		Distance:    Nearby,
		ClosedDays:  []int{},
		AddedBy:     "System",
		IsActive:    true,
		IsEatAtHome: true,
	}
}

// Filter narrows a candidate set. Empty fields mean no constraint.
type Filter struct {
	Category string   `json:"category,omitempty"`
	Distance Distance `json:"distance,omitempty"`
}

// HistoryEntry is one spin outcome in the ledger.
type HistoryEntry struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	RestaurantID   string    `json:"restaurant_id"`
	RestaurantName string    `json:"restaurant_name"`
	Category       string    `json:"category"`
	Timestamp      time.Time `json:"timestamp"`
	Went           bool      `json:"went"`
}

// UnmarshalJSON accepts zone-less timestamps from older ledgers.
func (e *HistoryEntry) UnmarshalJSON(data []byte) error {
	type plain HistoryEntry
	aux := struct {
		*plain
		Timestamp string `json:"timestamp"`
	}{plain: (*plain)(e)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t, err := ParseTimestamp(aux.Timestamp)
	if err != nil {
		return err
	}
	e.Timestamp = t
	return nil
}

// SpinResult is returned by a successful spin.
type SpinResult struct {
	Restaurant Restaurant `json:"restaurant"`
	EntryID    string     `json:"entry_id"`
}

// PoolItem is one distinct entry of a spin pool and its odds.
type PoolItem struct {
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// PoolStats describes the pool a spin would draw from right now.
type PoolStats struct {
	TotalPoolSize  int        `json:"total_pool_size"`
	Items          []PoolItem `json:"items"`
	Excluded       string     `json:"excluded,omitempty"`
	ExcludedReason string     `json:"excluded_reason,omitempty"`
	ClosedToday    []string   `json:"closed_today"`
	Filters        Filter     `json:"filters"`
}

// UserStats counts a contributor's additions and removals.
type UserStats struct {
	Username           string `json:"username"`
	RestaurantsAdded   int64  `json:"added"`
	RestaurantsRemoved int64  `json:"removed"`
}

// Snapshot is the portable backup document.
type Snapshot struct {
	Timestamp        string       `json:"timestamp"`
	Restaurants      []Restaurant `json:"restaurants"`
	CustomCategories []string     `json:"custom_categories"`
}

// RestoreResult reports what a restore wrote.
type RestoreResult struct {
	RestaurantsRestored int    `json:"restaurants_restored"`
	CategoriesRestored  int    `json:"categories_restored"`
	Timestamp           string `json:"timestamp"`
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

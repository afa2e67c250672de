package repository

import (
	"context"
	"time"

	"github.com/abrezinsky/dinnerroulette/internal/models"
)

// RestaurantRepository stores restaurant records and keeps their index sets
// consistent with each record's categories, distance and active flag.
type RestaurantRepository interface {
	NextRestaurantID(ctx context.Context) (string, error)
	CreateRestaurant(ctx context.Context, r *models.Restaurant) error
	GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error)
	GetRestaurants(ctx context.Context, ids []string) ([]models.Restaurant, error)
	RestaurantIDs(ctx context.Context, filter models.Filter) ([]string, error)
	ListRestaurants(ctx context.Context, filter models.Filter, activeOnly bool) ([]models.Restaurant, error)
	UpdateRestaurant(ctx context.Context, old, updated *models.Restaurant) error
	SoftDeleteRestaurant(ctx context.Context, r *models.Restaurant, removedBy string, at time.Time) error
	PutRestaurant(ctx context.Context, r *models.Restaurant) error
	UserStats(ctx context.Context, username string) (*models.UserStats, error)
}

// CategoryRepository stores the custom category set. Defaults live in config.
type CategoryRepository interface {
	CustomCategories(ctx context.Context) ([]string, error)
	AddCustomCategory(ctx context.Context, name string) (bool, error)
}

// HistoryRepository stores the spin ledger, newest entry first.
type HistoryRepository interface {
	AppendHistory(ctx context.Context, e *models.HistoryEntry) (int64, error)
	ListHistory(ctx context.Context, limit int) ([]models.HistoryEntry, error)
	PruneHistory(ctx context.Context, cutoff time.Time) (int, error)
	MarkHistoryWent(ctx context.Context, id string) (bool, error)
}

// SpinLimitRepository stores per-user last spin times.
type SpinLimitRepository interface {
	LastSpin(ctx context.Context, username string) (string, bool, error)
	SetLastSpin(ctx context.Context, username string, at time.Time, ttl time.Duration) error
}

// FullRepository combines all repository interfaces
// Use this when a service needs access to multiple domains
type FullRepository interface {
	RestaurantRepository
	CategoryRepository
	HistoryRepository
	SpinLimitRepository
	Ping(ctx context.Context) error
}

// Ensure Repository implements all interfaces
var _ FullRepository = (*Repository)(nil)

package services

import (
	"context"
	"time"

	"github.com/abrezinsky/dinnerroulette/internal/models"
)

// Clock returns the current instant. Tests pin it.
type Clock func() time.Time

// Picker returns a uniform index in [0, n).
type Picker func(n int) int

// Broadcaster pushes messages to live clients.
type Broadcaster interface {
	BroadcastMessage(msgType string, payload interface{})
}

// CategoryServicer defines the interface for category operations
type CategoryServicer interface {
	List(ctx context.Context) ([]string, error)
	Custom(ctx context.Context) ([]string, error)
	Validate(ctx context.Context, name string) (bool, error)
	Add(ctx context.Context, name string) (string, bool, error)
	IsDefault(name string) bool
	Defaults() []string
}

// RestaurantServicer defines the interface for restaurant operations
type RestaurantServicer interface {
	Create(ctx context.Context, in NewRestaurant, addedBy string) (*models.Restaurant, error)
	Get(ctx context.Context, id string) (*models.Restaurant, error)
	List(ctx context.Context, filter models.Filter) ([]models.Restaurant, error)
	Update(ctx context.Context, id string, upd RestaurantUpdate) (*models.Restaurant, error)
	Delete(ctx context.Context, id, removedBy string) (bool, error)
	UserStats(ctx context.Context, username string) (*models.UserStats, error)
	ParseFilter(category, distance string) (models.Filter, error)
	DefaultDistance() models.Distance
	AddListener(l ChangeListener)
}

// SelectionServicer defines the interface for spins
type SelectionServicer interface {
	SelectRandom(ctx context.Context, username string, filter models.Filter) (*models.SpinResult, error)
	Stats(ctx context.Context, filter models.Filter) (*models.PoolStats, error)
	SetBroadcaster(b Broadcaster)
}

// HistoryServicer defines the interface for the spin ledger
type HistoryServicer interface {
	Append(ctx context.Context, username string, r *models.Restaurant) (string, error)
	Prune(ctx context.Context) (int, error)
	MostRecent(ctx context.Context) (*models.HistoryEntry, error)
	List(ctx context.Context, limit int) ([]models.HistoryEntry, error)
	MarkWent(ctx context.Context, id string) error
}

// SpinLimitServicer defines the interface for the per-user spin limit
type SpinLimitServicer interface {
	CanSpin(ctx context.Context, username string) (bool, int, error)
	RecordSpin(ctx context.Context, username string) error
	Timeout() time.Duration
}

// BackupServicer defines the interface for backup and restore
type BackupServicer interface {
	Snapshot(ctx context.Context) (*models.Snapshot, error)
	Backup(ctx context.Context) (string, error)
	Restore(ctx context.Context, snap *models.Snapshot) (*models.RestoreResult, error)
	RestoreFromFile(ctx context.Context, name string) (*models.RestoreResult, error)
	Wait()
}

// Compile-time interface assertions
var (
	_ CategoryServicer   = (*CategoryService)(nil)
	_ RestaurantServicer = (*RestaurantService)(nil)
	_ SelectionServicer  = (*SelectionService)(nil)
	_ HistoryServicer    = (*HistoryService)(nil)
	_ SpinLimitServicer  = (*SpinLimitService)(nil)
	_ BackupServicer     = (*BackupService)(nil)
	_ ChangeListener     = (*BackupService)(nil)
	_ ChangeListener     = (*BroadcastListener)(nil)
)

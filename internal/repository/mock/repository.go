package mock

import (
	"context"
	"time"

	"github.com/abrezinsky/dinnerroulette/internal/models"
	"github.com/abrezinsky/dinnerroulette/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
// This provides a flexible way to test error paths without breaking the store.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.CreateRestaurantError = errors.New("store down")
//	svc := services.NewRestaurantService(log, mockRepo, categories, opts)
//	_, err := svc.Create(ctx, input, "Alex")
//	// err will now contain the injected error
type Repository struct {
	repository.FullRepository

	// ===== Restaurant Errors =====
	NextRestaurantIDError     error
	CreateRestaurantError     error
	GetRestaurantError        error
	GetRestaurantsError       error
	RestaurantIDsError        error
	ListRestaurantsError      error
	UpdateRestaurantError     error
	SoftDeleteRestaurantError error
	PutRestaurantError        error
	UserStatsError            error

	// PutRestaurantFailIDs fails PutRestaurant only for these ids.
	PutRestaurantFailIDs map[string]error

	// ===== Category Errors =====
	CustomCategoriesError  error
	AddCustomCategoryError error

	// ===== History Errors =====
	AppendHistoryError   error
	ListHistoryError     error
	PruneHistoryError    error
	MarkHistoryWentError error

	// ===== Spin Limit Errors =====
	LastSpinError    error
	SetLastSpinError error

	PingError error
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{
		FullRepository: real,
	}
}

// ===== Restaurant Methods =====

func (m *Repository) NextRestaurantID(ctx context.Context) (string, error) {
	if m.NextRestaurantIDError != nil {
		return "", m.NextRestaurantIDError
	}
	return m.FullRepository.NextRestaurantID(ctx)
}

func (m *Repository) CreateRestaurant(ctx context.Context, r *models.Restaurant) error {
	if m.CreateRestaurantError != nil {
		return m.CreateRestaurantError
	}
	return m.FullRepository.CreateRestaurant(ctx, r)
}

func (m *Repository) GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error) {
	if m.GetRestaurantError != nil {
		return nil, m.GetRestaurantError
	}
	return m.FullRepository.GetRestaurant(ctx, id)
}

func (m *Repository) GetRestaurants(ctx context.Context, ids []string) ([]models.Restaurant, error) {
	if m.GetRestaurantsError != nil {
		return nil, m.GetRestaurantsError
	}
	return m.FullRepository.GetRestaurants(ctx, ids)
}

func (m *Repository) RestaurantIDs(ctx context.Context, filter models.Filter) ([]string, error) {
	if m.RestaurantIDsError != nil {
		return nil, m.RestaurantIDsError
	}
	return m.FullRepository.RestaurantIDs(ctx, filter)
}

func (m *Repository) ListRestaurants(ctx context.Context, filter models.Filter, activeOnly bool) ([]models.Restaurant, error) {
	if m.ListRestaurantsError != nil {
		return nil, m.ListRestaurantsError
	}
	return m.FullRepository.ListRestaurants(ctx, filter, activeOnly)
}

func (m *Repository) UpdateRestaurant(ctx context.Context, old, updated *models.Restaurant) error {
	if m.UpdateRestaurantError != nil {
		return m.UpdateRestaurantError
	}
	return m.FullRepository.UpdateRestaurant(ctx, old, updated)
}

func (m *Repository) SoftDeleteRestaurant(ctx context.Context, r *models.Restaurant, removedBy string, at time.Time) error {
	if m.SoftDeleteRestaurantError != nil {
		return m.SoftDeleteRestaurantError
	}
	return m.FullRepository.SoftDeleteRestaurant(ctx, r, removedBy, at)
}

func (m *Repository) PutRestaurant(ctx context.Context, r *models.Restaurant) error {
	if m.PutRestaurantError != nil {
		return m.PutRestaurantError
	}
	if err, ok := m.PutRestaurantFailIDs[r.ID]; ok {
		return err
	}
	return m.FullRepository.PutRestaurant(ctx, r)
}

func (m *Repository) UserStats(ctx context.Context, username string) (*models.UserStats, error) {
	if m.UserStatsError != nil {
		return nil, m.UserStatsError
	}
	return m.FullRepository.UserStats(ctx, username)
}

// ===== Category Methods =====

func (m *Repository) CustomCategories(ctx context.Context) ([]string, error) {
	if m.CustomCategoriesError != nil {
		return nil, m.CustomCategoriesError
	}
	return m.FullRepository.CustomCategories(ctx)
}

func (m *Repository) AddCustomCategory(ctx context.Context, name string) (bool, error) {
	if m.AddCustomCategoryError != nil {
		return false, m.AddCustomCategoryError
	}
	return m.FullRepository.AddCustomCategory(ctx, name)
}

// ===== History Methods =====

func (m *Repository) AppendHistory(ctx context.Context, e *models.HistoryEntry) (int64, error) {
	if m.AppendHistoryError != nil {
		return 0, m.AppendHistoryError
	}
	return m.FullRepository.AppendHistory(ctx, e)
}

func (m *Repository) ListHistory(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	if m.ListHistoryError != nil {
		return nil, m.ListHistoryError
	}
	return m.FullRepository.ListHistory(ctx, limit)
}

func (m *Repository) PruneHistory(ctx context.Context, cutoff time.Time) (int, error) {
	if m.PruneHistoryError != nil {
		return 0, m.PruneHistoryError
	}
	return m.FullRepository.PruneHistory(ctx, cutoff)
}

func (m *Repository) MarkHistoryWent(ctx context.Context, id string) (bool, error) {
	if m.MarkHistoryWentError != nil {
		return false, m.MarkHistoryWentError
	}
	return m.FullRepository.MarkHistoryWent(ctx, id)
}

// ===== Spin Limit Methods =====

func (m *Repository) LastSpin(ctx context.Context, username string) (string, bool, error) {
	if m.LastSpinError != nil {
		return "", false, m.LastSpinError
	}
	return m.FullRepository.LastSpin(ctx, username)
}

func (m *Repository) SetLastSpin(ctx context.Context, username string, at time.Time, ttl time.Duration) error {
	if m.SetLastSpinError != nil {
		return m.SetLastSpinError
	}
	return m.FullRepository.SetLastSpin(ctx, username, at, ttl)
}

func (m *Repository) Ping(ctx context.Context) error {
	if m.PingError != nil {
		return m.PingError
	}
	return m.FullRepository.Ping(ctx)
}

package services

import (
	"context"
	stderrors "errors"
	"slices"
	"sync"
	"time"

	apperrors "github.com/abrezinsky/dinnerroulette/internal/errors"
	"github.com/abrezinsky/dinnerroulette/internal/logger"
	"github.com/abrezinsky/dinnerroulette/internal/models"
	"github.com/abrezinsky/dinnerroulette/internal/repository"
)

// RestaurantServiceRepository defines the repository methods needed by RestaurantService
type RestaurantServiceRepository interface {
	repository.RestaurantRepository
}

// ChangeKind names the mutation behind a RestaurantChange.
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

// RestaurantChange describes a committed mutation.
type RestaurantChange struct {
	Kind       ChangeKind         `json:"kind"`
	Restaurant *models.Restaurant `json:"restaurant"`
	Actor      string             `json:"actor"`
}

// ChangeListener is notified after a restaurant mutation has been stored.
// Listeners run on the caller's goroutine and must not block.
type ChangeListener interface {
	RestaurantsChanged(ctx context.Context, change RestaurantChange)
}

// NewRestaurant is the input for Create.
type NewRestaurant struct {
	Name       string
	Categories []string
	Distance   string
	ClosedDays []int
}

// RestaurantUpdate holds the fields to change. Nil fields are left alone.
type RestaurantUpdate struct {
	Name       *string
	Categories []string
	Distance   *string
	ClosedDays []int
}

// RestaurantService handles restaurant business logic
type RestaurantService struct {
	log             logger.Logger
	repo            RestaurantServiceRepository
	categories      CategoryServicer
	defaultDistance models.Distance
	now             Clock
	locks           keyedMutex

	mu        sync.RWMutex
	listeners []ChangeListener
}

// NewRestaurantService creates a new RestaurantService
func NewRestaurantService(log logger.Logger, repo RestaurantServiceRepository, categories CategoryServicer, defaultDistance models.Distance) *RestaurantService {
	if !defaultDistance.Valid() {
		defaultDistance = models.Nearby
	}
	return &RestaurantService{
		log:             log,
		repo:            repo,
		categories:      categories,
		defaultDistance: defaultDistance,
		now:             time.Now,
	}
}

// SetClock replaces the time source.
func (s *RestaurantService) SetClock(c Clock) {
	s.now = c
}

// AddListener registers a post-commit listener.
func (s *RestaurantService) AddListener(l ChangeListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *RestaurantService) notify(ctx context.Context, change RestaurantChange) {
	s.mu.RLock()
	listeners := s.listeners
	s.mu.RUnlock()
	for _, l := range listeners {
		l.RestaurantsChanged(ctx, change)
	}
}

// DefaultDistance is the level used when a create request names none.
func (s *RestaurantService) DefaultDistance() models.Distance {
	return s.defaultDistance
}

func (s *RestaurantService) parseDistance(value string) (models.Distance, error) {
	d, ok := models.ParseDistance(value)
	if !ok {
		return "", invalidDistanceError(value)
	}
	return d, nil
}

// checkCategories rejects any category missing from the registry.
func (s *RestaurantService) checkCategories(ctx context.Context, categories []string) ([]string, error) {
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		ok, err := s.categories.Validate(ctx, c)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperrors.Validationf("Invalid category '%s'. Use existing categories or add a new one.", c)
		}
		if !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Create validates and stores a new active restaurant.
func (s *RestaurantService) Create(ctx context.Context, in NewRestaurant, addedBy string) (*models.Restaurant, error) {
	name, err := ValidateRestaurantName(in.Name)
	if err != nil {
		return nil, err
	}
	if len(in.Categories) == 0 {
		return nil, ErrCategoriesRequired
	}
	categories, err := s.checkCategories(ctx, in.Categories)
	if err != nil {
		return nil, err
	}
	distance := s.defaultDistance
	if in.Distance != "" {
		if distance, err = s.parseDistance(in.Distance); err != nil {
			return nil, err
		}
	}

	ctx = context.WithoutCancel(ctx)
	id, err := s.repo.NextRestaurantID(ctx)
	if err != nil {
		return nil, err
	}

	r := &models.Restaurant{
		ID:         id,
		Name:       name,
		Categories: categories,
		Distance:   distance,
		ClosedDays: normalizeClosedDays(in.ClosedDays),
		AddedBy:    addedBy,
		AddedAt:    s.now().UTC(),
		IsActive:   true,
	}
	if err := s.repo.CreateRestaurant(ctx, r); err != nil {
		return nil, err
	}

	s.log.Info("Restaurant added", "id", r.ID, "name", r.Name, "added_by", addedBy)
	s.notify(ctx, RestaurantChange{Kind: ChangeCreated, Restaurant: r, Actor: addedBy})
	return r, nil
}

// Get returns a restaurant by id, active or not.
func (s *RestaurantService) Get(ctx context.Context, id string) (*models.Restaurant, error) {
	if !models.ValidRestaurantID(id) {
		return nil, ErrRestaurantNotFound
	}
	r, err := s.repo.GetRestaurant(ctx, id)
	if stderrors.Is(err, repository.ErrNotFound) {
		return nil, ErrRestaurantNotFound
	}
	return r, err
}

// ParseFilter checks raw query values and builds a Filter.
func (s *RestaurantService) ParseFilter(category, distance string) (models.Filter, error) {
	f := models.Filter{Category: category}
	if distance != "" {
		d, err := s.parseDistance(distance)
		if err != nil {
			return models.Filter{}, err
		}
		f.Distance = d
	}
	return f, nil
}

// List returns active restaurants matching filter, sorted by name.
func (s *RestaurantService) List(ctx context.Context, filter models.Filter) ([]models.Restaurant, error) {
	if filter.Distance != "" && !filter.Distance.Valid() {
		return nil, invalidDistanceError(string(filter.Distance))
	}
	return s.repo.ListRestaurants(ctx, filter, true)
}

// Update applies the non-nil fields of upd and moves the record between
// index sets.
func (s *RestaurantService) Update(ctx context.Context, id string, upd RestaurantUpdate) (*models.Restaurant, error) {
	if !models.ValidRestaurantID(id) {
		return nil, ErrRestaurantNotFound
	}
	ctx = context.WithoutCancel(ctx)
	unlock := s.locks.Lock(id)
	defer unlock()

	old, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updated := *old

	if upd.Name != nil {
		if updated.Name, err = ValidateRestaurantName(*upd.Name); err != nil {
			return nil, err
		}
	}
	if upd.Categories != nil {
		if len(upd.Categories) == 0 {
			return nil, ErrCategoriesEmpty
		}
		if updated.Categories, err = s.checkCategories(ctx, upd.Categories); err != nil {
			return nil, err
		}
	}
	if upd.Distance != nil {
		if updated.Distance, err = s.parseDistance(*upd.Distance); err != nil {
			return nil, err
		}
	}
	if upd.ClosedDays != nil {
		updated.ClosedDays = normalizeClosedDays(upd.ClosedDays)
	}

	if err := s.repo.UpdateRestaurant(ctx, old, &updated); err != nil {
		return nil, err
	}

	s.log.Info("Restaurant updated", "id", id, "name", updated.Name)
	s.notify(ctx, RestaurantChange{Kind: ChangeUpdated, Restaurant: &updated})
	return &updated, nil
}

// Delete soft-deletes a restaurant. It reports false for an unknown id.
// Deleting an inactive restaurant changes nothing and reports true.
func (s *RestaurantService) Delete(ctx context.Context, id, removedBy string) (bool, error) {
	if !models.ValidRestaurantID(id) {
		return false, nil
	}
	ctx = context.WithoutCancel(ctx)
	unlock := s.locks.Lock(id)
	defer unlock()

	r, err := s.repo.GetRestaurant(ctx, id)
	if stderrors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !r.IsActive {
		return true, nil
	}

	at := s.now().UTC()
	if err := s.repo.SoftDeleteRestaurant(ctx, r, removedBy, at); err != nil {
		return false, err
	}
	r.IsActive = false
	r.RemovedBy = removedBy
	r.RemovedAt = &at

	s.log.Info("Restaurant removed", "id", id, "name", r.Name, "removed_by", removedBy)
	s.notify(ctx, RestaurantChange{Kind: ChangeDeleted, Restaurant: r, Actor: removedBy})
	return true, nil
}

// UserStats counts what a user has added and removed.
func (s *RestaurantService) UserStats(ctx context.Context, username string) (*models.UserStats, error) {
	return s.repo.UserStats(ctx, username)
}

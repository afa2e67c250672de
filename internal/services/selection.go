package services

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/abrezinsky/dinnerroulette/internal/logger"
	"github.com/abrezinsky/dinnerroulette/internal/metrics"
	"github.com/abrezinsky/dinnerroulette/internal/models"
)

// SelectionServiceRepository defines the repository methods needed by SelectionService
type SelectionServiceRepository interface {
	RestaurantIDs(ctx context.Context, filter models.Filter) ([]string, error)
	GetRestaurants(ctx context.Context, ids []string) ([]models.Restaurant, error)
	GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error)
}

// EatAtHomeOptions configures the synthetic stay-in entry.
type EatAtHomeOptions struct {
	Enabled        bool
	Name           string
	Weight         int
	CooldownExempt bool
}

// SelectionOptions configures pool building.
type SelectionOptions struct {
	Cooldown         time.Duration
	EatAtHome        EatAtHomeOptions
	EnforceSpinLimit bool
}

// SelectionService draws restaurants from the filtered, weighted pool.
type SelectionService struct {
	log         logger.Logger
	repo        SelectionServiceRepository
	history     HistoryServicer
	limiter     SpinLimitServicer
	opts        SelectionOptions
	now         Clock
	pick        Picker
	broadcaster Broadcaster
}

// NewSelectionService creates a new SelectionService
func NewSelectionService(log logger.Logger, repo SelectionServiceRepository, history HistoryServicer, limiter SpinLimitServicer, opts SelectionOptions) *SelectionService {
	return &SelectionService{
		log:     log,
		repo:    repo,
		history: history,
		limiter: limiter,
		opts:    opts,
		now:     time.Now,
		pick:    rand.IntN,
	}
}

// SetClock replaces the time source.
func (s *SelectionService) SetClock(c Clock) {
	s.now = c
}

// SetPicker replaces the random source.
func (s *SelectionService) SetPicker(p Picker) {
	s.pick = p
}

// SetBroadcaster sets the broadcaster for spin results
func (s *SelectionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// pool is the weighted multiset a spin draws from.
type pool struct {
	entries     []models.Restaurant
	excluded    string
	closedToday []string
}

// buildPool resolves candidates, applies the cooldown and closed-day rules
// and appends the eat-at-home entry.
func (s *SelectionService) buildPool(ctx context.Context, filter models.Filter, now time.Time) (*pool, error) {
	ids, err := s.repo.RestaurantIDs(ctx, filter)
	if err != nil {
		return nil, err
	}

	var excludedID string
	last, err := s.history.MostRecent(ctx)
	if err != nil {
		return nil, err
	}
	if last != nil && now.Sub(last.Timestamp) < s.opts.Cooldown {
		excludedID = last.RestaurantID
	}

	candidates, err := s.repo.GetRestaurants(ctx, ids)
	if err != nil {
		return nil, err
	}

	p := &pool{closedToday: []string{}}
	today := now.UTC().Weekday()
	for i := range candidates {
		r := candidates[i]
		if !r.IsActive {
			continue
		}
		if r.ID == excludedID {
			p.excluded = r.Name
			continue
		}
		if r.ClosedOn(today) {
			p.closedToday = append(p.closedToday, r.Name)
			continue
		}
		p.entries = append(p.entries, r)
	}

	home := s.opts.EatAtHome
	if home.Enabled && home.Weight > 0 {
		if excludedID == models.EatAtHomeID && !home.CooldownExempt {
			p.excluded = home.Name
		} else {
			entry := models.NewEatAtHome(home.Name)
			for range home.Weight {
				p.entries = append(p.entries, entry)
			}
		}
	}

	// The excluded restaurant may sit outside the filter; still report it.
	if p.excluded == "" && excludedID != "" && excludedID != models.EatAtHomeID {
		if r, err := s.repo.GetRestaurant(ctx, excludedID); err == nil {
			p.excluded = r.Name
		}
	}
	return p, nil
}

// SelectRandom draws one entry from the pool and records it in history.
func (s *SelectionService) SelectRandom(ctx context.Context, username string, filter models.Filter) (*models.SpinResult, error) {
	if s.opts.EnforceSpinLimit && s.limiter != nil {
		allowed, remaining, err := s.limiter.CanSpin(ctx, username)
		if err != nil {
			return nil, err
		}
		if !allowed {
			metrics.Spins.WithLabelValues("rate_limited").Inc()
			return nil, &SpinTooSoonError{SecondsRemaining: remaining}
		}
	}

	p, err := s.buildPool(ctx, filter, s.now())
	if err != nil {
		return nil, err
	}
	if len(p.entries) == 0 {
		metrics.Spins.WithLabelValues("empty_pool").Inc()
		return nil, noRestaurantsError(filter)
	}
	metrics.SpinPoolSize.Observe(float64(len(p.entries)))

	choice := p.entries[s.pick(len(p.entries))]
	entryID, err := s.history.Append(ctx, username, &choice)
	if err != nil {
		return nil, err
	}

	if s.opts.EnforceSpinLimit && s.limiter != nil {
		if err := s.limiter.RecordSpin(ctx, username); err != nil {
			s.log.Warn("Failed to record spin time", "user", username, "error", err)
		}
	}

	outcome := "restaurant"
	if choice.IsEatAtHome {
		outcome = "eat_at_home"
	}
	metrics.Spins.WithLabelValues(outcome).Inc()
	s.log.Info("Spin", "user", username, "restaurant", choice.Name, "pool_size", len(p.entries))

	result := &models.SpinResult{Restaurant: choice, EntryID: entryID}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastMessage("spin_result", map[string]interface{}{
			"username":   username,
			"restaurant": choice,
			"entry_id":   entryID,
		})
	}
	return result, nil
}

// Stats describes the pool a spin would use right now without drawing.
func (s *SelectionService) Stats(ctx context.Context, filter models.Filter) (*models.PoolStats, error) {
	p, err := s.buildPool(ctx, filter, s.now())
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, e := range p.entries {
		counts[e.Name]++
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	total := len(p.entries)
	items := make([]models.PoolItem, 0, len(names))
	for _, name := range names {
		c := counts[name]
		items = append(items, models.PoolItem{
			Name:       name,
			Count:      c,
			Percentage: math.RoundToEven(float64(c)/float64(total)*1000) / 10,
		})
	}

	stats := &models.PoolStats{
		TotalPoolSize: total,
		Items:         items,
		ClosedToday:   p.closedToday,
		Filters:       filter,
	}
	if p.excluded != "" {
		stats.Excluded = p.excluded
		stats.ExcludedReason = fmt.Sprintf("Recent spin (within %s)", formatWindow(s.opts.Cooldown))
	}
	return stats, nil
}

// formatWindow renders whole minutes as "15 min".
func formatWindow(d time.Duration) string {
	if d > 0 && d%time.Minute == 0 {
		return fmt.Sprintf("%d min", int(d/time.Minute))
	}
	return d.String()
}

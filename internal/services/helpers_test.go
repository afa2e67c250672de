package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/abrezinsky/dinnerroulette/internal/logger"
	"github.com/abrezinsky/dinnerroulette/internal/models"
	"github.com/abrezinsky/dinnerroulette/internal/repository"
	"github.com/abrezinsky/dinnerroulette/internal/services"
	"github.com/abrezinsky/dinnerroulette/internal/testutil"
)

// monday is a Monday in UTC (weekday 1).
var monday = time.Date(2026, time.October, 12, 18, 0, 0, 0, time.UTC)

var defaultCategories = []string{"quick", "sit-down", "nice"}

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{now: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recordingBroadcaster captures broadcast messages.
type recordingBroadcaster struct {
	mu       sync.Mutex
	messages []models.WSMessage
}

func (b *recordingBroadcaster) BroadcastMessage(msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, models.WSMessage{Type: msgType, Payload: payload})
}

func (b *recordingBroadcaster) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.messages))
	for i, m := range b.messages {
		out[i] = m.Type
	}
	return out
}

// recordingListener captures restaurant changes.
type recordingListener struct {
	mu      sync.Mutex
	changes []services.RestaurantChange
}

func (l *recordingListener) RestaurantsChanged(_ context.Context, c services.RestaurantChange) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.changes = append(l.changes, c)
}

func (l *recordingListener) kinds() []services.ChangeKind {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]services.ChangeKind, len(l.changes))
	for i, c := range l.changes {
		out[i] = c.Kind
	}
	return out
}

// fixture wires every service over one in-memory repository.
type fixture struct {
	repo        repository.FullRepository
	clock       *fakeClock
	categories  *services.CategoryService
	restaurants *services.RestaurantService
	history     *services.HistoryService
	limiter     *services.SpinLimitService
	selection   *services.SelectionService
	backup      *services.BackupService
}

type fixtureOptions struct {
	selection services.SelectionOptions
	backupDir string
}

func defaultSelectionOptions() services.SelectionOptions {
	return services.SelectionOptions{
		Cooldown: 15 * time.Minute,
		EatAtHome: services.EatAtHomeOptions{
			Enabled:        true,
			Name:           "Eat at Home",
			Weight:         2,
			CooldownExempt: true,
		},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, testutil.NewTestRepository(t), fixtureOptions{selection: defaultSelectionOptions()})
}

func newFixtureWith(t *testing.T, repo repository.FullRepository, opts fixtureOptions) *fixture {
	t.Helper()
	log := logger.Discard()
	clock := newFakeClock(monday)
	if opts.backupDir == "" {
		opts.backupDir = t.TempDir()
	}

	f := &fixture{repo: repo, clock: clock}
	f.categories = services.NewCategoryService(log, repo, defaultCategories)
	f.restaurants = services.NewRestaurantService(log, repo, f.categories, models.Nearby)
	f.restaurants.SetClock(clock.Now)
	f.history = services.NewHistoryService(log, repo, 30*24*time.Hour)
	f.history.SetClock(clock.Now)
	f.limiter = services.NewSpinLimitService(log, repo, 30*time.Second)
	f.limiter.SetClock(clock.Now)
	f.selection = services.NewSelectionService(log, repo, f.history, f.limiter, opts.selection)
	f.selection.SetClock(clock.Now)
	f.backup = services.NewBackupService(log, repo, f.categories, services.BackupOptions{
		Dir:     opts.backupDir,
		Timeout: 5 * time.Second,
	})
	f.backup.SetClock(clock.Now)
	return f
}

func (f *fixture) add(t *testing.T, name string, categories []string, distance string, closed ...int) *models.Restaurant {
	t.Helper()
	r, err := f.restaurants.Create(context.Background(), services.NewRestaurant{
		Name:       name,
		Categories: categories,
		Distance:   distance,
		ClosedDays: closed,
	}, "Alex")
	if err != nil {
		t.Fatalf("Create(%q) failed: %v", name, err)
	}
	return r
}

package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/abrezinsky/dinnerroulette/internal/errors"
	"github.com/abrezinsky/dinnerroulette/internal/logger"
	"github.com/abrezinsky/dinnerroulette/internal/models"
	"github.com/abrezinsky/dinnerroulette/internal/repository/mock"
	"github.com/abrezinsky/dinnerroulette/internal/services"
	"github.com/abrezinsky/dinnerroulette/internal/testutil"
)

var tofuHouse = &models.Restaurant{ID: "1", Name: "Tofu House", Categories: []string{"quick", "nice"}}

func TestHistoryService_AppendAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.history.Append(ctx, "Alex", tofuHouse)
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	id, err := uuid.Parse(first)
	if err != nil || id.Version() != 7 {
		t.Errorf("expected a v7 uuid, got %q (%v)", first, err)
	}

	f.clock.Advance(time.Minute)
	second, _ := f.history.Append(ctx, "Sam", &models.Restaurant{ID: "2", Name: "Pho Place"})

	entries, err := f.history.List(ctx, 20)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != second || entries[1].ID != first {
		t.Errorf("expected newest first, got %s, %s", entries[0].ID, entries[1].ID)
	}
	if entries[1].Category != "quick" || entries[1].RestaurantName != "Tofu House" || entries[1].Went {
		t.Errorf("unexpected entry %+v", entries[1])
	}
	if entries[0].Category != "unknown" {
		t.Errorf("expected unknown category for uncategorized restaurant, got %q", entries[0].Category)
	}

	recent, err := f.history.MostRecent(ctx)
	if err != nil || recent == nil || recent.ID != second {
		t.Errorf("expected most recent %s, got %+v (%v)", second, recent, err)
	}
}

func TestHistoryService_MostRecentEmpty(t *testing.T) {
	f := newFixture(t)
	recent, err := f.history.MostRecent(context.Background())
	if err != nil || recent != nil {
		t.Errorf("expected nil, nil; got %+v, %v", recent, err)
	}
}

func TestHistoryService_MostRecentSkipsCorruptHead(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	ctx := context.Background()
	svc := services.NewHistoryService(logger.Discard(), repo, 30*24*time.Hour)

	id, _ := svc.Append(ctx, "Alex", tofuHouse)
	repo.Store().LPush(ctx, "spin_history", "{broken")

	recent, err := svc.MostRecent(ctx)
	if err != nil || recent == nil || recent.ID != id {
		t.Errorf("expected %s behind the corrupt head, got %+v (%v)", id, recent, err)
	}
}

func TestHistoryService_ConcurrentWritesKeepLedgerIntact(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	ctx := context.Background()
	svc := services.NewHistoryService(logger.Discard(), repo, 30*24*time.Hour)

	var marked []string
	for i := 0; i < 5; i++ {
		id, err := svc.Append(ctx, "Alex", tofuHouse)
		if err != nil {
			t.Fatalf("Append failed: %v", err)
		}
		marked = append(marked, id)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Append(ctx, "Sam", tofuHouse); err != nil {
				t.Errorf("Append failed: %v", err)
			}
		}()
	}
	for _, id := range marked {
		wg.Add(2)
		go func(id string) {
			defer wg.Done()
			if err := svc.MarkWent(ctx, id); err != nil {
				t.Errorf("MarkWent failed: %v", err)
			}
		}(id)
		go func() {
			defer wg.Done()
			if _, err := svc.Prune(ctx); err != nil {
				t.Errorf("Prune failed: %v", err)
			}
		}()
	}
	wg.Wait()

	entries, _ := svc.List(ctx, 50)
	if len(entries) != 25 {
		t.Fatalf("expected 25 entries, got %d", len(entries))
	}
	seen := make(map[string]bool)
	for _, e := range entries {
		if seen[e.ID] {
			t.Errorf("entry %s appears twice", e.ID)
		}
		seen[e.ID] = true
	}
	for _, e := range entries {
		want := e.Username == "Alex"
		if e.Went != want {
			t.Errorf("entry %s by %s: went=%v", e.ID, e.Username, e.Went)
		}
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct{ in, want int }{
		{-5, 1}, {0, 1}, {1, 1}, {20, 20}, {50, 50}, {51, 50}, {1000, 50},
	}
	for _, tt := range tests {
		if got := services.ClampLimit(tt.in); got != tt.want {
			t.Errorf("ClampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestHistoryService_ListClamps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 55; i++ {
		f.history.Append(ctx, "Alex", tofuHouse)
	}

	entries, _ := f.history.List(ctx, 500)
	if len(entries) != 50 {
		t.Errorf("expected 50 entries, got %d", len(entries))
	}
	entries, _ = f.history.List(ctx, 0)
	if len(entries) != 1 {
		t.Errorf("expected 1 entry, got %d", len(entries))
	}
}

func TestHistoryService_PruneRetention(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	retention := 30 * 24 * time.Hour
	start := f.clock.Now()

	old, _ := f.history.Append(ctx, "Alex", tofuHouse)
	f.clock.Set(start.Add(2 * time.Second))
	young, _ := f.history.Append(ctx, "Alex", tofuHouse)

	// The old entry is one second past the cutoff, the young one a second inside it.
	f.clock.Set(start.Add(retention + time.Second))
	removed, err := f.history.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 removed, got %d", removed)
	}

	entries, _ := f.history.List(ctx, 50)
	if len(entries) != 1 || entries[0].ID != young {
		t.Errorf("expected only %s to survive, got %+v", young, entries)
	}
	for _, e := range entries {
		if e.ID == old {
			t.Errorf("expired entry %s still listed", old)
		}
	}
}

func TestHistoryService_AppendPrunesEveryTenth(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.history.Append(ctx, "Alex", tofuHouse)
	f.clock.Advance(40 * 24 * time.Hour)
	for i := 0; i < 8; i++ {
		f.history.Append(ctx, "Alex", tofuHouse)
	}
	entries, _ := f.history.List(ctx, 50)
	if len(entries) != 9 {
		t.Fatalf("expected no prune before the 10th append, got %d entries", len(entries))
	}

	f.history.Append(ctx, "Alex", tofuHouse)
	entries, _ = f.history.List(ctx, 50)
	if len(entries) != 9 {
		t.Errorf("expected the expired entry pruned on the 10th append, got %d entries", len(entries))
	}
}

func TestHistoryService_PruneFailureDoesNotFailAppend(t *testing.T) {
	mockRepo := mock.NewRepository(testutil.NewTestRepository(t))
	mockRepo.PruneHistoryError = errors.New("store down")
	svc := services.NewHistoryService(logger.Discard(), mockRepo, time.Hour)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if _, err := svc.Append(ctx, "Alex", tofuHouse); err != nil {
			t.Fatalf("Append %d failed: %v", i, err)
		}
	}
	if _, err := svc.Prune(ctx); err == nil {
		t.Error("expected direct Prune to report the error")
	}
}

func TestHistoryService_MarkWent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id, _ := f.history.Append(ctx, "Alex", tofuHouse)
	f.history.Append(ctx, "Alex", tofuHouse)

	if err := f.history.MarkWent(ctx, id); err != nil {
		t.Fatalf("MarkWent failed: %v", err)
	}
	if err := f.history.MarkWent(ctx, id); err != nil {
		t.Fatalf("second MarkWent failed: %v", err)
	}

	entries, _ := f.history.List(ctx, 50)
	if !entries[1].Went || entries[0].Went {
		t.Errorf("expected only the marked entry went, got %+v", entries)
	}

	err := f.history.MarkWent(ctx, "missing")
	if !errors.Is(err, services.ErrHistoryNotFound) || !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestHistoryService_RepositoryErrors(t *testing.T) {
	mockRepo := mock.NewRepository(testutil.NewTestRepository(t))
	mockRepo.AppendHistoryError = errors.New("store down")
	mockRepo.ListHistoryError = errors.New("store down")
	mockRepo.MarkHistoryWentError = errors.New("store down")
	svc := services.NewHistoryService(logger.Discard(), mockRepo, time.Hour)
	ctx := context.Background()

	if _, err := svc.Append(ctx, "Alex", tofuHouse); err == nil {
		t.Error("expected Append error")
	}
	if _, err := svc.List(ctx, 10); err == nil {
		t.Error("expected List error")
	}
	if _, err := svc.MostRecent(ctx); err == nil {
		t.Error("expected MostRecent error")
	}
	if err := svc.MarkWent(ctx, "x"); err == nil || errors.Is(err, services.ErrHistoryNotFound) {
		t.Errorf("expected store error, got %v", err)
	}
}

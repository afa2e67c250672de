package repository_test

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/abrezinsky/dinnerroulette/internal/models"
	"github.com/abrezinsky/dinnerroulette/internal/repository"
	"github.com/abrezinsky/dinnerroulette/internal/store"
	"github.com/abrezinsky/dinnerroulette/internal/testutil"
)

var addedAt = time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)

func createRestaurant(t *testing.T, repo *repository.Repository, name string, categories []string, d models.Distance) *models.Restaurant {
	t.Helper()
	ctx := context.Background()

	id, err := repo.NextRestaurantID(ctx)
	if err != nil {
		t.Fatalf("NextRestaurantID failed: %v", err)
	}
	r := &models.Restaurant{
		ID: id, Name: name, Categories: categories, Distance: d,
		ClosedDays: []int{}, AddedBy: "Alex", AddedAt: addedAt, IsActive: true,
	}
	if err := repo.CreateRestaurant(ctx, r); err != nil {
		t.Fatalf("CreateRestaurant failed: %v", err)
	}
	return r
}

func members(t *testing.T, s store.Store, key string) []string {
	t.Helper()
	m, err := s.SMembers(context.Background(), key)
	if err != nil {
		t.Fatalf("SMembers(%s) failed: %v", key, err)
	}
	slices.Sort(m)
	return m
}

// =============================================================================
// Restaurants
// =============================================================================

func TestNextRestaurantID_Monotonic(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	ctx := context.Background()

	first, _ := repo.NextRestaurantID(ctx)
	second, _ := repo.NextRestaurantID(ctx)
	if first != "1" || second != "2" {
		t.Errorf("expected ids 1 and 2, got %s and %s", first, second)
	}
}

func TestCreateRestaurant_WritesIndexes(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	s := repo.Store()
	r := createRestaurant(t, repo, "Tofu House", []string{"quick", "nice"}, models.Nearby)

	for _, key := range []string{
		"restaurants:index",
		"restaurants:by_category:quick",
		"restaurants:by_category:nice",
		"restaurants:by_distance:nearby",
		"user:Alex:added",
	} {
		if got := members(t, s, key); !slices.Equal(got, []string{r.ID}) {
			t.Errorf("%s = %v, want [%s]", key, got, r.ID)
		}
	}

	h, _ := s.HGetAll(context.Background(), "restaurants:"+r.ID)
	if h["is_active"] != "1" || h["categories"] != `["quick","nice"]` || h["closed_days"] != "[]" {
		t.Errorf("unexpected hash encoding: %v", h)
	}
}

func TestGetRestaurant(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	r := createRestaurant(t, repo, "Tofu House", []string{"quick"}, models.ShortDrive)

	got, err := repo.GetRestaurant(context.Background(), r.ID)
	if err != nil {
		t.Fatalf("GetRestaurant failed: %v", err)
	}
	if got.Name != "Tofu House" || got.Distance != models.ShortDrive || !got.IsActive || !got.AddedAt.Equal(addedAt) {
		t.Errorf("unexpected restaurant: %+v", got)
	}

	if _, err := repo.GetRestaurant(context.Background(), "999"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetRestaurant_LegacyHash(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	ctx := context.Background()

	repo.Store().HSet(ctx, "restaurants:5", map[string]string{
		"id":         "5",
		"name":       "Old Diner",
		"categories": "not json",
		"category":   "sit-down",
		"distance":   "far",
		"added_at":   "2023-11-02T10:11:12.000001",
		"is_active":  "1",
	})

	got, err := repo.GetRestaurant(ctx, "5")
	if err != nil {
		t.Fatalf("GetRestaurant failed: %v", err)
	}
	if !slices.Equal(got.Categories, []string{"sit-down"}) {
		t.Errorf("expected single-category fallback, got %v", got.Categories)
	}
	if len(got.ClosedDays) != 0 {
		t.Errorf("expected no closed days, got %v", got.ClosedDays)
	}
	if got.AddedAt.Year() != 2023 {
		t.Errorf("expected legacy timestamp parsed, got %v", got.AddedAt)
	}
}

func TestRestaurantIDs_Filters(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	ctx := context.Background()

	a := createRestaurant(t, repo, "A", []string{"quick"}, models.Nearby)
	b := createRestaurant(t, repo, "B", []string{"quick"}, models.MediumDrive)
	c := createRestaurant(t, repo, "C", []string{"nice"}, models.ShortDrive)
	d := createRestaurant(t, repo, "D", []string{"quick", "nice"}, models.Far)

	tests := []struct {
		name   string
		filter models.Filter
		want   []string
	}{
		{"no filter", models.Filter{}, []string{a.ID, b.ID, c.ID, d.ID}},
		{"category", models.Filter{Category: "quick"}, []string{a.ID, b.ID, d.ID}},
		{"distance at most short-drive", models.Filter{Distance: models.ShortDrive}, []string{a.ID, c.ID}},
		{"distance far is everything", models.Filter{Distance: models.Far}, []string{a.ID, b.ID, c.ID, d.ID}},
		{"category and distance", models.Filter{Category: "quick", Distance: models.MediumDrive}, []string{a.ID, b.ID}},
		{"unknown category", models.Filter{Category: "brunch"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.RestaurantIDs(ctx, tt.filter)
			if err != nil {
				t.Fatalf("RestaurantIDs failed: %v", err)
			}
			if len(got) != len(tt.want) || (len(got) > 0 && !slices.Equal(got, tt.want)) {
				t.Errorf("RestaurantIDs(%+v) = %v, want %v", tt.filter, got, tt.want)
			}
		})
	}
}

func TestRestaurantIDs_DistanceMonotonic(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	ctx := context.Background()
	for i, d := range models.Distances {
		createRestaurant(t, repo, string(rune('A'+i)), []string{"quick"}, d)
	}

	prev := 0
	for _, d := range models.Distances {
		ids, _ := repo.RestaurantIDs(ctx, models.Filter{Category: "quick", Distance: d})
		if len(ids) < prev {
			t.Errorf("filter %s returned %d ids, fewer than a nearer level (%d)", d, len(ids), prev)
		}
		prev = len(ids)
	}
	if prev != len(models.Distances) {
		t.Errorf("expected far to include all %d, got %d", len(models.Distances), prev)
	}
}

func TestListRestaurants_SortedByNameCaseInsensitive(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	createRestaurant(t, repo, "zesty", []string{"quick"}, models.Nearby)
	createRestaurant(t, repo, "Applebee's", []string{"quick"}, models.Nearby)
	createRestaurant(t, repo, "burger barn", []string{"quick"}, models.Nearby)

	list, err := repo.ListRestaurants(context.Background(), models.Filter{}, true)
	if err != nil {
		t.Fatalf("ListRestaurants failed: %v", err)
	}
	var names []string
	for _, r := range list {
		names = append(names, r.Name)
	}
	if !slices.Equal(names, []string{"Applebee's", "burger barn", "zesty"}) {
		t.Errorf("unexpected order: %v", names)
	}
}

func TestListRestaurants_IncludesInactiveOnRequest(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	ctx := context.Background()
	keep := createRestaurant(t, repo, "Keep", []string{"quick"}, models.Nearby)
	gone := createRestaurant(t, repo, "Gone", []string{"quick"}, models.Nearby)

	if err := repo.SoftDeleteRestaurant(ctx, gone, "Sam", addedAt); err != nil {
		t.Fatalf("SoftDeleteRestaurant failed: %v", err)
	}

	active, _ := repo.ListRestaurants(ctx, models.Filter{}, true)
	if len(active) != 1 || active[0].ID != keep.ID {
		t.Errorf("expected only active restaurant, got %+v", active)
	}

	all, _ := repo.ListRestaurants(ctx, models.Filter{}, false)
	if len(all) != 2 {
		t.Fatalf("expected 2 restaurants including inactive, got %d", len(all))
	}
	if all[0].Name != "Gone" || all[0].IsActive || all[0].RemovedBy != "Sam" {
		t.Errorf("expected inactive record with removal metadata, got %+v", all[0])
	}
}

func TestUpdateRestaurant_MovesIndexes(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	s := repo.Store()
	ctx := context.Background()
	old := createRestaurant(t, repo, "Tofu House", []string{"quick"}, models.Nearby)

	updated := *old
	updated.Categories = []string{"nice"}
	updated.Distance = models.Far
	if err := repo.UpdateRestaurant(ctx, old, &updated); err != nil {
		t.Fatalf("UpdateRestaurant failed: %v", err)
	}

	if got := members(t, s, "restaurants:by_category:quick"); len(got) != 0 {
		t.Errorf("expected removal from quick, got %v", got)
	}
	if got := members(t, s, "restaurants:by_distance:nearby"); len(got) != 0 {
		t.Errorf("expected removal from nearby, got %v", got)
	}
	if got := members(t, s, "restaurants:by_category:nice"); !slices.Equal(got, []string{old.ID}) {
		t.Errorf("expected membership in nice, got %v", got)
	}
	if got := members(t, s, "restaurants:by_distance:far"); !slices.Equal(got, []string{old.ID}) {
		t.Errorf("expected membership in far, got %v", got)
	}
	if got := members(t, s, "restaurants:index"); !slices.Equal(got, []string{old.ID}) {
		t.Errorf("expected active index unchanged, got %v", got)
	}
}

func TestSoftDeleteRestaurant(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	s := repo.Store()
	ctx := context.Background()
	r := createRestaurant(t, repo, "Tofu House", []string{"quick", "nice"}, models.ShortDrive)

	if err := repo.SoftDeleteRestaurant(ctx, r, "Sam", addedAt); err != nil {
		t.Fatalf("SoftDeleteRestaurant failed: %v", err)
	}

	for _, key := range []string{"restaurants:index", "restaurants:by_category:quick", "restaurants:by_category:nice", "restaurants:by_distance:short-drive"} {
		if got := members(t, s, key); len(got) != 0 {
			t.Errorf("expected %s empty, got %v", key, got)
		}
	}
	if got := members(t, s, "user:Sam:removed"); !slices.Equal(got, []string{r.ID}) {
		t.Errorf("expected removal recorded for Sam, got %v", got)
	}
	if got := members(t, s, "restaurants:"+r.ID+":removed_by"); !slices.Equal(got, []string{"Sam"}) {
		t.Errorf("expected removed_by set, got %v", got)
	}
	if _, err := s.Get(ctx, "restaurants:"+r.ID+":removed_at"); err != nil {
		t.Errorf("expected removed_at key, got %v", err)
	}

	got, _ := repo.GetRestaurant(ctx, r.ID)
	if got.IsActive || got.RemovedBy != "Sam" || got.RemovedAt == nil {
		t.Errorf("expected inactive record with metadata, got %+v", got)
	}
	if got.AddedBy != "Alex" {
		t.Errorf("expected added_by preserved, got %q", got.AddedBy)
	}
}

func TestPutRestaurant_PreservesIDAndBumpsCounter(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	s := repo.Store()
	ctx := context.Background()

	active := &models.Restaurant{ID: "12", Name: "Restored", Categories: []string{"quick"}, Distance: models.Nearby, AddedBy: "Alex", AddedAt: addedAt, IsActive: true}
	inactive := &models.Restaurant{ID: "4", Name: "Retired", Categories: []string{"nice"}, Distance: models.Far, AddedBy: "Alex", AddedAt: addedAt}

	for _, r := range []*models.Restaurant{active, inactive} {
		if err := repo.PutRestaurant(ctx, r); err != nil {
			t.Fatalf("PutRestaurant failed: %v", err)
		}
	}

	if got := members(t, s, "restaurants:index"); !slices.Equal(got, []string{"12"}) {
		t.Errorf("expected only the active record indexed, got %v", got)
	}
	if got := members(t, s, "restaurants:by_category:nice"); len(got) != 0 {
		t.Errorf("expected inactive record unindexed, got %v", got)
	}

	next, _ := repo.NextRestaurantID(ctx)
	if next != "13" {
		t.Errorf("expected next id 13 after restore, got %s", next)
	}

	all, _ := repo.ListRestaurants(ctx, models.Filter{}, false)
	if len(all) != 2 {
		t.Errorf("expected both restored records listed, got %d", len(all))
	}
}

func TestPutRestaurant_OverwriteReindexes(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	s := repo.Store()
	ctx := context.Background()
	r := createRestaurant(t, repo, "Tofu House", []string{"quick"}, models.Nearby)

	replacement := *r
	replacement.Categories = []string{"nice"}
	if err := repo.PutRestaurant(ctx, &replacement); err != nil {
		t.Fatalf("PutRestaurant failed: %v", err)
	}

	if got := members(t, s, "restaurants:by_category:quick"); len(got) != 0 {
		t.Errorf("expected stale category membership removed, got %v", got)
	}
	if got := members(t, s, "restaurants:by_category:nice"); !slices.Equal(got, []string{r.ID}) {
		t.Errorf("expected new category membership, got %v", got)
	}
}

func TestUserStats(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	ctx := context.Background()
	a := createRestaurant(t, repo, "A", []string{"quick"}, models.Nearby)
	createRestaurant(t, repo, "B", []string{"quick"}, models.Nearby)
	repo.SoftDeleteRestaurant(ctx, a, "Alex", addedAt)

	stats, err := repo.UserStats(ctx, "Alex")
	if err != nil {
		t.Fatalf("UserStats failed: %v", err)
	}
	if stats.RestaurantsAdded != 2 || stats.RestaurantsRemoved != 1 {
		t.Errorf("expected 2 added 1 removed, got %+v", stats)
	}
}

// =============================================================================
// Categories
// =============================================================================

func TestCustomCategories(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	ctx := context.Background()

	added, err := repo.AddCustomCategory(ctx, "thai")
	if err != nil || !added {
		t.Fatalf("expected thai added, got %v (%v)", added, err)
	}
	added, _ = repo.AddCustomCategory(ctx, "thai")
	if added {
		t.Error("expected duplicate add to report false")
	}
	repo.AddCustomCategory(ctx, "brunch")

	cats, _ := repo.CustomCategories(ctx)
	if !slices.Equal(cats, []string{"brunch", "thai"}) {
		t.Errorf("expected sorted [brunch thai], got %v", cats)
	}
}

// =============================================================================
// History
// =============================================================================

func appendEntry(t *testing.T, repo *repository.Repository, id string, ts time.Time) int64 {
	t.Helper()
	n, err := repo.AppendHistory(context.Background(), &models.HistoryEntry{
		ID: id, Username: "Alex", RestaurantID: "1", RestaurantName: "Tofu House",
		Category: "quick", Timestamp: ts,
	})
	if err != nil {
		t.Fatalf("AppendHistory failed: %v", err)
	}
	return n
}

func TestHistory_AppendAndList(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	ctx := context.Background()

	for i, id := range []string{"a", "b", "c"} {
		if n := appendEntry(t, repo, id, addedAt.Add(time.Duration(i)*time.Minute)); n != int64(i+1) {
			t.Errorf("expected length %d, got %d", i+1, n)
		}
	}

	entries, err := repo.ListHistory(ctx, 2)
	if err != nil {
		t.Fatalf("ListHistory failed: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != "c" || entries[1].ID != "b" {
		t.Errorf("expected newest first [c b], got %+v", entries)
	}

	all, _ := repo.ListHistory(ctx, 0)
	if len(all) != 3 {
		t.Errorf("expected all 3 entries, got %d", len(all))
	}
}

func TestHistory_ListSkipsUndecodable(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	appendEntry(t, repo, "a", addedAt)
	repo.Store().LPush(context.Background(), "spin_history", "{broken")

	entries, _ := repo.ListHistory(context.Background(), 10)
	if len(entries) != 1 || entries[0].ID != "a" {
		t.Errorf("expected only the valid entry, got %+v", entries)
	}
}

func TestHistory_ListLimitSkipsUndecodableFirst(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	ctx := context.Background()
	appendEntry(t, repo, "a", addedAt)
	appendEntry(t, repo, "b", addedAt.Add(time.Minute))
	repo.Store().LPush(ctx, "spin_history", "{broken")

	entries, _ := repo.ListHistory(ctx, 2)
	if len(entries) != 2 || entries[0].ID != "b" || entries[1].ID != "a" {
		t.Errorf("expected [b a] past the broken head, got %+v", entries)
	}
	latest, _ := repo.ListHistory(ctx, 1)
	if len(latest) != 1 || latest[0].ID != "b" {
		t.Errorf("expected newest decodable entry b, got %+v", latest)
	}
}

// racingStore pushes one spin onto the ledger while a list rewrite is in
// progress, the way a concurrent request would.
type racingStore struct {
	store.Store
	entry string
	fired bool
	done  chan struct{}
}

func newRacingStore(s store.Store, entry models.HistoryEntry) *racingStore {
	data, _ := json.Marshal(entry)
	return &racingStore{Store: s, entry: string(data), done: make(chan struct{})}
}

func (r *racingStore) UpdateList(ctx context.Context, key string, fn store.ListUpdate) error {
	return r.Store.UpdateList(ctx, key, func(items []string) ([]string, bool, error) {
		if !r.fired {
			r.fired = true
			go func() {
				defer close(r.done)
				r.Store.LPush(context.Background(), key, r.entry)
			}()
		}
		return fn(items)
	})
}

func (r *racingStore) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(5 * time.Second):
		t.Fatal("concurrent push never finished")
	}
}

func ledgerIDs(t *testing.T, repo *repository.Repository) []string {
	t.Helper()
	entries, err := repo.ListHistory(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListHistory failed: %v", err)
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	return ids
}

func TestHistory_MarkWentKeepsConcurrentSpin(t *testing.T) {
	base := testutil.NewTestStore(t)
	seed := repository.New(base)
	appendEntry(t, seed, "a", addedAt)
	appendEntry(t, seed, "b", addedAt.Add(time.Minute))

	racing := newRacingStore(base, models.HistoryEntry{ID: "c", Username: "Sam", Timestamp: addedAt.Add(2 * time.Minute)})
	repo := repository.New(racing)

	ok, err := repo.MarkHistoryWent(context.Background(), "a")
	if err != nil || !ok {
		t.Fatalf("expected mark to succeed, got %v (%v)", ok, err)
	}
	racing.wait(t)

	if ids := ledgerIDs(t, seed); !slices.Equal(ids, []string{"c", "b", "a"}) {
		t.Fatalf("expected [c b a], got %v", ids)
	}
	entries, _ := seed.ListHistory(context.Background(), 0)
	if entries[0].Went || entries[1].Went || !entries[2].Went {
		t.Errorf("expected only a marked, got %+v", entries)
	}
}

func TestHistory_PruneKeepsConcurrentSpin(t *testing.T) {
	base := testutil.NewTestStore(t)
	seed := repository.New(base)
	appendEntry(t, seed, "old", addedAt.Add(-time.Hour))
	appendEntry(t, seed, "b", addedAt.Add(time.Minute))

	racing := newRacingStore(base, models.HistoryEntry{ID: "c", Username: "Sam", Timestamp: addedAt.Add(2 * time.Minute)})
	repo := repository.New(racing)

	removed, err := repo.PruneHistory(context.Background(), addedAt)
	if err != nil {
		t.Fatalf("PruneHistory failed: %v", err)
	}
	racing.wait(t)

	if removed != 1 {
		t.Errorf("expected 1 removed, got %d", removed)
	}
	if ids := ledgerIDs(t, seed); !slices.Equal(ids, []string{"c", "b"}) {
		t.Errorf("expected [c b], got %v", ids)
	}
}

func TestHistory_PruneBoundary(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	ctx := context.Background()
	cutoff := addedAt

	appendEntry(t, repo, "old", cutoff.Add(-time.Second))
	appendEntry(t, repo, "edge", cutoff)
	appendEntry(t, repo, "young", cutoff.Add(time.Second))
	repo.Store().LPush(ctx, "spin_history", "not json")

	removed, err := repo.PruneHistory(ctx, cutoff)
	if err != nil {
		t.Fatalf("PruneHistory failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("expected 2 removed (old + undecodable), got %d", removed)
	}

	entries, _ := repo.ListHistory(ctx, 0)
	var ids []string
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	if !slices.Equal(ids, []string{"young", "edge"}) {
		t.Errorf("expected [young edge] in order, got %v", ids)
	}
}

func TestHistory_PruneEverythingDeletesList(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	ctx := context.Background()
	appendEntry(t, repo, "old", addedAt)

	repo.PruneHistory(ctx, addedAt.Add(time.Hour))

	n, _ := repo.Store().LLen(ctx, "spin_history")
	if n != 0 {
		t.Errorf("expected empty ledger, got length %d", n)
	}
}

func TestHistory_MarkWent(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	ctx := context.Background()
	appendEntry(t, repo, "a", addedAt)
	appendEntry(t, repo, "b", addedAt.Add(time.Minute))

	ok, err := repo.MarkHistoryWent(ctx, "a")
	if err != nil || !ok {
		t.Fatalf("expected mark to succeed, got %v (%v)", ok, err)
	}
	ok, _ = repo.MarkHistoryWent(ctx, "a")
	if !ok {
		t.Error("expected second mark to succeed idempotently")
	}
	ok, _ = repo.MarkHistoryWent(ctx, "missing")
	if ok {
		t.Error("expected unknown id to report false")
	}

	entries, _ := repo.ListHistory(ctx, 0)
	if entries[0].Went || !entries[1].Went {
		t.Errorf("expected only entry a marked, got %+v", entries)
	}

	raw, _ := repo.Store().LRange(ctx, "spin_history", 1, 1)
	var decoded map[string]any
	json.Unmarshal([]byte(raw[0]), &decoded)
	if decoded["went"] != true {
		t.Errorf("expected went persisted, got %v", decoded)
	}
}

// =============================================================================
// Spin limit
// =============================================================================

func TestSpinLimitRecord(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	ctx := context.Background()

	if _, ok, _ := repo.LastSpin(ctx, "Alex"); ok {
		t.Fatal("expected no record initially")
	}
	at := time.Unix(1714586400, 0)
	if err := repo.SetLastSpin(ctx, "Alex", at, time.Minute); err != nil {
		t.Fatalf("SetLastSpin failed: %v", err)
	}
	v, ok, err := repo.LastSpin(ctx, "Alex")
	if err != nil || !ok || v != "1714586400" {
		t.Errorf("expected 1714586400, got %q %v (%v)", v, ok, err)
	}
}

func TestSpinLimitRecord_KeepsSubsecondPrecision(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	ctx := context.Background()

	at := time.Unix(1714586400, 750_000_000)
	if err := repo.SetLastSpin(ctx, "Alex", at, time.Minute); err != nil {
		t.Fatalf("SetLastSpin failed: %v", err)
	}
	v, _, _ := repo.LastSpin(ctx, "Alex")
	if v != "1714586400.75" {
		t.Errorf("expected 1714586400.75, got %q", v)
	}
}

package repository

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abrezinsky/dinnerroulette/internal/models"
	"github.com/abrezinsky/dinnerroulette/internal/store"
)

// loadConcurrency bounds parallel record reads.
const loadConcurrency = 8

// NextRestaurantID reserves a fresh id from the atomic counter.
func (r *Repository) NextRestaurantID(ctx context.Context) (string, error) {
	n, err := r.store.Incr(ctx, keyCounter)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n, 10), nil
}

// indexKeys lists every index set an active restaurant belongs to.
func indexKeys(rest *models.Restaurant) []string {
	keys := []string{keyActiveIndex, keyByDistance(rest.Distance)}
	for _, c := range rest.Categories {
		keys = append(keys, keyByCategory(c))
	}
	return keys
}

func activeIndexKeys(rest *models.Restaurant) []string {
	if rest == nil || !rest.IsActive {
		return nil
	}
	return indexKeys(rest)
}

// CreateRestaurant writes the record and all index memberships in one batch.
func (r *Repository) CreateRestaurant(ctx context.Context, rest *models.Restaurant) error {
	return r.store.Atomic(ctx, func(b *store.Batch) error {
		b.HSet(keyRestaurant(rest.ID), encodeRestaurant(rest))
		b.SAdd(keyAllRestaurants, rest.ID)
		for _, k := range activeIndexKeys(rest) {
			b.SAdd(k, rest.ID)
		}
		b.SAdd(keyUserAdded(rest.AddedBy), rest.ID)
		return nil
	})
}

// GetRestaurant returns ErrNotFound when no record exists for id.
func (r *Repository) GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error) {
	h, err := r.store.HGetAll(ctx, keyRestaurant(id))
	if err != nil {
		return nil, err
	}
	if len(h) == 0 {
		return nil, ErrNotFound
	}
	rest := decodeRestaurant(h)
	if rest.ID == "" {
		rest.ID = id
	}
	return rest, nil
}

// GetRestaurants loads records concurrently, preserving the order of ids.
// Ids with no record are skipped.
func (r *Repository) GetRestaurants(ctx context.Context, ids []string) ([]models.Restaurant, error) {
	loaded := make([]*models.Restaurant, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			rest, err := r.GetRestaurant(gctx, id)
			if errors.Is(err, ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			loaded[i] = rest
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]models.Restaurant, 0, len(ids))
	for _, rest := range loaded {
		if rest != nil {
			out = append(out, *rest)
		}
	}
	return out, nil
}

// RestaurantIDs resolves the candidate id set for a filter. A distance filter
// accepts the named level and every nearer one.
func (r *Repository) RestaurantIDs(ctx context.Context, filter models.Filter) ([]string, error) {
	var (
		ids []string
		err error
	)

	allowed := filter.Distance.AtMost()
	switch {
	case filter.Category != "" && filter.Distance != "":
		seen := make(map[string]struct{})
		for _, d := range allowed {
			part, err := r.store.SInter(ctx, keyByCategory(filter.Category), keyByDistance(d))
			if err != nil {
				return nil, err
			}
			for _, id := range part {
				if _, dup := seen[id]; !dup {
					seen[id] = struct{}{}
					ids = append(ids, id)
				}
			}
		}
	case filter.Category != "":
		ids, err = r.store.SMembers(ctx, keyByCategory(filter.Category))
	case filter.Distance != "":
		keys := make([]string, len(allowed))
		for i, d := range allowed {
			keys[i] = keyByDistance(d)
		}
		if len(keys) > 0 {
			ids, err = r.store.SUnion(ctx, keys...)
		}
	default:
		ids, err = r.store.SMembers(ctx, keyActiveIndex)
	}
	if err != nil {
		return nil, err
	}

	slices.SortFunc(ids, compareIDs)
	return ids, nil
}

// allIDs returns every id ever written, active or not. Records written
// before the all-set existed are found by walking the counter.
func (r *Repository) allIDs(ctx context.Context) ([]string, error) {
	members, err := r.store.SMembers(ctx, keyAllRestaurants)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(members))
	for _, id := range members {
		seen[id] = struct{}{}
	}

	counter, err := r.store.Get(ctx, keyCounter)
	if err != nil && !errors.Is(err, store.ErrNil) {
		return nil, err
	}
	if n, convErr := strconv.ParseInt(counter, 10, 64); convErr == nil {
		for i := int64(1); i <= n; i++ {
			id := strconv.FormatInt(i, 10)
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				members = append(members, id)
			}
		}
	}

	slices.SortFunc(members, compareIDs)
	return members, nil
}

func matchesFilter(rest *models.Restaurant, filter models.Filter) bool {
	if filter.Category != "" && !slices.Contains(rest.Categories, filter.Category) {
		return false
	}
	if filter.Distance != "" && !slices.Contains(filter.Distance.AtMost(), rest.Distance) {
		return false
	}
	return true
}

// ListRestaurants returns matching restaurants sorted by name. With
// activeOnly false, inactive records are included.
func (r *Repository) ListRestaurants(ctx context.Context, filter models.Filter, activeOnly bool) ([]models.Restaurant, error) {
	var (
		ids []string
		err error
	)
	if activeOnly {
		ids, err = r.RestaurantIDs(ctx, filter)
	} else {
		ids, err = r.allIDs(ctx)
	}
	if err != nil {
		return nil, err
	}

	loaded, err := r.GetRestaurants(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := loaded[:0]
	for i := range loaded {
		rest := &loaded[i]
		if activeOnly && !rest.IsActive {
			continue
		}
		if !activeOnly && !matchesFilter(rest, filter) {
			continue
		}
		out = append(out, *rest)
	}

	slices.SortStableFunc(out, func(a, b models.Restaurant) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return out, nil
}

// diff returns members of a that are not in b.
func diff(a, b []string) []string {
	var out []string
	for _, k := range a {
		if !slices.Contains(b, k) {
			out = append(out, k)
		}
	}
	return out
}

// reindex queues the index changes that move a record from old to updated.
func reindex(b *store.Batch, id string, old, updated *models.Restaurant) {
	oldKeys := activeIndexKeys(old)
	newKeys := activeIndexKeys(updated)
	for _, k := range diff(oldKeys, newKeys) {
		b.SRem(k, id)
	}
	for _, k := range diff(newKeys, oldKeys) {
		b.SAdd(k, id)
	}
}

// UpdateRestaurant rewrites the record and moves it between index sets.
func (r *Repository) UpdateRestaurant(ctx context.Context, old, updated *models.Restaurant) error {
	return r.store.Atomic(ctx, func(b *store.Batch) error {
		b.HSet(keyRestaurant(updated.ID), encodeRestaurant(updated))
		reindex(b, updated.ID, old, updated)
		return nil
	})
}

// SoftDeleteRestaurant marks the record inactive, records who removed it and
// drops it from every active index.
func (r *Repository) SoftDeleteRestaurant(ctx context.Context, rest *models.Restaurant, removedBy string, at time.Time) error {
	removedAt := at.UTC().Format(time.RFC3339Nano)
	return r.store.Atomic(ctx, func(b *store.Batch) error {
		b.HSet(keyRestaurant(rest.ID), map[string]string{
			"is_active":  flagInactive,
			"removed_by": removedBy,
			"removed_at": removedAt,
		})
		b.SAdd(keyRemovedBy(rest.ID), removedBy)
		b.Set(keyRemovedAt(rest.ID), removedAt, 0)
		b.SAdd(keyUserRemoved(removedBy), rest.ID)
		for _, k := range indexKeys(rest) {
			b.SRem(k, rest.ID)
		}
		return nil
	})
}

// PutRestaurant writes a record under its own id, as restore does. Index
// memberships are added only for active records, and the counter is moved
// past numeric ids so later creates never collide.
func (r *Repository) PutRestaurant(ctx context.Context, rest *models.Restaurant) error {
	existing, err := r.GetRestaurant(ctx, rest.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	counter, err := r.store.Get(ctx, keyCounter)
	if err != nil && !errors.Is(err, store.ErrNil) {
		return err
	}
	current, _ := strconv.ParseInt(counter, 10, 64)

	return r.store.Atomic(ctx, func(b *store.Batch) error {
		b.HSet(keyRestaurant(rest.ID), encodeRestaurant(rest))
		b.SAdd(keyAllRestaurants, rest.ID)
		reindex(b, rest.ID, existing, rest)
		if n, convErr := strconv.ParseInt(rest.ID, 10, 64); convErr == nil && n > current {
			b.Set(keyCounter, rest.ID, 0)
		}
		return nil
	})
}

// UserStats counts the ids a user added and removed.
func (r *Repository) UserStats(ctx context.Context, username string) (*models.UserStats, error) {
	added, err := r.store.SCard(ctx, keyUserAdded(username))
	if err != nil {
		return nil, err
	}
	removed, err := r.store.SCard(ctx, keyUserRemoved(username))
	if err != nil {
		return nil, err
	}
	return &models.UserStats{
		Username:           username,
		RestaurantsAdded:   added,
		RestaurantsRemoved: removed,
	}, nil
}

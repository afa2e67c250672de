package repository

import (
	"context"
	"encoding/json"
	"slices"
	"time"

	"github.com/abrezinsky/dinnerroulette/internal/models"
)

// AppendHistory prepends an entry and returns the new ledger length.
func (r *Repository) AppendHistory(ctx context.Context, e *models.HistoryEntry) (int64, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return 0, err
	}
	return r.store.LPush(ctx, keyHistory, string(data))
}

// ListHistory returns up to limit entries, newest first. A limit of zero or
// less returns every entry. Undecodable entries are skipped before the limit
// is applied.
func (r *Repository) ListHistory(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	raw, err := r.store.LRange(ctx, keyHistory, 0, -1)
	if err != nil {
		return nil, err
	}

	entries := make([]models.HistoryEntry, 0, len(raw))
	for _, item := range raw {
		if limit > 0 && len(entries) == limit {
			break
		}
		var e models.HistoryEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// PruneHistory drops entries older than cutoff, keeping survivors in order.
// Entries stamped exactly at the cutoff survive. It returns how many entries
// were removed. Spins appended while pruning are kept.
func (r *Repository) PruneHistory(ctx context.Context, cutoff time.Time) (int, error) {
	removed := 0
	err := r.store.UpdateList(ctx, keyHistory, func(raw []string) ([]string, bool, error) {
		kept := make([]string, 0, len(raw))
		for _, item := range raw {
			var e models.HistoryEntry
			if err := json.Unmarshal([]byte(item), &e); err != nil {
				continue
			}
			if !e.Timestamp.Before(cutoff) {
				kept = append(kept, item)
			}
		}
		removed = len(raw) - len(kept)
		return kept, removed > 0, nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// MarkHistoryWent sets went on the entry with the given id. It reports false
// when no such entry exists.
func (r *Repository) MarkHistoryWent(ctx context.Context, id string) (bool, error) {
	found := false
	err := r.store.UpdateList(ctx, keyHistory, func(raw []string) ([]string, bool, error) {
		found = false
		for i, item := range raw {
			var e models.HistoryEntry
			if err := json.Unmarshal([]byte(item), &e); err != nil || e.ID != id {
				continue
			}
			found = true
			if e.Went {
				return nil, false, nil
			}
			e.Went = true
			data, err := json.Marshal(&e)
			if err != nil {
				return nil, false, err
			}
			next := slices.Clone(raw)
			next[i] = string(data)
			return next, true, nil
		}
		return nil, false, nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

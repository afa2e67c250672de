package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abrezinsky/dinnerroulette/internal/logger"
	"github.com/abrezinsky/dinnerroulette/internal/models"
	"github.com/abrezinsky/dinnerroulette/internal/repository"
)

const (
	// pruneEvery triggers a retention sweep every this many appends.
	pruneEvery = 10

	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 50
)

// HistoryServiceRepository defines the repository methods needed by HistoryService
type HistoryServiceRepository interface {
	repository.HistoryRepository
}

// HistoryService keeps the spin ledger, newest first. Writes to the ledger
// from this process are serialized.
type HistoryService struct {
	log       logger.Logger
	repo      HistoryServiceRepository
	retention time.Duration
	now       Clock
	ledger    sync.Mutex
}

// NewHistoryService creates a new HistoryService
func NewHistoryService(log logger.Logger, repo HistoryServiceRepository, retention time.Duration) *HistoryService {
	return &HistoryService{log: log, repo: repo, retention: retention, now: time.Now}
}

// SetClock replaces the time source.
func (s *HistoryService) SetClock(c Clock) {
	s.now = c
}

func newEntryID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Append records a spin outcome and returns the entry id.
func (s *HistoryService) Append(ctx context.Context, username string, r *models.Restaurant) (string, error) {
	ctx = context.WithoutCancel(ctx)
	e := &models.HistoryEntry{
		ID:             newEntryID(),
		Username:       username,
		RestaurantID:   r.ID,
		RestaurantName: r.Name,
		Category:       r.PrimaryCategory(),
		Timestamp:      s.now().UTC(),
	}
	s.ledger.Lock()
	defer s.ledger.Unlock()

	n, err := s.repo.AppendHistory(ctx, e)
	if err != nil {
		return "", err
	}
	if n%pruneEvery == 0 {
		if _, err := s.prune(ctx); err != nil {
			s.log.Warn("History prune failed", "error", err)
		}
	}
	return e.ID, nil
}

// Prune drops entries older than the retention window.
func (s *HistoryService) Prune(ctx context.Context) (int, error) {
	s.ledger.Lock()
	defer s.ledger.Unlock()
	return s.prune(ctx)
}

func (s *HistoryService) prune(ctx context.Context) (int, error) {
	cutoff := s.now().UTC().Add(-s.retention)
	removed, err := s.repo.PruneHistory(context.WithoutCancel(ctx), cutoff)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.log.Debug("History pruned", "removed", removed, "cutoff", cutoff)
	}
	return removed, nil
}

// MostRecent returns the newest entry, or nil when the ledger is empty.
func (s *HistoryService) MostRecent(ctx context.Context) (*models.HistoryEntry, error) {
	entries, err := s.repo.ListHistory(ctx, 1)
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	return &entries[0], nil
}

// ClampLimit bounds a requested page size to 1..50.
func ClampLimit(limit int) int {
	switch {
	case limit < 1:
		return 1
	case limit > MaxHistoryLimit:
		return MaxHistoryLimit
	}
	return limit
}

// List returns recent entries, newest first.
func (s *HistoryService) List(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	return s.repo.ListHistory(ctx, ClampLimit(limit))
}

// MarkWent flags an entry as visited. Marking twice is harmless.
func (s *HistoryService) MarkWent(ctx context.Context, id string) error {
	s.ledger.Lock()
	defer s.ledger.Unlock()

	found, err := s.repo.MarkHistoryWent(context.WithoutCancel(ctx), id)
	if err != nil {
		return err
	}
	if !found {
		return ErrHistoryNotFound
	}
	return nil
}

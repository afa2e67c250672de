package services

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	apperrors "github.com/abrezinsky/dinnerroulette/internal/errors"
	"github.com/abrezinsky/dinnerroulette/internal/logger"
	"github.com/abrezinsky/dinnerroulette/internal/metrics"
	"github.com/abrezinsky/dinnerroulette/internal/models"
)

const (
	backupPrefix     = "restaurants_backup_"
	backupStampFmt   = "20060102_150405"
	LatestBackupName = "restaurants_latest.json"
)

// BackupServiceRepository defines the repository methods needed by BackupService
type BackupServiceRepository interface {
	ListRestaurants(ctx context.Context, filter models.Filter, activeOnly bool) ([]models.Restaurant, error)
	PutRestaurant(ctx context.Context, r *models.Restaurant) error
}

// BackupOptions configures where and when snapshots are written.
type BackupOptions struct {
	Dir             string
	Auto            bool
	Timeout         time.Duration
	DefaultDistance models.Distance
}

// BackupService writes and reads portable snapshots of the catalogue.
type BackupService struct {
	log        logger.Logger
	repo       BackupServiceRepository
	categories CategoryServicer
	opts       BackupOptions
	now        Clock

	mu sync.Mutex // serializes file writes
	wg sync.WaitGroup
}

// NewBackupService creates a new BackupService
func NewBackupService(log logger.Logger, repo BackupServiceRepository, categories CategoryServicer, opts BackupOptions) *BackupService {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if !opts.DefaultDistance.Valid() {
		opts.DefaultDistance = models.Nearby
	}
	return &BackupService{log: log, repo: repo, categories: categories, opts: opts, now: time.Now}
}

// SetClock replaces the time source.
func (s *BackupService) SetClock(c Clock) {
	s.now = c
}

// Dir is the directory backups are written to.
func (s *BackupService) Dir() string {
	return s.opts.Dir
}

// Snapshot captures every restaurant, inactive ones included, and the
// custom categories.
func (s *BackupService) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	restaurants, err := s.repo.ListRestaurants(ctx, models.Filter{}, false)
	if err != nil {
		return nil, err
	}
	custom, err := s.categories.Custom(ctx)
	if err != nil {
		return nil, err
	}
	return &models.Snapshot{
		Timestamp:        s.now().UTC().Format(time.RFC3339),
		Restaurants:      restaurants,
		CustomCategories: custom,
	}, nil
}

// Backup writes a timestamped snapshot and replaces the latest copy. It
// returns the path of the timestamped file.
func (s *BackupService) Backup(ctx context.Context) (string, error) {
	path, err := s.backup(ctx)
	if err != nil {
		metrics.Backups.WithLabelValues("manual", "error").Inc()
		return "", err
	}
	metrics.Backups.WithLabelValues("manual", "ok").Inc()
	s.log.Info("Backup created", "file", path)
	return path, nil
}

func (s *BackupService) backup(ctx context.Context) (string, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", apperrors.Internal(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.opts.Dir, 0o755); err != nil {
		return "", apperrors.Unavailable(err, "backup directory unavailable")
	}
	name := backupPrefix + s.now().UTC().Format(backupStampFmt) + ".json"
	path := filepath.Join(s.opts.Dir, name)
	if err := writeFileAtomic(path, data); err != nil {
		return "", apperrors.Unavailable(err, "failed to write backup")
	}
	if err := writeFileAtomic(filepath.Join(s.opts.Dir, LatestBackupName), data); err != nil {
		return "", apperrors.Unavailable(err, "failed to write latest backup")
	}
	return path, nil
}

// writeFileAtomic writes data next to path and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".backup-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// RestaurantsChanged implements ChangeListener. With auto backup on it
// snapshots in the background; failures are only logged.
func (s *BackupService) RestaurantsChanged(ctx context.Context, change RestaurantChange) {
	if !s.opts.Auto {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		bctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.Timeout)
		defer cancel()

		path, err := s.backup(bctx)
		if err != nil {
			metrics.Backups.WithLabelValues("auto", "error").Inc()
			s.log.Warn("Auto backup failed", "change", change.Kind, "error", err)
			return
		}
		metrics.Backups.WithLabelValues("auto", "ok").Inc()
		s.log.Debug("Auto backup written", "file", path, "change", change.Kind)
	}()
}

// Wait blocks until in-flight auto backups finish.
func (s *BackupService) Wait() {
	s.wg.Wait()
}

// Restore writes custom categories and then every restaurant in snap under
// its own id. Records that cannot be restored are logged and skipped.
func (s *BackupService) Restore(ctx context.Context, snap *models.Snapshot) (*models.RestoreResult, error) {
	ctx = context.WithoutCancel(ctx)
	result := &models.RestoreResult{Timestamp: snap.Timestamp}

	for _, c := range snap.CustomCategories {
		_, added, err := s.categories.Add(ctx, c)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrValidation) {
				s.log.Warn("Skipping category", "category", c, "error", err)
				continue
			}
			metrics.Restores.WithLabelValues("error").Inc()
			return nil, err
		}
		if added {
			result.CategoriesRestored++
		}
	}

	for i := range snap.Restaurants {
		r := snap.Restaurants[i]
		if err := s.prepareRecord(&r); err != nil {
			s.log.Warn("Skipping restaurant", "id", r.ID, "name", r.Name, "error", err)
			continue
		}
		if err := s.repo.PutRestaurant(ctx, &r); err != nil {
			s.log.Error("Failed to restore restaurant", "id", r.ID, "error", err)
			continue
		}
		result.RestaurantsRestored++
	}

	metrics.Restores.WithLabelValues("ok").Inc()
	s.log.Info("Restore complete",
		"restaurants", result.RestaurantsRestored,
		"categories", result.CategoriesRestored,
		"snapshot", snap.Timestamp)
	return result, nil
}

// prepareRecord fills defaults for fields older backups may lack and
// rejects records that cannot be stored.
func (s *BackupService) prepareRecord(r *models.Restaurant) error {
	if r.ID == "" {
		return apperrors.Validation("missing id")
	}
	if !models.ValidRestaurantID(r.ID) {
		return apperrors.Validationf("invalid id %q", r.ID)
	}
	if r.Name == "" {
		return apperrors.Validation("missing name")
	}
	if r.Distance == "" {
		r.Distance = s.opts.DefaultDistance
	}
	if !r.Distance.Valid() {
		return invalidDistanceError(string(r.Distance))
	}
	if len(r.Categories) == 0 {
		if defaults := s.categories.Defaults(); len(defaults) > 0 {
			r.Categories = defaults[:1]
		}
	}
	r.ClosedDays = normalizeClosedDays(r.ClosedDays)
	if r.AddedBy == "" {
		r.AddedBy = "restored"
	}
	if r.AddedAt.IsZero() {
		r.AddedAt = s.now().UTC()
	}
	r.IsEatAtHome = false
	return nil
}

// resolve confines name to the backup directory. An empty name means the
// latest backup.
func (s *BackupService) resolve(name string) string {
	if name == "" {
		name = LatestBackupName
	}
	return filepath.Join(s.opts.Dir, filepath.Base(name))
}

// RestoreFromFile reads a snapshot from the backup directory and restores it.
func (s *BackupService) RestoreFromFile(ctx context.Context, name string) (*models.RestoreResult, error) {
	path := s.resolve(name)
	data, err := os.ReadFile(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, ErrBackupNotFound
	}
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to read backup")
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		metrics.Restores.WithLabelValues("error").Inc()
		return nil, apperrors.Validationf("Invalid backup file: %v", err)
	}
	return s.Restore(ctx, &snap)
}

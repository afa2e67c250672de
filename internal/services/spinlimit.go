package services

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/abrezinsky/dinnerroulette/internal/logger"
	"github.com/abrezinsky/dinnerroulette/internal/repository"
)

// SpinLimitServiceRepository defines the repository methods needed by SpinLimitService
type SpinLimitServiceRepository interface {
	repository.SpinLimitRepository
}

// SpinLimitService tracks when each user last spun.
type SpinLimitService struct {
	log     logger.Logger
	repo    SpinLimitServiceRepository
	timeout time.Duration
	now     Clock
}

// NewSpinLimitService creates a new SpinLimitService
func NewSpinLimitService(log logger.Logger, repo SpinLimitServiceRepository, timeout time.Duration) *SpinLimitService {
	return &SpinLimitService{log: log, repo: repo, timeout: timeout, now: time.Now}
}

// SetClock replaces the time source.
func (s *SpinLimitService) SetClock(c Clock) {
	s.now = c
}

// Timeout is the minimum gap between two spins by one user.
func (s *SpinLimitService) Timeout() time.Duration {
	return s.timeout
}

// CanSpin reports whether username may spin now and, if not, how many whole
// seconds remain. A missing or unreadable record allows the spin.
func (s *SpinLimitService) CanSpin(ctx context.Context, username string) (bool, int, error) {
	raw, ok, err := s.repo.LastSpin(ctx, username)
	if err != nil {
		return false, 0, err
	}
	if !ok {
		return true, 0, nil
	}
	last, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(last) {
		s.log.Debug("Ignoring unreadable last spin", "user", username, "value", raw)
		return true, 0, nil
	}

	at := s.now()
	now := float64(at.Unix()) + float64(at.Nanosecond())/float64(time.Second)
	elapsed := now - last
	limit := s.timeout.Seconds()
	if elapsed >= limit {
		return true, 0, nil
	}
	return false, int(limit - elapsed), nil
}

// RecordSpin stores now as the user's last spin. The record expires after
// twice the timeout.
func (s *SpinLimitService) RecordSpin(ctx context.Context, username string) error {
	return s.repo.SetLastSpin(context.WithoutCancel(ctx), username, s.now(), 2*s.timeout)
}

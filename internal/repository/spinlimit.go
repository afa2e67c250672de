package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/abrezinsky/dinnerroulette/internal/store"
)

// LastSpin returns the raw last-spin record for a user, if one is live.
func (r *Repository) LastSpin(ctx context.Context, username string) (string, bool, error) {
	v, err := r.store.Get(ctx, keyLastSpin(username))
	if errors.Is(err, store.ErrNil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// SetLastSpin stores the spin time as fractional epoch seconds with an expiry.
func (r *Repository) SetLastSpin(ctx context.Context, username string, at time.Time, ttl time.Duration) error {
	epoch := float64(at.Unix()) + float64(at.Nanosecond())/float64(time.Second)
	return r.store.Set(ctx, keyLastSpin(username), strconv.FormatFloat(epoch, 'f', -1, 64), ttl)
}

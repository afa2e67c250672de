// Package store defines the key-value contract the rest of the application
// is written against and provides Redis and SQLite implementations of it.
//
// Values cross this boundary as Go strings and integers. Keys that do not
// exist read as empty (HGetAll, SMembers, LRange) or as ErrNil (Get).
package store

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/abrezinsky/dinnerroulette/internal/errors"
	"github.com/abrezinsky/dinnerroulette/internal/metrics"
)

// ErrNil is returned by Get when the key does not exist or has expired.
var ErrNil = errors.New("store: nil")

// ErrContended is returned by UpdateList when other writers kept changing
// the list faster than it could be rewritten.
var ErrContended = errors.New("store: list kept changing")

// ListUpdate receives the whole list and returns its replacement. When
// changed is false nothing is written.
type ListUpdate func(items []string) (next []string, changed bool, err error)

// Store is the key-value contract.
type Store interface {
	Incr(ctx context.Context, key string) (int64, error)
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Expire(ctx context.Context, key string, ttl time.Duration) error

	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HSet(ctx context.Context, key string, fields map[string]string) error

	SAdd(ctx context.Context, key string, members ...string) (int64, error)
	SRem(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
	SIsMember(ctx context.Context, key, member string) (bool, error)
	SCard(ctx context.Context, key string) (int64, error)
	SInter(ctx context.Context, keys ...string) ([]string, error)
	SUnion(ctx context.Context, keys ...string) ([]string, error)

	LPush(ctx context.Context, key string, values ...string) (int64, error)
	RPush(ctx context.Context, key string, values ...string) (int64, error)
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	LLen(ctx context.Context, key string) (int64, error)
	LSet(ctx context.Context, key string, index int64, value string) error
	LTrim(ctx context.Context, key string, start, stop int64) error
	// UpdateList reads and rewrites the list at key as one unit. Writes to
	// key by others between the read and the rewrite are never lost; fn may
	// run more than once and must not have side effects beyond its result.
	// An error from fn is returned unchanged.
	UpdateList(ctx context.Context, key string, fn ListUpdate) error

	// Atomic applies every write queued on the batch by fn as one unit.
	// Returning an error from fn discards the batch.
	Atomic(ctx context.Context, fn func(b *Batch) error) error

	Ping(ctx context.Context) error
	Close() error
}

type opKind int

const (
	opHSet opKind = iota
	opSAdd
	opSRem
	opSet
	opDel
	opRPush
	opExpire
)

type op struct {
	kind   opKind
	key    string
	fields map[string]string
	values []string
	ttl    time.Duration
}

// Batch collects writes for Store.Atomic.
type Batch struct {
	ops []op
}

func (b *Batch) HSet(key string, fields map[string]string) {
	b.ops = append(b.ops, op{kind: opHSet, key: key, fields: fields})
}

func (b *Batch) SAdd(key string, members ...string) {
	if len(members) == 0 {
		return
	}
	b.ops = append(b.ops, op{kind: opSAdd, key: key, values: members})
}

func (b *Batch) SRem(key string, members ...string) {
	if len(members) == 0 {
		return
	}
	b.ops = append(b.ops, op{kind: opSRem, key: key, values: members})
}

func (b *Batch) Set(key, value string, ttl time.Duration) {
	b.ops = append(b.ops, op{kind: opSet, key: key, values: []string{value}, ttl: ttl})
}

func (b *Batch) Del(keys ...string) {
	b.ops = append(b.ops, op{kind: opDel, values: keys})
}

func (b *Batch) RPush(key string, values ...string) {
	if len(values) == 0 {
		return
	}
	b.ops = append(b.ops, op{kind: opRPush, key: key, values: values})
}

func (b *Batch) Expire(key string, ttl time.Duration) {
	b.ops = append(b.ops, op{kind: opExpire, key: key, ttl: ttl})
}

// Len returns the number of queued writes.
func (b *Batch) Len() int {
	return len(b.ops)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// fail counts the failed operation and tags it as an infrastructure error.
func fail(opName string, err error) error {
	metrics.StoreErrors.WithLabelValues(opName).Inc()
	return apperrors.Unavailable(err, "store "+opName+" failed")
}

// normalizeRange resolves Redis-style inclusive start/stop (negative counts
// from the end) against a list of length n. ok is false for an empty range.
func normalizeRange(start, stop, n int64) (from, to int64, ok bool) {
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if n == 0 || start > stop || start >= n {
		return 0, 0, false
	}
	return start, stop, true
}

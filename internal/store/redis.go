package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis implements Store on a go-redis client.
type Redis struct {
	rdb     *redis.Client
	timeout time.Duration
}

var _ Store = (*Redis)(nil)

// NewRedis connects using a URL such as redis://:pass@host:6379/0 and pings
// the server before returning.
func NewRedis(ctx context.Context, redisURL string, opTimeout time.Duration) (*Redis, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	r := &Redis{rdb: redis.NewClient(opt), timeout: opTimeout}
	if err := r.Ping(ctx); err != nil {
		_ = r.rdb.Close()
		return nil, err
	}
	return r, nil
}

func toArgs(values []string) []interface{} {
	args := make([]interface{}, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

func fieldArgs(fields map[string]string) []interface{} {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return args
}

func (r *Redis) Incr(ctx context.Context, key string) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	n, err := r.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, fail("incr", err)
	}
	return n, nil
}

func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	v, err := r.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNil
	}
	if err != nil {
		return "", fail("get", err)
	}
	return v, nil
}

func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fail("set", err)
	}
	return nil
}

func (r *Redis) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
		return fail("del", err)
	}
	return nil
}

func (r *Redis) Expire(ctx context.Context, key string, ttl time.Duration) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.rdb.Expire(ctx, key, ttl).Err(); err != nil {
		return fail("expire", err)
	}
	return nil
}

func (r *Redis) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	m, err := r.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fail("hgetall", err)
	}
	return m, nil
}

func (r *Redis) HSet(ctx context.Context, key string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.rdb.HSet(ctx, key, fieldArgs(fields)...).Err(); err != nil {
		return fail("hset", err)
	}
	return nil
}

func (r *Redis) SAdd(ctx context.Context, key string, members ...string) (int64, error) {
	if len(members) == 0 {
		return 0, nil
	}
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	n, err := r.rdb.SAdd(ctx, key, toArgs(members)...).Result()
	if err != nil {
		return 0, fail("sadd", err)
	}
	return n, nil
}

func (r *Redis) SRem(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.rdb.SRem(ctx, key, toArgs(members)...).Err(); err != nil {
		return fail("srem", err)
	}
	return nil
}

func (r *Redis) SMembers(ctx context.Context, key string) ([]string, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	m, err := r.rdb.SMembers(ctx, key).Result()
	if err != nil {
		return nil, fail("smembers", err)
	}
	return m, nil
}

func (r *Redis) SIsMember(ctx context.Context, key, member string) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	ok, err := r.rdb.SIsMember(ctx, key, member).Result()
	if err != nil {
		return false, fail("sismember", err)
	}
	return ok, nil
}

func (r *Redis) SCard(ctx context.Context, key string) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	n, err := r.rdb.SCard(ctx, key).Result()
	if err != nil {
		return 0, fail("scard", err)
	}
	return n, nil
}

func (r *Redis) SInter(ctx context.Context, keys ...string) ([]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	m, err := r.rdb.SInter(ctx, keys...).Result()
	if err != nil {
		return nil, fail("sinter", err)
	}
	return m, nil
}

func (r *Redis) SUnion(ctx context.Context, keys ...string) ([]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	m, err := r.rdb.SUnion(ctx, keys...).Result()
	if err != nil {
		return nil, fail("sunion", err)
	}
	return m, nil
}

func (r *Redis) LPush(ctx context.Context, key string, values ...string) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	n, err := r.rdb.LPush(ctx, key, toArgs(values)...).Result()
	if err != nil {
		return 0, fail("lpush", err)
	}
	return n, nil
}

func (r *Redis) RPush(ctx context.Context, key string, values ...string) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	n, err := r.rdb.RPush(ctx, key, toArgs(values)...).Result()
	if err != nil {
		return 0, fail("rpush", err)
	}
	return n, nil
}

func (r *Redis) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	v, err := r.rdb.LRange(ctx, key, start, stop).Result()
	if err != nil {
		return nil, fail("lrange", err)
	}
	return v, nil
}

func (r *Redis) LLen(ctx context.Context, key string) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	n, err := r.rdb.LLen(ctx, key).Result()
	if err != nil {
		return 0, fail("llen", err)
	}
	return n, nil
}

func (r *Redis) LSet(ctx context.Context, key string, index int64, value string) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.rdb.LSet(ctx, key, index, value).Err(); err != nil {
		return fail("lset", err)
	}
	return nil
}

func (r *Redis) LTrim(ctx context.Context, key string, start, stop int64) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.rdb.LTrim(ctx, key, start, stop).Err(); err != nil {
		return fail("ltrim", err)
	}
	return nil
}

// maxWatchRetries bounds how often UpdateList restarts after a concurrent
// write to the watched key.
const maxWatchRetries = 10

// UpdateList reads the list under WATCH and rewrites it in MULTI/EXEC, so a
// push landing in between aborts the rewrite and fn runs on fresh contents.
func (r *Redis) UpdateList(ctx context.Context, key string, fn ListUpdate) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var fnErr error
	txf := func(tx *redis.Tx) error {
		items, err := tx.LRange(ctx, key, 0, -1).Result()
		if err != nil {
			return err
		}
		next, changed, err := fn(items)
		if err != nil {
			fnErr = err
			return err
		}
		if !changed {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			if len(next) > 0 {
				pipe.RPush(ctx, key, toArgs(next)...)
			}
			return nil
		})
		return err
	}

	for i := 0; i < maxWatchRetries; i++ {
		err := r.rdb.Watch(ctx, txf, key)
		switch {
		case fnErr != nil:
			return fnErr
		case errors.Is(err, redis.TxFailedErr):
			continue
		case err != nil:
			return fail("updatelist", err)
		}
		return nil
	}
	return fail("updatelist", ErrContended)
}

// Atomic runs the batch inside MULTI/EXEC.
func (r *Redis) Atomic(ctx context.Context, fn func(b *Batch) error) error {
	var b Batch
	if err := fn(&b); err != nil {
		return err
	}
	if b.Len() == 0 {
		return nil
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	pipe := r.rdb.TxPipeline()
	for _, o := range b.ops {
		switch o.kind {
		case opHSet:
			if len(o.fields) > 0 {
				pipe.HSet(ctx, o.key, fieldArgs(o.fields)...)
			}
		case opSAdd:
			pipe.SAdd(ctx, o.key, toArgs(o.values)...)
		case opSRem:
			pipe.SRem(ctx, o.key, toArgs(o.values)...)
		case opSet:
			pipe.Set(ctx, o.key, o.values[0], o.ttl)
		case opDel:
			pipe.Del(ctx, o.values...)
		case opRPush:
			pipe.RPush(ctx, o.key, toArgs(o.values)...)
		case opExpire:
			pipe.Expire(ctx, o.key, o.ttl)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fail("atomic", err)
	}
	return nil
}

func (r *Redis) Ping(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.rdb.Ping(ctx).Err(); err != nil {
		return fail("ping", err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}

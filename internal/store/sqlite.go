package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrIndexOutOfRange is returned by LSet for an index past either end of the list.
var ErrIndexOutOfRange = errors.New("store: index out of range")

// SQLite implements Store on an embedded database. It suits single-node
// deployments and tests (":memory:").
//
// Expiry is supported on string keys only. Expire on a hash, set or list key
// is a no-op.
type SQLite struct {
	db      *sql.DB
	timeout time.Duration
	now     func() time.Time
}

var _ Store = (*SQLite)(nil)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NewSQLite opens (or creates) the database at path and applies the schema.
func NewSQLite(path string, opTimeout time.Duration) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLite{db: db, timeout: opTimeout, now: time.Now}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// SetClock replaces the clock used for key expiry.
func (s *SQLite) SetClock(now func() time.Time) {
	s.now = now
}

func (s *SQLite) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS kv_strings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			expires_at INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS kv_hashes (
			key TEXT NOT NULL,
			field TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (key, field)
		)`,
		`CREATE TABLE IF NOT EXISTS kv_sets (
			key TEXT NOT NULL,
			member TEXT NOT NULL,
			PRIMARY KEY (key, member)
		)`,
		`CREATE TABLE IF NOT EXISTS kv_lists (
			key TEXT NOT NULL,
			pos INTEGER NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (key, pos)
		)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func anyArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

func (s *SQLite) expiresAt(ttl time.Duration) any {
	if ttl <= 0 {
		return nil
	}
	return s.now().Add(ttl).UnixNano()
}

// inTx runs fn inside a transaction bounded by the operation timeout.
func (s *SQLite) inTx(ctx context.Context, opName string, fn func(ctx context.Context, tx *sql.Tx) error) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fail(opName, err)
	}
	if err := fn(ctx, tx); err != nil {
		_ = tx.Rollback()
		if errors.Is(err, ErrIndexOutOfRange) {
			return err
		}
		return fail(opName, err)
	}
	if err := tx.Commit(); err != nil {
		return fail(opName, err)
	}
	return nil
}

// ===== strings =====

func (s *SQLite) getString(ctx context.Context, q querier, key string) (string, bool, error) {
	var value string
	var expires sql.NullInt64
	err := q.QueryRowContext(ctx, `SELECT value, expires_at FROM kv_strings WHERE key = ?`, key).Scan(&value, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if expires.Valid && expires.Int64 <= s.now().UnixNano() {
		return "", false, nil
	}
	return value, true, nil
}

func (s *SQLite) setString(ctx context.Context, q querier, key, value string, ttl time.Duration) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO kv_strings (key, value, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, value, s.expiresAt(ttl))
	return err
}

func (s *SQLite) Incr(ctx context.Context, key string) (int64, error) {
	var n int64
	err := s.inTx(ctx, "incr", func(ctx context.Context, tx *sql.Tx) error {
		cur, ok, err := s.getString(ctx, tx, key)
		if err != nil {
			return err
		}
		if ok {
			n, err = strconv.ParseInt(cur, 10, 64)
			if err != nil {
				return fmt.Errorf("value at %q is not an integer", key)
			}
		}
		n++
		_, err = tx.ExecContext(ctx,
			`INSERT INTO kv_strings (key, value, expires_at) VALUES (?, ?, NULL)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value,
			 expires_at = CASE WHEN kv_strings.expires_at <= ? THEN NULL ELSE kv_strings.expires_at END`,
			key, strconv.FormatInt(n, 10), s.now().UnixNano())
		return err
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (s *SQLite) Get(ctx context.Context, key string) (string, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	v, ok, err := s.getString(ctx, s.db, key)
	if err != nil {
		return "", fail("get", err)
	}
	if !ok {
		return "", ErrNil
	}
	return v, nil
}

func (s *SQLite) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.setString(ctx, s.db, key, value, ttl); err != nil {
		return fail("set", err)
	}
	return nil
}

func delKeys(ctx context.Context, q querier, keys []string) error {
	for _, table := range []string{"kv_strings", "kv_hashes", "kv_sets", "kv_lists"} {
		query := `DELETE FROM ` + table + ` WHERE key IN (` + placeholders(len(keys)) + `)`
		if _, err := q.ExecContext(ctx, query, anyArgs(keys)...); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLite) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.inTx(ctx, "del", func(ctx context.Context, tx *sql.Tx) error {
		return delKeys(ctx, tx, keys)
	})
}

func (s *SQLite) expire(ctx context.Context, q querier, key string, ttl time.Duration) error {
	if ttl <= 0 {
		_, err := q.ExecContext(ctx, `DELETE FROM kv_strings WHERE key = ?`, key)
		return err
	}
	_, err := q.ExecContext(ctx, `UPDATE kv_strings SET expires_at = ? WHERE key = ?`, s.expiresAt(ttl), key)
	return err
}

func (s *SQLite) Expire(ctx context.Context, key string, ttl time.Duration) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.expire(ctx, s.db, key, ttl); err != nil {
		return fail("expire", err)
	}
	return nil
}

// ===== hashes =====

func (s *SQLite) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `SELECT field, value FROM kv_hashes WHERE key = ?`, key)
	if err != nil {
		return nil, fail("hgetall", err)
	}
	defer rows.Close()

	m := make(map[string]string)
	for rows.Next() {
		var field, value string
		if err := rows.Scan(&field, &value); err != nil {
			return nil, fail("hgetall", err)
		}
		m[field] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fail("hgetall", err)
	}
	return m, nil
}

func hset(ctx context.Context, q querier, key string, fields map[string]string) error {
	for field, value := range fields {
		_, err := q.ExecContext(ctx,
			`INSERT INTO kv_hashes (key, field, value) VALUES (?, ?, ?)
			 ON CONFLICT(key, field) DO UPDATE SET value = excluded.value`,
			key, field, value)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLite) HSet(ctx context.Context, key string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return s.inTx(ctx, "hset", func(ctx context.Context, tx *sql.Tx) error {
		return hset(ctx, tx, key, fields)
	})
}

// ===== sets =====

func sadd(ctx context.Context, q querier, key string, members []string) (int64, error) {
	var added int64
	for _, m := range members {
		res, err := q.ExecContext(ctx, `INSERT OR IGNORE INTO kv_sets (key, member) VALUES (?, ?)`, key, m)
		if err != nil {
			return 0, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		added += n
	}
	return added, nil
}

func srem(ctx context.Context, q querier, key string, members []string) error {
	args := append([]any{key}, anyArgs(members)...)
	_, err := q.ExecContext(ctx,
		`DELETE FROM kv_sets WHERE key = ? AND member IN (`+placeholders(len(members))+`)`, args...)
	return err
}

func (s *SQLite) SAdd(ctx context.Context, key string, members ...string) (int64, error) {
	if len(members) == 0 {
		return 0, nil
	}
	var added int64
	err := s.inTx(ctx, "sadd", func(ctx context.Context, tx *sql.Tx) error {
		var err error
		added, err = sadd(ctx, tx, key, members)
		return err
	})
	return added, err
}

func (s *SQLite) SRem(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	if err := srem(ctx, s.db, key, members); err != nil {
		return fail("srem", err)
	}
	return nil
}

func (s *SQLite) queryStrings(ctx context.Context, opName, query string, args ...any) ([]string, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fail(opName, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fail(opName, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fail(opName, err)
	}
	return out, nil
}

func (s *SQLite) SMembers(ctx context.Context, key string) ([]string, error) {
	return s.queryStrings(ctx, "smembers", `SELECT member FROM kv_sets WHERE key = ?`, key)
}

func (s *SQLite) SIsMember(ctx context.Context, key, member string) (bool, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM kv_sets WHERE key = ? AND member = ?`, key, member).Scan(&n)
	if err != nil {
		return false, fail("sismember", err)
	}
	return n > 0, nil
}

func (s *SQLite) SCard(ctx context.Context, key string) (int64, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM kv_sets WHERE key = ?`, key).Scan(&n); err != nil {
		return 0, fail("scard", err)
	}
	return n, nil
}

func dedupe(keys []string) []string {
	out := slices.Clone(keys)
	slices.Sort(out)
	return slices.Compact(out)
}

func (s *SQLite) SInter(ctx context.Context, keys ...string) ([]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	keys = dedupe(keys)
	args := append(anyArgs(keys), len(keys))
	return s.queryStrings(ctx, "sinter",
		`SELECT member FROM kv_sets WHERE key IN (`+placeholders(len(keys))+`)
		 GROUP BY member HAVING COUNT(*) = ?`, args...)
}

func (s *SQLite) SUnion(ctx context.Context, keys ...string) ([]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	return s.queryStrings(ctx, "sunion",
		`SELECT DISTINCT member FROM kv_sets WHERE key IN (`+placeholders(len(keys))+`)`, anyArgs(keys)...)
}

// ===== lists =====

func llen(ctx context.Context, q querier, key string) (int64, error) {
	var n int64
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM kv_lists WHERE key = ?`, key).Scan(&n)
	return n, err
}

// push inserts values at the head (left) or tail of the list, one at a time,
// matching Redis LPUSH/RPUSH ordering.
func push(ctx context.Context, q querier, key string, values []string, left bool) (int64, error) {
	edge := `SELECT COALESCE(MAX(pos), -1) FROM kv_lists WHERE key = ?`
	step := int64(1)
	if left {
		edge = `SELECT COALESCE(MIN(pos), 1) FROM kv_lists WHERE key = ?`
		step = -1
	}

	var pos int64
	if err := q.QueryRowContext(ctx, edge, key).Scan(&pos); err != nil {
		return 0, err
	}
	for _, v := range values {
		pos += step
		if _, err := q.ExecContext(ctx, `INSERT INTO kv_lists (key, pos, value) VALUES (?, ?, ?)`, key, pos, v); err != nil {
			return 0, err
		}
	}
	return llen(ctx, q, key)
}

func (s *SQLite) LPush(ctx context.Context, key string, values ...string) (int64, error) {
	var n int64
	err := s.inTx(ctx, "lpush", func(ctx context.Context, tx *sql.Tx) error {
		var err error
		n, err = push(ctx, tx, key, values, true)
		return err
	})
	return n, err
}

func (s *SQLite) RPush(ctx context.Context, key string, values ...string) (int64, error) {
	var n int64
	err := s.inTx(ctx, "rpush", func(ctx context.Context, tx *sql.Tx) error {
		var err error
		n, err = push(ctx, tx, key, values, false)
		return err
	})
	return n, err
}

func (s *SQLite) LLen(ctx context.Context, key string) (int64, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	n, err := llen(ctx, s.db, key)
	if err != nil {
		return 0, fail("llen", err)
	}
	return n, nil
}

func (s *SQLite) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	n, err := s.LLen(ctx, key)
	if err != nil {
		return nil, err
	}
	from, to, ok := normalizeRange(start, stop, n)
	if !ok {
		return []string{}, nil
	}
	out, err := s.queryStrings(ctx, "lrange",
		`SELECT value FROM kv_lists WHERE key = ? ORDER BY pos LIMIT ? OFFSET ?`, key, to-from+1, from)
	if out == nil && err == nil {
		out = []string{}
	}
	return out, err
}

// posAt returns the position column of the element at a zero-based offset.
func posAt(ctx context.Context, q querier, key string, offset int64) (int64, error) {
	var pos int64
	err := q.QueryRowContext(ctx,
		`SELECT pos FROM kv_lists WHERE key = ? ORDER BY pos LIMIT 1 OFFSET ?`, key, offset).Scan(&pos)
	return pos, err
}

func (s *SQLite) LSet(ctx context.Context, key string, index int64, value string) error {
	return s.inTx(ctx, "lset", func(ctx context.Context, tx *sql.Tx) error {
		n, err := llen(ctx, tx, key)
		if err != nil {
			return err
		}
		if index < 0 {
			index += n
		}
		if index < 0 || index >= n {
			return ErrIndexOutOfRange
		}
		pos, err := posAt(ctx, tx, key, index)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `UPDATE kv_lists SET value = ? WHERE key = ? AND pos = ?`, value, key, pos)
		return err
	})
}

func (s *SQLite) LTrim(ctx context.Context, key string, start, stop int64) error {
	return s.inTx(ctx, "ltrim", func(ctx context.Context, tx *sql.Tx) error {
		n, err := llen(ctx, tx, key)
		if err != nil {
			return err
		}
		from, to, ok := normalizeRange(start, stop, n)
		if !ok {
			_, err := tx.ExecContext(ctx, `DELETE FROM kv_lists WHERE key = ?`, key)
			return err
		}
		first, err := posAt(ctx, tx, key, from)
		if err != nil {
			return err
		}
		last, err := posAt(ctx, tx, key, to)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM kv_lists WHERE key = ? AND (pos < ? OR pos > ?)`, key, first, last)
		return err
	})
}

func listAll(ctx context.Context, q querier, key string) ([]string, error) {
	rows, err := q.QueryContext(ctx, `SELECT value FROM kv_lists WHERE key = ? ORDER BY pos`, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, rows.Err()
}

// UpdateList reads and rewrites the list inside one transaction. The single
// connection holds concurrent pushes until it commits.
func (s *SQLite) UpdateList(ctx context.Context, key string, fn ListUpdate) error {
	var fnErr error
	err := s.inTx(ctx, "updatelist", func(ctx context.Context, tx *sql.Tx) error {
		items, err := listAll(ctx, tx, key)
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
		if _, err := tx.ExecContext(ctx, `DELETE FROM kv_lists WHERE key = ?`, key); err != nil {
			return err
		}
		_, err = push(ctx, tx, key, next, false)
		return err
	})
	if fnErr != nil {
		return fnErr
	}
	return err
}

// ===== batches =====

// Atomic applies the batch inside one transaction.
func (s *SQLite) Atomic(ctx context.Context, fn func(b *Batch) error) error {
	var b Batch
	if err := fn(&b); err != nil {
		return err
	}
	if b.Len() == 0 {
		return nil
	}

	return s.inTx(ctx, "atomic", func(ctx context.Context, tx *sql.Tx) error {
		for _, o := range b.ops {
			var err error
			switch o.kind {
			case opHSet:
				err = hset(ctx, tx, o.key, o.fields)
			case opSAdd:
				_, err = sadd(ctx, tx, o.key, o.values)
			case opSRem:
				err = srem(ctx, tx, o.key, o.values)
			case opSet:
				err = s.setString(ctx, tx, o.key, o.values[0], o.ttl)
			case opDel:
				err = delKeys(ctx, tx, o.values)
			case opRPush:
				_, err = push(ctx, tx, o.key, o.values, false)
			case opExpire:
				err = s.expire(ctx, tx, o.key, o.ttl)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLite) Ping(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.db.PingContext(ctx); err != nil {
		return fail("ping", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/agentic-research/divtree/api"
	"github.com/agentic-research/divtree/internal/division"
	"github.com/redis/go-redis/v9"
)

// DefaultCacheTTL bounds how long a cached child list is served.
const DefaultCacheTTL = 10 * time.Minute

// CachedStore is a read-through Redis cache in front of another Store.
// Child lists are stored per parent id as JSON rows. Redis failures are
// logged and fall through to the wrapped store.
type CachedStore struct {
	next   Store
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
	opts   options
}

// NewCachedStore wraps next. A non-positive ttl means DefaultCacheTTL.
// The cache namespace includes the table name, so two datasets can share
// one Redis database.
func NewCachedStore(next Store, rdb *redis.Client, ttl time.Duration, opts ...Option) *CachedStore {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	o := buildOptions(opts)
	return &CachedStore{
		next:   next,
		rdb:    rdb,
		ttl:    ttl,
		prefix: "divtree:" + o.table + ":children:",
		opts:   o,
	}
}

// OpenRedis returns a client for addr, or nil when addr is empty.
func OpenRedis(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
}

// key namespaces parent ids under "id:" so no id can collide with the
// roots entry.
func (c *CachedStore) key(parentID string) string {
	if parentID == RootID {
		return c.prefix + "roots"
	}
	return c.prefix + "id:" + parentID
}

// ChildrenOf implements Store.
func (c *CachedStore) ChildrenOf(parentID string) ([]*division.Division, error) {
	ctx := context.Background()
	key := c.key(parentID)

	b, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		divs, derr := c.decode(b)
		if derr == nil {
			return divs, nil
		}
		c.opts.log.Warn("discarding corrupt cache entry", "key", key, "err", derr)
	case errors.Is(err, redis.Nil):
	default:
		c.opts.log.Warn("redis get failed", "key", key, "err", err)
	}

	divs, err := c.next.ChildrenOf(parentID)
	if err != nil {
		return nil, err
	}
	if b, err := c.encode(divs); err != nil {
		c.opts.log.Warn("encode cache entry", "key", key, "err", err)
	} else if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
		c.opts.log.Warn("redis set failed", "key", key, "err", err)
	}
	return divs, nil
}

func (c *CachedStore) encode(divs []*division.Division) ([]byte, error) {
	rows := make([]api.Division, 0, len(divs))
	for _, d := range divs {
		row, err := d.Row()
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return json.Marshal(rows)
}

func (c *CachedStore) decode(b []byte) ([]*division.Division, error) {
	var rows []api.Division
	if err := json.Unmarshal(b, &rows); err != nil {
		return nil, err
	}
	out := make([]*division.Division, 0, len(rows))
	for _, row := range rows {
		d, err := division.FromRow(row, c.opts.divisionOpts()...)
		if err != nil {
			return nil, fmt.Errorf("cached row: %w", err)
		}
		out = append(out, d)
	}
	return out, nil
}

// Invalidate drops the cached child list of parentID.
func (c *CachedStore) Invalidate(parentID string) error {
	return c.rdb.Del(context.Background(), c.key(parentID)).Err()
}

// Close closes both the Redis client and the wrapped store.
func (c *CachedStore) Close() error {
	rerr := c.rdb.Close()
	if err := c.next.Close(); err != nil {
		return err
	}
	return rerr
}

var _ Store = (*CachedStore)(nil)

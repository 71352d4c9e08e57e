package kv

import (
	"context"

	"gofinances/internal/cache"
)

// Cached is a read-through, write-through cache in front of a Store. Absent
// keys are not cached. It assumes this process is the only writer of the
// underlying store.
type Cached struct {
	next  Store
	cache cache.Cache[string]
}

var _ Store = (*Cached)(nil)

func NewCached(next Store, c cache.Cache[string]) *Cached {
	return &Cached{next: next, cache: c}
}

func (c *Cached) Get(ctx context.Context, key string) (string, bool, error) {
	if v, ok := c.cache.Get(key); ok {
		return v, true, nil
	}
	v, ok, err := c.next.Get(ctx, key)
	if err != nil || !ok {
		return v, ok, err
	}
	c.cache.Set(key, v)
	return v, true, nil
}

func (c *Cached) Set(ctx context.Context, key, value string) error {
	if err := c.next.Set(ctx, key, value); err != nil {
		c.cache.Delete(key)
		return err
	}
	c.cache.Set(key, value)
	return nil
}

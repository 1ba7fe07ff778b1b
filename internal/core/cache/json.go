package cache

import (
	"context"
	"encoding/json"
	"time"
)

// LoadJSON 读缓存，未命中或解不开时回源并回写；缓存里的脏数据会被删掉
func LoadJSON[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var zero T
	if c != nil {
		if b, ok := c.get(ctx, key); ok {
			var v T
			if err := json.Unmarshal(b, &v); err == nil {
				return v, nil
			}
			_ = c.Invalidate(ctx, key)
		}
	}
	b, err := c.GetOrLoad(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return zero, err
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return zero, err
	}
	return v, nil
}

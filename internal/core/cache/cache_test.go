package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type payload struct {
	N int `json:"n"`
}

// unreachable 连不上的 redis，验证降级回源
func unreachable() *Cache {
	return &Cache{
		RDB: redis.NewClient(&redis.Options{
			Addr:        "127.0.0.1:1",
			DialTimeout: 100 * time.Millisecond,
			MaxRetries:  -1,
		}),
		Prefix: "test:",
	}
}

func TestLoadJSONWithoutCache(t *testing.T) {
	for name, c := range map[string]*Cache{"nil": nil, "down": unreachable()} {
		t.Run(name, func(t *testing.T) {
			defer c.Close()
			calls := 0
			for i := 0; i < 2; i++ {
				got, err := LoadJSON(context.Background(), c, "k", time.Minute, func(context.Context) (payload, error) {
					calls++
					return payload{N: 7}, nil
				})
				if err != nil || got.N != 7 {
					t.Fatalf("got=%v err=%v", got, err)
				}
			}
			if calls != 2 {
				t.Fatalf("loader should run on every miss, calls=%d", calls)
			}
		})
	}
}

func TestLoadJSONPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	_, err := LoadJSON(context.Background(), nil, "k", time.Minute, func(context.Context) (payload, error) {
		return payload{}, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}

func TestNilCacheNoops(t *testing.T) {
	var c *Cache
	if err := c.Invalidate(context.Background(), "a"); err != nil {
		t.Fatal(err)
	}
	if err := c.Ping(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestPingUnreachable(t *testing.T) {
	c := unreachable()
	defer c.Close()
	if err := c.Ping(context.Background()); err == nil {
		t.Fatal("expected ping error")
	}
}

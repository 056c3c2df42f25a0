package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/robertarktes/tourinfo/internal/domain"
)

type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) Client() *redis.Client {
	return c.client
}

// TrackVisit bumps the rolling monthly visitor counter. Called from HTTP
// middleware; failures are the caller's to ignore.
func (c *Cache) TrackVisit(ctx context.Context) error {
	return c.client.Incr(ctx, "visitors:monthly").Err()
}

func (c *Cache) VisitorCount(ctx context.Context) (int64, error) {
	count, err := c.client.Get(ctx, "visitors:monthly").Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, domain.MarkConnection(err)
	}
	return count, nil
}

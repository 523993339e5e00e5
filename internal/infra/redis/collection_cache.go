package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"trivia-session-service/internal/content"
	"trivia-session-service/internal/domain"
)

// CollectionCache caches collection JSON in redis and falls back to the
// loader on a miss. Singleflight collapses concurrent misses for the same
// collection into one backing-store hit.
type CollectionCache struct {
	client *redis.Client
	loader content.Loader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewCollectionCache(client *redis.Client, loader content.Loader, ttl time.Duration) *CollectionCache {
	return &CollectionCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *CollectionCache) LoadCollection(ctx context.Context, collectionID string) (domain.Collection, error) {
	key := c.key(collectionID)

	if col, ok := c.fromCache(ctx, key); ok {
		return col, nil
	}

	result, err, _ := c.sf.Do(collectionID, func() (interface{}, error) {
		// Re-check in case another goroutine filled it.
		if col, ok := c.fromCache(ctx, key); ok {
			return col, nil
		}

		col, err := c.loader.LoadCollection(ctx, collectionID)
		if err != nil {
			return domain.Collection{}, err
		}

		if data, err := json.Marshal(col); err == nil {
			// Cache write is best effort.
			_ = c.client.Set(ctx, key, data, c.ttlWithJitter()).Err()
		}
		return col, nil
	})
	if err != nil {
		return domain.Collection{}, err
	}
	return result.(domain.Collection), nil
}

func (c *CollectionCache) fromCache(ctx context.Context, key string) (domain.Collection, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return domain.Collection{}, false
	}
	var col domain.Collection
	if err := json.Unmarshal(data, &col); err != nil {
		return domain.Collection{}, false
	}
	return col, true
}

func (c *CollectionCache) key(collectionID string) string {
	return "trivia:collection:" + collectionID
}

func (c *CollectionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

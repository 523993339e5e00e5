package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"trivia-session-service/internal/content"
	"trivia-session-service/internal/domain"
)

// CollectionCache caches collections with TTL to avoid repeated backing-store
// hits when redis is not configured.
type CollectionCache struct {
	loader content.Loader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedCollection
}

type cachedCollection struct {
	col       domain.Collection
	expiresAt time.Time
}

func NewCollectionCache(loader content.Loader, ttl time.Duration) *CollectionCache {
	return &CollectionCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedCollection),
	}
}

func (c *CollectionCache) LoadCollection(ctx context.Context, collectionID string) (domain.Collection, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[collectionID]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.col, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(collectionID, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[collectionID]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.col, nil
		}
		c.mu.RUnlock()

		col, err := c.loader.LoadCollection(ctx, collectionID)
		if err != nil {
			return domain.Collection{}, err
		}

		c.mu.Lock()
		c.cache[collectionID] = cachedCollection{
			col:       col,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return col, nil
	})
	if err != nil {
		return domain.Collection{}, err
	}
	return result.(domain.Collection), nil
}

// StaticCollectionLoader is a loader backed by an in-memory map (tests/demos).
type StaticCollectionLoader struct {
	collections map[string]domain.Collection
}

func NewStaticCollectionLoader(collections map[string]domain.Collection) *StaticCollectionLoader {
	return &StaticCollectionLoader{collections: collections}
}

func (l *StaticCollectionLoader) LoadCollection(_ context.Context, collectionID string) (domain.Collection, error) {
	if col, ok := l.collections[collectionID]; ok {
		return col, nil
	}
	return domain.Collection{}, domain.ErrCollectionNotFound
}

func (c *CollectionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

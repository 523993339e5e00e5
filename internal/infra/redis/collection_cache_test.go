package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"trivia-session-service/internal/domain"
	"trivia-session-service/internal/infra/memory"
)

func TestCollectionCacheHitsRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	loader := &countingLoader{
		inner: memory.NewStaticCollectionLoader(map[string]domain.Collection{
			"general": sampleCollection(),
		}),
	}
	cache := NewCollectionCache(client, loader, time.Minute)

	col, err := cache.LoadCollection(context.Background(), "general")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(col.Questions) != 1 || col.Meta.Slug != "general" {
		t.Fatalf("unexpected collection: %+v", col)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}

	// Second call should hit the redis cache, loader not incremented.
	if _, err := cache.LoadCollection(context.Background(), "general"); err != nil {
		t.Fatalf("cached load: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
}

func TestCollectionCachePropagatesMiss(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCollectionCache(client, memory.NewStaticCollectionLoader(nil), time.Minute)

	if _, err := cache.LoadCollection(context.Background(), "nope"); err != domain.ErrCollectionNotFound {
		t.Fatalf("expected collection not found, got %v", err)
	}
}

type countingLoader struct {
	inner *memory.StaticCollectionLoader
	calls int
}

func (l *countingLoader) LoadCollection(ctx context.Context, collectionID string) (domain.Collection, error) {
	l.calls++
	return l.inner.LoadCollection(ctx, collectionID)
}

func sampleCollection() domain.Collection {
	return domain.Collection{
		Meta: domain.CollectionMeta{ID: "general", Name: "General", Slug: "general"},
		Questions: []domain.Question{
			{
				ID:     "q1",
				Prompt: "What is 2 + 2?",
				Options: []domain.Option{
					{ID: "o1", Text: "3"},
					{ID: "o2", Text: "4", Correct: true},
				},
				Difficulty: "easy",
			},
		},
	}
}

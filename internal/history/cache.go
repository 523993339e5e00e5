// Package history keeps a best-effort, per-user list of recently played
// question IDs so fresh sessions and adaptive draws avoid repeats. It lives
// in process memory and is explicitly not durable across restarts.
package history

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache bounds memory two ways: an LRU over users and a fixed cap of
// question IDs per user.
type Cache struct {
	mu      sync.Mutex
	users   *lru.Cache[int64, []string]
	perUser int
}

func New(maxUsers, perUser int) (*Cache, error) {
	users, err := lru.New[int64, []string](maxUsers)
	if err != nil {
		return nil, err
	}
	return &Cache{users: users, perUser: perUser}, nil
}

// Recent returns a copy of the user's exclusion list. Anonymous users have none.
func (c *Cache) Recent(userID int64) []string {
	if userID == 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	ids, ok := c.users.Get(userID)
	if !ok {
		return nil
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// Remember appends question IDs to the user's list, dropping duplicates and
// trimming to the per-user cap (oldest first).
func (c *Cache) Remember(userID int64, questionIDs ...string) {
	if userID == 0 || len(questionIDs) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	ids, _ := c.users.Get(userID)
	seen := make(map[string]struct{}, len(ids)+len(questionIDs))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	for _, id := range questionIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) > c.perUser {
		ids = ids[len(ids)-c.perUser:]
	}
	c.users.Add(userID, ids)
}

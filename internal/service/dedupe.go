package service

import (
	"time"

	cache "github.com/patrickmn/go-cache"
)

// SeenCache tracks race ids already persisted during this process run.
// It is the pipeline's sole idempotence guard across feed redeliveries;
// it is NOT durable across restarts, so the persistence layer's upsert
// and insert-if-absent semantics must absorb reprocessing after a
// restart. Entries expire after the configured TTL to bound memory on
// long runs.
type SeenCache struct {
	cache *cache.Cache
}

// NewSeenCache creates a seen-race cache whose entries expire after ttl.
func NewSeenCache(ttl time.Duration) *SeenCache {
	return &SeenCache{
		cache: cache.New(ttl, ttl*2),
	}
}

// Seen reports whether raceID has already been marked. It does not
// mark; races are marked only after a confirmed successful write.
func (s *SeenCache) Seen(raceID string) bool {
	_, found := s.cache.Get(raceID)
	return found
}

// Mark records raceID as successfully persisted.
func (s *SeenCache) Mark(raceID string) {
	s.cache.SetDefault(raceID, struct{}{})
}

// Len returns the number of race ids currently tracked.
func (s *SeenCache) Len() int {
	return s.cache.ItemCount()
}

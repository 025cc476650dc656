package cache

import (
	"context"
	"log"
	"time"
)

// Store caches raw upstream responses keyed by request URL.
type Store interface {
	// Get returns the cached body if present and younger than maxAge.
	Get(key string, maxAge time.Duration) ([]byte, bool, error)
	Put(key string, body []byte) error
	// Prune deletes entries fetched before olderThan and returns how many were removed.
	Prune(olderThan time.Time) (int64, error)
	Close() error
}

// Fetch is a read-through helper: it serves key from store when fresh,
// otherwise calls fn and stores its result. Cache failures are logged and ignored.
func Fetch(ctx context.Context, store Store, key string, ttl time.Duration, fn func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	if store == nil {
		store = NewNoopStore()
	}
	if ttl > 0 {
		body, ok, err := store.Get(key, ttl)
		if err != nil {
			log.Printf("[WARN] cache get %s: %v", key, err)
		} else if ok {
			return body, nil
		}
	}

	body, err := fn(ctx)
	if err != nil {
		return nil, err
	}
	if ttl > 0 {
		if err := store.Put(key, body); err != nil {
			log.Printf("[WARN] cache put %s: %v", key, err)
		}
	}
	return body, nil
}

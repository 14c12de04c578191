package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"
)

// Cache keeps JSON snapshots of upstream fetches with a freshness window.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewCache returns a Cache whose entries stay fresh for ttl.
func NewCache(db *sql.DB, ttl time.Duration) *Cache {
	return &Cache{db: db, ttl: ttl, now: time.Now}
}

// Entry is a cached payload and when it was fetched.
type Entry struct {
	Payload   []byte
	FetchedAt time.Time
}

// Fresh reports whether the entry is within ttl of now.
func (c *Cache) Fresh(e Entry) bool {
	return c.now().Sub(e.FetchedAt) < c.ttl
}

// Get returns the entry for key. found is false when nothing is cached.
func (c *Cache) Get(ctx context.Context, key string) (e Entry, found bool, err error) {
	var payload string
	err = c.db.QueryRowContext(ctx,
		`SELECT payload, fetched_at FROM fetch_cache WHERE key = ?`, key,
	).Scan(&payload, &e.FetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	e.Payload = []byte(payload)
	return e, true, nil
}

// Put stores v as JSON under key.
func (c *Cache) Put(ctx context.Context, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO fetch_cache (key, payload, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at
	`, key, string(payload), c.now().UTC().Format(timeLayout))
	return err
}

// Load returns the cached value for key while fresh. Otherwise it calls
// fetch and caches the result. If fetch fails and a stale value exists, the
// stale value is returned instead of the error.
func Load[T any](ctx context.Context, c *Cache, key string, fetch func(context.Context) (T, error)) (T, error) {
	var zero T

	entry, found, err := c.Get(ctx, key)
	if err != nil {
		log.Printf("Cache read failed for %s: %v", key, err)
		found = false
	}

	var cached T
	if found {
		if err := json.Unmarshal(entry.Payload, &cached); err != nil {
			log.Printf("Discarding undecodable cache entry %s: %v", key, err)
			found = false
		} else if c.Fresh(entry) {
			return cached, nil
		}
	}

	v, err := fetch(ctx)
	if err != nil {
		if found {
			log.Printf("Fetch for %s failed, serving cached copy from %s: %v", key, entry.FetchedAt.Format(time.RFC3339), err)
			return cached, nil
		}
		return zero, err
	}

	if err := c.Put(ctx, key, v); err != nil {
		log.Printf("Cache write failed for %s: %v", key, err)
	}
	return v, nil
}

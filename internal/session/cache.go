// Package session caches the authenticated actor's profile for the lifetime
// of a session. The guard consults it on every request, so lookups must not
// translate into one database read per navigation: results are cached with a
// TTL and concurrent loads for the same actor share a single fetch.
package session

import (
	"context"
	"strconv"
	"sync"
	"time"

	"shiksha/internal/domain/profiles"

	"golang.org/x/sync/singleflight"
)

// ProfileSource loads the authorization profile for an account.
type ProfileSource interface {
	GetByAccountID(ctx context.Context, accountID int64) (*profiles.Profile, error)
}

type entry struct {
	profile   *profiles.Profile
	expiresAt time.Time
}

// Cache resolves account ids to profiles with TTL caching and single-flight
// coalescing. A failed fetch caches nothing, so the guard stays closed until
// a later attempt succeeds. Per-account generations make invalidation safe
// against in-flight fetches: an Invalidate that lands while a fetch is
// running keeps that fetch's result out of the cache.
type Cache struct {
	source ProfileSource
	ttl    time.Duration

	mu      sync.RWMutex
	entries map[int64]entry
	gens    map[int64]uint64
	epoch   uint64
	group   singleflight.Group
}

func NewCache(source ProfileSource, ttl time.Duration) *Cache {
	return &Cache{
		source:  source,
		ttl:     ttl,
		entries: make(map[int64]entry),
		gens:    make(map[int64]uint64),
	}
}

// Resolve returns the cached profile for accountID, fetching it when absent
// or expired. Concurrent callers for the same account observe one underlying
// store request.
func (c *Cache) Resolve(ctx context.Context, accountID int64) (*profiles.Profile, error) {
	c.mu.RLock()
	e, ok := c.entries[accountID]
	gen, epoch := c.gens[accountID], c.epoch
	c.mu.RUnlock()

	if ok && time.Now().Before(e.expiresAt) {
		return e.profile, nil
	}

	v, err, _ := c.group.Do(strconv.FormatInt(accountID, 10), func() (any, error) {
		p, err := c.source.GetByAccountID(ctx, accountID)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		// Skip the store when an invalidation raced the fetch; the result is
		// still returned to the caller, but the next request re-reads.
		if c.gens[accountID] == gen && c.epoch == epoch {
			c.entries[accountID] = entry{profile: p, expiresAt: time.Now().Add(c.ttl)}
		}
		c.mu.Unlock()

		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*profiles.Profile), nil
}

// Invalidate drops the cached profile for one account. Admin edits to a
// profile call this so the next request re-reads role and approval status.
func (c *Cache) Invalidate(accountID int64) {
	c.mu.Lock()
	delete(c.entries, accountID)
	c.gens[accountID]++
	c.mu.Unlock()
}

// InvalidateAll clears the whole cache.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[int64]entry)
	c.epoch++
	c.mu.Unlock()
}

// Logout clears the account's cached state. It completes before returning,
// so a different actor signing in right after never sees stale data.
func (c *Cache) Logout(accountID int64) {
	c.Invalidate(accountID)
}

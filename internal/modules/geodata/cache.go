// README: Geodata cache keyed by quantized coordinate and query kind.
package geodata

import (
	"context"
	"sync"
	"time"

	"parkwatch/internal/backend"
	"parkwatch/internal/types"
)

type Kind string

const (
	KindPrices    Kind = "prices"
	KindLocations Kind = "locations"
)

// Key quantizes a coordinate to the cache grid. Two candidates within ~100 m
// of each other map to the same entry.
type Key struct {
	Lat  float64
	Lng  float64
	Kind Kind
}

func KeyFor(p types.Point, kind Kind) Key {
	return Key{Lat: quantize(p.Lat), Lng: quantize(p.Lng), Kind: kind}
}

// Entry holds the last successfully fetched result set for a key. A stale
// entry may still be shown optimistically while a refresh is in flight.
type Entry struct {
	Key       Key
	Spots     []backend.PricedSpot
	Locations []backend.Location
	FetchedAt time.Time
}

func (e Entry) Fresh(ttl time.Duration, now time.Time) bool {
	return now.Sub(e.FetchedAt) < ttl
}

// Cache stores geodata result sets. Entries are overwritten on every
// successful fetch and never explicitly deleted; the coarse key grid bounds
// growth.
type Cache interface {
	Get(ctx context.Context, key Key) (Entry, bool, error)
	Put(ctx context.Context, e Entry) error
}

// MemoryCache is the in-process default.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[Key]Entry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[Key]Entry)}
}

func (c *MemoryCache) Get(ctx context.Context, key Key) (Entry, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok, nil
}

func (c *MemoryCache) Put(ctx context.Context, e Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[e.Key] = e
	return nil
}

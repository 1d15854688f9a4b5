// README: Fetch coordinator; stale-while-revalidate geodata with coalesced, cancellable refresh.
package geodata

import (
	"context"
	"log"
	"sync"
	"time"

	"parkwatch/internal/backend"
	"parkwatch/internal/types"
)

type Options struct {
	// TTL is the freshness window of a cache entry (default 10s).
	TTL time.Duration
	// Debounce is the quiet period after a burst of map movement before a
	// fetch is issued (default 300ms).
	Debounce time.Duration
	// MinMoveM gates refetches: a candidate closer than this to the last
	// fetched coordinate, on both axes, is skipped entirely (default 50m).
	MinMoveM float64
	// RadiusM is the query radius passed to the backend (default 1000m).
	RadiusM int
}

func (o Options) withDefaults() Options {
	if o.TTL == 0 {
		o.TTL = 10 * time.Second
	}
	if o.Debounce == 0 {
		o.Debounce = 300 * time.Millisecond
	}
	if o.MinMoveM == 0 {
		o.MinMoveM = 50
	}
	if o.RadiusM == 0 {
		o.RadiusM = 1000
	}
	return o
}

// Update is one published result set. Exactly one of the payload fields is
// set, matching Kind. Err is set when a fetch failed and no fresh cache
// entry could cover for it.
type Update struct {
	Kind      Kind
	Center    types.Point
	Spots     []backend.PricedSpot
	Locations []backend.Location
	FromCache bool
	Stale     bool
	Err       error
}

// pendingFetch couples the debounce timer with the cancellation of the fetch
// it would start. The two are always cancelled together.
type pendingFetch struct {
	timer  *time.Timer
	cancel context.CancelFunc
}

// Coordinator debounces and deduplicates geodata fetches triggered by map
// movement. Cached entries are published immediately; refreshes are gated on
// distance moved, coalesced over a debounce window, and superseded fetches
// are discarded structurally via a generation counter.
type Coordinator struct {
	client backend.Client
	cache  Cache
	opts   Options
	now    func() time.Time

	root     context.Context
	shutdown context.CancelFunc

	mu          sync.Mutex
	generation  uint64
	pending     *pendingFetch
	inflight    context.CancelFunc
	lastFetched *types.Point
	loading     int
	loadingGen  uint64

	updates chan Update
}

func NewCoordinator(client backend.Client, cache Cache, opts Options) *Coordinator {
	root, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		client:   client,
		cache:    cache,
		opts:     opts.withDefaults(),
		now:      time.Now,
		root:     root,
		shutdown: cancel,
		updates:  make(chan Update, 32),
	}
}

// Updates is the coordinator's publish channel. Sends are non-blocking; a
// slow reader misses intermediate result sets, never the coordinator.
func (c *Coordinator) Updates() <-chan Update {
	return c.updates
}

// Loading reports whether any fetch is still in flight. It clears only when
// both the prices and the locations query have settled.
func (c *Coordinator) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading > 0
}

// Close cancels the pending debounce timer and every in-flight fetch.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.supersedeLocked()
	c.mu.Unlock()
	c.shutdown()
}

// supersedeLocked cancels the pending debounce timer together with the
// cancellation of its fetch, and any fetch already in flight. Caller holds mu.
func (c *Coordinator) supersedeLocked() {
	if c.pending != nil {
		c.pending.timer.Stop()
		c.pending.cancel()
		c.pending = nil
	}
	if c.inflight != nil {
		c.inflight()
		c.inflight = nil
	}
}

// Observe feeds a candidate center coordinate from a map pan. The fetch, if
// any, runs after the debounce window.
func (c *Coordinator) Observe(p types.Point) {
	c.observe(p, false)
}

// Refresh fetches immediately, bypassing the distance gate and the debounce.
// Used once on first location acquisition so the map never starts empty.
func (c *Coordinator) Refresh(p types.Point) {
	c.observe(p, true)
}

func (c *Coordinator) observe(p types.Point, forced bool) {
	c.serveCached(p)

	c.mu.Lock()
	if !forced && c.lastFetched != nil && c.withinGate(p, *c.lastFetched) {
		// Too close to what we already fetched: no timer, no network call.
		c.mu.Unlock()
		return
	}

	// Supersede any pending cycle: the timer and the fetch cancellation go
	// together, never one without the other.
	c.supersedeLocked()
	c.generation++
	gen := c.generation

	fetchCtx, cancel := context.WithCancel(c.root)
	if forced {
		c.inflight = cancel
		c.mu.Unlock()
		go c.fetch(fetchCtx, gen, p)
		return
	}
	timer := time.AfterFunc(c.opts.Debounce, func() {
		c.mu.Lock()
		if gen != c.generation {
			c.mu.Unlock()
			return
		}
		c.pending = nil
		c.inflight = cancel
		c.mu.Unlock()
		c.fetch(fetchCtx, gen, p)
	})
	c.pending = &pendingFetch{timer: timer, cancel: cancel}
	c.mu.Unlock()
}

// withinGate reports whether the candidate moved less than MinMoveM from the
// last fetched coordinate on each axis.
func (c *Coordinator) withinGate(p, last types.Point) bool {
	latDelta := haversineM(p.Lat, last.Lng, last.Lat, last.Lng)
	lngDelta := haversineM(last.Lat, p.Lng, last.Lat, last.Lng)
	return latDelta < c.opts.MinMoveM && lngDelta < c.opts.MinMoveM
}

// serveCached publishes whatever the cache holds for the candidate,
// optimistically, fresh or stale.
func (c *Coordinator) serveCached(p types.Point) {
	now := c.now()
	for _, kind := range []Kind{KindPrices, KindLocations} {
		entry, ok, err := c.cache.Get(c.root, KeyFor(p, kind))
		if err != nil {
			log.Printf("geodata cache read (%s): %v", kind, err)
			continue
		}
		if !ok {
			continue
		}
		c.publish(Update{
			Kind:      kind,
			Center:    p,
			Spots:     entry.Spots,
			Locations: entry.Locations,
			FromCache: true,
			Stale:     !entry.Fresh(c.opts.TTL, now),
		})
	}
}

// fetch issues both queries concurrently. Their failures are independent:
// one failing does not invalidate the other.
func (c *Coordinator) fetch(ctx context.Context, gen uint64, p types.Point) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	c.loading = 2
	c.loadingGen = gen
	c.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		spots, err := c.client.QueryPricedSpots(ctx, p, c.opts.RadiusM)
		c.settle(gen, p, KindPrices, Entry{Key: KeyFor(p, KindPrices), Spots: spots}, err)
	}()
	go func() {
		defer wg.Done()
		locations, err := c.client.QueryParkingLocations(ctx, p, c.opts.RadiusM)
		c.settle(gen, p, KindLocations, Entry{Key: KeyFor(p, KindLocations), Locations: locations}, err)
	}()
	wg.Wait()
}

// settle records one query outcome. A superseded generation is discarded
// wholesale: no cache write, no publish.
func (c *Coordinator) settle(gen uint64, p types.Point, kind Kind, entry Entry, fetchErr error) {
	c.mu.Lock()
	stale := gen != c.generation
	if gen == c.loadingGen && c.loading > 0 {
		c.loading--
	}
	if !stale && fetchErr == nil {
		pt := p
		c.lastFetched = &pt
	}
	if !stale && c.loading == 0 && c.inflight != nil {
		// Both queries settled; release the fetch context.
		c.inflight()
		c.inflight = nil
	}
	c.mu.Unlock()
	if stale {
		return
	}

	if fetchErr != nil {
		// A still-fresh cache entry already served this request; stay quiet.
		if cached, ok, err := c.cache.Get(c.root, entry.Key); err == nil && ok && cached.Fresh(c.opts.TTL, c.now()) {
			log.Printf("geodata fetch (%s) failed, fresh cache served: %v", kind, fetchErr)
			return
		}
		c.publish(Update{Kind: kind, Center: p, Err: fetchErr})
		return
	}

	entry.FetchedAt = c.now()
	if err := c.cache.Put(c.root, entry); err != nil {
		log.Printf("geodata cache write (%s): %v", kind, err)
	}
	c.publish(Update{
		Kind:      kind,
		Center:    p,
		Spots:     entry.Spots,
		Locations: entry.Locations,
	})
}

func (c *Coordinator) publish(u Update) {
	select {
	case c.updates <- u:
	default:
	}
}

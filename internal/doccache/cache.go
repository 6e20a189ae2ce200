// Package doccache implements the optimizer's decision cache (spec §4.7):
// an LRU of past `optimize` outcomes keyed by query shape, invalidated by
// statistics/index version and by a per-entry TTL. It wraps ristretto, the
// in-memory cache already in the teacher's dependency closure (pulled in
// as badger's block cache), instead of a hand-rolled LRU — badger itself
// is not wired here since spec §4.7 calls out the cache as in-memory only.
package doccache

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is the per-entry time-to-live used when none is configured
// (spec §4.7 "default 1h").
const DefaultTTL = time.Hour

// Stats counts cache events for observability (spec §8 "Decision cache
// consistency").
type Stats struct {
	Hits             int64
	Misses           int64
	Evictions        int64
	VersionMismatches int64
	Expirations      int64
}

type entry struct {
	decision     *Decision
	statsVersion int64
	indexVersion int64
	expiresAt    time.Time
}

// DecisionCache is the LRU-with-versioned-invalidation cache described by
// spec §4.7.
type DecisionCache struct {
	cache *ristretto.Cache[uint64, *entry]
	ttl   time.Duration
	sf    singleflight.Group

	hits, misses, evictions, versionMismatches, expirations atomic.Int64
}

// New returns a cache holding up to approximately maxEntries decisions,
// each expiring after ttl (DefaultTTL if ttl <= 0).
func New(maxEntries int64, ttl time.Duration) (*DecisionCache, error) {
	if maxEntries <= 0 {
		maxEntries = 10_000
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	dc := &DecisionCache{ttl: ttl}
	c, err := ristretto.NewCache(&ristretto.Config[uint64, *entry]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
		OnEvict: func(item *ristretto.Item[*entry]) {
			dc.evictions.Add(1)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("doccache: creating ristretto cache: %w", err)
	}
	dc.cache = c
	return dc, nil
}

// Get returns the cached decision for key if present, not expired, and
// still current against statsVersion/indexVersion. A mismatch on either
// axis counts as a version-mismatch, not a plain miss, and proactively
// evicts the stale entry (spec §4.7 "On lookup, the entry is returned only
// if stats_version and index_version still match... mismatches record a
// version-mismatch/expiration counter").
func (c *DecisionCache) Get(key uint64, statsVersion, indexVersion int64) (*Decision, bool) {
	e, ok := c.cache.Get(key)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		c.expirations.Add(1)
		c.cache.Del(key)
		return nil, false
	}
	if e.statsVersion != statsVersion || e.indexVersion != indexVersion {
		c.versionMismatches.Add(1)
		c.cache.Del(key)
		return nil, false
	}
	c.hits.Add(1)
	return e.decision, true
}

// Set installs decision under key, stamped with the versions it was
// computed against.
func (c *DecisionCache) Set(key uint64, decision *Decision, statsVersion, indexVersion int64) {
	e := &entry{
		decision:     decision,
		statsVersion: statsVersion,
		indexVersion: indexVersion,
		expiresAt:    time.Now().Add(c.ttl),
	}
	c.cache.SetWithTTL(key, e, 1, c.ttl)
}

// GetOrCompute returns the cached decision for key if valid, otherwise
// calls compute at most once across concurrently-racing callers sharing
// the same key (spec §4.7 "get_or_compute is the common path"), caches the
// result, and returns it.
func (c *DecisionCache) GetOrCompute(
	key uint64, statsVersion, indexVersion int64, compute func() (*Decision, error),
) (*Decision, error) {
	if d, ok := c.Get(key, statsVersion, indexVersion); ok {
		return d, nil
	}
	sfKey := fmt.Sprintf("%d:%d:%d", key, statsVersion, indexVersion)
	v, err, _ := c.sf.Do(sfKey, func() (any, error) {
		d, err := compute()
		if err != nil {
			return nil, err
		}
		c.Set(key, d, statsVersion, indexVersion)
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Decision), nil
}

// InvalidateOutdated drops every cached entry, called by the catalog when
// stats_version or index_version advances (spec §4.7). ristretto exposes
// no selective-by-predicate eviction, so a full Clear is the only way to
// guarantee no now-stale entry survives; per-lookup version comparison in
// Get already makes this a pure performance optimization, not a
// correctness requirement.
func (c *DecisionCache) InvalidateOutdated(_, _ int64) {
	c.cache.Clear()
}

// Wait blocks until every Set call issued so far has been applied to the
// underlying ristretto cache, letting callers outside this package assert
// on fresh cache state deterministically (ristretto applies writes
// through an internal buffer processed by a background goroutine).
func (c *DecisionCache) Wait() {
	c.cache.Wait()
}

// StatsSnapshot returns a point-in-time copy of the cache's counters.
func (c *DecisionCache) StatsSnapshot() Stats {
	return Stats{
		Hits:              c.hits.Load(),
		Misses:            c.misses.Load(),
		Evictions:         c.evictions.Load(),
		VersionMismatches: c.versionMismatches.Load(),
		Expirations:       c.expirations.Load(),
	}
}

// Close releases the underlying ristretto cache's background goroutines.
func (c *DecisionCache) Close() {
	c.cache.Close()
}

// planner/cache/cache.go
// Copyright(c) 2026 aerosweep contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package cache provides the planner's process-wide memoization layer:
// distance, point-in-polygon, line-polygon intersection, and polygon
// bounds results, each with size-threshold and time-based eviction.
package cache

import (
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/skylinesurvey/aerosweep/geo"
)

// DefaultSizeThreshold is the per-map entry count above which a sweep
// purges entries; DefaultSweepInterval is the minimum elapsed time
// between sweeps regardless of size.
const (
	DefaultSizeThreshold = 10000
	DefaultSweepInterval = 5 * time.Minute
)

// Caches holds the four memoization tables plus the two planning-duration
// counters. A nil *Caches is valid everywhere it's accepted and behaves
// as an always-miss cache, so planner code never needs a non-nil check
// purely to stay correct — only to stay fast.
type Caches struct {
	distance     *lru.LRU[string, float64]
	pointInPoly  *lru.LRU[string, bool]
	lineInPoly   *lru.LRU[string, []geo.Point]
	bounds       *lru.LRU[string, geo.Bounds]
	sizeThresh   int
	sweepEvery   time.Duration
	lastSweep    time.Time
	sweepMu      sync.Mutex
	statsMu      sync.Mutex
	totalNanos   int64
	countCalls   int64
}

// New creates caches with the given size threshold and sweep interval.
// A threshold or interval of zero uses the package defaults.
func New(sizeThreshold int, sweepInterval time.Duration) *Caches {
	if sizeThreshold <= 0 {
		sizeThreshold = DefaultSizeThreshold
	}
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}
	return &Caches{
		distance:    lru.NewLRU[string, float64](sizeThreshold, nil, sweepInterval),
		pointInPoly: lru.NewLRU[string, bool](sizeThreshold, nil, sweepInterval),
		lineInPoly:  lru.NewLRU[string, []geo.Point](sizeThreshold, nil, sweepInterval),
		bounds:      lru.NewLRU[string, geo.Bounds](sizeThreshold, nil, sweepInterval),
		sizeThresh:  sizeThreshold,
		sweepEvery:  sweepInterval,
		lastSweep:   time.Now(),
	}
}

// PolygonID is a stable content hash of a polygon's rounded vertices,
// used in place of language-level identity so that two structurally
// equal polygon values collide in the cache even if the caller built
// them independently.
func PolygonID(poly geo.Polygon) string {
	h := fnv.New64a()
	for _, p := range poly {
		fmt.Fprintf(h, "%.8f,%.8f;", p.Lat, p.Lng)
	}
	return fmt.Sprintf("%x", h.Sum64())
}

func distanceKey(a, b geo.Point) string {
	return fmt.Sprintf("%.6f,%.6f|%.6f,%.6f", a.Lat, a.Lng, b.Lat, b.Lng)
}

func pointInPolyKey(p geo.Point, polyID string) string {
	return fmt.Sprintf("%.8f,%.8f|%s", p.Lat, p.Lng, polyID)
}

func lineInPolyKey(a, b geo.Point, polyID string) string {
	return fmt.Sprintf("%.6f,%.6f|%.6f,%.6f|%s", a.Lat, a.Lng, b.Lat, b.Lng, polyID)
}

// DistanceM returns geo.DistanceM(a, b), memoized. A nil *Caches simply
// recomputes every call.
func (c *Caches) DistanceM(a, b geo.Point) float64 {
	if c == nil {
		return geo.DistanceM(a, b)
	}
	key := distanceKey(a, b)
	if v, ok := c.distance.Get(key); ok {
		return v
	}
	v := geo.DistanceM(a, b)
	c.distance.Add(key, v)
	c.maybeSweep()
	return v
}

// PointInPolygon returns geo.PointInPolygon(p, poly), memoized by polyID.
func (c *Caches) PointInPolygon(p geo.Point, poly geo.Polygon, polyID string) bool {
	if c == nil {
		return geo.PointInPolygon(p, poly)
	}
	key := pointInPolyKey(p, polyID)
	if v, ok := c.pointInPoly.Get(key); ok {
		return v
	}
	v := geo.PointInPolygon(p, poly)
	c.pointInPoly.Add(key, v)
	c.maybeSweep()
	return v
}

// LineIntersections returns geo.PolygonLineIntersections(a, b, poly),
// memoized by polyID.
func (c *Caches) LineIntersections(a, b geo.Point, poly geo.Polygon, polyID string) []geo.Point {
	if c == nil {
		return geo.PolygonLineIntersections(a, b, poly)
	}
	key := lineInPolyKey(a, b, polyID)
	if v, ok := c.lineInPoly.Get(key); ok {
		return v
	}
	v := geo.PolygonLineIntersections(a, b, poly)
	c.lineInPoly.Add(key, v)
	c.maybeSweep()
	return v
}

// Bounds returns poly.Bounds(), memoized by polyID.
func (c *Caches) Bounds(poly geo.Polygon, polyID string) geo.Bounds {
	if c == nil {
		return poly.Bounds()
	}
	if v, ok := c.bounds.Get(polyID); ok {
		return v
	}
	v := poly.Bounds()
	c.bounds.Add(polyID, v)
	c.maybeSweep()
	return v
}

// maybeSweep purges caches whose size exceeds half the threshold, either
// because any single cache overflowed the threshold or because the sweep
// interval has elapsed. The underlying expirable.LRU already evicts on
// both size and TTL internally; this sweep is a belt-and-suspenders pass
// matching the explicit "sweep on overflow or elapsed time" contract.
func (c *Caches) maybeSweep() {
	c.sweepMu.Lock()
	defer c.sweepMu.Unlock()

	overflowed := c.distance.Len() > c.sizeThresh ||
		c.pointInPoly.Len() > c.sizeThresh ||
		c.lineInPoly.Len() > c.sizeThresh ||
		c.bounds.Len() > c.sizeThresh
	elapsed := time.Since(c.lastSweep) > c.sweepEvery

	if !overflowed && !elapsed {
		return
	}
	c.lastSweep = time.Now()

	half := c.sizeThresh / 2
	trimIfOver(c.distance, half)
	trimIfOver(c.pointInPoly, half)
	trimIfOver(c.lineInPoly, half)
	trimIfOver(c.bounds, half)
}

func trimIfOver[V any](l *lru.LRU[string, V], half int) {
	for l.Len() > half {
		if _, _, ok := l.RemoveOldest(); !ok {
			break
		}
	}
}

// Reset clears every cache. It is the explicit reset entry point callers
// (notably tests) use to avoid cross-call bleed of memoized results.
func (c *Caches) Reset() {
	if c == nil {
		return
	}
	c.distance.Purge()
	c.pointInPoly.Purge()
	c.lineInPoly.Purge()
	c.bounds.Purge()
}

// RecordPlanningDuration accumulates one planning call's wall-clock time
// into the running total/count pair used by Stats. totalNanos and
// countCalls are updated together under statsMu so the pair Stats reads
// is always consistent with itself.
func (c *Caches) RecordPlanningDuration(d time.Duration) {
	if c == nil {
		return
	}
	c.statsMu.Lock()
	c.totalNanos += int64(d)
	c.countCalls++
	c.statsMu.Unlock()
}

// Stats returns the average planning duration and call count observed so
// far. total and count are read together under statsMu, so average =
// total/count is always meaningful.
func (c *Caches) Stats() (avg time.Duration, count int64) {
	if c == nil {
		return 0, 0
	}
	c.statsMu.Lock()
	total, n := c.totalNanos, c.countCalls
	c.statsMu.Unlock()
	if n == 0 {
		return 0, 0
	}
	return time.Duration(total / n), n
}

// ResetStats zeroes the planning-duration counters.
func (c *Caches) ResetStats() {
	if c == nil {
		return
	}
	c.statsMu.Lock()
	c.totalNanos = 0
	c.countCalls = 0
	c.statsMu.Unlock()
}

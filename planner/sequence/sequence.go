// planner/sequence/sequence.go
// Copyright(c) 2026 aerosweep contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package sequence orders a set of clipped sweep lines into a single
// snake-pattern waypoint list, inserting in-polygon bridge points
// wherever a direct leg between lines would leave the polygon.
package sequence

import (
	gomath "math"
	"sort"

	"github.com/skylinesurvey/aerosweep/geo"
	"github.com/skylinesurvey/aerosweep/planner/cache"
	"github.com/skylinesurvey/aerosweep/planner/sweep"
)

const maxBridgeSearchAttempts = 3

// Build concatenates lines into one snake-ordered waypoint list, bridging
// any leg that would otherwise leave the polygon.
func Build(poly geo.Polygon, lines []sweep.Line, start, centroid geo.Point, c *cache.Caches) []geo.Point {
	if len(lines) == 0 {
		return nil
	}
	polyID := cache.PolygonID(poly)

	ordered := orderLines(lines, start, c)

	var out []geo.Point
	flip := false
	for i, line := range ordered {
		wps := line.Waypoints
		if flip {
			wps = reversed(wps)
		}

		if i > 0 {
			tail := out[len(out)-1]
			head := wps[0]
			if !strictInside(tail, head, poly, polyID, c) {
				bridge, ok := findBridge(tail, head, poly, polyID, centroid, c)
				if ok {
					out = append(out, bridge...)
				}
				// If no admissible bridge is found, the leg is still
				// emitted; the final cleanup pass below drops it.
			}
		}
		out = append(out, wps...)
		flip = !flip
	}

	return cleanup(out, poly, polyID, centroid, c)
}

// orderLines sorts lines by the dominant axis of midpoint variation, then
// reverses the order if the start point sits closer to the last line than
// the first.
func orderLines(lines []sweep.Line, start geo.Point, c *cache.Caches) []sweep.Line {
	ordered := make([]sweep.Line, len(lines))
	copy(ordered, lines)

	var minLat, maxLat, minLng, maxLng float64
	minLat, minLng = gomath.Inf(1), gomath.Inf(1)
	maxLat, maxLng = gomath.Inf(-1), gomath.Inf(-1)
	for _, l := range ordered {
		minLat = gomath.Min(minLat, l.Midpoint.Lat)
		maxLat = gomath.Max(maxLat, l.Midpoint.Lat)
		minLng = gomath.Min(minLng, l.Midpoint.Lng)
		maxLng = gomath.Max(maxLng, l.Midpoint.Lng)
	}

	byLat := (maxLat - minLat) >= (maxLng - minLng)
	sort.Slice(ordered, func(i, j int) bool {
		if byLat {
			return ordered[i].Midpoint.Lat < ordered[j].Midpoint.Lat
		}
		return ordered[i].Midpoint.Lng < ordered[j].Midpoint.Lng
	})

	if len(ordered) > 1 {
		distFirst := c.DistanceM(start, ordered[0].Midpoint)
		distLast := c.DistanceM(start, ordered[len(ordered)-1].Midpoint)
		if distLast < distFirst {
			for i, j := 0, len(ordered)-1; i < j; i, j = i+1, j-1 {
				ordered[i], ordered[j] = ordered[j], ordered[i]
			}
		}
	}
	return ordered
}

func reversed(pts []geo.Point) []geo.Point {
	out := make([]geo.Point, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}

func strictInside(a, b geo.Point, poly geo.Polygon, polyID string, c *cache.Caches) bool {
	if !c.PointInPolygon(a, poly, polyID) || !c.PointInPolygon(b, poly, polyID) {
		return false
	}
	length := c.DistanceM(a, b)
	samples := int(geo.Clamp(length/20, 2, 8))
	for i := 1; i <= samples; i++ {
		t := float64(i) / float64(samples+1)
		p := geo.Lerp(a, b, t)
		if !c.PointInPolygon(p, poly, polyID) {
			return false
		}
	}
	n := len(poly)
	for i := 0; i < n; i++ {
		e1 := poly[i]
		e2 := poly[(i+1)%n]
		if geo.SegmentsIntersect(a, b, e1, e2) {
			return false
		}
	}
	return true
}

// findBridge synthesizes zero or more waypoints that make tail->...->head
// strictly inside throughout, per the three-tier search: centroid, biased
// fraction/ring candidates, then a bounded two-point search.
func findBridge(tail, head geo.Point, poly geo.Polygon, polyID string, centroid geo.Point, c *cache.Caches) ([]geo.Point, bool) {
	if strictInside(tail, centroid, poly, polyID, c) && strictInside(centroid, head, poly, polyID, c) {
		return []geo.Point{centroid}, true
	}

	candidates := singleBridgeCandidates(tail, head, centroid)
	for _, cand := range candidates {
		if !c.PointInPolygon(cand, poly, polyID) {
			continue
		}
		if strictInside(tail, cand, poly, polyID, c) && strictInside(cand, head, poly, polyID, c) {
			return []geo.Point{cand}, true
		}
	}

	attempts := 0
	for _, c1 := range candidates {
		for _, c2 := range candidates {
			attempts++
			if attempts > maxBridgeSearchAttempts*maxBridgeSearchAttempts {
				return nil, false
			}
			if !c.PointInPolygon(c1, poly, polyID) || !c.PointInPolygon(c2, poly, polyID) {
				continue
			}
			if strictInside(tail, c1, poly, polyID, c) &&
				strictInside(c1, c2, poly, polyID, c) &&
				strictInside(c2, head, poly, polyID, c) {
				return []geo.Point{c1, c2}, true
			}
		}
	}
	return nil, false
}

// singleBridgeCandidates returns the fraction-along-chord candidates
// (biased toward the centroid) plus a small ring of offsets around the
// centroid, matching the search order described for bridge synthesis.
func singleBridgeCandidates(tail, head, centroid geo.Point) []geo.Point {
	var out []geo.Point

	fractions := []float64{0.2, 0.4, 0.6, 0.8}
	biases := []float64{0.1, 0.2, 0.3, 0.1}
	for i, f := range fractions {
		p := geo.Lerp(tail, head, f)
		p = geo.Lerp(p, centroid, biases[i%len(biases)])
		out = append(out, p)
	}

	baseDist := distanceApprox(tail, head)
	ringFractions := []float64{0.05, 0.1, 0.15}
	ringBearings := []float64{0, 45, 90, 135, 180, 225, 270, 315}
	for _, rf := range ringFractions {
		d := baseDist * rf
		for _, brg := range ringBearings {
			out = append(out, geo.Offset(centroid, brg, d))
		}
	}
	return out
}

func distanceApprox(a, b geo.Point) float64 {
	return geo.DistanceM(a, b)
}

// AppendSegment bridges the tail of an existing waypoint list to the
// head of a new segment (a supplementary pass's waypoints), appends the
// segment, and re-runs the cleanup pass over the combined list.
func AppendSegment(existing []geo.Point, poly geo.Polygon, segment []geo.Point, centroid geo.Point, c *cache.Caches) []geo.Point {
	if len(segment) == 0 {
		return existing
	}
	polyID := cache.PolygonID(poly)

	out := make([]geo.Point, len(existing))
	copy(out, existing)

	if len(out) > 0 {
		tail := out[len(out)-1]
		head := segment[0]
		if !strictInside(tail, head, poly, polyID, c) {
			if bridge, ok := findBridge(tail, head, poly, polyID, centroid, c); ok {
				out = append(out, bridge...)
			}
		}
	}
	out = append(out, segment...)

	return cleanup(out, poly, polyID, centroid, c)
}

// cleanup walks the accumulated list; any leg that is not strictly inside
// gets one bridge-insertion attempt, and failing that the trailing
// endpoint of the offending leg is dropped so no exterior leg survives.
func cleanup(pts []geo.Point, poly geo.Polygon, polyID string, centroid geo.Point, c *cache.Caches) []geo.Point {
	if len(pts) < 2 {
		return pts
	}
	out := []geo.Point{pts[0]}
	for i := 1; i < len(pts); i++ {
		prev := out[len(out)-1]
		cur := pts[i]
		if strictInside(prev, cur, poly, polyID, c) {
			out = append(out, cur)
			continue
		}
		bridge, ok := findBridge(prev, cur, poly, polyID, centroid, c)
		if ok {
			out = append(out, bridge...)
			out = append(out, cur)
			continue
		}
		// Drop cur and continue from prev; the dropped leg is not logged
		// or otherwise reported.
	}
	return out
}

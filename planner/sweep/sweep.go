// planner/sweep/sweep.go
// Copyright(c) 2026 aerosweep contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package sweep generates the family of parallel sweep lines clipped to
// a polygon, along with the waypoints spaced along each surviving chord.
package sweep

import (
	gomath "math"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/skylinesurvey/aerosweep/geo"
	"github.com/skylinesurvey/aerosweep/planner/cache"
)

// Params configures one sweep pass.
type Params struct {
	DirectionDeg float64
	LineSpacingM float64
	PointSpacingM float64
	Anchor       geo.Point
	Centroid     geo.Point
}

// Line is one surviving clipped sweep chord and the waypoints along it.
type Line struct {
	Waypoints []geo.Point
	Midpoint  geo.Point
}

// Result is the outcome of a single sweep pass.
type Result struct {
	Lines          []Line
	FallbackUsed   bool
	FallbackDegree float64
}

const (
	minLineCount = 20
	maxLineCount = 100
	extraLines   = 10
)

// Generate emits the clipped, waypointed sweep lines for poly under the
// given parameters. If fewer than three lines survive at the primary
// direction, it additionally generates at direction+90 with half the
// line spacing and appends those lines to the primary family rather
// than replacing it.
func Generate(poly geo.Polygon, p Params, c *cache.Caches) Result {
	res := generateAt(poly, p, c)
	if len(res.Lines) >= 3 {
		return res
	}

	fallback := p
	fallback.DirectionDeg = normalizeDeg(p.DirectionDeg + 90)
	fallback.LineSpacingM = p.LineSpacingM / 2
	fb := generateAt(poly, fallback, c)

	res.Lines = append(res.Lines, fb.Lines...)
	res.FallbackUsed = true
	res.FallbackDegree = fallback.DirectionDeg
	return res
}

func normalizeDeg(d float64) float64 {
	d = gomath.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}

func generateAt(poly geo.Polygon, p Params, c *cache.Caches) Result {
	polyID := cache.PolygonID(poly)
	bounds := c.Bounds(poly, polyID)
	diag := bounds.DiagonalM()
	if diag <= 0 {
		diag = 1
	}

	k := diag/p.LineSpacingM + extraLines
	K := int(geo.Clamp(k, float64(minLineCount), float64(maxLineCount)))

	perp := normalizeDeg(p.DirectionDeg + 90)

	type lineJob struct {
		offset int
		lines  []Line
	}

	jobs := make([]lineJob, 2*K+1)
	for i := range jobs {
		jobs[i].offset = i - K
	}

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(8)

	for idx := range jobs {
		idx := idx
		g.Go(func() error {
			offset := jobs[idx].offset
			lines := buildLine(poly, p, offset, diag, perp, polyID, c)
			mu.Lock()
			jobs[idx].lines = lines
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // buildLine never returns an error; nothing to propagate

	var lines []Line
	for _, j := range jobs {
		lines = append(lines, j.lines...)
	}
	return Result{Lines: lines}
}

// buildLine constructs, clips, shrinks, and waypoints every surviving
// chord at the given perpendicular offset index. A single offset line
// can cross a concave polygon's boundary more than twice, producing
// several disjoint in-polygon chords; each one that survives shrink and
// admissibility checking becomes its own Line.
func buildLine(poly geo.Polygon, p Params, offset int, diag, perpBearing float64, polyID string, c *cache.Caches) []Line {
	onLine := geo.Offset(p.Anchor, perpBearing, float64(offset)*p.LineSpacingM)

	far1 := geo.Offset(onLine, p.DirectionDeg, 2*diag)
	far2 := geo.Offset(onLine, normalizeDeg(p.DirectionDeg+180), 2*diag)

	crossings := c.LineIntersections(far2, far1, poly, polyID)
	crossings = geo.DedupAndSortAlongDirection(crossings, far2)
	if len(crossings) < 2 {
		return nil
	}

	// Crossings come in pairs along the line; each pair is an independent
	// candidate chord and all surviving chords are emitted.
	var lines []Line
	for i := 0; i+1 < len(crossings); i += 2 {
		start, end := crossings[i], crossings[i+1]
		start, end = shrinkChord(start, end, 0.02)

		if !strictInside(start, end, poly, polyID, c) {
			continue
		}

		length := c.DistanceM(start, end)
		n := int(gomath.Ceil(length/p.PointSpacingM)) + 1
		if n < 2 {
			n = 2
		}

		pts := make([]geo.Point, 0, n)
		for j := 0; j < n; j++ {
			t := float64(j) / float64(n-1)
			wp := geo.Lerp(start, end, t)
			if !c.PointInPolygon(wp, poly, polyID) {
				continue
			}
			pts = append(pts, wp)
		}
		pts = rescueConsecutivePairs(pts, poly, polyID, p.Centroid, c)
		if len(pts) < 2 {
			continue
		}
		mid := geo.Lerp(pts[0], pts[len(pts)-1], 0.5)
		lines = append(lines, Line{Waypoints: pts, Midpoint: mid})
	}
	return lines
}

func shrinkChord(a, b geo.Point, frac float64) (geo.Point, geo.Point) {
	return geo.Lerp(a, b, frac), geo.Lerp(a, b, 1-frac)
}

// strictInside is the shared admissibility predicate: both endpoints
// inside, a handful of interior samples inside, and no polygon-edge
// crossing along the segment.
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

// rescueConsecutivePairs walks consecutive emitted waypoints. When the leg
// between a pair fails strictInside it tries one midpoint rescue (biased
// 10% toward the centroid) inserted between them; if that also fails, the
// later point of the pair is dropped.
func rescueConsecutivePairs(pts []geo.Point, poly geo.Polygon, polyID string, centroid geo.Point, c *cache.Caches) []geo.Point {
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
		mid := geo.Lerp(prev, cur, 0.5)
		mid = geo.Lerp(mid, centroid, 0.1)
		if c.PointInPolygon(mid, poly, polyID) && strictInside(prev, mid, poly, polyID, c) && strictInside(mid, cur, poly, polyID, c) {
			out = append(out, mid, cur)
			continue
		}
		// Rescue failed; drop cur and keep walking from prev.
	}
	return out
}

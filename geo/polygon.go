// geo/polygon.go
// Copyright(c) 2026 aerosweep contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

import (
	gomath "math"
)

// Polygon is an ordered ring of >= 3 distinct vertices. The closing edge
// from the last vertex to the first is implicit; callers must not repeat
// the first vertex at the end.
type Polygon []Point

// ErrTooFewVertices is returned by Validate when a polygon has fewer than
// three vertices.
type ErrTooFewVertices struct{ Count int }

func (e ErrTooFewVertices) Error() string {
	return "polygon has fewer than 3 vertices"
}

// ErrDegenerateEdge is returned by Validate when two consecutive vertices
// coincide, producing a zero-length edge.
type ErrDegenerateEdge struct{ Index int }

func (e ErrDegenerateEdge) Error() string {
	return "polygon has a zero-length or duplicate consecutive edge"
}

// Validate checks the structural invariants from the data model: at least
// three vertices, no duplicate consecutive points, no zero-length edges.
// It does not check simplicity (self-intersection); that check is costly
// and the planner tolerates non-simple input by producing whatever
// strict-inside chords it finds.
func (poly Polygon) Validate() error {
	if len(poly) < 3 {
		return ErrTooFewVertices{Count: len(poly)}
	}
	for i := range poly {
		j := (i + 1) % len(poly)
		if poly[i].Lat == poly[j].Lat && poly[i].Lng == poly[j].Lng {
			return ErrDegenerateEdge{Index: i}
		}
	}
	return nil
}

// Bounds returns the axis-aligned bounding box of the polygon's vertices.
type Bounds struct {
	MinLat, MinLng, MaxLat, MaxLng float64
}

// Bounds computes the polygon's bounding box.
func (poly Polygon) Bounds() Bounds {
	b := Bounds{MinLat: gomath.Inf(1), MinLng: gomath.Inf(1), MaxLat: gomath.Inf(-1), MaxLng: gomath.Inf(-1)}
	for _, p := range poly {
		b.MinLat = gomath.Min(b.MinLat, p.Lat)
		b.MaxLat = gomath.Max(b.MaxLat, p.Lat)
		b.MinLng = gomath.Min(b.MinLng, p.Lng)
		b.MaxLng = gomath.Max(b.MaxLng, p.Lng)
	}
	return b
}

// DiagonalM returns the great-circle length of the bounding box diagonal,
// used by the line generator as a proxy for the polygon's maximum extent.
func (b Bounds) DiagonalM() float64 {
	return DistanceM(Point{Lat: b.MinLat, Lng: b.MinLng}, Point{Lat: b.MaxLat, Lng: b.MaxLng})
}

// Centroid returns the unweighted mean of the polygon's vertices. This is
// sufficient for bridge-point guidance; it is not the area centroid.
func (poly Polygon) Centroid() Point {
	var sumLat, sumLng float64
	for _, p := range poly {
		sumLat += p.Lat
		sumLng += p.Lng
	}
	n := float64(len(poly))
	return Point{Lat: sumLat / n, Lng: sumLng / n}
}

// AreaM2 returns the polygon's area in square meters, via the shoelace
// formula after projecting to local meters: each edge's term scales both
// of its endpoints by the cosine of the latitude of the edge's first
// vertex.
func (poly Polygon) AreaM2() float64 {
	if len(poly) < 3 {
		return 0
	}
	var area float64
	n := len(poly)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		pi := poly[i]
		pj := poly[j]
		latRad := radians(pi.Lat)
		xi := pi.Lng * gomath.Cos(latRad) * 111320.0
		yi := pi.Lat * 110540.0
		xj := pj.Lng * gomath.Cos(latRad) * 111320.0
		yj := pj.Lat * 110540.0
		area += xi*yj - xj*yi
	}
	return gomath.Abs(area) / 2
}

// SignedAreaDeg2 returns the shoelace signed area directly in (degree)^2
// coordinate space, without meter projection. Positive indicates
// clockwise winding with longitude as x (east) and latitude as y (north),
// the convention used by EnsureCCW; negative indicates counter-clockwise.
func (poly Polygon) SignedAreaDeg2() float64 {
	var sum float64
	n := len(poly)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += poly[j].Lng*poly[i].Lat - poly[i].Lng*poly[j].Lat
	}
	return sum / 2
}

// EnsureCCW returns the polygon re-oriented to counter-clockwise winding
// if it is currently clockwise, and the polygon unchanged otherwise. The
// outward-buffer operation requires CCW input.
func (poly Polygon) EnsureCCW() Polygon {
	if poly.SignedAreaDeg2() <= 0 {
		return poly
	}
	reversed := make(Polygon, len(poly))
	for i, p := range poly {
		reversed[len(poly)-1-i] = p
	}
	return reversed
}

// PointInPolygon reports whether p lies inside poly, using a
// horizontal-ray test cast in longitude for p's latitude. Horizontal
// edges are skipped; the latitude interval per edge is half-open
// [minLat, maxLat) to avoid double-counting vertex crossings. A point
// exactly on the boundary is reported inside or outside depending on
// which edge it lies on.
func PointInPolygon(p Point, poly Polygon) bool {
	inside := false
	n := len(poly)
	for i := 0; i < n; i++ {
		a := poly[i]
		b := poly[(i+1)%n]

		if gomath.Abs(a.Lat-b.Lat) < 1e-10 {
			continue // horizontal edge
		}

		lo, hi := a, b
		if lo.Lat > hi.Lat {
			lo, hi = hi, lo
		}
		if p.Lat < lo.Lat || p.Lat >= hi.Lat {
			continue
		}

		crossLng := lo.Lng + (p.Lat-lo.Lat)*(hi.Lng-lo.Lng)/(hi.Lat-lo.Lat)
		if crossLng > p.Lng {
			inside = !inside
		}
	}
	return inside
}

// SegmentsIntersect reports whether segment (p1,p2) intersects segment
// (p3,p4), using the sign of four cross products with an explicit
// collinear-on-segment fallback for shared-endpoint and degenerate cases.
func SegmentsIntersect(p1, p2, p3, p4 Point) bool {
	d1 := cross(p3, p4, p1)
	d2 := cross(p3, p4, p2)
	d3 := cross(p1, p2, p3)
	d4 := cross(p1, p2, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	if d1 == 0 && onSegment(p3, p1, p4) {
		return true
	}
	if d2 == 0 && onSegment(p3, p2, p4) {
		return true
	}
	if d3 == 0 && onSegment(p1, p3, p2) {
		return true
	}
	if d4 == 0 && onSegment(p1, p4, p2) {
		return true
	}
	return false
}

func cross(o, a, b Point) float64 {
	return (a.Lat-o.Lat)*(b.Lng-o.Lng) - (a.Lng-o.Lng)*(b.Lat-o.Lat)
}

// segmentBoundsEpsDeg absorbs floating-point rounding when checking that
// a computed point lies within a segment's bounds, so a crossing on an
// axis-aligned edge is not lost to a last-digit difference.
const segmentBoundsEpsDeg = 1e-12

func onSegment(a, p, b Point) bool {
	return p.Lat <= gomath.Max(a.Lat, b.Lat)+segmentBoundsEpsDeg && p.Lat >= gomath.Min(a.Lat, b.Lat)-segmentBoundsEpsDeg &&
		p.Lng <= gomath.Max(a.Lng, b.Lng)+segmentBoundsEpsDeg && p.Lng >= gomath.Min(a.Lng, b.Lng)-segmentBoundsEpsDeg
}

// DistanceToSegmentM returns the shortest distance in meters from p to
// the bounded segment a-b, using a local equirectangular projection
// centered on a on the same sphere of radius EarthRadiusM that DistanceM
// uses (accurate enough over the span of a single polygon edge). Unlike
// DistanceM(p, a) and DistanceM(p, b), this accounts for p projecting
// onto the interior of the segment rather than only its endpoints.
func DistanceToSegmentM(p, a, b Point) float64 {
	latRad := a.Lat * gomath.Pi / 180
	metersPerDeg := gomath.Pi / 180 * EarthRadiusM
	toMeters := func(pt Point) (float64, float64) {
		x := (pt.Lng - a.Lng) * gomath.Cos(latRad) * metersPerDeg
		y := (pt.Lat - a.Lat) * metersPerDeg
		return x, y
	}

	bx, by := toMeters(b)
	px, py := toMeters(p)

	segLenSq := bx*bx + by*by
	if segLenSq < 1e-9 {
		return gomath.Hypot(px, py)
	}

	t := (px*bx + py*by) / segLenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	cx := t * bx
	cy := t * by
	return gomath.Hypot(px-cx, py-cy)
}

// LineIntersection returns the intersection point of the infinite lines
// through (p1,p2) and (p3,p4), and whether one was found (false for
// parallel or near-parallel lines).
func LineIntersection(p1, p2, p3, p4 Point) (Point, bool) {
	x1, y1 := p1.Lng, p1.Lat
	x2, y2 := p2.Lng, p2.Lat
	x3, y3 := p3.Lng, p3.Lat
	x4, y4 := p4.Lng, p4.Lat

	denom := (x1-x2)*(y3-y4) - (y1-y2)*(x3-x4)
	if gomath.Abs(denom) < 1e-12 {
		return Point{}, false
	}

	t := ((x1-x3)*(y3-y4) - (y1-y3)*(x3-x4)) / denom
	x := x1 + t*(x2-x1)
	y := y1 + t*(y2-y1)
	return Point{Lat: y, Lng: x}, true
}

// PolygonLineIntersections returns every point where the infinite line
// through (lineStart, lineEnd) crosses an edge of poly, restricted to
// points that fall within the segment bounds of that edge. Results are
// not deduplicated or sorted; callers handle both (per §4.1, dedup is by
// 8-decimal string key and sort is along the query direction).
func PolygonLineIntersections(lineStart, lineEnd Point, poly Polygon) []Point {
	var out []Point
	n := len(poly)
	for i := 0; i < n; i++ {
		a := poly[i]
		b := poly[(i+1)%n]

		ip, ok := LineIntersection(lineStart, lineEnd, a, b)
		if !ok {
			continue
		}
		// Restrict to the polygon edge's segment bounds; the "line" side
		// is treated as infinite since callers extend it well past the
		// polygon already.
		if onSegment(a, ip, b) {
			out = append(out, ip)
		}
	}
	return out
}

// DedupAndSortAlongDirection removes near-duplicate points (identical to
// 8 decimal places) and sorts the remainder by distance from origin along
// the bearing implied by origin->far (i.e. by distance from origin).
func DedupAndSortAlongDirection(pts []Point, origin Point) []Point {
	seen := make(map[string]bool, len(pts))
	var uniq []Point
	for _, p := range pts {
		key := roundKey(p)
		if seen[key] {
			continue
		}
		seen[key] = true
		uniq = append(uniq, p)
	}
	sortByDistance(uniq, origin)
	return uniq
}

func roundKey(p Point) string {
	return formatFixed(p.Lat) + "," + formatFixed(p.Lng)
}

func formatFixed(v float64) string {
	// 8 decimal places, matching the cache/dedup key convention used
	// throughout the planner.
	scaled := gomath.Round(v * 1e8)
	return itoa64(int64(scaled))
}

func itoa64(v int64) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [32]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func sortByDistance(pts []Point, origin Point) {
	// Simple insertion sort: these slices are small (crossing counts per
	// line are rarely more than a handful).
	for i := 1; i < len(pts); i++ {
		j := i
		for j > 0 && DistanceM(origin, pts[j-1]) > DistanceM(origin, pts[j]) {
			pts[j-1], pts[j] = pts[j], pts[j-1]
			j--
		}
	}
}

// planner/oblique/oblique.go
// Copyright(c) 2026 aerosweep contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package oblique selects sweep directions from a gimbal pitch, buffers
// the target polygon outward, and composes per-direction results.
package oblique

import (
	gomath "math"

	"github.com/skylinesurvey/aerosweep/geo"
)

// DirectionOffsets returns the direction offsets (added to the main
// direction, mod 360) selected by the magnitude of pitchDeg (expected
// <= 0; magnitude drives the table); their count is the direction count.
func DirectionOffsets(pitchDeg float64) []float64 {
	p := gomath.Abs(pitchDeg)
	switch {
	case p < 15:
		return []float64{0}
	case p < 30:
		return []float64{0, 90, 180}
	case p < 45:
		return []float64{0, 90, 180, 270}
	default:
		return []float64{0, 72, 144, 216, 288}
	}
}

// ExpansionDistanceM computes the outward buffer distance d for a given
// pitch, flight height, photo footprint, and overlap rates.
func ExpansionDistanceM(pitchDeg, flightHeightM, photoWidthM, photoLengthM, sideOverlapPct, forwardOverlapPct float64) float64 {
	p := gomath.Abs(pitchDeg)
	maxWL := gomath.Max(photoWidthM, photoLengthM)

	base := 0.6 * maxWL

	tiltOffset := 0.0
	if p > 5 {
		tiltOffset = flightHeightM * gomath.Tan(radians(p)) * 0.5
	}

	minOverlap := gomath.Min(sideOverlapPct, forwardOverlapPct)
	overlapFactor := 1 - 0.1*minOverlap/100

	d := (base + tiltOffset) * overlapFactor
	lo := 0.3 * maxWL
	hi := 0.8*maxWL + tiltOffset
	return geo.Clamp(d, lo, hi)
}

// EffectiveCoverageRadiusM is the radius within which an oblique
// waypoint is considered to photograph the original polygon, floored at
// 0.4*maxWL/2.
func EffectiveCoverageRadiusM(pitchDeg, photoWidthM, photoLengthM, sideOverlapPct, forwardOverlapPct float64) float64 {
	p := gomath.Abs(pitchDeg)
	maxWL := gomath.Max(photoWidthM, photoLengthM)
	minOverlap := gomath.Min(sideOverlapPct, forwardOverlapPct)

	r := maxWL * 0.5 * gomath.Cos(radians(p)) * (1 - 0.3*minOverlap/100)
	floor := 0.4 * maxWL / 2
	if r < floor {
		return floor
	}
	return r
}

func radians(d float64) float64 { return d / 180 * gomath.Pi }

// BufferOutward expands poly outward by distanceM, ensuring CCW winding
// first. Each vertex is translated along the outward angle-bisector of
// its two adjacent edge normals; degenerate bisectors fall back to one
// edge's normal.
func BufferOutward(poly geo.Polygon, distanceM float64) geo.Polygon {
	ccw := poly.EnsureCCW()
	n := len(ccw)
	out := make(geo.Polygon, n)

	for i := range ccw {
		prev := ccw[(i-1+n)%n]
		cur := ccw[i]
		next := ccw[(i+1)%n]

		n1 := outwardNormal(prev, cur)
		n2 := outwardNormal(cur, next)

		bx := n1[0] + n2[0]
		by := n1[1] + n2[1]
		mag := gomath.Hypot(bx, by)
		if mag < 1e-9 {
			bx, by = n1[0], n1[1]
			mag = gomath.Hypot(bx, by)
			if mag < 1e-9 {
				out[i] = cur
				continue
			}
		}
		bx /= mag
		by /= mag

		// Move the vertex distanceM along the unit bisector. Each adjacent
		// edge therefore moves outward by distanceM*cos(theta/2), where
		// theta is the angle between the two edge normals; the offset
		// equals distanceM only where the two edges are collinear.
		bearing := degrees(gomath.Atan2(bx, by))
		out[i] = geo.Offset(cur, bearing, distanceM)
	}
	return out
}

func degrees(r float64) float64 { return r * 180 / gomath.Pi }

// outwardNormal returns the unit outward normal of edge a->b in a
// CCW-oriented polygon, obtained by rotating the edge vector -90 degrees,
// expressed as (east, north) components.
func outwardNormal(a, b geo.Point) [2]float64 {
	// Edge vector in local (east, north) meters.
	latRad := radians(a.Lat)
	ex := (b.Lng - a.Lng) * gomath.Cos(latRad)
	ey := b.Lat - a.Lat

	// Rotate -90 degrees: (x,y) -> (y,-x).
	nx := ey
	ny := -ex

	mag := gomath.Hypot(nx, ny)
	if mag < 1e-12 {
		return [2]float64{0, 0}
	}
	return [2]float64{nx / mag, ny / mag}
}

// EdgeCoveragePct samples the original polygon's boundary every ~10m and
// reports the fraction of samples within 0.6*max(w,l) of any waypoint in
// covered.
func EdgeCoveragePct(poly geo.Polygon, covered []geo.Point, photoWidthM, photoLengthM float64) float64 {
	maxWL := gomath.Max(photoWidthM, photoLengthM)
	threshold := 0.6 * maxWL

	samples := boundarySamples(poly, 10.0)
	if len(samples) == 0 {
		return 100
	}

	hit := 0
	for _, s := range samples {
		if nearestWithin(s, covered, threshold) {
			hit++
		}
	}
	return 100 * float64(hit) / float64(len(samples))
}

func boundarySamples(poly geo.Polygon, stepM float64) []geo.Point {
	var out []geo.Point
	n := len(poly)
	for i := 0; i < n; i++ {
		a := poly[i]
		b := poly[(i+1)%n]
		edgeLen := geo.DistanceM(a, b)
		steps := int(edgeLen/stepM) + 1
		for s := 0; s < steps; s++ {
			t := float64(s) / float64(steps)
			out = append(out, geo.Lerp(a, b, t))
		}
	}
	return out
}

func nearestWithin(p geo.Point, pts []geo.Point, threshold float64) bool {
	for _, q := range pts {
		if geo.DistanceM(p, q) <= threshold {
			return true
		}
	}
	return false
}

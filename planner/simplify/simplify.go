// planner/simplify/simplify.go
// Copyright(c) 2026 aerosweep contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package simplify collapses near-collinear waypoints on a single sweep
// leg while preserving every true turn point.
package simplify

import (
	gomath "math"

	"github.com/skylinesurvey/aerosweep/geo"
)

// DefaultAngleToleranceDeg and DefaultMinSegmentM are the tunable
// defaults; MinSegmentM is advisory and not enforced as a hard cutoff.
const (
	DefaultAngleToleranceDeg = 2.0
	DefaultMinSegmentM       = 10.0

	turnAngleMultiplier = 5.0
	deviationToleranceM = 3.0
	connectorLegRatio   = 3.0
)

// Params configures the simplifier; zero values fall back to the
// package defaults.
type Params struct {
	AngleToleranceDeg float64
	MinSegmentM       float64
}

func (p Params) resolved() Params {
	if p.AngleToleranceDeg <= 0 {
		p.AngleToleranceDeg = DefaultAngleToleranceDeg
	}
	if p.MinSegmentM <= 0 {
		p.MinSegmentM = DefaultMinSegmentM
	}
	return p
}

// Waypoints collapses collinear interior points from pts, always keeping
// the first and last point. Idempotent: simplifying an already-simplified
// sequence returns it unchanged.
func Waypoints(pts []geo.Point, p Params) []geo.Point {
	p = p.resolved()
	if len(pts) < 3 {
		return pts
	}

	avgLeg := averageLegLength(pts)
	turnThreshold := turnAngleMultiplier * p.AngleToleranceDeg

	return simplifyPass(pts, turnThreshold, avgLeg)
}

func simplifyPass(pts []geo.Point, turnThresholdDeg, avgLeg float64) []geo.Point {
	out := []geo.Point{pts[0]}
	segStart := 0

	for i := 1; i < len(pts)-1; i++ {
		b1 := geo.BearingDeg(pts[i-1], pts[i])
		b2 := geo.BearingDeg(pts[i], pts[i+1])
		angDiff := geo.AngularDifferenceDeg(b1, b2)

		legIn := geo.DistanceM(pts[i-1], pts[i])
		isLongConnector := avgLeg > 0 && legIn > connectorLegRatio*avgLeg

		if angDiff > turnThresholdDeg || isLongConnector {
			out = append(out, pts[i])
			segStart = i
			continue
		}

		dev := perpendicularDistanceM(pts[segStart], pts[i+1], pts[i])
		if dev > deviationToleranceM {
			out = append(out, pts[i])
			segStart = i
		}
	}

	out = append(out, pts[len(pts)-1])
	return out
}

func averageLegLength(pts []geo.Point) float64 {
	if len(pts) < 2 {
		return 0
	}
	var sum float64
	for i := 1; i < len(pts); i++ {
		sum += geo.DistanceM(pts[i-1], pts[i])
	}
	return sum / float64(len(pts)-1)
}

// perpendicularDistanceM returns the perpendicular distance from p to the
// infinite line through chordStart-chordEnd, in meters, using a local
// equirectangular projection centered on chordStart (accurate enough over
// the short spans a single sweep leg spans).
func perpendicularDistanceM(chordStart, chordEnd, p geo.Point) float64 {
	toMeters := func(ref, pt geo.Point) (float64, float64) {
		latRad := ref.Lat * gomath.Pi / 180
		x := (pt.Lng - ref.Lng) * gomath.Cos(latRad) * 111320.0
		y := (pt.Lat - ref.Lat) * 110540.0
		return x, y
	}

	ex, ey := toMeters(chordStart, chordEnd)
	px, py := toMeters(chordStart, p)

	lineLen := gomath.Hypot(ex, ey)
	if lineLen < 1e-9 {
		return gomath.Hypot(px, py)
	}
	// |cross product| / |line vector|
	cross := ex*py - ey*px
	return gomath.Abs(cross) / lineLen
}

// planner/planner.go
// Copyright(c) 2026 aerosweep contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package planner exposes the flight-path planning entry points: single
// and multi-block parallel-sweep planning, and the oblique multi-pass
// driver. The package is computational only — no I/O, no persistence,
// no environment configuration.
package planner

import (
	gomath "math"
	"time"

	"github.com/skylinesurvey/aerosweep/geo"
	"github.com/skylinesurvey/aerosweep/internal/collection"
	"github.com/skylinesurvey/aerosweep/internal/obslog"
	"github.com/skylinesurvey/aerosweep/planner/cache"
	"github.com/skylinesurvey/aerosweep/planner/coverage"
	"github.com/skylinesurvey/aerosweep/planner/oblique"
	"github.com/skylinesurvey/aerosweep/planner/sequence"
	"github.com/skylinesurvey/aerosweep/planner/simplify"
	"github.com/skylinesurvey/aerosweep/planner/sweep"
)

// defaultCaches is the process-wide cache instance entry points use when
// the caller doesn't supply its own via WithCache.
var defaultCaches = cache.New(0, 0)

// PlanResult is the outcome of a single-direction plan.
type PlanResult struct {
	Waypoints      []geo.Point
	TotalDistanceM float64
	TotalLines     int
}

// Route is one direction's waypoints within an oblique result.
type Route struct {
	DirectionDeg   float64
	GimbalPitchDeg float64
	Waypoints      []geo.Point
	DistanceM      float64
	Label          string
}

// ObliqueResult is the outcome of a multi-direction oblique plan.
type ObliqueResult struct {
	Routes             []Route
	TotalDistanceM     float64
	TotalRouteCount    int
	Optimized          bool
	Rationale          string
	ExpandedPolygon    geo.Polygon
	ExpansionDistanceM float64
	EdgeCoveragePct    float64
}

// ExpandedAreaInfoResult describes the outward buffer computed for an
// ObliqueParams value, independent of actually running the planner.
type ExpandedAreaInfoResult struct {
	ExpandedPolygon    geo.Polygon
	ExpansionDistanceM float64
	OriginalAreaM2     float64
	ExpandedAreaM2     float64
	AreaIncreasePct    float64
}

// ObliqueParams bundles the parameters that drive PlanOblique and
// ExpandedAreaInfo.
type ObliqueParams struct {
	Polygon            geo.Polygon
	DirectionDeg       float64
	Start              geo.Point
	SideOverlapPct     float64
	ForwardOverlapPct  float64
	PhotoWidthM        float64
	PhotoLengthM       float64
	FlightHeightM      float64
	GimbalPitchDeg     float64
}

// Option configures a single planning call's collaborators.
type Option func(*options)

type options struct {
	logger *obslog.Logger
	caches *cache.Caches
}

// WithLogger attaches a logger; nil is accepted and behaves as if the
// option were omitted.
func WithLogger(l *obslog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithCache overrides the process-wide cache instance, primarily so
// tests can avoid cross-test bleed without calling ResetCaches.
func WithCache(c *cache.Caches) Option {
	return func(o *options) { o.caches = c }
}

func resolveOptions(opts []Option) options {
	o := options{caches: defaultCaches}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ResetCaches purges the process-wide caches and zeroes the performance
// counters. Tests call this between cases to prevent cross-test bleed.
func ResetCaches() {
	defaultCaches.Reset()
	defaultCaches.ResetStats()
}

// Stats returns the average planning call duration and call count
// observed by the process-wide caches.
func Stats() (avg time.Duration, count int64) {
	return defaultCaches.Stats()
}

func validateCore(poly geo.Polygon, sideOverlapPct, forwardOverlapPct, photoWidthM, photoLengthM, flightHeightM float64) error {
	if err := poly.Validate(); err != nil {
		return invalidInput("polygon", err.Error())
	}
	if poly.AreaM2() < 1e-6 {
		return invalidInput("polygon", "has zero area (collinear vertices)")
	}
	if sideOverlapPct < 0 || sideOverlapPct > 100 {
		return invalidInput("side_overlap_pct", "must be in [0,100]")
	}
	if forwardOverlapPct < 0 || forwardOverlapPct > 100 {
		return invalidInput("forward_overlap_pct", "must be in [0,100]")
	}
	if photoWidthM <= 0 {
		return invalidInput("photo_width_m", "must be > 0")
	}
	if photoLengthM <= 0 {
		return invalidInput("photo_length_m", "must be > 0")
	}
	if flightHeightM <= 0 {
		return invalidInput("flight_height_m", "must be > 0")
	}
	return nil
}

func resolveAnchor(poly geo.Polygon, start geo.Point, c *cache.Caches) geo.Point {
	polyID := cache.PolygonID(poly)
	if c.PointInPolygon(start, poly, polyID) {
		return start
	}

	centroid := poly.Centroid()
	if c.PointInPolygon(centroid, poly, polyID) {
		return centroid
	}

	nearest := nearestBoundaryPoint(poly, start)
	candidate := geo.Lerp(nearest, centroid, 0.01)
	if c.PointInPolygon(candidate, poly, polyID) {
		return candidate
	}
	return centroid
}

func nearestBoundaryPoint(poly geo.Polygon, p geo.Point) geo.Point {
	best := poly[0]
	bestDist := gomath.Inf(1)
	n := len(poly)
	for i := 0; i < n; i++ {
		a := poly[i]
		b := poly[(i+1)%n]
		proj := projectOntoSegment(p, a, b)
		d := geo.DistanceM(p, proj)
		if d < bestDist {
			bestDist = d
			best = proj
		}
	}
	return best
}

func projectOntoSegment(p, a, b geo.Point) geo.Point {
	abLat := b.Lat - a.Lat
	abLng := b.Lng - a.Lng
	apLat := p.Lat - a.Lat
	apLng := p.Lng - a.Lng

	abLenSq := abLat*abLat + abLng*abLng
	if abLenSq < 1e-18 {
		return a
	}
	t := (apLat*abLat + apLng*abLng) / abLenSq
	t = gomath.Max(0, gomath.Min(1, t))
	return geo.Lerp(a, b, t)
}

func sumDistance(pts []geo.Point, c *cache.Caches) float64 {
	var total float64
	for i := 1; i < len(pts); i++ {
		total += c.DistanceM(pts[i-1], pts[i])
	}
	return total
}

// PlanSingle plans one direction's sweep over poly and returns the
// resulting waypoint list and total distance.
func PlanSingle(poly geo.Polygon, directionDeg float64, start geo.Point,
	sideOverlapPct, forwardOverlapPct, photoWidthM, photoLengthM, flightHeightM float64,
	opts ...Option) (PlanResult, error) {

	o := resolveOptions(opts)
	begin := time.Now()
	defer func() { o.caches.RecordPlanningDuration(time.Since(begin)) }()

	if err := validateCore(poly, sideOverlapPct, forwardOverlapPct, photoWidthM, photoLengthM, flightHeightM); err != nil {
		return PlanResult{}, err
	}

	lineSpacing := photoWidthM * (1 - sideOverlapPct/100)
	pointSpacing := photoLengthM * (1 - forwardOverlapPct/100)

	anchor := resolveAnchor(poly, start, o.caches)
	centroid := poly.Centroid()

	sweepResult := sweep.Generate(poly, sweep.Params{
		DirectionDeg:  directionDeg,
		LineSpacingM:  lineSpacing,
		PointSpacingM: pointSpacing,
		Anchor:        anchor,
		Centroid:      centroid,
	}, o.caches)

	if len(sweepResult.Lines) == 0 {
		o.logger.Info("no sweep lines survived strict-inside filter", "direction_deg", directionDeg)
		return PlanResult{}, nil
	}

	waypoints := sequence.Build(poly, sweepResult.Lines, start, centroid, o.caches)
	waypoints = applySpacingGate(waypoints, poly, pointSpacing, lineSpacing)

	return PlanResult{
		Waypoints:      waypoints,
		TotalDistanceM: sumDistance(waypoints, o.caches),
		TotalLines:     len(sweepResult.Lines),
	}, nil
}

// applySpacingGate removes waypoints closer than 0.75*pointSpacing to an
// earlier-emitted waypoint, but only when observed density exceeds 1.5x
// the expected density — the asymmetric gate spec'd for the core.
func applySpacingGate(pts []geo.Point, poly geo.Polygon, pointSpacingM, lineSpacingM float64) []geo.Point {
	area := poly.AreaM2()
	if !coverage.DensityGateActive(len(pts), area, lineSpacingM, pointSpacingM) {
		return pts
	}
	minSpacing := 0.75 * pointSpacingM
	var out []geo.Point
	for _, p := range pts {
		tooClose := false
		for _, q := range out {
			if geo.DistanceM(p, q) < minSpacing {
				tooClose = true
				break
			}
		}
		if !tooClose {
			out = append(out, p)
		}
	}
	return out
}

// PlanMultiBlock plans one direction's sweep and then calls the
// uncoverage-repair pass up to maxBlocks-1 additional times to close
// residual gaps, optionally simplifying the final waypoint list.
func PlanMultiBlock(poly geo.Polygon, directionDeg float64, start geo.Point,
	sideOverlapPct, forwardOverlapPct, photoWidthM, photoLengthM, flightHeightM float64,
	maxBlocks int, simplifyResult bool, opts ...Option) (PlanResult, error) {

	o := resolveOptions(opts)

	base, err := PlanSingle(poly, directionDeg, start, sideOverlapPct, forwardOverlapPct,
		photoWidthM, photoLengthM, flightHeightM, opts...)
	if err != nil {
		return PlanResult{}, err
	}
	if len(base.Waypoints) == 0 {
		return base, nil
	}

	lineSpacing := photoWidthM * (1 - sideOverlapPct/100)
	pointSpacing := photoLengthM * (1 - forwardOverlapPct/100)
	centroid := poly.Centroid()

	covParams := coverage.Params{
		PhotoWidthM:   photoWidthM,
		PhotoLengthM:  photoLengthM,
		LineSpacingM:  lineSpacing,
		PointSpacingM: pointSpacing,
		DirectionDeg:  directionDeg,
	}

	waypoints := base.Waypoints
	totalLines := base.TotalLines

	for block := 1; block < maxBlocks; block++ {
		uncovered, coveragePct := coverage.FindUncovered(poly, waypoints, covParams, o.caches)
		if len(uncovered) < 2 || coveragePct >= 98 {
			break
		}

		clusters := coverage.Cluster(uncovered, covParams)
		var newSegment []geo.Point
		for _, cluster := range clusters {
			var candidates []geo.Point
			if coverage.IsNarrowCluster(cluster, covParams) {
				candidates = []geo.Point{coverage.ClusterCentroid(cluster)}
			} else {
				clusterAnchor := coverage.ClusterCentroid(cluster)
				reduced := sweep.Generate(poly, sweep.Params{
					DirectionDeg:  directionDeg,
					LineSpacingM:  lineSpacing,
					PointSpacingM: pointSpacing,
					Anchor:        clusterAnchor,
					Centroid:      centroid,
				}, o.caches)
				candidates = filterNearUncovered(reduced, cluster, coverage.CoverageRadiusM(covParams))
				if len(candidates) == 0 {
					candidates = coverage.GridFallback(cluster, covParams)
				}
			}
			accepted := coverage.Dedup(candidates, append(waypoints, newSegment...), 0.75*pointSpacing)
			newSegment = append(newSegment, accepted...)
		}

		if len(newSegment) == 0 {
			break
		}

		waypoints = sequence.AppendSegment(waypoints, poly, newSegment, centroid, o.caches)
		totalLines++
	}

	if simplifyResult {
		waypoints = simplify.Waypoints(waypoints, simplify.Params{})
	}

	return PlanResult{
		Waypoints:      waypoints,
		TotalDistanceM: sumDistance(waypoints, o.caches),
		TotalLines:     totalLines,
	}, nil
}

func filterNearUncovered(res sweep.Result, cluster []geo.Point, radius float64) []geo.Point {
	var out []geo.Point
	for _, line := range res.Lines {
		for _, p := range line.Waypoints {
			for _, u := range cluster {
				if geo.DistanceM(p, u) <= radius {
					out = append(out, p)
					break
				}
			}
		}
	}
	return out
}

func validateOblique(p ObliqueParams) error {
	if err := validateCore(p.Polygon, p.SideOverlapPct, p.ForwardOverlapPct, p.PhotoWidthM, p.PhotoLengthM, p.FlightHeightM); err != nil {
		return err
	}
	if p.GimbalPitchDeg > 0 {
		return invalidInput("gimbal_pitch_deg", "must be <= 0")
	}
	return nil
}

// ExpandedAreaInfo computes the outward polygon buffer for p without
// running the planner.
func ExpandedAreaInfo(p ObliqueParams) (ExpandedAreaInfoResult, error) {
	if err := validateOblique(p); err != nil {
		return ExpandedAreaInfoResult{}, err
	}

	expansion := oblique.ExpansionDistanceM(p.GimbalPitchDeg, p.FlightHeightM, p.PhotoWidthM, p.PhotoLengthM, p.SideOverlapPct, p.ForwardOverlapPct)
	expanded := oblique.BufferOutward(p.Polygon, expansion)

	originalArea := p.Polygon.AreaM2()
	expandedArea := expanded.AreaM2()
	increase := 0.0
	if originalArea > 0 {
		increase = 100 * (expandedArea - originalArea) / originalArea
	}

	return ExpandedAreaInfoResult{
		ExpandedPolygon:    expanded,
		ExpansionDistanceM: expansion,
		OriginalAreaM2:     originalArea,
		ExpandedAreaM2:     expandedArea,
		AreaIncreasePct:    increase,
	}, nil
}

// PlanOblique selects 1, 3, 4, or 5 sweep directions from the gimbal
// pitch magnitude, buffers the polygon outward, plans each direction on
// the expanded polygon, filters back to the original polygon's coverage,
// and aggregates the per-direction routes.
func PlanOblique(p ObliqueParams, opts ...Option) (ObliqueResult, error) {
	o := resolveOptions(opts)

	if err := validateOblique(p); err != nil {
		return ObliqueResult{}, err
	}

	expansion := oblique.ExpansionDistanceM(p.GimbalPitchDeg, p.FlightHeightM, p.PhotoWidthM, p.PhotoLengthM, p.SideOverlapPct, p.ForwardOverlapPct)
	expanded := oblique.BufferOutward(p.Polygon, expansion)
	offsets := oblique.DirectionOffsets(p.GimbalPitchDeg)
	effectiveRadius := oblique.EffectiveCoverageRadiusM(p.GimbalPitchDeg, p.PhotoWidthM, p.PhotoLengthM, p.SideOverlapPct, p.ForwardOverlapPct)

	var routes []Route
	var allWaypoints []geo.Point
	var totalDistance float64

	for _, offset := range offsets {
		dir := normalizeDeg(p.DirectionDeg + offset)

		result, err := PlanMultiBlock(expanded, dir, p.Start, p.SideOverlapPct, p.ForwardOverlapPct,
			p.PhotoWidthM, p.PhotoLengthM, p.FlightHeightM, 10, false, opts...)
		if err != nil {
			return ObliqueResult{}, err
		}
		if len(result.Waypoints) == 0 {
			o.logger.Warnf("direction %.1f yielded zero waypoints after expansion; dropping", dir)
			continue
		}

		filtered := filterCoversOriginal(result.Waypoints, p.Polygon, effectiveRadius, o.caches)
		discarded := discardedWaypoints(result.Waypoints, filtered)
		filtered = restoreForResidualGaps(filtered, discarded, p.Polygon, effectiveRadius, o.caches)
		if len(filtered) == 0 {
			continue
		}
		filtered = simplify.Waypoints(filtered, simplify.Params{})

		route := Route{
			DirectionDeg:   dir,
			GimbalPitchDeg: p.GimbalPitchDeg,
			Waypoints:      filtered,
			DistanceM:      sumDistance(filtered, o.caches),
		}
		routes = append(routes, route)
		allWaypoints = append(allWaypoints, filtered...)
		totalDistance += route.DistanceM
	}

	edgeCoverage := oblique.EdgeCoveragePct(p.Polygon, allWaypoints, p.PhotoWidthM, p.PhotoLengthM)

	return ObliqueResult{
		Routes:             routes,
		TotalDistanceM:     totalDistance,
		TotalRouteCount:    len(routes),
		Optimized:          true,
		Rationale:          directionRationale(gomath.Abs(p.GimbalPitchDeg)),
		ExpandedPolygon:    expanded,
		ExpansionDistanceM: expansion,
		EdgeCoveragePct:    edgeCoverage,
	}, nil
}

func directionRationale(pitchMagnitude float64) string {
	switch {
	case pitchMagnitude < 15:
		return "effectively nadir; single sweep"
	case pitchMagnitude < 30:
		return "cross pattern"
	case pitchMagnitude < 45:
		return "orthogonal star"
	default:
		return "full 5-direction oblique"
	}
}

func filterCoversOriginal(pts []geo.Point, original geo.Polygon, radius float64, c *cache.Caches) []geo.Point {
	polyID := cache.PolygonID(original)
	n := len(original)
	return collection.FilterSlice(pts, func(p geo.Point) bool {
		if c.PointInPolygon(p, original, polyID) {
			return true
		}
		for i := 0; i < n; i++ {
			a := original[i]
			b := original[(i+1)%n]
			if geo.DistanceToSegmentM(p, a, b) <= radius {
				return true
			}
		}
		return false
	})
}

func discardedWaypoints(all, kept []geo.Point) []geo.Point {
	keptSet := make(map[geo.Point]bool, len(kept))
	for _, p := range kept {
		keptSet[p] = true
	}
	return collection.FilterSlice(all, func(p geo.Point) bool { return !keptSet[p] })
}

// restoreForResidualGaps re-samples original's interior at half radius
// looking for spots no kept waypoint covers; any that exist get closed
// by restoring discarded waypoints (favoring expansion filtering) that
// cover them within the full radius.
func restoreForResidualGaps(kept, discarded []geo.Point, original geo.Polygon, radius float64, c *cache.Caches) []geo.Point {
	if len(discarded) == 0 {
		return kept
	}
	gaps, _ := coverage.SampleUncovered(original, kept, radius, radius/2, c)
	if len(gaps) == 0 {
		return kept
	}

	restored := kept
	added := make(map[geo.Point]bool)
	for _, gap := range gaps {
		for _, d := range discarded {
			if added[d] {
				continue
			}
			if c.DistanceM(gap, d) <= radius {
				restored = append(restored, d)
				added[d] = true
			}
		}
	}
	return restored
}

func normalizeDeg(d float64) float64 {
	d = gomath.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}

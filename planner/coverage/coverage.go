// planner/coverage/coverage.go
// Copyright(c) 2026 aerosweep contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package coverage detects gaps a waypoint set leaves in a polygon and
// synthesizes supplementary waypoints to close them.
package coverage

import (
	gomath "math"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/skylinesurvey/aerosweep/geo"
	"github.com/skylinesurvey/aerosweep/planner/cache"
)

const (
	minGridSamples = 200
	maxGridSamples = 1500
)

// Params carries the spacing and footprint context needed to size the
// sampling grid, the coverage radius, and the dedup threshold.
type Params struct {
	PhotoWidthM   float64
	PhotoLengthM  float64
	LineSpacingM  float64
	PointSpacingM float64
	DirectionDeg  float64
}

// Report describes one uncoverage-repair pass.
type Report struct {
	CoveragePct float64
	Done        bool
	NewPoints   []geo.Point
}

// CoverageRadiusM is the radius around a waypoint within which the
// polygon is considered photographed.
func CoverageRadiusM(p Params) float64 {
	return 0.25 * gomath.Max(p.PhotoWidthM, p.PhotoLengthM)
}

// baseGrid is the grid cell size before the area-tier scale factor.
func baseGrid(p Params) float64 {
	return gomath.Min(p.PhotoWidthM, p.PhotoLengthM)
}

// FindUncovered samples poly's interior on an adaptive grid and returns
// the samples not within coverage radius of any existing waypoint, along
// with the achieved coverage percentage. It always samples the whole
// grid; the repair loop in PlanMultiBlock is what stops when fewer than
// two gaps remain or coverage already reaches 98%.
func FindUncovered(poly geo.Polygon, existing []geo.Point, p Params, c *cache.Caches) ([]geo.Point, float64) {
	areaM2 := poly.AreaM2()

	tier := 0.5
	switch {
	case areaM2 < 10000:
		tier = 0.2
	case areaM2 < 100000:
		tier = 0.3
	}
	cell := baseGrid(p) * tier
	if cell <= 0 {
		cell = 1
	}

	return SampleUncovered(poly, existing, cell, CoverageRadiusM(p), c)
}

// SampleUncovered is the radius- and grid-cell-parameterized core that
// FindUncovered specializes for the photo-footprint repair loop; it is
// exported directly for callers (such as the oblique driver's residual
// coverage check) that need a coverage radius not derived from a
// Params value.
func SampleUncovered(poly geo.Polygon, existing []geo.Point, gridCellM, radiusM float64, c *cache.Caches) ([]geo.Point, float64) {
	polyID := cache.PolygonID(poly)
	bounds := c.Bounds(poly, polyID)
	cell := gridCellM
	if cell <= 0 {
		cell = 1
	}

	latSpan := c.DistanceM(geo.Point{Lat: bounds.MinLat, Lng: bounds.MinLng}, geo.Point{Lat: bounds.MaxLat, Lng: bounds.MinLng})
	lngSpan := c.DistanceM(geo.Point{Lat: bounds.MinLat, Lng: bounds.MinLng}, geo.Point{Lat: bounds.MinLat, Lng: bounds.MaxLng})

	estRows := latSpan/cell + 1
	estCols := lngSpan/cell + 1
	estimate := estRows * estCols
	if estimate > maxGridSamples {
		scale := gomath.Sqrt(estimate / maxGridSamples)
		cell *= scale
		estRows = latSpan/cell + 1
		estCols = lngSpan/cell + 1
		estimate = estRows * estCols
	}
	if estimate < minGridSamples && estimate > 0 {
		scale := gomath.Sqrt(estimate / minGridSamples)
		if scale > 0 {
			cell *= scale
		}
	}

	rows := int(gomath.Ceil(latSpan/cell)) + 1
	cols := int(gomath.Ceil(lngSpan/cell)) + 1
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}

	latStep := (bounds.MaxLat - bounds.MinLat) / float64(rows)
	lngStep := (bounds.MaxLng - bounds.MinLng) / float64(cols)

	type cell2 struct{ r, c int }
	jobs := make([]cell2, 0, rows*cols)
	for r := 0; r <= rows; r++ {
		for col := 0; col <= cols; col++ {
			jobs = append(jobs, cell2{r, col})
		}
	}

	coverageRadius := radiusM

	var mu sync.Mutex
	var uncovered []geo.Point
	var insideCount, coveredCount int

	g := new(errgroup.Group)
	g.SetLimit(8)
	for _, j := range jobs {
		j := j
		g.Go(func() error {
			sample := geo.Point{
				Lat: bounds.MinLat + float64(j.r)*latStep,
				Lng: bounds.MinLng + float64(j.c)*lngStep,
			}
			if !c.PointInPolygon(sample, poly, polyID) {
				return nil
			}
			nearest := nearestDistance(sample, existing, c)
			mu.Lock()
			insideCount++
			if nearest <= coverageRadius {
				coveredCount++
			} else {
				uncovered = append(uncovered, sample)
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	coveragePct := 100.0
	if insideCount > 0 {
		coveragePct = 100 * float64(coveredCount) / float64(insideCount)
	}
	return uncovered, coveragePct
}

func nearestDistance(p geo.Point, existing []geo.Point, c *cache.Caches) float64 {
	best := gomath.Inf(1)
	for _, e := range existing {
		d := c.DistanceM(p, e)
		if d < best {
			best = d
		}
	}
	return best
}

// Cluster groups uncovered points with an expanding-frontier algorithm:
// a point joins a cluster if it lies within clusterRadius of any point
// already in that cluster.
func Cluster(points []geo.Point, p Params) [][]geo.Point {
	cellSize := gomath.Max(2*p.LineSpacingM, 4*p.PointSpacingM)
	clusterRadius := cellSize

	assigned := make([]bool, len(points))
	var clusters [][]geo.Point

	for i := range points {
		if assigned[i] {
			continue
		}
		cluster := []geo.Point{points[i]}
		assigned[i] = true
		frontier := []int{i}

		for len(frontier) > 0 {
			cur := frontier[0]
			frontier = frontier[1:]
			for j := range points {
				if assigned[j] {
					continue
				}
				if geo.DistanceM(points[cur], points[j]) <= clusterRadius {
					assigned[j] = true
					cluster = append(cluster, points[j])
					frontier = append(frontier, j)
				}
			}
		}
		clusters = append(clusters, cluster)
	}
	return clusters
}

// ClusterSpanM returns the diameter (max pairwise distance) of a cluster.
func ClusterSpanM(cluster []geo.Point) float64 {
	var maxD float64
	for i := range cluster {
		for j := i + 1; j < len(cluster); j++ {
			d := geo.DistanceM(cluster[i], cluster[j])
			if d > maxD {
				maxD = d
			}
		}
	}
	return maxD
}

func clusterCentroid(cluster []geo.Point) geo.Point {
	var sumLat, sumLng float64
	for _, p := range cluster {
		sumLat += p.Lat
		sumLng += p.Lng
	}
	n := float64(len(cluster))
	return geo.Point{Lat: sumLat / n, Lng: sumLng / n}
}

// IsNarrowCluster reports whether a cluster spans less than 0.8x line
// spacing, the threshold under which a single centroid waypoint suffices
// instead of running a reduced sweep over the cluster.
func IsNarrowCluster(cluster []geo.Point, p Params) bool {
	return ClusterSpanM(cluster) < 0.8*p.LineSpacingM
}

// ClusterCentroid returns the unweighted centroid of a cluster, used both
// as the narrow-cluster waypoint and as the anchor for a reduced sweep
// over a wide cluster.
func ClusterCentroid(cluster []geo.Point) geo.Point {
	return clusterCentroid(cluster)
}

// GridFallback emits an axis-aligned local grid at point spacing over a
// cluster, for use when a reduced sweep over a wide cluster yields no
// surviving lines.
func GridFallback(cluster []geo.Point, p Params) []geo.Point {
	span := ClusterSpanM(cluster)
	centroid := clusterCentroid(cluster)

	var out []geo.Point
	step := p.PointSpacingM
	radius := span/2 + step
	steps := int(radius/step) + 1
	for dr := -steps; dr <= steps; dr++ {
		for dc := -steps; dc <= steps; dc++ {
			offsetLat := geo.Offset(centroid, 0, float64(dr)*step)
			pt := geo.Offset(offsetLat, 90, float64(dc)*step)
			if nearestDistanceUnc(pt, cluster) <= CoverageRadiusM(p) {
				out = append(out, pt)
			}
		}
	}
	if len(out) == 0 {
		out = append(out, centroid)
	}
	return out
}

func nearestDistanceUnc(p geo.Point, pts []geo.Point) float64 {
	best := gomath.Inf(1)
	for _, q := range pts {
		d := geo.DistanceM(p, q)
		if d < best {
			best = d
		}
	}
	return best
}

// Dedup rejects any candidate closer than minSpacing to any point already
// in existing, returning only the admissible subset in input order. This
// is the sole mechanism preventing overlap between repair passes.
func Dedup(candidates, existing []geo.Point, minSpacing float64) []geo.Point {
	accepted := make([]geo.Point, len(existing))
	copy(accepted, existing)

	var out []geo.Point
	for _, cand := range candidates {
		tooClose := false
		for _, a := range accepted {
			if geo.DistanceM(cand, a) < minSpacing {
				tooClose = true
				break
			}
		}
		if !tooClose {
			out = append(out, cand)
			accepted = append(accepted, cand)
		}
	}
	return out
}

// DensityGateActive reports whether the stricter spacing validator should
// run: only when observed waypoint density exceeds 1.5x the expected
// density derived from line/point spacing.
func DensityGateActive(waypointCount int, areaM2, lineSpacingM, pointSpacingM float64) bool {
	if areaM2 <= 0 || lineSpacingM <= 0 || pointSpacingM <= 0 {
		return false
	}
	density := float64(waypointCount) / areaM2
	expected := 1 / (lineSpacingM * pointSpacingM)
	return density > 1.5*expected
}

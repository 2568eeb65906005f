// planner/coverage/coverage_test.go
// Copyright(c) 2026 aerosweep contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package coverage

import (
	"testing"

	"github.com/skylinesurvey/aerosweep/geo"
	"github.com/skylinesurvey/aerosweep/planner/cache"
)

func TestFindUncoveredDropsToZeroWithDenseExisting(t *testing.T) {
	poly := geo.Polygon{
		{Lat: 0, Lng: 0}, {Lat: 0, Lng: 0.001}, {Lat: 0.001, Lng: 0.001}, {Lat: 0.001, Lng: 0},
	}
	c := cache.New(0, 0)
	p := Params{PhotoWidthM: 10, PhotoLengthM: 10, LineSpacingM: 5, PointSpacingM: 5, DirectionDeg: 0}

	// Dense grid of existing waypoints covering the whole polygon.
	var existing []geo.Point
	for i := 0; i <= 40; i++ {
		for j := 0; j <= 40; j++ {
			existing = append(existing, geo.Point{
				Lat: float64(i) * 0.000025,
				Lng: float64(j) * 0.000025,
			})
		}
	}

	_, coveragePct := FindUncovered(poly, existing, p, c)
	if coveragePct < 90 {
		t.Errorf("coveragePct = %v with dense existing waypoints, want >= 90", coveragePct)
	}
}

func TestFindUncoveredNonEmptyWithNoExisting(t *testing.T) {
	poly := geo.Polygon{
		{Lat: 0, Lng: 0}, {Lat: 0, Lng: 0.001}, {Lat: 0.001, Lng: 0.001}, {Lat: 0.001, Lng: 0},
	}
	c := cache.New(0, 0)
	p := Params{PhotoWidthM: 10, PhotoLengthM: 10, LineSpacingM: 5, PointSpacingM: 5, DirectionDeg: 0}

	uncovered, coveragePct := FindUncovered(poly, nil, p, c)
	if len(uncovered) == 0 {
		t.Errorf("FindUncovered() with no existing waypoints returned 0 uncovered samples")
	}
	if coveragePct > 1 {
		t.Errorf("coveragePct = %v with no existing waypoints, want ~0", coveragePct)
	}
}

func TestClusterGroupsNearbyPoints(t *testing.T) {
	p := Params{LineSpacingM: 10, PointSpacingM: 10}
	points := []geo.Point{
		{Lat: 0, Lng: 0},
		{Lat: 0.00002, Lng: 0.00002}, // near the first
		{Lat: 1, Lng: 1},             // far away, own cluster
	}
	clusters := Cluster(points, p)
	if len(clusters) != 2 {
		t.Fatalf("Cluster() produced %d clusters, want 2", len(clusters))
	}
}

func TestDedupRejectsCandidatesTooCloseToExisting(t *testing.T) {
	existing := []geo.Point{{Lat: 0, Lng: 0}}
	candidates := []geo.Point{
		{Lat: 0, Lng: 0.0000001}, // effectively coincident
		{Lat: 0, Lng: 0.01},      // far away
	}
	got := Dedup(candidates, existing, 5)
	if len(got) != 1 {
		t.Fatalf("Dedup() returned %d points, want 1", len(got))
	}
	if got[0].Lng < 0.005 {
		t.Errorf("Dedup() kept the near-coincident candidate instead of the distant one")
	}
}

func TestDensityGateActivatesOnlyAboveThreshold(t *testing.T) {
	// expected density = 1/(lineSpacing*pointSpacing); choose values so
	// we can cross 1.5x cleanly.
	lineSpacing, pointSpacing := 10.0, 10.0
	expected := 1 / (lineSpacing * pointSpacing)
	area := 10000.0

	below := expected * area * 1.0
	above := expected * area * 2.0

	if DensityGateActive(int(below), area, lineSpacing, pointSpacing) {
		t.Errorf("DensityGateActive() = true below threshold")
	}
	if !DensityGateActive(int(above), area, lineSpacing, pointSpacing) {
		t.Errorf("DensityGateActive() = false above threshold")
	}
}

// planner/planner_test.go
// Copyright(c) 2026 aerosweep contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package planner

import (
	"errors"
	"math"
	"testing"

	"github.com/skylinesurvey/aerosweep/geo"
)

func squarePolygon(sideDeg float64) geo.Polygon {
	return geo.Polygon{
		{Lat: 0, Lng: 0},
		{Lat: 0, Lng: sideDeg},
		{Lat: sideDeg, Lng: sideDeg},
		{Lat: sideDeg, Lng: 0},
	}
}

// lShapePolygon is a concave L: a 100m square with its top-right quadrant
// removed, forcing the snake sequencer to bridge across the notch.
func lShapePolygon() geo.Polygon {
	const s = 0.0009
	half := s / 2
	return geo.Polygon{
		{Lat: 0, Lng: 0},
		{Lat: 0, Lng: s},
		{Lat: half, Lng: s},
		{Lat: half, Lng: half},
		{Lat: s, Lng: half},
		{Lat: s, Lng: 0},
	}
}

func TestFilterCoversOriginalKeepsPointNearEdgeMidpoint(t *testing.T) {
	// A long, thin rectangle: a waypoint sitting just outside the
	// midpoint of the long top edge is far from both of that edge's
	// vertices but well within radius of the edge itself, and must
	// survive filtering.
	poly := geo.Polygon{
		{Lat: 0, Lng: 0},
		{Lat: 0, Lng: 0.01},
		{Lat: 0.0001, Lng: 0.01},
		{Lat: 0.0001, Lng: 0},
	}
	radius := 20.0 // meters
	justOutside := geo.Point{Lat: 0.0001 + 0.0001, Lng: 0.005} // above the top edge's midpoint

	kept := filterCoversOriginal([]geo.Point{justOutside}, poly, radius, nil)
	if len(kept) != 1 {
		t.Fatalf("filterCoversOriginal() dropped a waypoint within radius of an edge midpoint far from both its vertices")
	}
}

func TestPlanSingleOnSquareProducesConnectedRoute(t *testing.T) {
	poly := squarePolygon(0.0009) // ~100m square at the equator
	start := poly.Centroid()

	result, err := PlanSingle(poly, 0, start, 0, 0, 10, 10, 80, WithCache(nil))
	if err != nil {
		t.Fatalf("PlanSingle() error = %v", err)
	}
	if result.TotalLines < 3 {
		t.Errorf("TotalLines = %d, want at least 3 for a 100m square at 10m line spacing", result.TotalLines)
	}
	if len(result.Waypoints) < 6 {
		t.Fatalf("len(Waypoints) = %d, want at least 6", len(result.Waypoints))
	}
	for _, wp := range result.Waypoints {
		if !geo.PointInPolygon(wp, poly) {
			t.Errorf("waypoint %v is outside the polygon", wp)
		}
	}
	if result.TotalDistanceM <= 0 {
		t.Errorf("TotalDistanceM = %v, want > 0", result.TotalDistanceM)
	}
}

func TestPlanSingleDistanceMatchesWaypointSum(t *testing.T) {
	poly := squarePolygon(0.0009)
	start := poly.Centroid()

	result, err := PlanSingle(poly, 0, start, 0, 0, 10, 10, 80, WithCache(nil))
	if err != nil {
		t.Fatalf("PlanSingle() error = %v", err)
	}

	var manual float64
	for i := 1; i < len(result.Waypoints); i++ {
		manual += geo.DistanceM(result.Waypoints[i-1], result.Waypoints[i])
	}
	if math.Abs(manual-result.TotalDistanceM) > 1e-3 {
		t.Errorf("TotalDistanceM = %v, manually summed = %v, want within 1mm", result.TotalDistanceM, manual)
	}
}

func TestPlanSingleRejectsInvalidInput(t *testing.T) {
	poly := squarePolygon(0.0009)
	start := poly.Centroid()

	tests := []struct {
		name                                                            string
		sideOverlap, fwdOverlap, photoWidth, photoLength, flightHeight float64
	}{
		{"negative side overlap", -1, 0, 10, 10, 80},
		{"overlap over 100", 0, 200, 10, 10, 80},
		{"zero photo width", 0, 0, 0, 10, 80},
		{"zero photo length", 0, 0, 10, 0, 80},
		{"zero flight height", 0, 0, 10, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PlanSingle(poly, 0, start, tt.sideOverlap, tt.fwdOverlap, tt.photoWidth, tt.photoLength, tt.flightHeight, WithCache(nil))
			if err == nil {
				t.Fatalf("PlanSingle() error = nil, want an error")
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("PlanSingle() error = %v, want wrapping ErrInvalidInput", err)
			}
		})
	}
}

func TestPlanSingleRejectsDegeneratePolygon(t *testing.T) {
	// Three collinear points: no interior at all.
	poly := geo.Polygon{
		{Lat: 0, Lng: 0},
		{Lat: 0, Lng: 0.001},
		{Lat: 0, Lng: 0.002},
	}
	_, err := PlanSingle(poly, 0, geo.Point{Lat: 0, Lng: 0.001}, 0, 0, 10, 10, 80, WithCache(nil))
	if err == nil {
		t.Fatalf("PlanSingle() on a degenerate polygon error = nil, want an error")
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("PlanSingle() error = %v, want wrapping ErrInvalidInput", err)
	}
}

func TestPlanSingleWithExteriorStartStillProducesRoute(t *testing.T) {
	poly := squarePolygon(0.0009)
	exteriorStart := geo.Point{Lat: -0.01, Lng: -0.01}

	result, err := PlanSingle(poly, 0, exteriorStart, 0, 0, 10, 10, 80, WithCache(nil))
	if err != nil {
		t.Fatalf("PlanSingle() error = %v", err)
	}
	if len(result.Waypoints) == 0 {
		t.Fatalf("PlanSingle() with an exterior start produced no waypoints")
	}
	for _, wp := range result.Waypoints {
		if !geo.PointInPolygon(wp, poly) {
			t.Errorf("waypoint %v is outside the polygon", wp)
		}
	}
}

func TestPlanMultiBlockStaysInsideLShapedPolygon(t *testing.T) {
	poly := lShapePolygon()
	start := geo.Point{Lat: 0.00005, Lng: 0.00005}

	result, err := PlanMultiBlock(poly, 0, start, 0, 0, 10, 10, 80, 3, true, WithCache(nil))
	if err != nil {
		t.Fatalf("PlanMultiBlock() error = %v", err)
	}
	if len(result.Waypoints) == 0 {
		t.Fatalf("PlanMultiBlock() on an L-shaped polygon produced no waypoints")
	}
	for _, wp := range result.Waypoints {
		if !geo.PointInPolygon(wp, poly) {
			t.Errorf("waypoint %v is outside the L-shaped polygon", wp)
		}
	}
}

func TestPlanMultiBlockImprovesOnSingleBlockCoverage(t *testing.T) {
	poly := squarePolygon(0.0009)
	start := poly.Centroid()

	single, err := PlanSingle(poly, 0, start, 0, 0, 10, 10, 80, WithCache(nil))
	if err != nil {
		t.Fatalf("PlanSingle() error = %v", err)
	}
	multi, err := PlanMultiBlock(poly, 0, start, 0, 0, 10, 10, 80, 4, false, WithCache(nil))
	if err != nil {
		t.Fatalf("PlanMultiBlock() error = %v", err)
	}
	if len(multi.Waypoints) < len(single.Waypoints) {
		t.Errorf("PlanMultiBlock() produced fewer waypoints (%d) than PlanSingle() (%d)", len(multi.Waypoints), len(single.Waypoints))
	}
}

func TestPlanObliqueNearNadirYieldsSingleRoute(t *testing.T) {
	poly := squarePolygon(0.0009)
	p := ObliqueParams{
		Polygon:           poly,
		DirectionDeg:      0,
		Start:             poly.Centroid(),
		SideOverlapPct:    0,
		ForwardOverlapPct: 0,
		PhotoWidthM:       10,
		PhotoLengthM:      10,
		FlightHeightM:     80,
		GimbalPitchDeg:    -10,
	}
	result, err := PlanOblique(p, WithCache(nil))
	if err != nil {
		t.Fatalf("PlanOblique() error = %v", err)
	}
	if result.TotalRouteCount != 1 {
		t.Errorf("TotalRouteCount = %d, want 1 for a near-nadir pitch", result.TotalRouteCount)
	}
}

func TestPlanObliqueSteepPitchUsesExpectedDirectionSet(t *testing.T) {
	poly := squarePolygon(0.002) // larger square so the expanded-polygon sweep has room in every direction
	p := ObliqueParams{
		Polygon:           poly,
		DirectionDeg:      30,
		Start:             poly.Centroid(),
		SideOverlapPct:    0,
		ForwardOverlapPct: 0,
		PhotoWidthM:       10,
		PhotoLengthM:      10,
		FlightHeightM:     80,
		GimbalPitchDeg:    -50,
	}
	result, err := PlanOblique(p, WithCache(nil))
	if err != nil {
		t.Fatalf("PlanOblique() error = %v", err)
	}
	if result.TotalRouteCount < 1 || result.TotalRouteCount > 5 {
		t.Fatalf("TotalRouteCount = %d, want between 1 and 5", result.TotalRouteCount)
	}

	expected := map[float64]bool{}
	for _, off := range []float64{0, 72, 144, 216, 288} {
		expected[normalizeDeg(30+off)] = true
	}
	for _, route := range result.Routes {
		if !expected[route.DirectionDeg] {
			t.Errorf("route direction %v is not one of the expected {main,+72,+144,+216,+288} directions", route.DirectionDeg)
		}
	}
}

func TestPlanObliqueRejectsPositiveGimbalPitch(t *testing.T) {
	poly := squarePolygon(0.0009)
	p := ObliqueParams{
		Polygon:           poly,
		Start:             poly.Centroid(),
		PhotoWidthM:       10,
		PhotoLengthM:      10,
		FlightHeightM:     80,
		GimbalPitchDeg:    10,
	}
	_, err := PlanOblique(p, WithCache(nil))
	if err == nil {
		t.Fatalf("PlanOblique() with a positive gimbal pitch error = nil, want an error")
	}
}

func TestExpandedAreaInfoIsMonotonicInExpansionDistance(t *testing.T) {
	poly := squarePolygon(0.0009)
	shallow := ObliqueParams{
		Polygon: poly, Start: poly.Centroid(), PhotoWidthM: 10, PhotoLengthM: 10,
		FlightHeightM: 80, GimbalPitchDeg: -10, SideOverlapPct: 70, ForwardOverlapPct: 70,
	}
	steep := shallow
	steep.GimbalPitchDeg = -60

	shallowInfo, err := ExpandedAreaInfo(shallow)
	if err != nil {
		t.Fatalf("ExpandedAreaInfo() error = %v", err)
	}
	steepInfo, err := ExpandedAreaInfo(steep)
	if err != nil {
		t.Fatalf("ExpandedAreaInfo() error = %v", err)
	}
	if steepInfo.ExpansionDistanceM < shallowInfo.ExpansionDistanceM {
		t.Errorf("steep-pitch expansion = %v, want >= shallow-pitch expansion %v", steepInfo.ExpansionDistanceM, shallowInfo.ExpansionDistanceM)
	}
	if steepInfo.ExpandedAreaM2 < shallowInfo.ExpandedAreaM2 {
		t.Errorf("steep-pitch expanded area = %v, want >= shallow-pitch expanded area %v", steepInfo.ExpandedAreaM2, shallowInfo.ExpandedAreaM2)
	}
}

func TestResetCachesDoesNotPanicAndClearsStats(t *testing.T) {
	poly := squarePolygon(0.0009)
	_, _ = PlanSingle(poly, 0, poly.Centroid(), 0, 0, 10, 10, 80)
	ResetCaches()
	if avg, count := Stats(); avg != 0 || count != 0 {
		t.Errorf("Stats() after ResetCaches() = (%v, %v), want (0, 0)", avg, count)
	}
}

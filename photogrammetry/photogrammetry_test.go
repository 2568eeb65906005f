// photogrammetry/photogrammetry_test.go
// Copyright(c) 2026 aerosweep contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package photogrammetry

import (
	"math"
	"testing"
)

func TestGSDAndHeightFromGSDRoundTrip(t *testing.T) {
	gsd, err := GSD(13.2, 100, 8.8, 5472)
	if err != nil {
		t.Fatalf("GSD() error: %v", err)
	}
	height, err := HeightFromGSD(gsd, 13.2, 8.8, 5472)
	if err != nil {
		t.Fatalf("HeightFromGSD() error: %v", err)
	}
	if math.Abs(height-100) > 1e-6 {
		t.Errorf("round trip height = %v, want 100", height)
	}
}

func TestGSDRejectsNonPositiveInputs(t *testing.T) {
	tests := []struct {
		sensorWidthMM, heightM, focalLengthMM float64
		imageWidthPx                          int
	}{
		{0, 100, 8.8, 5472},
		{13.2, 0, 8.8, 5472},
		{13.2, 100, 0, 5472},
		{13.2, 100, 8.8, 0},
		{-1, 100, 8.8, 5472},
	}
	for _, tt := range tests {
		if _, err := GSD(tt.sensorWidthMM, tt.heightM, tt.focalLengthMM, tt.imageWidthPx); err == nil {
			t.Errorf("GSD(%v, %v, %v, %v) error = nil, want non-nil", tt.sensorWidthMM, tt.heightM, tt.focalLengthMM, tt.imageWidthPx)
		}
	}
}

func TestFlightHeightMatchesHeightFromGSD(t *testing.T) {
	a, err1 := FlightHeight(0.02, 8.8, 5472, 13.2)
	b, err2 := HeightFromGSD(0.02, 13.2, 8.8, 5472)
	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v, %v", err1, err2)
	}
	if a != b {
		t.Errorf("FlightHeight() = %v, want %v (same value as HeightFromGSD with reordered args)", a, b)
	}
}

func TestPhotoWidthAndLengthScaleWithHeight(t *testing.T) {
	w1, _ := PhotoWidthM(13.2, 50, 8.8)
	w2, _ := PhotoWidthM(13.2, 100, 8.8)
	if w2 <= w1 {
		t.Errorf("PhotoWidthM() did not grow with height: %v vs %v", w1, w2)
	}

	l1, _ := PhotoLengthM(8.8, 50, 8.8)
	l2, _ := PhotoLengthM(8.8, 100, 8.8)
	if l2 <= l1 {
		t.Errorf("PhotoLengthM() did not grow with height: %v vs %v", l1, l2)
	}
}

func TestRecommendedGimbalPitchBands(t *testing.T) {
	tests := []struct {
		height float64
		want   float64
	}{
		{10, -20},
		{75, -30},
		{150, -45},
		{500, -60},
	}
	for _, tt := range tests {
		if got := RecommendedGimbalPitch(tt.height, 60); got != tt.want {
			t.Errorf("RecommendedGimbalPitch(%v, _) = %v, want %v", tt.height, got, tt.want)
		}
	}
}

func TestEstimateFlightTimeAccountsForRouteChanges(t *testing.T) {
	single := RouteSummary{TotalDistanceM: 1000, TotalWaypoints: 10, TotalRouteCount: 1}
	multi := RouteSummary{TotalDistanceM: 1000, TotalWaypoints: 10, TotalRouteCount: 3}

	tSingle := EstimateFlightTime(single, 5, 1)
	tMulti := EstimateFlightTime(multi, 5, 1)
	if tMulti <= tSingle {
		t.Errorf("EstimateFlightTime() with more routes = %v, want greater than single-route %v", tMulti, tSingle)
	}
}

func TestEstimateFlightTimeZeroRoutesIsZero(t *testing.T) {
	if got := EstimateFlightTime(RouteSummary{}, 5, 1); got != 0 {
		t.Errorf("EstimateFlightTime() with zero routes = %v, want 0", got)
	}
}

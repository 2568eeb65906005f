// photogrammetry/photogrammetry.go
// Copyright(c) 2026 aerosweep contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package photogrammetry converts between ground sampling distance,
// flight height, and camera footprint dimensions. These are pure
// formulas with no planner state.
package photogrammetry

import "fmt"

// ErrNonPositive is returned by any helper when a required dimension is
// zero or negative.
type ErrNonPositive struct{ Field string }

func (e ErrNonPositive) Error() string {
	return fmt.Sprintf("photogrammetry: %s must be > 0", e.Field)
}

// GSD returns the ground sampling distance in meters/pixel, given sensor
// width (mm), flight height (m), focal length (mm), and image width (px).
func GSD(sensorWidthMM, heightM, focalLengthMM float64, imageWidthPx int) (float64, error) {
	if sensorWidthMM <= 0 || heightM <= 0 || focalLengthMM <= 0 || imageWidthPx <= 0 {
		return 0, ErrNonPositive{Field: "sensor width, height, focal length, or image width"}
	}
	return (sensorWidthMM * heightM) / (focalLengthMM * float64(imageWidthPx)), nil
}

// HeightFromGSD inverts GSD: given a target ground sampling distance (m),
// returns the flight height (m) that achieves it.
func HeightFromGSD(gsdM, sensorWidthMM, focalLengthMM float64, imageWidthPx int) (float64, error) {
	if gsdM <= 0 || sensorWidthMM <= 0 || focalLengthMM <= 0 || imageWidthPx <= 0 {
		return 0, ErrNonPositive{Field: "gsd, sensor width, focal length, or image width"}
	}
	return (gsdM * focalLengthMM * float64(imageWidthPx)) / sensorWidthMM, nil
}

// FlightHeight is an alias formula for HeightFromGSD that takes its
// arguments in the order (gsd, focal length, image width, sensor width)
// instead of HeightFromGSD's (gsd, sensor width, focal length, image
// width).
func FlightHeight(gsdM, focalLengthMM float64, imageWidthPx int, sensorWidthMM float64) (float64, error) {
	return HeightFromGSD(gsdM, sensorWidthMM, focalLengthMM, imageWidthPx)
}

// PhotoWidthM returns one photo's ground-covered width in meters.
func PhotoWidthM(sensorWidthMM, heightM, focalLengthMM float64) (float64, error) {
	if sensorWidthMM <= 0 || heightM <= 0 || focalLengthMM <= 0 {
		return 0, ErrNonPositive{Field: "sensor width, height, or focal length"}
	}
	return (sensorWidthMM * heightM) / focalLengthMM, nil
}

// PhotoLengthM returns one photo's ground-covered length in meters.
func PhotoLengthM(sensorHeightMM, heightM, focalLengthMM float64) (float64, error) {
	if sensorHeightMM <= 0 || heightM <= 0 || focalLengthMM <= 0 {
		return 0, ErrNonPositive{Field: "sensor height, height, or focal length"}
	}
	return (sensorHeightMM * heightM) / focalLengthMM, nil
}

// RecommendedGimbalPitch suggests a gimbal pitch (degrees, negative =
// nose-down) for a target flight height; cameraFOV is accepted for
// interface parity with field-collected presets but does not currently
// change the banding below.
func RecommendedGimbalPitch(targetHeightM, cameraFOVDeg float64) float64 {
	switch {
	case targetHeightM < 50:
		return -20.0
	case targetHeightM < 100:
		return -30.0
	case targetHeightM < 200:
		return -45.0
	default:
		return -60.0
	}
}

// RouteSummary is the minimal shape EstimateFlightTime needs from an
// oblique planning result: total flight distance, total waypoint count
// across all routes, and the number of distinct direction routes.
type RouteSummary struct {
	TotalDistanceM   float64
	TotalWaypoints   int
	TotalRouteCount  int
}

// EstimateFlightTime returns an estimated total mission time in minutes:
// flight time at cruiseSpeed (m/s), plus one photoInterval (s) per
// waypoint, plus a fixed 60s penalty for each change between consecutive
// direction routes (TotalRouteCount-1 changes).
func EstimateFlightTime(r RouteSummary, cruiseSpeedMPS, photoIntervalS float64) float64 {
	if r.TotalRouteCount == 0 || cruiseSpeedMPS <= 0 {
		return 0
	}
	flightTimeS := r.TotalDistanceM / cruiseSpeedMPS
	photoTimeS := float64(r.TotalWaypoints) * photoIntervalS
	routeChangeS := float64(r.TotalRouteCount-1) * 60
	return (flightTimeS + photoTimeS + routeChangeS) / 60.0
}

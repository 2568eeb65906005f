// cmd/aerosweep/main.go
// Copyright(c) 2026 aerosweep contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// aerosweep plans a single-direction survey flight path over a polygon
// read from a GeoJSON Polygon feature file and writes the result as
// GeoJSON.
// Usage: aerosweep <polygon.geojson> <direction-deg> <photo-w-m> <photo-l-m> <side-overlap-pct> <fwd-overlap-pct> <flight-height-m>
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/skylinesurvey/aerosweep/export"
	"github.com/skylinesurvey/aerosweep/geo"
	"github.com/skylinesurvey/aerosweep/planner"
)

func main() {
	if len(os.Args) < 8 {
		fmt.Fprintln(os.Stderr, "Usage: aerosweep <polygon.geojson> <direction-deg> <photo-w-m> <photo-l-m> <side-overlap-pct> <fwd-overlap-pct> <flight-height-m>")
		os.Exit(1)
	}

	poly, err := loadPolygon(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[1], err)
		os.Exit(1)
	}

	direction := parseArg(os.Args[2])
	photoW := parseArg(os.Args[3])
	photoL := parseArg(os.Args[4])
	sideOverlap := parseArg(os.Args[5])
	fwdOverlap := parseArg(os.Args[6])
	flightHeight := parseArg(os.Args[7])

	start := poly.Centroid()

	result, err := planner.PlanSingle(poly, direction, start, sideOverlap, fwdOverlap, photoW, photoL, flightHeight)
	if err != nil {
		fmt.Fprintf(os.Stderr, "plan: %v\n", err)
		os.Exit(1)
	}

	out, err := export.WritePlanResultGeoJSON(poly, result, direction)
	if err != nil {
		fmt.Fprintf(os.Stderr, "export: %v\n", err)
		os.Exit(1)
	}
	os.Stdout.Write(out)
	fmt.Println()
}

func parseArg(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: invalid number\n", s)
		os.Exit(1)
	}
	return v
}

func loadPolygon(path string) (geo.Polygon, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	f, err := geojson.UnmarshalFeature(b)
	if err != nil {
		return nil, err
	}

	poly, ok := f.Geometry.(orb.Polygon)
	if !ok || len(poly) == 0 {
		return nil, fmt.Errorf("expected a Polygon feature, got %T", f.Geometry)
	}

	outer := poly[0]
	pts := make(geo.Polygon, 0, len(outer))
	for i, pt := range outer {
		// GeoJSON rings repeat the first point as the last; drop it so
		// the in-memory polygon matches the non-repeating invariant.
		if i == len(outer)-1 && pt == outer[0] {
			continue
		}
		pts = append(pts, geo.Point{Lat: pt[1], Lng: pt[0]})
	}
	return pts, nil
}

// export/geojson.go
// Copyright(c) 2026 aerosweep contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package export translates planner results into GeoJSON, CSV, and
// summary-JSON form. None of this is interpreted by the planner itself.
package export

import (
	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/skylinesurvey/aerosweep/geo"
	"github.com/skylinesurvey/aerosweep/internal/collection"
	"github.com/skylinesurvey/aerosweep/planner"
)

func toOrbPoint(p geo.Point) orb.Point {
	return orb.Point{p.Lng, p.Lat}
}

func polygonFeature(poly geo.Polygon) *geojson.Feature {
	ring := orb.Ring(collection.MapSlice(poly, toOrbPoint))
	if len(ring) > 0 {
		ring = append(ring, ring[0])
	}
	f := geojson.NewFeature(orb.Polygon{ring})
	f.Properties = geojson.Properties{"kind": "survey_area"}
	return f
}

func routeFeature(r planner.Route) *geojson.Feature {
	ls := orb.LineString(collection.MapSlice(r.Waypoints, toOrbPoint))
	f := geojson.NewFeature(ls)
	f.Properties = geojson.Properties{
		"kind":             "route",
		"direction_deg":    r.DirectionDeg,
		"gimbal_pitch_deg": r.GimbalPitchDeg,
		"distance_m":       r.DistanceM,
		"label":            r.Label,
	}
	return f
}

// waypointFeatures emits one Point feature per waypoint. A waypoint with
// no caller-assigned Point.ID gets an opaque handle minted here, so every
// exported waypoint can be referenced later without relying on array
// position.
func waypointFeatures(r planner.Route) []*geojson.Feature {
	out := make([]*geojson.Feature, 0, len(r.Waypoints))
	for i, p := range r.Waypoints {
		id := p.ID
		if id == "" {
			id = uuid.NewString()
		}
		f := geojson.NewFeature(toOrbPoint(p))
		f.Properties = geojson.Properties{
			"kind":             "waypoint",
			"id":               id,
			"index":            i,
			"direction_deg":    r.DirectionDeg,
			"gimbal_pitch_deg": r.GimbalPitchDeg,
		}
		out = append(out, f)
	}
	return out
}

// WriteGeoJSON builds a FeatureCollection with the survey polygon, one
// LineString per route, and one Point per waypoint.
func WriteGeoJSON(poly geo.Polygon, routes []planner.Route) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	fc.Append(polygonFeature(poly))
	for _, r := range routes {
		fc.Append(routeFeature(r))
		for _, wf := range waypointFeatures(r) {
			fc.Append(wf)
		}
	}
	return fc.MarshalJSON()
}

// WritePlanResultGeoJSON is the single-direction convenience form: it
// wraps result.Waypoints as one Route labeled "primary" before delegating
// to WriteGeoJSON.
func WritePlanResultGeoJSON(poly geo.Polygon, result planner.PlanResult, directionDeg float64) ([]byte, error) {
	route := planner.Route{
		DirectionDeg: directionDeg,
		Waypoints:    result.Waypoints,
		DistanceM:    result.TotalDistanceM,
		Label:        "primary",
	}
	return WriteGeoJSON(poly, []planner.Route{route})
}

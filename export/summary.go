// export/summary.go
// Copyright(c) 2026 aerosweep contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package export

import (
	"encoding/json"

	"github.com/skylinesurvey/aerosweep/planner"
)

// RouteSummary is one route's summary row.
type RouteSummary struct {
	DirectionDeg   float64 `json:"direction_deg"`
	GimbalPitchDeg float64 `json:"gimbal_pitch_deg"`
	WaypointCount  int     `json:"waypoint_count"`
	DistanceM      float64 `json:"distance_m"`
	Label          string  `json:"label"`
}

// Summary is the top-level shape WriteSummary marshals.
type Summary struct {
	TotalRouteCount int            `json:"total_route_count"`
	TotalDistanceM  float64        `json:"total_distance_m"`
	EdgeCoveragePct float64        `json:"edge_coverage_pct,omitempty"`
	Routes          []RouteSummary `json:"routes"`
}

// WriteSummary marshals an ObliqueResult into a compact summary JSON
// document; it is also useful for a single-route PlanResult by wrapping
// it in a length-1 Route slice first.
func WriteSummary(result planner.ObliqueResult) ([]byte, error) {
	s := Summary{
		TotalRouteCount: result.TotalRouteCount,
		TotalDistanceM:  result.TotalDistanceM,
		EdgeCoveragePct: result.EdgeCoveragePct,
	}
	for _, r := range result.Routes {
		s.Routes = append(s.Routes, RouteSummary{
			DirectionDeg:   r.DirectionDeg,
			GimbalPitchDeg: r.GimbalPitchDeg,
			WaypointCount:  len(r.Waypoints),
			DistanceM:      r.DistanceM,
			Label:          r.Label,
		})
	}
	return json.MarshalIndent(s, "", "  ")
}

// WriteSingleSummary is the single-direction convenience form.
func WriteSingleSummary(result planner.PlanResult, directionDeg float64) ([]byte, error) {
	s := Summary{
		TotalRouteCount: 1,
		TotalDistanceM:  result.TotalDistanceM,
		Routes: []RouteSummary{
			{
				DirectionDeg:  directionDeg,
				WaypointCount: len(result.Waypoints),
				DistanceM:     result.TotalDistanceM,
				Label:         "primary",
			},
		},
	}
	return json.MarshalIndent(s, "", "  ")
}

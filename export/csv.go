// export/csv.go
// Copyright(c) 2026 aerosweep contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/skylinesurvey/aerosweep/planner"
)

var csvHeader = []string{"route_index", "direction_deg", "gimbal_pitch_deg", "waypoint_index", "lat", "lng"}

// WriteCSV writes one row per waypoint across all routes: route index,
// direction, pitch, waypoint index, lat, lng. No third-party CSV writer
// appears anywhere in the retrieval pack, so this uses the standard
// library's encoding/csv (see DESIGN.md).
func WriteCSV(w io.Writer, routes []planner.Route) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for ri, r := range routes {
		for wi, p := range r.Waypoints {
			row := []string{
				strconv.Itoa(ri),
				strconv.FormatFloat(r.DirectionDeg, 'f', 4, 64),
				strconv.FormatFloat(r.GimbalPitchDeg, 'f', 4, 64),
				strconv.Itoa(wi),
				strconv.FormatFloat(p.Lat, 'f', 8, 64),
				strconv.FormatFloat(p.Lng, 'f', 8, 64),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

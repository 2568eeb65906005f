// planner/cache/cache_test.go
// Copyright(c) 2026 aerosweep contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package cache

import (
	"testing"
	"time"

	"github.com/skylinesurvey/aerosweep/geo"
)

func TestDistanceMIsMemoized(t *testing.T) {
	c := New(0, 0)
	a := geo.Point{Lat: 10, Lng: 20}
	b := geo.Point{Lat: 10.001, Lng: 20.001}

	got1 := c.DistanceM(a, b)
	got2 := c.DistanceM(a, b)
	if got1 != got2 {
		t.Errorf("DistanceM() is not stable across calls: %v != %v", got1, got2)
	}
	want := geo.DistanceM(a, b)
	if got1 != want {
		t.Errorf("DistanceM() = %v, want %v", got1, want)
	}
}

func TestNilCachesBehavesAsAlwaysMiss(t *testing.T) {
	var c *Caches
	a := geo.Point{Lat: 0, Lng: 0}
	b := geo.Point{Lat: 0, Lng: 1}

	got := c.DistanceM(a, b)
	want := geo.DistanceM(a, b)
	if got != want {
		t.Errorf("nil Caches DistanceM() = %v, want %v", got, want)
	}

	poly := geo.Polygon{{Lat: -1, Lng: -1}, {Lat: -1, Lng: 1}, {Lat: 1, Lng: 1}, {Lat: 1, Lng: -1}}
	if !c.PointInPolygon(geo.Point{Lat: 0, Lng: 0}, poly, "") {
		t.Errorf("nil Caches PointInPolygon() = false, want true")
	}

	c.Reset() // must not panic
	c.RecordPlanningDuration(time.Second)
	if avg, count := c.Stats(); avg != 0 || count != 0 {
		t.Errorf("nil Caches Stats() = (%v, %v), want (0, 0)", avg, count)
	}
}

func TestPolygonIDStableForEqualPolygons(t *testing.T) {
	a := geo.Polygon{{Lat: 1, Lng: 2}, {Lat: 3, Lng: 4}, {Lat: 5, Lng: 6}}
	b := geo.Polygon{{Lat: 1, Lng: 2}, {Lat: 3, Lng: 4}, {Lat: 5, Lng: 6}}
	if PolygonID(a) != PolygonID(b) {
		t.Errorf("PolygonID() differs for structurally equal polygons")
	}

	c := geo.Polygon{{Lat: 1, Lng: 2}, {Lat: 3, Lng: 4}, {Lat: 5, Lng: 7}}
	if PolygonID(a) == PolygonID(c) {
		t.Errorf("PolygonID() collided for different polygons")
	}
}

func TestResetClearsEntries(t *testing.T) {
	c := New(0, 0)
	a := geo.Point{Lat: 10, Lng: 20}
	b := geo.Point{Lat: 10.001, Lng: 20.001}
	c.DistanceM(a, b)
	if c.distance.Len() == 0 {
		t.Fatalf("expected a cached entry before Reset")
	}
	c.Reset()
	if c.distance.Len() != 0 {
		t.Errorf("Reset() left %d entries in distance cache, want 0", c.distance.Len())
	}
}

func TestStatsAveragesPlanningDurations(t *testing.T) {
	c := New(0, 0)
	c.RecordPlanningDuration(100 * time.Millisecond)
	c.RecordPlanningDuration(300 * time.Millisecond)

	avg, count := c.Stats()
	if count != 2 {
		t.Errorf("Stats() count = %v, want 2", count)
	}
	if avg != 200*time.Millisecond {
		t.Errorf("Stats() avg = %v, want 200ms", avg)
	}

	c.ResetStats()
	if avg, count := c.Stats(); avg != 0 || count != 0 {
		t.Errorf("Stats() after ResetStats() = (%v, %v), want (0, 0)", avg, count)
	}
}

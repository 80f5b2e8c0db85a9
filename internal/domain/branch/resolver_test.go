package branch

import (
	"math"
	"testing"

	"absensi/internal/geo"
)

func site(id string, lat, lon, radius float64) Site {
	return Site{ID: id, Name: id, Latitude: lat, Longitude: lon, RadiusMeters: radius}
}

func TestResolveNearestWithinRadius(t *testing.T) {
	// Point ~45 m from the first site, ~230 m from the second.
	point := geo.Point{Latitude: -6.20040, Longitude: 106.80000}
	sites := []Site{
		site("near", -6.20000, 106.80000, 50),
		site("far", -6.20240, 106.80080, 50),
	}

	res := Resolve(point, sites)
	if res.Nearest == nil || res.Nearest.ID != "near" {
		t.Fatalf("expected nearest=near, got %+v", res.Nearest)
	}
	if !res.WithinRadius {
		t.Fatalf("expected within radius at %.1f m", res.DistanceMeters)
	}
	if res.DistanceMeters < 40 || res.DistanceMeters > 50 {
		t.Fatalf("unexpected distance %v", res.DistanceMeters)
	}
}

func TestResolveOutsideRadius(t *testing.T) {
	point := geo.Point{Latitude: -6.20200, Longitude: 106.80000}
	res := Resolve(point, []Site{site("a", -6.20000, 106.80000, 100)})
	if res.WithinRadius {
		t.Fatalf("expected outside radius at %.1f m", res.DistanceMeters)
	}
	if res.Nearest == nil || res.Nearest.ID != "a" {
		t.Fatal("nearest must still be reported for out-of-range points")
	}
}

func TestResolveTieBreaksOnInputOrder(t *testing.T) {
	point := geo.Point{Latitude: 0, Longitude: 0}
	sites := []Site{
		site("first", 0.001, 0, 100),
		site("second", -0.001, 0, 100),
	}

	for i := 0; i < 10; i++ {
		res := Resolve(point, sites)
		if res.Nearest.ID != "first" {
			t.Fatalf("tie must resolve to first-seen site, got %s", res.Nearest.ID)
		}
	}
}

func TestResolveEmptySites(t *testing.T) {
	res := Resolve(geo.Point{Latitude: 1, Longitude: 1}, nil)
	if res.Nearest != nil {
		t.Fatal("expected nil nearest for empty site list")
	}
	if res.WithinRadius {
		t.Fatal("empty site list can never be within radius")
	}
	if !math.IsInf(res.DistanceMeters, 1) {
		t.Fatalf("expected infinite distance, got %v", res.DistanceMeters)
	}
	if DisplayDistance(res.DistanceMeters) != 0 {
		t.Fatal("display distance for no-site resolution should be 0")
	}
}

func TestEffectiveRadiusDefault(t *testing.T) {
	s := site("a", 0, 0, 0)
	if s.EffectiveRadius() != DefaultRadiusMeters {
		t.Fatalf("expected default radius, got %v", s.EffectiveRadius())
	}
}

func TestDisplayDistanceFloors(t *testing.T) {
	if DisplayDistance(45.9) != 45 {
		t.Fatalf("expected floor, got %d", DisplayDistance(45.9))
	}
}

package geo

import (
	"math"
	"testing"
)

func TestDistanceIdentity(t *testing.T) {
	p := Point{Lat: 27.7, Lng: 85.3}
	if d := Distance(p, p); d != 0 {
		t.Errorf("Expected zero distance for identical points, got %f", d)
	}
}

func TestDistanceSymmetry(t *testing.T) {
	pairs := [][2]Point{
		{{Lat: 27.7, Lng: 85.3}, {Lat: 27.71, Lng: 85.31}},
		{{Lat: 18.0735, Lng: -15.9582}, {Lat: 18.0975, Lng: -15.9475}},
		{{Lat: -33.86, Lng: 151.2}, {Lat: 51.5, Lng: -0.12}},
	}

	for _, pair := range pairs {
		ab := Distance(pair[0], pair[1])
		ba := Distance(pair[1], pair[0])
		if math.Abs(ab-ba) > 1e-9 {
			t.Errorf("Distance not symmetric: %f vs %f", ab, ba)
		}
	}
}

func TestDistanceKnownValue(t *testing.T) {
	// Roughly one degree of latitude is 111 km.
	a := Point{Lat: 0, Lng: 0}
	b := Point{Lat: 1, Lng: 0}

	d := Distance(a, b)
	if d < 110 || d > 112 {
		t.Errorf("Expected ~111 km for one degree of latitude, got %f", d)
	}
}

func TestStraightLine(t *testing.T) {
	a := Point{Lat: 27.7, Lng: 85.3}
	b := Point{Lat: 27.71, Lng: 85.31}

	path := StraightLine(a, b)
	if len(path) != 2 {
		t.Fatalf("Expected a two-point path, got %d points", len(path))
	}
	if path[0] != a || path[1] != b {
		t.Errorf("Path endpoints do not match input: %v", path)
	}
}

package services

import (
	"context"
	"errors"
	"testing"

	"venueBookerAPI/internal/apperr"
	"venueBookerAPI/internal/geo"
	"venueBookerAPI/internal/types/operator"
)

func ptr(f float64) *float64 { return &f }

func located(id string, lat, lng float64) operator.Operator {
	return operator.Operator{ID: id, Name: id, Latitude: ptr(lat), Longitude: ptr(lng)}
}

type fakeRouteProvider struct {
	path  []geo.Point
	err   error
	calls int
}

func (f *fakeRouteProvider) Route(_ context.Context, _, _ geo.Point) ([]geo.Point, error) {
	f.calls++
	return f.path, f.err
}

func TestResolvePicksClosest(t *testing.T) {
	svc := NewNearestService(nil, nil)
	candidates := []operator.Operator{
		located("far", 27.71, 85.31),
		located("exact", 27.7, 85.3),
	}

	match, err := svc.Resolve(context.Background(), geo.Point{Lat: 27.7, Lng: 85.3}, candidates)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if match.Operator.ID != "exact" {
		t.Errorf("Expected the colocated operator, got %s", match.Operator.ID)
	}
	if match.DistanceKm != 0 {
		t.Errorf("Expected zero distance, got %f", match.DistanceKm)
	}
}

func TestResolveTieGoesToFirst(t *testing.T) {
	svc := NewNearestService(nil, nil)
	candidates := []operator.Operator{
		located("first", 27.71, 85.3),
		located("second", 27.71, 85.3),
	}

	match, err := svc.Resolve(context.Background(), geo.Point{Lat: 27.7, Lng: 85.3}, candidates)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if match.Operator.ID != "first" {
		t.Errorf("Equidistant candidates must resolve to the first encountered, got %s", match.Operator.ID)
	}
}

func TestResolveSkipsLocationless(t *testing.T) {
	svc := NewNearestService(nil, nil)
	candidates := []operator.Operator{
		{ID: "nowhere", Name: "nowhere"},
		located("somewhere", 28.0, 86.0),
	}

	match, err := svc.Resolve(context.Background(), geo.Point{Lat: 27.7, Lng: 85.3}, candidates)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if match.Operator.ID != "somewhere" {
		t.Errorf("Expected locationless candidate to be skipped, got %s", match.Operator.ID)
	}
}

func TestResolveNoCandidates(t *testing.T) {
	svc := NewNearestService(nil, nil)

	for _, candidates := range [][]operator.Operator{
		nil,
		{{ID: "nowhere"}},
	} {
		_, err := svc.Resolve(context.Background(), geo.Point{Lat: 27.7, Lng: 85.3}, candidates)
		if err == nil {
			t.Fatal("Expected an error for an empty candidate set")
		}
		if !apperr.IsKind(err, apperr.KindNoCandidates) {
			t.Errorf("Expected no-candidates error, got %v", err)
		}
	}
}

func TestResolveWithoutProviderUsesStraightLine(t *testing.T) {
	svc := NewNearestService(nil, nil)

	match, err := svc.Resolve(context.Background(), geo.Point{Lat: 27.7, Lng: 85.3},
		[]operator.Operator{located("op", 27.71, 85.31)})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if match.PathSource != "straight-line" {
		t.Errorf("Expected straight-line source, got %s", match.PathSource)
	}
	if len(match.Path) != 2 {
		t.Errorf("Expected a two-point path, got %d points", len(match.Path))
	}
}

func TestResolveProviderFailureFallsBack(t *testing.T) {
	provider := &fakeRouteProvider{err: errors.New("connection refused")}
	svc := NewNearestService(nil, provider)

	match, err := svc.Resolve(context.Background(), geo.Point{Lat: 27.7, Lng: 85.3},
		[]operator.Operator{located("op", 27.71, 85.31)})
	if err != nil {
		t.Fatalf("Provider failure must not surface, got %v", err)
	}
	if match.PathSource != "straight-line" {
		t.Errorf("Expected straight-line fallback, got %s", match.PathSource)
	}
	if match.Path[0] != (geo.Point{Lat: 27.7, Lng: 85.3}) {
		t.Errorf("Fallback path must start at the requester, got %v", match.Path[0])
	}
}

func TestResolveProviderEmptyPathFallsBack(t *testing.T) {
	provider := &fakeRouteProvider{path: nil}
	svc := NewNearestService(nil, provider)

	match, err := svc.Resolve(context.Background(), geo.Point{Lat: 27.7, Lng: 85.3},
		[]operator.Operator{located("op", 27.71, 85.31)})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if match.PathSource != "straight-line" {
		t.Errorf("Expected straight-line fallback for empty polyline, got %s", match.PathSource)
	}
}

func TestResolveCachesProviderPath(t *testing.T) {
	provider := &fakeRouteProvider{path: []geo.Point{
		{Lat: 27.7, Lng: 85.3},
		{Lat: 27.705, Lng: 85.305},
		{Lat: 27.71, Lng: 85.31},
	}}
	svc := NewNearestService(nil, provider)

	from := geo.Point{Lat: 27.7, Lng: 85.3}
	candidates := []operator.Operator{located("op", 27.71, 85.31)}

	for i := 0; i < 3; i++ {
		match, err := svc.Resolve(context.Background(), from, candidates)
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if match.PathSource != "provider" {
			t.Errorf("Expected provider path, got %s", match.PathSource)
		}
		if len(match.Path) != 3 {
			t.Errorf("Expected the provider polyline, got %d points", len(match.Path))
		}
	}

	if provider.calls != 1 {
		t.Errorf("Expected one provider call for repeated endpoints, got %d", provider.calls)
	}
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/karlseguin/ccache/v3"

	"venueBookerAPI/internal/apperr"
	"venueBookerAPI/internal/geo"
	"venueBookerAPI/internal/types/operator"
)

const (
	routeTimeout  = 3 * time.Second
	routeCacheTTL = 10 * time.Minute
)

// RouteProvider turns two coordinate pairs into a routed polyline. Any failure
// is recovered by the straight-line fallback, never surfaced to callers.
type RouteProvider interface {
	Route(ctx context.Context, from, to geo.Point) ([]geo.Point, error)
}

// OSRMProvider speaks the OSRM HTTP route API.
type OSRMProvider struct {
	baseURL string
	client  *http.Client
}

func NewOSRMProvider(baseURL string) *OSRMProvider {
	return &OSRMProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: routeTimeout},
	}
}

func (p *OSRMProvider) Route(ctx context.Context, from, to geo.Point) ([]geo.Point, error) {
	url := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=full&geometries=geojson",
		p.baseURL, from.Lng, from.Lat, to.Lng, to.Lat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build route request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("route request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("routing provider returned status %d", resp.StatusCode)
	}

	var body struct {
		Routes []struct {
			Geometry struct {
				Coordinates [][]float64 `json:"coordinates"`
			} `json:"geometry"`
		} `json:"routes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode route response: %w", err)
	}

	if len(body.Routes) == 0 {
		return nil, fmt.Errorf("routing provider returned no routes")
	}

	coords := body.Routes[0].Geometry.Coordinates
	path := make([]geo.Point, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			continue
		}
		// GeoJSON order is [lng, lat].
		path = append(path, geo.Point{Lat: c[1], Lng: c[0]})
	}

	return path, nil
}

type NearestMatch struct {
	Operator   operator.Operator `json:"operator"`
	DistanceKm float64           `json:"distance_km"`
	Path       []geo.Point       `json:"path"`
	PathSource string            `json:"path_source"`
}

// NearestService finds the closest camera operator to a requester and a
// travel path to them. Provider polylines are cached briefly since nearby
// requesters resolve the same endpoints.
type NearestService struct {
	db       *pgxpool.Pool
	provider RouteProvider
	routes   *ccache.Cache[[]geo.Point]
}

func NewNearestService(db *pgxpool.Pool, provider RouteProvider) *NearestService {
	return &NearestService{
		db:       db,
		provider: provider,
		routes:   ccache.New(ccache.Configure[[]geo.Point]().MaxSize(1000)),
	}
}

func (s *NearestService) FindNearest(ctx context.Context, from geo.Point) (*NearestMatch, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, owner_id, name, bio, experience_years, phone, email, latitude, longitude,
		       COALESCE(unavailable_days, '{}'), created_at
		FROM operators
		WHERE latitude IS NOT NULL AND longitude IS NOT NULL
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query operators: %w", err)
	}
	defer rows.Close()

	var candidates []operator.Operator
	for rows.Next() {
		var o operator.Operator
		if err := rows.Scan(&o.ID, &o.OwnerID, &o.Name, &o.Bio, &o.ExperienceYears, &o.Phone,
			&o.Email, &o.Latitude, &o.Longitude, &o.UnavailableDays, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan operator row: %w", err)
		}
		candidates = append(candidates, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return s.Resolve(ctx, from, candidates)
}

// Resolve picks the minimum-distance candidate (ties go to the first
// encountered, so results are deterministic for a fixed list) and attaches a
// path. An empty or all-locationless candidate set is the one condition with
// no fallback.
func (s *NearestService) Resolve(ctx context.Context, from geo.Point, candidates []operator.Operator) (*NearestMatch, error) {
	bestIdx := -1
	var bestDist float64
	var bestPoint geo.Point

	for i := range candidates {
		p, ok := candidates[i].BasePoint()
		if !ok {
			continue
		}
		d := geo.Distance(from, p)
		if bestIdx == -1 || d < bestDist {
			bestIdx = i
			bestDist = d
			bestPoint = p
		}
	}

	if bestIdx == -1 {
		return nil, apperr.NoCandidatesf("no operator with a known location is available")
	}

	path, source := s.resolvePath(ctx, from, bestPoint)

	return &NearestMatch{
		Operator:   candidates[bestIdx],
		DistanceKm: bestDist,
		Path:       path,
		PathSource: source,
	}, nil
}

// resolvePath always succeeds: provider failure, timeout, or an empty polyline
// all degrade to the two-point straight line.
func (s *NearestService) resolvePath(ctx context.Context, from, to geo.Point) ([]geo.Point, string) {
	if s.provider == nil {
		return geo.StraightLine(from, to), "straight-line"
	}

	key := fmt.Sprintf("%.5f,%.5f|%.5f,%.5f", from.Lat, from.Lng, to.Lat, to.Lng)
	if item := s.routes.Get(key); item != nil && !item.Expired() {
		return item.Value(), "provider"
	}

	ctx, cancel := context.WithTimeout(ctx, routeTimeout)
	defer cancel()

	path, err := s.provider.Route(ctx, from, to)
	if err != nil || len(path) == 0 {
		if err != nil {
			log.Printf("Routing provider unavailable, using straight line: %v", err)
		}
		return geo.StraightLine(from, to), "straight-line"
	}

	s.routes.Set(key, path, routeCacheTTL)
	return path, "provider"
}

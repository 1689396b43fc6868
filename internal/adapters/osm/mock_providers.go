package osm

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"trip-route-service/internal/domain"
	"trip-route-service/internal/ports"
)

// MockGeocodeProvider serves canned lookups for tests.
type MockGeocodeProvider struct {
	Results map[string]ports.GeocodeResult
	Calls   atomic.Int64
}

func NewMockGeocodeProvider(results map[string]ports.GeocodeResult) *MockGeocodeProvider {
	lowered := make(map[string]ports.GeocodeResult, len(results))
	for k, v := range results {
		lowered[strings.ToLower(k)] = v
	}
	return &MockGeocodeProvider{Results: lowered}
}

func (p *MockGeocodeProvider) Lookup(ctx context.Context, query string) (ports.GeocodeResult, error) {
	p.Calls.Add(1)
	r, ok := p.Results[strings.ToLower(query)]
	if !ok {
		return ports.GeocodeResult{}, fmt.Errorf("mock lookup %q: %w", query, ports.ErrProviderNoResult)
	}
	return r, nil
}

// MockNetworkProvider serves a fixed network, optionally failing the
// boundary path so tests can exercise the point-radius fallback.
type MockNetworkProvider struct {
	Network      *domain.RoadNetwork
	FailByPlace  bool
	FailByPoint  bool
	PlaceFetches atomic.Int64
	PointFetches atomic.Int64
}

func (p *MockNetworkProvider) FetchByPlace(ctx context.Context, place string) (*domain.RoadNetwork, error) {
	p.PlaceFetches.Add(1)
	if p.FailByPlace {
		return nil, fmt.Errorf("mock fetch by place %q: boundary not resolvable", place)
	}
	return p.Network, nil
}

func (p *MockNetworkProvider) FetchByPoint(ctx context.Context, center domain.Coordinates, radiusMeters int) (*domain.RoadNetwork, error) {
	p.PointFetches.Add(1)
	if p.FailByPoint {
		return nil, fmt.Errorf("mock fetch around (%f, %f): unavailable", center.Lat, center.Lng)
	}
	return p.Network, nil
}

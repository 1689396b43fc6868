package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"trip-route-service/internal/adapters/osm"
	"trip-route-service/internal/domain"
	"trip-route-service/internal/ports"
)

// memGeocodeCache is a map-backed ports.GeocodeCache for tests.
type memGeocodeCache struct {
	mu sync.Mutex
	m  map[string]domain.Coordinates
}

func newMemGeocodeCache() *memGeocodeCache {
	return &memGeocodeCache{m: map[string]domain.Coordinates{}}
}

func (c *memGeocodeCache) GetMany(ctx context.Context, names []string) (map[string]domain.Coordinates, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]domain.Coordinates)
	for _, n := range names {
		if coords, ok := c.m[n]; ok {
			out[n] = coords
		}
	}
	return out, nil
}

func (c *memGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Coordinates) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range results {
		c.m[k] = v
	}
	return nil
}

func TestResolveOverrideWinsOverProvider(t *testing.T) {
	// Provider would return a wrong-region hit; the curated override must win
	// without the provider even being consulted.
	provider := osm.NewMockGeocodeProvider(map[string]ports.GeocodeResult{
		"rumi darwaza": {
			Coords:      domain.Coordinates{Lat: 5.41, Lng: 100.31},
			DisplayName: "Lorong Rumi, George Town, Penang, Malaysia",
		},
	})
	g := NewGeocoder(provider, nil)

	got, err := g.Resolve(context.Background(), "Rumi Darwaza")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := domain.Coordinates{Lat: 26.8696, Lng: 80.9134}
	if got != want {
		t.Fatalf("Resolve = %v, want %v", got, want)
	}
	if provider.Calls.Load() != 0 {
		t.Fatalf("provider consulted %d times, want 0", provider.Calls.Load())
	}
}

func TestResolveReplacesBadDisplaySignature(t *testing.T) {
	provider := osm.NewMockGeocodeProvider(map[string]ports.GeocodeResult{
		"the residency": {
			Coords:      domain.Coordinates{Lat: 5.4199, Lng: 100.3301},
			DisplayName: "The Residency, George Town, Penang, Malaysia",
		},
	})
	g := NewGeocoder(provider, nil)

	got, err := g.Resolve(context.Background(), "The Residency")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := domain.Coordinates{Lat: 26.8605, Lng: 80.9466}
	if got != want {
		t.Fatalf("Resolve = %v, want %v", got, want)
	}
}

func TestResolveReplacesBadCoordinateSignature(t *testing.T) {
	provider := osm.NewMockGeocodeProvider(map[string]ports.GeocodeResult{
		"some landmark": {
			Coords:      domain.Coordinates{Lat: 5.4160, Lng: 100.3070},
			DisplayName: "Some Landmark",
		},
	})
	g := NewGeocoder(provider, nil)

	got, err := g.Resolve(context.Background(), "Some Landmark")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := domain.Coordinates{Lat: 26.8605, Lng: 80.9466}
	if got != want {
		t.Fatalf("Resolve = %v, want %v", got, want)
	}
}

func TestResolveFallbackTable(t *testing.T) {
	provider := osm.NewMockGeocodeProvider(nil)
	g := NewGeocoder(provider, nil)

	cases := []struct {
		name string
		want domain.Coordinates
	}{
		// Comma-split: keep the part before the comma.
		{"Akshardham Temple, Delhi", domain.Coordinates{Lat: 28.6127, Lng: 77.2773}},
		// Hyphen flattening.
		{"India-Gate", domain.Coordinates{Lat: 28.6129, Lng: 77.2295}},
		// "temple"/"park" removal.
		{"Ooty Lake Park", domain.Coordinates{Lat: 11.4125, Lng: 76.6935}},
		// Full stop-word strip as last resort.
		{"The Taj Mahal", domain.Coordinates{Lat: 27.1751, Lng: 78.0421}},
	}
	for _, c := range cases {
		got, err := g.Resolve(context.Background(), c.name)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", c.name, err)
		}
		if got != c.want {
			t.Fatalf("Resolve(%q) = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestResolveNotFound(t *testing.T) {
	g := NewGeocoder(osm.NewMockGeocodeProvider(nil), nil)

	_, err := g.Resolve(context.Background(), "Completely Unknown Spot")
	if !errors.Is(err, domain.ErrGeocodeNotFound) {
		t.Fatalf("expected ErrGeocodeNotFound, got %v", err)
	}

	_, err = g.Resolve(context.Background(), "   ")
	if !errors.Is(err, domain.ErrGeocodeNotFound) {
		t.Fatalf("expected ErrGeocodeNotFound for blank name, got %v", err)
	}
}

func TestResolveUsesCache(t *testing.T) {
	provider := osm.NewMockGeocodeProvider(map[string]ports.GeocodeResult{
		"hawa mahal": {Coords: domain.Coordinates{Lat: 26.9239, Lng: 75.8267}},
	})
	g := NewGeocoder(provider, newMemGeocodeCache())

	first, err := g.Resolve(context.Background(), "Hawa Mahal")
	if err != nil {
		t.Fatalf("first Resolve: %v", err)
	}
	second, err := g.Resolve(context.Background(), "  hawa   MAHAL ")
	if err != nil {
		t.Fatalf("second Resolve: %v", err)
	}
	if first != second {
		t.Fatalf("cached result differs: %v != %v", first, second)
	}
	if provider.Calls.Load() != 1 {
		t.Fatalf("provider consulted %d times, want 1", provider.Calls.Load())
	}
}

func TestResolvePropagatesContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := NewGeocoder(cancelledProvider{}, nil)
	_, err := g.Resolve(ctx, "Red Fort")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

type cancelledProvider struct{}

func (cancelledProvider) Lookup(ctx context.Context, query string) (ports.GeocodeResult, error) {
	return ports.GeocodeResult{}, ctx.Err()
}

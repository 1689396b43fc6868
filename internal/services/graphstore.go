package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"trip-route-service/internal/domain"
	"trip-route-service/internal/platform/obs"
	"trip-route-service/internal/ports"
)

const (
	// DefaultNetworkTTL bounds how long a cached road network is served
	// before a fresh fetch.
	DefaultNetworkTTL = 24 * time.Hour

	// fallbackRadiusMeters is the point-query radius used when a city name
	// cannot be resolved to a boundary polygon.
	fallbackRadiusMeters = 7000
)

// GraphStore loads, persists, and serves the drivable road network for a
// city. Lookups go in-process cache -> disk cache -> boundary fetch ->
// geocoded point-radius fetch. Concurrent cold requests for the same city
// share one fetch; different cities never block each other.
type GraphStore struct {
	Provider ports.NetworkProvider
	Disk     ports.NetworkCache
	Geocoder *Geocoder
	TTL      time.Duration

	mu     sync.RWMutex
	graphs map[string]*domain.RoadNetwork
	group  singleflight.Group
}

func NewGraphStore(provider ports.NetworkProvider, disk ports.NetworkCache, geocoder *Geocoder, ttl time.Duration) *GraphStore {
	if ttl <= 0 {
		ttl = DefaultNetworkTTL
	}
	return &GraphStore{
		Provider: provider,
		Disk:     disk,
		Geocoder: geocoder,
		TTL:      ttl,
		graphs:   make(map[string]*domain.RoadNetwork),
	}
}

// CityKey normalizes a city name to a cache key: lowercased, punctuation
// removed, whitespace collapsed to underscores.
func CityKey(city string) string {
	city = strings.ToLower(city)
	city = strings.NewReplacer(",", "", ".", "", "'", "").Replace(city)
	return strings.Join(strings.Fields(city), "_")
}

// GetNetwork returns the cached or freshly fetched road network for city.
// It fails with domain.ErrNetworkUnavailable only when both the boundary
// query and the point-radius fallback fail.
func (s *GraphStore) GetNetwork(ctx context.Context, city string) (_ *domain.RoadNetwork, err error) {
	defer obs.Time(ctx, "graphstore.GetNetwork")(&err)

	key := CityKey(city)
	if key == "" {
		return nil, fmt.Errorf("get network: empty city name: %w", domain.ErrNetworkUnavailable)
	}

	s.mu.RLock()
	cached, ok := s.graphs[key]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.loadOrFetch(ctx, city, key)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.RoadNetwork), nil
}

func (s *GraphStore) loadOrFetch(ctx context.Context, city, key string) (*domain.RoadNetwork, error) {
	// Re-check under the flight: a concurrent caller may have installed it
	// between our read miss and the Do call.
	s.mu.RLock()
	cached, ok := s.graphs[key]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	if s.Disk != nil {
		network, hit, err := s.Disk.Load(ctx, key, s.TTL)
		if err != nil {
			log.Printf("network cache read failed city=%s: %v", key, err)
		} else if hit {
			log.Printf("using cached network city=%s nodes=%d", key, network.NodeCount())
			s.install(key, network)
			return network, nil
		}
	}

	network, err := s.fetch(ctx, city)
	if err != nil {
		return nil, err
	}

	reduced := network.LargestComponent()
	log.Printf("fetched network city=%s nodes=%d reduced=%d", key, network.NodeCount(), reduced.NodeCount())

	if s.Disk != nil {
		if err := s.Disk.Store(ctx, key, reduced); err != nil {
			log.Printf("network cache write failed city=%s: %v", key, err)
		}
	}

	s.install(key, reduced)
	return reduced, nil
}

// fetch tries the boundary-polygon query first, then falls back to a
// fixed-radius fetch around the geocoded city point.
func (s *GraphStore) fetch(ctx context.Context, city string) (*domain.RoadNetwork, error) {
	network, placeErr := s.Provider.FetchByPlace(ctx, city)
	if placeErr == nil {
		return network, nil
	}
	log.Printf("boundary fetch failed city=%q, trying point fallback: %v", city, placeErr)

	if s.Geocoder == nil {
		return nil, fmt.Errorf("get network for %q: boundary fetch: %v: %w", city, placeErr, domain.ErrNetworkUnavailable)
	}

	point, err := s.Geocoder.Resolve(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("get network for %q: geocode fallback point: %v: %w", city, err, domain.ErrNetworkUnavailable)
	}

	network, err = s.Provider.FetchByPoint(ctx, point, fallbackRadiusMeters)
	if err != nil {
		return nil, fmt.Errorf("get network for %q: point fetch: %v: %w", city, err, domain.ErrNetworkUnavailable)
	}
	return network, nil
}

func (s *GraphStore) install(key string, network *domain.RoadNetwork) {
	s.mu.Lock()
	s.graphs[key] = network
	s.mu.Unlock()
}

// EvictStale deletes on-disk networks older than maxAge and reports the
// count. The in-process cache is left alone; it lives for the process.
func (s *GraphStore) EvictStale(ctx context.Context, maxAge time.Duration) (int, error) {
	if s.Disk == nil {
		return 0, nil
	}
	if maxAge <= 0 {
		maxAge = s.TTL
	}

	removed, err := s.Disk.Sweep(ctx, maxAge)
	if err != nil {
		return removed, fmt.Errorf("evict stale networks: %w", err)
	}
	if removed > 0 {
		log.Printf("evicted stale networks count=%d", removed)
	}
	return removed, nil
}

package ports

import (
	"context"
	"time"

	"trip-route-service/internal/domain"
)

// Port: a boundary for fetching drivable road graphs from a map-data source.
type NetworkProvider interface {
	// Fetch the drivable network inside a named boundary polygon.
	FetchByPlace(ctx context.Context, place string) (*domain.RoadNetwork, error)
	// Fetch the drivable network within radiusMeters of a point.
	FetchByPoint(ctx context.Context, center domain.Coordinates, radiusMeters int) (*domain.RoadNetwork, error)
}

// Port: persistent storage for serialized road networks keyed by city.
type NetworkCache interface {
	// Load returns (network, true, nil) when a cached entry exists and is
	// younger than maxAge.
	Load(ctx context.Context, key string, maxAge time.Duration) (*domain.RoadNetwork, bool, error)
	Store(ctx context.Context, key string, network *domain.RoadNetwork) error
	// Sweep deletes entries older than maxAge and reports how many it removed.
	Sweep(ctx context.Context, maxAge time.Duration) (int, error)
}

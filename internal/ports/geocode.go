package ports

import (
	"context"
	"errors"

	"trip-route-service/internal/domain"
)

// ErrProviderNoResult is returned by a GeocodeProvider when the external
// service answers successfully but has no candidate for the query.
var ErrProviderNoResult = errors.New("geocode provider: no result")

// GeocodeResult is the single best candidate for a free-text query.
// DisplayName is the provider's full label (used to detect known-bad hits).
type GeocodeResult struct {
	Coords      domain.Coordinates
	DisplayName string
}

// Port: a boundary for free-text geocoding lookups.
type GeocodeProvider interface {
	// Return the single best candidate for the query.
	Lookup(ctx context.Context, query string) (GeocodeResult, error)
}

// Port: a shared name -> coordinates cache. Implementations must be safe for
// concurrent use; lost updates on races are acceptable because resolution is
// deterministic per input.
type GeocodeCache interface {
	GetMany(ctx context.Context, names []string) (map[string]domain.Coordinates, error)
	PutMany(ctx context.Context, results map[string]domain.Coordinates) error
}

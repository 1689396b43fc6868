package ports

import (
	"context"

	"trip-route-service/internal/domain"
)

// Port: a boundary for retrieving curated tourist sites from a data source.
type SiteRepository interface {
	// Retrieve all seeded sites for a city, in seed order.
	ListSites(ctx context.Context, city string) ([]domain.Site, error)
}

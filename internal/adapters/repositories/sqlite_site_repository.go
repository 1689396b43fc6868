package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"trip-route-service/internal/domain"
)

// SQLite-backed implementation of the SiteRepository port.
type SqliteSiteRepository struct {
	DB *sql.DB
}

func NewSqliteSiteRepository(db *sql.DB) *SqliteSiteRepository {
	return &SqliteSiteRepository{DB: db}
}

// Retrieve all seeded sites for a city, in seed order.
func (r *SqliteSiteRepository) ListSites(ctx context.Context, city string) ([]domain.Site, error) {
	if r.DB == nil {
		return nil, errors.New("site repository: db is nil")
	}

	city = strings.ToLower(strings.TrimSpace(city))
	if city == "" {
		return nil, errors.New("site repository: city must be non-empty")
	}

	q := `
	SELECT s.name, c.name, s.category, s.description, s.lat, s.lng, s.best_time
	FROM sites s
	JOIN cities c ON c.city_id = s.city_id
	WHERE c.name = ?
	ORDER BY s.site_id;
	`

	rows, err := r.DB.QueryContext(ctx, q, city)
	if err != nil {
		return nil, fmt.Errorf("list sites: query sites for %q: %w", city, err)
	}
	defer rows.Close()

	sites := []domain.Site{}
	for rows.Next() {
		var s domain.Site
		var category, description, bestTime sql.NullString
		if err := rows.Scan(&s.Name, &s.City, &category, &description, &s.Lat, &s.Lng, &bestTime); err != nil {
			return nil, fmt.Errorf("list sites: scan rows: %w", err)
		}
		s.Category = category.String
		s.Description = description.String
		s.BestTime = domain.ParseTimeOfDay(bestTime.String)
		sites = append(sites, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sites: row iteration: %w", err)
	}

	return sites, nil
}

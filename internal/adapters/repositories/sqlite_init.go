package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Initialize the SQLite database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createCitiesQuery := `
	CREATE TABLE IF NOT EXISTS cities (
		city_id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		lat REAL,
		lng REAL
	);
	`

	createSitesQuery := `
	CREATE TABLE IF NOT EXISTS sites (
		site_id INTEGER PRIMARY KEY AUTOINCREMENT,
		city_id INTEGER NOT NULL REFERENCES cities(city_id),
		name TEXT NOT NULL,
		category TEXT,
		description TEXT,
		lat REAL NOT NULL,
		lng REAL NOT NULL,
		best_time TEXT,
		UNIQUE (city_id, name)
	);
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
        place TEXT PRIMARY KEY,
        lat REAL NOT NULL,
        lng REAL NOT NULL
    );
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_sites_city_id
    ON sites(city_id);
	`

	statements := []string{
		createCitiesQuery,
		createSitesQuery,
		createGeocodeCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type SiteSeed struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	BestTime    string  `json:"best_time"`
}

type CitySeed struct {
	City  string     `json:"city"`
	Lat   float64    `json:"lat"`
	Lng   float64    `json:"lng"`
	Sites []SiteSeed `json:"sites"`
}

// Populate the database with curated city sites from a JSON file.
// Safe to re-run: existing rows are replaced in place.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed sites: read %q: %w", jsonPath, err)
	}

	var data []CitySeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed sites: parse json: %w", err)
	}

	for i, city := range data {
		if strings.TrimSpace(city.City) == "" {
			return fmt.Errorf("seed sites: city at index %d has empty name", i)
		}
		for j, site := range city.Sites {
			if strings.TrimSpace(site.Name) == "" {
				return fmt.Errorf("seed sites: city %q site at index %d has empty name", city.City, j)
			}
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed sites: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	cityStmt, err := tx.Prepare(`
	INSERT INTO cities (name, lat, lng)
	VALUES (?, ?, ?)
	ON CONFLICT (name) DO UPDATE SET lat = excluded.lat, lng = excluded.lng;
	`)
	if err != nil {
		return fmt.Errorf("seed sites: prepare city insert: %w", err)
	}
	defer cityStmt.Close()

	siteStmt, err := tx.Prepare(`
	INSERT INTO sites (city_id, name, category, description, lat, lng, best_time)
	VALUES ((SELECT city_id FROM cities WHERE name = ?), ?, ?, ?, ?, ?, ?)
	ON CONFLICT (city_id, name) DO UPDATE SET
		category = excluded.category,
		description = excluded.description,
		lat = excluded.lat,
		lng = excluded.lng,
		best_time = excluded.best_time;
	`)
	if err != nil {
		return fmt.Errorf("seed sites: prepare site insert: %w", err)
	}
	defer siteStmt.Close()

	for _, city := range data {
		cityName := strings.ToLower(strings.TrimSpace(city.City))
		if _, err := cityStmt.Exec(cityName, city.Lat, city.Lng); err != nil {
			return fmt.Errorf("seed sites: insert city %q: %w", cityName, err)
		}

		for _, site := range city.Sites {
			if _, err := siteStmt.Exec(
				cityName,
				strings.TrimSpace(site.Name),
				site.Category,
				site.Description,
				site.Lat,
				site.Lng,
				strings.ToLower(site.BestTime),
			); err != nil {
				return fmt.Errorf("seed sites: insert site %q: %w", site.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed sites: commit tx: %w", err)
	}

	return nil
}

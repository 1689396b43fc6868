package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"

	_ "github.com/jackc/pgx/v5/stdlib"

	"trip-route-service/internal/adapters/cache"
	"trip-route-service/internal/adapters/osm"
	"trip-route-service/internal/adapters/repositories"
	"trip-route-service/internal/api"
	"trip-route-service/internal/config"
	"trip-route-service/internal/platform/db"
	"trip-route-service/internal/ports"
	"trip-route-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (SQLite, Redis, Nominatim, Overpass) behind
// ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	dbPath := config.Get("DB_PATH", "data/travel.db")
	seedPath := config.Get("SEED_PATH", "data/seeds/sites.json")
	graphDir := config.Get("GRAPH_CACHE_DIR", "data/graph_cache")
	port := config.Get("PORT", "8080")

	sqliteDB, err := openDB(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer sqliteDB.Close()

	// Initialize schema and seed curated city sites on startup for local runs.
	if err := initAndSeed(sqliteDB, seedPath); err != nil {
		log.Fatal(err)
	}

	geocodeCache, closeCache, err := chooseGeocodeCache(sqliteDB)
	if err != nil {
		log.Fatal(err)
	}
	defer closeCache()

	diskCache, err := cache.NewDiskNetworkCache(graphDir)
	if err != nil {
		log.Fatal(err)
	}

	policy := config.DefaultRetryPolicy()
	geocoder := services.NewGeocoder(osm.NewNominatimProvider(policy), geocodeCache)
	graphs := services.NewGraphStore(osm.NewOverpassProvider(policy), diskCache, geocoder, services.DefaultNetworkTTL)

	// Startup sweep drops stale on-disk networks before the first request.
	if removed, err := graphs.EvictStale(context.Background(), services.DefaultNetworkTTL); err != nil {
		log.Printf("startup network sweep failed: %v", err)
	} else {
		log.Printf("startup network sweep removed=%d", removed)
	}

	planner := services.NewPlanner(graphs, geocoder, services.NewAllocator())
	sites := repositories.NewSqliteSiteRepository(sqliteDB)
	router := api.NewRouter(planner, sites)

	// Timeouts are tuned for cold-cache planning (road network downloads).
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      300 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

// chooseGeocodeCache picks the shared-cache backend: Redis when REDIS_ADDR
// is set, Postgres when DATABASE_URL is set, the local SQLite file otherwise.
func chooseGeocodeCache(sqliteDB *sql.DB) (ports.GeocodeCache, func(), error) {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, nil, fmt.Errorf("verify redis connection to %q: %w", addr, err)
		}
		log.Printf("geocode cache backend=redis addr=%s", addr)
		return cache.NewRedisGeocodeCache(client, 0), func() { client.Close() }, nil
	}

	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		pg, err := db.Open(databaseURL)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("geocode cache backend=postgres")
		return cache.NewSQLGeocodeCache(pg), func() { pg.Close() }, nil
	}

	log.Printf("geocode cache backend=sqlite")
	return cache.NewSqliteGeocodeCache(sqliteDB), func() {}, nil
}

func openDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("openDB: open sqlite database %q: %w", dbPath, err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("openDB: verify sqlite connection to %q: %w", dbPath, err)
	}

	return db, nil
}

func initAndSeed(db *sql.DB, seedPath string) error {
	if err := repositories.InitSchema(db); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if err := repositories.SeedFromJSON(db, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}

package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"trip-route-service/internal/adapters/cache"
	"trip-route-service/internal/adapters/repositories"
	"trip-route-service/internal/config"
)

// cachetool is the offline maintenance entry point: it initializes the
// SQLite schema, seeds curated city sites, and evicts stale road-network
// files from the disk cache.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	var maxAge time.Duration
	flag.DurationVar(&maxAge, "max-age", 24*time.Hour, "evict cached networks older than this")
	flag.Parse()

	dbPath := config.Get("DB_PATH", "data/travel.db")
	seedPath := config.Get("SEED_PATH", "data/seeds/sites.json")
	graphDir := config.Get("GRAPH_CACHE_DIR", "data/graph_cache")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(db); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	log.Println("Seeding city sites...")
	if err := repositories.SeedFromJSON(db, seedPath); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Println("Seeding complete.")

	diskCache, err := cache.NewDiskNetworkCache(graphDir)
	if err != nil {
		log.Fatal(err)
	}

	removed, err := diskCache.Sweep(context.Background(), maxAge)
	if err != nil {
		log.Fatalf("network sweep failed: %v", err)
	}
	log.Printf("Network sweep complete removed=%d", removed)
}

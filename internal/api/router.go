package api

import (
	"net/http"

	"trip-route-service/internal/api/handlers"
	"trip-route-service/internal/ports"
	"trip-route-service/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(planner *services.Planner, sites ports.SiteRepository) http.Handler {
	mux := http.NewServeMux()

	itineraryHandler := &handlers.ItineraryHandler{Planner: planner, Sites: sites}
	siteHandler := &handlers.SiteHandler{Repo: sites}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/api/itineraries", itineraryHandler.Plan)
	mux.HandleFunc("GET /api/cities/{city}/sites", siteHandler.List)

	return loggingMiddleware(mux)
}

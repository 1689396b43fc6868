package handlers

import (
	"log"
	"net/http"
	"strings"

	"trip-route-service/internal/api/dto"
	"trip-route-service/internal/ports"
)

type SiteHandler struct {
	Repo ports.SiteRepository
}

// List returns the curated sites seeded for a city.
func (h *SiteHandler) List(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(r.PathValue("city"))
	if city == "" {
		writeError(w, r, http.StatusBadRequest, "city is required")
		return
	}

	sites, err := h.Repo.ListSites(r.Context(), city)
	if err != nil {
		log.Printf("list sites failed city=%q: %v", city, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.FromSites(city, sites))
}

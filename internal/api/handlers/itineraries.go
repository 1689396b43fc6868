package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"trip-route-service/internal/api/dto"
	"trip-route-service/internal/domain"
	"trip-route-service/internal/ports"
	"trip-route-service/internal/services"
)

type ItineraryHandler struct {
	Planner *services.Planner
	Sites   ports.SiteRepository
}

// Plan computes a day-by-day itinerary for the requested city and places.
// When the request names no places, the seeded site catalog for the city is
// used instead.
func (h *ItineraryHandler) Plan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.ItineraryRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	city := strings.TrimSpace(req.City)
	if city == "" {
		writeError(w, r, http.StatusBadRequest, "city is required")
		return
	}

	dayCount := req.DayCount
	if dayCount == 0 {
		dayCount = 1
	}
	if dayCount < 1 || dayCount > 14 {
		writeError(w, r, http.StatusBadRequest, "day_count must be between 1 and 14")
		return
	}

	places := make([]domain.Place, 0, len(req.Places))
	for _, p := range req.Places {
		if strings.TrimSpace(p.Name) == "" {
			writeError(w, r, http.StatusBadRequest, "every place needs a name")
			return
		}
		places = append(places, p.ToPlace())
	}

	// No explicit places: fall back to the curated site catalog.
	if len(places) == 0 {
		if h.Sites == nil {
			writeError(w, r, http.StatusBadRequest, "places are required")
			return
		}
		sites, err := h.Sites.ListSites(r.Context(), city)
		if err != nil {
			log.Printf("list sites failed city=%q: %v", city, err)
			writeError(w, r, http.StatusInternalServerError, "internal server error")
			return
		}
		if len(sites) == 0 {
			writeError(w, r, http.StatusBadRequest, "places are required (no seeded sites for this city)")
			return
		}
		for _, s := range sites {
			places = append(places, s.ToPlace())
		}
	}

	svcReq := services.PlanRequest{
		City:     city,
		Places:   places,
		DayCount: dayCount,
	}
	if req.Anchor != nil {
		anchor := req.Anchor.ToPlace()
		svcReq.Anchor = &anchor
	}

	itinerary, err := h.Planner.PlanItinerary(r.Context(), svcReq)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNetworkUnavailable):
			writeError(w, r, http.StatusServiceUnavailable, "road network unavailable for city")
		case errors.Is(err, domain.ErrNoUsablePlaces):
			writeError(w, r, http.StatusBadRequest, "none of the places could be resolved to coordinates")
		default:
			log.Printf("plan itinerary failed: %v", err)
			writeError(w, r, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, r, http.StatusOK, dto.FromItinerary(itinerary))
}

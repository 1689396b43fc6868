package dto

import (
	"github.com/twpayne/go-polyline"

	"trip-route-service/internal/domain"
)

type PlaceRequest struct {
	Name          string   `json:"name"`
	Lat           *float64 `json:"lat,omitempty"`
	Lng           *float64 `json:"lng,omitempty"`
	PreferredTime string   `json:"preferred_time,omitempty"`
}

type ItineraryRequest struct {
	City     string         `json:"city"`
	Places   []PlaceRequest `json:"places"`
	DayCount int            `json:"day_count"`
	Anchor   *PlaceRequest  `json:"anchor,omitempty"`
}

type PlaceResponse struct {
	Name          string  `json:"name"`
	Lat           float64 `json:"lat"`
	Lng           float64 `json:"lng"`
	PreferredTime string  `json:"preferred_time,omitempty"`
}

type LegResponse struct {
	From         string `json:"from"`
	To           string `json:"to"`
	UsedFallback bool   `json:"used_fallback,omitempty"`
}

type DayPlanResponse struct {
	Label        string          `json:"label"`
	Places       []PlaceResponse `json:"places"`
	Route        [][]float64     `json:"route"`
	Polyline     string          `json:"polyline,omitempty"`
	Legs         []LegResponse   `json:"legs,omitempty"`
	Instructions []string        `json:"instructions"`
}

type ItineraryResponse struct {
	City          string            `json:"city"`
	Days          []DayPlanResponse `json:"days"`
	DroppedPlaces []string          `json:"dropped_places,omitempty"`
}

type SiteResponse struct {
	Name        string  `json:"name"`
	Category    string  `json:"category,omitempty"`
	Description string  `json:"description,omitempty"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	BestTime    string  `json:"best_time,omitempty"`
}

type ListSitesResponse struct {
	City  string         `json:"city"`
	Sites []SiteResponse `json:"sites"`
}

// ToPlace maps a request place onto the domain shape. Coordinates are only
// taken when both halves are present.
func (p PlaceRequest) ToPlace() domain.Place {
	place := domain.Place{
		Name:      p.Name,
		Preferred: domain.ParseTimeOfDay(p.PreferredTime),
	}
	if p.Lat != nil && p.Lng != nil {
		place.Coords = &domain.Coordinates{Lat: *p.Lat, Lng: *p.Lng}
	}
	return place
}

// FromItinerary renders the domain itinerary, encoding each day's route both
// as raw [lat, lng] pairs and as a Google-encoded polyline string.
func FromItinerary(it *domain.Itinerary) ItineraryResponse {
	res := ItineraryResponse{
		City:          it.City,
		Days:          make([]DayPlanResponse, 0, len(it.Days)),
		DroppedPlaces: it.DroppedPlaces,
	}

	for _, day := range it.Days {
		places := make([]PlaceResponse, 0, len(day.Places))
		for _, p := range day.Places {
			pr := PlaceResponse{Name: p.Name}
			if p.Resolved() {
				pr.Lat = p.Coords.Lat
				pr.Lng = p.Coords.Lng
			}
			if p.Preferred != domain.TimeUnknown {
				pr.PreferredTime = p.Preferred.String()
			}
			places = append(places, pr)
		}

		route := make([][]float64, 0, len(day.Route))
		for _, c := range day.Route {
			route = append(route, c.ToList())
		}

		encoded := ""
		if len(route) > 0 {
			encoded = string(polyline.EncodeCoords(route))
		}

		legs := make([]LegResponse, 0, len(day.Legs))
		for _, leg := range day.Legs {
			legs = append(legs, LegResponse{
				From:         leg.FromName,
				To:           leg.ToName,
				UsedFallback: leg.UsedFallback,
			})
		}

		res.Days = append(res.Days, DayPlanResponse{
			Label:        day.Label,
			Places:       places,
			Route:        route,
			Polyline:     encoded,
			Legs:         legs,
			Instructions: day.Instructions,
		})
	}

	return res
}

// FromSites renders the seeded site list for a city.
func FromSites(city string, sites []domain.Site) ListSitesResponse {
	res := ListSitesResponse{City: city, Sites: make([]SiteResponse, 0, len(sites))}
	for _, s := range sites {
		sr := SiteResponse{
			Name:        s.Name,
			Category:    s.Category,
			Description: s.Description,
			Lat:         s.Lat,
			Lng:         s.Lng,
		}
		if s.BestTime != domain.TimeUnknown {
			sr.BestTime = s.BestTime.String()
		}
		res.Sites = append(res.Sites, sr)
	}
	return res
}

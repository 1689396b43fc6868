package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"trip-route-service/internal/domain"
	"trip-route-service/internal/platform/obs"
)

// PlanRequest carries everything needed for one itinerary computation.
// Anchor, when set, is a start/end point (typically a hotel) every day's
// route loops through.
type PlanRequest struct {
	City     string
	Places   []domain.Place
	DayCount int
	Anchor   *domain.Place
}

// Planner is the engine facade: it resolves place coordinates, partitions
// places into days, and routes each day over the city's road network.
type Planner struct {
	Graphs    *GraphStore
	Geocoder  *Geocoder
	Allocator *Allocator
}

func NewPlanner(graphs *GraphStore, geocoder *Geocoder, allocator *Allocator) *Planner {
	if allocator == nil {
		allocator = NewAllocator()
	}
	return &Planner{Graphs: graphs, Geocoder: geocoder, Allocator: allocator}
}

// PlanItinerary turns a list of named places into a day-by-day plan with
// routes and turn instructions. Unresolvable places are dropped and
// reported, failed legs degrade to direct segments; only an unavailable
// road network or zero resolvable places fail the call.
func (p *Planner) PlanItinerary(ctx context.Context, req PlanRequest) (_ *domain.Itinerary, err error) {
	defer obs.Time(ctx, "planner.PlanItinerary")(&err)

	resolved, dropped, err := p.resolvePlaces(ctx, req.Places)
	if err != nil {
		return nil, fmt.Errorf("plan itinerary: %w", err)
	}
	if len(resolved) == 0 {
		return nil, fmt.Errorf("plan itinerary for %q: %w", req.City, domain.ErrNoUsablePlaces)
	}

	var anchor *domain.Place
	if req.Anchor != nil {
		a, err := p.resolvePlace(ctx, *req.Anchor)
		switch {
		case err == nil:
			anchor = &a
		case errors.Is(err, domain.ErrGeocodeNotFound):
			log.Printf("anchor place unresolvable, planning without loop name=%q", req.Anchor.Name)
			dropped = append(dropped, req.Anchor.Name)
		default:
			return nil, fmt.Errorf("plan itinerary: resolve anchor: %w", err)
		}
	}

	network, err := p.Graphs.GetNetwork(ctx, req.City)
	if err != nil {
		return nil, fmt.Errorf("plan itinerary: %w", err)
	}

	buckets := p.Allocator.Allocate(resolved, req.DayCount)

	itinerary := &domain.Itinerary{
		City:          req.City,
		Days:          make([]domain.DayPlan, 0, len(buckets)),
		DroppedPlaces: dropped,
	}

	for i, bucket := range buckets {
		day := domain.DayPlan{
			Label:        fmt.Sprintf("Day %d", i+1),
			Places:       bucket,
			Route:        []domain.Coordinates{},
			Instructions: []string{},
		}

		waypoints, loop := dayWaypoints(bucket, anchor)
		if len(waypoints) >= 2 {
			var result RouteResult
			if loop {
				result = RouteLoop(waypoints, network)
			} else {
				result = RoutePlaces(waypoints, network)
			}
			if len(result.Polyline) > 0 {
				day.Route = result.Polyline
				day.Legs = result.Legs
				day.Instructions = SynthesizeInstructions(network, result.Legs)
			}
		}

		itinerary.Days = append(itinerary.Days, day)
	}

	return itinerary, nil
}

// dayWaypoints builds the ordered routing input for one day, wrapping the
// bucket in anchor visits when an anchor is present.
func dayWaypoints(bucket []domain.Place, anchor *domain.Place) ([]domain.Place, bool) {
	if anchor == nil || len(bucket) == 0 {
		return bucket, false
	}

	waypoints := make([]domain.Place, 0, len(bucket)+2)
	waypoints = append(waypoints, *anchor)
	waypoints = append(waypoints, bucket...)
	waypoints = append(waypoints, *anchor)
	return waypoints, true
}

// resolvePlaces fills in missing coordinates, dropping places the geocode
// cascade cannot resolve. Already-resolved coordinates are never
// overwritten.
func (p *Planner) resolvePlaces(ctx context.Context, places []domain.Place) ([]domain.Place, []string, error) {
	resolved := make([]domain.Place, 0, len(places))
	dropped := []string{}

	for _, place := range places {
		r, err := p.resolvePlace(ctx, place)
		switch {
		case err == nil:
			resolved = append(resolved, r)
		case errors.Is(err, domain.ErrGeocodeNotFound):
			log.Printf("dropping unresolvable place name=%q", place.Name)
			dropped = append(dropped, place.Name)
		default:
			return nil, nil, err
		}
	}
	return resolved, dropped, nil
}

func (p *Planner) resolvePlace(ctx context.Context, place domain.Place) (domain.Place, error) {
	if place.Resolved() {
		return place, nil
	}
	coords, err := p.Geocoder.Resolve(ctx, place.Name)
	if err != nil {
		return domain.Place{}, err
	}
	place.Coords = &coords
	return place, nil
}

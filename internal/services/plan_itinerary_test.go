package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"trip-route-service/internal/adapters/osm"
	"trip-route-service/internal/domain"
	"trip-route-service/internal/ports"
)

func testPlanner(t *testing.T, network *domain.RoadNetwork, geocodes map[string]ports.GeocodeResult) (*Planner, *osm.MockNetworkProvider) {
	t.Helper()
	provider := &osm.MockNetworkProvider{Network: network}
	geocoder := NewGeocoder(osm.NewMockGeocodeProvider(geocodes), newMemGeocodeCache())
	graphs := NewGraphStore(provider, newTestDiskCache(t), geocoder, 0)
	return NewPlanner(graphs, geocoder, fixedAllocator(1, 9)), provider
}

func TestPlanItinerary(t *testing.T) {
	planner, _ := testPlanner(t, testNetwork(), map[string]ports.GeocodeResult{
		"alpha square": {Coords: domain.Coordinates{Lat: 0.00001, Lng: 0}},
		"gamma market": {Coords: domain.Coordinates{Lat: 0, Lng: 0.00201}},
	})

	itinerary, err := planner.PlanItinerary(context.Background(), PlanRequest{
		City: "Delhi",
		Places: []domain.Place{
			{Name: "Alpha Square"},
			{Name: "Gamma Market"},
		},
		DayCount: 1,
	})
	if err != nil {
		t.Fatalf("PlanItinerary: %v", err)
	}

	if itinerary.City != "Delhi" {
		t.Fatalf("city = %q", itinerary.City)
	}
	if len(itinerary.Days) != 1 {
		t.Fatalf("expected 1 day, got %d", len(itinerary.Days))
	}
	day := itinerary.Days[0]
	if day.Label != "Day 1" {
		t.Fatalf("label = %q", day.Label)
	}
	if len(day.Places) != 2 {
		t.Fatalf("expected 2 places in the day, got %d", len(day.Places))
	}
	if len(day.Route) == 0 {
		t.Fatal("expected a routed polyline")
	}
	if len(day.Instructions) == 0 {
		t.Fatal("expected turn instructions")
	}
	if len(day.Legs) != 1 || day.Legs[0].UsedFallback {
		t.Fatalf("legs = %+v", day.Legs)
	}
	if !strings.HasPrefix(day.Instructions[0], "Start at ") {
		t.Fatalf("first instruction = %q", day.Instructions[0])
	}
	last := day.Instructions[len(day.Instructions)-1]
	if !strings.HasPrefix(last, "Arrive at ") {
		t.Fatalf("last instruction = %q", last)
	}
	if len(itinerary.DroppedPlaces) != 0 {
		t.Fatalf("unexpected drops: %v", itinerary.DroppedPlaces)
	}
}

func TestPlanItineraryDropsUnresolvablePlaces(t *testing.T) {
	planner, _ := testPlanner(t, testNetwork(), map[string]ports.GeocodeResult{
		"alpha square": {Coords: domain.Coordinates{Lat: 0.00001, Lng: 0}},
	})

	itinerary, err := planner.PlanItinerary(context.Background(), PlanRequest{
		City: "Delhi",
		Places: []domain.Place{
			{Name: "Alpha Square"},
			{Name: "No Such Landmark"},
		},
		DayCount: 1,
	})
	if err != nil {
		t.Fatalf("PlanItinerary: %v", err)
	}
	if len(itinerary.DroppedPlaces) != 1 || itinerary.DroppedPlaces[0] != "No Such Landmark" {
		t.Fatalf("dropped = %v", itinerary.DroppedPlaces)
	}
	if len(itinerary.Days[0].Places) != 1 {
		t.Fatalf("expected 1 usable place, got %d", len(itinerary.Days[0].Places))
	}
	// A single place yields no route but the day still exists.
	if len(itinerary.Days[0].Route) != 0 {
		t.Fatalf("unexpected route for single-place day: %v", itinerary.Days[0].Route)
	}
}

func TestPlanItineraryNoUsablePlaces(t *testing.T) {
	planner, _ := testPlanner(t, testNetwork(), nil)

	_, err := planner.PlanItinerary(context.Background(), PlanRequest{
		City:     "Delhi",
		Places:   []domain.Place{{Name: "No Such Landmark"}},
		DayCount: 1,
	})
	if !errors.Is(err, domain.ErrNoUsablePlaces) {
		t.Fatalf("expected ErrNoUsablePlaces, got %v", err)
	}
}

func TestPlanItineraryNetworkUnavailable(t *testing.T) {
	provider := &osm.MockNetworkProvider{FailByPlace: true, FailByPoint: true}
	geocoder := NewGeocoder(osm.NewMockGeocodeProvider(map[string]ports.GeocodeResult{
		"ghost city":   {Coords: domain.Coordinates{Lat: 1, Lng: 1}},
		"alpha square": {Coords: domain.Coordinates{Lat: 0.00001, Lng: 0}},
	}), nil)
	graphs := NewGraphStore(provider, newTestDiskCache(t), geocoder, 0)
	planner := NewPlanner(graphs, geocoder, fixedAllocator(1, 9))

	_, err := planner.PlanItinerary(context.Background(), PlanRequest{
		City:     "Ghost City",
		Places:   []domain.Place{{Name: "Alpha Square"}},
		DayCount: 1,
	})
	if !errors.Is(err, domain.ErrNetworkUnavailable) {
		t.Fatalf("expected ErrNetworkUnavailable, got %v", err)
	}
}

func TestPlanItineraryAnchorLoop(t *testing.T) {
	planner, _ := testPlanner(t, testNetwork(), map[string]ports.GeocodeResult{
		"grand hotel":  {Coords: domain.Coordinates{Lat: 0.00101, Lng: 0.001}},
		"alpha square": {Coords: domain.Coordinates{Lat: 0.00001, Lng: 0}},
		"gamma market": {Coords: domain.Coordinates{Lat: 0, Lng: 0.00201}},
	})

	itinerary, err := planner.PlanItinerary(context.Background(), PlanRequest{
		City: "Delhi",
		Places: []domain.Place{
			{Name: "Alpha Square"},
			{Name: "Gamma Market"},
		},
		DayCount: 1,
		Anchor:   &domain.Place{Name: "Grand Hotel"},
	})
	if err != nil {
		t.Fatalf("PlanItinerary: %v", err)
	}

	day := itinerary.Days[0]
	if len(day.Route) < 2 {
		t.Fatalf("expected a loop route, got %v", day.Route)
	}
	// The loop starts and ends at the anchor's nearest node.
	if day.Route[0] != day.Route[len(day.Route)-1] {
		t.Fatalf("loop not closed: %v ... %v", day.Route[0], day.Route[len(day.Route)-1])
	}
	if day.Instructions[0] != "Start at Grand Hotel" {
		t.Fatalf("first instruction = %q", day.Instructions[0])
	}
	last := day.Instructions[len(day.Instructions)-1]
	if last != "Arrive at Grand Hotel" {
		t.Fatalf("last instruction = %q", last)
	}
}

func TestPlanItineraryUnresolvableAnchorDropsLoop(t *testing.T) {
	planner, _ := testPlanner(t, testNetwork(), map[string]ports.GeocodeResult{
		"alpha square": {Coords: domain.Coordinates{Lat: 0.00001, Lng: 0}},
		"gamma market": {Coords: domain.Coordinates{Lat: 0, Lng: 0.00201}},
	})

	itinerary, err := planner.PlanItinerary(context.Background(), PlanRequest{
		City: "Delhi",
		Places: []domain.Place{
			{Name: "Alpha Square"},
			{Name: "Gamma Market"},
		},
		DayCount: 1,
		Anchor:   &domain.Place{Name: "No Such Hotel"},
	})
	if err != nil {
		t.Fatalf("PlanItinerary: %v", err)
	}
	if len(itinerary.DroppedPlaces) != 1 || itinerary.DroppedPlaces[0] != "No Such Hotel" {
		t.Fatalf("dropped = %v", itinerary.DroppedPlaces)
	}
	if itinerary.Days[0].Instructions[0] != "Start at Alpha Square" {
		t.Fatalf("expected plan without loop, first instruction = %q", itinerary.Days[0].Instructions[0])
	}
}

func TestPlanItinerarySplitsDays(t *testing.T) {
	geocodes := map[string]ports.GeocodeResult{}
	places := make([]domain.Place, 0, 7)
	for i := 0; i < 7; i++ {
		name := "spot " + string(rune('a'+i))
		geocodes[name] = ports.GeocodeResult{Coords: domain.Coordinates{Lat: float64(i) * 0.0001, Lng: 0}}
		places = append(places, domain.Place{Name: name})
	}
	planner, _ := testPlanner(t, testNetwork(), geocodes)

	itinerary, err := planner.PlanItinerary(context.Background(), PlanRequest{
		City:     "Delhi",
		Places:   places,
		DayCount: 3,
	})
	if err != nil {
		t.Fatalf("PlanItinerary: %v", err)
	}
	if len(itinerary.Days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(itinerary.Days))
	}
	sizes := []int{len(itinerary.Days[0].Places), len(itinerary.Days[1].Places), len(itinerary.Days[2].Places)}
	if sizes[0] != 3 || sizes[1] != 2 || sizes[2] != 2 {
		t.Fatalf("day sizes = %v, want [3 2 2]", sizes)
	}
}

package osm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"trip-route-service/internal/config"
	"trip-route-service/internal/domain"
	"trip-route-service/internal/platform/obs"
)

// Highway classes considered drivable. Mirrors the usual "drive" network
// filter for OSM extracts.
const drivableHighways = "motorway|motorway_link|trunk|trunk_link|primary|primary_link|" +
	"secondary|secondary_link|tertiary|tertiary_link|unclassified|residential|living_street"

// OverpassProvider implements NetworkProvider against the Overpass API.
// It fetches drivable ways either inside a named administrative boundary or
// within a radius of a point, and assembles them into a RoadNetwork.
type OverpassProvider struct {
	client
	baseURL string
}

func NewOverpassProvider(policy config.RetryPolicy) *OverpassProvider {
	return &OverpassProvider{
		// Graph downloads are large; the timeout is deliberately generous.
		client:  newClient(3*time.Minute, policy),
		baseURL: "https://overpass-api.de/api/interpreter",
	}
}

type overpassElement struct {
	Type  string            `json:"type"`
	ID    int64             `json:"id"`
	Lat   float64           `json:"lat"`
	Lon   float64           `json:"lon"`
	Nodes []int64           `json:"nodes"`
	Tags  map[string]string `json:"tags"`
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

func (p *OverpassProvider) FetchByPlace(ctx context.Context, place string) (_ *domain.RoadNetwork, err error) {
	defer obs.Time(ctx, "overpass.FetchByPlace")(&err)

	query := fmt.Sprintf(`[out:json][timeout:180];
area[name=%q][boundary=administrative]->.a;
way(area.a)[highway~"^(%s)$"];
(._;>;);
out body;`, place, drivableHighways)

	network, err := p.fetch(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("overpass fetch by place %q: %w", place, err)
	}
	return network, nil
}

func (p *OverpassProvider) FetchByPoint(ctx context.Context, center domain.Coordinates, radiusMeters int) (_ *domain.RoadNetwork, err error) {
	defer obs.Time(ctx, "overpass.FetchByPoint")(&err)

	query := fmt.Sprintf(`[out:json][timeout:180];
way(around:%d,%f,%f)[highway~"^(%s)$"];
(._;>;);
out body;`, radiusMeters, center.Lat, center.Lng, drivableHighways)

	network, err := p.fetch(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("overpass fetch around (%f, %f): %w", center.Lat, center.Lng, err)
	}
	return network, nil
}

func (p *OverpassProvider) fetch(ctx context.Context, query string) (*domain.RoadNetwork, error) {
	form := url.Values{"data": {query}}

	resp, err := p.doWithRetry(ctx, func() (*http.Request, error) {
		return newRequest(ctx, http.MethodPost, p.baseURL, strings.NewReader(form.Encode()))
	})
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	network, err := buildNetwork(decoded.Elements)
	if err != nil {
		return nil, err
	}
	return network, nil
}

// buildNetwork assembles node and way elements into a directed graph.
// A two-way road contributes an edge in each direction; oneway tags restrict
// travel to the tagged direction.
func buildNetwork(elements []overpassElement) (*domain.RoadNetwork, error) {
	network := domain.NewRoadNetwork()

	for _, el := range elements {
		if el.Type == "node" {
			network.AddNode(domain.Node{ID: el.ID, Lat: el.Lat, Lng: el.Lon})
		}
	}

	ways := 0
	for _, el := range elements {
		if el.Type != "way" || len(el.Nodes) < 2 {
			continue
		}
		ways++
		name := roadNameFromTags(el.Tags)
		oneway := el.Tags["oneway"]

		for i := 0; i < len(el.Nodes)-1; i++ {
			from, okFrom := network.Nodes[el.Nodes[i]]
			to, okTo := network.Nodes[el.Nodes[i+1]]
			if !okFrom || !okTo {
				continue
			}
			length := domain.HaversineMeters(from.Coords(), to.Coords())

			switch oneway {
			case "yes", "true", "1":
				network.AddEdge(domain.Edge{From: from.ID, To: to.ID, LengthMeters: length, Name: name})
			case "-1":
				network.AddEdge(domain.Edge{From: to.ID, To: from.ID, LengthMeters: length, Name: name})
			default:
				network.AddEdge(domain.Edge{From: from.ID, To: to.ID, LengthMeters: length, Name: name})
				network.AddEdge(domain.Edge{From: to.ID, To: from.ID, LengthMeters: length, Name: name})
			}
		}
	}

	if ways == 0 {
		return nil, fmt.Errorf("no drivable ways in response")
	}
	return network, nil
}

// roadNameFromTags keeps the single-vs-multiple name distinction: OSM packs
// alternative names into one tag separated by semicolons.
func roadNameFromTags(tags map[string]string) domain.RoadName {
	raw, ok := tags["name"]
	if !ok {
		return domain.RoadName{}
	}
	if strings.Contains(raw, ";") {
		return domain.MultiRoadName(strings.Split(raw, ";"))
	}
	return domain.SingleRoadName(raw)
}

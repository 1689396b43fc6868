package osm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"trip-route-service/internal/domain"
)

const overpassSample = `{
  "elements": [
    {"type": "node", "id": 1, "lat": 28.6000, "lon": 77.2000},
    {"type": "node", "id": 2, "lat": 28.6010, "lon": 77.2000},
    {"type": "node", "id": 3, "lat": 28.6020, "lon": 77.2000},
    {"type": "way", "id": 10, "nodes": [1, 2], "tags": {"highway": "primary", "name": "Ring Road"}},
    {"type": "way", "id": 11, "nodes": [2, 3], "tags": {"highway": "residential", "name": "Ring Road", "oneway": "yes"}}
  ]
}`

func testOverpass(t *testing.T, handler http.HandlerFunc) *OverpassProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p := NewOverpassProvider(fastRetryPolicy())
	p.baseURL = srv.URL
	return p
}

func TestOverpassFetchByPlace(t *testing.T) {
	p := testOverpass(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		query := r.PostFormValue("data")
		if !strings.Contains(query, `area[name="Delhi"][boundary=administrative]`) {
			t.Errorf("query missing boundary clause: %s", query)
		}
		w.Write([]byte(overpassSample))
	})

	network, err := p.FetchByPlace(context.Background(), "Delhi")
	if err != nil {
		t.Fatalf("FetchByPlace: %v", err)
	}
	if network.NodeCount() != 3 {
		t.Fatalf("node count = %d, want 3", network.NodeCount())
	}
	// Two-way segment contributes both directions, the oneway only forward.
	if network.EdgeCount() != 3 {
		t.Fatalf("edge count = %d, want 3", network.EdgeCount())
	}
	if _, ok := network.EdgeBetween(2, 3); !ok {
		t.Fatal("oneway forward edge missing")
	}
	if _, ok := network.EdgeBetween(3, 2); ok {
		t.Fatal("oneway reverse edge must not exist")
	}
	edge, _ := network.EdgeBetween(1, 2)
	if edge.Name.Display() != "Ring Road" {
		t.Fatalf("road name = %q", edge.Name.Display())
	}
	// Nodes 1 and 2 are about 111 m apart.
	if edge.LengthMeters < 100 || edge.LengthMeters > 125 {
		t.Fatalf("edge length = %.1f m", edge.LengthMeters)
	}
}

func TestOverpassFetchByPoint(t *testing.T) {
	p := testOverpass(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		query := r.PostFormValue("data")
		if !strings.Contains(query, "around:7000,28.6") {
			t.Errorf("query missing around clause: %s", query)
		}
		w.Write([]byte(overpassSample))
	})

	network, err := p.FetchByPoint(context.Background(), domain.Coordinates{Lat: 28.6139, Lng: 77.2090}, 7000)
	if err != nil {
		t.Fatalf("FetchByPoint: %v", err)
	}
	if network.NodeCount() != 3 {
		t.Fatalf("node count = %d", network.NodeCount())
	}
}

func TestOverpassEmptyResponseIsError(t *testing.T) {
	p := testOverpass(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"elements": []}`))
	})

	if _, err := p.FetchByPlace(context.Background(), "Atlantis"); err == nil {
		t.Fatal("expected error for response without ways")
	}
}

func TestBuildNetworkReverseOneway(t *testing.T) {
	elements := []overpassElement{
		{Type: "node", ID: 1, Lat: 0, Lon: 0},
		{Type: "node", ID: 2, Lat: 0, Lon: 0.001},
		{Type: "way", ID: 10, Nodes: []int64{1, 2}, Tags: map[string]string{"oneway": "-1"}},
	}

	network, err := buildNetwork(elements)
	if err != nil {
		t.Fatalf("buildNetwork: %v", err)
	}
	if _, ok := network.EdgeBetween(2, 1); !ok {
		t.Fatal("reverse oneway edge missing")
	}
	if _, ok := network.EdgeBetween(1, 2); ok {
		t.Fatal("forward edge must not exist for oneway=-1")
	}
}

func TestRoadNameFromTags(t *testing.T) {
	if name := roadNameFromTags(map[string]string{"name": "MG Road"}); name.Display() != "MG Road" {
		t.Fatalf("single name = %q", name.Display())
	}
	multi := roadNameFromTags(map[string]string{"name": "NH 48;Jaipur Road"})
	if multi.Display() != "NH 48, Jaipur Road" {
		t.Fatalf("multi name = %q", multi.Display())
	}
	if roadNameFromTags(map[string]string{}).Named() {
		t.Fatal("missing tag must be unnamed")
	}
}

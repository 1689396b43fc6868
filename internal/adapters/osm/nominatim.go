package osm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"trip-route-service/internal/config"
	"trip-route-service/internal/domain"
	"trip-route-service/internal/platform/obs"
	"trip-route-service/internal/ports"
)

// NominatimProvider implements GeocodeProvider against the public Nominatim
// search endpoint. Requests are single-best-result lookups with a bounded
// timeout and retry/backoff. Safe for concurrent use.
type NominatimProvider struct {
	client
	baseURL string
}

func NewNominatimProvider(policy config.RetryPolicy) *NominatimProvider {
	return &NominatimProvider{
		client:  newClient(10*time.Second, policy),
		baseURL: "https://nominatim.openstreetmap.org",
	}
}

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func (p *NominatimProvider) Lookup(ctx context.Context, query string) (_ ports.GeocodeResult, err error) {
	defer obs.Time(ctx, "nominatim.Lookup")(&err)

	endpoint := p.baseURL + "/search"

	resp, err := p.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("q", query)
		q.Set("format", "json")
		q.Set("limit", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return ports.GeocodeResult{}, fmt.Errorf("nominatim lookup %q: %w", query, err)
	}
	defer resp.Body.Close()

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return ports.GeocodeResult{}, fmt.Errorf("nominatim lookup %q: decode response: %w", query, err)
	}

	if len(results) == 0 {
		return ports.GeocodeResult{}, fmt.Errorf("nominatim lookup %q: %w", query, ports.ErrProviderNoResult)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return ports.GeocodeResult{}, fmt.Errorf("nominatim lookup %q: invalid latitude %q: %w", query, results[0].Lat, err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return ports.GeocodeResult{}, fmt.Errorf("nominatim lookup %q: invalid longitude %q: %w", query, results[0].Lon, err)
	}

	return ports.GeocodeResult{
		Coords:      domain.Coordinates{Lat: lat, Lng: lng},
		DisplayName: results[0].DisplayName,
	}, nil
}

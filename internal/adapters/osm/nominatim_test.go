package osm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"trip-route-service/internal/config"
	"trip-route-service/internal/ports"
)

func fastRetryPolicy() config.RetryPolicy {
	return config.RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, BackoffFactor: 2}
}

func testNominatim(t *testing.T, handler http.HandlerFunc) *NominatimProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p := NewNominatimProvider(fastRetryPolicy())
	p.baseURL = srv.URL
	return p
}

func TestNominatimLookup(t *testing.T) {
	p := testNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "red fort" {
			t.Errorf("q = %q", got)
		}
		if got := r.URL.Query().Get("limit"); got != "1" {
			t.Errorf("limit = %q", got)
		}
		if got := r.Header.Get("User-Agent"); got != userAgent {
			t.Errorf("user agent = %q", got)
		}
		w.Write([]byte(`[{"lat": "28.6562", "lon": "77.2410", "display_name": "Red Fort, Delhi, India"}]`))
	})

	result, err := p.Lookup(context.Background(), "red fort")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if result.Coords.Lat != 28.6562 || result.Coords.Lng != 77.2410 {
		t.Fatalf("coords = %v", result.Coords)
	}
	if result.DisplayName != "Red Fort, Delhi, India" {
		t.Fatalf("display name = %q", result.DisplayName)
	}
}

func TestNominatimLookupNoResult(t *testing.T) {
	p := testNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	_, err := p.Lookup(context.Background(), "nowhere at all")
	if !errors.Is(err, ports.ErrProviderNoResult) {
		t.Fatalf("expected ErrProviderNoResult, got %v", err)
	}
}

func TestNominatimLookupRetriesServerErrors(t *testing.T) {
	var calls atomic.Int64
	p := testNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[{"lat": "26.9124", "lon": "75.7873", "display_name": "Jaipur"}]`))
	})

	result, err := p.Lookup(context.Background(), "jaipur")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("server called %d times, want 3", calls.Load())
	}
	if result.Coords.Lat != 26.9124 {
		t.Fatalf("coords = %v", result.Coords)
	}
}

func TestNominatimLookupGivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int64
	p := testNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := p.Lookup(context.Background(), "jaipur")
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls.Load() != 3 {
		t.Fatalf("server called %d times, want 3", calls.Load())
	}
}

func TestNominatimLookupDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int64
	p := testNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := p.Lookup(context.Background(), "jaipur")
	if err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("server called %d times, want 1", calls.Load())
	}
}

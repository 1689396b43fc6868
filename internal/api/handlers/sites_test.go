package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"trip-route-service/internal/api/dto"
	"trip-route-service/internal/domain"
)

func TestListSites(t *testing.T) {
	h := &SiteHandler{Repo: &stubSiteRepo{sites: map[string][]domain.Site{
		"jaipur": {
			{Name: "Amber Fort", City: "jaipur", Category: "fort", Lat: 26.9855, Lng: 75.8513, BestTime: domain.TimeMorning},
		},
	}}}

	req := httptest.NewRequest(http.MethodGet, "/api/cities/jaipur/sites", nil)
	req.SetPathValue("city", "jaipur")
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var res dto.ListSitesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.City != "jaipur" || len(res.Sites) != 1 {
		t.Fatalf("response = %+v", res)
	}
	site := res.Sites[0]
	if site.Name != "Amber Fort" || site.BestTime != "morning" {
		t.Fatalf("site = %+v", site)
	}
}

func TestListSitesMissingCity(t *testing.T) {
	h := &SiteHandler{Repo: &stubSiteRepo{}}

	req := httptest.NewRequest(http.MethodGet, "/api/cities//sites", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

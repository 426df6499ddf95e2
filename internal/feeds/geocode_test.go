package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestReverseGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"timezone_id": "America/Argentina/Buenos_Aires", "country_code": "AR"}`))
	}))
	defer srv.Close()

	c := NewClient(WithGeocodeURL(srv.URL))
	loc, err := c.ReverseGeocode(context.Background(), -34.6, -58.4)
	if err != nil {
		t.Fatalf("ReverseGeocode: %v", err)
	}

	// Final path segment, underscores replaced.
	if loc.Place != "Buenos Aires" {
		t.Errorf("place = %q, want %q", loc.Place, "Buenos Aires")
	}
	if loc.CountryCode != "AR" {
		t.Errorf("country = %q, want AR", loc.CountryCode)
	}
}

func TestReverseGeocodeNoTimezone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(WithGeocodeURL(srv.URL))
	loc, err := c.ReverseGeocode(context.Background(), 0, -160)
	if err != nil {
		t.Fatalf("ReverseGeocode: %v", err)
	}
	if loc.Place != "Ocean" {
		t.Errorf("place = %q, want Ocean", loc.Place)
	}
}

func TestCoordinateLabel(t *testing.T) {
	tests := []struct {
		lat, lon float64
		want     string
	}{
		{-4.46, -79.97, "4.5°S 80.0°W"},
		{51.5, 0.1, "51.5°N 0.1°E"},
		{0, 0, "0.0°N 0.0°E"},
	}

	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			got := CoordinateLabel(tc.lat, tc.lon)
			if got != tc.want {
				t.Errorf("CoordinateLabel(%v, %v) = %q, want %q", tc.lat, tc.lon, got, tc.want)
			}
		})
	}
}

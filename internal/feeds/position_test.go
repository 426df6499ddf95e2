package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchPositionPrimary(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"latitude": -4.46,
			"longitude": -79.97,
			"altitude": 416,
			"velocity": 27591,
			"visibility": "daylight",
			"footprint": 4532.2,
			"timestamp": 1700000000
		}`))
	}))
	defer primary.Close()

	c := NewClient(WithPositionURL(primary.URL))
	pos, err := c.FetchPosition(context.Background())
	if err != nil {
		t.Fatalf("FetchPosition: %v", err)
	}

	if pos.Latitude != -4.46 || pos.Longitude != -79.97 {
		t.Errorf("position = (%v, %v), want (-4.46, -79.97)", pos.Latitude, pos.Longitude)
	}
	if pos.AltitudeKm != 416 {
		t.Errorf("altitude = %v, want 416", pos.AltitudeKm)
	}
	if pos.VelocityKmh != 27591 {
		t.Errorf("velocity = %v, want 27591", pos.VelocityKmh)
	}
	if pos.Visibility != "daylight" {
		t.Errorf("visibility = %q, want daylight", pos.Visibility)
	}
	if !pos.HasExtras {
		t.Error("primary position should have extras")
	}
	if pos.Source != "wheretheiss" {
		t.Errorf("source = %q, want wheretheiss", pos.Source)
	}
}

func TestFetchPositionFallback(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer primary.Close()

	// String-typed coordinates per the fallback schema.
	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"message": "success",
			"timestamp": 1700000100,
			"iss_position": {"latitude": "10.0", "longitude": "20.0"}
		}`))
	}))
	defer fallback.Close()

	c := NewClient(WithPositionURL(primary.URL), WithFallbackURL(fallback.URL))
	pos, err := c.FetchPosition(context.Background())
	if err != nil {
		t.Fatalf("FetchPosition: %v", err)
	}

	if pos.Latitude != 10.0 || pos.Longitude != 20.0 {
		t.Errorf("position = (%v, %v), want (10.0, 20.0)", pos.Latitude, pos.Longitude)
	}
	if pos.HasExtras {
		t.Error("fallback position should not claim extras")
	}
	if pos.Source != "open-notify" {
		t.Errorf("source = %q, want open-notify", pos.Source)
	}
}

func TestFetchPositionBothFail(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer down.Close()

	c := NewClient(WithPositionURL(down.URL), WithFallbackURL(down.URL))
	if _, err := c.FetchPosition(context.Background()); err == nil {
		t.Fatal("expected error when both feeds fail")
	}
}

func TestFetchPositionFallbackBadMessage(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer down.Close()

	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message": "failure"}`))
	}))
	defer fallback.Close()

	c := NewClient(WithPositionURL(down.URL), WithFallbackURL(fallback.URL))
	if _, err := c.FetchPosition(context.Background()); err == nil {
		t.Fatal("expected error for non-success fallback envelope")
	}
}

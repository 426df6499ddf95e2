package missions

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"roman numerals", "Artemis II", "artemis-ii"},
		{"already slug", "artemis-iii", "artemis-iii"},
		{"punctuation collapsed", "CST-100 (Starliner)", "cst-100-starliner"},
		{"surrounding whitespace", "  Crew Dragon  ", "crew-dragon"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.in); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSplitLaunchName(t *testing.T) {
	rocket, mission := splitLaunchName("SLS | Artemis II")
	if rocket != "SLS" || mission != "Artemis II" {
		t.Errorf("splitLaunchName = (%q, %q), want (SLS, Artemis II)", rocket, mission)
	}

	rocket, mission = splitLaunchName("Artemis II")
	if rocket != "" || mission != "Artemis II" {
		t.Errorf("splitLaunchName without separator = (%q, %q)", rocket, mission)
	}
}

const catalogPayload = `{
  "results": [
    {
      "name": "SLS | Artemis II",
      "net": "2026-04-01T12:00:00Z",
      "status": {"name": "Go for Launch"},
      "pad": {"location": {"name": "Kennedy Space Center, FL, USA"}},
      "rocket": {"configuration": {"name": "SLS Block 1"}}
    },
    {
      "name": "SLS | Artemis III",
      "net": "2027-09-01T00:00:00Z",
      "status": {"name": "TBD"},
      "pad": {"location": {"name": "Kennedy Space Center, FL, USA"}},
      "rocket": {"configuration": {"name": "SLS Block 1"}}
    }
  ]
}`

func TestFetchUpcoming(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(catalogPayload))
	}))
	defer srv.Close()

	c := NewClient(WithURL(srv.URL))
	got, err := c.FetchUpcoming(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("mission count = %d, want 2", len(got))
	}

	first := got[0]
	if first.Slug != "artemis-ii" || first.Name != "Artemis II" || first.Rocket != "SLS" {
		t.Errorf("first mission = %+v", first)
	}
	want := time.Date(2026, time.April, 1, 12, 0, 0, 0, time.UTC)
	if !first.LaunchDate.Equal(want) {
		t.Errorf("launch date = %v, want %v", first.LaunchDate, want)
	}
}

func TestFetchMission(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(catalogPayload))
	}))
	defer srv.Close()
	c := NewClient(WithURL(srv.URL))

	if got := c.FetchMission(context.Background(), "artemis-iii"); got.Name != "Artemis III" {
		t.Errorf("FetchMission(artemis-iii) = %q", got.Name)
	}
	if got := c.FetchMission(context.Background(), ""); got.Name != "Artemis II" {
		t.Errorf("FetchMission with empty slug = %q, want first result", got.Name)
	}
	if got := c.FetchMission(context.Background(), "gateway-1"); got.Slug != "artemis-ii" {
		t.Errorf("FetchMission unknown slug = %q, want fallback", got.Slug)
	}
}

func TestFetchMissionFallsBackWhenCatalogDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(WithURL(srv.URL))
	got := c.FetchMission(context.Background(), "artemis-ii")
	if got.Slug != "artemis-ii" || got.Rocket != "SLS Block 1" {
		t.Errorf("fallback mission = %+v", got)
	}
}

func TestDefaultCrew(t *testing.T) {
	crew := DefaultCrew()
	if len(crew) != 4 {
		t.Fatalf("crew size = %d, want 4", len(crew))
	}
	if crew[0].Role != "Commander" {
		t.Errorf("first seat role = %q, want Commander", crew[0].Role)
	}
}

package orbitmap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/artemisops/orbitdeck/internal/feeds"
)

func newLiveMapForTest(t *testing.T, opts Options, feedOpts ...feeds.Option) *LiveOrbitMap {
	t.Helper()
	m := NewLiveOrbitMap(opts, nil, nil, feeds.NewClient(feedOpts...), "ISS")
	if err := m.baseMap.Init(&Container{ID: "main", Width: 80, Height: 24}); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestLiveOrbitMapTrackHistoryFIFO(t *testing.T) {
	opts := DefaultOptions()
	opts.TrackHistoryLength = 5
	m := newLiveMapForTest(t, opts)

	for i := 0; i < 8; i++ {
		m.UpdatePosition(Position{Latitude: float64(i), Longitude: float64(i)})
	}

	if got := m.TrackLength(); got != 5 {
		t.Fatalf("track length = %d, want 5", got)
	}
	m.mu.Lock()
	oldest := m.trackPts[0]
	m.mu.Unlock()
	if oldest.lat != 3 {
		t.Errorf("oldest retained point lat = %v, want 3 (first three evicted)", oldest.lat)
	}
}

func TestLiveOrbitMapFallbackKeepsExtras(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer primary.Close()
	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"success","timestamp":1700000000,"iss_position":{"latitude":"10.0000","longitude":"20.0000"}}`))
	}))
	defer fallback.Close()

	m := newLiveMapForTest(t, DefaultOptions(),
		feeds.WithPositionURL(primary.URL),
		feeds.WithFallbackURL(fallback.URL),
		feeds.WithGeocodeURL(primary.URL))

	// A full fix from an earlier primary poll.
	m.UpdatePosition(Position{
		Latitude: 1, Longitude: 2,
		AltitudeKm: 417, VelocityKmh: 27580, FootprintKm: 4500,
		Visibility: "daylight",
	})

	if err := m.FetchPosition(context.Background()); err != nil {
		t.Fatalf("FetchPosition with working fallback: %v", err)
	}

	snap := m.State()
	if snap.Position == nil {
		t.Fatal("no position after fallback fetch")
	}
	if snap.Position.Latitude != 10 || snap.Position.Longitude != 20 {
		t.Errorf("position = (%v, %v), want (10, 20)", snap.Position.Latitude, snap.Position.Longitude)
	}
	if snap.Position.AltitudeKm != 417 || snap.Position.VelocityKmh != 27580 {
		t.Errorf("fallback fetch cleared altitude/velocity: alt=%v vel=%v",
			snap.Position.AltitudeKm, snap.Position.VelocityKmh)
	}
}

func TestLiveOrbitMapBothFeedsDownRetainsState(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer down.Close()

	m := newLiveMapForTest(t, DefaultOptions(),
		feeds.WithPositionURL(down.URL),
		feeds.WithFallbackURL(down.URL),
		feeds.WithGeocodeURL(down.URL))

	var errPayload interface{}
	m.SetCallback(EventError, func(payload interface{}) { errPayload = payload })

	m.UpdatePosition(Position{Latitude: 51.6, Longitude: 0.1, AltitudeKm: 418})

	if err := m.FetchPosition(context.Background()); err == nil {
		t.Fatal("FetchPosition with both feeds down returned nil error")
	}
	if errPayload == nil {
		t.Error("error callback did not fire")
	}

	snap := m.State()
	if snap.Position == nil || snap.Position.Latitude != 51.6 {
		t.Error("failed fetch disturbed the previously displayed position")
	}
}

func TestLiveOrbitMapSlowFetchCannotOvertakeNewer(t *testing.T) {
	var calls int32
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(firstStarted)
			<-releaseFirst
			w.Write([]byte(`{"latitude":-1.0,"longitude":-2.0,"altitude":400,"velocity":27000,"visibility":"daylight","footprint":4400,"timestamp":1700000000}`))
			return
		}
		w.Write([]byte(`{"latitude":30.0,"longitude":60.0,"altitude":420,"velocity":27600,"visibility":"daylight","footprint":4500,"timestamp":1700000100}`))
	}))
	defer srv.Close()

	m := newLiveMapForTest(t, DefaultOptions(),
		feeds.WithPositionURL(srv.URL),
		feeds.WithGeocodeURL(srv.URL))

	// The first poll stalls on the wire while a second poll completes.
	done := make(chan error, 1)
	go func() { done <- m.FetchPosition(context.Background()) }()
	<-firstStarted

	if err := m.FetchPosition(context.Background()); err != nil {
		t.Fatal(err)
	}

	close(releaseFirst)
	if err := <-done; err != nil {
		t.Fatal(err)
	}

	snap := m.State()
	if snap.Position == nil || snap.Position.Latitude != 30 {
		t.Fatalf("position = %+v, want the later poll's (30, 60) fix", snap.Position)
	}
}

func TestLiveOrbitMapNoErrorCallbackAfterDestroy(t *testing.T) {
	started := make(chan struct{}, 2)
	release := make(chan struct{})
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started <- struct{}{}
		<-release
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer down.Close()

	m := newLiveMapForTest(t, DefaultOptions(),
		feeds.WithPositionURL(down.URL),
		feeds.WithFallbackURL(down.URL),
		feeds.WithGeocodeURL(down.URL))

	var errCount int32
	m.SetCallback(EventError, func(interface{}) { atomic.AddInt32(&errCount, 1) })

	done := make(chan error, 1)
	go func() { done <- m.FetchPosition(context.Background()) }()

	<-started
	m.Destroy()
	close(release)

	if err := <-done; err == nil {
		t.Fatal("FetchPosition with both feeds down returned nil error")
	}
	if n := atomic.LoadInt32(&errCount); n != 0 {
		t.Errorf("error callback fired %d times on a destroyed renderer", n)
	}
}

func TestLiveOrbitMapToggles(t *testing.T) {
	opts := DefaultOptions()
	m := newLiveMapForTest(t, opts)
	for i := 0; i < 4; i++ {
		m.UpdatePosition(Position{Latitude: float64(i * 10), Longitude: float64(i * 20)})
	}

	if on := m.ToggleGroundTrack(); on {
		t.Error("first toggle from default-on should report off")
	}
	if got := m.TrackLength(); got != 4 {
		t.Errorf("hiding the track dropped history: length = %d, want 4", got)
	}
	if on := m.ToggleGroundTrack(); !on {
		t.Error("second toggle should report on again")
	}

	if on := m.ToggleFootprint(); on {
		t.Error("footprint toggle from default-on should report off")
	}
}

func TestLiveOrbitMapCenterOnCraft(t *testing.T) {
	m := newLiveMapForTest(t, DefaultOptions())

	if m.CenterOnCraft() {
		t.Error("CenterOnCraft with no fix = true, want false")
	}

	m.UpdatePosition(Position{Latitude: -4.46, Longitude: -79.97})
	if !m.CenterOnCraft() {
		t.Error("CenterOnCraft with a fix = false, want true")
	}
}

func TestLiveOrbitMapRenderReadouts(t *testing.T) {
	m := newLiveMapForTest(t, DefaultOptions())
	m.UpdatePosition(Position{
		Latitude: -4.46, Longitude: -79.97,
		AltitudeKm: 415.76, VelocityKmh: 27590.6,
		FootprintKm: 4493, Visibility: "daylight",
	})

	out := m.Render()
	for _, want := range []string{"◉", "416 km", "27591 km/h", "daylight"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q", want)
		}
	}

	if again := m.Render(); again != out {
		t.Error("Render() not stable across calls with identical state")
	}
}

func TestLiveOrbitMapRenderAwaitingFix(t *testing.T) {
	m := newLiveMapForTest(t, DefaultOptions())
	if out := m.Render(); !strings.Contains(out, "Awaiting first position fix") {
		t.Error("Render() before any fix missing placeholder readout")
	}
}

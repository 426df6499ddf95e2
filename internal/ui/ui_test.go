package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/artemisops/orbitdeck/internal/bus"
	"github.com/artemisops/orbitdeck/internal/missions"
	"github.com/artemisops/orbitdeck/internal/orbitmap"
)

func testMissions() []missions.Mission {
	return []missions.Mission{
		{
			Slug: "artemis-ii", Name: "Artemis II", Type: "artemis-ii",
			LaunchDate: time.Date(2026, time.April, 1, 12, 0, 0, 0, time.UTC),
			Rocket:     "SLS Block 1", Spacecraft: "Orion",
		},
		{
			Slug: "artemis-iii", Name: "Artemis III", Type: "artemis-iii",
			Rocket: "SLS Block 1", Spacecraft: "Orion",
		},
	}
}

func newTestModel(t *testing.T) (Model, *bus.Bus) {
	t.Helper()
	events := bus.New()
	router := orbitmap.NewRouter(events, nil, nil)
	m := New(router, testMissions(), orbitmap.DefaultOptions())
	return m, events
}

func resize(t *testing.T, m Model, w, h int) Model {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: w, Height: h})
	return next.(Model)
}

func TestModelMountsOnFirstResize(t *testing.T) {
	m, _ := newTestModel(t)
	if m.CurrentMap() != nil {
		t.Fatal("map mounted before window size known")
	}

	m = resize(t, m, 100, 32)
	mp := m.CurrentMap()
	if mp == nil {
		t.Fatal("no map mounted after resize")
	}
	defer mp.Destroy()
	if _, ok := mp.(*orbitmap.FreeReturnTrajectoryMap); !ok {
		t.Fatalf("mounted map type %T, want *FreeReturnTrajectoryMap", mp)
	}
}

func TestModelCyclesMissions(t *testing.T) {
	m, _ := newTestModel(t)
	m = resize(t, m, 100, 32)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	m = next.(Model)
	mp := m.CurrentMap()
	if mp == nil {
		t.Fatal("no map after cycling")
	}
	defer mp.Destroy()
	if _, ok := mp.(*orbitmap.LunarLandingTrajectoryMap); !ok {
		t.Fatalf("map after cycle type %T, want *LunarLandingTrajectoryMap", mp)
	}

	// Wraps back to the first mission.
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	m = next.(Model)
	if _, ok := m.CurrentMap().(*orbitmap.FreeReturnTrajectoryMap); !ok {
		t.Fatalf("map after wrap type %T", m.CurrentMap())
	}
	m.CurrentMap().Destroy()
}

func TestModelAdvanceKey(t *testing.T) {
	m, _ := newTestModel(t)
	m = resize(t, m, 100, 32)
	defer m.CurrentMap().Destroy()

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeySpace})
	m = next.(Model)

	fr := m.CurrentMap().(*orbitmap.FreeReturnTrajectoryMap)
	if got := fr.ActiveWaypoint().ID; got != 2 {
		t.Errorf("active waypoint after advance key = %d, want 2", got)
	}
}

func TestModelView(t *testing.T) {
	m, _ := newTestModel(t)
	if got := m.View(); got != "Initializing..." {
		t.Errorf("View before resize = %q", got)
	}

	m = resize(t, m, 100, 32)
	defer m.CurrentMap().Destroy()

	out := m.View()
	for _, want := range []string{"ORBITDECK", "Artemis II", "⊕"} {
		if !strings.Contains(out, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestModelErrMsgInFooter(t *testing.T) {
	m, _ := newTestModel(t)
	m = resize(t, m, 100, 32)
	defer m.CurrentMap().Destroy()

	next, _ := m.Update(ErrMsg{Err: errors.New("feed timeout")})
	m = next.(Model)
	if !strings.Contains(m.View(), "feed timeout") {
		t.Error("View() missing fetch error")
	}
}

func TestWireBusForwardsEvents(t *testing.T) {
	events := bus.New()
	var got []tea.Msg
	cancel := WireBus(events, func(msg tea.Msg) { got = append(got, msg) })

	events.Publish(bus.Event{
		Topic:   orbitmap.EventPositionUpdate,
		Payload: orbitmap.Position{Latitude: 5},
	})
	events.Publish(bus.Event{
		Topic:   orbitmap.EventPhaseChange,
		Payload: orbitmap.PhaseChange{Old: "launch", New: "tli"},
	})

	if len(got) != 2 {
		t.Fatalf("forwarded message count = %d, want 2", len(got))
	}
	if p, ok := got[0].(PositionMsg); !ok || p.Latitude != 5 {
		t.Errorf("first forwarded msg = %#v", got[0])
	}
	if pc, ok := got[1].(PhaseMsg); !ok || pc.New != "tli" {
		t.Errorf("second forwarded msg = %#v", got[1])
	}

	cancel()
	events.Publish(bus.Event{
		Topic:   orbitmap.EventPositionUpdate,
		Payload: orbitmap.Position{Latitude: 6},
	})
	if len(got) != 2 {
		t.Error("events still forwarded after cancel")
	}
}

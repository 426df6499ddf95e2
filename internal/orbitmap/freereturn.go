package orbitmap

import (
	"fmt"

	"github.com/artemisops/orbitdeck/internal/bus"
	"github.com/artemisops/orbitdeck/internal/logging"
)

// freeReturnWaypoints is the fixed mission profile: ascent, trans-lunar
// injection, outbound transit, a single lunar flyby, and the return leg
// ending at splashdown. The trajectory needs no further burns after TLI to
// bring the vehicle home.
var freeReturnWaypoints = []Waypoint{
	{ID: 1, Name: "Liftoff", Phase: PhaseLaunch, X: 10, Y: 31},
	{ID: 2, Name: "SRB Separation", Phase: PhaseLaunch, X: 8, Y: 24},
	{ID: 3, Name: "Core Stage Separation", Phase: PhaseLaunch, X: 9, Y: 17},
	{ID: 4, Name: "Earth Parking Orbit", Phase: PhaseLaunch, X: 14, Y: 11},
	{ID: 5, Name: "Trans-Lunar Injection", Phase: PhaseTLI, X: 22, Y: 8},
	{ID: 6, Name: "ICPS Separation", Phase: PhaseTLI, X: 30, Y: 7},
	{ID: 7, Name: "Outbound Correction Burn", Phase: PhaseOutbound, X: 42, Y: 7},
	{ID: 8, Name: "Outbound Midpoint", Phase: PhaseOutbound, X: 54, Y: 8},
	{ID: 9, Name: "Lunar Sphere of Influence", Phase: PhaseOutbound, X: 68, Y: 10},
	{ID: 10, Name: "Lunar Flyby", Phase: PhaseFlyby, X: 88, Y: 17},
	{ID: 11, Name: "Return Transit", Phase: PhaseReturn, X: 80, Y: 36},
	{ID: 12, Name: "Return Correction Burn", Phase: PhaseReturn, X: 62, Y: 41},
	{ID: 13, Name: "Earth Sphere of Influence", Phase: PhaseReturn, X: 42, Y: 42},
	{ID: 14, Name: "Entry Interface", Phase: PhaseEntry, X: 22, Y: 40},
	{ID: 15, Name: "Splashdown", Phase: PhaseSplashdown, X: 12, Y: 33},
}

// freeReturnPhaseWaypoints maps a mission-reported phase string to the
// waypoint that represents it.
var freeReturnPhaseWaypoints = map[string]int{
	"launch":     1,
	"tli":        5,
	"outbound":   7,
	"flyby":      10,
	"return":     11,
	"entry":      14,
	"splashdown": 15,
}

// FreeReturnTrajectoryMap renders a lunar free-return mission profile as a
// vector diagram with one active waypoint at a time.
type FreeReturnTrajectoryMap struct {
	*baseMap
	track waypointTrack

	// Distance readouts are presentational; the host computes and pushes
	// them, the renderer never simulates geometry.
	earthDistanceKm float64
	moonDistanceKm  float64
	hasDistances    bool
}

// NewFreeReturnTrajectoryMap creates a free-return diagram renderer. The
// first waypoint starts active.
func NewFreeReturnTrajectoryMap(opts Options, events *bus.Bus, logger *logging.Logger) *FreeReturnTrajectoryMap {
	return &FreeReturnTrajectoryMap{
		baseMap: newBaseMap(opts, events, logger),
		track:   newWaypointTrack(freeReturnWaypoints),
	}
}

// SetActiveWaypoint moves the active cursor to the waypoint with the given
// ID. Unknown IDs are ignored.
func (m *FreeReturnTrajectoryMap) SetActiveWaypoint(id int) {
	m.mu.Lock()
	ok := m.track.setActive(id)
	var wp Waypoint
	if ok {
		wp = m.track.activeWaypoint()
	}
	m.mu.Unlock()

	if ok {
		m.emit(EventWaypointReached, wp)
	}
}

// AdvanceToNextWaypoint moves one waypoint forward. At the terminal
// waypoint it is a no-op and reports false.
func (m *FreeReturnTrajectoryMap) AdvanceToNextWaypoint() bool {
	m.mu.Lock()
	ok := m.track.advance()
	var wp Waypoint
	if ok {
		wp = m.track.activeWaypoint()
	}
	m.mu.Unlock()

	if ok {
		m.emit(EventWaypointReached, wp)
	}
	return ok
}

// UpdateDisplay maps a mission-reported phase string to its waypoint and
// activates it. Unmapped phase strings are ignored.
func (m *FreeReturnTrajectoryMap) UpdateDisplay(phase string) {
	id, ok := freeReturnPhaseWaypoints[phase]
	if !ok {
		return
	}
	m.SetActiveWaypoint(id)
}

// UpdateDistances stores host-computed Earth and Moon distances for the
// readout line.
func (m *FreeReturnTrajectoryMap) UpdateDistances(earthKm, moonKm float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.earthDistanceKm = earthKm
	m.moonDistanceKm = moonKm
	m.hasDistances = true
}

// ActiveWaypoint returns the currently active waypoint.
func (m *FreeReturnTrajectoryMap) ActiveWaypoint() Waypoint {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.track.activeWaypoint()
}

// Waypoints returns a copy of the waypoint sequence.
func (m *FreeReturnTrajectoryMap) Waypoints() []Waypoint {
	m.mu.Lock()
	defer m.mu.Unlock()
	wps := make([]Waypoint, len(m.track.waypoints))
	copy(wps, m.track.waypoints)
	return wps
}

// Render implements Map.
func (m *FreeReturnTrajectoryMap) Render() string {
	if !m.isInitialized() {
		return ""
	}
	w, h := m.size()

	m.mu.Lock()
	track := m.track
	var extra []string
	if m.hasDistances {
		extra = append(extra, fmt.Sprintf("%s %s  %s %s",
			trajHUDLabelStyle.Render("Earth:"),
			trajHUDValueStyle.Render(fmt.Sprintf("%.0f km", m.earthDistanceKm)),
			trajHUDLabelStyle.Render("Moon:"),
			trajHUDValueStyle.Render(fmt.Sprintf("%.0f km", m.moonDistanceKm))))
	}
	opts := m.opts
	m.mu.Unlock()

	view := trajectoryView{
		title:      "Free Return",
		craftGlyph: func(Waypoint) rune { return '▲' },
	}
	return view.render(opts, track, w, h, extra)
}

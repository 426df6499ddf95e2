package orbitmap

import (
	"github.com/artemisops/orbitdeck/internal/bus"
	"github.com/artemisops/orbitdeck/internal/logging"
)

// lunarLandingWaypoints is the fixed NRHO-insertion-plus-landing profile:
// the crew vehicle flies Earth ascent, TLI and NRHO insertion, then the
// lander takes the descent/surface/ascent leg before the crew vehicle
// returns. IDs are spaced so intermediate events can be inserted without
// renumbering.
var lunarLandingWaypoints = []Waypoint{
	{ID: 10, Name: "Liftoff", Phase: PhaseLaunch, X: 10, Y: 31},
	{ID: 20, Name: "Earth Parking Orbit", Phase: PhaseLaunch, X: 13, Y: 12},
	{ID: 30, Name: "Trans-Lunar Injection", Phase: PhaseTLI, X: 24, Y: 8},
	{ID: 40, Name: "Outbound Transit", Phase: PhaseOutbound, X: 45, Y: 7},
	{ID: 50, Name: "Outbound Correction Burn", Phase: PhaseOutbound, X: 62, Y: 8},
	{ID: 60, Name: "NRHO Insertion", Phase: PhaseNRHOInsert, X: 80, Y: 12},
	{ID: 70, Name: "NRHO Stationkeeping", Phase: PhaseNRHOInsert, X: 88, Y: 18},
	{ID: 80, Name: "Lander Undocking", Phase: PhaseDescent, X: 90, Y: 24},
	{ID: 90, Name: "Descent Orbit Insertion", Phase: PhaseDescent, X: 88, Y: 29},
	{ID: 100, Name: "Powered Descent", Phase: PhaseDescent, X: 84, Y: 34},
	{ID: 110, Name: "Touchdown", Phase: PhaseLanding, X: 80, Y: 38},
	{ID: 120, Name: "Surface Operations", Phase: PhaseSurface, X: 74, Y: 40},
	{ID: 130, Name: "Ascent", Phase: PhaseAscent, X: 76, Y: 35},
	{ID: 140, Name: "NRHO Rendezvous", Phase: PhaseAscent, X: 82, Y: 29},
	{ID: 150, Name: "Trans-Earth Injection", Phase: PhaseReturn, X: 64, Y: 42},
	{ID: 160, Name: "Return Transit", Phase: PhaseReturn, X: 46, Y: 43},
	{ID: 170, Name: "Return Correction Burn", Phase: PhaseReturn, X: 30, Y: 42},
	{ID: 180, Name: "Entry Interface", Phase: PhaseEntry, X: 18, Y: 39},
	{ID: 190, Name: "Splashdown", Phase: PhaseSplashdown, X: 11, Y: 33},
}

// landerPhases is the phase subset flown by the lander vehicle; the craft
// glyph swaps while the active waypoint is in it.
var landerPhases = map[PhaseTag]bool{
	PhaseDescent: true,
	PhaseLanding: true,
	PhaseSurface: true,
	PhaseAscent:  true,
}

// LunarLandingTrajectoryMap renders the NRHO-insertion-plus-surface-landing
// mission profile. The host drives progression with explicit
// SetActiveWaypoint/AdvanceToNextWaypoint calls.
type LunarLandingTrajectoryMap struct {
	*baseMap
	track waypointTrack
}

// NewLunarLandingTrajectoryMap creates a lunar-landing diagram renderer.
func NewLunarLandingTrajectoryMap(opts Options, events *bus.Bus, logger *logging.Logger) *LunarLandingTrajectoryMap {
	return &LunarLandingTrajectoryMap{
		baseMap: newBaseMap(opts, events, logger),
		track:   newWaypointTrack(lunarLandingWaypoints),
	}
}

// SetActiveWaypoint moves the active cursor to the waypoint with the given
// ID. Unknown IDs are ignored.
func (m *LunarLandingTrajectoryMap) SetActiveWaypoint(id int) {
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

// AdvanceToNextWaypoint moves one waypoint forward, clamped at splashdown.
func (m *LunarLandingTrajectoryMap) AdvanceToNextWaypoint() bool {
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

// ActiveWaypoint returns the currently active waypoint.
func (m *LunarLandingTrajectoryMap) ActiveWaypoint() Waypoint {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.track.activeWaypoint()
}

// Waypoints returns a copy of the waypoint sequence.
func (m *LunarLandingTrajectoryMap) Waypoints() []Waypoint {
	m.mu.Lock()
	defer m.mu.Unlock()
	wps := make([]Waypoint, len(m.track.waypoints))
	copy(wps, m.track.waypoints)
	return wps
}

// craftGlyphFor picks the crew-vehicle or lander glyph depending on which
// vehicle flies the active waypoint's phase.
func craftGlyphFor(wp Waypoint) rune {
	if landerPhases[wp.Phase] {
		return '▼'
	}
	return '▲'
}

// Render implements Map.
func (m *LunarLandingTrajectoryMap) Render() string {
	if !m.isInitialized() {
		return ""
	}
	w, h := m.size()

	m.mu.Lock()
	track := m.track
	opts := m.opts
	m.mu.Unlock()

	view := trajectoryView{
		title:      "Lunar Landing",
		craftGlyph: craftGlyphFor,
	}
	return view.render(opts, track, w, h, nil)
}

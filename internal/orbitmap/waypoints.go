package orbitmap

// PhaseTag labels the trajectory leg a waypoint belongs to.
type PhaseTag string

const (
	PhaseLaunch     PhaseTag = "launch"
	PhaseTLI        PhaseTag = "tli"
	PhaseOutbound   PhaseTag = "outbound"
	PhaseFlyby      PhaseTag = "flyby"
	PhaseNRHOInsert PhaseTag = "nrho-insert"
	PhaseDescent    PhaseTag = "descent"
	PhaseLanding    PhaseTag = "landing"
	PhaseSurface    PhaseTag = "surface"
	PhaseAscent     PhaseTag = "ascent"
	PhaseReturn     PhaseTag = "return"
	PhaseEntry      PhaseTag = "entry"
	PhaseSplashdown PhaseTag = "splashdown"
)

// Waypoint is a named point on a mission-profile diagram. Coordinates are
// hand-authored positions on the 100x50 diagram plane, not propagated
// geometry. IDs order the sequence but need not be contiguous.
type Waypoint struct {
	ID    int
	Name  string
	Phase PhaseTag
	X, Y  float64
}

// waypointStatus is the visual state derived purely from the pair
// (index, activeIndex); nothing else is persisted per waypoint.
type waypointStatus int

const (
	waypointCompleted waypointStatus = iota
	waypointActive
	waypointPending
)

func statusAt(index, active int) waypointStatus {
	switch {
	case index < active:
		return waypointCompleted
	case index == active:
		return waypointActive
	default:
		return waypointPending
	}
}

// waypointTrack holds a fixed waypoint sequence and the single active-index
// cursor, the only mutable trajectory state.
type waypointTrack struct {
	waypoints []Waypoint
	active    int
}

func newWaypointTrack(wps []Waypoint) waypointTrack {
	return waypointTrack{waypoints: wps}
}

// setActive moves the cursor to the waypoint with the given ID. Unknown
// IDs leave the cursor unchanged and report false.
func (t *waypointTrack) setActive(id int) bool {
	for i, wp := range t.waypoints {
		if wp.ID == id {
			t.active = i
			return true
		}
	}
	return false
}

// advance moves the cursor one waypoint forward, clamped at the terminal
// waypoint. Reports false when already terminal.
func (t *waypointTrack) advance() bool {
	if t.active >= len(t.waypoints)-1 {
		return false
	}
	t.active++
	return true
}

func (t *waypointTrack) activeWaypoint() Waypoint {
	return t.waypoints[t.active]
}

func (t *waypointTrack) atTerminal() bool {
	return t.active == len(t.waypoints)-1
}

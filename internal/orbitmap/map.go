// Package orbitmap implements the dashboard's orbital map renderers: a live
// Earth-orbit ground-track view, two lunar trajectory diagrams, and the
// router that selects among them by mission type. All renderers satisfy the
// Map contract so a host can swap implementations without branching.
package orbitmap

import (
	"context"
	"errors"
	"time"
)

// Event names accepted by SetCallback and published on the bus.
const (
	EventPhaseChange     = "phase-change"
	EventPositionUpdate  = "position-update"
	EventWaypointReached = "waypoint-reached"
	EventError           = "error"
)

// ErrContainerNotFound is returned by Init when the target mount point
// does not exist.
var ErrContainerNotFound = errors.New("orbitmap: container not found")

// ErrNoRenderer is published when a mission category has no registered
// renderer and the router degrades to the base renderer.
var ErrNoRenderer = errors.New("orbitmap: no renderer registered for mission category")

// Position is a spacecraft fix as displayed by a renderer. Phase is
// optional; when it changes between updates a phase-change notification
// fires before the position-update notification.
type Position struct {
	Latitude    float64
	Longitude   float64
	AltitudeKm  float64
	VelocityKmh float64
	FootprintKm float64
	Visibility  string
	Phase       string
	Timestamp   time.Time
}

// PhaseChange is the payload delivered with phase-change notifications.
type PhaseChange struct {
	Old string
	New string
}

// MissionDescriptor identifies a mission. Type, then ID, then Name is
// consulted when routing; the rest is display payload. Descriptors are
// treated as immutable once handed to a renderer.
type MissionDescriptor struct {
	Type       string
	ID         string
	Name       string
	Phase      string
	LaunchDate time.Time
	Site       string
	Rocket     string
	Spacecraft string
}

// Snapshot is a read-only view of a renderer's state. Position is a copy;
// mutating it does not affect the renderer.
type Snapshot struct {
	MissionID string
	Phase     string
	Position  *Position
	Tracking  bool
}

// Callback receives event payloads: PhaseChange for phase-change, Position
// for position-update, Waypoint for waypoint-reached, error for error.
type Callback func(payload interface{})

// Map is the contract every orbital map renderer satisfies.
type Map interface {
	// Init mounts the renderer on a container. It fails with
	// ErrContainerNotFound if the container is nil.
	Init(c *Container) error

	// SetMissionData stores the mission payload and extracts an initial
	// phase if one is present.
	SetMissionData(d MissionDescriptor)

	// UpdatePosition stores a new position. If the phase changed, the
	// phase-change notification fires before the position-update
	// notification, synchronously, on the caller's goroutine.
	UpdatePosition(p Position)

	// Render reconstructs the full visual representation from current
	// state. Safe to call repeatedly; identical state yields identical
	// output.
	Render() string

	// StartTracking begins the periodic fetch timer. Calling it while
	// already tracking is a no-op.
	StartTracking()

	// StopTracking stops the timer. A no-op when not tracking. In-flight
	// fetches are not cancelled but their results are discarded.
	StopTracking()

	// FetchPosition performs one position retrieval. The default
	// implementation is a no-op; the live renderer overrides it.
	FetchPosition(ctx context.Context) error

	// State returns a snapshot of current state.
	State() Snapshot

	// Destroy stops tracking and marks the renderer uninitialized. Safe to
	// call multiple times.
	Destroy()

	// SetCallback registers a callback for one of the four event names.
	// Unrecognized names are ignored.
	SetCallback(name string, fn Callback)
}

// Options enumerates the host-facing toggles recognized at construction.
type Options struct {
	ShowGroundTrack    bool
	ShowFootprint      bool
	AutoCenter         bool
	TrackHistoryLength int
	UpdateInterval     time.Duration
	ShowLegend         bool
	ShowPhaseInfo      bool
	AnimateSpacecraft  bool
}

// DefaultOptions returns the default renderer configuration.
func DefaultOptions() Options {
	return Options{
		ShowGroundTrack:    true,
		ShowFootprint:      true,
		AutoCenter:         true,
		TrackHistoryLength: 200,
		UpdateInterval:     5 * time.Second,
		ShowLegend:         true,
		ShowPhaseInfo:      true,
		AnimateSpacecraft:  true,
	}
}

func (o Options) withDefaults() Options {
	if o.TrackHistoryLength <= 0 {
		o.TrackHistoryLength = 200
	}
	if o.UpdateInterval <= 0 {
		o.UpdateInterval = 5 * time.Second
	}
	return o
}

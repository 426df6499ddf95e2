package orbitmap

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/artemisops/orbitdeck/internal/bus"
	"github.com/artemisops/orbitdeck/internal/logging"
)

// fetchTimeout bounds a single tracking fetch. The periodic timer does not
// wait for outstanding fetches, so responses may arrive out of order; the
// sequence guard in applyFetch discards the stale ones.
const fetchTimeout = 30 * time.Second

// baseMap carries the state and lifecycle shared by all renderers. It also
// satisfies Map on its own, serving as the degraded renderer the router
// falls back to when no concrete class can be resolved.
type baseMap struct {
	mu     sync.Mutex
	opts   Options
	events *bus.Bus
	logger *logging.Logger

	container   *Container
	initialized bool

	mission    MissionDescriptor
	hasMission bool
	phase      string
	position   *Position

	callbacks map[string]Callback

	tracking bool
	stopCh   chan struct{}

	gen         uint64 // bumped on stop/destroy; invalidates in-flight fetches
	seq         uint64 // request sequence for the stale-response guard
	lastApplied uint64

	// fetch is the hook the tracking timer invokes. Concrete renderers set
	// it to their FetchPosition; nil means the timer ticks idle.
	fetch func(ctx context.Context) error
}

func newBaseMap(opts Options, events *bus.Bus, logger *logging.Logger) *baseMap {
	if logger == nil {
		logger = logging.Discard()
	}
	return &baseMap{
		opts:      opts.withDefaults(),
		events:    events,
		logger:    logger,
		callbacks: make(map[string]Callback),
	}
}

// Init implements Map.
func (b *baseMap) Init(c *Container) error {
	if c == nil {
		return ErrContainerNotFound
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.container = c
	b.initialized = true
	return nil
}

// SetMissionData implements Map.
func (b *baseMap) SetMissionData(d MissionDescriptor) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mission = d
	b.hasMission = true
	if b.phase == "" && d.Phase != "" {
		b.phase = d.Phase
	}
}

// UpdatePosition implements Map. The phase-change notification, when due,
// is delivered strictly before the position-update notification.
func (b *baseMap) UpdatePosition(p Position) {
	b.mu.Lock()
	old := b.phase
	changed := p.Phase != "" && p.Phase != old
	if changed {
		b.phase = p.Phase
	}
	cp := p
	b.position = &cp
	b.mu.Unlock()

	if changed {
		b.emit(EventPhaseChange, PhaseChange{Old: old, New: p.Phase})
	}
	b.emit(EventPositionUpdate, p)
}

// Render implements Map. The base renderer has no visual of its own; it is
// only mounted when the router cannot resolve a concrete renderer.
func (b *baseMap) Render() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return ""
	}
	name := b.mission.Name
	if name == "" {
		name = b.missionIDLocked()
	}
	if name == "" {
		name = "mission"
	}
	return fmt.Sprintf("%s — no map available for this mission type\n", name)
}

// StartTracking implements Map. A second call without an intervening
// StopTracking is a no-op, so at most one timer runs per renderer.
func (b *baseMap) StartTracking() {
	b.mu.Lock()
	if b.tracking {
		b.mu.Unlock()
		return
	}
	b.tracking = true
	stop := make(chan struct{})
	b.stopCh = stop
	interval := b.opts.UpdateInterval
	b.mu.Unlock()

	go b.trackLoop(stop, interval)
}

// StopTracking implements Map. In-flight fetches are not cancelled; the
// generation bump makes applyFetch reject their results.
func (b *baseMap) StopTracking() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.tracking {
		return
	}
	close(b.stopCh)
	b.stopCh = nil
	b.tracking = false
	b.gen++
}

// FetchPosition implements Map. Default no-op; the live renderer overrides.
func (b *baseMap) FetchPosition(ctx context.Context) error {
	return nil
}

// State implements Map. The returned position is a copy.
func (b *baseMap) State() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	snap := Snapshot{
		MissionID: b.missionIDLocked(),
		Phase:     b.phase,
		Tracking:  b.tracking,
	}
	if b.position != nil {
		cp := *b.position
		snap.Position = &cp
	}
	return snap
}

// Destroy implements Map.
func (b *baseMap) Destroy() {
	b.StopTracking()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.initialized = false
	b.container = nil
	b.gen++
}

// SetCallback implements Map. Only the four known event names are stored;
// anything else is silently ignored.
func (b *baseMap) SetCallback(name string, fn Callback) {
	switch name {
	case EventPhaseChange, EventPositionUpdate, EventWaypointReached, EventError:
	default:
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.callbacks[name] = fn
}

func (b *baseMap) trackLoop(stop chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			// Fetches run detached so a slow response never delays the
			// next tick.
			go b.runFetch()
		}
	}
}

func (b *baseMap) runFetch() {
	b.mu.Lock()
	fetch := b.fetch
	b.mu.Unlock()
	if fetch == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	if err := fetch(ctx); err != nil {
		b.logger.Debug("tracking fetch failed: %v", err)
	}
}

// fetchToken ties a network response to the request that produced it.
type fetchToken struct {
	seq uint64
	gen uint64
}

func (b *baseMap) beginFetch() fetchToken {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	return fetchToken{seq: b.seq, gen: b.gen}
}

// applyFetch commits the response for a token and stores its position in
// one critical section: a response is rejected once the renderer was
// stopped or destroyed after the request began, or a newer response has
// already been applied — and an accepted one can never be overtaken between
// commit and store. locked, when non-nil, runs under the lock before the
// position is stored and may adjust it. Notification ordering matches
// UpdatePosition.
func (b *baseMap) applyFetch(t fetchToken, p Position, locked func(*Position)) bool {
	b.mu.Lock()
	if t.gen != b.gen || t.seq <= b.lastApplied {
		b.mu.Unlock()
		return false
	}
	b.lastApplied = t.seq
	if locked != nil {
		locked(&p)
	}
	old := b.phase
	changed := p.Phase != "" && p.Phase != old
	if changed {
		b.phase = p.Phase
	}
	cp := p
	b.position = &cp
	b.mu.Unlock()

	if changed {
		b.emit(EventPhaseChange, PhaseChange{Old: old, New: p.Phase})
	}
	b.emit(EventPositionUpdate, p)
	return true
}

// tokenLive reports whether the renderer has been neither stopped nor
// destroyed since the token was issued. Failed fetches check it so error
// notifications stay silent after teardown.
func (b *baseMap) tokenLive(t fetchToken) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return t.gen == b.gen
}

// emit delivers a payload to the registered callback and publishes it on
// the shared bus, in that order, synchronously.
func (b *baseMap) emit(name string, payload interface{}) {
	b.mu.Lock()
	cb := b.callbacks[name]
	mission := b.missionIDLocked()
	b.mu.Unlock()

	if cb != nil {
		cb(payload)
	}
	if b.events != nil {
		b.events.Publish(bus.Event{Topic: name, Mission: mission, Payload: payload})
	}
}

func (b *baseMap) emitError(err error) {
	b.emit(EventError, err)
}

func (b *baseMap) missionIDLocked() string {
	switch {
	case b.mission.ID != "":
		return b.mission.ID
	case b.mission.Type != "":
		return b.mission.Type
	default:
		return b.mission.Name
	}
}

func (b *baseMap) size() (w, h int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.container == nil {
		return 0, 0
	}
	return b.container.Width, b.container.Height
}

func (b *baseMap) isInitialized() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.initialized
}

// Package state provides thread-safe shared state for the aggregation
// daemon: the latest telemetry, a bounded position history, and a ring
// buffer of feed events.
package state

import (
	"sync"
	"time"

	"github.com/artemisops/orbitdeck/internal/feeds"
	"github.com/artemisops/orbitdeck/internal/missions"
)

// EventType labels a feed state change.
type EventType string

const (
	EventFeedDegraded EventType = "FEED_DEGRADED"
	EventFeedRestored EventType = "FEED_RESTORED"
	EventFeedLost     EventType = "FEED_LOST"
)

// Event records a feed state change for the event log.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// HistoryEntry is one position fix in the history buffer.
type HistoryEntry struct {
	Timestamp time.Time
	Position  feeds.Position
}

// Manager handles all shared daemon state with thread-safe access.
type Manager struct {
	mu sync.RWMutex

	// Current state
	position      *feeds.Position
	crew          []feeds.CrewMember
	location      feeds.Location
	mission       missions.Mission
	lastFetch     time.Time
	lastError     error
	fetchDuration time.Duration

	// Previous source for event detection
	prevSource string
	prevFailed bool

	// History buffer
	history       []HistoryEntry
	maxHistoryLen int

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int

	refreshInterval time.Duration
}

// Config holds configuration for the state manager.
type Config struct {
	MaxHistoryLen   int
	MaxEvents       int
	RefreshInterval time.Duration
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxHistoryLen:   720, // ~1 hour at one fetch per 5s
		MaxEvents:       50,
		RefreshInterval: 5 * time.Second,
	}
}

// NewManager creates a new state manager.
func NewManager(cfg Config) *Manager {
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	maxHistory := cfg.MaxHistoryLen
	if maxHistory <= 0 {
		maxHistory = 720
	}
	return &Manager{
		maxHistoryLen:   maxHistory,
		maxEvents:       maxEvents,
		events:          make([]Event, 0, maxEvents),
		refreshInterval: cfg.RefreshInterval,
	}
}

// UpdatePosition atomically records the result of one position poll.
func (m *Manager) UpdatePosition(pos feeds.Position, fetchDuration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastFetch = time.Now()
	m.lastError = err
	m.fetchDuration = fetchDuration

	if err != nil {
		if !m.prevFailed {
			m.addEvent(Event{
				Type:      EventFeedLost,
				Timestamp: time.Now(),
				Detail:    err.Error(),
			})
		}
		m.prevFailed = true
		return
	}

	// Detect source transitions before updating current state.
	recovered := m.prevFailed
	sourceChanged := m.prevSource != "" && m.prevSource != pos.Source
	if recovered || sourceChanged {
		typ := EventFeedDegraded
		if pos.HasExtras {
			typ = EventFeedRestored
		}
		m.addEvent(Event{Type: typ, Timestamp: time.Now(), Source: pos.Source})
	}
	m.prevFailed = false
	m.prevSource = pos.Source

	cp := pos
	m.position = &cp

	m.history = append(m.history, HistoryEntry{Timestamp: pos.Timestamp, Position: pos})
	if len(m.history) > m.maxHistoryLen {
		m.history = m.history[1:]
	}
}

// SetCrew stores the latest crew roster.
func (m *Manager) SetCrew(crew []feeds.CrewMember) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.crew = crew
}

// SetLocation stores the latest reverse-geocode result.
func (m *Manager) SetLocation(loc feeds.Location) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.location = loc
}

// SetMission stores the active mission.
func (m *Manager) SetMission(mission missions.Mission) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mission = mission
}

// addEvent adds an event to the ring buffer. Caller holds the lock.
func (m *Manager) addEvent(e Event) {
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

// Snapshot is an immutable view of current daemon state.
type Snapshot struct {
	Position      *feeds.Position
	Crew          []feeds.CrewMember
	Location      feeds.Location
	Mission       missions.Mission
	LastFetch     time.Time
	LastError     error
	FetchDuration time.Duration
	History       []HistoryEntry
	Events        []Event
}

// Snapshot returns a consistent snapshot of current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := Snapshot{
		Location:      m.location,
		Mission:       m.mission,
		LastFetch:     m.lastFetch,
		LastError:     m.lastError,
		FetchDuration: m.fetchDuration,
	}
	if m.position != nil {
		cp := *m.position
		snap.Position = &cp
	}

	snap.Crew = make([]feeds.CrewMember, len(m.crew))
	copy(snap.Crew, m.crew)

	snap.History = make([]HistoryEntry, len(m.history))
	copy(snap.History, m.history)

	snap.Events = m.getEventsOrdered()
	return snap
}

// getEventsOrdered returns events in chronological order.
func (m *Manager) getEventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}

	if len(m.events) < m.maxEvents {
		result := make([]Event, len(m.events))
		copy(result, m.events)
		return result
	}

	result := make([]Event, m.maxEvents)
	for i := 0; i < m.maxEvents; i++ {
		idx := (m.eventWriteAt + i) % m.maxEvents
		result[i] = m.events[idx]
	}
	return result
}

// RecentEvents returns the last n events.
func (m *Manager) RecentEvents(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.getEventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// RefreshInterval returns the configured refresh interval.
func (m *Manager) RefreshInterval() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refreshInterval
}

// SetRefreshInterval updates the refresh interval.
func (m *Manager) SetRefreshInterval(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshInterval = d
}

// HasData reports whether at least one successful fetch has landed.
func (m *Manager) HasData() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.position != nil
}

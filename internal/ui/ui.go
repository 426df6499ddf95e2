// Package ui provides the terminal user interface using Bubble Tea. The
// model hosts one orbital map renderer at a time and swaps renderers as the
// operator cycles missions.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/artemisops/orbitdeck/internal/bus"
	"github.com/artemisops/orbitdeck/internal/missions"
	"github.com/artemisops/orbitdeck/internal/orbitmap"
	"github.com/artemisops/orbitdeck/internal/version"
)

// mapContainerID names the single render surface the dashboard owns.
const mapContainerID = "map"

// headerRows and footerRows are reserved around the map container.
const (
	headerRows = 3
	footerRows = 2
)

// Msg types for Bubble Tea.
type (
	// TickMsg triggers periodic redraws so the map reflects state pushed
	// from the tracking goroutines.
	TickMsg time.Time

	// PositionMsg carries a position-update event from the map bus.
	PositionMsg orbitmap.Position

	// PhaseMsg carries a phase-change event from the map bus.
	PhaseMsg orbitmap.PhaseChange

	// WaypointMsg carries a waypoint-reached event from the map bus.
	WaypointMsg orbitmap.Waypoint

	// ErrMsg carries a fetch error from the map bus.
	ErrMsg struct {
		Err error
	}
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Bold(true)
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// Model is the root Bubble Tea model.
type Model struct {
	router   *orbitmap.Router
	surfaces *orbitmap.Surfaces
	opts     orbitmap.Options

	missions   []missions.Mission
	missionIdx int

	current orbitmap.Map

	width, height int
	ready         bool
	lastErr       error
	statusMsg     string
}

// New creates the root model. The mission list is the set the operator can
// cycle through with "n"; it must be non-empty.
func New(router *orbitmap.Router, list []missions.Mission, opts orbitmap.Options) Model {
	if len(list) == 0 {
		list = []missions.Mission{missions.FallbackMission()}
	}
	return Model{
		router:   router,
		surfaces: orbitmap.NewSurfaces(),
		opts:     opts,
		missions: list,
	}
}

// WireBus subscribes the dashboard topics on the map event bus, forwarding
// each event into the Bubble Tea program via send. The returned cancel
// releases all subscriptions.
func WireBus(b *bus.Bus, send func(tea.Msg)) (cancel func()) {
	cancels := []func(){
		b.Subscribe(orbitmap.EventPositionUpdate, func(e bus.Event) {
			if p, ok := e.Payload.(orbitmap.Position); ok {
				send(PositionMsg(p))
			}
		}),
		b.Subscribe(orbitmap.EventPhaseChange, func(e bus.Event) {
			if pc, ok := e.Payload.(orbitmap.PhaseChange); ok {
				send(PhaseMsg(pc))
			}
		}),
		b.Subscribe(orbitmap.EventWaypointReached, func(e bus.Event) {
			if wp, ok := e.Payload.(orbitmap.Waypoint); ok {
				send(WaypointMsg(wp))
			}
		}),
		b.Subscribe(orbitmap.EventError, func(e bus.Event) {
			if err, ok := e.Payload.(error); ok {
				send(ErrMsg{Err: err})
			}
		}),
	}
	return func() {
		for _, c := range cancels {
			c()
		}
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizeContainer()
		if m.current == nil {
			m.mountCurrentMission()
		}

	case TickMsg:
		return m, tickCmd()

	case PositionMsg:
		// State already lives in the renderer; the message just forces a
		// redraw with fresh HUD values.
		m.lastErr = nil

	case PhaseMsg:
		m.statusMsg = fmt.Sprintf("Phase: %s → %s", msg.Old, msg.New)

	case WaypointMsg:
		m.statusMsg = "Waypoint: " + msg.Name

	case ErrMsg:
		m.lastErr = msg.Err
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.current != nil {
			m.current.Destroy()
		}
		return m, tea.Quit

	case "t":
		if live, ok := m.current.(*orbitmap.LiveOrbitMap); ok {
			if live.ToggleGroundTrack() {
				m.statusMsg = "Ground track on"
			} else {
				m.statusMsg = "Ground track off"
			}
		}

	case "f":
		if live, ok := m.current.(*orbitmap.LiveOrbitMap); ok {
			if live.ToggleFootprint() {
				m.statusMsg = "Footprint on"
			} else {
				m.statusMsg = "Footprint off"
			}
		}

	case "c":
		if live, ok := m.current.(*orbitmap.LiveOrbitMap); ok {
			if !live.CenterOnCraft() {
				m.statusMsg = "No position fix yet"
			} else {
				m.statusMsg = "Centered on spacecraft"
			}
		}

	case "right", " ", "space":
		if fr, ok := m.current.(*orbitmap.FreeReturnTrajectoryMap); ok {
			fr.AdvanceToNextWaypoint()
		}
		if ll, ok := m.current.(*orbitmap.LunarLandingTrajectoryMap); ok {
			ll.AdvanceToNextWaypoint()
		}

	case "n":
		m.missionIdx = (m.missionIdx + 1) % len(m.missions)
		m.mountCurrentMission()
	}

	return m, nil
}

// resizeContainer keeps the registered surface in step with the terminal.
// The map holds a pointer to the container, so resizing is visible on the
// next Render.
func (m *Model) resizeContainer() {
	h := m.height - headerRows - footerRows
	if h < 8 {
		h = 8
	}
	if c, ok := m.surfaces.Lookup(mapContainerID); ok {
		c.Width = m.width
		c.Height = h
		return
	}
	m.surfaces.Register(&orbitmap.Container{ID: mapContainerID, Width: m.width, Height: h})
}

// mountCurrentMission tears down the active renderer and mounts one for
// the selected mission.
func (m *Model) mountCurrentMission() {
	if !m.ready {
		return
	}
	if m.current != nil {
		m.current.Destroy()
		m.current = nil
	}

	mi := m.missions[m.missionIdx]
	d := orbitmap.MissionDescriptor{
		Type:       mi.Type,
		ID:         mi.Slug,
		Name:       mi.Name,
		LaunchDate: mi.LaunchDate,
		Site:       mi.Site,
		Rocket:     mi.Rocket,
		Spacecraft: mi.Spacecraft,
	}

	mp, err := m.router.CreateAndInit(m.surfaces, mapContainerID, d, m.opts)
	if err != nil {
		m.lastErr = err
		return
	}
	m.current = mp
	m.statusMsg = "Tracking " + mi.Name
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	if m.current != nil {
		b.WriteString(m.current.Render())
	} else {
		b.WriteString(dimStyle.Render("No mission mounted"))
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	mi := m.missions[m.missionIdx]

	title := titleStyle.Render("ORBITDECK") +
		dimStyle.Render(fmt.Sprintf("  v%s", version.Version))

	var line strings.Builder
	line.WriteString("  ")
	line.WriteString(title)
	line.WriteString("   ")
	line.WriteString(accentStyle.Render(mi.Name))
	if mi.Rocket != "" {
		line.WriteString(dimStyle.Render("  " + mi.Rocket + " · " + mi.Spacecraft))
	}
	if !mi.LaunchDate.IsZero() {
		line.WriteString(dimStyle.Render("  " + mi.LaunchDate.Format("2006-01-02 15:04 MST")))
	}
	line.WriteString("\n")

	line.WriteString("  ")
	for i, cand := range m.missions {
		label := fmt.Sprintf("[%d] %s", i+1, cand.Name)
		if i == m.missionIdx {
			line.WriteString(accentStyle.Render("▶ " + label))
		} else {
			line.WriteString(dimStyle.Render("  " + label))
		}
		line.WriteString("  ")
	}
	line.WriteString("\n")

	return line.String()
}

func (m Model) renderFooter() string {
	var status string
	switch {
	case m.lastErr != nil:
		status = errStyle.Render("ERROR: " + m.lastErr.Error())
	case m.statusMsg != "":
		status = dimStyle.Render(m.statusMsg)
	default:
		status = dimStyle.Render("nominal")
	}

	var help string
	switch m.current.(type) {
	case *orbitmap.LiveOrbitMap:
		help = dimStyle.Render("t: track | f: footprint | c: center | n: next mission | q: quit")
	case *orbitmap.FreeReturnTrajectoryMap, *orbitmap.LunarLandingTrajectoryMap:
		help = dimStyle.Render("space: advance | n: next mission | q: quit")
	default:
		help = dimStyle.Render("n: next mission | q: quit")
	}

	return "  " + status + "  " + dimStyle.Render("|") + "  " + help
}

// CurrentMap returns the mounted renderer, for tests and headless use.
func (m Model) CurrentMap() orbitmap.Map {
	return m.current
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

package orbitmap

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Diagram plane the waypoint coordinates are authored on.
const (
	diagramWidth  = 100.0
	diagramHeight = 50.0
)

// Earth and Moon anchor positions on the diagram plane.
var (
	earthX, earthY = 12.0, 25.0
	moonX, moonY   = 88.0, 25.0
)

// Trajectory styles, shared by both diagram renderers.
var (
	trajCompletedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("71"))
	trajActiveStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Bold(true)
	trajEarthStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	trajMoonStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	trajCraftStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	trajLabelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("249"))
	trajHUDLabelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	trajHUDValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

	legLaunchStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	legOutboundStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	legLunarStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	legLanderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	legReturnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("120"))
)

// legStyle maps a phase tag to its leg color. The switch is exhaustive
// over the closed tag set.
func legStyle(p PhaseTag) *lipgloss.Style {
	switch p {
	case PhaseLaunch, PhaseTLI:
		return &legLaunchStyle
	case PhaseOutbound:
		return &legOutboundStyle
	case PhaseFlyby, PhaseNRHOInsert:
		return &legLunarStyle
	case PhaseDescent, PhaseLanding, PhaseSurface, PhaseAscent:
		return &legLanderStyle
	case PhaseReturn, PhaseEntry, PhaseSplashdown:
		return &legReturnStyle
	default:
		return &trajLabelStyle
	}
}

// legLabel is the legend text for a leg group.
var legendEntries = []struct {
	style *lipgloss.Style
	text  string
}{
	{&legLaunchStyle, "launch/TLI"},
	{&legOutboundStyle, "outbound"},
	{&legLunarStyle, "lunar"},
	{&legLanderStyle, "lander"},
	{&legReturnStyle, "return"},
}

// trajectoryView draws a waypoint sequence as a vector diagram: leg lines
// between consecutive waypoints, status-derived waypoint glyphs, Earth and
// Moon anchors, and a spacecraft glyph offset from the active waypoint.
type trajectoryView struct {
	title      string
	craftGlyph func(active Waypoint) rune
}

func (v trajectoryView) render(opts Options, track waypointTrack, w, h int, extra []string) string {
	if w < 40 || h < 12 {
		return "Terminal too small for trajectory view"
	}

	// Reserve rows under the canvas for the HUD.
	hudRows := 2
	if opts.ShowLegend {
		hudRows++
	}
	hudRows += len(extra)
	canvasH := h - hudRows
	if canvasH < 8 {
		canvasH = 8
	}

	c := newCanvas(w, canvasH)

	sx := func(x float64) int { return int(x / diagramWidth * float64(w-1)) }
	sy := func(y float64) int { return int(y / diagramHeight * float64(canvasH-1)) }

	// Leg lines between consecutive waypoints, colored by the destination
	// waypoint's leg.
	wps := track.waypoints
	for i := 1; i < len(wps); i++ {
		st := legStyle(wps[i].Phase)
		x0, y0 := sx(wps[i-1].X), sy(wps[i-1].Y)
		x1, y1 := sx(wps[i].X), sy(wps[i].Y)
		drawStyledLine(c, x0, y0, x1, y1, '·', st)
	}

	// Anchors drawn after legs so they stay visible.
	c.set(sx(earthX), sy(earthY), '⊕')
	c.paint(sx(earthX), sy(earthY), &trajEarthStyle)
	c.set(sx(moonX), sy(moonY), '☾')
	c.paint(sx(moonX), sy(moonY), &trajMoonStyle)

	// Waypoint glyphs from the pure (index, activeIndex) derivation.
	for i, wp := range wps {
		x, y := sx(wp.X), sy(wp.Y)
		switch statusAt(i, track.active) {
		case waypointCompleted:
			c.set(x, y, '●')
			c.paint(x, y, &trajCompletedStyle)
		case waypointActive:
			c.set(x, y, '◉')
			c.paint(x, y, &trajActiveStyle)
			label := "◄ " + wp.Name
			c.label(x+2, y, label)
			for j := range label {
				c.paint(x+2+j, y, &trajLabelStyle)
			}
		case waypointPending:
			c.set(x, y, '○')
			c.paint(x, y, legStyle(wp.Phase))
		}
	}

	// Spacecraft glyph rides a fixed offset from the active waypoint.
	if opts.AnimateSpacecraft && len(wps) > 0 {
		active := track.activeWaypoint()
		gx, gy := sx(active.X)+2, sy(active.Y)-1
		c.set(gx, gy, v.craftGlyph(active))
		c.paint(gx, gy, &trajCraftStyle)
	}

	var b strings.Builder
	b.WriteString(c.Styled())
	b.WriteString("\n")

	// Phase info line.
	if opts.ShowPhaseInfo && len(wps) > 0 {
		active := track.activeWaypoint()
		b.WriteString(trajHUDLabelStyle.Render("Phase:"))
		b.WriteString(" ")
		b.WriteString(trajHUDValueStyle.Render(string(active.Phase)))
		b.WriteString("  ")
		b.WriteString(trajHUDLabelStyle.Render("Waypoint:"))
		b.WriteString(" ")
		b.WriteString(trajHUDValueStyle.Render(
			fmt.Sprintf("%s (%d/%d)", active.Name, track.active+1, len(wps))))
	}
	b.WriteString("\n")

	if opts.ShowLegend {
		parts := make([]string, 0, len(legendEntries))
		for _, e := range legendEntries {
			parts = append(parts, e.style.Render("·")+" "+trajHUDLabelStyle.Render(e.text))
		}
		b.WriteString(strings.Join(parts, "  "))
		b.WriteString("\n")
	}

	for _, line := range extra {
		b.WriteString(line)
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func drawStyledLine(c *canvas, x0, y0, x1, y1 int, glyph rune, style *lipgloss.Style) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		if x0 >= 0 && x0 < c.w && y0 >= 0 && y0 < c.h && c.grid[y0][x0] == ' ' {
			c.grid[y0][x0] = glyph
			c.styles[y0][x0] = style
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

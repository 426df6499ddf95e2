package orbitmap

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/artemisops/orbitdeck/internal/bus"
	"github.com/artemisops/orbitdeck/internal/feeds"
	"github.com/artemisops/orbitdeck/internal/logging"
)

// DefaultCraft is the spacecraft tracked when none is specified.
const DefaultCraft = "ISS"

// kmPerDegree converts a surface distance to degrees of arc for the
// footprint circle.
const kmPerDegree = 111.32

var (
	liveMarkerDayStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	liveMarkerNightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("67")).Bold(true)
	liveTrackStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("37"))
	liveFootprintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	liveGridStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("236"))
	liveHUDLabelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	liveHUDValueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	liveHUDDimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

type trackPoint struct {
	lat, lon float64
}

// LiveOrbitMap renders a real-time ground track for an Earth-orbiting
// spacecraft, polling the live position feed on the tracking timer.
type LiveOrbitMap struct {
	*baseMap
	client *feeds.Client
	craft  string

	// Toggle state starts from Options but flips independently at runtime.
	// Hiding the track or footprint never discards their geometry.
	showTrack     bool
	showFootprint bool
	autoCenter    bool

	trackPts []trackPoint
	crew     []feeds.CrewMember
	place    string

	centerLat, centerLon float64
	hasCenter            bool
}

// NewLiveOrbitMap creates a live ground-track renderer for a craft. An
// empty craft defaults to the ISS.
func NewLiveOrbitMap(opts Options, events *bus.Bus, logger *logging.Logger, client *feeds.Client, craft string) *LiveOrbitMap {
	if client == nil {
		client = feeds.NewClient()
	}
	if craft == "" {
		craft = DefaultCraft
	}
	base := newBaseMap(opts, events, logger)
	m := &LiveOrbitMap{
		baseMap:       base,
		client:        client,
		craft:         craft,
		showTrack:     base.opts.ShowGroundTrack,
		showFootprint: base.opts.ShowFootprint,
		autoCenter:    base.opts.AutoCenter,
	}
	base.fetch = m.FetchPosition
	return m
}

// Init implements Map: mounts the renderer, kicks off the initial position
// and crew fetches, and starts the tracking timer.
func (m *LiveOrbitMap) Init(c *Container) error {
	if err := m.baseMap.Init(c); err != nil {
		return err
	}

	go m.runFetch()
	go m.fetchCrew()

	m.StartTracking()
	return nil
}

// FetchPosition implements Map: one poll of the live feed. The primary
// source is tried first with an automatic fallback inside the feed client;
// when both fail the error callback fires, unless the renderer has been
// stopped or destroyed meanwhile, and the previously displayed state is
// left in place.
func (m *LiveOrbitMap) FetchPosition(ctx context.Context) error {
	token := m.beginFetch()

	fp, err := m.client.FetchPosition(ctx)
	if err != nil {
		if m.tokenLive(token) {
			m.emitError(err)
		}
		return err
	}

	p := Position{
		Latitude:    fp.Latitude,
		Longitude:   fp.Longitude,
		AltitudeKm:  fp.AltitudeKm,
		VelocityKmh: fp.VelocityKmh,
		FootprintKm: fp.FootprintKm,
		Visibility:  fp.Visibility,
		Timestamp:   fp.Timestamp,
	}
	applied := m.applyFetch(token, p, func(p *Position) {
		if !fp.HasExtras && m.position != nil {
			// Fallback payload carries coordinates only; keep the last
			// known altitude, velocity and footprint on screen rather
			// than clearing.
			p.AltitudeKm = m.position.AltitudeKm
			p.VelocityKmh = m.position.VelocityKmh
			p.FootprintKm = m.position.FootprintKm
			p.Visibility = m.position.Visibility
		}
		m.appendTrackLocked(*p)
		if m.autoCenter {
			m.centerLat, m.centerLon = p.Latitude, p.Longitude
			m.hasCenter = true
		}
	})
	if !applied {
		// A newer response already landed, or the renderer was stopped.
		return nil
	}

	m.resolvePlace(ctx, p.Latitude, p.Longitude)
	return nil
}

// UpdatePosition implements Map, additionally appending the fix to the
// ground-track history. The history is a strict FIFO capped at the
// configured length.
func (m *LiveOrbitMap) UpdatePosition(p Position) {
	m.baseMap.UpdatePosition(p)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendTrackLocked(p)
}

func (m *LiveOrbitMap) appendTrackLocked(p Position) {
	m.trackPts = append(m.trackPts, trackPoint{lat: p.Latitude, lon: p.Longitude})
	if len(m.trackPts) > m.opts.TrackHistoryLength {
		m.trackPts = m.trackPts[1:]
	}
}

// fetchCrew loads the crew roster once. Failure is logged and non-fatal;
// there is no automatic retry.
func (m *LiveOrbitMap) fetchCrew() {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	crew, err := m.client.FetchCrew(ctx, m.craft)
	if err != nil {
		m.logger.Warn("crew fetch failed: %v", err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.crew = crew
}

// resolvePlace reverse-geocodes the current point, best effort. On failure
// the raw coordinates become the label.
func (m *LiveOrbitMap) resolvePlace(ctx context.Context, lat, lon float64) {
	loc, err := m.client.ReverseGeocode(ctx, lat, lon)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.place = feeds.CoordinateLabel(lat, lon)
		return
	}
	m.place = loc.Place
}

// ToggleGroundTrack flips ground-track visibility and returns the new
// state. Accumulated track geometry is retained while hidden.
func (m *LiveOrbitMap) ToggleGroundTrack() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.showTrack = !m.showTrack
	return m.showTrack
}

// ToggleFootprint flips footprint-circle visibility and returns the new
// state.
func (m *LiveOrbitMap) ToggleFootprint() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.showFootprint = !m.showFootprint
	return m.showFootprint
}

// SetAutoCenter enables or disables recentering on every position update.
func (m *LiveOrbitMap) SetAutoCenter(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.autoCenter = on
}

// CenterOnCraft pans the viewport to the last known position. A no-op
// when no position has been received yet.
func (m *LiveOrbitMap) CenterOnCraft() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.position == nil {
		return false
	}
	m.centerLat, m.centerLon = m.position.Latitude, m.position.Longitude
	m.hasCenter = true
	return true
}

// Crew returns the cached crew roster.
func (m *LiveOrbitMap) Crew() []feeds.CrewMember {
	m.mu.Lock()
	defer m.mu.Unlock()
	crew := make([]feeds.CrewMember, len(m.crew))
	copy(crew, m.crew)
	return crew
}

// TrackLength returns the number of points in the ground-track history.
func (m *LiveOrbitMap) TrackLength() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.trackPts)
}

// Render implements Map: a world-wrapped equirectangular canvas with the
// ground track, footprint circle and position marker, plus the numeric
// readouts beneath.
func (m *LiveOrbitMap) Render() string {
	if !m.isInitialized() {
		return ""
	}
	w, h := m.size()
	if w < 40 || h < 12 {
		return "Terminal too small for orbit view"
	}

	m.mu.Lock()
	pos := m.position
	var posCopy *Position
	if pos != nil {
		cp := *pos
		posCopy = &cp
	}
	trackPts := make([]trackPoint, len(m.trackPts))
	copy(trackPts, m.trackPts)
	showTrack := m.showTrack
	showFootprint := m.showFootprint
	autoCenter := m.autoCenter
	centerLon := m.centerLon
	hasCenter := m.hasCenter
	place := m.place
	crew := make([]feeds.CrewMember, len(m.crew))
	copy(crew, m.crew)
	showLegend := m.opts.ShowLegend
	tracking := m.tracking
	m.mu.Unlock()

	hudRows := 3
	if showLegend {
		hudRows++
	}
	canvasH := h - hudRows
	if canvasH < 8 {
		canvasH = 8
	}

	c := newCanvas(w, canvasH)
	if !hasCenter {
		centerLon = 0
	}

	// Project with the view centered on centerLon; panning past ±180°
	// wraps instead of duplicating the world.
	xFor := func(lon float64) int {
		d := math.Mod(lon-centerLon+540, 360) - 180
		return int((d + 180) / 360 * float64(w-1))
	}
	yFor := func(lat float64) int {
		return int((90 - lat) / 180 * float64(canvasH-1))
	}

	// Sparse graticule at 30 degree intersections.
	for lat := -60.0; lat <= 60; lat += 30 {
		for lon := -180.0; lon < 180; lon += 30 {
			x, y := xFor(lon), yFor(lat)
			c.setIfEmpty(x, y, '·')
			c.paint(x, y, &liveGridStyle)
		}
	}

	if showFootprint && posCopy != nil && posCopy.FootprintKm > 0 {
		radiusDeg := posCopy.FootprintKm / 2 / kmPerDegree
		r := radiusDeg / 360 * float64(w-1)
		cx, cy := xFor(posCopy.Longitude), yFor(posCopy.Latitude)
		drawStyledCircle(c, cx, cy, r, '∘', &liveFootprintStyle)
	}

	if showTrack {
		for _, pt := range trackPts {
			x, y := xFor(pt.lon), yFor(pt.lat)
			c.wrappedSetIfEmpty(x, y, '·')
			c.paint(((x%w)+w)%w, y, &liveTrackStyle)
		}
	}

	if posCopy != nil {
		x, y := xFor(posCopy.Longitude), yFor(posCopy.Latitude)
		c.set(x, y, '◉')
		if posCopy.Visibility == "eclipsed" {
			c.paint(x, y, &liveMarkerNightStyle)
		} else {
			c.paint(x, y, &liveMarkerDayStyle)
		}
	}

	var b strings.Builder
	b.WriteString(c.Styled())
	b.WriteString("\n")

	// Numeric readouts.
	if posCopy != nil {
		b.WriteString(fmt.Sprintf("%s %s  %s %s  %s %s  %s %s",
			liveHUDLabelStyle.Render("Lat:"),
			liveHUDValueStyle.Render(fmt.Sprintf("%.2f°", posCopy.Latitude)),
			liveHUDLabelStyle.Render("Lon:"),
			liveHUDValueStyle.Render(fmt.Sprintf("%.2f°", posCopy.Longitude)),
			liveHUDLabelStyle.Render("Alt:"),
			liveHUDValueStyle.Render(fmt.Sprintf("%.0f km", posCopy.AltitudeKm)),
			liveHUDLabelStyle.Render("Vel:"),
			liveHUDValueStyle.Render(fmt.Sprintf("%.0f km/h", posCopy.VelocityKmh))))
	} else {
		b.WriteString(liveHUDDimStyle.Render("Awaiting first position fix..."))
	}
	b.WriteString("\n")

	over := place
	if over == "" && posCopy != nil {
		over = feeds.CoordinateLabel(posCopy.Latitude, posCopy.Longitude)
	}
	visibility := ""
	if posCopy != nil {
		visibility = posCopy.Visibility
	}
	b.WriteString(fmt.Sprintf("%s %s  %s %s  %s %s",
		liveHUDLabelStyle.Render("Over:"),
		liveHUDValueStyle.Render(over),
		liveHUDLabelStyle.Render("Visibility:"),
		liveHUDValueStyle.Render(visibility),
		liveHUDLabelStyle.Render("Crew:"),
		liveHUDValueStyle.Render(fmt.Sprintf("%d", len(crew)))))
	b.WriteString("\n")

	if showLegend {
		b.WriteString(fmt.Sprintf("%s%s  %s%s  %s%s  %s",
			liveHUDDimStyle.Render("Track:"),
			liveHUDValueStyle.Render(onOff(showTrack)),
			liveHUDDimStyle.Render("Footprint:"),
			liveHUDValueStyle.Render(onOff(showFootprint)),
			liveHUDDimStyle.Render("Center:"),
			liveHUDValueStyle.Render(onOff(autoCenter)),
			liveHUDDimStyle.Render(trackingLabel(tracking))))
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func drawStyledCircle(c *canvas, cx, cy int, r float64, glyph rune, style *lipgloss.Style) {
	if r < 1 {
		r = 1
	}

	steps := int(2 * math.Pi * r)
	if steps < 8 {
		steps = 8
	}
	if steps > 360 {
		steps = 360
	}

	for i := 0; i < steps; i++ {
		theta := 2 * math.Pi * float64(i) / float64(steps)
		x := cx + int(r*math.Cos(theta))
		y := cy - int(r*math.Sin(theta)*0.5)
		if x >= 0 && x < c.w && y >= 0 && y < c.h && c.grid[y][x] == ' ' {
			c.grid[y][x] = glyph
			c.styles[y][x] = style
		}
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func trackingLabel(tracking bool) string {
	if tracking {
		return "⟳ tracking"
	}
	return "∥ paused"
}

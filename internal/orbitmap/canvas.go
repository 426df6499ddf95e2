package orbitmap

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// canvas is a rune grid with an optional per-cell style layer. Each Render
// call builds a fresh canvas, so redrawing never accumulates leftover
// glyphs.
type canvas struct {
	w, h   int
	grid   [][]rune
	styles [][]*lipgloss.Style
}

func newCanvas(w, h int) *canvas {
	grid := make([][]rune, h)
	styles := make([][]*lipgloss.Style, h)
	for y := range grid {
		grid[y] = make([]rune, w)
		styles[y] = make([]*lipgloss.Style, w)
		for x := range grid[y] {
			grid[y][x] = ' '
		}
	}
	return &canvas{w: w, h: h, grid: grid, styles: styles}
}

// paint sets the style used when rendering the cell at (x, y).
func (c *canvas) paint(x, y int, style *lipgloss.Style) {
	if x < 0 || x >= c.w || y < 0 || y >= c.h {
		return
	}
	c.styles[y][x] = style
}

func (c *canvas) set(x, y int, r rune) {
	if x < 0 || x >= c.w || y < 0 || y >= c.h {
		return
	}
	c.grid[y][x] = r
}

// setIfEmpty draws only on blank cells, so background detail never
// overwrites markers.
func (c *canvas) setIfEmpty(x, y int, r rune) {
	if x < 0 || x >= c.w || y < 0 || y >= c.h {
		return
	}
	if c.grid[y][x] == ' ' {
		c.grid[y][x] = r
	}
}

// label writes text starting at (x, y), clipped to the canvas edge.
func (c *canvas) label(x, y int, text string) {
	if y < 0 || y >= c.h {
		return
	}
	for i, r := range text {
		px := x + i
		if px < 0 {
			continue
		}
		if px >= c.w {
			break
		}
		c.grid[y][px] = r
	}
}

// wrappedSetIfEmpty draws with the x coordinate wrapped around the canvas
// width, so geometry crossing the antimeridian stays continuous.
func (c *canvas) wrappedSetIfEmpty(x, y int, r rune) {
	if c.w == 0 {
		return
	}
	x = ((x % c.w) + c.w) % c.w
	c.setIfEmpty(x, y, r)
}

// String returns the unstyled grid, used by tests and plain output.
func (c *canvas) String() string {
	var b strings.Builder
	for y, row := range c.grid {
		b.WriteString(strings.TrimRight(string(row), " "))
		if y < c.h-1 {
			b.WriteRune('\n')
		}
	}
	return b.String()
}

// Styled returns the grid with per-cell styles applied.
func (c *canvas) Styled() string {
	var b strings.Builder
	for y, row := range c.grid {
		for x, ch := range row {
			if ch == ' ' {
				b.WriteRune(ch)
				continue
			}
			if st := c.styles[y][x]; st != nil {
				b.WriteString(st.Render(string(ch)))
			} else {
				b.WriteRune(ch)
			}
		}
		if y < c.h-1 {
			b.WriteRune('\n')
		}
	}
	return b.String()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

package skim

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Buffer is a 2D grid of cells representing a drawable surface. Viewports
// render their visible window into a buffer; a Screen blits buffers to the
// terminal.
type Buffer struct {
	cells  []Cell
	width  int
	height int
}

// NewBuffer creates a new buffer with the given dimensions.
func NewBuffer(width, height int) *Buffer {
	cells := make([]Cell, width*height)
	empty := EmptyCell()
	for i := range cells {
		cells[i] = empty
	}
	return &Buffer{
		cells:  cells,
		width:  width,
		height: height,
	}
}

// Width returns the buffer width.
func (b *Buffer) Width() int {
	return b.width
}

// Height returns the buffer height.
func (b *Buffer) Height() int {
	return b.height
}

// InBounds returns true if the given coordinates are within the buffer.
func (b *Buffer) InBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// index converts x,y coordinates to a slice index.
func (b *Buffer) index(x, y int) int {
	return y*b.width + x
}

// Get returns the cell at the given coordinates.
// Returns an empty cell if out of bounds.
func (b *Buffer) Get(x, y int) Cell {
	if !b.InBounds(x, y) {
		return EmptyCell()
	}
	return b.cells[b.index(x, y)]
}

// Set sets the cell at the given coordinates.
// Does nothing if out of bounds.
func (b *Buffer) Set(x, y int, c Cell) {
	if !b.InBounds(x, y) {
		return
	}
	b.cells[b.index(x, y)] = c
}

// Fill fills the entire buffer with the given cell.
func (b *Buffer) Fill(c Cell) {
	for i := range b.cells {
		b.cells[i] = c
	}
}

// Clear clears the buffer to empty cells with default style.
func (b *Buffer) Clear() {
	b.Fill(EmptyCell())
}

// FillRect fills a rectangular region with the given cell.
func (b *Buffer) FillRect(x, y, width, height int, c Cell) {
	for dy := 0; dy < height; dy++ {
		for dx := 0; dx < width; dx++ {
			b.Set(x+dx, y+dy, c)
		}
	}
}

// WriteString writes a string at the given coordinates with the given
// style. Wide runes occupy two cells; the second cell holds a zero-rune
// placeholder. Returns the number of cells advanced.
func (b *Buffer) WriteString(x, y int, s string, style Style) int {
	return b.WriteStringClipped(x, y, s, style, b.width-x)
}

// WriteStringClipped writes a string, stopping after maxWidth cells.
func (b *Buffer) WriteStringClipped(x, y int, s string, style Style, maxWidth int) int {
	written := 0
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if written+rw > maxWidth || !b.InBounds(x+written, y) {
			break
		}
		b.Set(x+written, y, Cell{Rune: r, Style: style})
		if rw == 2 {
			// placeholder for the second half of a double-width rune
			b.Set(x+written+1, y, Cell{Rune: 0, Style: style})
		}
		written += rw
	}
	return written
}

// VLine draws a vertical line of the given rune.
func (b *Buffer) VLine(x, y, length int, r rune, style Style) {
	for i := 0; i < length; i++ {
		b.Set(x, y+i, Cell{Rune: r, Style: style})
	}
}

// GetLine returns the text content of row y with trailing blanks trimmed.
// Placeholder cells behind wide runes are skipped.
func (b *Buffer) GetLine(y int) string {
	if y < 0 || y >= b.height {
		return ""
	}
	var sb strings.Builder
	for x := 0; x < b.width; x++ {
		c := b.Get(x, y)
		if c.Rune == 0 {
			continue
		}
		sb.WriteRune(c.Rune)
	}
	return strings.TrimRight(sb.String(), " ")
}

// String returns the buffer's text content, one line per row, styles
// ignored. Useful in tests.
func (b *Buffer) String() string {
	lines := make([]string, b.height)
	for y := 0; y < b.height; y++ {
		lines[y] = b.GetLine(y)
	}
	return strings.Join(lines, "\n")
}

// cellAdvance is the cursor advance for a rune; zero-width runes still
// advance the cursor by one in most terminals.
func cellAdvance(r rune) int {
	if rw := runewidth.RuneWidth(r); rw > 0 {
		return rw
	}
	return 1
}

// Resize adjusts the buffer dimensions, clearing the content.
func (b *Buffer) Resize(width, height int) {
	if width == b.width && height == b.height {
		return
	}
	cells := make([]Cell, width*height)
	empty := EmptyCell()
	for i := range cells {
		cells[i] = empty
	}
	b.cells = cells
	b.width = width
	b.height = height
}

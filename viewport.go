package skim

import (
	"math"
	"strings"

	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

// wrapItem splits one item's content into display rows: soft-wrap at word
// boundaries, then hard-wrap anything unbreakable so the measured height
// matches what the terminal will show.
func wrapItem(content string, width int) []string {
	return strings.Split(wrap.String(wordwrap.String(content, width), width), "\n")
}

// materializeWindow renders and wraps the items in [start, end], reporting
// any height changes back to the store. Returns the wrapped lines per item
// and whether anything was (re)measured.
func materializeWindow(s *Store, render func(i, width int) string, start, end, width int) ([][]string, bool) {
	out := make([][]string, 0, max(end-start+1, 0))
	var updates []SizeUpdate
	for i := start; i <= end; i++ {
		lines := wrapItem(render(i, width), width)
		out = append(out, lines)
		if h := float64(len(lines)); s.IsUnmeasuredItem(i) || s.ItemSize(i) != h {
			updates = append(updates, SizeUpdate{Index: i, Size: h})
		}
	}
	if len(updates) == 0 {
		return out, false
	}
	s.Dispatch(ItemResize{Resizes: updates})
	return out, true
}

// consumeJump delivers any pending scroll compensation. The position write
// echoes straight back as a scroll event, exactly as a real container
// would.
func consumeJump(s *Store) {
	if j := s.FlushJump(); j != 0 {
		s.Dispatch(Scroll{Offset: s.ScrollOffset() + j})
	}
}

// overscanWindow widens the store's visible range by overscan items on
// either side, clamped to the list.
func overscanWindow(s *Store, overscan int) (int, int) {
	start, end := s.VisibleRange()
	start = max(start-overscan, 0)
	end = min(end+overscan, s.ItemsLength()-1)
	return start, end
}

// Viewport renders the visible window of a virtualized list into a Buffer.
// It owns the container side of the virtualization protocol for
// Screen-based programs: scroll gestures and measurements flow into the
// Store, and each Render places items wherever the store says they belong.
type Viewport struct {
	store  *Store
	render func(i, width int) string

	// ItemStyle, if set, styles an item's rows by index.
	itemStyle func(i int) Style

	width  int
	height int

	overscan  int
	scrollbar bool
}

// NewViewport creates a virtualized viewport over count items. render
// produces the content for one item at the given width; it is called only
// for items near the window, so it may be arbitrarily expensive per item.
func NewViewport(count int, render func(i, width int) string, opts ...Option) *Viewport {
	return &Viewport{
		store:    NewStore(count, 1, opts...),
		render:   render,
		overscan: 4,
	}
}

// Store exposes the underlying store for direct queries and dispatch.
func (v *Viewport) Store() *Store {
	return v.store
}

// SetConstraints sets the viewport dimensions. Call on startup and on
// every terminal resize.
func (v *Viewport) SetConstraints(width, height int) {
	v.width = width
	v.height = height
	v.store.Dispatch(ViewportResize{Size: float64(height)})
}

// ScrollBy applies a user scroll gesture of delta rows.
func (v *Viewport) ScrollBy(delta float64) {
	v.store.Dispatch(Scroll{Offset: v.store.ScrollOffset() + delta})
}

// ScrollTo jumps straight to the given offset.
func (v *Viewport) ScrollTo(offset float64) {
	v.store.Dispatch(ManualScroll{})
	v.store.Dispatch(Scroll{Offset: offset})
}

// ScrollToIndex jumps so that item i sits at the top of the window.
func (v *Viewport) ScrollToIndex(i int) {
	i = min(max(i, 0), v.store.ItemsLength()-1)
	v.ScrollTo(v.store.ItemOffset(i))
}

// ScrollToTop jumps to the start of the content.
func (v *Viewport) ScrollToTop() {
	v.ScrollTo(0)
}

// ScrollToEnd jumps to the end of the content.
func (v *Viewport) ScrollToEnd() {
	v.ScrollTo(v.store.MaxScrollOffset())
}

// PageDown scrolls down by one window, keeping a row of context.
func (v *Viewport) PageDown() {
	v.ScrollBy(float64(max(v.height-1, 1)))
}

// PageUp scrolls up by one window, keeping a row of context.
func (v *Viewport) PageUp() {
	v.ScrollBy(-float64(max(v.height-1, 1)))
}

// HalfPageDown scrolls down by half a window.
func (v *Viewport) HalfPageDown() {
	v.ScrollBy(float64(max(v.height/2, 1)))
}

// HalfPageUp scrolls up by half a window.
func (v *Viewport) HalfPageUp() {
	v.ScrollBy(-float64(max(v.height/2, 1)))
}

// Settle signals that scrolling has quiesced. Call it when no scroll input
// has arrived for a beat; deferred compensations land here.
func (v *Viewport) Settle() {
	v.store.Dispatch(ScrollEnd{})
}

// Prepend announces k items inserted at the front. Scroll position is
// compensated so the content on screen stays put.
func (v *Viewport) Prepend(k int) {
	v.store.Dispatch(LengthChange{Length: v.store.ItemsLength() + k, Shift: true})
}

// SetCount announces a new item count, with the delta applied at the end
// of the list.
func (v *Viewport) SetCount(n int) {
	v.store.Dispatch(LengthChange{Length: n})
}

// Render draws the visible window into the buffer at x, y.
func (v *Viewport) Render(buf *Buffer, x, y int) {
	if v.width <= 0 || v.height <= 0 {
		return
	}
	consumeJump(v.store)
	start, end := overscanWindow(v.store, v.overscan)
	lines, measured := materializeWindow(v.store, v.render, start, end, v.contentWidth())
	if measured {
		// Fresh measurements may have moved the window; settle once more
		// before committing the frame.
		consumeJump(v.store)
		start, end = overscanWindow(v.store, v.overscan)
		lines, _ = materializeWindow(v.store, v.render, start, end, v.contentWidth())
	}

	base := v.store.ScrollOffset()
	for idx := start; idx <= end; idx++ {
		top := int(math.Round(v.store.ItemOffset(idx) - base))
		style := DefaultStyle()
		if v.itemStyle != nil {
			style = v.itemStyle(idx)
		}
		for j, line := range lines[idx-start] {
			if row := top + j; row >= 0 && row < v.height {
				buf.WriteStringClipped(x, y+row, line, style, v.contentWidth())
			}
		}
	}

	if v.scrollbar {
		v.renderScrollbar(buf, x, y)
	}
}

// renderScrollbar draws a simple scrollbar indicator in the last column.
func (v *Viewport) renderScrollbar(buf *Buffer, x, y int) {
	maxScroll := v.store.MaxScrollOffset()
	if maxScroll <= 0 {
		return
	}
	sbX := x + v.width - 1

	thumbSize := max(1, int(float64(v.height)*float64(v.height)/v.store.ScrollSize()))
	thumbPos := int(float64(v.height-thumbSize) * v.store.ScrollOffset() / maxScroll)

	trackStyle := DefaultStyle().Foreground(BrightBlack)
	buf.VLine(sbX, y, v.height, '│', trackStyle)

	thumbStyle := DefaultStyle().Foreground(White)
	buf.VLine(sbX, y+thumbPos, thumbSize, '┃', thumbStyle)
}

func (v *Viewport) contentWidth() int {
	if v.scrollbar {
		return max(v.width-1, 1)
	}
	return max(v.width, 1)
}

// --- Fluent API ---

// Overscan sets how many extra items are rendered on either side of the
// visible range.
func (v *Viewport) Overscan(n int) *Viewport {
	v.overscan = max(n, 0)
	return v
}

// ItemStyle sets a per-item style callback.
func (v *Viewport) ItemStyle(fn func(i int) Style) *Viewport {
	v.itemStyle = fn
	return v
}

// Scrollbar toggles the scrollbar column.
func (v *Viewport) Scrollbar(on bool) *Viewport {
	v.scrollbar = on
	return v
}

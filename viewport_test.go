package skim

import (
	"fmt"
	"strings"
	"testing"
)

func newTestViewport(count, w, h int, opts ...Option) (*Viewport, *Buffer) {
	v := NewViewport(count, func(i, width int) string {
		return fmt.Sprintf("Item %d", i)
	}, opts...)
	v.SetConstraints(w, h)
	return v, NewBuffer(w, h)
}

func TestViewportRender(t *testing.T) {
	t.Run("TopOfList", func(t *testing.T) {
		v, buf := newTestViewport(100, 20, 10)
		v.Render(buf, 0, 0)
		if got := buf.GetLine(0); got != "Item 0" {
			t.Errorf("expected 'Item 0' on row 0, got %q", got)
		}
		if got := buf.GetLine(9); got != "Item 9" {
			t.Errorf("expected 'Item 9' on row 9, got %q", got)
		}
	})

	t.Run("MeasuresVisibleItems", func(t *testing.T) {
		v, buf := newTestViewport(100, 20, 10)
		v.Render(buf, 0, 0)
		s := v.Store()
		if s.IsUnmeasuredItem(0) {
			t.Errorf("rendered item should be measured")
		}
		if s.ItemSize(0) != 1 {
			t.Errorf("expected height 1, got %v", s.ItemSize(0))
		}
		if !s.IsUnmeasuredItem(99) {
			t.Errorf("item far below the fold should stay unmeasured")
		}
	})

	t.Run("WrappedItems", func(t *testing.T) {
		v := NewViewport(10, func(i, width int) string {
			return strings.Repeat("word ", 20)
		})
		v.SetConstraints(20, 10)
		buf := NewBuffer(20, 10)
		v.Render(buf, 0, 0)
		if h := v.Store().ItemSize(0); h < 2 {
			t.Errorf("expected wrapped item taller than 1 row, got %v", h)
		}
	})

	t.Run("RenderOffset", func(t *testing.T) {
		v, _ := newTestViewport(100, 20, 5)
		buf := NewBuffer(30, 10)
		v.Render(buf, 4, 2)
		if got := buf.GetLine(2); got != "    Item 0" {
			t.Errorf("expected indented 'Item 0' on row 2, got %q", got)
		}
		if got := buf.GetLine(0); got != "" {
			t.Errorf("expected nothing above the viewport, got %q", got)
		}
	})

	t.Run("ScrollBy", func(t *testing.T) {
		v, buf := newTestViewport(100, 20, 10)
		v.Render(buf, 0, 0)
		v.ScrollBy(3)
		buf.Clear()
		v.Render(buf, 0, 0)
		if got := buf.GetLine(0); got != "Item 3" {
			t.Errorf("expected 'Item 3' on row 0, got %q", got)
		}
		if v.Store().ScrollDirection() != ScrollDown {
			t.Errorf("expected down, got %v", v.Store().ScrollDirection())
		}
		v.Settle()
		if v.Store().ScrollDirection() != ScrollIdle {
			t.Errorf("expected idle after settle, got %v", v.Store().ScrollDirection())
		}
	})

	t.Run("ScrollToEnd", func(t *testing.T) {
		v, buf := newTestViewport(100, 20, 10)
		v.Render(buf, 0, 0)
		v.ScrollToEnd()
		buf.Clear()
		v.Render(buf, 0, 0)
		if got := buf.GetLine(9); got != "Item 99" {
			t.Errorf("expected 'Item 99' on last row, got %q", got)
		}
		if v.Store().ScrollDirection() != ScrollIdle {
			t.Errorf("manual jump must not set a direction, got %v", v.Store().ScrollDirection())
		}
	})

	t.Run("ItemStyle", func(t *testing.T) {
		v, buf := newTestViewport(100, 20, 10)
		v.ItemStyle(func(i int) Style {
			if i == 0 {
				return DefaultStyle().Foreground(Red)
			}
			return DefaultStyle()
		})
		v.Render(buf, 0, 0)
		if got := buf.Get(0, 0).Style.FG; got != Red {
			t.Errorf("expected red item 0, got %v", got)
		}
		if got := buf.Get(0, 1).Style.FG; got == Red {
			t.Errorf("style leaked onto item 1")
		}
	})

	t.Run("Scrollbar", func(t *testing.T) {
		v, buf := newTestViewport(100, 20, 10)
		v.Scrollbar(true)
		v.Render(buf, 0, 0)
		if got := buf.Get(19, 0).Rune; got != '┃' && got != '│' {
			t.Errorf("expected scrollbar in last column, got %q", got)
		}
		// Thumb starts at the top when the list is unscrolled.
		if got := buf.Get(19, 0).Rune; got != '┃' {
			t.Errorf("expected thumb at top, got %q", got)
		}
	})
}

// The previous top-of-window item must keep its row across a prepend, seen
// from the actual rendered output.
func TestViewportPrependAnchor(t *testing.T) {
	v, buf := newTestViewport(100, 20, 10)
	v.Render(buf, 0, 0)
	v.ScrollToIndex(50)
	buf.Clear()
	v.Render(buf, 0, 0)
	if got := buf.GetLine(0); got != "Item 50" {
		t.Fatalf("expected 'Item 50' on row 0, got %q", got)
	}

	v.Prepend(10)
	buf.Clear()
	v.Render(buf, 0, 0)
	// The old item 50 is now item 60; same row, no visible jump.
	if got := buf.GetLine(0); got != "Item 60" {
		t.Errorf("expected 'Item 60' on row 0 after prepend, got %q", got)
	}
}

func TestViewportEmpty(t *testing.T) {
	v, buf := newTestViewport(0, 20, 10)
	v.Render(buf, 0, 0)
	if strings.TrimSpace(buf.String()) != "" {
		t.Errorf("empty viewport rendered content:\n%s", buf.String())
	}
}

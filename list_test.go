package skim

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func testRender(i, width int) string {
	return fmt.Sprintf("Item %d", i)
}

func sized(l *List, w, h int) *List {
	l.Update(tea.WindowSizeMsg{Width: w, Height: h})
	return l
}

func TestListView(t *testing.T) {
	t.Run("RendersTopOfList", func(t *testing.T) {
		l := sized(NewList(100, testRender), 40, 10)
		view := l.View()
		if !strings.Contains(view, "Item 0") {
			t.Errorf("expected 'Item 0' in view:\n%s", view)
		}
		if !strings.Contains(view, "Item 9") {
			t.Errorf("expected 'Item 9' in view:\n%s", view)
		}
		if strings.Contains(view, "Item 20") {
			t.Errorf("item far below the fold was rendered:\n%s", view)
		}
	})

	t.Run("MeasuresVisibleItems", func(t *testing.T) {
		l := sized(NewList(100, testRender), 40, 10)
		l.View()
		s := l.Store()
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

	t.Run("MeasuresWrappedItems", func(t *testing.T) {
		long := func(i, width int) string {
			return strings.Repeat("word ", 20) // wraps on any narrow screen
		}
		l := sized(NewList(100, long), 20, 10)
		l.View()
		if h := l.Store().ItemSize(0); h < 2 {
			t.Errorf("expected wrapped item taller than 1 row, got %v", h)
		}
	})

	t.Run("EmptyBeforeSizing", func(t *testing.T) {
		l := NewList(100, testRender)
		if l.View() != "" {
			t.Errorf("expected empty view before the first window size")
		}
	})

	t.Run("EmptyList", func(t *testing.T) {
		l := sized(NewList(0, testRender), 40, 10)
		if strings.Contains(l.View(), "Item") {
			t.Errorf("empty list rendered items")
		}
	})
}

func TestListScroll(t *testing.T) {
	t.Run("Wheel", func(t *testing.T) {
		l := sized(NewList(100, testRender), 40, 10)
		l.View()
		l.Update(tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
		if got := l.Store().ScrollOffset(); got != 3 {
			t.Errorf("expected offset 3 after one notch, got %v", got)
		}
		if l.Store().ScrollDirection() != ScrollDown {
			t.Errorf("expected down, got %v", l.Store().ScrollDirection())
		}
		view := l.View()
		if !strings.Contains(view, "Item 3") {
			t.Errorf("expected 'Item 3' at top:\n%s", view)
		}
	})

	t.Run("SettleEmitsScrollEnd", func(t *testing.T) {
		l := sized(NewList(100, testRender), 40, 10)
		_, cmd := l.Update(tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
		if cmd == nil {
			t.Fatalf("wheel should arm the settle timer")
		}
		l.Update(scrollSettleMsg{seq: l.scrollSeq})
		if l.Store().ScrollDirection() != ScrollIdle {
			t.Errorf("expected idle after settle, got %v", l.Store().ScrollDirection())
		}
	})

	t.Run("StaleSettleIgnored", func(t *testing.T) {
		l := sized(NewList(100, testRender), 40, 10)
		l.Update(tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
		stale := l.scrollSeq
		l.Update(tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
		l.Update(scrollSettleMsg{seq: stale})
		if l.Store().ScrollDirection() == ScrollIdle {
			t.Errorf("stale settle tick ended an active scroll")
		}
	})

	t.Run("ScrollToIndex", func(t *testing.T) {
		l := sized(NewList(100, testRender), 40, 10)
		l.View()
		l.ScrollToIndex(50)
		view := l.View()
		if !strings.Contains(view, "Item 50") {
			t.Errorf("expected 'Item 50' visible:\n%s", view)
		}
		if strings.Contains(view, "Item 0\n") {
			t.Errorf("top of list still visible after jump:\n%s", view)
		}
	})

	t.Run("KeyboardEnd", func(t *testing.T) {
		l := sized(NewList(100, testRender), 40, 10)
		l.View()
		l.Update(tea.KeyMsg{Type: tea.KeyEnd})
		view := l.View()
		if !strings.Contains(view, "Item 99") {
			t.Errorf("expected last item visible:\n%s", view)
		}
	})
}

func TestListMutation(t *testing.T) {
	t.Run("SetCount", func(t *testing.T) {
		l := sized(NewList(10, testRender), 40, 10)
		l.SetCount(20)
		if got := l.Store().ItemsLength(); got != 20 {
			t.Errorf("expected 20 items, got %d", got)
		}
	})

	t.Run("PrependHoldsAnchor", func(t *testing.T) {
		l := sized(NewList(100, testRender), 40, 30)
		l.View()
		l.ScrollToIndex(50)
		l.View()

		l.Prepend(10)
		view := l.View()
		// The old item 50 is now item 60 and must still head the window.
		if !strings.Contains(view, "Item 60") {
			t.Errorf("expected 'Item 60' visible after prepend:\n%s", view)
		}
		if got := l.Store().ItemsLength(); got != 110 {
			t.Errorf("expected 110 items, got %d", got)
		}
	})
}

func TestListSmoothScroll(t *testing.T) {
	l := sized(NewList(1000, testRender), 40, 10)
	l.View()
	cmd := l.SmoothScrollTo(400)
	if cmd == nil {
		t.Fatalf("smooth scroll should arm the animation timer")
	}
	if !l.Store().HasUnmeasuredItemsInSmoothScrollRange() {
		t.Errorf("target range should report unmeasured items")
	}

	// Drive the animation to completion.
	msg := smoothStepMsg{target: 400, seq: l.smoothSeq}
	for i := 0; i < 100; i++ {
		_, cmd = l.Update(msg)
		if cmd == nil {
			break
		}
	}
	if got := l.Store().ScrollOffset(); got != 400 {
		t.Errorf("expected offset 400 after animation, got %v", got)
	}
	if l.Store().ScrollDirection() != ScrollIdle {
		t.Errorf("expected idle after animation, got %v", l.Store().ScrollDirection())
	}
	if l.Store().HasUnmeasuredItemsInSmoothScrollRange() {
		t.Errorf("scroll end should clear the smooth-scroll range")
	}
}

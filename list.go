package skim

import (
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// scrollSettleDelay is how long after the last scroll the container is
// considered quiescent.
const scrollSettleDelay = 150 * time.Millisecond

// smoothFrame is the tick interval of a smooth programmatic scroll.
const smoothFrame = 16 * time.Millisecond

type scrollSettleMsg struct {
	seq int
}

type smoothStepMsg struct {
	target float64
	seq    int
}

// List is a bubbletea component that renders only the visible window of a
// large item sequence. It owns the container side of the virtualization
// protocol: it feeds scroll, resize, and measurement observations into a
// Store and lays items out wherever the store says they belong.
//
// render produces the content of one item at a given width. It is called
// only for items near the viewport, so it may be arbitrarily expensive per
// item. Multi-line output is fine; the list measures it.
type List struct {
	store  *Store
	render func(i, width int) string

	width  int
	height int

	overscan  int
	wheelStep float64
	frame     lipgloss.Style

	scrollSeq int // quiescence generation; stale settle ticks are ignored
	smoothSeq int // smooth-scroll generation; cancels superseded animations
}

// NewList creates a virtualized list over count items.
func NewList(count int, render func(i, width int) string, opts ...Option) *List {
	return &List{
		store:     NewStore(count, 1, opts...),
		render:    render,
		overscan:  4,
		wheelStep: 3,
	}
}

// Store exposes the underlying store for direct queries and dispatch.
func (l *List) Store() *Store {
	return l.store
}

// Init implements tea.Model.
func (l *List) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model. Window sizes, mouse wheel, and navigation
// keys become store actions; everything else is ignored.
func (l *List) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		l.width, l.height = msg.Width, msg.Height
		top := float64(l.frame.GetPaddingTop() + l.frame.GetBorderTopSize())
		bottom := float64(l.frame.GetPaddingBottom() + l.frame.GetBorderBottomSize())
		l.store.Dispatch(ViewportResize{
			Size:        float64(msg.Height),
			StartSpacer: top,
			EndSpacer:   bottom,
		})

	case tea.MouseMsg:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			return l, l.wheel(-l.wheelStep)
		case tea.MouseButtonWheelDown:
			return l, l.wheel(l.wheelStep)
		}

	case tea.KeyMsg:
		page := float64(max(l.contentHeight()-1, 1))
		switch msg.String() {
		case "up", "k":
			return l, l.wheel(-1)
		case "down", "j":
			return l, l.wheel(1)
		case "pgup", "b":
			return l, l.wheel(-page)
		case "pgdown", "f", " ":
			return l, l.wheel(page)
		case "home", "g":
			return l, l.ScrollTo(0)
		case "end", "G":
			return l, l.ScrollTo(l.store.MaxScrollOffset())
		}

	case scrollSettleMsg:
		if msg.seq == l.scrollSeq {
			l.store.Dispatch(ScrollEnd{})
		}

	case smoothStepMsg:
		if msg.seq != l.smoothSeq {
			break
		}
		cur := l.store.ScrollOffset()
		remaining := msg.target - cur
		if math.Abs(remaining) <= 1 {
			l.store.Dispatch(Scroll{Offset: msg.target})
			l.store.Dispatch(ScrollEnd{})
			break
		}
		step := remaining / 4
		if math.Abs(step) < 1 {
			step = math.Copysign(1, remaining)
		}
		l.store.Dispatch(Scroll{Offset: cur + step})
		return l, tea.Tick(smoothFrame, func(time.Time) tea.Msg { return msg })
	}
	return l, nil
}

// wheel applies a user scroll gesture and (re)arms the quiescence timer.
func (l *List) wheel(delta float64) tea.Cmd {
	l.store.Dispatch(Scroll{Offset: l.store.ScrollOffset() + delta})
	return l.settle()
}

func (l *List) settle() tea.Cmd {
	l.scrollSeq++
	seq := l.scrollSeq
	return tea.Tick(scrollSettleDelay, func(time.Time) tea.Msg { return scrollSettleMsg{seq} })
}

// ScrollTo jumps straight to the given offset.
func (l *List) ScrollTo(offset float64) tea.Cmd {
	l.store.Dispatch(ManualScroll{})
	l.store.Dispatch(Scroll{Offset: offset})
	return l.settle()
}

// ScrollBy jumps by delta from the current position.
func (l *List) ScrollBy(delta float64) tea.Cmd {
	return l.ScrollTo(l.store.ScrollOffset() + delta)
}

// ScrollToIndex jumps so that item i sits at the top of the viewport.
func (l *List) ScrollToIndex(i int) tea.Cmd {
	i = min(max(i, 0), l.store.ItemsLength()-1)
	return l.ScrollTo(l.store.ItemOffset(i))
}

// SmoothScrollTo animates toward the given offset. Items between here and
// there stay mounted for the duration of the animation.
func (l *List) SmoothScrollTo(offset float64) tea.Cmd {
	target := min(max(offset, 0), l.store.MaxScrollOffset())
	l.store.Dispatch(BeforeSmoothScroll{Target: target})
	l.store.Dispatch(ManualScroll{})
	l.smoothSeq++
	msg := smoothStepMsg{target: target, seq: l.smoothSeq}
	return tea.Tick(smoothFrame, func(time.Time) tea.Msg { return msg })
}

// SetCount announces a new item count, with the delta applied at the end of
// the list.
func (l *List) SetCount(n int) {
	l.store.Dispatch(LengthChange{Length: n})
}

// Prepend announces k items inserted at the front. Scroll position is
// compensated so the content on screen stays put.
func (l *List) Prepend(k int) {
	l.store.Dispatch(LengthChange{Length: l.store.ItemsLength() + k, Shift: true})
}

// View implements tea.Model.
func (l *List) View() string {
	if l.width <= 0 || l.height <= 0 {
		return ""
	}
	consumeJump(l.store)
	start, end := overscanWindow(l.store, l.overscan)
	lines, measured := materializeWindow(l.store, l.render, start, end, l.contentWidth())
	if measured {
		// Fresh measurements may have moved the window; settle once more
		// before committing the frame.
		consumeJump(l.store)
		start, end = overscanWindow(l.store, l.overscan)
		lines, _ = materializeWindow(l.store, l.render, start, end, l.contentWidth())
	}

	rows := make([]string, l.contentHeight())
	base := l.store.ScrollOffset()
	for idx := start; idx <= end; idx++ {
		top := int(math.Round(l.store.ItemOffset(idx) - base))
		for j, line := range lines[idx-start] {
			if y := top + j; y >= 0 && y < len(rows) {
				rows[y] = line
			}
		}
	}
	return l.frame.Render(strings.Join(rows, "\n"))
}

func (l *List) contentWidth() int {
	return max(l.width-l.frame.GetHorizontalFrameSize(), 1)
}

func (l *List) contentHeight() int {
	return max(l.height-l.frame.GetVerticalFrameSize(), 1)
}

// --- Fluent API ---

// Overscan sets how many extra items are rendered on either side of the
// visible range.
func (l *List) Overscan(n int) *List {
	l.overscan = max(n, 0)
	return l
}

// WheelStep sets how many rows one wheel notch scrolls.
func (l *List) WheelStep(rows float64) *List {
	l.wheelStep = rows
	return l
}

// Frame sets the style drawn around the list. Its padding and borders
// become the viewport's non-scrollable spacers.
func (l *List) Frame(s lipgloss.Style) *List {
	l.frame = s
	return l
}

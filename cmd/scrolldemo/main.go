package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	. "github.com/kungfusheep/skim"
)

// renderItem produces deliberately uneven content: section headers, short
// rows, and long prose that wraps, so item heights vary and measurement
// actually matters.
func renderItem(i, width int) string {
	switch i % 10 {
	case 0:
		return fmt.Sprintf("═══ Section %d ═══", i/10+1)
	case 3:
		return fmt.Sprintf("Row %d: %s", i,
			"Lorem ipsum dolor sit amet, consectetur adipiscing elit, sed do eiusmod tempor incididunt ut labore et dolore magna aliqua.")
	case 6:
		return fmt.Sprintf("Row %d: %s", i, strings.Repeat("▓", 10+i%40))
	case 9:
		return fmt.Sprintf("Row %d: ────────────────", i)
	default:
		return fmt.Sprintf("Row %d: the quick brown fox jumps over the lazy dog", i)
	}
}

func itemStyle(i int) Style {
	switch i % 10 {
	case 0:
		return DefaultStyle().Foreground(Magenta).Bold()
	case 6:
		colors := []Color{Red, Green, Yellow, Blue, Cyan}
		return DefaultStyle().Foreground(colors[i%len(colors)])
	case 9:
		return DefaultStyle().Foreground(BrightBlack)
	default:
		return DefaultStyle()
	}
}

// settleDelay is how long after the last keystroke scrolling counts as
// quiesced.
const settleDelay = 150 * time.Millisecond

func main() {
	screen, err := NewScreen(nil)
	if err != nil {
		log.Fatal(err)
	}
	if err := screen.EnterRawMode(); err != nil {
		log.Fatal(err)
	}
	defer screen.ExitRawMode()

	vp := NewViewport(100_000, renderItem, WithInitialItemCount(screen.Height())).
		Overscan(8).
		Scrollbar(true).
		ItemStyle(itemStyle)
	vp.SetConstraints(screen.Width(), screen.Height()-1)

	statusStyle := DefaultStyle().Foreground(Black).Background(White)
	draw := func() {
		buf := screen.Buffer()
		buf.Clear()
		vp.Render(buf, 0, 0)

		s := vp.Store()
		start, end := s.VisibleRange()
		status := fmt.Sprintf(" %d items │ offset %.0f/%.0f │ range [%d,%d] │ %s │ jumps %d │ j/k d/u f/b g/G q ",
			s.ItemsLength(), s.ScrollOffset(), s.MaxScrollOffset(), start, end, s.ScrollDirection(), s.JumpCount())
		buf.FillRect(0, screen.Height()-1, screen.Width(), 1, NewCell(' ', statusStyle))
		buf.WriteStringClipped(0, screen.Height()-1, status, statusStyle, screen.Width())
		screen.Flush()
	}

	keys := make(chan byte, 64)
	go func() {
		in := make([]byte, 64)
		for {
			n, err := os.Stdin.Read(in)
			if err != nil {
				close(keys)
				return
			}
			for _, b := range in[:n] {
				keys <- b
			}
		}
	}()

	settle := time.NewTimer(settleDelay)
	esc := 0 // escape sequence state: 1 after ESC, 2 after ESC [
	draw()

	for {
		select {
		case b, ok := <-keys:
			if !ok {
				return
			}
			// Arrow keys arrive as ESC [ A/B.
			switch esc {
			case 1:
				if b == '[' {
					esc = 2
				} else {
					esc = 0
				}
				continue
			case 2:
				esc = 0
				switch b {
				case 'A':
					vp.ScrollBy(-1)
				case 'B':
					vp.ScrollBy(1)
				default:
					continue
				}
				settle.Reset(settleDelay)
				draw()
				continue
			}

			switch b {
			case 'q', 3: // q or ctrl-c
				return
			case 0x1b:
				esc = 1
				continue
			case 'j':
				vp.ScrollBy(1)
			case 'k':
				vp.ScrollBy(-1)
			case 'd':
				vp.HalfPageDown()
			case 'u':
				vp.HalfPageUp()
			case 'f', ' ':
				vp.PageDown()
			case 'b':
				vp.PageUp()
			case 'g':
				vp.ScrollToTop()
			case 'G':
				vp.ScrollToEnd()
			default:
				continue
			}
			settle.Reset(settleDelay)
			draw()

		case <-settle.C:
			vp.Settle()
			draw()

		case size := <-screen.ResizeChan():
			vp.SetConstraints(size.Width, size.Height-1)
			draw()
		}
	}
}

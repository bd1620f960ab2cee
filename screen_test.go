package skim

import (
	"bytes"
	"strings"
	"testing"
)

func newTestScreen(w, h int) (*Screen, *bytes.Buffer) {
	var out bytes.Buffer
	s := &Screen{
		width:     w,
		height:    h,
		back:      NewBuffer(w, h),
		front:     NewBuffer(w, h),
		writer:    &out,
		lastStyle: DefaultStyle(),
	}
	return s, &out
}

func TestScreenFlush(t *testing.T) {
	t.Run("WritesChangedCells", func(t *testing.T) {
		s, out := newTestScreen(20, 5)
		s.back.WriteString(0, 0, "hello", DefaultStyle())
		s.Flush()
		if !strings.Contains(out.String(), "hello") {
			t.Errorf("expected 'hello' in output, got %q", out.String())
		}
		if !strings.Contains(out.String(), "\x1b[1;1H") {
			t.Errorf("expected cursor positioning, got %q", out.String())
		}
	})

	t.Run("SecondFlushIsQuiet", func(t *testing.T) {
		s, out := newTestScreen(20, 5)
		s.back.WriteString(0, 0, "hello", DefaultStyle())
		s.Flush()
		out.Reset()
		s.Flush()
		if out.Len() != 0 {
			t.Errorf("unchanged frame should write nothing, got %q", out.String())
		}
	})

	t.Run("DiffsAgainstFront", func(t *testing.T) {
		s, out := newTestScreen(20, 5)
		s.back.WriteString(0, 0, "hello", DefaultStyle())
		s.Flush()
		out.Reset()

		s.back.WriteString(0, 0, "hellx", DefaultStyle())
		s.Flush()
		output := out.String()
		if !strings.Contains(output, "x") {
			t.Errorf("expected changed cell in output, got %q", output)
		}
		if strings.Contains(output, "hell") {
			t.Errorf("unchanged cells were rewritten: %q", output)
		}
	})

	t.Run("EmitsStyles", func(t *testing.T) {
		s, out := newTestScreen(20, 5)
		s.back.WriteString(0, 0, "x", DefaultStyle().Foreground(Red).Bold())
		s.Flush()
		output := out.String()
		if !strings.Contains(output, ";1") {
			t.Errorf("expected bold attribute, got %q", output)
		}
		if !strings.Contains(output, ";31") {
			t.Errorf("expected red foreground, got %q", output)
		}
		if !strings.HasSuffix(output, "\x1b[0m") {
			t.Errorf("expected trailing style reset, got %q", output)
		}
	})

	t.Run("SkipsWideRunePlaceholders", func(t *testing.T) {
		s, out := newTestScreen(20, 5)
		s.back.WriteString(0, 0, "世", DefaultStyle())
		s.Flush()
		if !strings.Contains(out.String(), "世") {
			t.Errorf("expected wide rune in output, got %q", out.String())
		}
		out.Reset()
		s.Flush()
		if out.Len() != 0 {
			t.Errorf("placeholder cell dirtied the second flush: %q", out.String())
		}
	})

	t.Run("FlushFull", func(t *testing.T) {
		s, out := newTestScreen(10, 2)
		s.back.WriteString(0, 0, "top", DefaultStyle())
		s.back.WriteString(0, 1, "bottom", DefaultStyle())
		s.FlushFull()
		output := out.String()
		if !strings.Contains(output, "\x1b[2J") {
			t.Errorf("expected clear screen, got %q", output)
		}
		if !strings.Contains(output, "top") || !strings.Contains(output, "bottom") {
			t.Errorf("expected full content, got %q", output)
		}
	})
}

func TestScreenFlushViewport(t *testing.T) {
	// End to end: a viewport rendered through the screen's back buffer
	// reaches the writer, and a scroll only rewrites what moved.
	s, out := newTestScreen(20, 5)
	v := NewViewport(100, func(i, width int) string {
		return strings.Repeat("x", 5)
	})
	v.SetConstraints(20, 5)

	v.Render(s.back, 0, 0)
	s.Flush()
	if !strings.Contains(out.String(), "xxxxx") {
		t.Fatalf("expected viewport content in output, got %q", out.String())
	}

	out.Reset()
	v.ScrollBy(1)
	s.back.Clear()
	v.Render(s.back, 0, 0)
	s.Flush()
	// All rows show identical content, so the diff should be empty.
	if out.Len() != 0 {
		t.Errorf("identical frame after scroll wrote %q", out.String())
	}
}

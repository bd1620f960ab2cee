package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	. "github.com/kungfusheep/skim"
)

var (
	youStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	themStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

const pageSize = 20

// olderPage fabricates a page of history. generation counts how many pages
// back we've reached.
func olderPage(generation int) []string {
	msgs := make([]string, pageSize)
	for i := range msgs {
		n := generation*pageSize + (pageSize - i)
		msgs[i] = fmt.Sprintf("them: message %d pages back — %s", n,
			strings.Repeat("history repeats itself. ", 1+i%4))
	}
	return msgs
}

type loadedMsg struct {
	page []string
}

type feed struct {
	list    *List
	input   textinput.Model
	spin    spinner.Model
	msgs    *[]string
	pages   int
	loading bool
	width   int
	height  int
}

func (f *feed) Init() tea.Cmd {
	return textinput.Blink
}

func (f *feed) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		f.width, f.height = msg.Width, msg.Height
		f.input.Width = msg.Width - 4
		// Two rows reserved: status above, composer below.
		_, cmd := f.list.Update(tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 2})
		return f, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			return f, tea.Quit
		case "enter":
			if v := strings.TrimSpace(f.input.Value()); v != "" {
				*f.msgs = append(*f.msgs, "you: "+v)
				f.input.SetValue("")
				f.list.SetCount(len(*f.msgs))
				return f, f.list.ScrollTo(f.list.Store().MaxScrollOffset())
			}
			return f, nil
		}
		var cmd tea.Cmd
		f.input, cmd = f.input.Update(msg)
		return f, cmd

	case tea.MouseMsg:
		_, cmd := f.list.Update(msg)
		if f.atTop() && !f.loading {
			f.loading = true
			return f, tea.Batch(cmd, f.spin.Tick, f.fetchOlder())
		}
		return f, cmd

	case loadedMsg:
		*f.msgs = append(msg.page, *f.msgs...)
		f.pages++
		f.loading = false
		f.list.Prepend(len(msg.page))
		return f, nil

	case spinner.TickMsg:
		if !f.loading {
			return f, nil
		}
		var cmd tea.Cmd
		f.spin, cmd = f.spin.Update(msg)
		return f, cmd
	}

	_, cmd := f.list.Update(msg)
	return f, cmd
}

// atTop reports whether the view has reached the oldest loaded message.
func (f *feed) atTop() bool {
	return f.list.Store().ScrollOffset() < 2
}

// fetchOlder pretends to hit the network for the next page of history.
func (f *feed) fetchOlder() tea.Cmd {
	page := f.pages
	return tea.Tick(600*time.Millisecond, func(time.Time) tea.Msg {
		return loadedMsg{page: olderPage(page)}
	})
}

func (f *feed) View() string {
	status := fmt.Sprintf(" %d messages │ scroll up for history", len(*f.msgs))
	if f.loading {
		status = " " + f.spin.View() + " loading history…"
	}
	status = runewidth.Truncate(status, f.width, "…")
	return statusStyle.Render(status) + "\n" + f.list.View() + "\n" + f.input.View()
}

func main() {
	msgs := []string{
		"them: hey, this thread goes back years",
		"you: scroll up, it keeps loading",
		"them: the view never jumps while it does",
	}

	render := func(i, width int) string {
		m := msgs[i]
		if author, rest, ok := strings.Cut(m, ": "); ok {
			style := themStyle
			if author == "you" {
				style = youStyle
			}
			return style.Render(author) + ": " + rest
		}
		return m
	}

	input := textinput.New()
	input.Placeholder = "Send a message"
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	_, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		height = 24
	}

	f := &feed{
		list:  NewList(len(msgs), render, WithReverse(), WithInitialItemCount(height-2)),
		input: input,
		spin:  spin,
		msgs:  &msgs,
	}

	p := tea.NewProgram(f, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
}

package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// LogFeed is the append-only status log shown at the bottom of the panel.
type LogFeed struct {
	entries []string
	vp      viewport.Model
}

// NewLogFeed creates an empty feed.
func NewLogFeed() LogFeed {
	return LogFeed{vp: viewport.New(40, 5)}
}

// Append adds an entry and scrolls to it.
func (f *LogFeed) Append(entry string) {
	f.entries = append(f.entries, entry)
	f.render()
	f.vp.GotoBottom()
}

// Entries returns a copy of all entries in order.
func (f LogFeed) Entries() []string {
	return append([]string(nil), f.entries...)
}

// Len returns the number of entries.
func (f LogFeed) Len() int { return len(f.entries) }

// SetSize resizes the scroll area.
func (f *LogFeed) SetSize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	atBottom := f.vp.AtBottom()
	f.vp.Width = width
	f.vp.Height = height
	f.render()
	if atBottom {
		f.vp.GotoBottom()
	}
}

func (f *LogFeed) render() {
	wrap := lipgloss.NewStyle().Width(f.vp.Width)
	lines := make([]string, len(f.entries))
	for i, e := range f.entries {
		lines[i] = wrap.Render(e)
	}
	f.vp.SetContent(strings.Join(lines, "\n"))
}

// Update scrolls the feed.
func (f LogFeed) Update(msg tea.Msg) (LogFeed, tea.Cmd) {
	var cmd tea.Cmd
	f.vp, cmd = f.vp.Update(msg)
	return f, cmd
}

// View renders the visible part of the feed.
func (f LogFeed) View() string {
	return f.vp.View()
}

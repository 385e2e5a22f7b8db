package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Tab is one focusable section of the panel.
type Tab struct {
	Title string
	Busy  bool
}

var (
	sectionStyle = lipgloss.NewStyle().Padding(0, 2)

	activeSectionStyle = sectionStyle.
				Bold(true).
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(lipgloss.Color("#7D56F4"))

	idleSectionStyle = sectionStyle.
				Foreground(lipgloss.Color("#888888")).
				Background(lipgloss.Color("#1A1A1A"))

	sectionBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#0F0F0F"))
)

func (t Tab) label() string {
	if t.Busy {
		return "● " + t.Title
	}
	return "○ " + t.Title
}

// RenderTabBar renders the section bar across width. A section with a
// request in flight is marked ●.
func RenderTabBar(tabs []Tab, active int, width int) string {
	parts := make([]string, len(tabs))
	for i, tab := range tabs {
		style := idleSectionStyle
		if i == active {
			style = activeSectionStyle
		}
		parts[i] = style.Render(tab.label())
	}

	bar := strings.Join(parts, " ")
	if gap := width - lipgloss.Width(bar); gap > 0 {
		bar += strings.Repeat(" ", gap)
	}
	return sectionBarStyle.Width(width).Render(bar)
}

// TabTitle appends a count to a section name when there is something to count.
func TabTitle(name string, count int) string {
	if count <= 0 {
		return name
	}
	return fmt.Sprintf("%s (%d)", name, count)
}

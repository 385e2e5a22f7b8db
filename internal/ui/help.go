package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var helpContent = `
  Sections
  Tab / Shift+Tab   Cycle Target → Local → Remote → Log
  Ctrl+S            Send the selected local file
  Ctrl+R            Refresh the remote file list
  ?                 Toggle this help overlay
  Ctrl+C            Quit

  Target
  ↑/↓               Switch between address and port
  Enter             Reconnect now (edits also refresh after a short pause)

  Local
  ↑/↓  j/k          Move
  Enter / l / →     Open directory or select file
  Backspace / h / ← Parent directory

  Remote
  ↑/↓  j/k          Move
  g / G             First / last file
  Enter / d         Open the file's download URL in the browser

  Log
  ↑/↓  PgUp/PgDn    Scroll
`

var helpStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("#7D56F4")).
	Padding(1, 3).
	Bold(false)

// RenderHelp returns the help overlay view.
func RenderHelp(width, height int) string {
	box := helpStyle.Render(helpContent)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

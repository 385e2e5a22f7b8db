package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RemoteList is the ordered list of file names known on the server. It is
// replaced by a successful refresh and appended to after an upload.
// Duplicates are kept.
type RemoteList struct {
	files  []string
	cursor int
}

// Replace swaps in a freshly fetched list.
func (l *RemoteList) Replace(files []string) {
	l.files = append([]string(nil), files...)
	if l.cursor >= len(l.files) {
		l.cursor = 0
	}
}

// Append adds name to the end without deduplicating.
func (l *RemoteList) Append(name string) {
	l.files = append(l.files, name)
}

// Files returns a copy of the list.
func (l RemoteList) Files() []string {
	return append([]string(nil), l.files...)
}

// Len returns the number of entries.
func (l RemoteList) Len() int { return len(l.files) }

// Selected returns the entry under the cursor.
func (l RemoteList) Selected() (string, bool) {
	if len(l.files) == 0 {
		return "", false
	}
	return l.files[l.cursor], true
}

func (l *RemoteList) up() {
	if l.cursor > 0 {
		l.cursor--
	}
}

func (l *RemoteList) down() {
	if l.cursor < len(l.files)-1 {
		l.cursor++
	}
}

func (l *RemoteList) top() { l.cursor = 0 }

func (l *RemoteList) bottom() {
	if len(l.files) > 0 {
		l.cursor = len(l.files) - 1
	}
}

var (
	fileSelectedStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#7D56F4")).
				Foreground(lipgloss.Color("#FFFFFF"))

	fileStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CCCCCC"))

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#555555")).
			Italic(true)
)

// View renders up to height rows, scrolled so the cursor stays visible.
func (l RemoteList) View(width, height int, focused bool) string {
	if len(l.files) == 0 {
		return emptyStyle.Render("No files on the server yet.")
	}
	if height < 1 {
		height = 1
	}
	start := 0
	if l.cursor >= height {
		start = l.cursor - height + 1
	}
	var rows []string
	for i := start; i < len(l.files) && i < start+height; i++ {
		line := fmt.Sprintf("▪ %s", truncate(l.files[i], width-4))
		if i == l.cursor && focused {
			line = fileSelectedStyle.Width(width).Render(line)
		} else {
			line = fileStyle.Render(line)
		}
		rows = append(rows, line)
	}
	return strings.Join(rows, "\n")
}

func formatSize(size int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)
	switch {
	case size >= GB:
		return fmt.Sprintf("%.1fG", float64(size)/GB)
	case size >= MB:
		return fmt.Sprintf("%.1fM", float64(size)/MB)
	case size >= KB:
		return fmt.Sprintf("%.1fK", float64(size)/KB)
	default:
		return fmt.Sprintf("%dB", size)
	}
}

func truncate(s string, n int) string {
	if n < 2 {
		n = 2
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func truncatePath(s string, n int) string {
	r := []rune(s)
	if n < 2 || len(r) <= n {
		return s
	}
	return "…" + string(r[len(r)-n+1:])
}

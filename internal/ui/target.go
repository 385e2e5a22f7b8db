package ui

import (
	"strconv"
	"strings"
	"unicode"

	"filexfer/internal/transfer"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type targetField int

const (
	fieldHost targetField = iota
	fieldPort
	fieldCount
)

// TargetForm edits the connection target. The port input only accepts digits.
type TargetForm struct {
	inputs  []textinput.Model
	focused targetField
}

// NewTargetForm creates a form pre-filled with host and port.
func NewTargetForm(host string, port int) TargetForm {
	inputs := make([]textinput.Model, fieldCount)
	placeholders := []string{"Server address", "Port"}
	for i := range inputs {
		t := textinput.New()
		t.Placeholder = placeholders[i]
		t.CharLimit = 256
		t.Prompt = ""
		inputs[i] = t
	}
	inputs[fieldPort].CharLimit = 5
	inputs[fieldPort].Width = 6
	inputs[fieldHost].SetValue(host)
	inputs[fieldPort].SetValue(strconv.Itoa(port))
	return TargetForm{inputs: inputs, focused: fieldHost}
}

// Target returns the current connection target. An empty or unparsable
// port yields port 0, which makes the next request fail.
func (f TargetForm) Target() transfer.Target {
	port, _ := strconv.Atoi(f.inputs[fieldPort].Value())
	return transfer.Target{
		Host: strings.TrimSpace(f.inputs[fieldHost].Value()),
		Port: port,
	}
}

// SetTarget overwrites both inputs.
func (f *TargetForm) SetTarget(host string, port int) {
	f.inputs[fieldHost].SetValue(host)
	f.inputs[fieldPort].SetValue(strconv.Itoa(port))
}

// Focus gives keyboard focus to the current field.
func (f *TargetForm) Focus() tea.Cmd {
	return f.inputs[f.focused].Focus()
}

// Blur removes keyboard focus from all fields.
func (f *TargetForm) Blur() {
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
}

// switchField toggles between host and port.
func (f *TargetForm) switchField() tea.Cmd {
	f.inputs[f.focused].Blur()
	f.focused = (f.focused + 1) % fieldCount
	return f.inputs[f.focused].Focus()
}

// Update forwards msg to the focused input and reports whether the target
// changed.
func (f TargetForm) Update(msg tea.Msg) (TargetForm, tea.Cmd, bool) {
	if k, ok := msg.(tea.KeyMsg); ok && f.focused == fieldPort && k.Type == tea.KeyRunes {
		for _, r := range k.Runes {
			if !unicode.IsDigit(r) {
				return f, nil, false
			}
		}
	}
	before := f.inputs[f.focused].Value()
	var cmd tea.Cmd
	f.inputs[f.focused], cmd = f.inputs[f.focused].Update(msg)
	return f, cmd, f.inputs[f.focused].Value() != before
}

var labelStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#888888")).
	Width(9)

// View renders the two inputs on one line.
func (f TargetForm) View() string {
	return lipgloss.JoinHorizontal(lipgloss.Center,
		labelStyle.Render("Address:"), f.inputs[fieldHost].View(),
		"  ",
		labelStyle.Width(6).Render("Port:"), f.inputs[fieldPort].View(),
	)
}

package main

import (
	"os"

	"filexfer/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
)

// AppModel is the root application model. It owns the help overlay and
// hands everything else to the panel.
type AppModel struct {
	panel    ui.Panel
	width    int
	height   int
	showHelp bool
}

func newAppModel(panel ui.Panel) AppModel {
	return AppModel{panel: panel}
}

func (m AppModel) Init() tea.Cmd {
	return m.panel.Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.panel.SetDimensions(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		log.Debug().Str("key", msg.String()).Bool("help", m.showHelp).Msg("key")

		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "?":
			// The target form takes "?" as input.
			if m.showHelp || !m.panel.CapturesText() {
				m.showHelp = !m.showHelp
				return m, nil
			}
		case "esc":
			if m.showHelp {
				m.showHelp = false
				return m, nil
			}
		}

		if m.showHelp {
			return m, nil
		}
	}

	// Results of in-flight requests still reach the panel while help is open.
	var cmd tea.Cmd
	m.panel, cmd = m.panel.Update(msg)
	return m, cmd
}

func (m AppModel) View() string {
	if m.showHelp {
		return ui.RenderHelp(m.width, m.height)
	}
	return m.panel.View()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"filexfer/internal/transfer"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
)

// Log feed messages.
const (
	msgFetchFailed = "Error fetching file list."
	msgNoFile      = "No file selected."
	msgConnecting  = "Connecting to server..."
	msgSent        = "File sent successfully."
)

// FileService is the network capability the panel drives.
type FileService interface {
	ListFiles(ctx context.Context, t transfer.Target) ([]string, error)
	UploadFile(ctx context.Context, t transfer.Target, name string, r io.Reader) (string, error)
	DownloadURL(t transfer.Target, name string) string
}

// URLOpener opens a URL somewhere outside the terminal.
type URLOpener interface {
	Open(url string) error
}

// SelectedFile is the local file chosen for the next send.
type SelectedFile struct {
	Path string
	Name string
	Size int64
}

// Options tunes panel behaviour.
type Options struct {
	// RefreshDelay is how long target edits settle before a refresh.
	// Zero refreshes on every edit.
	RefreshDelay time.Duration
	// RequestTimeout bounds each request; zero means none.
	RequestTimeout time.Duration
	// StartDir is where the local file picker opens.
	StartDir string
}

type section int

const (
	sectionTarget section = iota
	sectionLocal
	sectionRemote
	sectionLog
	sectionCount
)

// refreshNowMsg starts the initial fetch.
type refreshNowMsg struct{}

// refreshTickMsg fires once a target edit has settled.
type refreshTickMsg struct{ seq uint64 }

// filesListedMsg carries the result of GET /files.
type filesListedMsg struct {
	seq   uint64
	files []string
	err   error
}

// uploadDoneMsg carries the result of POST /upload.
type uploadDoneMsg struct {
	local    string
	filename string
	err      error
}

// Panel is the file transfer panel: connection target, local file picker,
// remote file list and log feed.
type Panel struct {
	service FileService
	opener  URLOpener
	opts    Options

	target   TargetForm
	picker   filepicker.Model
	selected *SelectedFile
	remote   RemoteList
	logs     LogFeed

	keys    keyMap
	help    help.Model
	spinner spinner.Model

	focus  section
	width  int
	height int

	refreshSeq    uint64
	refreshing    bool
	cancelRefresh context.CancelFunc
	uploads       int
}

// NewPanel creates a panel for target host:port.
func NewPanel(service FileService, opener URLOpener, host string, port int, opts Options) Panel {
	fp := filepicker.New()
	fp.CurrentDirectory = opts.StartDir
	if fp.CurrentDirectory == "" {
		fp.CurrentDirectory, _ = os.Getwd()
	}
	fp.AutoHeight = false
	fp.Height = 8
	fp.ShowPermissions = false

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))

	target := NewTargetForm(host, port)
	target.Focus()

	return Panel{
		service: service,
		opener:  opener,
		opts:    opts,
		target:  target,
		picker:  fp,
		logs:    NewLogFeed(),
		keys:    defaultKeyMap(),
		help:    help.New(),
		spinner: s,
		focus:   sectionTarget,
	}
}

func (m Panel) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return refreshNowMsg{} },
		m.picker.Init(),
		m.spinner.Tick,
	)
}

// Target returns the current connection target.
func (m Panel) Target() transfer.Target { return m.target.Target() }

// RemoteFiles returns the known remote file names in order.
func (m Panel) RemoteFiles() []string { return m.remote.Files() }

// Logs returns the log feed entries in order.
func (m Panel) Logs() []string { return m.logs.Entries() }

// Selected returns the chosen local file, if any.
func (m Panel) Selected() (SelectedFile, bool) {
	if m.selected == nil {
		return SelectedFile{}, false
	}
	return *m.selected, true
}

// CapturesText reports whether keystrokes are going into a text input.
func (m Panel) CapturesText() bool { return m.focus == sectionTarget }

// Busy reports whether a refresh or upload is in flight.
func (m Panel) Busy() bool { return m.refreshing || m.uploads > 0 }

// SetTarget changes the connection target and schedules a refresh.
func (m *Panel) SetTarget(host string, port int) tea.Cmd {
	m.target.SetTarget(host, port)
	return m.scheduleRefresh()
}

// Refresh fetches the remote file list now, superseding any pending or
// in-flight refresh.
func (m *Panel) Refresh() tea.Cmd {
	m.refreshSeq++
	return m.startRefresh(m.refreshSeq)
}

// scheduleRefresh debounces target edits: only the last edit within
// RefreshDelay triggers a fetch.
func (m *Panel) scheduleRefresh() tea.Cmd {
	m.refreshSeq++
	seq := m.refreshSeq
	if m.opts.RefreshDelay <= 0 {
		return m.startRefresh(seq)
	}
	m.cancelInFlight()
	return tea.Tick(m.opts.RefreshDelay, func(time.Time) tea.Msg {
		return refreshTickMsg{seq: seq}
	})
}

func (m *Panel) cancelInFlight() {
	if m.cancelRefresh != nil {
		m.cancelRefresh()
		m.cancelRefresh = nil
	}
}

func (m *Panel) startRefresh(seq uint64) tea.Cmd {
	m.cancelInFlight()
	ctx, cancel := m.requestContext()
	m.cancelRefresh = cancel
	m.refreshing = true

	target := m.target.Target()
	svc := m.service
	log.Debug().Uint64("seq", seq).Str("target", target.String()).Msg("refreshing file list")
	return func() tea.Msg {
		defer cancel()
		files, err := svc.ListFiles(ctx, target)
		return filesListedMsg{seq: seq, files: files, err: err}
	}
}

func (m Panel) requestContext() (context.Context, context.CancelFunc) {
	if m.opts.RequestTimeout > 0 {
		return context.WithTimeout(context.Background(), m.opts.RequestTimeout)
	}
	return context.WithCancel(context.Background())
}

// SelectFile records path as the file to send next.
func (m *Panel) SelectFile(path string) {
	info, err := os.Stat(path)
	if err != nil {
		m.logs.Append("Error: " + err.Error())
		return
	}
	if info.IsDir() {
		m.logs.Append(fmt.Sprintf("Error: %s is a directory", info.Name()))
		return
	}
	m.selected = &SelectedFile{Path: path, Name: info.Name(), Size: info.Size()}
	m.logs.Append("Selected file: " + info.Name())
}

// SendFile uploads the selected file. With no file selected it only logs.
func (m *Panel) SendFile() tea.Cmd {
	if m.selected == nil {
		m.logs.Append(msgNoFile)
		return nil
	}
	m.logs.Append(msgConnecting)
	m.uploads++

	sel := *m.selected
	target := m.target.Target()
	svc := m.service
	ctx, cancel := m.requestContext()
	return func() tea.Msg {
		defer cancel()
		filename, err := uploadLocal(ctx, svc, target, sel)
		return uploadDoneMsg{local: sel.Name, filename: filename, err: err}
	}
}

func uploadLocal(ctx context.Context, svc FileService, target transfer.Target, sel SelectedFile) (filename string, retErr error) {
	f, err := os.Open(sel.Path)
	if err != nil {
		return "", err
	}
	defer func() {
		if cErr := f.Close(); cErr != nil {
			retErr = errors.Join(retErr, fmt.Errorf("close local file: %w", cErr))
		}
	}()
	return svc.UploadFile(ctx, target, sel.Name, f)
}

// DownloadFile opens the download URL for filename. The outcome is not
// observed.
func (m *Panel) DownloadFile(filename string) tea.Cmd {
	m.logs.Append(fmt.Sprintf("Downloading %s...", filename))
	url := m.service.DownloadURL(m.target.Target(), filename)
	opener := m.opener
	return func() tea.Msg {
		if opener == nil {
			return nil
		}
		if err := opener.Open(url); err != nil {
			log.Warn().Err(err).Str("url", url).Msg("open download URL")
		}
		return nil
	}
}

func (m *Panel) setFocus(s section) tea.Cmd {
	if m.focus == sectionTarget {
		m.target.Blur()
	}
	m.focus = s
	if s == sectionTarget {
		return m.target.Focus()
	}
	return nil
}

func (m Panel) Update(msg tea.Msg) (Panel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetDimensions(msg.Width, msg.Height)
		return m, nil

	case refreshNowMsg:
		return m, m.Refresh()

	case refreshTickMsg:
		if msg.seq != m.refreshSeq {
			return m, nil
		}
		return m, m.startRefresh(msg.seq)

	case filesListedMsg:
		if msg.seq != m.refreshSeq {
			log.Debug().Uint64("seq", msg.seq).Uint64("latest", m.refreshSeq).Msg("dropping superseded file list")
			return m, nil
		}
		m.refreshing = false
		m.cancelRefresh = nil
		if msg.err != nil {
			log.Warn().Err(msg.err).Msg("list files failed")
			m.logs.Append(msgFetchFailed)
			return m, nil
		}
		m.remote.Replace(msg.files)
		log.Debug().Int("count", len(msg.files)).Msg("file list refreshed")
		return m, nil

	case uploadDoneMsg:
		m.uploads--
		if msg.err != nil {
			log.Warn().Err(msg.err).Str("file", msg.local).Msg("upload failed")
			m.logs.Append("Error: " + msg.err.Error())
			return m, nil
		}
		m.remote.Append(msg.filename)
		m.logs.Append(msgSent)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Blink, directory reads and the like.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	cmds = append(cmds, cmd)
	if m.focus == sectionTarget {
		m.target, cmd, _ = m.target.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Panel) handleKey(msg tea.KeyMsg) (Panel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.NextSection):
		return m, m.setFocus((m.focus + 1) % sectionCount)
	case key.Matches(msg, m.keys.PrevSection):
		return m, m.setFocus((m.focus + sectionCount - 1) % sectionCount)
	case key.Matches(msg, m.keys.Send):
		return m, m.SendFile()
	case key.Matches(msg, m.keys.Refresh):
		return m, m.Refresh()
	}

	switch m.focus {
	case sectionTarget:
		switch {
		case key.Matches(msg, m.keys.Reconnect):
			return m, m.Refresh()
		case key.Matches(msg, m.keys.SwitchField):
			return m, m.target.switchField()
		}
		var cmd tea.Cmd
		var changed bool
		m.target, cmd, changed = m.target.Update(msg)
		if changed {
			return m, tea.Batch(cmd, m.scheduleRefresh())
		}
		return m, cmd

	case sectionLocal:
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		if ok, path := m.picker.DidSelectFile(msg); ok {
			m.SelectFile(path)
		}
		return m, cmd

	case sectionRemote:
		switch {
		case key.Matches(msg, m.keys.Up):
			m.remote.up()
		case key.Matches(msg, m.keys.Down):
			m.remote.down()
		case key.Matches(msg, m.keys.Top):
			m.remote.top()
		case key.Matches(msg, m.keys.Bottom):
			m.remote.bottom()
		case key.Matches(msg, m.keys.Download):
			if name, ok := m.remote.Selected(); ok {
				return m, m.DownloadFile(name)
			}
		}
		return m, nil

	case sectionLog:
		var cmd tea.Cmd
		m.logs, cmd = m.logs.Update(msg)
		return m, cmd
	}
	return m, nil
}

// SetDimensions lays out the sections for a terminal of width × height.
func (m *Panel) SetDimensions(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width

	listH, logH := m.layout()
	m.picker.Height = listH - 3
	if m.picker.Height < 1 {
		m.picker.Height = 1
	}
	m.logs.SetSize(width-4, logH)
}

// layout splits the rows left after the tab bar, target box, box borders
// and help line between the file panels and the log.
func (m Panel) layout() (listH, logH int) {
	const chrome = 1 + 3 + 2 + 3 + 1
	body := m.height - chrome
	logH = body / 3
	if logH < 3 {
		logH = 3
	}
	listH = body - logH
	if listH < 4 {
		listH = 4
	}
	return listH, logH
}

var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)

	activeBoxStyle = boxStyle.
			BorderForeground(lipgloss.Color("#7D56F4"))

	boxTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#AAAAAA"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)
)

func (m Panel) box(s section, width int) lipgloss.Style {
	if m.focus == s {
		return activeBoxStyle.Width(width)
	}
	return boxStyle.Width(width)
}

func (m Panel) tabs() []Tab {
	return []Tab{
		{Title: "Target " + m.target.Target().String(), Busy: m.refreshing},
		{Title: "Local", Busy: m.uploads > 0},
		{Title: TabTitle("Remote", m.remote.Len())},
		{Title: TabTitle("Log", m.logs.Len())},
	}
}

func (m Panel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	inner := m.width - 2
	tabBar := RenderTabBar(m.tabs(), int(m.focus), m.width)

	status := ""
	if m.Busy() {
		status = "  " + m.spinner.View()
	}
	targetBox := m.box(sectionTarget, inner).Render(m.target.View() + status)

	listH, _ := m.layout()
	half := m.width/2 - 2

	var selected string
	if m.selected != nil {
		selected = fmt.Sprintf("Selected: %s (%s)", truncate(m.selected.Name, half-20), formatSize(m.selected.Size))
	} else {
		selected = hintStyle.Render("No file selected")
	}
	local := lipgloss.JoinVertical(lipgloss.Left,
		boxTitleStyle.Render("Local: "+truncatePath(m.picker.CurrentDirectory, half-10)),
		lipgloss.NewStyle().Height(listH-2).MaxHeight(listH-2).Render(m.picker.View()),
		selected,
	)
	remote := lipgloss.JoinVertical(lipgloss.Left,
		boxTitleStyle.Render("Sent files"),
		m.remote.View(half-2, listH-1, m.focus == sectionRemote),
	)
	panels := lipgloss.JoinHorizontal(lipgloss.Top,
		m.box(sectionLocal, half).Height(listH).Render(local),
		m.box(sectionRemote, half).Height(listH).Render(remote),
	)

	logBox := m.box(sectionLog, inner).Render(
		lipgloss.JoinVertical(lipgloss.Left, boxTitleStyle.Render("Logs"), m.logs.View()),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		tabBar,
		targetBox,
		panels,
		logBox,
		m.help.View(m.keys),
	)
}

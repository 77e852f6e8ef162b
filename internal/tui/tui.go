// Package tui provides a Bubble Tea terminal user interface for the converter.
package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/bandcamp-converter/internal/config"
	"github.com/handiism/bandcamp-converter/internal/convert"
	"github.com/handiism/bandcamp-converter/internal/deps"
	"github.com/handiism/bandcamp-converter/internal/model"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	albumStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateInitializing
	StateConverting
	StateComplete
	StateError
)

// maxLogs is how many log lines stay on screen.
const maxLogs = 10

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   convert.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	logs      []LogEntry
	albums    []string
	failures  []model.Result
	summary   convert.Summary
	err       error

	// Run context
	ctx    context.Context
	cancel context.CancelFunc

	// Conversion manager reference and its event stream
	manager *convert.Manager
	events  chan convert.ProgressEvent

	// Conversion progress
	totalFiles     int32
	processedFiles int32

	// Options
	dirMode  bool
	playlist bool
	dryRun   bool
	verbose  bool

	width  int
	height int
}

// NewModel creates a new TUI model using settings as the base configuration.
func NewModel(settings *config.Settings) Model {
	ti := textinput.New()
	ti.Placeholder = "~/Downloads or ~/Downloads/Artist - Album.zip"
	ti.Focus()
	ti.CharLimit = 1000
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		logs:      make([]LogEntry, 0),
		ctx:       ctx,
		cancel:    cancel,
		playlist:  settings.CreatePlaylist,
		dryRun:    settings.DryRun,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg carries one event from the manager.
	ProgressMsg struct {
		Event convert.ProgressEvent
	}

	// InitDoneMsg is sent when archive expansion and discovery complete.
	InitDoneMsg struct {
		Albums  []string
		Manager *convert.Manager
		Err     error
	}

	// ConversionDoneMsg is sent when all pipelines finished.
	ConversionDoneMsg struct {
		Results []model.Result
		Summary convert.Summary
		Err     error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateConverting || m.state == StateInitializing {
				// Running processes are killed; the done message follows.
				m.cancel()
			}

		case "enter":
			if m.state == StateInput && strings.TrimSpace(m.textInput.Value()) != "" {
				m.state = StateInitializing
				m.events = make(chan convert.ProgressEvent, 256)
				return m, tea.Batch(m.initializeConversion(), waitForEvent(m.events), m.spinner.Tick)
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				// Reset for a new run
				m.state = StateInput
				m.logs = nil
				m.albums = nil
				m.failures = nil
				m.summary = convert.Summary{}
				m.err = nil
				m.processedFiles = 0
				m.totalFiles = 0
				m.manager = nil
				m.events = nil
				m.ctx, m.cancel = context.WithCancel(context.Background())
				m.textInput.SetValue("")
				m.textInput.Focus()
			}
		}

		// Option toggles only apply while the input is empty, so paths can
		// still contain these letters.
		if m.state == StateInput && m.textInput.Value() == "" {
			switch msg.String() {
			case "c":
				m.dirMode = !m.dirMode
				return m, nil
			case "p":
				m.playlist = !m.playlist
				return m, nil
			case "n":
				m.dryRun = !m.dryRun
				return m, nil
			case "v":
				m.verbose = !m.verbose
				return m, nil
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		cmds = append(cmds, waitForEvent(m.events))
		// Filter verbose messages if not in verbose mode
		if msg.Event.Level == convert.LevelVerbose && !m.verbose {
			break
		}
		m.logs = append(m.logs, LogEntry{
			Message: msg.Event.Message,
			Level:   msg.Event.Level,
		})
		if len(m.logs) > maxLogs {
			m.logs = m.logs[len(m.logs)-maxLogs:]
		}

	case InitDoneMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.albums = msg.Albums
			m.manager = msg.Manager
			m.state = StateConverting
			cmds = append(cmds, m.startConversion(), m.tickProgress())
		}

	case ConversionDoneMsg:
		m.summary = msg.Summary
		m.processedFiles = int32(msg.Summary.Total)
		for _, res := range msg.Results {
			if res.Failed() {
				m.failures = append(m.failures, res)
			}
		}
		switch {
		case errors.Is(msg.Err, context.Canceled):
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
		}

	case TickMsg:
		// Update progress from manager
		if m.manager != nil && m.state == StateConverting {
			processed, total := m.manager.GetProgress()
			m.processedFiles = processed
			m.totalFiles = total

			var percent float64
			if total > 0 {
				percent = float64(processed) / float64(total)
			}
			progressCmd := m.progress.SetPercent(percent)
			cmds = append(cmds, progressCmd, m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	// Update text input
	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// waitForEvent blocks until the manager emits an event. It returns nil once
// the channel is closed or absent, ending the chain.
func waitForEvent(events <-chan convert.ProgressEvent) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return ProgressMsg{Event: event}
	}
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("♫ Bandcamp Converter"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Turn FLAC downloads into tagged MP3s"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateInitializing:
		b.WriteString(m.viewInitializing())
	case StateConverting:
		b.WriteString(m.viewConverting())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func checkbox(on bool) string {
	if on {
		return "[×]"
	}
	return "[ ]"
}

func (m Model) viewInput() string {
	var b strings.Builder

	if m.dirMode {
		b.WriteString(subtitleStyle.Render("Enter an expanded album directory:"))
	} else {
		b.WriteString(subtitleStyle.Render("Enter an archive or a folder of archives:"))
	}
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Convert an expanded directory (c)\n", checkbox(m.dirMode)))
	b.WriteString(fmt.Sprintf("  %s Create playlist (p)\n", checkbox(m.playlist)))
	b.WriteString(fmt.Sprintf("  %s Dry run (n)\n", checkbox(m.dryRun)))
	b.WriteString(fmt.Sprintf("  %s Verbose/debug output (v)\n", checkbox(m.verbose)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Unpack directory: %s", m.settings.UnpackDir)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewInitializing() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Expanding archives..."))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewConverting() string {
	var b strings.Builder

	if len(m.albums) > 0 {
		b.WriteString(successStyle.Render(fmt.Sprintf("Found %d album(s):", len(m.albums))))
		b.WriteString("\n")
		for _, album := range m.albums {
			b.WriteString(albumStyle.Render(fmt.Sprintf("  ♪ %s", album)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	var percent float64
	if m.totalFiles > 0 {
		percent = float64(m.processedFiles) / float64(m.totalFiles)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf("Files: %d/%d", m.processedFiles, m.totalFiles)))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	title := "✨ Conversion Complete!"
	if m.dryRun {
		title = "Dry run complete, nothing was written"
	}
	box := boxStyle.Render(fmt.Sprintf(
		"%s\n\n"+
			"Albums: %d\n"+
			"Converted: %d\n"+
			"Skipped: %d\n"+
			"Failed: %d",
		title,
		len(m.albums),
		m.summary.Converted,
		m.summary.Skipped,
		m.summary.Failed,
	))
	b.WriteString(box)
	b.WriteString("\n")
	b.WriteString(m.renderFailures())

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("❌ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(m.renderFailures())

	return b.String()
}

func (m Model) renderFailures() string {
	if len(m.failures) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(errorStyle.Render(fmt.Sprintf("%d file(s) failed, sources kept:", len(m.failures))))
	b.WriteString("\n")
	for _, res := range m.failures {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  ✗ %s", filepath.Base(res.Source))))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case convert.LevelError:
			style = errorStyle
			prefix = "✗"
		case convert.LevelWarning:
			style = warningStyle
			prefix = "!"
		case convert.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case convert.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • c: directory mode • p: playlist • n: dry run • v: verbose • esc: quit"
	case StateInitializing, StateConverting:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new run • q: quit"
	}
	return ""
}

// runSettings copies the base settings and applies the toggled options.
func (m Model) runSettings() *config.Settings {
	settings := *m.settings
	settings.CreatePlaylist = m.playlist
	settings.DryRun = m.dryRun
	return &settings
}

// initializeConversion checks dependencies, creates the manager and expands
// the archives (or scans the directory).
func (m Model) initializeConversion() tea.Cmd {
	settings := m.runSettings()
	path := strings.TrimSpace(m.textInput.Value())
	ctx := m.ctx
	events := m.events
	dirMode := m.dirMode

	return func() tea.Msg {
		if expanded, err := config.ExpandPath(path); err == nil {
			path = expanded
		}

		if !settings.DryRun {
			if err := deps.Check(settings); err != nil {
				close(events)
				return InitDoneMsg{Err: err}
			}
		}

		manager := convert.NewManager(settings, func(event convert.ProgressEvent) {
			// Drop rather than stall the pipelines when the UI falls behind.
			select {
			case events <- event:
			default:
			}
		})

		var err error
		if dirMode {
			err = manager.AddDirs(ctx, []string{path})
		} else {
			err = manager.Initialize(ctx, []string{path})
		}
		if err != nil {
			manager.Close()
			close(events)
			return InitDoneMsg{Err: err}
		}

		return InitDoneMsg{
			Albums:  manager.GetAlbumNames(),
			Manager: manager,
		}
	}
}

// startConversion runs all pipelines in the background. The event channel
// is closed once no pipeline can emit anymore.
func (m Model) startConversion() tea.Cmd {
	manager := m.manager
	ctx := m.ctx
	events := m.events

	return func() tea.Msg {
		if manager == nil {
			return ConversionDoneMsg{Err: fmt.Errorf("no manager")}
		}
		defer manager.Close()
		defer close(events)

		results, err := manager.StartConversions(ctx)
		return ConversionDoneMsg{
			Results: results,
			Summary: manager.Summary(),
			Err:     err,
		}
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

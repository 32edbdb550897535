// Package tui renders a live terminal view of a flowing-message session.
//
// The flow view maps each active message onto its lane row, with the column
// derived from the same placement function browser clients use. The top view
// lists the engagement leaderboard for the current channel.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	session "github.com/nvake/drift/internal/app"
)

// defaultFrameInterval paces re-renders. Placements are recomputed from the
// clock on every frame, so this is purely a smoothness knob.
const defaultFrameInterval = 100 * time.Millisecond

// topLimit bounds the leaderboard view.
const topLimit = 10

// --- Messages ---

type frameMsg struct{}

func frameEvery(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return frameMsg{}
	})
}

// --- Key bindings ---

type keyMap struct {
	Quit key.Binding
	Tab  key.Binding
	Help key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Tab:  key.NewBinding(key.WithKeys("tab", "t"), key.WithHelp("tab", "flow/top")),
	Help: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Tab, k.Help, k.Quit}}
}

// --- Views ---

type viewID int

const (
	viewFlow viewID = iota
	viewTop
	viewCount
)

func (v viewID) String() string {
	switch v {
	case viewFlow:
		return "Flow"
	case viewTop:
		return "Top"
	}
	return "?"
}

// --- Model ---

type uiModel struct {
	sess *session.Session

	activeView    viewID
	width         int
	height        int
	frameInterval time.Duration

	help     help.Model
	showHelp bool
}

func newModel(s *session.Session) uiModel {
	return uiModel{
		sess:          s,
		frameInterval: defaultFrameInterval,
		help:          help.New(),
	}
}

func (m uiModel) Init() tea.Cmd {
	return frameEvery(m.frameInterval)
}

func (m uiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Tab):
			m.activeView = (m.activeView + 1) % viewCount
		case key.Matches(msg, keys.Help):
			m.showHelp = !m.showHelp
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case frameMsg:
		return m, frameEvery(m.frameInterval)
	}

	return m, nil
}

// Run drives the TUI until the user quits or ctx is cancelled. The session
// must already be running; the view only reads its snapshots.
func Run(ctx context.Context, s *session.Session) error {
	p := tea.NewProgram(newModel(s), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		// Cancellation surfaces as a program kill; report it as the
		// context error so callers can treat shutdown uniformly.
		return ctx.Err()
	}
	return err
}

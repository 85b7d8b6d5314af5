// Package browse is an interactive browser over recorded sessions and
// their dispatch history.
package browse

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hookdsh/hookd/internal/storage"
)

type view int

const (
	sessionView view = iota
	dispatchView
)

// Model is the model for the interactive session browser.
type Model struct {
	store storage.SessionStorer

	sessions     []*storage.Session
	dispatches   []*storage.Dispatch
	cursor       int
	scrollOffset int
	view         view
	width        int
	height       int
	keys         KeyMap
	err          error
}

// NewModel builds the browser over the given store.
func NewModel(store storage.SessionStorer) Model {
	m := Model{
		store: store,
		keys:  NewKeyMap(),
	}
	m.refresh()
	return m
}

func (m *Model) refresh() {
	sessions, err := m.store.GetAllSessions()
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.sessions = sessions
	if m.cursor >= len(m.sessions) {
		m.cursor = max(0, len(m.sessions)-1)
	}
}

func (m *Model) loadDispatches() {
	if m.cursor >= len(m.sessions) {
		return
	}
	dispatches, err := m.store.GetDispatches(m.sessions[m.cursor].ID, 200)
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.dispatches = dispatches
	m.scrollOffset = 0
	m.view = dispatchView
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Up):
			if m.view == sessionView && m.cursor > 0 {
				m.cursor--
			} else if m.view == dispatchView && m.scrollOffset > 0 {
				m.scrollOffset--
			}

		case key.Matches(msg, m.keys.Down):
			if m.view == sessionView && m.cursor < len(m.sessions)-1 {
				m.cursor++
			} else if m.view == dispatchView && m.scrollOffset < max(0, len(m.dispatches)-m.pageSize()) {
				m.scrollOffset++
			}

		case key.Matches(msg, m.keys.Confirm):
			if m.view == sessionView && len(m.sessions) > 0 {
				m.loadDispatches()
			}

		case key.Matches(msg, m.keys.Back):
			if m.view == dispatchView {
				m.view = sessionView
			}

		case key.Matches(msg, m.keys.Refresh):
			if m.view == sessionView {
				m.refresh()
			} else {
				m.loadDispatches()
			}
		}
	}

	return m, nil
}

func (m Model) pageSize() int {
	// Header, title, and help lines eat into the viewport.
	if m.height <= 6 {
		return 10
	}
	return m.height - 6
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

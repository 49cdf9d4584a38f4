// Package tui provides the full screen terminal front end. It renders a chat.View and
// feeds it keyboard events; network calls run as tea commands so the UI never blocks.
package tui

import (
	"bytes"
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/ethanbaker/mitra/pkg/chat"
	"github.com/ethanbaker/mitra/pkg/sdk"
	"github.com/ethanbaker/mitra/pkg/utils"
)

// Pane is the panel receiving keyboard input
type Pane int

const (
	ChatPane Pane = iota
	BatchPane
)

// Messages for tea updates
type (
	queryDoneMsg struct {
		resp *sdk.QueryResponse
		err  error
	}
	batchDoneMsg struct {
		resp *sdk.BatchResponse
		err  error
	}
)

// Model is the bubbletea model wrapping a chat.View
type Model struct {
	view     *chat.View
	backend  chat.Backend
	branding utils.Branding

	// UI Components
	chatInput textinput.Model
	pathInput textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	styles    Styles
	renderer  *glamour.TermRenderer // nil falls back to plain text
	pane      Pane
	notice    string
	width     int
	ready     bool
}

// New creates the model. The backend must be the one the view was built with
func New(view *chat.View, backend chat.Backend, branding utils.Branding) Model {
	chatInput := textinput.New()
	chatInput.Placeholder = branding.Placeholder
	chatInput.Focus()

	pathInput := textinput.New()
	pathInput.Placeholder = "Path to a CSV file..."

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		view:      view,
		backend:   backend,
		branding:  branding,
		chatInput: chatInput,
		pathInput: pathInput,
		viewport:  viewport.New(80, 20),
		spinner:   sp,
		styles:    DefaultStyles(),
		renderer:  newRenderer(80),
	}
}

// newRenderer builds a markdown renderer, returning nil when glamour cannot load a style
func newRenderer(width int) *glamour.TermRenderer {
	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
	if err != nil {
		return nil
	}
	return renderer
}

// Run starts the terminal UI and blocks until the user quits
func Run(view *chat.View, backend chat.Backend, branding utils.Branding) error {
	p := tea.NewProgram(New(view, backend, branding), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles keyboard, window and completion messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit

		case tea.KeyTab:
			return m.switchPane(), nil

		case tea.KeyEsc:
			if m.pane == BatchPane {
				m.view.DismissError()
				m.notice = ""
				m.refresh()
				return m, nil
			}

		case tea.KeyEnter:
			if m.pane == BatchPane {
				return m.submitBatch()
			}
			return m.submitQuery()
		}

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case spinner.TickMsg:
		snap := m.view.Snapshot()
		if snap.QueryPending() || snap.BatchPending() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			m.refresh()
			return m, cmd
		}
		return m, nil

	case queryDoneMsg:
		if _, err := m.view.CompleteQuery(msg.resp, msg.err); err != nil {
			m.notice = err.Error()
		}
		m.refresh()

	case batchDoneMsg:
		if err := m.view.CompleteBatch(msg.resp, msg.err); err != nil {
			m.notice = err.Error()
		}
		m.refresh()
	}

	// Route remaining input to the focused field unless its flow is pending
	snap := m.view.Snapshot()
	var cmd tea.Cmd
	switch {
	case m.pane == ChatPane && !snap.QueryPending():
		m.chatInput, cmd = m.chatInput.Update(msg)
	case m.pane == BatchPane && !snap.BatchPending():
		m.pathInput, cmd = m.pathInput.Update(msg)
	}
	cmds = append(cmds, cmd)

	// Letters belong to the inputs, so the viewport only sees scroll keys
	if key, ok := msg.(tea.KeyMsg); !ok || isScrollKey(key) {
		var vpCmd tea.Cmd
		m.viewport, vpCmd = m.viewport.Update(msg)
		cmds = append(cmds, vpCmd)
	}

	return m, tea.Batch(cmds...)
}

func isScrollKey(key tea.KeyMsg) bool {
	switch key.Type {
	case tea.KeyPgUp, tea.KeyPgDown, tea.KeyUp, tea.KeyDown:
		return true
	}
	return false
}

// switchPane toggles between chat and batch when batch uploads are enabled
func (m Model) switchPane() Model {
	if !m.view.Snapshot().BatchEnabled {
		return m
	}

	if m.pane == ChatPane {
		m.pane = BatchPane
		m.chatInput.Blur()
		m.pathInput.Focus()
	} else {
		m.pane = ChatPane
		m.pathInput.Blur()
		m.chatInput.Focus()
	}
	m.notice = ""
	m.refresh()
	return m
}

// submitQuery starts the conversational flow with the typed text
func (m Model) submitQuery() (tea.Model, tea.Cmd) {
	text, err := m.view.BeginQuery(m.chatInput.Value())
	if err != nil {
		// Empty input and a pending query leave the screen as it is
		return m, nil
	}

	m.chatInput.Reset()
	m.refresh()

	backend := m.backend
	return m, tea.Batch(
		m.spinner.Tick,
		func() tea.Msg {
			resp, err := backend.Query(context.Background(), text)
			return queryDoneMsg{resp: resp, err: err}
		},
	)
}

// submitBatch selects the typed path, when there is one, and uploads the selected file
func (m Model) submitBatch() (tea.Model, tea.Cmd) {
	m.notice = ""

	if m.view.Snapshot().BatchPending() {
		return m, nil
	}

	if path := strings.TrimSpace(m.pathInput.Value()); path != "" {
		file, err := chat.LoadFile(path)
		if err == nil {
			err = m.view.SelectFile(file)
		}
		if err != nil {
			m.notice = err.Error()
			return m, nil
		}
		m.pathInput.Reset()
	}

	file, err := m.view.BeginBatch()
	if err != nil {
		m.notice = err.Error()
		return m, nil
	}
	m.refresh()

	backend := m.backend
	return m, tea.Batch(
		m.spinner.Tick,
		func() tea.Msg {
			resp, err := backend.ProcessCSV(context.Background(), file.Name, bytes.NewReader(file.Data))
			return batchDoneMsg{resp: resp, err: err}
		},
	)
}

// resize lays the components out for the terminal size
func (m *Model) resize(width, height int) {
	m.width = width

	headerHeight := 3
	footerHeight := 4

	m.viewport.Width = max(width-4, 20)
	m.viewport.Height = max(height-headerHeight-footerHeight, 3)
	m.chatInput.Width = max(width-8, 10)
	m.pathInput.Width = max(width-8, 10)

	if renderer := newRenderer(max(width-8, 20)); renderer != nil {
		m.renderer = renderer
	}

	m.ready = true
	m.refresh()
}

// refresh re-renders the active pane into the viewport and scrolls to the bottom
func (m *Model) refresh() {
	snap := m.view.Snapshot()
	if m.pane == BatchPane {
		m.viewport.SetContent(m.renderResults(snap))
	} else {
		m.viewport.SetContent(m.renderTranscript(snap))
	}
	m.viewport.GotoBottom()
}

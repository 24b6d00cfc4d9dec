package picker

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// defaultRows is used until the first WindowSizeMsg arrives.
const defaultRows = 24

type keyMap struct {
	Select    key.Binding
	Cancel    key.Binding
	Backspace key.Binding
}

var keys = keyMap{
	Select:    key.NewBinding(key.WithKeys("enter")),
	Cancel:    key.NewBinding(key.WithKeys("esc", "ctrl+c")),
	Backspace: key.NewBinding(key.WithKeys("backspace", "ctrl+h")),
}

// Model is a Bubble Tea front end over the same Session used by Pick.
// It is exported so that cmd can run it with tea.NewProgram.
type Model struct {
	session *Session
	rows    int
	cols    int
}

// NewModel creates a Model for candidates.
func NewModel(opts Options, candidates []string) Model {
	m := Model{
		session: NewSession(opts, candidates),
		rows:    defaultRows,
	}
	m.session.Render(m.rows, m.cols)
	return m
}

// Result returns the selected candidate; ok is false if nothing was chosen.
func (m Model) Result() (string, bool) {
	return m.session.Result()
}

// Init implements tea.Model. A session without candidates quits at once.
func (m Model) Init() tea.Cmd {
	if m.session.Done() {
		return tea.Quit
	}
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.rows = msg.Height
		m.cols = msg.Width
		m.session.Render(m.rows, m.cols)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// handleKey feeds one key message through the session, one key per cycle,
// re-rendering after each key that keeps the session alive.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	for _, k := range translateKey(msg) {
		if m.session.Handle(k) {
			m.session.Render(m.rows, m.cols)
		}
		if m.session.Done() {
			return m, tea.Quit
		}
	}
	return m, nil
}

// translateKey maps a Bubble Tea key message to picker keys. Pasted text
// arrives as a single message and becomes one key per rune.
func translateKey(msg tea.KeyMsg) []Key {
	switch {
	case key.Matches(msg, keys.Select):
		return []Key{{Type: KeyEnter}}
	case key.Matches(msg, keys.Cancel):
		return []Key{{Type: KeyEscape}}
	case key.Matches(msg, keys.Backspace):
		return []Key{{Type: KeyBackspace}}
	}

	if msg.Type == tea.KeySpace {
		return []Key{RuneKey(' ')}
	}
	if msg.Type != tea.KeyRunes || msg.Alt {
		return []Key{{Type: KeyOther}}
	}
	out := make([]Key, 0, len(msg.Runes))
	for _, r := range msg.Runes {
		out = append(out, classifyRune(r))
	}
	return out
}

// View implements tea.Model.
func (m Model) View() string {
	if m.session.Done() {
		return ""
	}
	return strings.Join(m.session.Frame().Lines, "\n")
}

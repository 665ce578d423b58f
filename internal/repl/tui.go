package repl

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	accentColor = lipgloss.Color("#3B82F6")
	outputColor = lipgloss.Color("#10B981")
	errorColor  = lipgloss.Color("#EF4444")
	mutedColor  = lipgloss.Color("#6B7280")

	promptStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	outputStyle = lipgloss.NewStyle().
			Foreground(outputColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	headerStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true).
			Padding(0, 1)
)

type historyEntry struct {
	input  string
	output string
	isErr  bool
}

type keyMap struct {
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding
	CtrlC key.Binding
	CtrlD key.Binding
	CtrlL key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up"),
		key.WithHelp("↑", "previous line"),
	),
	Down: key.NewBinding(
		key.WithKeys("down"),
		key.WithHelp("↓", "next line"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "execute"),
	),
	CtrlC: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
	CtrlD: key.NewBinding(
		key.WithKeys("ctrl+d"),
		key.WithHelp("ctrl+d", "quit"),
	),
	CtrlL: key.NewBinding(
		key.WithKeys("ctrl+l"),
		key.WithHelp("ctrl+l", "clear"),
	),
}

type tuiModel struct {
	textInput   textinput.Model
	session     *session
	version     string
	history     []historyEntry
	cmdHistory  []string
	historyIdx  int
	width       int
	height      int
	quitting    bool
	initialized bool
}

func newTUIModel(version string) tuiModel {
	ti := textinput.New()
	ti.Placeholder = "type a statement..."
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60
	ti.PromptStyle = promptStyle
	ti.Prompt = promptMain

	return tuiModel{
		textInput:  ti,
		session:    newSession(),
		version:    version,
		history:    make([]historyEntry, 0),
		cmdHistory: make([]string, 0),
		historyIdx: -1,
	}
}

func (m tuiModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tea.EnterAltScreen)
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textInput.Width = msg.Width - 10
		m.initialized = true
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.CtrlC), key.Matches(msg, keys.CtrlD):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.CtrlL):
			m.history = make([]historyEntry, 0)
			return m, nil

		case key.Matches(msg, keys.Up):
			if len(m.cmdHistory) > 0 {
				if m.historyIdx == -1 {
					m.historyIdx = len(m.cmdHistory) - 1
				} else if m.historyIdx > 0 {
					m.historyIdx--
				}
				m.textInput.SetValue(m.cmdHistory[m.historyIdx])
				m.textInput.CursorEnd()
			}
			return m, nil

		case key.Matches(msg, keys.Down):
			if m.historyIdx != -1 {
				if m.historyIdx < len(m.cmdHistory)-1 {
					m.historyIdx++
					m.textInput.SetValue(m.cmdHistory[m.historyIdx])
				} else {
					m.historyIdx = -1
					m.textInput.SetValue("")
				}
				m.textInput.CursorEnd()
			}
			return m, nil

		case key.Matches(msg, keys.Enter):
			input := m.textInput.Value()
			if strings.TrimSpace(input) == ":quit" {
				m.quitting = true
				return m, tea.Quit
			}
			if strings.TrimSpace(input) != "" {
				m.cmdHistory = append(m.cmdHistory, input)
			}

			output, isErr, done := m.session.feed(input)
			if done && (input != "" || output != "") {
				m.history = append(m.history, historyEntry{
					input:  input,
					output: output,
					isErr:  isErr,
				})
			}

			if m.session.continuing() {
				m.textInput.Prompt = promptCont
			} else {
				m.textInput.Prompt = promptMain
			}
			m.textInput.SetValue("")
			m.historyIdx = -1
			return m, nil
		}
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m tuiModel) View() string {
	if !m.initialized {
		return "Loading..."
	}

	if m.quitting {
		return mutedStyle.Render("Goodbye!\n")
	}

	var b strings.Builder

	header := headerStyle.Render("Mython REPL")
	version := mutedStyle.Render(m.version)
	b.WriteString(header + " " + version + "\n")
	b.WriteString(mutedStyle.Render(strings.Repeat("─", min(m.width-2, 60))) + "\n\n")

	reservedLines := 8
	availableHeight := m.height - reservedLines

	historyStart := 0
	if len(m.history) > availableHeight {
		historyStart = len(m.history) - availableHeight
	}

	for i := historyStart; i < len(m.history); i++ {
		entry := m.history[i]
		if entry.input != "" {
			b.WriteString(mutedStyle.Render("  › ") + entry.input + "\n")
		}
		if entry.output != "" {
			if entry.isErr {
				b.WriteString("  " + errorStyle.Render("✗ "+entry.output) + "\n")
			} else {
				b.WriteString("  " + outputStyle.Render(entry.output) + "\n")
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(m.textInput.View() + "\n\n")

	footer := mutedStyle.Render("ctrl+l clear  ctrl+c quit  :quit quit")
	b.WriteString(footer)

	return b.String()
}

// RunTUI starts the full-screen REPL.
func RunTUI(version string) error {
	p := tea.NewProgram(newTUIModel(version), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

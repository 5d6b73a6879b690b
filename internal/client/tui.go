// SPDX-License-Identifier: MIT
package client

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
)

// styles are the TUI's fixed lipgloss palette, grounded on
// src/client/tui/styles.go's style set but without that package's
// configurable theme.ColorPalette indirection — metaseek's CLI has one
// look, not a themeable one.
var styles = struct {
	title    lipgloss.Style
	input    lipgloss.Style
	result   lipgloss.Style
	selected lipgloss.Style
	help     lipgloss.Style
	status   lipgloss.Style
	errStyle lipgloss.Style
}{
	title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62")).Padding(0, 1),
	input:    lipgloss.NewStyle().Background(lipgloss.Color("236")).Padding(0, 1),
	result:   lipgloss.NewStyle(),
	selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
	help:     lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
	status:   lipgloss.NewStyle().Foreground(lipgloss.Color("40")),
	errStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
}

type model struct {
	query    string
	results  []Result
	selected int
	err      error
	loading  bool
	width    int
	height   int
	quitting bool
}

type searchDoneMsg struct {
	results []Result
	err     error
}

// initialModel seeds width/height from the controlling terminal so the
// first View() render isn't stuck at zero before bubbletea's own
// tea.WindowSizeMsg arrives. Falls back to a conservative 80x24 when the
// size can't be read (piped output, non-terminal stdout).
func initialModel() model {
	cols, rows, err := term.GetSize(os.Stdout.Fd())
	if err != nil || cols == 0 || rows == 0 {
		cols, rows = 80, 24
	}
	return model{width: cols, height: rows}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "q":
			if m.query == "" {
				m.quitting = true
				return m, tea.Quit
			}
			m.query = ""
			m.results = nil
			return m, nil
		case "enter":
			if m.query != "" && !m.loading {
				m.loading = true
				return m, runTUISearch(m.query)
			}
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
		case "down", "j":
			if m.selected < len(m.results)-1 {
				m.selected++
			}
		case "backspace":
			if len(m.query) > 0 {
				m.query = m.query[:len(m.query)-1]
			}
		case "esc":
			m.query = ""
			m.results = nil
			m.err = nil
		default:
			if len(msg.String()) == 1 {
				m.query += msg.String()
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case searchDoneMsg:
		m.loading = false
		m.results = msg.results
		m.err = msg.err
		m.selected = 0
	}

	return m, nil
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.title.Render("metaseek") + "\n\n")
	b.WriteString("Search: ")
	b.WriteString(styles.input.Render(m.query + "_"))
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(styles.status.Render("Searching...") + "\n\n")
	case m.err != nil:
		b.WriteString(styles.errStyle.Render("Error: "+m.err.Error()) + "\n\n")
	}

	if len(m.results) > 0 {
		b.WriteString(fmt.Sprintf("Results (%d):\n", len(m.results)))

		maxResults := m.height - 10
		if maxResults < 3 {
			maxResults = 3
		}
		if maxResults > len(m.results) {
			maxResults = len(m.results)
		}

		for i, r := range m.results {
			if i >= maxResults {
				b.WriteString(styles.help.Render(fmt.Sprintf("  ... and %d more\n", len(m.results)-maxResults)))
				break
			}
			truncateAt := m.width - 10
			if truncateAt < 30 {
				truncateAt = 30
			}
			line := fmt.Sprintf("  %s [%s]", r.Title, r.Engine)
			if len(line) > truncateAt {
				line = line[:truncateAt-3] + "..."
			}
			if i == m.selected {
				b.WriteString(styles.selected.Render("> "+line) + "\n")
			} else {
				b.WriteString(styles.result.Render("  "+line) + "\n")
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(styles.help.Render("q: quit  enter: search  esc: clear  j/k: navigate"))
	return b.String()
}

func runTUISearch(query string) tea.Cmd {
	return func() tea.Msg {
		resp, err := apiClient.Search(query, 0, nil, false)
		if err != nil {
			return searchDoneMsg{err: err}
		}
		return searchDoneMsg{results: resp.Results}
	}
}

// RunInteractiveTUI launches the bubbletea results browser.
func RunInteractiveTUI() error {
	p := tea.NewProgram(initialModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

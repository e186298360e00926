// Package browse implements an interactive terminal symbol browser over an
// already-analyzed context.Context: a filterable list of recovered symbols
// on the left, the selected symbol's emitted assembly (syntax highlighted)
// on the right. Not grounded in teacher source directly (galago has no TUI)
// — the list/viewport/model wiring follows bubbletea's and bubbles' own
// published component shapes; the highlighting half is grounded on the
// teacher's internal/ui/colorize, see highlight.go and DESIGN.md.
package browse

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Entry is one browsable symbol: its identity plus the already-emitted
// assembly text for its body. Callers build the slice of Entry values by
// running internal/emit over an analyzed section.Base context.
type Entry struct {
	Name    string
	Address uint32
	Section string
	Body    string
}

func (e Entry) Title() string       { return e.Name }
func (e Entry) Description() string { return fmt.Sprintf("%s  0x%08X", e.Section, e.Address) }
func (e Entry) FilterValue() string { return e.Name }

var (
	listBorderStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	bodyBorderStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// Model is the top-level bubbletea model: a list.Model of Entry items next
// to a viewport.Model showing the selected entry's highlighted body.
type Model struct {
	list     list.Model
	viewport viewport.Model
	entries  []Entry
	ready    bool
}

// NewModel builds a browser over entries. The caller is responsible for
// sorting entries into the display order it wants (by address, typically).
func NewModel(entries []Entry) Model {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = e
	}

	delegate := list.NewDefaultDelegate()
	l := list.New(items, delegate, 0, 0)
	l.Title = "symbols"
	l.SetShowHelp(true)

	return Model{
		list:    l,
		entries: entries,
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		listWidth := msg.Width / 3
		bodyWidth := msg.Width - listWidth
		height := msg.Height - 2

		m.list.SetSize(listWidth, height)
		if !m.ready {
			m.viewport = viewport.New(bodyWidth, height)
			m.ready = true
		} else {
			m.viewport.Width = bodyWidth
			m.viewport.Height = height
		}
		m.syncViewport()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		m.syncViewport()
		return m, cmd
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) syncViewport() {
	if !m.ready {
		return
	}
	if item, ok := m.list.SelectedItem().(Entry); ok {
		m.viewport.SetContent(Highlight(item.Body))
		m.viewport.GotoTop()
	}
}

func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}
	left := listBorderStyle.Render(m.list.View())
	right := bodyBorderStyle.Render(m.viewport.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

// EntriesFromBodies pairs a sorted name/address/section list with their
// rendered bodies keyed by name, skipping any symbol the caller didn't
// render a body for (e.g. filtered out by a size cutoff).
func EntriesFromBodies(names []Entry, bodies map[string]string) []Entry {
	out := make([]Entry, 0, len(names))
	for _, e := range names {
		body, ok := bodies[e.Name]
		if !ok {
			continue
		}
		e.Body = body
		out = append(out, e)
	}
	return out
}

// SplitBodies breaks one EmitText/EmitData/EmitBss rendering into
// per-symbol bodies keyed by glabel/dlabel/jlabel name, since the emit
// package renders a whole section at once but the browser displays one
// symbol at a time.
func SplitBodies(rendered string) map[string]string {
	out := make(map[string]string)
	var name string
	var buf strings.Builder

	flush := func() {
		if name != "" {
			out[name] = strings.TrimRight(buf.String(), "\n")
		}
		buf.Reset()
	}

	for _, line := range strings.Split(rendered, "\n") {
		trimmed := strings.TrimSpace(line)
		isLabel := strings.HasPrefix(trimmed, "glabel ") ||
			strings.HasPrefix(trimmed, "dlabel ") ||
			strings.HasPrefix(trimmed, "jlabel ")
		if isLabel {
			flush()
			fields := strings.Fields(trimmed)
			if len(fields) == 2 {
				name = fields[1]
			} else {
				name = ""
			}
		}
		buf.WriteString(line)
		buf.WriteString("\n")
	}
	flush()
	return out
}

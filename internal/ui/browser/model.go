package browser

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/fwscope/internal/dwarftree"
	"github.com/muurk/fwscope/internal/ui"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(ui.TextColor).
			Background(ui.PrimaryColor).
			Bold(true).
			Padding(0, 1)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ui.MutedColor)

	focusedPaneStyle = paneStyle.
				BorderForeground(ui.PrimaryColor)

	cursorStyle = lipgloss.NewStyle().
			Reverse(true)
)

// row is one visible line of the tree pane.
type row struct {
	sym   *dwarftree.Symbol
	depth int
}

// Model is the tree browser. The left pane shows the expandable symbol tree
// and the right pane the full detail of the selected symbol.
type Model struct {
	info  *dwarftree.Info
	index *dwarftree.Index
	title string

	// expanded is keyed by symbol ID
	expanded map[int]bool
	rows     []row
	cursor   int
	offset   int

	detail viewport.Model

	Keys KeyMap
	Help help.Model

	Width  int
	Height int
}

// New creates a browser over info. A single compilation unit starts
// expanded.
func New(info *dwarftree.Info, title string) Model {
	if info == nil {
		info = &dwarftree.Info{}
	}

	m := Model{
		info:     info,
		index:    dwarftree.NewIndex(info),
		title:    title,
		expanded: map[int]bool{},
		detail:   viewport.New(defaultWidth/2, defaultHeight),
		Keys:     DefaultKeyMap(),
		Help:     help.New(),
		Width:    defaultWidth,
		Height:   defaultHeight,
	}
	if len(info.CompileUnits) == 1 {
		m.expanded[info.CompileUnits[0].ID] = true
	}
	m.flatten()
	m.resize()
	m.syncDetail()
	return m
}

// Run starts the browser on the alternate screen and blocks until it quits.
func Run(info *dwarftree.Info, title string) error {
	p := tea.NewProgram(New(info, title), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Help.Width = msg.Width
		m.resize()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.Keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.Keys.Help):
			m.Help.ShowAll = !m.Help.ShowAll
			m.resize()
		case key.Matches(msg, m.Keys.Up):
			m.moveTo(m.cursor - 1)
		case key.Matches(msg, m.Keys.Down):
			m.moveTo(m.cursor + 1)
		case key.Matches(msg, m.Keys.PageUp):
			m.moveTo(m.cursor - m.treeHeight())
		case key.Matches(msg, m.Keys.PageDown):
			m.moveTo(m.cursor + m.treeHeight())
		case key.Matches(msg, m.Keys.Top):
			m.moveTo(0)
		case key.Matches(msg, m.Keys.Bottom):
			m.moveTo(len(m.rows) - 1)
		case key.Matches(msg, m.Keys.Expand):
			m.expand()
		case key.Matches(msg, m.Keys.Collapse):
			m.collapse()
		case key.Matches(msg, m.Keys.Toggle):
			if s := m.Selected(); s != nil && len(s.Children) > 0 {
				m.expanded[s.ID] = !m.expanded[s.ID]
				m.flatten()
			}
		case key.Matches(msg, m.Keys.DetailUp):
			m.detail.SetYOffset(m.detail.YOffset - 1)
		case key.Matches(msg, m.Keys.DetailDown):
			m.detail.SetYOffset(m.detail.YOffset + 1)
		}
	}
	return m, nil
}

// Selected returns the symbol under the cursor, or nil for an empty tree.
func (m Model) Selected() *dwarftree.Symbol {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor].sym
}

// Expanded reports whether the symbol with the given ID shows its children.
func (m Model) Expanded(id int) bool {
	return m.expanded[id]
}

// VisibleNames lists the names of the rows currently shown, in order.
func (m Model) VisibleNames() []string {
	names := make([]string, len(m.rows))
	for i, r := range m.rows {
		names[i] = r.sym.Name
	}
	return names
}

// expand opens the selected node, or steps into it when already open.
func (m *Model) expand() {
	s := m.Selected()
	if s == nil || len(s.Children) == 0 {
		return
	}
	if !m.expanded[s.ID] {
		m.expanded[s.ID] = true
		m.flatten()
		return
	}
	m.moveTo(m.cursor + 1)
}

// collapse closes the selected node, or steps out to its parent when it is
// already closed.
func (m *Model) collapse() {
	s := m.Selected()
	if s == nil {
		return
	}
	if m.expanded[s.ID] {
		m.expanded[s.ID] = false
		m.flatten()
		return
	}
	ancestors := m.index.Ancestors(s.ID)
	if len(ancestors) == 0 {
		return
	}
	parent := ancestors[len(ancestors)-1]
	for i, r := range m.rows {
		if r.sym.ID == parent.ID {
			m.moveTo(i)
			return
		}
	}
}

// flatten rebuilds the visible rows from the expansion state. The cursor
// stays on the same row index, clamped to the new length.
func (m *Model) flatten() {
	rows := make([]row, 0, len(m.rows))
	var visit func(s *dwarftree.Symbol, depth int)
	visit = func(s *dwarftree.Symbol, depth int) {
		rows = append(rows, row{sym: s, depth: depth})
		if !m.expanded[s.ID] {
			return
		}
		for _, c := range s.Children {
			visit(c, depth+1)
		}
	}
	for _, cu := range m.info.CompileUnits {
		visit(cu, 0)
	}
	m.rows = rows
	m.moveTo(m.cursor)
}

func (m *Model) moveTo(i int) {
	if i >= len(m.rows) {
		i = len(m.rows) - 1
	}
	if i < 0 {
		i = 0
	}
	changed := i != m.cursor
	m.cursor = i

	h := m.treeHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}

	if changed {
		m.syncDetail()
	}
}

func (m *Model) syncDetail() {
	s := m.Selected()
	if s == nil {
		m.detail.SetContent(ui.StepPendingStyle.Render("No debug info"))
		return
	}
	m.detail.SetContent(ui.SymbolDetail(s, m.index.Ancestors(s.ID)))
	m.detail.GotoTop()
}

// paneWidths splits the screen between tree and detail, borders excluded.
func (m Model) paneWidths() (int, int) {
	inner := m.Width - 4
	if inner < 20 {
		inner = 20
	}
	left := inner / 2
	return left, inner - left
}

// treeHeight is the number of tree rows that fit between title and help.
func (m Model) treeHeight() int {
	h := m.Height - 2 - lipgloss.Height(m.Help.View(m.Keys)) - 1
	if h < 1 {
		h = 1
	}
	return h
}

func (m *Model) resize() {
	_, right := m.paneWidths()
	m.detail.Width = right
	m.detail.Height = m.treeHeight()
	m.moveTo(m.cursor)
}

// View implements tea.Model
func (m Model) View() string {
	title := titleStyle.Render("fwscope") + " " +
		ui.HeaderParamValueStyle.Render(m.title) + "  " +
		ui.StepNoteStyle.Render(fmt.Sprintf("%d symbols", m.info.TotalSymbols))

	left, right := m.paneWidths()
	height := m.treeHeight()

	tree := focusedPaneStyle.Width(left).Height(height).Render(m.renderTree(left, height))
	detail := paneStyle.Width(right).Height(height).Render(m.detail.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		lipgloss.JoinHorizontal(lipgloss.Top, tree, detail),
		m.Help.View(m.Keys),
	)
}

func (m Model) renderTree(width, height int) string {
	if len(m.rows) == 0 {
		return ui.StepPendingStyle.Render("No debug info")
	}

	end := m.offset + height
	if end > len(m.rows) {
		end = len(m.rows)
	}

	line := lipgloss.NewStyle().MaxWidth(width)
	lines := make([]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		r := m.rows[i]
		marker := "  "
		if len(r.sym.Children) > 0 {
			marker = "▸ "
			if m.expanded[r.sym.ID] {
				marker = "▾ "
			}
		}
		text := strings.Repeat("  ", r.depth) + marker + r.sym.Name
		if i == m.cursor {
			text = cursorStyle.Render(text)
		} else {
			text = ui.TagStyle(r.sym.Tag).Render(text)
		}
		lines = append(lines, line.Render(text))
	}
	return strings.Join(lines, "\n")
}

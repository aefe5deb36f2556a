package browser

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/fwscope/internal/dwarftree"
)

func sym(id int, name string, tag dwarftree.Tag, children ...*dwarftree.Symbol) *dwarftree.Symbol {
	if children == nil {
		children = []*dwarftree.Symbol{}
	}
	return &dwarftree.Symbol{ID: id, Name: name, Tag: tag, Children: children, Attributes: []dwarftree.Attribute{}}
}

// firmware is main.c { main { argc, <block> { i } }, counter }.
func firmware() *dwarftree.Info {
	cu := sym(0, "main.c", dwarftree.TagCompileUnit,
		sym(1, "main", dwarftree.TagSubprogram,
			sym(2, "argc", dwarftree.TagFormalParameter),
			sym(3, "<block>", dwarftree.TagLexicalBlock,
				sym(4, "i", dwarftree.TagVariable),
			),
		),
		sym(5, "counter", dwarftree.TagVariable),
	)
	return &dwarftree.Info{Present: true, CompileUnits: []*dwarftree.Symbol{cu}, TotalSymbols: 6}
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

var (
	up    = tea.KeyMsg{Type: tea.KeyUp}
	down  = tea.KeyMsg{Type: tea.KeyDown}
	right = tea.KeyMsg{Type: tea.KeyRight}
	left  = tea.KeyMsg{Type: tea.KeyLeft}
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewExpandsSingleUnit(t *testing.T) {
	m := New(firmware(), "app.elf")

	assert.True(t, m.Expanded(0))
	assert.Equal(t, []string{"main.c", "main", "counter"}, m.VisibleNames())
	assert.Equal(t, "main.c", m.Selected().Name)
}

func TestNewKeepsSeveralUnitsCollapsed(t *testing.T) {
	info := firmware()
	info.CompileUnits = append(info.CompileUnits, sym(6, "util.c", dwarftree.TagCompileUnit, sym(7, "helper", dwarftree.TagSubprogram)))

	m := New(info, "app.elf")
	assert.Equal(t, []string{"main.c", "util.c"}, m.VisibleNames())
}

func TestCursorMovesAndClamps(t *testing.T) {
	m := New(firmware(), "app.elf")

	m = press(t, m, up)
	assert.Equal(t, "main.c", m.Selected().Name)

	m = press(t, m, down, down, down, down)
	assert.Equal(t, "counter", m.Selected().Name)

	m = press(t, m, runes("g"))
	assert.Equal(t, "main.c", m.Selected().Name)

	m = press(t, m, runes("G"))
	assert.Equal(t, "counter", m.Selected().Name)
}

func TestExpandAndCollapse(t *testing.T) {
	m := New(firmware(), "app.elf")

	m = press(t, m, down, right)
	assert.True(t, m.Expanded(1))
	assert.Equal(t, []string{"main.c", "main", "argc", "<block>", "counter"}, m.VisibleNames())
	assert.Equal(t, "main", m.Selected().Name)

	// A second expand steps into the first child
	m = press(t, m, right)
	assert.Equal(t, "argc", m.Selected().Name)

	// Collapsing a leaf moves to its parent
	m = press(t, m, left)
	assert.Equal(t, "main", m.Selected().Name)

	m = press(t, m, left)
	assert.False(t, m.Expanded(1))
	assert.Equal(t, []string{"main.c", "main", "counter"}, m.VisibleNames())
}

func TestExpandLeafDoesNothing(t *testing.T) {
	m := New(firmware(), "app.elf")

	m = press(t, m, runes("G"), right)
	assert.Equal(t, "counter", m.Selected().Name)
	assert.False(t, m.Expanded(5))
}

func TestToggle(t *testing.T) {
	m := New(firmware(), "app.elf")

	m = press(t, m, down, space)
	assert.True(t, m.Expanded(1))

	m = press(t, m, space)
	assert.False(t, m.Expanded(1))
}

func TestCollapseUnitKeepsCursorInRange(t *testing.T) {
	m := New(firmware(), "app.elf")

	m = press(t, m, left)
	assert.Equal(t, []string{"main.c"}, m.VisibleNames())
	assert.Equal(t, "main.c", m.Selected().Name)
}

func TestQuit(t *testing.T) {
	m := New(firmware(), "app.elf")

	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestWindowSize(t *testing.T) {
	m := New(firmware(), "app.elf")

	next, cmd := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Nil(t, cmd)
	m = next.(Model)
	assert.Equal(t, 120, m.Width)
	assert.Equal(t, 40, m.Height)
}

func TestView(t *testing.T) {
	m := New(firmware(), "app.elf")
	m = press(t, m, down)

	out := m.View()
	assert.Contains(t, out, "fwscope")
	assert.Contains(t, out, "app.elf")
	assert.Contains(t, out, "6 symbols")
	assert.Contains(t, out, "▸ main")
	assert.Contains(t, out, "Subprogram")
	assert.Contains(t, out, "quit")
}

func TestEmptyTree(t *testing.T) {
	m := New(&dwarftree.Info{}, "app.elf")

	assert.Nil(t, m.Selected())
	m = press(t, m, down, right, left, space)
	assert.Nil(t, m.Selected())
	assert.Contains(t, m.View(), "No debug info")

	assert.Nil(t, New(nil, "app.elf").Selected())
}

package cli

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kintreehq/kintree/pkg/core/tree"
	"github.com/kintreehq/kintree/pkg/layout"
	"github.com/kintreehq/kintree/pkg/pipeline"
)

// Tree browser styles
var (
	treeSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	treeFocalStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	treeFemaleStyle   = lipgloss.NewStyle().Foreground(colorRose)
	treeMaleStyle     = lipgloss.NewStyle().Foreground(colorSky)
	treeNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	treeDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	treeErrorStyle    = lipgloss.NewStyle().Foreground(colorRed)
)

// rowEpsilon groups nodes into the same display row when their vertical
// positions differ by less than this.
const rowEpsilon = 0.5

// =============================================================================
// TreeModel - Interactive tree browsing
// =============================================================================

// diagramMsg delivers the result of an asynchronous layout run.
type diagramMsg struct {
	diagram layout.Diagram
	cached  bool
	err     error
}

// TreeModel is the bubbletea model for browsing a family tree. Arrow keys
// move the selection, enter refocuses the tree on the selected person,
// "e" expands or collapses their hidden relatives, and "m" toggles between
// focused and full view.
type TreeModel struct {
	snap     *tree.Snapshot
	runner   *pipeline.Runner
	opts     pipeline.Options
	expanded map[string]bool

	diagram layout.Diagram
	rows    [][]layout.Node
	cursorR int
	cursorC int

	loading bool
	cached  bool
	err     error
	width   int
}

// NewTreeModel creates a tree browser for the given snapshot, focused on
// opts.FocalID.
func NewTreeModel(snap *tree.Snapshot, runner *pipeline.Runner, opts pipeline.Options) TreeModel {
	expanded := make(map[string]bool)
	for _, id := range opts.ExpandedIDs {
		expanded[id] = true
	}
	return TreeModel{
		snap:     snap,
		runner:   runner,
		opts:     opts,
		expanded: expanded,
		loading:  true,
		width:    80,
	}
}

func (m TreeModel) Init() tea.Cmd {
	return m.computeCmd()
}

// computeCmd runs the layout pipeline off the UI goroutine.
func (m TreeModel) computeCmd() tea.Cmd {
	opts := m.opts
	opts.ExpandedIDs = make([]string, 0, len(m.expanded))
	for id, on := range m.expanded {
		if on {
			opts.ExpandedIDs = append(opts.ExpandedIDs, id)
		}
	}
	snap, runner := m.snap, m.runner
	return func() tea.Msg {
		result, err := runner.Execute(context.Background(), snap, opts)
		if err != nil {
			return diagramMsg{err: err}
		}
		return diagramMsg{diagram: result.Diagram, cached: result.CacheInfo.LayoutHit}
	}
}

func (m TreeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case diagramMsg:
		m.loading = false
		m.cached = msg.cached
		m.err = msg.err
		if msg.err == nil {
			m.diagram = msg.diagram
			m.rows = groupRows(msg.diagram)
			m.moveCursorTo(m.opts.FocalID)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.loading {
			if s := msg.String(); s == "q" || s == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursorR > 0 {
				m.cursorR--
				m.clampCol()
			}
		case "down", "j":
			if m.cursorR < len(m.rows)-1 {
				m.cursorR++
				m.clampCol()
			}
		case "left", "h":
			if m.cursorC > 0 {
				m.cursorC--
			}
		case "right", "l":
			if len(m.rows) > 0 && m.cursorC < len(m.rows[m.cursorR])-1 {
				m.cursorC++
			}
		case "enter":
			if n, ok := m.selected(); ok && n.ID != m.opts.FocalID {
				m.opts.FocalID = n.ID
				m.loading = true
				return m, m.computeCmd()
			}
		case "e":
			if n, ok := m.selected(); ok {
				m.expanded[n.ID] = !m.expanded[n.ID]
				m.loading = true
				return m, m.computeCmd()
			}
		case "m":
			if m.opts.Mode == pipeline.ModeFull {
				m.opts.Mode = pipeline.ModeFocused
			} else {
				m.opts.Mode = pipeline.ModeFull
			}
			m.loading = true
			return m, m.computeCmd()
		}
	}
	return m, nil
}

func (m TreeModel) View() string {
	var b strings.Builder

	mode := m.opts.Mode
	if mode == "" {
		mode = pipeline.ModeFocused
	}
	b.WriteString(StyleTitle.Render("Family Tree"))
	b.WriteString(treeDimStyle.Render(fmt.Sprintf("  [%s view]", mode)))
	if m.cached {
		b.WriteString("  " + styleCached.Render(iconCached))
	}
	b.WriteString("\n")
	b.WriteString(treeDimStyle.Render("↑/↓/←/→ navigate  ⏎ refocus  e expand  m mode  q quit"))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(treeErrorStyle.Render(iconError + " " + m.err.Error()))
		b.WriteString("\n")
		return b.String()
	}
	if m.loading {
		b.WriteString(treeDimStyle.Render("computing layout..."))
		b.WriteString("\n")
		return b.String()
	}

	for r, row := range m.rows {
		var cells []string
		for c, n := range row {
			cells = append(cells, m.renderNode(n, r == m.cursorR && c == m.cursorC))
		}
		b.WriteString("  " + strings.Join(cells, treeDimStyle.Render(" ─ ")))
		b.WriteString("\n")
	}

	if n, ok := m.selected(); ok {
		b.WriteString("\n")
		b.WriteString(m.renderDetail(n))
	}

	return b.String()
}

// renderNode renders one person cell: name, focal marker, and a "+" when
// the node has hidden relatives to expand.
func (m TreeModel) renderNode(n layout.Node, current bool) string {
	name := displayName(n)

	style := treeNormalStyle
	switch n.Gender {
	case string(tree.GenderFemale):
		style = treeFemaleStyle
	case string(tree.GenderMale):
		style = treeMaleStyle
	}
	if n.Focal {
		style = treeFocalStyle
	}

	label := name
	if hasHidden(n) {
		marker := "+"
		if m.expanded[n.ID] {
			marker = "−"
		}
		label += treeDimStyle.Render(marker)
	}

	if current {
		return treeSelectedStyle.Render("▸" + label + "◂")
	}
	return " " + style.Render(label) + " "
}

// renderDetail renders the info panel for the selected person.
func (m TreeModel) renderDetail(n layout.Node) string {
	var parts []string
	if n.BirthDate != "" {
		parts = append(parts, "*"+n.BirthDate)
	}
	if n.DeathDate != "" {
		parts = append(parts, "†"+n.DeathDate)
	}

	var hidden []string
	if n.HasHiddenParents {
		hidden = append(hidden, "parents")
	}
	if n.HasHiddenChildren {
		hidden = append(hidden, "children")
	}
	if n.HasHiddenSpouses {
		hidden = append(hidden, "spouses")
	}
	if n.HasHiddenSiblings {
		hidden = append(hidden, "siblings")
	}

	line := "  " + StyleValue.Render(displayName(n))
	if len(parts) > 0 {
		line += "  " + treeDimStyle.Render(strings.Join(parts, " "))
	}
	if len(hidden) > 0 {
		line += "\n  " + StyleWarning.Render("hidden: "+strings.Join(hidden, ", "))
	}
	return line + "\n"
}

// =============================================================================
// Helpers
// =============================================================================

// selected returns the node under the cursor.
func (m TreeModel) selected() (layout.Node, bool) {
	if m.cursorR >= len(m.rows) {
		return layout.Node{}, false
	}
	row := m.rows[m.cursorR]
	if m.cursorC >= len(row) {
		return layout.Node{}, false
	}
	return row[m.cursorC], true
}

func (m *TreeModel) clampCol() {
	if len(m.rows) == 0 {
		m.cursorC = 0
		return
	}
	if last := len(m.rows[m.cursorR]) - 1; m.cursorC > last {
		m.cursorC = last
	}
}

// moveCursorTo places the cursor on id, falling back to the first node.
func (m *TreeModel) moveCursorTo(id string) {
	m.cursorR, m.cursorC = 0, 0
	for r, row := range m.rows {
		for c, n := range row {
			if n.ID == id {
				m.cursorR, m.cursorC = r, c
				return
			}
		}
	}
}

// groupRows buckets nodes into display rows by vertical position, top row
// first, each row ordered left to right.
func groupRows(d layout.Diagram) [][]layout.Node {
	var rows [][]layout.Node
	var ys []float64

	for _, n := range d.Nodes {
		placed := false
		for i, y := range ys {
			if math.Abs(n.Y-y) < rowEpsilon {
				rows[i] = append(rows[i], n)
				placed = true
				break
			}
		}
		if !placed {
			ys = append(ys, n.Y)
			rows = append(rows, []layout.Node{n})
		}
	}

	sort.Sort(byRowY{ys, rows})
	for _, row := range rows {
		sort.Slice(row, func(i, j int) bool { return row[i].X < row[j].X })
	}
	return rows
}

// byRowY sorts parallel row slices by their y coordinate.
type byRowY struct {
	ys   []float64
	rows [][]layout.Node
}

func (s byRowY) Len() int           { return len(s.ys) }
func (s byRowY) Less(i, j int) bool { return s.ys[i] < s.ys[j] }
func (s byRowY) Swap(i, j int) {
	s.ys[i], s.ys[j] = s.ys[j], s.ys[i]
	s.rows[i], s.rows[j] = s.rows[j], s.rows[i]
}

func displayName(n layout.Node) string {
	name := strings.TrimSpace(n.GivenName + " " + n.FamilyName)
	if name == "" {
		return n.ID
	}
	return name
}

func hasHidden(n layout.Node) bool {
	return n.HasHiddenParents || n.HasHiddenChildren || n.HasHiddenSpouses || n.HasHiddenSiblings
}

package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/rundown/pkg/editor"
	"github.com/matzehuels/rundown/pkg/rundown"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	detailBoxStyle    = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
)

// browseCommand creates the browse command.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "browse",
		Short:   "Browse the project outline interactively",
		GroupID: groupProject,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				p, err := ed.Load(cmd.Context())
				if err != nil {
					return err
				}
				prog := tea.NewProgram(NewOutlineModel(p), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
				_, err = prog.Run()
				return err
			})
		},
	}
}

// =============================================================================
// OutlineModel - Interactive project outline
// =============================================================================

// OutlineModel is the bubbletea model for browsing a project.
type OutlineModel struct {
	Project rundown.Project
	Rows    []outlineRow
	Cursor  int
	Offset  int
	Height  int

	// Detail shows the selected row's fields below the list.
	Detail bool
}

// NewOutlineModel creates an outline model positioned on the first row.
func NewOutlineModel(p rundown.Project) OutlineModel {
	return OutlineModel{
		Project: p,
		Rows:    outline(p),
		Height:  15,
		Detail:  true,
	}
}

func (m OutlineModel) Init() tea.Cmd {
	return nil
}

func (m OutlineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup":
			m.move(-m.Height)
		case "pgdown":
			m.move(m.Height)
		case "home", "g":
			m.move(-len(m.Rows))
		case "end", "G":
			m.move(len(m.Rows))
		case "enter", " ":
			m.Detail = !m.Detail
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-12, 5)
		m.move(0)
	}
	return m, nil
}

// move shifts the cursor by delta and keeps it inside the visible window.
func (m *OutlineModel) move(delta int) {
	if len(m.Rows) == 0 {
		return
	}
	m.Cursor = min(max(m.Cursor+delta, 0), len(m.Rows)-1)
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m OutlineModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Project.Name))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  q quit"))
	b.WriteString("\n\n")

	if len(m.Rows) == 0 {
		b.WriteString(listDimStyle.Render("  (empty project)"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Rows))
	for i := m.Offset; i < end; i++ {
		r := m.Rows[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		line := cursor + strings.Repeat("  ", r.depth) + rowMarker(r.kind) + r.label
		switch {
		case i == m.Cursor:
			line = listSelectedStyle.Render(line)
		case r.kind == rowSection:
			line = listDimStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Rows))))

	if m.Detail {
		if d := m.detail(m.Rows[m.Cursor]); d != "" {
			b.WriteString("\n")
			b.WriteString(detailBoxStyle.Render(d))
		}
	}
	return b.String()
}

func rowMarker(k rowKind) string {
	switch k {
	case rowLane:
		return "≡ "
	case rowBlock:
		return "▤ "
	case rowGroup:
		return "◆ "
	case rowBeat:
		return "• "
	default:
		return ""
	}
}

// detail renders the fields of the entity behind r.
func (m OutlineModel) detail(r outlineRow) string {
	p := m.Project
	var lines []string
	field := func(k, v string) {
		if v != "" {
			lines = append(lines, StyleDim.Render(fmt.Sprintf("%-11s", k))+" "+v)
		}
	}

	switch r.kind {
	case rowBeat:
		b, ok := p.Beat(r.id)
		if !ok {
			return ""
		}
		field("id", b.ID)
		field("title", b.Title)
		field("type", b.TypeID)
		if b.Duration > 0 {
			field("duration", formatDuration(b.Duration))
		}
		field("start", b.StartTime)
		field("scene", b.Scene)
		field("character", b.Character)
		field("cues", strings.Join(b.Cues, ", "))
		field("assets", strings.Join(b.Assets, ", "))
		field("script", b.Description)
	case rowGroup:
		g, ok := p.BeatGroup(r.id)
		if !ok {
			return ""
		}
		field("id", g.ID)
		field("beats", fmt.Sprint(len(g.BeatIDs)))
		field("color", g.Color)
		field("description", g.Description)
	case rowBlock:
		b, ok := p.Block(r.id)
		if !ok {
			return ""
		}
		field("id", b.ID)
		field("groups", fmt.Sprint(len(b.GroupIDs)))
		field("size", fmt.Sprintf("%.0f×%.0f", rundown.BlockWidth(len(b.GroupIDs)), rundown.BlockHeight(p, b)))
	case rowLane:
		l, ok := p.Lane(r.id)
		if !ok {
			return ""
		}
		field("id", l.ID)
		field("blocks", fmt.Sprint(len(l.BlockIDs)))
		field("height", fmt.Sprintf("%.0f", rundown.LaneHeight(p, l)))
	default:
		return ""
	}
	return strings.Join(lines, "\n")
}

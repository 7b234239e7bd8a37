package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/rundown/pkg/editor"
	"github.com/matzehuels/rundown/pkg/rundown"
)

// beatCommand creates the beat command and its subcommands.
func (c *CLI) beatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "beat",
		Short:   "Add, edit and list beats",
		GroupID: groupEdit,
	}
	cmd.AddCommand(c.beatAddCommand())
	cmd.AddCommand(c.beatUpdateCommand())
	cmd.AddCommand(c.beatRemoveCommand())
	cmd.AddCommand(c.beatListCommand())
	return cmd
}

// beatFlags holds the editable beat fields.
type beatFlags struct {
	title       string
	description string
	typeID      string
	order       int
	duration    float64
	start       string
	scene       string
	character   string
	cues        []string
	assets      []string
	pos         positionFlags
}

func (f *beatFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.title, "title", "t", "", "beat title")
	fl.StringVarP(&f.description, "description", "d", "", "script text")
	fl.StringVar(&f.typeID, "type", "", "beat type id (opening, news, sports, weather, closing)")
	fl.IntVar(&f.order, "order", 0, "sort order")
	fl.Float64Var(&f.duration, "duration", 0, "duration in seconds")
	fl.StringVar(&f.start, "start", "", "start time (e.g. 18:00:30)")
	fl.StringVar(&f.scene, "scene", "", "scene heading")
	fl.StringVar(&f.character, "character", "", "speaking character")
	fl.StringArrayVar(&f.cues, "cue", nil, "production cue (repeatable)")
	fl.StringArrayVar(&f.assets, "asset", nil, "asset reference (repeatable)")
	f.pos.register(cmd)
}

// patch collects the flags set on the command line.
func (f *beatFlags) patch(cmd *cobra.Command) (*rundown.BeatPatch, error) {
	pos, err := f.pos.position(cmd)
	if err != nil {
		return nil, err
	}
	return &rundown.BeatPatch{
		Title:       changed(cmd, "title", f.title),
		Description: changed(cmd, "description", f.description),
		TypeID:      changed(cmd, "type", f.typeID),
		Order:       changed(cmd, "order", f.order),
		Duration:    changed(cmd, "duration", f.duration),
		StartTime:   changed(cmd, "start", f.start),
		Scene:       changed(cmd, "scene", f.scene),
		Character:   changed(cmd, "character", f.character),
		Cues:        changed(cmd, "cue", f.cues),
		Assets:      changed(cmd, "asset", f.assets),
		Position:    pos,
	}, nil
}

func (c *CLI) beatAddCommand() *cobra.Command {
	var f beatFlags
	var group string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a beat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := f.patch(cmd)
			if err != nil {
				return err
			}
			res, err := c.apply(cmd.Context(), editor.Command{
				Op:       editor.OpBeatCreate,
				TypeID:   f.typeID,
				ParentID: group,
				Beat:     patch,
			})
			if err != nil {
				return err
			}
			reportCreated("beat", res)
			return nil
		},
	}

	f.register(cmd)
	cmd.Flags().StringVarP(&group, "group", "g", "", "append the beat to this group")
	return cmd
}

func (c *CLI) beatUpdateCommand() *cobra.Command {
	var f beatFlags

	cmd := &cobra.Command{
		Use:   "update <beat-id>",
		Short: "Change beat fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := f.patch(cmd)
			if err != nil {
				return err
			}
			res, err := c.apply(cmd.Context(), editor.Command{Op: editor.OpBeatUpdate, ID: args[0], Beat: patch})
			if err != nil {
				return err
			}
			reportEdit(res, "Updated beat %s", styleID.Render(args[0]))
			return nil
		},
		ValidArgsFunction: c.completeIDs(rowBeat),
	}

	f.register(cmd)
	return cmd
}

func (c *CLI) beatRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <beat-id>...",
		Aliases: []string{"delete"},
		Short:   "Delete beats and their group membership",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.apply(cmd.Context(), deleteAll(editor.OpBeatDelete, args)...)
			if err != nil {
				return err
			}
			reportEdit(res, "Deleted %s", plural(len(args), "beat"))
			return nil
		},
		ValidArgsFunction: c.completeIDs(rowBeat),
	}
}

func (c *CLI) beatListCommand() *cobra.Command {
	var typeID string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List beats in order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				p, err := ed.Load(cmd.Context())
				if err != nil {
					return err
				}
				rows := beatRows(p, typeID)
				if len(rows) == 0 {
					printInfo("No beats")
					return nil
				}
				fmt.Fprintln(out, beatTable(rows).Render())
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&typeID, "type", "", "only list beats of this type")
	return cmd
}

// beatRows returns one table row per beat in sort order.
func beatRows(p rundown.Project, typeID string) [][]string {
	var rows [][]string
	for _, b := range rundown.SortedBeats(p) {
		if typeID != "" && b.TypeID != typeID {
			continue
		}
		group := "—"
		if g, ok := rundown.GroupForBeat(p, b.ID); ok {
			group = nameOr(g.Name, g.ID)
		}
		duration := "—"
		if b.Duration > 0 {
			duration = formatDuration(b.Duration)
		}
		typeName := b.TypeID
		if t, ok := p.BeatType(b.TypeID); ok {
			typeName = t.Name
		}
		rows = append(rows, []string{
			fmt.Sprint(b.Order), b.ID, nameOr(b.Title, "(untitled)"), typeName, duration, group,
		})
	}
	return rows
}

func beatTable(rows [][]string) *table.Table {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "ID", "Title", "Type", "Length", "Group").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 1:
				return styleID
			case col == 0 || col == 4:
				return StyleNumber
			default:
				return StyleValue
			}
		})
}

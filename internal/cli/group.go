package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/rundown/pkg/editor"
	"github.com/matzehuels/rundown/pkg/rundown"
)

// groupCommand creates the group command and its subcommands.
func (c *CLI) groupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "group",
		Short:   "Manage beat groups (segments)",
		GroupID: groupEdit,
	}
	cmd.AddCommand(c.groupCreateCommand())
	cmd.AddCommand(c.groupAddBeatsCommand())
	cmd.AddCommand(c.groupInsertCommand())
	cmd.AddCommand(c.groupRemoveBeatCommand())
	cmd.AddCommand(c.groupUpdateCommand())
	cmd.AddCommand(c.groupRemoveCommand())
	return cmd
}

// groupFlags holds the editable group fields.
type groupFlags struct {
	name        string
	description string
	color       string
	collapsed   bool
	order       int
	pos         positionFlags
}

func (f *groupFlags) register(cmd *cobra.Command, withName bool) {
	fl := cmd.Flags()
	if withName {
		fl.StringVarP(&f.name, "name", "n", "", "group name")
	}
	fl.StringVarP(&f.description, "description", "d", "", "group description")
	fl.StringVar(&f.color, "color", "", "group color (e.g. #3b82f6)")
	fl.BoolVar(&f.collapsed, "collapsed", false, "collapse the group")
	fl.IntVar(&f.order, "order", 0, "sort order")
	f.pos.register(cmd)
}

func (f *groupFlags) patch(cmd *cobra.Command) (*rundown.GroupPatch, error) {
	pos, err := f.pos.position(cmd)
	if err != nil {
		return nil, err
	}
	return &rundown.GroupPatch{
		Name:        changed(cmd, "name", f.name),
		Description: changed(cmd, "description", f.description),
		Color:       changed(cmd, "color", f.color),
		Collapsed:   changed(cmd, "collapsed", f.collapsed),
		Order:       changed(cmd, "order", f.order),
		Position:    pos,
	}, nil
}

func (c *CLI) groupCreateCommand() *cobra.Command {
	var f groupFlags
	var block, before string

	cmd := &cobra.Command{
		Use:   "create <name> [beat-id...]",
		Short: "Create a group, optionally holding beats",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := f.patch(cmd)
			if err != nil {
				return err
			}
			res, err := c.apply(cmd.Context(), editor.Command{
				Op:       editor.OpGroupCreate,
				Name:     args[0],
				IDs:      args[1:],
				ParentID: block,
				TargetID: before,
				Group:    patch,
			})
			if err != nil {
				return err
			}
			reportCreated("group", res)
			return nil
		},
	}

	f.register(cmd, false)
	cmd.Flags().StringVarP(&block, "block", "b", "", "add the group to this block")
	cmd.Flags().StringVar(&before, "before", "", "with --block, insert before this group")
	return cmd
}

func (c *CLI) groupAddBeatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add-beats <group-id> <beat-id>...",
		Short: "Append beats to a group, moving them out of other groups",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.apply(cmd.Context(), editor.Command{Op: editor.OpGroupAddBeats, ID: args[0], IDs: args[1:]})
			if err != nil {
				return err
			}
			reportEdit(res, "Added %s to %s", plural(len(args)-1, "beat"), styleID.Render(args[0]))
			return nil
		},
	}
}

func (c *CLI) groupInsertCommand() *cobra.Command {
	var before string

	cmd := &cobra.Command{
		Use:   "insert <group-id> <beat-id>",
		Short: "Insert a beat into a group before another beat",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.apply(cmd.Context(), editor.Command{
				Op:       editor.OpGroupInsertBeat,
				ParentID: args[0],
				ID:       args[1],
				TargetID: before,
			})
			if err != nil {
				return err
			}
			reportEdit(res, "Inserted %s into %s", styleID.Render(args[1]), styleID.Render(args[0]))
			return nil
		},
	}

	cmd.Flags().StringVar(&before, "before", "", "beat to insert before (default: append)")
	return cmd
}

func (c *CLI) groupRemoveBeatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-beat <group-id> <beat-id>",
		Short: "Take a beat out of a group; the beat is kept",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.apply(cmd.Context(), editor.Command{
				Op:       editor.OpGroupRemoveBeat,
				ParentID: args[0],
				ID:       args[1],
			})
			if err != nil {
				return err
			}
			reportEdit(res, "Removed %s from %s", styleID.Render(args[1]), styleID.Render(args[0]))
			return nil
		},
	}
}

func (c *CLI) groupUpdateCommand() *cobra.Command {
	var f groupFlags

	cmd := &cobra.Command{
		Use:   "update <group-id>",
		Short: "Change group fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := f.patch(cmd)
			if err != nil {
				return err
			}
			res, err := c.apply(cmd.Context(), editor.Command{Op: editor.OpGroupUpdate, ID: args[0], Group: patch})
			if err != nil {
				return err
			}
			reportEdit(res, "Updated group %s", styleID.Render(args[0]))
			return nil
		},
		ValidArgsFunction: c.completeIDs(rowGroup),
	}

	f.register(cmd, true)
	return cmd
}

func (c *CLI) groupRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <group-id>...",
		Aliases: []string{"delete"},
		Short:   "Delete groups; their beats stay in the project",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.apply(cmd.Context(), deleteAll(editor.OpGroupDelete, args)...)
			if err != nil {
				return err
			}
			reportEdit(res, "Deleted %s", plural(len(args), "group"))
			return nil
		},
		ValidArgsFunction: c.completeIDs(rowGroup),
	}
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/rundown/pkg/editor"
	"github.com/matzehuels/rundown/pkg/rundown"
)

// laneCommand creates the lane command and its subcommands.
func (c *CLI) laneCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "lane",
		Short:   "Manage lanes of stacked blocks",
		GroupID: groupEdit,
	}
	cmd.AddCommand(c.laneCreateCommand())
	cmd.AddCommand(c.laneAddCommand())
	cmd.AddCommand(c.laneRemoveBlockCommand())
	cmd.AddCommand(c.laneUpdateCommand())
	cmd.AddCommand(c.laneRemoveCommand())
	return cmd
}

func (c *CLI) laneCreateCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "create <block-id> <block-id>...",
		Short: "Stack two or more blocks into a lane",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.apply(cmd.Context(), editor.Command{Op: editor.OpLaneCreate, Name: name, IDs: args})
			if err != nil {
				return err
			}
			reportCreated("lane", res)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "lane name")
	return cmd
}

func (c *CLI) laneAddCommand() *cobra.Command {
	var before string

	cmd := &cobra.Command{
		Use:   "add <lane-id> <block-id>",
		Short: "Add a block to a lane",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.apply(cmd.Context(), editor.Command{
				Op:       editor.OpLaneAddBlock,
				ParentID: args[0],
				ID:       args[1],
				TargetID: before,
			})
			if err != nil {
				return err
			}
			reportEdit(res, "Added %s to %s", styleID.Render(args[1]), styleID.Render(args[0]))
			return nil
		},
	}

	cmd.Flags().StringVar(&before, "before", "", "block to insert before (default: append)")
	return cmd
}

func (c *CLI) laneRemoveBlockCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <block-id>",
		Short: "Take a block out of its lane; a lane left with one block is dissolved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.apply(cmd.Context(), editor.Command{Op: editor.OpLaneRemoveBlock, ID: args[0]})
			if err != nil {
				return err
			}
			reportEdit(res, "Removed %s from its lane", styleID.Render(args[0]))
			return nil
		},
		ValidArgsFunction: c.completeIDs(rowBlock),
	}
}

func (c *CLI) laneUpdateCommand() *cobra.Command {
	var name string
	var pos positionFlags

	cmd := &cobra.Command{
		Use:   "update <lane-id>",
		Short: "Rename or move a lane",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := pos.position(cmd)
			if err != nil {
				return err
			}
			res, err := c.apply(cmd.Context(), editor.Command{
				Op:   editor.OpLaneUpdate,
				ID:   args[0],
				Lane: &rundown.LanePatch{Name: changed(cmd, "name", name), Position: at},
			})
			if err != nil {
				return err
			}
			reportEdit(res, "Updated lane %s", styleID.Render(args[0]))
			return nil
		},
		ValidArgsFunction: c.completeIDs(rowLane),
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "lane name")
	pos.register(cmd)
	return cmd
}

func (c *CLI) laneRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <lane-id>...",
		Aliases: []string{"delete"},
		Short:   "Delete lanes; their blocks stay in the project",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.apply(cmd.Context(), deleteAll(editor.OpLaneDelete, args)...)
			if err != nil {
				return err
			}
			reportEdit(res, "Deleted %s", plural(len(args), "lane"))
			return nil
		},
		ValidArgsFunction: c.completeIDs(rowLane),
	}
}

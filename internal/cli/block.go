package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/rundown/pkg/editor"
	"github.com/matzehuels/rundown/pkg/rundown"
)

// blockCommand creates the block command and its subcommands.
func (c *CLI) blockCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "block",
		Short:   "Manage blocks of groups",
		GroupID: groupEdit,
	}
	cmd.AddCommand(c.blockCreateCommand())
	cmd.AddCommand(c.blockAddCommand())
	cmd.AddCommand(c.blockRemoveGroupCommand())
	cmd.AddCommand(c.blockUpdateCommand())
	cmd.AddCommand(c.blockRemoveCommand())
	return cmd
}

func (c *CLI) blockCreateCommand() *cobra.Command {
	var name, lane, before string

	cmd := &cobra.Command{
		Use:   "create <group-id> <group-id>...",
		Short: "Pack two or more groups into a block",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.apply(cmd.Context(), editor.Command{
				Op:       editor.OpBlockCreate,
				Name:     name,
				IDs:      args,
				ParentID: lane,
				TargetID: before,
			})
			if err != nil {
				return err
			}
			reportCreated("block", res)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "block name")
	cmd.Flags().StringVarP(&lane, "lane", "l", "", "add the block to this lane")
	cmd.Flags().StringVar(&before, "before", "", "with --lane, insert before this block")
	return cmd
}

func (c *CLI) blockAddCommand() *cobra.Command {
	var before string

	cmd := &cobra.Command{
		Use:   "add <block-id> <group-id>",
		Short: "Add a group to a block",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.apply(cmd.Context(), editor.Command{
				Op:       editor.OpBlockAddGroup,
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

	cmd.Flags().StringVar(&before, "before", "", "group to insert before (default: append)")
	return cmd
}

func (c *CLI) blockRemoveGroupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <block-id> <group-id>",
		Short: "Take a group out of a block; a block left with one group is dissolved",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.apply(cmd.Context(), editor.Command{
				Op:       editor.OpBlockRemoveGroup,
				ParentID: args[0],
				ID:       args[1],
			})
			if err != nil {
				return err
			}
			reportEdit(res, "Removed %s from %s", styleID.Render(args[1]), styleID.Render(args[0]))
			if _, ok := res.Project.Block(args[0]); !ok && res.Changed {
				printDetail("block %s dissolved", args[0])
			}
			return nil
		},
	}
}

func (c *CLI) blockUpdateCommand() *cobra.Command {
	var name string
	var pos positionFlags

	cmd := &cobra.Command{
		Use:   "update <block-id>",
		Short: "Rename or move a block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := pos.position(cmd)
			if err != nil {
				return err
			}
			res, err := c.apply(cmd.Context(), editor.Command{
				Op:    editor.OpBlockUpdate,
				ID:    args[0],
				Block: &rundown.BlockPatch{Name: changed(cmd, "name", name), Position: at},
			})
			if err != nil {
				return err
			}
			reportEdit(res, "Updated block %s", styleID.Render(args[0]))
			return nil
		},
		ValidArgsFunction: c.completeIDs(rowBlock),
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "block name")
	pos.register(cmd)
	return cmd
}

func (c *CLI) blockRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <block-id>...",
		Aliases: []string{"delete"},
		Short:   "Delete blocks; their groups stay in the project",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.apply(cmd.Context(), deleteAll(editor.OpBlockDelete, args)...)
			if err != nil {
				return err
			}
			reportEdit(res, "Deleted %s", plural(len(args), "block"))
			return nil
		},
		ValidArgsFunction: c.completeIDs(rowBlock),
	}
}

package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rundown/pkg/editor"
	"github.com/matzehuels/rundown/pkg/rundown"
)

// changed returns &v when the named flag was set on the command line.
func changed[T any](cmd *cobra.Command, name string, v T) *T {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &v
}

// positionFlags binds --x and --y.
type positionFlags struct {
	x, y float64
}

func (f *positionFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.x, "x", 0, "move to this x coordinate (with --y)")
	cmd.Flags().Float64Var(&f.y, "y", 0, "move to this y coordinate (with --x)")
}

// position returns the requested position, nil when neither flag is set.
func (f *positionFlags) position(cmd *cobra.Command) (*rundown.Position, error) {
	x, y := cmd.Flags().Changed("x"), cmd.Flags().Changed("y")
	if !x && !y {
		return nil, nil
	}
	if x != y {
		return nil, errors.New("--x and --y must be given together")
	}
	return &rundown.Position{X: f.x, Y: f.y}, nil
}

// deleteAll builds one delete command per id.
func deleteAll(op editor.Op, ids []string) []editor.Command {
	cmds := make([]editor.Command, len(ids))
	for i, id := range ids {
		cmds[i] = editor.Command{Op: op, ID: id}
	}
	return cmds
}

// reportCreated prints the outcome of a create command.
func reportCreated(kind string, res editor.Result) {
	printSuccess("Created %s %s", kind, styleID.Render(res.ID))
}

// reportEdit prints the outcome of an edit; unknown ids leave the project
// unchanged and are reported as a warning.
func reportEdit(res editor.Result, format string, args ...any) {
	if !res.Changed {
		printWarning("Nothing changed (unknown id or no-op)")
		return
	}
	printSuccess(format, args...)
}

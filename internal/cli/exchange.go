package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rundown/pkg/editor"
	rerrors "github.com/matzehuels/rundown/pkg/errors"
	"github.com/matzehuels/rundown/pkg/fountain"
	"github.com/matzehuels/rundown/pkg/rundown"
)

var errNeedsForce = rerrors.New(rerrors.ErrCodeInvalidInput, "refusing to overwrite the project (use --force)")

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:     "export",
		Short:   "Write the project as Fountain text",
		GroupID: groupOutput,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				p, err := ed.Load(cmd.Context())
				if err != nil {
					return err
				}
				if output == "" || output == "-" {
					return fountain.Write(p, out)
				}
				if err := fountain.Export(p, output); err != nil {
					return err
				}
				printSuccess("Exported %s", StyleHighlight.Render(p.Name))
				printFile(output)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

// importCommand creates the import command.
func (c *CLI) importCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "import <file|->",
		Short:   "Replace the project with parsed Fountain text",
		GroupID: groupOutput,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				return c.runImport(cmd.Context(), ed, args[0], force)
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "replace a non-empty project")
	return cmd
}

func (c *CLI) runImport(ctx context.Context, ed *editor.Editor, path string, force bool) error {
	prog := newProgress(c.Logger)

	current, err := ed.Load(ctx)
	if err != nil {
		return err
	}
	if !force && !isEmpty(current) {
		printWarning("%s already holds %s", ed.Key(), plural(len(current.Beats), "beat"))
		return errNeedsForce
	}

	var p rundown.Project
	if path == "-" {
		p, err = fountain.Read(os.Stdin, ed.Engine())
	} else {
		p, err = fountain.Import(path, ed.Engine())
	}
	if err != nil {
		return err
	}
	p, err = ed.Replace(ctx, p)
	if err != nil {
		return err
	}
	prog.done("Imported " + p.Name)
	printSuccess("Imported %s", StyleHighlight.Render(p.Name))
	printStats(len(p.Beats), len(p.BeatGroups), len(p.Blocks), len(p.Lanes))
	return nil
}

func isEmpty(p rundown.Project) bool {
	return len(p.Beats) == 0 && len(p.BeatGroups) == 0 && len(p.Blocks) == 0 && len(p.Lanes) == 0
}

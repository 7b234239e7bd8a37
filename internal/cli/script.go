package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/matzehuels/rundown/pkg/editor"
	"github.com/matzehuels/rundown/pkg/render"
)

const defaultScriptWidth = 100

// scriptCommand creates the script command.
func (c *CLI) scriptCommand() *cobra.Command {
	var raw bool
	var width int
	var style string

	cmd := &cobra.Command{
		Use:     "script",
		Short:   "Print the rundown as a formatted script",
		GroupID: groupOutput,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				p, err := ed.Load(cmd.Context())
				if err != nil {
					return err
				}
				md := render.Markdown(p)
				if raw {
					_, err := fmt.Fprint(out, md)
					return err
				}
				rendered, err := renderMarkdown(md, style, width)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, rendered)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print Markdown without terminal styling")
	cmd.Flags().IntVarP(&width, "width", "w", defaultScriptWidth, "wrap width")
	cmd.Flags().StringVar(&style, "style", "dark", "glamour style: dark, light, notty, ascii, dracula")
	return cmd
}

// renderMarkdown styles md for the terminal. A fixed style is used instead
// of glamour's auto style, which queries the terminal and can block.
func renderMarkdown(md, style string, width int) (string, error) {
	if width < 20 {
		width = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("markdown renderer: %w", err)
	}
	s, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return strings.TrimRight(s, "\n"), nil
}

package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rundown/pkg/buildinfo"
	"github.com/matzehuels/rundown/pkg/editor"
	"github.com/matzehuels/rundown/pkg/rundown"
)

// initCommand creates the init command.
func (c *CLI) initCommand() *cobra.Command {
	var force bool
	var description string

	cmd := &cobra.Command{
		Use:     "init [name]",
		Short:   "Create an empty project",
		GroupID: groupProject,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := editor.DefaultProjectName
			if len(args) == 1 {
				name = args[0]
			}
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				p, err := ed.Init(cmd.Context(), name, force)
				if err != nil {
					return err
				}
				if description != "" {
					res, err := ed.Apply(cmd.Context(), editor.Command{
						Op:      editor.OpProjectUpdate,
						Project: &editor.ProjectPatch{Description: &description},
					})
					if err != nil {
						return err
					}
					p = res.Project
				}
				printSuccess("Created %s", StyleHighlight.Render(p.Name))
				printKeyValue("Backend", c.Config.Store.Backend)
				printKeyValue("Key", ed.Key())
				printNewline()
				printNextStep("Add a beat", appName+" beat add --title \"Top story\"")
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "replace an existing project")
	cmd.Flags().StringVarP(&description, "description", "d", "", "project description")
	return cmd
}

// showCommand creates the show command.
func (c *CLI) showCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "show",
		Short:   "Print the project outline",
		GroupID: groupProject,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				p, err := ed.Load(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					return enc.Encode(p)
				}
				printOutline(p)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the stored JSON document")
	return cmd
}

func printOutline(p rundown.Project) {
	fmt.Fprintln(out, StyleTitle.Render(p.Name))
	if p.Description != "" {
		fmt.Fprintln(out, StyleDim.Render(p.Description))
	}
	printStats(len(p.Beats), len(p.BeatGroups), len(p.Blocks), len(p.Lanes))
	if total := totalDuration(p); total > 0 {
		printDetail("running time %s", formatDuration(total))
	}
	printNewline()

	for _, r := range outline(p) {
		indent := strings.Repeat("  ", r.depth)
		var line string
		switch r.kind {
		case rowSection:
			line = StyleDim.Render(r.label)
		case rowLane:
			line = styleLane.Render(r.label)
		case rowBlock:
			line = styleBlock.Render(r.label)
		case rowGroup:
			line = styleGroup.Render(r.label)
		default:
			line = StyleValue.Render("• " + r.label)
		}
		if r.id != "" {
			line += " " + styleID.Render(r.id)
		}
		fmt.Fprintln(out, indent+line)
	}
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "layout",
		Short:   "Recompute every position from scratch",
		GroupID: groupProject,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.apply(cmd.Context(), editor.Command{Op: editor.OpLayoutAuto})
			if err != nil {
				return err
			}
			if res.Changed {
				printSuccess("Laid out %s", plural(len(res.Project.Beats), "beat"))
			} else {
				printInfo("Layout already up to date")
			}
			return nil
		},
	}
}

// doctorCommand creates the doctor command.
func (c *CLI) doctorCommand() *cobra.Command {
	var fix bool

	cmd := &cobra.Command{
		Use:     "doctor",
		Short:   "Check the project's structural invariants",
		GroupID: groupProject,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				p, err := ed.Load(cmd.Context())
				if err != nil {
					return err
				}
				violations := rundown.CheckInvariants(p)
				if len(violations) == 0 {
					printSuccess("No problems found")
					return nil
				}
				for _, v := range violations {
					printError("%s", v)
				}
				if !fix {
					return fmt.Errorf("%d problem(s) found", len(violations))
				}

				p, err = ed.Replace(cmd.Context(), ed.Engine().AutoLayout(p))
				if err != nil {
					return err
				}
				if rest := rundown.CheckInvariants(p); len(rest) > 0 {
					printWarning("%d problem(s) remain after layout", len(rest))
					return fmt.Errorf("%d problem(s) remain", len(rest))
				}
				printSuccess("Fixed by relayout")
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "relayout the project and store the result")
	return cmd
}

// versionCommand creates the version command.
func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(out, appName)
			for _, line := range strings.Split(buildinfo.String(), "\n") {
				k, v, _ := strings.Cut(line, ": ")
				printKeyValue(k, v)
			}
		},
	}
}

package cli

import (
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rundown/pkg/editor"
	"github.com/matzehuels/rundown/pkg/rundown"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for rundown.

To load completions:

Bash:
  $ source <(rundown completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ rundown completion bash > /etc/bash_completion.d/rundown
  # macOS:
  $ rundown completion bash > $(brew --prefix)/etc/bash_completion.d/rundown

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ rundown completion zsh > "${fpath[1]}/_rundown"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ rundown completion fish | source

  # To load completions for each session, execute once:
  $ rundown completion fish > ~/.config/fish/completions/rundown.fish

PowerShell:
  PS> rundown completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> rundown completion powershell > rundown.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// completeIDs suggests ids of one entity kind from the stored project, each
// described by its outline label.
func (c *CLI) completeIDs(kind rowKind) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		// completion runs without the root's pre-run hooks
		if err := c.loadConfig(); err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		var p rundown.Project
		err := c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
			var err error
			p, err = ed.Load(cmd.Context())
			return err
		})
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		return idCompletions(p, kind, toComplete, args), cobra.ShellCompDirectiveNoFileComp
	}
}

// idCompletions lists "id\tlabel" for rows of kind whose id starts with
// prefix, skipping ids already given.
func idCompletions(p rundown.Project, kind rowKind, prefix string, given []string) []string {
	var comps []string
	for _, r := range outline(p) {
		if r.kind != kind || !strings.HasPrefix(r.id, prefix) || slices.Contains(given, r.id) {
			continue
		}
		comps = append(comps, r.id+"\t"+r.label)
	}
	return comps
}

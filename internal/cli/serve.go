package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rundown/internal/server"
	"github.com/matzehuels/rundown/pkg/cache"
	"github.com/matzehuels/rundown/pkg/editor"
	"github.com/matzehuels/rundown/pkg/render"
	"github.com/matzehuels/rundown/pkg/store"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var memory bool

	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serve the project over a JSON HTTP API",
		GroupID: groupOutput,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.Config.Server.Addr
			}
			if memory {
				c.Config.Store.Backend = string(store.BackendMemory)
				c.Logger.Warn("serving from memory; edits are lost on exit")
			}
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				renders := cache.NewMemoryCache()
				defer renders.Close()
				srv, err := server.New(ed, server.Options{
					Addr:   addr,
					Logger: c.Logger,
					Render: server.RenderFunc(cache.Memo(renders, "svg", time.Hour, render.RenderSVG)),
				})
				if err != nil {
					return err
				}
				printInfo("Serving %s on %s", StyleHighlight.Render(ed.Key()), StyleValue.Render("http://"+addr))
				return srv.Run(cmd.Context())
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, "+server.DefaultAddr+")")
	cmd.Flags().BoolVar(&memory, "memory", false, "keep the project in memory only")
	return cmd
}

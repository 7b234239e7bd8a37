package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rundown/pkg/cache"
	"github.com/matzehuels/rundown/pkg/editor"
	"github.com/matzehuels/rundown/pkg/render"
	"github.com/matzehuels/rundown/pkg/rundown"
)

const (
	formatSVG = "svg"
	formatPDF = "pdf"
	formatPNG = "png"
	formatDOT = "dot"
)

// validFormats lists the supported output formats.
var validFormats = []string{formatSVG, formatPDF, formatPNG, formatDOT}

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string  // output file path, or base path for several formats
	formats  []string
	detailed bool    // show type, duration and scene on beats
	canvas   bool    // draw at stored positions instead of the hierarchy
	scale    float64 // PNG scale factor
	noCache  bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{scale: 2}

	cmd := &cobra.Command{
		Use:     "render",
		Short:   "Render the project as a diagram",
		GroupID: groupOutput,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			return c.withEditor(cmd.Context(), func(ed *editor.Editor) error {
				p, err := ed.Load(cmd.Context())
				if err != nil {
					return err
				}
				return c.runRender(cmd.Context(), p, opts)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (several); - for stdout")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), pdf, png, dot (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show type, length and scene on beats")
	cmd.Flags().BoolVar(&opts.canvas, "canvas", false, "draw the canvas at stored positions")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "render even when a cached result exists")

	return cmd
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{formatSVG}
	}
	return strings.Split(s, ",")
}

// validateFormats checks that all requested formats are valid.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if !slices.Contains(validFormats, f) {
			return fmt.Errorf("invalid format: %s (must be one of: %s)", f, strings.Join(validFormats, ", "))
		}
	}
	return nil
}

func (c *CLI) runRender(ctx context.Context, p rundown.Project, opts renderOpts) error {
	dot := render.ToDOT(p, render.Options{Detailed: opts.detailed, Canvas: opts.canvas})
	c.Logger.Debug("generated DOT", "bytes", len(dot), "canvas", opts.canvas)

	rc := c.renderCache(opts.noCache)
	defer rc.Close()

	prog := newProgress(c.Logger)
	for _, format := range opts.formats {
		data, err := renderFormat(ctx, rc, dot, format, opts.scale)
		if err != nil {
			return err
		}

		path := outputPath(opts.output, format, len(opts.formats) > 1)
		if path == "-" {
			if _, err := out.Write(data); err != nil {
				return err
			}
			continue
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	prog.done(fmt.Sprintf("Rendered %s", plural(len(p.Beats), "beat")))
	return nil
}

func renderFormat(ctx context.Context, rc cache.Cache, dot, format string, scale float64) ([]byte, error) {
	if format == formatDOT {
		return []byte(dot), nil
	}

	var fn cache.Func
	switch format {
	case formatPDF:
		fn = render.RenderPDF
	case formatPNG:
		fn = func(ctx context.Context, dot string) ([]byte, error) {
			return render.RenderPNG(ctx, dot, scale)
		}
	default:
		fn = render.RenderSVG
	}
	prefix := fmt.Sprintf("%s@%g", format, scale)

	spinner := newSpinner(ctx, "Rendering "+strings.ToUpper(format)+"...")
	spinner.Start()
	defer spinner.Stop()

	return cache.Memo(rc, prefix, cache.DefaultTTL, fn)(ctx, dot)
}

// renderCache opens the on-disk render cache. Rendering still works when
// the cache directory is unusable.
func (c *CLI) renderCache(disabled bool) cache.Cache {
	if disabled {
		return cache.NewNullCache()
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Warn("render cache disabled", "err", err)
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(filepath.Join(dir, "renders"))
	if err != nil {
		c.Logger.Warn("render cache disabled", "err", err)
		return cache.NewNullCache()
	}
	return fc
}

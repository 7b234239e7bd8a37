package render

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/rundown/pkg/rundown"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds type, duration and scene lines to beat labels.
	// When false, only the beat title is shown.
	Detailed bool

	// Canvas pins every entity to its canvas rectangle instead of letting
	// Graphviz arrange the hierarchy.
	Canvas bool
}

// pointsPerInch converts canvas units to Graphviz inches.
const pointsPerInch = 72.0

// ToDOT converts a project to Graphviz DOT source. The result can be
// rendered with [RenderSVG], [RenderPDF] or [RenderPNG].
func ToDOT(p rundown.Project, opts Options) string {
	var buf bytes.Buffer
	d := &dotWriter{buf: &buf, p: p, opts: opts}
	if opts.Canvas {
		d.canvas()
	} else {
		d.hierarchy()
	}
	return buf.String()
}

type dotWriter struct {
	buf  *bytes.Buffer
	p    rundown.Project
	opts Options
}

func (d *dotWriter) printf(indent int, format string, args ...any) {
	d.buf.WriteString(strings.Repeat("  ", indent))
	fmt.Fprintf(d.buf, format, args...)
	d.buf.WriteByte('\n')
}

// =============================================================================
// Hierarchy
// =============================================================================

func (d *dotWriter) hierarchy() {
	d.printf(0, "digraph G {")
	d.printf(1, "rankdir=TB;")
	d.printf(1, "bgcolor=\"transparent\";")
	d.printf(1, "label=%s;", quote(d.p.Name))
	d.printf(1, "labelloc=t;")
	d.printf(1, "fontsize=28;")
	d.printf(1, "compound=true;")
	d.printf(1, "node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18, margin=\"0.2,0.1\"];")
	d.printf(1, "ranksep=0.3;")
	d.printf(1, "nodesep=0.3;")
	d.buf.WriteByte('\n')

	for _, l := range d.p.Lanes {
		d.printf(1, "subgraph %s {", quote("cluster_lane_"+l.ID))
		d.printf(2, "label=%s;", quote(l.Name))
		d.printf(2, "style=\"rounded,dashed\";")
		for _, id := range l.BlockIDs {
			if b, ok := d.p.Block(id); ok {
				d.block(2, b)
			}
		}
		d.printf(1, "}")
	}
	for _, b := range d.p.Blocks {
		if _, ok := rundown.LaneForBlock(d.p, b.ID); !ok {
			d.block(1, b)
		}
	}
	for _, g := range d.p.BeatGroups {
		if _, ok := rundown.BlockForGroup(d.p, g.ID); !ok {
			d.group(1, g)
		}
	}
	for _, b := range rundown.SortedBeats(d.p) {
		if !rundown.BelongsToBeatGroup(d.p, b.ID) {
			d.beat(1, b)
		}
	}
	d.printf(0, "}")
}

func (d *dotWriter) block(indent int, b rundown.Block) {
	d.printf(indent, "subgraph %s {", quote("cluster_block_"+b.ID))
	d.printf(indent+1, "label=%s;", quote(b.Name))
	d.printf(indent+1, "style=\"rounded,filled\";")
	d.printf(indent+1, "fillcolor=\"#f8fafc\";")
	for _, id := range b.GroupIDs {
		if g, ok := d.p.BeatGroup(id); ok {
			d.group(indent+1, g)
		}
	}
	d.printf(indent, "}")
}

func (d *dotWriter) group(indent int, g rundown.BeatGroup) {
	d.printf(indent, "subgraph %s {", quote("cluster_group_"+g.ID))
	d.printf(indent+1, "label=%s;", quote(g.Name))
	d.printf(indent+1, "style=rounded;")
	if g.Color != "" {
		d.printf(indent+1, "color=%s;", quote(g.Color))
	}

	var members []string
	for _, id := range g.BeatIDs {
		if b, ok := d.p.Beat(id); ok {
			d.beat(indent+1, b)
			members = append(members, id)
		}
	}
	switch {
	case len(members) == 0:
		// Graphviz drops empty clusters.
		d.printf(indent+1, "%s [label=\"\", style=invis, width=2, height=0.3];", quote("empty_"+g.ID))
	case len(members) > 1:
		chain := make([]string, len(members))
		for i, id := range members {
			chain[i] = quote(id)
		}
		d.printf(indent+1, "%s [style=invis];", strings.Join(chain, " -> "))
	}
	d.printf(indent, "}")
}

func (d *dotWriter) beat(indent int, b rundown.Beat) {
	attrs := []string{"label=" + quote(d.beatLabel(b))}
	if t, ok := d.p.BeatType(b.TypeID); ok {
		attrs = append(attrs, "color="+quote(t.Color), "penwidth=2")
	}
	d.printf(indent, "%s [%s];", quote(b.ID), strings.Join(attrs, ", "))
}

func (d *dotWriter) beatLabel(b rundown.Beat) string {
	title := b.Title
	if title == "" {
		title = "(untitled)"
	}
	if !d.opts.Detailed {
		return title
	}

	lines := []string{title}
	meta := b.TypeID
	if t, ok := d.p.BeatType(b.TypeID); ok {
		meta = t.Name
	}
	if b.Duration > 0 {
		meta = strings.TrimSpace(meta + " · " + formatSeconds(b.Duration))
	}
	if meta != "" {
		lines = append(lines, meta)
	}
	if b.Scene != "" {
		lines = append(lines, b.Scene)
	}
	return strings.Join(lines, "\n")
}

// =============================================================================
// Canvas
// =============================================================================

func (d *dotWriter) canvas() {
	d.printf(0, "digraph G {")
	d.printf(1, "layout=neato;")
	d.printf(1, "overlap=true;")
	d.printf(1, "splines=false;")
	d.printf(1, "bgcolor=\"transparent\";")
	d.printf(1, "node [shape=box, style=\"rounded,filled\", fixedsize=true, fontsize=14, labelloc=t];")
	d.buf.WriteByte('\n')

	// Later nodes paint over earlier ones, so containers come first.
	for _, l := range d.p.Lanes {
		d.rect("lane_"+l.ID, l.Name, rundown.LaneBounds(d.p, l), "#f1f5f9", "")
	}
	for _, b := range d.p.Blocks {
		d.rect("block_"+b.ID, b.Name, rundown.BlockBounds(d.p, b), "#e2e8f0", "")
	}
	for _, g := range d.p.BeatGroups {
		d.rect("group_"+g.ID, g.Name, rundown.GroupBounds(d.p, g), "white", g.Color)
	}
	for _, b := range rundown.SortedBeats(d.p) {
		r := rundown.Rect{
			Left:   b.Position.X,
			Top:    b.Position.Y,
			Right:  b.Position.X + rundown.GroupWidth,
			Bottom: b.Position.Y + rundown.BeatHeight,
		}
		color := ""
		if t, ok := d.p.BeatType(b.TypeID); ok {
			color = t.Color
		}
		d.rect(b.ID, d.beatLabel(b), r, "white", color)
	}
	d.printf(0, "}")
}

// rect pins a node to r. Graphviz measures from the center with Y growing
// upward, so the canvas Y is negated.
func (d *dotWriter) rect(id, label string, r rundown.Rect, fill, color string) {
	attrs := []string{
		"label=" + quote(label),
		fmt.Sprintf("pos=\"%s,%s!\"", num(r.CenterX()), num(-r.CenterY())),
		"width=" + num(r.Width()/pointsPerInch),
		"height=" + num(r.Height()/pointsPerInch),
		"fillcolor=" + quote(fill),
	}
	if color != "" {
		attrs = append(attrs, "color="+quote(color), "penwidth=2")
	}
	d.printf(1, "%s [%s];", quote(id), strings.Join(attrs, ", "))
}

// =============================================================================
// Helpers
// =============================================================================

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\r\n", `\n`, "\n", `\n`, "\r", `\n`)

// quote renders s as a DOT double-quoted string.
func quote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatSeconds renders a duration in seconds as m:ss, or as plain seconds
// under a minute.
func formatSeconds(s float64) string {
	total := int(s + 0.5)
	if total < 60 {
		return fmt.Sprintf("%ds", total)
	}
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

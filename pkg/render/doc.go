// Package render draws rundown projects.
//
// # Overview
//
// Two outputs are produced from a [rundown.Project]:
//
//   - Graphviz diagrams of the Lane → Block → Group → Beat hierarchy, via
//     [ToDOT] and [RenderSVG]
//   - A readable script in Markdown, via [Markdown], for terminal viewers
//
// # Diagrams
//
// By default [ToDOT] nests clusters: a lane cluster holds its block
// clusters, a block cluster holds its groups and a group cluster stacks its
// beats top to bottom. Free-standing blocks, groups and beats are drawn after
// the lanes. Graphviz picks the coordinates.
//
// With [Options].Canvas set, every entity is instead pinned to its canvas
// rectangle and laid out with neato, so the picture matches what an editor
// would show:
//
//	dot := render.ToDOT(p, render.Options{Canvas: true})
//	svg, err := render.RenderSVG(ctx, dot)
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert SVG using the external rsvg-convert tool (from
// librsvg).
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package render

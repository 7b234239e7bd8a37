// Package rundown implements the document model and layout engine for
// broadcast rundowns.
//
// A rundown is a storyboard laid out on an infinite canvas. It is built from
// four nested containers:
//
//	Lane       vertical stack of Blocks, each row as tall as its content
//	  Block    horizontal row of BeatGroups
//	    Group  vertical stack of Beats under a header
//	      Beat atomic script unit with production metadata
//
// # Architecture
//
// The package is split into three layers:
//
//   - Geometry: pure functions over constants ([NextBeatPosition],
//     [BeatYInGroup], [BlockWidth], [BlockHeight], [NextOrder]).
//   - Lookups: linear scans answering "who contains this?" ([GroupForBeat],
//     [BlockForGroup], [LaneForBlock]).
//   - Operations: methods on [Engine] that take a [Project] and return a new
//     [Project]. Structural edits update membership, recompute geometry and
//     cascade position deltas into nested children before returning.
//
// # Immutability
//
// A [Project] is a value. Operations clone the entity slices they touch and
// never write through a slice reachable from their input, so callers can
// keep the previous document around (for example to diff or to discard an
// edit) without aliasing surprises.
//
// # Totality
//
// Operations never fail. An id that does not resolve returns the input
// unchanged. Guard conditions (a Block or Lane with fewer than two children)
// are refused silently and logged at warn level. Containers that would drop
// below two children are deleted instead.
//
// # Layout Contract
//
// After any operation returns, every position is renderable. Lower-level
// operations lay out only the container they touch; [Engine.Settle] re-runs
// the whole cascade (groups, blocks, lanes) and is what the application layer
// calls after each command.
//
// # Usage
//
//	eng := rundown.NewEngine()
//	p := eng.NewProject("Evening News")
//	p, b1 := eng.CreateBeat(p, "opening")
//	p, b2 := eng.CreateBeat(p, "news")
//	g := eng.CreateBeatGroup(p, "Cold open", []string{b1, b2})
//	p = eng.AddBeatGroup(p, g)
package rundown

// Package editor applies edit commands to a stored rundown project.
//
// The editing core in package rundown is a set of pure functions. This
// package is the single caller that strings them together: it turns a
// serializable [Command] into the matching core operation, settles the
// layout afterwards and persists the result. The CLI and the HTTP API both
// go through it, so every entry point edits the same way.
//
// # Architecture
//
// Each command runs in three steps:
//
//  1. Load: read the whole project from the store (a missing document is an
//     empty project)
//  2. Dispatch: apply the core operation, then [rundown.Engine.Settle] so
//     every lane, block and group is back in its layout
//  3. Save: write the whole project back under the same key
//
// Commands on one [Editor] are serialized; the core never sees two edits at
// once.
//
// # Usage
//
//	ed, err := editor.New(s, editor.Options{Logger: logger})
//	res, err := ed.Apply(ctx, editor.Command{
//	    Op:     editor.OpBlockCreate,
//	    IDs:    []string{g1, g2},
//	    Name:   "Segment A",
//	})
//	fmt.Println(res.ID) // the new block
//
// [Dispatch] runs step 2 alone, for callers that hold the project in memory.
package editor

// Package pkg provides the core libraries of the rundown editor.
//
// # Overview
//
// A rundown is the running order of a broadcast. Its atoms are beats
// (a story, a read, a break), stacked vertically into beat groups. Groups
// sit side by side in blocks, and blocks stack into lanes. Every container
// keeps its members laid out on the canvas: moving a container moves what is
// inside, and a container that drops below its minimum size dissolves.
//
// The pkg directory is organized by concern:
//
//  1. [rundown] - The document model and the layout engine
//  2. [document] - JSON persistence, schema validation and normalization
//  3. [editor] - Serializable commands applied against a store
//  4. [store] - Key/value backends holding the document
//  5. [fountain] - Fountain screenplay text import and export
//  6. [render] - Graphviz diagrams and Markdown scripts
//  7. [cache] - Memoized render artifacts
//
// # Architecture
//
// The typical flow of one edit:
//
//	CLI command / HTTP request
//	         ↓
//	    [editor] Command (validate, dispatch)
//	         ↓
//	    [rundown] Engine (pure edit, then Settle)
//	         ↓
//	    [document] Save (encode, validate)
//	         ↓
//	    [store] backend (file, sqlite, postgres, redis, mongo, memory)
//
// # Quick Start
//
// Build a small rundown in memory:
//
//	import (
//	    "github.com/matzehuels/rundown/pkg/rundown"
//	    "github.com/matzehuels/rundown/pkg/fountain"
//	)
//
//	e := rundown.NewEngine()
//	p := e.NewProject("Evening News")
//	p, lead := e.CreateBeat(p, "news")
//	g := e.CreateBeatGroup(p, "Headlines", []string{lead})
//	p = e.Settle(e.AddBeatGroup(p, g))
//
//	fmt.Print(fountain.String(p))
//
// # Supporting Packages
//
// [errors] - Coded errors (INVALID_INPUT, NOT_FOUND, STORAGE, ...) shared by
// every layer and mapped to HTTP status codes by the server.
//
// [observability] - Hooks for command, store and HTTP events, no-op by
// default.
//
// [buildinfo] - Version information injected at build time.
//
// [rundown]: https://pkg.go.dev/github.com/matzehuels/rundown/pkg/rundown
// [document]: https://pkg.go.dev/github.com/matzehuels/rundown/pkg/document
// [editor]: https://pkg.go.dev/github.com/matzehuels/rundown/pkg/editor
// [store]: https://pkg.go.dev/github.com/matzehuels/rundown/pkg/store
// [fountain]: https://pkg.go.dev/github.com/matzehuels/rundown/pkg/fountain
// [render]: https://pkg.go.dev/github.com/matzehuels/rundown/pkg/render
// [cache]: https://pkg.go.dev/github.com/matzehuels/rundown/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/rundown/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/rundown/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/rundown/pkg/buildinfo
package pkg

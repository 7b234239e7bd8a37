// Package cache stores rendered artifacts keyed by the input that produced
// them.
//
// Rendering a diagram through Graphviz is slow compared to everything else
// the editor does, and the same DOT source always yields the same bytes.
// [Memo] wraps a render function so repeated renders of an unchanged project
// are served from a [Cache].
//
// # Backends
//
//   - [FileCache] keeps entries as JSON files under a directory, used by the
//     CLI under $XDG_CACHE_HOME/rundown.
//   - [MemoryCache] keeps entries in a map, used by long-running servers and
//     tests.
//   - [NullCache] stores nothing.
//
// Keys are built with [Key], which hashes its parts so arbitrary input such
// as a whole DOT document fits in a file name.
package cache

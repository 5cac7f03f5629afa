// Package link provides the foundational doublet types shared by every
// other package: references, links, sentinel constants, pattern filters
// and the Store contract that storage backends implement.
//
// This package imports nothing internal. Backends (internal/store,
// internal/badgerstore) and the algorithms built on top of them
// (internal/variants, internal/render) all depend on it, never the other
// way round.
//
// Key invariants:
//   - A link is identified by its (source, target) content: a store holds
//     at most one link per distinct pair.
//   - Sentinel references (Null, Any, Itself) are never stored content.
//   - Ordinary references are always >= FirstIndex, which is strictly
//     greater than every sentinel.
package link

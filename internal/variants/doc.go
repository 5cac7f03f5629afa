// Package variants enumerates every full binary composition of a sequence
// of link references.
//
// A sequence of n leaves has C(n-1) distinct full binary trees, where C is
// the Catalan number. Each tree is materialised in a content-addressed
// store by composing its subtrees pairwise with GetOrCreate, so shared
// subtrees across variants resolve to the same stored link.
//
// Splits are visited left to right and, within a split, left variants form
// the outer loop. For [x, y, x] the result is therefore
//
//	(x (y x))
//	((x y) x)
package variants

// Package render formats stored links as text.
//
// Deep expands a reference into a parenthesised (source target) tree,
// stopping at element leaves, at references already rendered and at
// dangling references. Flat and Dump print links one per line in the
// (index: source target) form.
//
// With RenderDebug set, a dangling reference is prefixed with "~" and a
// collapsed revisit with "*":
//
//	(~9 (3 *5))
package render

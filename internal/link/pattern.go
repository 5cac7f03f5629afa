package link

// Field is one position of a Pattern: either an exact reference or a
// wildcard.
type Field struct {
	ref Ref
	any bool
}

// AnyField matches every reference.
var AnyField = Field{any: true}

// Exact matches only r.
func Exact(r Ref) Field {
	return Field{ref: r}
}

// IsAny reports whether the field is a wildcard.
func (f Field) IsAny() bool {
	return f.any
}

// Ref returns the exact value and whether the field has one.
func (f Field) Ref() (Ref, bool) {
	return f.ref, !f.any
}

// Matches reports whether r satisfies the field.
func (f Field) Matches(r Ref) bool {
	return f.any || f.ref == r
}

// Pattern is an [index, source, target] query filter.
type Pattern struct {
	Index  Field
	Source Field
	Target Field
}

// MatchAll selects every stored link.
var MatchAll = Pattern{Index: AnyField, Source: AnyField, Target: AnyField}

// Match reports whether l satisfies every field of the pattern.
func (p Pattern) Match(l Link) bool {
	return p.Index.Matches(l.Index) && p.Source.Matches(l.Source) && p.Target.Matches(l.Target)
}

package link

import (
	"fmt"
	"strconv"
)

// Ref is an opaque handle to a stored link.
type Ref uint64

// String renders the reference as a decimal index.
func (r Ref) String() string {
	return strconv.FormatUint(uint64(r), 10)
}

// ParseRef parses a decimal reference, as typed on a command line.
func ParseRef(s string) (Ref, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse reference %q: %w", s, err)
	}
	return Ref(v), nil
}

// Sentinel values shared by every backend in this module.
const (
	NullRef   Ref = 0
	AnyRef    Ref = 1
	ItselfRef Ref = 2

	// FirstIndex is the smallest index a backend may assign to a link.
	FirstIndex Ref = 3
)

// Constants holds the reserved sentinel references of a store instance.
type Constants struct {
	Null   Ref // absence
	Any    Ref // wildcard in queries
	Itself Ref // self-reference placeholder
}

// DefaultConstants returns the sentinels used by the bundled backends.
func DefaultConstants() Constants {
	return Constants{Null: NullRef, Any: AnyRef, Itself: ItselfRef}
}

// IsSentinel reports whether r is one of the reserved values.
func (c Constants) IsSentinel(r Ref) bool {
	return r == c.Null || r == c.Any || r == c.Itself
}

// Pattern builds a query filter where any field equal to c.Any matches
// every value.
func (c Constants) Pattern(index, source, target Ref) Pattern {
	return Pattern{
		Index:  c.field(index),
		Source: c.field(source),
		Target: c.field(target),
	}
}

func (c Constants) field(r Ref) Field {
	if r == c.Any {
		return AnyField
	}
	return Exact(r)
}

// Link is the unit stored by a backend.
type Link struct {
	Index  Ref `json:"index"`
	Source Ref `json:"source"`
	Target Ref `json:"target"`
}

// String renders the link as "(index: source target)".
func (l Link) String() string {
	return fmt.Sprintf("(%d: %d %d)", l.Index, l.Source, l.Target)
}

// IsPoint reports whether the link is its own source and target.
func IsPoint(l Link) bool {
	return l.Source == l.Index && l.Target == l.Index
}

// IsPartialPoint reports whether either end of the link refers back to it.
func IsPartialPoint(l Link) bool {
	return l.Source == l.Index || l.Target == l.Index
}

// IsFull reports whether neither end of the link is the null sentinel.
func IsFull(c Constants, l Link) bool {
	return l.Source != c.Null && l.Target != c.Null
}

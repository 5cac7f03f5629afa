package render

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/roach88/doublets/internal/link"
)

// Points treats self-referential links as elements.
func Points(l link.Link) bool {
	return link.IsPoint(l)
}

// PartialPoints treats links with either end on themselves as elements.
func PartialPoints(l link.Link) bool {
	return link.IsPartialPoint(l)
}

// NoElements expands every link.
func NoElements(link.Link) bool {
	return false
}

// ElementPredicate resolves a predicate by its configuration name.
func ElementPredicate(name string) (func(link.Link) bool, error) {
	switch name {
	case "", "point":
		return Points, nil
	case "partial":
		return PartialPoints, nil
	case "none":
		return NoElements, nil
	default:
		return nil, fmt.Errorf("unknown element predicate %q (want point, partial or none)", name)
	}
}

// Namer looks up leaf names.
type Namer interface {
	NameOf(ctx context.Context, ref link.Ref) (string, bool, error)
}

// NameLabel returns a Label that prints registered leaf names and falls
// back to the decimal index. A name that could be read as an index, or
// that contains whitespace or one of "():~*", is printed quoted.
func NameLabel(ctx context.Context, n Namer) func(link.Ref) (string, error) {
	return func(r link.Ref) (string, error) {
		name, ok, err := n.NameOf(ctx, r)
		if err != nil {
			return "", fmt.Errorf("name of %d: %w", r, err)
		}
		if !ok {
			return r.String(), nil
		}
		return quoteName(name), nil
	}
}

func quoteName(name string) string {
	if strings.TrimLeft(name, "0123456789") == "" {
		return strconv.Quote(name)
	}
	if strings.ContainsFunc(name, func(c rune) bool {
		return unicode.IsSpace(c) || strings.ContainsRune(`():~*"`, c)
	}) {
		return strconv.Quote(name)
	}
	return name
}

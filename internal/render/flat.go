package render

import (
	"context"
	"fmt"
	"io"
	"iter"

	"github.com/roach88/doublets/internal/link"
)

// Lister is the slice of the store Dump needs.
type Lister interface {
	Each(ctx context.Context, p link.Pattern) iter.Seq2[link.Link, error]
}

// Flat renders a single link as "(index: source target)".
func Flat(l link.Link) string {
	return l.String()
}

// Dump writes every link matching p to w, one per line, and returns the
// number written.
func Dump(ctx context.Context, s Lister, p link.Pattern, w io.Writer) (int, error) {
	n := 0
	for l, err := range s.Each(ctx, p) {
		if err != nil {
			return n, fmt.Errorf("dump links: %w", err)
		}
		if _, err := fmt.Fprintln(w, Flat(l)); err != nil {
			return n, fmt.Errorf("write link: %w", err)
		}
		n++
	}
	return n, nil
}

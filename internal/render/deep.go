package render

import (
	"context"
	"strings"

	"github.com/emirpasic/gods/sets/hashset"

	"github.com/roach88/doublets/internal/link"
)

// Reader is the slice of the store Deep needs.
type Reader interface {
	Constants() link.Constants
	Exist(ctx context.Context, ref link.Ref) (bool, error)
	GetLink(ctx context.Context, ref link.Ref) (link.Link, bool, error)
}

// Options controls Deep.
type Options struct {
	// IsElement marks links rendered as a bare index. Nil means Points.
	IsElement func(link.Link) bool

	// RenderVisited expands a reference again when it was already
	// rendered earlier in the same call. References on the current
	// recursion path are never expanded twice.
	RenderVisited bool

	// RenderIndex prefixes each expansion with "index:".
	RenderIndex bool

	// RenderDebug marks dangling references with "~" and collapsed
	// revisits with "*".
	RenderDebug bool

	// Label prints a bare reference. Nil means the decimal index. An
	// error aborts the call with a *FormatError.
	Label func(link.Ref) (string, error)
}

// Deep renders the expansion tree rooted at root.
//
// Sentinels render as nothing. A reference that does not exist renders as
// its bare index. Store errors abort the call with a *FormatError.
func Deep(ctx context.Context, r Reader, root link.Ref, opts Options) (string, error) {
	if opts.IsElement == nil {
		opts.IsElement = Points
	}
	if opts.Label == nil {
		opts.Label = decimal
	}
	d := &deep{
		ctx:     ctx,
		reader:  r,
		opts:    opts,
		consts:  r.Constants(),
		visited: hashset.New(),
		path:    hashset.New(),
	}
	if err := d.ref(root); err != nil {
		return "", err
	}
	return d.b.String(), nil
}

// deep is the state of one Deep call.
type deep struct {
	ctx     context.Context
	reader  Reader
	opts    Options
	consts  link.Constants
	visited *hashset.Set
	path    *hashset.Set
	b       strings.Builder
}

func (d *deep) ref(r link.Ref) error {
	if d.consts.IsSentinel(r) {
		return nil
	}

	ok, err := d.reader.Exist(d.ctx, r)
	if err != nil {
		return &FormatError{Ref: r, Err: err}
	}
	if !ok {
		return d.marked("~", r)
	}

	revisit := d.visited.Contains(r)
	d.visited.Add(r)
	if revisit && (!d.opts.RenderVisited || d.path.Contains(r)) {
		return d.marked("*", r)
	}

	l, ok, err := d.reader.GetLink(d.ctx, r)
	if err != nil {
		return &FormatError{Ref: r, Err: err}
	}
	if !ok {
		return d.marked("~", r)
	}
	if d.opts.IsElement(l) {
		return d.label(r)
	}

	d.path.Add(r)
	defer d.path.Remove(r)

	d.b.WriteByte('(')
	if d.opts.RenderIndex {
		if err := d.label(r); err != nil {
			return err
		}
		d.b.WriteByte(':')
	}
	if err := d.field(l.Source, r); err != nil {
		return err
	}
	d.b.WriteByte(' ')
	if err := d.field(l.Target, r); err != nil {
		return err
	}
	d.b.WriteByte(')')
	return nil
}

// field renders one end of the link at index. A self-reference prints
// as the bare index.
func (d *deep) field(f, index link.Ref) error {
	if f == index {
		return d.label(f)
	}
	return d.ref(f)
}

func (d *deep) marked(marker string, r link.Ref) error {
	if d.opts.RenderDebug {
		d.b.WriteString(marker)
	}
	return d.label(r)
}

func (d *deep) label(r link.Ref) error {
	s, err := d.opts.Label(r)
	if err != nil {
		return &FormatError{Ref: r, Err: err}
	}
	d.b.WriteString(s)
	return nil
}

func decimal(r link.Ref) (string, error) {
	return r.String(), nil
}

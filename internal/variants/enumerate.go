package variants

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/doublets/internal/link"
	"github.com/roach88/doublets/internal/metrics"
)

// Creator is the slice of the store the enumerator needs.
type Creator interface {
	GetOrCreate(ctx context.Context, source, target link.Ref) (link.Ref, error)
}

// DefaultMaxVariants bounds the result size of one enumeration. It admits
// sequences of up to 16 leaves (C(15) = 9694845 variants).
const DefaultMaxVariants uint64 = 1 << 24

// maxReserve caps the capacity reserved up front for one span.
const maxReserve = 1 << 16

// Enumerator materialises binary compositions through a Creator.
// It is not safe for concurrent use by multiple goroutines.
type Enumerator struct {
	creator     Creator
	maxVariants uint64
	metrics     *metrics.Recorder
	logger      *slog.Logger
}

// Option configures an Enumerator.
type Option func(*Enumerator)

// WithMetrics records variant counts and enumeration latency.
func WithMetrics(r *metrics.Recorder) Option {
	return func(e *Enumerator) {
		e.metrics = r
	}
}

// WithLogger sets the logger for enumeration progress.
func WithLogger(l *slog.Logger) Option {
	return func(e *Enumerator) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMaxVariants rejects sequences with more than n variants before any
// store interaction. Zero lifts the limit to the Catalan table's range.
func WithMaxVariants(n uint64) Option {
	return func(e *Enumerator) {
		e.maxVariants = n
	}
}

// New returns an Enumerator composing links through c.
func New(c Creator, opts ...Option) *Enumerator {
	e := &Enumerator{
		creator:     c,
		maxVariants: DefaultMaxVariants,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enumerate is shorthand for New(c).Enumerate(ctx, seq).
func Enumerate(ctx context.Context, c Creator, seq []link.Ref) ([]link.Ref, error) {
	return New(c).Enumerate(ctx, seq)
}

// Enumerate returns the root of every full binary composition of seq.
//
// A single element is its own sole variant and touches no store. Longer
// sequences yield C(len(seq)-1) roots. The first rejected composition
// aborts the call; links created before it remain stored. Sequences with
// more variants than the configured limit fail with CAPACITY_EXCEEDED.
func (e *Enumerator) Enumerate(ctx context.Context, seq []link.Ref) ([]link.Ref, error) {
	want, err := Count(len(seq))
	if err != nil {
		return nil, err
	}
	if e.maxVariants > 0 && want > e.maxVariants {
		return nil, &EnumerationError{
			Code:    ErrCodeCapacityExceeded,
			Message: fmt.Sprintf("sequence length %d has %d variants, limit %d", len(seq), want, e.maxVariants),
			Err:     ErrCapacityExceeded,
		}
	}
	if len(seq) == 1 {
		return []link.Ref{seq[0]}, nil
	}

	start := time.Now()
	run := &enumeration{
		ctx:     ctx,
		creator: e.creator,
		seq:     seq,
		memo:    make(map[span][]link.Ref),
	}
	out, err := run.variants(0, len(seq))
	if err != nil {
		e.logger.Debug("enumeration aborted", "length", len(seq), "error", err)
		return nil, err
	}

	e.metrics.Enumerated(len(out), time.Since(start))
	e.logger.Debug("enumeration complete",
		"length", len(seq),
		"variants", len(out),
		"expected", want,
		"duration", time.Since(start))
	return out, nil
}

// span is a half-open range [from, to) of the input sequence.
type span struct {
	from, to int
}

// enumeration holds the state of one Enumerate call.
type enumeration struct {
	ctx     context.Context
	creator Creator
	seq     []link.Ref
	memo    map[span][]link.Ref
}

// variants returns the compositions of seq[from:to]. Results for a range
// are reused within the call; the store's content addressing makes a
// second pass over the same range return identical references.
func (r *enumeration) variants(from, to int) ([]link.Ref, error) {
	n := to - from
	if n == 1 {
		return r.seq[from:to], nil
	}
	key := span{from, to}
	if out, ok := r.memo[key]; ok {
		return out, nil
	}

	size, _ := Catalan(n - 1) // bounded by the length check in Enumerate
	out := make([]link.Ref, 0, min(size, maxReserve))

	for k := from + 1; k < to; k++ {
		left, err := r.variants(from, k)
		if err != nil {
			return nil, err
		}
		right, err := r.variants(k, to)
		if err != nil {
			return nil, err
		}
		for _, l := range left {
			for _, rt := range right {
				ref, err := r.creator.GetOrCreate(r.ctx, l, rt)
				if err != nil {
					return nil, &EnumerationError{
						Code:    ErrCodeCreationRejected,
						Message: "store rejected composition",
						Source:  l,
						Target:  rt,
						Err:     err,
					}
				}
				out = append(out, ref)
			}
		}
	}

	r.memo[key] = out
	return out, nil
}

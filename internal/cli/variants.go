package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/doublets/internal/link"
	"github.com/roach88/doublets/internal/render"
	"github.com/roach88/doublets/internal/variants"
)

// VariantsOptions holds flags for the variants command.
type VariantsOptions struct {
	*RootOptions
	RenderFlags
	Points      int    // create this many anonymous points instead of naming tokens
	MaxVariants uint64 // reject sequences with more variants; 0 for no limit
	Render      bool   // deep-render each variant
	Dump        bool   // list every stored link afterwards
}

// Variant is one enumerated root.
type Variant struct {
	Index link.Ref `json:"index"`
	Text  string   `json:"text,omitempty"`
}

// VariantsResult is the output of the variants command.
type VariantsResult struct {
	Count    int         `json:"count"`
	Variants []Variant   `json:"variants"`
	Links    []link.Link `json:"links,omitempty"`
}

// String renders the text form: the count, then one variant per line,
// then the dumped links.
func (r VariantsResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d", r.Count)
	for _, v := range r.Variants {
		b.WriteByte('\n')
		if v.Text != "" {
			fmt.Fprintf(&b, "%d\t%s", v.Index, v.Text)
		} else {
			b.WriteString(v.Index.String())
		}
	}
	for _, l := range r.Links {
		b.WriteByte('\n')
		b.WriteString(render.Flat(l))
	}
	return b.String()
}

// NewVariantsCommand creates the variants command.
func NewVariantsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VariantsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "variants [token...]",
		Short: "Enumerate every binary composition of a sequence",
		Long: `Enumerate every full binary composition of a token sequence.

Each token names a leaf point; repeated tokens refer to the same leaf.
With --points N, N fresh anonymous points form the sequence instead.
A sequence of n leaves has C(n-1) compositions (Catalan number). Sequences
with more than --max-variants compositions (default: up to 16 leaves) are
rejected before anything is stored, as are sequences longer than 25.

Examples:
  doublets variants x y x
  doublets variants --points 3 --dump
  doublets variants a b c d --index --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVariants(opts, args, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Points, "points", 0, "enumerate N fresh points instead of tokens")
	cmd.Flags().Uint64Var(&opts.MaxVariants, "max-variants", variants.DefaultMaxVariants, "reject sequences with more variants (0 for no limit)")
	cmd.Flags().BoolVar(&opts.Render, "render", true, "render each variant as a tree")
	cmd.Flags().BoolVar(&opts.Dump, "dump", false, "list every stored link afterwards")
	addRenderFlags(cmd, &opts.RenderFlags)

	return cmd
}

func runVariants(opts *VariantsOptions, tokens []string, cmd *cobra.Command) error {
	switch {
	case opts.Points < 0:
		return NewExitError(ExitCommandError, "--points must not be negative")
	case opts.Points > 0 && len(tokens) > 0:
		return NewExitError(ExitCommandError, "give tokens or --points, not both")
	case opts.Points == 0 && len(tokens) == 0:
		return NewExitError(ExitCommandError, "no sequence: give tokens or --points")
	}

	sess, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	st := sess.store

	seq, err := buildSequence(ctx, st, tokens, opts.Points)
	if err != nil {
		return sess.storeError("create leaves", err)
	}
	sess.logger.Debug("sequence ready", "length", len(seq))

	e := variants.New(st,
		variants.WithMaxVariants(opts.MaxVariants),
		variants.WithMetrics(sess.metrics),
		variants.WithLogger(sess.logger),
	)
	roots, err := e.Enumerate(ctx, seq)
	if err != nil {
		return sess.out.Fail(ExitFailure, CodeEnumerate, "enumeration failed", err)
	}

	result := VariantsResult{Count: len(roots), Variants: make([]Variant, len(roots))}
	var ropts render.Options
	if opts.Render {
		ropts, err = opts.RenderFlags.options(ctx, cmd, sess.cfg.Render, st)
		if err != nil {
			return err
		}
	}
	for i, r := range roots {
		result.Variants[i].Index = r
		if !opts.Render {
			continue
		}
		text, err := render.Deep(ctx, st, r, ropts)
		if err != nil {
			return sess.storeError("render variant", err)
		}
		result.Variants[i].Text = text
	}

	if opts.Dump {
		for l, err := range st.Each(ctx, link.MatchAll) {
			if err != nil {
				return sess.storeError("list links", err)
			}
			result.Links = append(result.Links, l)
		}
	}

	return sess.out.Success(result)
}

// buildSequence names each token as a leaf point, or creates n anonymous
// points when tokens is empty.
func buildSequence(ctx context.Context, st link.Store, tokens []string, n int) ([]link.Ref, error) {
	if len(tokens) == 0 {
		seq := make([]link.Ref, n)
		for i := range seq {
			p, err := st.CreatePoint(ctx)
			if err != nil {
				return nil, err
			}
			seq[i] = p
		}
		return seq, nil
	}

	seq := make([]link.Ref, len(tokens))
	for i, tok := range tokens {
		p, err := st.NamePoint(ctx, tok)
		if err != nil {
			return nil, err
		}
		seq[i] = p
	}
	return seq, nil
}

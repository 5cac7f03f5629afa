package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/doublets/internal/render"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	RenderFlags
}

// ShowResult is the output of the show command.
type ShowResult struct {
	Renders []Variant `json:"renders"`
}

// String renders one "index<TAB>text" line per reference.
func (r ShowResult) String() string {
	lines := make([]string, len(r.Renders))
	for i, v := range r.Renders {
		lines[i] = fmt.Sprintf("%d\t%s", v.Index, v.Text)
	}
	return strings.Join(lines, "\n")
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show <ref>...",
		Short: "Render stored links as trees",
		Long: `Render each reference as a parenthesised (source target) tree.

Elements (points by default) print as bare indexes, as do references
already rendered earlier in the same tree. Missing references print as a
bare index; --debug marks them with "~" and collapsed revisits with "*".

Examples:
  doublets --db links.db show 8
  doublets --db links.db show 6 8 --index --debug`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, args, cmd)
		},
	}

	addRenderFlags(cmd, &opts.RenderFlags)
	return cmd
}

func runShow(opts *ShowOptions, args []string, cmd *cobra.Command) error {
	refs, err := parseRefs(args)
	if err != nil {
		return err
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

	ropts, err := opts.RenderFlags.options(ctx, cmd, sess.cfg.Render, sess.store)
	if err != nil {
		return err
	}

	result := ShowResult{Renders: make([]Variant, len(refs))}
	for i, r := range refs {
		text, err := render.Deep(ctx, sess.store, r, ropts)
		if err != nil {
			return sess.storeError("render", err)
		}
		result.Renders[i] = Variant{Index: r, Text: text}
	}
	return sess.out.Success(result)
}

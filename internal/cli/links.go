package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/doublets/internal/link"
	"github.com/roach88/doublets/internal/render"
)

// LinksOptions holds flags for the links command.
type LinksOptions struct {
	*RootOptions
	Index  string
	Source string
	Target string
}

// LinksResult is the output of the links command.
type LinksResult struct {
	Count int         `json:"count"`
	Links []link.Link `json:"links"`
}

// String renders one "(index: source target)" line per link.
func (r LinksResult) String() string {
	lines := make([]string, len(r.Links))
	for i, l := range r.Links {
		lines[i] = render.Flat(l)
	}
	return strings.Join(lines, "\n")
}

// NewLinksCommand creates the links command.
func NewLinksCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LinksOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "links",
		Short: "List stored links matching a pattern",
		Long: `List stored links in index order.

Each of --index, --source and --target is a reference or "any".

Examples:
  doublets --db links.db links
  doublets --db links.db links --source 3`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLinks(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Index, "index", "any", "index to match")
	cmd.Flags().StringVar(&opts.Source, "source", "any", "source to match")
	cmd.Flags().StringVar(&opts.Target, "target", "any", "target to match")

	return cmd
}

func runLinks(opts *LinksOptions, cmd *cobra.Command) error {
	sess, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	c := sess.store.Constants()
	var fields [3]link.Ref
	for i, s := range []string{opts.Index, opts.Source, opts.Target} {
		fields[i], err = parseField(c, s)
		if err != nil {
			return err
		}
	}
	p := c.Pattern(fields[0], fields[1], fields[2])

	result := LinksResult{Links: []link.Link{}}
	for l, err := range sess.store.Each(ctx, p) {
		if err != nil {
			return sess.storeError("list links", err)
		}
		result.Links = append(result.Links, l)
	}
	result.Count = len(result.Links)

	sess.out.VerboseLog("%d link(s) matched", result.Count)
	return sess.out.Success(result)
}

// parseField turns "any" into the wildcard and anything else into a
// reference.
func parseField(c link.Constants, s string) (link.Ref, error) {
	if s == "" || strings.EqualFold(s, "any") {
		return c.Any, nil
	}
	r, err := link.ParseRef(s)
	if err != nil {
		return 0, NewExitError(ExitCommandError, err.Error())
	}
	return r, nil
}

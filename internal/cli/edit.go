package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/doublets/internal/link"
	"github.com/roach88/doublets/internal/render"
)

// RefResult reports a single reference.
type RefResult struct {
	Index link.Ref `json:"index"`
	Name  string   `json:"name,omitempty"`
}

func (r RefResult) String() string {
	return r.Index.String()
}

// DeleteResult reports a deletion.
type DeleteResult struct {
	Before link.Link `json:"before"`
	After  link.Link `json:"after"`
}

func (r DeleteResult) String() string {
	return fmt.Sprintf("%s -> %s", render.Flat(r.Before), render.Flat(r.After))
}

// NewLinkCommand creates the link command.
func NewLinkCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "link <source> <target>",
		Short: "Get or create the link (source, target)",
		Long: `Print the index of the link (source, target), creating it when absent.

Both ends must be stored links; sentinels and missing references are
rejected.

Example:
  doublets --db links.db link 3 4`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			refs, err := parseRefs(args)
			if err != nil {
				return err
			}
			return withSession(rootOpts, cmd, func(ctx context.Context, sess *session) error {
				r, err := sess.store.GetOrCreate(ctx, refs[0], refs[1])
				if err != nil {
					return sess.storeError("get or create link", err)
				}
				return sess.out.Success(RefResult{Index: r})
			})
		},
	}
}

// NewPointCommand creates the point command.
func NewPointCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "point [name]",
		Short: "Create a point, or find the point with a name",
		Long: `Create a self-referential link and print its index.

With a name, the point registered under that name is returned, and
created on first use.

Examples:
  doublets --db links.db point
  doublets --db links.db point x`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(ctx context.Context, sess *session) error {
				if len(args) == 0 {
					r, err := sess.store.CreatePoint(ctx)
					if err != nil {
						return sess.storeError("create point", err)
					}
					return sess.out.Success(RefResult{Index: r})
				}
				r, err := sess.store.NamePoint(ctx, args[0])
				if errors.Is(err, link.ErrInvalidName) {
					return sess.out.Fail(ExitCommandError, CodeUsage, "invalid name", err)
				}
				if err != nil {
					return sess.storeError("name point", err)
				}
				name, _, err := sess.store.NameOf(ctx, r)
				if err != nil {
					return sess.storeError("name point", err)
				}
				return sess.out.Success(RefResult{Index: r, Name: name})
			})
		},
	}
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <ref>",
		Short: "Delete a stored link",
		Long: `Delete a link and print it before and after.

Links that refer to the deleted one are kept and render as missing.

Example:
  doublets --db links.db delete 5`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			refs, err := parseRefs(args)
			if err != nil {
				return err
			}
			return withSession(rootOpts, cmd, func(ctx context.Context, sess *session) error {
				var result DeleteResult
				err := sess.store.DeleteWith(ctx, refs[0], func(before, after link.Link) link.Flow {
					result = DeleteResult{Before: before, After: after}
					return link.Continue
				})
				if errors.Is(err, link.ErrNotExists) {
					return sess.out.Fail(ExitFailure, CodeNotFound, "nothing to delete", err)
				}
				if err != nil {
					return sess.storeError("delete link", err)
				}
				sess.logger.Info("link deleted", "index", refs[0])
				return sess.out.Success(result)
			})
		},
	}
}

// withSession opens a session, runs fn and closes the session.
func withSession(opts *RootOptions, cmd *cobra.Command, fn func(context.Context, *session) error) error {
	sess, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, sess)
}

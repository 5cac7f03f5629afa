package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/doublets/internal/config"
	"github.com/roach88/doublets/internal/render"
)

// RenderFlags holds the deep formatting flags shared by variants and show.
type RenderFlags struct {
	Element string
	Index   bool
	Visited bool
	Debug   bool
}

func addRenderFlags(cmd *cobra.Command, f *RenderFlags) {
	cmd.Flags().StringVar(&f.Element, "element", "point", "links rendered as bare indexes (point|partial|none)")
	cmd.Flags().BoolVar(&f.Index, "index", false, "prefix expansions with their index")
	cmd.Flags().BoolVar(&f.Visited, "visited", false, "expand references already rendered")
	cmd.Flags().BoolVar(&f.Debug, "debug", false, "mark missing (~) and revisited (*) references")
}

// options merges the [render] config section with explicitly set flags.
func (f *RenderFlags) options(ctx context.Context, cmd *cobra.Command, cfg config.Render, namer render.Namer) (render.Options, error) {
	flags := cmd.Flags()
	if flags.Changed("element") {
		cfg.Element = f.Element
	}
	if flags.Changed("index") {
		cfg.Index = f.Index
	}
	if flags.Changed("visited") {
		cfg.Visited = f.Visited
	}
	if flags.Changed("debug") {
		cfg.Debug = f.Debug
	}

	isElement, err := render.ElementPredicate(cfg.Element)
	if err != nil {
		return render.Options{}, NewExitError(ExitCommandError, err.Error())
	}
	return render.Options{
		IsElement:     isElement,
		RenderVisited: cfg.Visited,
		RenderIndex:   cfg.Index,
		RenderDebug:   cfg.Debug,
		Label:         render.NameLabel(ctx, namer),
	}, nil
}

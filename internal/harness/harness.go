package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/doublets/internal/backend"
	"github.com/roach88/doublets/internal/config"
	"github.com/roach88/doublets/internal/link"
	"github.com/roach88/doublets/internal/render"
	"github.com/roach88/doublets/internal/variants"
)

// Harness executes one scenario against one store.
type Harness struct {
	store  link.Store
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh volatile store for isolation.
//
// Execution flow:
// 1. Open the scenario's backend
// 2. Create the leaves as named points
// 3. Enumerate the sequence
// 4. Render every variant with leaf names as labels
// 5. Evaluate expectations
//
// An enumeration error is an outcome, recorded in Result.ErrorCode. Store
// failures outside the enumeration return an error.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	backendName := scenario.Backend
	if backendName == "" {
		backendName = config.BackendSQLite
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	st, err := backend.Open(config.Storage{Backend: backendName}, nil, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create volatile store: %w", err)
	}
	defer st.Close()

	h := &Harness{store: st, logger: logger}
	result := NewResult(scenario.Name, backendName)

	names := map[string]link.Ref{}
	for _, leaf := range scenario.leaves() {
		ref, err := st.NamePoint(ctx, leaf)
		if err != nil {
			return nil, fmt.Errorf("create leaf %q: %w", leaf, err)
		}
		names[leaf] = ref
	}

	seq := make([]link.Ref, len(scenario.Sequence))
	for i, tok := range scenario.Sequence {
		seq[i] = names[tok]
	}

	roots, err := variants.New(st, variants.WithLogger(logger)).Enumerate(ctx, seq)
	if err != nil {
		var ee *variants.EnumerationError
		if !errors.As(err, &ee) {
			return nil, fmt.Errorf("enumerate: %w", err)
		}
		result.ErrorCode = string(ee.Code)
	}
	result.Count = len(roots)

	if err := h.renderAll(ctx, scenario.Render, roots, result); err != nil {
		return nil, err
	}

	result.Links, err = st.Count(ctx, link.MatchAll)
	if err != nil {
		return nil, fmt.Errorf("count links: %w", err)
	}

	for _, msg := range EvaluateExpect(result, scenario.Expect) {
		result.AddError(msg)
	}
	return result, nil
}

func (h *Harness) renderAll(ctx context.Context, ro RenderOptions, roots []link.Ref, result *Result) error {
	isElement, err := render.ElementPredicate(ro.Element)
	if err != nil {
		return err
	}
	opts := render.Options{
		IsElement:     isElement,
		RenderVisited: ro.Visited,
		RenderIndex:   ro.Index,
		RenderDebug:   ro.Debug,
		Label:         render.NameLabel(ctx, h.store),
	}
	for _, root := range roots {
		text, err := render.Deep(ctx, h.store, root, opts)
		if err != nil {
			return fmt.Errorf("render variant %d: %w", root, err)
		}
		result.Renders = append(result.Renders, text)
	}
	return nil
}

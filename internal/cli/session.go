package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/doublets/internal/backend"
	"github.com/roach88/doublets/internal/config"
	"github.com/roach88/doublets/internal/link"
	"github.com/roach88/doublets/internal/metrics"
)

// SessionGenerator produces the id attached to one CLI invocation.
type SessionGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 session ids.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// session is the state shared by one command invocation: resolved config,
// a logger tagged with the session id, optional metrics and the open store.
type session struct {
	id      string
	cfg     config.Config
	logger  *slog.Logger
	metrics *metrics.Recorder
	store   link.Store
	out     *OutputFormatter
	errOut  io.Writer
}

// loadConfig reads --config (if any) and applies explicitly set flags on
// top of it.
func loadConfig(opts *RootOptions, cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		var err error
		cfg, err = config.Load(opts.ConfigPath)
		if err != nil {
			return config.Config{}, err
		}
	}

	if cmd.Flags().Changed("backend") {
		cfg.Storage.Backend = opts.Backend
	}
	if cmd.Flags().Changed("db") {
		cfg.Storage.Path = opts.Database
	}
	if opts.Verbose {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// openSession resolves configuration and opens the store.
// The caller must Close the session.
func openSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(opts, cmd)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	gen := opts.SessionGenerator
	if gen == nil {
		gen = UUIDv7Generator{}
	}
	id := gen.Generate()

	level, _ := cfg.Level() // validated above
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	logger := slog.New(handler).With("session", id)

	var rec *metrics.Recorder
	if opts.Metrics {
		rec = metrics.NewRecorder()
	}

	logger.Debug("opening store", "backend", cfg.Storage.Backend, "path", cfg.Storage.Path)
	st, err := backend.Open(cfg.Storage, rec, logger)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open store", err)
	}

	return &session{
		id:      id,
		cfg:     cfg,
		logger:  logger,
		metrics: rec,
		store:   st,
		out: &OutputFormatter{
			Format:    opts.Format,
			Writer:    cmd.OutOrStdout(),
			ErrWriter: cmd.ErrOrStderr(),
			Verbose:   opts.Verbose,
			Session:   id,
		},
		errOut: cmd.ErrOrStderr(),
	}, nil
}

// Close writes metrics (when enabled) and closes the store.
func (s *session) Close() {
	if err := s.metrics.WriteText(s.errOut); err != nil {
		s.logger.Error("error writing metrics", "error", err)
	}
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing store", "error", err)
	}
}

// parseRefs parses decimal reference arguments.
func parseRefs(args []string) ([]link.Ref, error) {
	refs := make([]link.Ref, len(args))
	for i, a := range args {
		r, err := link.ParseRef(a)
		if err != nil {
			return nil, NewExitError(ExitCommandError, err.Error())
		}
		refs[i] = r
	}
	return refs, nil
}

// storeError reports a store failure and maps it to an exit error.
func (s *session) storeError(action string, err error) error {
	return s.out.Fail(ExitFailure, storeFailureCode(err), fmt.Sprintf("failed to %s", action), err)
}

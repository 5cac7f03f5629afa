// Package config loads doublets settings from an optional TOML file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
)

// Config is the root of a configuration file.
type Config struct {
	LogLevel string  `toml:"log_level"`
	Storage  Storage `toml:"storage"`
	Render   Render  `toml:"render"`
}

// Storage selects and tunes the link store.
type Storage struct {
	// Backend is "sqlite" or "badger".
	Backend string `toml:"backend"`

	// Path is the database file (sqlite) or directory (badger). Empty
	// selects a volatile store.
	Path string `toml:"path"`

	// MaxLinks caps the number of stored links. Zero means unlimited.
	MaxLinks int64 `toml:"max_links"`

	// SyncWrites makes badger writes synchronous.
	SyncWrites bool `toml:"sync_writes"`
}

// Render holds the default deep formatting options.
type Render struct {
	Element string `toml:"element"`
	Index   bool   `toml:"index"`
	Visited bool   `toml:"visited"`
	Debug   bool   `toml:"debug"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		LogLevel: "info",
		Storage:  Storage{Backend: BackendSQLite},
		Render:   Render{Element: "point"},
	}
}

// Load reads path over the defaults. Keys absent from the file keep their
// default values; unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field values.
func (c Config) Validate() error {
	var errs []error
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	switch c.Storage.Backend {
	case BackendSQLite, BackendBadger:
	default:
		errs = append(errs, fmt.Errorf("storage.backend: unknown backend %q (want sqlite or badger)", c.Storage.Backend))
	}
	if c.Storage.MaxLinks < 0 {
		errs = append(errs, fmt.Errorf("storage.max_links: must not be negative, got %d", c.Storage.MaxLinks))
	}
	switch c.Render.Element {
	case "point", "partial", "none":
	default:
		errs = append(errs, fmt.Errorf("render.element: unknown predicate %q (want point, partial or none)", c.Render.Element))
	}
	return errors.Join(errs...)
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}
	return lvl, nil
}

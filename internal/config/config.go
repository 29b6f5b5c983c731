// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

// Package config loads runtime configuration. Values are layered: built-in
// defaults, then an optional YAML file, then the DATABASE_URL environment
// variable, then command-line flags. Later layers win.
package config

import (
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Config is the resolved runtime configuration.
type Config struct {
	DatabaseURL string `koanf:"database-url"`
	LogFormat   string `koanf:"log-format"`
	LogLevel    string `koanf:"log-level"`
	MetricsAddr string `koanf:"metrics-addr"`
}

// defaults are the built-in base layer.
var defaults = map[string]any{
	"database-url": "",
	"log-format":   "json",
	"log-level":    "info",
	"metrics-addr": "127.0.0.1:9100",
}

// Flags returns the flag set commands bind to pick up config overrides.
func Flags() *pflag.FlagSet {
	f := pflag.NewFlagSet("inkwell", pflag.ContinueOnError)
	f.String("database-url", "", "PostgreSQL connection URL")
	f.String("log-format", "", "log output format (json or text)")
	f.String("log-level", "", "log level (debug, info, warn, error)")
	f.String("metrics-addr", "", "observability server listen address")
	return f
}

// Load resolves the configuration. path may be empty; flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return nil, oops.Code("CONFIG_DEFAULTS_FAILED").With("key", key).Wrap(err)
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_FILE_FAILED").With("path", path).Wrap(err)
		}
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		if err := k.Set("database-url", url); err != nil {
			return nil, oops.Code("CONFIG_ENV_FAILED").Wrap(err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_PARSE_FAILED").Wrap(err)
	}
	return &cfg, nil
}

// RequireDatabaseURL returns an error when no database URL was configured.
func (c *Config) RequireDatabaseURL() error {
	if c.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").
			Errorf("a database URL is required: set DATABASE_URL, --database-url, or database-url in the config file")
	}
	return nil
}

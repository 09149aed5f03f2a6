// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

// Package config loads the optional luaparse TOML configuration file.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds every setting the command line tool reads from a file.
// Command line flags take precedence over these values.
type Config struct {
	Parser   ParserConfig   `toml:"parser"`
	Output   OutputConfig   `toml:"output"`
	Compiler CompilerConfig `toml:"compiler"`
}

type ParserConfig struct {
	// MaxDepth bounds nesting of statements and expressions. Zero uses the
	// parser default.
	MaxDepth int `toml:"max_depth"`
}

type OutputConfig struct {
	Format     string `toml:"format"`
	DumpTokens bool   `toml:"dump_tokens"`
	DumpTree   bool   `toml:"dump_tree"`
}

type CompilerConfig struct {
	// MaxConcurrency bounds the files parsed at once. Zero uses the number
	// of CPUs.
	MaxConcurrency int `toml:"max_concurrency"`
	// Roots are searched in order for relative targets.
	Roots []string `toml:"roots"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a TOML file. Unknown keys are rejected so that typos do not
// pass silently.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown config key %q in %s", undecoded[0].String(), path)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports settings that no component can honor.
func (c *Config) Validate() error {
	if c.Parser.MaxDepth < 0 {
		return fmt.Errorf("parser.max_depth must not be negative, got %d", c.Parser.MaxDepth)
	}
	if c.Compiler.MaxConcurrency < 0 {
		return fmt.Errorf("compiler.max_concurrency must not be negative, got %d", c.Compiler.MaxConcurrency)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Output.Format == "" {
		c.Output.Format = "text"
	}
	if len(c.Compiler.Roots) == 0 {
		c.Compiler.Roots = []string{"."}
	}
}

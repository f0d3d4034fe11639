// Package config defines the driver-facing compiler configuration of
// spec §6.5, loadable from an optional TOML file and from CLI flags, and
// transportable across process boundaries via rezi binary encoding (the
// only mutable state spec §5 allows to cross such a boundary).
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/dekarrin/rezi"
)

// Config holds every recognized driver-facing option. The zero value is
// the universal, non-strict, non-minified default.
type Config struct {
	// Target selects both the syntax gate set and generated idioms: ""
	// (universal), "2", "3", "27", "35", etc.
	Target string `toml:"target"`

	// Strict promotes style warnings to errors.
	Strict bool `toml:"strict"`

	// Minify suppresses line-number comments and minifies the header.
	Minify bool `toml:"minify"`

	// LineNumbers emits `# <orig-line>` after each logical statement for
	// debuggers.
	LineNumbers bool `toml:"line_numbers"`

	// KeepLines includes the original source as a trailing comment.
	KeepLines bool `toml:"keep_lines"`

	// NoTCO suppresses tail-call elimination helpers.
	NoTCO bool `toml:"no_tco"`

	// NoWrapTypes emits type annotations as executable expressions
	// instead of forward-string-wrapped.
	NoWrapTypes bool `toml:"no_wrap_types"`
}

// Default returns the universal, non-strict default configuration.
func Default() Config {
	return Config{}
}

// Load reads a Config from a TOML file at path, starting from Default()
// so an omitted key keeps its default value.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return LoadBytes(data)
}

// LoadBytes parses TOML-encoded config data directly, for callers that
// already have the bytes in hand (e.g. a CLI flag supplying inline
// config).
func LoadBytes(data []byte) (Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse TOML: %w", err)
	}
	return cfg, nil
}

// MarshalBinary encodes cfg with rezi for cross-process transport to a
// driver-spawned compilation worker, per spec §5.
func (c Config) MarshalBinary() ([]byte, error) {
	return rezi.EncBinary(c), nil
}

// UnmarshalBinary decodes a Config previously produced by MarshalBinary.
func (c *Config) UnmarshalBinary(data []byte) error {
	n, err := rezi.DecBinary(data, c)
	if err != nil {
		return fmt.Errorf("config: REZI decode: %w", err)
	}
	if n != len(data) {
		return fmt.Errorf("config: REZI decode: consumed %d/%d bytes", n, len(data))
	}
	return nil
}

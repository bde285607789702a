// Package config loads user preferences from YAML and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/vanderheijden86/underhood/pkg/highlight"
	"github.com/vanderheijden86/underhood/pkg/theme"
)

// EnvPrefix prefixes every environment override. Nested keys use a double
// underscore: UNDERHOOD_HIGHLIGHT__WORKERS=8.
const EnvPrefix = "UNDERHOOD_"

// Config is the user's preferences. Nothing here records reading progress.
type Config struct {
	Theme        string          `yaml:"theme" koanf:"theme"`
	StartChapter string          `yaml:"start_chapter,omitempty" koanf:"start_chapter"`
	NarrowWidth  int             `yaml:"narrow_width" koanf:"narrow_width"`
	Highlight    HighlightConfig `yaml:"highlight" koanf:"highlight"`
	LogFile      string          `yaml:"log_file,omitempty" koanf:"log_file"`
	LogLevel     string          `yaml:"log_level,omitempty" koanf:"log_level"`
}

// HighlightConfig selects chroma styles and the render pool size.
type HighlightConfig struct {
	StyleDark  string `yaml:"style_dark" koanf:"style_dark"`
	StyleLight string `yaml:"style_light" koanf:"style_light"`
	Workers    int    `yaml:"workers" koanf:"workers"`
}

// Default returns the built-in preferences.
func Default() *Config {
	return &Config{
		Theme:       string(theme.ModeAuto),
		NarrowWidth: 100,
		Highlight: HighlightConfig{
			StyleDark:  highlight.DefaultStyleDark,
			StyleLight: highlight.DefaultStyleLight,
			Workers:    4,
		},
		LogLevel: "info",
	}
}

// Load starts from Default, overlays the YAML file at path when it exists
// (an empty path skips it), then UNDERHOOD_* environment variables.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration as YAML, creating the parent directory.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks every field and names the first offending one.
func (c *Config) Validate() error {
	if _, err := theme.ParseMode(c.Theme); err != nil {
		return fmt.Errorf("theme: %w", err)
	}
	if c.NarrowWidth < 0 {
		return fmt.Errorf("narrow_width must be non-negative, got %d", c.NarrowWidth)
	}
	if c.Highlight.Workers < 1 || c.Highlight.Workers > 16 {
		return fmt.Errorf("highlight.workers must be between 1 and 16, got %d", c.Highlight.Workers)
	}
	if !highlight.StyleExists(c.Highlight.StyleDark) {
		return fmt.Errorf("highlight.style_dark: unknown chroma style %q", c.Highlight.StyleDark)
	}
	if !highlight.StyleExists(c.Highlight.StyleLight) {
		return fmt.Errorf("highlight.style_light: unknown chroma style %q", c.Highlight.StyleLight)
	}
	if c.LogLevel != "" && !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log_level %q: must be one of debug, info, warn, error", c.LogLevel)
	}
	return nil
}

// Mode is the parsed theme mode. Invalid values read as auto.
func (c *Config) Mode() theme.Mode {
	m, err := theme.ParseMode(c.Theme)
	if err != nil {
		return theme.ModeAuto
	}
	return m
}

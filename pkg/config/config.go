// Package config loads builder settings from YAML or JSON documents.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/history"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

// ErrInvalid marks configuration values that fail validation.
var ErrInvalid = errors.New("config: invalid configuration")

// Config holds the tunables of a builder session.
type Config struct {
	HistoryCapacity int    `yaml:"historyCapacity" json:"historyCapacity"`
	Language        string `yaml:"language" json:"language"`
	SanitizeMarkup  bool   `yaml:"sanitizeMarkup" json:"sanitizeMarkup"`
	LogLevel        string `yaml:"logLevel" json:"logLevel"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		HistoryCapacity: history.DefaultCapacity,
		Language:        "en",
		SanitizeMarkup:  true,
		LogLevel:        "info",
	}
}

// Load parses a YAML (or JSON) document over the defaults and validates the
// result. Keys absent from the document keep their default value.
func Load(data []byte) (Config, error) {
	cfg := Default()
	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile reads path and parses it with Load.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Load(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first invalid member.
func (c Config) Validate() error {
	if c.HistoryCapacity <= 0 {
		return fmt.Errorf("%w: historyCapacity must be positive, got %d", ErrInvalid, c.HistoryCapacity)
	}
	if _, err := c.LanguageTag(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// LanguageTag parses Language.
func (c Config) LanguageTag() (language.Tag, error) {
	tag, err := language.Parse(c.Language)
	if err != nil {
		return language.Und, fmt.Errorf("%w: language %q: %v", ErrInvalid, c.Language, err)
	}
	return tag, nil
}

// Level parses LogLevel (debug, info, warn, error).
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: logLevel %q", ErrInvalid, c.LogLevel)
	}
	return level, nil
}

// BuilderOptions converts the configuration into builder options. The
// configuration is assumed valid; unparsable members fall back to defaults.
func (c Config) BuilderOptions(logger *slog.Logger) []builder.Option {
	opts := []builder.Option{
		builder.WithHistoryCapacity(c.HistoryCapacity),
		builder.WithSanitizeImports(c.SanitizeMarkup),
		builder.WithLogger(logger),
	}
	if tag, err := c.LanguageTag(); err == nil {
		opts = append(opts, builder.WithLanguage(validation.MatchLanguage(tag)))
	}
	return opts
}

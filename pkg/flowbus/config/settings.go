package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Journal drivers.
const (
	JournalNone   = "none"
	JournalMemory = "memory"
	JournalSQLite = "sqlite"
)

// Log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Settings configures a dispatcher.
type Settings struct {
	LogLevel      string  `yaml:"log_level" json:"log_level" env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFormat     string  `yaml:"log_format" json:"log_format" env:"LOG_FORMAT" validate:"oneof=text json"`
	RecoverPanics bool    `yaml:"recover_panics" json:"recover_panics" env:"RECOVER_PANICS"`
	Metrics       bool    `yaml:"metrics" json:"metrics" env:"METRICS"`
	Tracing       bool    `yaml:"tracing" json:"tracing" env:"TRACING"`
	Journal       Journal `yaml:"journal" json:"journal" envPrefix:"JOURNAL_"`
}

// Journal configures where handler failures are recorded.
type Journal struct {
	Driver  string `yaml:"driver" json:"driver" env:"DRIVER" validate:"oneof=none memory sqlite"`
	Path    string `yaml:"path" json:"path" env:"PATH" validate:"required_if=Driver sqlite"`
	MaxSize int    `yaml:"max_size" json:"max_size" env:"MAX_SIZE" validate:"gte=0"`
}

// Default returns the settings used when nothing else is configured.
func Default() Settings {
	return Settings{
		LogLevel:      "info",
		LogFormat:     FormatText,
		RecoverPanics: true,
		Journal: Journal{
			Driver: JournalNone,
		},
	}
}

var validate = validator.New()

// Validate reports the first invalid field.
func (s Settings) Validate() error {
	s.normalize()
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

// normalize lower-cases enumerated values so "INFO" and "info" are equal.
func (s *Settings) normalize() {
	s.LogLevel = strings.ToLower(strings.TrimSpace(s.LogLevel))
	s.LogFormat = strings.ToLower(strings.TrimSpace(s.LogFormat))
	s.Journal.Driver = strings.ToLower(strings.TrimSpace(s.Journal.Driver))
}

// Level returns the configured log level, defaulting to info.
func (s Settings) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Logger builds a slog.Logger writing to w in the configured format and level.
func (s Settings) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: s.Level()}
	if strings.EqualFold(s.LogFormat, FormatJSON) {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Package logging builds the zerolog loggers used across assetd.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"evalgo.org/assetd/internal/config"
)

// logger fields
const (
	Component = "component"
	AssetID   = "asset_id"
	RequestID = "request_id"
	Event     = "event"
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
}

// New returns the root logger configured from cfg.
func New(cfg config.LoggingConfig) zerolog.Logger {
	var out io.Writer = os.Stdout
	if strings.EqualFold(cfg.Output, "stderr") {
		out = os.Stderr
	}
	return NewWithWriter(cfg, out)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(cfg config.LoggingConfig, out io.Writer) zerolog.Logger {
	if strings.EqualFold(cfg.Format, "text") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Str("service", "assetd").
		Logger()
}

// ParseLevel maps a config level to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "warning":
		return zerolog.WarnLevel
	case "":
		return zerolog.InfoLevel
	}
	l, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}

// For returns a child logger tagged with the given component name.
func For(parent zerolog.Logger, component string) zerolog.Logger {
	return parent.With().Str(Component, component).Logger()
}

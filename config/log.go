package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/natefinch/lumberjack"
)

// SlogLevel parses Level. The empty string is Info.
func (c LogConfig) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(c.Level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("%w: log level %q", ErrInvalid, c.Level)
}

// Writer returns a rotating file writer when Logfile is set, fallback otherwise.
func (c LogConfig) Writer(fallback io.Writer) io.Writer {
	if c.Logfile == "" {
		return fallback
	}
	return &lumberjack.Logger{
		Filename: c.Logfile,
		MaxSize:  c.MaxSize, // megabytes
		MaxAge:   c.MaxAge,  // days
	}
}

// NewLogger builds a text logger writing to Writer(fallback) at Level.
func (c LogConfig) NewLogger(fallback io.Writer) (*slog.Logger, error) {
	level, err := c.SlogLevel()
	if err != nil {
		return nil, err
	}
	h := slog.NewTextHandler(c.Writer(fallback), &slog.HandlerOptions{Level: level})

	return slog.New(h), nil
}

package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"diabetes/internal/configuration"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger owns the process logger and the optional rotating file behind it.
type Logger struct {
	*slog.Logger
	// file — rotating log file, nil when logging to stdout only
	file *lumberjack.Logger
}

// ParseLevel converts a configured level name to slog.Level.
// Unknown names fall back to Info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a JSON logger writing to out and, if config.File is set,
// to a lumberjack-rotated file as well. The logger becomes the slog default.
func New(config configuration.LoggerConfig, out io.Writer) *Logger {
	if out == nil {
		out = os.Stdout
	}

	logger := Logger{}
	if config.File != "" {
		logger.file = &lumberjack.Logger{
			Filename:   config.File,
			MaxSize:    config.MaxSize,
			MaxBackups: config.MaxBackups,
			Compress:   true,
		}
		out = io.MultiWriter(out, logger.file)
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: ParseLevel(config.Level),
	})
	logger.Logger = slog.New(handler)
	slog.SetDefault(logger.Logger)

	return &logger
}

// Close closes the rotating file, if any. Should be called on shutdown.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

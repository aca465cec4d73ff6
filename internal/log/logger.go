package log

import (
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

var (
	once   sync.Once
	logger *slog.Logger
)

// Setup initializes the global logger.
// logic: default to INFO. If level is invalid, fallback to INFO.
// format is one of "json", "text", or "auto"; "auto" picks text when
// stdout is a terminal and json otherwise.
func Setup(level, format string) {
	once.Do(func() {
		var l slog.Level
		switch strings.ToUpper(level) {
		case "DEBUG":
			l = slog.LevelDebug
		case "WARN":
			l = slog.LevelWarn
		case "ERROR":
			l = slog.LevelError
		default:
			l = slog.LevelInfo
		}

		var handler slog.Handler
		switch resolveFormat(format) {
		case "text":
			handler = tint.NewHandler(os.Stdout, &tint.Options{
				Level:      l,
				TimeFormat: time.TimeOnly,
			})
		default:
			handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: l})
		}

		logger = slog.New(handler)
		slog.SetDefault(logger)
	})
}

func resolveFormat(format string) string {
	switch strings.ToLower(format) {
	case "text":
		return "text"
	case "json":
		return "json"
	default:
		if isatty.IsTerminal(os.Stdout.Fd()) {
			return "text"
		}
		return "json"
	}
}

// Get returns the configured logger, or a default one if Setup hasn't been called.
func Get() *slog.Logger {
	if logger == nil {
		Setup("INFO", "json")
	}
	return logger
}

// WithComponent returns a logger with the component field set.
func WithComponent(name string) *slog.Logger {
	return Get().With(slog.String("component", name))
}

// WithAudio returns a logger with the audio_id field set.
func WithAudio(id string) *slog.Logger {
	return Get().With(slog.String("audio_id", id))
}

// Info logs at INFO level.
func Info(msg string, args ...any) {
	Get().Info(msg, args...)
}

// Debug logs at DEBUG level.
func Debug(msg string, args ...any) {
	Get().Debug(msg, args...)
}

// Warn logs at WARN level.
func Warn(msg string, args ...any) {
	Get().Warn(msg, args...)
}

// Error logs at ERROR level.
func Error(msg string, args ...any) {
	Get().Error(msg, args...)
}

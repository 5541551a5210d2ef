// Package logger provides the global structured logger. Output goes to a
// rotating file, never to the terminal: the TUI owns stdout.
package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// Log is the global structured logger.
	Log *slog.Logger
	// logWriter is the rotating log writer.
	logWriter *lumberjack.Logger
	// LogPath is the path to the current log file.
	LogPath string
)

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Init initializes the global logger. If logPath is empty it defaults to
// ~/.config/vigil/vigil.log.
func Init(level slog.Level, logPath string) {
	if logPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = os.TempDir()
		}
		logDir := filepath.Join(homeDir, ".config", "vigil")
		_ = os.MkdirAll(logDir, 0o755)
		logPath = filepath.Join(logDir, "vigil.log")
	}
	LogPath = logPath

	logWriter = &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     7, // days
		Compress:   true,
	}

	Log = slog.New(slog.NewJSONHandler(logWriter, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(Log)
}

// Close closes the log file.
func Close() {
	if logWriter != nil {
		_ = logWriter.Close()
	}
}

func getLogger() *slog.Logger {
	if Log != nil {
		return Log
	}
	return slog.Default()
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	getLogger().Debug(msg, args...)
}

// Info logs an info message.
func Info(msg string, args ...any) {
	getLogger().Info(msg, args...)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	getLogger().Warn(msg, args...)
}

// Error logs an error message.
func Error(msg string, args ...any) {
	getLogger().Error(msg, args...)
}

// With creates a child logger with additional attributes.
func With(args ...any) *slog.Logger {
	return getLogger().With(args...)
}

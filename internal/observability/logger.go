package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the process-wide structured logger. It writes key/value records to
// stderr and, when a log path is configured, to a size-rotated file.
type Logger struct {
	internal *slog.Logger
	level    *slog.LevelVar
	file     *lumberjack.Logger
}

type Rotation struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func NewLogger(logPath, logLevel string, rotation Rotation) *Logger {
	var file *lumberjack.Logger
	var out io.Writer = os.Stderr
	if logPath != "" {
		file = &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    rotation.MaxSizeMB,
			MaxBackups: rotation.MaxBackups,
			MaxAge:     rotation.MaxAgeDays,
			Compress:   true,
		}
		out = io.MultiWriter(os.Stderr, file)
	}
	return newLogger(out, logLevel, file)
}

// NewWriterLogger logs to w only. Used by tests and tools that capture output.
func NewWriterLogger(w io.Writer, logLevel string) *Logger {
	return newLogger(w, logLevel, nil)
}

func newLogger(w io.Writer, logLevel string, file *lumberjack.Logger) *Logger {
	lvl := new(slog.LevelVar)
	lvl.Set(ParseLevel(logLevel))
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	return &Logger{
		internal: slog.New(handler),
		level:    lvl,
		file:     file,
	}
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

func (l *Logger) SetLevel(level string) {
	l.level.Set(ParseLevel(level))
}

func (l *Logger) Debug(msg string, fields ...any) {
	l.internal.Debug(msg, fields...)
}

func (l *Logger) Info(msg string, fields ...any) {
	l.internal.Info(msg, fields...)
}

func (l *Logger) Warn(msg string, fields ...any) {
	l.internal.Warn(msg, fields...)
}

func (l *Logger) Error(msg string, fields ...any) {
	l.internal.Error(msg, fields...)
}

// With returns a child logger that shares the level and the rotated file.
func (l *Logger) With(fields ...any) *Logger {
	return &Logger{
		internal: l.internal.With(fields...),
		level:    l.level,
		file:     l.file,
	}
}

// Close flushes and closes the rotated log file.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

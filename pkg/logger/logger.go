// Package logger provides a simple, clean logging interface.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Constants for logging operations.
const (
	callerSkipFrames = 2 // Skip frames: getCaller -> logging method -> actual caller
)

// Output formats accepted by WithFormat.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Logger defines the logging interface.
type Logger interface {
	// Context-aware variants
	Info(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
	Debug(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Fatal(ctx context.Context, msg string, fields ...Field)

	Named(name string) Logger
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value interface{}
}

// Field constructors.
func String(key, val string) Field                 { return Field{Key: key, Value: val} }
func Strings(key string, val []string) Field       { return Field{Key: key, Value: val} }
func Int(key string, val int) Field                { return Field{Key: key, Value: val} }
func Float64(key string, val float64) Field        { return Field{Key: key, Value: val} }
func Bool(key string, val bool) Field              { return Field{Key: key, Value: val} }
func Duration(key string, val time.Duration) Field { return Field{Key: key, Value: val} }
func Any(key string, val interface{}) Field        { return Field{Key: key, Value: val} }
func Error(err error) Field                        { return Field{Key: "error", Value: err} }

// slogLogger implements Logger using slog.
type slogLogger struct {
	Logger *slog.Logger
}

func (l *slogLogger) Named(name string) Logger {
	return &slogLogger{Logger: l.Logger.With(slog.String("logger", name))}
}

func (l *slogLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelInfo, msg, fields)
}

func (l *slogLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelError, msg, fields)
}

func (l *slogLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelDebug, msg, fields)
}

func (l *slogLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelWarn, msg, fields)
}

func (l *slogLogger) Fatal(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelError, msg, fields)
	os.Exit(1)
}

// log must be called directly from a level method so getCaller sees the right frame.
func (l *slogLogger) log(ctx context.Context, level slog.Level, msg string, fields []Field) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.Logger.Enabled(ctx, level) {
		return
	}
	fields = append(fields, String("source", getCaller()))
	l.Logger.LogAttrs(ctx, level, msg, convertFields(fields)...)
}

// convertFields converts our Field type to slog.Attr.
func convertFields(fields []Field) []slog.Attr {
	attrs := make([]slog.Attr, len(fields))
	for i, f := range fields {
		attrs[i] = slog.Any(f.Key, f.Value)
	}
	return attrs
}

// nopLogger discards everything.
type nopLogger struct{}

func (nopLogger) Info(context.Context, string, ...Field)  {}
func (nopLogger) Error(context.Context, string, ...Field) {}
func (nopLogger) Debug(context.Context, string, ...Field) {}
func (nopLogger) Warn(context.Context, string, ...Field)  {}
func (nopLogger) Fatal(context.Context, string, ...Field) { os.Exit(1) }
func (n nopLogger) Named(string) Logger                   { return n }

// Nop returns a Logger that discards all entries. Useful as a default for
// components that may run before Init, and in tests.
func Nop() Logger { return nopLogger{} }

var global Logger
var levelVar slog.LevelVar

type settings struct {
	format string
	out    io.Writer
}

// Option configures Init.
type Option func(*settings)

// WithFormat selects the output encoding: "text" (default) or "json".
func WithFormat(format string) Option {
	return func(s *settings) {
		if format != "" {
			s.format = strings.ToLower(strings.TrimSpace(format))
		}
	}
}

// WithOutput redirects log output; stdout by default.
func WithOutput(w io.Writer) Option {
	return func(s *settings) {
		if w != nil {
			s.out = w
		}
	}
}

// Init initializes the global logger.
func Init(opts ...Option) error {
	s := settings{format: FormatText, out: os.Stdout}
	for _, opt := range opts {
		opt(&s)
	}

	// Default to info; can be changed with SetLevel*/SetLevelString.
	levelVar.Set(slog.LevelInfo)
	handlerOpts := &slog.HandlerOptions{Level: &levelVar, AddSource: false}

	var h slog.Handler
	switch s.format {
	case FormatText:
		h = slog.NewTextHandler(s.out, handlerOpts)
	case FormatJSON:
		h = slog.NewJSONHandler(s.out, handlerOpts)
	default:
		return fmt.Errorf("unknown log format: %s", s.format)
	}
	global = &slogLogger{Logger: slog.New(h)}
	return nil
}

// getCaller returns the caller location in format relative/path/file.go:line (IDE-friendly).
func getCaller() string {
	// log -> level method -> actual caller
	_, file, line, ok := runtime.Caller(callerSkipFrames + 1)
	if !ok {
		return "unknown:0"
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}
	relPath, err := filepath.Rel(cwd, file)
	if err != nil {
		return fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}
	return fmt.Sprintf("%s:%d", relPath, line)
}

// Get returns the global logger.
func Get() Logger {
	if global == nil {
		// The logger should be explicitly initialized by the application
		panic("logger not initialized. Call logger.Init() first")
	}
	return global
}

// Named creates a named logger.
func Named(name string) Logger {
	return Get().Named(name)
}

// Sync flushes buffered log entries.
func Sync() error {
	// slog does not buffer; nothing to flush
	return nil
}

// SetLevel updates the current logging level for the global logger handler.
func SetLevel(level slog.Level) { levelVar.Set(level) }

// SetLevelString parses and sets the logging level.
// Accepts: debug, info, warn/warning, error (case-insensitive).
func SetLevelString(level string) error {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		SetLevel(slog.LevelDebug)
	case "", "info":
		SetLevel(slog.LevelInfo)
	case "warn", "warning":
		SetLevel(slog.LevelWarn)
	case "error":
		SetLevel(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level: %s", level)
	}
	return nil
}

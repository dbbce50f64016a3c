// Package logger provides a small structured logging facade over slog.
package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Skip frames: caller -> log -> leveled method -> actual call site.
const callerSkipFrames = 3

// Logger defines the logging interface.
type Logger interface {
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
func String(key, val string) Field          { return Field{Key: key, Value: val} }
func Int(key string, val int) Field         { return Field{Key: key, Value: val} }
func Float64(key string, val float64) Field { return Field{Key: key, Value: val} }
func Bool(key string, val bool) Field       { return Field{Key: key, Value: val} }
func Any(key string, val interface{}) Field { return Field{Key: key, Value: val} }
func Error(err error) Field                 { return Field{Key: "error", Value: err} }

// facade implements Logger on top of slog.
type facade struct {
	l *slog.Logger
}

func (f *facade) Named(name string) Logger {
	return &facade{l: f.l.WithGroup(name)}
}

// log annotates every record with the call site before handing it to slog.
func (f *facade) log(ctx context.Context, level slog.Level, msg string, fields []Field) {
	attrs := make([]slog.Attr, 0, len(fields)+1)
	for _, fl := range fields {
		attrs = append(attrs, slog.Any(fl.Key, fl.Value))
	}
	attrs = append(attrs, slog.String("source", callSite()))
	f.l.LogAttrs(ctx, level, msg, attrs...)
}

func (f *facade) Info(ctx context.Context, msg string, fields ...Field) {
	f.log(ctx, slog.LevelInfo, msg, fields)
}

func (f *facade) Error(ctx context.Context, msg string, fields ...Field) {
	f.log(ctx, slog.LevelError, msg, fields)
}

func (f *facade) Debug(ctx context.Context, msg string, fields ...Field) {
	f.log(ctx, slog.LevelDebug, msg, fields)
}

func (f *facade) Warn(ctx context.Context, msg string, fields ...Field) {
	f.log(ctx, slog.LevelWarn, msg, fields)
}

func (f *facade) Fatal(ctx context.Context, msg string, fields ...Field) {
	f.log(ctx, slog.LevelError, msg, fields)
	os.Exit(1)
}

var global Logger
var levelVar slog.LevelVar

// Init initializes the global logger. The output format is text unless
// CURATA_LOG_FORMAT=json is set. The level starts at info and can be
// changed later with SetLevel or SetLevelString.
func Init() error {
	levelVar.Set(slog.LevelInfo)
	opts := &slog.HandlerOptions{Level: &levelVar}

	var h slog.Handler
	if strings.EqualFold(os.Getenv("CURATA_LOG_FORMAT"), "json") {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	global = &facade{l: slog.New(h)}
	return nil
}

// callSite returns the logging call site as a workdir-relative file:line.
func callSite() string {
	_, file, line, ok := runtime.Caller(callerSkipFrames)
	if !ok {
		return "unknown:0"
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}

	rel, err := filepath.Rel(cwd, file)
	if err != nil {
		return fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}

	return fmt.Sprintf("%s:%d", rel, line)
}

// Get returns the global logger. It panics when Init was never called so
// that a missing Init surfaces at the first log call rather than as
// silently dropped output.
func Get() Logger {
	if global == nil {
		panic("logger not initialized. Call logger.Init() first")
	}
	return global
}

// Named creates a named logger.
func Named(name string) Logger {
	return Get().Named(name)
}

// Sync flushes buffered log entries. slog writes synchronously, so this
// only exists to give main a single deferred cleanup hook.
func Sync() error {
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

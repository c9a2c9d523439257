// Package logging provides structured logging for the simulation and its tools.
// It wraps Go's standard slog package so every component logs with the same
// handler, level and run ID conventions.
package logging

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
)

// Environment variables read by NewLogger.
const (
	LevelEnv  = "XPBD_LOG_LEVEL"
	FormatEnv = "XPBD_LOG_FORMAT"
)

// Logger wraps slog.Logger with context-first helpers and run ID support.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger writing to stdout. The level comes from
// XPBD_LOG_LEVEL (DEBUG, INFO, WARN, ERROR; default INFO) and the format from
// XPBD_LOG_FORMAT (json or text; default json).
func NewLogger() *Logger {
	return NewLoggerWithWriter(os.Stdout)
}

// NewLoggerWithWriter creates a Logger writing to w with the environment
// level and format.
func NewLoggerWithWriter(w io.Writer) *Logger {
	opts := &slog.HandlerOptions{
		Level:       getLogLevelFromEnv(),
		ReplaceAttr: trimFloats,
	}
	var handler slog.Handler
	if strings.EqualFold(os.Getenv(FormatEnv), "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return &Logger{slog.New(handler)}
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	return &Logger{slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))}
}

// With returns a Logger that adds args to every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{l.Logger.With(args...)}
}

// LogWithContext logs a message, adding the run ID from ctx when present.
func (l *Logger) LogWithContext(ctx context.Context, level slog.Level, msg string, args ...any) {
	if runID := GetRunID(ctx); runID != "" {
		args = append(args, "run_id", runID)
	}
	l.Log(ctx, level, msg, args...)
}

// Info logs an informational message with context.
func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.LogWithContext(ctx, slog.LevelInfo, msg, args...)
}

// Warn logs a warning message with context.
func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.LogWithContext(ctx, slog.LevelWarn, msg, args...)
}

// Error logs an error message with context and proper error formatting.
func (l *Logger) Error(ctx context.Context, msg string, err error, args ...any) {
	if err != nil {
		args = append(args, "error", err.Error())
	}
	l.LogWithContext(ctx, slog.LevelError, msg, args...)
}

// Debug logs a debug message with context.
func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.LogWithContext(ctx, slog.LevelDebug, msg, args...)
}

// runIDKey is the context key for run IDs
type runIDKey struct{}

// WithRunID tags ctx with a simulation run ID, generating one when empty.
func WithRunID(ctx context.Context, runID string) context.Context {
	if runID == "" {
		runID = GenerateRunID()
	}
	return context.WithValue(ctx, runIDKey{}, runID)
}

// GetRunID extracts the run ID from the context, or "".
func GetRunID(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey{}).(string); ok {
		return id
	}
	return ""
}

// GenerateRunID creates a new random run ID.
func GenerateRunID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// getLogLevelFromEnv determines the log level from environment variables.
func getLogLevelFromEnv() slog.Level {
	levelStr := strings.ToUpper(os.Getenv(LevelEnv))
	switch levelStr {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// trimFloats prints float attributes with float32 precision. The simulation
// works in float32, and widened values otherwise carry spurious digits.
func trimFloats(groups []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() != slog.KindFloat64 {
		return a
	}
	f := a.Value.Float64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return slog.String(a.Key, strconv.FormatFloat(f, 'g', -1, 64))
	}
	return slog.String(a.Key, strconv.FormatFloat(f, 'g', -1, 32))
}

// WrapError wraps an error with additional context information.
func WrapError(err error, context string, args ...any) error {
	if err == nil {
		return nil
	}
	if len(args) > 0 {
		context = fmt.Sprintf(context, args...)
	}
	return fmt.Errorf("%s: %w", context, err)
}

// Package logger configures the process-wide slog logger and carries
// the request-id plumbing shared by the HTTP middleware and handlers.
// Long-running simulation loops report through Progress, which rolls
// per-tick noise up into periodic rate summaries.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

// ContextKey is a type for context keys used by the logger
type ContextKey string

// RequestIDKey is the context key under which the request-id
// middleware stores its id.
const RequestIDKey ContextKey = "request_id"

var defaultLogger *slog.Logger

// Init installs the global logger. The handler format follows
// LOG_FORMAT ("json" or "text"), defaulting to JSON when
// ENV=production and text otherwise. Debug level also records source
// positions, which is what you want when chasing a misbehaving tick.
func Init(levelStr string) {
	level := parseLevel(levelStr)
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	format := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_FORMAT")))
	if format == "" && os.Getenv("ENV") == "production" {
		format = "json"
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

func parseLevel(levelStr string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
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

// Get returns the default logger, initializing it at info level on
// first use.
func Get() *slog.Logger {
	if defaultLogger == nil {
		Init("info")
	}
	return defaultLogger
}

// FromContext returns the default logger annotated with the request id
// carried in ctx, when present. Handlers use the returned logger's own
// Info/Warn/Error methods rather than package-level wrappers.
func FromContext(ctx context.Context) *slog.Logger {
	log := Get()
	if reqID, ok := ctx.Value(RequestIDKey).(string); ok && reqID != "" {
		log = log.With("request_id", reqID)
	}
	return log
}

// WithComponent returns a logger with a component label
func WithComponent(component string) *slog.Logger {
	return Get().With("component", component)
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	Get().Debug(msg, args...)
}

// Info logs an info message
func Info(msg string, args ...any) {
	Get().Info(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	Get().Warn(msg, args...)
}

// Error logs an error message
func Error(msg string, args ...any) {
	Get().Error(msg, args...)
}

// Progress aggregates a hot loop into periodic log lines: one line per
// interval counts, each carrying the running total and rate. The tick
// loop runs thousands of iterations per second, so logging each one is
// not an option. Inc is safe for concurrent use.
type Progress struct {
	log      *slog.Logger
	msg      string
	interval int64
	count    atomic.Int64
	start    time.Time
}

// NewProgress creates a Progress that emits msg every interval counts
// on log.
func NewProgress(log *slog.Logger, msg string, interval int64) *Progress {
	if interval <= 0 {
		interval = 10000
	}
	return &Progress{log: log, msg: msg, interval: interval, start: time.Now()}
}

// Inc advances the counter and emits a rate line when the interval is
// crossed. Extra attrs are appended to the line.
func (p *Progress) Inc(args ...any) {
	n := p.count.Add(1)
	if n%p.interval != 0 {
		return
	}
	elapsed := time.Since(p.start)
	attrs := append([]any{
		"count", n,
		"rate_per_sec", float64(n) / elapsed.Seconds(),
	}, args...)
	p.log.Info(p.msg, attrs...)
}

// Done emits a final summary line with the total, elapsed time, and
// overall rate.
func (p *Progress) Done(args ...any) {
	n := p.count.Load()
	elapsed := time.Since(p.start)
	rate := 0.0
	if elapsed > 0 {
		rate = float64(n) / elapsed.Seconds()
	}
	attrs := append([]any{
		"count", n,
		"elapsed", elapsed.Truncate(time.Millisecond),
		"rate_per_sec", rate,
	}, args...)
	p.log.Info(p.msg+" complete", attrs...)
}

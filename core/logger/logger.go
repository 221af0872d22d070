package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/m3rciful/weatherbot/core/buildinfo"
	coreconfig "github.com/m3rciful/weatherbot/core/config"
)

// Options is the logging configuration. It is built once at process start and
// passed to New; the package keeps no global logger of its own.
type Options struct {
	Level       string
	Format      string
	KeysOrder   string
	DebugSample string
	Dir         string
	File        string
	Profile     string
	// Quiet components never log below WARN.
	Quiet []string
	// Secrets are replaced with a placeholder in every emitted line.
	Secrets []string
	// Output overrides stdout, mostly for tests.
	Output io.Writer
}

// FromConfig derives Options from the application configuration.
func FromConfig(cfg *coreconfig.Config) Options {
	if cfg == nil {
		return Options{Quiet: append([]string(nil), coreconfig.DefaultQuietComponents...)}
	}
	return Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		KeysOrder:   cfg.Logging.KeysOrder,
		DebugSample: cfg.Logging.DebugSample,
		Dir:         cfg.Logging.Dir,
		File:        cfg.Logging.BotFile,
		Profile:     cfg.Logging.Profile,
		Quiet:       append([]string(nil), cfg.Logging.Quiet...),
		Secrets:     cfg.Secrets(),
	}
}

// Logger owns the structured handler, its sinks and the debug sampler.
type Logger struct {
	base    *slog.Logger
	writer  *asyncWriter
	closers []io.Closer
	sampler *ratioSampler
	trace   bool

	mu     sync.Mutex
	closed bool
}

// New builds a Logger from opts.
func New(opts Options) (*Logger, error) {
	outputs, closers, err := buildOutputs(opts)
	if err != nil {
		return nil, err
	}
	writer := newAsyncWriter(outputs, 64*1024)

	level := new(slog.LevelVar)
	level.Set(selectLevel(opts.Level))

	handler := newStructuredHandler(handlerConfig{
		level:    level,
		writer:   writer,
		format:   selectFormat(opts),
		keyOrder: selectKeyOrder(opts.KeysOrder),
		quiet:    quietLevels(opts.Quiet),
		redact:   newRedactor(opts.Secrets),
	})

	num, den := parseDebugSample(opts.DebugSample)
	return &Logger{
		base:    slog.New(handler),
		writer:  writer,
		closers: closers,
		sampler: newRatioSampler(num, den),
		trace:   detectTraceFlag(),
	}, nil
}

// Base returns the root slog.Logger.
func (l *Logger) Base() *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l.base
}

// Component constructs a logger scoped to the provided component attribute.
func (l *Logger) Component(name string) *slog.Logger {
	base := l.Base()
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return base
	}
	return base.With("component", trimmed)
}

// LogStartup emits the single startup line with build metadata.
func (l *Logger) LogStartup(profile string) {
	attrs := []slog.Attr{
		slog.String("event", "startup"),
		slog.String("go_version", runtime.Version()),
		slog.String("build_version", buildinfo.Version),
		slog.String("build_commit", buildinfo.Commit),
		slog.String("build_time", buildinfo.Date),
		slog.String("cfg_profile", selectProfile(profile)),
	}
	l.Component("app").LogAttrs(context.Background(), slog.LevelInfo, "startup", attrs...)
}

// Shutdown flushes buffered log output and closes opened sinks.
func (l *Logger) Shutdown() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true

	var errs []error
	if err := l.writer.Flush(); err != nil {
		errs = append(errs, err)
	}
	if err := l.writer.Close(); err != nil {
		errs = append(errs, err)
	}
	for _, c := range l.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ShouldSampleDebug reports whether debug-level details should be logged for high-volume events.
func (l *Logger) ShouldSampleDebug() bool {
	if l == nil {
		return false
	}
	if l.trace {
		return true
	}
	return l.sampler.Allow()
}

func selectFormat(opts Options) logFormat {
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "kv", "text", "pretty":
		return formatKV
	case "json":
		return formatJSON
	}
	// Prefer human-friendly format when profile indicates debug/dev mode.
	if strings.EqualFold(opts.Profile, "debug") || strings.EqualFold(opts.Profile, "dev") {
		return formatKV
	}
	return formatJSON
}

func selectKeyOrder(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "default" {
		return append([]string(nil), defaultKeyOrder...)
	}
	var order []string
	for _, p := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			order = append(order, trimmed)
		}
	}
	if len(order) == 0 {
		return append([]string(nil), defaultKeyOrder...)
	}
	return order
}

func selectLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
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

func selectProfile(profile string) string {
	if p := strings.TrimSpace(profile); p != "" {
		return strings.ToLower(p)
	}
	return "prod"
}

func quietLevels(components []string) map[string]slog.Level {
	if len(components) == 0 {
		return nil
	}
	out := make(map[string]slog.Level, len(components))
	for _, c := range components {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			out[c] = slog.LevelWarn
		}
	}
	return out
}

func buildOutputs(opts Options) ([]io.Writer, []io.Closer, error) {
	primary := opts.Output
	if primary == nil {
		primary = os.Stdout
	}
	writers := []io.Writer{primary}
	dir := strings.TrimSpace(opts.Dir)
	file := strings.TrimSpace(opts.File)
	if dir == "" || file == "" {
		return writers, nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("logger: create log dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, file)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("logger: open log file %s: %w", path, err)
	}
	return append(writers, f), []io.Closer{f}, nil
}

func parseDebugSample(spec string) (int, int) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return 1, 50
	}
	num, den := parseRatioSpec(spec)
	if num == 0 && den == 0 {
		return 0, 0
	}
	if num <= 0 || den <= 0 {
		return 1, 50
	}
	return num, den
}

func detectTraceFlag() bool {
	return isTruthy(os.Getenv("TRACE")) || isTruthy(os.Getenv("LOG_TRACE"))
}

func isTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// LogEvent ensures the event attribute is present and logs with context fields.
func LogEvent(ctx context.Context, logg *slog.Logger, level slog.Level, event string, attrs ...slog.Attr) {
	if logg == nil {
		logg = FromContext(ctx)
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	logg.LogAttrs(ctx, level, "", attrs...)
}

// Debug logs a debug-level event with the logger carried by ctx.
func Debug(ctx context.Context, event string, attrs ...slog.Attr) {
	LogEvent(ctx, nil, slog.LevelDebug, event, attrs...)
}

// Info logs an info-level event with the logger carried by ctx.
func Info(ctx context.Context, event string, attrs ...slog.Attr) {
	LogEvent(ctx, nil, slog.LevelInfo, event, attrs...)
}

// Warn logs a warn-level event with the logger carried by ctx.
func Warn(ctx context.Context, event string, attrs ...slog.Attr) {
	LogEvent(ctx, nil, slog.LevelWarn, event, attrs...)
}

// Error logs an error-level event with the logger carried by ctx.
func Error(ctx context.Context, event string, attrs ...slog.Attr) {
	LogEvent(ctx, nil, slog.LevelError, event, attrs...)
}

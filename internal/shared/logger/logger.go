package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/grafana/loki-client-go/loki"
	slogloki "github.com/samber/slog-loki/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "fintoc-gateway"

// Logger wraps slog.Logger. It is used for HTTP access logs that may be shipped to Loki.
type Logger struct {
	*slog.Logger
	loki *loki.Client
}

// Config holds logger configuration.
type Config struct {
	Level   string // debug, info, warn, error
	Format  string // json, text
	LokiURL string // push URL; empty logs locally
	Output  io.Writer
}

// DefaultConfig returns default logger configuration.
func DefaultConfig() *Config {
	return &Config{
		Level:  "info",
		Format: "json",
		Output: os.Stdout,
	}
}

// New creates a new Logger. When LokiURL is set, records are pushed to Loki and
// local output is skipped; a Loki client that cannot be built falls back to local output.
func New(cfg *Config) *Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	level := parseLevel(cfg.Level)

	if cfg.LokiURL != "" {
		if l, err := newLokiLogger(cfg.LokiURL, level); err == nil {
			return l
		}
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text":
		handler = slog.NewTextHandler(cfg.Output, opts)
	default:
		handler = slog.NewJSONHandler(cfg.Output, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

func newLokiLogger(url string, level slog.Level) (*Logger, error) {
	lokiConfig, err := loki.NewDefaultConfig(url)
	if err != nil {
		return nil, fmt.Errorf("loki config: %w", err)
	}
	client, err := loki.New(lokiConfig)
	if err != nil {
		return nil, fmt.Errorf("loki client: %w", err)
	}

	handler := slogloki.Option{
		Level:  level,
		Client: client,
	}.NewLokiHandler()

	return &Logger{
		Logger: slog.New(handler).With("service", serviceName),
		loki:   client,
	}, nil
}

// Close flushes pending Loki batches.
func (l *Logger) Close() {
	if l.loki != nil {
		l.loki.Stop()
	}
}

// NewZapLogger creates the zap logger used by domain services and adapters.
func NewZapLogger(cfg *Config) (*zap.Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var zcfg zap.Config
	if strings.ToLower(cfg.Format) == "text" {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig.TimeKey = "time"
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	level, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zapcore.InfoLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	log, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	return log.With(zap.String("service", serviceName)), nil
}

func parseLevel(level string) slog.Level {
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

// With returns a new Logger with the given attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...), loki: l.loki}
}

type contextKey struct{}

// ContextWithLogger returns a new context with the logger.
func ContextWithLogger(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext returns the logger from context, or a default logger.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(contextKey{}).(*Logger); ok {
		return l
	}
	return New(nil)
}

// Err returns an error attribute.
func Err(err error) slog.Attr {
	return slog.Any("error", err)
}

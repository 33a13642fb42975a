// Package logger provides structured logging built on zap.
package logger

import (
	"context"
	"io"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents the minimum log level.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// LoggerInterface is the logging contract shared across the application.
type LoggerInterface interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
}

// Logger wraps a zap sugared logger and enriches records with the
// trace ID of the active span, when one is recording.
type Logger struct {
	sugar *zap.SugaredLogger
}

var _ LoggerInterface = (*Logger)(nil)

// New creates a Logger writing JSON records to w at the given level.
// The service name is attached to every record.
func New(w io.Writer, level Level, service string) *Logger {
	zapLevel := zapcore.InfoLevel
	switch level {
	case LevelDebug:
		zapLevel = zapcore.DebugLevel
	case LevelWarn:
		zapLevel = zapcore.WarnLevel
	case LevelError:
		zapLevel = zapcore.ErrorLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(w),
		zapLevel,
	)

	sugar := zap.New(core).Sugar().With("service", service)

	return &Logger{sugar: sugar}
}

// NewNop returns a logger that discards everything. Useful in tests
// and in TUI mode where stderr belongs to the terminal UI.
func NewNop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

// Debug logs at debug level.
func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.sugar.Debugw(msg, l.withTrace(ctx, args)...)
}

// Info logs at info level.
func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.sugar.Infow(msg, l.withTrace(ctx, args)...)
}

// Warn logs at warn level.
func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.sugar.Warnw(msg, l.withTrace(ctx, args)...)
}

// Error logs at error level.
func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	l.sugar.Errorw(msg, l.withTrace(ctx, args)...)
}

// Sync flushes buffered records.
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}

func (l *Logger) withTrace(ctx context.Context, args []any) []any {
	span := trace.SpanFromContext(ctx)
	if sc := span.SpanContext(); sc.IsValid() {
		return append(args, "trace_id", sc.TraceID().String())
	}
	return args
}

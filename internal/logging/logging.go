// Package logging wires a structured logr.Logger backed by zap, and carries
// it through request context so handlers and the engine can attach
// request-scoped fields (method, tool name, space id) without a global.
package logging

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process-wide production logger: JSON output, ISO-8601
// timestamps, info level. Falls back to a development config if the
// production encoder cannot be built (e.g. invalid sink, which practically
// never happens for the default stderr sink, but mirrors the fallback the
// rest of the ecosystem applies defensively).
func New() logr.Logger {
	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	zapConfig.EncoderConfig.TimeKey = "timestamp"
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zapLogger, err := zapConfig.Build()
	if err != nil {
		devConfig := zap.NewDevelopmentConfig()
		devConfig.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		zapLogger, _ = devConfig.Build()
	}
	return zapr.NewLogger(zapLogger)
}

type contextKey struct{}

// IntoContext attaches a logger to ctx.
func IntoContext(ctx context.Context, log logr.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, log)
}

// FromContext returns the logger attached to ctx, or the discard logger if
// none was attached.
func FromContext(ctx context.Context) logr.Logger {
	if log, ok := ctx.Value(contextKey{}).(logr.Logger); ok {
		return log
	}
	return logr.Discard()
}

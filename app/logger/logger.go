// Package logger builds the service's structured logger on log/slog.
//
// Request handlers should log through WithCtx so every line carries the
// request ID injected by the middleware:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("product saved", "sku", p.SKU)
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// New returns a JSON logger for production and a human readable one otherwise.
func New(production bool) *slog.Logger {
	return newLogger(os.Stdout, production)
}

func newLogger(w io.Writer, production bool) *slog.Logger {
	if production {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type ctxKey struct{}

// WithCtx returns the request scoped logger stored in ctx, or the default logger.
func WithCtx(ctx context.Context) *slog.Logger {
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return slog.Default()
}

// Inject stores log in ctx.
func Inject(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// Package logging builds the process-wide slog logger.
//
// Records always go to a JSON handler. With the OpenTelemetry bridge enabled
// they are also handed to an OpenTelemetry LoggerProvider through otelslog,
// which correlates them with the span carried by the record's context.
package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log"

	"github.com/forgo/shelf/internal/config"
)

// New returns a logger writing JSON to w. provider is only consulted when
// cfg.OTelBridge is set; nil means the global LoggerProvider.
func New(w io.Writer, cfg config.LogConfig, provider log.LoggerProvider) *slog.Logger {
	level := ParseLevel(cfg.Level)
	var handler slog.Handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})

	if cfg.OTelBridge {
		name := cfg.ServiceName
		if name == "" {
			name = "shelf"
		}
		var opts []otelslog.Option
		if provider != nil {
			opts = append(opts, otelslog.WithLoggerProvider(provider))
		}
		handler = &fanout{
			level:    level,
			handlers: []slog.Handler{handler, otelslog.NewHandler(name, opts...)},
		}
	}

	return slog.New(handler)
}

// ParseLevel maps a LOG_LEVEL value to a slog level. Unknown values are info.
func ParseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// fanout hands each record at or above level to every handler
type fanout struct {
	level    slog.Level
	handlers []slog.Handler
}

func (f *fanout) Enabled(_ context.Context, l slog.Level) bool {
	return l >= f.level
}

func (f *fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return &fanout{level: f.level, handlers: next}
}

func (f *fanout) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		next[i] = h.WithGroup(name)
	}
	return &fanout{level: f.level, handlers: next}
}

package log

import (
	"context"
	"errors"
	"log/slog"
)

// Tee returns a [slog.Handler] that sends every record to each handler that
// is enabled for its level.
func Tee(handlers ...slog.Handler) slog.Handler {
	return &teeHandler{handlers: handlers}
}

type teeHandler struct {
	handlers []slog.Handler
}

func (t *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}

	return false
}

func (t *teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error

	for _, h := range t.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}

		err := h.Handle(ctx, r.Clone())
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (t *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return t.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (t *teeHandler) WithGroup(name string) slog.Handler {
	return t.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (t *teeHandler) each(fn func(slog.Handler) slog.Handler) slog.Handler {
	hs := make([]slog.Handler, 0, len(t.handlers))
	for _, h := range t.handlers {
		hs = append(hs, fn(h))
	}

	return &teeHandler{handlers: hs}
}

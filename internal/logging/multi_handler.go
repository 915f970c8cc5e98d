package logging

import (
	"context"
	"errors"
	"log/slog"
)

// MultiHandler fans records out to every enabled handler. A failing handler
// does not stop the others; their errors are joined.
type MultiHandler struct {
	handlers []slog.Handler
}

func NewMultiHandler(handlers ...slog.Handler) *MultiHandler {
	return &MultiHandler{handlers: handlers}
}

func (m *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *MultiHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, h := range m.handlers {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		if err := h.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return m.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (m *MultiHandler) WithGroup(name string) slog.Handler {
	return m.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (m *MultiHandler) each(fn func(slog.Handler) slog.Handler) *MultiHandler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = fn(h)
	}
	return &MultiHandler{handlers: handlers}
}

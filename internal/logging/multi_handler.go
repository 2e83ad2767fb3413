package logging

import (
	"context"
	"log/slog"
)

// multiHandler forwards each record to every child handler that accepts
// its level. Used to pair the stdout handler with the journal handler.
type multiHandler struct {
	children []slog.Handler
}

func newMultiHandler(children ...slog.Handler) *multiHandler {
	return &multiHandler{children: children}
}

// Enabled reports whether any child would log at this level.
func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, child := range m.children {
		if child.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle forwards the record to every enabled child. A failing child does
// not stop the others; the record is cloned since handlers may retain it.
func (m *multiHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, child := range m.children {
		if child.Enabled(ctx, record.Level) {
			_ = child.Handle(ctx, record.Clone())
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	children := make([]slog.Handler, len(m.children))
	for i, child := range m.children {
		children[i] = child.WithAttrs(attrs)
	}
	return &multiHandler{children: children}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	children := make([]slog.Handler, len(m.children))
	for i, child := range m.children {
		children[i] = child.WithGroup(name)
	}
	return &multiHandler{children: children}
}

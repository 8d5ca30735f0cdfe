package observability

import (
	"context"
	"log/slog"

	"github.com/geocoder89/userapi/internal/requestctx"
	"go.opentelemetry.io/otel/trace"
)

// TraceHandler decorates records with trace_id/span_id from the active span and
// with request_id from the context, unless the logger already carries one.
type TraceHandler struct {
	next         slog.Handler
	hasRequestID bool
}

func NewTraceHandler(next slog.Handler) *TraceHandler {
	return &TraceHandler{next: next}
}

func (h *TraceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *TraceHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx == nil {
		return h.next.Handle(ctx, r)
	}

	sc := trace.SpanFromContext(ctx).SpanContext()

	if sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}

	if !h.hasRequestID {
		if id, ok := requestctx.RequestIDFrom(ctx); ok {
			r.AddAttrs(slog.String("request_id", id))
		}
	}

	return h.next.Handle(ctx, r)
}

func (h *TraceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	has := h.hasRequestID
	for _, a := range attrs {
		if a.Key == "request_id" {
			has = true
		}
	}

	return &TraceHandler{next: h.next.WithAttrs(attrs), hasRequestID: has}
}

func (h *TraceHandler) WithGroup(name string) slog.Handler {
	return &TraceHandler{next: h.next.WithGroup(name), hasRequestID: h.hasRequestID}
}

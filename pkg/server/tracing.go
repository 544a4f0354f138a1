package server

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// defaultTracerName is the tracer used when Config.Tracer is nil.
const defaultTracerName = "usekit/bridge"

// traced reports whether messages of type typ get a span. Pointer
// messages arrive at mouse-move rate and are left out.
func traced(typ string) bool {
	return typ != MsgPointer
}

// traceMessage runs handle inside a span named after the message type.
func (s *Session) traceMessage(msg ClientMessage, handle func() error) {
	if !traced(msg.Type) {
		_ = handle()
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("bridge.session_id", s.id),
		attribute.String("bridge.message_type", msg.Type),
	}
	if msg.Type == MsgAction {
		attrs = append(attrs, attribute.String("bridge.action", msg.Name))
	}

	_, span := s.server.tracer.Start(s.ctx, "bridge."+msg.Type,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attrs...),
	)
	defer span.End()

	if err := handle(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}

package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OTelObserver turns each node record into a completed OpenTelemetry
// span. Because a Record only arrives after the node has already
// finished, the span is created and ended immediately with explicit
// start/end timestamps rather than bracketing live work — this mirrors
// how a record-oriented observer necessarily traces after the fact.
type OTelObserver struct {
	tracer trace.Tracer
}

// NewOTelObserver wraps a tracer obtained from otel.Tracer("dagobert").
func NewOTelObserver(tracer trace.Tracer) *OTelObserver {
	return &OTelObserver{tracer: tracer}
}

func (o *OTelObserver) Observe(rec Record) {
	if o.tracer == nil {
		return
	}
	_, span := o.tracer.Start(context.Background(), rec.Node,
		trace.WithTimestamp(rec.StartExecution),
		trace.WithAttributes(
			attribute.String("run_id", rec.RunID),
			attribute.String("node", rec.Node),
			attribute.String("status", string(rec.Status)),
			attribute.Int64("waiting_ms", rec.WaitingMs),
			attribute.Int64("elapsed_execution_ms", rec.ElapsedExecutionMs),
			attribute.Int64("elapsed_total_ms", rec.ElapsedTotalMs),
		),
	)
	if rec.Status == StatusFailed {
		span.SetStatus(codes.Error, "node failed")
	}
	span.End(trace.WithTimestamp(rec.EndExecution))
}

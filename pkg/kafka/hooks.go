package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	applogger "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/logger"
	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/tracing"
)

// ConsumerHook wraps message handling. A BeforeHandle error skips the handler
// and counts as a failed attempt.
type ConsumerHook interface {
	BeforeHandle(ctx context.Context, topic string, km kafka.Message, data []byte) (context.Context, []byte, error)
	AfterHandle(ctx context.Context, topic string, km kafka.Message, err error)
}

// NoopHook does nothing.
type NoopHook struct{}

func (NoopHook) BeforeHandle(ctx context.Context, _ string, _ kafka.Message, data []byte) (context.Context, []byte, error) {
	return ctx, data, nil
}

func (NoopHook) AfterHandle(context.Context, string, kafka.Message, error) {}

// TracingHook opens a span per attempt and logs the outcome with its trace id.
type TracingHook struct {
	L *applogger.Logger
}

func (h TracingHook) BeforeHandle(ctx context.Context, topic string, km kafka.Message, data []byte) (context.Context, []byte, error) {
	ctx, _ = tracing.StartSpan(ctx, "kafka.consume",
		attribute.String("messaging.destination", topic),
		attribute.Int("messaging.partition", km.Partition),
		attribute.Int64("messaging.offset", km.Offset),
	)
	return ctx, data, nil
}

func (h TracingHook) AfterHandle(ctx context.Context, topic string, km kafka.Message, err error) {
	span := trace.SpanFromContext(ctx)
	tracing.Fail(span, err)
	defer span.End()

	if h.L == nil {
		return
	}
	fields := []applogger.Field{
		applogger.String("topic", topic),
		applogger.Int64("offset", km.Offset),
		applogger.String("trace_id", tracing.TraceID(ctx)),
	}
	if err != nil {
		h.L.Warn("message attempt failed", append(fields, applogger.Error(err))...)
		return
	}
	h.L.Debug("message handled", fields...)
}

package kafka

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestKafkaHeaderCarrier_SetAndGet(t *testing.T) {
	headers := []kafka.Header{{Key: "existing", Value: []byte("value1")}}
	carrier := &KafkaHeaderCarrier{headers: &headers}

	assert.Equal(t, "value1", carrier.Get("existing"))
	assert.Empty(t, carrier.Get("missing"))

	carrier.Set("new-key", "new-value")
	assert.Equal(t, "new-value", carrier.Get("new-key"))

	carrier.Set("existing", "updated")
	assert.Equal(t, "updated", carrier.Get("existing"))
	assert.ElementsMatch(t, []string{"existing", "new-key"}, carrier.Keys())
}

func TestProducer_Publish_InjectsTraceContext(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "publish")
	defer span.End()

	w := &recordingWriter{}
	p := NewProducerWithWriter(w, nil, discardLogger())
	event, err := NewEvent("storefront.cart.updated", Aggregate{ID: "sess-1", Type: "cart"}, "storefront", nil)
	require.NoError(t, err)

	require.NoError(t, p.Publish(ctx, "storefront.cart", event))
	require.Len(t, w.msgs, 1)

	carrier := &KafkaHeaderCarrier{headers: &w.msgs[0].Headers}
	assert.Contains(t, carrier.Get("traceparent"), span.SpanContext().TraceID().String())
}

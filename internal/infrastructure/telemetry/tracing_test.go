package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/branchstock/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// setupTestTracer installs an in-memory span recorder as the global tracer
// provider and returns it together with a cleanup function.
func setupTestTracer(t *testing.T) (*tracetest.SpanRecorder, func()) {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	return sr, func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	}
}

func attributeValue(spans []sdktrace.ReadOnlySpan, key string) (string, bool) {
	for _, s := range spans {
		for _, attr := range s.Attributes() {
			if string(attr.Key) == key {
				return attr.Value.Emit(), true
			}
		}
	}
	return "", false
}

func TestStartSpan(t *testing.T) {
	sr, cleanup := setupTestTracer(t)
	defer cleanup()

	_, span := telemetry.StartSpan(context.Background(), "stock_movement.adjust")
	require.NotNil(t, span)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "stock_movement.adjust", spans[0].Name())
	assert.Equal(t, trace.SpanKindInternal, spans[0].SpanKind())
}

func TestStartSpan_WithOptions(t *testing.T) {
	sr, cleanup := setupTestTracer(t)
	defer cleanup()

	branchID := uuid.New()
	_, span := telemetry.StartSpan(context.Background(), "stock_movement.receive",
		telemetry.WithAttribute(telemetry.SpanAttrBranchID, branchID.String()),
		telemetry.WithSpanKind(trace.SpanKindClient),
	)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, trace.SpanKindClient, spans[0].SpanKind())

	value, found := attributeValue(spans, telemetry.SpanAttrBranchID)
	require.True(t, found)
	assert.Equal(t, branchID.String(), value)
}

func TestStartServiceSpan(t *testing.T) {
	sr, cleanup := setupTestTracer(t)
	defer cleanup()

	_, span := telemetry.StartServiceSpan(context.Background(), "stock_movement", "transfer")
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "stock_movement.transfer", spans[0].Name())
}

func TestSetAttributes_TypeConversion(t *testing.T) {
	sr, cleanup := setupTestTracer(t)
	defer cleanup()

	variantID := uuid.New()
	_, span := telemetry.StartSpan(context.Background(), "stock_movement.fulfill")
	telemetry.SetAttributes(span,
		telemetry.SpanAttrVariantID, variantID, // fmt.Stringer
		telemetry.SpanAttrQuantity, "12.5",
		"lines", 3,
		"partial", false,
	)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)

	value, found := attributeValue(spans, telemetry.SpanAttrVariantID)
	require.True(t, found)
	assert.Equal(t, variantID.String(), value)

	value, found = attributeValue(spans, "lines")
	require.True(t, found)
	assert.Equal(t, "3", value)

	value, found = attributeValue(spans, "partial")
	require.True(t, found)
	assert.Equal(t, "false", value)
}

func TestSetAttributes_SkipsMalformedPairs(t *testing.T) {
	sr, cleanup := setupTestTracer(t)
	defer cleanup()

	_, span := telemetry.StartSpan(context.Background(), "stock_movement.adjust")
	telemetry.SetAttributes(span, 42, "not-a-key", telemetry.SpanAttrQuantity, "7")
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)

	_, found := attributeValue(spans, "not-a-key")
	assert.False(t, found)

	value, found := attributeValue(spans, telemetry.SpanAttrQuantity)
	require.True(t, found)
	assert.Equal(t, "7", value)
}

func TestRecordError(t *testing.T) {
	sr, cleanup := setupTestTracer(t)
	defer cleanup()

	_, span := telemetry.StartSpan(context.Background(), "stock_movement.fulfill")
	telemetry.RecordError(span, errors.New("insufficient stock"))
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "insufficient stock", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1)
}

func TestRecordError_NilError(t *testing.T) {
	sr, cleanup := setupTestTracer(t)
	defer cleanup()

	_, span := telemetry.StartSpan(context.Background(), "stock_movement.adjust")
	telemetry.RecordError(span, nil)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Empty(t, spans[0].Events())
}

func TestAddEvent(t *testing.T) {
	sr, cleanup := setupTestTracer(t)
	defer cleanup()

	_, span := telemetry.StartSpan(context.Background(), "stock_movement.fulfill")
	telemetry.AddEvent(span, "batch_depleted", telemetry.SpanAttrBatchNumber, "LOT-042")
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "batch_depleted", spans[0].Events()[0].Name)
}

func TestGetTraceID(t *testing.T) {
	_, cleanup := setupTestTracer(t)
	defer cleanup()

	assert.Empty(t, telemetry.GetTraceID(context.Background()))
	assert.Empty(t, telemetry.GetSpanID(context.Background()))

	ctx, span := telemetry.StartSpan(context.Background(), "stock_movement.adjust")
	defer span.End()

	assert.NotEmpty(t, telemetry.GetTraceID(ctx))
	assert.NotEmpty(t, telemetry.GetSpanID(ctx))
}

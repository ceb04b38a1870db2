package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupSpanRecorder installs an in-memory recorder as the global tracer
// provider for the duration of the test.
func setupSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})

	return sr
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) (string, bool) {
	for _, attr := range span.Attributes() {
		if string(attr.Key) == key {
			return attr.Value.Emit(), true
		}
	}
	return "", false
}

func TestTracing_Disabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sr := setupSpanRecorder(t)

	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{ServiceName: "test", Enabled: false}))
	router.GET("/stock/levels", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/stock/levels", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}

func TestTracing_RecordsServerSpan(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sr := setupSpanRecorder(t)

	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{ServiceName: "test", Enabled: true}))
	router.GET("/stock/levels", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/stock/levels", nil)
	router.ServeHTTP(w, req)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Contains(t, spans[0].Name(), "/stock/levels")
}

func TestTracingAttributeInjector(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sr := setupSpanRecorder(t)

	tenantID := uuid.New().String()

	router := gin.New()
	router.Use(Tracing())
	router.Use(RequestID())
	router.Use(TracingAttributeInjector())
	router.GET("/stock/ledger", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/stock/ledger", nil)
	req.Header.Set(TenantHeaderKey, tenantID)
	router.ServeHTTP(w, req)

	spans := sr.Ended()
	require.Len(t, spans, 1)

	got, found := spanAttr(spans[0], "tenant_id")
	require.True(t, found)
	assert.Equal(t, tenantID, got)

	reqID, found := spanAttr(spans[0], "request_id")
	require.True(t, found)
	assert.NotEmpty(t, reqID)
}

func TestTracingAttributeInjector_RejectsMalformedTenantHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sr := setupSpanRecorder(t)

	router := gin.New()
	router.Use(Tracing())
	router.Use(TracingAttributeInjector())
	router.GET("/stock/ledger", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/stock/ledger", nil)
	req.Header.Set(TenantHeaderKey, "'; DROP TABLE stock_levels; --")
	router.ServeHTTP(w, req)

	spans := sr.Ended()
	require.Len(t, spans, 1)

	_, found := spanAttr(spans[0], "tenant_id")
	assert.False(t, found)
}

func TestTracingAttributeInjector_TruncatesLongRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sr := setupSpanRecorder(t)

	router := gin.New()
	router.Use(Tracing())
	router.Use(TracingAttributeInjector())
	router.GET("/stock/ledger", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/stock/ledger", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("a", 500))
	router.ServeHTTP(w, req)

	spans := sr.Ended()
	require.Len(t, spans, 1)

	got, found := spanAttr(spans[0], "request_id")
	require.True(t, found)
	assert.Len(t, got, MaxRequestIDLength)
}

func TestSpanErrorMarker(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sr := setupSpanRecorder(t)

	router := gin.New()
	router.Use(Tracing())
	router.Use(SpanErrorMarker())
	router.GET("/stock/adjust", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})
	router.GET("/stock/levels", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stock/adjust", nil))

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stock/levels", nil))

	spans = sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Unset, spans[1].Status().Code)
}

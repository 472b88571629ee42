package tracing_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/KasumiMercury/primind-task-reminder/internal/observability/tracing"
)

func TestProviderPropagationSuccess(t *testing.T) {
	provider := tracing.NewProvider(tracing.Config{
		ServiceName:  "primind-task-reminder",
		Environment:  "test",
		SamplingRate: 1,
	})
	defer func() { _ = provider.Shutdown(context.Background()) }()

	ctx, span := otel.Tracer("test").Start(context.Background(), "outbound")
	defer span.End()

	carrier := make(map[string]string)
	tracing.InjectToMap(ctx, carrier)
	require.NotEmpty(t, carrier["traceparent"])

	req := httptest.NewRequest("POST", "/api/reminders/dispatch-due", nil)
	req.Header.Set("traceparent", carrier["traceparent"])

	extracted := tracing.ExtractFromHTTPRequest(context.Background(), req)
	sc := trace.SpanContextFromContext(extracted)

	assert.True(t, sc.IsValid())
	assert.Equal(t, span.SpanContext().TraceID(), sc.TraceID())
	assert.True(t, sc.IsSampled())
}

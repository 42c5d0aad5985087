package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	require.NoError(t, InitWithExporter("waypoint", "test", exporter))

	ctx, parent := StartSpan(context.Background(), "session.submit", "SERVER")
	_, child := StartSpan(ctx, "session.advance", "INTERNAL")
	child.WithAttributes(map[string]string{"session.id": "s1"}).WithAttribute("result.kind", "before")
	EndSpan(child, errors.New("boom"))
	EndSpan(parent, nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "session.advance", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
	assert.Equal(t, codes.Ok, spans[1].Status.Code)

	var nilSpan *Span
	assert.NotPanics(t, func() {
		nilSpan.WithAttribute("k", "v")
		EndSpan(nilSpan, nil)
	})
}

package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTrace(t *testing.T) {
	kept := NewTrace("req-1", "trace-1")
	assert.Equal(t, "req-1", kept.RequestID)
	assert.Equal(t, "trace-1", kept.TraceID)
	assert.Len(t, kept.SpanID, 16)

	generated := NewTrace("", "")
	assert.NotEmpty(t, generated.RequestID)
	assert.NotEmpty(t, generated.TraceID)
	assert.NotEqual(t, generated.RequestID, generated.TraceID)
}

func TestTraceFrom(t *testing.T) {
	assert.Nil(t, TraceFrom(context.Background()))

	tr := NewTrace("req-1", "")
	got := TraceFrom(WithTrace(context.Background(), tr))
	require.NotNil(t, got)
	assert.Same(t, tr, got)
}

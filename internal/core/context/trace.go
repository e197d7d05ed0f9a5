// Package context carries per-request correlation ids so that every log line
// written while serving a repack or transfer can be tied back to its request.
package context

import (
	"context"

	"github.com/google/uuid"
)

// Trace identifies one request. TraceID may come from an upstream caller;
// SpanID is always local.
type Trace struct {
	TraceID   string
	SpanID    string
	RequestID string
}

// NewTrace keeps the ids supplied by the caller and generates the missing ones.
func NewTrace(requestID, traceID string) *Trace {
	if requestID == "" {
		requestID = uuid.NewString()
	}
	if traceID == "" {
		traceID = uuid.NewString()
	}
	return &Trace{
		TraceID:   traceID,
		SpanID:    uuid.NewString()[:16],
		RequestID: requestID,
	}
}

type traceKey struct{}

func WithTrace(ctx context.Context, t *Trace) context.Context {
	return context.WithValue(ctx, traceKey{}, t)
}

// TraceFrom returns the request's trace, or nil outside a request.
func TraceFrom(ctx context.Context) *Trace {
	t, _ := ctx.Value(traceKey{}).(*Trace)
	return t
}

// Package idempotency defines the contract for replay-safe mutating requests.
package idempotency

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Status represents the state of an idempotent operation.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// StaleAfter is how long a pending key may sit before another request may reclaim it.
const StaleAfter = time.Minute

// Replay is the cached HTTP response for replay.
type Replay struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Store manages idempotency keys.
type Store interface {
	// AcquireKey returns (nil, nil) when the key is fresh and now owned by the caller,
	// a Replay when the operation already finished, or an error when the key is
	// held by a concurrent request or reused for a different request.
	AcquireKey(ctx context.Context, key, operation, requestHash string) (*Replay, error)

	// CompleteKey stores a successful response for replay.
	CompleteKey(ctx context.Context, key string, statusCode int, contentType string, response any) error

	// FailKey stores an error response for replay.
	FailKey(ctx context.Context, key string, statusCode int, contentType string, response any) error

	// CleanupExpired removes expired keys and reports how many were deleted.
	CleanupExpired(ctx context.Context) (int64, error)
}

// NormalizeReplay fills defaults for records stored without status or content type.
func NormalizeReplay(r *Replay) *Replay {
	if r.StatusCode == 0 {
		r.StatusCode = 200
	}
	if r.ContentType == "" {
		r.ContentType = "application/json"
	}
	return r
}

// EncodeResponse serializes a response body for storage. Raw bytes are kept
// as-is so already rendered bodies replay byte for byte.
func EncodeResponse(response any) ([]byte, error) {
	switch v := response.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case json.RawMessage:
		return v, nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal response: %w", err)
		}
		return b, nil
	}
}

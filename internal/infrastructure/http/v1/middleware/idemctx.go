package middleware

import (
	"github.com/gin-gonic/gin"

	"depot/internal/core/idempotency"
)

const (
	ctxIdempotencyKey   = "idempotency_key"
	ctxIdempotencyStore = "idempotency_store"
)

// CompleteIdempotency stores a successful response for the key held by the
// request, if any. Best-effort: the response has already been computed.
func CompleteIdempotency(c *gin.Context, statusCode int, contentType string, response any) {
	if key, store, ok := heldKey(c); ok {
		_ = store.CompleteKey(c.Request.Context(), key, statusCode, contentType, response)
	}
}

// FailIdempotency stores an error response for the key held by the request.
func FailIdempotency(c *gin.Context, statusCode int, contentType string, response any) {
	if key, store, ok := heldKey(c); ok {
		_ = store.FailKey(c.Request.Context(), key, statusCode, contentType, response)
	}
}

func heldKey(c *gin.Context) (string, idempotency.Store, bool) {
	key := c.GetString(ctxIdempotencyKey)
	if key == "" {
		return "", nil, false
	}
	v, ok := c.Get(ctxIdempotencyStore)
	if !ok {
		return "", nil, false
	}
	store, ok := v.(idempotency.Store)
	return key, store, ok && store != nil
}

package memory

import (
	"context"
	"time"

	"depot/internal/core/apperror"
	"depot/internal/core/idempotency"
)

// idempotencyTTL matches the postgres store's retention.
const idempotencyTTL = 24 * time.Hour

type idempotencyRecord struct {
	operation   string
	requestHash string
	status      idempotency.Status
	replay      idempotency.Replay
	createdAt   time.Time
	expiresAt   time.Time
}

// Idempotency returns the idempotency key store.
func (s *Store) Idempotency() idempotency.Store { return idemStore{s} }

type idemStore struct{ s *Store }

func (i idemStore) AcquireKey(ctx context.Context, key, operation, requestHash string) (*idempotency.Replay, error) {
	var replay *idempotency.Replay
	err := i.s.do(ctx, func() error {
		now := time.Now()
		rec, ok := i.s.st.idempotency[key]
		if ok && now.After(rec.expiresAt) {
			ok = false
		}
		if !ok {
			i.s.st.idempotency[key] = idempotencyRecord{
				operation:   operation,
				requestHash: requestHash,
				status:      idempotency.StatusPending,
				createdAt:   now,
				expiresAt:   now.Add(idempotencyTTL),
			}
			return nil
		}
		if rec.operation != operation || rec.requestHash != requestHash {
			return apperror.NewIdempotencyMismatch(key)
		}
		switch rec.status {
		case idempotency.StatusSuccess, idempotency.StatusFailed:
			r := rec.replay
			replay = idempotency.NormalizeReplay(&r)
			return nil
		}
		if now.Sub(rec.createdAt) > idempotency.StaleAfter {
			rec.createdAt = now
			i.s.st.idempotency[key] = rec
			return nil
		}
		return apperror.NewIdempotencyConflict(key)
	})
	return replay, err
}

func (i idemStore) CompleteKey(ctx context.Context, key string, statusCode int, contentType string, response any) error {
	return i.finish(ctx, key, idempotency.StatusSuccess, statusCode, contentType, response)
}

func (i idemStore) FailKey(ctx context.Context, key string, statusCode int, contentType string, response any) error {
	return i.finish(ctx, key, idempotency.StatusFailed, statusCode, contentType, response)
}

func (i idemStore) finish(ctx context.Context, key string, status idempotency.Status, statusCode int, contentType string, response any) error {
	body, err := idempotency.EncodeResponse(response)
	if err != nil {
		return err
	}
	return i.s.do(ctx, func() error {
		rec, ok := i.s.st.idempotency[key]
		if !ok {
			return apperror.NewNotFound("idempotency key", key)
		}
		rec.status = status
		rec.replay = idempotency.Replay{StatusCode: statusCode, ContentType: contentType, Body: body}
		i.s.st.idempotency[key] = rec
		return nil
	})
}

func (i idemStore) CleanupExpired(ctx context.Context) (int64, error) {
	var n int64
	err := i.s.do(ctx, func() error {
		now := time.Now()
		for k, rec := range i.s.st.idempotency {
			if now.After(rec.expiresAt) {
				delete(i.s.st.idempotency, k)
				n++
			}
		}
		return nil
	})
	return n, err
}

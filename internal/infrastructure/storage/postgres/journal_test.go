package postgres

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depot/internal/core/id"
	"depot/internal/domain/inventory"
)

func TestLotJournal_DecodeCompressedPayload(t *testing.T) {
	j, err := NewLotJournal(nil)
	require.NoError(t, err)

	before := *inventory.NewLot(id.New(), id.New(), id.New(), id.New(), decimal.NewFromInt(100), nil)
	after := before
	after.Quantity = decimal.Zero

	raw, err := json.Marshal(journalPayload{Before: []inventory.Lot{before}, After: []inventory.Lot{after}})
	require.NoError(t, err)

	row := journalRow{
		ID:              id.New(),
		Payload:         j.encoder.EncodeAll(raw, nil),
		CompressionAlgo: CompressionZstd,
		CreatedAt:       time.Now().UTC(),
	}
	entry, err := j.decode(row)
	require.NoError(t, err)
	require.Len(t, entry.After, 1)
	assert.Equal(t, before.ID, entry.After[0].ID)
	assert.True(t, entry.Before[0].Quantity.Equal(decimal.NewFromInt(100)))
	assert.True(t, entry.After[0].Quantity.IsZero())

	plain, err := j.decode(journalRow{ID: row.ID, Payload: raw, CompressionAlgo: CompressionNone})
	require.NoError(t, err)
	assert.Len(t, plain.Before, 1)

	_, err = j.decode(journalRow{ID: row.ID, Payload: []byte("not zstd"), CompressionAlgo: CompressionZstd})
	assert.Error(t, err)
}

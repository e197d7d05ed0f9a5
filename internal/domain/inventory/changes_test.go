package inventory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depot/internal/core/apperror"
	"depot/internal/core/id"
)

func TestLedger_DebitNeverNegative(t *testing.T) {
	s := newScope()
	src := s.lot(s.kg, "30", nil)
	l := NewLedger([]Lot{src})

	_, err := l.Debit(src.ID, decimal.NewFromInt(31))
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientQuantity))

	after, err := l.Debit(src.ID, decimal.NewFromInt(30))
	require.NoError(t, err)
	assert.True(t, after.Quantity.IsZero())

	_, err = l.Debit(src.ID, decimal.NewFromInt(1))
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientQuantity))

	_, err = l.Debit(id.New(), decimal.NewFromInt(1))
	assert.True(t, apperror.IsNotFound(err))
}

func TestLedger_CreditMergesIntoLargestMatch(t *testing.T) {
	s := newScope()
	date := day(2026, 2, 1)
	small := s.lot(s.bag, "1", date)
	big := s.lot(s.bag, "6", date)
	undated := s.lot(s.bag, "50", nil)

	l := NewLedger([]Lot{small, big, undated})
	got, created, err := l.Credit(small, s.warehouse, s.bag, date, decimal.NewFromInt(4))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, big.ID, got.ID)
	assert.True(t, got.Quantity.Equal(decimal.NewFromInt(10)))

	changes := l.Changes()
	require.Len(t, changes.Changes, 1)
	assert.Equal(t, big.ID, changes.Changes[0].InventoryID)
	assert.Equal(t, big.Version, changes.Changes[0].ExpectedVersion)
	assert.Empty(t, changes.NewLots)
}

func TestLedger_CreditCreatesThenMergesIntoCreated(t *testing.T) {
	s := newScope()
	src := s.lot(s.kg, "100", nil)
	dest := id.New()

	l := NewLedger([]Lot{src})
	first, created, err := l.Credit(src, dest, s.kg, nil, decimal.NewFromInt(20))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, dest, first.WarehouseID)

	second, created, err := l.Credit(src, dest, s.kg, nil, decimal.NewFromInt(5))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	changes := l.Changes()
	assert.Empty(t, changes.Changes)
	require.Len(t, changes.NewLots, 1)
	assert.True(t, changes.NewLots[0].Quantity.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, src.VariantID, changes.NewLots[0].VariantID)
}

func TestLedger_IgnoresRemovedMergeCandidates(t *testing.T) {
	s := newScope()
	removed := s.lot(s.bag, "3", nil)
	removed.Remove()

	l := NewLedger([]Lot{removed})
	got, created, err := l.Credit(removed, s.warehouse, s.bag, nil, decimal.NewFromInt(1))
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, removed.ID, got.ID)
}

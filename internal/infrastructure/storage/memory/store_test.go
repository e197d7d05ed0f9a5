package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depot/internal/core/apperror"
	"depot/internal/core/events"
	"depot/internal/core/id"
	"depot/internal/core/numerator"
	"depot/internal/domain/inventory"
	"depot/internal/domain/settings"
	"depot/internal/domain/transfer"
)

func newLot(qty int64) *inventory.Lot {
	return inventory.NewLot(id.New(), id.New(), id.New(), id.New(), decimal.NewFromInt(qty), nil)
}

func TestRunInTransaction_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	lot := newLot(10)

	boom := errors.New("boom")
	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, s.Lots().Create(ctx, lot))
		require.NoError(t, s.Publish(ctx, events.DomainEvent{EventType: events.EventLotReceived}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Lots().GetByID(ctx, lot.ID)
	assert.True(t, apperror.IsNotFound(err))
	assert.Empty(t, s.Events(ctx))
}

func TestRunInTransaction_NestedJoinsOuter(t *testing.T) {
	ctx := context.Background()
	s := New()
	lot := newLot(10)

	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.RunInTransaction(ctx, func(ctx context.Context) error {
			return s.Lots().Create(ctx, lot)
		})
	})
	require.NoError(t, err)

	got, err := s.Lots().GetByID(ctx, lot.ID)
	require.NoError(t, err)
	assert.True(t, got.Quantity.Equal(decimal.NewFromInt(10)))
}

func TestApplyLotChanges_VersionMismatchAppliesNothing(t *testing.T) {
	ctx := context.Background()
	s := New()
	a, b := newLot(10), newLot(20)
	require.NoError(t, s.Lots().Create(ctx, a))
	require.NoError(t, s.Lots().Create(ctx, b))

	err := s.Lots().ApplyLotChanges(ctx, []inventory.LotChange{
		{InventoryID: a.ID, NewQuantity: decimal.NewFromInt(5), ExpectedVersion: a.Version},
		{InventoryID: b.ID, NewQuantity: decimal.NewFromInt(5), ExpectedVersion: b.Version + 1},
	}, nil)
	assert.True(t, apperror.IsConcurrentModification(err))

	got, err := s.Lots().GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.Quantity.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, a.Version, got.Version)
}

func TestApplyLotChanges_UpdatesAndInserts(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := newLot(10)
	require.NoError(t, s.Lots().Create(ctx, a))
	fresh := newLot(3)

	err := s.Lots().ApplyLotChanges(ctx, []inventory.LotChange{
		{InventoryID: a.ID, NewQuantity: decimal.NewFromInt(7), ExpectedVersion: a.Version},
	}, []inventory.Lot{*fresh})
	require.NoError(t, err)

	got, _ := s.Lots().GetByID(ctx, a.ID)
	assert.True(t, got.Quantity.Equal(decimal.NewFromInt(7)))
	assert.Equal(t, a.Version+1, got.Version)

	_, err = s.Lots().GetByID(ctx, fresh.ID)
	require.NoError(t, err)

	err = s.Lots().ApplyLotChanges(ctx, []inventory.LotChange{
		{InventoryID: a.ID, NewQuantity: decimal.NewFromInt(-1), ExpectedVersion: got.Version},
	}, nil)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidQuantity))
}

func TestLots_FindSkipsRemovedAndKeepsOrder(t *testing.T) {
	ctx := context.Background()
	s := New()
	warehouse := id.New()
	variant := id.New()
	var ids []id.ID
	for i := 0; i < 3; i++ {
		l := inventory.NewLot(variant, id.New(), warehouse, id.New(), decimal.NewFromInt(5), nil)
		require.NoError(t, s.Lots().Create(ctx, l))
		ids = append(ids, l.ID)
	}
	require.NoError(t, s.Lots().Remove(ctx, ids[1], 1))

	found, err := s.Lots().Find(ctx, inventory.LotFilter{VariantIDs: []id.ID{variant}, WarehouseID: &warehouse})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, ids[0], found[0].ID)
	assert.Equal(t, ids[2], found[1].ID)

	removed, err := s.Lots().GetByID(ctx, ids[1])
	require.NoError(t, err)
	assert.True(t, removed.DeletionMark)
	assert.Nil(t, removed.ProductionDate)

	err = s.Lots().Remove(ctx, ids[0], 42)
	assert.True(t, apperror.IsConcurrentModification(err))
}

func TestTransfers_UpdateStatusChecksVersion(t *testing.T) {
	ctx := context.Background()
	s := New()
	tr := transfer.New(id.New(), id.New(), []transfer.Line{{InventoryID: id.New(), Quantity: decimal.NewFromInt(1)}})
	tr.Number = "TRF-2026-00001"
	require.NoError(t, s.Transfers().Create(ctx, tr))

	dup := transfer.New(id.New(), id.New(), nil)
	dup.Number = tr.Number
	assert.True(t, apperror.HasCode(s.Transfers().Create(ctx, dup), apperror.CodeDuplicate))

	tr.Status = transfer.StatusCancelled
	tr.Version = 2
	require.NoError(t, s.Transfers().UpdateStatus(ctx, tr, 1))
	assert.True(t, apperror.IsConcurrentModification(s.Transfers().UpdateStatus(ctx, tr, 1)))

	got, err := s.Transfers().GetByID(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, transfer.StatusCancelled, got.Status)
	require.Len(t, got.Lines, 1)
}

func TestSettings_Upsert(t *testing.T) {
	ctx := context.Background()
	s := New()
	repo := s.Settings()

	require.NoError(t, repo.Upsert(ctx, []settings.Setting{
		{Category: settings.CategoryInventory, Key: "b", Value: "1"},
		{Category: settings.CategoryInventory, Key: "a", Value: "2"},
	}))
	require.NoError(t, repo.Upsert(ctx, []settings.Setting{
		{Category: settings.CategoryInventory, Key: "b", Value: "3"},
	}))

	list, err := repo.ListByCategory(ctx, settings.CategoryInventory)
	require.NoError(t, err)
	assert.Equal(t, []settings.Setting{
		{Category: settings.CategoryInventory, Key: "a", Value: "2"},
		{Category: settings.CategoryInventory, Key: "b", Value: "3"},
	}, list)

	assert.Error(t, repo.Upsert(ctx, []settings.Setting{{Category: "", Key: "x"}}))
}

func TestNumerator_SequencePerYear(t *testing.T) {
	ctx := context.Background()
	gen := New().Numerator()
	cfg := numerator.DefaultConfig("TRF")
	y26 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	y27 := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

	n1, err := gen.GetNextNumber(ctx, cfg, nil, y26)
	require.NoError(t, err)
	n2, _ := gen.GetNextNumber(ctx, cfg, nil, y26)
	n3, _ := gen.GetNextNumber(ctx, cfg, nil, y27)
	assert.Equal(t, "TRF-2026-00001", n1)
	assert.Equal(t, "TRF-2026-00002", n2)
	assert.Equal(t, "TRF-2027-00001", n3)

	require.NoError(t, gen.SetNextNumber(ctx, cfg, y26, 100))
	n4, _ := gen.GetNextNumber(ctx, cfg, nil, y26)
	assert.Equal(t, "TRF-2026-00100", n4)
}

func TestIdempotency_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := New().Idempotency()

	replay, err := store.AcquireKey(ctx, "k1", "POST /repack", "h1")
	require.NoError(t, err)
	assert.Nil(t, replay)

	_, err = store.AcquireKey(ctx, "k1", "POST /repack", "h1")
	assert.True(t, apperror.HasCode(err, apperror.CodeIdempotency))

	require.NoError(t, store.CompleteKey(ctx, "k1", 201, "application/json", []byte(`{"ok":true}`)))

	replay, err = store.AcquireKey(ctx, "k1", "POST /repack", "h1")
	require.NoError(t, err)
	require.NotNil(t, replay)
	assert.Equal(t, 201, replay.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, string(replay.Body))

	_, err = store.AcquireKey(ctx, "k1", "POST /repack", "other")
	assert.True(t, apperror.HasCode(err, apperror.CodeIdempotency))

	n, err := store.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestJournal_RecordsAppliedChanges(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := newLot(10)
	require.NoError(t, s.Lots().Create(ctx, a))
	created := newLot(2)

	require.NoError(t, s.Lots().ApplyLotChanges(ctx, []inventory.LotChange{
		{InventoryID: a.ID, NewQuantity: decimal.NewFromInt(4), ExpectedVersion: a.Version},
	}, []inventory.Lot{*created}))

	history, err := s.Journal().History(ctx, a.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].Before[0].Quantity.Equal(decimal.NewFromInt(10)))
	assert.True(t, history[0].After[0].Quantity.Equal(decimal.NewFromInt(4)))

	history, err = s.Journal().History(ctx, created.ID, 10)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	history, err = s.Journal().History(ctx, id.New(), 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

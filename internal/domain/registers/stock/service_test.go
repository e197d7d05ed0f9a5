package stock

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depot/internal/core/apperror"
	"depot/internal/core/events"
	"depot/internal/core/id"
	"depot/internal/core/tx"
	"depot/internal/domain/catalogs/packaging"
	"depot/internal/domain/catalogs/unit"
	"depot/internal/domain/inventory"
	"depot/internal/domain/settings"
	"depot/internal/domain/stockstatus"
	"depot/internal/domain/transfer"
	"depot/internal/infrastructure/storage/memory"
)

var clock = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

type fixture struct {
	svc   *Service
	store *memory.Store

	kg, bag, box, litre packaging.PackagingType
	w1, w2, variant     id.ID
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newFixture(t *testing.T, opts ...Option) *fixture {
	return newFixtureWithTx(t, nil, opts...)
}

func newFixtureWithTx(t *testing.T, wrap func(tx.Manager) tx.Manager, opts ...Option) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	kgUnit := unit.NewBaseUnit("KG", "kilogram", "kg")
	lUnit := unit.NewBaseUnit("L", "litre", "l")
	require.NoError(t, store.PutUnit(ctx, *kgUnit))
	require.NoError(t, store.PutUnit(ctx, *lUnit))

	f := &fixture{
		store:   store,
		kg:      *packaging.NewPackagingType("KG", "kg", kgUnit.ID, dec("1")),
		bag:     *packaging.NewPackagingType("BAG25", "25kg bag", kgUnit.ID, dec("25")),
		box:     *packaging.NewPackagingType("BOX1", "1kg box", kgUnit.ID, dec("1")),
		litre:   *packaging.NewPackagingType("L", "litre", lUnit.ID, dec("1")),
		w1:      id.New(),
		w2:      id.New(),
		variant: id.New(),
	}
	for _, p := range []packaging.PackagingType{f.kg, f.bag, f.box, f.litre} {
		require.NoError(t, store.PutPackagingType(ctx, p))
	}

	var txm tx.Manager = store
	if wrap != nil {
		txm = wrap(store)
	}
	repos := Repositories{
		Units:     store.Units(),
		Packaging: store.Packaging(),
		Lots:      store.Lots(),
		Transfers: store.Transfers(),
		Settings:  store.Settings(),
		Journal:   store.Journal(),
	}
	opts = append([]Option{WithClock(func() time.Time { return clock }), WithRetry(3, 0)}, opts...)
	f.svc = NewService(repos, txm, store, store.Numerator(), opts...)
	return f
}

func (f *fixture) receive(t *testing.T, warehouse id.ID, pkg packaging.PackagingType, qty string, date *time.Time) inventory.Lot {
	t.Helper()
	lot, err := f.svc.ReceiveLot(context.Background(), ReceiveInput{
		VariantID:       f.variant,
		ProductID:       f.variant,
		WarehouseID:     warehouse,
		PackagingTypeID: pkg.ID,
		Quantity:        dec(qty),
		ProductionDate:  date,
	})
	require.NoError(t, err)
	return *lot
}

func (f *fixture) lot(t *testing.T, lotID id.ID) inventory.Lot {
	t.Helper()
	l, err := f.store.Lots().GetByID(context.Background(), lotID)
	require.NoError(t, err)
	return *l
}

func TestEquivalentAndStep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Equivalent(ctx, dec("100"), f.kg.ID, f.bag.ID)
	require.NoError(t, err)
	require.NotNil(t, res.Quantity)
	assert.True(t, res.Quantity.Equal(dec("4")))
	assert.Equal(t, int64(25), res.Step)

	res, err = f.svc.Equivalent(ctx, dec("37"), f.kg.ID, f.bag.ID)
	require.NoError(t, err)
	assert.Nil(t, res.Quantity)
	assert.True(t, res.Exact.Equal(dec("1.48")))

	_, err = f.svc.Equivalent(ctx, dec("1"), f.kg.ID, f.litre.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeIncompatibleUnits))

	q := dec("60")
	step, err := f.svc.Step(ctx, f.kg.ID, f.bag.ID, &q)
	require.NoError(t, err)
	assert.Equal(t, int64(25), step.Step)
	assert.True(t, step.Clamped.Equal(dec("50")))
	assert.True(t, step.Produced.Equal(dec("2")))
}

func TestRepack_HundredKilosIntoFourBags(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	src := f.receive(t, f.w1, f.kg, "100", nil)

	preview, err := f.svc.ValidateRepack(ctx, RepackInput{InventoryID: src.ID, TargetPackagingTypeID: f.bag.ID, Quantity: dec("100")})
	require.NoError(t, err)
	assert.True(t, preview.Produced.Equal(dec("4")))
	assert.True(t, f.lot(t, src.ID).Quantity.Equal(dec("100")), "dry run must not write")

	res, err := f.svc.Repack(ctx, RepackInput{InventoryID: src.ID, TargetPackagingTypeID: f.bag.ID, Quantity: dec("100")})
	require.NoError(t, err)
	assert.True(t, res.TargetCreated)
	assert.True(t, f.lot(t, src.ID).Quantity.IsZero())

	target := f.lot(t, res.Target.ID)
	assert.Equal(t, f.bag.ID, target.PackagingTypeID)
	assert.True(t, target.Quantity.Equal(dec("4")))

	history, err := f.svc.History(ctx, src.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].Before[0].Quantity.Equal(dec("100")))

	evs := f.store.Events(ctx)
	require.NotEmpty(t, evs)
	assert.Equal(t, events.EventLotsChanged, evs[len(evs)-1].EventType)
}

func TestRepack_MergesIntoLargestMatchingLot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	src := f.receive(t, f.w1, f.kg, "50", &day)
	small := f.receive(t, f.w1, f.bag, "1", &day)
	big := f.receive(t, f.w1, f.bag, "3", &day)
	f.receive(t, f.w1, f.bag, "10", nil)

	res, err := f.svc.Repack(ctx, RepackInput{InventoryID: src.ID, TargetPackagingTypeID: f.bag.ID, Quantity: dec("50")})
	require.NoError(t, err)
	assert.False(t, res.TargetCreated)
	assert.Equal(t, big.ID, res.Target.ID)
	assert.True(t, f.lot(t, big.ID).Quantity.Equal(dec("5")))
	assert.True(t, f.lot(t, small.ID).Quantity.Equal(dec("1")))
}

func TestRepack_FractionalRejectedLeavesStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	src := f.receive(t, f.w1, f.kg, "100", nil)

	_, err := f.svc.Repack(ctx, RepackInput{InventoryID: src.ID, TargetPackagingTypeID: f.bag.ID, Quantity: dec("37")})
	require.True(t, apperror.HasCode(err, apperror.CodeFractionalConversionRejected))
	assert.True(t, f.lot(t, src.ID).Quantity.Equal(dec("100")))

	_, err = f.svc.Repack(ctx, RepackInput{InventoryID: src.ID, TargetPackagingTypeID: f.bag.ID, Quantity: dec("125")})
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientQuantity))

	_, err = f.svc.Repack(ctx, RepackInput{InventoryID: src.ID, TargetPackagingTypeID: f.kg.ID, Quantity: dec("1")})
	assert.True(t, apperror.HasCode(err, apperror.CodeSamePackagingType))
}

func TestRepack_BadFactorIsReported(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	broken := *packaging.NewPackagingType("BRK", "broken", f.kg.BaseUnitID, decimal.Zero)
	require.NoError(t, f.store.PutPackagingType(ctx, broken))
	src := f.receive(t, f.w1, f.kg, "10", nil)

	_, err := f.svc.Repack(ctx, RepackInput{InventoryID: src.ID, TargetPackagingTypeID: broken.ID, Quantity: dec("10")})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidConversionFactor))
}

func TestTransfer_Lifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.receive(t, f.w1, f.kg, "30", nil)

	created, err := f.svc.CreateTransfer(ctx, TransferInput{
		SourceWarehouseID:      f.w1,
		DestinationWarehouseID: f.w2,
		Lines:                  []transfer.Line{{InventoryID: a.ID, Quantity: dec("10")}},
	})
	require.NoError(t, err)
	tr := created.Transfer
	assert.Equal(t, "TRF-2026-00001", tr.Number)
	assert.Equal(t, transfer.StatusPending, tr.Status)
	assert.Nil(t, created.Commit)
	assert.True(t, f.lot(t, a.ID).Quantity.Equal(dec("30")), "pending reserves nothing")

	shipped, err := f.svc.ChangeTransferStatus(ctx, tr.ID, transfer.StatusInTransit)
	require.NoError(t, err)
	assert.True(t, shipped.Commit.Moved)
	assert.True(t, f.lot(t, a.ID).Quantity.Equal(dec("20")))

	dest, err := f.svc.Lots(ctx, f.variant, f.w2, nil)
	require.NoError(t, err)
	require.Len(t, dest, 1)
	assert.True(t, dest[0].Quantity.Equal(dec("10")))

	done, err := f.svc.ChangeTransferStatus(ctx, tr.ID, transfer.StatusCompleted)
	require.NoError(t, err)
	assert.False(t, done.Commit.Moved)
	assert.True(t, f.lot(t, a.ID).Quantity.Equal(dec("20")))

	_, err = f.svc.ChangeTransferStatus(ctx, tr.ID, transfer.StatusCancelled)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidStatusTransition))

	stored, err := f.svc.GetTransfer(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, transfer.StatusCompleted, stored.Status)
	assert.NotNil(t, stored.ShippedAt)
	assert.NotNil(t, stored.CompletedAt)
}

func TestTransfer_CreateCompletedMovesImmediately(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.receive(t, f.w1, f.bag, "4", nil)
	existing := f.receive(t, f.w2, f.bag, "1", nil)

	res, err := f.svc.CreateTransfer(ctx, TransferInput{
		SourceWarehouseID:      f.w1,
		DestinationWarehouseID: f.w2,
		Status:                 transfer.StatusCompleted,
		Lines:                  []transfer.Line{{InventoryID: a.ID, Quantity: dec("4")}},
	})
	require.NoError(t, err)
	assert.Equal(t, transfer.StatusCompleted, res.Transfer.Status)
	assert.True(t, res.Commit.Moved)
	assert.True(t, f.lot(t, a.ID).Quantity.IsZero())
	assert.True(t, f.lot(t, existing.ID).Quantity.Equal(dec("5")))
}

func TestTransfer_InvalidCreatesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.receive(t, f.w1, f.kg, "30", nil)
	b := f.receive(t, f.w1, f.kg, "80", nil)
	before := len(f.store.Events(ctx))

	in := TransferInput{
		SourceWarehouseID:      f.w1,
		DestinationWarehouseID: f.w2,
		Lines: []transfer.Line{
			{InventoryID: a.ID, Quantity: dec("50")},
			{InventoryID: b.ID, Quantity: dec("10")},
		},
	}
	report, err := f.svc.ValidateTransfer(ctx, in)
	require.NoError(t, err)
	require.Len(t, report.Violations, 1)
	assert.Equal(t, 1, report.Violations[0].Line)

	_, err = f.svc.CreateTransfer(ctx, in)
	assert.True(t, apperror.HasCode(err, apperror.CodeTransferInvalid))
	assert.Len(t, f.store.Events(ctx), before)

	// The failed attempt must not consume a number.
	in.Lines[0].Quantity = dec("30")
	res, err := f.svc.CreateTransfer(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "TRF-2026-00001", res.Transfer.Number)
}

func TestLotStatus_ReadsThresholdsEveryCall(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lot := f.receive(t, f.w1, f.bag, "2", nil)

	st, err := f.svc.LotStatus(ctx, lot.ID)
	require.NoError(t, err)
	assert.Equal(t, stockstatus.InStock, st.Status)
	assert.True(t, st.BaseQuantity.Equal(dec("50")))

	low := dec("50")
	require.NoError(t, f.svc.UpdateThresholds(ctx, stockstatus.ThresholdConfig{Low: &low, Out: dec("0")}))

	st, err = f.svc.LotStatus(ctx, lot.ID)
	require.NoError(t, err)
	assert.Equal(t, stockstatus.LowStock, st.Status)

	err = f.svc.UpdateThresholds(ctx, stockstatus.ThresholdConfig{Out: dec("-1")})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestLotStatus_InconsistentStoredThresholds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lot := f.receive(t, f.w1, f.bag, "2", nil)

	// Written around UpdateThresholds, e.g. by an older release or by hand.
	require.NoError(t, f.store.Settings().Upsert(ctx, []settings.Setting{
		{Category: settings.CategoryInventory, Key: stockstatus.KeyLowStockThreshold, Value: "10"},
		{Category: settings.CategoryInventory, Key: stockstatus.KeyOutOfStockThreshold, Value: "60"},
	}))

	st, err := f.svc.LotStatus(ctx, lot.ID)
	require.NoError(t, err)
	assert.Equal(t, stockstatus.OutOfStock, st.Status)

	cfg, err := f.svc.Thresholds(ctx)
	require.NoError(t, err)
	assert.True(t, cfg.Out.Equal(dec("60")))

	require.NoError(t, f.store.Settings().Upsert(ctx, []settings.Setting{
		{Category: settings.CategoryInventory, Key: stockstatus.KeyOutOfStockThreshold, Value: "40"},
	}))
	st, err = f.svc.LotStatus(ctx, lot.ID)
	require.NoError(t, err)
	assert.Equal(t, stockstatus.InStock, st.Status)

	// The write path still refuses the same shape.
	low := dec("10")
	err = f.svc.UpdateThresholds(ctx, stockstatus.ThresholdConfig{Low: &low, Out: dec("60")})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestRemoveLot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lot := f.receive(t, f.w1, f.kg, "5", nil)

	require.NoError(t, f.svc.RemoveLot(ctx, lot.ID))
	lots, err := f.svc.Lots(ctx, f.variant, f.w1, nil)
	require.NoError(t, err)
	assert.Empty(t, lots)

	assert.True(t, apperror.IsNotFound(f.svc.RemoveLot(ctx, lot.ID)))
	_, err = f.svc.LotStatus(ctx, lot.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestReceiveLot_Rejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.ReceiveLot(ctx, ReceiveInput{VariantID: f.variant, ProductID: f.variant, WarehouseID: f.w1, PackagingTypeID: f.kg.ID, Quantity: dec("0")})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidQuantity))

	_, err = f.svc.ReceiveLot(ctx, ReceiveInput{VariantID: f.variant, ProductID: f.variant, WarehouseID: f.w1, PackagingTypeID: id.New(), Quantity: dec("1")})
	assert.True(t, apperror.IsNotFound(err))
}

// conflicting fails the first n transactions with a lost optimistic lock.
type conflicting struct {
	tx.Manager
	n     int
	calls int
}

func (c *conflicting) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	c.calls++
	if c.calls <= c.n {
		return apperror.NewConcurrentModification("inventory lot", id.New())
	}
	return c.Manager.RunInTransaction(ctx, fn)
}

func TestRepack_RetriesConcurrentModification(t *testing.T) {
	var flaky *conflicting
	f := newFixtureWithTx(t, func(inner tx.Manager) tx.Manager {
		flaky = &conflicting{Manager: inner}
		return flaky
	})
	ctx := context.Background()
	src := f.receive(t, f.w1, f.kg, "100", nil)

	flaky.calls, flaky.n = 0, 2
	_, err := f.svc.Repack(ctx, RepackInput{InventoryID: src.ID, TargetPackagingTypeID: f.bag.ID, Quantity: dec("50")})
	require.NoError(t, err)
	assert.Equal(t, 3, flaky.calls)

	flaky.calls, flaky.n = 0, 5
	_, err = f.svc.Repack(ctx, RepackInput{InventoryID: src.ID, TargetPackagingTypeID: f.bag.ID, Quantity: dec("50")})
	assert.True(t, apperror.IsConcurrentModification(err))
	assert.Equal(t, 3, flaky.calls)
	assert.True(t, f.lot(t, src.ID).Quantity.Equal(dec("50")))
}

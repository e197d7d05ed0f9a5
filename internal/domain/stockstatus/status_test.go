package stockstatus

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depot/internal/core/apperror"
	"depot/internal/core/id"
	"depot/internal/domain/catalogs/packaging"
	"depot/internal/domain/settings"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }

func TestDeriveStatus_Thresholds(t *testing.T) {
	kg := *packaging.NewPackagingType("KG", "kg", id.New(), dec("1"))
	cfg := ThresholdConfig{Low: ptr(dec("10")), Out: dec("0")}

	tests := []struct {
		qty  string
		want Status
	}{
		{"10", LowStock},
		{"0", OutOfStock},
		{"10.0001", InStock},
		{"0.5", LowStock},
	}
	for _, tt := range tests {
		t.Run(tt.qty, func(t *testing.T) {
			got, err := DeriveStatus(dec(tt.qty), kg, cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeriveStatus_ComparesInBaseUnits(t *testing.T) {
	bag := *packaging.NewPackagingType("BAG25", "25kg bag", id.New(), dec("25"))
	cfg := ThresholdConfig{Low: ptr(dec("50")), Out: dec("0")}

	got, err := DeriveStatus(dec("2"), bag, cfg)
	require.NoError(t, err)
	assert.Equal(t, LowStock, got)

	got, err = DeriveStatus(dec("3"), bag, cfg)
	require.NoError(t, err)
	assert.Equal(t, InStock, got)
}

func TestDeriveStatus_NoLowBand(t *testing.T) {
	kg := *packaging.NewPackagingType("KG", "kg", id.New(), dec("1"))
	got, err := DeriveStatus(dec("1"), kg, DefaultThresholds())
	require.NoError(t, err)
	assert.Equal(t, InStock, got)
}

func TestDeriveStatus_Monotonic(t *testing.T) {
	kg := *packaging.NewPackagingType("KG", "kg", id.New(), dec("1"))
	cfg := ThresholdConfig{Low: ptr(dec("10")), Out: dec("2")}
	rank := map[Status]int{OutOfStock: 0, LowStock: 1, InStock: 2}

	prev := -1
	for q := decimal.Zero; q.LessThan(dec("20")); q = q.Add(dec("0.25")) {
		s, err := DeriveStatus(q, kg, cfg)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, rank[s], prev, "quantity %s", q)
		prev = rank[s]
	}
}

func TestDeriveStatus_BadFactor(t *testing.T) {
	broken := *packaging.NewPackagingType("X", "broken", id.New(), decimal.Zero)
	_, err := DeriveStatus(dec("1"), broken, DefaultThresholds())
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidConversionFactor))
}

func TestThresholdsFromSettings(t *testing.T) {
	cfg, err := ThresholdsFromSettings([]settings.Setting{
		{Category: settings.CategoryInventory, Key: KeyLowStockThreshold, Value: "10"},
		{Category: settings.CategoryInventory, Key: KeyOutOfStockThreshold, Value: " 1.5 "},
	})
	require.NoError(t, err)
	require.NotNil(t, cfg.Low)
	assert.True(t, cfg.Low.Equal(dec("10")))
	assert.True(t, cfg.Out.Equal(dec("1.5")))

	cfg, err = ThresholdsFromSettings(nil)
	require.NoError(t, err)
	assert.Nil(t, cfg.Low)
	assert.True(t, cfg.Out.IsZero())

	_, err = ThresholdsFromSettings([]settings.Setting{{Key: KeyLowStockThreshold, Value: "lots"}})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

}

func TestThresholdsFromSettings_LowBelowOut(t *testing.T) {
	cfg, err := ThresholdsFromSettings([]settings.Setting{
		{Key: KeyLowStockThreshold, Value: "2"},
		{Key: KeyOutOfStockThreshold, Value: "5"},
	})
	require.NoError(t, err)
	assert.True(t, apperror.HasCode(cfg.Validate(), apperror.CodeValidation))

	unit := *packaging.NewPackagingType("PCS", "piece", id.New(), dec("1"))
	for qty, want := range map[string]Status{
		"1": OutOfStock,
		"2": OutOfStock,
		"5": OutOfStock,
		"6": InStock,
	} {
		got, err := DeriveStatus(dec(qty), unit, cfg)
		require.NoError(t, err)
		assert.Equal(t, want, got, "quantity %s", qty)
	}
}

func TestThresholdConfig_SettingsRoundTrip(t *testing.T) {
	in := ThresholdConfig{Low: ptr(dec("12.5")), Out: dec("3")}
	out, err := ThresholdsFromSettings(in.Settings())
	require.NoError(t, err)
	assert.True(t, out.Low.Equal(*in.Low))
	assert.True(t, out.Out.Equal(in.Out))
}

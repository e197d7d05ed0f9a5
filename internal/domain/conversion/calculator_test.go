package conversion

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depot/internal/core/apperror"
	"depot/internal/core/id"
	"depot/internal/domain/catalogs/packaging"
)

var kgUnit = id.New()

func pkg(name, factor string) packaging.PackagingType {
	return *packaging.NewPackagingType(name, name, kgUnit, decimal.RequireFromString(factor))
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestEquivalentQuantity_Exact(t *testing.T) {
	kg := pkg("kg", "1")
	bag := pkg("bag", "25")

	got, err := EquivalentQuantity(dec("100"), kg, bag)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Equal(dec("4")), "got %s", got)
}

func TestEquivalentQuantity_FractionalIsNil(t *testing.T) {
	kg := pkg("kg", "1")
	bag := pkg("bag", "25")

	got, err := EquivalentQuantity(dec("37"), kg, bag)
	require.NoError(t, err)
	assert.Nil(t, got)

	exact, err := ExactQuantity(dec("37"), kg, bag)
	require.NoError(t, err)
	assert.True(t, exact.Equal(dec("1.48")))
}

func TestEquivalentQuantity_Incompatible(t *testing.T) {
	kg := pkg("kg", "1")
	bottle := *packaging.NewPackagingType("btl", "Bottle", id.New(), dec("1.5"))

	_, err := EquivalentQuantity(dec("3"), kg, bottle)
	assert.True(t, apperror.HasCode(err, apperror.CodeIncompatibleUnits))
}

func TestEquivalentQuantity_BadFactor(t *testing.T) {
	kg := pkg("kg", "1")
	broken := pkg("broken", "0")

	_, err := EquivalentQuantity(dec("3"), kg, broken)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidConversionFactor))
}

func TestEquivalentQuantity_NonPositive(t *testing.T) {
	kg := pkg("kg", "1")
	bag := pkg("bag", "25")

	_, err := EquivalentQuantity(decimal.Zero, kg, bag)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidQuantity))
}

func TestEquivalentQuantity_RoundTrip(t *testing.T) {
	factors := []string{"1", "25", "0.5", "2.5", "0.25", "12", "1000", "0.001"}
	quantities := []string{"1", "2", "4", "10", "40", "100", "250", "1000"}

	for _, fa := range factors {
		for _, fb := range factors {
			a, b := pkg("a", fa), pkg("b", fb)
			for _, qs := range quantities {
				q := dec(qs)
				there, err := EquivalentQuantity(q, a, b)
				require.NoError(t, err)
				if there == nil {
					continue
				}
				back, err := EquivalentQuantity(*there, b, a)
				require.NoError(t, err)
				require.NotNil(t, back, "%s %s->%s->%s", qs, fa, fb, fa)
				assert.True(t, back.Equal(q), "%s %s->%s returned %s", qs, fa, fb, back)
			}
		}
	}
}

func TestMinimalIntegerStep(t *testing.T) {
	cases := []struct {
		source, target string
		want           int64
	}{
		{"1", "25", 25},
		{"25", "1", 1},
		{"0.3", "0.7", 7},
		{"2.5", "1", 2},
		{"0.25", "1", 4},
		{"6", "4", 2},
		{"1", "1", 1},
		{"0.0001", "1", 10000},
		{"0.00125", "1", 800},
		{"0.00001", "1", 100000},
		{"1", "0.00125", 1},
	}
	for _, tc := range cases {
		got, err := MinimalIntegerStep(pkg("s", tc.source), pkg("t", tc.target))
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%s -> %s", tc.source, tc.target)
	}
}

func TestMinimalIntegerStep_IsMinimal(t *testing.T) {
	factors := []string{"1", "25", "0.3", "0.7", "2.5", "12", "6", "4", "0.125"}

	for _, fa := range factors {
		for _, fb := range factors {
			a, b := pkg("a", fa), pkg("b", fb)
			step, err := MinimalIntegerStep(a, b)
			require.NoError(t, err)
			require.GreaterOrEqual(t, step, int64(1))

			whole, err := EquivalentQuantity(decimal.NewFromInt(step), a, b)
			require.NoError(t, err)
			assert.NotNil(t, whole, "step %d for %s->%s is not whole", step, fa, fb)

			for n := int64(1); n < step; n++ {
				smaller, err := EquivalentQuantity(decimal.NewFromInt(n), a, b)
				require.NoError(t, err)
				assert.Nil(t, smaller, "%d is smaller than step %d for %s->%s", n, step, fa, fb)
			}
		}
	}
}

func TestMinimalIntegerStep_FinePrecisionFactors(t *testing.T) {
	cases := []struct {
		source, target string
		want           int64
	}{
		{"0.00125", "1", 800},
		{"0.00001", "1", 100000},
		{"0.000375", "0.5", 4000},
	}
	for _, tc := range cases {
		a, b := pkg("a", tc.source), pkg("b", tc.target)
		step, err := MinimalIntegerStep(a, b)
		require.NoError(t, err)
		assert.Equal(t, tc.want, step, "%s -> %s", tc.source, tc.target)

		whole, err := EquivalentQuantity(decimal.NewFromInt(step), a, b)
		require.NoError(t, err)
		assert.NotNil(t, whole)

		short, err := EquivalentQuantity(decimal.NewFromInt(step-1), a, b)
		require.NoError(t, err)
		assert.Nil(t, short, "%d still converts whole for %s -> %s", step-1, tc.source, tc.target)
	}
}

func TestMinimalIntegerStep_Errors(t *testing.T) {
	_, err := MinimalIntegerStep(pkg("a", "0"), pkg("b", "1"))
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidConversionFactor))

	_, err = MinimalIntegerStep(pkg("a", "1"), pkg("b", "-2"))
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidConversionFactor))

	other := *packaging.NewPackagingType("l", "Liter", id.New(), dec("1"))
	_, err = MinimalIntegerStep(pkg("a", "1"), other)
	assert.True(t, apperror.HasCode(err, apperror.CodeIncompatibleUnits))
}

func TestClampToStep(t *testing.T) {
	assert.True(t, ClampToStep(dec("37"), 25).Equal(dec("25")))
	assert.True(t, ClampToStep(dec("100"), 25).Equal(dec("100")))
	assert.True(t, ClampToStep(dec("3"), 25).IsZero())
	assert.True(t, ClampToStep(dec("-5"), 25).IsZero())
}

func TestGCDAndLCM(t *testing.T) {
	assert.Equal(t, int64(7), GCD(7, 0))
	assert.Equal(t, int64(7), GCD(0, 7))
	assert.Equal(t, int64(6), GCD(12, 18))
	assert.Equal(t, int64(6), GCD(-12, 18))
	assert.Equal(t, int64(36), LCM(12, 18))
	assert.Equal(t, int64(36), LCM(-12, 18))
	assert.Equal(t, int64(0), LCM(0, 5))
}

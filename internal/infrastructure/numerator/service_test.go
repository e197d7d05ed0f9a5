package numerator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corenumerator "depot/internal/core/numerator"
)

// fakeSequences emulates the sys_sequences UPSERT statements.
type fakeSequences struct {
	values map[string]int64
	calls  int
	err    error
}

type fakeRow struct {
	val int64
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*int64)) = r.val
	return nil
}

func (f *fakeSequences) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.calls++
	if f.err != nil {
		return fakeRow{err: f.err}
	}
	key := args[0].(string)
	switch len(args) {
	case 1:
		f.values[key]++
	default:
		n := args[1].(int64)
		if strings.Contains(sql, "SET current_val = $2") {
			f.values[key] = n
		} else {
			f.values[key] += n
		}
	}
	return fakeRow{val: f.values[key]}
}

func TestService_Strict(t *testing.T) {
	seq := &fakeSequences{values: map[string]int64{}}
	svc := NewWithQuerier(seq)
	period := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	cfg := corenumerator.DefaultConfig("TRF")

	first, err := svc.GetNextNumber(context.Background(), cfg, nil, period)
	require.NoError(t, err)
	second, err := svc.GetNextNumber(context.Background(), cfg, nil, period)
	require.NoError(t, err)

	assert.Equal(t, "TRF-2026-00001", first)
	assert.Equal(t, "TRF-2026-00002", second)
	assert.Equal(t, int64(2), seq.values["TRF_2026"])
}

func TestService_CachedReservesRanges(t *testing.T) {
	seq := &fakeSequences{values: map[string]int64{}}
	svc := NewWithQuerier(seq)
	period := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	cfg := corenumerator.Config{Prefix: "TRF", PadWidth: 3, ResetPeriod: "never"}
	opts := &corenumerator.Options{Strategy: corenumerator.StrategyCached, RangeSize: 2}

	var got []string
	for i := 0; i < 3; i++ {
		n, err := svc.GetNextNumber(context.Background(), cfg, opts, period)
		require.NoError(t, err)
		got = append(got, n)
	}

	assert.Equal(t, []string{"TRF-001", "TRF-002", "TRF-003"}, got)
	assert.Equal(t, 2, seq.calls)
	assert.Equal(t, int64(4), seq.values["TRF"])
}

func TestService_SetNextNumber(t *testing.T) {
	seq := &fakeSequences{values: map[string]int64{}}
	svc := NewWithQuerier(seq)
	period := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	cfg := corenumerator.DefaultConfig("TRF")

	require.NoError(t, svc.SetNextNumber(context.Background(), cfg, period, 100))
	n, err := svc.GetNextNumber(context.Background(), cfg, nil, period)
	require.NoError(t, err)
	assert.Equal(t, "TRF-2026-00100", n)

	assert.Error(t, svc.SetNextNumber(context.Background(), cfg, period, 0))
}

func TestService_QueryError(t *testing.T) {
	svc := NewWithQuerier(&fakeSequences{values: map[string]int64{}, err: errors.New("boom")})

	_, err := svc.GetNextNumber(context.Background(), corenumerator.DefaultConfig("TRF"), nil, time.Now())
	assert.ErrorContains(t, err, "boom")
}

func TestParseNumber(t *testing.T) {
	assert.Equal(t, int64(42), ParseNumber("TRF-2026-00042"))
	assert.Equal(t, int64(7), ParseNumber("TRF-007"))
	assert.Equal(t, int64(-1), ParseNumber("TRF"))
	assert.Equal(t, int64(-1), ParseNumber("TRF-"))
	assert.Equal(t, int64(-1), ParseNumber("TRF-abc"))
}

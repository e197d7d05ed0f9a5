package numerator

// Strategy selects how sequence values are drawn from the store.
type Strategy int

const (
	// StrategyStrict takes one value per call with UPDATE ... RETURNING inside
	// the caller's transaction. A rolled back transfer gives its number back,
	// so transfer numbers have no gaps.
	StrategyStrict Strategy = iota

	// StrategyCached reserves RangeSize values at a time and hands them out
	// from memory. Unused values are lost on restart.
	StrategyCached
)

type Options struct {
	Strategy Strategy
	// RangeSize applies to StrategyCached; zero means 50.
	RangeSize int64
}

func DefaultOptions() *Options {
	return &Options{Strategy: StrategyStrict}
}

// Period says when a sequence starts again from 1.
type Period string

const (
	ResetYearly  Period = "year"
	ResetMonthly Period = "month"
	ResetNever   Period = "never"
)

// Config describes one number series. Transfers use
// DefaultConfig("TRF"), which yields TRF-2026-00001, TRF-2026-00002, ...
// and restarts at TRF-2027-00001.
type Config struct {
	Prefix      string
	IncludeYear bool
	// PadWidth is the minimum digit count of the counter; zero means 5.
	PadWidth    int
	ResetPeriod Period
}

// DefaultConfig is the TRF-YYYY-NNNNN shape: yearly series, five digits.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		IncludeYear: true,
		PadWidth:    5,
		ResetPeriod: ResetYearly,
	}
}

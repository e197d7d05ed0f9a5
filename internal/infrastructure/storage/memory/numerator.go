package memory

import (
	"context"
	"time"

	"depot/internal/core/apperror"
	"depot/internal/core/numerator"
)

// Numerator returns a number generator backed by the store. Numbers consumed
// by a rolled back transaction are handed out again.
func (s *Store) Numerator() numerator.Generator { return numberGen{s} }

type numberGen struct{ s *Store }

func (g numberGen) GetNextNumber(ctx context.Context, cfg numerator.Config, _ *numerator.Options, period time.Time) (string, error) {
	var num int64
	err := g.s.do(ctx, func() error {
		key := numerator.BuildKey(cfg, period)
		g.s.st.sequences[key]++
		num = g.s.st.sequences[key]
		return nil
	})
	if err != nil {
		return "", err
	}
	return numerator.Format(cfg, period, num), nil
}

func (g numberGen) SetNextNumber(ctx context.Context, cfg numerator.Config, period time.Time, value int64) error {
	if value < 1 {
		return apperror.NewValidation("next number must be positive")
	}
	return g.s.do(ctx, func() error {
		g.s.st.sequences[numerator.BuildKey(cfg, period)] = value - 1
		return nil
	})
}

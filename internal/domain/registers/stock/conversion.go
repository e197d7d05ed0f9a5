package stock

import (
	"context"

	"github.com/shopspring/decimal"

	"depot/internal/core/apperror"
	"depot/internal/core/id"
	"depot/internal/domain/conversion"
)

// EquivalentResult answers "how many target units is this quantity".
// Quantity is nil when the conversion is not a whole number; Exact always
// carries the unrounded value.
type EquivalentResult struct {
	SourcePackagingTypeID id.ID            `json:"sourcePackagingTypeId"`
	TargetPackagingTypeID id.ID            `json:"targetPackagingTypeId"`
	Input                 decimal.Decimal  `json:"input"`
	Quantity              *decimal.Decimal `json:"quantity"`
	Exact                 decimal.Decimal  `json:"exact"`
	Step                  int64            `json:"step"`
}

// Equivalent converts quantity source units into target units.
func (s *Service) Equivalent(ctx context.Context, quantity decimal.Decimal, sourceID, targetID id.ID) (*EquivalentResult, error) {
	if !quantity.IsPositive() {
		return nil, apperror.NewInvalidQuantity(quantity.String())
	}
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	source, target, err := catalog.Pair(sourceID, targetID)
	if err != nil {
		return nil, err
	}

	result, err := conversion.EquivalentQuantity(quantity, source, target)
	if err != nil {
		return nil, observe(ctx, err)
	}
	exact, err := conversion.ExactQuantity(quantity, source, target)
	if err != nil {
		return nil, observe(ctx, err)
	}
	step, err := conversion.MinimalIntegerStep(source, target)
	if err != nil {
		return nil, observe(ctx, err)
	}

	return &EquivalentResult{
		SourcePackagingTypeID: sourceID,
		TargetPackagingTypeID: targetID,
		Input:                 quantity,
		Quantity:              result,
		Exact:                 exact,
		Step:                  step,
	}, nil
}

// StepResult is the minimal source step between two packaging types.
// When a quantity was supplied, Clamped is that quantity rounded down to a
// multiple of Step and Produced the target units it yields.
type StepResult struct {
	SourcePackagingTypeID id.ID            `json:"sourcePackagingTypeId"`
	TargetPackagingTypeID id.ID            `json:"targetPackagingTypeId"`
	Step                  int64            `json:"step"`
	Clamped               *decimal.Decimal `json:"clamped,omitempty"`
	Produced              *decimal.Decimal `json:"produced,omitempty"`
}

// Step computes the minimal integer step for converting source into target.
func (s *Service) Step(ctx context.Context, sourceID, targetID id.ID, quantity *decimal.Decimal) (*StepResult, error) {
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	source, target, err := catalog.Pair(sourceID, targetID)
	if err != nil {
		return nil, err
	}
	if !source.CompatibleWith(target) {
		return nil, apperror.NewIncompatibleUnits(sourceID, targetID)
	}
	step, err := conversion.MinimalIntegerStep(source, target)
	if err != nil {
		return nil, observe(ctx, err)
	}

	res := &StepResult{
		SourcePackagingTypeID: sourceID,
		TargetPackagingTypeID: targetID,
		Step:                  step,
	}
	if quantity != nil {
		if quantity.IsNegative() {
			return nil, apperror.NewInvalidQuantity(quantity.String())
		}
		clamped := conversion.ClampToStep(*quantity, step)
		res.Clamped = &clamped
		if clamped.IsPositive() {
			produced, err := conversion.EquivalentQuantity(clamped, source, target)
			if err != nil {
				return nil, observe(ctx, err)
			}
			res.Produced = produced
		} else {
			zero := decimal.Zero
			res.Produced = &zero
		}
	}
	return res, nil
}

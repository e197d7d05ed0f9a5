// Package repack converts part of a lot from one packaging type into another
// compatible packaging type.
package repack

import (
	"github.com/shopspring/decimal"

	"depot/internal/core/apperror"
	"depot/internal/domain/catalogs/packaging"
	"depot/internal/domain/conversion"
	"depot/internal/domain/inventory"
)

// State of a single repack invocation. Not persisted.
type State string

const (
	StateConfiguring State = "configuring"
	StateValidated   State = "validated"
	StateCommitted   State = "committed"
	StateRejected    State = "rejected"
)

// Operation is one repack request moving through its state machine:
// Configuring -> Validated -> Committed, or Configuring -> Rejected.
type Operation struct {
	source          inventory.Lot
	sourcePackaging packaging.PackagingType
	targetPackaging packaging.PackagingType
	quantity        decimal.Decimal

	state    State
	produced decimal.Decimal
	err      error
}

// Result is what a committed repack did. Changes is what the store must apply.
type Result struct {
	Source        inventory.Lot        `json:"updatedSourceLot"`
	Target        inventory.Lot        `json:"newOrMergedTargetLot"`
	TargetCreated bool                 `json:"targetCreated"`
	Converted     decimal.Decimal      `json:"converted"`
	Produced      decimal.Decimal      `json:"produced"`
	Changes       inventory.LotChanges `json:"-"`
}

// New configures a repack of quantity units of source into target.
// sourcePackaging must be the packaging type of the source lot.
func New(source inventory.Lot, sourcePackaging, target packaging.PackagingType, quantity decimal.Decimal) *Operation {
	return &Operation{
		source:          source,
		sourcePackaging: sourcePackaging,
		targetPackaging: target,
		quantity:        quantity,
		state:           StateConfiguring,
	}
}

// State returns the current state.
func (o *Operation) State() State { return o.state }

// Produced is the whole number of target units; valid once Validated.
func (o *Operation) Produced() decimal.Decimal { return o.produced }

// Validate checks the request, failing on the first violation in this order:
// quantity, same packaging, compatibility, availability, integrality.
func (o *Operation) Validate() error {
	switch o.state {
	case StateValidated:
		return nil
	case StateRejected:
		return o.err
	case StateCommitted:
		return apperror.NewInvalidStatusTransition("repack", o.state, StateValidated)
	}

	produced, err := o.check()
	if err != nil {
		o.state = StateRejected
		o.err = err
		return err
	}
	o.produced = produced
	o.state = StateValidated
	return nil
}

func (o *Operation) check() (decimal.Decimal, error) {
	src := o.source
	if !o.quantity.IsPositive() {
		return decimal.Zero, apperror.NewInvalidQuantity(o.quantity.String()).
			WithDetail("inventory_id", src.ID)
	}
	if o.sourcePackaging.ID != src.PackagingTypeID {
		return decimal.Zero, apperror.NewValidation("source packaging does not match the lot").
			WithDetail("inventory_id", src.ID).
			WithDetail("packaging_type_id", o.sourcePackaging.ID)
	}
	if o.targetPackaging.ID == src.PackagingTypeID {
		return decimal.Zero, apperror.NewSamePackagingType(o.targetPackaging.ID).
			WithDetail("inventory_id", src.ID).
			WithDetail("packaging_name", o.targetPackaging.Name)
	}
	if !o.sourcePackaging.CompatibleWith(o.targetPackaging) {
		return decimal.Zero, apperror.NewIncompatibleUnits(o.sourcePackaging.ID, o.targetPackaging.ID).
			WithDetail("source_packaging_name", o.sourcePackaging.Name).
			WithDetail("target_packaging_name", o.targetPackaging.Name)
	}
	if !src.IsLive() || o.quantity.GreaterThan(src.Quantity) {
		available := src.Quantity
		if !src.IsLive() {
			available = decimal.Zero
		}
		return decimal.Zero, apperror.NewInsufficientQuantity(src.ID, o.quantity.String(), available.String()).
			WithDetail("variant_id", src.VariantID).
			WithDetail("packaging_type_id", src.PackagingTypeID).
			WithDetail("warehouse_id", src.WarehouseID)
	}

	produced, err := conversion.EquivalentQuantity(o.quantity, o.sourcePackaging, o.targetPackaging)
	if err != nil {
		return decimal.Zero, err
	}
	if produced == nil {
		exact, _ := conversion.ExactQuantity(o.quantity, o.sourcePackaging, o.targetPackaging)
		return decimal.Zero, apperror.NewFractionalConversion(o.quantity.String(), exact.String()).
			WithDetail("source_packaging_name", o.sourcePackaging.Name).
			WithDetail("target_packaging_name", o.targetPackaging.Name)
	}
	return *produced, nil
}

// Commit applies a validated repack to a working copy of candidates, the
// live lots at the source warehouse the target side may merge into.
// The source lot loses quantity; the target side gains Produced() units,
// merged into the largest lot with the same variant, warehouse, target
// packaging and production date, or a new lot.
func (o *Operation) Commit(candidates []inventory.Lot) (Result, error) {
	if o.state != StateValidated {
		return Result{}, apperror.NewInvalidStatusTransition("repack", o.state, StateCommitted)
	}

	lots := make([]inventory.Lot, 0, len(candidates)+1)
	lots = append(lots, o.source)
	for _, c := range candidates {
		if c.ID != o.source.ID {
			lots = append(lots, c)
		}
	}
	ledger := inventory.NewLedger(lots)

	updated, err := ledger.Debit(o.source.ID, o.quantity)
	if err != nil {
		return Result{}, err
	}
	target, created, err := ledger.Credit(o.source, o.source.WarehouseID, o.targetPackaging.ID, o.source.ProductionDate, o.produced)
	if err != nil {
		return Result{}, err
	}

	o.state = StateCommitted
	return Result{
		Source:        updated,
		Target:        target,
		TargetCreated: created,
		Converted:     o.quantity,
		Produced:      o.produced,
		Changes:       ledger.Changes(),
	}, nil
}

// Package events defines domain events emitted by stock operations and the
// publisher contract used to record them transactionally.
package events

import (
	"context"

	"depot/internal/core/id"
)

// Aggregate types.
const (
	AggregateLot      = "InventoryLot"
	AggregateTransfer = "Transfer"
)

// Event types.
const (
	EventLotsChanged           = "LotsChanged"
	EventLotReceived           = "LotReceived"
	EventLotRemoved            = "LotRemoved"
	EventTransferCreated       = "TransferCreated"
	EventTransferStatusChanged = "TransferStatusChanged"
)

// DomainEvent represents an event to be published via outbox.
type DomainEvent struct {
	AggregateType string
	AggregateID   id.ID
	EventType     string
	Payload       any
}

// Publisher records events. Implementations must write inside the
// transaction carried by ctx so events are never emitted for rolled back work.
type Publisher interface {
	Publish(ctx context.Context, event DomainEvent) error
}

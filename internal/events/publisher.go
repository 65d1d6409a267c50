package events

import (
	"context"
	"time"
)

// StockChannel is the pub/sub channel cache invalidators subscribe to.
const StockChannel = "stock.changed"

// StockChangedEvent announces that stock counters moved for a set of
// products. Delivery is at-least-once; consumers must be idempotent.
type StockChangedEvent struct {
	EventID    string    `json:"event_id"`
	ProductIDs []uint    `json:"product_ids"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher emits notifications after the enclosing transaction committed.
// Implementations must never be called with uncommitted state.
type Publisher interface {
	StockChanged(ctx context.Context, productIDs []uint) error
}

// NopPublisher discards every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) StockChanged(ctx context.Context, productIDs []uint) error {
	return nil
}

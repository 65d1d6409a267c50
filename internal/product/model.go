package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID        uint
	Name      string
	Price     decimal.Decimal
	Stock     int
	SoldCount int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MovementReason is the closed set of reasons a stock counter may change.
type MovementReason string

const (
	MovementOrder         MovementReason = "ORDER"
	MovementCancel        MovementReason = "CANCEL"
	MovementPartialCancel MovementReason = "PARTIAL_CANCEL"
	MovementReturn        MovementReason = "RETURN"
)

// StockMovement is an append-only ledger row recording a stock change with
// its before/after values, the originating order and the acting principal.
type StockMovement struct {
	ID          uuid.UUID
	ProductID   uint
	OrderID     uint
	Reason      MovementReason
	Delta       int
	StockBefore int
	StockAfter  int
	Actor       string
	CreatedAt   time.Time
}

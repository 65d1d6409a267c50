package user

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User carries the wallet fields the order engine mutates: point balance,
// cumulative spend and the tier derived from it.
type User struct {
	ID              uint
	Email           string
	PointBalance    int64
	CumulativeSpend decimal.Decimal
	TierID          uint
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type PointReason string

const (
	PointReasonUse    PointReason = "USE"
	PointReasonEarn   PointReason = "EARN"
	PointReasonRefund PointReason = "REFUND"
)

// PointHistory is an append-only ledger row. Amount is negative for debits.
type PointHistory struct {
	ID           uuid.UUID
	UserID       uint
	OrderID      *uint
	Amount       int64
	Reason       PointReason
	BalanceAfter int64
	CreatedAt    time.Time
}

package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// Line is a cart row joined with the current product snapshot. Name and
// price reflect the product at read time; the order engine re-reads both
// under the product lock before using them.
type Line struct {
	ID          uint
	UserID      uint
	ProductID   uint
	Quantity    int
	ProductName string
	UnitPrice   decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

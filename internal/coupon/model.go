package coupon

import (
	"time"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountPercent DiscountType = "PERCENT"
	DiscountFixed   DiscountType = "FIXED"
)

// Coupon is a single-use, user-owned voucher. UsedAt doubles as the
// used-flag; the conditional update in MarkUsed is the only writer.
type Coupon struct {
	ID          uint
	UserID      uint
	Code        string
	Type        DiscountType
	Value       decimal.Decimal
	MinSubtotal decimal.Decimal
	ExpiresAt   time.Time
	UsedAt      *time.Time
	CreatedAt   time.Time
}

// DiscountFor computes the coupon discount against the pre-discount
// subtotal, floored to integer currency units and capped at the subtotal.
func (c *Coupon) DiscountFor(subtotal decimal.Decimal) decimal.Decimal {
	var d decimal.Decimal
	switch c.Type {
	case DiscountPercent:
		d = subtotal.Mul(c.Value).Div(decimal.NewFromInt(100)).Floor()
	case DiscountFixed:
		d = c.Value
	default:
		return decimal.Zero
	}

	if d.GreaterThan(subtotal) {
		return subtotal
	}
	return d
}

package tier

import "github.com/shopspring/decimal"

// Tier is a loyalty level derived from cumulative spend. Rates are fractions
// (0.05 = 5%). FreeShippingAt is the discounted-goods total at or above which
// shipping is free; below it ShippingFee applies.
type Tier struct {
	ID             uint
	Name           string
	MinSpend       decimal.Decimal
	DiscountRate   decimal.Decimal
	PointRate      decimal.Decimal
	FreeShippingAt decimal.Decimal
	ShippingFee    decimal.Decimal
}

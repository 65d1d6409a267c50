package tier

import "github.com/shopspring/decimal"

// LineDiscount returns the tier discount for a single order line, floored to
// integer currency units. Rounding is applied per line, not on the order
// total.
func (t Tier) LineDiscount(lineSubtotal decimal.Decimal) decimal.Decimal {
	return lineSubtotal.Mul(t.DiscountRate).Floor()
}

// ShippingFeeFor returns the shipping fee for the given discounted goods
// total: zero at or above the tier's free-shipping threshold, the tier's flat
// fee otherwise.
func (t Tier) ShippingFeeFor(goodsTotal decimal.Decimal) decimal.Decimal {
	if goodsTotal.GreaterThanOrEqual(t.FreeShippingAt) {
		return decimal.Zero
	}
	return t.ShippingFee
}

// EarnedPoints returns the points earned on the amount actually collected for
// goods (final amount minus shipping), floored.
func (t Tier) EarnedPoints(paidForGoods decimal.Decimal) int64 {
	if paidForGoods.Sign() <= 0 {
		return 0
	}
	return paidForGoods.Mul(t.PointRate).Floor().IntPart()
}

package order

import "github.com/shopspring/decimal"

// The refund calculator ties every partial refund back to what was actually
// collected. Refunding against the original unit price would over-refund
// whenever a discount or point usage was applied.
//
// Shipping is excluded here; it is refunded only by a full cancel.

// ProportionalRefund computes the monetary refund for cancelling or
// returning qty units of item:
//
//	(finalAmount - shippingFee) * (itemSubtotal / orderSubtotal) * (qty / orderedQty)
//
// rounded to 2 decimal places half-up, then clamped so the order's
// cumulative refunds can never exceed its final amount even under rounding
// drift across repeated partial operations.
func ProportionalRefund(o *Order, item *OrderItem, qty int) decimal.Decimal {
	if qty <= 0 || item.Quantity <= 0 || o.Subtotal.Sign() <= 0 {
		return decimal.Zero
	}

	effectivePaid := o.FinalAmount.Sub(o.ShippingFee)
	if effectivePaid.Sign() <= 0 {
		return decimal.Zero
	}

	num := effectivePaid.Mul(item.Subtotal).Mul(decimal.NewFromInt(int64(qty)))
	den := o.Subtotal.Mul(decimal.NewFromInt(int64(item.Quantity)))
	refund := num.Div(den).Round(2)

	if remaining := o.RemainingRefundable(); refund.GreaterThan(remaining) {
		refund = remaining
	}
	if refund.Sign() < 0 {
		return decimal.Zero
	}
	return refund
}

// ProportionalPointRefund computes the used points handed back for qty units
// of item, floored, clamped to the points not yet refunded.
func ProportionalPointRefund(o *Order, item *OrderItem, qty int) int64 {
	if qty <= 0 || item.Quantity <= 0 || o.Subtotal.Sign() <= 0 || o.UsedPoints <= 0 {
		return 0
	}

	num := decimal.NewFromInt(o.UsedPoints).Mul(item.Subtotal).Mul(decimal.NewFromInt(int64(qty)))
	den := o.Subtotal.Mul(decimal.NewFromInt(int64(item.Quantity)))
	points := num.Div(den).Floor().IntPart()

	if remaining := o.RemainingRefundablePoints(); points > remaining {
		points = remaining
	}
	if points < 0 {
		return 0
	}
	return points
}

package coupon

import "errors"

var (
	ErrCouponNotFound    = errors.New("coupon not found")
	ErrCouponExpired     = errors.New("coupon expired")
	ErrCouponAlreadyUsed = errors.New("coupon already used")
	ErrCouponMinSubtotal = errors.New("order subtotal below coupon minimum")
)

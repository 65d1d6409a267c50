package order

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"mercato-be/internal/coupon"
	"mercato-be/internal/db"
	"mercato-be/internal/logger"
	"mercato-be/internal/product"
	"mercato-be/internal/tier"
	"mercato-be/internal/user"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CancelOrder reverses a whole order while it is still cancellable. It
// refunds what has not been refunded yet (shipping included), restores stock
// for every item's remaining quantity, hands back unexpired coupon and
// points, and moves the order to CANCELLED. requesterID nil means a
// privileged caller; otherwise ownership is enforced.
func (r *repository) CancelOrder(ctx context.Context, orderID uint, requesterID *uint, actor string) (*Order, []uint, error) {
	var cancelled *Order
	var productIDs []uint

	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		o, err := lockOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if requesterID != nil && o.UserID != *requesterID {
			return ErrUnauthorized
		}
		if !o.Status.Cancellable() {
			return ErrOrderNotCancellable
		}

		// Same global lock order as creation: products ascending by id.
		idx := make([]int, len(o.Items))
		for i := range idx {
			idx[i] = i
		}
		sort.Slice(idx, func(a, b int) bool {
			return o.Items[idx[a]].ProductID < o.Items[idx[b]].ProductID
		})

		for _, i := range idx {
			it := &o.Items[i]
			remaining := it.RemainingQuantity()
			if remaining <= 0 {
				continue
			}

			p, err := product.LockForUpdate(ctx, tx, it.ProductID)
			if err != nil {
				return err
			}
			if err := product.RestoreStock(ctx, tx, p.ID, remaining); err != nil {
				return err
			}
			if err := product.AppendMovement(ctx, tx, &product.StockMovement{
				ProductID:   p.ID,
				OrderID:     o.ID,
				Reason:      product.MovementCancel,
				Delta:       remaining,
				StockBefore: p.Stock,
				StockAfter:  p.Stock + remaining,
				Actor:       actor,
			}); err != nil {
				return err
			}
			productIDs = append(productIDs, p.ID)
		}

		// Refund what is still outstanding, not the full amount; this stays
		// correct after a prior partial cancel.
		refundAmount := o.RemainingRefundable()
		refundPoints := o.RemainingRefundablePoints()

		if err := creditWallet(ctx, tx, o, refundAmount, refundPoints); err != nil {
			return err
		}

		if o.CouponID != nil {
			if err := coupon.Release(ctx, tx, *o.CouponID); err != nil {
				return err
			}
		}

		for i := range o.Items {
			it := &o.Items[i]
			if remaining := it.RemainingQuantity(); remaining > 0 {
				it.CancelledQuantity += remaining
			}
			if it.Status == ItemNormal {
				it.Status = ItemCancelled
			}
			if err := updateItem(ctx, tx, it); err != nil {
				return err
			}
		}

		now := time.Now()
		o.RefundedAmount = o.FinalAmount
		o.RefundedPoints = o.UsedPoints
		o.Status = StatusCancelled
		o.CancelledAt = &now
		if _, err := tx.ExecContext(ctx, `
			UPDATE orders
			SET refunded_amount = $1, refunded_points = $2, status = $3, cancelled_at = $4
			WHERE id = $5
		`, o.RefundedAmount, o.RefundedPoints, o.Status, o.CancelledAt, o.ID); err != nil {
			return err
		}

		cancelled = o
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return cancelled, productIDs, nil
}

// CancelItem cancels qty units of one line while the order is cancellable,
// refunding the proportional share of what was actually paid. When every
// item's remaining quantity reaches zero the order auto-transitions to
// CANCELLED (without the shipping refund, which only a full cancel grants).
func (r *repository) CancelItem(ctx context.Context, orderID, itemID uint, qty int, requesterID *uint, actor string) (*Order, []uint, error) {
	var updated *Order
	var productIDs []uint

	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		o, err := lockOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if requesterID != nil && o.UserID != *requesterID {
			return ErrUnauthorized
		}
		if !o.Status.Cancellable() {
			return ErrOrderNotCancellable
		}

		it := findItem(o, itemID)
		if it == nil {
			return ErrOrderItemNotFound
		}
		if qty <= 0 || qty > it.RemainingQuantity() {
			return ErrInvalidQuantity
		}

		amount := ProportionalRefund(o, it, qty)
		points := ProportionalPointRefund(o, it, qty)
		if err := r.applyItemRefund(ctx, tx, o, it, qty, amount, points, product.MovementPartialCancel, actor); err != nil {
			return err
		}
		productIDs = append(productIDs, it.ProductID)

		allGone := true
		for i := range o.Items {
			if o.Items[i].RemainingQuantity() > 0 {
				allGone = false
				break
			}
		}
		if allGone {
			now := time.Now()
			o.Status = StatusCancelled
			o.CancelledAt = &now
			if _, err := tx.ExecContext(ctx, `
				UPDATE orders SET status = $1, cancelled_at = $2 WHERE id = $3
			`, o.Status, o.CancelledAt, o.ID); err != nil {
				return err
			}
		}

		updated = o
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return updated, productIDs, nil
}

// RequestReturn opens a return request on a delivered order within the
// return window. No stock or monetary change happens until approval.
func (r *repository) RequestReturn(ctx context.Context, orderID, itemID uint, requesterID uint, qty int, reason ReturnReason) (*Order, error) {
	var updated *Order

	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		o, err := lockOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if o.UserID != requesterID {
			return ErrUnauthorized
		}
		if o.Status != StatusDelivered {
			return ErrOrderNotReturnable
		}
		if o.DeliveredAt == nil {
			// Data-integrity violation, never silently worked around.
			logger.FromCtx(ctx).Error("delivered order has no delivered timestamp",
				zap.Uint("order_id", o.ID),
			)
			return ErrMissingDeliveredAt
		}
		if time.Since(*o.DeliveredAt) > ReturnWindow {
			return ErrReturnWindowExpired
		}

		it := findItem(o, itemID)
		if it == nil {
			return ErrOrderItemNotFound
		}
		if !it.Status.CanTransition(ItemReturnRequested) {
			return ErrItemNotReturnable
		}
		if qty <= 0 || qty > it.RemainingQuantity() {
			return ErrInvalidQuantity
		}

		now := time.Now()
		it.Status = ItemReturnRequested
		it.PendingReturnQuantity = qty
		it.ReturnReason = &reason
		it.RejectReason = nil
		it.ReturnRequestedAt = &now
		it.ReturnResolvedAt = nil
		if err := updateItem(ctx, tx, it); err != nil {
			return err
		}

		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// ApproveReturn settles a pending return request: the proportional refund
// over the pending quantity runs through the shared primitive, then the item
// is finalized as RETURNED. Privileged operation, looked up by order id
// alone.
func (r *repository) ApproveReturn(ctx context.Context, orderID, itemID uint, actor string) (*Order, []uint, error) {
	var updated *Order
	var productIDs []uint

	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		o, err := lockOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}

		it := findItem(o, itemID)
		if it == nil {
			return ErrOrderItemNotFound
		}
		if !it.Status.CanTransition(ItemReturnApproved) {
			return ErrItemNotReturnable
		}
		qty := it.PendingReturnQuantity
		if qty <= 0 {
			return ErrInvalidQuantity
		}
		it.Status = ItemReturnApproved

		amount := ProportionalRefund(o, it, qty)
		points := ProportionalPointRefund(o, it, qty)
		if err := r.applyItemRefund(ctx, tx, o, it, qty, amount, points, product.MovementReturn, actor); err != nil {
			return err
		}
		productIDs = append(productIDs, it.ProductID)

		// Item finalization happens here, not in the primitive, so the
		// returned counters are written exactly once.
		if !it.Status.CanTransition(ItemReturned) {
			return ErrItemNotReturnable
		}
		now := time.Now()
		it.Status = ItemReturned
		it.ReturnedQuantity += qty
		it.PendingReturnQuantity = 0
		it.ReturnedAmount = it.ReturnedAmount.Add(amount)
		it.ReturnResolvedAt = &now
		if err := updateItem(ctx, tx, it); err != nil {
			return err
		}

		updated = o
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return updated, productIDs, nil
}

// RejectReturn closes a pending return request with no financial effect; the
// pending quantity becomes available again and the request may be re-applied
// later.
func (r *repository) RejectReturn(ctx context.Context, orderID, itemID uint, rejectReason, actor string) (*Order, error) {
	var updated *Order

	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		o, err := lockOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}

		it := findItem(o, itemID)
		if it == nil {
			return ErrOrderItemNotFound
		}
		if it.Status != ItemReturnRequested {
			return ErrItemNotReturnable
		}

		now := time.Now()
		it.Status = ItemReturnRejected
		it.PendingReturnQuantity = 0
		it.RejectReason = &rejectReason
		it.ReturnResolvedAt = &now
		if err := updateItem(ctx, tx, it); err != nil {
			return err
		}

		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// applyItemRefund is the refund primitive shared by partial cancel and
// return approval. The order lock is already held; it locks product then
// wallet, restores stock with a ledger entry, credits the wallet and updates
// the order's cumulative refund counters. Item counters are updated here for
// cancel reasons only; the RETURN path finalizes its item in the caller.
func (r *repository) applyItemRefund(
	ctx context.Context,
	tx *sql.Tx,
	o *Order,
	it *OrderItem,
	qty int,
	amount decimal.Decimal,
	points int64,
	reason product.MovementReason,
	actor string,
) error {
	p, err := product.LockForUpdate(ctx, tx, it.ProductID)
	if err != nil {
		return err
	}
	if err := product.RestoreStock(ctx, tx, p.ID, qty); err != nil {
		return err
	}
	if err := product.AppendMovement(ctx, tx, &product.StockMovement{
		ProductID:   p.ID,
		OrderID:     o.ID,
		Reason:      reason,
		Delta:       qty,
		StockBefore: p.Stock,
		StockAfter:  p.Stock + qty,
		Actor:       actor,
	}); err != nil {
		return err
	}

	if err := creditWallet(ctx, tx, o, amount, points); err != nil {
		return err
	}

	if reason != product.MovementReturn {
		it.CancelledQuantity += qty
		if it.RemainingQuantity() == 0 && it.Status == ItemNormal {
			it.Status = ItemCancelled
		}
		if err := updateItem(ctx, tx, it); err != nil {
			return err
		}
	}

	o.RefundedAmount = o.RefundedAmount.Add(amount)
	o.RefundedPoints += points
	return updateOrderRefund(ctx, tx, o)
}

// creditWallet reverses the financial effect of a refund on the order's
// owner: cumulative spend shrinks by the refund amount, used points come
// back, and the tier is recomputed from the new spend.
func creditWallet(ctx context.Context, tx *sql.Tx, o *Order, amount decimal.Decimal, points int64) error {
	wallet, err := user.LockWallet(ctx, tx, o.UserID)
	if err != nil {
		return err
	}

	wallet.CumulativeSpend = wallet.CumulativeSpend.Sub(amount)
	if wallet.CumulativeSpend.Sign() < 0 {
		wallet.CumulativeSpend = decimal.Zero
	}
	wallet.PointBalance += points

	newTier, err := tier.ForSpend(ctx, tx, wallet.CumulativeSpend)
	if err != nil {
		return err
	}
	wallet.TierID = newTier.ID

	if err := user.SaveWallet(ctx, tx, wallet); err != nil {
		return err
	}

	if points > 0 {
		return user.AppendPointHistory(ctx, tx, &user.PointHistory{
			UserID:       o.UserID,
			OrderID:      &o.ID,
			Amount:       points,
			Reason:       user.PointReasonRefund,
			BalanceAfter: wallet.PointBalance,
		})
	}
	return nil
}

func findItem(o *Order, itemID uint) *OrderItem {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return &o.Items[i]
		}
	}
	return nil
}

package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"mercato-be/internal/cart"
	"mercato-be/internal/coupon"
	"mercato-be/internal/db"
	"mercato-be/internal/product"
	"mercato-be/internal/tier"
	"mercato-be/internal/user"

	"github.com/shopspring/decimal"
)

// checkoutLockClass namespaces the per-user advisory lock so it cannot
// collide with other advisory-lock users of the same database.
const checkoutLockClass = 9143

type CreateOrderParams struct {
	UserID          uint
	PaymentMethod   PaymentMethod
	ShippingName    string
	ShippingPhone   string
	ShippingAddress string
	CouponID        *uint
	UsePoints       int64
	CartLineIDs     []uint
	Actor           string
}

// Repository owns every transactional mutation of an order. Each method is
// one atomic unit of work; the order row lock is the serialization point for
// all mutating operations on a given order, and products are always locked
// in ascending id order.
type Repository interface {
	CreateOrder(ctx context.Context, params CreateOrderParams) (*Order, []uint, error)
	GetOrder(ctx context.Context, orderID uint) (*Order, error)

	CancelOrder(ctx context.Context, orderID uint, requesterID *uint, actor string) (*Order, []uint, error)
	CancelItem(ctx context.Context, orderID, itemID uint, qty int, requesterID *uint, actor string) (*Order, []uint, error)
	RequestReturn(ctx context.Context, orderID, itemID uint, requesterID uint, qty int, reason ReturnReason) (*Order, error)
	ApproveReturn(ctx context.Context, orderID, itemID uint, actor string) (*Order, []uint, error)
	RejectReturn(ctx context.Context, orderID, itemID uint, rejectReason, actor string) (*Order, error)

	MarkPaid(ctx context.Context, orderID uint) error
	MarkShipped(ctx context.Context, orderID uint) error
	MarkDelivered(ctx context.Context, orderID uint) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(database *sql.DB) Repository {
	return &repository{db: database}
}

// CreateOrder turns the user's cart (or an explicit subset of it) into a
// priced, persisted order inside one transaction. Concurrent checkouts by
// the same user are serialized by an advisory lock taken before the cart is
// read; product locks are taken in ascending product-id order.
func (r *repository) CreateOrder(ctx context.Context, params CreateOrderParams) (*Order, []uint, error) {
	var created *Order
	var productIDs []uint

	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`SELECT pg_advisory_xact_lock($1, $2)`,
			checkoutLockClass, params.UserID,
		); err != nil {
			return fmt.Errorf("acquire checkout lock: %w", err)
		}

		lines, err := cart.SelectLines(ctx, tx, params.UserID, params.CartLineIDs)
		if errors.Is(err, cart.ErrSelectionMismatch) {
			return ErrInvalidCartSelection
		}
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCartSelection
		}

		// Fixed global lock order: products ascending by id.
		sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })

		items := make([]OrderItem, 0, len(lines))
		stockBefore := make([]int, 0, len(lines))
		subtotal := decimal.Zero

		for _, l := range lines {
			// The cart's product snapshot must not be trusted once the lock
			// is held; price and stock come from the refreshed row.
			p, err := product.LockForUpdate(ctx, tx, l.ProductID)
			if err != nil {
				return err
			}
			if p.Stock < l.Quantity {
				return product.ErrInsufficientStock
			}
			if err := product.DeductStock(ctx, tx, p.ID, l.Quantity); err != nil {
				return err
			}

			lineSubtotal := p.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
			subtotal = subtotal.Add(lineSubtotal)

			items = append(items, OrderItem{
				ProductID:      p.ID,
				ProductName:    p.Name,
				Quantity:       l.Quantity,
				UnitPrice:      p.Price,
				Subtotal:       lineSubtotal,
				ReturnedAmount: decimal.Zero,
				Status:         ItemNormal,
			})
			stockBefore = append(stockBefore, p.Stock)
			productIDs = append(productIDs, p.ID)
		}

		wallet, err := user.LockWallet(ctx, tx, params.UserID)
		if err != nil {
			return err
		}
		currentTier, err := tier.ForSpend(ctx, tx, wallet.CumulativeSpend)
		if err != nil {
			return err
		}

		tierDiscount := decimal.Zero
		for i := range items {
			tierDiscount = tierDiscount.Add(currentTier.LineDiscount(items[i].Subtotal))
		}

		couponDiscount := decimal.Zero
		if params.CouponID != nil {
			c, err := coupon.Get(ctx, tx, *params.CouponID, params.UserID)
			if err != nil {
				return err
			}
			if time.Now().After(c.ExpiresAt) {
				return coupon.ErrCouponExpired
			}
			if subtotal.LessThan(c.MinSubtotal) {
				return coupon.ErrCouponMinSubtotal
			}
			couponDiscount = c.DiscountFor(subtotal)
			if err := coupon.MarkUsed(ctx, tx, c.ID); err != nil {
				return err
			}
		}

		goods := subtotal.Sub(tierDiscount).Sub(couponDiscount)
		if goods.Sign() < 0 {
			goods = decimal.Zero
		}

		// Points never cover shipping and never drive the payable amount
		// negative.
		usePoints := params.UsePoints
		if maxUsable := goods.Floor().IntPart(); usePoints > maxUsable {
			usePoints = maxUsable
		}
		if usePoints > wallet.PointBalance {
			return ErrInsufficientPoints
		}

		shippingFee := currentTier.ShippingFeeFor(goods)
		finalAmount := goods.Sub(decimal.NewFromInt(usePoints)).Add(shippingFee)
		if finalAmount.Sign() < 0 {
			finalAmount = decimal.Zero
		}

		// Earned points are snapshotted at the current tier's rate but not
		// credited until the delivered transition settles them.
		earnedPoints := currentTier.EarnedPoints(finalAmount.Sub(shippingFee))

		wallet.PointBalance -= usePoints
		wallet.CumulativeSpend = wallet.CumulativeSpend.Add(finalAmount)
		newTier, err := tier.ForSpend(ctx, tx, wallet.CumulativeSpend)
		if err != nil {
			return err
		}
		wallet.TierID = newTier.ID
		if err := user.SaveWallet(ctx, tx, wallet); err != nil {
			return err
		}

		o := &Order{
			UserID:          params.UserID,
			Subtotal:        subtotal,
			TierDiscount:    tierDiscount,
			CouponDiscount:  couponDiscount,
			ShippingFee:     shippingFee,
			FinalAmount:     finalAmount,
			RefundedAmount:  decimal.Zero,
			UsedPoints:      usePoints,
			EarnedPoints:    earnedPoints,
			CouponID:        params.CouponID,
			PaymentMethod:   params.PaymentMethod,
			ShippingName:    params.ShippingName,
			ShippingPhone:   params.ShippingPhone,
			ShippingAddress: params.ShippingAddress,
			Status:          StatusPending,
			Items:           items,
		}
		if err := insertOrder(ctx, tx, o); err != nil {
			return err
		}
		if err := insertItems(ctx, tx, o); err != nil {
			return err
		}

		// Movement ledger rows carry the now-known order id; they are never
		// written before it exists.
		for i := range o.Items {
			it := &o.Items[i]
			if err := product.AppendMovement(ctx, tx, &product.StockMovement{
				ProductID:   it.ProductID,
				OrderID:     o.ID,
				Reason:      product.MovementOrder,
				Delta:       -it.Quantity,
				StockBefore: stockBefore[i],
				StockAfter:  stockBefore[i] - it.Quantity,
				Actor:       params.Actor,
			}); err != nil {
				return err
			}
		}

		if usePoints > 0 {
			if err := user.AppendPointHistory(ctx, tx, &user.PointHistory{
				UserID:       params.UserID,
				OrderID:      &o.ID,
				Amount:       -usePoints,
				Reason:       user.PointReasonUse,
				BalanceAfter: wallet.PointBalance,
			}); err != nil {
				return err
			}
		}

		orderedLineIDs := make([]uint, len(lines))
		for i, l := range lines {
			orderedLineIDs[i] = l.ID
		}
		if err := cart.DeleteLines(ctx, tx, params.UserID, orderedLineIDs); err != nil {
			return err
		}

		created = o
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return created, productIDs, nil
}

func (r *repository) GetOrder(ctx context.Context, orderID uint) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, selectOrderQuery, orderID))
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, selectItemsQuery, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	o.Items, err = scanItems(rows)
	if err != nil {
		return nil, err
	}

	return o, nil
}

func (r *repository) MarkPaid(ctx context.Context, orderID uint) error {
	return r.transition(ctx, orderID, StatusPaid)
}

func (r *repository) MarkShipped(ctx context.Context, orderID uint) error {
	return r.transition(ctx, orderID, StatusShipped)
}

// MarkDelivered stamps the delivered timestamp and settles the deferred
// earned points exactly once.
func (r *repository) MarkDelivered(ctx context.Context, orderID uint) error {
	return db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		o, err := lockOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if !o.Status.CanTransition(StatusDelivered) {
			return ErrInvalidTransition
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE orders
			SET status = $1, delivered_at = NOW(), points_settled = TRUE
			WHERE id = $2
		`, StatusDelivered, o.ID); err != nil {
			return fmt.Errorf("mark delivered: %w", err)
		}

		if o.PointsSettled || o.EarnedPoints == 0 {
			return nil
		}

		wallet, err := user.LockWallet(ctx, tx, o.UserID)
		if err != nil {
			return err
		}
		wallet.PointBalance += o.EarnedPoints
		if err := user.SaveWallet(ctx, tx, wallet); err != nil {
			return err
		}
		return user.AppendPointHistory(ctx, tx, &user.PointHistory{
			UserID:       o.UserID,
			OrderID:      &o.ID,
			Amount:       o.EarnedPoints,
			Reason:       user.PointReasonEarn,
			BalanceAfter: wallet.PointBalance,
		})
	})
}

func (r *repository) transition(ctx context.Context, orderID uint, to OrderStatus) error {
	return db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		o, err := lockOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if !o.Status.CanTransition(to) {
			return ErrInvalidTransition
		}

		var stampCol string
		switch to {
		case StatusPaid:
			stampCol = "paid_at"
		case StatusShipped:
			stampCol = "shipped_at"
		default:
			return ErrInvalidTransition
		}

		query := fmt.Sprintf(`UPDATE orders SET status = $1, %s = NOW() WHERE id = $2`, stampCol)
		if _, err := tx.ExecContext(ctx, query, to, o.ID); err != nil {
			return fmt.Errorf("transition order %d to %s: %w", o.ID, to, err)
		}
		return nil
	})
}

const selectOrderColumns = `
	id, user_id, subtotal, tier_discount, coupon_discount, shipping_fee,
	final_amount, refunded_amount, used_points, earned_points, refunded_points,
	points_settled, coupon_id, payment_method, shipping_name, shipping_phone,
	shipping_address, status, created_at, paid_at, shipped_at, delivered_at, cancelled_at`

const selectOrderQuery = `
	SELECT` + selectOrderColumns + `
	FROM orders
	WHERE id = $1
`

const lockOrderQuery = selectOrderQuery + `	FOR UPDATE
`

const selectItemsQuery = `
	SELECT
		id, order_id, product_id, product_name, quantity, unit_price, subtotal,
		cancelled_quantity, returned_quantity, pending_return_quantity, returned_amount,
		status, return_reason, reject_reason, return_requested_at, return_resolved_at
	FROM order_items
	WHERE order_id = $1
	ORDER BY id
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*Order, error) {
	var o Order
	err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.Subtotal,
		&o.TierDiscount,
		&o.CouponDiscount,
		&o.ShippingFee,
		&o.FinalAmount,
		&o.RefundedAmount,
		&o.UsedPoints,
		&o.EarnedPoints,
		&o.RefundedPoints,
		&o.PointsSettled,
		&o.CouponID,
		&o.PaymentMethod,
		&o.ShippingName,
		&o.ShippingPhone,
		&o.ShippingAddress,
		&o.Status,
		&o.CreatedAt,
		&o.PaidAt,
		&o.ShippedAt,
		&o.DeliveredAt,
		&o.CancelledAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan order: %w", err)
	}
	return &o, nil
}

func scanItems(rows *sql.Rows) ([]OrderItem, error) {
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(
			&it.ID,
			&it.OrderID,
			&it.ProductID,
			&it.ProductName,
			&it.Quantity,
			&it.UnitPrice,
			&it.Subtotal,
			&it.CancelledQuantity,
			&it.ReturnedQuantity,
			&it.PendingReturnQuantity,
			&it.ReturnedAmount,
			&it.Status,
			&it.ReturnReason,
			&it.RejectReason,
			&it.ReturnRequestedAt,
			&it.ReturnResolvedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}
	return items, nil
}

// lockOrder loads the order and its items with the order row under an
// exclusive lock. This lock serializes every mutating operation on the
// order.
func lockOrder(ctx context.Context, tx *sql.Tx, orderID uint) (*Order, error) {
	o, err := scanOrder(tx.QueryRowContext(ctx, lockOrderQuery, orderID))
	if err != nil {
		return nil, err
	}

	rows, err := tx.QueryContext(ctx, selectItemsQuery, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	o.Items, err = scanItems(rows)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func insertOrder(ctx context.Context, tx *sql.Tx, o *Order) error {
	err := tx.QueryRowContext(ctx, `
		INSERT INTO orders (
			user_id, subtotal, tier_discount, coupon_discount, shipping_fee,
			final_amount, refunded_amount, used_points, earned_points, refunded_points,
			points_settled, coupon_id, payment_method, shipping_name, shipping_phone,
			shipping_address, status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		RETURNING id, created_at
	`,
		o.UserID,
		o.Subtotal,
		o.TierDiscount,
		o.CouponDiscount,
		o.ShippingFee,
		o.FinalAmount,
		o.RefundedAmount,
		o.UsedPoints,
		o.EarnedPoints,
		o.RefundedPoints,
		o.PointsSettled,
		o.CouponID,
		o.PaymentMethod,
		o.ShippingName,
		o.ShippingPhone,
		o.ShippingAddress,
		o.Status,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func insertItems(ctx context.Context, tx *sql.Tx, o *Order) error {
	for i := range o.Items {
		it := &o.Items[i]
		it.OrderID = o.ID

		err := tx.QueryRowContext(ctx, `
			INSERT INTO order_items (
				order_id, product_id, product_name, quantity, unit_price, subtotal,
				cancelled_quantity, returned_quantity, pending_return_quantity,
				returned_amount, status
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
			RETURNING id
		`,
			it.OrderID,
			it.ProductID,
			it.ProductName,
			it.Quantity,
			it.UnitPrice,
			it.Subtotal,
			it.CancelledQuantity,
			it.ReturnedQuantity,
			it.PendingReturnQuantity,
			it.ReturnedAmount,
			it.Status,
		).Scan(&it.ID)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func updateItem(ctx context.Context, tx *sql.Tx, it *OrderItem) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE order_items
		SET cancelled_quantity = $1, returned_quantity = $2, pending_return_quantity = $3,
		    returned_amount = $4, status = $5, return_reason = $6, reject_reason = $7,
		    return_requested_at = $8, return_resolved_at = $9
		WHERE id = $10
	`,
		it.CancelledQuantity,
		it.ReturnedQuantity,
		it.PendingReturnQuantity,
		it.ReturnedAmount,
		it.Status,
		it.ReturnReason,
		it.RejectReason,
		it.ReturnRequestedAt,
		it.ReturnResolvedAt,
		it.ID,
	)
	if err != nil {
		return fmt.Errorf("update order item %d: %w", it.ID, err)
	}
	return nil
}

func updateOrderRefund(ctx context.Context, tx *sql.Tx, o *Order) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET refunded_amount = $1, refunded_points = $2
		WHERE id = $3
	`, o.RefundedAmount, o.RefundedPoints, o.ID)
	if err != nil {
		return fmt.Errorf("update order refund counters: %w", err)
	}
	return nil
}

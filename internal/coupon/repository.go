package coupon

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Get loads a coupon owned by the user inside the caller's transaction.
func Get(ctx context.Context, tx *sql.Tx, couponID, userID uint) (*Coupon, error) {
	query := `
		SELECT id, user_id, code, discount_type, value, min_subtotal, expires_at, used_at
		FROM coupons
		WHERE id = $1 AND user_id = $2
	`

	var c Coupon
	err := tx.QueryRowContext(ctx, query, couponID, userID).Scan(
		&c.ID,
		&c.UserID,
		&c.Code,
		&c.Type,
		&c.Value,
		&c.MinSubtotal,
		&c.ExpiresAt,
		&c.UsedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCouponNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get coupon %d: %w", couponID, err)
	}

	return &c, nil
}

// MarkUsed flips the used-flag only if it is still unset. A row count other
// than one means another request consumed the coupon first.
func MarkUsed(ctx context.Context, tx *sql.Tx, couponID uint) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE coupons
		SET used_at = NOW()
		WHERE id = $1 AND used_at IS NULL
	`, couponID)
	if err != nil {
		return fmt.Errorf("mark coupon %d used: %w", couponID, err)
	}

	affected, _ := res.RowsAffected()
	if affected != 1 {
		return ErrCouponAlreadyUsed
	}
	return nil
}

// Release restores the coupon to unused. Called when the linked order is
// fully cancelled.
func Release(ctx context.Context, tx *sql.Tx, couponID uint) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE coupons
		SET used_at = NULL
		WHERE id = $1
	`, couponID)
	if err != nil {
		return fmt.Errorf("release coupon %d: %w", couponID, err)
	}
	return nil
}

package tier

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"
)

var ErrTierNotFound = errors.New("no tier matches cumulative spend")

// ForSpend returns the highest tier whose minimum spend does not exceed the
// given cumulative spend. Runs on the caller's transaction so the tier view
// is consistent with the locked wallet row.
func ForSpend(ctx context.Context, tx *sql.Tx, spend decimal.Decimal) (*Tier, error) {
	query := `
		SELECT id, name, min_spend, discount_rate, point_rate, free_shipping_at, shipping_fee
		FROM tiers
		WHERE min_spend <= $1
		ORDER BY min_spend DESC
		LIMIT 1
	`

	var t Tier
	err := tx.QueryRowContext(ctx, query, spend).Scan(
		&t.ID,
		&t.Name,
		&t.MinSpend,
		&t.DiscountRate,
		&t.PointRate,
		&t.FreeShippingAt,
		&t.ShippingFee,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTierNotFound
	}
	if err != nil {
		return nil, err
	}

	return &t, nil
}

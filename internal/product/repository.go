package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// LockForUpdate loads the product row under an exclusive lock. Callers must
// not trust any earlier read of the same product once the lock is held; the
// returned view is the refreshed one.
func LockForUpdate(ctx context.Context, tx *sql.Tx, productID uint) (*Product, error) {
	query := `
		SELECT id, name, price, stock, sold_count
		FROM products
		WHERE id = $1
		FOR UPDATE
	`

	var p Product
	err := tx.QueryRowContext(ctx, query, productID).Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&p.Stock,
		&p.SoldCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock product %d: %w", productID, err)
	}

	return &p, nil
}

// DeductStock removes qty units and bumps the sold counter. The stock >= qty
// guard makes a negative stock impossible even if a caller skipped the check
// after LockForUpdate.
func DeductStock(ctx context.Context, tx *sql.Tx, productID uint, qty int) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE products
		SET stock = stock - $1, sold_count = sold_count + $1, updated_at = NOW()
		WHERE id = $2 AND stock >= $1
	`, qty, productID)
	if err != nil {
		return fmt.Errorf("deduct stock for product %d: %w", productID, err)
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// RestoreStock returns qty units and reverses the sold counter.
func RestoreStock(ctx context.Context, tx *sql.Tx, productID uint, qty int) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE products
		SET stock = stock + $1, sold_count = sold_count - $1, updated_at = NOW()
		WHERE id = $2
	`, qty, productID)
	if err != nil {
		return fmt.Errorf("restore stock for product %d: %w", productID, err)
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// AppendMovement writes one stock-movement ledger row. Movements are written
// only after the originating order id exists.
func AppendMovement(ctx context.Context, tx *sql.Tx, m *StockMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO stock_movements (id, product_id, order_id, reason, delta, stock_before, stock_after, actor)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, m.ID, m.ProductID, m.OrderID, m.Reason, m.Delta, m.StockBefore, m.StockAfter, m.Actor)
	if err != nil {
		return fmt.Errorf("append stock movement: %w", err)
	}
	return nil
}

package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mercato-be/internal/db"

	"github.com/lib/pq"
)

type AddLineParams struct {
	UserID    uint
	ProductID uint
	Quantity  int
}

// Repository is the standalone cart surface. The order engine does not go
// through it; checkout reads and removes lines in its own transaction via
// SelectLines/DeleteLines below.
type Repository interface {
	AddLine(ctx context.Context, params AddLineParams) (*Line, error)
	UpdateQuantity(ctx context.Context, userID, lineID uint, qty int) (*Line, error)
	RemoveLine(ctx context.Context, userID, lineID uint) error
	ClearCart(ctx context.Context, userID uint) error
	ListByUser(ctx context.Context, userID uint) ([]Line, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(database *sql.DB) Repository {
	return &repository{db: database}
}

// AddLine inserts a new cart line. One line per (user, product); a second add
// for the same product fails rather than silently merging quantities.
func (r *repository) AddLine(ctx context.Context, params AddLineParams) (*Line, error) {
	if params.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	l := Line{
		UserID:    params.UserID,
		ProductID: params.ProductID,
		Quantity:  params.Quantity,
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO carts (user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, params.UserID, params.ProductID, params.Quantity).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return nil, ErrLineAlreadyExists
	}
	if err != nil {
		return nil, fmt.Errorf("add cart line: %w", err)
	}

	return &l, nil
}

func (r *repository) UpdateQuantity(ctx context.Context, userID, lineID uint, qty int) (*Line, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}

	l := Line{ID: lineID, UserID: userID, Quantity: qty}
	err := r.db.QueryRowContext(ctx, `
		UPDATE carts
		SET quantity = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
		RETURNING product_id, created_at, updated_at
	`, qty, lineID, userID).Scan(&l.ProductID, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLineNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update cart line %d: %w", lineID, err)
	}

	return &l, nil
}

func (r *repository) RemoveLine(ctx context.Context, userID, lineID uint) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM carts
		WHERE id = $1 AND user_id = $2
	`, lineID, userID)
	if err != nil {
		return fmt.Errorf("remove cart line %d: %w", lineID, err)
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrLineNotFound
	}
	return nil
}

func (r *repository) ClearCart(ctx context.Context, userID uint) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM carts
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrCartEmpty
	}
	return nil
}

func (r *repository) ListByUser(ctx context.Context, userID uint) ([]Line, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.user_id, c.product_id, c.quantity, p.name, p.price, c.created_at, c.updated_at
		FROM carts c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(
			&l.ID, &l.UserID, &l.ProductID, &l.Quantity,
			&l.ProductName, &l.UnitPrice, &l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart lines: %w", err)
	}

	return lines, nil
}

// SelectLines loads the user's cart lines inside the caller's transaction,
// joined with the product snapshot. With lineIDs empty every line is
// returned; otherwise exactly the requested lines must exist and belong to
// the user, or ErrSelectionMismatch is returned. The caller is expected to
// hold the per-user checkout advisory lock before calling this.
func SelectLines(ctx context.Context, tx *sql.Tx, userID uint, lineIDs []uint) ([]Line, error) {
	query := `
		SELECT c.id, c.user_id, c.product_id, c.quantity, p.name, p.price
		FROM carts c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
	`
	args := []any{userID}

	if len(lineIDs) > 0 {
		query += ` AND c.id = ANY($2)`
		args = append(args, pq.Array(lineIDs))
	}

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select cart lines: %w", err)
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.UserID, &l.ProductID, &l.Quantity, &l.ProductName, &l.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart lines: %w", err)
	}

	if len(lineIDs) > 0 && len(lines) != len(lineIDs) {
		return nil, ErrSelectionMismatch
	}

	return lines, nil
}

// DeleteLines removes the ordered lines from the cart.
func DeleteLines(ctx context.Context, tx *sql.Tx, userID uint, lineIDs []uint) error {
	if len(lineIDs) == 0 {
		return nil
	}

	_, err := tx.ExecContext(ctx, `
		DELETE FROM carts
		WHERE user_id = $1 AND id = ANY($2)
	`, userID, pq.Array(lineIDs))
	if err != nil {
		return fmt.Errorf("delete cart lines: %w", err)
	}
	return nil
}

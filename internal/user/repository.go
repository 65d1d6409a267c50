package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// LockWallet loads the user row under an exclusive lock. Every financial
// mutation of the wallet must go through this read; wallets are the last
// entity locked (after order and products).
func LockWallet(ctx context.Context, tx *sql.Tx, userID uint) (*User, error) {
	query := `
		SELECT id, email, point_balance, cumulative_spend, tier_id
		FROM users
		WHERE id = $1
		FOR UPDATE
	`

	var u User
	err := tx.QueryRowContext(ctx, query, userID).Scan(
		&u.ID,
		&u.Email,
		&u.PointBalance,
		&u.CumulativeSpend,
		&u.TierID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock wallet: %w", err)
	}

	return &u, nil
}

// SaveWallet writes back the wallet fields mutated under the lock.
func SaveWallet(ctx context.Context, tx *sql.Tx, u *User) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE users
		SET point_balance = $1, cumulative_spend = $2, tier_id = $3, updated_at = NOW()
		WHERE id = $4
	`, u.PointBalance, u.CumulativeSpend, u.TierID, u.ID)
	if err != nil {
		return fmt.Errorf("save wallet: %w", err)
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// AppendPointHistory writes one ledger row. BalanceAfter must reflect the
// wallet balance after the mutation it records.
func AppendPointHistory(ctx context.Context, tx *sql.Tx, h *PointHistory) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO point_histories (id, user_id, order_id, amount, reason, balance_after)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, h.ID, h.UserID, h.OrderID, h.Amount, h.Reason, h.BalanceAfter)
	if err != nil {
		return fmt.Errorf("append point history: %w", err)
	}
	return nil
}

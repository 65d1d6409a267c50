package order

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintPtr(v uint) *uint { return &v }

func TestRepository_CancelOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		now := time.Now()
		mock.ExpectBegin()
		mock.ExpectQuery("FROM orders").
			WithArgs(10).
			WillReturnRows(sqlmock.NewRows(orderCols).AddRow(
				10, 1, "30000", "0", "0", "3000", "32500", "0", 500, 300, 0,
				false, nil, "CARD", "Ada", "0812", "1 Example St", "PAID",
				now, now, nil, nil, nil,
			))
		mock.ExpectQuery("FROM order_items").
			WithArgs(10).
			WillReturnRows(sqlmock.NewRows(itemCols).AddRow(
				100, 10, 7, "Keyboard", 3, "10000", "30000", 0, 0, 0, "0",
				"NORMAL", nil, nil, nil, nil,
			))
		mock.ExpectQuery("FROM products").
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows(productCols).AddRow(7, "Keyboard", "10000", 5, 10))
		mock.ExpectExec("UPDATE products").
			WithArgs(3, 7).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO stock_movements").
			WithArgs(sqlmock.AnyArg(), 7, 10, "CANCEL", 3, 5, 8, "user:1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("FROM users").
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows(walletCols).AddRow(1, "ada@example.com", 100, "100000", 1))
		mock.ExpectQuery("FROM tiers").
			WithArgs("67500").
			WillReturnRows(bronzeTierRow())
		mock.ExpectExec("UPDATE users").
			WithArgs(int64(600), "67500", 1, 1).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO point_histories").
			WithArgs(sqlmock.AnyArg(), 1, 10, int64(500), "REFUND", int64(600)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE order_items").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE orders").
			WithArgs("32500", int64(500), "CANCELLED", sqlmock.AnyArg(), 10).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		o, productIDs, err := repo.CancelOrder(ctx, 10, uintPtr(1), "user:1")
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, o.Status)
		assert.True(t, o.RefundedAmount.Equal(dec("32500")))
		assert.Equal(t, int64(500), o.RefundedPoints)
		assert.Equal(t, []uint{7}, productIDs)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("AlreadyCancelledFailsWithoutMutation", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		now := time.Now()
		mock.ExpectBegin()
		mock.ExpectQuery("FROM orders").
			WithArgs(10).
			WillReturnRows(sqlmock.NewRows(orderCols).AddRow(
				10, 1, "30000", "0", "0", "3000", "32500", "32500", 500, 300, 500,
				false, nil, "CARD", "Ada", "0812", "1 Example St", "CANCELLED",
				now, now, nil, nil, now,
			))
		mock.ExpectQuery("FROM order_items").
			WithArgs(10).
			WillReturnRows(sqlmock.NewRows(itemCols))
		mock.ExpectRollback()

		_, _, err = repo.CancelOrder(ctx, 10, uintPtr(1), "user:1")
		assert.ErrorIs(t, err, ErrOrderNotCancellable)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unauthorized", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		now := time.Now()
		mock.ExpectBegin()
		mock.ExpectQuery("FROM orders").
			WithArgs(10).
			WillReturnRows(sqlmock.NewRows(orderCols).AddRow(
				10, 1, "30000", "0", "0", "3000", "32500", "0", 0, 0, 0,
				false, nil, "CARD", "Ada", "0812", "1 Example St", "PAID",
				now, now, nil, nil, nil,
			))
		mock.ExpectQuery("FROM order_items").
			WithArgs(10).
			WillReturnRows(sqlmock.NewRows(itemCols))
		mock.ExpectRollback()

		_, _, err = repo.CancelOrder(ctx, 10, uintPtr(2), "user:2")
		assert.ErrorIs(t, err, ErrUnauthorized)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_CancelItem(t *testing.T) {
	ctx := context.Background()

	// Order subtotal 70,000 over two lines, final 63,500 with 3,000
	// shipping. Cancelling 1 of 3 units of the 30,000 line refunds
	// 8,642.86.
	orderRow := func(now time.Time) *sqlmock.Rows {
		return sqlmock.NewRows(orderCols).AddRow(
			10, 1, "70000", "0", "0", "3000", "63500", "0", 0, 0, 0,
			false, nil, "CARD", "Ada", "0812", "1 Example St", "PAID",
			now, now, nil, nil, nil,
		)
	}
	itemRows := func() *sqlmock.Rows {
		return sqlmock.NewRows(itemCols).
			AddRow(101, 10, 7, "Keyboard", 3, "10000", "30000", 0, 0, 0, "0",
				"NORMAL", nil, nil, nil, nil).
			AddRow(102, 10, 8, "Monitor", 2, "20000", "40000", 0, 0, 0, "0",
				"NORMAL", nil, nil, nil, nil)
	}

	t.Run("ProportionalRefund", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		now := time.Now()
		mock.ExpectBegin()
		mock.ExpectQuery("FROM orders").WithArgs(10).WillReturnRows(orderRow(now))
		mock.ExpectQuery("FROM order_items").WithArgs(10).WillReturnRows(itemRows())
		mock.ExpectQuery("FROM products").
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows(productCols).AddRow(7, "Keyboard", "10000", 5, 10))
		mock.ExpectExec("UPDATE products").
			WithArgs(1, 7).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO stock_movements").
			WithArgs(sqlmock.AnyArg(), 7, 10, "PARTIAL_CANCEL", 1, 5, 6, "user:1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("FROM users").
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows(walletCols).AddRow(1, "ada@example.com", 0, "63500", 1))
		mock.ExpectQuery("FROM tiers").
			WithArgs("54857.14").
			WillReturnRows(bronzeTierRow())
		mock.ExpectExec("UPDATE users").
			WithArgs(int64(0), "54857.14", 1, 1).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE order_items").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE orders").
			WithArgs("8642.86", int64(0), 10).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		o, productIDs, err := repo.CancelItem(ctx, 10, 101, 1, uintPtr(1), "user:1")
		require.NoError(t, err)
		assert.Equal(t, StatusPaid, o.Status)
		assert.True(t, o.RefundedAmount.Equal(dec("8642.86")), "refunded %s", o.RefundedAmount)
		assert.Equal(t, []uint{7}, productIDs)

		it := findItem(o, 101)
		require.NotNil(t, it)
		assert.Equal(t, 1, it.CancelledQuantity)
		assert.Equal(t, ItemNormal, it.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("LastUnitAutoCancelsOrder", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		// Single line, 2 of 3 units already cancelled in prior partials.
		// Cancelling the last unit empties the order: it auto-transitions to
		// CANCELLED, without the shipping refund a full cancel would grant.
		now := time.Now()
		mock.ExpectBegin()
		mock.ExpectQuery("FROM orders").
			WithArgs(10).
			WillReturnRows(sqlmock.NewRows(orderCols).AddRow(
				10, 1, "30000", "0", "0", "3000", "33000", "20000", 0, 0, 0,
				false, nil, "CARD", "Ada", "0812", "1 Example St", "PAID",
				now, now, nil, nil, nil,
			))
		mock.ExpectQuery("FROM order_items").
			WithArgs(10).
			WillReturnRows(sqlmock.NewRows(itemCols).AddRow(
				100, 10, 7, "Keyboard", 3, "10000", "30000", 2, 0, 0, "0",
				"NORMAL", nil, nil, nil, nil,
			))
		mock.ExpectQuery("FROM products").
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows(productCols).AddRow(7, "Keyboard", "10000", 5, 10))
		mock.ExpectExec("UPDATE products").
			WithArgs(1, 7).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO stock_movements").
			WithArgs(sqlmock.AnyArg(), 7, 10, "PARTIAL_CANCEL", 1, 5, 6, "user:1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("FROM users").
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows(walletCols).AddRow(1, "ada@example.com", 0, "33000", 1))
		mock.ExpectQuery("FROM tiers").
			WithArgs("23000").
			WillReturnRows(bronzeTierRow())
		mock.ExpectExec("UPDATE users").
			WithArgs(int64(0), "23000", 1, 1).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE order_items").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE orders").
			WithArgs("30000", int64(0), 10).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE orders").
			WithArgs("CANCELLED", sqlmock.AnyArg(), 10).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		o, _, err := repo.CancelItem(ctx, 10, 100, 1, uintPtr(1), "user:1")
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, o.Status)
		require.NotNil(t, o.CancelledAt)
		assert.True(t, o.RefundedAmount.Equal(dec("30000")))

		it := findItem(o, 100)
		require.NotNil(t, it)
		assert.Equal(t, ItemCancelled, it.Status)
		assert.Equal(t, 3, it.CancelledQuantity)
		assert.Zero(t, it.RemainingQuantity())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("QuantityExceedsRemaining", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		now := time.Now()
		mock.ExpectBegin()
		mock.ExpectQuery("FROM orders").WithArgs(10).WillReturnRows(orderRow(now))
		mock.ExpectQuery("FROM order_items").WithArgs(10).WillReturnRows(itemRows())
		mock.ExpectRollback()

		_, _, err = repo.CancelItem(ctx, 10, 101, 5, uintPtr(1), "user:1")
		assert.ErrorIs(t, err, ErrInvalidQuantity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ItemNotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		now := time.Now()
		mock.ExpectBegin()
		mock.ExpectQuery("FROM orders").WithArgs(10).WillReturnRows(orderRow(now))
		mock.ExpectQuery("FROM order_items").WithArgs(10).WillReturnRows(itemRows())
		mock.ExpectRollback()

		_, _, err = repo.CancelItem(ctx, 10, 999, 1, uintPtr(1), "user:1")
		assert.ErrorIs(t, err, ErrOrderItemNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_RequestReturn(t *testing.T) {
	ctx := context.Background()

	deliveredOrderRow := func(deliveredAt any) *sqlmock.Rows {
		now := time.Now()
		return sqlmock.NewRows(orderCols).AddRow(
			10, 1, "30000", "0", "0", "3000", "33000", "0", 0, 0, 0,
			true, nil, "CARD", "Ada", "0812", "1 Example St", "DELIVERED",
			now, now, now, deliveredAt, nil,
		)
	}
	normalItemRows := func() *sqlmock.Rows {
		return sqlmock.NewRows(itemCols).AddRow(
			100, 10, 7, "Keyboard", 3, "10000", "30000", 0, 0, 0, "0",
			"NORMAL", nil, nil, nil, nil,
		)
	}

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("FROM orders").
			WithArgs(10).
			WillReturnRows(deliveredOrderRow(time.Now().Add(-48 * time.Hour)))
		mock.ExpectQuery("FROM order_items").WithArgs(10).WillReturnRows(normalItemRows())
		mock.ExpectExec("UPDATE order_items").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		o, err := repo.RequestReturn(ctx, 10, 100, 1, 2, ReasonDefect)
		require.NoError(t, err)

		it := findItem(o, 100)
		require.NotNil(t, it)
		assert.Equal(t, ItemReturnRequested, it.Status)
		assert.Equal(t, 2, it.PendingReturnQuantity)
		require.NotNil(t, it.ReturnReason)
		assert.Equal(t, ReasonDefect, *it.ReturnReason)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("WindowExpired", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("FROM orders").
			WithArgs(10).
			WillReturnRows(deliveredOrderRow(time.Now().Add(-20 * 24 * time.Hour)))
		mock.ExpectQuery("FROM order_items").WithArgs(10).WillReturnRows(normalItemRows())
		mock.ExpectRollback()

		_, err = repo.RequestReturn(ctx, 10, 100, 1, 1, ReasonDefect)
		assert.ErrorIs(t, err, ErrReturnWindowExpired)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("MissingDeliveredTimestamp", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("FROM orders").
			WithArgs(10).
			WillReturnRows(deliveredOrderRow(nil))
		mock.ExpectQuery("FROM order_items").WithArgs(10).WillReturnRows(normalItemRows())
		mock.ExpectRollback()

		_, err = repo.RequestReturn(ctx, 10, 100, 1, 1, ReasonDefect)
		assert.ErrorIs(t, err, ErrMissingDeliveredAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotDelivered", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		now := time.Now()
		mock.ExpectBegin()
		mock.ExpectQuery("FROM orders").
			WithArgs(10).
			WillReturnRows(sqlmock.NewRows(orderCols).AddRow(
				10, 1, "30000", "0", "0", "3000", "33000", "0", 0, 0, 0,
				false, nil, "CARD", "Ada", "0812", "1 Example St", "PAID",
				now, now, nil, nil, nil,
			))
		mock.ExpectQuery("FROM order_items").WithArgs(10).WillReturnRows(normalItemRows())
		mock.ExpectRollback()

		_, err = repo.RequestReturn(ctx, 10, 100, 1, 1, ReasonDefect)
		assert.ErrorIs(t, err, ErrOrderNotReturnable)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_ApproveReturn(t *testing.T) {
	ctx := context.Background()

	// Order subtotal 70,000, final 63,500 with 3,000 shipping, 1,000 points
	// used. One unit of the 30,000/3-unit line is pending return.
	requestedOrderRow := func() *sqlmock.Rows {
		now := time.Now()
		return sqlmock.NewRows(orderCols).AddRow(
			10, 1, "70000", "0", "0", "3000", "63500", "0", 1000, 0, 0,
			true, nil, "CARD", "Ada", "0812", "1 Example St", "DELIVERED",
			now, now, now, now, nil,
		)
	}

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		now := time.Now()
		mock.ExpectBegin()
		mock.ExpectQuery("FROM orders").WithArgs(10).WillReturnRows(requestedOrderRow())
		mock.ExpectQuery("FROM order_items").
			WithArgs(10).
			WillReturnRows(sqlmock.NewRows(itemCols).AddRow(
				101, 10, 7, "Keyboard", 3, "10000", "30000", 0, 0, 1, "0",
				"RETURN_REQUESTED", "DEFECT", nil, now, nil,
			))
		mock.ExpectQuery("FROM products").
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows(productCols).AddRow(7, "Keyboard", "10000", 5, 10))
		mock.ExpectExec("UPDATE products").
			WithArgs(1, 7).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO stock_movements").
			WithArgs(sqlmock.AnyArg(), 7, 10, "RETURN", 1, 5, 6, "admin").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("FROM users").
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows(walletCols).AddRow(1, "ada@example.com", 0, "63500", 1))
		mock.ExpectQuery("FROM tiers").
			WithArgs("54857.14").
			WillReturnRows(bronzeTierRow())
		mock.ExpectExec("UPDATE users").
			WithArgs(int64(142), "54857.14", 1, 1).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO point_histories").
			WithArgs(sqlmock.AnyArg(), 1, 10, int64(142), "REFUND", int64(142)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE orders").
			WithArgs("8642.86", int64(142), 10).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE order_items").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		o, productIDs, err := repo.ApproveReturn(ctx, 10, 101, "admin")
		require.NoError(t, err)
		assert.Equal(t, []uint{7}, productIDs)
		assert.True(t, o.RefundedAmount.Equal(dec("8642.86")))
		assert.Equal(t, int64(142), o.RefundedPoints)

		it := findItem(o, 101)
		require.NotNil(t, it)
		assert.Equal(t, ItemReturned, it.Status)
		assert.Equal(t, 1, it.ReturnedQuantity)
		assert.Equal(t, 0, it.PendingReturnQuantity)
		assert.True(t, it.ReturnedAmount.Equal(dec("8642.86")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotRequested", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("FROM orders").WithArgs(10).WillReturnRows(requestedOrderRow())
		mock.ExpectQuery("FROM order_items").
			WithArgs(10).
			WillReturnRows(sqlmock.NewRows(itemCols).AddRow(
				101, 10, 7, "Keyboard", 3, "10000", "30000", 0, 0, 0, "0",
				"NORMAL", nil, nil, nil, nil,
			))
		mock.ExpectRollback()

		_, _, err = repo.ApproveReturn(ctx, 10, 101, "admin")
		assert.ErrorIs(t, err, ErrItemNotReturnable)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("AlreadyReturnedFailsWithoutMutation", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		now := time.Now()
		mock.ExpectBegin()
		mock.ExpectQuery("FROM orders").WithArgs(10).WillReturnRows(requestedOrderRow())
		mock.ExpectQuery("FROM order_items").
			WithArgs(10).
			WillReturnRows(sqlmock.NewRows(itemCols).AddRow(
				101, 10, 7, "Keyboard", 3, "10000", "30000", 0, 1, 0, "8642.86",
				"RETURNED", "DEFECT", nil, now, now,
			))
		mock.ExpectRollback()

		_, _, err = repo.ApproveReturn(ctx, 10, 101, "admin")
		assert.ErrorIs(t, err, ErrItemNotReturnable)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_RejectReturn(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("FROM orders").
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows(orderCols).AddRow(
			10, 1, "30000", "0", "0", "3000", "33000", "0", 0, 0, 0,
			true, nil, "CARD", "Ada", "0812", "1 Example St", "DELIVERED",
			now, now, now, now, nil,
		))
	mock.ExpectQuery("FROM order_items").
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows(itemCols).AddRow(
			100, 10, 7, "Keyboard", 3, "10000", "30000", 0, 0, 2, "0",
			"RETURN_REQUESTED", "CHANGED_MIND", nil, now, nil,
		))
	mock.ExpectExec("UPDATE order_items").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	o, err := repo.RejectReturn(ctx, 10, 100, "item shows signs of use", "admin")
	require.NoError(t, err)

	it := findItem(o, 100)
	require.NotNil(t, it)
	assert.Equal(t, ItemReturnRejected, it.Status)
	assert.Equal(t, 0, it.PendingReturnQuantity)
	require.NotNil(t, it.RejectReason)
	assert.Equal(t, "item shows signs of use", *it.RejectReason)
	// Quantity becomes available again.
	assert.Equal(t, 3, it.RemainingQuantity())
	assert.NoError(t, mock.ExpectationsWereMet())
}

package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestMarkPaid(t *testing.T) {
	t.Run("Pending order transitions to paid", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewOrderRepository(db)

		mock.ExpectExec(`UPDATE "orders" SET .+ WHERE order_code = \$\d+ AND payment_status = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.MarkPaid("DH12345678", "FT42", time.Now())

		assert.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Already-settled order reports false", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewOrderRepository(db)

		mock.ExpectExec(`UPDATE "orders" SET .+ WHERE order_code = \$\d+ AND payment_status = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.MarkPaid("DH12345678", "FT42", time.Now())

		assert.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestCancel(t *testing.T) {
	t.Run("Only pending orders are cancelled", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewOrderRepository(db)

		mock.ExpectExec(`UPDATE "orders" SET .+ WHERE id = \$\d+ AND payment_status = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.Cancel("order-1", "quá hạn", time.Now())

		assert.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetByCode(t *testing.T) {
	t.Run("Missing order maps to ErrOrderNotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewOrderRepository(db)

		mock.ExpectQuery(`SELECT .+ FROM "orders" WHERE order_code = \$\d+`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		order, err := repo.GetByCode("DH00000000")

		assert.ErrorIs(t, err, ErrOrderNotFound)
		assert.Nil(t, order)
	})

	t.Run("Found order is returned", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewOrderRepository(db)

		rows := sqlmock.NewRows([]string{"id", "order_code", "total_amount", "payment_status"}).
			AddRow("order-1", "DH12345678", int64(70000), "pending")
		mock.ExpectQuery(`SELECT .+ FROM "orders" WHERE order_code = \$\d+`).
			WillReturnRows(rows)

		order, err := repo.GetByCode("DH12345678")

		assert.NoError(t, err)
		assert.Equal(t, "DH12345678", order.OrderCode)
		assert.Equal(t, int64(70000), order.TotalAmount)
	})
}

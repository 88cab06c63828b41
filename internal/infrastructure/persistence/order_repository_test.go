package persistence

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/asanorder/backend/internal/domain/shared"
	"github.com/asanorder/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var orderColumns = []string{
	"id", "tenant_id", "version", "order_number", "customer_name", "status",
	"shipping_charges", "payment_amount", "selected_products", "product_quantities", "product_prices",
	"created_at", "updated_at",
}

func newMockOrderRepository(t *testing.T) (*GormOrderRepository, sqlmock.Sqlmock, func()) {
	gormDB, mock, mockDB := newMockGormDB(t)
	return NewGormOrderRepository(gormDB), mock, func() { _ = mockDB.Close() }
}

func newLegacyTestOrder(t *testing.T, tenantID uuid.UUID) *trade.Order {
	t.Helper()
	order, err := trade.NewLegacyOrder(tenantID, "ORD-2026-00001", "Ayesha",
		[]trade.OrderLine{{ProductID: "p1", Name: "Silk Kurta"}},
		trade.AmountMap{"p1": decimal.NewFromInt(2)},
		trade.AmountMap{"p1": decimal.NewFromInt(1500)},
		decimal.NewFromInt(200))
	require.NoError(t, err)
	return order
}

func TestGormOrderRepository_FindByIDForTenant(t *testing.T) {
	t.Run("loads legacy order and decodes blobs", func(t *testing.T) {
		repo, mock, done := newMockOrderRepository(t)
		defer done()

		tenantID, orderID := uuid.New(), uuid.New()
		now := time.Now()
		rows := sqlmock.NewRows(orderColumns).AddRow(
			orderID.String(), tenantID.String(), 3, "ORD-2026-00001", "Ayesha", "DISPATCHED",
			"200", "1000",
			`[{"productId":"p1","variantId":"red","name":"Silk Kurta"}]`,
			`"{\"p1_red\": 2}"`,
			`{"p1_red":"1500","junk":"abc"}`,
			now, now,
		)
		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE .*tenant_id = \$1 AND id = \$2.* LIMIT`).
			WillReturnRows(rows)
		mock.ExpectQuery(`SELECT \* FROM "order_items" WHERE "order_items"."order_id" = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_id"}))

		order, err := repo.FindByIDForTenant(context.Background(), tenantID, orderID)
		require.NoError(t, err)
		assert.Equal(t, orderID, order.ID)
		assert.Equal(t, 3, order.Version)
		assert.Equal(t, trade.OrderStatusDispatched, order.Status)
		require.Len(t, order.SelectedProducts, 1)
		assert.Equal(t, "p1_red", order.SelectedProducts[0].LineKey())
		assert.True(t, order.ProductQuantities["p1_red"].Equal(decimal.NewFromInt(2)))
		assert.NotContains(t, order.ProductPrices, "junk")
		assert.Equal(t, "3200", trade.ComputeOrderTotal(order).String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps missing row to not found", func(t *testing.T) {
		repo, mock, done := newMockOrderRepository(t)
		defer done()

		mock.ExpectQuery(`SELECT \* FROM "orders"`).WillReturnError(gorm.ErrRecordNotFound)

		order, err := repo.FindByIDForTenant(context.Background(), uuid.New(), uuid.New())
		assert.Nil(t, order)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("passes through driver errors", func(t *testing.T) {
		repo, mock, done := newMockOrderRepository(t)
		defer done()

		mock.ExpectQuery(`SELECT \* FROM "orders"`).WillReturnError(errors.New("connection reset"))

		_, err := repo.FindByIDForTenant(context.Background(), uuid.New(), uuid.New())
		require.Error(t, err)
		assert.NotErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormOrderRepository_FindAllForTenant(t *testing.T) {
	repo, mock, done := newMockOrderRepository(t)
	defer done()

	tenantID := uuid.New()
	now := time.Now()
	rows := sqlmock.NewRows(orderColumns).
		AddRow(uuid.NewString(), tenantID.String(), 1, "ORD-2026-00002", "Sana", "PENDING", "0", nil, "[]", "{}", "{}", now, now)

	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE tenant_id = \$1 AND .*ILIKE.* AND status = .* ORDER BY order_number ASC LIMIT`).
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT \* FROM "order_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id"}))

	filter := shared.Filter{
		Search:   "Sana",
		OrderBy:  "order_number",
		OrderDir: "asc",
		Filters:  map[string]any{"status": "PENDING"},
	}
	orders, err := repo.FindAllForTenant(context.Background(), tenantID, filter)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "ORD-2026-00002", orders[0].OrderNumber)
	assert.Nil(t, orders[0].PaymentAmount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOrderRepository_Save(t *testing.T) {
	t.Run("legacy order without items clears item rows", func(t *testing.T) {
		repo, mock, done := newMockOrderRepository(t)
		defer done()

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "orders" .* ON CONFLICT \("id"\) DO UPDATE SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM "order_items" WHERE order_id = \$1`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := repo.Save(context.Background(), newLegacyTestOrder(t, uuid.New()))
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("order with items upserts them", func(t *testing.T) {
		repo, mock, done := newMockOrderRepository(t)
		defer done()

		order, err := trade.NewOrder(uuid.New(), "ORD-2026-00003", "Hina", []trade.OrderLine{
			trade.NewOrderLine("p1", "", "Lawn Suit", decimal.NewFromInt(1), decimal.NewFromInt(3000)),
			trade.NewOrderLine("p2", "blue", "Dupatta", decimal.NewFromInt(2), decimal.NewFromInt(500)),
		}, decimal.Zero)
		require.NoError(t, err)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "orders"`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM "order_items" WHERE order_id = \$1 AND id NOT IN`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`INSERT INTO "order_items"`).WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		assert.NoError(t, repo.Save(context.Background(), order))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when insert fails", func(t *testing.T) {
		repo, mock, done := newMockOrderRepository(t)
		defer done()

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "orders"`).WillReturnError(errors.New("duplicate key"))
		mock.ExpectRollback()

		assert.Error(t, repo.Save(context.Background(), newLegacyTestOrder(t, uuid.New())))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOrderRepository_SaveWithLock(t *testing.T) {
	t.Run("advances version on success", func(t *testing.T) {
		repo, mock, done := newMockOrderRepository(t)
		defer done()

		order := newLegacyTestOrder(t, uuid.New())
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "orders" SET .* WHERE .*version = `).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM "order_items"`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		require.NoError(t, repo.SaveWithLock(context.Background(), order))
		assert.Equal(t, 2, order.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale version is a concurrency conflict", func(t *testing.T) {
		repo, mock, done := newMockOrderRepository(t)
		defer done()

		order := newLegacyTestOrder(t, uuid.New())
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "orders"`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "orders"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectRollback()

		err := repo.SaveWithLock(context.Background(), order)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.Equal(t, 1, order.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row is not found", func(t *testing.T) {
		repo, mock, done := newMockOrderRepository(t)
		defer done()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "orders"`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "orders"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectRollback()

		err := repo.SaveWithLock(context.Background(), newLegacyTestOrder(t, uuid.New()))
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOrderRepository_CountForTenant(t *testing.T) {
	repo, mock, done := newMockOrderRepository(t)
	defer done()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "orders" WHERE tenant_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	count, err := repo.CountForTenant(context.Background(), uuid.New(), shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(42), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOrderRepository_GenerateOrderNumber(t *testing.T) {
	year := time.Now().Year()

	t.Run("first number of the year", func(t *testing.T) {
		repo, mock, done := newMockOrderRepository(t)
		defer done()

		mock.ExpectQuery(`SELECT .*order_number.* FROM "orders"`).
			WillReturnRows(sqlmock.NewRows([]string{"order_number"}))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "orders"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		number, err := repo.GenerateOrderNumber(context.Background(), uuid.New())
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("ORD-%d-00001", year), number)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("continues after latest and skips taken numbers", func(t *testing.T) {
		repo, mock, done := newMockOrderRepository(t)
		defer done()

		mock.ExpectQuery(`SELECT .*order_number.* FROM "orders"`).
			WillReturnRows(sqlmock.NewRows([]string{"order_number"}).AddRow(fmt.Sprintf("ORD-%d-00007", year)))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "orders"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "orders"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		number, err := repo.GenerateOrderNumber(context.Background(), uuid.New())
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("ORD-%d-00009", year), number)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("latest number is ranked by length before value", func(t *testing.T) {
		repo, mock, done := newMockOrderRepository(t)
		defer done()

		mock.ExpectQuery(`SELECT .*order_number.* FROM "orders" WHERE .* ORDER BY LENGTH\(order_number\) DESC,order_number DESC LIMIT`).
			WillReturnRows(sqlmock.NewRows([]string{"order_number"}).AddRow(fmt.Sprintf("ORD-%d-100000", year)))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "orders"`).
			WithArgs(sqlmock.AnyArg(), fmt.Sprintf("ORD-%d-100001", year)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		number, err := repo.GenerateOrderNumber(context.Background(), uuid.New())
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("ORD-%d-100001", year), number)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

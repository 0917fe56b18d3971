package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/example/ec-storefront/internal/domain/category"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var productRowColumns = []string{
	"id", "vendor_id", "name", "description", "price", "category", "display_category",
	"stock_quantity", "in_stock", "images", "available_countries", "created_at", "updated_at",
}

func newMockPostgresStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := NewPostgresStore(sqlx.NewDb(db, "postgres"))
	s.now = func() time.Time { return time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC) }
	return s, mock
}

// ============================================
// Product Tests
// ============================================

func TestPostgresStore_GetProduct(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	created := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(productRowColumns).
		AddRow("p1", "v1", "Zobo", "hibiscus", "12.50", "drinks", "Beverages",
			4, true, []byte(`["z.jpg"]`), []byte(`["NG"]`), created, created)
	mock.ExpectQuery("SELECT .* FROM products WHERE id = \\$1").WithArgs("p1").WillReturnRows(rows)

	p, err := s.GetProduct(context.Background(), "p1")

	require.NoError(t, err)
	assert.Equal(t, "Zobo", p.Name)
	assert.True(t, decimal.RequireFromString("12.5").Equal(p.Price))
	assert.Equal(t, category.Drinks, p.Category)
	assert.Equal(t, []string{"z.jpg"}, p.Images)
	assert.Equal(t, []string{"NG"}, p.AvailableCountries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetProduct_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	mock.ExpectQuery("FROM products").WithArgs("missing").WillReturnRows(sqlmock.NewRows(productRowColumns))

	_, err := s.GetProduct(context.Background(), "missing")

	assert.ErrorIs(t, err, product.ErrProductNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateProduct_Stock(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET stock_quantity = $1, in_stock = $2, updated_at = $3 WHERE id = $4")).
		WithArgs(0, false, sqlmock.AnyArg(), "p1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.UpdateProduct(context.Background(), "p1", product.StockUpdate(-2))

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateProduct_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	mock.ExpectExec("UPDATE products SET").WillReturnResult(sqlmock.NewResult(0, 0))

	name := "renamed"
	err := s.UpdateProduct(context.Background(), "missing", product.Update{Name: &name})

	assert.ErrorIs(t, err, product.ErrProductNotFound)
}

func TestPostgresStore_CreateProduct_AssignsID(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	mock.ExpectExec("INSERT INTO products").WillReturnResult(sqlmock.NewResult(0, 1))

	p, err := s.CreateProduct(context.Background(), &product.Product{
		Name:     "Garri",
		Price:    decimal.NewFromInt(900),
		Category: category.Flour,
		Images:   []string{"g.jpg"},
	})

	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListByCategory(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now()
	rows := sqlmock.NewRows(productRowColumns).
		AddRow("p1", "", "Zobo", "", "300", "other", "Beverages", 1, true, []byte(`[]`), []byte(`[]`), now, now)
	mock.ExpectQuery("regexp_replace\\(lower\\(category\\).*= ANY\\(\\$1\\)").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(rows)

	products, err := s.ListByCategory(context.Background(), category.Drinks)

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Beverages", products[0].DisplayCategory)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ============================================
// Stock Tests
// ============================================

func TestPostgresStore_DecrementStock(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	mock.ExpectQuery("GREATEST\\(p.stock_quantity - \\$2, 0\\)").
		WithArgs("p1", 5, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"stock_quantity", "stock_quantity"}).AddRow(3, 0))

	prev, cur, err := s.DecrementStock(context.Background(), "p1", 5)

	require.NoError(t, err)
	assert.Equal(t, 3, prev)
	assert.Equal(t, 0, cur)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DecrementStock_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	mock.ExpectQuery("UPDATE products p").
		WillReturnRows(sqlmock.NewRows([]string{"stock_quantity", "stock_quantity"}))

	_, _, err := s.DecrementStock(context.Background(), "missing", 1)

	assert.ErrorIs(t, err, product.ErrProductNotFound)
}

func TestPostgresStore_IncrementStock(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	mock.ExpectQuery("p.stock_quantity \\+ \\$2").
		WithArgs("p1", 2, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"stock_quantity", "stock_quantity"}).AddRow(0, 2))

	prev, cur, err := s.IncrementStock(context.Background(), "p1", 2)

	require.NoError(t, err)
	assert.Equal(t, 0, prev)
	assert.Equal(t, 2, cur)
}

// ============================================
// Order Tests
// ============================================

func TestPostgresStore_CreateOrder_Failure(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	mock.ExpectExec("INSERT INTO orders").WillReturnError(errors.New("duplicate key value violates unique constraint"))

	_, err := s.CreateOrder(context.Background(), &order.Order{OrderNumber: "ORD-1", UserID: "u1"})

	assert.ErrorContains(t, err, "duplicate key")
}

func TestPostgresStore_UpdateOrder_Status(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	status := order.StatusShipped
	at := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3")).
		WithArgs("shipped", at, "o1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.UpdateOrder(context.Background(), "o1", order.Update{Status: &status, UpdatedAt: at})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateOrder_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	mock.ExpectExec("UPDATE orders SET").WillReturnResult(sqlmock.NewResult(0, 0))

	status := order.StatusShipped
	err := s.UpdateOrder(context.Background(), "missing", order.Update{Status: &status})

	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestPostgresStore_GetOrder(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	eta := now.Add(7 * 24 * time.Hour)
	rows := sqlmock.NewRows([]string{
		"id", "order_number", "user_id", "items", "subtotal", "shipping", "tax", "total", "currency",
		"status", "payment_status", "payment_method", "shipping_method", "shipping_address", "billing_address",
		"tracking_number", "estimated_delivery", "created_at", "updated_at",
	}).AddRow(
		"o1", "ORD-1", "u1",
		[]byte(`[{"productId":"p1","name":"Zobo","price":"10","quantity":2,"total":"20"}]`),
		"20", "3", "0.5", "23.5", "NGN", "shipped", "paid", "card", "standard",
		[]byte(`{"firstName":"Ada","city":"Lagos"}`), []byte(`{"firstName":"Ada","city":"Lagos"}`),
		"", eta, now, now,
	)
	mock.ExpectQuery("FROM orders WHERE id = \\$1").WithArgs("o1").WillReturnRows(rows)

	o, err := s.GetOrder(context.Background(), "o1")

	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("23.5").Equal(o.Total))
	require.Len(t, o.Items, 1)
	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.Equal(t, "Lagos", o.ShippingAddress.City)
	require.NotNil(t, o.EstimatedDelivery)
	assert.Equal(t, eta, *o.EstimatedDelivery)
	assert.Equal(t, order.PaymentPaid, o.PaymentStatus)
}

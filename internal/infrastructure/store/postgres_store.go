package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/ec-storefront/internal/domain/category"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// normalizedColumn mirrors category.Normalize in SQL.
const normalizedColumn = `regexp_replace(lower(%s), '[[:space:]_/-]', '', 'g')`

const productColumns = `id, vendor_id, name, description, price, category, display_category,
	stock_quantity, in_stock, images, available_countries, created_at, updated_at`

const orderColumns = `id, order_number, user_id, items, subtotal, shipping, tax, total, currency,
	status, payment_status, payment_method, shipping_method, shipping_address, billing_address,
	tracking_number, estimated_delivery, created_at, updated_at`

// PostgresStore stores products and orders in PostgreSQL. Slices and
// addresses are kept in JSONB columns.
type PostgresStore struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

type productRow struct {
	ID                 string          `db:"id"`
	VendorID           string          `db:"vendor_id"`
	Name               string          `db:"name"`
	Description        string          `db:"description"`
	Price              decimal.Decimal `db:"price"`
	Category           string          `db:"category"`
	DisplayCategory    string          `db:"display_category"`
	StockQuantity      int             `db:"stock_quantity"`
	InStock            bool            `db:"in_stock"`
	Images             []byte          `db:"images"`
	AvailableCountries []byte          `db:"available_countries"`
	CreatedAt          time.Time       `db:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at"`
}

func (r productRow) product() (*product.Product, error) {
	p := &product.Product{
		ID:              r.ID,
		VendorID:        r.VendorID,
		Name:            r.Name,
		Description:     r.Description,
		Price:           r.Price,
		Category:        category.ID(r.Category),
		DisplayCategory: r.DisplayCategory,
		StockQuantity:   r.StockQuantity,
		InStock:         r.InStock,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if err := unmarshalColumn(r.Images, &p.Images); err != nil {
		return nil, fmt.Errorf("product %s images: %w", r.ID, err)
	}
	if err := unmarshalColumn(r.AvailableCountries, &p.AvailableCountries); err != nil {
		return nil, fmt.Errorf("product %s countries: %w", r.ID, err)
	}
	return p, nil
}

type orderRow struct {
	ID                string          `db:"id"`
	OrderNumber       string          `db:"order_number"`
	UserID            string          `db:"user_id"`
	Items             []byte          `db:"items"`
	Subtotal          decimal.Decimal `db:"subtotal"`
	Shipping          decimal.Decimal `db:"shipping"`
	Tax               decimal.Decimal `db:"tax"`
	Total             decimal.Decimal `db:"total"`
	Currency          string          `db:"currency"`
	Status            string          `db:"status"`
	PaymentStatus     string          `db:"payment_status"`
	PaymentMethod     string          `db:"payment_method"`
	ShippingMethod    string          `db:"shipping_method"`
	ShippingAddress   []byte          `db:"shipping_address"`
	BillingAddress    []byte          `db:"billing_address"`
	TrackingNumber    string          `db:"tracking_number"`
	EstimatedDelivery sql.NullTime    `db:"estimated_delivery"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

func (r orderRow) order() (*order.Order, error) {
	o := &order.Order{
		ID:             r.ID,
		OrderNumber:    r.OrderNumber,
		UserID:         r.UserID,
		Subtotal:       r.Subtotal,
		Shipping:       r.Shipping,
		Tax:            r.Tax,
		Total:          r.Total,
		Currency:       r.Currency,
		Status:         order.Status(r.Status),
		PaymentStatus:  order.PaymentStatus(r.PaymentStatus),
		PaymentMethod:  r.PaymentMethod,
		ShippingMethod: r.ShippingMethod,
		TrackingNumber: r.TrackingNumber,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if r.EstimatedDelivery.Valid {
		t := r.EstimatedDelivery.Time
		o.EstimatedDelivery = &t
	}
	if err := unmarshalColumn(r.Items, &o.Items); err != nil {
		return nil, fmt.Errorf("order %s items: %w", r.ID, err)
	}
	if err := unmarshalColumn(r.ShippingAddress, &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("order %s shipping address: %w", r.ID, err)
	}
	if err := unmarshalColumn(r.BillingAddress, &o.BillingAddress); err != nil {
		return nil, fmt.Errorf("order %s billing address: %w", r.ID, err)
	}
	return o, nil
}

// GetProduct retrieves a product by id
func (s *PostgresStore) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	var row productRow
	err := s.db.GetContext(ctx, &row, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, product.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.product()
}

// UpdateProduct applies the non-nil fields of u
func (s *PostgresStore) UpdateProduct(ctx context.Context, id string, u product.Update) error {
	set := newSetClause()
	if u.Name != nil {
		set.add("name", *u.Name)
	}
	if u.Description != nil {
		set.add("description", *u.Description)
	}
	if u.Price != nil {
		set.add("price", *u.Price)
	}
	if u.Category != nil {
		set.add("category", string(*u.Category))
	}
	if u.DisplayCategory != nil {
		set.add("display_category", *u.DisplayCategory)
	}
	if u.StockQuantity != nil {
		set.add("stock_quantity", *u.StockQuantity)
	}
	if u.InStock != nil {
		set.add("in_stock", *u.InStock)
	}
	if u.Images != nil {
		if err := set.addJSON("images", u.Images); err != nil {
			return err
		}
	}
	if u.AvailableCountries != nil {
		if err := set.addJSON("available_countries", u.AvailableCountries); err != nil {
			return err
		}
	}
	set.add("updated_at", s.now())

	return s.execUpdate(ctx, "products", id, set, product.ErrProductNotFound)
}

// CreateProduct inserts p, assigning an id when it has none
func (s *PostgresStore) CreateProduct(ctx context.Context, p *product.Product) (*product.Product, error) {
	created := *p
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	images, err := marshalColumn(created.Images)
	if err != nil {
		return nil, err
	}
	countries, err := marshalColumn(created.AvailableCountries)
	if err != nil {
		return nil, err
	}

	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES (:id, :vendor_id, :name, :description, :price, :category, :display_category,
			:stock_quantity, :in_stock, :images, :available_countries, :created_at, :updated_at)`,
		productRow{
			ID:                 created.ID,
			VendorID:           created.VendorID,
			Name:               created.Name,
			Description:        created.Description,
			Price:              created.Price,
			Category:           string(created.Category),
			DisplayCategory:    created.DisplayCategory,
			StockQuantity:      created.StockQuantity,
			InStock:            created.InStock,
			Images:             images,
			AvailableCountries: countries,
			CreatedAt:          created.CreatedAt,
			UpdatedAt:          created.UpdatedAt,
		})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// ListProducts returns every product, newest first
func (s *PostgresStore) ListProducts(ctx context.Context) ([]*product.Product, error) {
	var rows []productRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT `+productColumns+` FROM products ORDER BY created_at DESC`); err != nil {
		return nil, err
	}
	return productsFromRows(rows)
}

// ListByCategory returns the products whose normalized category or
// display category equals one of the keys the filter matches.
func (s *PostgresStore) ListByCategory(ctx context.Context, id category.ID) ([]*product.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products
		WHERE ` + fmt.Sprintf(normalizedColumn, "category") + ` = ANY($1)
		   OR ` + fmt.Sprintf(normalizedColumn, "display_category") + ` = ANY($1)
		ORDER BY created_at DESC`

	var rows []productRow
	if err := s.db.SelectContext(ctx, &rows, q, pq.Array(category.MatchKeys(string(id)))); err != nil {
		return nil, err
	}
	return productsFromRows(rows)
}

// DecrementStock lowers stock by quantity in one statement, flooring at
// zero, and returns the stock before and after.
func (s *PostgresStore) DecrementStock(ctx context.Context, id string, quantity int) (int, int, error) {
	return s.adjustStock(ctx, id, `GREATEST(p.stock_quantity - $2, 0)`, quantity)
}

// IncrementStock raises stock by quantity in one statement.
func (s *PostgresStore) IncrementStock(ctx context.Context, id string, quantity int) (int, int, error) {
	return s.adjustStock(ctx, id, `p.stock_quantity + $2`, quantity)
}

func (s *PostgresStore) adjustStock(ctx context.Context, id, next string, quantity int) (int, int, error) {
	q := `
		WITH prev AS (
			SELECT id, stock_quantity FROM products WHERE id = $1 FOR UPDATE
		)
		UPDATE products p
		SET stock_quantity = ` + next + `,
			in_stock = ` + next + ` > 0,
			updated_at = $3
		FROM prev
		WHERE p.id = prev.id
		RETURNING prev.stock_quantity, p.stock_quantity`

	var prev, cur int
	err := s.db.QueryRowxContext(ctx, q, id, quantity, s.now()).Scan(&prev, &cur)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, product.ErrProductNotFound
	}
	if err != nil {
		return 0, 0, err
	}
	return prev, cur, nil
}

// CreateOrder inserts o, assigning an id when it has none
func (s *PostgresStore) CreateOrder(ctx context.Context, o *order.Order) (*order.Order, error) {
	created := *o
	if created.ID == "" {
		created.ID = uuid.NewString()
	}

	row := orderRow{
		ID:             created.ID,
		OrderNumber:    created.OrderNumber,
		UserID:         created.UserID,
		Subtotal:       created.Subtotal,
		Shipping:       created.Shipping,
		Tax:            created.Tax,
		Total:          created.Total,
		Currency:       created.Currency,
		Status:         string(created.Status),
		PaymentStatus:  string(created.PaymentStatus),
		PaymentMethod:  created.PaymentMethod,
		ShippingMethod: created.ShippingMethod,
		TrackingNumber: created.TrackingNumber,
		CreatedAt:      created.CreatedAt,
		UpdatedAt:      created.UpdatedAt,
	}
	if created.EstimatedDelivery != nil {
		row.EstimatedDelivery = sql.NullTime{Time: *created.EstimatedDelivery, Valid: true}
	}
	var err error
	if row.Items, err = marshalColumn(created.Items); err != nil {
		return nil, err
	}
	if row.ShippingAddress, err = marshalColumn(created.ShippingAddress); err != nil {
		return nil, err
	}
	if row.BillingAddress, err = marshalColumn(created.BillingAddress); err != nil {
		return nil, err
	}

	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES (:id, :order_number, :user_id, :items, :subtotal, :shipping, :tax, :total, :currency,
			:status, :payment_status, :payment_method, :shipping_method, :shipping_address, :billing_address,
			:tracking_number, :estimated_delivery, :created_at, :updated_at)`, row)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateOrder applies the non-nil fields of u
func (s *PostgresStore) UpdateOrder(ctx context.Context, id string, u order.Update) error {
	set := newSetClause()
	if u.Status != nil {
		set.add("status", string(*u.Status))
	}
	if u.PaymentStatus != nil {
		set.add("payment_status", string(*u.PaymentStatus))
	}
	if u.TrackingNumber != nil {
		set.add("tracking_number", *u.TrackingNumber)
	}
	if u.EstimatedDelivery != nil {
		set.add("estimated_delivery", *u.EstimatedDelivery)
	}
	if u.ShippingAddress != nil {
		if err := set.addJSON("shipping_address", u.ShippingAddress); err != nil {
			return err
		}
	}
	if u.BillingAddress != nil {
		if err := set.addJSON("billing_address", u.BillingAddress); err != nil {
			return err
		}
	}
	updatedAt := u.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = s.now()
	}
	set.add("updated_at", updatedAt)

	return s.execUpdate(ctx, "orders", id, set, order.ErrOrderNotFound)
}

// GetOrder retrieves an order by id
func (s *PostgresStore) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	var row orderRow
	err := s.db.GetContext(ctx, &row, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, order.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.order()
}

// ListOrders returns the orders of userID, or all orders when userID is empty
func (s *PostgresStore) ListOrders(ctx context.Context, userID string) ([]*order.Order, error) {
	var rows []orderRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+orderColumns+` FROM orders
		WHERE ($1 = '' OR user_id = $1)
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}

	orders := make([]*order.Order, 0, len(rows))
	for _, r := range rows {
		o, err := r.order()
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (s *PostgresStore) execUpdate(ctx context.Context, table, id string, set *setClause, notFound error) error {
	args := append(set.args, id)
	q := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $%d`, table, strings.Join(set.columns, ", "), len(args))

	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// setClause accumulates "column = $n" assignments for a partial update.
type setClause struct {
	columns []string
	args    []any
}

func newSetClause() *setClause {
	return &setClause{}
}

func (c *setClause) add(column string, value any) {
	c.args = append(c.args, value)
	c.columns = append(c.columns, fmt.Sprintf("%s = $%d", column, len(c.args)))
}

func (c *setClause) addJSON(column string, value any) error {
	b, err := marshalColumn(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", column, err)
	}
	c.add(column, b)
	return nil
}

func productsFromRows(rows []productRow) ([]*product.Product, error) {
	products := make([]*product.Product, 0, len(rows))
	for _, r := range rows {
		p, err := r.product()
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func marshalColumn(v any) ([]byte, error) {
	return json.Marshal(v)
}

func unmarshalColumn(b []byte, v any) error {
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, v)
}

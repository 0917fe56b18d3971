package product

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/example/ec-storefront/internal/domain/category"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrInvalidName      = errors.New("name is required")
	ErrInvalidPrice     = errors.New("price must not be negative")
	ErrInvalidStock     = errors.New("stock quantity must not be negative")
	ErrNoImages         = errors.New("at least one image is required")
	ErrQueryUnsupported = errors.New("query not supported by store")
)

type Product struct {
	ID                 string          `json:"id"`
	VendorID           string          `json:"vendorId,omitempty"`
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	Price              decimal.Decimal `json:"price"`
	Category           category.ID     `json:"category"`
	DisplayCategory    string          `json:"displayCategory,omitempty"`
	StockQuantity      int             `json:"stockQuantity"`
	InStock            bool            `json:"inStock"`
	Images             []string        `json:"images"`
	AvailableCountries []string        `json:"availableCountries,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// Validate checks that the product is publishable.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrInvalidName
	}
	if p.Price.IsNegative() || !p.Price.Equal(p.Price.Round(2)) {
		return ErrInvalidPrice
	}
	if p.StockQuantity < 0 {
		return ErrInvalidStock
	}
	for _, img := range p.Images {
		if strings.TrimSpace(img) != "" {
			return nil
		}
	}
	return ErrNoImages
}

// IsAvailableIn reports whether the product can be shown and sold in
// country. An empty country list means everywhere.
func (p *Product) IsAvailableIn(country string) bool {
	if len(p.AvailableCountries) == 0 || country == "" {
		return true
	}
	for _, c := range p.AvailableCountries {
		if strings.EqualFold(strings.TrimSpace(c), strings.TrimSpace(country)) {
			return true
		}
	}
	return false
}

// Bucket returns the single canonical category the product is listed under.
func (p *Product) Bucket() category.ID {
	return category.Default().Bucket(string(p.Category), p.DisplayCategory)
}

// Update is a partial product update. Nil fields are left unchanged.
type Update struct {
	Name               *string
	Description        *string
	Price              *decimal.Decimal
	Category           *category.ID
	DisplayCategory    *string
	StockQuantity      *int
	InStock            *bool
	Images             []string
	AvailableCountries []string
}

// StockUpdate sets the stock quantity, floored at zero, together with the
// matching in-stock flag.
func StockUpdate(quantity int) Update {
	if quantity < 0 {
		quantity = 0
	}
	inStock := quantity > 0
	return Update{StockQuantity: &quantity, InStock: &inStock}
}

// Apply merges u into p.
func (u Update) Apply(p *Product) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.DisplayCategory != nil {
		p.DisplayCategory = *u.DisplayCategory
	}
	if u.StockQuantity != nil {
		p.StockQuantity = *u.StockQuantity
	}
	if u.InStock != nil {
		p.InStock = *u.InStock
	}
	if u.Images != nil {
		p.Images = append([]string(nil), u.Images...)
	}
	if u.AvailableCountries != nil {
		p.AvailableCountries = append([]string(nil), u.AvailableCountries...)
	}
}

// Store is the product persistence collaborator.
type Store interface {
	GetProduct(ctx context.Context, id string) (*Product, error)
	UpdateProduct(ctx context.Context, id string, u Update) error
	CreateProduct(ctx context.Context, p *Product) (*Product, error)
	ListProducts(ctx context.Context) ([]*Product, error)
}

// StockDecrementer is implemented by stores that can adjust stock in a
// single atomic operation with a floor of zero.
type StockDecrementer interface {
	DecrementStock(ctx context.Context, id string, quantity int) (previous, current int, err error)
	IncrementStock(ctx context.Context, id string, quantity int) (previous, current int, err error)
}

// CategoryQuerier is implemented by stores that can prefilter products by
// stored category. ErrQueryUnsupported asks the caller to filter in process.
type CategoryQuerier interface {
	ListByCategory(ctx context.Context, id category.ID) ([]*Product, error)
}

package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/rs/zerolog/log"
)

var ErrInvalidQuantity = errors.New("quantity must be positive")

// Adjustment records the outcome of a single stock change.
type Adjustment struct {
	ProductID string `json:"productId"`
	Previous  int    `json:"previous"`
	Current   int    `json:"current"`
	InStock   bool   `json:"inStock"`
	Atomic    bool   `json:"atomic"`
}

// Adjuster changes product stock while keeping stockQuantity >= 0 and
// inStock == (stockQuantity > 0).
//
// Stores that implement product.StockDecrementer get a single atomic
// update. Every other store gets a read-modify-write with no compare and
// swap: two concurrent decrements of the same product can both read the
// same starting stock, and the last write wins.
type Adjuster struct {
	products product.Store
}

func NewAdjuster(products product.Store) *Adjuster {
	return &Adjuster{products: products}
}

// Decrement removes quantity units from productID, flooring at zero.
func (a *Adjuster) Decrement(ctx context.Context, productID string, quantity int) (Adjustment, error) {
	if quantity <= 0 {
		return Adjustment{ProductID: productID}, ErrInvalidQuantity
	}

	if atomic, ok := a.products.(product.StockDecrementer); ok {
		prev, cur, err := atomic.DecrementStock(ctx, productID, quantity)
		if err != nil {
			return Adjustment{ProductID: productID}, fmt.Errorf("decrement stock for %s: %w", productID, err)
		}
		return newAdjustment(productID, prev, cur, true), nil
	}

	return a.readModifyWrite(ctx, productID, func(cur int) int { return cur - quantity })
}

// Restock adds quantity units to productID.
func (a *Adjuster) Restock(ctx context.Context, productID string, quantity int) (Adjustment, error) {
	if quantity <= 0 {
		return Adjustment{ProductID: productID}, ErrInvalidQuantity
	}

	if atomic, ok := a.products.(product.StockDecrementer); ok {
		prev, cur, err := atomic.IncrementStock(ctx, productID, quantity)
		if err != nil {
			return Adjustment{ProductID: productID}, fmt.Errorf("restock %s: %w", productID, err)
		}
		return newAdjustment(productID, prev, cur, true), nil
	}

	return a.readModifyWrite(ctx, productID, func(cur int) int { return cur + quantity })
}

func (a *Adjuster) readModifyWrite(ctx context.Context, productID string, next func(int) int) (Adjustment, error) {
	p, err := a.products.GetProduct(ctx, productID)
	if err != nil {
		return Adjustment{ProductID: productID}, fmt.Errorf("read stock for %s: %w", productID, err)
	}

	prev := p.StockQuantity
	update := product.StockUpdate(next(prev))
	if err := a.products.UpdateProduct(ctx, productID, update); err != nil {
		return Adjustment{ProductID: productID, Previous: prev}, fmt.Errorf("write stock for %s: %w", productID, err)
	}

	adj := newAdjustment(productID, prev, *update.StockQuantity, false)
	log.Debug().Str("component", "inventory").
		Str("product_id", productID).
		Int("previous", adj.Previous).
		Int("current", adj.Current).
		Msg("stock adjusted")
	return adj, nil
}

func newAdjustment(productID string, prev, cur int, atomic bool) Adjustment {
	return Adjustment{ProductID: productID, Previous: prev, Current: cur, InStock: cur > 0, Atomic: atomic}
}

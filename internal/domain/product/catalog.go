package product

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/ec-storefront/internal/domain/category"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Filter narrows a storefront product listing. Zero values disable a field.
type Filter struct {
	Category    string
	Country     string
	VendorID    string
	InStockOnly bool
}

// ImportRecord is one product in a bulk JSON import file.
type ImportRecord struct {
	VendorID           string          `json:"vendorId"`
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	Price              decimal.Decimal `json:"price"`
	Category           string          `json:"category"`
	DisplayCategory    string          `json:"displayCategory"`
	StockQuantity      int             `json:"stockQuantity"`
	Images             []string        `json:"images"`
	AvailableCountries []string        `json:"availableCountries"`
}

// ImportFailure describes a record that was not imported.
type ImportFailure struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Error string `json:"error"`
}

// ImportReport summarises a bulk import.
type ImportReport struct {
	Imported []string        `json:"imported"`
	Failed   []ImportFailure `json:"failed"`
}

// Catalog serves product listings and admin-side product creation.
type Catalog struct {
	store    Store
	resolver *category.Resolver
	now      func() time.Time
}

func NewCatalog(s Store) *Catalog {
	return &Catalog{
		store:    s,
		resolver: category.Default(),
		now:      time.Now,
	}
}

// Get returns a single product.
func (c *Catalog) Get(ctx context.Context, id string) (*Product, error) {
	return c.store.GetProduct(ctx, id)
}

// List returns the products visible under f.
func (c *Catalog) List(ctx context.Context, f Filter) ([]*Product, error) {
	candidates, err := c.candidates(ctx, f.Category)
	if err != nil {
		return nil, err
	}

	out := make([]*Product, 0, len(candidates))
	for _, p := range candidates {
		if f.Category != "" && !c.resolver.Matches(string(p.Category), p.DisplayCategory, f.Category) {
			continue
		}
		if !p.IsAvailableIn(f.Country) {
			continue
		}
		if f.VendorID != "" && p.VendorID != f.VendorID {
			continue
		}
		if f.InStockOnly && !p.InStock {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// candidates asks the store for a category-prefiltered set when it can,
// and falls back to a full listing otherwise.
func (c *Catalog) candidates(ctx context.Context, filter string) ([]*Product, error) {
	key := category.Normalize(filter)
	querier, ok := c.store.(CategoryQuerier)
	if key == "" || key == "others" || key == string(category.Other) || !ok {
		return c.store.ListProducts(ctx)
	}

	products, err := querier.ListByCategory(ctx, category.ID(key))
	if errors.Is(err, ErrQueryUnsupported) {
		log.Debug().Str("component", "catalog").Str("category", key).
			Msg("store cannot prefilter by category, filtering in process")
		return c.store.ListProducts(ctx)
	}
	return products, err
}

// Create validates p, resolves its category and persists it.
func (c *Catalog) Create(ctx context.Context, p *Product) (*Product, error) {
	c.prepare(p)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return c.store.CreateProduct(ctx, p)
}

// Import creates every valid record. Invalid records and per-record store
// failures are reported without aborting the import.
func (c *Catalog) Import(ctx context.Context, records []ImportRecord) (ImportReport, error) {
	report := ImportReport{Imported: []string{}, Failed: []ImportFailure{}}

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		p := rec.product()
		created, err := c.Create(ctx, p)
		if err != nil {
			report.Failed = append(report.Failed, ImportFailure{Index: i, Name: rec.Name, Error: err.Error()})
			log.Warn().Str("component", "catalog").Int("index", i).Str("name", rec.Name).Err(err).
				Msg("product import record rejected")
			continue
		}
		report.Imported = append(report.Imported, created.ID)
	}

	log.Info().Str("component", "catalog").
		Int("imported", len(report.Imported)).
		Int("failed", len(report.Failed)).
		Msg("product import finished")
	return report, nil
}

func (c *Catalog) prepare(p *Product) {
	raw := string(p.Category)
	resolved := c.resolver.Bucket(raw, p.DisplayCategory)
	if p.DisplayCategory == "" && category.Normalize(raw) != string(resolved) {
		p.DisplayCategory = strings.TrimSpace(raw)
	}
	p.Category = resolved
	p.InStock = p.StockQuantity > 0

	now := c.now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}

func (r ImportRecord) product() *Product {
	return &Product{
		VendorID:           r.VendorID,
		Name:               strings.TrimSpace(r.Name),
		Description:        r.Description,
		Price:              r.Price,
		Category:           category.ID(r.Category),
		DisplayCategory:    r.DisplayCategory,
		StockQuantity:      r.StockQuantity,
		Images:             r.Images,
		AvailableCountries: r.AvailableCountries,
	}
}

func (f ImportFailure) String() string {
	return fmt.Sprintf("#%d %s: %s", f.Index, f.Name, f.Error)
}

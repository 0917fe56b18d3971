package product_test

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/example/ec-storefront/internal/domain/category"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/infrastructure/store/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// querierStore adds a scripted category prefilter to the mock store.
type querierStore struct {
	*mocks.MockProductStore
	result []*product.Product
	err    error
	calls  []category.ID
}

func (s *querierStore) ListByCategory(ctx context.Context, id category.ID) ([]*product.Product, error) {
	s.calls = append(s.calls, id)
	return s.result, s.err
}

func newProduct(id, cat, display string) *product.Product {
	return &product.Product{
		ID:              id,
		Name:            "Product " + id,
		Price:           decimal.NewFromInt(100),
		Category:        category.ID(cat),
		DisplayCategory: display,
		StockQuantity:   1,
		InStock:         true,
		Images:          []string{"a.jpg"},
	}
}

func ids(products []*product.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	sort.Strings(out)
	return out
}

// ============================================
// Create Tests
// ============================================

func TestCatalog_Create_ResolvesCategory(t *testing.T) {
	store := mocks.NewMockProductStore()
	c := product.NewCatalog(store)

	p, err := c.Create(context.Background(), newProduct("", "Drinks & Beverages", ""))

	require.NoError(t, err)
	assert.Equal(t, category.Drinks, p.Category)
	assert.Equal(t, "Drinks & Beverages", p.DisplayCategory)
	assert.False(t, p.CreatedAt.IsZero())
}

func TestCatalog_Create_CanonicalCategoryKeepsEmptyDisplay(t *testing.T) {
	store := mocks.NewMockProductStore()
	c := product.NewCatalog(store)

	p, err := c.Create(context.Background(), newProduct("", "rice", ""))

	require.NoError(t, err)
	assert.Equal(t, category.Rice, p.Category)
	assert.Empty(t, p.DisplayCategory)
}

func TestCatalog_Create_UnknownCategoryIsOther(t *testing.T) {
	store := mocks.NewMockProductStore()
	c := product.NewCatalog(store)

	p, err := c.Create(context.Background(), newProduct("", "Unobtainium", ""))

	require.NoError(t, err)
	assert.Equal(t, category.Other, p.Category)
	assert.Equal(t, "Unobtainium", p.DisplayCategory)
}

func TestCatalog_Create_SetsInStockFromQuantity(t *testing.T) {
	store := mocks.NewMockProductStore()
	c := product.NewCatalog(store)
	in := newProduct("", "rice", "")
	in.StockQuantity = 0
	in.InStock = true

	p, err := c.Create(context.Background(), in)

	require.NoError(t, err)
	assert.False(t, p.InStock)
}

func TestCatalog_Create_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*product.Product)
		want   error
	}{
		{"no name", func(p *product.Product) { p.Name = " " }, product.ErrInvalidName},
		{"negative price", func(p *product.Product) { p.Price = decimal.NewFromInt(-5) }, product.ErrInvalidPrice},
		{"sub-cent price", func(p *product.Product) { p.Price = decimal.RequireFromString("1.999") }, product.ErrInvalidPrice},
		{"negative stock", func(p *product.Product) { p.StockQuantity = -1 }, product.ErrInvalidStock},
		{"no images", func(p *product.Product) { p.Images = []string{""} }, product.ErrNoImages},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := mocks.NewMockProductStore()
			p := newProduct("", "rice", "")
			tt.mutate(p)

			_, err := product.NewCatalog(store).Create(context.Background(), p)

			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, store.CreateCalls)
		})
	}
}

// ============================================
// List Tests
// ============================================

func seededStore() *mocks.MockProductStore {
	store := mocks.NewMockProductStore()
	store.SetData(newProduct("drinks", "drinks", ""))
	store.SetData(newProduct("bev", "other", "Beverages"))
	store.SetData(newProduct("rice", "rice", "Rice & Grains"))
	store.SetData(newProduct("legacy", "gadgets", "Electronics"))
	return store
}

func TestCatalog_List_NoFilter(t *testing.T) {
	products, err := product.NewCatalog(seededStore()).List(context.Background(), product.Filter{})

	require.NoError(t, err)
	assert.Len(t, products, 4)
}

func TestCatalog_List_DrinksIncludesBeverages(t *testing.T) {
	products, err := product.NewCatalog(seededStore()).List(context.Background(), product.Filter{Category: "Drinks"})

	require.NoError(t, err)
	assert.Equal(t, []string{"bev", "drinks"}, ids(products))
}

func TestCatalog_List_Others(t *testing.T) {
	products, err := product.NewCatalog(seededStore()).List(context.Background(), product.Filter{Category: "others"})

	require.NoError(t, err)
	assert.Equal(t, []string{"legacy"}, ids(products))
}

func TestCatalog_List_CountryVendorAndStock(t *testing.T) {
	store := mocks.NewMockProductStore()
	ng := newProduct("ng", "rice", "")
	ng.AvailableCountries = []string{"NG"}
	ng.VendorID = "v1"
	gh := newProduct("gh", "rice", "")
	gh.AvailableCountries = []string{"GH"}
	gh.VendorID = "v1"
	empty := newProduct("empty", "rice", "")
	empty.StockQuantity = 0
	empty.InStock = false
	store.SetData(ng)
	store.SetData(gh)
	store.SetData(empty)
	c := product.NewCatalog(store)

	byCountry, err := c.List(context.Background(), product.Filter{Country: "ng"})
	require.NoError(t, err)
	assert.Equal(t, []string{"empty", "ng"}, ids(byCountry))

	byVendor, err := c.List(context.Background(), product.Filter{VendorID: "v1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"gh", "ng"}, ids(byVendor))

	inStock, err := c.List(context.Background(), product.Filter{InStockOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"gh", "ng"}, ids(inStock))
}

func TestCatalog_List_UsesStorePrefilter(t *testing.T) {
	store := &querierStore{
		MockProductStore: seededStore(),
		result:           []*product.Product{newProduct("rice", "rice", "")},
	}

	products, err := product.NewCatalog(store).List(context.Background(), product.Filter{Category: "Rice"})

	require.NoError(t, err)
	assert.Equal(t, []string{"rice"}, ids(products))
	assert.Equal(t, []category.ID{"rice"}, store.calls)
}

func TestCatalog_List_FallsBackWhenPrefilterUnsupported(t *testing.T) {
	store := &querierStore{MockProductStore: seededStore(), err: product.ErrQueryUnsupported}

	products, err := product.NewCatalog(store).List(context.Background(), product.Filter{Category: "beverages"})

	require.NoError(t, err)
	assert.Equal(t, []string{"bev", "drinks"}, ids(products))
}

func TestCatalog_List_PrefilterFailure(t *testing.T) {
	store := &querierStore{MockProductStore: seededStore(), err: errors.New("timeout")}

	_, err := product.NewCatalog(store).List(context.Background(), product.Filter{Category: "rice"})

	assert.ErrorContains(t, err, "timeout")
}

func TestCatalog_List_OthersSkipsPrefilter(t *testing.T) {
	store := &querierStore{MockProductStore: seededStore()}

	products, err := product.NewCatalog(store).List(context.Background(), product.Filter{Category: "Others"})

	require.NoError(t, err)
	assert.Empty(t, store.calls)
	assert.Equal(t, []string{"legacy"}, ids(products))
}

// ============================================
// Import Tests
// ============================================

func TestCatalog_Import_ContinuesPastBadRecords(t *testing.T) {
	store := mocks.NewMockProductStore()
	records := []product.ImportRecord{
		{Name: "Jollof Rice", Price: decimal.NewFromInt(1500), Category: "rice", StockQuantity: 4, Images: []string{"r.jpg"}},
		{Name: "", Price: decimal.NewFromInt(10), Category: "rice", Images: []string{"x.jpg"}},
		{Name: "Zobo", Price: decimal.NewFromInt(300), Category: "Beverages", Images: []string{"z.jpg"}},
	}

	report, err := product.NewCatalog(store).Import(context.Background(), records)

	require.NoError(t, err)
	assert.Len(t, report.Imported, 2)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, 1, report.Failed[0].Index)
	assert.Equal(t, product.ErrInvalidName.Error(), report.Failed[0].Error)

	zobo, ok := store.GetData(report.Imported[1])
	require.True(t, ok)
	assert.Equal(t, category.Drinks, zobo.Category)
	assert.Equal(t, "Beverages", zobo.DisplayCategory)
}

func TestCatalog_Import_StoreFailureReported(t *testing.T) {
	store := mocks.NewMockProductStore()
	store.CreateErr = errors.New("unique violation")

	report, err := product.NewCatalog(store).Import(context.Background(), []product.ImportRecord{
		{Name: "Garri", Price: decimal.NewFromInt(900), Category: "flour", Images: []string{"g.jpg"}},
	})

	require.NoError(t, err)
	assert.Empty(t, report.Imported)
	assert.Len(t, report.Failed, 1)
}

func TestCatalog_Import_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := product.NewCatalog(mocks.NewMockProductStore()).Import(ctx, []product.ImportRecord{{Name: "x"}})

	assert.ErrorIs(t, err, context.Canceled)
}

// ============================================
// Product Tests
// ============================================

func TestStockUpdate_FloorsAtZero(t *testing.T) {
	p := newProduct("p", "rice", "")

	product.StockUpdate(-3).Apply(p)

	assert.Equal(t, 0, p.StockQuantity)
	assert.False(t, p.InStock)
}

func TestProduct_IsAvailableIn(t *testing.T) {
	p := newProduct("p", "rice", "")
	assert.True(t, p.IsAvailableIn("NG"))

	p.AvailableCountries = []string{"NG", "GH"}
	assert.True(t, p.IsAvailableIn("gh"))
	assert.False(t, p.IsAvailableIn("KE"))
	assert.True(t, p.IsAvailableIn(""))
}

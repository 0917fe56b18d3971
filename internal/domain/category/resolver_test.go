package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================
// Normalize Tests
// ============================================

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Drinks & Beverages", "drinks&beverages"},
		{"  RICE_and-GRAINS ", "riceandgrains"},
		{"fruits/vegetables", "fruitsvegetables"},
		{"Meat\tFish", "meatfish"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

// ============================================
// Resolve Tests
// ============================================

func TestResolve_DrinksVariantsShareOneID(t *testing.T) {
	assert.Equal(t, Drinks, Resolve("Drinks & Beverages"))
	assert.Equal(t, Drinks, Resolve("beverages"))
	assert.Equal(t, Drinks, Resolve("DRINKS"))
}

func TestResolve_Aliases(t *testing.T) {
	tests := map[string]ID{
		"Rice & Grains":         Rice,
		"rice-and-grains":       Rice,
		"Spices_and_Seasonings": Spices,
		"Herbs & Spices":        Spices,
		"Meat & Poultry":        Meat,
		"Sea Food":              Meat,
		"Fresh Produce":         Vegetables,
		"Food Stuff":            Food,
		"Pounded Yam":           Flour,
		"misc":                  Other,
	}
	for raw, want := range tests {
		t.Run(raw, func(t *testing.T) {
			assert.Equal(t, want, Resolve(raw))
		})
	}
}

func TestResolve_CanonicalIDsResolveToThemselves(t *testing.T) {
	for _, d := range Definitions {
		assert.Equal(t, d.ID, Resolve(string(d.ID)), d.ID)
	}
}

func TestResolve_DisplayNameFallback(t *testing.T) {
	_, aliased := aliases[Normalize("Food Items")]
	require.False(t, aliased, "display name must not be an alias for this test")

	assert.Equal(t, Food, Resolve("Food Items"))
	assert.Equal(t, Flour, Resolve("flour & swallow"))
}

func TestResolve_UnknownFallsBackToOther(t *testing.T) {
	assert.Equal(t, Other, Resolve("Unobtainium"))
	assert.Equal(t, Other, Resolve(""))
	assert.Equal(t, Other, Resolve("   "))
	assert.Equal(t, Other, Resolve("drinks and more"))
}

func TestResolve_IsPure(t *testing.T) {
	inputs := []string{"Beverages", "Unobtainium", "Rice & Grains", "Food Items"}
	for _, in := range inputs {
		first := Resolve(in)
		for i := 0; i < 3; i++ {
			assert.Equal(t, first, Resolve(in))
		}
	}
}

// ============================================
// Bucket Tests
// ============================================

func TestResolver_Bucket(t *testing.T) {
	r := Default()

	assert.Equal(t, Rice, r.Bucket("rice", "Spices"))
	assert.Equal(t, Spices, r.Bucket("", "Spices & Seasonings"))
	assert.Equal(t, Meat, r.Bucket("legacy-42", "Fish"))
	assert.Equal(t, Other, r.Bucket("legacy-42", "Gadgets"))
}

// ============================================
// Matches Tests
// ============================================

func TestResolver_Matches_CategoryOrDisplay(t *testing.T) {
	r := Default()

	assert.True(t, r.Matches("rice", "", "rice"))
	assert.True(t, r.Matches("", "Rice", "rice"))
	assert.True(t, r.Matches("", "Rice & Grains", "rice & grains"))
	assert.False(t, r.Matches("spices", "Spices", "rice"))
}

func TestResolver_Matches_DrinksBeveragesSymmetry(t *testing.T) {
	r := Default()

	assert.True(t, r.Matches("beverages", "", "drinks"))
	assert.True(t, r.Matches("drinks", "", "beverages"))
	assert.True(t, r.Matches("", "Beverages", "drinks"))
	assert.True(t, r.Matches("", "Drinks", "Beverages"))
	assert.False(t, r.Matches("juice", "", "drinks"))
}

func TestResolver_Matches_Others(t *testing.T) {
	r := Default()

	assert.True(t, r.Matches("", "", "others"))
	assert.True(t, r.Matches("gadgets", "Electronics", "others"))
	assert.True(t, r.Matches("other", "", "others"))
	assert.True(t, r.Matches("gadgets", "", "other"))
	assert.False(t, r.Matches("gadgets", "Beverages", "others"))
	assert.False(t, r.Matches("rice", "", "others"))
}

func TestMatchKeys(t *testing.T) {
	assert.Equal(t, []string{"riceandgrains"}, MatchKeys("Rice and Grains"))
	assert.ElementsMatch(t, []string{"drinks", "beverages"}, MatchKeys("Beverages"))
	assert.ElementsMatch(t, []string{"drinks", "beverages"}, MatchKeys("drinks"))
}

// ============================================
// NewResolver Validation Tests
// ============================================

func TestNewResolver_DefaultTableIsValid(t *testing.T) {
	r, err := NewResolver(Definitions, aliases)

	require.NoError(t, err)
	assert.Len(t, r.Categories(), len(Definitions))
	for _, d := range Definitions {
		assert.True(t, r.Known(d.ID))
		assert.Equal(t, d.Name, r.Name(d.ID))
	}
}

func TestNewResolver_RejectsUnnormalizedKey(t *testing.T) {
	_, err := NewResolver(Definitions, map[string]ID{"Soft Drinks": Drinks})

	assert.ErrorIs(t, err, ErrUnnormalized)
}

func TestNewResolver_RejectsUnknownTarget(t *testing.T) {
	table := copyTable()
	table["gadgets"] = ID("electronics")

	_, err := NewResolver(Definitions, table)

	assert.ErrorIs(t, err, ErrUnknownTarget)
}

func TestNewResolver_RequiresEveryCanonicalID(t *testing.T) {
	table := copyTable()
	delete(table, string(Spices))

	_, err := NewResolver(Definitions, table)

	assert.ErrorIs(t, err, ErrMissingID)
}

func TestNewResolver_RejectsConflictingName(t *testing.T) {
	table := copyTable()
	table["fooditems"] = Other

	_, err := NewResolver(Definitions, table)

	assert.ErrorIs(t, err, ErrNameConflict)
}

func TestNewResolver_RequiresCatchAll(t *testing.T) {
	defs := []Definition{{ID: Drinks, Name: "Drinks"}}

	_, err := NewResolver(defs, map[string]ID{"drinks": Drinks})

	assert.ErrorIs(t, err, ErrMissingCatchAll)
}

func TestNewResolver_Empty(t *testing.T) {
	_, err := NewResolver(nil, aliases)

	assert.ErrorIs(t, err, ErrEmptyTable)
}

func copyTable() map[string]ID {
	out := make(map[string]ID, len(aliases))
	for k, v := range aliases {
		out[k] = v
	}
	return out
}

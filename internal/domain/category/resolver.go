package category

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	ErrEmptyTable      = errors.New("category table has no definitions")
	ErrUnnormalized    = errors.New("alias key is not normalized")
	ErrUnknownTarget   = errors.New("alias targets an unknown category")
	ErrMissingID       = errors.New("canonical id does not resolve to itself")
	ErrNameConflict    = errors.New("display name resolves to a different category")
	ErrMissingCatchAll = errors.New("category table has no catch-all entry")
)

// Resolver maps free-text category strings onto canonical ids.
// It is immutable after construction and safe for concurrent use.
type Resolver struct {
	defs    []Definition
	known   map[ID]struct{}
	aliases map[string]ID
	names   map[string]ID
}

var defaultResolver = mustResolver(Definitions, aliases)

// Default returns the resolver built from the compiled-in alias table.
func Default() *Resolver {
	return defaultResolver
}

// Resolve resolves raw with the default resolver.
func Resolve(raw string) ID {
	return defaultResolver.Resolve(raw)
}

// Normalize produces the lookup key for a category string: lowercase with
// whitespace, underscores, hyphens and slashes removed.
func Normalize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '_' || r == '-' || r == '/' {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}

// NewResolver validates the table and builds a resolver from it.
func NewResolver(defs []Definition, table map[string]ID) (*Resolver, error) {
	if len(defs) == 0 {
		return nil, ErrEmptyTable
	}

	r := &Resolver{
		defs:    append([]Definition(nil), defs...),
		known:   make(map[ID]struct{}, len(defs)),
		aliases: make(map[string]ID, len(table)),
		names:   make(map[string]ID, len(defs)),
	}
	for _, d := range defs {
		r.known[d.ID] = struct{}{}
	}
	if _, ok := r.known[Other]; !ok {
		return nil, ErrMissingCatchAll
	}

	for key, id := range table {
		if key == "" || Normalize(key) != key {
			return nil, fmt.Errorf("%w: %q", ErrUnnormalized, key)
		}
		if _, ok := r.known[id]; !ok {
			return nil, fmt.Errorf("%w: %q -> %q", ErrUnknownTarget, key, id)
		}
		r.aliases[key] = id
	}

	for _, d := range defs {
		if got, ok := r.aliases[string(d.ID)]; !ok || got != d.ID {
			return nil, fmt.Errorf("%w: %q", ErrMissingID, d.ID)
		}
		key := Normalize(d.Name)
		if got, ok := r.aliases[key]; ok && got != d.ID {
			return nil, fmt.Errorf("%w: %q -> %q, want %q", ErrNameConflict, d.Name, got, d.ID)
		}
		r.names[key] = d.ID
	}

	return r, nil
}

func mustResolver(defs []Definition, table map[string]ID) *Resolver {
	r, err := NewResolver(defs, table)
	if err != nil {
		panic(fmt.Sprintf("category: invalid alias table: %v", err))
	}
	return r
}

// Resolve returns the canonical id for raw. Lookup order is the alias
// table, then canonical display names; anything else is Other.
func (r *Resolver) Resolve(raw string) ID {
	key := Normalize(raw)
	if id, ok := r.aliases[key]; ok {
		return id
	}
	if id, ok := r.names[key]; ok {
		return id
	}
	return Other
}

// Bucket assigns a product to exactly one canonical category using its
// stored category first and its display label second.
func (r *Resolver) Bucket(categoryField, displayField string) ID {
	if id := r.Resolve(categoryField); id != Other {
		return id
	}
	return r.Resolve(displayField)
}

// Matches reports whether a product with the given category fields belongs
// under the storefront filter.
func (r *Resolver) Matches(categoryField, displayField, filter string) bool {
	want := Normalize(filter)
	if want == "others" || want == string(Other) {
		return r.Bucket(categoryField, displayField) == Other
	}

	cat := Normalize(categoryField)
	display := Normalize(displayField)
	if cat == want || display == want {
		return true
	}
	// drinks and beverages were used interchangeably across the catalogue
	return isDrinksKey(want) && (isDrinksKey(cat) || isDrinksKey(display))
}

// Known reports whether id is one of the canonical ids.
func (r *Resolver) Known(id ID) bool {
	_, ok := r.known[id]
	return ok
}

// Categories returns the canonical categories in menu order.
func (r *Resolver) Categories() []Definition {
	return append([]Definition(nil), r.defs...)
}

// Name returns the display name of a canonical id.
func (r *Resolver) Name(id ID) string {
	for _, d := range r.defs {
		if d.ID == id {
			return d.Name
		}
	}
	return ""
}

// MatchKeys returns the normalized field values that Matches accepts for
// a non catch-all filter. Stores use it to prefilter by category.
func MatchKeys(filter string) []string {
	want := Normalize(filter)
	if isDrinksKey(want) {
		return []string{"drinks", "beverages"}
	}
	return []string{want}
}

func isDrinksKey(key string) bool {
	return key == "drinks" || key == "beverages"
}

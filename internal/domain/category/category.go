package category

// ID is a canonical category identifier.
type ID string

const (
	Drinks     ID = "drinks"
	Flour      ID = "flour"
	Rice       ID = "rice"
	Spices     ID = "spices"
	Meat       ID = "meat"
	Vegetables ID = "vegetables"
	Food       ID = "food"
	Other      ID = "other"
)

// Definition pairs a canonical id with its storefront display name.
type Definition struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// Definitions is the fixed set of canonical categories, in menu order.
var Definitions = []Definition{
	{ID: Drinks, Name: "Drinks"},
	{ID: Flour, Name: "Flour & Swallow"},
	{ID: Rice, Name: "Rice & Grains"},
	{ID: Spices, Name: "Spices & Seasonings"},
	{ID: Meat, Name: "Meat & Fish"},
	{ID: Vegetables, Name: "Fruits & Vegetables"},
	{ID: Food, Name: "Food Items"},
	{ID: Other, Name: "Others"},
}

// aliases maps normalization keys (see Normalize) to canonical ids.
// Every spelling that ever appeared in admin entry, bulk imports or the
// migrated legacy catalogue is listed here explicitly.
var aliases = map[string]ID{
	// drinks
	"drinks":              Drinks,
	"drink":               Drinks,
	"beverages":           Drinks,
	"beverage":            Drinks,
	"drinks&beverages":    Drinks,
	"beverages&drinks":    Drinks,
	"drinksandbeverages":  Drinks,
	"softdrinks":          Drinks,
	"juice":               Drinks,
	"juices":              Drinks,
	"tea":                 Drinks,
	"coffee":              Drinks,
	"tea&coffee":          Drinks,
	"teaandcoffee":        Drinks,
	"water":               Drinks,
	"maltdrinks":          Drinks,
	"energydrinks":        Drinks,
	"dairy&beverages":     Drinks,
	"hotdrinks":           Drinks,
	"nonalcoholicdrinks":  Drinks,
	"drinks&refreshments": Drinks,

	// flour
	"flour":          Flour,
	"flours":         Flour,
	"flour&baking":   Flour,
	"baking":         Flour,
	"bakingsupplies": Flour,
	"swallow":        Flour,
	"swallows":       Flour,
	"garri":          Flour,
	"gari":           Flour,
	"semolina":       Flour,
	"semovita":       Flour,
	"yamflour":       Flour,
	"poundoyam":      Flour,
	"poundedyam":     Flour,
	"cassavaflour":   Flour,
	"plantainflour":  Flour,
	"fufu":           Flour,
	"elubo":          Flour,

	// rice
	"rice":           Rice,
	"rice&grains":    Rice,
	"riceandgrains":  Rice,
	"grains":         Rice,
	"grain":          Rice,
	"grains&cereals": Rice,
	"cereals":        Rice,
	"cereal":         Rice,
	"beans":          Rice,
	"beans&grains":   Rice,
	"beans&legumes":  Rice,
	"legumes":        Rice,
	"basmatirice":    Rice,
	"parboiledrice":  Rice,
	"ofadarice":      Rice,

	// spices
	"spices":              Spices,
	"spice":               Spices,
	"spices&seasonings":   Spices,
	"spicesandseasonings": Spices,
	"seasoning":           Spices,
	"seasonings":          Spices,
	"herbs":               Spices,
	"herbs&spices":        Spices,
	"condiments":          Spices,
	"condiments&spices":   Spices,
	"pepper":              Spices,
	"peppers":             Spices,
	"sauces&spices":       Spices,
	"stockcubes":          Spices,

	// meat
	"meat":           Meat,
	"meats":          Meat,
	"meat&fish":      Meat,
	"meatandfish":    Meat,
	"meat&poultry":   Meat,
	"poultry":        Meat,
	"fish":           Meat,
	"fish&seafood":   Meat,
	"seafood":        Meat,
	"seafoods":       Meat,
	"frozenmeat":     Meat,
	"frozenfish":     Meat,
	"dryfish":        Meat,
	"driedfish":      Meat,
	"stockfish":      Meat,
	"smokedfish":     Meat,
	"protein":        Meat,
	"proteins":       Meat,
	"meat&seafood":   Meat,
	"fish&meat":      Meat,
	"chicken":        Meat,
	"goatmeat":       Meat,
	"beef":           Meat,
	"frozenproteins": Meat,

	// vegetables
	"vegetables":          Vegetables,
	"vegetable":           Vegetables,
	"veggies":             Vegetables,
	"veg":                 Vegetables,
	"fruits&vegetables":   Vegetables,
	"vegetables&fruits":   Vegetables,
	"fruitsandvegetables": Vegetables,
	"fruits":              Vegetables,
	"fruit":               Vegetables,
	"freshproduce":        Vegetables,
	"produce":             Vegetables,
	"greens":              Vegetables,
	"leafyvegetables":     Vegetables,
	"leafygreens":         Vegetables,
	"freshvegetables":     Vegetables,
	"driedvegetables":     Vegetables,
	"tubers":              Vegetables,
	"yams&tubers":         Vegetables,
	"plantain":            Vegetables,
	"plantains":           Vegetables,

	// food
	"food":          Food,
	"foods":         Food,
	"fooditem":      Food,
	"foodstuff":     Food,
	"foodstuffs":    Food,
	"provisions":    Food,
	"provision":     Food,
	"groceries":     Food,
	"grocery":       Food,
	"snacks":        Food,
	"snack":         Food,
	"packagedfood":  Food,
	"packagedfoods": Food,
	"cannedfood":    Food,
	"cannedfoods":   Food,
	"frozenfood":    Food,
	"frozenfoods":   Food,
	"noodles":       Food,
	"pasta":         Food,
	"pasta&noodles": Food,
	"oil":           Food,
	"oils":          Food,
	"palmoil":       Food,
	"cookingoil":    Food,
	"oils&fats":     Food,
	"breakfast":     Food,
	"readymeals":    Food,

	// other
	"other":         Other,
	"others":        Other,
	"misc":          Other,
	"miscellaneous": Other,
	"general":       Other,
	"uncategorized": Other,
	"uncategorised": Other,
	"household":     Other,
	"beauty":        Other,
	"personalcare":  Other,
	"toiletries":    Other,
}

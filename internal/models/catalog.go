package models

// Category groups catalog entries for the category filter buttons.
type Category string

// CategoryAll disables the category predicate.
const CategoryAll Category = "all"

const (
	CategoryCoffee   Category = "coffee"
	CategoryFood     Category = "food"
	CategoryDessert  Category = "dessert"
	CategoryDesserts Category = "desserts"
)

type Tag string

const (
	TagVegan      Tag = "vegan"
	TagOrganic    Tag = "organic"
	TagGlutenFree Tag = "gluten-free"
	TagSignature  Tag = "signature"
	TagSeasonal   Tag = "seasonal"

	TagCoffee   Tag = "coffee"
	TagFood     Tag = "food"
	TagDesserts Tag = "desserts"
	TagLatteArt Tag = "latte-art"
	TagHealthy  Tag = "healthy"
	TagBakery   Tag = "bakery"
)

// CatalogEntry is one menu item or gallery photo. Entries are defined once
// in static tables and never modified.
type CatalogEntry struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price,omitempty"`
	Likes       int      `json:"likes,omitempty"`
	Category    Category `json:"category"`
	Tags        []Tag    `json:"tags"`
	Popularity  int      `json:"popularity,omitempty"`
	Image       string   `json:"image,omitempty"`
	UserPhoto   bool     `json:"user_photo,omitempty"`
}

// HasTag reports whether the entry carries tag.
func (e CatalogEntry) HasTag(tag Tag) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// FilterState is the combination of category, search term and tag
// selections applied to a catalog view.
type FilterState struct {
	Category   Category `json:"category"`
	SearchTerm string   `json:"search_term"`
	Tags       []Tag    `json:"tags"`
}

// CategoryCount is the number of entries shown under a category button.
type CategoryCount struct {
	Category Category `json:"category"`
	Count    int      `json:"count"`
}

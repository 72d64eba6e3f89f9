package catalog

import (
	"sort"

	"github.com/xaenox/cafe-bot/internal/models"
)

// GalleryCategories lists the gallery filter buttons in display order.
var GalleryCategories = []models.Category{
	models.CategoryAll,
	models.CategoryCoffee,
	models.CategoryFood,
	models.CategoryDesserts,
}

var gallery = []models.CatalogEntry{
	{
		ID:          "1",
		Name:        "Coffee Spread",
		Description: "Artisan coffee drinks with latte art",
		Likes:       127,
		Category:    models.CategoryCoffee,
		Tags:        []models.Tag{models.TagCoffee, models.TagLatteArt},
		Image:       "coffee-spread.jpg",
	},
	{
		ID:          "2",
		Name:        "Fresh Lunch",
		Description: "Fresh gourmet sandwich and salad",
		Likes:       89,
		Category:    models.CategoryFood,
		Tags:        []models.Tag{models.TagFood, models.TagHealthy},
		Image:       "food-1.jpg",
	},
	{
		ID:          "3",
		Name:        "Pastry Counter",
		Description: "Homemade pastries and desserts",
		Likes:       156,
		Category:    models.CategoryDesserts,
		Tags:        []models.Tag{models.TagDesserts, models.TagBakery},
		Image:       "pastries.jpg",
	},
}

// Gallery returns the photo gallery in its fixed display order.
func Gallery() []models.CatalogEntry {
	return clone(gallery)
}

// LikeSet is an immutable set of liked photo IDs. The zero value is an
// empty set. Toggle returns a new set and leaves the receiver untouched.
type LikeSet struct {
	ids map[string]struct{}
}

// NewLikeSet builds a set from ids.
func NewLikeSet(ids ...string) LikeSet {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return LikeSet{ids: m}
}

func (s LikeSet) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

func (s LikeSet) Len() int {
	return len(s.ids)
}

// Toggle returns a copy of the set with id added if absent or removed if present.
func (s LikeSet) Toggle(id string) LikeSet {
	m := make(map[string]struct{}, len(s.ids)+1)
	for k := range s.ids {
		m[k] = struct{}{}
	}
	if _, ok := m[id]; ok {
		delete(m, id)
	} else {
		m[id] = struct{}{}
	}
	return LikeSet{ids: m}
}

// IDs returns the liked IDs in sorted order.
func (s LikeSet) IDs() []string {
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LikeCount is the like counter shown for a photo: the static count plus
// one when the visitor has liked it.
func LikeCount(entry models.CatalogEntry, likes LikeSet) int {
	if likes.Has(entry.ID) {
		return entry.Likes + 1
	}
	return entry.Likes
}

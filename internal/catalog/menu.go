package catalog

import "github.com/xaenox/cafe-bot/internal/models"

// MenuCategories lists the menu filter buttons in display order.
var MenuCategories = []models.Category{
	models.CategoryAll,
	models.CategoryCoffee,
	models.CategoryFood,
	models.CategoryDessert,
}

// MenuTags lists the selectable dietary and feature tags.
var MenuTags = []models.Tag{
	models.TagVegan,
	models.TagOrganic,
	models.TagGlutenFree,
	models.TagSignature,
	models.TagSeasonal,
}

var menu = []models.CatalogEntry{
	{
		ID:          "1",
		Name:        "Signature Cold Brew",
		Description: "16-hour slow-steeped Ethiopian beans with vanilla cold foam",
		Price:       4.50,
		Category:    models.CategoryCoffee,
		Tags:        []models.Tag{models.TagSignature, models.TagOrganic},
		Popularity:  95,
	},
	{
		ID:          "2",
		Name:        "Artisan Avocado Toast",
		Description: "Sourdough, smashed avocado, heirloom tomatoes, microgreens",
		Price:       12.00,
		Category:    models.CategoryFood,
		Tags:        []models.Tag{models.TagVegan, models.TagOrganic},
		Popularity:  88,
	},
	{
		ID:          "3",
		Name:        "Seasonal Pumpkin Latte",
		Description: "House-made pumpkin spice, steamed oat milk, cinnamon dust",
		Price:       5.25,
		Category:    models.CategoryCoffee,
		Tags:        []models.Tag{models.TagSeasonal, models.TagVegan},
		Popularity:  92,
	},
	{
		ID:          "4",
		Name:        "Gluten-Free Banana Bread",
		Description: "Warm, moist banana bread made with almond flour",
		Price:       4.00,
		Category:    models.CategoryDessert,
		Tags:        []models.Tag{models.TagGlutenFree, models.TagOrganic},
		Popularity:  78,
	},
	{
		ID:          "5",
		Name:        "Farm Fresh Quinoa Bowl",
		Description: "Quinoa, roasted vegetables, tahini dressing, hemp seeds",
		Price:       14.00,
		Category:    models.CategoryFood,
		Tags:        []models.Tag{models.TagVegan, models.TagOrganic, models.TagGlutenFree},
		Popularity:  85,
	},
}

// Menu returns the menu in its fixed display order. The returned slice is a
// copy; callers may not change the static table through it.
func Menu() []models.CatalogEntry {
	return clone(menu)
}

func clone(entries []models.CatalogEntry) []models.CatalogEntry {
	out := make([]models.CatalogEntry, len(entries))
	copy(out, entries)
	return out
}

package catalog

import (
	"reflect"
	"testing"

	"github.com/xaenox/cafe-bot/internal/models"
)

func ids(entries []models.CatalogEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name  string
		state models.FilterState
		want  []string
	}{
		{"defaults return everything", DefaultFilter(), []string{"1", "2", "3", "4", "5"}},
		{"empty category treated as all", models.FilterState{}, []string{"1", "2", "3", "4", "5"}},
		{"coffee category", models.FilterState{Category: models.CategoryCoffee}, []string{"1", "3"}},
		{"dessert category", models.FilterState{Category: models.CategoryDessert}, []string{"4"}},
		{"vegan tag", models.FilterState{Category: models.CategoryAll, Tags: []models.Tag{models.TagVegan}}, []string{"2", "3", "5"}},
		{"tags are OR-ed", models.FilterState{Tags: []models.Tag{models.TagSignature, models.TagSeasonal}}, []string{"1", "3"}},
		{"search matches name case-insensitively", models.FilterState{SearchTerm: "LATTE"}, []string{"3"}},
		{"search matches description", models.FilterState{SearchTerm: "almond"}, []string{"4"}},
		{"groups are AND-ed", models.FilterState{Category: models.CategoryFood, Tags: []models.Tag{models.TagGlutenFree}}, []string{"5"}},
		{"search and category", models.FilterState{Category: models.CategoryCoffee, SearchTerm: "toast"}, []string{}},
		{"no match is empty", models.FilterState{SearchTerm: "espresso martini"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Filter(Menu(), tt.state))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Filter() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterIsOrderPreservingSubsequence(t *testing.T) {
	catalog := Menu()
	states := []models.FilterState{
		DefaultFilter(),
		{Category: models.CategoryFood},
		{SearchTerm: "a"},
		{Tags: []models.Tag{models.TagOrganic}},
		{Category: models.CategoryCoffee, SearchTerm: "e", Tags: []models.Tag{models.TagVegan, models.TagOrganic}},
	}

	for _, s := range states {
		got := Filter(catalog, s)
		i := 0
		for _, entry := range got {
			for i < len(catalog) && catalog[i].ID != entry.ID {
				i++
			}
			if i == len(catalog) {
				t.Fatalf("Filter(%+v) = %v is not a subsequence of the catalog", s, ids(got))
			}
			i++
		}

		again := Filter(got, s)
		if !reflect.DeepEqual(ids(again), ids(got)) {
			t.Errorf("Filter is not idempotent for %+v: %v then %v", s, ids(got), ids(again))
		}
	}
}

func TestFilterDoesNotModifyCatalog(t *testing.T) {
	catalog := Menu()
	before := ids(catalog)
	_ = Filter(catalog, models.FilterState{Category: models.CategoryFood})
	if !reflect.DeepEqual(ids(catalog), before) {
		t.Errorf("catalog changed: %v", ids(catalog))
	}
}

func TestToggleTag(t *testing.T) {
	s := DefaultFilter()
	s1 := ToggleTag(s, models.TagVegan)
	s2 := ToggleTag(s1, models.TagOrganic)
	s3 := ToggleTag(s2, models.TagVegan)

	if len(s.Tags) != 0 {
		t.Errorf("original state mutated: %v", s.Tags)
	}
	if !reflect.DeepEqual(s2.Tags, []models.Tag{models.TagVegan, models.TagOrganic}) {
		t.Errorf("s2.Tags = %v", s2.Tags)
	}
	if !reflect.DeepEqual(s3.Tags, []models.Tag{models.TagOrganic}) {
		t.Errorf("s3.Tags = %v", s3.Tags)
	}
	if len(s1.Tags) != 1 {
		t.Errorf("s1 mutated by later toggles: %v", s1.Tags)
	}
}

func TestCategoryCounts(t *testing.T) {
	got := CategoryCounts(Gallery(), GalleryCategories)
	want := []models.CategoryCount{
		{Category: models.CategoryAll, Count: 3},
		{Category: models.CategoryCoffee, Count: 1},
		{Category: models.CategoryFood, Count: 1},
		{Category: models.CategoryDesserts, Count: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CategoryCounts() = %v, want %v", got, want)
	}
}

func TestLookup(t *testing.T) {
	entry, err := Lookup(Menu(), "4")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if entry.Name != "Gluten-Free Banana Bread" {
		t.Errorf("Lookup() = %q", entry.Name)
	}
	if _, err := Lookup(Menu(), "99"); err != ErrUnknownEntry {
		t.Errorf("Lookup(99) error = %v, want ErrUnknownEntry", err)
	}
}

func TestParse(t *testing.T) {
	if c, ok := ParseCategory(" Coffee ", MenuCategories); !ok || c != models.CategoryCoffee {
		t.Errorf("ParseCategory(Coffee) = %q, %v", c, ok)
	}
	if c, ok := ParseCategory("", MenuCategories); !ok || c != models.CategoryAll {
		t.Errorf("ParseCategory(\"\") = %q, %v", c, ok)
	}
	if _, ok := ParseCategory("desserts", MenuCategories); ok {
		t.Error("ParseCategory accepted a gallery-only category for the menu")
	}
	if tag, ok := ParseTag("#Gluten-Free", MenuTags); !ok || tag != models.TagGlutenFree {
		t.Errorf("ParseTag = %q, %v", tag, ok)
	}
	if _, ok := ParseTag("spicy", MenuTags); ok {
		t.Error("ParseTag accepted unknown tag")
	}
}

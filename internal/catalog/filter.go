package catalog

import (
	"errors"
	"strings"

	"github.com/xaenox/cafe-bot/internal/models"
)

var ErrUnknownEntry = errors.New("unknown catalog entry")

// DefaultFilter returns the filter state a fresh view starts with.
func DefaultFilter() models.FilterState {
	return models.FilterState{Category: models.CategoryAll}
}

// Filter returns the entries of catalog that pass the category, search and
// tag predicates of state, in catalog order. Tags are OR-ed; the three
// predicate groups are AND-ed.
func Filter(catalog []models.CatalogEntry, state models.FilterState) []models.CatalogEntry {
	term := strings.ToLower(state.SearchTerm)

	visible := make([]models.CatalogEntry, 0, len(catalog))
	for _, entry := range catalog {
		if matchesCategory(entry, state.Category) &&
			matchesSearch(entry, term) &&
			matchesTags(entry, state.Tags) {
			visible = append(visible, entry)
		}
	}
	return visible
}

func matchesCategory(entry models.CatalogEntry, category models.Category) bool {
	return category == "" || category == models.CategoryAll || entry.Category == category
}

func matchesSearch(entry models.CatalogEntry, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(entry.Name), term) ||
		strings.Contains(strings.ToLower(entry.Description), term)
}

func matchesTags(entry models.CatalogEntry, tags []models.Tag) bool {
	if len(tags) == 0 {
		return true
	}
	for _, tag := range tags {
		if entry.HasTag(tag) {
			return true
		}
	}
	return false
}

// ToggleTag returns a copy of state with tag selected if it was not, or
// deselected if it was. Selection order is preserved.
func ToggleTag(state models.FilterState, tag models.Tag) models.FilterState {
	tags := make([]models.Tag, 0, len(state.Tags)+1)
	found := false
	for _, t := range state.Tags {
		if t == tag {
			found = true
			continue
		}
		tags = append(tags, t)
	}
	if !found {
		tags = append(tags, tag)
	}
	state.Tags = tags
	return state
}

// CategoryCounts returns how many entries fall under each of categories.
// CategoryAll counts the whole catalog.
func CategoryCounts(catalog []models.CatalogEntry, categories []models.Category) []models.CategoryCount {
	counts := make([]models.CategoryCount, 0, len(categories))
	for _, c := range categories {
		n := 0
		for _, entry := range catalog {
			if matchesCategory(entry, c) {
				n++
			}
		}
		counts = append(counts, models.CategoryCount{Category: c, Count: n})
	}
	return counts
}

// Lookup finds an entry by ID.
func Lookup(catalog []models.CatalogEntry, id string) (models.CatalogEntry, error) {
	for _, entry := range catalog {
		if entry.ID == id {
			return entry, nil
		}
	}
	return models.CatalogEntry{}, ErrUnknownEntry
}

// ParseCategory matches s case-insensitively against allowed.
func ParseCategory(s string, allowed []models.Category) (models.Category, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return models.CategoryAll, true
	}
	for _, c := range allowed {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// ParseTag matches s case-insensitively against allowed.
func ParseTag(s string, allowed []models.Tag) (models.Tag, bool) {
	s = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "#")))
	for _, t := range allowed {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

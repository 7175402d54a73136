// Package terms implements the available-terms typeahead service: the
// category-info listing consumed by the search UI's dropdown, and the
// per-category term/filter lookups behind it. Grounded on
// api/available/mod.rs and api/available/terms.rs.
package terms

import (
	"context"

	"bgcapi/internal/core/category"
	perr "bgcapi/internal/platform/errors"
)

// CategoryInfo is one entry of the /api/available/categories response.
type CategoryInfo struct {
	Label       string            `json:"label"`
	Value       string            `json:"value"`
	Type        string            `json:"category_type"`
	Countable   bool              `json:"countable"`
	Description string            `json:"description"`
	Filters     []category.Filter `json:"filters,omitempty"`
}

// CategoryGroupView is one named group of CategoryInfo options.
type CategoryGroupView struct {
	Header  string         `json:"header"`
	Options []CategoryInfo `json:"options"`
}

// Categories is the full /api/available/categories response shape:
// ungrouped categories at the top level, grouped ones nested.
type Categories struct {
	Options []CategoryInfo      `json:"options"`
	Groups  []CategoryGroupView `json:"groups"`
}

// AvailableCategories builds the category listing from the registry.
func AvailableCategories() Categories {
	out := Categories{}
	byGroup := make(map[category.Group][]CategoryInfo)
	var groupOrder []category.Group
	seen := make(map[category.Group]bool)

	for _, m := range category.All() {
		info := CategoryInfo{
			Label: m.Label, Value: string(m.Category), Type: string(m.Kind),
			Countable: m.Countable, Description: m.Description, Filters: m.Filters,
		}
		if m.Group == category.GroupNone {
			out.Options = append(out.Options, info)
			continue
		}
		if !seen[m.Group] {
			seen[m.Group] = true
			groupOrder = append(groupOrder, m.Group)
		}
		byGroup[m.Group] = append(byGroup[m.Group], info)
	}

	for _, g := range groupOrder {
		out.Groups = append(out.Groups, CategoryGroupView{Header: string(g), Options: byGroup[g]})
	}
	return out
}

// Term is one typeahead suggestion.
type Term struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Lookup runs the per-category typeahead query. Implemented by the
// store-backed repo layer; this package only validates the category and
// hands off.
type Lookup interface {
	TermsByCategory(ctx context.Context, c category.Category, prefix string) ([]Term, error)
}

// ByCategory validates cat and prefix before delegating to lookup,
// matching available_terms_by_category's per-category dispatch (the
// category itself must already be one of the closed registry values).
func ByCategory(ctx context.Context, lookup Lookup, catName, prefix string) ([]Term, error) {
	c, err := category.Parse(catName)
	if err != nil {
		return nil, err
	}
	return lookup.TermsByCategory(ctx, c, prefix)
}

// FilterValues implements available_filter_values_by_category, which the
// reference implementation leaves unimplemented.
func FilterValues(_ context.Context, _ category.Category, _ string) ([]Term, error) {
	return nil, perr.NotImplementedf("filters are not implemented yet")
}

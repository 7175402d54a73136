package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"bgcapi/internal/core/category"
	"bgcapi/internal/core/terms"
	"bgcapi/internal/modkit/httpkit"
)

// registerAvailable mounts the category/typeahead browsing routes the
// search UI's dropdowns poll against. Grounded on api/available/mod.rs.
func (d *deps) registerAvailable(r httpkit.Router) {
	r.Get("/available/categories", httpkit.Call(d.availableCategories))
	r.Get("/available/filters/{category}", httpkit.Call(d.availableFilters))
	r.Get("/available/term/{category}/{term}", httpkit.Call(d.availableTerm))
	r.Get("/available/filter_values/{category}/{filter_name}", httpkit.Call(d.availableFilterValues))
}

func (d *deps) availableCategories(_ *http.Request) (any, error) {
	return terms.AvailableCategories(), nil
}

func (d *deps) availableFilters(r *http.Request) (any, error) {
	cat, err := category.Parse(chi.URLParam(r, "category"))
	if err != nil {
		return nil, err
	}
	filters := category.Filters(cat)
	if filters == nil {
		filters = []category.Filter{}
	}
	return filters, nil
}

func (d *deps) availableTerm(r *http.Request) (any, error) {
	catName := chi.URLParam(r, "category")
	prefix := chi.URLParam(r, "term")
	list, err := terms.ByCategory(r.Context(), d.termsRepo, catName, prefix)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []terms.Term{}
	}
	return list, nil
}

func (d *deps) availableFilterValues(r *http.Request) (any, error) {
	cat, err := category.Parse(chi.URLParam(r, "category"))
	if err != nil {
		return nil, err
	}
	return terms.FilterValues(r.Context(), cat, chi.URLParam(r, "filter_name"))
}

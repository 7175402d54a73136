package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"bgcapi/internal/core/category"
	"bgcapi/internal/core/entities"
	"bgcapi/internal/core/project"
	"bgcapi/internal/core/query"
	"bgcapi/internal/core/search"
	"bgcapi/internal/modkit/httpkit"
	phttp "bgcapi/internal/platform/net/http"
)

const apiVersion = "1.0.0"

// registerEntities mounts the handful of lookup endpoints that don't fit
// the category/query/search pipeline: the assembly/genome id shortcuts,
// coordinate-overlap search, record-jump resolution, the taxonomy tree
// browser, landing-page stats and the version probe.
func (d *deps) registerEntities(r httpkit.Router) {
	r.Get("/assembly/{id}", httpkit.Call(d.byAssembly))
	r.Get("/genome/{id}", httpkit.Call(d.byGenome))
	r.Get("/area/{record}/{location}", httpkit.Call(d.byArea))
	r.Get("/goto/{identifier}", d.goTo)
	r.Get("/goto/{identifier}/{region}", d.goTo)
	r.Get("/tree/taxa", httpkit.Call(d.treeTaxa))
	r.Get("/stats", httpkit.Call(d.stats))
	r.Get("/version", httpkit.Call(d.version))
}

// shortcutSearch evaluates a single-category expression and projects the
// matching regions to JSON, the shape /api/assembly and /api/genome share.
func (d *deps) shortcutSearch(r *http.Request, cat category.Category, value string) (any, error) {
	ctx := r.Context()
	term := query.ExprTerm(query.NewExpression(cat, value, nil, 1))
	ids, err := search.Eval(ctx, &term, d.lookup)
	if err != nil {
		return nil, err
	}
	regions, err := d.fetcher.FetchRegions(ctx, ids)
	if err != nil {
		return nil, err
	}
	return struct {
		Regions []project.Region `json:"regions"`
	}{Regions: regions}, nil
}

func (d *deps) byAssembly(r *http.Request) (any, error) {
	return d.shortcutSearch(r, category.Assembly, chi.URLParam(r, "id"))
}

func (d *deps) byGenome(r *http.Request) (any, error) {
	return d.shortcutSearch(r, category.Acc, chi.URLParam(r, "id"))
}

func (d *deps) byArea(r *http.Request) (any, error) {
	area, err := entities.ParseArea(chi.URLParam(r, "record"), chi.URLParam(r, "location"))
	if err != nil {
		return nil, err
	}
	ids, err := d.entities.ByArea(r.Context(), area)
	if err != nil {
		return nil, err
	}
	regions, err := d.fetcher.FetchRegions(r.Context(), ids)
	if err != nil {
		return nil, err
	}
	return struct {
		Regions []project.Region `json:"regions"`
	}{Regions: regions}, nil
}

// goTo resolves a (possibly messy) record identifier to its canonical
// assembly and 302s to the precomputed antiSMASH output page, optionally
// anchored at a region fragment. This redirect must bypass the envelope,
// so it registers as a raw Handler.
func (d *deps) goTo(w http.ResponseWriter, r *http.Request) {
	dest, err := entities.Resolve(r.Context(), d.entities, chi.URLParam(r, "identifier"), chi.URLParam(r, "region"))
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}
	location := d.urlRoot + "/output/" + dest.AssemblyID + "/index.html"
	if dest.Region != "" {
		location += "#" + dest.Region
	}
	http.Redirect(w, r, location, http.StatusFound)
}

func (d *deps) treeTaxa(r *http.Request) (any, error) {
	id := r.URL.Query().Get("id")
	step, err := entities.ParseTreeID(id)
	if err != nil {
		return nil, err
	}
	nodes, err := d.entities.Children(r.Context(), step)
	if err != nil {
		return nil, err
	}
	if nodes == nil {
		nodes = []entities.TreeNode{}
	}
	return nodes, nil
}

func (d *deps) stats(r *http.Request) (any, error) {
	return d.entities.Stats(r.Context())
}

func (d *deps) version(_ *http.Request) (any, error) {
	return struct {
		API string `json:"api"`
	}{API: apiVersion}, nil
}

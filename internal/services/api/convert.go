package api

import (
	"net/http"

	"bgcapi/internal/core/query"
	"bgcapi/internal/modkit/httpkit"
	perr "bgcapi/internal/platform/errors"
)

// convertRequest is the POST /api/convert body; GET uses the same field
// names as query-string parameters instead.
type convertRequest struct {
	SearchString string `json:"search_string" validate:"required"`
	SearchType   string `json:"search_type"`
	ReturnType   string `json:"return_type"`
	Verbose      bool   `json:"verbose"`
}

// registerConvert mounts the DSL-string-to-typed-query endpoint, available
// as both POST (JSON body) and GET (query string), matching the reference
// implementation's dual entry points.
func (d *deps) registerConvert(r httpkit.Router) {
	r.Post("/convert", httpkit.JSON[convertRequest](d.convert))
	r.Get("/convert", httpkit.Call(d.convertFromQueryString))
}

func (d *deps) convert(r *http.Request, in convertRequest) (any, error) {
	return buildQuery(in)
}

func (d *deps) convertFromQueryString(r *http.Request) (any, error) {
	q := r.URL.Query()
	in := convertRequest{
		SearchString: q.Get("search_string"),
		SearchType:   q.Get("search_type"),
		ReturnType:   q.Get("return_type"),
		Verbose:      q.Get("verbose") == "true" || q.Get("verbose") == "1",
	}
	if in.SearchString == "" {
		return nil, perr.InvalidArgf("search_string is required")
	}
	return buildQuery(in)
}

func buildQuery(in convertRequest) (query.Query, error) {
	q, err := query.Parse(in.SearchString)
	if err != nil {
		return query.Query{}, err
	}
	if in.SearchType != "" {
		q.SearchType = query.SearchType(in.SearchType)
	}
	if in.ReturnType != "" {
		q.ReturnType = query.ReturnType(in.ReturnType)
	}
	q.Verbose = in.Verbose
	return q, nil
}

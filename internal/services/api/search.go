package api

import (
	"context"
	"net/http"
	"sort"

	"bgcapi/internal/core/project"
	"bgcapi/internal/core/query"
	"bgcapi/internal/core/search"
	"bgcapi/internal/modkit/httpkit"
	perr "bgcapi/internal/platform/errors"
	phttp "bgcapi/internal/platform/net/http"
	"bgcapi/internal/platform/net/http/bind"
)

// searchRequest is the POST /api/search body: a typed query (the shape
// /api/convert returns) plus an optional result window.
type searchRequest struct {
	Query    query.Query `json:"query" validate:"required"`
	Offset   int         `json:"offset"`
	Paginate int         `json:"paginate"`
}

// searchResponse mirrors the reference search endpoint's pagination
// envelope: paginate echoes the total result count, not the requested
// page size, so callers can tell whether they asked for the whole set.
type searchResponse struct {
	Regions  []project.Region `json:"regions,omitempty"`
	Genes    []project.Gene   `json:"genes,omitempty"`
	Domains  []project.Domain `json:"domains,omitempty"`
	Offset   int              `json:"offset"`
	Paginate int              `json:"paginate"`
	Total    int              `json:"total"`
}

// registerSearch mounts the query-evaluation-and-projection endpoint.
// Non-JSON return types (csv/fasta/fastaa/genbank) bypass the envelope
// entirely and stream the raw artifact project.Project produced.
func (d *deps) registerSearch(r httpkit.Router) {
	r.Post("/search", d.handleSearch)
}

func (d *deps) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := bind.ParseJSON[searchRequest](r)
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}

	ids, err := search.Eval(ctx, &req.Query.Terms, d.lookup)
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	page := paginate(ids, req.Offset, req.Paginate)

	st := project.SearchType(req.Query.SearchType)
	rt := project.ReturnType(req.Query.ReturnType)

	if rt != project.ReturnJSON {
		result, err := project.Project(ctx, d.fetcher, st, rt, page, d.genbankDir)
		if err != nil {
			phttp.RespondError(w, r, err)
			return
		}
		writeArtifact(w, result)
		return
	}

	resp, err := d.jsonSearchResponse(ctx, st, page, req.Offset, len(ids))
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}
	phttp.RespondOK(w, r, resp)
}

func paginate(ids []int32, offset, size int) []int32 {
	total := len(ids)
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if size > 0 && offset+size < end {
		end = offset + size
	}
	return ids[offset:end]
}

func (d *deps) jsonSearchResponse(ctx context.Context, st project.SearchType, ids []int32, offset, total int) (searchResponse, error) {
	resp := searchResponse{Offset: offset, Paginate: total, Total: total}
	switch st {
	case project.SearchRegion:
		regions, err := d.fetcher.FetchRegions(ctx, ids)
		if err != nil {
			return searchResponse{}, err
		}
		resp.Regions = regions
	case project.SearchGene:
		genes, err := d.fetcher.FetchGenes(ctx, ids)
		if err != nil {
			return searchResponse{}, err
		}
		resp.Genes = genes
	case project.SearchDomain:
		domains, err := d.fetcher.FetchDomains(ctx, ids)
		if err != nil {
			return searchResponse{}, err
		}
		resp.Domains = domains
	default:
		return searchResponse{}, perr.InvalidArgf("unknown search type %q", st)
	}
	return resp, nil
}

// writeArtifact streams a non-JSON projection result with the matching
// content type, bypassing the envelope entirely.
func writeArtifact(w http.ResponseWriter, result project.Result) {
	switch result.Extension {
	case "csv":
		w.Header().Set("Content-Type", "text/tab-separated-values; charset=utf-8")
	case "fa":
		w.Header().Set("Content-Type", "text/x-fasta; charset=utf-8")
	case "zip":
		w.Header().Set("Content-Type", "application/zip")
	default:
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Body)
}

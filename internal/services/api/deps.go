// Package api mounts the HTTP surface: category/typeahead browsing,
// query conversion and search, entity lookup (assembly/genome/area/
// goto/tree/stats), and job submission/status. Grounded on the teacher's
// services/api module layout (_examples/ryansgi-swearjar/internal/services/api)
// for wiring shape, and on _examples/original_source/src/api/*.rs for the
// per-route semantics.
package api

import (
	"context"
	"time"

	"bgcapi/internal/core/entities"
	"bgcapi/internal/core/jobmodel"
	"bgcapi/internal/core/project"
	"bgcapi/internal/core/search"
	"bgcapi/internal/core/terms"
)

// deps bundles every port the HTTP handlers call through. Unlike the
// teacher's multi-module api package, bgcapi's domain logic already lives
// in internal/core and internal/services/bgc/repo, so this single module
// is transport plumbing: it has no business logic of its own beyond
// translating requests into core calls and core results into envelopes.
type deps struct {
	lookup    search.Lookup
	fetcher   project.Fetcher
	termsRepo terms.Lookup
	entities  entitiesPort
	jobs      jobmodel.Store
	jobReader jobReader

	jobDir     string
	genbankDir string
	urlRoot    string
	startedAt  time.Time
}

// entitiesPort bundles the four entities ports a single repo
// implementation satisfies, so deps can hold one field instead of four.
type entitiesPort interface {
	entities.AreaLookup
	entities.CanonicalResolver
	entities.TreeBrowser
	entities.StatsSource
}

// jobReader is the single extra read path the job-status endpoint needs
// beyond jobmodel.Store, which has no "fetch one" operation.
type jobReader interface {
	FetchByID(ctx context.Context, id string) (*jobmodel.JobEntry, error)
}

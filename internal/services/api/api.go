package api

import (
	"time"

	"bgcapi/internal/modkit/httpkit"
	"bgcapi/internal/modkit/swaggerkit"
	phttp "bgcapi/internal/platform/net/http"
	"bgcapi/internal/platform/store"

	bgcrepo "bgcapi/internal/services/bgc/repo"
	jobsrepo "bgcapi/internal/services/jobs/repo"
)

// Options configures the mounted API surface.
type Options struct {
	Store         *store.Store
	JobDir        string
	GenbankDir    string
	URLRoot       string
	EnableSwagger bool
}

// Mount wires the bgc-domain repos against opt.Store and registers the
// full §6 route table under /api, using the teacher's middleware stack
// and router seam.
func Mount(r phttp.Router, opt Options) {
	q := opt.Store.PG

	d := &deps{
		lookup:     bgcrepo.NewLookup(q),
		fetcher:    bgcrepo.NewFetcher(q),
		termsRepo:  bgcrepo.NewTerms(q),
		entities:   bgcrepo.NewEntities(q),
		jobs:       jobsrepo.NewJobs(q),
		jobReader:  jobsrepo.NewJobs(q),
		jobDir:     opt.JobDir,
		genbankDir: opt.GenbankDir,
		urlRoot:    opt.URLRoot,
		startedAt:  time.Now(),
	}

	httpkit.MountUnder(r, "/api", httpkit.CommonStack(), func(api httpkit.Router) {
		swaggerkit.Mount(r, opt.EnableSwagger)
		d.registerAvailable(api)
		d.registerConvert(api)
		d.registerSearch(api)
		d.registerEntities(api)
		d.registerJobs(api)
	})
}

// @title         BGC Database API
// @version       1.0.0
// @description   Search, browse and job endpoints over a antiSMASH-DB-shaped Postgres schema

package main

import (
	"context"
	"flag"
	"time"

	"bgcapi/internal/platform/config"
	"bgcapi/internal/platform/logger"
	phttp "bgcapi/internal/platform/net/http"
	"bgcapi/internal/platform/store"

	"bgcapi/internal/core/jobmodel"
	"bgcapi/internal/services/api"
	"bgcapi/internal/services/jobs/blastcmd"
	"bgcapi/internal/services/jobs/cleanup"
	"bgcapi/internal/services/jobs/clusterblast"
	"bgcapi/internal/services/jobs/comparippson"
	"bgcapi/internal/services/jobs/dispatch"
	"bgcapi/internal/services/jobs/ping"
	jobsrepo "bgcapi/internal/services/jobs/repo"
	"bgcapi/internal/services/jobs/storedquery"

	bgcrepo "bgcapi/internal/services/bgc/repo"
)

func main() {
	root := config.New()
	l := logger.Get()

	var (
		fMode     = flag.String("mode", "serve", "run mode: serve | run | cleanup")
		fAddress  = flag.String("address", "", "serve mode: listen address, e.g. :4000 (default API_PORT env or :4000)")
		fName     = flag.String("name", "worker-1", "run mode: worker name, claims jobs and owns its control row")
		fPoll     = flag.Duration("poll", time.Second, "run mode: poll interval between claim attempts")
		fInterval = flag.Float64("interval", 1.0, "cleanup mode: reap jobs older than this many days")
		fJobDir   = flag.String("jobdir", "", "job output directory (default JOBDIR env or ./jobs)")
		fDBDir    = flag.String("dbdir", "", "BLAST database / metadata directory (default DBDIR env or ./db)")
		fOutDir   = flag.String("outdir", "", "GenBank record directory (default OUTDIR env or ./out)")
		fURLRoot  = flag.String("urlroot", "", "public antiSMASH output URL root (default URLROOT env)")
		fSwagger  = flag.Bool("swagger", true, "serve mode: mount /api/docs")
		fBlastp   = flag.String("blastp", "blastp", "run mode: path to the blastp binary")
		fMaxHits  = flag.Int("max-hits", 50, "run mode: max BLAST hits per job")
	)
	flag.Parse()

	jobDir := root.JobDir(defaultString(*fJobDir, "./jobs"))
	dbDir := root.DBDir(defaultString(*fDBDir, "./db"))
	genbankDir := root.OutDir(defaultString(*fOutDir, "./out"))
	urlRoot := root.URLRoot(*fURLRoot)

	dsn := root.DatabaseURL()
	st, err := store.Open(
		context.Background(),
		store.Config{
			PG: store.PGConfig{
				Enabled:     true,
				URL:         dsn,
				MaxConns:    int32(root.MayInt("DB_MAX_CONNS", 8)),
				SlowQueryMs: root.MayInt("DB_SLOW_MS", 500),
				LogSQL:      root.MayBool("DB_LOG_SQL", false),
			},
		},
		store.WithLogger(*l),
	)
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	switch *fMode {
	case "serve":
		runServe(st, jobDir, genbankDir, urlRoot, *fAddress, *fSwagger)
	case "run":
		runWorker(st, *fName, *fPoll, jobDir, genbankDir, dbDir, *fBlastp, *fMaxHits)
	case "cleanup":
		runCleanup(st, jobDir, *fInterval)
	default:
		l.Panic().Str("mode", *fMode).Msg("bgcapi: unknown -mode (expected: serve | run | cleanup)")
	}
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func runServe(st *store.Store, jobDir, genbankDir, urlRoot, address string, swagger bool) {
	l := logger.Get()

	var srv *phttp.Server
	if address != "" {
		srv = phttp.NewServerAddr(address)
	} else {
		srv = phttp.NewServer(config.New().Prefix("API_"))
	}

	api.Mount(srv.Router(), api.Options{
		Store:         st,
		JobDir:        jobDir,
		GenbankDir:    genbankDir,
		URLRoot:       urlRoot,
		EnableSwagger: swagger,
	})

	if err := srv.Run(context.Background()); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}

func runWorker(st *store.Store, name string, poll time.Duration, jobDir, genbankDir, dbDir, blastpPath string, maxHits int) {
	l := logger.Get()

	jobs := jobsrepo.NewJobs(st.PG)
	controls := jobsrepo.NewControls(st.PG)
	fetcher := bgcrepo.NewFetcher(st.PG)

	metaPath := dbDir + "/comparippson_metadata.json"
	meta, err := comparippson.LoadMetadata(metaPath)
	if err != nil {
		l.Warn().Err(err).Str("path", metaPath).Msg("comparippson metadata unavailable, comparippson jobs will find no hits")
		meta = jobmodel.NewMetadata(nil)
	}

	d := &dispatch.Dispatcher{
		Name:    name,
		Queue:   jobs,
		Store:   jobs,
		Control: controls,
		Poll:    poll,
		Handlers: map[jobmodel.Kind]dispatch.Handler{
			jobmodel.KindPing: ping.Handle,
			jobmodel.KindClusterBlast: clusterblast.Handler{Config: blastcmd.Config{
				BlastpPath: blastpPath,
				Database:   dbDir + "/clusterblast",
				MaxHits:    maxHits,
			}}.Handle,
			jobmodel.KindCompaRiPPson: comparippson.Handler{
				Config: blastcmd.Config{
					BlastpPath: blastpPath,
					Database:   dbDir + "/comparippson",
					MaxHits:    maxHits,
				},
				Metadata: meta,
			}.Handle,
			jobmodel.KindStoredQuery: storedquery.Handler{
				Fetcher:    fetcher,
				JobDir:     jobDir,
				GenbankDir: genbankDir,
			}.Handle,
		},
	}

	l.Info().Str("worker", name).Msg("bgcapi worker starting")
	d.Run(context.Background())
}

func runCleanup(st *store.Store, jobDir string, intervalDays float64) {
	l := logger.Get()
	if intervalDays < 0 {
		l.Panic().Float64("interval", intervalDays).Msg("cleanup mode: -interval must be >= 0")
	}

	jobs := jobsrepo.NewJobs(st.PG)
	reaper := cleanup.Reaper{
		Queue:  jobs,
		Store:  jobs,
		JobDir: jobDir,
		MaxAge: time.Duration(intervalDays * float64(24*time.Hour)),
	}

	if err := reaper.Run(context.Background()); err != nil {
		l.Fatal().Err(err).Msg("cleanup sweep failed")
	}
}

// Package cleanup implements the one-shot reaper sweep that removes
// expired and tombstoned jobs: their output directory and their database
// row, then rolls per-kind lifetime counters. Grounded on cleanup/mod.rs.
package cleanup

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"bgcapi/internal/core/jobmodel"
	perr "bgcapi/internal/platform/errors"
	"bgcapi/internal/platform/logger"
)

// Reaper runs a single sweep over every job that is either tombstoned
// (status=Delete) or older than MaxAge, freeing its output directory and
// database row. Unlike the dispatcher, this is not a long-running loop:
// Run drains the queue and returns.
type Reaper struct {
	Queue  ReapQueue
	Store  jobmodel.Store
	JobDir string
	MaxAge time.Duration
}

// ReapQueue finds jobs ready for deletion and vacuums the jobs/controls
// tables once the sweep completes.
type ReapQueue interface {
	NextReapable(ctx context.Context, maxAge time.Duration) (*jobmodel.JobEntry, bool, error)
	Vacuum(ctx context.Context) error
}

// Run drains every reapable job in submission order, then issues a
// vacuum on the jobs/controls tables and returns. A directory-removal or
// row-delete error for any one job is fatal: the reaper stops the sweep
// rather than silently skip a job it couldn't clean up, leaving the
// remainder for the next invocation.
func (r *Reaper) Run(ctx context.Context) error {
	log := logger.C(logger.WithWorker(ctx, "cleanup"))
	log.Info().Dur("max_age", r.MaxAge).Msg("cleanup sweep starting")

	n := 0
	for {
		job, ok, err := r.Queue.NextReapable(ctx, r.MaxAge)
		if err != nil {
			return perr.IOf("fetch next reapable job: %v", err)
		}
		if !ok {
			break
		}
		if err := r.reap(ctx, job); err != nil {
			return err
		}
		n++
	}

	if err := r.Queue.Vacuum(ctx); err != nil {
		log.Error().Err(err).Msg("vacuum failed")
		return perr.IOf("vacuum: %v", err)
	}

	log.Info().Int("reaped", n).Msg("cleanup sweep complete")
	return nil
}

func (r *Reaper) reap(ctx context.Context, job *jobmodel.JobEntry) error {
	log := logger.C(ctx).With().Str("job_id", job.ID).Logger()

	dir := filepath.Join(r.JobDir, job.ID)
	if _, err := os.Stat(dir); err == nil {
		if err := os.RemoveAll(dir); err != nil {
			log.Error().Err(err).Msg("failed to remove job output directory")
			return perr.IOf("remove job output dir %s: %v", dir, err)
		}
	} else if !os.IsNotExist(err) {
		log.Error().Err(err).Msg("failed to stat job output directory")
		return perr.IOf("stat job output dir %s: %v", dir, err)
	}

	if err := jobmodel.Delete(ctx, r.Store, job); err != nil {
		log.Error().Err(err).Msg("failed to delete job row")
		return err
	}

	log.Info().Msg("reaped job")
	return nil
}

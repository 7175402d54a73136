// Package dispatch runs the single-worker job loop: claim the next
// pending job, run its handler, persist the result. Grounded on
// jobs/mod.rs::dispatch, with one deliberate divergence: a handler error
// is caught and recorded on the job (status=error) rather than propagated
// out of the loop, so one bad job never kills the worker.
package dispatch

import (
	"context"
	"time"

	"bgcapi/internal/core/jobmodel"
	"bgcapi/internal/platform/logger"
)

// Queue claims the next runnable job, transitioning it to Running as part
// of the claim so two dispatcher instances never run the same job twice.
type Queue interface {
	ClaimNext(ctx context.Context, runner string) (*jobmodel.JobEntry, bool, error)
}

// Handler executes one job, mutating its JobType in place with results.
// A returned error marks the job Error; the loop continues regardless.
type Handler func(ctx context.Context, j *jobmodel.JobEntry) error

// Dispatcher runs the poll/claim/handle/commit loop for one named worker.
type Dispatcher struct {
	Name     string
	Queue    Queue
	Store    jobmodel.Store
	Control  jobmodel.ControlStore
	Handlers map[jobmodel.Kind]Handler
	Poll     time.Duration
}

// Run blocks until ctx is cancelled or the worker's Control row is marked
// StopScheduled. It never returns an error: handler failures are recorded
// on the job itself, and transient store errors are logged and retried
// after the poll interval.
func (d *Dispatcher) Run(ctx context.Context) {
	poll := d.Poll
	if poll <= 0 {
		poll = time.Second
	}
	log := logger.C(logger.WithWorker(ctx, d.Name))
	log.Info().Msg("dispatcher starting")

	if d.Control != nil {
		if err := d.Control.Commit(ctx, &jobmodel.Control{
			Name:          d.Name,
			Status:        "running",
			StopScheduled: false,
			Version:       "0",
		}); err != nil {
			log.Error().Err(err).Msg("failed to upsert control row")
		}
	}

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("dispatcher stopping: context cancelled")
			return
		default:
		}

		if d.stopRequested(ctx) {
			log.Info().Msg("dispatcher stopping: stop scheduled")
			return
		}

		job, ok, err := d.Queue.ClaimNext(ctx, d.Name)
		if err != nil {
			log.Error().Err(err).Msg("claim next job failed")
			sleep(ctx, poll)
			continue
		}
		if !ok {
			sleep(ctx, poll)
			continue
		}

		d.run(ctx, job)
	}
}

func (d *Dispatcher) run(ctx context.Context, job *jobmodel.JobEntry) {
	log := logger.C(ctx).With().Str("job_id", job.ID).Str("kind", string(job.Type.Kind)).Logger()

	handler, ok := d.Handlers[job.Type.Kind]
	if !ok {
		log.Error().Msg("no handler registered for job kind")
		job.Status = jobmodel.StatusError
	} else if err := handler(ctx, job); err != nil {
		log.Error().Err(err).Msg("job handler failed")
		job.Status = jobmodel.StatusError
	} else {
		job.Status = jobmodel.StatusDone
	}

	if err := jobmodel.Commit(ctx, d.Store, job); err != nil {
		log.Error().Err(err).Msg("failed to commit job result")
	}
}

func (d *Dispatcher) stopRequested(ctx context.Context) bool {
	if d.Control == nil {
		return false
	}
	ctl, err := d.Control.Fetch(ctx, d.Name)
	if err != nil || ctl == nil {
		return false
	}
	return ctl.StopScheduled
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

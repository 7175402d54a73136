// Package repo implements the Postgres-backed jobmodel.Store,
// jobmodel.ControlStore, and dispatch.Queue ports. Grounded on
// models/job.rs and models/control.rs for row shape, and
// jobs/mod.rs::dispatch for the claim-next-pending query.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"bgcapi/internal/core/jobmodel"
	"bgcapi/internal/modkit/repokit"
	perr "bgcapi/internal/platform/errors"
)

// Jobs implements jobmodel.Store and dispatch.Queue against the jobs
// table. The JobType union is stored as a single jsonb payload column
// alongside the discriminating kind, mirroring the reference schema's
// single jobtype jsonb column.
type Jobs struct {
	q repokit.Queryer
}

// NewJobs binds a Queryer to a Jobs repo.
func NewJobs(q repokit.Queryer) *Jobs { return &Jobs{q: q} }

func (r *Jobs) Exists(ctx context.Context, id string) (bool, int, error) {
	row := r.q.QueryRow(ctx, `select version from antismash.jobs where id = $1`, id)
	var version int
	if err := row.Scan(&version); err != nil {
		if isNoRows(err) {
			return false, 0, nil
		}
		return false, 0, err
	}
	return true, version, nil
}

func (r *Jobs) Insert(ctx context.Context, j *jobmodel.JobEntry) error {
	payload, err := json.Marshal(j.Type)
	if err != nil {
		return perr.JSONErrf("marshal job type: %v", err)
	}
	_, err = r.q.Exec(ctx, `
insert into antismash.jobs (id, kind, status, runner, submitted_date, version, payload)
values ($1, $2, $3, $4, $5, 0, $6)
`, j.ID, string(j.Type.Kind), string(j.Status), j.Runner, j.SubmittedDate, payload)
	return err
}

func (r *Jobs) UpdateVersioned(ctx context.Context, j *jobmodel.JobEntry, expectedVersion int) (int64, error) {
	payload, err := json.Marshal(j.Type)
	if err != nil {
		return 0, perr.JSONErrf("marshal job type: %v", err)
	}
	tag, err := r.q.Exec(ctx, `
update antismash.jobs
set status = $1, runner = $2, payload = $3, version = version + 1
where id = $4 and version = $5
`, string(j.Status), j.Runner, payload, j.ID, expectedVersion)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *Jobs) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `delete from antismash.jobs where id = $1`, id)
	return err
}

func (r *Jobs) IncrementStats(ctx context.Context, kind jobmodel.Kind) error {
	_, err := r.q.Exec(ctx, `
insert into antismash.job_stats (kind, total) values ($1, 1)
on conflict (kind) do update set total = antismash.job_stats.total + 1
`, string(kind))
	return err
}

// FetchByID loads one job row verbatim, used by the job-status endpoint.
// Returns (nil, nil) if no such job exists.
func (r *Jobs) FetchByID(ctx context.Context, id string) (*jobmodel.JobEntry, error) {
	row := r.q.QueryRow(ctx, `
select id, kind, status, runner, payload, submitted_date, version
from antismash.jobs where id = $1
`, id)

	var (
		kind, status string
		runner       *string
		payload      []byte
		submitted    time.Time
		version      int
	)
	if err := row.Scan(&id, &kind, &status, &runner, &payload, &submitted, &version); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	jt, err := unmarshalJobType(jobmodel.Kind(kind), payload)
	if err != nil {
		return nil, err
	}
	j := &jobmodel.JobEntry{
		ID: id, Type: jt, Status: jobmodel.Status(status),
		SubmittedDate: submitted, Version: version,
	}
	if runner != nil {
		j.Runner = *runner
	}
	return j, nil
}

// ClaimNext atomically claims the oldest pending job for runner, marking
// it Running. SKIP LOCKED lets multiple dispatcher processes share the
// table without blocking on each other's claims.
func (r *Jobs) ClaimNext(ctx context.Context, runner string) (*jobmodel.JobEntry, bool, error) {
	row := r.q.QueryRow(ctx, `
update antismash.jobs
set status = $1, runner = $2
where id = (
	select id from antismash.jobs
	where status = $3
	order by submitted_date
	for update skip locked
	limit 1
)
returning id, kind, payload, submitted_date, version
`, string(jobmodel.StatusRunning), runner, string(jobmodel.StatusPending))

	var (
		id, kind      string
		payload       []byte
		submitted     time.Time
		version       int
	)
	if err := row.Scan(&id, &kind, &payload, &submitted, &version); err != nil {
		if isNoRows(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	jt, err := unmarshalJobType(jobmodel.Kind(kind), payload)
	if err != nil {
		return nil, false, err
	}

	j := &jobmodel.JobEntry{
		ID:            id,
		Type:          jt,
		Status:        jobmodel.StatusRunning,
		Runner:        runner,
		SubmittedDate: submitted,
		Version:       version,
	}
	return j, true, nil
}

// NextReapable returns the oldest job that is either tombstoned
// (status=Delete) or has aged past maxAge since submission, ordering
// oldest-first so a single sweep drains in submission order.
func (r *Jobs) NextReapable(ctx context.Context, maxAge time.Duration) (*jobmodel.JobEntry, bool, error) {
	row := r.q.QueryRow(ctx, `
select id, kind, status, runner, payload, submitted_date, version from antismash.jobs
where status = $1 or submitted_date < $2
order by submitted_date
for update skip locked
limit 1
`, string(jobmodel.StatusDelete), time.Now().Add(-maxAge))

	var (
		id, kind, status string
		runner           *string
		payload          []byte
		submitted        time.Time
		version          int
	)
	if err := row.Scan(&id, &kind, &status, &runner, &payload, &submitted, &version); err != nil {
		if isNoRows(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	jt, err := unmarshalJobType(jobmodel.Kind(kind), payload)
	if err != nil {
		return nil, false, err
	}
	j := &jobmodel.JobEntry{
		ID: id, Type: jt, Status: jobmodel.Status(status),
		SubmittedDate: submitted, Version: version,
	}
	if runner != nil {
		j.Runner = *runner
	}
	return j, true, nil
}

// Vacuum runs VACUUM on the jobs and controls tables. Called once at
// reaper shutdown, matching cleanup/mod.rs's end-of-run vacuum pass.
func (r *Jobs) Vacuum(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, `vacuum antismash.jobs`); err != nil {
		return err
	}
	_, err := r.q.Exec(ctx, `vacuum antismash.controls`)
	return err
}

func unmarshalJobType(kind jobmodel.Kind, payload []byte) (jobmodel.JobType, error) {
	jt := jobmodel.JobType{Kind: kind}
	var err error
	switch kind {
	case jobmodel.KindPing:
		jt.Ping = new(jobmodel.PingJob)
		err = json.Unmarshal(payload, jt.Ping)
	case jobmodel.KindClusterBlast:
		jt.ClusterBlast = new(jobmodel.ClusterBlastJob)
		err = json.Unmarshal(payload, jt.ClusterBlast)
	case jobmodel.KindCompaRiPPson:
		jt.CompaRiPPson = new(jobmodel.CompaRiPPsonJob)
		err = json.Unmarshal(payload, jt.CompaRiPPson)
	case jobmodel.KindStoredQuery:
		jt.StoredQuery = new(jobmodel.StoredQueryJob)
		err = json.Unmarshal(payload, jt.StoredQuery)
	default:
		return jobmodel.JobType{}, perr.InvalidArgf("unknown job kind %q", kind)
	}
	if err != nil {
		return jobmodel.JobType{}, perr.JSONErrf("unmarshal job payload: %v", err)
	}
	return jt, nil
}

// Controls implements jobmodel.ControlStore against the controls table.
type Controls struct {
	q repokit.Queryer
}

// NewControls binds a Queryer to a Controls repo.
func NewControls(q repokit.Queryer) *Controls { return &Controls{q: q} }

func (r *Controls) Fetch(ctx context.Context, name string) (*jobmodel.Control, error) {
	row := r.q.QueryRow(ctx, `select name, status, stop_scheduled, version from antismash.controls where name = $1`, name)
	var c jobmodel.Control
	if err := row.Scan(&c.Name, &c.Status, &c.StopScheduled, &c.Version); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *Controls) Commit(ctx context.Context, c *jobmodel.Control) error {
	_, err := r.q.Exec(ctx, `
insert into antismash.controls (name, status, stop_scheduled, version)
values ($1, $2, $3, $4)
on conflict (name) do update set status = $2, stop_scheduled = $3, version = $4
`, c.Name, c.Status, c.StopScheduled, c.Version)
	return err
}

func (r *Controls) Delete(ctx context.Context, name string) error {
	_, err := r.q.Exec(ctx, `delete from antismash.controls where name = $1`, name)
	return err
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// Package jobmodel defines the asynchronous job domain: the discriminated
// JobEntry/JobType union, job status, the per-worker Control row, and the
// versioned optimistic-concurrency commit/delete protocol shared by every
// job kind. Actual persistence is delegated to a Store port implemented by
// the services/jobs repo layer.
package jobmodel

import (
	"context"
	"time"

	"github.com/google/uuid"

	perr "bgcapi/internal/platform/errors"
)

// Status is the lifecycle state of a JobEntry.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusError   Status = "error"
	StatusDelete  Status = "delete"
)

// Kind discriminates the JobType union.
type Kind string

const (
	KindPing         Kind = "ping"
	KindClusterBlast Kind = "clusterblast"
	KindCompaRiPPson Kind = "comparippson"
	KindStoredQuery  Kind = "storedquery"
)

// JobType is a closed, discriminated union over the four job kinds a
// JobEntry can carry. Exactly one of the pointer fields is non-nil,
// selected by Kind.
type JobType struct {
	Kind         Kind
	Ping         *PingJob
	ClusterBlast *ClusterBlastJob
	CompaRiPPson *CompaRiPPsonJob
	StoredQuery  *StoredQueryJob
}

// PingJob is the trivial smoke-test job: echo a greeting back.
type PingJob struct {
	Greeting string
	Reply    string
}

// JobEntry is one row of work, versioned for optimistic concurrency.
type JobEntry struct {
	ID            string
	Type          JobType
	Status        Status
	Runner        string
	SubmittedDate time.Time
	Version       int
}

// New allocates a fresh JobEntry in Pending state with a random ID.
// SubmittedDate is taken from submitted (this package avoids time.Now() so
// callers control the clock in tests).
func New(t JobType, submitted time.Time) *JobEntry {
	return &JobEntry{
		ID:            uuid.NewString(),
		Type:          t,
		Status:        StatusPending,
		SubmittedDate: submitted,
		Version:       0,
	}
}

// Store is the persistence port the commit/delete protocol runs against.
type Store interface {
	// Exists reports whether a job row with this ID is present, and if so
	// its current version.
	Exists(ctx context.Context, id string) (exists bool, version int, err error)
	// Insert writes a brand new row (version 0).
	Insert(ctx context.Context, j *JobEntry) error
	// UpdateVersioned applies a conditional UPDATE ... WHERE id = ? AND
	// version = ?, returning the number of rows affected. Callers treat 0
	// rows affected as a conflict.
	UpdateVersioned(ctx context.Context, j *JobEntry, expectedVersion int) (rowsAffected int64, err error)
	// Delete removes the row outright.
	Delete(ctx context.Context, id string) error
	// IncrementStats bumps the total_jobs and per-kind job counters.
	IncrementStats(ctx context.Context, kind Kind) error
}

// Commit persists j: INSERT if the ID is new (version stamped to 0),
// otherwise a version-checked UPDATE. A zero-row UPDATE is a genuine
// optimistic-concurrency conflict and is reported as such.
func Commit(ctx context.Context, s Store, j *JobEntry) error {
	exists, _, err := s.Exists(ctx, j.ID)
	if err != nil {
		return err
	}
	if !exists {
		j.Version = 0
		return s.Insert(ctx, j)
	}
	rows, err := s.UpdateVersioned(ctx, j, j.Version)
	if err != nil {
		return err
	}
	if rows == 0 {
		return perr.Conflictf("job %s: version conflict (expected %d)", j.ID, j.Version)
	}
	j.Version = j.Version + 1
	return nil
}

// Delete removes j and rolls its kind into the lifetime job counters. This
// is the terminal step of the cleanup reaper, not a user-facing cancel.
func Delete(ctx context.Context, s Store, j *JobEntry) error {
	if err := s.Delete(ctx, j.ID); err != nil {
		return err
	}
	return s.IncrementStats(ctx, j.Type.Kind)
}

// Control is the one-row-per-worker heartbeat/stop-flag record used by the
// dispatcher and cleanup reaper loops.
type Control struct {
	Name          string
	Status        string
	StopScheduled bool
	Version       string
}

// ControlStore persists Control rows, upserted by Name.
type ControlStore interface {
	Fetch(ctx context.Context, name string) (*Control, error)
	Commit(ctx context.Context, c *Control) error
	Delete(ctx context.Context, name string) error
}

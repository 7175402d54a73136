// Package storedquery implements the stored-query job handler: replay a
// previously-resolved ID set through the output projector and write the
// resulting artifact to the job's output directory. Grounded on
// jobs/stored_query.rs.
package storedquery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"bgcapi/internal/core/jobmodel"
	"bgcapi/internal/core/project"
	perr "bgcapi/internal/platform/errors"
)

// Handler materialises stored-query job results to files under JobDir,
// one subdirectory per job ID.
type Handler struct {
	Fetcher    project.Fetcher
	JobDir     string
	GenbankDir string
}

// Handle projects j's ID set to the requested format and writes it under
// JobDir/<job id>/<filename>, recording the relative filename on the job
// entry for the HTTP layer to build a download URL from.
func (h Handler) Handle(ctx context.Context, j *jobmodel.JobEntry) error {
	sq := j.Type.StoredQuery
	if sq == nil {
		return nil
	}

	res, err := project.Project(ctx, h.Fetcher,
		project.SearchType(sq.SearchType), project.ReturnType(sq.ReturnType), sq.IDs, h.GenbankDir)
	if err != nil {
		return err
	}

	dir := filepath.Join(h.JobDir, j.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return perr.IOf("create job output dir: %v", err)
	}

	filename := sq.Filename
	if filename == "" {
		filename = fmt.Sprintf("%s.%s", sq.SearchType, res.Extension)
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, res.Body, 0o644); err != nil {
		return perr.IOf("write job output: %v", err)
	}

	sq.Filename = filename
	return nil
}

// Package ping implements the trivial smoke-test job handler.
package ping

import (
	"context"
	"fmt"

	"bgcapi/internal/core/jobmodel"
	perr "bgcapi/internal/platform/errors"
)

// Handle echoes the greeting back, prefixed, exercising the full
// claim/run/commit path without touching the database or a subprocess.
func Handle(_ context.Context, j *jobmodel.JobEntry) error {
	if j.Type.Ping == nil {
		return perr.InvalidArgf("ping job %s has no Ping payload", j.ID)
	}
	j.Type.Ping.Reply = fmt.Sprintf("You said '%s', I say 'PONG'!", j.Type.Ping.Greeting)
	return nil
}

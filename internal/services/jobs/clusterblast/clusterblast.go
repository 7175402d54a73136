// Package clusterblast implements the ClusterBlast job handler: BLAST the
// user's input sequence against the pre-built ClusterBlast database and
// decode each hit's pipe-delimited subject accession. Grounded on
// jobs/clusterblast.rs.
package clusterblast

import (
	"bufio"
	"context"
	"strings"

	"bgcapi/internal/core/jobmodel"
	"bgcapi/internal/services/jobs/blastcmd"
)

// Handler runs ClusterBlast jobs against a fixed database/binary
// configuration.
type Handler struct {
	Config blastcmd.Config
}

// Handle BLASTs j's input sequence and parses every result line. A line
// that fails either the 11-field BlastResult parse or the 7-field subject
// accession decode fails the whole job: malformed BLAST output is not a
// per-hit condition a caller can act on.
func (h Handler) Handle(ctx context.Context, j *jobmodel.JobEntry) error {
	cb := j.Type.ClusterBlast
	if cb == nil {
		return nil
	}

	out, err := blastcmd.Run(ctx, h.Config, cb.Input.ToFASTA())
	if err != nil {
		return err
	}

	var results []jobmodel.ClusterBlastResult
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		hit, err := jobmodel.ParseBlastResult(line)
		if err != nil {
			return err
		}
		cbResult, err := jobmodel.ParseClusterBlastResult(hit)
		if err != nil {
			return err
		}
		results = append(results, cbResult)
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	cb.Results = results
	return nil
}

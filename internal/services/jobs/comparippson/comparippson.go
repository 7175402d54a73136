// Package comparippson implements the CompaRiPPson job handler: BLAST the
// user's input sequence against the MIBiG RiPP reference set and resolve
// each hit through the pre-loaded metadata dictionary. Grounded on
// jobs/comparippson.rs.
package comparippson

import (
	"bufio"
	"context"
	"strings"

	"bgcapi/internal/core/jobmodel"
	"bgcapi/internal/platform/logger"
	"bgcapi/internal/services/jobs/blastcmd"
)

// Handler runs CompaRiPPson jobs against a fixed database/binary
// configuration and a shared, process-lifetime metadata dictionary.
type Handler struct {
	Config   blastcmd.Config
	Metadata *jobmodel.Metadata
}

// Handle BLASTs j's input sequence and resolves each hit's subject
// accession through h.Metadata. A line that fails the 11-field
// BlastResult parse fails the whole job, matching the ClusterBlast
// handler; a hit with no corresponding metadata entry is skipped (and
// logged) since a reference miss is a legitimate no-match, not malformed
// output.
func (h Handler) Handle(ctx context.Context, j *jobmodel.JobEntry) error {
	cr := j.Type.CompaRiPPson
	if cr == nil {
		return nil
	}

	out, err := blastcmd.Run(ctx, h.Config, cr.Input.ToFASTA())
	if err != nil {
		return err
	}

	log := logger.C(ctx)
	var results []jobmodel.CompaRiPPsonResult
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
		entry, ok := h.Metadata.Lookup(hit.SubjectAcc)
		if !ok {
			log.Warn().Str("subject_acc", hit.SubjectAcc).Msg("no comparippson metadata entry for hit")
			continue
		}
		results = append(results, jobmodel.CompaRiPPsonResult{BlastResult: hit, Entry: entry})
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	cr.Results = results
	return nil
}

// Package blastcmd builds the local BLAST+ subprocess invocations used by
// the ClusterBlast and CompaRiPPson job handlers, the direct Go analogue
// of the reference implementation's tokio::process::Command usage in
// jobs/clusterblast.rs and jobs/comparippson.rs. It leans on
// github.com/biogo/external's ordered Parameters type for argument
// construction rather than hand-building a []string, matching how every
// biogo/external tool wrapper (clustalo, muscle, ...) shapes its command
// line.
package blastcmd

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"

	"github.com/biogo/external"

	perr "bgcapi/internal/platform/errors"
)

// Config names the blastp binary and the pre-built database to search
// against. One Config is built per job kind (ClusterBlast, CompaRiPPson)
// at worker startup from configuration.
type Config struct {
	BlastpPath string
	Database   string
	MaxHits    int
}

// Run executes blastp against fastaInput (a FASTA-formatted query,
// typically a single record), returning the raw tabular output lines
// (outfmt 6 with qseq/sseq appended).
func Run(ctx context.Context, cfg Config, fastaInput string) (string, error) {
	if cfg.BlastpPath == "" {
		return "", perr.InvalidArgf("blastp path is not configured")
	}
	params := external.Parameters{
		{Name: "-db", Value: cfg.Database},
		{Name: "-outfmt", Value: "6 qacc sacc nident qseq qstart qend qlen sseq sstart send slen"},
		{Name: "-max_target_seqs", Value: strconv.Itoa(maxHits(cfg.MaxHits))},
	}

	args := params.Args()
	cmd := exec.CommandContext(ctx, cfg.BlastpPath, args...)
	cmd.Stdin = bytes.NewBufferString(fastaInput)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", perr.IOf("blastp failed: %v: %s", err, stderr.String())
	}
	return stdout.String(), nil
}

func maxHits(n int) int {
	if n <= 0 {
		return 50
	}
	return n
}

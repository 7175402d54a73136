package jobmodel

import (
	"fmt"
	"strconv"
	"strings"

	perr "bgcapi/internal/platform/errors"
)

// BlastInput is the user-supplied query sequence for a BLAST-backed job.
type BlastInput struct {
	Name     string `json:"name" validate:"required"`
	Sequence string `json:"sequence" validate:"required"`
}

// ToFASTA renders the input as a single-record FASTA string suitable for
// feeding to a BLAST subprocess over stdin.
func (b BlastInput) ToFASTA() string {
	return fmt.Sprintf(">%s\n%s\n", b.Name, b.Sequence)
}

// BlastResult is one parsed hit line from tabular BLAST output (outfmt 6
// with q_seq/s_seq appended): q_acc, s_acc, nident, q_seq, q_start, q_end,
// q_len, s_seq, s_start, s_end, s_len.
type BlastResult struct {
	QueryAcc    string
	SubjectAcc  string
	Identical   int
	QuerySeq    string
	QueryStart  int
	QueryEnd    int
	QueryLen    int
	SubjectSeq  string
	SubjectStart int
	SubjectEnd   int
	SubjectLen   int
}

// Identity is the percent sequence identity, normalised by the longer of
// the two sequence lengths.
func (b BlastResult) Identity() float64 {
	denom := b.QueryLen
	if b.SubjectLen > denom {
		denom = b.SubjectLen
	}
	if denom == 0 {
		return 0
	}
	return float64(b.Identical) / float64(denom) * 100
}

// ParseBlastResult parses one tab-separated BLAST output line into a
// BlastResult. Exactly 11 fields are required.
func ParseBlastResult(line string) (BlastResult, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != 11 {
		return BlastResult{}, perr.InvalidArgf("blast output line has %d fields, want 11", len(fields))
	}
	ints := make([]int, 0, 6)
	for _, idx := range []int{2, 4, 5, 6, 8, 9} {
		v, err := strconv.Atoi(fields[idx])
		if err != nil {
			return BlastResult{}, perr.InvalidArgf("blast output field %q is not an integer", fields[idx])
		}
		ints = append(ints, v)
	}
	sLen, err := strconv.Atoi(fields[10])
	if err != nil {
		return BlastResult{}, perr.InvalidArgf("blast output field %q is not an integer", fields[10])
	}
	return BlastResult{
		QueryAcc:     fields[0],
		SubjectAcc:   fields[1],
		Identical:    ints[0],
		QuerySeq:     fields[3],
		QueryStart:   ints[1],
		QueryEnd:     ints[2],
		QueryLen:     ints[3],
		SubjectSeq:   fields[7],
		SubjectStart: ints[4],
		SubjectEnd:   ints[5],
		SubjectLen:   sLen,
	}, nil
}

// ClusterBlastResult is a BlastResult whose subject accession has been
// decoded into its ClusterBlast pipe-delimited fields.
type ClusterBlastResult struct {
	BlastResult
	Accession   string
	RecordStart int
	RecordEnd   int
	Locus       string
	Description string
}

// ParseClusterBlastResult decodes r.SubjectAcc, which must split on '|'
// into exactly 7 fields: the accession (field 0), a record-coordinate range
// (field 2, start-end, split on '-'), the locus tag (field 4), and a
// description with underscores standing in for spaces (field 5); fields 1,
// 3 and 6 are unused.
func ParseClusterBlastResult(r BlastResult) (ClusterBlastResult, error) {
	parts := strings.Split(r.SubjectAcc, "|")
	if len(parts) != 7 {
		return ClusterBlastResult{}, perr.InvalidArgf(
			"clusterblast subject accession %q does not have 7 pipe-delimited fields", r.SubjectAcc)
	}
	coords := strings.SplitN(parts[2], "-", 2)
	if len(coords) != 2 {
		return ClusterBlastResult{}, perr.InvalidArgf(
			"clusterblast subject accession %q has malformed coordinates %q", r.SubjectAcc, parts[2])
	}
	start, err := strconv.Atoi(coords[0])
	if err != nil {
		return ClusterBlastResult{}, perr.InvalidArgf("invalid record start %q", coords[0])
	}
	end, err := strconv.Atoi(coords[1])
	if err != nil {
		return ClusterBlastResult{}, perr.InvalidArgf("invalid record end %q", coords[1])
	}
	return ClusterBlastResult{
		BlastResult: r,
		Accession:   parts[0],
		RecordStart: start,
		RecordEnd:   end,
		Locus:       parts[4],
		Description: strings.ReplaceAll(parts[5], "_", " "),
	}, nil
}

// ClusterBlastJob runs a ClusterBlast-style comparison of a user sequence
// against the pre-built antiSMASH ClusterBlast database.
type ClusterBlastJob struct {
	Input   BlastInput
	Results []ClusterBlastResult
}

// CompaRiPPsonResult resolves a BlastResult's subject accession through the
// CompaRiPPson metadata dictionary rather than decoding it inline.
type CompaRiPPsonResult struct {
	BlastResult
	Entry MetadataEntry
}

// CompaRiPPsonJob runs a CompaRiPPson comparison of a user sequence against
// the antiSMASH-DB MIBiG RiPP reference set.
type CompaRiPPsonJob struct {
	Input   BlastInput
	Results []CompaRiPPsonResult
}

// MetadataEntry is one dictionary entry loaded from the CompaRiPPson
// metadata.json reference file, keyed by subject accession.
type MetadataEntry struct {
	Accession   string
	Start       uint64
	End         uint64
	Description string
	MibigID     string
}

// Metadata is the immutable, process-lifetime dictionary of CompaRiPPson
// reference entries, loaded once at worker startup.
type Metadata struct {
	entries map[string]MetadataEntry
}

// NewMetadata wraps a pre-loaded entries map.
func NewMetadata(entries map[string]MetadataEntry) *Metadata { return &Metadata{entries: entries} }

// Lookup resolves a subject accession to its metadata entry.
func (m *Metadata) Lookup(accession string) (MetadataEntry, bool) {
	if m == nil {
		return MetadataEntry{}, false
	}
	e, ok := m.entries[accession]
	return e, ok
}

// ParseFuzzyCoord strips a leading '<' or '>' fuzzy-coordinate marker (as
// used by GenBank-derived location strings) before parsing the remaining
// digits as a uint64.
func ParseFuzzyCoord(raw string) (uint64, error) {
	trimmed := strings.TrimLeft(raw, "<>")
	v, err := strconv.ParseUint(trimmed, 10, 64)
	if err != nil {
		return 0, perr.InvalidArgf("invalid coordinate %q", raw)
	}
	return v, nil
}

// StoredQueryJob materialises a previously-executed search's results to a
// file in one of the output formats, rather than BLAST-ing anything.
type StoredQueryJob struct {
	IDs        []int32
	SearchType string
	ReturnType string
	Filename   string
}

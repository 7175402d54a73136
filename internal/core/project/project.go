// Package project materialises a resolved set of region/gene/domain IDs
// into one of the wire output formats: JSON, tab-separated CSV, nucleotide
// or amino-acid FASTA, or a GenBank zip archive. It is the Go counterpart
// of the stored-query job's run_region/run_cds/run_domain dispatch: this
// package holds the pure formatting logic, while a Fetcher port supplies
// the rows and sequence bytes from the store.
package project

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	perr "bgcapi/internal/platform/errors"
	"bgcapi/internal/platform/logger"

	"golang.org/x/text/unicode/norm"
)

// SearchType mirrors query.SearchType without importing the query package,
// keeping this package usable from the jobs worker alone.
type SearchType string

const (
	SearchRegion SearchType = "region"
	SearchGene   SearchType = "gene"
	SearchDomain SearchType = "domain"
)

// ReturnType mirrors query.ReturnType for the same reason.
type ReturnType string

const (
	ReturnJSON    ReturnType = "json"
	ReturnCSV     ReturnType = "csv"
	ReturnFasta   ReturnType = "fasta"
	ReturnFastaa  ReturnType = "fastaa"
	ReturnGenbank ReturnType = "genbank"
)

// Region is the flattened, display-ready view of a biosynthetic gene
// cluster region (one row of a (possibly hybrid) antiSMASH region).
type Region struct {
	RegionID     int32  `json:"region_id"`
	RecordNumber int32  `json:"record_number"`
	RegionNumber int32  `json:"region_number"`
	StartPos     int32  `json:"start_pos"`
	EndPos       int32  `json:"end_pos"`
	ContigEdge   bool   `json:"contig_edge"`
	Accession    string `json:"accession"`
	AssemblyID   string `json:"assembly_id"`
	Version      int32  `json:"version"`
	Genus        string `json:"genus"`
	Species      string `json:"species"`
	Strain       string `json:"strain"`
	Term         string `json:"term"`
	Description  string `json:"description"`
	Category     string `json:"category"`

	BestMibigHitSimilarity int32  `json:"best_mibig_hit_similarity"`
	BestMibigHitDescription string `json:"best_mibig_hit_description"`
	BestMibigHitAcc         string `json:"best_mibig_hit_acc"`
}

// RegionCSVHeader is the fixed tab-separated header row for Region CSV exports.
const RegionCSVHeader = "#Genus\tSpecies\tStrain\tNCBI accession\tFrom\tTo\tBGC type\t" +
	"On contig edge\tMost similar known cluster\tSimilarity in %\tMIBiG BGC-ID\tResults URL"

// CSVRow renders one tab-separated Region row, including a constructed
// public results URL (matching the antiSMASH-DB web UI's area viewer).
func (r Region) CSVRow() string {
	accWithVersion := fmt.Sprintf("%s.%d", r.Accession, r.Version)
	url := fmt.Sprintf("https://antismash-db.secondarymetabolites.org/area?record=%s&start=%d&end=%d",
		accWithVersion, r.StartPos, r.EndPos)
	fields := []string{
		r.Genus, r.Species, r.Strain, accWithVersion,
		fmt.Sprintf("%d", r.StartPos), fmt.Sprintf("%d", r.EndPos),
		r.Term, fmt.Sprintf("%t", r.ContigEdge),
		r.BestMibigHitDescription, fmt.Sprintf("%d", r.BestMibigHitSimilarity), r.BestMibigHitAcc,
		url,
	}
	return strings.Join(fields, "\t")
}

// Gene is the flattened view of a CDS.
type Gene struct {
	CdsID       int32  `json:"cds_id"`
	LocusTag    string `json:"locus_tag"`
	Translation string `json:"translation"`
	Accession   string `json:"accession"`
	Location    string `json:"location"`
}

const GeneCSVHeader = "#Locus tag\tAccession\tLocation\ttranslation"

func (g Gene) CSVRow() string {
	return strings.Join([]string{g.LocusTag, g.Accession, g.Location, g.Translation}, "\t")
}

// Domain is the flattened view of an antiSMASH domain (aSDomain) hit.
type Domain struct {
	AsDomainID  int32  `json:"as_domain_id"`
	LocusTag    string `json:"locus_tag"`
	Name        string `json:"name"`
	Accession   string `json:"accession"`
	Version     int32  `json:"version"`
	Location    string `json:"location"`
	Translation string `json:"translation"`
}

const DomainCSVHeader = "#Locus tag\tDomain type\tAccession\tLocation\tSequence"

func (d Domain) CSVRow() string {
	return strings.Join([]string{
		d.LocusTag, d.Name, fmt.Sprintf("%s.%d", d.Accession, d.Version), d.Location, d.Translation,
	}, "\t")
}

// WrapSequence breaks seq into lines of at most width runes, joined with
// "\n". Rune-aware (not byte-aware) so multi-byte UTF-8 sequence data never
// splits mid-codepoint.
func WrapSequence(seq string, width int) string {
	if width <= 0 {
		return seq
	}
	runes := []rune(seq)
	var lines []string
	for start := 0; start < len(runes); start += width {
		end := start + width
		if end > len(runes) {
			end = len(runes)
		}
		lines = append(lines, string(runes[start:end]))
	}
	return strings.Join(lines, "\n")
}

// normalizeSeq applies NFC normalisation defensively before wrapping;
// sequence data sourced from GenBank flat files is expected to be plain
// ASCII, but this keeps rune slicing well-defined for any stray
// multi-byte input.
func normalizeSeq(seq string) string { return norm.NFC.String(seq) }

// Fetcher supplies the rows and sequence records a projection needs. It is
// implemented by the job worker's store-backed repo.
type Fetcher interface {
	FetchRegions(ctx context.Context, ids []int32) ([]Region, error)
	FetchRegionFASTA(ctx context.Context, ids []int32) ([]FastaRecord, error)
	FetchGenes(ctx context.Context, ids []int32) ([]Gene, error)
	FetchGeneFASTA(ctx context.Context, ids []int32) ([]FastaRecord, error)
	FetchDomains(ctx context.Context, ids []int32) ([]Domain, error)
	FetchDomainFASTA(ctx context.Context, ids []int32) ([]FastaRecord, error)
}

// FastaRecord is a single FASTA header+sequence pair. When Wrap is set,
// String wraps the sequence at 80 characters; records with Wrap unset are
// rendered unwrapped.
type FastaRecord struct {
	Header   string
	Sequence string
	Wrap     bool
}

// String renders the record as a FASTA block.
func (f FastaRecord) String() string {
	seq := normalizeSeq(f.Sequence)
	if f.Wrap {
		seq = WrapSequence(seq, 80)
	}
	return fmt.Sprintf(">%s\n%s", f.Header, seq)
}

// Result is a materialised artifact held in memory: JSON/CSV/FASTA text, or
// a GenBank zip archive whose bytes are fully buffered into Body.
type Result struct {
	Extension string // e.g. "json", "csv", "fa", "zip"
	Body      []byte
}

// Project dispatches on (searchType, returnType) and produces the output
// artifact for the given IDs. Invalid combinations are rejected with the
// exact messages the reference implementation uses, since operators script
// against those strings.
func Project(ctx context.Context, f Fetcher, st SearchType, rt ReturnType, ids []int32, genbankDir string) (Result, error) {
	switch st {
	case SearchRegion:
		return projectRegion(ctx, f, rt, ids, genbankDir)
	case SearchGene:
		return projectGene(ctx, f, rt, ids)
	case SearchDomain:
		return projectDomain(ctx, f, rt, ids)
	default:
		return Result{}, perr.InvalidArgf("unknown search type %q", st)
	}
}

func projectRegion(ctx context.Context, f Fetcher, rt ReturnType, ids []int32, genbankDir string) (Result, error) {
	switch rt {
	case ReturnJSON:
		regions, err := f.FetchRegions(ctx, ids)
		if err != nil {
			return Result{}, err
		}
		return jsonResult(regionsWrapper{Regions: regions})
	case ReturnCSV:
		regions, err := f.FetchRegions(ctx, ids)
		if err != nil {
			return Result{}, err
		}
		rows := make([]string, 0, len(regions)+1)
		rows = append(rows, RegionCSVHeader)
		for _, r := range regions {
			rows = append(rows, r.CSVRow())
		}
		return Result{Extension: "csv", Body: []byte(strings.Join(rows, "\n"))}, nil
	case ReturnFasta:
		recs, err := f.FetchRegionFASTA(ctx, ids)
		if err != nil {
			return Result{}, err
		}
		return fastaResult(recs), nil
	case ReturnFastaa:
		return Result{}, perr.InvalidArgf("Cannot request region in protein fasta format")
	case ReturnGenbank:
		if genbankDir == "" {
			return Result{}, perr.InvalidArgf("Genbank format requested, but no output directory specified")
		}
		regions, err := f.FetchRegions(ctx, ids)
		if err != nil {
			return Result{}, err
		}
		files := make([]GenbankFile, len(regions))
		for i, r := range regions {
			name := fmt.Sprintf("%s.%d.region%03d.gbk", r.Accession, r.Version, r.RegionNumber)
			files[i] = GenbankFile{
				AssemblyID: r.AssemblyID,
				Path:       filepath.Join(genbankDir, r.AssemblyID, name),
			}
		}
		var buf bytes.Buffer
		if err := WriteGenbankArchive(ctx, &buf, files, openFile); err != nil {
			return Result{}, err
		}
		return Result{Extension: "zip", Body: buf.Bytes()}, nil
	default:
		return Result{}, perr.InvalidArgf("unknown return type %q", rt)
	}
}

func openFile(path string) (io.ReadCloser, error) { return os.Open(path) }

func projectGene(ctx context.Context, f Fetcher, rt ReturnType, ids []int32) (Result, error) {
	switch rt {
	case ReturnJSON:
		genes, err := f.FetchGenes(ctx, ids)
		if err != nil {
			return Result{}, err
		}
		return jsonResult(genes)
	case ReturnCSV:
		genes, err := f.FetchGenes(ctx, ids)
		if err != nil {
			return Result{}, err
		}
		rows := make([]string, 0, len(genes)+1)
		rows = append(rows, GeneCSVHeader)
		for _, g := range genes {
			rows = append(rows, g.CSVRow())
		}
		return Result{Extension: "csv", Body: []byte(strings.Join(rows, "\n"))}, nil
	case ReturnFasta, ReturnFastaa:
		recs, err := f.FetchGeneFASTA(ctx, ids)
		if err != nil {
			return Result{}, err
		}
		return fastaResult(recs), nil
	case ReturnGenbank:
		return Result{}, perr.InvalidArgf("Cannot request CDSes in Genbank format")
	default:
		return Result{}, perr.InvalidArgf("unknown return type %q", rt)
	}
}

func projectDomain(ctx context.Context, f Fetcher, rt ReturnType, ids []int32) (Result, error) {
	switch rt {
	case ReturnJSON:
		domains, err := f.FetchDomains(ctx, ids)
		if err != nil {
			return Result{}, err
		}
		return jsonResult(domains)
	case ReturnCSV:
		domains, err := f.FetchDomains(ctx, ids)
		if err != nil {
			return Result{}, err
		}
		rows := make([]string, 0, len(domains)+1)
		rows = append(rows, DomainCSVHeader)
		for _, d := range domains {
			rows = append(rows, d.CSVRow())
		}
		return Result{Extension: "csv", Body: []byte(strings.Join(rows, "\n"))}, nil
	case ReturnFasta, ReturnFastaa:
		recs, err := f.FetchDomainFASTA(ctx, ids)
		if err != nil {
			return Result{}, err
		}
		return fastaResult(recs), nil
	case ReturnGenbank:
		return Result{}, perr.InvalidArgf("Cannot request domains in Genbank format")
	default:
		return Result{}, perr.InvalidArgf("unknown return type %q", rt)
	}
}

type regionsWrapper struct {
	Regions []Region `json:"regions"`
}

func fastaResult(recs []FastaRecord) Result {
	blocks := make([]string, 0, len(recs))
	for _, r := range recs {
		blocks = append(blocks, r.String())
	}
	return Result{Extension: "fa", Body: []byte(strings.Join(blocks, "\n"))}
}

// GenbankFile names the on-disk antiSMASH GenBank output for a region:
// AssemblyID names its zip entry (<assembly id>.gbk) and Path is
// <genbankDir>/<assembly id>/<accession>.<version>.regionNNN.gbk.
type GenbankFile struct {
	AssemblyID string
	Path       string
}

// WriteGenbankArchive packages the given GenBank files into a zip archive
// written to w, skipping (and logging) any file that can't be opened.
func WriteGenbankArchive(ctx context.Context, w io.Writer, files []GenbankFile, open func(path string) (io.ReadCloser, error)) error {
	zw := zip.NewWriter(w)
	defer zw.Close()

	for _, f := range files {
		rc, err := open(f.Path)
		if err != nil {
			logger.C(ctx).Warn().Str("path", f.Path).Err(err).Msg("skipping missing genbank file in archive")
			continue
		}
		entry, err := zw.CreateHeader(&zip.FileHeader{
			Name:   f.AssemblyID + ".gbk",
			Method: zip.Deflate,
		})
		if err != nil {
			rc.Close()
			return perr.IOf("zip: create entry for %s: %v", f.AssemblyID, err)
		}
		_, copyErr := io.Copy(entry, rc)
		rc.Close()
		if copyErr != nil {
			return perr.IOf("zip: write entry for %s: %v", f.AssemblyID, copyErr)
		}
	}
	return nil
}

func jsonResult(v any) (Result, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return Result{}, perr.JSONErrf("marshal projection result: %v", err)
	}
	return Result{Extension: "json", Body: b}, nil
}

package repo

import (
	"context"
	"fmt"
	"strings"

	"bgcapi/internal/core/project"
	"bgcapi/internal/modkit/repokit"
)

// Fetcher implements project.Fetcher against Postgres, collapsing the
// possibly-multi-valued DbRegion-style rows the way data.rs's
// DbRegion-to-Region conversion does: a region with more than one BGC
// type is rendered as a single "hybrid" term/category rather than
// fanning out into multiple output rows.
type Fetcher struct {
	q repokit.Queryer
}

// NewFetcher binds a Queryer to a Fetcher.
func NewFetcher(q repokit.Queryer) *Fetcher { return &Fetcher{q: q} }

const regionSelect = `
select r.region_id, r.record_number, r.region_number, r.start_pos, r.end_pos, r.contig_edge,
       d.accession, g.assembly_id, d.version,
       t.genus, t.species, t.strain,
       coalesce(array_agg(distinct bt.term) filter (where bt.term is not null), '{}') as terms,
       coalesce(array_agg(distinct bt.description) filter (where bt.description is not null), '{}') as descriptions,
       coalesce(array_agg(distinct bt.category) filter (where bt.category is not null), '{}') as categories,
       coalesce(m.similarity, 0), coalesce(m.description, ''), coalesce(m.acc, '')
from antismash.regions r
join antismash.dna_sequences d on d.accession = r.accession and d.version = r.version
join antismash.genomes g on g.assembly_id = r.assembly_id
join antismash.taxa t on t.tax_id = g.tax_id
left join antismash.rel_regions_types rt on rt.region_id = r.region_id
left join antismash.bgc_types bt on bt.bgc_type_id = rt.bgc_type_id
left join antismash.best_mibig_hits m on m.region_id = r.region_id
where r.region_id = any($1)
group by r.region_id, r.record_number, r.region_number, r.start_pos, r.end_pos, r.contig_edge,
         d.accession, g.assembly_id, d.version, t.genus, t.species, t.strain, m.similarity, m.description, m.acc
`

// FetchRegions loads and flattens regions for the given IDs.
func (f *Fetcher) FetchRegions(ctx context.Context, ids []int32) ([]project.Region, error) {
	rows, err := f.q.Query(ctx, regionSelect, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []project.Region
	for rows.Next() {
		var r project.Region
		var terms, descriptions, categories []string
		if err := rows.Scan(
			&r.RegionID, &r.RecordNumber, &r.RegionNumber, &r.StartPos, &r.EndPos, &r.ContigEdge,
			&r.Accession, &r.AssemblyID, &r.Version,
			&r.Genus, &r.Species, &r.Strain,
			&terms, &descriptions, &categories,
			&r.BestMibigHitSimilarity, &r.BestMibigHitDescription, &r.BestMibigHitAcc,
		); err != nil {
			return nil, err
		}
		r.Term = collapseTerm(terms)
		r.Description = collapseDescription(descriptions)
		r.Category = collapseCategory(categories)
		out = append(out, r)
	}
	return out, rows.Err()
}

// collapseTerm joins multiple distinct BGC type terms the way DbRegion's
// From<DbRegion> conversion does for "term": a single value passes through
// unchanged, more than one becomes "{T1 T2 ...} hybrid".
func collapseTerm(values []string) string {
	switch len(values) {
	case 0:
		return ""
	case 1:
		return values[0]
	default:
		return strings.Join(values, " ") + " hybrid"
	}
}

// collapseCategory collapses a region's BGC type categories: a single value
// passes through unchanged, more than one collapses to the bare "hybrid"
// category rather than a concatenation of the individual categories.
func collapseCategory(values []string) string {
	switch len(values) {
	case 0:
		return ""
	case 1:
		return values[0]
	default:
		return "hybrid"
	}
}

func collapseDescription(values []string) string {
	switch len(values) {
	case 0:
		return ""
	case 1:
		return values[0]
	default:
		return fmt.Sprintf("Hybrid region: %s", strings.Join(values, ", "))
	}
}

const regionFastaSelect = `
select d.accession, d.version, r.start_pos, r.end_pos, t.genus, t.species, t.strain,
       substring(d.sequence from r.start_pos for (r.end_pos - r.start_pos + 1))
from antismash.regions r
join antismash.dna_sequences d on d.accession = r.accession and d.version = r.version
join antismash.genomes g on g.assembly_id = r.assembly_id
join antismash.taxa t on t.tax_id = g.tax_id
where r.region_id = any($1)
`

// FetchRegionFASTA loads nucleotide sequence slices for the given region
// IDs, pre-marked to be wrapped at 80 columns (nucleotide FASTA output is
// always line-wrapped, unlike protein FASTA).
func (f *Fetcher) FetchRegionFASTA(ctx context.Context, ids []int32) ([]project.FastaRecord, error) {
	rows, err := f.q.Query(ctx, regionFastaSelect, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []project.FastaRecord
	for rows.Next() {
		var accession, genus, species, strain, seq string
		var version, start, end int32
		if err := rows.Scan(&accession, &version, &start, &end, &genus, &species, &strain, &seq); err != nil {
			return nil, err
		}
		header := fmt.Sprintf("%s.%d|%d-%d|%s %s %s", accession, version, start, end, genus, species, strain)
		out = append(out, project.FastaRecord{Header: header, Sequence: seq, Wrap: true})
	}
	return out, rows.Err()
}

const geneSelect = `
select c.cds_id, coalesce(c.locus_tag, 'unknown_id'), c.translation, d.accession, c.location
from antismash.cdses c
join antismash.dna_sequences d on d.accession = c.accession and d.version = c.version
where c.cds_id = any($1)
`

// FetchGenes loads CDS rows for the given gene (CDS) IDs.
func (f *Fetcher) FetchGenes(ctx context.Context, ids []int32) ([]project.Gene, error) {
	rows, err := f.q.Query(ctx, geneSelect, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []project.Gene
	for rows.Next() {
		var g project.Gene
		if err := rows.Scan(&g.CdsID, &g.LocusTag, &g.Translation, &g.Accession, &g.Location); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// FetchGeneFASTA loads CDS translations as unwrapped protein FASTA records
// (">locus_tag|accession|location").
func (f *Fetcher) FetchGeneFASTA(ctx context.Context, ids []int32) ([]project.FastaRecord, error) {
	genes, err := f.FetchGenes(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]project.FastaRecord, 0, len(genes))
	for _, g := range genes {
		header := fmt.Sprintf("%s|%s|%s", g.LocusTag, g.Accession, g.Location)
		out = append(out, project.FastaRecord{Header: header, Sequence: g.Translation, Wrap: false})
	}
	return out, nil
}

const domainSelect = `
select ad.as_domain_id, coalesce(ad.locus_tag, 'unknown_locus_tag'), ad.name,
       d.accession, coalesce(d.version, 1), ad.location, ad.translation
from antismash.as_domains ad
join antismash.dna_sequences d on d.accession = ad.accession
where ad.as_domain_id = any($1)
`

// FetchDomains loads aSDomain rows for the given domain IDs.
func (f *Fetcher) FetchDomains(ctx context.Context, ids []int32) ([]project.Domain, error) {
	rows, err := f.q.Query(ctx, domainSelect, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []project.Domain
	for rows.Next() {
		var d project.Domain
		if err := rows.Scan(&d.AsDomainID, &d.LocusTag, &d.Name, &d.Accession, &d.Version, &d.Location, &d.Translation); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// FetchDomainFASTA loads domain translations as unwrapped protein FASTA
// records (">locus_tag|name|accession.version|location").
func (f *Fetcher) FetchDomainFASTA(ctx context.Context, ids []int32) ([]project.FastaRecord, error) {
	domains, err := f.FetchDomains(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]project.FastaRecord, 0, len(domains))
	for _, d := range domains {
		header := fmt.Sprintf("%s|%s|%s.%d|%s", d.LocusTag, d.Name, d.Accession, d.Version, d.Location)
		out = append(out, project.FastaRecord{Header: header, Sequence: d.Translation, Wrap: false})
	}
	return out, nil
}

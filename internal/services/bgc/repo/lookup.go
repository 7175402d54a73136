// Package repo implements the Postgres-backed ports the bgc core packages
// need: search.Lookup (per-category leaf resolution) and the Fetcher
// interfaces consumed by internal/core/project. Queries are grounded on
// the reference implementation's per-category SQL in
// api/region/expression.rs and query/filters/*.rs.
package repo

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"bgcapi/internal/core/category"
	"bgcapi/internal/core/query"
	"bgcapi/internal/modkit/repokit"
	perr "bgcapi/internal/platform/errors"
)

// Lookup implements search.Lookup against Postgres. Most categories share
// the same shape (match a text column, ILIKE or exact, against one joined
// table) so the dispatch is table-driven rather than one handwritten
// method per category; only the categories whose semantics genuinely
// differ (booleans, numeric comparisons, the TFBS quality filter) get
// their own branch.
type Lookup struct {
	q repokit.Queryer
}

// NewLookup binds a Queryer (transaction-scoped or pooled) to a Lookup.
func NewLookup(q repokit.Queryer) *Lookup { return &Lookup{q: q} }

// template describes one category's leaf SQL: a query returning a single
// region_id column, whether the value is matched by exact equality or an
// ILIKE prefix/substring match, and whether the category enforces expr.Count
// as a minimum-matching-row threshold via GROUP BY ... HAVING COUNT(*).
// Countability mirrors the category registry's Countable metadata.
type template struct {
	sql       string
	exact     bool
	countable bool
}

// textTemplates covers every plain text-valued category: the value is
// matched against the named column, ILIKE substring unless exact. Countable
// templates get a "group by region_id having count(*) >= $2" clause appended
// in ByCategory, binding expr.Count.
var textTemplates = map[category.Category]template{
	category.Assembly: {sql: `select r.region_id from antismash.regions r
		join antismash.genomes g on g.assembly_id = r.assembly_id
		where g.assembly_id ilike $1`},
	category.Type: {countable: true, sql: `select region_id from antismash.rel_regions_types rt
		join antismash.bgc_types t on t.bgc_type_id = rt.bgc_type_id
		where t.term ilike $1`},
	category.TypeCategory: {countable: true, sql: `select region_id from antismash.rel_regions_types rt
		join antismash.bgc_types t on t.bgc_type_id = rt.bgc_type_id
		where t.category ilike $1`},
	category.Substrate: {countable: true, sql: `select region_id from antismash.rel_regions_substrates rs
		join antismash.substrates s on s.substrate_id = rs.substrate_id
		where s.name ilike $1`},
	category.Monomer: {countable: true, sql: `select region_id from antismash.rel_regions_monomers rm
		join antismash.monomers m on m.monomer_id = rm.monomer_id
		where m.name ilike $1`},
	category.Profile: {countable: true, sql: `select region_id from antismash.profile_hits ph
		where ph.name ilike $1`},
	category.Resfam: {countable: true, sql: `select region_id from antismash.resfam_domains rd
		where rd.resfam_id ilike $1 or rd.name ilike $1`},
	category.Pfam: {countable: true, sql: `select region_id from antismash.pfam_domains pd
		where pd.pfam_id ilike $1 or pd.name ilike $1`},
	category.Tigrfam: {countable: true, sql: `select region_id from antismash.tigrfam_domains td
		where td.tigrfam_id ilike $1 or td.name ilike $1`},
	category.GOTerm: {countable: true, sql: `select distinct pd.region_id from antismash.pfam_domains pd
		join antismash.pfam_go_terms gt on gt.pfam_id = pd.pfam_id
		where gt.go_term ilike $1`},
	category.AsDomain: {countable: true, sql: `select region_id from antismash.as_domains ad
		where ad.name ilike $1`},
	category.AsDomainSubtype: {countable: true, sql: `select region_id from antismash.as_domain_subtypes ads
		where ads.subtype ilike $1`},
	category.SmCoG: {countable: true, sql: `select region_id from antismash.smcog_hits sh
		where sh.name ilike $1`},
	category.T2pksProfile: {countable: true, sql: `select region_id from antismash.t2pks_profile_hits pp
		where pp.name ilike $1`},
	category.T2pksProductClass: {countable: true, sql: `select region_id from antismash.t2pks_product_classes pc
		where pc.name ilike $1`},
	category.T2pksStarter: {countable: true, sql: `select region_id from antismash.t2pks_starters ts
		where ts.name ilike $1`},
	category.CompoundSeq: {countable: true, sql: `select region_id from antismash.compounds c
		where c.peptide_sequence ilike $1`},
	category.CompoundClass: {sql: `select region_id from antismash.compounds c
		where c.compound_class ilike $1`, exact: true},
	category.Strain: {sql: `select region_id from antismash.taxa t
		where t.strain ilike $1`},
	category.Species: {sql: `select region_id from antismash.taxa t
		where t.species ilike $1`},
	category.Genus: {sql: `select region_id from antismash.taxa t
		where t.genus ilike $1`},
	category.Family: {sql: `select region_id from antismash.taxa t
		where t.family ilike $1`},
	category.Order: {sql: `select region_id from antismash.taxa t
		where t.tax_order ilike $1`},
	category.Class: {sql: `select region_id from antismash.taxa t
		where t.class ilike $1`},
	category.Phylum: {sql: `select region_id from antismash.taxa t
		where t.phylum ilike $1`},
	category.Superkingdom: {sql: `select region_id from antismash.taxa t
		where t.superkingdom ilike $1`},
	category.CompaRiPPsonMibig: {sql: `select region_id from antismash.comparippson_hits ch
		where ch.mibig_acc ilike $1`, exact: true},
	category.ClusterCompareRegion: {sql: `select region_id from antismash.clustercompare_hits cc
		where cc.protocluster_id is not null and cc.mibig_acc ilike $1`, exact: true},
	category.ClusterCompareProtocluster: {countable: true, exact: true, sql: `select p.region_id from antismash.protoclusters p
		join antismash.clustercompare_hits cc on cc.protocluster_id = p.protocluster_id
		where cc.mibig_acc ilike $1`},
	category.ClusterBlast: {sql: `select region_id from antismash.clusterblast_hits cb
		where cb.accession ilike $1`, exact: true},
	category.KnownCluster: {sql: `select region_id from antismash.knownclusterblast_hits kcb
		where kcb.accession ilike $1`, exact: true},
	category.SubCluster: {sql: `select region_id from antismash.subclusterblast_hits scb
		where scb.accession ilike $1`, exact: true},
}

// ByCategory resolves a single leaf expression to the region IDs it
// matches, dispatching on expr.Category.
func (l *Lookup) ByCategory(ctx context.Context, expr query.Expression) ([]int32, error) {
	switch expr.Category {
	case category.Acc:
		return l.acc(ctx, expr.Value)
	case category.ContigEdge:
		return l.boolColumn(ctx, "contig_edge", expr.Value)
	case category.CrossCdsModule:
		return l.boolColumn(ctx, "cross_cds_module", expr.Value)
	case category.T2pksElongation:
		return l.t2pksElongation(ctx, expr.Value, expr.Count)
	case category.Tfbs:
		return l.tfbs(ctx, expr)
	case category.ModuleQuery:
		return nil, perr.NotImplementedf("modulequery category search is not implemented")
	}

	tmpl, ok := textTemplates[expr.Category]
	if !ok {
		return nil, perr.InvalidArgf("unsupported category %q", expr.Category)
	}
	param := expr.Value
	if !tmpl.exact {
		param = "%" + expr.Value + "%"
	}
	sql := tmpl.sql
	if tmpl.countable {
		sql += ` group by region_id having count(*) >= $2`
		return l.queryIDs(ctx, sql, param, expr.Count)
	}
	return l.queryIDs(ctx, sql, param)
}

// acc resolves the accession leaf. A value containing "." is split once at
// the last "." into accession and version and matched exactly against both
// columns; otherwise the accession is matched by substring alone.
func (l *Lookup) acc(ctx context.Context, value string) ([]int32, error) {
	if i := strings.LastIndex(value, "."); i >= 0 {
		acc, verStr := value[:i], value[i+1:]
		if ver, err := strconv.Atoi(verStr); err == nil {
			const sql = `select r.region_id from antismash.regions r
				join antismash.dna_sequences d on d.accession = r.accession and d.version = r.version
				where d.accession = $1 and d.version = $2`
			return l.queryIDs(ctx, sql, acc, ver)
		}
	}
	const sql = `select r.region_id from antismash.regions r
		join antismash.dna_sequences d on d.accession = r.accession and d.version = r.version
		where d.accession ilike $1`
	return l.queryIDs(ctx, sql, "%"+value+"%")
}

func (l *Lookup) queryIDs(ctx context.Context, sql string, args ...any) ([]int32, error) {
	rows, err := l.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []int32
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (l *Lookup) boolColumn(ctx context.Context, column, value string) ([]int32, error) {
	want := strings.EqualFold(value, "true") || value == "1" || value == ""
	sql := fmt.Sprintf(`select region_id from antismash.regions where %s = $1`, column)
	return l.queryIDs(ctx, sql, want)
}

func (l *Lookup) t2pksElongation(ctx context.Context, value string, count int64) ([]int32, error) {
	const sql = `select region_id from antismash.t2pks_elongations where size = $1
		group by region_id having count(*) >= $2`
	return l.queryIDs(ctx, sql, value, count)
}

// tfbs resolves the binding-site-regulator leaf and, when the expression
// carries a qualitative "quality" filter, narrows the match to hits whose
// confidence score meets the requested strength threshold. Grounded on
// query/filters/tfbs.rs::tfbs_quality, which runs this as a post-filter on
// an already-resolved ID set rather than folding it into the leaf query;
// here it's done in one round trip instead since both live in SQL anyway.
// Both branches enforce expr.Count as a minimum-matching-row threshold.
func (l *Lookup) tfbs(ctx context.Context, expr query.Expression) ([]int32, error) {
	minStrength, hasQuality := qualityThreshold(expr.Filters)
	if !hasQuality {
		const sql = `select bs.region_id from antismash.binding_sites bs
			where bs.name ilike $1
			group by bs.region_id having count(*) >= $2`
		return l.queryIDs(ctx, sql, "%"+expr.Value+"%", expr.Count)
	}
	const sql = `select bs.region_id from antismash.binding_sites bs
		join antismash.regulator_confidence rc on rc.binding_site_id = bs.binding_site_id
		where bs.name ilike $1 and rc.strength >= $2
		group by bs.region_id having count(*) >= $3`
	return l.queryIDs(ctx, sql, "%"+expr.Value+"%", minStrength, expr.Count)
}

func qualityThreshold(filters []query.Filter) (int16, bool) {
	for _, f := range filters {
		if f.Kind == query.FilterQualitative && f.Name == "quality" {
			return int16(f.NumValue + 0.5), true
		}
	}
	return 0, false
}

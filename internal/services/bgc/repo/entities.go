package repo

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"bgcapi/internal/core/entities"
	"bgcapi/internal/modkit/repokit"
)

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// Entities implements entities.AreaLookup, entities.CanonicalResolver,
// entities.TreeBrowser and entities.StatsSource against Postgres.
// Grounded on region/area.rs, go.rs and taxa.rs/stats.rs respectively.
type Entities struct {
	q repokit.Queryer
}

// NewEntities binds a Queryer to an Entities repo.
func NewEntities(q repokit.Queryer) *Entities { return &Entities{q: q} }

// ByArea returns region ids whose [start_pos, end_pos] interval overlaps
// a's [Start, End] on the named record, qualified to one dna_sequences
// version when the caller supplied one. Grounded on area.rs's overlap
// condition, which treats the two intervals as overlapping unless one
// ends entirely before the other begins.
func (e *Entities) ByArea(ctx context.Context, a entities.Area) ([]int32, error) {
	sql := `
select r.region_id from antismash.regions r
where r.accession = $1 and r.start_pos <= $2 and r.end_pos >= $3`
	args := []any{a.Accession, a.End, a.Start}
	if a.Version != nil {
		sql += ` and r.version = $4`
		args = append(args, *a.Version)
	}

	rows, err := e.q.Query(ctx, sql, args...)
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

// ResolveAssembly tries, in order: an exact assembly id match, a
// prefix-ILIKE assembly id match, a versioned accession match (resolved
// via regions, the only table carrying both accession/version and
// assembly_id), and finally a bare accession match. The first hit wins.
// Grounded on go.rs::canonical_id.
func (e *Entities) ResolveAssembly(ctx context.Context, id string) (string, bool, error) {
	if assembly, ok, err := e.queryOneString(ctx,
		`select assembly_id from antismash.genomes where assembly_id = $1`, id); err != nil || ok {
		return assembly, ok, err
	}

	if assembly, ok, err := e.queryOneString(ctx,
		`select assembly_id from antismash.genomes where assembly_id ilike $1 order by assembly_id limit 1`,
		id+"%"); err != nil || ok {
		return assembly, ok, err
	}

	if acc, version, ok := splitAccessionVersion(id); ok {
		if assembly, ok, err := e.queryOneString(ctx,
			`select assembly_id from antismash.regions where accession = $1 and version = $2 limit 1`,
			acc, version); err != nil || ok {
			return assembly, ok, err
		}
	}

	return e.queryOneString(ctx,
		`select assembly_id from antismash.regions where accession = $1 limit 1`, id)
}

func splitAccessionVersion(id string) (acc string, version int, ok bool) {
	i := strings.LastIndexByte(id, '.')
	if i < 0 {
		return "", 0, false
	}
	v, err := strconv.Atoi(id[i+1:])
	if err != nil {
		return "", 0, false
	}
	return id[:i], v, true
}

func (e *Entities) queryOneString(ctx context.Context, sql string, args ...any) (string, bool, error) {
	row := e.q.QueryRow(ctx, sql, args...)
	var v string
	if err := row.Scan(&v); err != nil {
		if isNoRows(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return v, true, nil
}

// Children expands one taxonomy tree node, grouping by the next level
// (or, past species, listing per-assembly strain leaves). Grounded on
// taxa.rs's get_superkingdom..get_strain cascade, collapsed into one
// generic branch query plus one leaf query since every branch level
// shares the same shape.
func (e *Entities) Children(ctx context.Context, step entities.TreeStep) ([]entities.TreeNode, error) {
	if step.NextLevel == "" {
		return e.leafChildren(ctx, step)
	}
	return e.branchChildren(ctx, step)
}

func (e *Entities) branchChildren(ctx context.Context, step entities.TreeStep) ([]entities.TreeNode, error) {
	var nextCol string
	for _, lvl := range entities.TaxonomyLevels {
		if lvl.Name == step.NextLevel {
			nextCol = lvl.Column
			break
		}
	}

	var where strings.Builder
	args := make([]any, 0, len(step.Filters))
	for i, v := range step.Filters {
		if i > 0 {
			where.WriteString(" and ")
		}
		args = append(args, v)
		where.WriteString("t." + entities.TaxonomyLevels[i].Column + " ilike $" + strconv.Itoa(i+1))
	}

	sql := `select t.` + nextCol + `, count(distinct g.assembly_id)
from antismash.taxa t join antismash.genomes g on g.tax_id = t.tax_id`
	if where.Len() > 0 {
		sql += "\nwhere " + where.String()
	}
	sql += "\ngroup by t." + nextCol + " order by t." + nextCol

	rows, err := e.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entities.TreeNode
	for rows.Next() {
		var value string
		var count int64
		if err := rows.Scan(&value, &count); err != nil {
			return nil, err
		}
		id := step.ChildID(value)
		out = append(out, entities.NewBranchNode(id, step.ParentID, step.NextLevel, value, count))
	}
	return out, rows.Err()
}

func (e *Entities) leafChildren(ctx context.Context, step entities.TreeStep) ([]entities.TreeNode, error) {
	var where strings.Builder
	args := make([]any, 0, len(step.Filters))
	for i, v := range step.Filters {
		if i > 0 {
			where.WriteString(" and ")
		}
		args = append(args, v)
		where.WriteString("t." + entities.TaxonomyLevels[i].Column + " ilike $" + strconv.Itoa(i+1))
	}

	sql := `
select t.genus, t.species, t.strain, g.assembly_id
from antismash.taxa t join antismash.genomes g on g.tax_id = t.tax_id
where ` + where.String() + `
order by t.strain`

	rows, err := e.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	parent := step.LeafParentID()
	var out []entities.TreeNode
	for rows.Next() {
		var genus, species, strain, assemblyID string
		if err := rows.Scan(&genus, &species, &strain, &assemblyID); err != nil {
			return nil, err
		}
		text := strings.TrimSpace(genus + " " + species + " " + strain)
		out = append(out, entities.NewLeafNode(assemblyID, parent, text, assemblyID))
	}
	return out, rows.Err()
}

// Stats computes the landing-page summary: raw counts plus the taxon
// contributing the most sequences and the taxon and assembly with the
// most secondary-metabolite regions (a count, not a ratio), both bridged through
// regions since that is the only table linking dna_sequences, genomes
// and taxa together. Grounded on stats.rs::get_stats.
func (e *Entities) Stats(ctx context.Context) (entities.Stats, error) {
	var s entities.Stats

	if err := e.q.QueryRow(ctx, `select count(*) from antismash.regions`).Scan(&s.NumClusters); err != nil {
		return s, err
	}
	if err := e.q.QueryRow(ctx, `select count(*) from antismash.genomes`).Scan(&s.NumGenomes); err != nil {
		return s, err
	}
	if err := e.q.QueryRow(ctx, `select count(*) from antismash.dna_sequences`).Scan(&s.NumSequences); err != nil {
		return s, err
	}

	row := e.q.QueryRow(ctx, `
select t.genus || ' ' || t.species, t.species, count(distinct d.accession || '.' || d.version)
from antismash.dna_sequences d
join antismash.regions r on r.accession = d.accession and r.version = d.version
join antismash.genomes g on g.assembly_id = r.assembly_id
join antismash.taxa t on t.tax_id = g.tax_id
group by t.genus, t.species
order by count(distinct d.accession || '.' || d.version) desc
limit 1`)
	var seqTaxon, seqSpecies *string
	var seqCount *int64
	if err := row.Scan(&seqTaxon, &seqSpecies, &seqCount); err != nil && !isNoRows(err) {
		return s, err
	}
	if seqTaxon != nil {
		s.TopSeqTaxon, s.TopSeqSpecies, s.TopSeqTaxonCount = *seqTaxon, *seqSpecies, *seqCount
	}

	row = e.q.QueryRow(ctx, `
select t.genus || ' ' || t.species, t.species, g.assembly_id, count(distinct r.region_id)
from antismash.regions r
join antismash.genomes g on g.assembly_id = r.assembly_id
join antismash.taxa t on t.tax_id = g.tax_id
group by t.genus, t.species, g.assembly_id
order by count(distinct r.region_id) desc
limit 1`)
	var secTaxon, secSpecies, secAssembly *string
	var secCount *int64
	if err := row.Scan(&secTaxon, &secSpecies, &secAssembly, &secCount); err != nil && !isNoRows(err) {
		return s, err
	}
	if secTaxon != nil {
		s.TopSecmetTaxon, s.TopSecmetSpecies = *secTaxon, *secSpecies
		s.TopSecmetAssemblyID, s.TopSecmetTaxonCount = *secAssembly, *secCount
	}

	rows, err := e.q.Query(ctx, `
select bt.term, count(distinct rt.region_id)
from antismash.rel_regions_types rt
join antismash.bgc_types bt on bt.bgc_type_id = rt.bgc_type_id
group by bt.term
order by count(distinct rt.region_id) desc`)
	if err != nil {
		return s, err
	}
	defer rows.Close()
	for rows.Next() {
		var c entities.ClusterCount
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return s, err
		}
		s.Clusters = append(s.Clusters, c)
	}
	return s, rows.Err()
}

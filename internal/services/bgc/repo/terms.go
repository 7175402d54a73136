package repo

import (
	"context"

	"bgcapi/internal/core/category"
	"bgcapi/internal/core/terms"
	"bgcapi/internal/modkit/repokit"
	perr "bgcapi/internal/platform/errors"
)

// Terms implements terms.Lookup against Postgres. Grounded on
// api/available/terms.rs's per-category match arms, which are almost all
// "SELECT DISTINCT name, description FROM <table> WHERE <col> ILIKE
// $1 || '%' ORDER BY <col> LIMIT 50" — collapsed here into one table of
// (table, name column, description column) triples driving a single SQL
// template, since ~30 of the ~37 categories share that exact shape.
type Terms struct {
	q repokit.Queryer
}

// NewTerms binds a Queryer to a Terms repo.
func NewTerms(q repokit.Queryer) *Terms { return &Terms{q: q} }

type termSource struct {
	table   string
	nameCol string
	descCol string // empty means NULL
}

var termSources = map[category.Category]termSource{
	category.Acc:               {"antismash.dna_sequences", "accession", ""},
	category.Assembly:          {"antismash.genomes", "assembly_id", ""},
	category.Type:              {"antismash.bgc_types", "term", "description"},
	category.TypeCategory:      {"antismash.bgc_types", "category", ""},
	category.CandidateKind:     {"antismash.candidate_types", "name", "description"},
	category.Substrate:         {"antismash.substrates", "name", "description"},
	category.Monomer:           {"antismash.monomers", "name", "description"},
	category.Profile:           {"antismash.profiles", "name", "description"},
	category.Resfam:            {"antismash.resfam_domains", "resfam_id", "description"},
	category.Pfam:              {"antismash.pfam_domains", "pfam_id", "description"},
	category.Tigrfam:           {"antismash.tigrfam_domains", "tigrfam_id", "description"},
	category.GOTerm:            {"antismash.go_terms", "go_term", "description"},
	category.AsDomain:          {"antismash.as_domains", "name", ""},
	category.AsDomainSubtype:   {"antismash.as_domain_subtypes", "subtype", ""},
	category.T2pksProfile:      {"antismash.t2pks_profile_hits", "name", "description"},
	category.T2pksProductClass: {"antismash.t2pks_product_classes", "name", "description"},
	category.T2pksStarter:      {"antismash.t2pks_starters", "name", "description"},
	category.SmCoG:             {"antismash.smcog_hits", "name", "description"},
	category.Tfbs:              {"antismash.binding_sites", "name", ""},
	category.CompoundClass:     {"antismash.compounds", "compound_class", ""},
	category.Strain:            {"antismash.taxa", "strain", ""},
	category.Species:           {"antismash.taxa", "species", ""},
	category.Genus:             {"antismash.taxa", "genus", ""},
	category.Family:            {"antismash.taxa", "family", ""},
	category.Order:             {"antismash.taxa", "tax_order", ""},
	category.Class:             {"antismash.taxa", "class", ""},
	category.Phylum:            {"antismash.taxa", "phylum", ""},
	category.Superkingdom:      {"antismash.taxa", "superkingdom", ""},
	category.ClusterBlast:      {"antismash.clusterblast_hits", "accession", "description"},
	category.KnownCluster:      {"antismash.knownclusterblast_hits", "accession", "description"},
	category.SubCluster:        {"antismash.subclusterblast_hits", "accession", "description"},
}

// TermsByCategory dispatches to the per-category typeahead query.
func (t *Terms) TermsByCategory(ctx context.Context, c category.Category, prefix string) ([]terms.Term, error) {
	src, ok := termSources[c]
	if !ok {
		return nil, perr.InvalidArgf("no typeahead source for category %q", c)
	}

	descExpr := "NULL"
	if src.descCol != "" {
		descExpr = src.descCol
	}
	sql := `select distinct ` + src.nameCol + ` as name, ` + descExpr + ` as description
from ` + src.table + `
where ` + src.nameCol + ` ilike $1
order by ` + src.nameCol + `
limit 50`

	rows, err := t.q.Query(ctx, sql, prefix+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []terms.Term
	for rows.Next() {
		var term terms.Term
		var desc *string
		if err := rows.Scan(&term.Name, &desc); err != nil {
			return nil, err
		}
		if desc != nil {
			term.Description = *desc
		}
		out = append(out, term)
	}
	return out, rows.Err()
}

// Package category provides the closed registry of query-DSL categories
// and the metadata attached to each one (label, group, value kind,
// countability, description, available filters).
package category

import (
	"sort"
	"strings"

	perr "bgcapi/internal/platform/errors"
)

// Category is a closed enumeration of query-DSL leaf categories.
// The wire form is the lowercase name; see Parse/String.
type Category string

const (
	Acc                        Category = "acc"
	Assembly                   Category = "assembly"
	Type                       Category = "type"
	TypeCategory               Category = "typecategory"
	CandidateKind              Category = "candidatekind"
	Substrate                  Category = "substrate"
	Monomer                    Category = "monomer"
	Profile                    Category = "profile"
	Resfam                     Category = "resfam"
	Pfam                       Category = "pfam"
	Tigrfam                    Category = "tigrfam"
	GOTerm                     Category = "goterm"
	AsDomain                   Category = "asdomain"
	AsDomainSubtype            Category = "asdomainsubtype"
	ModuleQuery                Category = "modulequery"
	CrossCdsModule             Category = "crosscdsmodule"
	T2pksProfile               Category = "t2pksprofile"
	T2pksProductClass          Category = "t2pksproductclass"
	T2pksStarter               Category = "t2pksstarter"
	T2pksElongation            Category = "t2pkselongation"
	SmCoG                      Category = "smcog"
	Tfbs                       Category = "tfbs"
	CompoundSeq                Category = "compoundseq"
	CompoundClass              Category = "compoundclass"
	ContigEdge                 Category = "contigedge"
	Strain                     Category = "strain"
	Species                    Category = "species"
	Genus                      Category = "genus"
	Family                     Category = "family"
	Order                      Category = "order"
	Class                      Category = "class"
	Phylum                     Category = "phylum"
	Superkingdom               Category = "superkingdom"
	CompaRiPPsonMibig          Category = "comparippsonmibig"
	ClusterCompareRegion       Category = "clustercompareregion"
	ClusterCompareProtocluster Category = "clustercompareprotocluster"
	ClusterBlast               Category = "clusterblast"
	KnownCluster               Category = "knowncluster"
	SubCluster                 Category = "subcluster"
)

// Group is the optional display grouping for a category.
type Group string

const (
	GroupNone                Group = ""
	GroupAntismashPrediction Group = "antiSMASH prediction"
	GroupCompoundProperty    Group = "Compound properties"
	GroupQualityFilter       Group = "Quality filters"
	GroupTaxonomy            Group = "Taxonomy"
	GroupSimilarClusters     Group = "Similar Clusters"
)

// ValueKind is the shape of the value half of a leaf expression.
type ValueKind string

const (
	KindText        ValueKind = "text"
	KindBool        ValueKind = "bool"
	KindNumeric     ValueKind = "numeric"
	KindModuleQuery ValueKind = "modulequery"
)

// FilterChoice is one selectable option of a qualitative filter.
type FilterChoice struct {
	Label string
	Value int
}

// Filter describes one refinement applicable to a category.
type Filter struct {
	Value   string
	Label   string
	Type    string // "text" | "numerical" | "numeric" | "qualitative"
	Choices []FilterChoice
}

// Meta is the compile-time metadata attached to every category.
type Meta struct {
	Category    Category
	Label       string
	Group       Group
	Kind        ValueKind
	Countable   bool
	Description string
	Filters     []Filter
}

var registry = map[Category]Meta{
	Acc: {Acc, "NCBI RefSeq Accession", GroupNone, KindText, false,
		"DNA record accession from RefSeq", nil},
	Assembly: {Assembly, "NCBI Assembly ID", GroupNone, KindText, false,
		"NCBI assembly ID", nil},
	Type: {Type, "BGC type", GroupAntismashPrediction, KindText, true,
		"BGC type as predicted by antiSMASH", nil},
	TypeCategory: {TypeCategory, "BGC category", GroupAntismashPrediction, KindText, true,
		"BGC type category (e.g. PKS, Terpene)", nil},
	CandidateKind: {CandidateKind, "Candidate cluster type", GroupAntismashPrediction, KindText, true,
		"A specific kind of CandidateCluster", []Filter{
			{Value: "bgctype", Label: "BGC Type", Type: "text"},
			{Value: "numprotoclusters", Label: "Protocluster count", Type: "numerical"},
		}},
	Substrate: {Substrate, "Substrate", GroupAntismashPrediction, KindText, true,
		"Substrate integrated into the cluster product", nil},
	Monomer: {Monomer, "Monomer", GroupAntismashPrediction, KindText, true,
		"Monomer contained in the cluster product", nil},
	Profile: {Profile, "Biosynthetic profile", GroupAntismashPrediction, KindText, true,
		"Regions containing a specific antiSMASH BGC detection profile hit", nil},
	Resfam: {Resfam, "ResFam profile", GroupAntismashPrediction, KindText, true,
		"Regions containing a hit to the given ResFams ID", nil},
	Pfam: {Pfam, "Pfam profile", GroupAntismashPrediction, KindText, true,
		"Regions containing a hit to the given PFAM ID", nil},
	Tigrfam: {Tigrfam, "TIGRFAM profile", GroupAntismashPrediction, KindText, true,
		"Regions containing a hit to the given TIGRFam ID", nil},
	GOTerm: {GOTerm, "GO term", GroupAntismashPrediction, KindText, true,
		"Regions containing a hit to the given GO term (based on PFAM hits)", nil},
	AsDomain: {AsDomain, "NRPS/PKS domain", GroupAntismashPrediction, KindText, true,
		"Regions containing a specific aSDomain by name", nil},
	AsDomainSubtype: {AsDomainSubtype, "NRPS/PKS domain subtype", GroupAntismashPrediction, KindText, true,
		"Regions containig a specific aSDomain subtype", nil},
	ModuleQuery: {ModuleQuery, "NRPS/PKS module query", GroupAntismashPrediction, KindModuleQuery, true,
		"Regions containing a module with the requested component domains", nil},
	CrossCdsModule: {CrossCdsModule, "NRPS/PKS cross-CDS module", GroupAntismashPrediction, KindBool, true,
		"Regions containing a cross-CDS module", nil},
	T2pksProfile: {T2pksProfile, "PKS type II profile", GroupAntismashPrediction, KindText, true,
		"Regions with a specific PKS type II detection profile", nil},
	T2pksProductClass: {T2pksProductClass, "PKS type II product class", GroupAntismashPrediction, KindText, true,
		"Regions with a specific PKS type II product class", nil},
	T2pksStarter: {T2pksStarter, "PKS type II starter moiety", GroupAntismashPrediction, KindText, true,
		"Regions with a specific PKS type II starter", nil},
	T2pksElongation: {T2pksElongation, "PKS type II elongation", GroupAntismashPrediction, KindNumeric, true,
		"Regions with PKS type II elongations of a specific size", nil},
	SmCoG: {SmCoG, "smCoG hit", GroupAntismashPrediction, KindText, true,
		"Regions containing a specific smCoG hit", nil},
	Tfbs: {Tfbs, "Binding site regulator", GroupAntismashPrediction, KindText, true,
		"Regions containing a TFBS regulator of the given name", []Filter{
			{Value: "score", Label: "Score", Type: "numeric"},
			{Value: "quality", Label: "Quality", Type: "qualitative", Choices: []FilterChoice{
				{Label: "strong", Value: 30},
				{Label: "medium", Value: 20},
				{Label: "weak", Value: 10},
			}},
		}},
	CompoundSeq: {CompoundSeq, "Compound sequence", GroupCompoundProperty, KindText, true,
		"RiPP BGC containing a compound with a sequence containing this string", nil},
	CompoundClass: {CompoundClass, "RiPP compound class", GroupCompoundProperty, KindText, false,
		"RiPP BGC containing a given compound class", nil},
	ContigEdge: {ContigEdge, "Region on contig edge", GroupQualityFilter, KindBool, false,
		"Regions on a contig edge", nil},
	Strain: {Strain, "strain", GroupTaxonomy, KindText, false,
		"By strain according to NCBI taxonomy", nil},
	Species: {Species, "species", GroupTaxonomy, KindText, false,
		"By species according to NCBI taxonomy", nil},
	Genus: {Genus, "genus", GroupTaxonomy, KindText, false,
		"By genus according to NCBI taxonomy", nil},
	Family: {Family, "family", GroupTaxonomy, KindText, false,
		"By family according to NCBI taxonomy", nil},
	Order: {Order, "order", GroupTaxonomy, KindText, false,
		"By order according to NCBI taxonomy", nil},
	Class: {Class, "class", GroupTaxonomy, KindText, false,
		"By class according to NCBI taxonomy", nil},
	Phylum: {Phylum, "phylum", GroupTaxonomy, KindText, false,
		"By phylum according to NCBI taxonomy", nil},
	Superkingdom: {Superkingdom, "superkingdom", GroupTaxonomy, KindText, false,
		"By superkingdom according to NCBI taxonomy", nil},
	CompaRiPPsonMibig: {CompaRiPPsonMibig, "CompaRiPPson MIBiG hit", GroupSimilarClusters, KindText, false,
		"Regions containing a CompaRiPPson hit against the given MIBiG ID", nil},
	ClusterCompareRegion: {ClusterCompareRegion, "ClusterCompare by region", GroupSimilarClusters, KindText, false,
		"Regions with ClusterCompare hits matching the given MIBiG ID", nil},
	ClusterCompareProtocluster: {ClusterCompareProtocluster, "ClusterCompare by protocluster", GroupSimilarClusters, KindText, true,
		"Regions with protoclusters with ClusterCompare hits matching the given MIBiG ID", nil},
	ClusterBlast: {ClusterBlast, "ClusterBlast hit", GroupSimilarClusters, KindText, false,
		"Regions containing a hit to the given ClusterBlast entry", nil},
	KnownCluster: {KnownCluster, "KnownClusterBlast hit", GroupSimilarClusters, KindText, false,
		"Regions containing a hit to the given KnownClusterBlast entry", nil},
	SubCluster: {SubCluster, "SubClusterBlast hit", GroupSimilarClusters, KindText, false,
		"Regions containing a hit to the given SubClusterBlast entry", nil},
}

// Parse resolves a category name (case-insensitive) to a Category.
// Unknown names are an invalid-request error.
func Parse(name string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := registry[c]; !ok {
		return "", perr.InvalidArgf("unknown category %q", name)
	}
	return c, nil
}

// Lookup returns the metadata for a category. The category must already be
// validated (e.g. via Parse); an unknown category returns the zero Meta.
func Lookup(c Category) (Meta, bool) {
	m, ok := registry[c]
	return m, ok
}

// String renders the wire form (lowercase name).
func (c Category) String() string { return string(c) }

// All returns every registered category, grouped by Group with ungrouped
// categories first, each group's members sorted by category name.
func All() []Meta {
	order := []Group{
		GroupNone,
		GroupAntismashPrediction,
		GroupCompoundProperty,
		GroupQualityFilter,
		GroupTaxonomy,
		GroupSimilarClusters,
	}

	byGroup := make(map[Group][]Meta, len(order))
	for _, m := range registry {
		byGroup[m.Group] = append(byGroup[m.Group], m)
	}
	for _, g := range order {
		sort.Slice(byGroup[g], func(i, j int) bool {
			return byGroup[g][i].Category < byGroup[g][j].Category
		})
	}

	out := make([]Meta, 0, len(registry))
	for _, g := range order {
		out = append(out, byGroup[g]...)
	}
	return out
}

// Filters returns the available filter descriptors for a category.
func Filters(c Category) []Filter {
	m, ok := registry[c]
	if !ok {
		return nil
	}
	return m.Filters
}

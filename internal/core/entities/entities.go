// Package entities holds the pure logic behind the handful of lookup
// endpoints that don't fit the category/query/search pipeline: overlap
// lookups by genomic coordinate, the "jump to a record" identifier
// resolver, the taxonomy tree browser, and the landing-page stats
// summary. Grounded on region/area.rs, go.rs, taxa.rs and stats.rs.
package entities

import (
	"regexp"
	"strconv"
	"strings"

	perr "bgcapi/internal/platform/errors"
)

// Area is a half-open-free [start, end] genomic interval query against a
// single record, optionally qualified to one accession version.
type Area struct {
	Accession string
	Version   *int32
	Start     int32
	End       int32
}

var accessionVersionRe = regexp.MustCompile(`^(.+)\.(\d+)$`)

// ParseArea splits a record identifier of the form "ACC" or "ACC.VERSION"
// and a "start-end" location string into an Area. Mirrors area.rs's
// request parameter handling: the version suffix is optional, and start
// must not exceed end.
func ParseArea(record, location string) (Area, error) {
	a := Area{Accession: record}
	if m := accessionVersionRe.FindStringSubmatch(record); m != nil {
		v, err := strconv.ParseInt(m[2], 10, 32)
		if err == nil {
			a.Accession = m[1]
			v32 := int32(v)
			a.Version = &v32
		}
	}

	parts := strings.SplitN(location, "-", 2)
	if len(parts) != 2 {
		return Area{}, perr.InvalidArgf("invalid location %q, expected start-end", location)
	}
	start, err := strconv.ParseInt(parts[0], 10, 32)
	if err != nil {
		return Area{}, perr.InvalidArgf("invalid start coordinate %q", parts[0])
	}
	end, err := strconv.ParseInt(parts[1], 10, 32)
	if err != nil {
		return Area{}, perr.InvalidArgf("invalid end coordinate %q", parts[1])
	}
	if start > end {
		return Area{}, perr.InvalidArgf("start %d is after end %d", start, end)
	}
	a.Start, a.End = int32(start), int32(end)
	return a, nil
}

var (
	idAllowed     = regexp.MustCompile(`[^A-Za-z0-9_.]+`)
	regionAllowed = regexp.MustCompile(`[^cr0-9]+`)
)

// SanitiseID strips everything but letters, digits, underscore and dot
// from a user-supplied identifier before it is used to build a canonical
// lookup. Grounded on go.rs::sanitise_id.
func SanitiseID(raw string) string {
	return idAllowed.ReplaceAllString(raw, "")
}

// SanitiseRegion strips everything but 'c', 'r' and digits from a
// user-supplied region fragment, e.g. turning "bobr17alice23" into
// "r17c23". Grounded on go.rs::sanitise_region.
func SanitiseRegion(raw string) string {
	return regionAllowed.ReplaceAllString(raw, "")
}

// TreeNode is one node of the taxonomy browser tree, shaped to match the
// jstree JSON contract the frontend expects. Grounded on taxa.rs::TreeNode.
type TreeNode struct {
	ID         string         `json:"id"`
	Parent     string         `json:"parent"`
	Text       string         `json:"text"`
	State      map[string]any `json:"state,omitempty"`
	Type       string         `json:"type"`
	AssemblyID string         `json:"assembly_id,omitempty"`
	LiAttr     map[string]any `json:"li_attr,omitempty"`
	Children   bool           `json:"children"`
}

// NewBranchNode builds a non-leaf taxonomy node with a count badge.
func NewBranchNode(id, parent, nodeType, value string, count int64) TreeNode {
	return TreeNode{
		ID:       id,
		Parent:   parent,
		Text:     value + " (" + strconv.FormatInt(count, 10) + ")",
		Type:     nodeType,
		Children: true,
	}
}

// NewLeafNode builds a terminal strain node pointing at one assembly.
func NewLeafNode(id, parent, text, assemblyID string) TreeNode {
	return TreeNode{
		ID:         id,
		Parent:     parent,
		Text:       text,
		Type:       "strain",
		AssemblyID: assemblyID,
		Children:   false,
	}
}

// TaxonomyLevels is the fixed superkingdom-to-species cascade the taxonomy
// browser walks before bottoming out at per-assembly strain leaves.
// Grounded on taxa.rs's get_superkingdom..get_species chain. Column names
// match the antismash.taxa table used by bgc/repo/terms.go's termSources.
var TaxonomyLevels = []struct {
	Name   string
	Column string
}{
	{"superkingdom", "superkingdom"},
	{"phylum", "phylum"},
	{"class", "class"},
	{"order", "tax_order"},
	{"family", "family"},
	{"genus", "genus"},
	{"species", "species"},
}

// TreeStep describes one taxonomy-tree request already decomposed into
// the ILIKE filters to apply and the next level to group by (or, when
// NextLevel is empty, an instruction to fetch strain leaves instead).
type TreeStep struct {
	Filters   []string // filter value per TaxonomyLevels[0:len(Filters)]
	NextLevel string   // "" means: fetch strain leaves
	ParentID  string
}

// ParseTreeID decomposes a tree node id ("1" for the root, or e.g.
// "phylum_bacteria_ascomycota") into the filters accumulated so far and
// the next level to expand. Grounded on taxa.rs's params.len() cascade.
func ParseTreeID(id string) (TreeStep, error) {
	if id == "1" || id == "" {
		return TreeStep{NextLevel: TaxonomyLevels[0].Name, ParentID: "#"}, nil
	}

	parts := strings.Split(id, "_")
	if len(parts) < 2 {
		return TreeStep{}, perr.InvalidArgf("malformed taxonomy node id %q", id)
	}
	tag, rest := parts[0], parts[1:]

	idx := -1
	for i, lvl := range TaxonomyLevels {
		if lvl.Name == tag {
			idx = i
			break
		}
	}
	if idx == -1 {
		return TreeStep{}, perr.InvalidArgf("unknown taxonomy level %q", tag)
	}
	if len(rest) < idx+1 {
		return TreeStep{}, perr.InvalidArgf("taxonomy node id %q is missing filter values", id)
	}

	next := ""
	if idx+1 < len(TaxonomyLevels) {
		next = TaxonomyLevels[idx+1].Name
	}
	return TreeStep{Filters: rest[:idx+1], NextLevel: next, ParentID: id}, nil
}

// ChildID builds the node id for a child discovered while expanding step.
func (s TreeStep) ChildID(value string) string {
	parts := append(append([]string{}, s.Filters...), strings.ToLower(value))
	return s.NextLevel + "_" + strings.Join(parts, "_")
}

// LeafParentID builds the parent id strain leaves attach to, from a
// species-level step (the last branch level before the leaves).
func (s TreeStep) LeafParentID() string {
	return "species_" + strings.Join(s.Filters, "_")
}

// Stats is the landing-page summary shown on the database home view.
// Grounded on stats.rs::get_stats's response shape.
type Stats struct {
	NumClusters         int64          `json:"num_clusters"`
	NumGenomes          int64          `json:"num_genomes"`
	NumSequences        int64          `json:"num_sequences"`
	TopSeqTaxon         string         `json:"top_seq_taxon"`
	TopSeqTaxonCount    int64          `json:"top_seq_taxon_count"`
	TopSeqSpecies       string         `json:"top_seq_species"`
	TopSecmetTaxon      string         `json:"top_secmet_taxon"`
	TopSecmetTaxonCount int64          `json:"top_secmet_taxon_count"`
	TopSecmetSpecies    string         `json:"top_secmet_species"`
	TopSecmetAssemblyID string         `json:"top_secmet_assembly_id"`
	Clusters            []ClusterCount `json:"clusters"`
}

// ClusterCount is one row of the per-BGC-type cluster count breakdown.
type ClusterCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

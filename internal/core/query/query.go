// Package query implements the textual query DSL: parsing into a typed
// Term tree of Expression leaves and And/Or/Except Operations, with
// per-expression repetition counts and post-filters.
package query

// SearchType selects which projection a Query ultimately materialises.
type SearchType string

const (
	SearchRegion SearchType = "region"
	SearchGene   SearchType = "gene"
	SearchDomain SearchType = "domain"
)

// ReturnType selects the wire format of a Query's result.
type ReturnType string

const (
	ReturnJSON    ReturnType = "json"
	ReturnCSV     ReturnType = "csv"
	ReturnFasta   ReturnType = "fasta"
	ReturnFastaa  ReturnType = "fastaa"
	ReturnGenbank ReturnType = "genbank"
)

// Query is a parsed term plus the projection/format the caller requested.
type Query struct {
	Terms      Term
	SearchType SearchType
	ReturnType ReturnType
	Verbose    bool
}

// Parse parses a DSL string into a Query with default Region/JSON/non-verbose
// projection settings; callers override SearchType/ReturnType/Verbose from
// the surrounding request.
func Parse(input string) (Query, error) {
	term, err := ParseTerm(input)
	if err != nil {
		return Query{}, err
	}
	return Query{
		Terms:      term,
		SearchType: SearchRegion,
		ReturnType: ReturnJSON,
		Verbose:    false,
	}, nil
}

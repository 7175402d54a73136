package query

import (
	"encoding/json"

	"bgcapi/internal/core/category"
	perr "bgcapi/internal/platform/errors"
)

// exprWire and opWire are the two wire shapes a Term can take. Keeping
// them distinct (rather than one struct with unused fields) means an
// expression never grows a spurious "operator" key and an operation
// never grows a spurious "filters" key.
type exprWire struct {
	TermType string       `json:"termType"`
	Category string       `json:"category"`
	Value    string       `json:"value,omitempty"`
	Filters  []filterWire `json:"filters"`
	Count    int64        `json:"count,omitempty"`
}

type opWire struct {
	TermType string `json:"termType"`
	Operator string `json:"operator"`
	Left     *Term  `json:"left"`
	Right    *Term  `json:"right"`
}

type filterWire struct {
	Kind     string  `json:"kind"`
	Name     string  `json:"name"`
	Value    string  `json:"value,omitempty"`
	NumValue float64 `json:"numValue,omitempty"`
	Operator string  `json:"operator,omitempty"`
}

// MarshalJSON renders a Term as a tagged union, recursing through
// Operation children.
func (t Term) MarshalJSON() ([]byte, error) {
	switch t.Kind {
	case TermExpr:
		filters := make([]filterWire, len(t.Expr.Filters))
		for i, f := range t.Expr.Filters {
			filters[i] = filterWire{
				Kind:     string(f.Kind),
				Name:     f.Name,
				Value:    f.Value,
				NumValue: f.NumValue,
				Operator: string(f.Operator),
			}
		}
		return json.Marshal(exprWire{
			TermType: string(TermExpr),
			Category: string(t.Expr.Category),
			Value:    t.Expr.Value,
			Filters:  filters,
			Count:    t.Expr.Count,
		})
	case TermOp:
		return json.Marshal(opWire{
			TermType: string(TermOp),
			Operator: string(t.Op.Operator),
			Left:     t.Op.Left,
			Right:    t.Op.Right,
		})
	default:
		return json.Marshal(exprWire{TermType: string(t.Kind), Filters: []filterWire{}})
	}
}

// termUnwire is the decode-side shape of a Term. Left/Right decode through
// *Term (not *termUnwire) so nested terms recurse through UnmarshalJSON.
type termUnwire struct {
	TermType string       `json:"termType"`
	Category string       `json:"category"`
	Value    string       `json:"value"`
	Filters  []filterWire `json:"filters"`
	Count    int64        `json:"count"`
	Operator string       `json:"operator"`
	Left     *Term        `json:"left"`
	Right    *Term        `json:"right"`
}

// UnmarshalJSON decodes a Term from the wire shape MarshalJSON produces,
// used when a caller posts an already-typed query (e.g. /api/search, whose
// body embeds the object /api/convert returns) rather than a DSL string.
func (t *Term) UnmarshalJSON(data []byte) error {
	var w termUnwire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch TermKind(w.TermType) {
	case TermExpr:
		filters := make([]Filter, len(w.Filters))
		for i, f := range w.Filters {
			filters[i] = Filter{
				Kind:     FilterKind(f.Kind),
				Name:     f.Name,
				Value:    f.Value,
				NumValue: f.NumValue,
				Operator: FilterOperator(f.Operator),
			}
		}
		cat, err := category.Parse(w.Category)
		if err != nil {
			return err
		}
		*t = ExprTerm(NewExpression(cat, w.Value, filters, w.Count))
		return nil
	case TermOp:
		if w.Left == nil || w.Right == nil {
			return perr.InvalidArgf("operation term is missing left or right side")
		}
		*t = OpTerm(Operation{Operator: Operator(w.Operator), Left: w.Left, Right: w.Right})
		return nil
	default:
		return perr.InvalidArgf("unknown termType %q", w.TermType)
	}
}

// queryWire is the wire shape of a Query.
type queryWire struct {
	Terms      Term       `json:"terms"`
	SearchType SearchType `json:"search"`
	ReturnType ReturnType `json:"return_type"`
	Verbose    bool       `json:"verbose"`
}

// MarshalJSON renders a Query using the "search"/"return_type" field
// names the HTTP layer's /api/convert response uses.
func (q Query) MarshalJSON() ([]byte, error) {
	return json.Marshal(queryWire{
		Terms:      q.Terms,
		SearchType: q.SearchType,
		ReturnType: q.ReturnType,
		Verbose:    q.Verbose,
	})
}

// UnmarshalJSON decodes a Query from the wire shape MarshalJSON produces,
// defaulting SearchType/ReturnType to Region/JSON when the caller omits
// them, matching Parse's defaults for DSL-string input.
func (q *Query) UnmarshalJSON(data []byte) error {
	var w queryWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.SearchType == "" {
		w.SearchType = SearchRegion
	}
	if w.ReturnType == "" {
		w.ReturnType = ReturnJSON
	}
	*q = Query{Terms: w.Terms, SearchType: w.SearchType, ReturnType: w.ReturnType, Verbose: w.Verbose}
	return nil
}

package query

import (
	"encoding/json"
	"testing"

	"bgcapi/internal/core/category"
)

func TestTermJSON_ExpressionRoundTrip(t *testing.T) {
	want := ExprTerm(NewExpression(category.Acc, "bob", []Filter{
		{Kind: FilterQualitative, Name: "charlie", NumValue: 30, Operator: OpEqual},
	}, 1))

	raw, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got Term
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if got.Kind != TermExpr || got.Expr.Category != want.Expr.Category || got.Expr.Value != want.Expr.Value {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got.Expr, want.Expr)
	}
	if len(got.Expr.Filters) != 1 || got.Expr.Filters[0].Name != "charlie" {
		t.Fatalf("filters did not round trip: %+v", got.Expr.Filters)
	}
}

func TestTermJSON_ExpressionNoFiltersStillEmitsEmptyArray(t *testing.T) {
	term := ExprTerm(NewExpression(category.Acc, "", nil, 1))

	raw, err := json.Marshal(term)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("Unmarshal to map: %v", err)
	}

	filters, ok := m["filters"]
	if !ok {
		t.Fatalf("expected \"filters\" key to be present even when empty, got %s", raw)
	}
	if arr, ok := filters.([]any); !ok || len(arr) != 0 {
		t.Fatalf("expected filters to be an empty array, got %#v", filters)
	}
}

func TestTermJSON_OperationRoundTrip(t *testing.T) {
	left := ExprTerm(NewExpression(category.Acc, "a", nil, 1))
	right := ExprTerm(NewExpression(category.Acc, "b", nil, 1))
	want := OpTerm(Operation{Operator: OpAnd, Left: &left, Right: &right})

	raw, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got Term
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if got.Kind != TermOp || got.Op.Operator != OpAnd {
		t.Fatalf("round trip mismatch: got %+v", got.Op)
	}
	if got.Op.Left == nil || got.Op.Right == nil {
		t.Fatalf("expected both sides of the operation to decode, got left=%v right=%v", got.Op.Left, got.Op.Right)
	}
	if got.Op.Left.Expr.Value != "a" || got.Op.Right.Expr.Value != "b" {
		t.Fatalf("operation children decoded wrong: left=%+v right=%+v", got.Op.Left.Expr, got.Op.Right.Expr)
	}
}

func TestTermJSON_UnknownTermTypeRejected(t *testing.T) {
	var got Term
	err := json.Unmarshal([]byte(`{"termType":"bogus"}`), &got)
	if err == nil {
		t.Fatal("expected an error for an unknown termType")
	}
}

func TestQueryJSON_RoundTripDefaultsSearchAndReturnType(t *testing.T) {
	term := ExprTerm(NewExpression(category.Acc, "bob", nil, 1))
	want := Query{Terms: term, SearchType: SearchRegion, ReturnType: ReturnJSON, Verbose: true}

	raw, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got Query
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.SearchType != SearchRegion || got.ReturnType != ReturnJSON || !got.Verbose {
		t.Fatalf("round trip mismatch: got %+v", got)
	}
}

func TestQueryJSON_MissingSearchAndReturnTypeDefault(t *testing.T) {
	raw := []byte(`{"terms":{"termType":"expr","category":"acc","filters":[]}}`)

	var got Query
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.SearchType != SearchRegion {
		t.Fatalf("expected SearchType to default to %q, got %q", SearchRegion, got.SearchType)
	}
	if got.ReturnType != ReturnJSON {
		t.Fatalf("expected ReturnType to default to %q, got %q", ReturnJSON, got.ReturnType)
	}
}

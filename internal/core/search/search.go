// Package search evaluates a parsed query Term into a set of region
// identifiers, dispatching per-category leaf lookups to a Lookup port and
// combining sub-results with plain set algebra (no short-circuit).
package search

import (
	"context"

	"bgcapi/internal/core/query"
)

// Lookup resolves a single leaf Expression to the region IDs it matches.
// Implementations live in the store-backed repo layer; this package knows
// nothing about SQL.
type Lookup interface {
	ByCategory(ctx context.Context, expr query.Expression) ([]int32, error)
}

// Eval walks a Term tree and returns the resolved set of region IDs.
func Eval(ctx context.Context, term *query.Term, lookup Lookup) ([]int32, error) {
	if term == nil {
		return nil, nil
	}
	switch term.Kind {
	case query.TermExpr:
		return lookup.ByCategory(ctx, *term.Expr)
	case query.TermOp:
		return evalOp(ctx, *term.Op, lookup)
	default:
		return nil, nil
	}
}

func evalOp(ctx context.Context, op query.Operation, lookup Lookup) ([]int32, error) {
	// Both branches are always evaluated, even for Except with an empty
	// left side: this mirrors the reference evaluator, which has no
	// short-circuit path.
	left, err := Eval(ctx, op.Left, lookup)
	if err != nil {
		return nil, err
	}
	right, err := Eval(ctx, op.Right, lookup)
	if err != nil {
		return nil, err
	}

	leftSet := toSet(left)
	rightSet := toSet(right)

	var out map[int32]struct{}
	switch op.Operator {
	case query.OpAnd:
		out = intersect(leftSet, rightSet)
	case query.OpOr:
		out = union(leftSet, rightSet)
	case query.OpExcept:
		out = difference(leftSet, rightSet)
	}
	return fromSet(out), nil
}

func toSet(ids []int32) map[int32]struct{} {
	s := make(map[int32]struct{}, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func fromSet(s map[int32]struct{}) []int32 {
	out := make([]int32, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	return out
}

func intersect(a, b map[int32]struct{}) map[int32]struct{} {
	out := make(map[int32]struct{})
	for id := range a {
		if _, ok := b[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out
}

func union(a, b map[int32]struct{}) map[int32]struct{} {
	out := make(map[int32]struct{}, len(a)+len(b))
	for id := range a {
		out[id] = struct{}{}
	}
	for id := range b {
		out[id] = struct{}{}
	}
	return out
}

func difference(a, b map[int32]struct{}) map[int32]struct{} {
	out := make(map[int32]struct{})
	for id := range a {
		if _, ok := b[id]; !ok {
			out[id] = struct{}{}
		}
	}
	return out
}

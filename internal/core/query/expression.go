package query

import (
	"strings"

	"bgcapi/internal/core/category"
	perr "bgcapi/internal/platform/errors"
)

// Expression is a leaf Term: a category, its (unnormalised) value, a list of
// post-filters, and a minimum repetition count.
type Expression struct {
	Category category.Category
	Value    string
	Filters  []Filter
	Count    int64
}

// NewExpression builds an Expression, defaulting Count to 1 when <= 0.
func NewExpression(cat category.Category, value string, filters []Filter, count int64) Expression {
	if count <= 0 {
		count = 1
	}
	return Expression{Category: cat, Value: value, Filters: filters, Count: count}
}

// parseExpression parses `[count "*"] "{" "[" body "]" filter* "}"`.
func parseExpression(input string) (Expression, string, error) {
	if len(input) < 5 {
		return Expression{}, input, perr.InvalidArgf("query too short: %q", input)
	}

	var (
		count     int64 = 1
		remaining       = input
		err       error
	)
	if input[0] >= '0' && input[0] <= '9' {
		count, remaining, err = parseNumber(input)
		if err != nil {
			return Expression{}, input, err
		}
		if !strings.HasPrefix(remaining, "*") {
			return Expression{}, input, perr.InvalidArgf("expected '*' after repetition count")
		}
		remaining = remaining[1:]
	}

	inner, remaining, err := withMustache(remaining)
	if err != nil {
		return Expression{}, input, err
	}

	if !strings.HasPrefix(inner, "[") {
		return Expression{}, input, perr.InvalidArgf("expected '[' in expression")
	}
	term, filtersRaw, err := takeUntilUnbalanced('[', ']')(inner[1:])
	if err != nil {
		return Expression{}, input, err
	}
	if !strings.HasPrefix(filtersRaw, "]") {
		return Expression{}, input, perr.InvalidArgf("unterminated '[' in expression")
	}
	filtersRaw = filtersRaw[1:]

	var filters []Filter
	for len(filtersRaw) > 0 {
		var f Filter
		f, filtersRaw, err = parseFilter(filtersRaw)
		if err != nil {
			return Expression{}, input, err
		}
		filters = append(filters, f)
	}

	parts := strings.Split(term, "|")
	cat, err := category.Parse(parts[0])
	if err != nil {
		return Expression{}, input, err
	}

	var value string
	switch len(parts) {
	case 1:
		value = ""
	case 2:
		value = parts[1]
	default:
		return Expression{}, input, perr.InvalidArgf("malformed expression body %q", term)
	}

	return NewExpression(cat, value, filters, count), remaining, nil
}

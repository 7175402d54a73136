package query

import (
	"strconv"
	"strings"

	perr "bgcapi/internal/platform/errors"
)

// FilterOperator is the comparison operator of a Qualitative filter.
type FilterOperator string

const (
	OpGreater        FilterOperator = ">"
	OpGreaterOrEqual FilterOperator = ">="
	OpEqual          FilterOperator = "=="
	OpLessOrEqual    FilterOperator = "<="
	OpLess           FilterOperator = "<"
)

// parseFilterOperator parses a 1- or 2-character operator token taken
// verbatim from the text preceding the first ':' in a qualitative filter.
func parseFilterOperator(s string) (FilterOperator, error) {
	switch len(s) {
	case 0:
		return "", perr.InvalidArgf("empty filter operator")
	case 1:
		switch s {
		case ">":
			return OpGreater, nil
		case "<":
			return OpLess, nil
		}
		return "", perr.InvalidArgf("unknown filter operator %q", s)
	default:
		switch s[:2] {
		case ">=":
			return OpGreaterOrEqual, nil
		case "==":
			return OpEqual, nil
		case "<=":
			return OpLessOrEqual, nil
		}
		return "", perr.InvalidArgf("unknown filter operator %q", s)
	}
}

// FilterKind discriminates the four Filter shapes.
type FilterKind string

const (
	FilterBoolean     FilterKind = "boolean"
	FilterNumerical   FilterKind = "numerical"
	FilterQualitative FilterKind = "qualitative"
	FilterText        FilterKind = "text"
)

// Filter refines a leaf Expression. Only the fields relevant to Kind are
// populated: Boolean uses Name; Numerical uses Name+NumValue; Qualitative
// uses Name+NumValue+Operator; Text uses Name+Value.
type Filter struct {
	Kind     FilterKind
	Name     string
	Value    string
	NumValue float64
	Operator FilterOperator
}

// NewBooleanFilter builds a Boolean filter.
func NewBooleanFilter(name string) Filter { return Filter{Kind: FilterBoolean, Name: name} }

// NewNumericalFilter builds a Numerical filter.
func NewNumericalFilter(name string, value float64) Filter {
	return Filter{Kind: FilterNumerical, Name: name, NumValue: value}
}

// NewQualitativeFilter builds a Qualitative filter.
func NewQualitativeFilter(name string, value float64, op FilterOperator) Filter {
	return Filter{Kind: FilterQualitative, Name: name, NumValue: value, Operator: op}
}

// NewTextFilter builds a Text filter.
func NewTextFilter(name, value string) Filter {
	return Filter{Kind: FilterText, Name: name, Value: value}
}

// parseFilter consumes one " WITH [...]" clause from the start of s.
func parseFilter(s string) (Filter, string, error) {
	const prefix = " WITH "
	if !strings.HasPrefix(s, prefix) {
		return Filter{}, s, perr.InvalidArgf("expected %q before filter", prefix)
	}
	rest := s[len(prefix):]
	if !strings.HasPrefix(rest, "[") {
		return Filter{}, s, perr.InvalidArgf("expected '[' in filter")
	}
	inner, afterFilter, err := takeUntilUnbalanced('[', ']')(rest[1:])
	if err != nil {
		return Filter{}, s, err
	}
	if !strings.HasPrefix(afterFilter, "]") {
		return Filter{}, s, perr.InvalidArgf("unterminated '[' in filter")
	}
	remaining := afterFilter[1:]

	name, valueRaw, hasPipe := strings.Cut(inner, "|")
	if !hasPipe {
		return NewBooleanFilter(inner), remaining, nil
	}

	if opRaw, value, hasColon := strings.Cut(valueRaw, ":"); hasColon {
		op, err := parseFilterOperator(opRaw)
		if err != nil {
			return Filter{}, s, err
		}
		val, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return Filter{}, s, perr.InvalidArgf("failed to parse filter value %q", valueRaw)
		}
		return NewQualitativeFilter(name, val, op), remaining, nil
	}

	if val, err := strconv.ParseFloat(valueRaw, 64); err == nil {
		return NewNumericalFilter(name, val), remaining, nil
	}
	return NewTextFilter(name, valueRaw), remaining, nil
}

package query

import (
	"strconv"
	"strings"
	"unicode/utf8"

	perr "bgcapi/internal/platform/errors"
)

// takeUntilUnbalanced scans s for the substring up to (but not including) the
// first closing bracket that would leave the opening/closing pair unbalanced.
// A single backslash escapes the character immediately following it. Bracket
// characters are ASCII, so byte-level scanning is safe even though the
// scanned text may itself contain multi-byte UTF-8 runes: UTF-8 continuation
// bytes never collide with ASCII bracket bytes.
func takeUntilUnbalanced(opening, closing byte) func(s string) (value, remaining string, err error) {
	return func(s string) (string, string, error) {
		index := 0
		depth := 0
		for index < len(s) {
			rest := s[index:]
			n := strings.IndexAny(rest, string([]byte{opening, closing, '\\'}))
			if n < 0 {
				break
			}
			index += n
			switch s[index] {
			case '\\':
				index++ // skip the backslash
				if index < len(s) {
					_, size := utf8.DecodeRuneInString(s[index:])
					index += size
				}
			case opening:
				depth++
				index++
			case closing:
				depth--
				index++
				if depth == -1 {
					index--
					return s[:index], s[index:], nil
				}
			}
		}
		if depth == 0 {
			return s, "", nil
		}
		return "", "", perr.InvalidArgf("unbalanced %q/%q in query", opening, closing)
	}
}

// parseNumber parses a leading run of decimal digits as a non-negative
// integer, returning the parsed value and the unconsumed remainder.
func parseNumber(s string) (int64, string, error) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, s, perr.InvalidArgf("expected a number in query")
	}
	n, err := strconv.ParseInt(s[:i], 10, 64)
	if err != nil {
		return 0, s, perr.InvalidArgf("invalid number in query: %v", err)
	}
	return n, s[i:], nil
}

// withMustache extracts the balanced {...} body at the start of s.
func withMustache(s string) (body, remaining string, err error) {
	if !strings.HasPrefix(s, "{") {
		return "", s, perr.InvalidArgf("expected '{' in query")
	}
	body, rest, err := takeUntilUnbalanced('{', '}')(s[1:])
	if err != nil {
		return "", s, err
	}
	if !strings.HasPrefix(rest, "}") {
		return "", s, perr.InvalidArgf("unterminated '{' in query")
	}
	return body, rest[1:], nil
}

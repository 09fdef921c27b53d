package condition

import (
	"strconv"
	"strings"

	goversion "github.com/hashicorp/go-version"
)

// splitOnUnquotedCommas splits raw argument text on commas outside double
// quotes. Only double-quote state is tracked; single quotes adjacent to
// commas therefore split incorrectly. This matches the upstream condition
// syntax handling and is kept as-is for compatibility.
func splitOnUnquotedCommas(s string) []string {
	var parts []string
	var current strings.Builder
	inQuotes := false
	for _, r := range s {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			current.WriteRune(r)
		case r == ',' && !inQuotes:
			parts = append(parts, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	parts = append(parts, strings.TrimSpace(current.String()))
	return parts
}

// unquoteRaw strips the surrounding quotes from a string argument. The
// content is taken literally: backslashes are not escape sequences, so \n
// means backslash-n. A missing or mismatched quote pair, an embedded quote of
// the same kind, or a trailing unpaired backslash are all malformed.
func unquoteRaw(arg string) (string, error) {
	if len(arg) < 2 {
		return "", invalidCondition("invalid arg: %s", arg)
	}
	quote := arg[0]
	if quote != '"' && quote != '\'' {
		return "", invalidCondition("invalid arg: %s", arg)
	}
	if arg[len(arg)-1] != quote {
		return "", invalidCondition("invalid arg: %s", arg)
	}
	inner := arg[1 : len(arg)-1]
	if strings.ContainsRune(inner, rune(quote)) {
		return "", invalidCondition("invalid arg: %s", arg)
	}
	if trailing := len(inner) - len(strings.TrimRight(inner, `\`)); trailing%2 == 1 {
		return "", invalidCondition("invalid arg: %s", arg)
	}
	return inner, nil
}

// comparator is one of the six comparison operators accepted by version() and
// product_version().
type comparator int

const (
	cmpEq comparator = iota
	cmpNe
	cmpLt
	cmpGt
	cmpGe
	cmpLe
)

var comparators = map[string]comparator{
	"==": cmpEq,
	"!=": cmpNe,
	"<":  cmpLt,
	">":  cmpGt,
	">=": cmpGe,
	"<=": cmpLe,
}

func parseComparator(s string) (comparator, error) {
	cmp, ok := comparators[s]
	if !ok {
		return 0, invalidCondition("invalid comparator: %s", s)
	}
	return cmp, nil
}

func (c comparator) compare(actual, given *goversion.Version) bool {
	switch sign := actual.Compare(given); c {
	case cmpEq:
		return sign == 0
	case cmpNe:
		return sign != 0
	case cmpLt:
		return sign < 0
	case cmpGt:
		return sign > 0
	case cmpGe:
		return sign >= 0
	default:
		return sign <= 0
	}
}

// parseChecksumValue parses the hexadecimal checksum argument (written
// without 0x prefix or quotes in the masterlist).
func parseChecksumValue(arg string) (uint32, error) {
	value, err := strconv.ParseUint(arg, 16, 32)
	if err != nil {
		return 0, invalidConditionCause(err, "invalid checksum: %s", arg)
	}
	return uint32(value), nil
}

// parseVersionValue parses a version string, defaulting to 0.0.0.0 when the
// file reports no version at all.
func parseVersionValue(s string) (*goversion.Version, error) {
	if s == "" {
		s = "0.0.0.0"
	}
	return goversion.NewVersion(s)
}

// Package masterlist parses masterlist and userlist metadata documents and
// indexes their records for lookup by plugin name.
package masterlist

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// isPattern reports whether a record name is a pattern rather than a plain
// plugin name. The backslash is included so escaped names like foo\.esp are
// routed to the pattern index.
func isPattern(name string) bool {
	return strings.ContainsAny(name, `:\*?|`)
}

type patternEntry struct {
	source string
	re     *regexp.Regexp
	record *Record
}

// Store indexes metadata records by exact lowercase plugin name and,
// separately, by pattern. It is read-only after construction and merge, and
// may then be shared freely across concurrent lookups.
type Store struct {
	exact map[string]*Record
	// Patterns keep document declaration order; the first declared pattern
	// that matches a queried name wins.
	patterns []patternEntry
}

type document struct {
	Plugins []*Record `yaml:"plugins"`
}

// Parse parses a metadata document and builds a store from it. A malformed
// document yields a DocumentParseError; a document without the top-level
// plugin list yields a DocumentFormatError. Records whose pattern fails to
// compile are skipped with a warning.
func Parse(ctx context.Context, data []byte) (*Store, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		var typeErr *yaml.TypeError
		if errors.As(err, &typeErr) {
			return nil, &DocumentFormatError{Reason: typeErr.Error()}
		}
		return nil, &DocumentParseError{Cause: err}
	}
	if doc.Plugins == nil {
		return nil, &DocumentFormatError{Reason: "missing top-level plugin list"}
	}

	logger := logutil.GetLogger(ctx)
	store := &Store{exact: make(map[string]*Record)}
	for _, record := range doc.Plugins {
		if record == nil || record.Name == "" {
			logger.Warn("skipping metadata record without name")
			continue
		}
		name := strings.ToLower(record.Name)
		if !isPattern(name) {
			store.exact[name] = record
			continue
		}
		re, err := regexp.Compile(`^(?:` + name + `$)`)
		if err != nil {
			logger.Warn("skipping metadata record with invalid pattern",
				zap.String("pattern", record.Name),
				zap.Error(err),
			)
			continue
		}
		store.patterns = append(store.patterns, patternEntry{source: name, re: re, record: record})
	}
	return store, nil
}

// Lookup returns the metadata record for a plugin name, or nil when none
// matches. The name is matched case-insensitively: exact entries first, then
// patterns in declaration order.
func (s *Store) Lookup(pluginName string) *Record {
	name := strings.ToLower(pluginName)
	if record, ok := s.exact[name]; ok {
		return record
	}
	for _, entry := range s.patterns {
		if entry.re.MatchString(name) {
			return entry.record
		}
	}
	return nil
}

// Len returns the number of indexed records.
func (s *Store) Len() int {
	return len(s.exact) + len(s.patterns)
}

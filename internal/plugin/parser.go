package plugin

import "fmt"

// Facts are the structural properties reported by a plugin file parser. The
// binary format itself is opaque to the rest of the system; only these flags
// and the validity verdicts matter.
type Facts struct {
	IsMaster        bool
	IsLight         bool
	IsValidAsLight  bool
	IsMedium        bool
	IsValidAsMedium bool
	IsUpdate        bool
	IsValidAsUpdate bool
}

// Parser inspects the raw bytes of a plugin file and reports its structural
// facts.
type Parser interface {
	ParsePlugin(name string, data []byte) (Facts, error)
}

// ParseError reports a plugin file that could not be structurally parsed.
// Structural checks are skipped for such a plugin while checksum-based checks
// continue unaffected.
type ParseError struct {
	Name  string
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse plugin %s: %v", e.Name, e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

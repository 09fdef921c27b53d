package masterlist

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Record holds the metadata for one plugin name or pattern. All fields are
// optional; a record is owned by the store that parsed it and is only mutated
// during merge.
type Record struct {
	Name              string      `yaml:"name"`
	Requirements      []FileRef   `yaml:"req"`
	Incompatibilities []FileRef   `yaml:"inc"`
	Messages          []Message   `yaml:"msg"`
	Dirty             []DirtyInfo `yaml:"dirty"`
}

// FileRef references a file by path or pattern. In the document it is either
// a bare string or a mapping; a bare string carries only the name. Identity
// for merging is the name.
type FileRef struct {
	Name      string `yaml:"name"`
	Display   string `yaml:"display"`
	Detail    string `yaml:"detail"`
	Condition string `yaml:"condition"`
}

func (f *FileRef) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		return value.Decode(&f.Name)
	}
	type plain FileRef
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*f = FileRef(p)
	return nil
}

// DisplayName returns the human label when present, else the file name.
func (f FileRef) DisplayName() string {
	if f.Display != "" {
		return f.Display
	}
	return f.Name
}

// Message is a free-form masterlist message attached to a plugin. Messages
// have no identity field; duplicates are detected by full structural
// equality.
type Message struct {
	Type      string         `yaml:"type"`
	Content   MessageContent `yaml:"content"`
	Subs      []string       `yaml:"subs"`
	Condition string         `yaml:"condition"`
}

// Equal reports full structural equality with another message.
func (m Message) Equal(other Message) bool {
	if m.Type != other.Type || m.Condition != other.Condition {
		return false
	}
	if len(m.Subs) != len(other.Subs) || len(m.Content) != len(other.Content) {
		return false
	}
	for i := range m.Subs {
		if m.Subs[i] != other.Subs[i] {
			return false
		}
	}
	for i := range m.Content {
		if m.Content[i] != other.Content[i] {
			return false
		}
	}
	return true
}

// MessageContent is either a single text or a list of localized variants; the
// English variant comes first.
type MessageContent []LocalizedText

// LocalizedText is one localized variant of a message content.
type LocalizedText struct {
	Text string `yaml:"text"`
	Lang string `yaml:"lang"`
}

func (c *MessageContent) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var text string
		if err := value.Decode(&text); err != nil {
			return err
		}
		*c = MessageContent{{Text: text}}
		return nil
	}
	var variants []LocalizedText
	if err := value.Decode(&variants); err != nil {
		return err
	}
	*c = variants
	return nil
}

// Text returns the English variant of the content.
func (c MessageContent) Text() string {
	if len(c) == 0 {
		return ""
	}
	return c[0].Text
}

// DirtyInfo identifies a known dirty state of a plugin by content checksum.
// The crc is the merge identity; itm/udr/nav counts are optional.
type DirtyInfo struct {
	CRC    uint32 `yaml:"crc"`
	Util   string `yaml:"util"`
	Detail string `yaml:"detail"`
	ITM    *int   `yaml:"itm"`
	UDR    *int   `yaml:"udr"`
	NAV    *int   `yaml:"nav"`
}

// DocumentParseError reports a metadata document with malformed syntax.
type DocumentParseError struct {
	Cause error
}

func (e *DocumentParseError) Error() string {
	return fmt.Sprintf("parse metadata document: %v", e.Cause)
}

func (e *DocumentParseError) Unwrap() error {
	return e.Cause
}

// DocumentFormatError reports a metadata document whose top-level structure
// is absent or not the expected plugin list.
type DocumentFormatError struct {
	Reason string
}

func (e *DocumentFormatError) Error() string {
	return fmt.Sprintf("invalid metadata document: %s", e.Reason)
}

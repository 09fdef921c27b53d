package masterlist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func parseDoc(t *testing.T, doc string) *Store {
	t.Helper()
	store, err := Parse(context.Background(), []byte(doc))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	return store
}

func TestMergeAddsNewRecords(t *testing.T) {
	base := parseDoc(t, `
plugins:
  - name: "A.esp"
    msg:
      - type: warn
        content: "from base"
`)
	override := parseDoc(t, `
plugins:
  - name: "B.esp"
    msg:
      - type: warn
        content: "from override"
`)
	merged := Merge(base, override)
	if merged.Lookup("A.esp") == nil || merged.Lookup("B.esp") == nil {
		t.Fatalf("merged store lost a record")
	}
}

func TestMergeFileRefsByName(t *testing.T) {
	base := parseDoc(t, `
plugins:
  - name: "A.esp"
    req:
      - "Dep.esm"
      - name: "Other.esp"
        detail: "base detail"
`)
	override := parseDoc(t, `
plugins:
  - name: "A.esp"
    req:
      - name: "Dep.esm"
        display: "The Dependency"
        condition: 'file("X.esp")'
      - "New.esp"
`)
	record := Merge(base, override).Lookup("A.esp")
	assert.Equal(t, 3, len(record.Requirements))

	// The bare base entry is promoted in place, not duplicated.
	dep := record.Requirements[0]
	assert.Equal(t, "Dep.esm", dep.Name)
	assert.Equal(t, "The Dependency", dep.Display)
	assert.Equal(t, `file("X.esp")`, dep.Condition)

	// Untouched base entries keep their fields.
	assert.Equal(t, "base detail", record.Requirements[1].Detail)
	assert.Equal(t, "New.esp", record.Requirements[2].Name)
}

func TestMergeMessagesDeduplicates(t *testing.T) {
	base := parseDoc(t, `
plugins:
  - name: "A.esp"
    msg:
      - type: warn
        content: "same text"
`)
	override := parseDoc(t, `
plugins:
  - name: "A.esp"
    msg:
      - type: warn
        content: "same text"
      - type: error
        content: "same text"
      - type: warn
        content: "other text"
`)
	record := Merge(base, override).Lookup("A.esp")
	// Identical message dropped; different type or content kept.
	assert.Equal(t, 3, len(record.Messages))
}

func TestMergeDirtyByCRC(t *testing.T) {
	base := parseDoc(t, `
plugins:
  - name: "A.esp"
    dirty:
      - crc: 0x11111111
        util: "OldTool"
        itm: 5
`)
	override := parseDoc(t, `
plugins:
  - name: "A.esp"
    dirty:
      - crc: 0x11111111
        util: "NewTool"
        udr: 2
      - crc: 0x22222222
        util: "NewTool"
`)
	record := Merge(base, override).Lookup("A.esp")
	assert.Equal(t, 2, len(record.Dirty))

	first := record.Dirty[0]
	assert.Equal(t, "NewTool", first.Util)
	if first.ITM == nil || *first.ITM != 5 {
		t.Fatalf("overlay dropped base ITM count: %v", first.ITM)
	}
	if first.UDR == nil || *first.UDR != 2 {
		t.Fatalf("overlay missed override UDR count: %v", first.UDR)
	}
}

func TestMergeEmptyOverrideSectionKeepsBase(t *testing.T) {
	base := parseDoc(t, `
plugins:
  - name: "A.esp"
    req:
      - "Dep.esm"
`)
	override := parseDoc(t, `
plugins:
  - name: "A.esp"
    msg:
      - type: warn
        content: "added"
`)
	record := Merge(base, override).Lookup("A.esp")
	assert.Equal(t, 1, len(record.Requirements))
	assert.Equal(t, 1, len(record.Messages))
}

func TestMergePatternRecords(t *testing.T) {
	base := parseDoc(t, `
plugins:
  - name: 'Mod.*\.esp'
    msg:
      - type: warn
        content: "base"
`)
	override := parseDoc(t, `
plugins:
  - name: 'Mod.*\.esp'
    msg:
      - type: warn
        content: "extra"
  - name: 'Another.*\.esp'
    msg:
      - type: warn
        content: "new pattern"
`)
	merged := Merge(base, override)
	record := merged.Lookup("ModThing.esp")
	assert.Equal(t, 2, len(record.Messages))
	if merged.Lookup("AnotherOne.esp") == nil {
		t.Fatalf("new pattern record was not appended")
	}
}

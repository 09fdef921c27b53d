package warning

import (
	"strings"
	"testing"

	"github.com/xxxsen/lootcheck/internal/masterlist"

	"github.com/stretchr/testify/assert"
)

func intp(v int) *int { return &v }

func TestApplySubs(t *testing.T) {
	assert.Equal(t, "install B after A",
		applySubs("install {1} after {0}", []string{"A", "B"}))
	assert.Equal(t, "first then second",
		applySubs("{} then {}", []string{"first", "second"}))
	assert.Equal(t, "no placeholders", applySubs("no placeholders", []string{"x"}))
}

func TestMessageWarning(t *testing.T) {
	w := NewMessageWarning("Foo.esp", masterlist.Message{
		Type:    "warn",
		Content: masterlist.MessageContent{{Text: "See **{0}** or [docs]({1})"}},
		Subs:    []string{"the readme", "https://example.org"},
	})
	assert.Equal(t, KindMessage, w.Kind())
	assert.Equal(t, "Foo.esp", w.PluginName())
	assert.Equal(t, "Foo.esp: See the readme or docs", w.ShortDescription())
	assert.Equal(t,
		`Foo.esp: See <b>the readme</b> or <a href="https://example.org">docs</a>`,
		w.FullDescription())
}

func TestMissingRequirementWarning(t *testing.T) {
	w := NewMissingRequirementWarning("Foo.esp", masterlist.FileRef{
		Name:    "Bar.esm",
		Display: "**Bar**",
		Detail:  "Get it [here](https://example.org).",
	})
	assert.Equal(t, KindMissingRequirement, w.Kind())
	assert.Equal(t, "Bar.esm", w.FilePath)
	assert.Equal(t,
		"Foo.esp requires 'Bar' to be installed, but it is missing. Get it here.",
		w.ShortDescription())
	assert.Equal(t,
		`Foo.esp requires '<b>Bar</b>' to be installed, but it is missing. Get it <a href="https://example.org">here</a>.`,
		w.FullDescription())
}

func TestIncompatibilityWarning(t *testing.T) {
	w := NewIncompatibilityWarning("Foo.esp", masterlist.FileRef{Name: "Clash.esp"})
	assert.Equal(t, KindIncompatibility, w.Kind())
	assert.Equal(t,
		"Foo.esp is incompatible with 'Clash.esp', but both are present.",
		w.ShortDescription())
}

func TestFormIDOutOfRangeWarning(t *testing.T) {
	w := NewFormIDOutOfRangeWarning("Light.esl")
	assert.Equal(t, KindFormIDOutOfRange, w.Kind())
	if !strings.Contains(w.ShortDescription(), "outside the valid range for a light plugin") {
		t.Fatalf("short description missing range text: %q", w.ShortDescription())
	}
	if !strings.Contains(w.FullDescription(), "reported to the author") {
		t.Fatalf("full description missing author guidance: %q", w.FullDescription())
	}
}

func TestDirtyPluginWarningAutoFixable(t *testing.T) {
	w := NewDirtyPluginWarning("Dirty.esp", masterlist.DirtyInfo{
		CRC:    0x12345678,
		Util:   "CleanTool",
		Detail: "Run the cleaner twice.",
		ITM:    intp(3),
		UDR:    intp(0),
	})
	assert.Equal(t, KindDirtyPlugin, w.Kind())
	assert.False(t, w.RequiresManualFix)
	assert.Equal(t, "Dirty.esp is dirty and requires cleaning.", w.ShortDescription())

	full := w.FullDescription()
	if !strings.Contains(full, `Click the "Fix" button`) {
		t.Fatalf("auto-fixable warning missing fix hint: %q", full)
	}
	// Both present counts are listed, including the explicit zero.
	if !strings.Contains(full, "3 Identical To Master records (ITMs)") {
		t.Fatalf("full description missing ITM line: %q", full)
	}
	if !strings.Contains(full, "0 Undeleted and Disabled References (UDRs)") {
		t.Fatalf("full description missing UDR line: %q", full)
	}
	if strings.Contains(full, "Deleted Navmeshes") {
		t.Fatalf("full description lists an absent NAV count: %q", full)
	}
}

func TestDirtyPluginWarningManualFix(t *testing.T) {
	w := NewDirtyPluginWarning("Navmesh.esp", masterlist.DirtyInfo{
		CRC:    0xABCDEF01,
		Detail: "It is strongly recommended not to use mods that contain deleted navmeshes.",
		NAV:    intp(4),
	})
	assert.True(t, w.RequiresManualFix)
	assert.Equal(t, "Navmesh.esp is dirty and contains deleted navmeshes",
		w.ShortDescription())
	if strings.Contains(w.FullDescription(), "Fix") {
		t.Fatalf("manual-fix warning offers the fix button: %q", w.FullDescription())
	}
	if !strings.Contains(w.FullDescription(), "4 Deleted Navmeshes (NAVs)") {
		t.Fatalf("full description missing NAV line: %q", w.FullDescription())
	}
}

func TestDirtyPluginWarningNoCounts(t *testing.T) {
	w := NewDirtyPluginWarning("Dirty.esp", masterlist.DirtyInfo{
		CRC:    0x1,
		Detail: "Needs cleaning.",
		ITM:    intp(0),
		UDR:    intp(0),
	})
	// All-zero counts suppress the details section entirely.
	if strings.Contains(w.FullDescription(), "Details:") {
		t.Fatalf("details section rendered for all-zero counts: %q", w.FullDescription())
	}
}

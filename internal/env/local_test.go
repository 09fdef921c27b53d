package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xxxsen/lootcheck/internal/plugin"

	"github.com/stretchr/testify/assert"
)

func setupDirs(t *testing.T, files ...string) (gameDir, dataDir string) {
	t.Helper()
	gameDir = t.TempDir()
	dataDir = filepath.Join(gameDir, "Data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		t.Fatalf("mkdir data dir: %v", err)
	}
	for _, name := range files {
		if err := os.WriteFile(filepath.Join(dataDir, name), []byte(name), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return gameDir, dataDir
}

func TestNewLocalRequiresDataDir(t *testing.T) {
	if _, err := NewLocal(t.TempDir(), filepath.Join(t.TempDir(), "nope"), ""); err == nil {
		t.Fatalf("NewLocal accepted a missing data dir")
	}
}

func TestLoadPluginsFile(t *testing.T) {
	gameDir, dataDir := setupDirs(t, "A.esp", "B.esp", "C.esp")
	pluginsFile := filepath.Join(gameDir, "plugins.txt")
	content := "# comment\n*A.esp\nB.esp\n\n*C.esp\n"
	if err := os.WriteFile(pluginsFile, []byte(content), 0o644); err != nil {
		t.Fatalf("write plugins file: %v", err)
	}

	l, err := NewLocal(gameDir, dataDir, pluginsFile)
	if err != nil {
		t.Fatalf("NewLocal returned error: %v", err)
	}
	assert.Equal(t, []string{"A.esp", "B.esp", "C.esp"}, l.PluginNames())
	assert.True(t, l.IsActive("A.esp"))
	assert.False(t, l.IsActive("B.esp"))
	assert.True(t, l.IsActive("c.esp"))
}

func TestIsActiveWithoutPluginsFile(t *testing.T) {
	gameDir, dataDir := setupDirs(t, "A.esp")
	l, err := NewLocal(gameDir, dataDir, "")
	if err != nil {
		t.Fatalf("NewLocal returned error: %v", err)
	}
	// Every installed plugin counts as active.
	assert.True(t, l.IsActive("A.esp"))
	assert.False(t, l.IsActive("Missing.esp"))
}

func TestFindFiles(t *testing.T) {
	gameDir, dataDir := setupDirs(t, "A.esp", "B.esm", "readme.txt")
	l, err := NewLocal(gameDir, dataDir, "")
	if err != nil {
		t.Fatalf("NewLocal returned error: %v", err)
	}
	found := l.FindFiles("", IsPluginFileName)
	if len(found) != 2 {
		t.Fatalf("FindFiles found %d files, want 2: %v", len(found), found)
	}
	for _, path := range found {
		if filepath.Dir(path) != dataDir {
			t.Fatalf("FindFiles returned a path outside the data dir: %s", path)
		}
	}
}

func TestPluginNamesFromScan(t *testing.T) {
	gameDir, dataDir := setupDirs(t, "B.esp", "A.esm")
	l, err := NewLocal(gameDir, dataDir, "")
	if err != nil {
		t.Fatalf("NewLocal returned error: %v", err)
	}
	assert.Equal(t, []string{"A.esm", "B.esp"}, l.PluginNames())
}

type masterOnlyParser struct {
	calls int
}

func (p *masterOnlyParser) ParsePlugin(name string, data []byte) (plugin.Facts, error) {
	p.calls++
	return plugin.Facts{IsMaster: true}, nil
}

func TestIsMasterCaches(t *testing.T) {
	gameDir, dataDir := setupDirs(t, "Master.esm")
	parser := &masterOnlyParser{}
	l, err := NewLocal(gameDir, dataDir, "", WithParser(parser))
	if err != nil {
		t.Fatalf("NewLocal returned error: %v", err)
	}
	assert.True(t, l.IsMaster("Master.esm"))
	assert.True(t, l.IsMaster("MASTER.ESM"))
	assert.Equal(t, 1, parser.calls)

	// Unreadable plugins are simply not masters.
	assert.False(t, l.IsMaster("Missing.esm"))
}

func TestIsPluginFileName(t *testing.T) {
	for _, name := range []string{"a.esp", "b.ESM", "c.esl"} {
		if !IsPluginFileName(name) {
			t.Fatalf("IsPluginFileName(%q) = false", name)
		}
	}
	for _, name := range []string{"a.txt", "b.esp.bak", "esp"} {
		if IsPluginFileName(name) {
			t.Fatalf("IsPluginFileName(%q) = true", name)
		}
	}
}

func TestModVersion(t *testing.T) {
	gameDir, dataDir := setupDirs(t)
	l, err := NewLocal(gameDir, dataDir, "",
		WithModVersions(map[string]string{"Mod.esp": "1.2"}))
	if err != nil {
		t.Fatalf("NewLocal returned error: %v", err)
	}
	v, ok := l.ModVersion("mod.esp")
	if !ok || v != "1.2" {
		t.Fatalf("ModVersion = (%q, %v), want (1.2, true)", v, ok)
	}
	if _, ok := l.ModVersion("other.esp"); ok {
		t.Fatalf("ModVersion reported an unknown plugin")
	}
}

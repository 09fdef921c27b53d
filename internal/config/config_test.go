package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lootcheck.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"data_dir": "/games/skyrim/Data",
		"masterlists": ["masterlist.yaml"]
	}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	assert.Equal(t, "/games/skyrim", cfg.GameDir)
	assert.Equal(t, "masterlists", cfg.MasterlistCacheDir)
}

func TestLoadKeepsExplicitValues(t *testing.T) {
	path := writeConfig(t, `{
		"game_dir": "/custom/root",
		"data_dir": "/games/skyrim/Data",
		"plugins_file": "/games/skyrim/plugins.txt",
		"masterlists": ["a.yaml", "b.yaml"],
		"masterlist_cache_dir": "/var/cache/lootcheck",
		"include_info": true,
		"cache_db": "/var/cache/lootcheck/crc.db",
		"mod_versions": {"Mod.esp": "1.2"}
	}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	assert.Equal(t, "/custom/root", cfg.GameDir)
	assert.Equal(t, []string{"a.yaml", "b.yaml"}, cfg.Masterlists)
	assert.Equal(t, "/var/cache/lootcheck", cfg.MasterlistCacheDir)
	assert.True(t, cfg.IncludeInfo)
	assert.Equal(t, "1.2", cfg.ModVersions["Mod.esp"])
}

func TestLoadValidation(t *testing.T) {
	cases := []string{
		`{"masterlists": ["a.yaml"]}`,
		`{"data_dir": "/d"}`,
		`{"data_dir": "/d", "masterlists": []}`,
		`{"data_dir": "/d", "masterlists": ["s3://bucket/key"]}`,
	}
	for _, content := range cases {
		if _, err := Load(writeConfig(t, content)); err == nil {
			t.Fatalf("Load(%s) succeeded, want validation error", content)
		}
	}
}

func TestLoadS3LocationWithHost(t *testing.T) {
	path := writeConfig(t, `{
		"data_dir": "/d",
		"masterlists": ["s3://bucket/key"],
		"s3": {"host": "minio.local", "access_key_id": "ak", "secret_access_key": "sk"}
	}`)
	if _, err := Load(path); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
}

func TestLoadMalformedJSON(t *testing.T) {
	if _, err := Load(writeConfig(t, `{not json`)); err == nil {
		t.Fatalf("Load accepted malformed json")
	}
}

func TestLoadFirst(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.json")
	good := writeConfig(t, `{"data_dir": "/d", "masterlists": ["a.yaml"]}`)

	cfg, err := LoadFirst(missing, good)
	if err != nil {
		t.Fatalf("LoadFirst returned error: %v", err)
	}
	assert.Equal(t, "/d", cfg.DataDir)

	if _, err := LoadFirst(missing, filepath.Join(t.TempDir(), "also-missing.json")); err == nil {
		t.Fatalf("LoadFirst succeeded with no readable config")
	}

	// An invalid config aborts the search instead of falling through.
	bad := writeConfig(t, `{"masterlists": ["a.yaml"]}`)
	if _, err := LoadFirst(bad, good); err == nil {
		t.Fatalf("LoadFirst skipped over an invalid config")
	}
}

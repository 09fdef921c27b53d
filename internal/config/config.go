package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config describes the application level configuration loaded from json.
type Config struct {
	// GameDir is the game install root. Defaults to the parent of DataDir.
	GameDir string `json:"game_dir"`
	// DataDir is the directory holding the plugin files.
	DataDir string `json:"data_dir"`
	// PluginsFile is the load order file; lines starting with '*' mark active
	// plugins. Optional, without it every installed plugin counts as active.
	PluginsFile string `json:"plugins_file"`
	// Masterlists are document locations in merge order: later documents
	// override earlier ones. A location is a local path, an http(s) URL or
	// an s3://bucket/key reference.
	Masterlists []string `json:"masterlists"`
	// MasterlistCacheDir is where fetched remote documents are stored.
	MasterlistCacheDir string `json:"masterlist_cache_dir"`
	// IncludeInfo reports informational messages alongside warnings.
	IncludeInfo bool `json:"include_info"`
	// CacheDB is the sqlite checksum cache path. Empty disables caching.
	CacheDB string `json:"cache_db"`
	// ModVersions maps plugin names to declared content-package versions.
	ModVersions map[string]string `json:"mod_versions"`

	S3 S3Config `json:"s3"`
}

// S3Config holds the options for accessing the object store.
type S3Config struct {
	Host            string `json:"host"`
	Region          string `json:"region"`
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	SessionToken    string `json:"session_token"`
	ForcePathStyle  bool   `json:"force_path_style"`
}

// LoadFirst tries to load configuration from the given paths, returning the
// first successfully decoded configuration. If none of the paths contain a
// readable config, an error is returned.
func LoadFirst(paths ...string) (*Config, error) {
	var lastErr error
	for _, path := range paths {
		if path == "" {
			continue
		}
		cfg, err := Load(path)
		if errors.Is(err, os.ErrNotExist) {
			lastErr = err
			continue
		}
		if err != nil {
			return nil, err
		}
		return cfg, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("config not found in paths: %v", paths)
	}
	return nil, lastErr
}

// Load reads configuration from a single json file path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.GameDir == "" && c.DataDir != "" {
		c.GameDir = filepath.Dir(filepath.Clean(c.DataDir))
	}
	if c.MasterlistCacheDir == "" {
		c.MasterlistCacheDir = "masterlists"
	}
}

// Validate performs basic validation of the configuration.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("config.data_dir must be set")
	}
	if len(c.Masterlists) == 0 {
		return errors.New("config.masterlists must list at least one document")
	}
	for _, location := range c.Masterlists {
		if strings.HasPrefix(location, "s3://") && c.S3.Host == "" {
			return errors.New("config.s3.host must be set to use s3 masterlist locations")
		}
	}
	return nil
}

package env

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xxxsen/lootcheck/internal/plugin"
)

// Local implements Environment against the filesystem: plugins live in the
// data directory, activation state comes from the game's plugins.txt load
// order file, and master flags are read from the plugin headers.
type Local struct {
	gameDir string
	dataDir string
	parser  plugin.Parser

	// nil when no load order file was given; every installed plugin is then
	// considered active.
	active map[string]bool
	order  []string

	modVersions map[string]string
	masterCache map[string]bool
}

// LocalOption configures a Local environment.
type LocalOption func(*Local)

// WithParser supplies the structural parser used to answer master-flag
// queries.
func WithParser(parser plugin.Parser) LocalOption {
	return func(l *Local) {
		l.parser = parser
	}
}

// WithModVersions supplies declared content-package versions keyed by plugin
// name.
func WithModVersions(versions map[string]string) LocalOption {
	return func(l *Local) {
		l.modVersions = make(map[string]string, len(versions))
		for name, v := range versions {
			l.modVersions[strings.ToLower(name)] = v
		}
	}
}

// NewLocal builds a filesystem-backed environment. The data directory must
// exist. When pluginsFile is non-empty it is parsed as a load order file
// where lines starting with '*' mark active plugins.
func NewLocal(gameDir, dataDir, pluginsFile string, opts ...LocalOption) (*Local, error) {
	info, err := os.Stat(dataDir)
	if err != nil {
		return nil, fmt.Errorf("stat data dir %s: %w", dataDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data dir %s is not a directory", dataDir)
	}
	l := &Local{
		gameDir:     filepath.Clean(gameDir),
		dataDir:     filepath.Clean(dataDir),
		masterCache: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(l)
	}
	if pluginsFile != "" {
		if err := l.loadPluginsFile(pluginsFile); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (l *Local) loadPluginsFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open plugins file %s: %w", path, err)
	}
	defer f.Close()

	l.active = make(map[string]bool)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		enabled := strings.HasPrefix(line, "*")
		name := strings.TrimPrefix(line, "*")
		l.order = append(l.order, name)
		l.active[strings.ToLower(name)] = enabled
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan plugins file %s: %w", path, err)
	}
	return nil
}

// Parser exposes the structural parser the environment was built with.
func (l *Local) Parser() plugin.Parser { return l.parser }

func (l *Local) DataDir() string { return l.dataDir }
func (l *Local) GameDir() string { return l.gameDir }

// FindFiles lists the files in the directory relative to the data dir whose
// base name satisfies match, in name order.
func (l *Local) FindFiles(relDir string, match func(name string) bool) []string {
	dir := filepath.Join(l.dataDir, filepath.FromSlash(relDir))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var found []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if match(entry.Name()) {
			found = append(found, filepath.Join(dir, entry.Name()))
		}
	}
	return found
}

// PluginNames returns plugin names from the load order file when one was
// given, else every plugin file installed in the data dir.
func (l *Local) PluginNames() []string {
	if l.order != nil {
		return l.order
	}
	names := make([]string, 0)
	for _, path := range l.FindFiles("", IsPluginFileName) {
		names = append(names, filepath.Base(path))
	}
	sort.Strings(names)
	return names
}

// IsActive reports whether the plugin is enabled. Without a load order file
// every installed plugin counts as active.
func (l *Local) IsActive(pluginName string) bool {
	if l.active != nil {
		return l.active[strings.ToLower(pluginName)]
	}
	_, err := os.Stat(filepath.Join(l.dataDir, pluginName))
	return err == nil
}

// IsMaster reads the plugin header to answer master-flag queries, caching the
// result for the environment's lifetime.
func (l *Local) IsMaster(pluginName string) bool {
	key := strings.ToLower(pluginName)
	if master, ok := l.masterCache[key]; ok {
		return master
	}
	master := false
	if l.parser != nil {
		if data, err := os.ReadFile(filepath.Join(l.dataDir, pluginName)); err == nil {
			if facts, err := l.parser.ParsePlugin(pluginName, data); err == nil {
				master = facts.IsMaster
			}
		}
	}
	l.masterCache[key] = master
	return master
}

// FileVersion returns the binary's file version. Version resources are not
// read from binaries here; hosts with that capability provide their own
// Environment.
func (l *Local) FileVersion(absPath string) string { return "" }

// ProductVersion returns the binary's product version, see FileVersion.
func (l *Local) ProductVersion(absPath string) string { return "" }

// ModVersion returns the configured declared version for the plugin.
func (l *Local) ModVersion(pluginName string) (string, bool) {
	v, ok := l.modVersions[strings.ToLower(pluginName)]
	return v, ok
}

// IsPluginFileName reports whether a file name looks like a plugin file.
func IsPluginFileName(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".esp", ".esm", ".esl":
		return true
	default:
		return false
	}
}

package env

// Environment supplies the host facts needed to evaluate masterlist
// conditions and to discover installed plugins: file lookups under the
// managed data directory, plugin activation state, master flags and version
// information. Implementations are external collaborators; the checker and
// the condition evaluator only depend on this interface.
type Environment interface {
	// DataDir returns the absolute path of the managed data directory.
	DataDir() string
	// GameDir returns the absolute path of the game root directory. Relative
	// condition paths prefixed with "../" resolve against it.
	GameDir() string
	// FindFiles returns the absolute paths of files in the directory relative
	// to the data dir whose base name satisfies match.
	FindFiles(relDir string, match func(name string) bool) []string
	// PluginNames returns all known plugin names in load order.
	PluginNames() []string
	// IsActive reports whether the named plugin is enabled.
	IsActive(pluginName string) bool
	// IsMaster reports whether the named plugin carries the master flag.
	IsMaster(pluginName string) bool
	// FileVersion returns the file version of a binary, or "" when the file
	// has none.
	FileVersion(absPath string) string
	// ProductVersion returns the product version of a binary, or "" when the
	// file has none.
	ProductVersion(absPath string) string
	// ModVersion returns the declared version of the content package that
	// owns the plugin, if known.
	ModVersion(pluginName string) (string, bool)
}

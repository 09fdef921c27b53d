package condition

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// isRegexArg reports whether a path argument is a pattern rather than a
// literal name. Any of these characters marks it as a pattern; the backslash
// is included so that escaped literals like foo\.esp are treated as patterns.
func isRegexArg(arg string) bool {
	return strings.ContainsAny(arg, `:\*?|`)
}

// compileFullMatch compiles a pattern so that it must match an entire file
// name, mirroring a prefix-anchored match with "$" appended.
func compileFullMatch(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(`^(?:` + pattern + `$)`)
	if err != nil {
		return nil, invalidConditionCause(err, "invalid pattern: %s", pattern)
	}
	return re, nil
}

// absolutePath resolves a path relative to the data directory to an absolute
// on-disk path. A "../" prefix escapes to the game root directory instead.
// Returns fs.ErrNotExist (wrapped) when no matching file exists.
func (ev *Evaluator) absolutePath(rel string) (string, error) {
	if strings.HasPrefix(rel, "../") {
		return ev.absolutePathOutsideDataDir(rel[3:])
	}
	relDir, relFile := splitLastSlash(rel)
	if files := ev.env.FindFiles(relDir, func(f string) bool { return f == relFile }); len(files) > 0 {
		return files[0], nil
	}
	return "", os.ErrNotExist
}

// absolutePathOutsideDataDir resolves a path relative to the game root
// directory, rejecting anything that escapes the root.
func (ev *Evaluator) absolutePathOutsideDataDir(rel string) (string, error) {
	gameDir := ev.env.GameDir()
	abs := filepath.Clean(filepath.Join(gameDir, filepath.FromSlash(rel)))
	if abs != gameDir && !strings.HasPrefix(abs, gameDir+string(filepath.Separator)) {
		return "", invalidCondition("%s is not inside the game directory", rel)
	}
	if _, err := os.Stat(abs); err != nil {
		return "", os.ErrNotExist
	}
	return abs, nil
}

// absolutePaths resolves a pattern relative to the data directory (or the
// game root with a "../" prefix) to the absolute paths of all matching files.
func (ev *Evaluator) absolutePaths(pattern string) ([]string, error) {
	// The pattern part may contain backslashes, so split on the last slash
	// rather than going through filepath.
	relDir, rawPattern := splitLastSlash(pattern)
	re, err := compileFullMatch(rawPattern)
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(relDir, "../") {
		gameDir := ev.env.GameDir()
		absDir := filepath.Clean(filepath.Join(gameDir, filepath.FromSlash(relDir[3:])))
		if absDir != gameDir && !strings.HasPrefix(absDir, gameDir+string(filepath.Separator)) {
			return nil, invalidCondition("%s is not inside the game directory", pattern)
		}
		entries, err := os.ReadDir(absDir)
		if err != nil {
			return nil, nil
		}
		var matches []string
		for _, entry := range entries {
			if re.MatchString(entry.Name()) {
				matches = append(matches, filepath.Join(absDir, entry.Name()))
			}
		}
		return matches, nil
	}
	return ev.env.FindFiles(relDir, re.MatchString), nil
}

func splitLastSlash(s string) (dir, file string) {
	idx := strings.LastIndex(s, "/") + 1
	return s[:idx], s[idx:]
}

// evalFile implements file(path|pattern): true when a matching on-disk file
// exists under the managed directories.
func (ev *Evaluator) evalFile(pathOrPattern string) (bool, error) {
	if isRegexArg(pathOrPattern) {
		paths, err := ev.absolutePaths(pathOrPattern)
		if err != nil {
			return false, err
		}
		return len(paths) > 0, nil
	}
	abs, err := ev.absolutePath(pathOrPattern)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	info, err := os.Stat(abs)
	return err == nil && info.Mode().IsRegular(), nil
}

// evalReadable implements readable(path): true when the resolved path exists
// and can be opened for reading.
func (ev *Evaluator) evalReadable(rel string) (bool, error) {
	abs, err := ev.absolutePath(rel)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	f, err := os.Open(abs)
	if err != nil {
		return false, nil
	}
	f.Close()
	return true, nil
}

// evalActive implements active(name|pattern): true when the named plugin, or
// any plugin matching the pattern, is enabled.
func (ev *Evaluator) evalActive(nameOrPattern string) (bool, error) {
	if !isRegexArg(nameOrPattern) {
		return ev.env.IsActive(nameOrPattern), nil
	}
	re, err := compileFullMatch(nameOrPattern)
	if err != nil {
		return false, err
	}
	for _, name := range ev.env.PluginNames() {
		if re.MatchString(name) && ev.env.IsActive(name) {
			return true, nil
		}
	}
	return false, nil
}

// evalMany implements many(pattern): true when strictly more than one file
// matches.
func (ev *Evaluator) evalMany(pattern string) (bool, error) {
	paths, err := ev.absolutePaths(pattern)
	if err != nil {
		return false, err
	}
	return len(paths) > 1, nil
}

// evalManyActive implements many_active(pattern): true when strictly more
// than one enabled plugin matches.
func (ev *Evaluator) evalManyActive(pattern string) (bool, error) {
	re, err := compileFullMatch(pattern)
	if err != nil {
		return false, err
	}
	found := 0
	for _, name := range ev.env.PluginNames() {
		if re.MatchString(name) && ev.env.IsActive(name) {
			found++
			if found > 1 {
				return true, nil
			}
		}
	}
	return false, nil
}

// evalChecksum implements checksum(path, hex): true when the resolved file's
// CRC32 equals the expected value.
func (ev *Evaluator) evalChecksum(rel string, expected uint32) (bool, error) {
	abs, err := ev.absolutePath(rel)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	info, err := os.Stat(abs)
	if err != nil || !info.Mode().IsRegular() {
		return false, nil
	}
	crc, err := ev.crc32(abs)
	if err != nil {
		return false, nil
	}
	return crc == expected, nil
}

// evalVersion implements version(path, version, cmp). Executable and library
// files resolve their binary file version; plugin files resolve the declared
// version of the owning content package. A file that exists but has no
// version is treated as 0.0.0.0.
func (ev *Evaluator) evalVersion(rel, givenVersion string, cmp comparator) (bool, error) {
	abs, err := ev.absolutePath(rel)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	var actualText string
	switch strings.ToLower(filepath.Ext(rel)) {
	case ".exe", ".dll":
		actualText = ev.env.FileVersion(abs)
	case ".esp", ".esm", ".esl":
		v, ok := ev.env.ModVersion(rel)
		if !ok {
			return false, nil
		}
		actualText = v
	default:
		return false, invalidCondition("%s is not a valid binary or plugin file", rel)
	}
	return compareVersions(actualText, givenVersion, cmp)
}

// evalProductVersion implements product_version(path, version, cmp) for
// executable and library files only.
func (ev *Evaluator) evalProductVersion(rel, givenVersion string, cmp comparator) (bool, error) {
	abs, err := ev.absolutePath(rel)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	switch strings.ToLower(filepath.Ext(rel)) {
	case ".exe", ".dll":
		return compareVersions(ev.env.ProductVersion(abs), givenVersion, cmp)
	default:
		return false, invalidCondition("%s is not a valid binary file", rel)
	}
}

func compareVersions(actualText, givenText string, cmp comparator) (bool, error) {
	actual, err := parseVersionValue(actualText)
	if err != nil {
		// An unparseable reported version counts as no version at all.
		actual, _ = parseVersionValue("")
	}
	given, err := parseVersionValue(givenText)
	if err != nil {
		return false, invalidConditionCause(err, "invalid version: %s", givenText)
	}
	return cmp.compare(actual, given), nil
}

package plugin

import (
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"strings"
)

// CRC32Func computes the CRC32 of a file. The default reads the whole file;
// a cache-backed implementation can be substituted to skip re-reads.
type CRC32Func func(path string) (uint32, error)

// ComputeCRC32 reads a file and returns its CRC32 checksum.
func ComputeCRC32(path string) (uint32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read file for crc %s: %w", path, err)
	}
	return crc32.ChecksumIEEE(data), nil
}

// Plugin is one installed game plugin file. The checksum and structural facts
// are resolved lazily on first use and cached for the plugin's lifetime,
// which is a single warning-generation pass.
type Plugin struct {
	Name string
	Path string

	parser Parser
	crcFn  CRC32Func

	loaded   bool
	crc      uint32
	crcSet   bool
	facts    *Facts
	parseErr error
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithCRC32Func overrides how the plugin checksum is computed when only the
// checksum is needed.
func WithCRC32Func(fn CRC32Func) Option {
	return func(p *Plugin) {
		p.crcFn = fn
	}
}

// New builds a plugin for the file at path. No I/O happens until a checksum
// or structural fact is first requested.
func New(path string, parser Parser, opts ...Option) *Plugin {
	p := &Plugin{
		Name:   filepath.Base(path),
		Path:   path,
		parser: parser,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// load reads the plugin file once, computing the checksum and running the
// structural parser. A parse failure is recorded and surfaced by the flag
// accessors; the checksum stays valid regardless.
func (p *Plugin) load() error {
	if p.loaded {
		return nil
	}
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return fmt.Errorf("read plugin %s: %w", p.Path, err)
	}
	p.loaded = true
	p.crc = crc32.ChecksumIEEE(data)
	p.crcSet = true
	if len(data) == 0 || p.parser == nil {
		return nil
	}
	facts, err := p.parser.ParsePlugin(p.Name, data)
	if err != nil {
		p.parseErr = &ParseError{Name: p.Name, Cause: err}
		return nil
	}
	p.facts = &facts
	return nil
}

// CRC returns the plugin file's CRC32 checksum, computing it on first use.
func (p *Plugin) CRC() (uint32, error) {
	if p.crcSet {
		return p.crc, nil
	}
	if p.crcFn != nil && !p.loaded {
		if crc, err := p.crcFn(p.Path); err == nil {
			p.crc = crc
			p.crcSet = true
			return crc, nil
		}
	}
	if err := p.load(); err != nil {
		return 0, err
	}
	return p.crc, nil
}

func (p *Plugin) loadFacts() (*Facts, error) {
	if err := p.load(); err != nil {
		return nil, err
	}
	if p.parseErr != nil {
		return nil, p.parseErr
	}
	return p.facts, nil
}

// IsLight reports whether the plugin is a light plugin. An .esl extension
// implies light without inspecting the file.
func (p *Plugin) IsLight() (bool, error) {
	if strings.HasSuffix(strings.ToLower(p.Name), ".esl") {
		return true, nil
	}
	facts, err := p.loadFacts()
	if err != nil || facts == nil {
		return false, err
	}
	return facts.IsLight, nil
}

// IsValidAsLight reports whether all record identifiers fit the light-format
// range. This does not imply the plugin actually is a light plugin.
func (p *Plugin) IsValidAsLight() (bool, error) {
	facts, err := p.loadFacts()
	if err != nil || facts == nil {
		return false, err
	}
	return facts.IsValidAsLight, nil
}

// IsMaster reports whether the plugin carries the master flag.
func (p *Plugin) IsMaster() (bool, error) {
	facts, err := p.loadFacts()
	if err != nil || facts == nil {
		return false, err
	}
	return facts.IsMaster, nil
}

// IsMedium reports whether the plugin is a medium plugin.
func (p *Plugin) IsMedium() (bool, error) {
	if strings.HasSuffix(strings.ToLower(p.Name), ".esl") {
		return false, nil
	}
	facts, err := p.loadFacts()
	if err != nil || facts == nil {
		return false, err
	}
	return facts.IsMedium, nil
}

// IsValidAsMedium reports whether all record identifiers fit the
// medium-format range.
func (p *Plugin) IsValidAsMedium() (bool, error) {
	facts, err := p.loadFacts()
	if err != nil || facts == nil {
		return false, err
	}
	return facts.IsValidAsMedium, nil
}

// IsUpdate reports whether the plugin is an update plugin.
func (p *Plugin) IsUpdate() (bool, error) {
	if strings.HasSuffix(strings.ToLower(p.Name), ".esl") {
		return false, nil
	}
	facts, err := p.loadFacts()
	if err != nil || facts == nil {
		return false, err
	}
	return facts.IsUpdate, nil
}

// IsValidAsUpdate reports whether every record overrides an existing record.
func (p *Plugin) IsValidAsUpdate() (bool, error) {
	facts, err := p.loadFacts()
	if err != nil || facts == nil {
		return false, err
	}
	return facts.IsValidAsUpdate, nil
}

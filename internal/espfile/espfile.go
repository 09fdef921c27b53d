// Package espfile implements structural parsing of plugin files: header flag
// decoding plus record identifier validation for the light, medium and update
// sub-formats.
package espfile

import (
	"encoding/binary"
	"fmt"

	"github.com/xxxsen/lootcheck/internal/plugin"
)

// Header record flags.
const (
	flagMaster = 0x00000001
	flagLight  = 0x00000200
	flagMedium = 0x00000400
	flagUpdate = 0x00200000
)

// Record identifier ranges. A light plugin only has 12 bits of object index,
// offset by 0x800; a medium plugin has 16 bits.
const (
	lightObjectIndexMin  = 0x800
	lightObjectIndexMax  = 0xFFF
	mediumObjectIndexMax = 0xFFFF
)

const recordHeaderSize = 24

// Parser decodes the binary structure of plugin files.
type Parser struct{}

// New builds a plugin file parser.
func New() Parser {
	return Parser{}
}

// ParsePlugin inspects the raw bytes of a plugin file and reports its
// structural facts. Older-generation files (TES3 header) carry none of the
// sub-format flags and report zero facts without error.
func (Parser) ParsePlugin(name string, data []byte) (plugin.Facts, error) {
	if len(data) < recordHeaderSize {
		return plugin.Facts{}, fmt.Errorf("plugin %s: truncated header", name)
	}
	switch magic := string(data[:4]); magic {
	case "TES3":
		return plugin.Facts{}, nil
	case "TES4":
	default:
		return plugin.Facts{}, fmt.Errorf("plugin %s: unexpected header type %q", name, magic)
	}

	headerSize := binary.LittleEndian.Uint32(data[4:8])
	flags := binary.LittleEndian.Uint32(data[8:12])
	if recordHeaderSize+int(headerSize) > len(data) {
		return plugin.Facts{}, fmt.Errorf("plugin %s: header size exceeds file size", name)
	}

	facts := plugin.Facts{
		IsMaster: flags&flagMaster != 0,
		IsLight:  flags&flagLight != 0,
		IsMedium: flags&flagMedium != 0,
		IsUpdate: flags&flagUpdate != 0,
	}

	masterCount, err := countMasters(data[recordHeaderSize : recordHeaderSize+int(headerSize)])
	if err != nil {
		return plugin.Facts{}, fmt.Errorf("plugin %s: %w", name, err)
	}
	formIDs, err := collectFormIDs(data[recordHeaderSize+int(headerSize):])
	if err != nil {
		return plugin.Facts{}, fmt.Errorf("plugin %s: %w", name, err)
	}

	facts.IsValidAsLight = true
	facts.IsValidAsMedium = true
	facts.IsValidAsUpdate = true
	for _, id := range formIDs {
		modIndex := id >> 24
		if modIndex < masterCount {
			// Override of an existing record; any identifier is fine.
			continue
		}
		facts.IsValidAsUpdate = false
		objectIndex := id & 0x00FFFFFF
		if objectIndex < lightObjectIndexMin || objectIndex > lightObjectIndexMax {
			facts.IsValidAsLight = false
		}
		if objectIndex > mediumObjectIndexMax {
			facts.IsValidAsMedium = false
		}
	}
	return facts, nil
}

// countMasters counts the MAST subrecords in the header record data.
// Subrecords are a 4-byte type, a 16-bit size and the payload.
func countMasters(data []byte) (uint32, error) {
	var count uint32
	off := 0
	for off < len(data) {
		if off+6 > len(data) {
			return 0, fmt.Errorf("truncated subrecord at offset %d", off)
		}
		size := int(binary.LittleEndian.Uint16(data[off+4 : off+6]))
		if string(data[off:off+4]) == "MAST" {
			count++
		}
		off += 6 + size
	}
	return count, nil
}

// collectFormIDs walks the records following the header and returns every
// record's identifier. Group containers are descended into linearly: their
// declared size covers the contained records, so skipping only the group
// header visits the contents in order.
func collectFormIDs(data []byte) ([]uint32, error) {
	var ids []uint32
	off := 0
	for off < len(data) {
		if off+recordHeaderSize > len(data) {
			return nil, fmt.Errorf("truncated record at offset %d", off)
		}
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		if string(data[off:off+4]) == "GRUP" {
			if size < recordHeaderSize {
				return nil, fmt.Errorf("invalid group size at offset %d", off)
			}
			off += recordHeaderSize
			continue
		}
		ids = append(ids, binary.LittleEndian.Uint32(data[off+12:off+16]))
		off += recordHeaderSize + size
	}
	return ids, nil
}

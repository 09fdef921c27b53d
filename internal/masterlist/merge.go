package masterlist

// Merge combines the override store (userlist) into the base store
// (masterlist) and returns the base. Records present only in the override are
// added as-is; records present in both are merged field by field with the
// override taking precedence on per-item conflicts.
func Merge(base, override *Store) *Store {
	for name, record := range override.exact {
		if existing, ok := base.exact[name]; ok {
			mergeRecord(existing, record)
		} else {
			base.exact[name] = record
		}
	}
	for _, entry := range override.patterns {
		if existing := base.findPattern(entry.source); existing != nil {
			mergeRecord(existing, entry.record)
		} else {
			base.patterns = append(base.patterns, entry)
		}
	}
	return base
}

func (s *Store) findPattern(source string) *Record {
	for _, entry := range s.patterns {
		if entry.source == source {
			return entry.record
		}
	}
	return nil
}

func mergeRecord(base, override *Record) {
	if len(override.Requirements) > 0 {
		base.Requirements = mergeFileRefs(base.Requirements, override.Requirements)
	}
	if len(override.Incompatibilities) > 0 {
		base.Incompatibilities = mergeFileRefs(base.Incompatibilities, override.Incompatibilities)
	}
	if len(override.Messages) > 0 {
		base.Messages = mergeMessages(base.Messages, override.Messages)
	}
	if len(override.Dirty) > 0 {
		base.Dirty = mergeDirtyInfos(base.Dirty, override.Dirty)
	}
}

// mergeFileRefs merges by name identity. A new name is appended; a matching
// name is overlaid field by field, which also promotes a bare base entry to
// the override's structured form without duplicating it.
func mergeFileRefs(base, override []FileRef) []FileRef {
	if len(base) == 0 {
		return override
	}
	for _, ref := range override {
		idx := -1
		for i := range base {
			if base[i].Name == ref.Name {
				idx = i
				break
			}
		}
		if idx < 0 {
			base = append(base, ref)
			continue
		}
		overlayFileRef(&base[idx], ref)
	}
	return base
}

func overlayFileRef(base *FileRef, override FileRef) {
	if override.Display != "" {
		base.Display = override.Display
	}
	if override.Detail != "" {
		base.Detail = override.Detail
	}
	if override.Condition != "" {
		base.Condition = override.Condition
	}
}

// mergeMessages appends override messages not already present under full
// structural equality; duplicates are dropped, not merged.
func mergeMessages(base, override []Message) []Message {
	for _, msg := range override {
		duplicate := false
		for _, existing := range base {
			if existing.Equal(msg) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			base = append(base, msg)
		}
	}
	return base
}

// mergeDirtyInfos merges by crc identity: a new crc is appended, a matching
// crc is overlaid field by field.
func mergeDirtyInfos(base, override []DirtyInfo) []DirtyInfo {
	for _, info := range override {
		idx := -1
		for i := range base {
			if base[i].CRC == info.CRC {
				idx = i
				break
			}
		}
		if idx < 0 {
			base = append(base, info)
			continue
		}
		overlayDirtyInfo(&base[idx], info)
	}
	return base
}

func overlayDirtyInfo(base *DirtyInfo, override DirtyInfo) {
	if override.Util != "" {
		base.Util = override.Util
	}
	if override.Detail != "" {
		base.Detail = override.Detail
	}
	if override.ITM != nil {
		base.ITM = override.ITM
	}
	if override.UDR != nil {
		base.UDR = override.UDR
	}
	if override.NAV != nil {
		base.NAV = override.NAV
	}
}

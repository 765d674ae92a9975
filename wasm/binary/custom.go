package binary

import (
	"strings"

	"github.com/wasmtools/wabin/wasm"
)

// NameSectionName is the custom section carrying debug names.
const NameSectionName = "name"

// RelocSectionPrefix prefixes custom sections carrying relocations for one
// target section.
const RelocSectionPrefix = "reloc."

func (d *decoder) decodeCustomSection(size uint32) error {
	c := d.c
	name, err := c.readString("custom section name")
	if err != nil {
		return err
	}
	if err := d.r.BeginCustomSection(size, name); err != nil {
		return err
	}
	switch {
	// A "name" section before the import section is positionally malformed
	// and skipped as opaque rather than rejected.
	case name == NameSectionName && d.opts.DebugNames && d.sawImportSection:
		if err := d.decodeNameSection(); err != nil {
			return err
		}
	case strings.HasPrefix(name, RelocSectionPrefix):
		if err := d.decodeRelocSection(name); err != nil {
			return err
		}
	default:
		data, err := c.readBytes(c.readEnd-c.offset, "custom section data")
		if err != nil {
			return err
		}
		if err := d.r.OnCustomSectionData(data); err != nil {
			return err
		}
	}
	return d.r.EndCustomSection()
}

func (d *decoder) decodeNameSection() error {
	c := d.c
	for c.offset < c.readEnd {
		subsection, err := c.readByte("name subsection id")
		if err != nil {
			return err
		}
		subsectionSize, err := c.readU32("name subsection size")
		if err != nil {
			return err
		}
		subsectionEnd := c.offset + int(subsectionSize)
		if subsectionEnd > c.readEnd {
			return c.errAt("invalid name subsection size: extends past section end")
		}
		switch subsection {
		case wasm.NameSubsectionModule:
			name, err := c.readString("module name")
			if err != nil {
				return err
			}
			if err := d.r.OnModuleName(name); err != nil {
				return err
			}
		case wasm.NameSubsectionFunctions:
			count, err := c.readU32("function name count")
			if err != nil {
				return err
			}
			if err := d.r.OnFunctionNamesCount(count); err != nil {
				return err
			}
			for i := uint32(0); i < count; i++ {
				funcIndex, err := c.readU32("function name index")
				if err != nil {
					return err
				}
				if funcIndex >= d.numTotalFuncs() {
					return c.errAt("invalid function name index: %d", funcIndex)
				}
				name, err := c.readString("function name")
				if err != nil {
					return err
				}
				if err := d.r.OnFunctionName(funcIndex, name); err != nil {
					return err
				}
			}
		case wasm.NameSubsectionLocals:
			count, err := c.readU32("local name function count")
			if err != nil {
				return err
			}
			if err := d.r.OnLocalNameFunctionCount(count); err != nil {
				return err
			}
			for i := uint32(0); i < count; i++ {
				funcIndex, err := c.readU32("local name function index")
				if err != nil {
					return err
				}
				if funcIndex >= d.numTotalFuncs() {
					return c.errAt("invalid local name function index: %d", funcIndex)
				}
				numLocals, err := c.readU32("local name count")
				if err != nil {
					return err
				}
				if err := d.r.OnLocalNameLocalCount(funcIndex, numLocals); err != nil {
					return err
				}
				for j := uint32(0); j < numLocals; j++ {
					localIndex, err := c.readU32("local name local index")
					if err != nil {
						return err
					}
					name, err := c.readString("local name")
					if err != nil {
						return err
					}
					if err := d.r.OnLocalName(funcIndex, localIndex, name); err != nil {
						return err
					}
				}
			}
		default:
			// Unknown subsections are skipped so newer producers do not
			// break decoding.
			if _, err := c.readBytes(subsectionEnd-c.offset, "name subsection data"); err != nil {
				return err
			}
		}
		if c.offset != subsectionEnd {
			return c.errAt("unfinished name subsection (%d)", subsection)
		}
	}
	return nil
}

func (d *decoder) decodeRelocSection(name string) error {
	c := d.c
	sectionID, err := c.readU32("reloc target section code")
	if err != nil {
		return err
	}
	if sectionID > uint32(wasm.SectionIDData) {
		return c.errAt("invalid reloc target section code: %d", sectionID)
	}
	count, err := c.readU32("reloc count")
	if err != nil {
		return err
	}
	if err := d.r.OnRelocCount(count, wasm.SectionID(sectionID), name); err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		relocType, err := c.readU32("reloc type")
		if err != nil {
			return err
		}
		offset, err := c.readU32("reloc offset")
		if err != nil {
			return err
		}
		if err := d.r.OnReloc(relocType, offset); err != nil {
			return err
		}
	}
	return nil
}

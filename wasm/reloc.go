package wasm

import "fmt"

// RelocType identifies a relocation entry kind in a "reloc.*" custom section.
type RelocType = uint32

const (
	RelocFuncIndexLEB   RelocType = 0
	RelocTableIndexSLEB RelocType = 1
	RelocTableIndexI32  RelocType = 2
	RelocGlobalIndexLEB RelocType = 3
	RelocDataLEB        RelocType = 4
	RelocDataSLEB       RelocType = 5
	RelocDataI32        RelocType = 6
)

func RelocTypeName(t RelocType) string {
	switch t {
	case RelocFuncIndexLEB:
		return "R_FUNC_INDEX_LEB"
	case RelocTableIndexSLEB:
		return "R_TABLE_INDEX_SLEB"
	case RelocTableIndexI32:
		return "R_TABLE_INDEX_I32"
	case RelocGlobalIndexLEB:
		return "R_GLOBAL_INDEX_LEB"
	case RelocDataLEB:
		return "R_DATA_LEB"
	case RelocDataSLEB:
		return "R_DATA_SLEB"
	case RelocDataI32:
		return "R_DATA_I32"
	}
	return fmt.Sprintf("unknown (%d)", t)
}

// RelocEntry is one relocation: the type of patch and the offset it applies
// to within the target section.
type RelocEntry struct {
	Type   RelocType
	Offset uint32
}

// RelocSection is a decoded "reloc.*" custom section targeting one section of
// the module.
type RelocSection struct {
	// Name is the custom section name, "reloc." followed by the target
	// section name.
	Name string
	// SectionID is the ID of the section the relocations apply to.
	SectionID SectionID
	Entries   []*RelocEntry
}

package wasm

// Module is the decoded in-memory form of a binary module. Section slices are
// nil when the corresponding section is absent.
type Module struct {
	TypeSection     []*FunctionType
	ImportSection   []*Import
	FunctionSection []uint32
	TableSection    []*Table
	MemorySection   []*Memory
	GlobalSection   []*Global
	ExportSection   []*Export
	StartSection    *uint32
	ElementSection  []*ElementSegment
	CodeSection     []*Code
	DataSection     []*DataSegment

	// NameSection holds the decoded "name" custom section, if present and
	// debug-name decoding was requested.
	NameSection *NameSection

	// CustomSections holds every custom section other than "name" and
	// "reloc.*", in order of appearance.
	CustomSections []*CustomSection

	// Relocations holds decoded "reloc.*" custom sections.
	Relocations []*RelocSection
}

// Import is one entry of the import section. Exactly one of the Desc fields
// is meaningful, selected by Kind.
type Import struct {
	Module string
	Name   string
	Kind   ExternalKind

	DescFunc   uint32
	DescTable  *Table
	DescMem    *Memory
	DescGlobal *GlobalType
}

// Table is a table declaration. The MVP only allows funcref element types.
type Table struct {
	ElemType byte
	Limits   Limits
}

// Memory is a linear memory declaration with page-count limits.
type Memory struct {
	Limits Limits
}

// GlobalType pairs a value type with mutability.
type GlobalType struct {
	ValType ValueType
	Mutable bool
}

// Global is one entry of the global section. Init holds the raw initializer
// expression bytes including the terminating end opcode.
type Global struct {
	Type *GlobalType
	Init *InitExpr
}

// InitExpr is a constant initializer expression: a single const or global.get
// instruction followed by end.
type InitExpr struct {
	Opcode Opcode
	// Data is the immediate bytes of the instruction, still LEB or IEEE
	// encoded as they appeared in the binary.
	Data []byte
}

// Export is one entry of the export section.
type Export struct {
	Name  string
	Kind  ExternalKind
	Index uint32
}

// ElementSegment seeds a table range with function indices.
type ElementSegment struct {
	TableIndex uint32
	Offset     *InitExpr
	Init       []uint32
}

// Code is one entry of the code section. LocalTypes is the expanded local
// declaration list, one element per local. Body includes the terminating end
// opcode.
type Code struct {
	LocalTypes []ValueType
	Body       []byte
}

// DataSegment seeds a memory range with raw bytes.
type DataSegment struct {
	MemoryIndex uint32
	Offset      *InitExpr
	Init        []byte
}

// CustomSection is an uninterpreted custom section.
type CustomSection struct {
	Name string
	Data []byte
}

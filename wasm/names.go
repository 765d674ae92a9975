package wasm

// Subsection IDs inside the "name" custom section.
const (
	NameSubsectionModule    byte = 0
	NameSubsectionFunctions byte = 1
	NameSubsectionLocals    byte = 2
)

// NameAssoc associates a name with an index.
type NameAssoc struct {
	Index uint32
	Name  string
}

// IndirectNameAssoc associates a name map with an index, used for local names
// keyed by function index.
type IndirectNameAssoc struct {
	Index   uint32
	NameMap []*NameAssoc
}

// NameSection is the decoded "name" custom section.
type NameSection struct {
	ModuleName    string
	FunctionNames []*NameAssoc
	LocalNames    []*IndirectNameAssoc
}

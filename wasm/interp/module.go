package interp

import "github.com/wasmtools/wabin/wasm"

// Module is the compiled form of one binary module: a single instruction
// stream plus the tables the interpreter needs to enter it.
type Module struct {
	// Istream holds the threaded code of every function, concatenated in
	// code-section order.
	Istream []byte

	// Sigs is the module's type section.
	Sigs []*wasm.FunctionType

	// Imports lists the imported functions in import order. Calls to them
	// compile to OpcodeCallImport with the import's index.
	Imports []*Import

	// Funcs maps local function index to its signature and start offset
	// in Istream.
	Funcs []*Func

	// Exports lists the function exports with their resolved offsets.
	// Non-function exports are not represented in compiled output.
	Exports []*Export

	// StartOffset is the Istream offset of the start function, or nil when
	// the module declares none.
	StartOffset *uint32

	// Globals lists the module's globals, imported first.
	Globals []*Global

	// FuncTable is the table's initial contents as module-wide function
	// indices, sized to the table's declared minimum. Element segments are
	// written in at their evaluated offsets; slots no segment covers hold
	// UnsetFuncTableEntry.
	FuncTable []uint32

	// Memory is the initial linear-memory image with every data segment
	// copied in at its evaluated offset. Nil when the module has no data
	// segments.
	Memory []byte
}

// UnsetFuncTableEntry marks a table slot no element segment initialized.
const UnsetFuncTableEntry = ^uint32(0)

// Import is an imported function.
type Import struct {
	Module   string
	Name     string
	SigIndex uint32
}

// Func is one locally defined, compiled function.
type Func struct {
	SigIndex uint32
	Offset   uint32
}

// Export is a function export resolved to its code offset.
type Export struct {
	Name   string
	Offset uint32
}

// Global carries the type information the compiler validates accesses
// against, plus the evaluated initial value as raw bits. Imported globals
// hold zero; the embedder supplies their real value at instantiation.
type Global struct {
	Type    wasm.ValueType
	Mutable bool
	Value   uint64
}

package binary

import "github.com/wasmtools/wabin/wasm"

// Reader receives one callback per structural event while DecodeModule walks
// a binary module. Returning a non-nil error from any callback aborts the
// decode immediately.
//
// Opcode families that differ only in their operator (unary, binary, compare
// and convert instructions) share a single callback taking the opcode;
// everything with distinct immediates gets its own method. Embed NopReader to
// implement only the events a consumer cares about.
type Reader interface {
	BeginModule(version uint32) error
	EndModule() error

	// OnError is a notification fired just before DecodeModule returns a
	// decode error. It does not replace the returned error.
	OnError(offset int, message string)

	BeginCustomSection(size uint32, name string) error
	OnCustomSectionData(data []byte) error
	EndCustomSection() error

	BeginTypeSection(size uint32) error
	OnTypeCount(count uint32) error
	OnType(index uint32, params, results []wasm.ValueType) error
	EndTypeSection() error

	BeginImportSection(size uint32) error
	OnImportCount(count uint32) error
	OnImport(index uint32, module, name string) error
	OnImportFunc(importIndex, funcIndex, sigIndex uint32) error
	OnImportTable(importIndex, tableIndex uint32, elemType byte, limits *wasm.Limits) error
	OnImportMemory(importIndex, memIndex uint32, limits *wasm.Limits) error
	OnImportGlobal(importIndex, globalIndex uint32, valType wasm.ValueType, mutable bool) error
	EndImportSection() error

	BeginFunctionSection(size uint32) error
	OnFunctionCount(count uint32) error
	OnFunction(index, sigIndex uint32) error
	EndFunctionSection() error

	BeginTableSection(size uint32) error
	OnTableCount(count uint32) error
	OnTable(index uint32, elemType byte, limits *wasm.Limits) error
	EndTableSection() error

	BeginMemorySection(size uint32) error
	OnMemoryCount(count uint32) error
	OnMemory(index uint32, limits *wasm.Limits) error
	EndMemorySection() error

	BeginGlobalSection(size uint32) error
	OnGlobalCount(count uint32) error
	BeginGlobal(index uint32, valType wasm.ValueType, mutable bool) error
	BeginGlobalInitExpr(index uint32) error
	EndGlobalInitExpr(index uint32) error
	EndGlobal(index uint32) error
	EndGlobalSection() error

	OnInitExprI32Const(index uint32, value int32) error
	OnInitExprI64Const(index uint32, value int64) error
	OnInitExprF32Const(index uint32, bits uint32) error
	OnInitExprF64Const(index uint32, bits uint64) error
	OnInitExprGlobalGet(index, globalIndex uint32) error

	BeginExportSection(size uint32) error
	OnExportCount(count uint32) error
	OnExport(index uint32, kind wasm.ExternalKind, itemIndex uint32, name string) error
	EndExportSection() error

	BeginStartSection(size uint32) error
	OnStartFunction(funcIndex uint32) error
	EndStartSection() error

	BeginElementSection(size uint32) error
	OnElementSegmentCount(count uint32) error
	BeginElementSegment(index, tableIndex uint32) error
	BeginElementSegmentInitExpr(index uint32) error
	EndElementSegmentInitExpr(index uint32) error
	OnElementSegmentFunctionIndexCount(index, count uint32) error
	OnElementSegmentFunctionIndex(index, funcIndex uint32) error
	EndElementSegment(index uint32) error
	EndElementSection() error

	BeginCodeSection(size uint32) error
	OnFunctionBodyCount(count uint32) error
	BeginFunctionBody(index uint32) error
	OnLocalDeclCount(count uint32) error
	OnLocalDecl(declIndex, count uint32, valType wasm.ValueType) error
	EndFunctionBody(index uint32) error
	EndCodeSection() error

	BeginDataSection(size uint32) error
	OnDataSegmentCount(count uint32) error
	BeginDataSegment(index, memIndex uint32) error
	BeginDataSegmentInitExpr(index uint32) error
	EndDataSegmentInitExpr(index uint32) error
	OnDataSegmentData(index uint32, data []byte) error
	EndDataSegment(index uint32) error
	EndDataSection() error

	OnModuleName(name string) error
	OnFunctionNamesCount(count uint32) error
	OnFunctionName(funcIndex uint32, name string) error
	OnLocalNameFunctionCount(count uint32) error
	OnLocalNameLocalCount(funcIndex, count uint32) error
	OnLocalName(funcIndex, localIndex uint32, name string) error

	OnRelocCount(count uint32, sectionID wasm.SectionID, name string) error
	OnReloc(relocType wasm.RelocType, offset uint32) error

	// OnOpcode fires for every instruction in a function body before the
	// instruction-specific callback, giving consumers uninterpreted access
	// to the raw opcode stream.
	OnOpcode(op wasm.Opcode) error

	OnUnreachable() error
	OnNop() error
	OnBlock(results []wasm.ValueType) error
	OnLoop(results []wasm.ValueType) error
	OnIf(results []wasm.ValueType) error
	OnElse() error
	OnEnd() error
	OnBr(depth uint32) error
	OnBrIf(depth uint32) error
	OnBrTable(targets []uint32, defaultTarget uint32) error
	OnReturn() error
	OnCall(funcIndex uint32) error
	OnCallIndirect(sigIndex uint32) error

	OnDrop() error
	OnSelect() error

	OnLocalGet(index uint32) error
	OnLocalSet(index uint32) error
	OnLocalTee(index uint32) error
	OnGlobalGet(index uint32) error
	OnGlobalSet(index uint32) error

	OnLoad(op wasm.Opcode, alignLog2, offset uint32) error
	OnStore(op wasm.Opcode, alignLog2, offset uint32) error
	OnMemorySize() error
	OnMemoryGrow() error

	OnI32Const(value int32) error
	OnI64Const(value int64) error
	OnF32Const(bits uint32) error
	OnF64Const(bits uint64) error

	OnUnary(op wasm.Opcode) error
	OnBinary(op wasm.Opcode) error
	OnCompare(op wasm.Opcode) error
	OnConvert(op wasm.Opcode) error
}

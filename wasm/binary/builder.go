package binary

import (
	"encoding/binary"

	"github.com/wasmtools/wabin/wasm"
	"github.com/wasmtools/wabin/wasm/leb128"
)

// ModuleBuilder is a Reader that assembles a wasm.Module from the decode
// stream. Function bodies and initializer expressions are re-encoded from
// their events; since decoding only accepts canonical varints the rebuilt
// bytes match the input.
type ModuleBuilder struct {
	NopReader
	m *wasm.Module

	customName string
	initExpr   *wasm.InitExpr
	global     *wasm.Global
	elem       *wasm.ElementSegment
	data       *wasm.DataSegment

	body       []byte
	localTypes []wasm.ValueType
}

var _ Reader = (*ModuleBuilder)(nil)

func NewModuleBuilder() *ModuleBuilder {
	return &ModuleBuilder{m: &wasm.Module{}}
}

// Module returns the module assembled so far. Only meaningful after a
// successful DecodeModule call.
func (b *ModuleBuilder) Module() *wasm.Module { return b.m }

// DecodeToModule decodes data into a wasm.Module.
func DecodeToModule(data []byte, opts DecodeOptions) (*wasm.Module, error) {
	b := NewModuleBuilder()
	if err := DecodeModule(data, b, opts); err != nil {
		return nil, err
	}
	return b.Module(), nil
}

func (b *ModuleBuilder) OnType(index uint32, params, results []wasm.ValueType) error {
	b.m.TypeSection = append(b.m.TypeSection, &wasm.FunctionType{Params: params, Results: results})
	return nil
}

func (b *ModuleBuilder) OnImport(index uint32, module, name string) error {
	b.m.ImportSection = append(b.m.ImportSection, &wasm.Import{Module: module, Name: name})
	return nil
}

func (b *ModuleBuilder) lastImport() *wasm.Import {
	return b.m.ImportSection[len(b.m.ImportSection)-1]
}

func (b *ModuleBuilder) OnImportFunc(importIndex, funcIndex, sigIndex uint32) error {
	im := b.lastImport()
	im.Kind = wasm.ExternalKindFunc
	im.DescFunc = sigIndex
	return nil
}

func (b *ModuleBuilder) OnImportTable(importIndex, tableIndex uint32, elemType byte, limits *wasm.Limits) error {
	im := b.lastImport()
	im.Kind = wasm.ExternalKindTable
	im.DescTable = &wasm.Table{ElemType: elemType, Limits: *limits}
	return nil
}

func (b *ModuleBuilder) OnImportMemory(importIndex, memIndex uint32, limits *wasm.Limits) error {
	im := b.lastImport()
	im.Kind = wasm.ExternalKindMemory
	im.DescMem = &wasm.Memory{Limits: *limits}
	return nil
}

func (b *ModuleBuilder) OnImportGlobal(importIndex, globalIndex uint32, valType wasm.ValueType, mutable bool) error {
	im := b.lastImport()
	im.Kind = wasm.ExternalKindGlobal
	im.DescGlobal = &wasm.GlobalType{ValType: valType, Mutable: mutable}
	return nil
}

func (b *ModuleBuilder) OnFunction(index, sigIndex uint32) error {
	b.m.FunctionSection = append(b.m.FunctionSection, sigIndex)
	return nil
}

func (b *ModuleBuilder) OnTable(index uint32, elemType byte, limits *wasm.Limits) error {
	b.m.TableSection = append(b.m.TableSection, &wasm.Table{ElemType: elemType, Limits: *limits})
	return nil
}

func (b *ModuleBuilder) OnMemory(index uint32, limits *wasm.Limits) error {
	b.m.MemorySection = append(b.m.MemorySection, &wasm.Memory{Limits: *limits})
	return nil
}

func (b *ModuleBuilder) BeginGlobal(index uint32, valType wasm.ValueType, mutable bool) error {
	b.global = &wasm.Global{Type: &wasm.GlobalType{ValType: valType, Mutable: mutable}}
	return nil
}

func (b *ModuleBuilder) EndGlobal(index uint32) error {
	b.global.Init = b.initExpr
	b.m.GlobalSection = append(b.m.GlobalSection, b.global)
	b.global, b.initExpr = nil, nil
	return nil
}

func (b *ModuleBuilder) OnInitExprI32Const(index uint32, value int32) error {
	b.initExpr = &wasm.InitExpr{Opcode: wasm.OpcodeI32Const, Data: leb128.EncodeInt32(value)}
	return nil
}

func (b *ModuleBuilder) OnInitExprI64Const(index uint32, value int64) error {
	b.initExpr = &wasm.InitExpr{Opcode: wasm.OpcodeI64Const, Data: leb128.EncodeInt64(value)}
	return nil
}

func (b *ModuleBuilder) OnInitExprF32Const(index uint32, bits uint32) error {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, bits)
	b.initExpr = &wasm.InitExpr{Opcode: wasm.OpcodeF32Const, Data: data}
	return nil
}

func (b *ModuleBuilder) OnInitExprF64Const(index uint32, bits uint64) error {
	data := make([]byte, 8)
	binary.LittleEndian.PutUint64(data, bits)
	b.initExpr = &wasm.InitExpr{Opcode: wasm.OpcodeF64Const, Data: data}
	return nil
}

func (b *ModuleBuilder) OnInitExprGlobalGet(index, globalIndex uint32) error {
	b.initExpr = &wasm.InitExpr{Opcode: wasm.OpcodeGlobalGet, Data: leb128.EncodeUint32(globalIndex)}
	return nil
}

func (b *ModuleBuilder) OnExport(index uint32, kind wasm.ExternalKind, itemIndex uint32, name string) error {
	b.m.ExportSection = append(b.m.ExportSection, &wasm.Export{Name: name, Kind: kind, Index: itemIndex})
	return nil
}

func (b *ModuleBuilder) OnStartFunction(funcIndex uint32) error {
	b.m.StartSection = &funcIndex
	return nil
}

func (b *ModuleBuilder) BeginElementSegment(index, tableIndex uint32) error {
	b.elem = &wasm.ElementSegment{TableIndex: tableIndex}
	return nil
}

func (b *ModuleBuilder) EndElementSegmentInitExpr(index uint32) error {
	b.elem.Offset = b.initExpr
	b.initExpr = nil
	return nil
}

func (b *ModuleBuilder) OnElementSegmentFunctionIndex(index, funcIndex uint32) error {
	b.elem.Init = append(b.elem.Init, funcIndex)
	return nil
}

func (b *ModuleBuilder) EndElementSegment(index uint32) error {
	b.m.ElementSection = append(b.m.ElementSection, b.elem)
	b.elem = nil
	return nil
}

func (b *ModuleBuilder) BeginDataSegment(index, memIndex uint32) error {
	b.data = &wasm.DataSegment{MemoryIndex: memIndex}
	return nil
}

func (b *ModuleBuilder) EndDataSegmentInitExpr(index uint32) error {
	b.data.Offset = b.initExpr
	b.initExpr = nil
	return nil
}

func (b *ModuleBuilder) OnDataSegmentData(index uint32, data []byte) error {
	b.data.Init = data
	return nil
}

func (b *ModuleBuilder) EndDataSegment(index uint32) error {
	b.m.DataSection = append(b.m.DataSection, b.data)
	b.data = nil
	return nil
}

func (b *ModuleBuilder) BeginCustomSection(size uint32, name string) error {
	b.customName = name
	return nil
}

func (b *ModuleBuilder) OnCustomSectionData(data []byte) error {
	b.m.CustomSections = append(b.m.CustomSections,
		&wasm.CustomSection{Name: b.customName, Data: data})
	return nil
}

func (b *ModuleBuilder) nameSection() *wasm.NameSection {
	if b.m.NameSection == nil {
		b.m.NameSection = &wasm.NameSection{}
	}
	return b.m.NameSection
}

func (b *ModuleBuilder) OnModuleName(name string) error {
	b.nameSection().ModuleName = name
	return nil
}

func (b *ModuleBuilder) OnFunctionName(funcIndex uint32, name string) error {
	ns := b.nameSection()
	ns.FunctionNames = append(ns.FunctionNames, &wasm.NameAssoc{Index: funcIndex, Name: name})
	return nil
}

func (b *ModuleBuilder) OnLocalNameLocalCount(funcIndex, count uint32) error {
	ns := b.nameSection()
	ns.LocalNames = append(ns.LocalNames, &wasm.IndirectNameAssoc{Index: funcIndex})
	return nil
}

func (b *ModuleBuilder) OnLocalName(funcIndex, localIndex uint32, name string) error {
	ns := b.nameSection()
	last := ns.LocalNames[len(ns.LocalNames)-1]
	last.NameMap = append(last.NameMap, &wasm.NameAssoc{Index: localIndex, Name: name})
	return nil
}

func (b *ModuleBuilder) OnRelocCount(count uint32, sectionID wasm.SectionID, name string) error {
	b.m.Relocations = append(b.m.Relocations,
		&wasm.RelocSection{Name: name, SectionID: sectionID})
	return nil
}

func (b *ModuleBuilder) OnReloc(relocType wasm.RelocType, offset uint32) error {
	last := b.m.Relocations[len(b.m.Relocations)-1]
	last.Entries = append(last.Entries, &wasm.RelocEntry{Type: relocType, Offset: offset})
	return nil
}

func (b *ModuleBuilder) BeginFunctionBody(index uint32) error {
	b.body = []byte{}
	b.localTypes = nil
	return nil
}

func (b *ModuleBuilder) OnLocalDecl(declIndex, count uint32, valType wasm.ValueType) error {
	for i := uint32(0); i < count; i++ {
		b.localTypes = append(b.localTypes, valType)
	}
	return nil
}

func (b *ModuleBuilder) EndFunctionBody(index uint32) error {
	b.emit(wasm.OpcodeEnd)
	b.m.CodeSection = append(b.m.CodeSection,
		&wasm.Code{LocalTypes: b.localTypes, Body: b.body})
	b.body, b.localTypes = nil, nil
	return nil
}

func (b *ModuleBuilder) emit(op wasm.Opcode) { b.body = append(b.body, op) }

func (b *ModuleBuilder) emitU32(v uint32) { b.body = append(b.body, leb128.EncodeUint32(v)...) }

func (b *ModuleBuilder) OnUnreachable() error { b.emit(wasm.OpcodeUnreachable); return nil }
func (b *ModuleBuilder) OnNop() error         { b.emit(wasm.OpcodeNop); return nil }

func (b *ModuleBuilder) emitBlock(op wasm.Opcode, results []wasm.ValueType) {
	b.emit(op)
	if len(results) == 0 {
		b.body = append(b.body, wasm.BlockTypeVoid)
	} else {
		b.body = append(b.body, results[0])
	}
}

func (b *ModuleBuilder) OnBlock(results []wasm.ValueType) error {
	b.emitBlock(wasm.OpcodeBlock, results)
	return nil
}

func (b *ModuleBuilder) OnLoop(results []wasm.ValueType) error {
	b.emitBlock(wasm.OpcodeLoop, results)
	return nil
}

func (b *ModuleBuilder) OnIf(results []wasm.ValueType) error {
	b.emitBlock(wasm.OpcodeIf, results)
	return nil
}

func (b *ModuleBuilder) OnElse() error { b.emit(wasm.OpcodeElse); return nil }
func (b *ModuleBuilder) OnEnd() error  { b.emit(wasm.OpcodeEnd); return nil }

func (b *ModuleBuilder) OnBr(depth uint32) error {
	b.emit(wasm.OpcodeBr)
	b.emitU32(depth)
	return nil
}

func (b *ModuleBuilder) OnBrIf(depth uint32) error {
	b.emit(wasm.OpcodeBrIf)
	b.emitU32(depth)
	return nil
}

func (b *ModuleBuilder) OnBrTable(targets []uint32, defaultTarget uint32) error {
	b.emit(wasm.OpcodeBrTable)
	b.emitU32(uint32(len(targets)))
	for _, t := range targets {
		b.emitU32(t)
	}
	b.emitU32(defaultTarget)
	return nil
}

func (b *ModuleBuilder) OnReturn() error { b.emit(wasm.OpcodeReturn); return nil }

func (b *ModuleBuilder) OnCall(funcIndex uint32) error {
	b.emit(wasm.OpcodeCall)
	b.emitU32(funcIndex)
	return nil
}

func (b *ModuleBuilder) OnCallIndirect(sigIndex uint32) error {
	b.emit(wasm.OpcodeCallIndirect)
	b.emitU32(sigIndex)
	b.body = append(b.body, 0)
	return nil
}

func (b *ModuleBuilder) OnDrop() error   { b.emit(wasm.OpcodeDrop); return nil }
func (b *ModuleBuilder) OnSelect() error { b.emit(wasm.OpcodeSelect); return nil }

func (b *ModuleBuilder) OnLocalGet(index uint32) error {
	b.emit(wasm.OpcodeLocalGet)
	b.emitU32(index)
	return nil
}

func (b *ModuleBuilder) OnLocalSet(index uint32) error {
	b.emit(wasm.OpcodeLocalSet)
	b.emitU32(index)
	return nil
}

func (b *ModuleBuilder) OnLocalTee(index uint32) error {
	b.emit(wasm.OpcodeLocalTee)
	b.emitU32(index)
	return nil
}

func (b *ModuleBuilder) OnGlobalGet(index uint32) error {
	b.emit(wasm.OpcodeGlobalGet)
	b.emitU32(index)
	return nil
}

func (b *ModuleBuilder) OnGlobalSet(index uint32) error {
	b.emit(wasm.OpcodeGlobalSet)
	b.emitU32(index)
	return nil
}

func (b *ModuleBuilder) OnLoad(op wasm.Opcode, alignLog2, offset uint32) error {
	b.emit(op)
	b.emitU32(alignLog2)
	b.emitU32(offset)
	return nil
}

func (b *ModuleBuilder) OnStore(op wasm.Opcode, alignLog2, offset uint32) error {
	b.emit(op)
	b.emitU32(alignLog2)
	b.emitU32(offset)
	return nil
}

func (b *ModuleBuilder) OnMemorySize() error {
	b.emit(wasm.OpcodeMemorySize)
	b.body = append(b.body, 0)
	return nil
}

func (b *ModuleBuilder) OnMemoryGrow() error {
	b.emit(wasm.OpcodeMemoryGrow)
	b.body = append(b.body, 0)
	return nil
}

func (b *ModuleBuilder) OnI32Const(value int32) error {
	b.emit(wasm.OpcodeI32Const)
	b.body = append(b.body, leb128.EncodeInt32(value)...)
	return nil
}

func (b *ModuleBuilder) OnI64Const(value int64) error {
	b.emit(wasm.OpcodeI64Const)
	b.body = append(b.body, leb128.EncodeInt64(value)...)
	return nil
}

func (b *ModuleBuilder) OnF32Const(bits uint32) error {
	b.emit(wasm.OpcodeF32Const)
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, bits)
	b.body = append(b.body, buf...)
	return nil
}

func (b *ModuleBuilder) OnF64Const(bits uint64) error {
	b.emit(wasm.OpcodeF64Const)
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, bits)
	b.body = append(b.body, buf...)
	return nil
}

func (b *ModuleBuilder) OnUnary(op wasm.Opcode) error   { b.emit(op); return nil }
func (b *ModuleBuilder) OnBinary(op wasm.Opcode) error  { b.emit(op); return nil }
func (b *ModuleBuilder) OnCompare(op wasm.Opcode) error { b.emit(op); return nil }
func (b *ModuleBuilder) OnConvert(op wasm.Opcode) error { b.emit(op); return nil }

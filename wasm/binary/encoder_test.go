package binary

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmtools/wabin/wasm"
)

func uint32Ptr(v uint32) *uint32 { return &v }

func TestEncodeModule_minimal(t *testing.T) {
	require.Equal(t, header, EncodeModule(&wasm.Module{}))
}

func TestEncodeModule_canonicalSizes(t *testing.T) {
	m := &wasm.Module{
		TypeSection: []*wasm.FunctionType{
			{Params: []wasm.ValueType{wasm.ValueTypeI32}, Results: []wasm.ValueType{wasm.ValueTypeI32}},
		},
		FunctionSection: []uint32{0},
		CodeSection:     []*wasm.Code{{Body: []byte{0x20, 0x00, 0x0b}}},
	}
	// The reserved 5-byte section and body size slots must collapse to
	// their canonical single-byte forms.
	require.Equal(t, concat(header, typeSection, funcSection, codeSection), EncodeModule(m))
}

func TestEncodeModule_roundTrip(t *testing.T) {
	max := uint32(16)
	m := &wasm.Module{
		TypeSection: []*wasm.FunctionType{
			{Params: []wasm.ValueType{wasm.ValueTypeI32}, Results: []wasm.ValueType{wasm.ValueTypeI32}},
			{Params: []wasm.ValueType{wasm.ValueTypeI64}, Results: []wasm.ValueType{}},
		},
		ImportSection: []*wasm.Import{
			{Module: "env", Name: "f", Kind: wasm.ExternalKindFunc, DescFunc: 0},
			{Module: "env", Name: "mem", Kind: wasm.ExternalKindMemory,
				DescMem: &wasm.Memory{Limits: wasm.Limits{Min: 1, Max: &max}}},
		},
		FunctionSection: []uint32{0, 1},
		TableSection: []*wasm.Table{
			{ElemType: wasm.ElemTypeFuncref, Limits: wasm.Limits{Min: 2}},
		},
		GlobalSection: []*wasm.Global{
			{Type: &wasm.GlobalType{ValType: wasm.ValueTypeI32, Mutable: true},
				Init: &wasm.InitExpr{Opcode: wasm.OpcodeI32Const, Data: []byte{0x2a}}},
		},
		ExportSection: []*wasm.Export{
			{Name: "id", Kind: wasm.ExternalKindFunc, Index: 1},
		},
		StartSection: uint32Ptr(2),
		ElementSection: []*wasm.ElementSegment{
			{TableIndex: 0,
				Offset: &wasm.InitExpr{Opcode: wasm.OpcodeI32Const, Data: []byte{0x00}},
				Init:   []uint32{1, 2}},
		},
		CodeSection: []*wasm.Code{
			{Body: []byte{0x20, 0x00, 0x0b}},
			{LocalTypes: []wasm.ValueType{wasm.ValueTypeI64, wasm.ValueTypeI64}, Body: []byte{0x0b}},
		},
		DataSection: []*wasm.DataSegment{
			{MemoryIndex: 0,
				Offset: &wasm.InitExpr{Opcode: wasm.OpcodeI32Const, Data: []byte{0x08}},
				Init:   []byte("hi")},
		},
	}
	encoded := EncodeModule(m)
	decoded, err := DecodeToModule(encoded, DecodeOptions{})
	require.NoError(t, err)
	require.Equal(t, m, decoded)
	require.Equal(t, encoded, EncodeModule(decoded))
}

func TestEncodeModule_customAndNames(t *testing.T) {
	m, err := DecodeToModule(importedFuncModule(), DecodeOptions{})
	require.NoError(t, err)
	m.NameSection = &wasm.NameSection{
		ModuleName:    "m",
		FunctionNames: []*wasm.NameAssoc{{Index: 0, Name: "foo"}},
		LocalNames: []*wasm.IndirectNameAssoc{
			{Index: 0, NameMap: []*wasm.NameAssoc{{Index: 0, Name: "x"}}},
		},
	}
	m.CustomSections = []*wasm.CustomSection{{Name: "producer", Data: []byte{1, 2, 3}}}
	m.Relocations = []*wasm.RelocSection{
		{Name: "reloc.CODE", SectionID: wasm.SectionIDCode,
			Entries: []*wasm.RelocEntry{{Type: wasm.RelocFuncIndexLEB, Offset: 5}}},
	}

	decoded, err := DecodeToModule(EncodeModule(m), DecodeOptions{DebugNames: true})
	require.NoError(t, err)
	require.Equal(t, m.NameSection, decoded.NameSection)
	require.Equal(t, m.Relocations, decoded.Relocations)
	require.Len(t, decoded.CustomSections, 1)
	require.Equal(t, "producer", decoded.CustomSections[0].Name)
	require.Equal(t, []byte{1, 2, 3}, decoded.CustomSections[0].Data)
}

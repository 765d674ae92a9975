package binary

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmtools/wabin/wasm"
	"github.com/wasmtools/wabin/wasm/leb128"
)

// header is the minimal valid module: magic plus version, zero sections.
var header = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

// section frames a payload whose varint-encoded size fits one byte.
func section(id wasm.SectionID, payload ...byte) []byte {
	return append([]byte{id, byte(len(payload))}, payload...)
}

func concat(chunks ...[]byte) (ret []byte) {
	for _, c := range chunks {
		ret = append(ret, c...)
	}
	return
}

var (
	// (i32) -> i32
	typeSection = section(wasm.SectionIDType, 0x01, 0x60, 0x01, 0x7f, 0x01, 0x7f)
	funcSection = section(wasm.SectionIDFunction, 0x01, 0x00)
	// local.get 0; end
	codeSection = section(wasm.SectionIDCode, 0x01, 0x04, 0x00, 0x20, 0x00, 0x0b)
)

func TestDecodeModule_minimal(t *testing.T) {
	m, err := DecodeToModule(header, DecodeOptions{})
	require.NoError(t, err)
	require.Nil(t, m.TypeSection)
	require.Nil(t, m.FunctionSection)
	require.Nil(t, m.ImportSection)
	require.Nil(t, m.ExportSection)
	require.Nil(t, m.CodeSection)
}

func TestDecodeModule_headerErrors(t *testing.T) {
	for _, c := range []struct {
		name        string
		bytes       []byte
		expContains string
	}{
		{name: "empty", bytes: []byte{}, expContains: "unable to read magic"},
		{name: "bad magic", bytes: []byte{0x00, 0x61, 0x73, 0x00, 0x01, 0x00, 0x00, 0x00},
			expContains: "invalid magic number"},
		{name: "bad version", bytes: []byte{0x00, 0x61, 0x73, 0x6d, 0x02, 0x00, 0x00, 0x00},
			expContains: "invalid version header"},
	} {
		t.Run(c.name, func(t *testing.T) {
			_, err := DecodeToModule(c.bytes, DecodeOptions{})
			require.ErrorContains(t, err, c.expContains)
		})
	}
}

func TestDecodeModule_singleFunction(t *testing.T) {
	m, err := DecodeToModule(concat(header, typeSection, funcSection, codeSection), DecodeOptions{})
	require.NoError(t, err)
	require.Equal(t, []*wasm.FunctionType{
		{Params: []wasm.ValueType{wasm.ValueTypeI32}, Results: []wasm.ValueType{wasm.ValueTypeI32}},
	}, m.TypeSection)
	require.Equal(t, []uint32{0}, m.FunctionSection)
	require.Equal(t, []*wasm.Code{{Body: []byte{0x20, 0x00, 0x0b}}}, m.CodeSection)
}

func TestDecodeModule_sectionOrdering(t *testing.T) {
	t.Run("function before import fails", func(t *testing.T) {
		importSection := section(wasm.SectionIDImport, 0x00)
		_, err := DecodeToModule(concat(header, typeSection, funcSection, importSection, codeSection),
			DecodeOptions{})
		require.ErrorContains(t, err, "section import out of order")
	})
	t.Run("repeated section fails", func(t *testing.T) {
		_, err := DecodeToModule(concat(header, typeSection, typeSection), DecodeOptions{})
		require.ErrorContains(t, err, "section type out of order")
	})
	t.Run("custom sections are exempt", func(t *testing.T) {
		custom := section(wasm.SectionIDCustom, 0x01, 'x')
		importSection := section(wasm.SectionIDImport, 0x00)
		m, err := DecodeToModule(concat(header, typeSection, custom, importSection, funcSection, codeSection),
			DecodeOptions{})
		require.NoError(t, err)
		require.Equal(t, []*wasm.CustomSection{{Name: "x", Data: []byte{}}}, m.CustomSections)
	})
}

func TestDecodeModule_sectionBounds(t *testing.T) {
	t.Run("size past end of input", func(t *testing.T) {
		_, err := DecodeToModule(concat(header, []byte{0x01, 0x7f}), DecodeOptions{})
		require.ErrorContains(t, err, "invalid section size")
	})
	t.Run("trailing bytes in section", func(t *testing.T) {
		// Type section declaring zero types but carrying an extra byte.
		bad := section(wasm.SectionIDType, 0x00, 0xff)
		_, err := DecodeToModule(concat(header, bad), DecodeOptions{})
		require.ErrorContains(t, err, "unfinished section")
	})
	t.Run("field crossing section end", func(t *testing.T) {
		// Type count says one entry but the payload ends first.
		bad := section(wasm.SectionIDType, 0x01)
		_, err := DecodeToModule(concat(header, bad), DecodeOptions{})
		require.ErrorContains(t, err, "unexpected end")
	})
}

func TestDecodeModule_invalidSectionCode(t *testing.T) {
	t.Run("beyond data", func(t *testing.T) {
		bad := section(12, 0x00)
		_, err := DecodeToModule(concat(header, bad), DecodeOptions{})
		require.ErrorContains(t, err, "invalid section code: 12")
	})
	t.Run("multi-byte code must not truncate", func(t *testing.T) {
		// 257 encodes as two LEB bytes; its low byte alone would pass for
		// a type section.
		bad := concat([]byte{0x81, 0x02}, typeSection[1:])
		_, err := DecodeToModule(concat(header, bad), DecodeOptions{})
		require.ErrorContains(t, err, "invalid section code: 257")
	})
}

func TestDecodeModule_nonCanonicalVarint(t *testing.T) {
	// Section size zero encoded in five bytes instead of one.
	bad := concat(header, []byte{0x01, 0x80, 0x80, 0x80, 0x80, 0x00})
	_, err := DecodeToModule(bad, DecodeOptions{})
	require.ErrorIs(t, err, leb128.ErrNonCanonical)
}

func TestDecodeModule_functionBody(t *testing.T) {
	t.Run("missing terminal end", func(t *testing.T) {
		// Body is one nop with no end opcode at the declared size.
		code := section(wasm.SectionIDCode, 0x01, 0x02, 0x00, 0x01)
		_, err := DecodeToModule(concat(header, typeSection, funcSection, code), DecodeOptions{})
		require.ErrorContains(t, err, "function body must end with END opcode")
	})
	t.Run("instruction crossing body end", func(t *testing.T) {
		// i32.const missing its immediate.
		code := section(wasm.SectionIDCode, 0x01, 0x02, 0x00, 0x41)
		_, err := DecodeToModule(concat(header, typeSection, funcSection, code), DecodeOptions{})
		require.ErrorContains(t, err, "unexpected end")
	})
	t.Run("body count mismatch", func(t *testing.T) {
		code := section(wasm.SectionIDCode, 0x00)
		_, err := DecodeToModule(concat(header, typeSection, funcSection, code), DecodeOptions{})
		require.ErrorContains(t, err, "does not match function signature count")
	})
}

func TestDecodeModule_indexChecks(t *testing.T) {
	t.Run("function signature index", func(t *testing.T) {
		badFunc := section(wasm.SectionIDFunction, 0x01, 0x07)
		_, err := DecodeToModule(concat(header, typeSection, badFunc, codeSection), DecodeOptions{})
		require.ErrorContains(t, err, "invalid function signature index")
	})
	t.Run("call target", func(t *testing.T) {
		// call 5 with only one function declared.
		code := section(wasm.SectionIDCode, 0x01, 0x04, 0x00, 0x10, 0x05, 0x0b)
		_, err := DecodeToModule(concat(header, typeSection, funcSection, code), DecodeOptions{})
		require.ErrorContains(t, err, "invalid call function index")
	})
	t.Run("export index", func(t *testing.T) {
		export := section(wasm.SectionIDExport, 0x01, 0x01, 'f', 0x00, 0x02)
		_, err := DecodeToModule(concat(header, typeSection, funcSection, export, codeSection),
			DecodeOptions{})
		require.ErrorContains(t, err, "invalid export func index")
	})
}

func TestDecodeModule_reservedImmediates(t *testing.T) {
	// memory.size with a non-zero reserved byte.
	memSection := section(wasm.SectionIDMemory, 0x01, 0x00, 0x01)
	voidType := section(wasm.SectionIDType, 0x01, 0x60, 0x00, 0x00)
	code := section(wasm.SectionIDCode, 0x01, 0x04, 0x00, 0x3f, 0x01, 0x0b)
	_, err := DecodeToModule(concat(header, voidType, funcSection, memSection, code), DecodeOptions{})
	require.ErrorContains(t, err, "memory.size reserved value must be 0")
}

func TestDecodeModule_limits(t *testing.T) {
	t.Run("max below initial", func(t *testing.T) {
		mem := section(wasm.SectionIDMemory, 0x01, 0x01, 0x02, 0x01)
		_, err := DecodeToModule(concat(header, mem), DecodeOptions{})
		require.ErrorContains(t, err, "less than initial size")
	})
	t.Run("pages above cap", func(t *testing.T) {
		// Initial size 65537 pages.
		mem := section(wasm.SectionIDMemory, 0x01, 0x00, 0x81, 0x80, 0x04)
		_, err := DecodeToModule(concat(header, mem), DecodeOptions{})
		require.ErrorContains(t, err, "greater than maximum")
	})
	t.Run("second memory", func(t *testing.T) {
		mem := section(wasm.SectionIDMemory, 0x02, 0x00, 0x01, 0x00, 0x01)
		_, err := DecodeToModule(concat(header, mem), DecodeOptions{})
		require.ErrorContains(t, err, "memory count must not be greater than 1")
	})
}

func TestDecodeModule_globals(t *testing.T) {
	global := section(wasm.SectionIDGlobal,
		0x01,       // one global
		0x7f, 0x01, // mutable i32
		0x41, 0x2a, 0x0b) // i32.const 42; end
	m, err := DecodeToModule(concat(header, global), DecodeOptions{})
	require.NoError(t, err)
	require.Len(t, m.GlobalSection, 1)
	g := m.GlobalSection[0]
	require.Equal(t, wasm.ValueTypeI32, g.Type.ValType)
	require.True(t, g.Type.Mutable)
	require.Equal(t, &wasm.InitExpr{Opcode: wasm.OpcodeI32Const, Data: []byte{0x2a}}, g.Init)
}

func TestDecodeModule_initExprErrors(t *testing.T) {
	t.Run("missing end", func(t *testing.T) {
		global := section(wasm.SectionIDGlobal, 0x01, 0x7f, 0x00, 0x41, 0x2a, 0x01)
		_, err := DecodeToModule(concat(header, global), DecodeOptions{})
		require.ErrorContains(t, err, "init expression must end with END opcode")
	})
	t.Run("non-constant opcode", func(t *testing.T) {
		global := section(wasm.SectionIDGlobal, 0x01, 0x7f, 0x00, 0x1a, 0x0b)
		_, err := DecodeToModule(concat(header, global), DecodeOptions{})
		require.ErrorContains(t, err, "unexpected init expression opcode")
	})
}

// importedFuncModule declares one imported function "env.f" of type
// (i32) -> i32 so name sections have an index to attach to.
func importedFuncModule(extra ...byte) []byte {
	importSection := section(wasm.SectionIDImport,
		0x01, 0x03, 'e', 'n', 'v', 0x01, 'f', 0x00, 0x00)
	return concat(header, typeSection, importSection, extra)
}

func TestDecodeModule_nameSection(t *testing.T) {
	nameSection := section(wasm.SectionIDCustom,
		0x04, 'n', 'a', 'm', 'e',
		0x01,                            // function names subsection
		0x06,                            // subsection size
		0x01, 0x00, 0x03, 'f', 'o', 'o') // one entry: index 0 named "foo"

	t.Run("decoded when enabled", func(t *testing.T) {
		m, err := DecodeToModule(importedFuncModule(nameSection...), DecodeOptions{DebugNames: true})
		require.NoError(t, err)
		require.NotNil(t, m.NameSection)
		require.Equal(t, []*wasm.NameAssoc{{Index: 0, Name: "foo"}}, m.NameSection.FunctionNames)
		require.Empty(t, m.CustomSections)
	})
	t.Run("opaque when disabled", func(t *testing.T) {
		m, err := DecodeToModule(importedFuncModule(nameSection...), DecodeOptions{})
		require.NoError(t, err)
		require.Nil(t, m.NameSection)
		require.Len(t, m.CustomSections, 1)
		require.Equal(t, "name", m.CustomSections[0].Name)
	})
	t.Run("opaque before import section", func(t *testing.T) {
		m, err := DecodeToModule(concat(header, nameSection), DecodeOptions{DebugNames: true})
		require.NoError(t, err)
		require.Nil(t, m.NameSection)
		require.Len(t, m.CustomSections, 1)
	})
}

func TestDecodeModule_relocSection(t *testing.T) {
	reloc := section(wasm.SectionIDCustom,
		0x0a, 'r', 'e', 'l', 'o', 'c', '.', 'C', 'O', 'D', 'E',
		0x0a,       // target: code section
		0x01,       // one entry
		0x00, 0x05) // R_FUNC_INDEX_LEB at offset 5
	m, err := DecodeToModule(concat(header, typeSection, funcSection, codeSection, reloc),
		DecodeOptions{})
	require.NoError(t, err)
	require.Len(t, m.Relocations, 1)
	r := m.Relocations[0]
	require.Equal(t, "reloc.CODE", r.Name)
	require.Equal(t, wasm.SectionIDCode, r.SectionID)
	require.Equal(t, []*wasm.RelocEntry{{Type: wasm.RelocFuncIndexLEB, Offset: 5}}, r.Entries)
}

func TestDecodeModule_offsetInError(t *testing.T) {
	bad := section(wasm.SectionIDType, 0x01, 0x61) // bad type form at offset 11
	_, err := DecodeToModule(concat(header, bad), DecodeOptions{})
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	require.Equal(t, 12, de.Offset) // position after the offending byte

	require.ErrorContains(t, err, "invalid type form")
}

// errorReader fails on a chosen event to prove callback errors unwind the
// decode immediately.
type errorReader struct {
	NopReader
	err error
}

func (r *errorReader) OnFunction(index, sigIndex uint32) error { return r.err }

func TestDecodeModule_callbackErrorAborts(t *testing.T) {
	boom := &DecodeError{}
	r := &errorReader{err: boom}
	err := DecodeModule(concat(header, typeSection, funcSection, codeSection), r, DecodeOptions{})
	require.ErrorIs(t, err, boom)
}

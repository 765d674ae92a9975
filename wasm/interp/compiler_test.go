package interp

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmtools/wabin/wasm"
	wasmbinary "github.com/wasmtools/wabin/wasm/binary"
)

var moduleHeader = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

func section(id wasm.SectionID, payload ...byte) []byte {
	return append([]byte{id, byte(len(payload))}, payload...)
}

func concat(parts ...[]byte) (out []byte) {
	for _, p := range parts {
		out = append(out, p...)
	}
	return
}

// body wraps insns with a zero local declaration count, the terminal end
// opcode and the body size.
func body(insns ...byte) []byte {
	b := append([]byte{0x00}, insns...)
	b = append(b, wasm.OpcodeEnd)
	return append([]byte{byte(len(b))}, b...)
}

func codeSection(bodies ...[]byte) []byte {
	payload := []byte{byte(len(bodies))}
	for _, b := range bodies {
		payload = append(payload, b...)
	}
	return section(wasm.SectionIDCode, payload...)
}

// funcSection declares count functions, all of signature index zero.
func funcSection(count int) []byte {
	return section(wasm.SectionIDFunction, append([]byte{byte(count)}, make([]byte, count)...)...)
}

var (
	sigVoid   = section(wasm.SectionIDType, 0x01, 0x60, 0x00, 0x00)       // () -> nil
	sigRetI32 = section(wasm.SectionIDType, 0x01, 0x60, 0x00, 0x01, 0x7f) // () -> i32
	sigI32I32 = section(wasm.SectionIDType, 0x01, 0x60, 0x01, 0x7f, 0x01, 0x7f)
)

func singleFunc(sig []byte, insns ...byte) []byte {
	return concat(moduleHeader, sig, funcSection(1), codeSection(body(insns...)))
}

func le32(t *testing.T, istream []byte, offset int) uint32 {
	t.Helper()
	require.GreaterOrEqual(t, len(istream), offset+4)
	return binary.LittleEndian.Uint32(istream[offset:])
}

func TestCompile_minimal(t *testing.T) {
	m, err := Compile(singleFunc(sigI32I32, wasm.OpcodeLocalGet, 0x00), wasmbinary.DecodeOptions{})
	require.NoError(t, err)

	// local.get takes the frame slot index as a fixed operand, and the
	// trailing end compiles to the frame-tearing return.
	require.Equal(t, []byte{
		wasm.OpcodeLocalGet, 0x00, 0x00, 0x00, 0x00,
		wasm.OpcodeReturn,
	}, m.Istream)
	require.Len(t, m.Funcs, 1)
	require.Equal(t, uint32(0), m.Funcs[0].Offset)
	require.Equal(t, uint32(0), m.Funcs[0].SigIndex)
}

func TestCompile_localsAlloca(t *testing.T) {
	code := codeSection(append([]byte{0x04, 0x01, 0x02, 0x7e}, wasm.OpcodeEnd)) // 2 i64 locals
	m, err := Compile(concat(moduleHeader, sigVoid, funcSection(1), code), wasmbinary.DecodeOptions{})
	require.NoError(t, err)

	require.Equal(t, []byte{
		OpcodeAlloca, 0x02, 0x00, 0x00, 0x00,
		wasm.OpcodeReturn,
	}, m.Istream)
}

func TestCompile_blockResultType(t *testing.T) {
	t.Run("mismatch", func(t *testing.T) {
		_, err := Compile(singleFunc(sigVoid,
			wasm.OpcodeBlock, 0x7f, // block (result i32)
			wasm.OpcodeI64Const, 0x00,
			wasm.OpcodeEnd,
			wasm.OpcodeDrop,
		), wasmbinary.DecodeOptions{})
		require.ErrorContains(t, err, "function 0: type mismatch: expected i32, got i64")
	})

	t.Run("match", func(t *testing.T) {
		m, err := Compile(singleFunc(sigVoid,
			wasm.OpcodeBlock, 0x7f,
			wasm.OpcodeI32Const, 0x00,
			wasm.OpcodeEnd,
			wasm.OpcodeDrop,
		), wasmbinary.DecodeOptions{})
		require.NoError(t, err)
		require.Equal(t, []byte{
			wasm.OpcodeI32Const, 0x00, 0x00, 0x00, 0x00,
			wasm.OpcodeDrop,
			wasm.OpcodeReturn,
		}, m.Istream)
	})
}

func TestCompile_brFixup(t *testing.T) {
	m, err := Compile(singleFunc(sigVoid,
		wasm.OpcodeBlock, 0x40,
		wasm.OpcodeBr, 0x00,
		wasm.OpcodeEnd,
	), wasmbinary.DecodeOptions{})
	require.NoError(t, err)

	// The branch operand is patched with the block's end offset.
	require.Equal(t, []byte{
		wasm.OpcodeBr, 0x05, 0x00, 0x00, 0x00,
		wasm.OpcodeReturn,
	}, m.Istream)
}

func TestCompile_ifElseFixups(t *testing.T) {
	m, err := Compile(singleFunc(sigRetI32,
		wasm.OpcodeI32Const, 0x01,
		wasm.OpcodeIf, 0x7f,
		wasm.OpcodeI32Const, 0x02,
		wasm.OpcodeElse,
		wasm.OpcodeI32Const, 0x03,
		wasm.OpcodeEnd,
	), wasmbinary.DecodeOptions{})
	require.NoError(t, err)

	is := m.Istream
	require.Len(t, is, 26)
	// br_unless over the then arm lands on the else arm.
	require.Equal(t, OpcodeBrUnless, is[5])
	require.Equal(t, uint32(20), le32(t, is, 6))
	// The then arm's br jumps past the else arm to the end.
	require.Equal(t, wasm.OpcodeBr, is[15])
	require.Equal(t, uint32(25), le32(t, is, 16))
	require.Equal(t, wasm.OpcodeReturn, is[25])
}

func TestCompile_brIf(t *testing.T) {
	m, err := Compile(singleFunc(sigVoid,
		wasm.OpcodeBlock, 0x40,
		wasm.OpcodeI32Const, 0x01,
		wasm.OpcodeBrIf, 0x00,
		wasm.OpcodeEnd,
	), wasmbinary.DecodeOptions{})
	require.NoError(t, err)

	is := m.Istream
	require.Len(t, is, 16)
	require.Equal(t, wasm.OpcodeI32Const, is[0])
	// br_unless skips the taken-path branch when the condition is false.
	require.Equal(t, OpcodeBrUnless, is[5])
	require.Equal(t, uint32(15), le32(t, is, 6))
	require.Equal(t, wasm.OpcodeBr, is[10])
	require.Equal(t, uint32(15), le32(t, is, 11))
	require.Equal(t, wasm.OpcodeReturn, is[15])
}

func TestCompile_brTable(t *testing.T) {
	m, err := Compile(singleFunc(sigVoid,
		wasm.OpcodeBlock, 0x40,
		wasm.OpcodeI32Const, 0x00,
		wasm.OpcodeBrTable, 0x01, 0x00, 0x00, // one target plus default, both depth 0
		wasm.OpcodeEnd,
	), wasmbinary.DecodeOptions{})
	require.NoError(t, err)

	is := m.Istream
	require.Len(t, is, 34)
	require.Equal(t, wasm.OpcodeBrTable, is[5])
	require.Equal(t, uint32(1), le32(t, is, 6))
	// The entry table rides inline behind a data pseudo-instruction.
	require.Equal(t, OpcodeData, is[10])
	require.Equal(t, uint32(2*brTableEntrySize), le32(t, is, 11))
	// Both entries branch to the block end with nothing to drop or keep.
	for _, entry := range []int{15, 24} {
		require.Equal(t, uint32(33), le32(t, is, entry))
		require.Equal(t, uint32(0), le32(t, is, entry+4))
		require.Equal(t, byte(0), is[entry+8])
	}
	require.Equal(t, wasm.OpcodeReturn, is[33])
}

func TestCompile_numeric(t *testing.T) {
	m, err := Compile(singleFunc(sigRetI32,
		wasm.OpcodeI32Const, 0x01,
		wasm.OpcodeI32Const, 0x02,
		wasm.OpcodeI32Add,
	), wasmbinary.DecodeOptions{})
	require.NoError(t, err)

	require.Equal(t, []byte{
		wasm.OpcodeI32Const, 0x01, 0x00, 0x00, 0x00,
		wasm.OpcodeI32Const, 0x02, 0x00, 0x00, 0x00,
		wasm.OpcodeI32Add,
		wasm.OpcodeReturn,
	}, m.Istream)
}

func TestCompile_comparisons(t *testing.T) {
	t.Run("i64.ge_u", func(t *testing.T) {
		m, err := Compile(singleFunc(sigRetI32,
			wasm.OpcodeI64Const, 0x00,
			wasm.OpcodeI64Const, 0x00,
			wasm.OpcodeI64GeU,
		), wasmbinary.DecodeOptions{})
		require.NoError(t, err)
		require.Equal(t, []byte{
			wasm.OpcodeI64Const, 0, 0, 0, 0, 0, 0, 0, 0,
			wasm.OpcodeI64Const, 0, 0, 0, 0, 0, 0, 0, 0,
			wasm.OpcodeI64GeU,
			wasm.OpcodeReturn,
		}, m.Istream)
	})

	t.Run("f64.ge", func(t *testing.T) {
		insns := append([]byte{wasm.OpcodeF64Const}, make([]byte, 8)...)
		insns = append(insns, wasm.OpcodeF64Const)
		insns = append(insns, make([]byte, 8)...)
		insns = append(insns, wasm.OpcodeF64Ge)
		m, err := Compile(singleFunc(sigRetI32, insns...), wasmbinary.DecodeOptions{})
		require.NoError(t, err)

		expected := append([]byte{wasm.OpcodeF64Const}, make([]byte, 8)...)
		expected = append(expected, wasm.OpcodeF64Const)
		expected = append(expected, make([]byte, 8)...)
		expected = append(expected, wasm.OpcodeF64Ge, wasm.OpcodeReturn)
		require.Equal(t, expected, m.Istream)
	})
}

func TestCompile_returnDropKeep(t *testing.T) {
	m, err := Compile(singleFunc(sigRetI32,
		wasm.OpcodeI32Const, 0x01,
		wasm.OpcodeI32Const, 0x02,
		wasm.OpcodeReturn,
	), wasmbinary.DecodeOptions{})
	require.NoError(t, err)

	// The explicit return keeps the result and drops the temp below it.
	require.Equal(t, []byte{
		wasm.OpcodeI32Const, 0x01, 0x00, 0x00, 0x00,
		wasm.OpcodeI32Const, 0x02, 0x00, 0x00, 0x00,
		OpcodeDropKeep, 0x01, 0x00, 0x00, 0x00, 0x01,
		wasm.OpcodeReturn,
		wasm.OpcodeReturn,
	}, m.Istream)
}

func TestCompile_forwardCallFixup(t *testing.T) {
	m, err := Compile(concat(moduleHeader, sigVoid, funcSection(2), codeSection(
		body(wasm.OpcodeCall, 0x01),
		body(),
	)), wasmbinary.DecodeOptions{})
	require.NoError(t, err)

	require.Equal(t, []byte{
		wasm.OpcodeCall, 0x06, 0x00, 0x00, 0x00,
		wasm.OpcodeReturn,
		wasm.OpcodeReturn,
	}, m.Istream)
	require.Equal(t, uint32(6), m.Funcs[1].Offset)
}

func TestCompile_importsExportsStart(t *testing.T) {
	importSec := section(wasm.SectionIDImport,
		0x01, 0x03, 'e', 'n', 'v', 0x01, 'f', 0x00, 0x00)
	exportSec := section(wasm.SectionIDExport, 0x02,
		0x01, 'f', 0x00, 0x00, // re-export the import
		0x04, 'm', 'a', 'i', 'n', 0x00, 0x01)
	startSec := section(wasm.SectionIDStart, 0x01)

	m, err := Compile(concat(moduleHeader, sigVoid, importSec, funcSection(1),
		exportSec, startSec, codeSection(body(wasm.OpcodeCall, 0x00))),
		wasmbinary.DecodeOptions{})
	require.NoError(t, err)

	require.Equal(t, []byte{
		OpcodeCallImport, 0x00, 0x00, 0x00, 0x00,
		wasm.OpcodeReturn,
	}, m.Istream)
	require.Equal(t, []*Import{{Module: "env", Name: "f", SigIndex: 0}}, m.Imports)

	// Only the locally-defined export resolves to a code offset; the
	// re-exported import is the embedder's to bind.
	require.Equal(t, []*Export{{Name: "main", Offset: 0}}, m.Exports)
	require.NotNil(t, m.StartOffset)
	require.Equal(t, uint32(0), *m.StartOffset)
}

func TestCompile_startMustNotBeImport(t *testing.T) {
	importSec := section(wasm.SectionIDImport,
		0x01, 0x03, 'e', 'n', 'v', 0x01, 'f', 0x00, 0x00)
	startSec := section(wasm.SectionIDStart, 0x00)

	_, err := Compile(concat(moduleHeader, sigVoid, importSec, funcSection(1),
		startSec, codeSection(body())), wasmbinary.DecodeOptions{})
	require.ErrorContains(t, err, "start function 0 must not be an import")
}

func TestCompile_errors(t *testing.T) {
	tests := []struct {
		name        string
		insns       []byte
		expContains string
	}{
		{name: "branch depth", insns: []byte{wasm.OpcodeBr, 0x05},
			expContains: "invalid branch depth: 5 (max 0)"},
		{name: "stack underflow", insns: []byte{wasm.OpcodeDrop},
			expContains: "type stack underflow"},
		{name: "local index", insns: []byte{wasm.OpcodeLocalGet, 0x00},
			expContains: "invalid local index"},
		{name: "arity", insns: []byte{wasm.OpcodeI32Const, 0x01},
			expContains: "arity mismatch: 1 value(s) left on stack"},
		{name: "call_indirect without table",
			insns:       []byte{wasm.OpcodeI32Const, 0x00, wasm.OpcodeCallIndirect, 0x00, 0x00},
			expContains: "found call_indirect operator, but no table"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Compile(singleFunc(sigVoid, tc.insns...), wasmbinary.DecodeOptions{})
			require.ErrorContains(t, err, "function 0: "+tc.expContains)
		})
	}
}

func TestCompile_funcTable(t *testing.T) {
	tableSec := section(wasm.SectionIDTable, 0x01, 0x70, 0x00, 0x02)
	elemSec := section(wasm.SectionIDElement, 0x01,
		0x00, wasm.OpcodeI32Const, 0x01, wasm.OpcodeEnd, 0x01, 0x00)

	m, err := Compile(concat(moduleHeader, sigVoid, funcSection(1), tableSec,
		elemSec, codeSection(body(
			wasm.OpcodeI32Const, 0x00,
			wasm.OpcodeCallIndirect, 0x00, 0x00,
		))), wasmbinary.DecodeOptions{})
	require.NoError(t, err)

	// The segment lands at its evaluated offset; the uncovered slot stays
	// unset.
	require.Equal(t, []uint32{UnsetFuncTableEntry, 0}, m.FuncTable)
	require.Equal(t, []byte{
		wasm.OpcodeI32Const, 0x00, 0x00, 0x00, 0x00,
		wasm.OpcodeCallIndirect, 0x00, 0x00, 0x00, 0x00,
		wasm.OpcodeReturn,
	}, m.Istream)
}

func TestCompile_elemSegmentOutOfBounds(t *testing.T) {
	tableSec := section(wasm.SectionIDTable, 0x01, 0x70, 0x00, 0x01)
	elemSec := section(wasm.SectionIDElement, 0x01,
		0x00, wasm.OpcodeI32Const, 0x00, wasm.OpcodeEnd, 0x02, 0x00, 0x00)

	_, err := Compile(concat(moduleHeader, sigVoid, funcSection(1), tableSec,
		elemSec, codeSection(body())), wasmbinary.DecodeOptions{})
	require.ErrorContains(t, err, "element segment is out of bounds")
}

func TestCompile_globals(t *testing.T) {
	globalSec := section(wasm.SectionIDGlobal, 0x03,
		0x7f, 0x00, wasm.OpcodeI32Const, 0x2a, wasm.OpcodeEnd, // immutable i32 = 42
		0x7e, 0x01, wasm.OpcodeI64Const, 0x7f, wasm.OpcodeEnd, // mutable i64 = -1
		0x7f, 0x00, wasm.OpcodeGlobalGet, 0x00, wasm.OpcodeEnd)

	m, err := Compile(concat(moduleHeader, globalSec), wasmbinary.DecodeOptions{})
	require.NoError(t, err)

	require.Equal(t, []*Global{
		{Type: wasm.ValueTypeI32, Value: 42},
		{Type: wasm.ValueTypeI64, Mutable: true, Value: 0xffffffffffffffff},
		{Type: wasm.ValueTypeI32, Value: 42}, // copied from global 0
	}, m.Globals)
}

func TestCompile_globalInitErrors(t *testing.T) {
	tests := []struct {
		name        string
		globals     []byte
		expContains string
	}{
		{name: "type mismatch",
			globals:     []byte{0x01, 0x7f, 0x00, wasm.OpcodeI64Const, 0x00, wasm.OpcodeEnd},
			expContains: "type mismatch in global initializer: expected i32, got i64"},
		{name: "mutable reference",
			globals: []byte{0x02,
				0x7f, 0x01, wasm.OpcodeI32Const, 0x00, wasm.OpcodeEnd,
				0x7f, 0x00, wasm.OpcodeGlobalGet, 0x00, wasm.OpcodeEnd},
			expContains: "cannot reference a mutable global"},
		{name: "forward reference",
			globals: []byte{0x02,
				0x7f, 0x00, wasm.OpcodeGlobalGet, 0x01, wasm.OpcodeEnd,
				0x7f, 0x00, wasm.OpcodeI32Const, 0x00, wasm.OpcodeEnd},
			expContains: "previously defined global"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			globalSec := section(wasm.SectionIDGlobal, tc.globals...)
			_, err := Compile(concat(moduleHeader, globalSec), wasmbinary.DecodeOptions{})
			require.ErrorContains(t, err, tc.expContains)
		})
	}
}

func TestCompile_dataSegments(t *testing.T) {
	memorySec := section(wasm.SectionIDMemory, 0x01, 0x00, 0x01) // 1 page

	t.Run("copied at offset", func(t *testing.T) {
		dataSec := section(wasm.SectionIDData, 0x01,
			0x00, wasm.OpcodeI32Const, 0x08, wasm.OpcodeEnd, 0x02, 'h', 'i')
		m, err := Compile(concat(moduleHeader, memorySec, dataSec), wasmbinary.DecodeOptions{})
		require.NoError(t, err)
		require.Len(t, m.Memory, wasm.MemoryPageSize)
		require.Equal(t, []byte("hi"), m.Memory[8:10])
	})

	t.Run("out of bounds", func(t *testing.T) {
		dataSec := section(wasm.SectionIDData, 0x01,
			0x00, wasm.OpcodeI32Const, 0xff, 0xff, 0x03, wasm.OpcodeEnd, 0x02, 'h', 'i')
		_, err := Compile(concat(moduleHeader, memorySec, dataSec), wasmbinary.DecodeOptions{})
		require.ErrorContains(t, err, "data segment is out of bounds")
	})

	t.Run("no data segments leaves memory nil", func(t *testing.T) {
		m, err := Compile(concat(moduleHeader, memorySec), wasmbinary.DecodeOptions{})
		require.NoError(t, err)
		require.Nil(t, m.Memory)
	})
}

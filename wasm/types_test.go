package wasm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFunctionTypeString(t *testing.T) {
	i32, i64 := ValueTypeI32, ValueTypeI64
	tests := []struct {
		input    *FunctionType
		expected string
	}{
		{input: &FunctionType{}, expected: "null_null"},
		{input: &FunctionType{Params: []ValueType{i32}}, expected: "i32_null"},
		{input: &FunctionType{Results: []ValueType{i64}}, expected: "null_i64"},
		{input: &FunctionType{Params: []ValueType{i32, i64}, Results: []ValueType{i32}},
			expected: "i32i64_i32"},
	}
	for _, tc := range tests {
		require.Equal(t, tc.expected, tc.input.String())
	}
}

func TestIsValueType(t *testing.T) {
	for _, vt := range []ValueType{ValueTypeI32, ValueTypeI64, ValueTypeF32, ValueTypeF64} {
		require.True(t, IsValueType(vt))
	}
	require.False(t, IsValueType(0x7b))
	require.False(t, IsValueType(BlockTypeVoid))
}

func TestSectionIDName(t *testing.T) {
	require.Equal(t, "type", SectionIDName(SectionIDType))
	require.Equal(t, "code", SectionIDName(SectionIDCode))
	require.Equal(t, "unknown (12)", SectionIDName(12))
}

// TestOpcodeValues_comparisons pins the byte value of every comparison
// opcode, where an off-by-one in the constant block would silently shift a
// whole family.
func TestOpcodeValues_comparisons(t *testing.T) {
	expected := map[Opcode]string{
		0x45: "i32.eqz", 0x46: "i32.eq", 0x47: "i32.ne",
		0x48: "i32.lt_s", 0x49: "i32.lt_u", 0x4a: "i32.gt_s", 0x4b: "i32.gt_u",
		0x4c: "i32.le_s", 0x4d: "i32.le_u", 0x4e: "i32.ge_s", 0x4f: "i32.ge_u",
		0x50: "i64.eqz", 0x51: "i64.eq", 0x52: "i64.ne",
		0x53: "i64.lt_s", 0x54: "i64.lt_u", 0x55: "i64.gt_s", 0x56: "i64.gt_u",
		0x57: "i64.le_s", 0x58: "i64.le_u", 0x59: "i64.ge_s", 0x5a: "i64.ge_u",
		0x5b: "f32.eq", 0x5c: "f32.ne", 0x5d: "f32.lt",
		0x5e: "f32.gt", 0x5f: "f32.le", 0x60: "f32.ge",
		0x61: "f64.eq", 0x62: "f64.ne", 0x63: "f64.lt",
		0x64: "f64.gt", 0x65: "f64.le", 0x66: "f64.ge",
	}
	for op, name := range expected {
		require.Equal(t, name, InstructionName(op), "opcode 0x%x", op)
	}
}

func TestInstructionName(t *testing.T) {
	require.Equal(t, "call_indirect", InstructionName(OpcodeCallIndirect))
	require.Equal(t, "i32.wrap_i64", InstructionName(OpcodeI32WrapI64))
	require.Equal(t, "unknown", InstructionName(0xff))
}

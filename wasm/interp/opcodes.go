// Package interp compiles decoded modules into linear threaded code for a
// stack-based interpreter. Instructions are a 1-byte opcode followed by
// fixed-width little-endian operands, so branch and call targets can be
// patched in place once they are known.
package interp

import "github.com/wasmtools/wabin/wasm"

// Internal opcodes used only in threaded code. They live above the highest
// format opcode so the two sets never collide.
const (
	// OpcodeAlloca reserves its u32 operand's worth of local slots.
	OpcodeAlloca wasm.Opcode = 0xe0
	// OpcodeBrUnless branches to its u32 operand when the popped i32
	// condition is zero. Compiled form of if and br_if.
	OpcodeBrUnless wasm.Opcode = 0xe1
	// OpcodeDropKeep discards u32 operand slots below the topmost u8
	// operand slots.
	OpcodeDropKeep wasm.Opcode = 0xe2
	// OpcodeData introduces an inline data block (u32 byte length followed
	// by raw bytes), used for br_table target tables.
	OpcodeData wasm.Opcode = 0xe3
	// OpcodeCallImport calls an imported function by import index.
	OpcodeCallImport wasm.Opcode = 0xe4
)

// typeAny unifies with every value type. It models the stack-polymorphic
// typing of code following unreachable, br or return.
const typeAny wasm.ValueType = 0

// opcodeSig gives the static operand and result types of an opcode that has
// no control-flow side effects. Result is 0 for no result.
type opcodeSig struct {
	params []wasm.ValueType
	result wasm.ValueType
}

// opcodeSigs is indexed by opcode; nil entries are handled with dedicated
// logic in the compiler (control flow, variable access, calls).
var opcodeSigs [256]*opcodeSig

// opcodeRange expands an inclusive opcode range into table entries sharing
// one signature.
type opcodeRange struct {
	first, last wasm.Opcode
	sig         opcodeSig
}

func init() {
	i32 := wasm.ValueTypeI32
	i64 := wasm.ValueTypeI64
	f32 := wasm.ValueTypeF32
	f64 := wasm.ValueTypeF64

	one := func(op wasm.Opcode, sig opcodeSig) opcodeRange {
		return opcodeRange{first: op, last: op, sig: sig}
	}
	for _, r := range []opcodeRange{
		{first: wasm.OpcodeI32Eq, last: wasm.OpcodeI32GeU,
			sig: opcodeSig{params: []wasm.ValueType{i32, i32}, result: i32}},
		{first: wasm.OpcodeI64Eq, last: wasm.OpcodeI64GeU,
			sig: opcodeSig{params: []wasm.ValueType{i64, i64}, result: i32}},
		{first: wasm.OpcodeF32Eq, last: wasm.OpcodeF32Ge,
			sig: opcodeSig{params: []wasm.ValueType{f32, f32}, result: i32}},
		{first: wasm.OpcodeF64Eq, last: wasm.OpcodeF64Ge,
			sig: opcodeSig{params: []wasm.ValueType{f64, f64}, result: i32}},

		{first: wasm.OpcodeI32Clz, last: wasm.OpcodeI32Popcnt,
			sig: opcodeSig{params: []wasm.ValueType{i32}, result: i32}},
		{first: wasm.OpcodeI32Add, last: wasm.OpcodeI32Rotr,
			sig: opcodeSig{params: []wasm.ValueType{i32, i32}, result: i32}},
		{first: wasm.OpcodeI64Clz, last: wasm.OpcodeI64Popcnt,
			sig: opcodeSig{params: []wasm.ValueType{i64}, result: i64}},
		{first: wasm.OpcodeI64Add, last: wasm.OpcodeI64Rotr,
			sig: opcodeSig{params: []wasm.ValueType{i64, i64}, result: i64}},
		{first: wasm.OpcodeF32Abs, last: wasm.OpcodeF32Sqrt,
			sig: opcodeSig{params: []wasm.ValueType{f32}, result: f32}},
		{first: wasm.OpcodeF32Add, last: wasm.OpcodeF32Copysign,
			sig: opcodeSig{params: []wasm.ValueType{f32, f32}, result: f32}},
		{first: wasm.OpcodeF64Abs, last: wasm.OpcodeF64Sqrt,
			sig: opcodeSig{params: []wasm.ValueType{f64}, result: f64}},
		{first: wasm.OpcodeF64Add, last: wasm.OpcodeF64Copysign,
			sig: opcodeSig{params: []wasm.ValueType{f64, f64}, result: f64}},

		one(wasm.OpcodeI32Eqz, opcodeSig{params: []wasm.ValueType{i32}, result: i32}),
		one(wasm.OpcodeI64Eqz, opcodeSig{params: []wasm.ValueType{i64}, result: i32}),

		one(wasm.OpcodeI32WrapI64, opcodeSig{params: []wasm.ValueType{i64}, result: i32}),
		{first: wasm.OpcodeI32TruncF32S, last: wasm.OpcodeI32TruncF32U,
			sig: opcodeSig{params: []wasm.ValueType{f32}, result: i32}},
		{first: wasm.OpcodeI32TruncF64S, last: wasm.OpcodeI32TruncF64U,
			sig: opcodeSig{params: []wasm.ValueType{f64}, result: i32}},
		{first: wasm.OpcodeI64ExtendI32S, last: wasm.OpcodeI64ExtendI32U,
			sig: opcodeSig{params: []wasm.ValueType{i32}, result: i64}},
		{first: wasm.OpcodeI64TruncF32S, last: wasm.OpcodeI64TruncF32U,
			sig: opcodeSig{params: []wasm.ValueType{f32}, result: i64}},
		{first: wasm.OpcodeI64TruncF64S, last: wasm.OpcodeI64TruncF64U,
			sig: opcodeSig{params: []wasm.ValueType{f64}, result: i64}},
		{first: wasm.OpcodeF32ConvertI32S, last: wasm.OpcodeF32ConvertI32U,
			sig: opcodeSig{params: []wasm.ValueType{i32}, result: f32}},
		{first: wasm.OpcodeF32ConvertI64S, last: wasm.OpcodeF32ConvertI64U,
			sig: opcodeSig{params: []wasm.ValueType{i64}, result: f32}},
		one(wasm.OpcodeF32DemoteF64, opcodeSig{params: []wasm.ValueType{f64}, result: f32}),
		{first: wasm.OpcodeF64ConvertI32S, last: wasm.OpcodeF64ConvertI32U,
			sig: opcodeSig{params: []wasm.ValueType{i32}, result: f64}},
		{first: wasm.OpcodeF64ConvertI64S, last: wasm.OpcodeF64ConvertI64U,
			sig: opcodeSig{params: []wasm.ValueType{i64}, result: f64}},
		one(wasm.OpcodeF64PromoteF32, opcodeSig{params: []wasm.ValueType{f32}, result: f64}),
		one(wasm.OpcodeI32ReinterpretF32, opcodeSig{params: []wasm.ValueType{f32}, result: i32}),
		one(wasm.OpcodeI64ReinterpretF64, opcodeSig{params: []wasm.ValueType{f64}, result: i64}),
		one(wasm.OpcodeF32ReinterpretI32, opcodeSig{params: []wasm.ValueType{i32}, result: f32}),
		one(wasm.OpcodeF64ReinterpretI64, opcodeSig{params: []wasm.ValueType{i64}, result: f64}),

		{first: wasm.OpcodeI32Load, last: wasm.OpcodeI32Load,
			sig: opcodeSig{params: []wasm.ValueType{i32}, result: i32}},
		{first: wasm.OpcodeI64Load, last: wasm.OpcodeI64Load,
			sig: opcodeSig{params: []wasm.ValueType{i32}, result: i64}},
		{first: wasm.OpcodeF32Load, last: wasm.OpcodeF32Load,
			sig: opcodeSig{params: []wasm.ValueType{i32}, result: f32}},
		{first: wasm.OpcodeF64Load, last: wasm.OpcodeF64Load,
			sig: opcodeSig{params: []wasm.ValueType{i32}, result: f64}},
		{first: wasm.OpcodeI32Load8S, last: wasm.OpcodeI32Load16U,
			sig: opcodeSig{params: []wasm.ValueType{i32}, result: i32}},
		{first: wasm.OpcodeI64Load8S, last: wasm.OpcodeI64Load32U,
			sig: opcodeSig{params: []wasm.ValueType{i32}, result: i64}},

		one(wasm.OpcodeI32Store, opcodeSig{params: []wasm.ValueType{i32, i32}}),
		one(wasm.OpcodeI64Store, opcodeSig{params: []wasm.ValueType{i32, i64}}),
		one(wasm.OpcodeF32Store, opcodeSig{params: []wasm.ValueType{i32, f32}}),
		one(wasm.OpcodeF64Store, opcodeSig{params: []wasm.ValueType{i32, f64}}),
		{first: wasm.OpcodeI32Store8, last: wasm.OpcodeI32Store16,
			sig: opcodeSig{params: []wasm.ValueType{i32, i32}}},
		{first: wasm.OpcodeI64Store8, last: wasm.OpcodeI64Store32,
			sig: opcodeSig{params: []wasm.ValueType{i32, i64}}},

		one(wasm.OpcodeI32Const, opcodeSig{result: i32}),
		one(wasm.OpcodeI64Const, opcodeSig{result: i64}),
		one(wasm.OpcodeF32Const, opcodeSig{result: f32}),
		one(wasm.OpcodeF64Const, opcodeSig{result: f64}),

		one(wasm.OpcodeMemorySize, opcodeSig{result: i32}),
		one(wasm.OpcodeMemoryGrow, opcodeSig{params: []wasm.ValueType{i32}, result: i32}),
	} {
		sig := r.sig
		for op := int(r.first); op <= int(r.last); op++ {
			opcodeSigs[op] = &sig
		}
	}
}

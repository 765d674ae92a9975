// Package wasm holds the constants and in-memory representation shared by the
// binary decoder and the bytecode emitter.
package wasm

import "fmt"

// Magic is the 4-byte preamble every binary module starts with: "\0asm".
var Magic = []byte{0x00, 0x61, 0x73, 0x6d}

// Version is the 4-byte little-endian format version following the magic.
var Version = []byte{0x01, 0x00, 0x00, 0x00}

// ValueType is the binary encoding of a WebAssembly 1.0 (MVP) value type.
type ValueType = byte

const (
	ValueTypeI32 ValueType = 0x7f
	ValueTypeI64 ValueType = 0x7e
	ValueTypeF32 ValueType = 0x7d
	ValueTypeF64 ValueType = 0x7c
)

// BlockTypeVoid marks a block/loop/if that leaves no value on the stack.
const BlockTypeVoid byte = 0x40

// FunctionTypeForm is the leading byte of every entry in the type section.
const FunctionTypeForm byte = 0x60

func ValueTypeName(t ValueType) string {
	switch t {
	case ValueTypeI32:
		return "i32"
	case ValueTypeI64:
		return "i64"
	case ValueTypeF32:
		return "f32"
	case ValueTypeF64:
		return "f64"
	}
	return fmt.Sprintf("unknown (0x%x)", t)
}

// IsValueType returns true for the four concrete MVP value types.
func IsValueType(b byte) bool {
	switch b {
	case ValueTypeI32, ValueTypeI64, ValueTypeF32, ValueTypeF64:
		return true
	}
	return false
}

// FunctionType is a function signature: zero or more parameters and at most
// one result in the MVP.
type FunctionType struct {
	Params, Results []ValueType
}

func (t *FunctionType) String() (ret string) {
	for _, b := range t.Params {
		ret += ValueTypeName(b)
	}
	if len(t.Params) == 0 {
		ret += "null"
	}
	ret += "_"
	for _, b := range t.Results {
		ret += ValueTypeName(b)
	}
	if len(t.Results) == 0 {
		ret += "null"
	}
	return
}

// ExternalKind classifies an import or export.
type ExternalKind = byte

const (
	ExternalKindFunc   ExternalKind = 0
	ExternalKindTable  ExternalKind = 1
	ExternalKindMemory ExternalKind = 2
	ExternalKindGlobal ExternalKind = 3
)

func ExternalKindName(k ExternalKind) string {
	switch k {
	case ExternalKindFunc:
		return "func"
	case ExternalKindTable:
		return "table"
	case ExternalKindMemory:
		return "memory"
	case ExternalKindGlobal:
		return "global"
	}
	return fmt.Sprintf("unknown (%d)", k)
}

// ElemTypeFuncref is the only table element type in the MVP.
const ElemTypeFuncref byte = 0x70

// MemoryPageSize is the size of one linear-memory page in bytes.
const MemoryPageSize = 65536

// MemoryMaxPages caps both the initial and maximum page counts a module may
// declare.
const MemoryMaxPages = 65536

// Limits describes the size bounds of a table or memory. Max is nil when the
// limits carry no maximum.
type Limits struct {
	Min uint32
	Max *uint32
}

// LimitsHasMaxFlag is the flags bit indicating a maximum is present.
const LimitsHasMaxFlag = 0x1

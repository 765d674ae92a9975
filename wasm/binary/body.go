package binary

import "github.com/wasmtools/wabin/wasm"

func (d *decoder) decodeCodeSection(size uint32) error {
	c := d.c
	if err := d.r.BeginCodeSection(size); err != nil {
		return err
	}
	count, err := c.readU32("function body count")
	if err != nil {
		return err
	}
	if count != d.numFuncs {
		return c.errAt("function body count %d does not match function signature count %d", count, d.numFuncs)
	}
	if err := d.r.OnFunctionBodyCount(count); err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		if err := d.decodeFunctionBody(i); err != nil {
			return err
		}
	}
	return d.r.EndCodeSection()
}

func (d *decoder) decodeFunctionBody(index uint32) error {
	c := d.c
	bodySize, err := c.readU32("function body size")
	if err != nil {
		return err
	}
	bodyEnd := c.offset + int(bodySize)
	if bodyEnd > c.readEnd {
		return c.errAt("invalid function body size: extends past section end")
	}
	sectionEnd := c.readEnd
	c.readEnd = bodyEnd

	if err := d.r.BeginFunctionBody(index); err != nil {
		return err
	}
	declCount, err := c.readU32("local declaration count")
	if err != nil {
		return err
	}
	if err := d.r.OnLocalDeclCount(declCount); err != nil {
		return err
	}
	for k := uint32(0); k < declCount; k++ {
		n, err := c.readU32("local type count")
		if err != nil {
			return err
		}
		t, err := d.readValueType("local type")
		if err != nil {
			return err
		}
		if err := d.r.OnLocalDecl(k, n, t); err != nil {
			return err
		}
	}
	if err := d.decodeInstructions(bodyEnd); err != nil {
		return err
	}
	if err := d.r.EndFunctionBody(index); err != nil {
		return err
	}
	c.readEnd = sectionEnd
	return nil
}

// decodeInstructions reads the flat instruction stream of one function body.
// The body must terminate with an end opcode exactly at bodyEnd; that
// terminal end does not fire OnEnd, it closes the body itself.
func (d *decoder) decodeInstructions(bodyEnd int) error {
	c := d.c
	seenEnd := false
	for c.offset < bodyEnd {
		op, err := c.readByte("opcode")
		if err != nil {
			return err
		}
		if err := d.r.OnOpcode(op); err != nil {
			return err
		}
		if op == wasm.OpcodeEnd && c.offset == bodyEnd {
			seenEnd = true
			break
		}
		if err := d.decodeInstruction(op); err != nil {
			return err
		}
	}
	if !seenEnd {
		return c.errAt("function body must end with END opcode")
	}
	return nil
}

func (d *decoder) decodeInstruction(op wasm.Opcode) error {
	c := d.c
	switch op {
	case wasm.OpcodeUnreachable:
		return d.r.OnUnreachable()
	case wasm.OpcodeNop:
		return d.r.OnNop()
	case wasm.OpcodeBlock:
		results, err := d.readBlockType()
		if err != nil {
			return err
		}
		return d.r.OnBlock(results)
	case wasm.OpcodeLoop:
		results, err := d.readBlockType()
		if err != nil {
			return err
		}
		return d.r.OnLoop(results)
	case wasm.OpcodeIf:
		results, err := d.readBlockType()
		if err != nil {
			return err
		}
		return d.r.OnIf(results)
	case wasm.OpcodeElse:
		return d.r.OnElse()
	case wasm.OpcodeEnd:
		return d.r.OnEnd()
	case wasm.OpcodeBr:
		depth, err := c.readU32("br depth")
		if err != nil {
			return err
		}
		return d.r.OnBr(depth)
	case wasm.OpcodeBrIf:
		depth, err := c.readU32("br_if depth")
		if err != nil {
			return err
		}
		return d.r.OnBrIf(depth)
	case wasm.OpcodeBrTable:
		numTargets, err := c.readU32("br_table target count")
		if err != nil {
			return err
		}
		targets := make([]uint32, numTargets)
		for i := range targets {
			if targets[i], err = c.readU32("br_table target depth"); err != nil {
				return err
			}
		}
		defaultTarget, err := c.readU32("br_table default target depth")
		if err != nil {
			return err
		}
		return d.r.OnBrTable(targets, defaultTarget)
	case wasm.OpcodeReturn:
		return d.r.OnReturn()
	case wasm.OpcodeCall:
		funcIndex, err := c.readU32("call function index")
		if err != nil {
			return err
		}
		if funcIndex >= d.numTotalFuncs() {
			return c.errAt("invalid call function index: %d", funcIndex)
		}
		return d.r.OnCall(funcIndex)
	case wasm.OpcodeCallIndirect:
		sigIndex, err := c.readU32("call_indirect signature index")
		if err != nil {
			return err
		}
		if sigIndex >= d.numTypes {
			return c.errAt("invalid call_indirect signature index: %d", sigIndex)
		}
		if err := d.readReservedZero("call_indirect reserved"); err != nil {
			return err
		}
		return d.r.OnCallIndirect(sigIndex)

	case wasm.OpcodeDrop:
		return d.r.OnDrop()
	case wasm.OpcodeSelect:
		return d.r.OnSelect()

	case wasm.OpcodeLocalGet:
		index, err := c.readU32("local.get index")
		if err != nil {
			return err
		}
		return d.r.OnLocalGet(index)
	case wasm.OpcodeLocalSet:
		index, err := c.readU32("local.set index")
		if err != nil {
			return err
		}
		return d.r.OnLocalSet(index)
	case wasm.OpcodeLocalTee:
		index, err := c.readU32("local.tee index")
		if err != nil {
			return err
		}
		return d.r.OnLocalTee(index)
	case wasm.OpcodeGlobalGet:
		index, err := c.readU32("global.get index")
		if err != nil {
			return err
		}
		if index >= d.numTotalGlobals() {
			return c.errAt("invalid global.get index: %d", index)
		}
		return d.r.OnGlobalGet(index)
	case wasm.OpcodeGlobalSet:
		index, err := c.readU32("global.set index")
		if err != nil {
			return err
		}
		if index >= d.numTotalGlobals() {
			return c.errAt("invalid global.set index: %d", index)
		}
		return d.r.OnGlobalSet(index)

	case wasm.OpcodeI32Load, wasm.OpcodeI64Load, wasm.OpcodeF32Load, wasm.OpcodeF64Load,
		wasm.OpcodeI32Load8S, wasm.OpcodeI32Load8U, wasm.OpcodeI32Load16S, wasm.OpcodeI32Load16U,
		wasm.OpcodeI64Load8S, wasm.OpcodeI64Load8U, wasm.OpcodeI64Load16S, wasm.OpcodeI64Load16U,
		wasm.OpcodeI64Load32S, wasm.OpcodeI64Load32U:
		alignLog2, offset, err := d.readMemArg()
		if err != nil {
			return err
		}
		return d.r.OnLoad(op, alignLog2, offset)
	case wasm.OpcodeI32Store, wasm.OpcodeI64Store, wasm.OpcodeF32Store, wasm.OpcodeF64Store,
		wasm.OpcodeI32Store8, wasm.OpcodeI32Store16,
		wasm.OpcodeI64Store8, wasm.OpcodeI64Store16, wasm.OpcodeI64Store32:
		alignLog2, offset, err := d.readMemArg()
		if err != nil {
			return err
		}
		return d.r.OnStore(op, alignLog2, offset)
	case wasm.OpcodeMemorySize:
		if err := d.readReservedZero("memory.size reserved"); err != nil {
			return err
		}
		return d.r.OnMemorySize()
	case wasm.OpcodeMemoryGrow:
		if err := d.readReservedZero("memory.grow reserved"); err != nil {
			return err
		}
		return d.r.OnMemoryGrow()

	case wasm.OpcodeI32Const:
		v, err := c.readI32("i32.const value")
		if err != nil {
			return err
		}
		return d.r.OnI32Const(v)
	case wasm.OpcodeI64Const:
		v, err := c.readI64("i64.const value")
		if err != nil {
			return err
		}
		return d.r.OnI64Const(v)
	case wasm.OpcodeF32Const:
		bits, err := c.readF32Bits("f32.const value")
		if err != nil {
			return err
		}
		return d.r.OnF32Const(bits)
	case wasm.OpcodeF64Const:
		bits, err := c.readF64Bits("f64.const value")
		if err != nil {
			return err
		}
		return d.r.OnF64Const(bits)
	}

	// Everything remaining has no immediates and dispatches by family.
	switch {
	case op >= wasm.OpcodeI32Eq && op <= wasm.OpcodeI32GeU,
		op >= wasm.OpcodeI64Eq && op <= wasm.OpcodeI64GeU,
		op >= wasm.OpcodeF32Eq && op <= wasm.OpcodeF64Ge:
		return d.r.OnCompare(op)
	case op == wasm.OpcodeI32Eqz, op == wasm.OpcodeI64Eqz,
		op >= wasm.OpcodeI32WrapI64 && op <= wasm.OpcodeF64ReinterpretI64:
		return d.r.OnConvert(op)
	case op >= wasm.OpcodeI32Clz && op <= wasm.OpcodeI32Popcnt,
		op >= wasm.OpcodeI64Clz && op <= wasm.OpcodeI64Popcnt,
		op >= wasm.OpcodeF32Abs && op <= wasm.OpcodeF32Sqrt,
		op >= wasm.OpcodeF64Abs && op <= wasm.OpcodeF64Sqrt:
		return d.r.OnUnary(op)
	case op >= wasm.OpcodeI32Add && op <= wasm.OpcodeI32Rotr,
		op >= wasm.OpcodeI64Add && op <= wasm.OpcodeI64Rotr,
		op >= wasm.OpcodeF32Add && op <= wasm.OpcodeF32Copysign,
		op >= wasm.OpcodeF64Add && op <= wasm.OpcodeF64Copysign:
		return d.r.OnBinary(op)
	}
	return c.errAt("unexpected opcode: 0x%x", op)
}

// readBlockType reads the single-byte result type of a block, loop or if.
func (d *decoder) readBlockType() ([]wasm.ValueType, error) {
	b, err := d.c.readByte("block result type")
	if err != nil {
		return nil, err
	}
	if b == wasm.BlockTypeVoid {
		return nil, nil
	}
	if !wasm.IsValueType(b) {
		return nil, d.c.errAt("invalid block result type: 0x%x", b)
	}
	return []wasm.ValueType{b}, nil
}

func (d *decoder) readMemArg() (alignLog2, offset uint32, err error) {
	if alignLog2, err = d.c.readU32("memory access alignment"); err != nil {
		return
	}
	offset, err = d.c.readU32("memory access offset")
	return
}

// readReservedZero reads a u32 immediate that the format requires to be zero.
func (d *decoder) readReservedZero(what string) error {
	v, err := d.c.readU32(what)
	if err != nil {
		return err
	}
	if v != 0 {
		return d.c.errAt("%s value must be 0, got %d", what, v)
	}
	return nil
}

package binary

import "github.com/wasmtools/wabin/wasm"

func (d *decoder) decodeTypeSection(size uint32) error {
	c := d.c
	if err := d.r.BeginTypeSection(size); err != nil {
		return err
	}
	count, err := c.readU32("type count")
	if err != nil {
		return err
	}
	d.numTypes = count
	if err := d.r.OnTypeCount(count); err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		form, err := c.readByte("type form")
		if err != nil {
			return err
		}
		if form != wasm.FunctionTypeForm {
			return c.errAt("invalid type form: 0x%x", form)
		}
		numParams, err := c.readU32("function param count")
		if err != nil {
			return err
		}
		params := make([]wasm.ValueType, numParams)
		for j := range params {
			if params[j], err = d.readValueType("function param type"); err != nil {
				return err
			}
		}
		numResults, err := c.readU32("function result count")
		if err != nil {
			return err
		}
		if numResults > 1 {
			return c.errAt("function result count %d exceeds maximum of 1", numResults)
		}
		results := make([]wasm.ValueType, numResults)
		for j := range results {
			if results[j], err = d.readValueType("function result type"); err != nil {
				return err
			}
		}
		if err := d.r.OnType(i, params, results); err != nil {
			return err
		}
	}
	return d.r.EndTypeSection()
}

func (d *decoder) decodeImportSection(size uint32) error {
	c := d.c
	d.sawImportSection = true
	if err := d.r.BeginImportSection(size); err != nil {
		return err
	}
	count, err := c.readU32("import count")
	if err != nil {
		return err
	}
	if err := d.r.OnImportCount(count); err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		module, err := c.readString("import module name")
		if err != nil {
			return err
		}
		name, err := c.readString("import field name")
		if err != nil {
			return err
		}
		if err := d.r.OnImport(i, module, name); err != nil {
			return err
		}
		kind, err := c.readByte("import kind")
		if err != nil {
			return err
		}
		switch wasm.ExternalKind(kind) {
		case wasm.ExternalKindFunc:
			sigIndex, err := c.readU32("import signature index")
			if err != nil {
				return err
			}
			if sigIndex >= d.numTypes {
				return c.errAt("invalid import signature index: %d", sigIndex)
			}
			if err := d.r.OnImportFunc(i, d.numFuncImports, sigIndex); err != nil {
				return err
			}
			d.numFuncImports++
		case wasm.ExternalKindTable:
			elemType, err := c.readByte("table element type")
			if err != nil {
				return err
			}
			if elemType != wasm.ElemTypeFuncref {
				return c.errAt("invalid table element type: 0x%x", elemType)
			}
			limits, err := d.readLimits(0, "table")
			if err != nil {
				return err
			}
			if err := d.r.OnImportTable(i, d.numTableImports, elemType, limits); err != nil {
				return err
			}
			d.numTableImports++
		case wasm.ExternalKindMemory:
			limits, err := d.readLimits(wasm.MemoryMaxPages, "memory")
			if err != nil {
				return err
			}
			if err := d.r.OnImportMemory(i, d.numMemImports, limits); err != nil {
				return err
			}
			d.numMemImports++
		case wasm.ExternalKindGlobal:
			valType, err := d.readValueType("global type")
			if err != nil {
				return err
			}
			mut, err := c.readByte("global mutability")
			if err != nil {
				return err
			}
			if mut > 1 {
				return c.errAt("invalid global mutability: %d", mut)
			}
			if err := d.r.OnImportGlobal(i, d.numGlobalImports, valType, mut == 1); err != nil {
				return err
			}
			d.numGlobalImports++
		default:
			return c.errAt("invalid import kind: %d", kind)
		}
	}
	return d.r.EndImportSection()
}

func (d *decoder) decodeFunctionSection(size uint32) error {
	c := d.c
	if err := d.r.BeginFunctionSection(size); err != nil {
		return err
	}
	count, err := c.readU32("function count")
	if err != nil {
		return err
	}
	d.numFuncs = count
	if err := d.r.OnFunctionCount(count); err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		sigIndex, err := c.readU32("function signature index")
		if err != nil {
			return err
		}
		if sigIndex >= d.numTypes {
			return c.errAt("invalid function signature index: %d", sigIndex)
		}
		if err := d.r.OnFunction(i, sigIndex); err != nil {
			return err
		}
	}
	return d.r.EndFunctionSection()
}

func (d *decoder) decodeTableSection(size uint32) error {
	c := d.c
	if err := d.r.BeginTableSection(size); err != nil {
		return err
	}
	count, err := c.readU32("table count")
	if err != nil {
		return err
	}
	if d.numTableImports+count > 1 {
		return c.errAt("table count must not be greater than 1")
	}
	d.numTables = count
	if err := d.r.OnTableCount(count); err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		elemType, err := c.readByte("table element type")
		if err != nil {
			return err
		}
		if elemType != wasm.ElemTypeFuncref {
			return c.errAt("invalid table element type: 0x%x", elemType)
		}
		limits, err := d.readLimits(0, "table")
		if err != nil {
			return err
		}
		if err := d.r.OnTable(d.numTableImports+i, elemType, limits); err != nil {
			return err
		}
	}
	return d.r.EndTableSection()
}

func (d *decoder) decodeMemorySection(size uint32) error {
	c := d.c
	if err := d.r.BeginMemorySection(size); err != nil {
		return err
	}
	count, err := c.readU32("memory count")
	if err != nil {
		return err
	}
	if d.numMemImports+count > 1 {
		return c.errAt("memory count must not be greater than 1")
	}
	d.numMems = count
	if err := d.r.OnMemoryCount(count); err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		limits, err := d.readLimits(wasm.MemoryMaxPages, "memory")
		if err != nil {
			return err
		}
		if err := d.r.OnMemory(d.numMemImports+i, limits); err != nil {
			return err
		}
	}
	return d.r.EndMemorySection()
}

func (d *decoder) decodeGlobalSection(size uint32) error {
	c := d.c
	if err := d.r.BeginGlobalSection(size); err != nil {
		return err
	}
	count, err := c.readU32("global count")
	if err != nil {
		return err
	}
	d.numGlobals = count
	if err := d.r.OnGlobalCount(count); err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		globalIndex := d.numGlobalImports + i
		valType, err := d.readValueType("global type")
		if err != nil {
			return err
		}
		mut, err := c.readByte("global mutability")
		if err != nil {
			return err
		}
		if mut > 1 {
			return c.errAt("invalid global mutability: %d", mut)
		}
		if err := d.r.BeginGlobal(globalIndex, valType, mut == 1); err != nil {
			return err
		}
		if err := d.r.BeginGlobalInitExpr(globalIndex); err != nil {
			return err
		}
		if err := d.decodeInitExpr(globalIndex); err != nil {
			return err
		}
		if err := d.r.EndGlobalInitExpr(globalIndex); err != nil {
			return err
		}
		if err := d.r.EndGlobal(globalIndex); err != nil {
			return err
		}
	}
	return d.r.EndGlobalSection()
}

// decodeInitExpr reads a constant initializer: a single const or global.get
// instruction terminated by end.
func (d *decoder) decodeInitExpr(index uint32) error {
	c := d.c
	op, err := c.readByte("init expression opcode")
	if err != nil {
		return err
	}
	switch op {
	case wasm.OpcodeI32Const:
		v, err := c.readI32("i32.const value")
		if err != nil {
			return err
		}
		if err := d.r.OnInitExprI32Const(index, v); err != nil {
			return err
		}
	case wasm.OpcodeI64Const:
		v, err := c.readI64("i64.const value")
		if err != nil {
			return err
		}
		if err := d.r.OnInitExprI64Const(index, v); err != nil {
			return err
		}
	case wasm.OpcodeF32Const:
		bits, err := c.readF32Bits("f32.const value")
		if err != nil {
			return err
		}
		if err := d.r.OnInitExprF32Const(index, bits); err != nil {
			return err
		}
	case wasm.OpcodeF64Const:
		bits, err := c.readF64Bits("f64.const value")
		if err != nil {
			return err
		}
		if err := d.r.OnInitExprF64Const(index, bits); err != nil {
			return err
		}
	case wasm.OpcodeGlobalGet:
		globalIndex, err := c.readU32("global.get index")
		if err != nil {
			return err
		}
		if globalIndex >= d.numTotalGlobals() {
			return c.errAt("invalid init expression global index: %d", globalIndex)
		}
		if err := d.r.OnInitExprGlobalGet(index, globalIndex); err != nil {
			return err
		}
	default:
		return c.errAt("unexpected init expression opcode: %s", wasm.InstructionName(op))
	}
	end, err := c.readByte("init expression end opcode")
	if err != nil {
		return err
	}
	if end != wasm.OpcodeEnd {
		return c.errAt("init expression must end with END opcode")
	}
	return nil
}

func (d *decoder) decodeExportSection(size uint32) error {
	c := d.c
	if err := d.r.BeginExportSection(size); err != nil {
		return err
	}
	count, err := c.readU32("export count")
	if err != nil {
		return err
	}
	if err := d.r.OnExportCount(count); err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		name, err := c.readString("export name")
		if err != nil {
			return err
		}
		kind, err := c.readByte("export kind")
		if err != nil {
			return err
		}
		itemIndex, err := c.readU32("export index")
		if err != nil {
			return err
		}
		var limit uint32
		switch wasm.ExternalKind(kind) {
		case wasm.ExternalKindFunc:
			limit = d.numTotalFuncs()
		case wasm.ExternalKindTable:
			limit = d.numTotalTables()
		case wasm.ExternalKindMemory:
			limit = d.numTotalMemories()
		case wasm.ExternalKindGlobal:
			limit = d.numTotalGlobals()
		default:
			return c.errAt("invalid export kind: %d", kind)
		}
		if itemIndex >= limit {
			return c.errAt("invalid export %s index: %d", wasm.ExternalKindName(kind), itemIndex)
		}
		if err := d.r.OnExport(i, kind, itemIndex, name); err != nil {
			return err
		}
	}
	return d.r.EndExportSection()
}

func (d *decoder) decodeStartSection(size uint32) error {
	c := d.c
	if err := d.r.BeginStartSection(size); err != nil {
		return err
	}
	funcIndex, err := c.readU32("start function index")
	if err != nil {
		return err
	}
	if funcIndex >= d.numTotalFuncs() {
		return c.errAt("invalid start function index: %d", funcIndex)
	}
	if err := d.r.OnStartFunction(funcIndex); err != nil {
		return err
	}
	return d.r.EndStartSection()
}

func (d *decoder) decodeElementSection(size uint32) error {
	c := d.c
	if err := d.r.BeginElementSection(size); err != nil {
		return err
	}
	count, err := c.readU32("element segment count")
	if err != nil {
		return err
	}
	if err := d.r.OnElementSegmentCount(count); err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		tableIndex, err := c.readU32("element segment table index")
		if err != nil {
			return err
		}
		if tableIndex >= d.numTotalTables() {
			return c.errAt("invalid element segment table index: %d", tableIndex)
		}
		if err := d.r.BeginElementSegment(i, tableIndex); err != nil {
			return err
		}
		if err := d.r.BeginElementSegmentInitExpr(i); err != nil {
			return err
		}
		if err := d.decodeInitExpr(i); err != nil {
			return err
		}
		if err := d.r.EndElementSegmentInitExpr(i); err != nil {
			return err
		}
		numIndices, err := c.readU32("element segment function index count")
		if err != nil {
			return err
		}
		if err := d.r.OnElementSegmentFunctionIndexCount(i, numIndices); err != nil {
			return err
		}
		for j := uint32(0); j < numIndices; j++ {
			funcIndex, err := c.readU32("element segment function index")
			if err != nil {
				return err
			}
			if funcIndex >= d.numTotalFuncs() {
				return c.errAt("invalid element segment function index: %d", funcIndex)
			}
			if err := d.r.OnElementSegmentFunctionIndex(i, funcIndex); err != nil {
				return err
			}
		}
		if err := d.r.EndElementSegment(i); err != nil {
			return err
		}
	}
	return d.r.EndElementSection()
}

func (d *decoder) decodeDataSection(size uint32) error {
	c := d.c
	if err := d.r.BeginDataSection(size); err != nil {
		return err
	}
	count, err := c.readU32("data segment count")
	if err != nil {
		return err
	}
	if err := d.r.OnDataSegmentCount(count); err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		memIndex, err := c.readU32("data segment memory index")
		if err != nil {
			return err
		}
		if memIndex >= d.numTotalMemories() {
			return c.errAt("invalid data segment memory index: %d", memIndex)
		}
		if err := d.r.BeginDataSegment(i, memIndex); err != nil {
			return err
		}
		if err := d.r.BeginDataSegmentInitExpr(i); err != nil {
			return err
		}
		if err := d.decodeInitExpr(i); err != nil {
			return err
		}
		if err := d.r.EndDataSegmentInitExpr(i); err != nil {
			return err
		}
		n, err := c.readU32("data segment size")
		if err != nil {
			return err
		}
		data, err := c.readBytes(int(n), "data segment data")
		if err != nil {
			return err
		}
		if err := d.r.OnDataSegmentData(i, data); err != nil {
			return err
		}
		if err := d.r.EndDataSegment(i); err != nil {
			return err
		}
	}
	return d.r.EndDataSection()
}

package binary

import (
	"go.uber.org/zap"

	"github.com/wasmtools/wabin/wasm"
)

// LoggingReader wraps another Reader and logs every event at debug level
// before delegating, giving a readable trace of the decode stream.
type LoggingReader struct {
	r   Reader
	log *zap.Logger
}

var _ Reader = (*LoggingReader)(nil)

// NewLoggingReader returns a Reader that logs each event to log and then
// forwards it to r. A nil log disables logging.
func NewLoggingReader(r Reader, log *zap.Logger) *LoggingReader {
	if log == nil {
		log = zap.NewNop()
	}
	return &LoggingReader{r: r, log: log}
}

func (l *LoggingReader) BeginModule(version uint32) error {
	l.log.Debug("begin_module", zap.Uint32("version", version))
	return l.r.BeginModule(version)
}

func (l *LoggingReader) EndModule() error {
	l.log.Debug("end_module")
	return l.r.EndModule()
}

func (l *LoggingReader) OnError(offset int, message string) {
	l.log.Error("on_error", zap.Int("offset", offset), zap.String("message", message))
	l.r.OnError(offset, message)
}

func (l *LoggingReader) BeginCustomSection(size uint32, name string) error {
	l.log.Debug("begin_custom_section", zap.Uint32("size", size), zap.String("name", name))
	return l.r.BeginCustomSection(size, name)
}

func (l *LoggingReader) OnCustomSectionData(data []byte) error {
	l.log.Debug("on_custom_section_data", zap.Int("size", len(data)))
	return l.r.OnCustomSectionData(data)
}

func (l *LoggingReader) EndCustomSection() error {
	l.log.Debug("end_custom_section")
	return l.r.EndCustomSection()
}

func (l *LoggingReader) BeginTypeSection(size uint32) error {
	l.log.Debug("begin_type_section", zap.Uint32("size", size))
	return l.r.BeginTypeSection(size)
}

func (l *LoggingReader) OnTypeCount(count uint32) error {
	l.log.Debug("on_type_count", zap.Uint32("count", count))
	return l.r.OnTypeCount(count)
}

func (l *LoggingReader) OnType(index uint32, params, results []wasm.ValueType) error {
	t := wasm.FunctionType{Params: params, Results: results}
	l.log.Debug("on_type", zap.Uint32("index", index), zap.String("sig", t.String()))
	return l.r.OnType(index, params, results)
}

func (l *LoggingReader) EndTypeSection() error {
	l.log.Debug("end_type_section")
	return l.r.EndTypeSection()
}

func (l *LoggingReader) BeginImportSection(size uint32) error {
	l.log.Debug("begin_import_section", zap.Uint32("size", size))
	return l.r.BeginImportSection(size)
}

func (l *LoggingReader) OnImportCount(count uint32) error {
	l.log.Debug("on_import_count", zap.Uint32("count", count))
	return l.r.OnImportCount(count)
}

func (l *LoggingReader) OnImport(index uint32, module, name string) error {
	l.log.Debug("on_import", zap.Uint32("index", index),
		zap.String("module", module), zap.String("name", name))
	return l.r.OnImport(index, module, name)
}

func (l *LoggingReader) OnImportFunc(importIndex, funcIndex, sigIndex uint32) error {
	l.log.Debug("on_import_func", zap.Uint32("import_index", importIndex),
		zap.Uint32("func_index", funcIndex), zap.Uint32("sig_index", sigIndex))
	return l.r.OnImportFunc(importIndex, funcIndex, sigIndex)
}

func (l *LoggingReader) OnImportTable(importIndex, tableIndex uint32, elemType byte, limits *wasm.Limits) error {
	l.log.Debug("on_import_table", zap.Uint32("import_index", importIndex),
		zap.Uint32("table_index", tableIndex), zap.Uint32("min", limits.Min))
	return l.r.OnImportTable(importIndex, tableIndex, elemType, limits)
}

func (l *LoggingReader) OnImportMemory(importIndex, memIndex uint32, limits *wasm.Limits) error {
	l.log.Debug("on_import_memory", zap.Uint32("import_index", importIndex),
		zap.Uint32("memory_index", memIndex), zap.Uint32("min", limits.Min))
	return l.r.OnImportMemory(importIndex, memIndex, limits)
}

func (l *LoggingReader) OnImportGlobal(importIndex, globalIndex uint32, valType wasm.ValueType, mutable bool) error {
	l.log.Debug("on_import_global", zap.Uint32("import_index", importIndex),
		zap.Uint32("global_index", globalIndex),
		zap.String("type", wasm.ValueTypeName(valType)), zap.Bool("mutable", mutable))
	return l.r.OnImportGlobal(importIndex, globalIndex, valType, mutable)
}

func (l *LoggingReader) EndImportSection() error {
	l.log.Debug("end_import_section")
	return l.r.EndImportSection()
}

func (l *LoggingReader) BeginFunctionSection(size uint32) error {
	l.log.Debug("begin_function_section", zap.Uint32("size", size))
	return l.r.BeginFunctionSection(size)
}

func (l *LoggingReader) OnFunctionCount(count uint32) error {
	l.log.Debug("on_function_count", zap.Uint32("count", count))
	return l.r.OnFunctionCount(count)
}

func (l *LoggingReader) OnFunction(index, sigIndex uint32) error {
	l.log.Debug("on_function", zap.Uint32("index", index), zap.Uint32("sig_index", sigIndex))
	return l.r.OnFunction(index, sigIndex)
}

func (l *LoggingReader) EndFunctionSection() error {
	l.log.Debug("end_function_section")
	return l.r.EndFunctionSection()
}

func (l *LoggingReader) BeginTableSection(size uint32) error {
	l.log.Debug("begin_table_section", zap.Uint32("size", size))
	return l.r.BeginTableSection(size)
}

func (l *LoggingReader) OnTableCount(count uint32) error {
	l.log.Debug("on_table_count", zap.Uint32("count", count))
	return l.r.OnTableCount(count)
}

func (l *LoggingReader) OnTable(index uint32, elemType byte, limits *wasm.Limits) error {
	l.log.Debug("on_table", zap.Uint32("index", index), zap.Uint32("min", limits.Min))
	return l.r.OnTable(index, elemType, limits)
}

func (l *LoggingReader) EndTableSection() error {
	l.log.Debug("end_table_section")
	return l.r.EndTableSection()
}

func (l *LoggingReader) BeginMemorySection(size uint32) error {
	l.log.Debug("begin_memory_section", zap.Uint32("size", size))
	return l.r.BeginMemorySection(size)
}

func (l *LoggingReader) OnMemoryCount(count uint32) error {
	l.log.Debug("on_memory_count", zap.Uint32("count", count))
	return l.r.OnMemoryCount(count)
}

func (l *LoggingReader) OnMemory(index uint32, limits *wasm.Limits) error {
	l.log.Debug("on_memory", zap.Uint32("index", index), zap.Uint32("min", limits.Min))
	return l.r.OnMemory(index, limits)
}

func (l *LoggingReader) EndMemorySection() error {
	l.log.Debug("end_memory_section")
	return l.r.EndMemorySection()
}

func (l *LoggingReader) BeginGlobalSection(size uint32) error {
	l.log.Debug("begin_global_section", zap.Uint32("size", size))
	return l.r.BeginGlobalSection(size)
}

func (l *LoggingReader) OnGlobalCount(count uint32) error {
	l.log.Debug("on_global_count", zap.Uint32("count", count))
	return l.r.OnGlobalCount(count)
}

func (l *LoggingReader) BeginGlobal(index uint32, valType wasm.ValueType, mutable bool) error {
	l.log.Debug("begin_global", zap.Uint32("index", index),
		zap.String("type", wasm.ValueTypeName(valType)), zap.Bool("mutable", mutable))
	return l.r.BeginGlobal(index, valType, mutable)
}

func (l *LoggingReader) BeginGlobalInitExpr(index uint32) error {
	l.log.Debug("begin_global_init_expr", zap.Uint32("index", index))
	return l.r.BeginGlobalInitExpr(index)
}

func (l *LoggingReader) EndGlobalInitExpr(index uint32) error {
	l.log.Debug("end_global_init_expr", zap.Uint32("index", index))
	return l.r.EndGlobalInitExpr(index)
}

func (l *LoggingReader) EndGlobal(index uint32) error {
	l.log.Debug("end_global", zap.Uint32("index", index))
	return l.r.EndGlobal(index)
}

func (l *LoggingReader) EndGlobalSection() error {
	l.log.Debug("end_global_section")
	return l.r.EndGlobalSection()
}

func (l *LoggingReader) OnInitExprI32Const(index uint32, value int32) error {
	l.log.Debug("on_init_expr_i32_const", zap.Uint32("index", index), zap.Int32("value", value))
	return l.r.OnInitExprI32Const(index, value)
}

func (l *LoggingReader) OnInitExprI64Const(index uint32, value int64) error {
	l.log.Debug("on_init_expr_i64_const", zap.Uint32("index", index), zap.Int64("value", value))
	return l.r.OnInitExprI64Const(index, value)
}

func (l *LoggingReader) OnInitExprF32Const(index uint32, bits uint32) error {
	l.log.Debug("on_init_expr_f32_const", zap.Uint32("index", index), zap.Uint32("bits", bits))
	return l.r.OnInitExprF32Const(index, bits)
}

func (l *LoggingReader) OnInitExprF64Const(index uint32, bits uint64) error {
	l.log.Debug("on_init_expr_f64_const", zap.Uint32("index", index), zap.Uint64("bits", bits))
	return l.r.OnInitExprF64Const(index, bits)
}

func (l *LoggingReader) OnInitExprGlobalGet(index, globalIndex uint32) error {
	l.log.Debug("on_init_expr_global_get", zap.Uint32("index", index),
		zap.Uint32("global_index", globalIndex))
	return l.r.OnInitExprGlobalGet(index, globalIndex)
}

func (l *LoggingReader) BeginExportSection(size uint32) error {
	l.log.Debug("begin_export_section", zap.Uint32("size", size))
	return l.r.BeginExportSection(size)
}

func (l *LoggingReader) OnExportCount(count uint32) error {
	l.log.Debug("on_export_count", zap.Uint32("count", count))
	return l.r.OnExportCount(count)
}

func (l *LoggingReader) OnExport(index uint32, kind wasm.ExternalKind, itemIndex uint32, name string) error {
	l.log.Debug("on_export", zap.Uint32("index", index),
		zap.String("kind", wasm.ExternalKindName(kind)),
		zap.Uint32("item_index", itemIndex), zap.String("name", name))
	return l.r.OnExport(index, kind, itemIndex, name)
}

func (l *LoggingReader) EndExportSection() error {
	l.log.Debug("end_export_section")
	return l.r.EndExportSection()
}

func (l *LoggingReader) BeginStartSection(size uint32) error {
	l.log.Debug("begin_start_section", zap.Uint32("size", size))
	return l.r.BeginStartSection(size)
}

func (l *LoggingReader) OnStartFunction(funcIndex uint32) error {
	l.log.Debug("on_start_function", zap.Uint32("func_index", funcIndex))
	return l.r.OnStartFunction(funcIndex)
}

func (l *LoggingReader) EndStartSection() error {
	l.log.Debug("end_start_section")
	return l.r.EndStartSection()
}

func (l *LoggingReader) BeginElementSection(size uint32) error {
	l.log.Debug("begin_element_section", zap.Uint32("size", size))
	return l.r.BeginElementSection(size)
}

func (l *LoggingReader) OnElementSegmentCount(count uint32) error {
	l.log.Debug("on_element_segment_count", zap.Uint32("count", count))
	return l.r.OnElementSegmentCount(count)
}

func (l *LoggingReader) BeginElementSegment(index, tableIndex uint32) error {
	l.log.Debug("begin_element_segment", zap.Uint32("index", index),
		zap.Uint32("table_index", tableIndex))
	return l.r.BeginElementSegment(index, tableIndex)
}

func (l *LoggingReader) BeginElementSegmentInitExpr(index uint32) error {
	l.log.Debug("begin_element_segment_init_expr", zap.Uint32("index", index))
	return l.r.BeginElementSegmentInitExpr(index)
}

func (l *LoggingReader) EndElementSegmentInitExpr(index uint32) error {
	l.log.Debug("end_element_segment_init_expr", zap.Uint32("index", index))
	return l.r.EndElementSegmentInitExpr(index)
}

func (l *LoggingReader) OnElementSegmentFunctionIndexCount(index, count uint32) error {
	l.log.Debug("on_element_segment_function_index_count",
		zap.Uint32("index", index), zap.Uint32("count", count))
	return l.r.OnElementSegmentFunctionIndexCount(index, count)
}

func (l *LoggingReader) OnElementSegmentFunctionIndex(index, funcIndex uint32) error {
	l.log.Debug("on_element_segment_function_index",
		zap.Uint32("index", index), zap.Uint32("func_index", funcIndex))
	return l.r.OnElementSegmentFunctionIndex(index, funcIndex)
}

func (l *LoggingReader) EndElementSegment(index uint32) error {
	l.log.Debug("end_element_segment", zap.Uint32("index", index))
	return l.r.EndElementSegment(index)
}

func (l *LoggingReader) EndElementSection() error {
	l.log.Debug("end_element_section")
	return l.r.EndElementSection()
}

func (l *LoggingReader) BeginCodeSection(size uint32) error {
	l.log.Debug("begin_code_section", zap.Uint32("size", size))
	return l.r.BeginCodeSection(size)
}

func (l *LoggingReader) OnFunctionBodyCount(count uint32) error {
	l.log.Debug("on_function_body_count", zap.Uint32("count", count))
	return l.r.OnFunctionBodyCount(count)
}

func (l *LoggingReader) BeginFunctionBody(index uint32) error {
	l.log.Debug("begin_function_body", zap.Uint32("index", index))
	return l.r.BeginFunctionBody(index)
}

func (l *LoggingReader) OnLocalDeclCount(count uint32) error {
	l.log.Debug("on_local_decl_count", zap.Uint32("count", count))
	return l.r.OnLocalDeclCount(count)
}

func (l *LoggingReader) OnLocalDecl(declIndex, count uint32, valType wasm.ValueType) error {
	l.log.Debug("on_local_decl", zap.Uint32("decl_index", declIndex),
		zap.Uint32("count", count), zap.String("type", wasm.ValueTypeName(valType)))
	return l.r.OnLocalDecl(declIndex, count, valType)
}

func (l *LoggingReader) EndFunctionBody(index uint32) error {
	l.log.Debug("end_function_body", zap.Uint32("index", index))
	return l.r.EndFunctionBody(index)
}

func (l *LoggingReader) EndCodeSection() error {
	l.log.Debug("end_code_section")
	return l.r.EndCodeSection()
}

func (l *LoggingReader) BeginDataSection(size uint32) error {
	l.log.Debug("begin_data_section", zap.Uint32("size", size))
	return l.r.BeginDataSection(size)
}

func (l *LoggingReader) OnDataSegmentCount(count uint32) error {
	l.log.Debug("on_data_segment_count", zap.Uint32("count", count))
	return l.r.OnDataSegmentCount(count)
}

func (l *LoggingReader) BeginDataSegment(index, memIndex uint32) error {
	l.log.Debug("begin_data_segment", zap.Uint32("index", index),
		zap.Uint32("memory_index", memIndex))
	return l.r.BeginDataSegment(index, memIndex)
}

func (l *LoggingReader) BeginDataSegmentInitExpr(index uint32) error {
	l.log.Debug("begin_data_segment_init_expr", zap.Uint32("index", index))
	return l.r.BeginDataSegmentInitExpr(index)
}

func (l *LoggingReader) EndDataSegmentInitExpr(index uint32) error {
	l.log.Debug("end_data_segment_init_expr", zap.Uint32("index", index))
	return l.r.EndDataSegmentInitExpr(index)
}

func (l *LoggingReader) OnDataSegmentData(index uint32, data []byte) error {
	l.log.Debug("on_data_segment_data", zap.Uint32("index", index), zap.Int("size", len(data)))
	return l.r.OnDataSegmentData(index, data)
}

func (l *LoggingReader) EndDataSegment(index uint32) error {
	l.log.Debug("end_data_segment", zap.Uint32("index", index))
	return l.r.EndDataSegment(index)
}

func (l *LoggingReader) EndDataSection() error {
	l.log.Debug("end_data_section")
	return l.r.EndDataSection()
}

func (l *LoggingReader) OnModuleName(name string) error {
	l.log.Debug("on_module_name", zap.String("name", name))
	return l.r.OnModuleName(name)
}

func (l *LoggingReader) OnFunctionNamesCount(count uint32) error {
	l.log.Debug("on_function_names_count", zap.Uint32("count", count))
	return l.r.OnFunctionNamesCount(count)
}

func (l *LoggingReader) OnFunctionName(funcIndex uint32, name string) error {
	l.log.Debug("on_function_name", zap.Uint32("func_index", funcIndex), zap.String("name", name))
	return l.r.OnFunctionName(funcIndex, name)
}

func (l *LoggingReader) OnLocalNameFunctionCount(count uint32) error {
	l.log.Debug("on_local_name_function_count", zap.Uint32("count", count))
	return l.r.OnLocalNameFunctionCount(count)
}

func (l *LoggingReader) OnLocalNameLocalCount(funcIndex, count uint32) error {
	l.log.Debug("on_local_name_local_count", zap.Uint32("func_index", funcIndex),
		zap.Uint32("count", count))
	return l.r.OnLocalNameLocalCount(funcIndex, count)
}

func (l *LoggingReader) OnLocalName(funcIndex, localIndex uint32, name string) error {
	l.log.Debug("on_local_name", zap.Uint32("func_index", funcIndex),
		zap.Uint32("local_index", localIndex), zap.String("name", name))
	return l.r.OnLocalName(funcIndex, localIndex, name)
}

func (l *LoggingReader) OnRelocCount(count uint32, sectionID wasm.SectionID, name string) error {
	l.log.Debug("on_reloc_count", zap.Uint32("count", count),
		zap.String("section", wasm.SectionIDName(sectionID)), zap.String("name", name))
	return l.r.OnRelocCount(count, sectionID, name)
}

func (l *LoggingReader) OnReloc(relocType wasm.RelocType, offset uint32) error {
	l.log.Debug("on_reloc", zap.String("type", wasm.RelocTypeName(relocType)),
		zap.Uint32("offset", offset))
	return l.r.OnReloc(relocType, offset)
}

func (l *LoggingReader) OnOpcode(op wasm.Opcode) error {
	l.log.Debug("on_opcode", zap.String("name", wasm.InstructionName(op)))
	return l.r.OnOpcode(op)
}

func (l *LoggingReader) OnUnreachable() error {
	l.log.Debug("on_unreachable")
	return l.r.OnUnreachable()
}

func (l *LoggingReader) OnNop() error {
	l.log.Debug("on_nop")
	return l.r.OnNop()
}

func (l *LoggingReader) OnBlock(results []wasm.ValueType) error {
	l.log.Debug("on_block", zap.Int("num_results", len(results)))
	return l.r.OnBlock(results)
}

func (l *LoggingReader) OnLoop(results []wasm.ValueType) error {
	l.log.Debug("on_loop", zap.Int("num_results", len(results)))
	return l.r.OnLoop(results)
}

func (l *LoggingReader) OnIf(results []wasm.ValueType) error {
	l.log.Debug("on_if", zap.Int("num_results", len(results)))
	return l.r.OnIf(results)
}

func (l *LoggingReader) OnElse() error {
	l.log.Debug("on_else")
	return l.r.OnElse()
}

func (l *LoggingReader) OnEnd() error {
	l.log.Debug("on_end")
	return l.r.OnEnd()
}

func (l *LoggingReader) OnBr(depth uint32) error {
	l.log.Debug("on_br", zap.Uint32("depth", depth))
	return l.r.OnBr(depth)
}

func (l *LoggingReader) OnBrIf(depth uint32) error {
	l.log.Debug("on_br_if", zap.Uint32("depth", depth))
	return l.r.OnBrIf(depth)
}

func (l *LoggingReader) OnBrTable(targets []uint32, defaultTarget uint32) error {
	l.log.Debug("on_br_table", zap.Int("num_targets", len(targets)),
		zap.Uint32("default_target", defaultTarget))
	return l.r.OnBrTable(targets, defaultTarget)
}

func (l *LoggingReader) OnReturn() error {
	l.log.Debug("on_return")
	return l.r.OnReturn()
}

func (l *LoggingReader) OnCall(funcIndex uint32) error {
	l.log.Debug("on_call", zap.Uint32("func_index", funcIndex))
	return l.r.OnCall(funcIndex)
}

func (l *LoggingReader) OnCallIndirect(sigIndex uint32) error {
	l.log.Debug("on_call_indirect", zap.Uint32("sig_index", sigIndex))
	return l.r.OnCallIndirect(sigIndex)
}

func (l *LoggingReader) OnDrop() error {
	l.log.Debug("on_drop")
	return l.r.OnDrop()
}

func (l *LoggingReader) OnSelect() error {
	l.log.Debug("on_select")
	return l.r.OnSelect()
}

func (l *LoggingReader) OnLocalGet(index uint32) error {
	l.log.Debug("on_local_get", zap.Uint32("index", index))
	return l.r.OnLocalGet(index)
}

func (l *LoggingReader) OnLocalSet(index uint32) error {
	l.log.Debug("on_local_set", zap.Uint32("index", index))
	return l.r.OnLocalSet(index)
}

func (l *LoggingReader) OnLocalTee(index uint32) error {
	l.log.Debug("on_local_tee", zap.Uint32("index", index))
	return l.r.OnLocalTee(index)
}

func (l *LoggingReader) OnGlobalGet(index uint32) error {
	l.log.Debug("on_global_get", zap.Uint32("index", index))
	return l.r.OnGlobalGet(index)
}

func (l *LoggingReader) OnGlobalSet(index uint32) error {
	l.log.Debug("on_global_set", zap.Uint32("index", index))
	return l.r.OnGlobalSet(index)
}

func (l *LoggingReader) OnLoad(op wasm.Opcode, alignLog2, offset uint32) error {
	l.log.Debug("on_load", zap.String("name", wasm.InstructionName(op)),
		zap.Uint32("align_log2", alignLog2), zap.Uint32("offset", offset))
	return l.r.OnLoad(op, alignLog2, offset)
}

func (l *LoggingReader) OnStore(op wasm.Opcode, alignLog2, offset uint32) error {
	l.log.Debug("on_store", zap.String("name", wasm.InstructionName(op)),
		zap.Uint32("align_log2", alignLog2), zap.Uint32("offset", offset))
	return l.r.OnStore(op, alignLog2, offset)
}

func (l *LoggingReader) OnMemorySize() error {
	l.log.Debug("on_memory_size")
	return l.r.OnMemorySize()
}

func (l *LoggingReader) OnMemoryGrow() error {
	l.log.Debug("on_memory_grow")
	return l.r.OnMemoryGrow()
}

func (l *LoggingReader) OnI32Const(value int32) error {
	l.log.Debug("on_i32_const", zap.Int32("value", value))
	return l.r.OnI32Const(value)
}

func (l *LoggingReader) OnI64Const(value int64) error {
	l.log.Debug("on_i64_const", zap.Int64("value", value))
	return l.r.OnI64Const(value)
}

func (l *LoggingReader) OnF32Const(bits uint32) error {
	l.log.Debug("on_f32_const", zap.Uint32("bits", bits))
	return l.r.OnF32Const(bits)
}

func (l *LoggingReader) OnF64Const(bits uint64) error {
	l.log.Debug("on_f64_const", zap.Uint64("bits", bits))
	return l.r.OnF64Const(bits)
}

func (l *LoggingReader) OnUnary(op wasm.Opcode) error {
	l.log.Debug("on_unary", zap.String("name", wasm.InstructionName(op)))
	return l.r.OnUnary(op)
}

func (l *LoggingReader) OnBinary(op wasm.Opcode) error {
	l.log.Debug("on_binary", zap.String("name", wasm.InstructionName(op)))
	return l.r.OnBinary(op)
}

func (l *LoggingReader) OnCompare(op wasm.Opcode) error {
	l.log.Debug("on_compare", zap.String("name", wasm.InstructionName(op)))
	return l.r.OnCompare(op)
}

func (l *LoggingReader) OnConvert(op wasm.Opcode) error {
	l.log.Debug("on_convert", zap.String("name", wasm.InstructionName(op)))
	return l.r.OnConvert(op)
}

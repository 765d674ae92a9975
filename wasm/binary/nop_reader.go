package binary

import "github.com/wasmtools/wabin/wasm"

// NopReader implements Reader with every callback doing nothing. Embed it to
// override only the events a consumer needs.
type NopReader struct{}

var _ Reader = NopReader{}

func (NopReader) BeginModule(uint32) error { return nil }
func (NopReader) EndModule() error         { return nil }

func (NopReader) OnError(int, string) {}

func (NopReader) BeginCustomSection(uint32, string) error { return nil }
func (NopReader) OnCustomSectionData([]byte) error        { return nil }
func (NopReader) EndCustomSection() error                 { return nil }

func (NopReader) BeginTypeSection(uint32) error                           { return nil }
func (NopReader) OnTypeCount(uint32) error                                { return nil }
func (NopReader) OnType(uint32, []wasm.ValueType, []wasm.ValueType) error { return nil }
func (NopReader) EndTypeSection() error                                   { return nil }

func (NopReader) BeginImportSection(uint32) error                           { return nil }
func (NopReader) OnImportCount(uint32) error                                { return nil }
func (NopReader) OnImport(uint32, string, string) error                     { return nil }
func (NopReader) OnImportFunc(uint32, uint32, uint32) error                 { return nil }
func (NopReader) OnImportTable(uint32, uint32, byte, *wasm.Limits) error    { return nil }
func (NopReader) OnImportMemory(uint32, uint32, *wasm.Limits) error         { return nil }
func (NopReader) OnImportGlobal(uint32, uint32, wasm.ValueType, bool) error { return nil }
func (NopReader) EndImportSection() error                                   { return nil }

func (NopReader) BeginFunctionSection(uint32) error { return nil }
func (NopReader) OnFunctionCount(uint32) error      { return nil }
func (NopReader) OnFunction(uint32, uint32) error   { return nil }
func (NopReader) EndFunctionSection() error         { return nil }

func (NopReader) BeginTableSection(uint32) error           { return nil }
func (NopReader) OnTableCount(uint32) error                { return nil }
func (NopReader) OnTable(uint32, byte, *wasm.Limits) error { return nil }
func (NopReader) EndTableSection() error                   { return nil }

func (NopReader) BeginMemorySection(uint32) error     { return nil }
func (NopReader) OnMemoryCount(uint32) error          { return nil }
func (NopReader) OnMemory(uint32, *wasm.Limits) error { return nil }
func (NopReader) EndMemorySection() error             { return nil }

func (NopReader) BeginGlobalSection(uint32) error                { return nil }
func (NopReader) OnGlobalCount(uint32) error                     { return nil }
func (NopReader) BeginGlobal(uint32, wasm.ValueType, bool) error { return nil }
func (NopReader) BeginGlobalInitExpr(uint32) error               { return nil }
func (NopReader) EndGlobalInitExpr(uint32) error                 { return nil }
func (NopReader) EndGlobal(uint32) error                         { return nil }
func (NopReader) EndGlobalSection() error                        { return nil }

func (NopReader) OnInitExprI32Const(uint32, int32) error   { return nil }
func (NopReader) OnInitExprI64Const(uint32, int64) error   { return nil }
func (NopReader) OnInitExprF32Const(uint32, uint32) error  { return nil }
func (NopReader) OnInitExprF64Const(uint32, uint64) error  { return nil }
func (NopReader) OnInitExprGlobalGet(uint32, uint32) error { return nil }

func (NopReader) BeginExportSection(uint32) error                          { return nil }
func (NopReader) OnExportCount(uint32) error                               { return nil }
func (NopReader) OnExport(uint32, wasm.ExternalKind, uint32, string) error { return nil }
func (NopReader) EndExportSection() error                                  { return nil }

func (NopReader) BeginStartSection(uint32) error { return nil }
func (NopReader) OnStartFunction(uint32) error   { return nil }
func (NopReader) EndStartSection() error         { return nil }

func (NopReader) BeginElementSection(uint32) error                        { return nil }
func (NopReader) OnElementSegmentCount(uint32) error                      { return nil }
func (NopReader) BeginElementSegment(uint32, uint32) error                { return nil }
func (NopReader) BeginElementSegmentInitExpr(uint32) error                { return nil }
func (NopReader) EndElementSegmentInitExpr(uint32) error                  { return nil }
func (NopReader) OnElementSegmentFunctionIndexCount(uint32, uint32) error { return nil }
func (NopReader) OnElementSegmentFunctionIndex(uint32, uint32) error      { return nil }
func (NopReader) EndElementSegment(uint32) error                          { return nil }
func (NopReader) EndElementSection() error                                { return nil }

func (NopReader) BeginCodeSection(uint32) error                    { return nil }
func (NopReader) OnFunctionBodyCount(uint32) error                 { return nil }
func (NopReader) BeginFunctionBody(uint32) error                   { return nil }
func (NopReader) OnLocalDeclCount(uint32) error                    { return nil }
func (NopReader) OnLocalDecl(uint32, uint32, wasm.ValueType) error { return nil }
func (NopReader) EndFunctionBody(uint32) error                     { return nil }
func (NopReader) EndCodeSection() error                            { return nil }

func (NopReader) BeginDataSection(uint32) error          { return nil }
func (NopReader) OnDataSegmentCount(uint32) error        { return nil }
func (NopReader) BeginDataSegment(uint32, uint32) error  { return nil }
func (NopReader) BeginDataSegmentInitExpr(uint32) error  { return nil }
func (NopReader) EndDataSegmentInitExpr(uint32) error    { return nil }
func (NopReader) OnDataSegmentData(uint32, []byte) error { return nil }
func (NopReader) EndDataSegment(uint32) error            { return nil }
func (NopReader) EndDataSection() error                  { return nil }

func (NopReader) OnModuleName(string) error                  { return nil }
func (NopReader) OnFunctionNamesCount(uint32) error          { return nil }
func (NopReader) OnFunctionName(uint32, string) error        { return nil }
func (NopReader) OnLocalNameFunctionCount(uint32) error      { return nil }
func (NopReader) OnLocalNameLocalCount(uint32, uint32) error { return nil }
func (NopReader) OnLocalName(uint32, uint32, string) error   { return nil }

func (NopReader) OnRelocCount(uint32, wasm.SectionID, string) error { return nil }
func (NopReader) OnReloc(wasm.RelocType, uint32) error              { return nil }

func (NopReader) OnOpcode(wasm.Opcode) error { return nil }

func (NopReader) OnUnreachable() error             { return nil }
func (NopReader) OnNop() error                     { return nil }
func (NopReader) OnBlock([]wasm.ValueType) error   { return nil }
func (NopReader) OnLoop([]wasm.ValueType) error    { return nil }
func (NopReader) OnIf([]wasm.ValueType) error      { return nil }
func (NopReader) OnElse() error                    { return nil }
func (NopReader) OnEnd() error                     { return nil }
func (NopReader) OnBr(uint32) error                { return nil }
func (NopReader) OnBrIf(uint32) error              { return nil }
func (NopReader) OnBrTable([]uint32, uint32) error { return nil }
func (NopReader) OnReturn() error                  { return nil }
func (NopReader) OnCall(uint32) error              { return nil }
func (NopReader) OnCallIndirect(uint32) error      { return nil }

func (NopReader) OnDrop() error   { return nil }
func (NopReader) OnSelect() error { return nil }

func (NopReader) OnLocalGet(uint32) error  { return nil }
func (NopReader) OnLocalSet(uint32) error  { return nil }
func (NopReader) OnLocalTee(uint32) error  { return nil }
func (NopReader) OnGlobalGet(uint32) error { return nil }
func (NopReader) OnGlobalSet(uint32) error { return nil }

func (NopReader) OnLoad(wasm.Opcode, uint32, uint32) error  { return nil }
func (NopReader) OnStore(wasm.Opcode, uint32, uint32) error { return nil }
func (NopReader) OnMemorySize() error                       { return nil }
func (NopReader) OnMemoryGrow() error                       { return nil }

func (NopReader) OnI32Const(int32) error  { return nil }
func (NopReader) OnI64Const(int64) error  { return nil }
func (NopReader) OnF32Const(uint32) error { return nil }
func (NopReader) OnF64Const(uint64) error { return nil }

func (NopReader) OnUnary(wasm.Opcode) error   { return nil }
func (NopReader) OnBinary(wasm.Opcode) error  { return nil }
func (NopReader) OnCompare(wasm.Opcode) error { return nil }
func (NopReader) OnConvert(wasm.Opcode) error { return nil }

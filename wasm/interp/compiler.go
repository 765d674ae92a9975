package interp

import (
	"encoding/binary"
	"fmt"

	wasmbinary "github.com/wasmtools/wabin/wasm/binary"

	"github.com/wasmtools/wabin/wasm"
)

type labelKind int

const (
	labelFunc labelKind = iota
	labelBlock
	labelLoop
	labelIf
	labelElse
)

// label is the record of one open structured-control construct. Branch
// operands that cannot be resolved yet are parked in fixups and patched with
// the emission offset when the construct's end is reached.
type label struct {
	kind    labelKind
	results []wasm.ValueType
	// base is the operand stack height at entry. Pops never cross it.
	base int
	// target is the branch destination, known immediately for loops and -1
	// until end for everything else.
	target int
	// fixup is the pending BrUnless operand of an if, -1 when absent.
	fixup  int
	fixups []int
	// polymorphic marks the remainder of this construct unreachable; its
	// operand stack then unifies with anything.
	polymorphic bool
}

// Compiler is a binary.Reader that translates function bodies into threaded
// code as they are decoded. One Compiler compiles one module.
type Compiler struct {
	wasmbinary.NopReader

	sigs      []*wasm.FunctionType
	imports   []*Import
	funcs     []*Func
	compiled  []bool
	globals   []*Global
	exports   []*wasm.Export
	start     *uint32
	funcTable []uint32
	hasTable  bool
	memPages  uint32
	memory    []byte

	istream    []byte
	funcFixups map[uint32][]int

	pendingImportModule string
	pendingImportName   string

	// constant-expression evaluation state for global initializers and
	// element/data segment offsets
	initMode  initMode
	initType  wasm.ValueType
	initValue uint64
	elemPos   int

	// per-body compile state
	funcIndex uint32
	sig       *wasm.FunctionType
	numParams int
	numLocals int
	declCount uint32
	declSeen  uint32
	stack     []wasm.ValueType
	labels    []*label

	finalExports []*Export
	startOffset  *uint32
}

var _ wasmbinary.Reader = (*Compiler)(nil)

// initMode says which construct the current constant expression initializes.
type initMode int

const (
	initNone initMode = iota
	initGlobal
	initElemOffset
	initDataOffset
)

// CompileError reports a semantically invalid function body. FuncIndex is the
// module-wide index of the function being compiled.
type CompileError struct {
	FuncIndex uint32
	Err       error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("function %d: %v", e.FuncIndex, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

func NewCompiler() *Compiler {
	return &Compiler{funcFixups: map[uint32][]int{}}
}

// Compile decodes data and compiles every function body, returning the
// threaded-code module.
func Compile(data []byte, opts wasmbinary.DecodeOptions) (*Module, error) {
	c := NewCompiler()
	if err := wasmbinary.DecodeModule(data, c, opts); err != nil {
		return nil, err
	}
	return c.Module(), nil
}

// Module returns the compiled module. Only meaningful after a successful
// DecodeModule call with this Compiler as the Reader.
func (c *Compiler) Module() *Module {
	return &Module{
		Istream:     c.istream,
		Sigs:        c.sigs,
		Imports:     c.imports,
		Funcs:       c.funcs,
		Exports:     c.finalExports,
		StartOffset: c.startOffset,
		Globals:     c.globals,
		FuncTable:   c.funcTable,
		Memory:      c.memory,
	}
}

func (c *Compiler) errf(format string, args ...interface{}) error {
	return &CompileError{
		FuncIndex: uint32(len(c.imports)) + c.funcIndex,
		Err:       fmt.Errorf(format, args...),
	}
}

// emission helpers

func (c *Compiler) pos() int { return len(c.istream) }

func (c *Compiler) emitOp(op wasm.Opcode) { c.istream = append(c.istream, op) }

func (c *Compiler) emitByte(b byte) { c.istream = append(c.istream, b) }

func (c *Compiler) emitU32(v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	c.istream = append(c.istream, buf[:]...)
}

func (c *Compiler) emitU64(v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	c.istream = append(c.istream, buf[:]...)
}

func (c *Compiler) patchU32(offset int, v uint32) {
	binary.LittleEndian.PutUint32(c.istream[offset:], v)
}

// type stack helpers

func unifies(expected, actual wasm.ValueType) bool {
	return expected == typeAny || actual == typeAny || expected == actual
}

func (c *Compiler) topLabel() *label { return c.labels[len(c.labels)-1] }

func (c *Compiler) pushType(t wasm.ValueType) { c.stack = append(c.stack, t) }

// popType pops one operand and checks it against expected. At the current
// label's base a polymorphic frame yields typeAny, anything else is a type
// stack underflow.
func (c *Compiler) popType(expected wasm.ValueType) (wasm.ValueType, error) {
	top := c.topLabel()
	if len(c.stack) == top.base {
		if top.polymorphic {
			return typeAny, nil
		}
		return 0, c.errf("type stack underflow (expected %s)", typeName(expected))
	}
	actual := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	if !unifies(expected, actual) {
		return 0, c.errf("type mismatch: expected %s, got %s", typeName(expected), typeName(actual))
	}
	return actual, nil
}

// peekType checks the topmost operand against expected without popping it.
func (c *Compiler) peekType(expected wasm.ValueType) error {
	top := c.topLabel()
	if len(c.stack) == top.base {
		if top.polymorphic {
			return nil
		}
		return c.errf("type stack underflow (expected %s)", typeName(expected))
	}
	actual := c.stack[len(c.stack)-1]
	if !unifies(expected, actual) {
		return c.errf("type mismatch: expected %s, got %s", typeName(expected), typeName(actual))
	}
	return nil
}

func typeName(t wasm.ValueType) string {
	if t == typeAny {
		return "any"
	}
	return wasm.ValueTypeName(t)
}

// setUnreachable marks the rest of the current construct stack-polymorphic
// after an unconditional transfer.
func (c *Compiler) setUnreachable() {
	top := c.topLabel()
	top.polymorphic = true
	c.stack = c.stack[:top.base]
}

// checkLabelResults validates the operand stack against a label's declared
// results: exactly the results above the base, unifying per slot. Skipped for
// polymorphic frames, whose stack never materialized.
func (c *Compiler) checkLabelResults(l *label) error {
	if l.polymorphic {
		return nil
	}
	want := l.base + len(l.results)
	if len(c.stack) < want {
		return c.errf("type stack underflow: expected %d result(s)", len(l.results))
	}
	if len(c.stack) > want {
		return c.errf("arity mismatch: %d value(s) left on stack", len(c.stack)-want)
	}
	for i, r := range l.results {
		if !unifies(r, c.stack[l.base+i]) {
			return c.errf("type mismatch: expected %s, got %s", typeName(r), typeName(c.stack[l.base+i]))
		}
	}
	return nil
}

// module-shape events

func (c *Compiler) OnType(index uint32, params, results []wasm.ValueType) error {
	c.sigs = append(c.sigs, &wasm.FunctionType{Params: params, Results: results})
	return nil
}

func (c *Compiler) OnImport(index uint32, module, name string) error {
	c.pendingImportModule, c.pendingImportName = module, name
	return nil
}

func (c *Compiler) OnImportFunc(importIndex, funcIndex, sigIndex uint32) error {
	c.imports = append(c.imports, &Import{
		Module:   c.pendingImportModule,
		Name:     c.pendingImportName,
		SigIndex: sigIndex,
	})
	return nil
}

func (c *Compiler) OnImportTable(importIndex, tableIndex uint32, elemType byte, limits *wasm.Limits) error {
	c.allocFuncTable(limits)
	return nil
}

func (c *Compiler) OnImportMemory(importIndex, memoryIndex uint32, limits *wasm.Limits) error {
	c.memPages = limits.Min
	return nil
}

func (c *Compiler) OnImportGlobal(importIndex, globalIndex uint32, valType wasm.ValueType, mutable bool) error {
	c.globals = append(c.globals, &Global{Type: valType, Mutable: mutable})
	return nil
}

func (c *Compiler) OnFunction(index, sigIndex uint32) error {
	c.funcs = append(c.funcs, &Func{SigIndex: sigIndex})
	c.compiled = append(c.compiled, false)
	return nil
}

func (c *Compiler) OnTable(index uint32, elemType byte, limits *wasm.Limits) error {
	c.allocFuncTable(limits)
	return nil
}

func (c *Compiler) OnMemory(index uint32, limits *wasm.Limits) error {
	c.memPages = limits.Min
	return nil
}

func (c *Compiler) allocFuncTable(limits *wasm.Limits) {
	c.hasTable = true
	c.funcTable = make([]uint32, limits.Min)
	for i := range c.funcTable {
		c.funcTable[i] = UnsetFuncTableEntry
	}
}

func (c *Compiler) BeginGlobal(index uint32, valType wasm.ValueType, mutable bool) error {
	c.globals = append(c.globals, &Global{Type: valType, Mutable: mutable})
	return nil
}

func (c *Compiler) OnExport(index uint32, kind wasm.ExternalKind, itemIndex uint32, name string) error {
	c.exports = append(c.exports, &wasm.Export{Name: name, Kind: kind, Index: itemIndex})
	return nil
}

func (c *Compiler) OnStartFunction(funcIndex uint32) error {
	c.start = &funcIndex
	return nil
}

// constant expressions and segments

func (c *Compiler) onInitExprConst(t wasm.ValueType, bits uint64) error {
	c.initType, c.initValue = t, bits
	return nil
}

func (c *Compiler) OnInitExprI32Const(index uint32, value int32) error {
	return c.onInitExprConst(wasm.ValueTypeI32, uint64(uint32(value)))
}

func (c *Compiler) OnInitExprI64Const(index uint32, value int64) error {
	return c.onInitExprConst(wasm.ValueTypeI64, uint64(value))
}

func (c *Compiler) OnInitExprF32Const(index uint32, bits uint32) error {
	return c.onInitExprConst(wasm.ValueTypeF32, uint64(bits))
}

func (c *Compiler) OnInitExprF64Const(index uint32, bits uint64) error {
	return c.onInitExprConst(wasm.ValueTypeF64, bits)
}

func (c *Compiler) OnInitExprGlobalGet(index, globalIndex uint32) error {
	limit := len(c.globals)
	if c.initMode == initGlobal {
		// The global being defined is already appended; it cannot
		// reference itself or anything later.
		limit--
	}
	if int(globalIndex) >= limit {
		return fmt.Errorf("initializer expression can only reference a previously defined global: %d", globalIndex)
	}
	g := c.globals[globalIndex]
	if g.Mutable {
		return fmt.Errorf("initializer expression cannot reference a mutable global: %d", globalIndex)
	}
	return c.onInitExprConst(g.Type, g.Value)
}

func (c *Compiler) BeginGlobalInitExpr(index uint32) error {
	c.initMode = initGlobal
	return nil
}

func (c *Compiler) EndGlobalInitExpr(index uint32) error {
	c.initMode = initNone
	g := c.globals[len(c.globals)-1]
	if c.initType != g.Type {
		return fmt.Errorf("type mismatch in global initializer: expected %s, got %s",
			wasm.ValueTypeName(g.Type), wasm.ValueTypeName(c.initType))
	}
	g.Value = c.initValue
	return nil
}

func (c *Compiler) BeginElementSegmentInitExpr(index uint32) error {
	c.initMode = initElemOffset
	return nil
}

func (c *Compiler) EndElementSegmentInitExpr(index uint32) error {
	c.initMode = initNone
	if c.initType != wasm.ValueTypeI32 {
		return fmt.Errorf("type mismatch in element segment offset: expected i32, got %s",
			wasm.ValueTypeName(c.initType))
	}
	c.elemPos = int(uint32(c.initValue))
	return nil
}

func (c *Compiler) OnElementSegmentFunctionIndex(index, funcIndex uint32) error {
	if c.elemPos >= len(c.funcTable) {
		return fmt.Errorf("element segment is out of bounds: %d >= table size %d",
			c.elemPos, len(c.funcTable))
	}
	c.funcTable[c.elemPos] = funcIndex
	c.elemPos++
	return nil
}

func (c *Compiler) BeginDataSegmentInitExpr(index uint32) error {
	c.initMode = initDataOffset
	return nil
}

func (c *Compiler) EndDataSegmentInitExpr(index uint32) error {
	c.initMode = initNone
	if c.initType != wasm.ValueTypeI32 {
		return fmt.Errorf("type mismatch in data segment offset: expected i32, got %s",
			wasm.ValueTypeName(c.initType))
	}
	return nil
}

func (c *Compiler) OnDataSegmentData(index uint32, data []byte) error {
	if c.memory == nil {
		c.memory = make([]byte, int64(c.memPages)*wasm.MemoryPageSize)
	}
	offset := int64(uint32(c.initValue))
	if offset+int64(len(data)) > int64(len(c.memory)) {
		return fmt.Errorf("data segment is out of bounds: [%d, %d) exceeds memory size %d",
			offset, offset+int64(len(data)), len(c.memory))
	}
	copy(c.memory[offset:], data)
	return nil
}

// function bodies

func (c *Compiler) BeginFunctionBody(index uint32) error {
	fn := c.funcs[index]
	fn.Offset = uint32(c.pos())
	c.compiled[index] = true
	for _, slot := range c.funcFixups[index] {
		c.patchU32(slot, fn.Offset)
	}
	delete(c.funcFixups, index)

	c.funcIndex = index
	c.sig = c.sigs[fn.SigIndex]
	c.numParams = len(c.sig.Params)
	c.numLocals = 0
	c.declCount, c.declSeen = 0, 0
	c.stack = append(c.stack[:0], c.sig.Params...)
	c.labels = []*label{{
		kind:    labelFunc,
		results: c.sig.Results,
		base:    c.numParams,
		target:  -1,
		fixup:   -1,
	}}
	return nil
}

func (c *Compiler) OnLocalDeclCount(count uint32) error {
	c.declCount = count
	return nil
}

func (c *Compiler) OnLocalDecl(declIndex, count uint32, valType wasm.ValueType) error {
	for i := uint32(0); i < count; i++ {
		c.pushType(valType)
	}
	c.numLocals += int(count)
	c.declSeen++
	if c.declSeen == c.declCount {
		// Locals live below the operand base, so branches and returns
		// never drop them; the frame teardown does.
		if c.numLocals > 0 {
			c.emitOp(OpcodeAlloca)
			c.emitU32(uint32(c.numLocals))
		}
		c.labels[0].base = c.numParams + c.numLocals
	}
	return nil
}

func (c *Compiler) EndFunctionBody(index uint32) error {
	if len(c.labels) != 1 {
		return c.errf("%d unclosed block(s) at end of function body", len(c.labels)-1)
	}
	l := c.labels[0]
	if err := c.checkLabelResults(l); err != nil {
		return err
	}
	for _, f := range l.fixups {
		c.patchU32(f, uint32(c.pos()))
	}
	c.emitOp(wasm.OpcodeReturn)
	c.labels = nil
	return nil
}

func (c *Compiler) EndCodeSection() error {
	if len(c.funcFixups) != 0 {
		return fmt.Errorf("%d function(s) referenced but never compiled", len(c.funcFixups))
	}
	for _, ex := range c.exports {
		if ex.Kind != wasm.ExternalKindFunc {
			continue
		}
		if ex.Index < uint32(len(c.imports)) {
			// An exported import has no code offset; the embedder
			// resolves it through the import table instead.
			continue
		}
		c.finalExports = append(c.finalExports, &Export{
			Name:   ex.Name,
			Offset: c.funcs[ex.Index-uint32(len(c.imports))].Offset,
		})
	}
	if c.start != nil {
		if *c.start < uint32(len(c.imports)) {
			return fmt.Errorf("start function %d must not be an import", *c.start)
		}
		offset := c.funcs[*c.start-uint32(len(c.imports))].Offset
		c.startOffset = &offset
	}
	return nil
}

// structured control flow

func (c *Compiler) OnBlock(results []wasm.ValueType) error {
	c.labels = append(c.labels, &label{
		kind: labelBlock, results: results, base: len(c.stack), target: -1, fixup: -1,
	})
	return nil
}

func (c *Compiler) OnLoop(results []wasm.ValueType) error {
	// Loops branch backward to their own header, so the target is known
	// up front.
	c.labels = append(c.labels, &label{
		kind: labelLoop, results: results, base: len(c.stack), target: c.pos(), fixup: -1,
	})
	return nil
}

func (c *Compiler) OnIf(results []wasm.ValueType) error {
	if _, err := c.popType(wasm.ValueTypeI32); err != nil {
		return err
	}
	c.emitOp(OpcodeBrUnless)
	fixup := c.pos()
	c.emitU32(0)
	c.labels = append(c.labels, &label{
		kind: labelIf, results: results, base: len(c.stack), target: -1, fixup: fixup,
	})
	return nil
}

func (c *Compiler) OnElse() error {
	l := c.topLabel()
	if l.kind != labelIf {
		return c.errf("unexpected ELSE opcode")
	}
	if err := c.checkLabelResults(l); err != nil {
		return err
	}
	// Jump past the else arm; the if's conditional skip lands on it.
	c.emitOp(wasm.OpcodeBr)
	l.fixups = append(l.fixups, c.pos())
	c.emitU32(0)
	c.patchU32(l.fixup, uint32(c.pos()))
	l.fixup = -1
	l.kind = labelElse
	c.stack = c.stack[:l.base]
	l.polymorphic = false
	return nil
}

func (c *Compiler) OnEnd() error {
	l := c.topLabel()
	if l.kind == labelFunc {
		return c.errf("unexpected END opcode")
	}
	if l.kind == labelIf && len(l.results) > 0 {
		return c.errf("if without else cannot have a result")
	}
	if err := c.checkLabelResults(l); err != nil {
		return err
	}
	if l.fixup >= 0 {
		c.patchU32(l.fixup, uint32(c.pos()))
	}
	for _, f := range l.fixups {
		c.patchU32(f, uint32(c.pos()))
	}
	c.labels = c.labels[:len(c.labels)-1]
	c.stack = c.stack[:l.base]
	c.stack = append(c.stack, l.results...)
	return nil
}

// branches

func (c *Compiler) brLabel(depth uint32) (*label, error) {
	if int(depth) >= len(c.labels) {
		return nil, c.errf("invalid branch depth: %d (max %d)", depth, len(c.labels)-1)
	}
	return c.labels[len(c.labels)-1-int(depth)], nil
}

// brKeep is the number of values a branch carries to l: its declared result
// count, except loops whose branch target is the header and takes none.
func brKeep(l *label) int {
	if l.kind == labelLoop {
		return 0
	}
	return len(l.results)
}

// checkBranchValue unifies the carried value against the target label's
// declared type without consuming it. The value stays for the fallthrough
// path of br_if.
func (c *Compiler) checkBranchValue(l *label, keep int) error {
	if keep == 1 {
		return c.peekType(l.results[0])
	}
	return nil
}

// branchDrop is how many slots below the kept values must be discarded to
// land on the target label's base.
func (c *Compiler) branchDrop(l *label, keep int) int {
	drop := len(c.stack) - l.base - keep
	if drop < 0 {
		// Only reachable in polymorphic frames whose stack was cut.
		drop = 0
	}
	return drop
}

func (c *Compiler) emitDropKeep(drop, keep int) {
	if drop == 0 {
		return
	}
	if drop == 1 && keep == 0 {
		c.emitOp(wasm.OpcodeDrop)
		return
	}
	c.emitOp(OpcodeDropKeep)
	c.emitU32(uint32(drop))
	c.emitByte(byte(keep))
}

// emitBrTarget writes a branch operand: the known target offset, or a zero
// placeholder registered for patching when the label ends.
func (c *Compiler) emitBrTarget(l *label) {
	if l.target >= 0 {
		c.emitU32(uint32(l.target))
		return
	}
	l.fixups = append(l.fixups, c.pos())
	c.emitU32(0)
}

func (c *Compiler) OnBr(depth uint32) error {
	l, err := c.brLabel(depth)
	if err != nil {
		return err
	}
	keep := brKeep(l)
	if err := c.checkBranchValue(l, keep); err != nil {
		return err
	}
	c.emitDropKeep(c.branchDrop(l, keep), keep)
	c.emitOp(wasm.OpcodeBr)
	c.emitBrTarget(l)
	c.setUnreachable()
	return nil
}

func (c *Compiler) OnBrIf(depth uint32) error {
	if _, err := c.popType(wasm.ValueTypeI32); err != nil {
		return err
	}
	l, err := c.brLabel(depth)
	if err != nil {
		return err
	}
	keep := brKeep(l)
	if err := c.checkBranchValue(l, keep); err != nil {
		return err
	}
	// The drop/keep and branch only run on the taken path; BrUnless skips
	// them so the fallthrough keeps its stack intact.
	c.emitOp(OpcodeBrUnless)
	fixup := c.pos()
	c.emitU32(0)
	c.emitDropKeep(c.branchDrop(l, keep), keep)
	c.emitOp(wasm.OpcodeBr)
	c.emitBrTarget(l)
	c.patchU32(fixup, uint32(c.pos()))
	return nil
}

// brTableEntrySize is the istream footprint of one br_table entry: a u32
// target offset, a u32 drop count and a u8 keep count.
const brTableEntrySize = 9

func (c *Compiler) OnBrTable(targets []uint32, defaultTarget uint32) error {
	if _, err := c.popType(wasm.ValueTypeI32); err != nil {
		return err
	}
	c.emitOp(wasm.OpcodeBrTable)
	c.emitU32(uint32(len(targets)))
	c.emitOp(OpcodeData)
	c.emitU32(uint32((len(targets) + 1) * brTableEntrySize))
	for _, depth := range append(append([]uint32{}, targets...), defaultTarget) {
		l, err := c.brLabel(depth)
		if err != nil {
			return err
		}
		keep := brKeep(l)
		if err := c.checkBranchValue(l, keep); err != nil {
			return err
		}
		c.emitBrTarget(l)
		c.emitU32(uint32(c.branchDrop(l, keep)))
		c.emitByte(byte(keep))
	}
	c.setUnreachable()
	return nil
}

func (c *Compiler) OnReturn() error {
	keep := len(c.sig.Results)
	if keep == 1 {
		if err := c.peekType(c.sig.Results[0]); err != nil {
			return err
		}
	}
	funcLabel := c.labels[0]
	drop := len(c.stack) - funcLabel.base - keep
	if drop < 0 {
		drop = 0
	}
	c.emitDropKeep(drop, keep)
	c.emitOp(wasm.OpcodeReturn)
	c.setUnreachable()
	return nil
}

func (c *Compiler) OnUnreachable() error {
	c.emitOp(wasm.OpcodeUnreachable)
	c.setUnreachable()
	return nil
}

func (c *Compiler) OnNop() error { return nil }

// calls

func (c *Compiler) applyCallSig(sig *wasm.FunctionType) error {
	for i := len(sig.Params) - 1; i >= 0; i-- {
		if _, err := c.popType(sig.Params[i]); err != nil {
			return err
		}
	}
	for _, r := range sig.Results {
		c.pushType(r)
	}
	return nil
}

func (c *Compiler) OnCall(funcIndex uint32) error {
	numImports := uint32(len(c.imports))
	if funcIndex < numImports {
		im := c.imports[funcIndex]
		if err := c.applyCallSig(c.sigs[im.SigIndex]); err != nil {
			return err
		}
		c.emitOp(OpcodeCallImport)
		c.emitU32(funcIndex)
		return nil
	}
	local := funcIndex - numImports
	fn := c.funcs[local]
	if err := c.applyCallSig(c.sigs[fn.SigIndex]); err != nil {
		return err
	}
	c.emitOp(wasm.OpcodeCall)
	if c.compiled[local] {
		c.emitU32(fn.Offset)
	} else {
		// Forward call: the target offset is patched when its body is
		// reached.
		c.funcFixups[local] = append(c.funcFixups[local], c.pos())
		c.emitU32(0)
	}
	return nil
}

func (c *Compiler) OnCallIndirect(sigIndex uint32) error {
	if !c.hasTable {
		return c.errf("found call_indirect operator, but no table")
	}
	if _, err := c.popType(wasm.ValueTypeI32); err != nil {
		return err
	}
	if err := c.applyCallSig(c.sigs[sigIndex]); err != nil {
		return err
	}
	c.emitOp(wasm.OpcodeCallIndirect)
	c.emitU32(sigIndex)
	return nil
}

// parametric and variable instructions

func (c *Compiler) OnDrop() error {
	if _, err := c.popType(typeAny); err != nil {
		return err
	}
	c.emitOp(wasm.OpcodeDrop)
	return nil
}

func (c *Compiler) OnSelect() error {
	if _, err := c.popType(wasm.ValueTypeI32); err != nil {
		return err
	}
	t1, err := c.popType(typeAny)
	if err != nil {
		return err
	}
	t2, err := c.popType(t1)
	if err != nil {
		return err
	}
	if t1 != typeAny {
		c.pushType(t1)
	} else {
		c.pushType(t2)
	}
	c.emitOp(wasm.OpcodeSelect)
	return nil
}

func (c *Compiler) checkLocalIndex(index uint32) error {
	if index >= uint32(c.numParams+c.numLocals) {
		return c.errf("invalid local index: %d (max %d)", index, c.numParams+c.numLocals-1)
	}
	return nil
}

func (c *Compiler) OnLocalGet(index uint32) error {
	if err := c.checkLocalIndex(index); err != nil {
		return err
	}
	c.pushType(c.stack[index])
	c.emitOp(wasm.OpcodeLocalGet)
	c.emitU32(index)
	return nil
}

func (c *Compiler) OnLocalSet(index uint32) error {
	if err := c.checkLocalIndex(index); err != nil {
		return err
	}
	if _, err := c.popType(c.stack[index]); err != nil {
		return err
	}
	c.emitOp(wasm.OpcodeLocalSet)
	c.emitU32(index)
	return nil
}

func (c *Compiler) OnLocalTee(index uint32) error {
	if err := c.checkLocalIndex(index); err != nil {
		return err
	}
	if err := c.peekType(c.stack[index]); err != nil {
		return err
	}
	c.emitOp(wasm.OpcodeLocalTee)
	c.emitU32(index)
	return nil
}

func (c *Compiler) OnGlobalGet(index uint32) error {
	c.pushType(c.globals[index].Type)
	c.emitOp(wasm.OpcodeGlobalGet)
	c.emitU32(index)
	return nil
}

func (c *Compiler) OnGlobalSet(index uint32) error {
	g := c.globals[index]
	if !g.Mutable {
		return c.errf("can't global.set on immutable global at index %d", index)
	}
	if _, err := c.popType(g.Type); err != nil {
		return err
	}
	c.emitOp(wasm.OpcodeGlobalSet)
	c.emitU32(index)
	return nil
}

// memory and numeric instructions

// applyOpcodeSig pops the opcode's statically-known operands and pushes its
// result, per the table in opcodes.go.
func (c *Compiler) applyOpcodeSig(op wasm.Opcode) error {
	sig := opcodeSigs[op]
	if sig == nil {
		return c.errf("unexpected opcode: %s", wasm.InstructionName(op))
	}
	for i := len(sig.params) - 1; i >= 0; i-- {
		if _, err := c.popType(sig.params[i]); err != nil {
			return err
		}
	}
	if sig.result != 0 {
		c.pushType(sig.result)
	}
	return nil
}

func (c *Compiler) OnLoad(op wasm.Opcode, alignLog2, offset uint32) error {
	if err := c.applyOpcodeSig(op); err != nil {
		return err
	}
	// Alignment is a hint with no semantic effect; only the offset is kept.
	c.emitOp(op)
	c.emitU32(offset)
	return nil
}

func (c *Compiler) OnStore(op wasm.Opcode, alignLog2, offset uint32) error {
	if err := c.applyOpcodeSig(op); err != nil {
		return err
	}
	c.emitOp(op)
	c.emitU32(offset)
	return nil
}

func (c *Compiler) OnMemorySize() error {
	if err := c.applyOpcodeSig(wasm.OpcodeMemorySize); err != nil {
		return err
	}
	c.emitOp(wasm.OpcodeMemorySize)
	return nil
}

func (c *Compiler) OnMemoryGrow() error {
	if err := c.applyOpcodeSig(wasm.OpcodeMemoryGrow); err != nil {
		return err
	}
	c.emitOp(wasm.OpcodeMemoryGrow)
	return nil
}

func (c *Compiler) OnI32Const(value int32) error {
	c.pushType(wasm.ValueTypeI32)
	c.emitOp(wasm.OpcodeI32Const)
	c.emitU32(uint32(value))
	return nil
}

func (c *Compiler) OnI64Const(value int64) error {
	c.pushType(wasm.ValueTypeI64)
	c.emitOp(wasm.OpcodeI64Const)
	c.emitU64(uint64(value))
	return nil
}

func (c *Compiler) OnF32Const(bits uint32) error {
	c.pushType(wasm.ValueTypeF32)
	c.emitOp(wasm.OpcodeF32Const)
	c.emitU32(bits)
	return nil
}

func (c *Compiler) OnF64Const(bits uint64) error {
	c.pushType(wasm.ValueTypeF64)
	c.emitOp(wasm.OpcodeF64Const)
	c.emitU64(bits)
	return nil
}

func (c *Compiler) OnUnary(op wasm.Opcode) error {
	if err := c.applyOpcodeSig(op); err != nil {
		return err
	}
	c.emitOp(op)
	return nil
}

func (c *Compiler) OnBinary(op wasm.Opcode) error {
	if err := c.applyOpcodeSig(op); err != nil {
		return err
	}
	c.emitOp(op)
	return nil
}

func (c *Compiler) OnCompare(op wasm.Opcode) error {
	if err := c.applyOpcodeSig(op); err != nil {
		return err
	}
	c.emitOp(op)
	return nil
}

func (c *Compiler) OnConvert(op wasm.Opcode) error {
	if err := c.applyOpcodeSig(op); err != nil {
		return err
	}
	c.emitOp(op)
	return nil
}

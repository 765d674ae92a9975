package binary

import (
	"sort"

	"github.com/wasmtools/wabin/wasm"
	"github.com/wasmtools/wabin/wasm/leb128"
)

// encoder appends the binary form of a module to buf. Section and body sizes
// are not known until their payload is written, so each size is reserved as a
// fixed 5-byte varint slot, patched once the payload ends, and compressed to
// its canonical length in a final pass.
type encoder struct {
	buf   []byte
	slots []sizeSlot
	open  []int
}

type sizeSlot struct {
	offset int
	value  uint32
}

// EncodeModule encodes m in the binary format. Known sections are written in
// ID order; relocation, unrecognized custom and name sections follow, the
// name section last.
func EncodeModule(m *wasm.Module) []byte {
	e := &encoder{}
	e.raw(wasm.Magic)
	e.raw(wasm.Version)

	if m.TypeSection != nil {
		e.beginSection(wasm.SectionIDType)
		e.u32(uint32(len(m.TypeSection)))
		for _, t := range m.TypeSection {
			e.byte(wasm.FunctionTypeForm)
			e.u32(uint32(len(t.Params)))
			e.raw(t.Params)
			e.u32(uint32(len(t.Results)))
			e.raw(t.Results)
		}
		e.endSection()
	}
	if m.ImportSection != nil {
		e.beginSection(wasm.SectionIDImport)
		e.u32(uint32(len(m.ImportSection)))
		for _, im := range m.ImportSection {
			e.str(im.Module)
			e.str(im.Name)
			e.byte(im.Kind)
			switch im.Kind {
			case wasm.ExternalKindFunc:
				e.u32(im.DescFunc)
			case wasm.ExternalKindTable:
				e.byte(im.DescTable.ElemType)
				e.limits(&im.DescTable.Limits)
			case wasm.ExternalKindMemory:
				e.limits(&im.DescMem.Limits)
			case wasm.ExternalKindGlobal:
				e.globalType(im.DescGlobal)
			}
		}
		e.endSection()
	}
	if m.FunctionSection != nil {
		e.beginSection(wasm.SectionIDFunction)
		e.u32(uint32(len(m.FunctionSection)))
		for _, sigIndex := range m.FunctionSection {
			e.u32(sigIndex)
		}
		e.endSection()
	}
	if m.TableSection != nil {
		e.beginSection(wasm.SectionIDTable)
		e.u32(uint32(len(m.TableSection)))
		for _, t := range m.TableSection {
			e.byte(t.ElemType)
			e.limits(&t.Limits)
		}
		e.endSection()
	}
	if m.MemorySection != nil {
		e.beginSection(wasm.SectionIDMemory)
		e.u32(uint32(len(m.MemorySection)))
		for _, mem := range m.MemorySection {
			e.limits(&mem.Limits)
		}
		e.endSection()
	}
	if m.GlobalSection != nil {
		e.beginSection(wasm.SectionIDGlobal)
		e.u32(uint32(len(m.GlobalSection)))
		for _, g := range m.GlobalSection {
			e.globalType(g.Type)
			e.initExpr(g.Init)
		}
		e.endSection()
	}
	if m.ExportSection != nil {
		e.beginSection(wasm.SectionIDExport)
		e.u32(uint32(len(m.ExportSection)))
		for _, ex := range m.ExportSection {
			e.str(ex.Name)
			e.byte(ex.Kind)
			e.u32(ex.Index)
		}
		e.endSection()
	}
	if m.StartSection != nil {
		e.beginSection(wasm.SectionIDStart)
		e.u32(*m.StartSection)
		e.endSection()
	}
	if m.ElementSection != nil {
		e.beginSection(wasm.SectionIDElement)
		e.u32(uint32(len(m.ElementSection)))
		for _, seg := range m.ElementSection {
			e.u32(seg.TableIndex)
			e.initExpr(seg.Offset)
			e.u32(uint32(len(seg.Init)))
			for _, funcIndex := range seg.Init {
				e.u32(funcIndex)
			}
		}
		e.endSection()
	}
	if m.CodeSection != nil {
		e.beginSection(wasm.SectionIDCode)
		e.u32(uint32(len(m.CodeSection)))
		for _, code := range m.CodeSection {
			e.beginSizeSlot()
			e.localDecls(code.LocalTypes)
			e.raw(code.Body)
			e.endSizeSlot()
		}
		e.endSection()
	}
	if m.DataSection != nil {
		e.beginSection(wasm.SectionIDData)
		e.u32(uint32(len(m.DataSection)))
		for _, seg := range m.DataSection {
			e.u32(seg.MemoryIndex)
			e.initExpr(seg.Offset)
			e.u32(uint32(len(seg.Init)))
			e.raw(seg.Init)
		}
		e.endSection()
	}
	for _, r := range m.Relocations {
		e.beginSection(wasm.SectionIDCustom)
		e.str(r.Name)
		e.u32(uint32(r.SectionID))
		e.u32(uint32(len(r.Entries)))
		for _, entry := range r.Entries {
			e.u32(entry.Type)
			e.u32(entry.Offset)
		}
		e.endSection()
	}
	for _, s := range m.CustomSections {
		e.beginSection(wasm.SectionIDCustom)
		e.str(s.Name)
		e.raw(s.Data)
		e.endSection()
	}
	if m.NameSection != nil {
		e.encodeNameSection(m.NameSection)
	}
	return e.canonicalize()
}

func (e *encoder) encodeNameSection(ns *wasm.NameSection) {
	e.beginSection(wasm.SectionIDCustom)
	e.str(NameSectionName)
	if ns.ModuleName != "" {
		e.byte(wasm.NameSubsectionModule)
		e.beginSizeSlot()
		e.str(ns.ModuleName)
		e.endSizeSlot()
	}
	if ns.FunctionNames != nil {
		e.byte(wasm.NameSubsectionFunctions)
		e.beginSizeSlot()
		e.u32(uint32(len(ns.FunctionNames)))
		for _, na := range ns.FunctionNames {
			e.u32(na.Index)
			e.str(na.Name)
		}
		e.endSizeSlot()
	}
	if ns.LocalNames != nil {
		e.byte(wasm.NameSubsectionLocals)
		e.beginSizeSlot()
		e.u32(uint32(len(ns.LocalNames)))
		for _, ina := range ns.LocalNames {
			e.u32(ina.Index)
			e.u32(uint32(len(ina.NameMap)))
			for _, na := range ina.NameMap {
				e.u32(na.Index)
				e.str(na.Name)
			}
		}
		e.endSizeSlot()
	}
	e.endSection()
}

func (e *encoder) raw(b []byte) { e.buf = append(e.buf, b...) }
func (e *encoder) byte(b byte)  { e.buf = append(e.buf, b) }
func (e *encoder) u32(v uint32) { e.buf = append(e.buf, leb128.EncodeUint32(v)...) }

func (e *encoder) str(s string) {
	e.u32(uint32(len(s)))
	e.buf = append(e.buf, s...)
}

func (e *encoder) limits(l *wasm.Limits) {
	if l.Max != nil {
		e.byte(wasm.LimitsHasMaxFlag)
		e.u32(l.Min)
		e.u32(*l.Max)
	} else {
		e.byte(0)
		e.u32(l.Min)
	}
}

func (e *encoder) globalType(t *wasm.GlobalType) {
	e.byte(t.ValType)
	if t.Mutable {
		e.byte(1)
	} else {
		e.byte(0)
	}
}

func (e *encoder) initExpr(expr *wasm.InitExpr) {
	e.byte(expr.Opcode)
	e.raw(expr.Data)
	e.byte(wasm.OpcodeEnd)
}

// localDecls writes the run-length encoded local declarations: consecutive
// locals of the same type collapse into one (count, type) group.
func (e *encoder) localDecls(localTypes []wasm.ValueType) {
	type group struct {
		count uint32
		t     wasm.ValueType
	}
	var groups []group
	for _, t := range localTypes {
		if len(groups) > 0 && groups[len(groups)-1].t == t {
			groups[len(groups)-1].count++
		} else {
			groups = append(groups, group{count: 1, t: t})
		}
	}
	e.u32(uint32(len(groups)))
	for _, g := range groups {
		e.u32(g.count)
		e.byte(g.t)
	}
}

func (e *encoder) beginSection(id wasm.SectionID) {
	e.byte(id)
	e.beginSizeSlot()
}

func (e *encoder) endSection() { e.endSizeSlot() }

func (e *encoder) beginSizeSlot() {
	e.open = append(e.open, len(e.buf))
	e.buf = append(e.buf, 0, 0, 0, 0, 0)
}

func (e *encoder) endSizeSlot() {
	offset := e.open[len(e.open)-1]
	e.open = e.open[:len(e.open)-1]
	size := uint32(len(e.buf) - offset - 5)
	leb128.EncodeFixedUint32(e.buf[offset:], size)
	e.slots = append(e.slots, sizeSlot{offset: offset, value: size})
}

// canonicalize rewrites every reserved size slot to its minimal varint
// length. Enclosing slots shrink by the bytes their nested slots give up, so
// inner slots (larger offsets) are settled first.
func (e *encoder) canonicalize() []byte {
	if len(e.slots) == 0 {
		return e.buf
	}
	sort.Slice(e.slots, func(i, j int) bool { return e.slots[i].offset < e.slots[j].offset })

	// saved[i] is the byte count slot i loses; final[i] its adjusted value.
	saved := make([]int, len(e.slots))
	final := make([]uint32, len(e.slots))
	for i := len(e.slots) - 1; i >= 0; i-- {
		s := e.slots[i]
		regionEnd := s.offset + 5 + int(s.value)
		v := s.value
		for j := i + 1; j < len(e.slots) && e.slots[j].offset < regionEnd; j++ {
			v -= uint32(saved[j])
		}
		final[i] = v
		saved[i] = 5 - len(leb128.EncodeUint32(v))
	}

	out := make([]byte, 0, len(e.buf))
	pos := 0
	for i, s := range e.slots {
		out = append(out, e.buf[pos:s.offset]...)
		out = append(out, leb128.EncodeUint32(final[i])...)
		pos = s.offset + 5
	}
	out = append(out, e.buf[pos:]...)
	return out
}

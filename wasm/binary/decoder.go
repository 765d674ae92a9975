package binary

import (
	"bytes"
	"errors"

	"github.com/wasmtools/wabin/wasm"
)

// DecodeOptions controls optional decoder behavior.
type DecodeOptions struct {
	// DebugNames enables decoding of the "name" custom section. When false
	// the section is skipped like any other custom section.
	DebugNames bool
}

// decoder carries the running state of one DecodeModule call. The counts
// accumulate as sections are seen and back the index-range checks later
// sections need (a call target must name a known function, an export must
// name a known item).
type decoder struct {
	c    *cursor
	r    Reader
	opts DecodeOptions

	lastSection wasm.SectionID

	numTypes         uint32
	numFuncImports   uint32
	numTableImports  uint32
	numMemImports    uint32
	numGlobalImports uint32
	numFuncs         uint32
	numTables        uint32
	numMems          uint32
	numGlobals       uint32

	// sawImportSection gates name-section decoding: a "name" custom
	// section appearing before the import section is skipped as opaque.
	sawImportSection bool
}

// DecodeModule walks a binary module and reports every construct to r. It
// returns the first error raised by the input or by a callback; on a decode
// error r.OnError fires with the offending offset before the return.
func DecodeModule(data []byte, r Reader, opts DecodeOptions) error {
	d := &decoder{c: newCursor(data), r: r, opts: opts}
	err := d.decode()
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			r.OnError(de.Offset, de.Err.Error())
		} else {
			r.OnError(d.c.offset, err.Error())
		}
	}
	return err
}

func (d *decoder) decode() error {
	c := d.c
	magic, err := c.readBytes(4, "magic")
	if err != nil {
		return err
	}
	if !bytes.Equal(magic, wasm.Magic) {
		return &DecodeError{Offset: 0, Err: ErrInvalidMagicNumber}
	}
	version, err := c.readBytes(4, "version")
	if err != nil {
		return err
	}
	if !bytes.Equal(version, wasm.Version) {
		return &DecodeError{Offset: 4, Err: ErrInvalidVersion}
	}
	if err := d.r.BeginModule(1); err != nil {
		return err
	}
	for !c.eof() {
		if err := d.decodeSection(); err != nil {
			return err
		}
	}
	return d.r.EndModule()
}

func (d *decoder) decodeSection() error {
	c := d.c
	// The section header is read against the whole buffer, then reads are
	// narrowed to the declared payload.
	c.readEnd = len(c.data)
	id, err := c.readU32("section code")
	if err != nil {
		return err
	}
	if id > uint32(wasm.SectionIDData) {
		return c.errAt("invalid section code: %d", id)
	}
	size, err := c.readU32("section size")
	if err != nil {
		return err
	}
	end := c.offset + int(size)
	if end > len(c.data) {
		return c.errAt("invalid section size: extends past end")
	}
	c.readEnd = end

	sectionID := wasm.SectionID(id)
	if sectionID != wasm.SectionIDCustom {
		if sectionID <= d.lastSection {
			return c.errAt("section %s out of order", wasm.SectionIDName(sectionID))
		}
		d.lastSection = sectionID
	}

	switch sectionID {
	case wasm.SectionIDCustom:
		err = d.decodeCustomSection(size)
	case wasm.SectionIDType:
		err = d.decodeTypeSection(size)
	case wasm.SectionIDImport:
		err = d.decodeImportSection(size)
	case wasm.SectionIDFunction:
		err = d.decodeFunctionSection(size)
	case wasm.SectionIDTable:
		err = d.decodeTableSection(size)
	case wasm.SectionIDMemory:
		err = d.decodeMemorySection(size)
	case wasm.SectionIDGlobal:
		err = d.decodeGlobalSection(size)
	case wasm.SectionIDExport:
		err = d.decodeExportSection(size)
	case wasm.SectionIDStart:
		err = d.decodeStartSection(size)
	case wasm.SectionIDElement:
		err = d.decodeElementSection(size)
	case wasm.SectionIDCode:
		err = d.decodeCodeSection(size)
	case wasm.SectionIDData:
		err = d.decodeDataSection(size)
	}
	if err != nil {
		return err
	}
	if c.offset != c.readEnd {
		return c.errAt("unfinished section (%s)", wasm.SectionIDName(sectionID))
	}
	return nil
}

// readValueType reads one byte and requires it to be a concrete value type.
func (d *decoder) readValueType(what string) (wasm.ValueType, error) {
	b, err := d.c.readByte(what)
	if err != nil {
		return 0, err
	}
	if !wasm.IsValueType(b) {
		return 0, d.c.errAt("invalid %s: 0x%x", what, b)
	}
	return b, nil
}

// readLimits reads a flags byte followed by the min and optional max bounds.
// maxAllowed caps both bounds when non-zero (memory pages).
func (d *decoder) readLimits(maxAllowed uint32, what string) (*wasm.Limits, error) {
	c := d.c
	flags, err := c.readU32(what + " flags")
	if err != nil {
		return nil, err
	}
	if flags&^uint32(wasm.LimitsHasMaxFlag) != 0 {
		return nil, c.errAt("invalid %s flags: 0x%x", what, flags)
	}
	min, err := c.readU32(what + " initial size")
	if err != nil {
		return nil, err
	}
	if maxAllowed != 0 && min > maxAllowed {
		return nil, c.errAt("%s initial size %d greater than maximum %d", what, min, maxAllowed)
	}
	ret := &wasm.Limits{Min: min}
	if flags&wasm.LimitsHasMaxFlag != 0 {
		max, err := c.readU32(what + " max size")
		if err != nil {
			return nil, err
		}
		if maxAllowed != 0 && max > maxAllowed {
			return nil, c.errAt("%s max size %d greater than maximum %d", what, max, maxAllowed)
		}
		if max < min {
			return nil, c.errAt("%s max size %d less than initial size %d", what, max, min)
		}
		ret.Max = &max
	}
	return ret, nil
}

func (d *decoder) numTotalFuncs() uint32    { return d.numFuncImports + d.numFuncs }
func (d *decoder) numTotalTables() uint32   { return d.numTableImports + d.numTables }
func (d *decoder) numTotalMemories() uint32 { return d.numMemImports + d.numMems }
func (d *decoder) numTotalGlobals() uint32  { return d.numGlobalImports + d.numGlobals }

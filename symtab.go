package moscope

import (
	"bytes"
	"encoding/binary"
	"strings"

	"github.com/appsworld/moscope/types"
)

// SymbolKind is the interpreted role of a symbol: the n_type class first,
// refined for undefined imports that the indirect symbol table ties to a
// stub, GOT or lazy-pointer slot.
type SymbolKind int

const (
	SymbolUndefined SymbolKind = iota + 1
	SymbolAbsolute
	SymbolSection
	SymbolPrebound
	SymbolIndirect
	SymbolLazy
	SymbolStub
	SymbolGot
	SymbolUnknown
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolUndefined:
		return "undefined"
	case SymbolAbsolute:
		return "absolute"
	case SymbolSection:
		return "section"
	case SymbolPrebound:
		return "prebound"
	case SymbolIndirect:
		return "indirect"
	case SymbolLazy:
		return "lazy"
	case SymbolStub:
		return "stub"
	case SymbolGot:
		return "got"
	}
	return "unknown"
}

// A Symbol is a decoded nlist entry with its name resolved from the string
// table and, after ResolveSymbols, its section attribution filled in.
type Symbol struct {
	Name     string
	Type     types.NLType
	Sect     uint8
	Desc     uint16
	Value    uint64
	Kind     SymbolKind
	External bool
	Debug    bool

	// set by ResolveSymbols
	SegName      string
	SectName     string
	IndirectAddr uint64
	HasIndirect  bool
}

// A Symtab is a decoded LC_SYMTAB with its symbols.
type Symtab struct {
	Symoff  uint32
	Nsyms   uint32
	Stroff  uint32
	Strsize uint32
	Syms    []Symbol
}

// A Dysymtab is a decoded LC_DYSYMTAB with its indirect symbol table.
type Dysymtab struct {
	Ilocalsym      uint32
	Nlocalsym      uint32
	Iextdefsym     uint32
	Nextdefsym     uint32
	Iundefsym      uint32
	Nundefsym      uint32
	Tocoffset      uint32
	Ntoc           uint32
	Modtaboff      uint32
	Nmodtab        uint32
	Extrefsymoff   uint32
	Nextrefsyms    uint32
	Indirectsymoff uint32
	Nindirectsyms  uint32
	Extreloff      uint32
	Nextrel        uint32
	Locreloff      uint32
	Nlocrel        uint32
	IndirectSyms   []uint32
}

// ParseSymtab decodes an LC_SYMTAB. symoff and stroff are relative to the
// slice start, not the command; both tables are bounds-checked against the
// input before any entry is read. Names resolve through a NUL scan bounded
// by strsize, and invalid UTF-8 in a name is replaced, not fatal.
func ParseSymtab(data []byte, slice ArchSlice, lc LoadCommand, bo binary.ByteOrder, is64 bool) (*Symtab, error) {
	if lc.Size < types.SymtabCmdSize {
		return nil, decodeError(ErrTruncatedRecord, lc.Offset, "symtab command smaller than its fixed header", lc.Size)
	}
	base := lc.Offset
	st := &Symtab{
		Symoff:  bo.Uint32(data[base+8:]),
		Nsyms:   bo.Uint32(data[base+12:]),
		Stroff:  bo.Uint32(data[base+16:]),
		Strsize: bo.Uint32(data[base+20:]),
	}

	entSize := uint64(types.NlistSize32)
	if is64 {
		entSize = types.NlistSize64
	}
	symBase := slice.Offset + uint64(st.Symoff)
	if symBase+uint64(st.Nsyms)*entSize > uint64(len(data)) {
		return nil, decodeError(ErrOutOfBoundsReference, symBase, "symbol table extends beyond EOF", st.Nsyms)
	}
	strBase := slice.Offset + uint64(st.Stroff)
	if strBase+uint64(st.Strsize) > uint64(len(data)) {
		return nil, decodeError(ErrOutOfBoundsReference, strBase, "string table extends beyond EOF", st.Strsize)
	}
	strtab := data[strBase : strBase+uint64(st.Strsize)]

	st.Syms = make([]Symbol, st.Nsyms)
	for i := uint32(0); i < st.Nsyms; i++ {
		off := symBase + uint64(i)*entSize
		strx := bo.Uint32(data[off:])
		sym := &st.Syms[i]
		sym.Type = types.NLType(data[off+4])
		sym.Sect = data[off+5]
		sym.Desc = bo.Uint16(data[off+6:])
		if is64 {
			sym.Value = bo.Uint64(data[off+8:])
		} else {
			sym.Value = uint64(bo.Uint32(data[off+8:]))
		}
		if strx != 0 {
			if strx >= st.Strsize {
				return nil, decodeError(ErrOutOfBoundsReference, off, "invalid name index in symbol table", strx)
			}
			sym.Name = symName(strtab[strx:])
		}
		switch sym.Type & types.N_TYPE {
		case types.N_UNDF:
			sym.Kind = SymbolUndefined
		case types.N_ABS:
			sym.Kind = SymbolAbsolute
		case types.N_SECT:
			sym.Kind = SymbolSection
		case types.N_PBUD:
			sym.Kind = SymbolPrebound
		case types.N_INDR:
			sym.Kind = SymbolIndirect
		default:
			sym.Kind = SymbolUnknown
		}
		sym.External = sym.Type.IsExternalSym()
		sym.Debug = sym.Type.IsDebugSym()
	}
	return st, nil
}

// symName reads a NUL-terminated name out of the string table, taking the
// whole remainder when the terminator is missing. Invalid UTF-8 is decoded
// lossily.
func symName(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return strings.ToValidUTF8(string(b), "�")
}

// ParseDysymtab decodes an LC_DYSYMTAB and reads its indirect symbol table
// (indirectsymoff is slice-relative, one uint32 per entry).
func ParseDysymtab(data []byte, slice ArchSlice, lc LoadCommand, bo binary.ByteOrder) (*Dysymtab, error) {
	if lc.Size < types.DysymtabCmdSize {
		return nil, decodeError(ErrTruncatedRecord, lc.Offset, "dysymtab command smaller than its fixed header", lc.Size)
	}
	base := lc.Offset
	d := &Dysymtab{
		Ilocalsym:      bo.Uint32(data[base+8:]),
		Nlocalsym:      bo.Uint32(data[base+12:]),
		Iextdefsym:     bo.Uint32(data[base+16:]),
		Nextdefsym:     bo.Uint32(data[base+20:]),
		Iundefsym:      bo.Uint32(data[base+24:]),
		Nundefsym:      bo.Uint32(data[base+28:]),
		Tocoffset:      bo.Uint32(data[base+32:]),
		Ntoc:           bo.Uint32(data[base+36:]),
		Modtaboff:      bo.Uint32(data[base+40:]),
		Nmodtab:        bo.Uint32(data[base+44:]),
		Extrefsymoff:   bo.Uint32(data[base+48:]),
		Nextrefsyms:    bo.Uint32(data[base+52:]),
		Indirectsymoff: bo.Uint32(data[base+56:]),
		Nindirectsyms:  bo.Uint32(data[base+60:]),
		Extreloff:      bo.Uint32(data[base+64:]),
		Nextrel:        bo.Uint32(data[base+68:]),
		Locreloff:      bo.Uint32(data[base+72:]),
		Nlocrel:        bo.Uint32(data[base+76:]),
	}
	if d.Nindirectsyms > 0 {
		tabBase := slice.Offset + uint64(d.Indirectsymoff)
		if tabBase+uint64(d.Nindirectsyms)*4 > uint64(len(data)) {
			return nil, decodeError(ErrOutOfBoundsReference, tabBase, "indirect symbol table extends beyond EOF", d.Nindirectsyms)
		}
		d.IndirectSyms = make([]uint32, d.Nindirectsyms)
		for i := range d.IndirectSyms {
			d.IndirectSyms[i] = bo.Uint32(data[tabBase+uint64(i)*4:])
		}
	}
	return d, nil
}

// ResolveSymbols runs the two enrichment passes over an already decoded
// symbol slice. First every indirect-consuming section (stubs, lazy and
// non-lazy pointers, GOT) walks its window of the indirect table: entry i
// names the symbol bound at the section's i-th slot, so that symbol gets
// the slot address, the section attribution and a refined kind. Entries
// holding the ABS/LOCAL sentinels bind nothing and are skipped, as is any
// index past the symbol count. Then every symbol defined in a numbered
// section gets its segment/section names from the 1-based n_sect index.
//
// ptrSize is the slice's pointer width, the slot size for pointer sections
// whose reserved2 is zero (stubs record their slot size in reserved2).
func ResolveSymbols(syms []Symbol, dysym *Dysymtab, sections []*Section, ptrSize uint64) {
	if dysym != nil && len(dysym.IndirectSyms) > 0 {
		for _, sec := range sections {
			if !sec.Kind.IsIndirect() {
				continue
			}
			entSize := uint64(sec.Reserved2)
			if entSize == 0 {
				entSize = ptrSize
			}
			if entSize == 0 {
				continue
			}
			nslots := sec.Size / entSize
			for i := uint64(0); i < nslots; i++ {
				idx := uint64(sec.Reserved1) + i
				if idx >= uint64(len(dysym.IndirectSyms)) {
					break
				}
				target := dysym.IndirectSyms[idx]
				if target&(types.INDIRECT_SYMBOL_ABS|types.INDIRECT_SYMBOL_LOCAL) != 0 {
					continue
				}
				if target >= uint32(len(syms)) {
					continue
				}
				sym := &syms[target]
				sym.IndirectAddr = sec.Addr + i*entSize
				sym.HasIndirect = true
				sym.SegName = sec.Seg.String()
				sym.SectName = sec.Name.String()
				if sym.Kind == SymbolUndefined && sym.External {
					switch sec.Kind {
					case types.KindSymbolStubs:
						sym.Kind = SymbolStub
					case types.KindLazySymbolPointers:
						sym.Kind = SymbolLazy
					case types.KindNonLazySymbolPointers, types.KindGot:
						sym.Kind = SymbolGot
					}
				}
			}
		}
	}

	for i := range syms {
		sym := &syms[i]
		if sym.Sect == types.NO_SECT || int(sym.Sect) > len(sections) {
			continue
		}
		sec := sections[sym.Sect-1]
		sym.SegName = sec.Seg.String()
		sym.SectName = sec.Name.String()
	}
}

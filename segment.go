package moscope

import (
	"encoding/binary"
	"fmt"

	"github.com/appsworld/moscope/types"
)

// A Section is one decoded section record plus its semantic classification.
// 32-bit addr/size fields are widened to uint64.
type Section struct {
	Name      types.Name16
	Seg       types.Name16
	Addr      uint64
	Size      uint64
	Offset    uint32
	Align     uint32
	Reloff    uint32
	Nreloc    uint32
	Flags     types.SectionFlag
	Reserved1 uint32
	Reserved2 uint32
	Reserved3 uint32 // 64-bit records only
	Kind      types.SectionKind
}

// A Segment is a decoded LC_SEGMENT/LC_SEGMENT_64 with its sections.
type Segment struct {
	Name     types.Name16
	Addr     uint64
	Memsz    uint64
	Offset   uint64
	Filesz   uint64
	Maxprot  types.VmProtection
	Prot     types.VmProtection
	Nsect    uint32
	Flag     types.SegFlag
	Sections []*Section
}

// ParseSegment decodes a segment command the walker already bounds-checked
// against the input. The fixed header and every section record must still
// fit inside the command's own cmdsize.
func ParseSegment(data []byte, lc LoadCommand, bo binary.ByteOrder) (*Segment, error) {
	var is64 bool
	switch lc.Cmd {
	case types.LC_SEGMENT:
	case types.LC_SEGMENT_64:
		is64 = true
	default:
		return nil, fmt.Errorf("cannot parse %s as a segment", lc.Cmd)
	}

	hdrSize := uint64(types.SegmentCmdSize32)
	secSize := uint64(types.SectionSize32)
	if is64 {
		hdrSize = types.SegmentCmdSize64
		secSize = types.SectionSize64
	}
	if uint64(lc.Size) < hdrSize {
		return nil, decodeError(ErrTruncatedRecord, lc.Offset, "segment command smaller than its fixed header", lc.Size)
	}

	base := lc.Offset
	s := &Segment{}
	copy(s.Name[:], data[base+8:base+24])
	if is64 {
		s.Addr = bo.Uint64(data[base+24:])
		s.Memsz = bo.Uint64(data[base+32:])
		s.Offset = bo.Uint64(data[base+40:])
		s.Filesz = bo.Uint64(data[base+48:])
		s.Maxprot = types.VmProtection(bo.Uint32(data[base+56:]))
		s.Prot = types.VmProtection(bo.Uint32(data[base+60:]))
		s.Nsect = bo.Uint32(data[base+64:])
		s.Flag = types.SegFlag(bo.Uint32(data[base+68:]))
	} else {
		s.Addr = uint64(bo.Uint32(data[base+24:]))
		s.Memsz = uint64(bo.Uint32(data[base+28:]))
		s.Offset = uint64(bo.Uint32(data[base+32:]))
		s.Filesz = uint64(bo.Uint32(data[base+36:]))
		s.Maxprot = types.VmProtection(bo.Uint32(data[base+40:]))
		s.Prot = types.VmProtection(bo.Uint32(data[base+44:]))
		s.Nsect = bo.Uint32(data[base+48:])
		s.Flag = types.SegFlag(bo.Uint32(data[base+52:]))
	}

	if hdrSize+uint64(s.Nsect)*secSize > uint64(lc.Size) {
		return nil, decodeError(ErrOutOfBoundsReference, base, "segment nsects overflows cmdsize", s.Nsect)
	}

	s.Sections = make([]*Section, 0, s.Nsect)
	cursor := base + hdrSize
	for i := uint32(0); i < s.Nsect; i++ {
		rec := data[cursor : cursor+secSize]
		sec := &Section{}
		copy(sec.Name[:], rec[0:16])
		copy(sec.Seg[:], rec[16:32])
		if is64 {
			sec.Addr = bo.Uint64(rec[32:])
			sec.Size = bo.Uint64(rec[40:])
			sec.Offset = bo.Uint32(rec[48:])
			sec.Align = bo.Uint32(rec[52:])
			sec.Reloff = bo.Uint32(rec[56:])
			sec.Nreloc = bo.Uint32(rec[60:])
			sec.Flags = types.SectionFlag(bo.Uint32(rec[64:]))
			sec.Reserved1 = bo.Uint32(rec[68:])
			sec.Reserved2 = bo.Uint32(rec[72:])
			sec.Reserved3 = bo.Uint32(rec[76:])
		} else {
			sec.Addr = uint64(bo.Uint32(rec[32:]))
			sec.Size = uint64(bo.Uint32(rec[36:]))
			sec.Offset = bo.Uint32(rec[40:])
			sec.Align = bo.Uint32(rec[44:])
			sec.Reloff = bo.Uint32(rec[48:])
			sec.Nreloc = bo.Uint32(rec[52:])
			sec.Flags = types.SectionFlag(bo.Uint32(rec[56:]))
			sec.Reserved1 = bo.Uint32(rec[60:])
			sec.Reserved2 = bo.Uint32(rec[64:])
		}
		sec.Kind = types.ClassifySection(sec.Seg, sec.Name, sec.Flags)
		s.Sections = append(s.Sections, sec)
		cursor += secSize
	}
	return s, nil
}

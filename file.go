package moscope

import (
	"os"

	"github.com/appsworld/moscope/types"
)

// A File is the fully analyzed input: the container classification, the fat
// arch table when there is one, and one Slice per architecture.
type File struct {
	Kind      types.ContainerKind
	FatHeader *types.FatHeader // nil for thin files
	Archs     []types.FatArch  // parallel to Slices for fat files
	Slices    []*Slice
}

// A Slice is one analyzed architecture. For fat members that failed to
// decode, Err carries the failure and the remaining fields stay zero; the
// other members are unaffected.
type Slice struct {
	Arch     ArchSlice
	CPU      types.CPU
	SubCPU   types.CPUSubtype
	Header   *Header
	Loads    []LoadCommand
	Segments []*Segment
	Sections []*Section
	Dylibs   []*Dylib
	Rpaths   []*Rpath
	Symtab   *Symtab
	Dysymtab *Dysymtab
	Image    *VMImage
	Err      error
}

// Open reads and parses the named file.
func Open(name string) (*File, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse analyzes raw Mach-O or Fat bytes. Container-level failures (bad
// magic, truncated fat table) are returned; once the members are known,
// each one parses independently and records its own failure in Slice.Err.
// A thin file has exactly one slice and its failure is returned directly.
func Parse(data []byte) (*File, error) {
	kind, err := ClassifyContainer(data)
	if err != nil {
		return nil, err
	}
	f := &File{Kind: kind}

	if !kind.IsFat() {
		s := parseSlice(data, ArchSlice{})
		if s.Header != nil {
			s.CPU = s.Header.CPU
			s.SubCPU = s.Header.SubCPU
		}
		f.Slices = []*Slice{s}
		if s.Err != nil {
			return nil, s.Err
		}
		return f, nil
	}

	hdr, err := ReadFatHeader(data)
	if err != nil {
		return nil, err
	}
	archs, err := ReadFatArchs(data, hdr)
	if err != nil {
		return nil, err
	}
	f.FatHeader = hdr
	f.Archs = archs
	f.Slices = make([]*Slice, 0, len(archs))
	for _, arch := range archs {
		s := parseSlice(data, ArchSlice{Offset: arch.ImageOffset(), Size: arch.ImageSize()})
		cpu, sub := arch.CPUInfo()
		s.CPU, s.SubCPU = cpu, sub
		f.Slices = append(f.Slices, s)
	}
	return f, nil
}

// parseSlice decodes one architecture: header, load-command walk, then one
// decoder per recognized opcode. A malformed record in a recognized command
// fails the slice; unrecognized opcodes stay listed in Loads, undecoded.
func parseSlice(data []byte, arch ArchSlice) *Slice {
	s := &Slice{Arch: arch}

	hdr, err := ReadThinHeader(data, arch)
	if err != nil {
		s.Err = err
		return s
	}
	s.Header = hdr

	wordSize := 32
	ptrSize := uint64(4)
	if hdr.Is64() {
		wordSize = 64
		ptrSize = 8
	}
	bo := hdr.ByteOrder()

	loads, err := ReadLoadCommands(data, arch.Offset+hdr.Size(), hdr.NCommands, wordSize, bo)
	if err != nil {
		s.Err = err
		return s
	}
	s.Loads = loads

	var total uint64
	for _, lc := range loads {
		total += uint64(lc.Size)
	}
	if total != uint64(hdr.SizeCommands) {
		s.Err = decodeError(ErrOutOfBoundsReference, arch.Offset+hdr.Size(),
			"load command sizes disagree with sizeofcmds", total)
		return s
	}

	for _, lc := range loads {
		switch {
		case lc.Cmd == types.LC_SEGMENT || lc.Cmd == types.LC_SEGMENT_64:
			seg, err := ParseSegment(data, lc, bo)
			if err != nil {
				s.Err = err
				return s
			}
			s.Segments = append(s.Segments, seg)
			s.Sections = append(s.Sections, seg.Sections...)
		case lc.Cmd.IsDylibLoad():
			dylib, err := ParseDylib(data, lc, bo)
			if err != nil {
				s.Err = err
				return s
			}
			s.Dylibs = append(s.Dylibs, dylib)
		case lc.Cmd == types.LC_RPATH:
			rpath, err := ParseRpath(data, lc, bo)
			if err != nil {
				s.Err = err
				return s
			}
			s.Rpaths = append(s.Rpaths, rpath)
		case lc.Cmd == types.LC_SYMTAB:
			st, err := ParseSymtab(data, arch, lc, bo, hdr.Is64())
			if err != nil {
				s.Err = err
				return s
			}
			s.Symtab = st
		case lc.Cmd == types.LC_DYSYMTAB:
			d, err := ParseDysymtab(data, arch, lc, bo)
			if err != nil {
				s.Err = err
				return s
			}
			s.Dysymtab = d
		}
	}

	s.Image = NewVMImage(s.Segments, data, arch.Offset)
	if s.Symtab != nil {
		ResolveSymbols(s.Symtab.Syms, s.Dysymtab, s.Sections, ptrSize)
	}
	return s
}

// Segment returns the first segment with the given name, or nil.
func (s *Slice) Segment(name string) *Segment {
	want := types.MakeName16(name)
	for _, seg := range s.Segments {
		if seg.Name == want {
			return seg
		}
	}
	return nil
}

// Section returns the first section with the given segment and section
// name, or nil.
func (s *Slice) Section(segname, sectname string) *Section {
	wantSeg := types.MakeName16(segname)
	wantSect := types.MakeName16(sectname)
	for _, sec := range s.Sections {
		if sec.Seg == wantSeg && sec.Name == wantSect {
			return sec
		}
	}
	return nil
}

// FindSegmentForVMAddr returns the segment mapping the given address.
func (s *Slice) FindSegmentForVMAddr(addr uint64) *Segment {
	for _, seg := range s.Segments {
		if seg.Addr <= addr && addr < seg.Addr+seg.Memsz {
			return seg
		}
	}
	return nil
}

// FindSectionForVMAddr returns the section covering the given address.
func (s *Slice) FindSectionForVMAddr(addr uint64) *Section {
	for _, sec := range s.Sections {
		if sec.Addr <= addr && addr < sec.Addr+sec.Size {
			return sec
		}
	}
	return nil
}

// ImportedLibraries returns the paths of all dylib dependencies, the
// LC_ID_DYLIB identity excluded.
func (s *Slice) ImportedLibraries() []string {
	var libs []string
	for _, d := range s.Dylibs {
		if d.Kind == DylibSelf {
			continue
		}
		libs = append(libs, d.Path)
	}
	return libs
}

// An ExtractedString is one C string recovered from a section, with the
// section it came from.
type ExtractedString struct {
	Value    string
	SegName  string
	SectName string
}

// Strings extracts the printable strings of every cstring section through
// the VM image.
func (s *Slice) Strings(minLen int) []ExtractedString {
	var out []ExtractedString
	for _, sec := range s.Sections {
		if sec.Kind != types.KindCString {
			continue
		}
		b := s.Image.ReadSection(sec)
		if b == nil {
			continue
		}
		for _, v := range ExtractStrings(b, minLen) {
			out = append(out, ExtractedString{Value: v, SegName: sec.Seg.String(), SectName: sec.Name.String()})
		}
	}
	return out
}

// FilteredStrings extracts the strings of every cstring section that match
// a regular expression.
func (s *Slice) FilteredStrings(pattern string) ([]ExtractedString, error) {
	var out []ExtractedString
	for _, sec := range s.Sections {
		if sec.Kind != types.KindCString {
			continue
		}
		b := s.Image.ReadSection(sec)
		if b == nil {
			continue
		}
		matches, err := ExtractFilteredStrings(b, pattern)
		if err != nil {
			return nil, err
		}
		for _, v := range matches {
			out = append(out, ExtractedString{Value: v, SegName: sec.Seg.String(), SectName: sec.Name.String()})
		}
	}
	return out, nil
}

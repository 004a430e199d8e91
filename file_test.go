package moscope

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/appsworld/moscope/types"
)

func TestParseThin64(t *testing.T) {
	f, err := Parse(buildThin64())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if f.Kind != types.Thin64LE {
		t.Fatalf("Kind = %v, want %v", f.Kind, types.Thin64LE)
	}
	if len(f.Slices) != 1 {
		t.Fatalf("got %d slices, want 1", len(f.Slices))
	}
	s := f.Slices[0]
	if s.Err != nil {
		t.Fatalf("slice error = %v", s.Err)
	}

	if s.Header.Type != types.MH_EXECUTE {
		t.Errorf("file type = %v", s.Header.Type)
	}
	if got := s.SubCPU.String(s.CPU); got != "arm64e" {
		t.Errorf("subtype = %q, want arm64e", got)
	}
	if len(s.Loads) != 6 {
		t.Errorf("got %d load commands, want 6", len(s.Loads))
	}
	if len(s.Segments) != 2 || len(s.Sections) != 3 {
		t.Fatalf("got %d segments / %d sections, want 2 / 3", len(s.Segments), len(s.Sections))
	}

	text := s.Section("__TEXT", "__text")
	if text == nil || text.Kind != types.KindCode {
		t.Fatalf("__TEXT.__text = %+v", text)
	}
	cstr := s.Section("__TEXT", "__cstring")
	if cstr == nil || cstr.Kind != types.KindCString {
		t.Fatalf("__TEXT.__cstring = %+v", cstr)
	}
	lazy := s.Section("__DATA", "__la_symbol_ptr")
	if lazy == nil || lazy.Kind != types.KindLazySymbolPointers {
		t.Fatalf("__DATA.__la_symbol_ptr = %+v", lazy)
	}

	if got := s.ImportedLibraries(); len(got) != 1 || got[0] != "/usr/lib/libSystem.B.dylib" {
		t.Errorf("ImportedLibraries() = %v", got)
	}
	if len(s.Rpaths) != 1 || s.Rpaths[0].Path != "@executable_path/../Frameworks" {
		t.Errorf("Rpaths = %+v", s.Rpaths)
	}

	if s.Symtab == nil || len(s.Symtab.Syms) != 3 {
		t.Fatalf("Symtab = %+v", s.Symtab)
	}
	main := s.Symtab.Syms[0]
	if main.Name != "_main" || main.Kind != SymbolSection || main.Value != testTextAddr {
		t.Errorf("_main = %+v", main)
	}
	if main.SegName != "__TEXT" || main.SectName != "__text" {
		t.Errorf("_main attribution = %s.%s", main.SegName, main.SectName)
	}
	printf := s.Symtab.Syms[1]
	if printf.Name != "_printf" || printf.Kind != SymbolLazy {
		t.Errorf("_printf = %+v", printf)
	}
	if !printf.HasIndirect || printf.IndirectAddr != testLazyAddr {
		t.Errorf("_printf slot = %#x (bound=%v)", printf.IndirectAddr, printf.HasIndirect)
	}
	malloc := s.Symtab.Syms[2]
	if !malloc.HasIndirect || malloc.IndirectAddr != testLazyAddr+8 {
		t.Errorf("_malloc slot = %#x (bound=%v)", malloc.IndirectAddr, malloc.HasIndirect)
	}

	if sec := s.FindSectionForVMAddr(testTextAddr + 0x10); sec != text {
		t.Errorf("FindSectionForVMAddr() = %+v", sec)
	}
	if seg := s.FindSegmentForVMAddr(testLazyAddr); seg == nil || seg.Name.String() != "__DATA" {
		t.Errorf("FindSegmentForVMAddr() = %+v", seg)
	}

	var values []string
	for _, es := range s.Strings(4) {
		values = append(values, es.Value)
	}
	want := []string{"hello world", "moscope rules"}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Errorf("Strings(4) mismatch (-want +got):\n%s", diff)
	}

	filtered, err := s.FilteredStrings("rules$")
	if err != nil {
		t.Fatalf("FilteredStrings() error = %v", err)
	}
	if len(filtered) != 1 || filtered[0].Value != "moscope rules" {
		t.Errorf("FilteredStrings() = %+v", filtered)
	}
}

func TestParseFat(t *testing.T) {
	f, err := Parse(buildFat(buildThin64(), 0x4000))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !f.Kind.IsFat() {
		t.Fatalf("Kind = %v, want fat", f.Kind)
	}
	if f.FatHeader.NArch != 1 || len(f.Slices) != 1 {
		t.Fatalf("NArch = %d, slices = %d", f.FatHeader.NArch, len(f.Slices))
	}
	s := f.Slices[0]
	if s.Err != nil {
		t.Fatalf("slice error = %v", s.Err)
	}
	if s.Arch.Offset != 0x4000 {
		t.Errorf("slice offset = %#x", s.Arch.Offset)
	}
	if got := s.SubCPU.String(s.CPU); got != "arm64e" {
		t.Errorf("subtype = %q, want arm64e", got)
	}
	// slice-relative tables resolve against the member offset
	if s.Symtab == nil || s.Symtab.Syms[1].Name != "_printf" {
		t.Fatalf("Symtab = %+v", s.Symtab)
	}
	if got := s.ImportedLibraries(); len(got) != 1 || got[0] != "/usr/lib/libSystem.B.dylib" {
		t.Errorf("ImportedLibraries() = %v", got)
	}
	if len(s.Strings(4)) != 2 {
		t.Errorf("Strings(4) = %+v", s.Strings(4))
	}
}

// A fat member pointing at garbage fails alone; the container parse
// itself succeeds.
func TestParseFatCorruptMemberIsolated(t *testing.T) {
	data := buildFat(buildThin64(), 0x4000)
	// stomp the member's magic
	copy(data[0x4000:], []byte{0xde, 0xad, 0xbe, 0xef})
	f, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	s := f.Slices[0]
	if s.Err == nil {
		t.Fatal("corrupt member parsed without error")
	}
	var derr *DecodeError
	if !errors.As(s.Err, &derr) || derr.Kind != ErrNotRecognizedContainer {
		t.Errorf("slice error = %v", s.Err)
	}
}

// A fat_arch_64 may declare any 64-bit member offset; one near 2^64 must
// fail that member's parse cleanly instead of wrapping the header bounds
// checks.
func TestParseFatHostileMemberOffset(t *testing.T) {
	var data []byte
	be32 := func(v uint32) { data = binary.BigEndian.AppendUint32(data, v) }
	be64 := func(v uint64) { data = binary.BigEndian.AppendUint64(data, v) }
	be32(types.MagicFat64.Int())
	be32(1)
	be32(uint32(types.CPUArm64))
	be32(uint32(types.CPUSubtypeArm64All))
	be64(0xfffffffffffffffe) // member offset
	be64(0x1000)
	be32(14)
	be32(0)

	f, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(f.Slices) != 1 {
		t.Fatalf("got %d slices, want 1", len(f.Slices))
	}
	var derr *DecodeError
	if !errors.As(f.Slices[0].Err, &derr) || derr.Kind != ErrTruncatedRecord {
		t.Errorf("slice error = %v, want truncated record", f.Slices[0].Err)
	}
}

func TestParseSizeofcmdsMismatch(t *testing.T) {
	data := buildThin64()
	// shrink the declared sizeofcmds without touching the commands
	data[20] -= 8
	_, err := Parse(data)
	var derr *DecodeError
	if !errors.As(err, &derr) || derr.Kind != ErrOutOfBoundsReference {
		t.Fatalf("Parse() error = %v, want out of bounds reference", err)
	}
}

func TestParseTruncatedHeader(t *testing.T) {
	data := buildThin64()[:16]
	_, err := Parse(data)
	var derr *DecodeError
	if !errors.As(err, &derr) || derr.Kind != ErrTruncatedRecord {
		t.Fatalf("Parse() error = %v, want truncated record", err)
	}
}

package types

import "testing"

func TestClassifySectionByTypeCode(t *testing.T) {
	tests := []struct {
		name  string
		seg   string
		sect  string
		flags SectionFlag
		want  SectionKind
	}{
		{"cstring literals", "__TEXT", "__weird_name", S_CSTRING_LITERALS, KindCString},
		{"zerofill", "__DATA", "__huge", S_ZEROFILL, KindBss},
		{"gb zerofill", "__DATA", "__huge", S_GB_ZEROFILL, KindBss},
		{"thread local zerofill", "__DATA", "__thread_bss", S_THREAD_LOCAL_ZEROFILL, KindBss},
		{"symbol stubs", "__TEXT", "__picsymbolstub", S_SYMBOL_STUBS, KindSymbolStubs},
		{"lazy pointers", "__DATA", "__whatever", S_LAZY_SYMBOL_POINTERS, KindLazySymbolPointers},
		{"non-lazy pointers", "__DATA", "__whatever", S_NON_LAZY_SYMBOL_POINTERS, KindNonLazySymbolPointers},
		{"mod init", "__DATA", "__whatever", S_MOD_INIT_FUNC_POINTERS, KindInit},
		{"literals", "__TEXT", "__literal8", S_8BYTE_LITERALS, KindConstData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifySection(MakeName16(tt.seg), MakeName16(tt.sect), tt.flags)
			if got != tt.want {
				t.Errorf("ClassifySection(%s,%s,%#x) = %v, want %v", tt.seg, tt.sect, tt.flags, got, tt.want)
			}
		})
	}
}

// The type code wins over the name: a section named __cstring but typed
// regular classifies by the name table, while a cstring-typed section with
// any name classifies as cstrings.
func TestClassifySectionTypeCodeIsAuthoritative(t *testing.T) {
	if got := ClassifySection(MakeName16("__DATA"), MakeName16("__data"), S_CSTRING_LITERALS); got != KindCString {
		t.Errorf("typed cstring = %v, want %v", got, KindCString)
	}
}

func TestClassifySectionWellKnownNames(t *testing.T) {
	tests := []struct {
		seg  string
		sect string
		want SectionKind
	}{
		{"__TEXT", "__text", KindCode},
		{"__TEXT", "__const", KindConstData},
		{"__TEXT", "__unwind_info", KindUnwind},
		{"__TEXT", "__objc_methname", KindObjC},
		{"__DATA", "__data", KindData},
		{"__DATA", "__objc_selrefs", KindObjC},
		{"__DATA_CONST", "__const", KindConstData},
		{"__DATA_CONST", "__got", KindGot},
	}
	for _, tt := range tests {
		got := ClassifySection(MakeName16(tt.seg), MakeName16(tt.sect), S_REGULAR)
		if got != tt.want {
			t.Errorf("ClassifySection(%s,%s) = %v, want %v", tt.seg, tt.sect, got, tt.want)
		}
	}
}

func TestClassifySectionLinkEditFallback(t *testing.T) {
	if got := ClassifySection(MakeName16("__LINKEDIT"), MakeName16("__anything"), S_REGULAR); got != KindLinkEdit {
		t.Errorf("got %v, want %v", got, KindLinkEdit)
	}
}

func TestClassifySectionUnknown(t *testing.T) {
	if got := ClassifySection(MakeName16("__CUSTOM"), MakeName16("__stuff"), S_REGULAR); got != KindUnknown {
		t.Errorf("got %v, want %v", got, KindUnknown)
	}
}

// Name matching is over the raw 16 bytes: a name that differs only in its
// padding bytes is a different name.
func TestName16RawEquality(t *testing.T) {
	a := MakeName16("__text")
	b := MakeName16("__text")
	b[15] = 'x'
	if a == b {
		t.Fatal("names differing in padding compared equal")
	}
	if got := ClassifySection(MakeName16("__TEXT"), b, S_REGULAR); got != KindUnknown {
		t.Errorf("padded name classified as %v", got)
	}
	if b.String() != "__text" {
		// trailing garbage after the first NUL is invisible in display
		t.Errorf("String() = %q", b.String())
	}
}

func TestSectionFlagAccessors(t *testing.T) {
	f := S_SYMBOL_STUBS | S_ATTR_PURE_INSTRUCTIONS
	if !f.IsSymbolStubs() || !f.IsPureInstructions() {
		t.Errorf("flag accessors failed for %#x", uint32(f))
	}
	if f.Type() != S_SYMBOL_STUBS {
		t.Errorf("Type() = %#x", uint32(f.Type()))
	}
}

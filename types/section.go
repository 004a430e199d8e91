package types

// A SectionFlag is the flags word of a section record: the low byte is the
// section type, the rest attribute bits.
type SectionFlag uint32

const (
	SectionType       SectionFlag = 0x000000ff /* SECTION_TYPE */
	SectionAttributes SectionFlag = 0xffffff00 /* SECTION_ATTRIBUTES */
)

// section types
const (
	S_REGULAR                             SectionFlag = 0x0
	S_ZEROFILL                            SectionFlag = 0x1
	S_CSTRING_LITERALS                    SectionFlag = 0x2
	S_4BYTE_LITERALS                      SectionFlag = 0x3
	S_8BYTE_LITERALS                      SectionFlag = 0x4
	S_LITERAL_POINTERS                    SectionFlag = 0x5
	S_NON_LAZY_SYMBOL_POINTERS            SectionFlag = 0x6
	S_LAZY_SYMBOL_POINTERS                SectionFlag = 0x7
	S_SYMBOL_STUBS                        SectionFlag = 0x8
	S_MOD_INIT_FUNC_POINTERS              SectionFlag = 0x9
	S_MOD_TERM_FUNC_POINTERS              SectionFlag = 0xa
	S_COALESCED                           SectionFlag = 0xb
	S_GB_ZEROFILL                         SectionFlag = 0xc
	S_INTERPOSING                         SectionFlag = 0xd
	S_16BYTE_LITERALS                     SectionFlag = 0xe
	S_DTRACE_DOF                          SectionFlag = 0xf
	S_LAZY_DYLIB_SYMBOL_POINTERS          SectionFlag = 0x10
	S_THREAD_LOCAL_REGULAR                SectionFlag = 0x11
	S_THREAD_LOCAL_ZEROFILL               SectionFlag = 0x12
	S_THREAD_LOCAL_VARIABLES              SectionFlag = 0x13
	S_THREAD_LOCAL_VARIABLE_POINTERS      SectionFlag = 0x14
	S_THREAD_LOCAL_INIT_FUNCTION_POINTERS SectionFlag = 0x15
	S_INIT_FUNC_OFFSETS                   SectionFlag = 0x16
)

// section attributes
const (
	S_ATTR_PURE_INSTRUCTIONS   SectionFlag = 0x80000000
	S_ATTR_NO_TOC              SectionFlag = 0x40000000
	S_ATTR_STRIP_STATIC_SYMS   SectionFlag = 0x20000000
	S_ATTR_NO_DEAD_STRIP       SectionFlag = 0x10000000
	S_ATTR_LIVE_SUPPORT        SectionFlag = 0x08000000
	S_ATTR_SELF_MODIFYING_CODE SectionFlag = 0x04000000
	S_ATTR_DEBUG               SectionFlag = 0x02000000
	S_ATTR_SOME_INSTRUCTIONS   SectionFlag = 0x00000400
	S_ATTR_EXT_RELOC           SectionFlag = 0x00000200
	S_ATTR_LOC_RELOC           SectionFlag = 0x00000100
)

func (f SectionFlag) Type() SectionFlag {
	return f & SectionType
}

func (f SectionFlag) IsRegular() bool {
	return f.Type() == S_REGULAR
}

func (f SectionFlag) IsZerofill() bool {
	t := f.Type()
	return t == S_ZEROFILL || t == S_GB_ZEROFILL || t == S_THREAD_LOCAL_ZEROFILL
}

func (f SectionFlag) IsCstringLiterals() bool {
	return f.Type() == S_CSTRING_LITERALS
}

func (f SectionFlag) IsSymbolStubs() bool {
	return f.Type() == S_SYMBOL_STUBS
}

func (f SectionFlag) IsLazySymbolPointers() bool {
	t := f.Type()
	return t == S_LAZY_SYMBOL_POINTERS || t == S_LAZY_DYLIB_SYMBOL_POINTERS
}

func (f SectionFlag) IsNonLazySymbolPointers() bool {
	return f.Type() == S_NON_LAZY_SYMBOL_POINTERS
}

func (f SectionFlag) IsPureInstructions() bool {
	return (f & S_ATTR_PURE_INSTRUCTIONS) != 0
}

// A SectionKind is the semantic role assigned to a section by
// ClassifySection.
type SectionKind int

const (
	KindUnknown SectionKind = iota
	KindCode
	KindCString
	KindConstData
	KindData
	KindBss
	KindSymbolStubs
	KindLazySymbolPointers
	KindNonLazySymbolPointers
	KindGot
	KindObjC
	KindUnwind
	KindInit
	KindLinkEdit
	KindOther
)

var sectionKindStrings = map[SectionKind]string{
	KindUnknown:               "unknown",
	KindCode:                  "code",
	KindCString:               "cstrings",
	KindConstData:             "const",
	KindData:                  "data",
	KindBss:                   "bss",
	KindSymbolStubs:           "stubs",
	KindLazySymbolPointers:    "lazy-pointers",
	KindNonLazySymbolPointers: "non-lazy-pointers",
	KindGot:                   "got",
	KindObjC:                  "objc",
	KindUnwind:                "unwind",
	KindInit:                  "init",
	KindLinkEdit:              "linkedit",
	KindOther:                 "other",
}

func (k SectionKind) String() string {
	if s, ok := sectionKindStrings[k]; ok {
		return s
	}
	return "unknown"
}

// IsIndirect reports whether sections of this kind consume entries of the
// indirect symbol table.
func (k SectionKind) IsIndirect() bool {
	switch k {
	case KindSymbolStubs, KindLazySymbolPointers, KindNonLazySymbolPointers, KindGot:
		return true
	}
	return false
}

// well-known segment names
var (
	SegPageZero  = MakeName16("__PAGEZERO")
	SegText      = MakeName16("__TEXT")
	SegData      = MakeName16("__DATA")
	SegDataConst = MakeName16("__DATA_CONST")
	SegLinkEdit  = MakeName16("__LINKEDIT")
	SegObjC      = MakeName16("__OBJC")
)

var sectionKindNames = []struct {
	seg  Name16
	sect Name16
	kind SectionKind
}{
	{SegText, MakeName16("__text"), KindCode},
	{SegText, MakeName16("__stubs"), KindSymbolStubs},
	{SegText, MakeName16("__stub_helper"), KindCode},
	{SegText, MakeName16("__init_offsets"), KindInit},
	{SegText, MakeName16("__const"), KindConstData},
	{SegText, MakeName16("__cstring"), KindCString},
	{SegText, MakeName16("__objc_methname"), KindObjC},
	{SegText, MakeName16("__objc_classname"), KindObjC},
	{SegText, MakeName16("__objc_methtype"), KindObjC},
	{SegText, MakeName16("__eh_frame"), KindUnwind},
	{SegText, MakeName16("__unwind_info"), KindUnwind},
	{SegText, MakeName16("__gcc_except_tab"), KindUnwind},
	{SegData, MakeName16("__data"), KindData},
	{SegData, MakeName16("__const"), KindConstData},
	{SegData, MakeName16("__bss"), KindBss},
	{SegData, MakeName16("__common"), KindBss},
	{SegData, MakeName16("__got"), KindGot},
	{SegData, MakeName16("__la_symbol_ptr"), KindLazySymbolPointers},
	{SegData, MakeName16("__nl_symbol_ptr"), KindNonLazySymbolPointers},
	{SegData, MakeName16("__mod_init_func"), KindInit},
	{SegData, MakeName16("__mod_term_func"), KindInit},
	{SegData, MakeName16("__objc_classlist"), KindObjC},
	{SegData, MakeName16("__objc_catlist"), KindObjC},
	{SegData, MakeName16("__objc_protolist"), KindObjC},
	{SegData, MakeName16("__objc_imageinfo"), KindObjC},
	{SegData, MakeName16("__objc_selrefs"), KindObjC},
	{SegData, MakeName16("__objc_classrefs"), KindObjC},
	{SegData, MakeName16("__objc_superrefs"), KindObjC},
	{SegData, MakeName16("__objc_ivar"), KindObjC},
	{SegData, MakeName16("__objc_data"), KindObjC},
	{SegData, MakeName16("__objc_const"), KindObjC},
	{SegDataConst, MakeName16("__const"), KindConstData},
	{SegDataConst, MakeName16("__got"), KindGot},
	{SegDataConst, MakeName16("__mod_init_func"), KindInit},
	{SegDataConst, MakeName16("__objc_classlist"), KindObjC},
	{SegDataConst, MakeName16("__objc_imageinfo"), KindObjC},
}

// ClassifySection assigns a semantic kind to a section. The type code in
// the flags word wins; the well-known (segname, sectname) table applies to
// the remaining sections, with __LINKEDIT membership as the last resort.
// Name comparison is over the raw 16 bytes, padding included.
func ClassifySection(seg, sect Name16, flags SectionFlag) SectionKind {
	switch flags.Type() {
	case S_CSTRING_LITERALS:
		return KindCString
	case S_ZEROFILL, S_GB_ZEROFILL, S_THREAD_LOCAL_ZEROFILL:
		return KindBss
	case S_SYMBOL_STUBS:
		return KindSymbolStubs
	case S_LAZY_SYMBOL_POINTERS, S_LAZY_DYLIB_SYMBOL_POINTERS:
		return KindLazySymbolPointers
	case S_NON_LAZY_SYMBOL_POINTERS:
		return KindNonLazySymbolPointers
	case S_MOD_INIT_FUNC_POINTERS, S_MOD_TERM_FUNC_POINTERS, S_INIT_FUNC_OFFSETS,
		S_THREAD_LOCAL_INIT_FUNCTION_POINTERS:
		return KindInit
	case S_4BYTE_LITERALS, S_8BYTE_LITERALS, S_16BYTE_LITERALS, S_LITERAL_POINTERS:
		return KindConstData
	}
	for _, n := range sectionKindNames {
		if n.seg == seg && n.sect == sect {
			return n.kind
		}
	}
	if seg == SegLinkEdit {
		return KindLinkEdit
	}
	if seg == SegObjC {
		return KindObjC
	}
	return KindUnknown
}

package types

import (
	"fmt"
	"strings"
)

const (
	// FileHeaderSize32 is the on-disk size of a 32-bit mach_header.
	FileHeaderSize32 = 28
	// FileHeaderSize64 is the on-disk size of a mach_header_64 (one
	// trailing reserved word).
	FileHeaderSize64 = 32
)

// A FileHeader represents a Mach-O file header.
type FileHeader struct {
	Magic        Magic
	CPU          CPU
	SubCPU       CPUSubtype
	Type         HeaderFileType
	NCommands    uint32
	SizeCommands uint32
	Flags        HeaderFlag
	Reserved     uint32 // 64-bit headers only
}

func (h *FileHeader) String() string {
	return fmt.Sprintf(
		"Magic         = %s\n"+
			"Type          = %s\n"+
			"CPU           = %s, %s\n"+
			"Commands      = %d (Size: %d)\n"+
			"Flags         = %s\n",
		h.Magic,
		h.Type,
		h.CPU, h.SubCPU.String(h.CPU),
		h.NCommands,
		h.SizeCommands,
		h.Flags,
	)
}

// A HeaderFileType is the Mach-O file type (MH_OBJECT, MH_EXECUTE, ...).
type HeaderFileType uint32

const (
	MH_OBJECT      HeaderFileType = 0x1 /* relocatable object file */
	MH_EXECUTE     HeaderFileType = 0x2 /* demand paged executable file */
	MH_FVMLIB      HeaderFileType = 0x3 /* fixed VM shared library file */
	MH_CORE        HeaderFileType = 0x4 /* core file */
	MH_PRELOAD     HeaderFileType = 0x5 /* preloaded executable file */
	MH_DYLIB       HeaderFileType = 0x6 /* dynamically bound shared library */
	MH_DYLINKER    HeaderFileType = 0x7 /* dynamic link editor */
	MH_BUNDLE      HeaderFileType = 0x8 /* dynamically bound bundle file */
	MH_DYLIB_STUB  HeaderFileType = 0x9 /* shared library stub for static linking only */
	MH_DSYM        HeaderFileType = 0xa /* companion file with only debug sections */
	MH_KEXT_BUNDLE HeaderFileType = 0xb /* x86_64 kexts */
	MH_FILESET     HeaderFileType = 0xc /* set of mach-o's */
)

var headerFileTypeStrings = []intName{
	{uint32(MH_OBJECT), "Object"},
	{uint32(MH_EXECUTE), "Executable"},
	{uint32(MH_FVMLIB), "FVMLib"},
	{uint32(MH_CORE), "Core"},
	{uint32(MH_PRELOAD), "Preload"},
	{uint32(MH_DYLIB), "Dylib"},
	{uint32(MH_DYLINKER), "Dylinker"},
	{uint32(MH_BUNDLE), "Bundle"},
	{uint32(MH_DYLIB_STUB), "DylibStub"},
	{uint32(MH_DSYM), "dSYM"},
	{uint32(MH_KEXT_BUNDLE), "Kext"},
	{uint32(MH_FILESET), "FileSet"},
}

func (t HeaderFileType) String() string   { return stringName(uint32(t), headerFileTypeStrings, false) }
func (t HeaderFileType) GoString() string { return stringName(uint32(t), headerFileTypeStrings, true) }

// A HeaderFlag is the flags word of a Mach-O header.
type HeaderFlag uint32

const (
	NoUndefs                   HeaderFlag = 0x00000001
	IncrLink                   HeaderFlag = 0x00000002
	DyldLink                   HeaderFlag = 0x00000004
	BindAtLoad                 HeaderFlag = 0x00000008
	Prebound                   HeaderFlag = 0x00000010
	SplitSegs                  HeaderFlag = 0x00000020
	LazyInit                   HeaderFlag = 0x00000040
	TwoLevel                   HeaderFlag = 0x00000080
	ForceFlat                  HeaderFlag = 0x00000100
	NoMultiDefs                HeaderFlag = 0x00000200
	NoFixPrebinding            HeaderFlag = 0x00000400
	Prebindable                HeaderFlag = 0x00000800
	AllModsBound               HeaderFlag = 0x00001000
	SubsectionsViaSymbols      HeaderFlag = 0x00002000
	Canonical                  HeaderFlag = 0x00004000
	WeakDefines                HeaderFlag = 0x00008000
	BindsToWeak                HeaderFlag = 0x00010000
	AllowStackExecution        HeaderFlag = 0x00020000
	RootSafe                   HeaderFlag = 0x00040000
	SetuidSafe                 HeaderFlag = 0x00080000
	NoReexportedDylibs         HeaderFlag = 0x00100000
	PIE                        HeaderFlag = 0x00200000
	DeadStrippableDylib        HeaderFlag = 0x00400000
	HasTLVDescriptors          HeaderFlag = 0x00800000
	NoHeapExecution            HeaderFlag = 0x01000000
	AppExtensionSafe           HeaderFlag = 0x02000000
	NlistOutofsyncWithDyldinfo HeaderFlag = 0x04000000
	SimSupport                 HeaderFlag = 0x08000000
	DylibInCache               HeaderFlag = 0x80000000
)

var headerFlagNames = []struct {
	flag HeaderFlag
	name string
}{
	{NoUndefs, "NoUndefs"},
	{IncrLink, "IncrLink"},
	{DyldLink, "DyldLink"},
	{BindAtLoad, "BindAtLoad"},
	{Prebound, "Prebound"},
	{SplitSegs, "SplitSegs"},
	{LazyInit, "LazyInit"},
	{TwoLevel, "TwoLevel"},
	{ForceFlat, "ForceFlat"},
	{NoMultiDefs, "NoMultiDefs"},
	{NoFixPrebinding, "NoFixPrebinding"},
	{Prebindable, "Prebindable"},
	{AllModsBound, "AllModsBound"},
	{SubsectionsViaSymbols, "SubsectionsViaSymbols"},
	{Canonical, "Canonical"},
	{WeakDefines, "WeakDefines"},
	{BindsToWeak, "BindsToWeak"},
	{AllowStackExecution, "AllowStackExecution"},
	{RootSafe, "RootSafe"},
	{SetuidSafe, "SetuidSafe"},
	{NoReexportedDylibs, "NoReexportedDylibs"},
	{PIE, "PIE"},
	{DeadStrippableDylib, "DeadStrippableDylib"},
	{HasTLVDescriptors, "HasTLVDescriptors"},
	{NoHeapExecution, "NoHeapExecution"},
	{AppExtensionSafe, "AppExtensionSafe"},
	{NlistOutofsyncWithDyldinfo, "NlistOutofsyncWithDyldinfo"},
	{SimSupport, "SimSupport"},
	{DylibInCache, "DylibInCache"},
}

// List returns the names of the flags that are set.
func (f HeaderFlag) List() []string {
	var flags []string
	for _, n := range headerFlagNames {
		if (f & n.flag) != 0 {
			flags = append(flags, n.name)
		}
	}
	return flags
}

func (f HeaderFlag) String() string {
	return strings.Join(f.List(), ", ")
}

func (f HeaderFlag) DyldLink() bool {
	return (f & DyldLink) != 0
}

func (f HeaderFlag) TwoLevel() bool {
	return (f & TwoLevel) != 0
}

func (f HeaderFlag) PIE() bool {
	return (f & PIE) != 0
}

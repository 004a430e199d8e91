package moscope

import (
	"encoding/binary"

	"github.com/appsworld/moscope/types"
)

// buf assembles little-endian test binaries byte by byte.
type buf struct {
	b []byte
}

func (w *buf) u16(v uint16) { w.b = binary.LittleEndian.AppendUint16(w.b, v) }
func (w *buf) u32(v uint32) { w.b = binary.LittleEndian.AppendUint32(w.b, v) }
func (w *buf) u64(v uint64) { w.b = binary.LittleEndian.AppendUint64(w.b, v) }
func (w *buf) u8(v uint8)   { w.b = append(w.b, v) }

func (w *buf) name16(s string) {
	n := types.MakeName16(s)
	w.b = append(w.b, n[:]...)
}

func (w *buf) raw(p []byte) { w.b = append(w.b, p...) }

func (w *buf) str(s string) { w.b = append(w.b, s...); w.b = append(w.b, 0) }

// padTo zero-fills up to an absolute offset.
func (w *buf) padTo(off int) {
	for len(w.b) < off {
		w.b = append(w.b, 0)
	}
}

// pad zero-fills n bytes.
func (w *buf) pad(n int) {
	w.b = append(w.b, make([]byte, n)...)
}

const (
	testTextAddr    = 0x100000400
	testCstringAddr = 0x100000500
	testLazyAddr    = 0x100001000

	testTextOff    = 0x400
	testCstringOff = 0x500
	testLazyOff    = 0x600
	testIndirOff   = 0x630
	testSymOff     = 0x640
	testStrOff     = 0x680
	testFileSize   = 0x700
)

var testCstrings = "hello world\x00hi\x00moscope rules\x00"

// buildThin64 assembles a complete little-endian 64-bit Mach-O executable:
// two segments (three sections), a dylib dependency, an rpath, a symbol
// table with one defined and two undefined symbols, and an indirect symbol
// table binding the undefined ones to lazy-pointer slots.
func buildThin64() []byte {
	var w buf

	// strtab: "\x00_main\x00_printf\x00_malloc\x00"
	const (
		strxMain   = 1
		strxPrintf = 7
		strxMalloc = 15
		strSize    = 23
	)

	segTextSize := uint32(types.SegmentCmdSize64 + 2*types.SectionSize64)
	segDataSize := uint32(types.SegmentCmdSize64 + types.SectionSize64)
	dylibSize := uint32(56) // 24 fixed + 27 path bytes, padded to 8
	rpathSize := uint32(48) // 12 fixed + 31 path bytes, padded to 8
	sizeofcmds := segTextSize + segDataSize + dylibSize + rpathSize +
		types.SymtabCmdSize + types.DysymtabCmdSize

	// mach_header_64
	w.u32(types.Magic64.Int())
	w.u32(uint32(types.CPUArm64))
	w.u32(uint32(types.CpuSubtypePtrauthAbi | types.CPUSubtypeArm64E))
	w.u32(uint32(types.MH_EXECUTE))
	w.u32(6)
	w.u32(sizeofcmds)
	w.u32(uint32(types.NoUndefs | types.PIE))
	w.u32(0) // reserved

	// LC_SEGMENT_64 __TEXT
	w.u32(uint32(types.LC_SEGMENT_64))
	w.u32(segTextSize)
	w.name16("__TEXT")
	w.u64(0x100000000)       // vmaddr
	w.u64(0x1000)            // vmsize
	w.u64(0)                 // fileoff
	w.u64(testFileSize)      // filesize
	w.u32(5)                 // maxprot r-x
	w.u32(5)                 // initprot
	w.u32(2)                 // nsects
	w.u32(0)                 // flags
	w.name16("__text")       // section 1
	w.name16("__TEXT")
	w.u64(testTextAddr)
	w.u64(0x20)
	w.u32(testTextOff)
	w.u32(4)
	w.u32(0)
	w.u32(0)
	w.u32(uint32(types.S_REGULAR | types.S_ATTR_PURE_INSTRUCTIONS))
	w.u32(0)
	w.u32(0)
	w.u32(0)
	w.name16("__cstring") // section 2
	w.name16("__TEXT")
	w.u64(testCstringAddr)
	w.u64(uint64(len(testCstrings)))
	w.u32(testCstringOff)
	w.u32(0)
	w.u32(0)
	w.u32(0)
	w.u32(uint32(types.S_CSTRING_LITERALS))
	w.u32(0)
	w.u32(0)
	w.u32(0)

	// LC_SEGMENT_64 __DATA
	w.u32(uint32(types.LC_SEGMENT_64))
	w.u32(segDataSize)
	w.name16("__DATA")
	w.u64(testLazyAddr)
	w.u64(0x1000)
	w.u64(testLazyOff)
	w.u64(0x100)
	w.u32(3)
	w.u32(3)
	w.u32(1)
	w.u32(0)
	w.name16("__la_symbol_ptr")
	w.name16("__DATA")
	w.u64(testLazyAddr)
	w.u64(16) // two pointer slots
	w.u32(testLazyOff)
	w.u32(3)
	w.u32(0)
	w.u32(0)
	w.u32(uint32(types.S_LAZY_SYMBOL_POINTERS))
	w.u32(0) // reserved1: indirect table start index
	w.u32(0)
	w.u32(0)

	// LC_LOAD_DYLIB /usr/lib/libSystem.B.dylib
	w.u32(uint32(types.LC_LOAD_DYLIB))
	w.u32(dylibSize)
	w.u32(24) // lc_str offset
	w.u32(2)  // timestamp
	w.u32(0x00010203)
	w.u32(0x00010000)
	w.str("/usr/lib/libSystem.B.dylib")
	w.pad(int(dylibSize) - 24 - 27)

	// LC_RPATH @executable_path/../Frameworks
	w.u32(uint32(types.LC_RPATH))
	w.u32(rpathSize)
	w.u32(12)
	w.str("@executable_path/../Frameworks")
	w.pad(int(rpathSize) - 12 - 31)

	// LC_SYMTAB
	w.u32(uint32(types.LC_SYMTAB))
	w.u32(types.SymtabCmdSize)
	w.u32(testSymOff)
	w.u32(3)
	w.u32(testStrOff)
	w.u32(strSize)

	// LC_DYSYMTAB: only the indirect table fields are non-zero
	w.u32(uint32(types.LC_DYSYMTAB))
	w.u32(types.DysymtabCmdSize)
	w.pad(4 * 12)
	w.u32(testIndirOff)
	w.u32(2)
	w.pad(4 * 4)

	// __text bytes
	w.padTo(testTextOff)
	for i := 0; i < 0x20; i++ {
		w.u8(0xd5) // looks vaguely like aarch64
	}

	// __cstring bytes
	w.padTo(testCstringOff)
	w.raw([]byte(testCstrings))

	// __la_symbol_ptr slots
	w.padTo(testLazyOff)
	w.u64(0)
	w.u64(0)

	// indirect symbol table: slot 0 -> _printf, slot 1 -> _malloc
	w.padTo(testIndirOff)
	w.u32(1)
	w.u32(2)

	// symbol table
	w.padTo(testSymOff)
	w.u32(strxMain) // _main
	w.u8(uint8(types.N_SECT | types.N_EXT))
	w.u8(1) // __text
	w.u16(0)
	w.u64(testTextAddr)
	w.u32(strxPrintf) // _printf
	w.u8(uint8(types.N_UNDF | types.N_EXT))
	w.u8(types.NO_SECT)
	w.u16(0)
	w.u64(0)
	w.u32(strxMalloc) // _malloc
	w.u8(uint8(types.N_UNDF | types.N_EXT))
	w.u8(types.NO_SECT)
	w.u16(0)
	w.u64(0)

	// string table
	w.padTo(testStrOff)
	w.u8(0)
	w.str("_main")
	w.str("_printf")
	w.str("_malloc")

	w.padTo(testFileSize)
	return w.b
}

// buildFat wraps a thin image in a big-endian fat container at the given
// member offset.
func buildFat(thin []byte, memberOff uint32) []byte {
	var w buf
	// fat header and arch table fields are big-endian
	be := func(v uint32) {
		w.b = binary.BigEndian.AppendUint32(w.b, v)
	}
	be(types.MagicFat.Int())
	be(1)
	be(uint32(types.CPUArm64))
	be(uint32(types.CpuSubtypePtrauthAbi | types.CPUSubtypeArm64E))
	be(memberOff)
	be(uint32(len(thin)))
	be(14) // 2^14 page alignment
	w.padTo(int(memberOff))
	w.raw(thin)
	return w.b
}

package types

import "strconv"

// A CPU is a Mach-O cpu type.
type CPU uint32

const (
	cpuArchMask = 0xff000000 /* mask for architecture bits */
	cpuArch64   = 0x01000000 /* 64 bit ABI */
	cpuArch6432 = 0x02000000 /* ABI for 64-bit hardware with 32-bit types; LP32 */
)

const (
	CPUVax     CPU = 1
	CPU386     CPU = 7
	CPUAmd64   CPU = CPU386 | cpuArch64
	CPUArm     CPU = 12
	CPUArm64   CPU = CPUArm | cpuArch64
	CPUArm6432 CPU = CPUArm | cpuArch6432
	CPUPpc     CPU = 18
	CPUPpc64   CPU = CPUPpc | cpuArch64
)

var cpuStrings = []intName{
	{uint32(CPUVax), "VAX"},
	{uint32(CPU386), "i386"},
	{uint32(CPUAmd64), "x86_64"},
	{uint32(CPUArm), "ARM"},
	{uint32(CPUArm64), "ARM64"},
	{uint32(CPUArm6432), "ARM64_32"},
	{uint32(CPUPpc), "PowerPC"},
	{uint32(CPUPpc64), "PowerPC 64"},
}

func (i CPU) Is64bit() bool    { return (uint32(i) & cpuArch64) != 0 }
func (i CPU) String() string   { return stringName(uint32(i), cpuStrings, false) }
func (i CPU) GoString() string { return stringName(uint32(i), cpuStrings, true) }

// A CPUSubtype is a Mach-O cpu subtype. The high byte carries capability
// bits, not part of the subtype proper.
type CPUSubtype uint32

// capability bits
const (
	CpuSubtypeFeatureMask CPUSubtype = 0xff000000
	CpuSubtypeMask        CPUSubtype = ^CpuSubtypeFeatureMask /* mask for subtype proper */
	CpuSubtypeLib64       CPUSubtype = 0x80000000             /* 64 bit libraries */
	CpuSubtypePtrauthAbi  CPUSubtype = 0x80000000             /* pointer authentication (arm64e) */
)

// X86 subtypes
const (
	CPUSubtypeX86All   CPUSubtype = 3
	CPUSubtypeX8664All CPUSubtype = 3
	CPUSubtypeX86Arch1 CPUSubtype = 4
	CPUSubtypeX8664H   CPUSubtype = 8
)

// ARM subtypes
const (
	CPUSubtypeArmAll CPUSubtype = 0
	CPUSubtypeArmV4T CPUSubtype = 5
	CPUSubtypeArmV6  CPUSubtype = 6
	CPUSubtypeArmV5  CPUSubtype = 7
	CPUSubtypeArmV7  CPUSubtype = 9
	CPUSubtypeArmV7S CPUSubtype = 11
	CPUSubtypeArmV7K CPUSubtype = 12
	CPUSubtypeArmV8  CPUSubtype = 13
)

// ARM64 subtypes
const (
	CPUSubtypeArm64All CPUSubtype = 0
	CPUSubtypeArm64V8  CPUSubtype = 1
	CPUSubtypeArm64E   CPUSubtype = 2
)

// ARM64_32 subtypes
const (
	CPUSubtypeArm6432All CPUSubtype = 0
	CPUSubtypeArm6432V8  CPUSubtype = 1
)

var cpuSubtypeX86Strings = []intName{
	{uint32(CPUSubtypeX86All), "x86"},
	{uint32(CPUSubtypeX86Arch1), "x86 Arch1"},
	{uint32(CPUSubtypeX8664H), "x86_64 (Haswell)"},
}
var cpuSubtypeArmStrings = []intName{
	{uint32(CPUSubtypeArmAll), "ArmAll"},
	{uint32(CPUSubtypeArmV4T), "ArmV4T"},
	{uint32(CPUSubtypeArmV5), "ArmV5"},
	{uint32(CPUSubtypeArmV6), "ArmV6"},
	{uint32(CPUSubtypeArmV7), "ArmV7"},
	{uint32(CPUSubtypeArmV7S), "ArmV7s"},
	{uint32(CPUSubtypeArmV7K), "ArmV7k"},
	{uint32(CPUSubtypeArmV8), "ArmV8"},
}
var cpuSubtypeArm64Strings = []intName{
	{uint32(CPUSubtypeArm64All), "arm64"},
	{uint32(CPUSubtypeArm64V8), "arm64"},
	{uint32(CPUSubtypeArm64E), "arm64e"},
}
var cpuSubtypeArm6432Strings = []intName{
	{uint32(CPUSubtypeArm6432All), "arm64_32"},
	{uint32(CPUSubtypeArm6432V8), "arm64_32 (ARMv8)"},
}

// Masked strips the capability byte, leaving the subtype proper.
func (st CPUSubtype) Masked() CPUSubtype {
	return st & CpuSubtypeMask
}

// PtrAuth reports whether the pointer-authentication capability bit is set.
func (st CPUSubtype) PtrAuth() bool {
	return (st & CpuSubtypePtrauthAbi) != 0
}

// String names the subtype for the given cpu type. Any arm64 subtype that
// carries the pointer-authentication bit names as "arm64e" no matter what
// the low-order variant bits say.
func (st CPUSubtype) String(cpu CPU) string {
	switch cpu {
	case CPU386, CPUAmd64:
		return stringName(uint32(st.Masked()), cpuSubtypeX86Strings, false)
	case CPUArm:
		return stringName(uint32(st.Masked()), cpuSubtypeArmStrings, false)
	case CPUArm64:
		if st.PtrAuth() {
			return "arm64e"
		}
		return stringName(uint32(st.Masked()), cpuSubtypeArm64Strings, false)
	case CPUArm6432:
		return stringName(uint32(st.Masked()), cpuSubtypeArm6432Strings, false)
	}
	return "0x" + strconv.FormatUint(uint64(st), 16)
}

package types

const (
	// FatHeaderSize is the on-disk size of a fat_header (magic + nfat_arch).
	FatHeaderSize = 8
	// FatArchSize32 is the on-disk size of a fat_arch record.
	FatArchSize32 = 20
	// FatArchSize64 is the on-disk size of a fat_arch_64 record.
	FatArchSize64 = 32
)

// A FatHeader is the decoded header of a Fat (universal) container.
type FatHeader struct {
	Magic Magic
	Kind  ContainerKind
	NArch uint32
}

// A FatArch is one entry of a fat arch table, either 32- or 64-bit form.
// Offsets and sizes are widened to uint64 at the interface.
type FatArch interface {
	CPUInfo() (CPU, CPUSubtype)
	ImageOffset() uint64
	ImageSize() uint64
	Alignment() uint32 // power of two
}

// FatArch32 is a fat_arch record: five 32-bit fields.
type FatArch32 struct {
	CPU    CPU
	SubCPU CPUSubtype
	Offset uint32
	Size   uint32
	Align  uint32
}

func (a FatArch32) CPUInfo() (CPU, CPUSubtype) { return a.CPU, a.SubCPU }
func (a FatArch32) ImageOffset() uint64        { return uint64(a.Offset) }
func (a FatArch32) ImageSize() uint64          { return uint64(a.Size) }
func (a FatArch32) Alignment() uint32          { return a.Align }

// FatArch64 is a fat_arch_64 record: 64-bit offset and size plus a trailing
// reserved word.
type FatArch64 struct {
	CPU      CPU
	SubCPU   CPUSubtype
	Offset   uint64
	Size     uint64
	Align    uint32
	Reserved uint32
}

func (a FatArch64) CPUInfo() (CPU, CPUSubtype) { return a.CPU, a.SubCPU }
func (a FatArch64) ImageOffset() uint64        { return a.Offset }
func (a FatArch64) ImageSize() uint64          { return a.Size }
func (a FatArch64) Alignment() uint32          { return a.Align }

package types

import "encoding/binary"

// A Magic is the first four bytes of a Mach-O or Fat file, read big-endian
// from disk. The CIGAM variants are the MAGIC constants with their bytes
// reversed, which is what a big-endian read of a little-endian file yields.
type Magic uint32

const (
	Magic32    Magic = 0xfeedface /* MH_MAGIC: 32-bit, file-order == host big-endian */
	Cigam32    Magic = 0xcefaedfe /* MH_CIGAM: 32-bit, byte-swapped */
	Magic64    Magic = 0xfeedfacf /* MH_MAGIC_64 */
	Cigam64    Magic = 0xcffaedfe /* MH_CIGAM_64 */
	MagicFat   Magic = 0xcafebabe /* FAT_MAGIC */
	CigamFat   Magic = 0xbebafeca /* FAT_CIGAM */
	MagicFat64 Magic = 0xcafebabf /* FAT_MAGIC_64 */
	CigamFat64 Magic = 0xbfbafeca /* FAT_CIGAM_64 */
)

var magicStrings = []intName{
	{uint32(Magic32), "32-bit MachO"},
	{uint32(Cigam32), "32-bit MachO (byte-swapped)"},
	{uint32(Magic64), "64-bit MachO"},
	{uint32(Cigam64), "64-bit MachO (byte-swapped)"},
	{uint32(MagicFat), "Fat MachO"},
	{uint32(CigamFat), "Fat MachO (byte-swapped)"},
	{uint32(MagicFat64), "Fat MachO (64-bit offsets)"},
	{uint32(CigamFat64), "Fat MachO (64-bit offsets, byte-swapped)"},
}

func (i Magic) Int() uint32      { return uint32(i) }
func (i Magic) String() string   { return stringName(uint32(i), magicStrings, false) }
func (i Magic) GoString() string { return stringName(uint32(i), magicStrings, true) }

// ContainerKind classifies a file by its magic: thin or fat, 32- or 64-bit
// records, big- or little-endian multi-byte fields.
type ContainerKind int

const (
	Thin32BE ContainerKind = iota + 1
	Thin32LE
	Thin64BE
	Thin64LE
	Fat32BE
	Fat32LE
	Fat64BE
	Fat64LE
)

// ClassifyMagic maps a big-endian read of the first four bytes to a
// ContainerKind. The second result is false for anything that is not one of
// the eight recognized magics.
func ClassifyMagic(m Magic) (ContainerKind, bool) {
	switch m {
	case Magic32:
		return Thin32BE, true
	case Cigam32:
		return Thin32LE, true
	case Magic64:
		return Thin64BE, true
	case Cigam64:
		return Thin64LE, true
	case MagicFat:
		return Fat32BE, true
	case CigamFat:
		return Fat32LE, true
	case MagicFat64:
		return Fat64BE, true
	case CigamFat64:
		return Fat64LE, true
	}
	return 0, false
}

func (k ContainerKind) IsFat() bool {
	return k == Fat32BE || k == Fat32LE || k == Fat64BE || k == Fat64LE
}

func (k ContainerKind) Is64() bool {
	return k == Thin64BE || k == Thin64LE || k == Fat64BE || k == Fat64LE
}

// ByteOrder returns the byte order of the file's multi-byte fields.
func (k ContainerKind) ByteOrder() binary.ByteOrder {
	switch k {
	case Thin32LE, Thin64LE, Fat32LE, Fat64LE:
		return binary.LittleEndian
	default:
		return binary.BigEndian
	}
}

func (k ContainerKind) String() string {
	switch k {
	case Thin32BE:
		return "Mach-O 32-bit (big-endian)"
	case Thin32LE:
		return "Mach-O 32-bit (little-endian)"
	case Thin64BE:
		return "Mach-O 64-bit (big-endian)"
	case Thin64LE:
		return "Mach-O 64-bit (little-endian)"
	case Fat32BE:
		return "Fat (big-endian)"
	case Fat32LE:
		return "Fat (little-endian)"
	case Fat64BE:
		return "Fat 64-bit (big-endian)"
	case Fat64LE:
		return "Fat 64-bit (little-endian)"
	}
	return "unknown container"
}

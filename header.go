package moscope

import (
	"encoding/binary"
	"fmt"

	"github.com/appsworld/moscope/types"
)

// A Header is a decoded thin Mach-O header together with the classification
// of the slice it came from.
type Header struct {
	types.FileHeader
	Kind   types.ContainerKind
	Offset uint64 // file offset of the slice this header heads
}

func (h *Header) ByteOrder() binary.ByteOrder {
	return h.Kind.ByteOrder()
}

func (h *Header) Is64() bool {
	return h.Kind.Is64()
}

// Size returns the on-disk size of the header.
func (h *Header) Size() uint64 {
	if h.Is64() {
		return types.FileHeaderSize64
	}
	return types.FileHeaderSize32
}

// ReadThinHeader re-classifies the magic at the slice offset and decodes
// the full mach header in the classified byte order. A fat magic inside a
// fat member is rejected, nested containers are not a thing.
func ReadThinHeader(data []byte, slice ArchSlice) (*Header, error) {
	off := slice.Offset
	// compare against the remaining length, never off+n, so a slice offset
	// near 2^64 cannot wrap the bounds check
	if off >= uint64(len(data)) || uint64(len(data))-off < 4 {
		return nil, decodeError(ErrTruncatedRecord, off, "slice offset leaves no room for a magic number", nil)
	}
	magic := types.Magic(binary.BigEndian.Uint32(data[off : off+4]))
	kind, ok := types.ClassifyMagic(magic)
	if !ok {
		return nil, decodeError(ErrNotRecognizedContainer, off, "invalid magic number", fmt.Sprintf("%#x", uint32(magic)))
	}
	if kind.IsFat() {
		return nil, decodeError(ErrNotRecognizedContainer, off, "fat magic where a thin image was expected", nil)
	}

	hdrSize := uint64(types.FileHeaderSize32)
	if kind.Is64() {
		hdrSize = types.FileHeaderSize64
	}
	if uint64(len(data))-off < hdrSize {
		return nil, decodeError(ErrTruncatedRecord, off, "slice too small for a mach header", nil)
	}

	bo := kind.ByteOrder()
	h := &Header{Kind: kind, Offset: off}
	h.Magic = magic
	h.CPU = types.CPU(bo.Uint32(data[off+4:]))
	h.SubCPU = types.CPUSubtype(bo.Uint32(data[off+8:]))
	h.Type = types.HeaderFileType(bo.Uint32(data[off+12:]))
	h.NCommands = bo.Uint32(data[off+16:])
	h.SizeCommands = bo.Uint32(data[off+20:])
	h.Flags = types.HeaderFlag(bo.Uint32(data[off+24:]))
	if kind.Is64() {
		h.Reserved = bo.Uint32(data[off+28:])
	}
	return h, nil
}

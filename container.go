package moscope

import (
	"encoding/binary"
	"fmt"

	"github.com/appsworld/moscope/types"
)

// An ArchSlice locates one Mach-O image inside the input. Size is zero for
// thin files, where the image extends to the end of the input.
type ArchSlice struct {
	Offset uint64
	Size   uint64
}

// ClassifyContainer reads the leading magic (big-endian) and classifies the
// input. A fat container must additionally hold a full fat_header.
func ClassifyContainer(data []byte) (types.ContainerKind, error) {
	if len(data) < 4 {
		return 0, decodeError(ErrTruncatedRecord, 0, "file too small for a magic number", len(data))
	}
	magic := types.Magic(binary.BigEndian.Uint32(data[:4]))
	kind, ok := types.ClassifyMagic(magic)
	if !ok {
		return 0, decodeError(ErrNotRecognizedContainer, 0, "invalid magic number", fmt.Sprintf("%#x", uint32(magic)))
	}
	if kind.IsFat() && len(data) < types.FatHeaderSize {
		return 0, decodeError(ErrTruncatedRecord, 0, "file too small for a fat header", len(data))
	}
	return kind, nil
}

// ReadFatHeader decodes the fat_header of a fat container.
func ReadFatHeader(data []byte) (*types.FatHeader, error) {
	kind, err := ClassifyContainer(data)
	if err != nil {
		return nil, err
	}
	if !kind.IsFat() {
		return nil, decodeError(ErrNotRecognizedContainer, 0, "thin magic where a fat container was expected", nil)
	}
	return &types.FatHeader{
		Magic: types.Magic(binary.BigEndian.Uint32(data[:4])),
		Kind:  kind,
		NArch: kind.ByteOrder().Uint32(data[4:8]),
	}, nil
}

// ReadFatArchs decodes the fat arch table that follows the fat header. Each
// record is bounds-checked before it is read; the image ranges the records
// declare are validated later, per slice, so one bad member cannot take the
// container down.
func ReadFatArchs(data []byte, hdr *types.FatHeader) ([]types.FatArch, error) {
	bo := hdr.Kind.ByteOrder()
	is64 := hdr.Kind.Is64()

	recSize := uint64(types.FatArchSize32)
	if is64 {
		recSize = types.FatArchSize64
	}

	archs := make([]types.FatArch, 0, hdr.NArch)
	cursor := uint64(types.FatHeaderSize)
	for i := uint32(0); i < hdr.NArch; i++ {
		if cursor+recSize > uint64(len(data)) {
			return nil, decodeError(ErrTruncatedRecord, cursor,
				fmt.Sprintf("fat_arch[%d] extends beyond EOF", i), nil)
		}
		rec := data[cursor : cursor+recSize]
		if is64 {
			archs = append(archs, types.FatArch64{
				CPU:      types.CPU(bo.Uint32(rec[0:4])),
				SubCPU:   types.CPUSubtype(bo.Uint32(rec[4:8])),
				Offset:   bo.Uint64(rec[8:16]),
				Size:     bo.Uint64(rec[16:24]),
				Align:    bo.Uint32(rec[24:28]),
				Reserved: bo.Uint32(rec[28:32]),
			})
		} else {
			archs = append(archs, types.FatArch32{
				CPU:    types.CPU(bo.Uint32(rec[0:4])),
				SubCPU: types.CPUSubtype(bo.Uint32(rec[4:8])),
				Offset: bo.Uint32(rec[8:12]),
				Size:   bo.Uint32(rec[12:16]),
				Align:  bo.Uint32(rec[16:20]),
			})
		}
		cursor += recSize
	}
	return archs, nil
}

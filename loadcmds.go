package moscope

import (
	"encoding/binary"
	"fmt"

	"github.com/appsworld/moscope/types"
)

// A LoadCommand is one validated entry of the load-command region: opcode,
// declared size and the absolute file offset of the record. The command
// payload is decoded later, by the per-opcode parsers.
type LoadCommand struct {
	Cmd    types.LoadCmd
	Size   uint32
	Offset uint64
}

// ReadLoadCommands walks ncmds load commands starting at offset. Every
// record must have its 8-byte prologue in bounds, a cmdsize of at least 8
// that is a multiple of the word size (4 for 32-bit images, 8 for 64-bit),
// and must end inside the input. The cursor advances by cmdsize only after
// all checks pass, so a lying cmdsize can never move it out of bounds.
func ReadLoadCommands(data []byte, offset uint64, ncmds uint32, wordSize int, bo binary.ByteOrder) ([]LoadCommand, error) {
	var align uint32
	switch wordSize {
	case 32:
		align = 4
	case 64:
		align = 8
	default:
		return nil, fmt.Errorf("unsupported word size %d", wordSize)
	}

	cmds := make([]LoadCommand, 0, ncmds)
	cursor := offset
	for i := uint32(0); i < ncmds; i++ {
		if cursor+types.LoadCmdHeaderSize > uint64(len(data)) {
			return nil, decodeError(ErrTruncatedRecord, cursor,
				fmt.Sprintf("load command %d has no room for cmd/cmdsize", i), nil)
		}
		cmd := types.LoadCmd(bo.Uint32(data[cursor : cursor+4]))
		size := bo.Uint32(data[cursor+4 : cursor+8])
		if size < types.LoadCmdHeaderSize {
			return nil, decodeError(ErrOutOfBoundsReference, cursor,
				fmt.Sprintf("load command %d cmdsize smaller than its own prologue", i), size)
		}
		if size%align != 0 {
			return nil, decodeError(ErrMisalignedRecord, cursor,
				fmt.Sprintf("load command %d cmdsize not a multiple of %d", i, align), size)
		}
		if cursor+uint64(size) > uint64(len(data)) {
			return nil, decodeError(ErrOutOfBoundsReference, cursor,
				fmt.Sprintf("load command %d extends beyond EOF", i), size)
		}
		cmds = append(cmds, LoadCommand{Cmd: cmd, Size: size, Offset: cursor})
		cursor += uint64(size)
	}
	return cmds, nil
}

package moscope

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/appsworld/moscope/types"
)

func dylibCmd(pathBytes []byte, nameOff uint32, cmdsize uint32) ([]byte, LoadCommand) {
	var w buf
	w.u32(uint32(types.LC_LOAD_DYLIB))
	w.u32(cmdsize)
	w.u32(nameOff)
	w.u32(0)
	w.u32(0x00010000)
	w.u32(0x00010000)
	w.raw(pathBytes)
	w.padTo(int(cmdsize))
	return w.b, LoadCommand{Cmd: types.LC_LOAD_DYLIB, Size: cmdsize, Offset: 0}
}

func TestParseDylib(t *testing.T) {
	data, lc := dylibCmd([]byte("/usr/lib/libz.dylib\x00"), 24, 48)
	d, err := ParseDylib(data, lc, binary.LittleEndian)
	if err != nil {
		t.Fatalf("ParseDylib() error = %v", err)
	}
	if d.Path != "/usr/lib/libz.dylib" {
		t.Errorf("Path = %q", d.Path)
	}
	if d.Kind != DylibLoad {
		t.Errorf("Kind = %v, want %v", d.Kind, DylibLoad)
	}
	if got := d.CurrentVersion.String(); got != "1.0.0" {
		t.Errorf("CurrentVersion = %q", got)
	}
}

func TestParseDylibNameOffsetOutOfRange(t *testing.T) {
	data, lc := dylibCmd([]byte("/usr/lib/libz.dylib\x00"), 200, 48)
	_, err := ParseDylib(data, lc, binary.LittleEndian)
	var derr *DecodeError
	if !errors.As(err, &derr) || derr.Kind != ErrOutOfBoundsReference {
		t.Fatalf("error = %v, want out of bounds reference", err)
	}
}

func TestParseDylibNameOffsetInsidePrologue(t *testing.T) {
	data, lc := dylibCmd([]byte("/usr/lib/libz.dylib\x00"), 4, 48)
	_, err := ParseDylib(data, lc, binary.LittleEndian)
	var derr *DecodeError
	if !errors.As(err, &derr) || derr.Kind != ErrOutOfBoundsReference {
		t.Fatalf("error = %v, want out of bounds reference", err)
	}
}

func TestParseDylibUnterminated(t *testing.T) {
	// path bytes fill the command to its end with no NUL
	data, lc := dylibCmd([]byte("/usr/lib/libz.dylibXXXXX"), 24, 48)
	_, err := ParseDylib(data, lc, binary.LittleEndian)
	var derr *DecodeError
	if !errors.As(err, &derr) || derr.Kind != ErrUnterminatedString {
		t.Fatalf("error = %v, want unterminated string", err)
	}
}

func TestParseDylibInvalidUTF8(t *testing.T) {
	data, lc := dylibCmd([]byte{0xff, 0xfe, 0xfd, 0x00}, 24, 48)
	_, err := ParseDylib(data, lc, binary.LittleEndian)
	var derr *DecodeError
	if !errors.As(err, &derr) || derr.Kind != ErrInvalidEncoding {
		t.Fatalf("error = %v, want invalid encoding", err)
	}
}

func TestParseRpath(t *testing.T) {
	var w buf
	w.u32(uint32(types.LC_RPATH))
	w.u32(32)
	w.u32(12)
	w.str("@loader_path/..")
	w.padTo(32)
	lc := LoadCommand{Cmd: types.LC_RPATH, Size: 32, Offset: 0}
	rp, err := ParseRpath(w.b, lc, binary.LittleEndian)
	if err != nil {
		t.Fatalf("ParseRpath() error = %v", err)
	}
	if rp.Path != "@loader_path/.." {
		t.Errorf("Path = %q", rp.Path)
	}
}

package moscope

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	"github.com/appsworld/moscope/types"
)

// DylibKind says which opcode produced a dylib record: the identity of a
// library (LC_ID_DYLIB) or one of the five dependency flavors.
type DylibKind int

const (
	DylibSelf DylibKind = iota + 1
	DylibLoad
	DylibWeak
	DylibReexport
	DylibLazy
	DylibUpward
)

func (k DylibKind) String() string {
	switch k {
	case DylibSelf:
		return "id"
	case DylibLoad:
		return "load"
	case DylibWeak:
		return "weak"
	case DylibReexport:
		return "reexport"
	case DylibLazy:
		return "lazy"
	case DylibUpward:
		return "upward"
	}
	return "unknown"
}

func dylibKindForCmd(cmd types.LoadCmd) (DylibKind, bool) {
	switch cmd {
	case types.LC_ID_DYLIB:
		return DylibSelf, true
	case types.LC_LOAD_DYLIB:
		return DylibLoad, true
	case types.LC_LOAD_WEAK_DYLIB:
		return DylibWeak, true
	case types.LC_REEXPORT_DYLIB:
		return DylibReexport, true
	case types.LC_LAZY_LOAD_DYLIB:
		return DylibLazy, true
	case types.LC_LOAD_UPWARD_DYLIB:
		return DylibUpward, true
	}
	return 0, false
}

// A Dylib is a decoded dylib load command.
type Dylib struct {
	Path           string
	Time           uint32
	CurrentVersion types.Version
	CompatVersion  types.Version
	Kind           DylibKind
	Cmd            LoadCommand
}

// A Rpath is a decoded LC_RPATH.
type Rpath struct {
	Path string
	Cmd  LoadCommand
}

// ParseDylib decodes any of the six dylib command flavors. The path is an
// lc_str: a 32-bit offset relative to the command start, required to land
// inside the command and to reach a NUL before cmdsize runs out.
func ParseDylib(data []byte, lc LoadCommand, bo binary.ByteOrder) (*Dylib, error) {
	kind, ok := dylibKindForCmd(lc.Cmd)
	if !ok {
		return nil, fmt.Errorf("cannot parse %s as a dylib command", lc.Cmd)
	}
	if lc.Size < types.DylibCmdSize {
		return nil, decodeError(ErrTruncatedRecord, lc.Offset, "dylib command smaller than its fixed header", lc.Size)
	}
	base := lc.Offset
	nameOff := bo.Uint32(data[base+8:])
	path, err := lcString(data, lc, nameOff)
	if err != nil {
		return nil, err
	}
	return &Dylib{
		Path:           path,
		Time:           bo.Uint32(data[base+12:]),
		CurrentVersion: types.Version(bo.Uint32(data[base+16:])),
		CompatVersion:  types.Version(bo.Uint32(data[base+20:])),
		Kind:           kind,
		Cmd:            lc,
	}, nil
}

// ParseRpath decodes an LC_RPATH command.
func ParseRpath(data []byte, lc LoadCommand, bo binary.ByteOrder) (*Rpath, error) {
	if lc.Cmd != types.LC_RPATH {
		return nil, fmt.Errorf("cannot parse %s as an rpath command", lc.Cmd)
	}
	if lc.Size < types.RpathCmdSize {
		return nil, decodeError(ErrTruncatedRecord, lc.Offset, "rpath command smaller than its fixed header", lc.Size)
	}
	path, err := lcString(data, lc, bo.Uint32(data[lc.Offset+8:]))
	if err != nil {
		return nil, err
	}
	return &Rpath{Path: path, Cmd: lc}, nil
}

// lcString extracts an inline NUL-terminated string from a load command.
// strOff is relative to the command start and the string may use at most
// the bytes up to cmdsize.
func lcString(data []byte, lc LoadCommand, strOff uint32) (string, error) {
	if strOff < types.LoadCmdHeaderSize || uint64(strOff) >= uint64(lc.Size) {
		return "", decodeError(ErrOutOfBoundsReference, lc.Offset, "string offset outside its load command", strOff)
	}
	raw := data[lc.Offset+uint64(strOff) : lc.Offset+uint64(lc.Size)]
	i := bytes.IndexByte(raw, 0)
	if i < 0 {
		return "", decodeError(ErrUnterminatedString, lc.Offset, "no NUL before the end of the load command", strOff)
	}
	if !utf8.Valid(raw[:i]) {
		return "", decodeError(ErrInvalidEncoding, lc.Offset, "load command string is not valid UTF-8", nil)
	}
	return string(raw[:i]), nil
}

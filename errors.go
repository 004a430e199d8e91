// Package moscope analyzes Mach-O and Fat (universal) binaries statically:
// container classification, load-command walking, segment/section decoding,
// dylib dependencies, symbol tables and embedded strings, all from the raw
// file bytes and without trusting any length or offset the file declares.
package moscope

import "fmt"

// An ErrorKind says which structural rule a malformed input broke.
type ErrorKind int

const (
	// ErrNotRecognizedContainer: the leading magic is none of the eight
	// recognized Mach-O/Fat magics.
	ErrNotRecognizedContainer ErrorKind = iota + 1
	// ErrTruncatedRecord: the input ends before a fixed-size record does.
	ErrTruncatedRecord
	// ErrOutOfBoundsReference: a declared offset, size or index points
	// outside the file or outside its own enclosing record.
	ErrOutOfBoundsReference
	// ErrMisalignedRecord: a cmdsize violates the word-size alignment rule.
	ErrMisalignedRecord
	// ErrUnterminatedString: an inline string has no NUL before its bound.
	ErrUnterminatedString
	// ErrInvalidEncoding: bytes that must be UTF-8 are not.
	ErrInvalidEncoding
)

func (k ErrorKind) String() string {
	switch k {
	case ErrNotRecognizedContainer:
		return "not a recognized container"
	case ErrTruncatedRecord:
		return "truncated record"
	case ErrOutOfBoundsReference:
		return "out of bounds reference"
	case ErrMisalignedRecord:
		return "misaligned record"
	case ErrUnterminatedString:
		return "unterminated string"
	case ErrInvalidEncoding:
		return "invalid encoding"
	}
	return "unknown error"
}

// A DecodeError reports a structural failure at a specific byte offset of
// the input. Val, when non-nil, is the offending value.
type DecodeError struct {
	Kind   ErrorKind
	Offset uint64
	Msg    string
	Val    any
}

func (e *DecodeError) Error() string {
	msg := e.Msg
	if e.Val != nil {
		msg += fmt.Sprintf(" '%v'", e.Val)
	}
	return msg + fmt.Sprintf(" in record at byte %#x", e.Offset)
}

func decodeError(kind ErrorKind, off uint64, msg string, val any) *DecodeError {
	return &DecodeError{Kind: kind, Offset: off, Msg: msg, Val: val}
}

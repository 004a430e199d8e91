package types

// An Nlist64 is a Mach-O 64-bit symbol table entry.
type Nlist64 struct {
	Strx  uint32 // index into the string table
	Type  NLType
	Sect  uint8
	Desc  uint16
	Value uint64
}

// An Nlist32 is a Mach-O 32-bit symbol table entry.
type Nlist32 struct {
	Strx  uint32
	Type  NLType
	Sect  uint8
	Desc  uint16
	Value uint32
}

const (
	// NlistSize32 is the on-disk size of an nlist record.
	NlistSize32 = 12
	// NlistSize64 is the on-disk size of an nlist_64 record.
	NlistSize64 = 16
)

// NO_SECT is the n_sect value of symbols defined in no section.
const NO_SECT = 0

// Reserved indirect symbol table entries.
const (
	INDIRECT_SYMBOL_LOCAL uint32 = 0x80000000
	INDIRECT_SYMBOL_ABS   uint32 = 0x40000000
)

// An NLType is the n_type byte of an nlist entry.
type NLType uint8

const (
	N_STAB NLType = 0xe0 /* if any of these bits set, a symbolic debugging entry */
	N_PEXT NLType = 0x10 /* private external symbol bit */
	N_TYPE NLType = 0x0e /* mask for the type bits */
	N_EXT  NLType = 0x01 /* external symbol bit, set for external symbols */
)

// values of n_type & N_TYPE
const (
	N_UNDF NLType = 0x0 /* undefined, n_sect == NO_SECT */
	N_ABS  NLType = 0x2 /* absolute, n_sect == NO_SECT */
	N_SECT NLType = 0xe /* defined in section number n_sect */
	N_PBUD NLType = 0xc /* prebound undefined (defined in a dylib) */
	N_INDR NLType = 0xa /* indirect */
)

func (t NLType) IsDebugSym() bool {
	return (t & N_STAB) != 0
}

func (t NLType) IsPrivateExternalSym() bool {
	return (t & N_PEXT) != 0
}

func (t NLType) IsExternalSym() bool {
	return (t & N_EXT) != 0
}

func (t NLType) IsUndefinedSym() bool {
	return (t & N_TYPE) == N_UNDF
}

func (t NLType) IsAbsoluteSym() bool {
	return (t & N_TYPE) == N_ABS
}

func (t NLType) IsDefinedInSection() bool {
	return (t & N_TYPE) == N_SECT
}

func (t NLType) IsPreboundUndefinedSym() bool {
	return (t & N_TYPE) == N_PBUD
}

func (t NLType) IsIndirectSym() bool {
	return (t & N_TYPE) == N_INDR
}

package moscope

// A VMImage is a flat reconstruction of the slice's virtual address space:
// one zero-filled buffer spanning the lowest to the highest mapped segment
// address, with each segment's file bytes copied to its vmaddr. Zerofill
// tails stay zero; segments whose file range falls outside the input are
// skipped rather than rejected, so a truncated input still yields whatever
// can be read.
type VMImage struct {
	buffer []byte
	base   uint64
}

// NewVMImage builds the image for one slice. sliceOffset translates the
// segments' slice-relative file offsets into positions in data.
func NewVMImage(segments []*Segment, data []byte, sliceOffset uint64) *VMImage {
	var (
		base   uint64
		limit  uint64
		mapped bool
	)
	for _, seg := range segments {
		if seg.Memsz == 0 {
			continue
		}
		end := seg.Addr + seg.Memsz
		if end < seg.Addr {
			// the declared span wraps the address space, leave it unmapped
			continue
		}
		if !mapped || seg.Addr < base {
			base = seg.Addr
		}
		if !mapped || end > limit {
			limit = end
		}
		mapped = true
	}
	if !mapped {
		return &VMImage{}
	}

	// A hostile vmaddr layout can spread the segments across the whole
	// address space; real images (a 4 GiB __PAGEZERO included) stay far
	// under this, so give up on the image rather than allocate the span.
	const maxImageSpan = 1 << 36
	span := limit - base
	if span > maxImageSpan {
		return &VMImage{}
	}

	im := &VMImage{buffer: make([]byte, span), base: base}
	for _, seg := range segments {
		if seg.Memsz == 0 || seg.Filesz == 0 {
			continue
		}
		if seg.Addr+seg.Memsz < seg.Addr {
			continue
		}
		fileStart := sliceOffset + seg.Offset
		fileEnd := fileStart + seg.Filesz
		if fileStart < sliceOffset || fileEnd < fileStart || fileEnd > uint64(len(data)) {
			continue
		}
		vmOff := seg.Addr - base
		if vmOff > uint64(len(im.buffer)) {
			continue
		}
		n := seg.Filesz
		if n > seg.Memsz {
			n = seg.Memsz
		}
		if n > uint64(len(im.buffer))-vmOff {
			continue
		}
		copy(im.buffer[vmOff:vmOff+n], data[fileStart:fileStart+n])
	}
	return im
}

// Base returns the lowest mapped virtual address.
func (im *VMImage) Base() uint64 {
	return im.base
}

// Len returns the span of the image in bytes.
func (im *VMImage) Len() int {
	return len(im.buffer)
}

// Read returns size bytes at virtual address addr, or nil when the range is
// not inside the image.
func (im *VMImage) Read(addr, size uint64) []byte {
	var start uint64
	if addr > im.base {
		start = addr - im.base
	}
	end := start + size
	if end < start || end > uint64(len(im.buffer)) {
		return nil
	}
	return im.buffer[start:end]
}

// ReadSection returns the section's bytes out of the image, or nil when the
// section's address range is not covered. Never panics, whatever the
// section declares.
func (im *VMImage) ReadSection(sec *Section) []byte {
	if sec.Size == 0 {
		return nil
	}
	return im.Read(sec.Addr, sec.Size)
}

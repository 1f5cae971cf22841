package ihex

// Image is a parsed Intel HEX file.
type Image struct {
	// Segments holds the data records, with records that continue each
	// other merged. Segments appear in file order.
	Segments []*Segment

	// Start is the entry point from a type 03 or 05 record, if any
	Start uint32

	// HasStart reports whether the file carried a start address record
	HasStart bool
}

// Segment is a run of contiguous bytes.
type Segment struct {
	// Address is the absolute address of Data[0]
	Address uint32

	// Data is the segment content
	Data []byte
}

// End returns the address one past the last byte of the segment.
func (s *Segment) End() uint32 {
	return s.Address + uint32(len(s.Data))
}

// Size returns the number of data bytes in the image.
func (img *Image) Size() int {
	n := 0
	for _, s := range img.Segments {
		n += len(s.Data)
	}
	return n
}

// Bounds returns the lowest address and the address one past the highest
// byte in the image. An empty image returns 0, 0.
func (img *Image) Bounds() (low, high uint32) {
	for i, s := range img.Segments {
		if i == 0 || s.Address < low {
			low = s.Address
		}
		if s.End() > high {
			high = s.End()
		}
	}
	return low, high
}

// add appends data at addr, extending the last segment when contiguous.
func (img *Image) add(addr uint32, data []byte) {
	if n := len(img.Segments); n > 0 {
		last := img.Segments[n-1]
		if last.End() == addr {
			last.Data = append(last.Data, data...)
			return
		}
	}
	img.Segments = append(img.Segments, &Segment{
		Address: addr,
		Data:    append([]byte(nil), data...),
	})
}

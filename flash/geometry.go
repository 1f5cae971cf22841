package flash

import "fmt"

// Geometry describes the chip layout in bytes. It is supplied by the caller
// from the datasheet and only used for address arithmetic.
type Geometry struct {
	// PageSize is the largest chunk a single program command may carry
	PageSize int

	// SectorSize is the unit of EraseSectors
	SectorSize int

	// BlockSize is the unit of EraseBlocks
	BlockSize int

	// ChipSize is the total capacity
	ChipSize int
}

// Validate rejects sizes that would break address arithmetic. It does not
// check the sizes against each other or against the device.
func (g Geometry) Validate() error {
	fields := []struct {
		name  string
		value int
	}{
		{"page size", g.PageSize},
		{"sector size", g.SectorSize},
		{"block size", g.BlockSize},
		{"chip size", g.ChipSize},
	}

	for _, f := range fields {
		if f.value <= 0 {
			return &GeometryError{Field: f.name, Value: f.value}
		}
	}

	return nil
}

func (g Geometry) String() string {
	return fmt.Sprintf("page=%d sector=%d block=%d chip=%d",
		g.PageSize, g.SectorSize, g.BlockSize, g.ChipSize)
}

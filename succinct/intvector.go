package succinct

import (
	"fmt"
	"io"
	"math/bits"
)

// BitLen returns the number of bits needed to store value, at least 1.
func BitLen(value uint64) uint {
	if value == 0 {
		return 1
	}
	return uint(bits.Len64(value))
}

// IntVector is a vector of unsigned integers packed at a fixed bit width.
type IntVector struct {
	length uint64
	width  uint
	words  []uint64
}

// NewIntVector returns a zero-filled vector of the given length whose
// entries are width bits wide. Width is clamped to [1, 64].
func NewIntVector(length uint64, width uint) *IntVector {
	if width == 0 {
		width = 1
	}
	if width > 64 {
		width = 64
	}
	return &IntVector{
		length: length,
		width:  width,
		words:  make([]uint64, (length*uint64(width)+63)/64),
	}
}

// Len returns the number of entries.
func (v *IntVector) Len() uint64 { return v.length }

// Width returns the entry width in bits.
func (v *IntVector) Width() uint { return v.width }

// Get returns entry i.
func (v *IntVector) Get(i uint64) uint64 {
	return getBits(v.words, i*uint64(v.width), v.width)
}

// Set stores value at entry i. Bits above the vector width are dropped.
func (v *IntVector) Set(i, value uint64) {
	value &= 1<<v.width - 1
	bitPos := i * uint64(v.width)
	word, offset := bitPos/64, bitPos%64
	mask := (uint64(1)<<v.width - 1) << offset
	v.words[word] = v.words[word]&^mask | value<<offset
	if offset+uint64(v.width) > 64 {
		spill := offset + uint64(v.width) - 64
		highMask := uint64(1)<<spill - 1
		v.words[word+1] = v.words[word+1]&^highMask | value>>(64-offset)
	}
}

// Serialize writes the vector: length, width, then the packed words.
func (v *IntVector) Serialize(w io.Writer) error {
	if err := WriteUint64(w, v.length); err != nil {
		return err
	}
	if err := WriteUint64(w, uint64(v.width)); err != nil {
		return err
	}
	return writeWords(w, v.words)
}

// LoadIntVector reads a vector serialized by Serialize.
func LoadIntVector(r io.Reader) (*IntVector, error) {
	length, err := ReadUint64(r)
	if err != nil {
		return nil, err
	}
	width, err := ReadUint64(r)
	if err != nil {
		return nil, err
	}
	if width == 0 || width > 64 {
		return nil, fmt.Errorf("int vector width %d: %w", width, ErrBadHeader)
	}
	words, err := readWords(r)
	if err != nil {
		return nil, err
	}
	if uint64(len(words)) != (length*width+63)/64 {
		return nil, fmt.Errorf("int vector of length %d width %d with %d words: %w", length, width, len(words), ErrBadHeader)
	}
	return &IntVector{length: length, width: uint(width), words: words}, nil
}

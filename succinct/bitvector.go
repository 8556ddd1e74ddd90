package succinct

import (
	"fmt"
	"io"
	"math/bits"
)

// BitVector is a plain bit vector with constant-time rank. The rank
// directory stores the cumulative 1-count at the start of every word and is
// rebuilt on the first rank query after a mutation. Concurrent readers must
// not overlap with Set; querying once after the last Set finalizes the
// directory.
type BitVector struct {
	length uint64
	words  []uint64
	rank   []uint64
}

// NewBitVector returns an all-zero vector of the given length.
func NewBitVector(length uint64) *BitVector {
	return &BitVector{
		length: length,
		words:  make([]uint64, (length+63)/64),
	}
}

// Len returns the length of the vector in bits.
func (b *BitVector) Len() uint64 { return b.length }

// Set sets bit i. Setting invalidates the rank directory; it is rebuilt
// lazily on the next Rank or Count.
func (b *BitVector) Set(i uint64) {
	b.words[i/64] |= 1 << (i % 64)
	b.rank = nil
}

// Get reports whether bit i is set.
func (b *BitVector) Get(i uint64) bool {
	return b.words[i/64]&(1<<(i%64)) != 0
}

// Rank returns the number of set bits strictly before position i. Positions
// at or past the end count every set bit.
func (b *BitVector) Rank(i uint64) uint64 {
	if i > b.length {
		i = b.length
	}
	b.ensureRank()
	word := i / 64
	if word >= uint64(len(b.words)) {
		return b.rank[len(b.words)]
	}
	return b.rank[word] + uint64(bits.OnesCount64(b.words[word]&(1<<(i%64)-1)))
}

// Count returns the total number of set bits.
func (b *BitVector) Count() uint64 {
	b.ensureRank()
	return b.rank[len(b.words)]
}

func (b *BitVector) ensureRank() {
	if b.rank != nil {
		return
	}
	b.rank = make([]uint64, len(b.words)+1)
	for i, word := range b.words {
		b.rank[i+1] = b.rank[i] + uint64(bits.OnesCount64(word))
	}
}

// Serialize writes the vector: length, then the raw words.
func (b *BitVector) Serialize(w io.Writer) error {
	if err := WriteUint64(w, b.length); err != nil {
		return err
	}
	return writeWords(w, b.words)
}

// Load replaces the vector contents from r.
func (b *BitVector) Load(r io.Reader) error {
	length, err := ReadUint64(r)
	if err != nil {
		return err
	}
	words, err := readWords(r)
	if err != nil {
		return err
	}
	if uint64(len(words)) != (length+63)/64 {
		return fmt.Errorf("bit vector of length %d with %d words: %w", length, len(words), ErrBadHeader)
	}
	b.length = length
	b.words = words
	b.rank = nil
	b.ensureRank()
	return nil
}

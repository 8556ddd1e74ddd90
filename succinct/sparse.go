package succinct

import (
	"fmt"
	"io"
	"math/bits"
)

// Sparse is an immutable Elias-Fano coded set of strictly increasing
// positions over a universe [0, length). Build one with SparseBuilder.
//
// Each position splits into a low half of lowBits bits, packed into the low
// array, and a high half, unary coded into the high bit array: the i-th
// position (0-based) sets high bit highPart(i)+i. Rank and select walk the
// high array through a per-word cumulative directory.
type Sparse struct {
	length  uint64
	ones    uint64
	lowBits uint
	low     []uint64
	high    []uint64
	// highRank[i] is the number of set bits in high words [0, i).
	highRank []uint64
}

// SparseBuilder assembles a Sparse from its 1-positions, which must be set
// in strictly increasing order. The universe length and the total 1-count
// are fixed up front so the encoded widths can be chosen before the first
// position arrives.
type SparseBuilder struct {
	v    *Sparse
	next uint64
	prev uint64
}

// NewSparseBuilder returns a builder for a vector of the given universe
// length containing ones set bits.
func NewSparseBuilder(length, ones uint64) *SparseBuilder {
	v := &Sparse{length: length, ones: ones}
	if ones > 0 && length > ones {
		v.lowBits = uint(bits.Len64(length/ones) - 1)
	}
	lowWords := (ones*uint64(v.lowBits) + 63) / 64
	highBits := ones + length>>v.lowBits + 1
	v.low = make([]uint64, lowWords)
	v.high = make([]uint64, (highBits+63)/64)
	return &SparseBuilder{v: v}
}

// Set records the next 1-position. Positions must be strictly increasing
// and inside the universe; violations panic, as the callers enumerate
// offsets whose order they already guarantee.
func (b *SparseBuilder) Set(pos uint64) {
	if b.next >= b.v.ones || pos >= b.v.length {
		panic("succinct: sparse builder position out of bounds")
	}
	if b.next > 0 && pos <= b.prev {
		panic("succinct: sparse builder positions must be strictly increasing")
	}
	v := b.v
	if v.lowBits > 0 {
		setBits(v.low, b.next*uint64(v.lowBits), pos&(1<<v.lowBits-1), v.lowBits)
	}
	highPos := pos>>v.lowBits + b.next
	v.high[highPos/64] |= 1 << (highPos % 64)
	b.prev = pos
	b.next++
}

// Finish completes the build and returns the vector. It panics if fewer
// positions were set than declared.
func (b *SparseBuilder) Finish() *Sparse {
	if b.next != b.v.ones {
		panic("succinct: sparse builder is missing positions")
	}
	b.v.buildRank()
	return b.v
}

// Len returns the universe length.
func (s *Sparse) Len() uint64 { return s.length }

// Ones returns the number of set positions.
func (s *Sparse) Ones() uint64 { return s.ones }

// Get reports whether position p is set.
func (s *Sparse) Get(p uint64) bool {
	return s.Rank(p+1) > s.Rank(p)
}

// Rank returns the number of set positions strictly before p.
func (s *Sparse) Rank(p uint64) uint64 {
	if s.ones == 0 || p == 0 {
		return 0
	}
	if p > s.length {
		p = s.length
	}
	h := p >> s.lowBits
	// Skip past the elements whose high part is below h: they precede the
	// h-th 0 in the high array.
	var before, pos uint64
	if h > 0 {
		pos = s.selectZero(h) + 1
		before = pos - h
	}
	if s.lowBits == 0 {
		// Without a low half, a candidate sharing the high part equals p
		// exactly and is not below it.
		return before
	}
	// The remaining candidates share the high part h; their low halves are
	// strictly increasing, so stop at the first one at or above p's.
	low := p & (1<<s.lowBits - 1)
	count := before
	for i := before; i < s.ones; i++ {
		bitPos := pos + (i - before)
		if s.high[bitPos/64]&(1<<(bitPos%64)) == 0 {
			break
		}
		if getBits(s.low, i*uint64(s.lowBits), s.lowBits) >= low {
			break
		}
		count++
	}
	return count
}

// Select returns the position of the k-th set bit, 1-based. k must be in
// [1, Ones()].
func (s *Sparse) Select(k uint64) uint64 {
	if k == 0 || k > s.ones {
		panic("succinct: select rank out of range")
	}
	highPos := s.selectOne(k)
	highValue := highPos - (k - 1)
	if s.lowBits == 0 {
		return highValue
	}
	return highValue<<s.lowBits | getBits(s.low, (k-1)*uint64(s.lowBits), s.lowBits)
}

func (s *Sparse) buildRank() {
	s.highRank = make([]uint64, len(s.high)+1)
	for i, word := range s.high {
		s.highRank[i+1] = s.highRank[i] + uint64(bits.OnesCount64(word))
	}
}

// selectOne returns the bit position of the k-th set bit in high, 1-based.
func (s *Sparse) selectOne(k uint64) uint64 {
	word := s.searchRank(s.highRank, k)
	remaining := k - s.highRank[word]
	return word*64 + selectInWord(s.high[word], remaining)
}

// selectZero returns the bit position of the k-th clear bit in high,
// 1-based.
func (s *Sparse) selectZero(k uint64) uint64 {
	// Zeros per word are derived from the ones directory.
	low, high := uint64(0), uint64(len(s.high))
	for low < high {
		mid := low + (high-low)/2
		zeros := (mid+1)*64 - s.highRank[mid+1]
		if zeros < k {
			low = mid + 1
		} else {
			high = mid
		}
	}
	word := low
	remaining := k - (word*64 - s.highRank[word])
	return word*64 + selectInWord(^s.high[word], remaining)
}

// searchRank returns the index of the word containing the k-th set bit
// given a cumulative directory.
func (s *Sparse) searchRank(rank []uint64, k uint64) uint64 {
	low, high := uint64(0), uint64(len(rank)-1)
	for low < high {
		mid := low + (high-low)/2
		if rank[mid+1] < k {
			low = mid + 1
		} else {
			high = mid
		}
	}
	return low
}

// selectInWord returns the offset of the k-th set bit within word, 1-based.
func selectInWord(word uint64, k uint64) uint64 {
	for i := uint64(1); i < k; i++ {
		word &= word - 1
	}
	return uint64(bits.TrailingZeros64(word))
}

func setBits(words []uint64, bitPos, value uint64, width uint) {
	word, offset := bitPos/64, bitPos%64
	words[word] |= value << offset
	if offset+uint64(width) > 64 {
		words[word+1] |= value >> (64 - offset)
	}
}

func getBits(words []uint64, bitPos uint64, width uint) uint64 {
	word, offset := bitPos/64, bitPos%64
	value := words[word] >> offset
	if offset+uint64(width) > 64 {
		value |= words[word+1] << (64 - offset)
	}
	return value & (1<<width - 1)
}

// Serialize writes the vector: length, ones, low bit width, then the low
// and high word arrays. The rank directory is derived again on load.
func (s *Sparse) Serialize(w io.Writer) error {
	if err := WriteUint64(w, s.length); err != nil {
		return err
	}
	if err := WriteUint64(w, s.ones); err != nil {
		return err
	}
	if err := WriteUint64(w, uint64(s.lowBits)); err != nil {
		return err
	}
	if err := writeWords(w, s.low); err != nil {
		return err
	}
	return writeWords(w, s.high)
}

// LoadSparse reads a vector serialized by Serialize.
func LoadSparse(r io.Reader) (*Sparse, error) {
	length, err := ReadUint64(r)
	if err != nil {
		return nil, err
	}
	ones, err := ReadUint64(r)
	if err != nil {
		return nil, err
	}
	lowBits, err := ReadUint64(r)
	if err != nil {
		return nil, err
	}
	if lowBits > 64 || ones > length {
		return nil, fmt.Errorf("sparse vector length %d ones %d low bits %d: %w", length, ones, lowBits, ErrBadHeader)
	}
	low, err := readWords(r)
	if err != nil {
		return nil, err
	}
	high, err := readWords(r)
	if err != nil {
		return nil, err
	}
	s := &Sparse{length: length, ones: ones, lowBits: uint(lowBits), low: low, high: high}
	if uint64(len(low)) != (ones*lowBits+63)/64 {
		return nil, fmt.Errorf("sparse vector low array has %d words: %w", len(low), ErrBadHeader)
	}
	if uint64(len(high)) != (ones+length>>s.lowBits+1+63)/64 {
		return nil, fmt.Errorf("sparse vector high array has %d words: %w", len(high), ErrBadHeader)
	}
	s.buildRank()
	return s, nil
}

package gbwt

import "math"

// EndMarker is the node identifier of the sentinel record collecting
// sequence terminations. It is always record 0.
const EndMarker uint64 = 0

const invalidValue = math.MaxUint64

// EncodeNode packs a graph node identifier and an orientation into a node
// identifier: the orientation occupies the lowest bit.
func EncodeNode(id uint64, reverse bool) uint64 {
	node := id << 1
	if reverse {
		node |= 1
	}
	return node
}

// NodeID extracts the graph node identifier.
func NodeID(node uint64) uint64 { return node >> 1 }

// Reverse returns the same graph node in the opposite orientation.
func Reverse(node uint64) uint64 { return node ^ 1 }

// IsReverse reports whether the node is in reverse orientation.
func IsReverse(node uint64) bool { return node&1 != 0 }

// Edge is a (destination node, offset) pair. Offsets are record-local BWT
// positions in the destination. In a record's incoming list the Offset
// field holds the occurrence count of the predecessor instead.
type Edge struct {
	Node   uint64
	Offset uint64
}

// InvalidEdge returns the out-of-range sentinel edge.
func InvalidEdge() Edge { return Edge{invalidValue, invalidValue} }

// InvalidOffset returns the out-of-range sentinel offset.
func InvalidOffset() uint64 { return invalidValue }

// InvalidSequence returns the unknown-sequence sentinel.
func InvalidSequence() uint64 { return invalidValue }

// Run is a block of consecutive BWT positions mapping to the same outgoing
// edge: Rank indexes the record's outgoing list and Length is positive.
// Adjacent runs may share a rank.
type Run struct {
	Rank   uint64
	Length uint64
}

// Sample pairs a record-local BWT offset with the identifier of the
// sequence occupying it.
type Sample struct {
	Offset   uint64
	Sequence uint64
}

// InvalidSample returns the no-sample sentinel.
func InvalidSample() Sample { return Sample{invalidValue, invalidValue} }

// Range is a closed interval of BWT positions. It is empty when Start
// exceeds End.
type Range struct {
	Start uint64
	End   uint64
}

// EmptyRange returns the canonical empty range.
func EmptyRange() Range { return Range{1, 0} }

// Empty reports whether the range contains no positions.
func (r Range) Empty() bool { return r.Start > r.End }

// Length returns the number of positions in the range.
func (r Range) Length() uint64 {
	if r.Empty() {
		return 0
	}
	return r.End - r.Start + 1
}

// ReversePath reverses path in place, flipping the orientation of every
// node.
func ReversePath(path []uint64) {
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = Reverse(path[j]), Reverse(path[i])
	}
	if len(path)%2 != 0 {
		mid := len(path) / 2
		path[mid] = Reverse(path[mid])
	}
}

// ReversePathAppend appends the reverse of path, with every node flipped,
// to out and returns the extended slice.
func ReversePathAppend(out []uint64, path []uint64) []uint64 {
	for i := len(path) - 1; i >= 0; i-- {
		out = append(out, Reverse(path[i]))
	}
	return out
}

// ReversePathBuffer writes the reverse of path, with every node flipped,
// into a pre-sized buffer starting at *tail, advancing *tail past the
// written region.
func ReversePathBuffer(path []uint64, out []uint64, tail *uint64) {
	for i := len(path) - 1; i >= 0; i-- {
		out[*tail] = Reverse(path[i])
		*tail++
	}
}

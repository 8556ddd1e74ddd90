package gbwt

import (
	"github.com/kaplannp/gbwt/bytecode"
)

// CompressedRecord is a read-only view over one record inside a shared
// byte slice. The outgoing edges are decoded eagerly; the body stays in
// its run-coded form and is scanned by the iterators below. The view
// borrows the slice from its owner and must not outlive it.
type CompressedRecord struct {
	Outgoing []Edge
	body     []byte
}

// DecodeRecord parses the record occupying data[start:limit]. The slice
// must hold a complete record; the loading layer has already validated the
// container.
func DecodeRecord(data []byte, start, limit uint64) CompressedRecord {
	pos := start
	outdegree := bytecode.Read(data, &pos)
	outgoing := make([]Edge, outdegree)
	var prev uint64
	for i := range outgoing {
		outgoing[i].Node = bytecode.Read(data, &pos) + prev
		prev = outgoing[i].Node
		outgoing[i].Offset = bytecode.Read(data, &pos)
	}
	return CompressedRecord{Outgoing: outgoing, body: data[pos:limit]}
}

// EmptyRecord peeks the record starting at data[start] and reports whether
// its outdegree is zero.
func EmptyRecord(data []byte, start uint64) bool {
	pos := start
	return bytecode.Read(data, &pos) == 0
}

// Outdegree returns the number of outgoing edges.
func (r *CompressedRecord) Outdegree() uint64 { return uint64(len(r.Outgoing)) }

// Successor returns the destination of outgoing edge outrank.
func (r *CompressedRecord) Successor(outrank uint64) uint64 { return r.Outgoing[outrank].Node }

// Offset returns the starting offset of outgoing edge outrank.
func (r *CompressedRecord) Offset(outrank uint64) uint64 { return r.Outgoing[outrank].Offset }

// EdgeTo returns the rank of the outgoing edge to the node, or Outdegree()
// if there is none.
func (r *CompressedRecord) EdgeTo(to uint64) uint64 { return edgeTo(to, r.Outgoing) }

// HasEdge reports whether the record has an outgoing edge to the node.
func (r *CompressedRecord) HasEdge(to uint64) bool { return r.EdgeTo(to) < r.Outdegree() }

// Empty reports whether the record has no positions.
func (r *CompressedRecord) Empty() bool { return r.Size() == 0 }

// Size returns the number of BWT positions in the record. It is computed
// by a scan over the run stream.
func (r *CompressedRecord) Size() uint64 {
	var result uint64
	if r.Outdegree() > 0 {
		for it := newRecordIterator(r); !it.fin; it.advance() {
			result += it.run.Length
		}
	}
	return result
}

// Runs returns the number of stored runs.
func (r *CompressedRecord) Runs() uint64 {
	var result uint64
	if r.Outdegree() > 0 {
		for it := newRecordIterator(r); !it.fin; it.advance() {
			result++
		}
	}
	return result
}

// LF maps BWT position i to its edge in the successor record, or the
// invalid edge if i is out of range.
func (r *CompressedRecord) LF(i uint64) Edge {
	edge, _ := r.RunLF(i)
	return edge
}

// RunLF is LF returning additionally the last position of the run
// containing i.
func (r *CompressedRecord) RunLF(i uint64) (Edge, uint64) {
	if r.Outdegree() == 0 {
		return InvalidEdge(), 0
	}

	var scratch [maxOutdegreeForArray]Edge
	var ranks []Edge
	if r.Outdegree() <= maxOutdegreeForArray {
		ranks = scratch[:r.Outdegree()]
	} else {
		ranks = make([]Edge, r.Outdegree())
	}
	copy(ranks, r.Outgoing)

	it := newFullIterator(r, ranks)
	edge := it.edgeAt(i)
	if edge == InvalidEdge() {
		return InvalidEdge(), 0
	}
	return edge, it.offset - 1
}

// LFNode returns the offset of BWT position i within the record of node
// to, or the invalid offset if the record has no edge to it.
func (r *CompressedRecord) LFNode(i uint64, to uint64) uint64 {
	outrank := r.EdgeTo(to)
	if outrank >= r.Outdegree() {
		return InvalidOffset()
	}
	it := newRankIterator(r, outrank)
	return it.rankAt(i)
}

// LFRange maps a closed range of positions into the record of node to.
// Unreachable targets and empty inputs yield the empty range.
func (r *CompressedRecord) LFRange(rng Range, to uint64) Range {
	if rng.Empty() {
		return EmptyRange()
	}
	outrank := r.EdgeTo(to)
	if outrank >= r.Outdegree() {
		return EmptyRange()
	}
	it := newRankIterator(r, outrank)
	start := it.rankAt(rng.Start)
	end := it.rankAt(rng.End+1) - 1
	return Range{start, end}
}

// BDLF maps the range into the record of node to and also returns the
// number of occurrences x in the range with Reverse(x) < Reverse(to).
func (r *CompressedRecord) BDLF(rng Range, to uint64) (Range, uint64) {
	if rng.Empty() {
		return EmptyRange(), 0
	}
	outrank := r.EdgeTo(to)
	if outrank >= r.Outdegree() {
		return EmptyRange(), 0
	}

	it := newRankIterator(r, outrank)
	sp := it.rankAt(rng.Start)

	// Same three threshold cases as the dynamic record; here the
	// occurrences of outrank are excluded during the count instead of
	// being subtracted afterwards.
	reverseRank := r.EdgeTo(Reverse(to))
	if reverseRank >= r.Outdegree() {
		reverseRank = outrank
	} else if !IsReverse(to) {
		reverseRank++
	}

	var reverseOffset uint64
	if it.run.Rank < reverseRank && it.run.Rank != outrank {
		reverseOffset = it.offset - rng.Start
	}

	end := rng.End + 1
	for !it.fin && it.offset < end {
		it.advance()
		if it.fin {
			break
		}
		if it.run.Rank < reverseRank && it.run.Rank != outrank {
			reverseOffset += it.run.Length
		}
	}
	if it.run.Rank < reverseRank && it.run.Rank != outrank && it.offset > end {
		reverseOffset -= it.offset - end
	}

	return Range{sp, it.rankAt(end) - 1}, reverseOffset
}

// At returns the successor node at BWT position i, or EndMarker if i is
// out of range.
func (r *CompressedRecord) At(i uint64) uint64 {
	if r.Outdegree() == 0 {
		return EndMarker
	}
	for it := newRecordIterator(r); !it.fin; it.advance() {
		if it.offset > i {
			return r.Successor(it.run.Rank)
		}
	}
	return EndMarker
}

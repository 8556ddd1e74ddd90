package gbwt

import (
	"fmt"
	"sort"

	"github.com/kaplannp/gbwt/bytecode"
)

// Records with at most this many outgoing edges run LF with accumulators in
// a stack array instead of a heap slice.
const maxOutdegreeForArray = 4

// DynamicRecord is the mutable per-node record used during construction
// and mutation. Incoming holds (predecessor, occurrence count) pairs sorted
// by predecessor; Outgoing holds (successor, starting offset) pairs sorted
// by successor once Recode has run; Body is the run-length encoded sequence
// of outgoing ranks; IDs holds sequence samples in strictly increasing
// offset order.
type DynamicRecord struct {
	BodySize uint64
	Incoming []Edge
	Outgoing []Edge
	Body     []Run
	IDs      []Sample
}

// Size returns the number of BWT positions in the record.
func (r *DynamicRecord) Size() uint64 { return r.BodySize }

// Empty reports whether the record has no positions.
func (r *DynamicRecord) Empty() bool { return r.BodySize == 0 }

// Runs returns the number of stored runs. Consecutive runs may share a
// rank, so this can exceed the number of maximal runs.
func (r *DynamicRecord) Runs() uint64 { return uint64(len(r.Body)) }

// Outdegree returns the number of outgoing edges.
func (r *DynamicRecord) Outdegree() uint64 { return uint64(len(r.Outgoing)) }

// Indegree returns the number of incoming edges.
func (r *DynamicRecord) Indegree() uint64 { return uint64(len(r.Incoming)) }

// Samples returns the number of stored sequence samples.
func (r *DynamicRecord) Samples() uint64 { return uint64(len(r.IDs)) }

// Successor returns the destination of outgoing edge outrank.
func (r *DynamicRecord) Successor(outrank uint64) uint64 { return r.Outgoing[outrank].Node }

// Offset returns the starting offset of outgoing edge outrank.
func (r *DynamicRecord) Offset(outrank uint64) uint64 { return r.Outgoing[outrank].Offset }

// Predecessor returns the source of incoming edge inrank.
func (r *DynamicRecord) Predecessor(inrank uint64) uint64 { return r.Incoming[inrank].Node }

// Count returns the occurrence count of incoming edge inrank.
func (r *DynamicRecord) Count(inrank uint64) uint64 { return r.Incoming[inrank].Offset }

// EdgeTo returns the rank of the outgoing edge to the given node, or
// Outdegree() if there is none. Outgoing must be sorted by destination.
func (r *DynamicRecord) EdgeTo(to uint64) uint64 {
	return edgeTo(to, r.Outgoing)
}

func edgeTo(to uint64, outgoing []Edge) uint64 {
	low, high := uint64(0), uint64(len(outgoing))
	for low < high {
		mid := low + (high-low)/2
		if outgoing[mid].Node == to {
			return mid
		}
		if outgoing[mid].Node > to {
			high = mid
		} else {
			low = mid + 1
		}
	}
	return uint64(len(outgoing))
}

// EdgeToLinear is the scan fallback for construction, when Outgoing is
// still being assembled and is not necessarily sorted.
func (r *DynamicRecord) EdgeToLinear(to uint64) uint64 {
	for outrank := range r.Outgoing {
		if r.Outgoing[outrank].Node == to {
			return uint64(outrank)
		}
	}
	return r.Outdegree()
}

// HasEdge reports whether the record has an outgoing edge to the node.
func (r *DynamicRecord) HasEdge(to uint64) bool {
	for outrank := range r.Outgoing {
		if r.Outgoing[outrank].Node == to {
			return true
		}
	}
	return false
}

// Recode sorts Outgoing by destination and rewrites the body ranks
// accordingly. A record whose outgoing list is already sorted is left
// untouched, so a second application is a no-op.
func (r *DynamicRecord) Recode() {
	if r.Empty() {
		return
	}

	sorted := true
	for outrank := uint64(1); outrank < r.Outdegree(); outrank++ {
		if r.Successor(outrank) < r.Successor(outrank-1) {
			sorted = false
			break
		}
	}
	if sorted {
		return
	}

	for i := range r.Body {
		r.Body[i].Rank = r.Successor(r.Body[i].Rank)
	}
	sort.Slice(r.Outgoing, func(a, b int) bool {
		if r.Outgoing[a].Node != r.Outgoing[b].Node {
			return r.Outgoing[a].Node < r.Outgoing[b].Node
		}
		return r.Outgoing[a].Offset < r.Outgoing[b].Offset
	})
	for i := range r.Body {
		r.Body[i].Rank = r.EdgeTo(r.Body[i].Rank)
	}
}

// RemoveUnusedEdges drops outgoing edges that no body run references,
// preserving the order of the remaining edges and rewriting body ranks.
func (r *DynamicRecord) RemoveUnusedEdges() {
	used := make([]bool, r.Outdegree())
	for i := range r.Body {
		used[r.Body[i].Rank] = true
		r.Body[i].Rank = r.Successor(r.Body[i].Rank)
	}

	tail := 0
	for i := range r.Outgoing {
		r.Outgoing[tail] = r.Outgoing[i]
		if used[i] {
			tail++
		}
	}
	r.Outgoing = r.Outgoing[:tail]

	for i := range r.Body {
		r.Body[i].Rank = r.EdgeTo(r.Body[i].Rank)
	}
}

// CountBefore returns the total occurrence count of predecessors strictly
// smaller than from.
func (r *DynamicRecord) CountBefore(from uint64) uint64 {
	var result uint64
	for inrank := uint64(0); inrank < r.Indegree() && r.Predecessor(inrank) < from; inrank++ {
		result += r.Count(inrank)
	}
	return result
}

// CountUntil returns the total occurrence count of predecessors at most
// from.
func (r *DynamicRecord) CountUntil(from uint64) uint64 {
	var result uint64
	for inrank := uint64(0); inrank < r.Indegree() && r.Predecessor(inrank) <= from; inrank++ {
		result += r.Count(inrank)
	}
	return result
}

// Increment bumps the occurrence count of the given predecessor, inserting
// it with count 1 if it is not yet present.
func (r *DynamicRecord) Increment(from uint64) {
	for inrank := uint64(0); inrank < r.Indegree(); inrank++ {
		if r.Predecessor(inrank) == from {
			r.Incoming[inrank].Offset++
			return
		}
	}
	r.AddIncoming(Edge{from, 1})
}

// AddIncoming appends an incoming edge and restores the predecessor order.
func (r *DynamicRecord) AddIncoming(inedge Edge) {
	r.Incoming = append(r.Incoming, inedge)
	sort.Slice(r.Incoming, func(a, b int) bool {
		if r.Incoming[a].Node != r.Incoming[b].Node {
			return r.Incoming[a].Node < r.Incoming[b].Node
		}
		return r.Incoming[a].Offset < r.Incoming[b].Offset
	})
}

// LF maps BWT position i to its edge in the successor record, or the
// invalid edge if i is out of range.
func (r *DynamicRecord) LF(i uint64) Edge {
	edge, _ := r.RunLF(i)
	return edge
}

// RunLF is LF returning additionally the last position of the run
// containing i.
func (r *DynamicRecord) RunLF(i uint64) (Edge, uint64) {
	if i >= r.Size() {
		return InvalidEdge(), 0
	}

	if r.Outdegree() <= maxOutdegreeForArray {
		var scratch [maxOutdegreeForArray]Edge
		result := scratch[:r.Outdegree()]
		copy(result, r.Outgoing)
		return lfLoop(result, r.Body, i)
	}
	result := make([]Edge, r.Outdegree())
	copy(result, r.Outgoing)
	return lfLoop(result, r.Body, i)
}

func lfLoop(result []Edge, body []Run, i uint64) (Edge, uint64) {
	var lastEdge uint64
	var offset uint64
	for _, run := range body {
		lastEdge = run.Rank
		result[run.Rank].Offset += run.Length
		offset += run.Length
		if offset > i {
			break
		}
	}
	result[lastEdge].Offset -= offset - i
	return result[lastEdge], offset - 1
}

// bodyCursor is the shared state of the one-pass accumulations over the
// run sequence. Successive calls with increasing positions continue from
// where the previous call stopped.
type bodyCursor struct {
	body   []Run
	next   int
	run    Run
	offset uint64
}

// lf advances through the body until the cumulative offset reaches i,
// adding the lengths of the target's runs into *result, and returns the
// rank of the target at position i.
func (c *bodyCursor) lf(i, outrank uint64, result *uint64) uint64 {
	for c.next < len(c.body) && c.offset < i {
		c.run = c.body[c.next]
		c.next++
		c.offset += c.run.Length
		if c.run.Rank == outrank {
			*result += c.run.Length
		}
	}
	res := *result
	if c.run.Rank == outrank && c.offset > i {
		res -= c.offset - i
	}
	return res
}

// LFNode returns the offset of BWT position i within the record of node
// to, or the invalid offset if the record has no edge to it.
func (r *DynamicRecord) LFNode(i uint64, to uint64) uint64 {
	outrank := r.EdgeTo(to)
	if outrank >= r.Outdegree() {
		return InvalidOffset()
	}
	cursor := bodyCursor{body: r.Body}
	result := r.Offset(outrank)
	return cursor.lf(i, outrank, &result)
}

// LFRange maps a closed range of positions into the record of node to,
// sharing a single pass over the body for both endpoints. Unreachable
// targets and empty inputs yield the empty range.
func (r *DynamicRecord) LFRange(rng Range, to uint64) Range {
	if rng.Empty() {
		return EmptyRange()
	}
	outrank := r.EdgeTo(to)
	if outrank >= r.Outdegree() {
		return EmptyRange()
	}

	cursor := bodyCursor{body: r.Body}
	result := r.Offset(outrank)
	start := cursor.lf(rng.Start, outrank, &result)
	end := cursor.lf(rng.End+1, outrank, &result) - 1
	return Range{start, end}
}

// BDLF maps the range into the record of node to and also returns the
// number of occurrences x in the range with Reverse(x) < Reverse(to),
// which a bidirectional index needs to maintain the reverse range.
func (r *DynamicRecord) BDLF(rng Range, to uint64) (Range, uint64) {
	if rng.Empty() {
		return EmptyRange(), 0
	}
	outrank := r.EdgeTo(to)
	if outrank >= r.Outdegree() {
		return EmptyRange(), 0
	}

	cursor := bodyCursor{body: r.Body}
	result := r.Offset(outrank)
	sp := cursor.lf(rng.Start, outrank, &result)

	// Three cases for the threshold rank:
	// 1. no edge to Reverse(to): count occurrences with rank < outrank;
	// 2. such an edge exists and to is forward: count rank <= reverseRank,
	//    then exclude the occurrences of outrank itself;
	// 3. such an edge exists and to is reverse: count rank < reverseRank.
	reverseRank := r.EdgeTo(Reverse(to))
	subtractEqual := false
	if reverseRank >= r.Outdegree() {
		reverseRank = outrank
	} else if !IsReverse(to) {
		reverseRank++
		subtractEqual = true
	}

	// The run that reached rng.Start may extend past it.
	var equal, reverseOffset uint64
	if cursor.run.Rank == outrank {
		equal = cursor.offset - rng.Start
	}
	if cursor.run.Rank < reverseRank {
		reverseOffset = cursor.offset - rng.Start
	}

	end := rng.End + 1
	for cursor.next < len(cursor.body) && cursor.offset < end {
		cursor.run = cursor.body[cursor.next]
		cursor.next++
		cursor.offset += cursor.run.Length
		if cursor.run.Rank == outrank {
			equal += cursor.run.Length
		}
		if cursor.run.Rank < reverseRank {
			reverseOffset += cursor.run.Length
		}
	}

	// The final run may extend past the end of the range.
	if cursor.offset > end {
		if cursor.run.Rank == outrank {
			equal -= cursor.offset - end
		}
		if cursor.run.Rank < reverseRank {
			reverseOffset -= cursor.offset - end
		}
	}

	if subtractEqual {
		reverseOffset -= equal
	}
	return Range{sp, sp + equal - 1}, reverseOffset
}

// At returns the successor node at BWT position i, or EndMarker if i is
// out of range.
func (r *DynamicRecord) At(i uint64) uint64 {
	if i >= r.Size() {
		return EndMarker
	}

	var offset uint64
	for _, run := range r.Body {
		offset += run.Length
		if offset > i {
			return r.Successor(run.Rank)
		}
	}
	return EndMarker
}

// NextSample returns the first sample at offset i or later.
func (r *DynamicRecord) NextSample(i uint64) (Sample, bool) {
	for _, sample := range r.IDs {
		if sample.Offset >= i {
			return sample, true
		}
	}
	return InvalidSample(), false
}

// WriteBWT appends the record's compressed encoding to buf and returns the
// extended slice: the outdegree, the delta-coded outgoing edges, then the
// run-coded body.
func (r *DynamicRecord) WriteBWT(buf []byte) []byte {
	buf = bytecode.Write(buf, r.Outdegree())
	var prev uint64
	for _, outedge := range r.Outgoing {
		buf = bytecode.Write(buf, outedge.Node-prev)
		prev = outedge.Node
		buf = bytecode.Write(buf, outedge.Offset)
	}

	if r.Outdegree() > 0 {
		encoder := bytecode.NewRun(r.Outdegree())
		for _, run := range r.Body {
			buf = encoder.Write(buf, run.Rank, run.Length)
		}
	}
	return buf
}

// String renders the record for diagnostics.
func (r *DynamicRecord) String() string {
	return fmt.Sprintf("(size %d, %d runs, indegree %d, outdegree %d, incoming %v, outgoing %v, body %v, ids %v)",
		r.Size(), r.Runs(), r.Indegree(), r.Outdegree(), r.Incoming, r.Outgoing, r.Body, r.IDs)
}

package gbwt

// DecompressedRecord materializes the successor edge of every BWT position
// of a record, trading memory for O(1) LF. The after list tracks, per
// outgoing edge, the next unassigned offset while the body is being
// filled.
type DecompressedRecord struct {
	Outgoing []Edge
	after    []Edge
	Body     []Edge
}

// NewDecompressedRecord materializes a dynamic record.
func NewDecompressedRecord(source *DynamicRecord) *DecompressedRecord {
	r := newDecompressed(source.Outgoing, source.Size())
	for _, run := range source.Body {
		r.push(run)
	}
	return r
}

// DecompressRecord materializes a compressed record.
func DecompressRecord(source *CompressedRecord) *DecompressedRecord {
	r := newDecompressed(source.Outgoing, source.Size())
	for it := newRecordIterator(source); !it.fin; it.advance() {
		r.push(it.run)
	}
	return r
}

func newDecompressed(outgoing []Edge, size uint64) *DecompressedRecord {
	r := &DecompressedRecord{
		Outgoing: append([]Edge(nil), outgoing...),
		after:    append([]Edge(nil), outgoing...),
		Body:     make([]Edge, 0, size),
	}
	return r
}

func (r *DecompressedRecord) push(run Run) {
	for i := uint64(0); i < run.Length; i++ {
		r.Body = append(r.Body, r.after[run.Rank])
		r.after[run.Rank].Offset++
	}
}

// Size returns the number of BWT positions in the record.
func (r *DecompressedRecord) Size() uint64 { return uint64(len(r.Body)) }

// Empty reports whether the record has no positions.
func (r *DecompressedRecord) Empty() bool { return len(r.Body) == 0 }

// Outdegree returns the number of outgoing edges.
func (r *DecompressedRecord) Outdegree() uint64 { return uint64(len(r.Outgoing)) }

// Successor returns the destination of outgoing edge outrank.
func (r *DecompressedRecord) Successor(outrank uint64) uint64 { return r.Outgoing[outrank].Node }

// Offset returns the starting offset of outgoing edge outrank.
func (r *DecompressedRecord) Offset(outrank uint64) uint64 { return r.Outgoing[outrank].Offset }

// Runs returns the number of maximal runs, counting successor changes
// along the body.
func (r *DecompressedRecord) Runs() uint64 {
	if r.Empty() {
		return 0
	}

	var result uint64
	var prev uint64 = invalidValue
	for _, edge := range r.Body {
		if edge.Node != prev {
			result++
			prev = edge.Node
		}
	}
	return result
}

// LF maps BWT position i to its edge in the successor record in constant
// time, or the invalid edge if i is out of range.
func (r *DecompressedRecord) LF(i uint64) Edge {
	if i >= r.Size() {
		return InvalidEdge()
	}
	return r.Body[i]
}

// RunLF is LF returning additionally the last position of the maximal run
// containing i.
func (r *DecompressedRecord) RunLF(i uint64) (Edge, uint64) {
	if i >= r.Size() {
		return InvalidEdge(), 0
	}

	runEnd := i
	for runEnd+1 < r.Size() && r.Body[runEnd+1].Node == r.Body[i].Node {
		runEnd++
	}
	return r.Body[i], runEnd
}

// At returns the successor node at BWT position i, or EndMarker if i is
// out of range.
func (r *DecompressedRecord) At(i uint64) uint64 {
	if i >= r.Size() {
		return EndMarker
	}
	return r.Body[i].Node
}

// HasEdge reports whether the record has an outgoing edge to the node.
func (r *DecompressedRecord) HasEdge(to uint64) bool {
	for outrank := range r.Outgoing {
		if r.Outgoing[outrank].Node == to {
			return true
		}
	}
	return false
}

package gbwt

import (
	"github.com/kaplannp/gbwt/bytecode"
)

// recordIterator walks the run stream of a CompressedRecord. One type
// serves the three accumulation policies the queries need: a plain forward
// scan, per-rank offset accumulators for RunLF, and a single-target count
// for the rank queries. The constructor positions the iterator on the
// first run; fin is set once the stream is exhausted, leaving the last run
// in place for the overshoot corrections.
type recordIterator struct {
	dec    bytecode.Run
	data   []byte
	pos    uint64
	run    Run
	offset uint64
	fin    bool

	// Per-rank accumulators; nil unless built by newFullIterator.
	ranks []Edge

	// Target-rank accumulation; active only when targeted is set.
	targeted bool
	target   uint64
	count    uint64
}

func newRecordIterator(r *CompressedRecord) *recordIterator {
	it := &recordIterator{dec: bytecode.NewRun(r.Outdegree()), data: r.body}
	it.advance()
	return it
}

// newFullIterator accumulates run lengths into the Offset fields of ranks,
// which the caller has initialized to a copy of the outgoing edges.
func newFullIterator(r *CompressedRecord, ranks []Edge) *recordIterator {
	it := &recordIterator{dec: bytecode.NewRun(r.Outdegree()), data: r.body, ranks: ranks}
	it.advance()
	return it
}

// newRankIterator accumulates only the occurrences of outrank, starting
// from the edge's offset so rankAt can answer directly.
func newRankIterator(r *CompressedRecord, outrank uint64) *recordIterator {
	it := &recordIterator{
		dec:      bytecode.NewRun(r.Outdegree()),
		data:     r.body,
		targeted: true,
		target:   outrank,
		count:    r.Offset(outrank),
	}
	it.advance()
	return it
}

func (it *recordIterator) advance() {
	if it.pos >= uint64(len(it.data)) {
		it.fin = true
		return
	}
	rank, length := it.dec.Read(it.data, &it.pos)
	it.run = Run{rank, length}
	it.offset += length
	if it.ranks != nil {
		it.ranks[rank].Offset += length
	}
	if it.targeted && rank == it.target {
		it.count += length
	}
}

// edgeAt advances to the run containing position i and returns the mapped
// edge, or the invalid edge when i is at or past the end of the record.
func (it *recordIterator) edgeAt(i uint64) Edge {
	for !it.fin && it.offset <= i {
		it.advance()
	}
	if it.offset <= i {
		return InvalidEdge()
	}
	edge := it.ranks[it.run.Rank]
	edge.Offset -= it.offset - i
	return edge
}

// rankAt returns the number of target occurrences before position i plus
// the target edge's starting offset. Calls must use non-decreasing
// positions; the iterator continues from its previous stop.
func (it *recordIterator) rankAt(i uint64) uint64 {
	for !it.fin && it.offset < i {
		it.advance()
	}
	result := it.count
	if it.run.Rank == it.target && it.offset > i {
		result -= it.offset - i
	}
	return result
}

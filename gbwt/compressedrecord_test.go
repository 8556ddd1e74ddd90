package gbwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compress(t *testing.T, r *DynamicRecord) CompressedRecord {
	t.Helper()
	data := r.WriteBWT(nil)
	return DecodeRecord(data, 0, uint64(len(data)))
}

func TestCompressedRecordRoundTrip(t *testing.T) {
	r := twoEdgeRecord()
	c := compress(t, &r)

	require.Equal(t, r.Outgoing, c.Outgoing)
	require.Equal(t, r.Size(), c.Size())
	require.Equal(t, r.Runs(), c.Runs())

	assert.Equal(t, Edge{4, 0}, c.LF(0))
	assert.Equal(t, Edge{6, 3}, c.LF(2))
	assert.Equal(t, Edge{6, 5}, c.LF(4))
	assert.Equal(t, Edge{4, 2}, c.LF(5))
	assert.Equal(t, InvalidEdge(), c.LF(6))
	assert.Equal(t, uint64(3), c.LFNode(2, 6))
	assert.Equal(t, Range{1, 1}, c.LFRange(Range{1, 1}, 4))
}

// crossCheck compares every query of a compressed view against the dynamic
// record it was serialized from.
func crossCheck(t *testing.T, r *DynamicRecord) {
	t.Helper()
	c := compress(t, r)

	require.Equal(t, r.Size(), c.Size())
	for i := uint64(0); i <= r.Size(); i++ {
		assert.Equal(t, r.LF(i), c.LF(i), "LF(%d)", i)
		assert.Equal(t, r.At(i), c.At(i), "At(%d)", i)

		wantEdge, wantEnd := r.RunLF(i)
		gotEdge, gotEnd := c.RunLF(i)
		assert.Equal(t, wantEdge, gotEdge, "RunLF(%d)", i)
		assert.Equal(t, wantEnd, gotEnd, "RunLF(%d) end", i)
	}

	targets := make([]uint64, 0, r.Outdegree()+1)
	for rank := uint64(0); rank < r.Outdegree(); rank++ {
		targets = append(targets, r.Successor(rank))
	}
	targets = append(targets, 99999)

	for _, to := range targets {
		for i := uint64(0); i <= r.Size(); i++ {
			assert.Equal(t, r.LFNode(i, to), c.LFNode(i, to), "LF(%d, %d)", i, to)
		}
		for start := uint64(0); start < r.Size(); start++ {
			for end := start; end < r.Size(); end++ {
				rng := Range{start, end}
				assert.Equal(t, r.LFRange(rng, to), c.LFRange(rng, to), "range %v to %d", rng, to)

				wantRange, wantRO := r.BDLF(rng, to)
				gotRange, gotRO := c.BDLF(rng, to)
				assert.Equal(t, wantRange, gotRange, "bd range %v to %d", rng, to)
				assert.Equal(t, wantRO, gotRO, "bd offset %v to %d", rng, to)
			}
		}
	}
}

func TestCompressedRecordMatchesDynamic(t *testing.T) {
	records := map[string]DynamicRecord{
		"single edge":         singleEdgeRecord(),
		"two edges":           twoEdgeRecord(),
		"bidirectional edges": bdRecord(),
		"wide outdegree":      wideRecord(),
		"adjacent same rank": {
			BodySize: 7,
			Outgoing: []Edge{{4, 0}, {6, 0}},
			Body:     []Run{{0, 2}, {0, 1}, {1, 3}, {1, 1}},
		},
		"long runs escape the byte packing": {
			BodySize: 700,
			Outgoing: []Edge{{4, 0}, {6, 0}},
			Body:     []Run{{0, 300}, {1, 400}},
		},
	}
	for name, r := range records {
		t.Run(name, func(t *testing.T) {
			crossCheck(t, &r)
		})
	}
}

func TestCompressedRecordEmpty(t *testing.T) {
	var r DynamicRecord
	data := r.WriteBWT(nil)
	require.Equal(t, []byte{0}, data)
	require.True(t, EmptyRecord(data, 0))

	c := DecodeRecord(data, 0, uint64(len(data)))
	assert.Equal(t, uint64(0), c.Outdegree())
	assert.Equal(t, uint64(0), c.Size())
	assert.True(t, c.Empty())
	assert.Equal(t, InvalidEdge(), c.LF(0))
	assert.Equal(t, EndMarker, c.At(0))
	assert.False(t, c.HasEdge(4))

	twoEdge := twoEdgeRecord()
	nonEmpty := twoEdge.WriteBWT(nil)
	assert.False(t, EmptyRecord(nonEmpty, 0))
}

func TestCompressedRecordEdgeLookups(t *testing.T) {
	r := bdRecord()
	c := compress(t, &r)
	assert.Equal(t, uint64(0), c.EdgeTo(4))
	assert.Equal(t, uint64(2), c.EdgeTo(6))
	assert.Equal(t, c.Outdegree(), c.EdgeTo(7))
	assert.True(t, c.HasEdge(5))
	assert.False(t, c.HasEdge(8))
	assert.Equal(t, uint64(20), c.Offset(1))
	assert.Equal(t, uint64(6), c.Successor(2))
}

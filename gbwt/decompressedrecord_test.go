package gbwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecompressedRecordMatchesSources(t *testing.T) {
	records := []DynamicRecord{singleEdgeRecord(), twoEdgeRecord(), bdRecord(), wideRecord()}
	for _, r := range records {
		c := compress(t, &r)

		fromDynamic := NewDecompressedRecord(&r)
		fromCompressed := DecompressRecord(&c)

		require.Equal(t, r.Size(), fromDynamic.Size())
		require.Equal(t, fromDynamic.Body, fromCompressed.Body)
		require.Equal(t, fromDynamic.Outgoing, fromCompressed.Outgoing)

		for i := uint64(0); i <= r.Size(); i++ {
			assert.Equal(t, r.LF(i), fromDynamic.LF(i), "LF(%d)", i)
			assert.Equal(t, r.At(i), fromDynamic.At(i), "At(%d)", i)
		}
	}
}

func TestDecompressedRecordRuns(t *testing.T) {
	// Adjacent runs with the same rank merge when counting maximal runs.
	r := DynamicRecord{
		BodySize: 7,
		Outgoing: []Edge{{4, 0}, {6, 0}},
		Body:     []Run{{0, 2}, {0, 1}, {1, 3}, {1, 1}},
	}
	d := NewDecompressedRecord(&r)
	assert.Equal(t, uint64(4), r.Runs())
	assert.Equal(t, uint64(2), d.Runs())
}

func TestDecompressedRecordRunLF(t *testing.T) {
	r := twoEdgeRecord()
	d := NewDecompressedRecord(&r)

	edge, runEnd := d.RunLF(0)
	assert.Equal(t, Edge{4, 0}, edge)
	assert.Equal(t, uint64(1), runEnd)

	edge, runEnd = d.RunLF(3)
	assert.Equal(t, Edge{6, 4}, edge)
	assert.Equal(t, uint64(4), runEnd)

	edge, runEnd = d.RunLF(5)
	assert.Equal(t, Edge{4, 2}, edge)
	assert.Equal(t, uint64(5), runEnd)

	invalid, _ := d.RunLF(6)
	assert.Equal(t, InvalidEdge(), invalid)
}

func TestDecompressedRecordEmpty(t *testing.T) {
	var r DynamicRecord
	d := NewDecompressedRecord(&r)
	assert.True(t, d.Empty())
	assert.Equal(t, uint64(0), d.Runs())
	assert.Equal(t, InvalidEdge(), d.LF(0))
	assert.Equal(t, EndMarker, d.At(0))
	assert.False(t, d.HasEdge(4))
}

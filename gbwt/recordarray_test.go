package gbwt

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaplannp/gbwt/succinct"
)

// smallIndex builds a three record array: the endmarker pointing at node
// 1, node 1's record pointing back at the endmarker, and an empty record.
func smallIndex() []DynamicRecord {
	return []DynamicRecord{
		{BodySize: 2, Outgoing: []Edge{{1, 0}}, Body: []Run{{0, 2}}},
		{BodySize: 2, Outgoing: []Edge{{0, 0}}, Body: []Run{{0, 2}}},
		{},
	}
}

func TestRecordArrayBuild(t *testing.T) {
	bwt := smallIndex()
	ra := NewRecordArray(bwt)

	require.Equal(t, uint64(3), ra.Records)
	require.False(t, ra.Empty())
	require.Equal(t, uint64(len(ra.Data)), ra.Index.Len())

	for i := range bwt {
		start, limit := ra.Start(uint64(i)), ra.Limit(uint64(i))
		require.Less(t, start, limit, "record %d", i)
		want := bwt[i].WriteBWT(nil)
		assert.Equal(t, want, ra.Data[start:limit], "record %d bytes", i)
		assert.Equal(t, bwt[i].Empty(), ra.EmptyRecord(uint64(i)), "record %d empty", i)
	}

	// The decoded views answer the same queries as the originals.
	for i := range bwt {
		record := ra.Record(uint64(i))
		require.Equal(t, bwt[i].Size(), record.Size(), "record %d", i)
		for pos := uint64(0); pos < bwt[i].Size(); pos++ {
			assert.Equal(t, bwt[i].LF(pos), record.LF(pos))
		}
	}

	require.NoError(t, ra.Verify())
}

func TestRecordArraySerialize(t *testing.T) {
	ra := NewRecordArray(smallIndex())

	var buf bytes.Buffer
	require.NoError(t, ra.Serialize(&buf))

	loaded, err := LoadRecordArray(&buf)
	require.NoError(t, err)
	require.Equal(t, ra.Records, loaded.Records)
	require.Equal(t, ra.Data, loaded.Data)
	for i := uint64(0); i < ra.Records; i++ {
		assert.Equal(t, ra.Start(i), loaded.Start(i))
		assert.Equal(t, ra.Limit(i), loaded.Limit(i))
	}
	require.NoError(t, loaded.Verify())
}

func TestRecordArrayLoadTruncated(t *testing.T) {
	ra := NewRecordArray(smallIndex())
	var buf bytes.Buffer
	require.NoError(t, ra.Serialize(&buf))

	short := buf.Bytes()[:buf.Len()-1]
	_, err := LoadRecordArray(bytes.NewReader(short))
	require.ErrorIs(t, err, succinct.ErrTruncated)
}

// mergeOrigins packs a destination record to source assignment.
func mergeOrigins(t *testing.T, assignments []uint64, sources uint64) *succinct.IntVector {
	t.Helper()
	origins := succinct.NewIntVector(uint64(len(assignments)), succinct.BitLen(sources))
	for i, origin := range assignments {
		origins.Set(uint64(i), origin)
	}
	return origins
}

func TestRecordArrayMerge(t *testing.T) {
	// Source 0 holds node 1, source 1 holds node 2. Each endmarker sends
	// its sequences to its own node.
	source0 := NewRecordArray([]DynamicRecord{
		{BodySize: 3, Outgoing: []Edge{{1, 0}}, Body: []Run{{0, 3}}},
		{BodySize: 3, Outgoing: []Edge{{0, 0}}, Body: []Run{{0, 3}}},
	})
	source1 := NewRecordArray([]DynamicRecord{
		{BodySize: 2, Outgoing: []Edge{{2, 0}}, Body: []Run{{0, 2}}},
		{BodySize: 2, Outgoing: []Edge{{0, 0}}, Body: []Run{{0, 2}}},
	})

	sources := []*RecordArray{source0, source1}
	origins := mergeOrigins(t, []uint64{2, 0, 1}, 2)
	recordOffsets := []uint64{0, 1}

	merged := MergeRecordArrays(sources, origins, recordOffsets)
	require.Equal(t, uint64(3), merged.Records)
	require.NoError(t, merged.Verify())

	// The merged endmarker concatenates both endmarker bodies with the
	// ranks shifted past the edges already merged.
	endmarker := merged.Record(EndMarker)
	require.Equal(t, []Edge{{1, 0}, {2, 0}}, endmarker.Outgoing)
	require.Equal(t, uint64(5), endmarker.Size())

	var runs []Run
	for it := newRecordIterator(&endmarker); !it.fin; it.advance() {
		runs = append(runs, it.run)
	}
	assert.Equal(t, []Run{{0, 3}, {1, 2}}, runs)

	// Every other record is a byte-exact copy of its source record.
	assert.Equal(t, source0.Data[source0.Start(1):source0.Limit(1)],
		merged.Data[merged.Start(1):merged.Limit(1)])
	assert.Equal(t, source1.Data[source1.Start(1):source1.Limit(1)],
		merged.Data[merged.Start(2):merged.Limit(2)])
}

func TestRecordArrayMergeMissingRecord(t *testing.T) {
	source0 := NewRecordArray([]DynamicRecord{
		{BodySize: 1, Outgoing: []Edge{{1, 0}}, Body: []Run{{0, 1}}},
		{BodySize: 1, Outgoing: []Edge{{0, 0}}, Body: []Run{{0, 1}}},
	})

	// Destination record 2 has no source: it becomes an empty record.
	sources := []*RecordArray{source0}
	origins := mergeOrigins(t, []uint64{1, 0, 1}, 1)
	recordOffsets := []uint64{0}

	merged := MergeRecordArrays(sources, origins, recordOffsets)
	require.Equal(t, uint64(3), merged.Records)
	assert.False(t, merged.EmptyRecord(1))
	assert.True(t, merged.EmptyRecord(2))
	require.NoError(t, merged.Verify())
}

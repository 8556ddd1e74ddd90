package gbwt

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataCheck(t *testing.T) {
	m := NewMetadata()
	require.True(t, m.Check())

	m.Flags = flagMask
	assert.True(t, m.Check())
	m.Flags = flagMask + 1
	assert.False(t, m.Check())

	m = NewMetadata()
	m.Version = MetadataInitialVersion
	assert.True(t, m.Check())
	m.Flags = FlagPathNames
	assert.False(t, m.Check())

	m = NewMetadata()
	m.Tag = 0xDEADBEEF
	assert.False(t, m.Check())

	m = NewMetadata()
	m.Version = 99
	assert.False(t, m.Check())
}

func TestMetadataCountsAndNames(t *testing.T) {
	m := NewMetadata()
	m.SetSamples(3)
	m.SetHaplotypes(6)
	m.SetContigs(2)

	assert.Equal(t, uint64(3), m.Samples())
	assert.Equal(t, uint64(6), m.Haplotypes())
	assert.Equal(t, uint64(2), m.Contigs())

	m.SetSampleNames([]string{"s1", "s2", "s3"})
	m.SetContigNames([]string{"chr1", "chr2"})
	require.True(t, m.HasSampleNames())
	require.True(t, m.HasContigNames())
	assert.Equal(t, uint64(1), m.SampleNames.Find("s2"))

	m.ClearSampleNames()
	assert.False(t, m.HasSampleNames())
	assert.True(t, m.SampleNames.Empty())
}

func TestMetadataPaths(t *testing.T) {
	m := NewMetadata()
	m.AddPath(PathName{Sample: 0, Contig: 0, Phase: 0, Count: 0})
	m.AddPath(PathName{Sample: 0, Contig: 1, Phase: 1, Count: 0})
	m.AddPath(PathName{Sample: 1, Contig: 0, Phase: 0, Count: 0})

	require.True(t, m.HasPathNames())
	require.Equal(t, uint64(3), m.Paths())

	assert.Equal(t, []uint64{0, 1}, m.PathsForSample(0))
	assert.Equal(t, []uint64{2}, m.PathsForSample(1))
	assert.Equal(t, []uint64{0, 2}, m.PathsForContig(0))
	assert.Equal(t, []uint64{0}, m.FindPaths(0, 0))
	assert.Empty(t, m.FindPaths(1, 1))
}

func TestMetadataMergeDisjoint(t *testing.T) {
	m := NewMetadata()
	m.SetSampleNames([]string{"a", "b"})
	m.SetHaplotypes(4)
	m.SetContigNames([]string{"chr1"})
	m.AddPath(PathName{Sample: 1, Contig: 0, Phase: 0, Count: 0})

	source := NewMetadata()
	source.SetSampleNames([]string{"c"})
	source.SetHaplotypes(2)
	source.SetContigNames([]string{"chr2"})
	source.AddPath(PathName{Sample: 0, Contig: 0, Phase: 1, Count: 0})

	m.Merge(source, false, false)

	assert.Equal(t, uint64(3), m.Samples())
	assert.Equal(t, uint64(6), m.Haplotypes())
	assert.Equal(t, uint64(2), m.Contigs())
	assert.Equal(t, uint64(2), m.SampleNames.Find("c"))
	assert.Equal(t, uint64(1), m.ContigNames.Find("chr2"))

	// The incoming path shifts by the old sample and contig counts.
	require.Equal(t, uint64(2), m.Paths())
	assert.Equal(t, PathName{Sample: 2, Contig: 1, Phase: 1, Count: 0}, m.Path(1))
}

func TestMetadataMergeSame(t *testing.T) {
	m := NewMetadata()
	m.SetSamples(2)
	m.SetHaplotypes(4)
	m.SetContigs(1)

	source := NewMetadata()
	source.SetSampleNames([]string{"a", "b"})
	source.SetHaplotypes(4)
	source.SetContigNames([]string{"chr1"})

	m.Merge(source, true, true)

	// Counts stay, names come over from the source.
	assert.Equal(t, uint64(2), m.Samples())
	assert.Equal(t, uint64(1), m.Contigs())
	require.True(t, m.HasSampleNames())
	require.True(t, m.HasContigNames())
	assert.Equal(t, uint64(0), m.SampleNames.Find("a"))
}

func TestMetadataMergeClearsMissingSections(t *testing.T) {
	m := NewMetadata()
	m.SetSampleNames([]string{"a"})
	m.AddPath(PathName{})

	source := NewMetadata()
	source.SetSamples(1)

	m.Merge(source, false, false)

	assert.False(t, m.HasSampleNames())
	assert.False(t, m.HasPathNames())
	assert.Equal(t, uint64(2), m.Samples())
}

func TestMetadataSerialize(t *testing.T) {
	m := NewMetadata()
	m.SetSampleNames([]string{"s1", "s2"})
	m.SetHaplotypes(4)
	m.SetContigNames([]string{"chr1"})
	m.AddPath(PathName{Sample: 1, Contig: 0, Phase: 1, Count: 2})

	var buf bytes.Buffer
	require.NoError(t, m.Serialize(&buf))

	loaded, err := LoadMetadata(&buf)
	require.NoError(t, err)
	require.True(t, m.Equal(loaded))
}

func TestMetadataSerializeBareCounts(t *testing.T) {
	m := NewMetadata()
	m.SetSamples(5)
	m.SetHaplotypes(10)
	m.SetContigs(3)

	var buf bytes.Buffer
	require.NoError(t, m.Serialize(&buf))

	loaded, err := LoadMetadata(&buf)
	require.NoError(t, err)
	require.True(t, m.Equal(loaded))
	assert.False(t, loaded.HasPathNames())
}

func TestMetadataLoadRejectsBadTag(t *testing.T) {
	m := NewMetadata()
	var buf bytes.Buffer
	require.NoError(t, m.Serialize(&buf))

	corrupt := buf.Bytes()
	corrupt[0] ^= 0xFF
	_, err := LoadMetadata(bytes.NewReader(corrupt))
	require.ErrorIs(t, err, ErrMetadataFormat)
}

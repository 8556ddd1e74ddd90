package gbwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckpointRoundTrip(t *testing.T) {
	ra := NewRecordArray(sampledIndex())
	da := NewDASamples(sampledIndex())

	c := NewCheckpoint(ra, da, 2)
	require.NotEmpty(t, c.BuildID)
	require.Equal(t, uint64(2), c.Records)
	require.Equal(t, ra.Size(), c.DataBytes)
	require.Equal(t, uint64(2), c.Samples)
	require.Equal(t, uint64(2), c.Sequences)

	encoded, err := c.Encode()
	require.NoError(t, err)

	decoded, err := DecodeCheckpoint(encoded)
	require.NoError(t, err)
	assert.Equal(t, c, decoded)
}

func TestCheckpointWithoutSamples(t *testing.T) {
	ra := NewRecordArray(smallIndex())
	c := NewCheckpoint(ra, nil, 2)
	assert.Equal(t, uint64(0), c.Samples)
	assert.Equal(t, uint64(3), c.Records)

	_, err := DecodeCheckpoint([]byte{0xFF, 0x00})
	assert.Error(t, err)
}

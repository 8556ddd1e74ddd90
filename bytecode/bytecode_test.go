package bytecode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteKnownEncodings(t *testing.T) {
	tests := []struct {
		name  string
		value uint64
		want  []byte
	}{
		{"zero is a single clear byte", 0, []byte{0x00}},
		{"largest single byte value", 127, []byte{0x7F}},
		{"first two byte value", 128, []byte{0x80, 0x01}},
		{"300 per the classic worked example", 300, []byte{0xAC, 0x02}},
		{"16384 needs three bytes", 16384, []byte{0x80, 0x80, 0x01}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Write(nil, tt.value)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 255, 256, 16383, 16384, 1 << 32, 1<<63 - 1, 1<<64 - 1}

	var buf []byte
	for _, v := range values {
		buf = Write(buf, v)
	}

	var pos uint64
	for _, v := range values {
		got := Read(buf, &pos)
		assert.Equal(t, v, got)
	}
	require.Equal(t, uint64(len(buf)), pos)
}

func TestSizeMatchesWrite(t *testing.T) {
	for _, v := range []uint64{0, 1, 127, 128, 1 << 14, 1<<14 - 1, 1 << 35, 1<<64 - 1} {
		assert.Equal(t, uint64(len(Write(nil, v))), Size(v))
	}
}

func TestRunRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		sigma uint64
		runs  [][2]uint64
	}{
		{
			"single successor packs lengths below 256 into one byte",
			1,
			[][2]uint64{{0, 1}, {0, 255}, {0, 256}, {0, 1000}},
		},
		{
			"two successors",
			2,
			[][2]uint64{{0, 2}, {1, 3}, {0, 1}, {1, 127}, {0, 128}, {1, 129}},
		},
		{
			"five successors around the escape threshold",
			5,
			[][2]uint64{{4, 50}, {0, 51}, {3, 52}, {2, 1}, {1, 100000}},
		},
		{
			"rank space too large for single byte packing",
			300,
			[][2]uint64{{299, 1}, {0, 7}, {150, 1 << 20}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec := NewRun(tt.sigma)
			var buf []byte
			for _, run := range tt.runs {
				buf = codec.Write(buf, run[0], run[1])
			}

			var pos uint64
			for _, run := range tt.runs {
				rank, length := codec.Read(buf, &pos)
				assert.Equal(t, run[0], rank)
				assert.Equal(t, run[1], length)
			}
			require.Equal(t, uint64(len(buf)), pos)
		})
	}
}

func TestRunSingleByteForm(t *testing.T) {
	// sigma 4 packs runs shorter than 64 into rank + 4*(length-1).
	codec := NewRun(4)

	buf := codec.Write(nil, 2, 1)
	require.Equal(t, []byte{0x02}, buf)

	buf = codec.Write(nil, 3, 63)
	require.Equal(t, []byte{3 + 4*62}, buf)

	// Length 64 is the escape marker followed by the remainder.
	buf = codec.Write(nil, 1, 64)
	require.Equal(t, []byte{1 + 4*63, 0x00}, buf)

	buf = codec.Write(nil, 1, 70)
	require.Equal(t, []byte{1 + 4*63, 0x06}, buf)
}

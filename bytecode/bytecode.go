package bytecode

import (
	"encoding/binary"
)

// Write appends the variable-byte encoding of value to buf and returns the
// extended slice. The encoding is identical to binary.AppendUvarint: seven
// payload bits per byte, least significant group first, high bit set on
// every byte except the last.
func Write(buf []byte, value uint64) []byte {
	return binary.AppendUvarint(buf, value)
}

// Read decodes one variable-byte integer from data starting at *pos and
// advances *pos past it. No range checks are performed; truncated or
// malformed input panics. Callers decode data that has already been length
// checked by the loading layer.
func Read(data []byte, pos *uint64) uint64 {
	value, n := binary.Uvarint(data[*pos:])
	if n <= 0 {
		panic("bytecode: truncated variable-byte integer")
	}
	*pos += uint64(n)
	return value
}

// Size returns the number of bytes Write produces for value.
func Size(value uint64) uint64 {
	size := uint64(1)
	for value > 0x7F {
		size++
		value >>= 7
	}
	return size
}

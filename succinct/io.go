package succinct

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var (
	ErrTruncated    = errors.New("unexpected end of serialized vector data")
	ErrBadHeader    = errors.New("serialized vector header is inconsistent")
	ErrBuilderOrder = errors.New("builder positions must be strictly increasing")
	ErrBuilderFull  = errors.New("builder received more positions than declared")
)

// WriteUint64 writes a 64-bit little-endian integer.
func WriteUint64(w io.Writer, value uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], value)
	_, err := w.Write(buf[:])
	return err
}

// ReadUint64 reads a 64-bit little-endian integer.
func ReadUint64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("reading uint64: %w", errors.Join(ErrTruncated, err))
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// WriteUint32 writes a 32-bit little-endian integer.
func WriteUint32(w io.Writer, value uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], value)
	_, err := w.Write(buf[:])
	return err
}

// ReadUint32 reads a 32-bit little-endian integer.
func ReadUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("reading uint32: %w", errors.Join(ErrTruncated, err))
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func writeWords(w io.Writer, words []uint64) error {
	if err := WriteUint64(w, uint64(len(words))); err != nil {
		return err
	}
	var buf [8]byte
	for _, word := range words {
		binary.LittleEndian.PutUint64(buf[:], word)
		if _, err := w.Write(buf[:]); err != nil {
			return err
		}
	}
	return nil
}

func readWords(r io.Reader) ([]uint64, error) {
	count, err := ReadUint64(r)
	if err != nil {
		return nil, err
	}
	words := make([]uint64, count)
	var buf [8]byte
	for i := range words {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, fmt.Errorf("reading word %d of %d: %w", i, count, errors.Join(ErrTruncated, err))
		}
		words[i] = binary.LittleEndian.Uint64(buf[:])
	}
	return words, nil
}

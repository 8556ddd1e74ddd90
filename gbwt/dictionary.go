package gbwt

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/kaplannp/gbwt/succinct"
)

var ErrDictionaryLayout = errors.New("dictionary offsets are inconsistent with the data")

// Dictionary is a keyed string table: strings live concatenated in a flat
// byte buffer with packed starting offsets, and a permutation orders them
// lexicographically for binary-searched lookup by string. Duplicate
// strings are allowed but degrade Find to returning one of the matches;
// construction warns about them.
//
// The zero value is an empty dictionary.
type Dictionary struct {
	offsets   *succinct.IntVector
	sortedIDs *succinct.IntVector
	data      []byte
}

// NewDictionary builds a dictionary over the given strings, which keep
// their positions as identifiers.
func NewDictionary(words []string) Dictionary {
	if len(words) == 0 {
		return Dictionary{}
	}

	var totalLength uint64
	for _, word := range words {
		totalLength += uint64(len(word))
	}

	d := Dictionary{
		offsets:   succinct.NewIntVector(uint64(len(words))+1, succinct.BitLen(totalLength)),
		sortedIDs: succinct.NewIntVector(uint64(len(words)), succinct.BitLen(uint64(len(words))-1)),
		data:      make([]byte, 0, totalLength),
	}

	var offset uint64
	for i, word := range words {
		d.offsets.Set(uint64(i), offset)
		d.data = append(d.data, word...)
		offset += uint64(len(word))
	}
	d.offsets.Set(uint64(len(words)), totalLength)

	d.sortIDs()
	d.checkForDuplicates("dictionary construction")
	return d
}

// Size returns the number of strings.
func (d *Dictionary) Size() uint64 {
	if d.offsets == nil {
		return 0
	}
	return d.offsets.Len() - 1
}

// Empty reports whether the dictionary holds no strings.
func (d *Dictionary) Empty() bool { return d.Size() == 0 }

// Word returns the string with identifier i.
func (d *Dictionary) Word(i uint64) string {
	return string(d.data[d.offsets.Get(i):d.offsets.Get(i+1)])
}

func (d *Dictionary) wordBytes(i uint64) []byte {
	return d.data[d.offsets.Get(i):d.offsets.Get(i+1)]
}

// Find returns the identifier of the string, or Size() if it is not
// present.
func (d *Dictionary) Find(s string) uint64 {
	target := []byte(s)
	start, limit := uint64(0), d.Size()
	for start < limit {
		mid := start + (limit-start)/2
		switch bytes.Compare(d.wordBytes(d.sortedIDs.Get(mid)), target) {
		case -1:
			start = mid + 1
		case 1:
			limit = mid
		default:
			return d.sortedIDs.Get(mid)
		}
	}
	return d.Size()
}

// Append concatenates another dictionary after this one. The identifiers
// of the appended strings are shifted by the old size, and the sorted
// permutation is rebuilt over the combined table.
func (d *Dictionary) Append(source *Dictionary) {
	if source.Empty() {
		return
	}

	oldDataSize := uint64(len(d.data))
	oldSize := d.Size()
	newSize := oldSize + source.Size()

	newData := make([]byte, 0, uint64(len(d.data))+uint64(len(source.data)))
	newData = append(newData, d.data...)
	newData = append(newData, source.data...)

	newOffsets := succinct.NewIntVector(newSize+1, succinct.BitLen(uint64(len(newData))))
	for i := uint64(0); i < oldSize; i++ {
		newOffsets.Set(i, d.offsets.Get(i))
	}
	for i := uint64(0); i <= source.Size(); i++ {
		newOffsets.Set(oldSize+i, oldDataSize+source.offsets.Get(i))
	}

	d.data = newData
	d.offsets = newOffsets
	d.sortedIDs = succinct.NewIntVector(newSize, succinct.BitLen(newSize-1))
	d.sortIDs()
	d.checkForDuplicates("dictionary append")
}

func (d *Dictionary) sortIDs() {
	ids := make([]uint64, d.Size())
	for i := range ids {
		ids[i] = uint64(i)
	}
	sort.Slice(ids, func(a, b int) bool {
		return bytes.Compare(d.wordBytes(ids[a]), d.wordBytes(ids[b])) < 0
	})
	for i, id := range ids {
		d.sortedIDs.Set(uint64(i), id)
	}
}

func (d *Dictionary) checkForDuplicates(context string) {
	for i := uint64(0); i+1 < d.Size(); i++ {
		if bytes.Equal(d.wordBytes(d.sortedIDs.Get(i)), d.wordBytes(d.sortedIDs.Get(i+1))) {
			warnf("%s: the dictionary contains duplicate strings", context)
			return
		}
	}
}

// Equal reports whether two dictionaries hold the same strings with the
// same identifiers.
func (d *Dictionary) Equal(other *Dictionary) bool {
	if d.Size() != other.Size() {
		return false
	}
	for i := uint64(0); i < d.Size(); i++ {
		if !bytes.Equal(d.wordBytes(i), other.wordBytes(i)) {
			return false
		}
	}
	return true
}

// Clear resets the dictionary to empty.
func (d *Dictionary) Clear() { *d = Dictionary{} }

// Serialize writes the dictionary: the offsets, the sorted permutation,
// then the raw string data.
func (d *Dictionary) Serialize(w io.Writer) error {
	offsets, sortedIDs := d.offsets, d.sortedIDs
	if offsets == nil {
		offsets = succinct.NewIntVector(1, 1)
		sortedIDs = succinct.NewIntVector(0, 1)
	}
	if err := offsets.Serialize(w); err != nil {
		return err
	}
	if err := sortedIDs.Serialize(w); err != nil {
		return err
	}
	if err := succinct.WriteUint64(w, uint64(len(d.data))); err != nil {
		return err
	}
	_, err := w.Write(d.data)
	return err
}

// Load replaces the dictionary contents from r.
func (d *Dictionary) Load(r io.Reader) error {
	offsets, err := succinct.LoadIntVector(r)
	if err != nil {
		return err
	}
	sortedIDs, err := succinct.LoadIntVector(r)
	if err != nil {
		return err
	}
	dataLen, err := succinct.ReadUint64(r)
	if err != nil {
		return err
	}
	data := make([]byte, dataLen)
	if _, err := io.ReadFull(r, data); err != nil {
		return fmt.Errorf("reading %d dictionary bytes: %w", dataLen, errors.Join(succinct.ErrTruncated, err))
	}

	if offsets.Len() == 0 || offsets.Get(offsets.Len()-1) != dataLen {
		return fmt.Errorf("dictionary of %d bytes with final offset mismatch: %w", dataLen, ErrDictionaryLayout)
	}
	if sortedIDs.Len() != offsets.Len()-1 {
		return fmt.Errorf("dictionary permutation of %d entries for %d strings: %w",
			sortedIDs.Len(), offsets.Len()-1, ErrDictionaryLayout)
	}

	if offsets.Len() == 1 {
		*d = Dictionary{}
		return nil
	}
	d.offsets = offsets
	d.sortedIDs = sortedIDs
	d.data = data
	return nil
}

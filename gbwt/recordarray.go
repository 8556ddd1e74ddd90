package gbwt

import (
	"errors"
	"fmt"
	"io"

	"github.com/kaplannp/gbwt/bytecode"
	"github.com/kaplannp/gbwt/succinct"
)

var (
	ErrRecordRange = errors.New("record identifier out of range")
	ErrIndexSize   = errors.New("record index does not cover the data")
)

// RecordArray holds the compressed encodings of all records concatenated
// into one byte slice, with a sparse bit vector marking the start of every
// record. Record 0 is the endmarker. An empty record is a single zero
// byte.
type RecordArray struct {
	Records uint64
	Index   *succinct.Sparse
	Data    []byte
}

// NewRecordArray compresses a vector of dynamic records, one per node
// identifier in index order.
func NewRecordArray(bwt []DynamicRecord) *RecordArray {
	ra := &RecordArray{Records: uint64(len(bwt))}

	offsets := make([]uint64, len(bwt))
	for i := range bwt {
		offsets[i] = uint64(len(ra.Data))
		ra.Data = bwt[i].WriteBWT(ra.Data)
	}

	ra.buildIndex(offsets)
	return ra
}

// MergeRecordArrays combines several arrays into one. origins assigns each
// destination record j >= 1 the source it comes from, with any value at or
// past len(sources) meaning no source has the record; recordOffsets[k] is
// the first destination record identifier of source k. The destination
// endmarker concatenates the endmarker bodies of all sources with their
// ranks shifted past the edges already merged; every other record is a
// byte-exact copy of its source encoding.
func MergeRecordArrays(sources []*RecordArray, origins *succinct.IntVector, recordOffsets []uint64) *RecordArray {
	ra := &RecordArray{Records: origins.Len()}

	var dataSize uint64
	for _, source := range sources {
		dataSize += uint64(len(source.Data))
	}

	// Merge the endmarkers. limits[k] tracks the end of the most recently
	// copied record of source k, which is also the start of its next one.
	limits := make([]uint64, len(sources))
	var merged DynamicRecord
	for i, source := range sources {
		if source.Empty() {
			continue
		}
		start, limit := source.Start(EndMarker), source.Limit(EndMarker)
		record := DecodeRecord(source.Data, start, limit)
		for it := newRecordIterator(&record); !it.fin; it.advance() {
			run := Run{it.run.Rank + merged.Outdegree(), it.run.Length}
			merged.Body = append(merged.Body, run)
			merged.BodySize += run.Length
		}
		merged.Outgoing = append(merged.Outgoing, record.Outgoing...)
		limits[i] = limit
	}
	merged.Recode()
	ra.Data = merged.WriteBWT(nil)

	// Copy the remaining records byte for byte.
	ra.Data = append(make([]byte, 0, dataSize+uint64(len(ra.Data))), ra.Data...)
	offsets := make([]uint64, origins.Len())
	for comp := uint64(1); comp < origins.Len(); comp++ {
		offsets[comp] = uint64(len(ra.Data))
		origin := origins.Get(comp)
		if origin >= uint64(len(sources)) {
			ra.Data = append(ra.Data, 0)
			continue
		}
		start, limit := limits[origin], sources[origin].Limit(comp-recordOffsets[origin])
		limits[origin] = limit
		ra.Data = append(ra.Data, sources[origin].Data[start:limit]...)
	}

	ra.buildIndex(offsets)
	return ra
}

func (ra *RecordArray) buildIndex(offsets []uint64) {
	builder := succinct.NewSparseBuilder(uint64(len(ra.Data)), uint64(len(offsets)))
	for _, offset := range offsets {
		builder.Set(offset)
	}
	ra.Index = builder.Finish()
}

// Empty reports whether the array holds no records.
func (ra *RecordArray) Empty() bool { return ra.Records == 0 }

// Size returns the total number of data bytes.
func (ra *RecordArray) Size() uint64 { return uint64(len(ra.Data)) }

// Start returns the offset of the first byte of record i.
func (ra *RecordArray) Start(i uint64) uint64 { return ra.Index.Select(i + 1) }

// Limit returns the offset just past record i.
func (ra *RecordArray) Limit(i uint64) uint64 {
	if i+1 < ra.Records {
		return ra.Index.Select(i + 2)
	}
	return uint64(len(ra.Data))
}

// EmptyRecord reports whether record i has outdegree zero.
func (ra *RecordArray) EmptyRecord(i uint64) bool {
	return EmptyRecord(ra.Data, ra.Start(i))
}

// Record returns a view of record i. The view borrows the array's data.
func (ra *RecordArray) Record(i uint64) CompressedRecord {
	return DecodeRecord(ra.Data, ra.Start(i), ra.Limit(i))
}

// Serialize writes the array: the record count, the start index, then the
// raw data bytes.
func (ra *RecordArray) Serialize(w io.Writer) error {
	if err := succinct.WriteUint64(w, ra.Records); err != nil {
		return err
	}
	if err := ra.Index.Serialize(w); err != nil {
		return err
	}
	_, err := w.Write(ra.Data)
	return err
}

// LoadRecordArray reads an array serialized by Serialize.
func LoadRecordArray(r io.Reader) (*RecordArray, error) {
	records, err := succinct.ReadUint64(r)
	if err != nil {
		return nil, err
	}
	index, err := succinct.LoadSparse(r)
	if err != nil {
		return nil, err
	}
	if index.Ones() != records {
		return nil, fmt.Errorf("%d records with %d index marks: %w", records, index.Ones(), ErrIndexSize)
	}
	data := make([]byte, index.Len())
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("reading %d record bytes: %w", len(data), errors.Join(succinct.ErrTruncated, err))
	}
	return &RecordArray{Records: records, Index: index, Data: data}, nil
}

// Verify walks every record and checks that the encodings are parseable
// within their boundaries. It is intended for use after loading data of
// uncertain provenance.
func (ra *RecordArray) Verify() error {
	for i := uint64(0); i < ra.Records; i++ {
		start, limit := ra.Start(i), ra.Limit(i)
		if start >= limit || limit > uint64(len(ra.Data)) {
			return fmt.Errorf("record %d spans [%d, %d): %w", i, start, limit, ErrRecordRange)
		}
		if err := verifyRecord(ra.Data, start, limit); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}

var errRecordOverrun = errors.New("record encoding overruns its boundary")

func verifyRecord(data []byte, start, limit uint64) (err error) {
	defer func() {
		if recover() != nil {
			err = errRecordOverrun
		}
	}()
	pos := start
	outdegree := bytecode.Read(data, &pos)
	for i := uint64(0); i < outdegree; i++ {
		bytecode.Read(data, &pos)
		bytecode.Read(data, &pos)
	}
	if pos > limit {
		return errRecordOverrun
	}
	if outdegree == 0 {
		return nil
	}
	dec := bytecode.NewRun(outdegree)
	for pos < limit {
		dec.Read(data, &pos)
	}
	if pos != limit {
		return errRecordOverrun
	}
	return nil
}

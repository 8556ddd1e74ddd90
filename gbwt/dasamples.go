package gbwt

import (
	"errors"
	"fmt"
	"io"

	"github.com/kaplannp/gbwt/succinct"
)

var ErrSampleLayout = errors.New("sample array does not match its offset vector")

// DASamples stores a sparse sampling of sequence identifiers along the
// BWT. The ranges of the sampled records are concatenated into one offset
// space: SampledRecords marks which records carry samples, BWTRanges marks
// the start of each sampled record's range, SampledOffsets marks every
// sampled position, and Array holds the sequence identifiers in the same
// order.
type DASamples struct {
	SampledRecords *succinct.BitVector
	BWTRanges      *succinct.Sparse
	SampledOffsets *succinct.Sparse
	Array          *succinct.IntVector
}

// NewDASamples collects the samples of a dynamic record vector.
func NewDASamples(bwt []DynamicRecord) *DASamples {
	da := &DASamples{}

	// Pass 1: statistics and the sampled record marks.
	var recordCount, bwtOffsets, sampleCount, maxSample uint64
	da.SampledRecords = succinct.NewBitVector(uint64(len(bwt)))
	for i := range bwt {
		if bwt[i].Samples() > 0 {
			recordCount++
			bwtOffsets += bwt[i].Size()
			sampleCount += bwt[i].Samples()
			da.SampledRecords.Set(uint64(i))
			for _, sample := range bwt[i].IDs {
				if sample.Sequence > maxSample {
					maxSample = sample.Sequence
				}
			}
		}
	}

	// Pass 2: the offset bitvectors and the identifier array.
	rangeBuilder := succinct.NewSparseBuilder(bwtOffsets, recordCount)
	offsetBuilder := succinct.NewSparseBuilder(bwtOffsets, sampleCount)
	da.Array = succinct.NewIntVector(sampleCount, succinct.BitLen(maxSample))
	var offset, curr uint64
	for i := range bwt {
		if bwt[i].Samples() == 0 {
			continue
		}
		rangeBuilder.Set(offset)
		for _, sample := range bwt[i].IDs {
			offsetBuilder.Set(offset + sample.Offset)
			da.Array.Set(curr, sample.Sequence)
			curr++
		}
		offset += bwt[i].Size()
	}
	da.BWTRanges = rangeBuilder.Finish()
	da.SampledOffsets = offsetBuilder.Finish()
	da.finish()
	return da
}

// Records returns the number of records the sampling covers.
func (da *DASamples) Records() uint64 { return da.SampledRecords.Len() }

// Size returns the number of stored samples.
func (da *DASamples) Size() uint64 { return da.Array.Len() }

// IsSampled reports whether the record carries any samples.
func (da *DASamples) IsSampled(record uint64) bool {
	return record < da.SampledRecords.Len() && da.SampledRecords.Get(record)
}

// recordRank maps a record identifier to its position among the sampled
// records.
func (da *DASamples) recordRank(record uint64) uint64 {
	return da.SampledRecords.Rank(record)
}

// Start returns the start of the record's range in the concatenated
// sampled offset space. The record must be sampled.
func (da *DASamples) Start(record uint64) uint64 {
	return da.BWTRanges.Select(da.recordRank(record) + 1)
}

// limit returns the end of the range of the rank-th sampled record.
func (da *DASamples) limit(rank uint64) uint64 {
	rankLimit := da.SampledRecords.Count()
	if rank+1 < rankLimit {
		return da.BWTRanges.Select(rank + 2)
	}
	return da.BWTRanges.Len()
}

// TryLocate returns the sequence identifier sampled at the given position
// of the record, or the invalid sequence if the position carries no
// sample.
func (da *DASamples) TryLocate(record, offset uint64) uint64 {
	if !da.IsSampled(record) {
		return InvalidSequence()
	}

	pos := da.Start(record) + offset
	if da.SampledOffsets.Get(pos) {
		return da.Array.Get(da.SampledOffsets.Rank(pos))
	}
	return InvalidSequence()
}

// NextSample returns the first sample at or after the given position of
// the record. The search continues past the record's range: a returned
// offset at or past the record size belongs to a later record, and
// recognising that is the caller's responsibility.
func (da *DASamples) NextSample(record, offset uint64) Sample {
	if !da.IsSampled(record) {
		return InvalidSample()
	}

	recordStart := da.Start(record)
	rank := da.SampledOffsets.Rank(recordStart + offset)
	if rank < da.Array.Len() {
		return Sample{da.SampledOffsets.Select(rank+1) - recordStart, da.Array.Get(rank)}
	}
	return InvalidSample()
}

// sampleIterator walks the stored samples of a source in order.
type sampleIterator struct {
	da  *DASamples
	pos uint64
}

func (it *sampleIterator) end() bool      { return it.pos >= it.da.Size() }
func (it *sampleIterator) offset() uint64 { return it.da.SampledOffsets.Select(it.pos + 1) }
func (it *sampleIterator) value() uint64  { return it.da.Array.Get(it.pos) }
func (it *sampleIterator) advance()       { it.pos++ }

// sampleRangeIterator walks the ranges of the sampled records of a source
// in order.
type sampleRangeIterator struct {
	da   *DASamples
	rank uint64
}

func (it *sampleRangeIterator) start() uint64  { return it.da.BWTRanges.Select(it.rank + 1) }
func (it *sampleRangeIterator) limit() uint64  { return it.da.limit(it.rank) }
func (it *sampleRangeIterator) length() uint64 { return it.limit() - it.start() }
func (it *sampleRangeIterator) advance()       { it.rank++ }

// finish builds the rank directory once construction is done, so later
// queries can run from concurrent readers.
func (da *DASamples) finish() { da.SampledRecords.Count() }

// MergeDASamples combines the samples of several indexes. origins and
// recordOffsets have the meaning they have in MergeRecordArrays;
// sequenceCounts[k] is the number of sequences in source k. The merged
// endmarker range spans the total sequence count; every sample's sequence
// identifier is shifted by the number of sequences in earlier sources.
func MergeDASamples(sources []*DASamples, origins *succinct.IntVector, recordOffsets, sequenceCounts []uint64) *DASamples {
	da := &DASamples{}

	var sampleCount, totalSequences uint64
	sequenceOffsets := make([]uint64, len(sources))
	sampleIters := make([]sampleIterator, len(sources))
	rangeIters := make([]sampleRangeIterator, len(sources))
	for i, source := range sources {
		sampleCount += source.Size()
		sequenceOffsets[i] = totalSequences
		totalSequences += sequenceCounts[i]
		sampleIters[i] = sampleIterator{da: source}
		rangeIters[i] = sampleRangeIterator{da: source}
	}

	// Pass 1: statistics and the sampled record marks. The endmarker is
	// sampled in the destination if any source samples it, and its range
	// covers every merged sequence.
	var recordCount, bwtOffsets uint64
	da.SampledRecords = succinct.NewBitVector(origins.Len())
	sampleEndmarker := false
	for origin := range sources {
		if sources[origin].IsSampled(EndMarker) {
			sampleEndmarker = true
			rangeIters[origin].advance()
		}
	}
	if sampleEndmarker {
		recordCount++
		bwtOffsets += totalSequences
		da.SampledRecords.Set(EndMarker)
	}
	for i := uint64(1); i < origins.Len(); i++ {
		origin := origins.Get(i)
		if origin >= uint64(len(sources)) {
			continue
		}
		if sources[origin].IsSampled(i - recordOffsets[origin]) {
			recordCount++
			bwtOffsets += rangeIters[origin].length()
			da.SampledRecords.Set(i)
			rangeIters[origin].advance()
		}
	}

	// Pass 2: the offset bitvectors and the shifted identifiers. The
	// range iterators restart from the beginning.
	for i := range sources {
		rangeIters[i] = sampleRangeIterator{da: sources[i]}
	}
	rangeBuilder := succinct.NewSparseBuilder(bwtOffsets, recordCount)
	offsetBuilder := succinct.NewSparseBuilder(bwtOffsets, sampleCount)
	var width uint = 1
	if totalSequences > 0 {
		width = succinct.BitLen(totalSequences - 1)
	}
	da.Array = succinct.NewIntVector(sampleCount, width)

	var recordStart, curr uint64
	if sampleEndmarker {
		rangeBuilder.Set(recordStart)
		for origin := range sources {
			if !sources[origin].IsSampled(EndMarker) {
				continue
			}
			for !sampleIters[origin].end() && sampleIters[origin].offset() < rangeIters[origin].limit() {
				offsetBuilder.Set(sampleIters[origin].offset() + sequenceOffsets[origin])
				da.Array.Set(curr, sampleIters[origin].value()+sequenceOffsets[origin])
				curr++
				sampleIters[origin].advance()
			}
			rangeIters[origin].advance()
		}
		recordStart += totalSequences
	}
	for i := uint64(1); i < origins.Len(); i++ {
		if !da.SampledRecords.Get(i) {
			continue
		}
		origin := origins.Get(i)
		rangeBuilder.Set(recordStart)
		for !sampleIters[origin].end() && sampleIters[origin].offset() < rangeIters[origin].limit() {
			offsetBuilder.Set(sampleIters[origin].offset() - rangeIters[origin].start() + recordStart)
			da.Array.Set(curr, sampleIters[origin].value()+sequenceOffsets[origin])
			curr++
			sampleIters[origin].advance()
		}
		recordStart += rangeIters[origin].length()
		rangeIters[origin].advance()
	}
	da.BWTRanges = rangeBuilder.Finish()
	da.SampledOffsets = offsetBuilder.Finish()
	da.finish()
	return da
}

// Serialize writes the sampling: the record marks, the range starts, the
// sampled offsets, then the identifier array.
func (da *DASamples) Serialize(w io.Writer) error {
	if err := da.SampledRecords.Serialize(w); err != nil {
		return err
	}
	if err := da.BWTRanges.Serialize(w); err != nil {
		return err
	}
	if err := da.SampledOffsets.Serialize(w); err != nil {
		return err
	}
	return da.Array.Serialize(w)
}

// LoadDASamples reads a sampling serialized by Serialize.
func LoadDASamples(r io.Reader) (*DASamples, error) {
	da := &DASamples{SampledRecords: &succinct.BitVector{}}
	if err := da.SampledRecords.Load(r); err != nil {
		return nil, err
	}
	var err error
	if da.BWTRanges, err = succinct.LoadSparse(r); err != nil {
		return nil, err
	}
	if da.SampledOffsets, err = succinct.LoadSparse(r); err != nil {
		return nil, err
	}
	if da.Array, err = succinct.LoadIntVector(r); err != nil {
		return nil, err
	}
	if da.Array.Len() != da.SampledOffsets.Ones() {
		return nil, fmt.Errorf("%d identifiers for %d sampled offsets: %w",
			da.Array.Len(), da.SampledOffsets.Ones(), ErrSampleLayout)
	}
	return da, nil
}

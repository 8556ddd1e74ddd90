package gbwt

import (
	"errors"
	"fmt"
	"io"

	"github.com/kaplannp/gbwt/succinct"
)

// Metadata format constants. The tag is the ASCII bytes "GBWT" in
// serialization order. The current version adds the optional name
// sections; the initial version carried the counts only.
const (
	MetadataTag            uint32 = 0x54574247
	MetadataVersion        uint32 = 2
	MetadataInitialVersion uint32 = 1

	FlagPathNames   uint64 = 0x1
	FlagSampleNames uint64 = 0x2
	FlagContigNames uint64 = 0x4

	flagMask        uint64 = 0x7
	initialFlagMask uint64 = 0x0
)

var ErrMetadataFormat = errors.New("metadata tag, version, or flags are invalid")

// PathName identifies one indexed path: the sample and contig it belongs
// to, the phase (haplotype) within the sample, and a running count
// distinguishing fragments of the same phase.
type PathName struct {
	Sample uint32
	Contig uint32
	Phase  uint32
	Count  uint32
}

// Metadata carries the statistics and the optional naming of the indexed
// paths: sample, haplotype, and contig counts, per-path structured names,
// and dictionaries mapping sample and contig identifiers to strings.
type Metadata struct {
	Tag     uint32
	Version uint32

	SampleCount    uint64
	HaplotypeCount uint64
	ContigCount    uint64
	Flags          uint64

	PathNames   []PathName
	SampleNames Dictionary
	ContigNames Dictionary
}

// NewMetadata returns empty metadata in the current version.
func NewMetadata() *Metadata {
	return &Metadata{Tag: MetadataTag, Version: MetadataVersion}
}

// Check validates the tag, the version, and that only flags defined for
// that version are present.
func (m *Metadata) Check() bool {
	if m.Tag != MetadataTag {
		return false
	}
	switch m.Version {
	case MetadataVersion:
		return m.Flags&flagMask == m.Flags
	case MetadataInitialVersion:
		return m.Flags&initialFlagMask == m.Flags
	default:
		return false
	}
}

func (m *Metadata) get(flag uint64) bool { return m.Flags&flag != 0 }
func (m *Metadata) set(flag uint64)      { m.Flags |= flag }
func (m *Metadata) unset(flag uint64)    { m.Flags &^= flag }

// Samples returns the sample count.
func (m *Metadata) Samples() uint64 { return m.SampleCount }

// Haplotypes returns the haplotype count.
func (m *Metadata) Haplotypes() uint64 { return m.HaplotypeCount }

// Contigs returns the contig count.
func (m *Metadata) Contigs() uint64 { return m.ContigCount }

// HasPathNames reports whether per-path names are present.
func (m *Metadata) HasPathNames() bool { return m.get(FlagPathNames) }

// HasSampleNames reports whether the sample name dictionary is present.
func (m *Metadata) HasSampleNames() bool { return m.get(FlagSampleNames) }

// HasContigNames reports whether the contig name dictionary is present.
func (m *Metadata) HasContigNames() bool { return m.get(FlagContigNames) }

// Paths returns the number of stored path names.
func (m *Metadata) Paths() uint64 { return uint64(len(m.PathNames)) }

// Path returns the i-th path name.
func (m *Metadata) Path(i uint64) PathName { return m.PathNames[i] }

// SetSamples sets the sample count without touching the names. A warning
// is emitted if names are present, as they no longer match the count.
func (m *Metadata) SetSamples(n uint64) {
	if m.HasSampleNames() {
		warnf("metadata: changing sample count without changing sample names")
	}
	m.SampleCount = n
}

// SetHaplotypes sets the haplotype count.
func (m *Metadata) SetHaplotypes(n uint64) { m.HaplotypeCount = n }

// SetContigs sets the contig count without touching the names. A warning
// is emitted if names are present, as they no longer match the count.
func (m *Metadata) SetContigs(n uint64) {
	if m.HasContigNames() {
		warnf("metadata: changing contig count without changing contig names")
	}
	m.ContigCount = n
}

// SetSampleNames replaces the sample names and count. Empty names clear
// the section.
func (m *Metadata) SetSampleNames(names []string) {
	if len(names) == 0 {
		m.ClearSampleNames()
		return
	}
	m.SampleCount = uint64(len(names))
	m.set(FlagSampleNames)
	m.SampleNames = NewDictionary(names)
}

// SetContigNames replaces the contig names and count. Empty names clear
// the section.
func (m *Metadata) SetContigNames(names []string) {
	if len(names) == 0 {
		m.ClearContigNames()
		return
	}
	m.ContigCount = uint64(len(names))
	m.set(FlagContigNames)
	m.ContigNames = NewDictionary(names)
}

// AddPath appends a path name, enabling the section.
func (m *Metadata) AddPath(path PathName) {
	m.set(FlagPathNames)
	m.PathNames = append(m.PathNames, path)
}

// ClearPathNames removes the path name section.
func (m *Metadata) ClearPathNames() {
	m.unset(FlagPathNames)
	m.PathNames = nil
}

// ClearSampleNames removes the sample name section.
func (m *Metadata) ClearSampleNames() {
	m.unset(FlagSampleNames)
	m.SampleNames.Clear()
}

// ClearContigNames removes the contig name section.
func (m *Metadata) ClearContigNames() {
	m.unset(FlagContigNames)
	m.ContigNames.Clear()
}

// FindPaths returns the identifiers of the paths belonging to both the
// sample and the contig.
func (m *Metadata) FindPaths(sample, contig uint64) []uint64 {
	var result []uint64
	for i := range m.PathNames {
		if uint64(m.PathNames[i].Sample) == sample && uint64(m.PathNames[i].Contig) == contig {
			result = append(result, uint64(i))
		}
	}
	return result
}

// PathsForSample returns the identifiers of the sample's paths.
func (m *Metadata) PathsForSample(sample uint64) []uint64 {
	var result []uint64
	for i := range m.PathNames {
		if uint64(m.PathNames[i].Sample) == sample {
			result = append(result, uint64(i))
		}
	}
	return result
}

// PathsForContig returns the identifiers of the contig's paths.
func (m *Metadata) PathsForContig(contig uint64) []uint64 {
	var result []uint64
	for i := range m.PathNames {
		if uint64(m.PathNames[i].Contig) == contig {
			result = append(result, uint64(i))
		}
	}
	return result
}

// Merge combines another metadata object into this one. With sameSamples
// or sameContigs, the counts are expected to match and are kept; otherwise
// the counts add up, the name dictionaries are appended, and the sample
// and contig fields of incoming path names shift past the existing ones.
// In the same-count modes, names the source has and this object lacks are
// taken over, and existing names are never cleared. Outside them, a source
// without a name section this object has clears that section. A source
// without path names clears this object's path names in every mode.
func (m *Metadata) Merge(source *Metadata, sameSamples, sameContigs bool) {
	var sampleOffset, contigOffset uint64

	if sameSamples {
		if m.Samples() != source.Samples() || m.Haplotypes() != source.Haplotypes() {
			warnf("metadata merge: sample and haplotype counts do not match")
		}
		if !m.HasSampleNames() && source.HasSampleNames() {
			infof("metadata merge: taking sample names from the source")
			m.SampleNames = source.SampleNames
			m.set(FlagSampleNames)
		}
	} else {
		sampleOffset = m.Samples()
		m.SampleCount += source.Samples()
		m.HaplotypeCount += source.Haplotypes()
		if m.HasSampleNames() {
			if source.HasSampleNames() {
				m.SampleNames.Append(&source.SampleNames)
			} else {
				infof("metadata merge: clearing sample names, the source has none")
				m.ClearSampleNames()
			}
		}
	}

	if sameContigs {
		if m.Contigs() != source.Contigs() {
			warnf("metadata merge: contig counts do not match")
		}
		if !m.HasContigNames() && source.HasContigNames() {
			infof("metadata merge: taking contig names from the source")
			m.ContigNames = source.ContigNames
			m.set(FlagContigNames)
		}
	} else {
		contigOffset = m.Contigs()
		m.ContigCount += source.Contigs()
		if m.HasContigNames() {
			if source.HasContigNames() {
				m.ContigNames.Append(&source.ContigNames)
			} else {
				infof("metadata merge: clearing contig names, the source has none")
				m.ClearContigNames()
			}
		}
	}

	if m.HasPathNames() {
		if source.HasPathNames() {
			pathOffset := m.Paths()
			m.PathNames = append(m.PathNames, source.PathNames...)
			for i := pathOffset; i < uint64(len(m.PathNames)); i++ {
				m.PathNames[i].Sample += uint32(sampleOffset)
				m.PathNames[i].Contig += uint32(contigOffset)
			}
		} else {
			infof("metadata merge: clearing path names, the source has none")
			m.ClearPathNames()
		}
	}
}

// MergeAll merges several sources in order.
func (m *Metadata) MergeAll(sources []*Metadata, sameSamples, sameContigs bool) {
	for _, source := range sources {
		m.Merge(source, sameSamples, sameContigs)
	}
}

// Equal reports whether two metadata objects are identical.
func (m *Metadata) Equal(other *Metadata) bool {
	if m.Tag != other.Tag || m.Version != other.Version ||
		m.SampleCount != other.SampleCount || m.HaplotypeCount != other.HaplotypeCount ||
		m.ContigCount != other.ContigCount || m.Flags != other.Flags {
		return false
	}
	if len(m.PathNames) != len(other.PathNames) {
		return false
	}
	for i := range m.PathNames {
		if m.PathNames[i] != other.PathNames[i] {
			return false
		}
	}
	return m.SampleNames.Equal(&other.SampleNames) && m.ContigNames.Equal(&other.ContigNames)
}

// Serialize writes the metadata: tag, version, the three counts, the
// flags, then the optional sections the flags enable.
func (m *Metadata) Serialize(w io.Writer) error {
	if err := succinct.WriteUint32(w, m.Tag); err != nil {
		return err
	}
	if err := succinct.WriteUint32(w, m.Version); err != nil {
		return err
	}
	for _, count := range []uint64{m.SampleCount, m.HaplotypeCount, m.ContigCount, m.Flags} {
		if err := succinct.WriteUint64(w, count); err != nil {
			return err
		}
	}

	if m.HasPathNames() {
		if err := succinct.WriteUint64(w, uint64(len(m.PathNames))); err != nil {
			return err
		}
		for _, path := range m.PathNames {
			for _, field := range []uint32{path.Sample, path.Contig, path.Phase, path.Count} {
				if err := succinct.WriteUint32(w, field); err != nil {
					return err
				}
			}
		}
	}
	if m.HasSampleNames() {
		if err := m.SampleNames.Serialize(w); err != nil {
			return err
		}
	}
	if m.HasContigNames() {
		if err := m.ContigNames.Serialize(w); err != nil {
			return err
		}
	}
	return nil
}

// LoadMetadata reads metadata serialized by Serialize and validates it
// with Check.
func LoadMetadata(r io.Reader) (*Metadata, error) {
	m := &Metadata{}
	var err error
	if m.Tag, err = succinct.ReadUint32(r); err != nil {
		return nil, err
	}
	if m.Version, err = succinct.ReadUint32(r); err != nil {
		return nil, err
	}
	for _, count := range []*uint64{&m.SampleCount, &m.HaplotypeCount, &m.ContigCount, &m.Flags} {
		if *count, err = succinct.ReadUint64(r); err != nil {
			return nil, err
		}
	}
	if !m.Check() {
		return nil, fmt.Errorf("tag %#x version %d flags %#x: %w", m.Tag, m.Version, m.Flags, ErrMetadataFormat)
	}

	if m.HasPathNames() {
		count, err := succinct.ReadUint64(r)
		if err != nil {
			return nil, err
		}
		m.PathNames = make([]PathName, count)
		for i := range m.PathNames {
			for _, field := range []*uint32{
				&m.PathNames[i].Sample, &m.PathNames[i].Contig,
				&m.PathNames[i].Phase, &m.PathNames[i].Count,
			} {
				if *field, err = succinct.ReadUint32(r); err != nil {
					return nil, err
				}
			}
		}
	}
	if m.HasSampleNames() {
		if err := m.SampleNames.Load(r); err != nil {
			return nil, err
		}
	}
	if m.HasContigNames() {
		if err := m.ContigNames.Load(r); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// String renders the metadata for diagnostics.
func (m *Metadata) String() string {
	result := ""
	if m.HasPathNames() {
		result += fmt.Sprintf("%d paths with names, ", m.Paths())
	}
	result += fmt.Sprintf("%d samples", m.Samples())
	if m.HasSampleNames() {
		result += " with names"
	}
	result += fmt.Sprintf(", %d haplotypes, %d contigs", m.Haplotypes(), m.Contigs())
	if m.HasContigNames() {
		result += " with names"
	}
	return result
}

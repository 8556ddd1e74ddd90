package gbwt

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// Checkpoint is a compact CBOR-encoded summary of a built index, intended
// for pipelines that track and deduplicate indexes without parsing the
// binary format. The build identifier is minted when the checkpoint is
// taken.
type Checkpoint struct {
	BuildID   string `cbor:"1,keyasint"`
	Records   uint64 `cbor:"2,keyasint"`
	DataBytes uint64 `cbor:"3,keyasint"`
	Samples   uint64 `cbor:"4,keyasint"`
	Sequences uint64 `cbor:"5,keyasint"`
}

// NewCheckpoint summarizes an index. samples may be nil when the index
// carries no document array samples.
func NewCheckpoint(records *RecordArray, samples *DASamples, sequences uint64) Checkpoint {
	c := Checkpoint{
		BuildID:   uuid.NewString(),
		Records:   records.Records,
		DataBytes: records.Size(),
		Sequences: sequences,
	}
	if samples != nil {
		c.Samples = samples.Size()
	}
	return c
}

// Encode serializes the checkpoint.
func (c Checkpoint) Encode() ([]byte, error) {
	return cbor.Marshal(c)
}

// DecodeCheckpoint parses a checkpoint produced by Encode.
func DecodeCheckpoint(data []byte) (Checkpoint, error) {
	var c Checkpoint
	if err := cbor.Unmarshal(data, &c); err != nil {
		return Checkpoint{}, err
	}
	return c, nil
}

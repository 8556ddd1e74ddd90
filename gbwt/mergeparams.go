package gbwt

// Defaults and bounds for MergeParameters. Buffer sizes are in megabytes.
const (
	PosBufferSize    uint64 = 64
	ThreadBufferSize uint64 = 256
	MergeBuffers     uint64 = 6
	ChunkSize        uint64 = 1
	MergeJobs        uint64 = 4

	MaxBufferSize   uint64 = 16384
	MaxMergeBuffers uint64 = 16
	MaxMergeJobs    uint64 = 16
)

// MergeParameters configures the external merge pipeline that combines
// several indexes. The setters clamp their arguments to the valid ranges,
// so a parameter object is always usable.
type MergeParameters struct {
	PosBufferSize    uint64
	ThreadBufferSize uint64
	MergeBuffers     uint64
	ChunkSize        uint64
	MergeJobs        uint64
}

// NewMergeParameters returns the default configuration.
func NewMergeParameters() *MergeParameters {
	return &MergeParameters{
		PosBufferSize:    PosBufferSize,
		ThreadBufferSize: ThreadBufferSize,
		MergeBuffers:     MergeBuffers,
		ChunkSize:        ChunkSize,
		MergeJobs:        MergeJobs,
	}
}

func bound(value, low, high uint64) uint64 {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}

// SetPosBufferSize sets the position buffer size in megabytes.
func (p *MergeParameters) SetPosBufferSize(megabytes uint64) {
	p.PosBufferSize = bound(megabytes, 1, MaxBufferSize)
}

// SetThreadBufferSize sets the per-thread buffer size in megabytes.
func (p *MergeParameters) SetThreadBufferSize(megabytes uint64) {
	p.ThreadBufferSize = bound(megabytes, 1, MaxBufferSize)
}

// SetMergeBuffers sets the number of merge buffers.
func (p *MergeParameters) SetMergeBuffers(n uint64) {
	p.MergeBuffers = bound(n, 1, MaxMergeBuffers)
}

// SetChunkSize sets the number of sequences per merge chunk.
func (p *MergeParameters) SetChunkSize(n uint64) {
	if n < 1 {
		n = 1
	}
	p.ChunkSize = n
}

// SetMergeJobs sets the number of parallel merge jobs.
func (p *MergeParameters) SetMergeJobs(n uint64) {
	p.MergeJobs = bound(n, 1, MaxMergeJobs)
}

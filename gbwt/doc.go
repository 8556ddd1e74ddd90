// Package gbwt implements the core of a run-length compressed
// Burrows-Wheeler transform over a graph alphabet: per-node records in
// mutable, compressed, and fully decompressed forms, the LF-mapping
// operations that drive search, a RecordArray holding the concatenated
// record encodings, and document-array samples for recovering sequence
// identifiers from BWT positions.
//
// Node identifiers carry an orientation bit in their lowest bit, so every
// graph node appears in the index in both orientations. Record 0 is the
// endmarker, which collects the terminations of all indexed sequences.
//
// Queries over built structures are pure functions of the receiver and are
// safe for concurrent readers. Mutating operations require exclusive
// access. A CompressedRecord borrows its byte slice from the owning
// RecordArray and must not outlive it.
package gbwt

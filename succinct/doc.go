// Package succinct provides the compressed vector primitives backing the
// BWT index containers: a plain bit vector with rank, an Elias-Fano encoded
// sparse bit vector with rank and select, and a packed fixed-width integer
// vector.
//
// The sparse vector stores the positions of its 1-bits split into low and
// high halves. The low halves are packed at a fixed width chosen from the
// density; the high halves are unary coded into a bit array, so storage
// scales with the number of 1s rather than the universe size. Rank and
// select directories are derived from the encoded arrays whenever a vector
// is built or loaded; they are never serialized and hold no back-references
// that could go stale.
package succinct

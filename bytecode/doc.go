// Package bytecode implements the byte-level codecs used by the compressed
// BWT record format: a variable-byte integer code and a run-length code over
// a bounded rank space.
//
// The integer code is the common 7-bit-continuation scheme: each byte holds
// seven payload bits, least significant group first, and the high bit marks
// that another byte follows. The run code packs short runs into a single
// byte when the rank space is small enough, and falls back to a pair of
// variable-byte integers otherwise.
package bytecode

// Package wire owns the byte-level primitives of the RWF format.
//
// Ownership boundary:
// - Buffer: a contiguous byte region with position and limit
// - compact integer forms (UShort15rb, UShort16ob, UInt30rb, UInt32ob)
// - length-specified integers (IntNls, UIntNls, Long64ls, ULong64ls)
//
// Everything here is pure and bounds-checked. Level state and backpatching
// live in the rwf package.
package wire

// Package rwf encodes and decodes the RWF binary data model.
//
// Ownership boundary:
//   - primitives: Int, UInt, Float, Double, Real, Date, Time, DateTime,
//     Enum, Qos, State and Buffer, each with Encode/Decode and text forms
//   - containers: FieldList, ElementList, Map, Series, Vector, FilterList
//     and Array, with their entry types
//   - set definitions: local per-container databases and global databases
//     shared across messages
//   - EncodeIterator and DecodeIterator, which hold the level stack
//
// Encoding is init/complete: EncodeInit opens a level, entries are written
// into it, EncodeComplete patches counts and lengths. Completing with
// success false rolls the buffer back to where the level or entry began.
// Decoding mirrors it: a container Decode opens a level and each entry
// Decode bounds the iterator to that entry's payload until the entries run
// out with EndOfContainer.
//
// Iterators are not safe for concurrent use. Global set-definition
// databases are.
package rwf

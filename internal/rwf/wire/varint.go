package wire

import "encoding/binary"

const (
	MaxUShort15 = 0x7FFF
	MaxUInt30   = 0x3FFFFFFF

	ushort16Escape = 0xFE
	uint32Escape16 = 0xFE
	uint32Escape32 = 0xFF
)

// signMasks[bits] holds the ones that sit above the low `bits` bits.
// Indexed by size*8 for sizes 0..8.
var signMasks = func() [65]uint64 {
	var m [65]uint64
	for bits := 0; bits < 64; bits++ {
		m[bits] = ^uint64(0) << uint(bits)
	}
	m[64] = 0
	return m
}()

// UShort15rbLen is the encoded width of v.
func UShort15rbLen(v uint16) int {
	if v < 0x80 {
		return 1
	}
	return 2
}

// PutUShort15rb writes v in one byte when below 0x80, otherwise two bytes
// with the high bit of the first set.
func PutUShort15rb(b []byte, v uint16) (int, error) {
	if v > MaxUShort15 {
		return 0, ErrOutOfRange
	}
	if v < 0x80 {
		if len(b) < 1 {
			return 0, ErrShortBuffer
		}
		b[0] = byte(v)
		return 1, nil
	}
	if len(b) < 2 {
		return 0, ErrShortBuffer
	}
	b[0] = byte(v>>8) | 0x80
	b[1] = byte(v)
	return 2, nil
}

func UShort15rb(b []byte) (uint16, int, error) {
	if len(b) < 1 {
		return 0, 0, ErrEndOfData
	}
	if b[0]&0x80 == 0 {
		return uint16(b[0]), 1, nil
	}
	if len(b) < 2 {
		return 0, 0, ErrEndOfData
	}
	return uint16(b[0]&0x7F)<<8 | uint16(b[1]), 2, nil
}

func UShort16obLen(v uint16) int {
	if v < ushort16Escape {
		return 1
	}
	return 3
}

// PutUShort16ob writes v in one byte unless it would collide with the 0xFE
// escape, in which case 0xFE is followed by a plain u16.
func PutUShort16ob(b []byte, v uint16) (int, error) {
	if v < ushort16Escape {
		if len(b) < 1 {
			return 0, ErrShortBuffer
		}
		b[0] = byte(v)
		return 1, nil
	}
	if len(b) < 3 {
		return 0, ErrShortBuffer
	}
	b[0] = ushort16Escape
	binary.BigEndian.PutUint16(b[1:], v)
	return 3, nil
}

func UShort16ob(b []byte) (uint16, int, error) {
	if len(b) < 1 {
		return 0, 0, ErrEndOfData
	}
	if b[0] != ushort16Escape {
		return uint16(b[0]), 1, nil
	}
	if len(b) < 3 {
		return 0, 0, ErrEndOfData
	}
	return binary.BigEndian.Uint16(b[1:]), 3, nil
}

func UInt30rbLen(v uint32) int {
	switch {
	case v < 0x40:
		return 1
	case v < 0x4000:
		return 2
	case v < 0x400000:
		return 3
	default:
		return 4
	}
}

// PutUInt30rb writes v with its width selected by the top two bits of the
// first byte: 00 one byte, 10 two, 01 three, 11 four.
func PutUInt30rb(b []byte, v uint32) (int, error) {
	if v > MaxUInt30 {
		return 0, ErrOutOfRange
	}
	n := UInt30rbLen(v)
	if len(b) < n {
		return 0, ErrShortBuffer
	}
	switch n {
	case 1:
		b[0] = byte(v)
	case 2:
		b[0] = byte(v>>8) | 0x80
		b[1] = byte(v)
	case 3:
		b[0] = byte(v>>16) | 0x40
		b[1] = byte(v >> 8)
		b[2] = byte(v)
	default:
		b[0] = byte(v>>24) | 0xC0
		b[1] = byte(v >> 16)
		b[2] = byte(v >> 8)
		b[3] = byte(v)
	}
	return n, nil
}

func UInt30rb(b []byte) (uint32, int, error) {
	if len(b) < 1 {
		return 0, 0, ErrEndOfData
	}
	hi := uint32(b[0] & 0x3F)
	var n int
	switch b[0] & 0xC0 {
	case 0x00:
		return hi, 1, nil
	case 0x80:
		n = 2
	case 0x40:
		n = 3
	default:
		n = 4
	}
	if len(b) < n {
		return 0, 0, ErrEndOfData
	}
	v := hi
	for i := 1; i < n; i++ {
		v = v<<8 | uint32(b[i])
	}
	return v, n, nil
}

func UInt32obLen(v uint32) int {
	switch {
	case v < uint32Escape16:
		return 1
	case v <= 0xFFFF:
		return 3
	default:
		return 5
	}
}

// PutUInt32ob writes v in one byte below 0xFE; 0xFE escapes to a u16 and
// 0xFF escapes to a u32.
func PutUInt32ob(b []byte, v uint32) (int, error) {
	n := UInt32obLen(v)
	if len(b) < n {
		return 0, ErrShortBuffer
	}
	switch n {
	case 1:
		b[0] = byte(v)
	case 3:
		b[0] = uint32Escape16
		binary.BigEndian.PutUint16(b[1:], uint16(v))
	default:
		b[0] = uint32Escape32
		binary.BigEndian.PutUint32(b[1:], v)
	}
	return n, nil
}

func UInt32ob(b []byte) (uint32, int, error) {
	if len(b) < 1 {
		return 0, 0, ErrEndOfData
	}
	switch b[0] {
	case uint32Escape16:
		if len(b) < 3 {
			return 0, 0, ErrEndOfData
		}
		return uint32(binary.BigEndian.Uint16(b[1:])), 3, nil
	case uint32Escape32:
		if len(b) < 5 {
			return 0, 0, ErrEndOfData
		}
		return binary.BigEndian.Uint32(b[1:]), 5, nil
	default:
		return uint32(b[0]), 1, nil
	}
}

// Long64ls reads a big-endian two's-complement integer of size bytes,
// sign-extending into 64 bits. Sizes outside 0..8 are ErrInvalidSize.
func Long64ls(b []byte, size int) (int64, error) {
	if size < 0 || size > 8 {
		return 0, ErrInvalidSize
	}
	if len(b) < size {
		return 0, ErrEndOfData
	}
	if size == 0 {
		return 0, nil
	}
	var v uint64
	for i := 0; i < size; i++ {
		v = v<<8 | uint64(b[i])
	}
	if b[0]&0x80 != 0 {
		v |= signMasks[size*8]
	}
	return int64(v), nil
}

// ULong64ls reads a big-endian unsigned integer of size bytes.
func ULong64ls(b []byte, size int) (uint64, error) {
	if size < 0 || size > 8 {
		return 0, ErrInvalidSize
	}
	if len(b) < size {
		return 0, ErrEndOfData
	}
	var v uint64
	for i := 0; i < size; i++ {
		v = v<<8 | uint64(b[i])
	}
	return v, nil
}

// Long64lsLen is the minimal two's-complement width of v, at least one byte.
func Long64lsLen(v int64) int {
	n := 1
	for n < 8 {
		lo := int64(-1) << uint(n*8-1)
		if v >= lo && v <= ^lo {
			break
		}
		n++
	}
	return n
}

// ULong64lsLen is the minimal width of v, at least one byte.
func ULong64lsLen(v uint64) int {
	n := 1
	for n < 8 && v>>uint(n*8) != 0 {
		n++
	}
	return n
}

// PutLong64ls writes v in its minimal width without a length byte.
func PutLong64ls(b []byte, v int64) (int, error) {
	return PutLong64lsN(b, v, Long64lsLen(v))
}

// PutLong64lsN writes v in exactly size bytes. The value must fit.
func PutLong64lsN(b []byte, v int64, size int) (int, error) {
	if size < 1 || size > 8 {
		return 0, ErrInvalidSize
	}
	if size < 8 {
		lo := int64(-1) << uint(size*8-1)
		if v < lo || v > ^lo {
			return 0, ErrOutOfRange
		}
	}
	if len(b) < size {
		return 0, ErrShortBuffer
	}
	u := uint64(v)
	for i := size - 1; i >= 0; i-- {
		b[i] = byte(u)
		u >>= 8
	}
	return size, nil
}

func PutULong64ls(b []byte, v uint64) (int, error) {
	return PutULong64lsN(b, v, ULong64lsLen(v))
}

func PutULong64lsN(b []byte, v uint64, size int) (int, error) {
	if size < 1 || size > 8 {
		return 0, ErrInvalidSize
	}
	if size < 8 && v>>uint(size*8) != 0 {
		return 0, ErrOutOfRange
	}
	if len(b) < size {
		return 0, ErrShortBuffer
	}
	for i := size - 1; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return size, nil
}

// PutUIntNls writes an explicit size byte followed by v in that many bytes.
// Zero is written as a lone size byte of 0. maxSize is 4 or 8.
func PutUIntNls(b []byte, v uint64, maxSize int) (int, error) {
	size := 0
	if v != 0 {
		size = ULong64lsLen(v)
	}
	if size > maxSize {
		return 0, ErrOutOfRange
	}
	if len(b) < 1+size {
		return 0, ErrShortBuffer
	}
	b[0] = byte(size)
	if size > 0 {
		if _, err := PutULong64lsN(b[1:], v, size); err != nil {
			return 0, err
		}
	}
	return 1 + size, nil
}

func UIntNls(b []byte, maxSize int) (uint64, int, error) {
	if len(b) < 1 {
		return 0, 0, ErrEndOfData
	}
	size := int(b[0])
	if size > maxSize {
		return 0, 0, ErrInvalidSize
	}
	v, err := ULong64ls(b[1:], size)
	if err != nil {
		return 0, 0, err
	}
	return v, 1 + size, nil
}

// PutIntNls is the signed form of PutUIntNls.
func PutIntNls(b []byte, v int64, maxSize int) (int, error) {
	size := 0
	if v != 0 {
		size = Long64lsLen(v)
	}
	if size > maxSize {
		return 0, ErrOutOfRange
	}
	if len(b) < 1+size {
		return 0, ErrShortBuffer
	}
	b[0] = byte(size)
	if size > 0 {
		if _, err := PutLong64lsN(b[1:], v, size); err != nil {
			return 0, err
		}
	}
	return 1 + size, nil
}

func IntNls(b []byte, maxSize int) (int64, int, error) {
	if len(b) < 1 {
		return 0, 0, ErrEndOfData
	}
	size := int(b[0])
	if size > maxSize {
		return 0, 0, ErrInvalidSize
	}
	v, err := Long64ls(b[1:], size)
	if err != nil {
		return 0, 0, err
	}
	return v, 1 + size, nil
}

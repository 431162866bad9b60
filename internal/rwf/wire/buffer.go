package wire

import (
	"encoding/binary"
	"errors"
)

var (
	ErrEndOfData     = errors.New("wire: end of data")
	ErrShortBuffer   = errors.New("wire: short buffer")
	ErrOutOfRange    = errors.New("wire: value out of range")
	ErrInvalidSize   = errors.New("wire: invalid size")
	ErrInvalidWindow = errors.New("wire: invalid position or limit")
)

// Buffer is a contiguous byte region with a current position and a limit.
// The usable window is [Position, Limit). Invariant:
// 0 <= position <= limit <= capacity.
type Buffer struct {
	data  []byte
	pos   int
	limit int
}

// NewBuffer allocates a buffer whose window spans the whole capacity.
func NewBuffer(capacity int) *Buffer {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer{data: make([]byte, capacity), limit: capacity}
}

// Wrap uses b as backing storage; the window is all of b.
func Wrap(b []byte) *Buffer {
	return &Buffer{data: b, limit: len(b)}
}

func (b *Buffer) Position() int { return b.pos }
func (b *Buffer) Limit() int    { return b.limit }
func (b *Buffer) Capacity() int { return len(b.data) }

// Remaining is the number of bytes between position and limit.
func (b *Buffer) Remaining() int { return b.limit - b.pos }

// Data exposes the whole backing array.
func (b *Buffer) Data() []byte { return b.data }

// Bytes returns the window [Position, Limit) without copying.
func (b *Buffer) Bytes() []byte { return b.data[b.pos:b.limit] }

func (b *Buffer) SetPosition(pos int) error {
	if pos < 0 || pos > b.limit {
		return ErrInvalidWindow
	}
	b.pos = pos
	return nil
}

func (b *Buffer) SetLimit(limit int) error {
	if limit < b.pos || limit > len(b.data) {
		return ErrInvalidWindow
	}
	b.limit = limit
	return nil
}

// Clear returns the buffer to position 0 with the window spanning the
// full capacity. Storage is kept.
func (b *Buffer) Clear() {
	b.pos = 0
	b.limit = len(b.data)
}

// Grow relocates storage so capacity increases by at least n bytes.
// Position is preserved; the limit moves to the new capacity.
func (b *Buffer) Grow(n int) {
	if n <= 0 {
		return
	}
	size := len(b.data) * 2
	if size < len(b.data)+n {
		size = len(b.data) + n
	}
	next := make([]byte, size)
	copy(next, b.data)
	b.data = next
	b.limit = size
}

func (b *Buffer) check(pos, n int) error {
	if pos < 0 || n < 0 || pos+n > b.limit {
		return ErrEndOfData
	}
	return nil
}

func (b *Buffer) ReadUint8At(pos int) (uint8, error) {
	if err := b.check(pos, 1); err != nil {
		return 0, err
	}
	return b.data[pos], nil
}

func (b *Buffer) ReadUint16At(pos int) (uint16, error) {
	if err := b.check(pos, 2); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b.data[pos:]), nil
}

func (b *Buffer) ReadUint32At(pos int) (uint32, error) {
	if err := b.check(pos, 4); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b.data[pos:]), nil
}

func (b *Buffer) ReadUint64At(pos int) (uint64, error) {
	if err := b.check(pos, 8); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b.data[pos:]), nil
}

// SliceAt returns n bytes at pos without copying.
func (b *Buffer) SliceAt(pos, n int) ([]byte, error) {
	if err := b.check(pos, n); err != nil {
		return nil, err
	}
	return b.data[pos : pos+n], nil
}

func (b *Buffer) WriteUint8At(pos int, v uint8) error {
	if err := b.check(pos, 1); err != nil {
		return ErrShortBuffer
	}
	b.data[pos] = v
	return nil
}

func (b *Buffer) WriteUint16At(pos int, v uint16) error {
	if err := b.check(pos, 2); err != nil {
		return ErrShortBuffer
	}
	binary.BigEndian.PutUint16(b.data[pos:], v)
	return nil
}

func (b *Buffer) WriteUint32At(pos int, v uint32) error {
	if err := b.check(pos, 4); err != nil {
		return ErrShortBuffer
	}
	binary.BigEndian.PutUint32(b.data[pos:], v)
	return nil
}

func (b *Buffer) WriteUint64At(pos int, v uint64) error {
	if err := b.check(pos, 8); err != nil {
		return ErrShortBuffer
	}
	binary.BigEndian.PutUint64(b.data[pos:], v)
	return nil
}

func (b *Buffer) WriteBytesAt(pos int, p []byte) error {
	if err := b.check(pos, len(p)); err != nil {
		return ErrShortBuffer
	}
	copy(b.data[pos:], p)
	return nil
}

func (b *Buffer) ReadUint8() (uint8, error) {
	v, err := b.ReadUint8At(b.pos)
	if err == nil {
		b.pos++
	}
	return v, err
}

func (b *Buffer) ReadUint16() (uint16, error) {
	v, err := b.ReadUint16At(b.pos)
	if err == nil {
		b.pos += 2
	}
	return v, err
}

func (b *Buffer) ReadUint32() (uint32, error) {
	v, err := b.ReadUint32At(b.pos)
	if err == nil {
		b.pos += 4
	}
	return v, err
}

func (b *Buffer) ReadUint64() (uint64, error) {
	v, err := b.ReadUint64At(b.pos)
	if err == nil {
		b.pos += 8
	}
	return v, err
}

// ReadBytes returns the next n bytes without copying and advances.
func (b *Buffer) ReadBytes(n int) ([]byte, error) {
	p, err := b.SliceAt(b.pos, n)
	if err == nil {
		b.pos += n
	}
	return p, err
}

func (b *Buffer) Skip(n int) error {
	if err := b.check(b.pos, n); err != nil {
		return err
	}
	b.pos += n
	return nil
}

package wire

import (
	"errors"
	"testing"
)

func TestBufferAbsoluteReadWrite(t *testing.T) {
	b := NewBuffer(16)
	if err := b.WriteUint16At(0, 0xBEEF); err != nil {
		t.Fatalf("write u16: %v", err)
	}
	if err := b.WriteUint32At(2, 0x01020304); err != nil {
		t.Fatalf("write u32: %v", err)
	}
	if err := b.WriteUint64At(6, 42); err != nil {
		t.Fatalf("write u64: %v", err)
	}
	v16, _ := b.ReadUint16At(0)
	v32, _ := b.ReadUint32At(2)
	v64, _ := b.ReadUint64At(6)
	if v16 != 0xBEEF || v32 != 0x01020304 || v64 != 42 {
		t.Fatalf("unexpected values %#x %#x %d", v16, v32, v64)
	}
}

func TestBufferReadsPastLimitFail(t *testing.T) {
	b := Wrap([]byte{1, 2, 3, 4})
	if err := b.SetLimit(3); err != nil {
		t.Fatalf("set limit: %v", err)
	}
	if _, err := b.ReadUint32At(0); !errors.Is(err, ErrEndOfData) {
		t.Fatalf("expected ErrEndOfData, got %v", err)
	}
	if err := b.WriteUint8At(3, 9); !errors.Is(err, ErrShortBuffer) {
		t.Fatalf("expected ErrShortBuffer, got %v", err)
	}
	if _, err := b.ReadBytes(4); !errors.Is(err, ErrEndOfData) {
		t.Fatalf("expected ErrEndOfData, got %v", err)
	}
}

func TestBufferRelativeReadsAdvance(t *testing.T) {
	b := Wrap([]byte{0x01, 0x00, 0x02, 0xAA, 0xBB})
	u8, _ := b.ReadUint8()
	u16, _ := b.ReadUint16()
	if u8 != 1 || u16 != 2 || b.Position() != 3 {
		t.Fatalf("unexpected reads %d %d pos=%d", u8, u16, b.Position())
	}
	if err := b.Skip(1); err != nil {
		t.Fatalf("skip: %v", err)
	}
	if b.Remaining() != 1 {
		t.Fatalf("expected 1 remaining, got %d", b.Remaining())
	}
	if err := b.Skip(2); !errors.Is(err, ErrEndOfData) {
		t.Fatalf("expected ErrEndOfData, got %v", err)
	}
}

func TestBufferGrowKeepsContentAndClearResets(t *testing.T) {
	b := NewBuffer(2)
	b.WriteUint16At(0, 0x1234)
	b.SetPosition(2)
	b.Grow(10)
	if b.Capacity() < 12 || b.Limit() != b.Capacity() {
		t.Fatalf("unexpected capacity %d limit %d", b.Capacity(), b.Limit())
	}
	if v, _ := b.ReadUint16At(0); v != 0x1234 {
		t.Fatalf("content lost on grow: %#x", v)
	}
	if b.Position() != 2 {
		t.Fatalf("position moved on grow: %d", b.Position())
	}
	b.Clear()
	if b.Position() != 0 || b.Limit() != b.Capacity() {
		t.Fatalf("clear did not reset window")
	}
}

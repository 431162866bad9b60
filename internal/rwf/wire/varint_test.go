package wire

import (
	"bytes"
	"errors"
	"testing"
)

func TestUInt30rbWidthBoundaries(t *testing.T) {
	cases := []struct {
		v     uint32
		width int
	}{
		{0, 1},
		{63, 1},
		{64, 2},
		{16383, 2},
		{16384, 3},
		{4194303, 3},
		{4194304, 4},
		{1<<30 - 1, 4},
	}
	for _, tc := range cases {
		buf := make([]byte, 4)
		n, err := PutUInt30rb(buf, tc.v)
		if err != nil {
			t.Fatalf("put %d: %v", tc.v, err)
		}
		if n != tc.width || UInt30rbLen(tc.v) != tc.width {
			t.Fatalf("expected width %d for %d, got %d", tc.width, tc.v, n)
		}
		got, m, err := UInt30rb(buf[:n])
		if err != nil {
			t.Fatalf("read %d: %v", tc.v, err)
		}
		if got != tc.v || m != n {
			t.Fatalf("expected %d/%d, got %d/%d", tc.v, n, got, m)
		}
	}
}

func TestUInt30rbRejectsOversizeValue(t *testing.T) {
	_, err := PutUInt30rb(make([]byte, 4), 1<<30)
	if !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
}

func TestUInt30rbSelectorBits(t *testing.T) {
	buf := make([]byte, 4)
	PutUInt30rb(buf, 64)
	if buf[0]&0xC0 != 0x80 {
		t.Fatalf("expected 10 selector for two-byte form, got %#x", buf[0])
	}
	PutUInt30rb(buf, 16384)
	if buf[0]&0xC0 != 0x40 {
		t.Fatalf("expected 01 selector for three-byte form, got %#x", buf[0])
	}
	PutUInt30rb(buf, 4194304)
	if buf[0]&0xC0 != 0xC0 {
		t.Fatalf("expected 11 selector for four-byte form, got %#x", buf[0])
	}
}

func TestLong64lsSignExtension(t *testing.T) {
	v, err := Long64ls([]byte{0xFF}, 1)
	if err != nil || v != -1 {
		t.Fatalf("expected -1, got %d (%v)", v, err)
	}
	v, err = Long64ls([]byte{0xFF, 0x00}, 2)
	if err != nil || v != -256 {
		t.Fatalf("expected -256, got %d (%v)", v, err)
	}
	v, err = Long64ls([]byte{0x7F, 0xFF}, 2)
	if err != nil || v != 32767 {
		t.Fatalf("expected 32767, got %d (%v)", v, err)
	}
}

func TestLong64lsRejectsWidthOutsideMaskTable(t *testing.T) {
	_, err := Long64ls(make([]byte, 9), 9)
	if !errors.Is(err, ErrInvalidSize) {
		t.Fatalf("expected ErrInvalidSize, got %v", err)
	}
	_, err = Long64ls(nil, -1)
	if !errors.Is(err, ErrInvalidSize) {
		t.Fatalf("expected ErrInvalidSize, got %v", err)
	}
}

func TestLong64lsMinimalWidthRoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 127, -128, 128, -129, 1 << 40, -(1 << 40), 1<<63 - 1, -1 << 63}
	for _, v := range values {
		buf := make([]byte, 8)
		n, err := PutLong64ls(buf, v)
		if err != nil {
			t.Fatalf("put %d: %v", v, err)
		}
		got, err := Long64ls(buf[:n], n)
		if err != nil || got != v {
			t.Fatalf("expected %d, got %d (%v)", v, got, err)
		}
	}
	if Long64lsLen(127) != 1 || Long64lsLen(128) != 2 || Long64lsLen(-128) != 1 {
		t.Fatalf("unexpected minimal widths")
	}
}

func TestUShort15rbForms(t *testing.T) {
	buf := make([]byte, 2)
	n, _ := PutUShort15rb(buf, 0x7F)
	if n != 1 || buf[0] != 0x7F {
		t.Fatalf("expected one byte 0x7f, got %d %#x", n, buf[0])
	}
	n, _ = PutUShort15rb(buf, 0x1234)
	if n != 2 || !bytes.Equal(buf, []byte{0x92, 0x34}) {
		t.Fatalf("expected 92 34, got % x", buf[:n])
	}
	v, m, err := UShort15rb(buf)
	if err != nil || v != 0x1234 || m != 2 {
		t.Fatalf("expected 0x1234/2, got %#x/%d (%v)", v, m, err)
	}
	if _, err := PutUShort15rb(buf, 0x8000); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
	if _, _, err := UShort15rb([]byte{0x80}); !errors.Is(err, ErrEndOfData) {
		t.Fatalf("expected ErrEndOfData, got %v", err)
	}
}

func TestUShort16obEscape(t *testing.T) {
	buf := make([]byte, 3)
	n, _ := PutUShort16ob(buf, 0xFD)
	if n != 1 {
		t.Fatalf("expected one byte for 0xfd, got %d", n)
	}
	n, _ = PutUShort16ob(buf, 0xFE)
	if n != 3 || !bytes.Equal(buf, []byte{0xFE, 0x00, 0xFE}) {
		t.Fatalf("expected escaped form, got % x", buf[:n])
	}
	v, m, err := UShort16ob(buf)
	if err != nil || v != 0xFE || m != 3 {
		t.Fatalf("expected 0xfe/3, got %#x/%d (%v)", v, m, err)
	}
}

func TestUInt32obEscapes(t *testing.T) {
	cases := []struct {
		v     uint32
		width int
		lead  byte
	}{
		{0xFD, 1, 0xFD},
		{0xFE, 3, 0xFE},
		{0xFFFF, 3, 0xFE},
		{0x10000, 5, 0xFF},
	}
	for _, tc := range cases {
		buf := make([]byte, 5)
		n, err := PutUInt32ob(buf, tc.v)
		if err != nil || n != tc.width || buf[0] != tc.lead {
			t.Fatalf("value %#x: expected %d bytes lead %#x, got %d lead %#x (%v)", tc.v, tc.width, tc.lead, n, buf[0], err)
		}
		got, m, err := UInt32ob(buf[:n])
		if err != nil || got != tc.v || m != n {
			t.Fatalf("value %#x: round trip got %#x/%d (%v)", tc.v, got, m, err)
		}
	}
}

func TestIntNlsZeroIsSizeOnly(t *testing.T) {
	buf := make([]byte, 9)
	n, err := PutIntNls(buf, 0, 8)
	if err != nil || n != 1 || buf[0] != 0 {
		t.Fatalf("expected lone zero size byte, got %d % x (%v)", n, buf[:n], err)
	}
	n, err = PutIntNls(buf, -2, 4)
	if err != nil || n != 2 || !bytes.Equal(buf[:2], []byte{1, 0xFE}) {
		t.Fatalf("expected 01 fe, got % x (%v)", buf[:n], err)
	}
	v, m, err := IntNls(buf, 4)
	if err != nil || v != -2 || m != 2 {
		t.Fatalf("expected -2/2, got %d/%d (%v)", v, m, err)
	}
	if _, err := PutUIntNls(buf, 1<<40, 4); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
	if _, _, err := UIntNls([]byte{5, 0, 0, 0, 0, 1}, 4); !errors.Is(err, ErrInvalidSize) {
		t.Fatalf("expected ErrInvalidSize, got %v", err)
	}
}

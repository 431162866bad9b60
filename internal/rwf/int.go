package rwf

import (
	"strconv"
	"strings"

	"github.com/danmuck/rwfcodec/internal/rwf/wire"
)

// Int is a signed 64-bit value encoded in its minimal two's-complement
// width.
type Int struct {
	value int64
	blank bool
}

func NewInt(v int64) *Int { return &Int{value: v} }

func (v *Int) Value() int64       { return v.value }
func (v *Int) Set(x int64)        { v.value, v.blank = x, false }
func (v *Int) DataType() DataType { return DataTypeInt }
func (v *Int) IsBlank() bool      { return v.blank }
func (v *Int) Clear()             { v.value, v.blank = 0, false }
func (v *Int) Blank()             { v.value, v.blank = 0, true }

func (v *Int) Equal(o *Int) bool {
	return v.blank == o.blank && v.value == o.value
}

// Copy writes v into dst.
func (v *Int) Copy(dst *Int) error {
	if dst == nil {
		return errorf(InvalidArgument, "copy INT", "nil destination")
	}
	*dst = *v
	return nil
}

func (v *Int) Encode(it *EncodeIterator) error { return encodePrimitive(it, v) }
func (v *Int) Decode(it *DecodeIterator) error { return decodePrimitive(it, v) }

func (v *Int) encodedSize() int { return wire.Long64lsLen(v.value) }

func (v *Int) put(dst []byte) (int, error) { return wire.PutLong64ls(dst, v.value) }

func (v *Int) decodeBytes(p []byte) error {
	if len(p) == 0 {
		v.Blank()
		return BlankData
	}
	x, err := wire.Long64ls(p, len(p))
	if err != nil {
		return fromWire("decode INT", err)
	}
	v.Set(x)
	return nil
}

func (v *Int) String() string {
	if v.blank {
		return ""
	}
	return strconv.FormatInt(v.value, 10)
}

// SetString parses a decimal integer; an empty string blanks the value.
func (v *Int) SetString(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		v.Blank()
		return nil
	}
	x, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return errorf(InvalidArgument, "parse INT", "%q: %v", s, err)
	}
	v.Set(x)
	return nil
}

// UInt is an unsigned 64-bit value encoded in its minimal width.
type UInt struct {
	value uint64
	blank bool
}

func NewUInt(v uint64) *UInt { return &UInt{value: v} }

func (v *UInt) Value() uint64      { return v.value }
func (v *UInt) Set(x uint64)       { v.value, v.blank = x, false }
func (v *UInt) DataType() DataType { return DataTypeUInt }
func (v *UInt) IsBlank() bool      { return v.blank }
func (v *UInt) Clear()             { v.value, v.blank = 0, false }
func (v *UInt) Blank()             { v.value, v.blank = 0, true }

func (v *UInt) Equal(o *UInt) bool {
	return v.blank == o.blank && v.value == o.value
}

// Copy writes v into dst.
func (v *UInt) Copy(dst *UInt) error {
	if dst == nil {
		return errorf(InvalidArgument, "copy UINT", "nil destination")
	}
	*dst = *v
	return nil
}

func (v *UInt) Encode(it *EncodeIterator) error { return encodePrimitive(it, v) }
func (v *UInt) Decode(it *DecodeIterator) error { return decodePrimitive(it, v) }

func (v *UInt) encodedSize() int { return wire.ULong64lsLen(v.value) }

func (v *UInt) put(dst []byte) (int, error) { return wire.PutULong64ls(dst, v.value) }

func (v *UInt) decodeBytes(p []byte) error {
	if len(p) == 0 {
		v.Blank()
		return BlankData
	}
	x, err := wire.ULong64ls(p, len(p))
	if err != nil {
		return fromWire("decode UINT", err)
	}
	v.Set(x)
	return nil
}

func (v *UInt) String() string {
	if v.blank {
		return ""
	}
	return strconv.FormatUint(v.value, 10)
}

func (v *UInt) SetString(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		v.Blank()
		return nil
	}
	x, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return errorf(InvalidArgument, "parse UINT", "%q: %v", s, err)
	}
	v.Set(x)
	return nil
}

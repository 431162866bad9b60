package rwf

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/danmuck/rwfcodec/internal/rwf/wire"
)

// Enum is an unsigned 16-bit enumeration index, one or two bytes on the
// wire.
type Enum struct {
	value uint16
	blank bool
}

func NewEnum(v uint16) *Enum { return &Enum{value: v} }

func (v *Enum) Value() uint16      { return v.value }
func (v *Enum) Set(x uint16)       { v.value, v.blank = x, false }
func (v *Enum) DataType() DataType { return DataTypeEnum }
func (v *Enum) IsBlank() bool      { return v.blank }
func (v *Enum) Clear()             { v.value, v.blank = 0, false }
func (v *Enum) Blank()             { v.value, v.blank = 0, true }

func (v *Enum) Equal(o *Enum) bool { return v.blank == o.blank && v.value == o.value }

// Copy writes v into dst.
func (v *Enum) Copy(dst *Enum) error {
	if dst == nil {
		return errorf(InvalidArgument, "copy ENUM", "nil destination")
	}
	*dst = *v
	return nil
}

func (v *Enum) Encode(it *EncodeIterator) error { return encodePrimitive(it, v) }
func (v *Enum) Decode(it *DecodeIterator) error { return decodePrimitive(it, v) }

func (v *Enum) encodedSize() int {
	if v.value > 0xFF {
		return 2
	}
	return 1
}

func (v *Enum) put(dst []byte) (int, error) {
	n := v.encodedSize()
	if len(dst) < n {
		return 0, wire.ErrShortBuffer
	}
	if n == 1 {
		dst[0] = byte(v.value)
	} else {
		binary.BigEndian.PutUint16(dst, v.value)
	}
	return n, nil
}

func (v *Enum) decodeBytes(p []byte) error {
	switch len(p) {
	case 0:
		v.Blank()
		return BlankData
	case 1:
		v.Set(uint16(p[0]))
		return nil
	case 2:
		v.Set(binary.BigEndian.Uint16(p))
		return nil
	}
	return errorf(IncompleteData, "decode ENUM", "payload is %d bytes, want 1 or 2", len(p))
}

func (v *Enum) String() string {
	if v.blank {
		return ""
	}
	return strconv.FormatUint(uint64(v.value), 10)
}

func (v *Enum) SetString(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		v.Blank()
		return nil
	}
	x, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return errorf(InvalidArgument, "parse ENUM", "%q: %v", s, err)
	}
	v.Set(uint16(x))
	return nil
}

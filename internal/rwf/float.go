package rwf

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"
)

// Float is an IEEE-754 single, always four bytes on the wire.
type Float struct {
	value float32
	blank bool
}

func NewFloat(v float32) *Float { return &Float{value: v} }

func (v *Float) Value() float32     { return v.value }
func (v *Float) Set(x float32)      { v.value, v.blank = x, false }
func (v *Float) DataType() DataType { return DataTypeFloat }
func (v *Float) IsBlank() bool      { return v.blank }
func (v *Float) Clear()             { v.value, v.blank = 0, false }
func (v *Float) Blank()             { v.value, v.blank = 0, true }

// Copy writes v into dst.
func (v *Float) Copy(dst *Float) error {
	if dst == nil {
		return errorf(InvalidArgument, "copy FLOAT", "nil destination")
	}
	*dst = *v
	return nil
}

func (v *Float) Encode(it *EncodeIterator) error { return encodePrimitive(it, v) }
func (v *Float) Decode(it *DecodeIterator) error { return decodePrimitive(it, v) }

func (v *Float) encodedSize() int { return 4 }

func (v *Float) put(dst []byte) (int, error) {
	return putFixed32(dst, math.Float32bits(v.value))
}

func (v *Float) decodeBytes(p []byte) error {
	switch len(p) {
	case 0:
		v.Blank()
		return BlankData
	case 4:
		v.Set(math.Float32frombits(binary.BigEndian.Uint32(p)))
		return nil
	}
	return errorf(IncompleteData, "decode FLOAT", "payload is %d bytes, want 4", len(p))
}

func (v *Float) String() string {
	if v.blank {
		return ""
	}
	return strconv.FormatFloat(float64(v.value), 'g', -1, 32)
}

func (v *Float) SetString(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		v.Blank()
		return nil
	}
	x, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return errorf(InvalidArgument, "parse FLOAT", "%q: %v", s, err)
	}
	v.Set(float32(x))
	return nil
}

// Double is an IEEE-754 double, always eight bytes on the wire.
type Double struct {
	value float64
	blank bool
}

func NewDouble(v float64) *Double { return &Double{value: v} }

func (v *Double) Value() float64     { return v.value }
func (v *Double) Set(x float64)      { v.value, v.blank = x, false }
func (v *Double) DataType() DataType { return DataTypeDouble }
func (v *Double) IsBlank() bool      { return v.blank }
func (v *Double) Clear()             { v.value, v.blank = 0, false }
func (v *Double) Blank()             { v.value, v.blank = 0, true }

// Copy writes v into dst.
func (v *Double) Copy(dst *Double) error {
	if dst == nil {
		return errorf(InvalidArgument, "copy DOUBLE", "nil destination")
	}
	*dst = *v
	return nil
}

func (v *Double) Encode(it *EncodeIterator) error { return encodePrimitive(it, v) }
func (v *Double) Decode(it *DecodeIterator) error { return decodePrimitive(it, v) }

func (v *Double) encodedSize() int { return 8 }

func (v *Double) put(dst []byte) (int, error) {
	return putFixed64(dst, math.Float64bits(v.value))
}

func (v *Double) decodeBytes(p []byte) error {
	switch len(p) {
	case 0:
		v.Blank()
		return BlankData
	case 8:
		v.Set(math.Float64frombits(binary.BigEndian.Uint64(p)))
		return nil
	}
	return errorf(IncompleteData, "decode DOUBLE", "payload is %d bytes, want 8", len(p))
}

func (v *Double) String() string {
	if v.blank {
		return ""
	}
	return strconv.FormatFloat(v.value, 'g', -1, 64)
}

func (v *Double) SetString(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		v.Blank()
		return nil
	}
	x, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return errorf(InvalidArgument, "parse DOUBLE", "%q: %v", s, err)
	}
	v.Set(x)
	return nil
}

func putFixed32(dst []byte, u uint32) (int, error) {
	if len(dst) < 4 {
		return 0, errShort
	}
	binary.BigEndian.PutUint32(dst, u)
	return 4, nil
}

func putFixed64(dst []byte, u uint64) (int, error) {
	if len(dst) < 8 {
		return 0, errShort
	}
	binary.BigEndian.PutUint64(dst, u)
	return 8, nil
}

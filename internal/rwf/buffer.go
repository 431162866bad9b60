package rwf

import "github.com/danmuck/rwfcodec/internal/rwf/wire"

// Buffer is an opaque byte payload tagged as BUFFER or one of the string
// types. A decoded Buffer aliases the source bytes; use Copy to keep it.
type Buffer struct {
	kind  DataType
	data  []byte
	blank bool
}

func NewBuffer(p []byte) *Buffer { return &Buffer{kind: DataTypeBuffer, data: p} }
func NewASCII(s string) *Buffer  { return &Buffer{kind: DataTypeASCIIString, data: []byte(s)} }
func NewUTF8(s string) *Buffer   { return &Buffer{kind: DataTypeUTF8String, data: []byte(s)} }
func NewRMTES(p []byte) *Buffer  { return &Buffer{kind: DataTypeRMTESString, data: p} }

func (v *Buffer) DataType() DataType {
	if v.kind == DataTypeUnknown {
		return DataTypeBuffer
	}
	return v.kind
}

// SetKind retags the payload; only BUFFER and the string types are
// accepted.
func (v *Buffer) SetKind(dt DataType) error {
	if !dt.isBufferLike() {
		return errorf(InvalidArgument, "set buffer kind", "%s is not a buffer type", dt)
	}
	v.kind = dt
	return nil
}

func (v *Buffer) Bytes() []byte     { return v.data }
func (v *Buffer) Len() int          { return len(v.data) }
func (v *Buffer) SetBytes(p []byte) { v.data, v.blank = p, false }
func (v *Buffer) IsBlank() bool     { return v.blank }
func (v *Buffer) Clear()            { v.data, v.blank = nil, false }
func (v *Buffer) Blank()            { v.data, v.blank = nil, true }

func (v *Buffer) Equal(o *Buffer) bool {
	return v.blank == o.blank && string(v.data) == string(o.data)
}

// Copy writes v into dst with dst owning its own bytes.
func (v *Buffer) Copy(dst *Buffer) error {
	if dst == nil {
		return errorf(InvalidArgument, "copy BUFFER", "nil destination")
	}
	dst.kind, dst.blank = v.kind, v.blank
	dst.data = append(dst.data[:0], v.data...)
	return nil
}

func (v *Buffer) Encode(it *EncodeIterator) error { return encodePrimitive(it, v) }
func (v *Buffer) Decode(it *DecodeIterator) error { return decodePrimitive(it, v) }

func (v *Buffer) encodedSize() int { return len(v.data) }

func (v *Buffer) put(dst []byte) (int, error) {
	if len(dst) < len(v.data) {
		return 0, wire.ErrShortBuffer
	}
	return copy(dst, v.data), nil
}

func (v *Buffer) decodeBytes(p []byte) error {
	if len(p) == 0 {
		v.Blank()
		return BlankData
	}
	v.SetBytes(p)
	return nil
}

func (v *Buffer) String() string { return string(v.data) }

func (v *Buffer) SetString(s string) error {
	if s == "" {
		v.Blank()
		return nil
	}
	v.SetBytes([]byte(s))
	return nil
}
